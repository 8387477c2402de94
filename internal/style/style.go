// Package style holds the terminal styles shared by CLI output.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/freedroid/freedroid/internal/models"
)

// --- Reusable Colors ---
var (
	colorGreen    = lipgloss.Color("42")
	colorRed      = lipgloss.Color("196")
	colorYellow   = lipgloss.Color("214")
	colorPurple   = lipgloss.Color("99")
	colorCyan     = lipgloss.Color("44")
	colorDarkGray = lipgloss.Color("240")
)

// --- General Purpose Styles ---
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true)
	HelpStyle    = lipgloss.NewStyle().Faint(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	WarnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
)

// --- Listing Styles ---
var (
	DirStyle  = lipgloss.NewStyle().Foreground(colorPurple).Bold(true)
	LinkStyle = lipgloss.NewStyle().Foreground(colorCyan)
	FileStyle = lipgloss.NewStyle()
	SizeStyle = lipgloss.NewStyle().Foreground(colorDarkGray)
)

// PadRight pads or truncates a string to a fixed display width.
func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w > width {
		return runewidth.Truncate(str, width, "...")
	}
	return str + strings.Repeat(" ", width-w)
}

// PadLeft right-aligns str within width.
func PadLeft(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w >= width {
		return str
	}
	return strings.Repeat(" ", width-w) + str
}

// PadStyled renders str with st, padded or truncated to a display width.
// Padding stays outside the styled run so colored columns line up.
func PadStyled(st lipgloss.Style, str string, width int) string {
	w := runewidth.StringWidth(str)
	if w > width {
		return st.Render(runewidth.Truncate(str, width, "..."))
	}
	return st.Render(str) + strings.Repeat(" ", width-w)
}

// EntryLabel is the plain listing label; directories carry a trailing slash.
func EntryLabel(e models.DirectoryEntry) string {
	if e.IsDirectory {
		return e.Name + "/"
	}
	return e.Name
}

// EntryStyle picks the style for a listing entry.
func EntryStyle(e models.DirectoryEntry) lipgloss.Style {
	switch {
	case e.IsSymlink:
		return LinkStyle
	case e.IsDirectory:
		return DirStyle
	default:
		return FileStyle
	}
}

// EntryName renders a listing entry label.
func EntryName(e models.DirectoryEntry) string {
	return EntryStyle(e).Render(EntryLabel(e))
}

// Outcome colors text by how an operation ended.
func Outcome(o models.Outcome, text string) string {
	switch o {
	case models.OutcomeFull:
		return SuccessStyle.Render(text)
	case models.OutcomePartial:
		return WarnStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

// Mark renders a per-item success or failure marker.
func Mark(ok bool) string {
	if ok {
		return SuccessStyle.Render("✓")
	}
	return ErrorStyle.Render("✗")
}
