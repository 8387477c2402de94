package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/style"
	"github.com/freedroid/freedroid/internal/util/format"
)

// maxFailuresShown caps the per-directory failure lines in a summary.
const maxFailuresShown = 5

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEntries renders a directory listing as aligned columns.
func printEntries(w io.Writer, dir string, entries []models.DirectoryEntry) {
	fmt.Fprintln(w, style.TitleStyle.Render(dir))
	if len(entries) == 0 {
		fmt.Fprintln(w, style.HelpStyle.Render("  (empty)"))
		return
	}

	nameWidth := 0
	for _, e := range entries {
		if n := runewidth.StringWidth(style.EntryLabel(e)); n > nameWidth {
			nameWidth = n
		}
	}
	if nameWidth > 48 {
		nameWidth = 48
	}

	for _, e := range entries {
		size := ""
		if !e.IsDirectory {
			size = format.Bytes(e.Size)
		} else if e.Size > 0 {
			size = "~" + format.Bytes(e.Size)
		}
		name := style.PadStyled(style.EntryStyle(e), style.EntryLabel(e), nameWidth)
		fmt.Fprintf(w, "  %s  %s\n", name, style.SizeStyle.Render(style.PadLeft(size, 12)))
	}
}

// printSummary renders an operation summary.
func printSummary(w io.Writer, s *models.OperationSummary, elapsed time.Duration) {
	for _, item := range s.Items {
		line := fmt.Sprintf("  %s %s", style.Mark(item.Success), item.Label())
		if !item.Success && item.Error != "" {
			line += style.ErrorStyle.Render(": " + item.Error)
		}
		fmt.Fprintln(w, line)

		if item.IsDirectory && item.Batch != nil && item.Batch.FailedCount > 0 {
			shown := 0
			for _, r := range item.Batch.Results {
				if r.Success {
					continue
				}
				if shown == maxFailuresShown {
					fmt.Fprintln(w, style.HelpStyle.Render(fmt.Sprintf("      ... %d more", item.Batch.FailedCount-shown)))
					break
				}
				fmt.Fprintf(w, "      %s %s%s\n", style.Mark(false), r.FileName, style.ErrorStyle.Render(": "+r.Error))
				shown++
			}
		}
	}

	fmt.Fprintln(w, style.Outcome(s.Outcome, s.Headline())+style.HelpStyle.Render(fmt.Sprintf(" in %s", elapsed.Round(time.Millisecond))))
	if s.Direction == models.DirectionPull && s.Totals != nil && s.Totals.DestinationRoot != "" {
		fmt.Fprintf(w, "Destination: %s\n", s.Totals.DestinationRoot)
	}
}
