package style

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/freedroid/freedroid/internal/models"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"right ascii", PadRight("abc", 5), "abc  "},
		{"right wide runes count double", PadRight("照片", 6), "照片  "},
		{"left", PadLeft("1.5 KB", 8), "  1.5 KB"},
		{"left too long", PadLeft("toolong", 3), "toolong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if w := runewidth.StringWidth(PadRight("a-very-long-name.txt", 8)); w != 8 {
		t.Errorf("truncated width = %d, want 8", w)
	}
}

func TestEntryName(t *testing.T) {
	if dir := EntryName(models.DirectoryEntry{Name: "DCIM", IsDirectory: true}); !strings.Contains(dir, "DCIM/") {
		t.Errorf("directory name %q should end in a slash", dir)
	}
	file := EntryName(models.DirectoryEntry{Name: "notes.txt"})
	if !strings.Contains(file, "notes.txt") || strings.Contains(file, "/") {
		t.Errorf("file name = %q", file)
	}
}

func TestPadStyled(t *testing.T) {
	if w := runewidth.StringWidth(PadStyled(FileStyle, "a.txt", 8)); w != 8 {
		t.Errorf("width = %d, want 8", w)
	}
	if out := PadStyled(FileStyle, "a-very-long-name.txt", 8); !strings.Contains(out, "...") {
		t.Errorf("long name %q should be truncated with an ellipsis", out)
	}
}
