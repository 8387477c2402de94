package listing

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/freedroid/freedroid/internal/models"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func names(entries []models.DirectoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func assertNames(t *testing.T, entries []models.DirectoryEntry, want []string) {
	t.Helper()
	if got := names(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %q, want %q", got, want)
	}
}

func TestParse_Sdcard(t *testing.T) {
	entries := Parse(readFixture(t, "sdcard.txt"), "/sdcard")

	assertNames(t, entries, []string{
		"Alarms", "Android", "DCIM", "Download",
		"music", "My Recording 01.m4a", "notes.txt",
	})

	byName := map[string]models.DirectoryEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}

	dcim := byName["DCIM"]
	if dcim.Path != "/sdcard/DCIM" || !dcim.IsDirectory || dcim.Size != 0 {
		t.Errorf("DCIM = %+v, want directory /sdcard/DCIM with size 0", dcim)
	}

	rec := byName["My Recording 01.m4a"]
	if rec.Size != 204800 || rec.Path != "/sdcard/My Recording 01.m4a" || rec.IsDirectory {
		t.Errorf("recording = %+v", rec)
	}

	// Directory-ness of links is left to the resolver
	link := byName["music"]
	if !link.IsSymlink || link.IsDirectory || link.Path != "/sdcard/music" {
		t.Errorf("music = %+v, want unresolved symlink", link)
	}
}

func TestParse_WellFormedCount(t *testing.T) {
	wellFormed := []string{
		"-rw-r--r-- 1 root root 10 2024-01-01 00:00 a.txt",
		"drwxr-xr-x 2 root root 4096 2024-01-01 00:00 dir one",
		"lrwxrwxrwx 1 root root 7 2024-01-01 00:00 l -> /x",
		"crw-rw-rw- 1 root root 0 2024-01-01 00:00 null",
		"prw------- 1 root root 0 2024-01-01 00:00 fifo",
	}
	malformed := []string{
		"total 12",
		"",
		"   ",
		"ls: /data: Permission denied",
		"-rw-r--r-- 1 root root 10 2024-01-01 00:00",
		"xrw-r--r-- 1 root root 10 2024-01-01 00:00 weird",
		"drwxr-xr-x 2 root root 4096 2024-01-01 00:00 .",
		"drwxr-xr-x 2 root root 4096 2024-01-01 00:00 ..",
	}

	var lines []string
	for i := 0; i < len(wellFormed) || i < len(malformed); i++ {
		if i < len(malformed) {
			lines = append(lines, malformed[i])
		}
		if i < len(wellFormed) {
			lines = append(lines, wellFormed[i])
		}
	}

	entries := Parse(strings.Join(lines, "\n"), "/data/local/tmp")
	if len(entries) != len(wellFormed) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wellFormed))
	}
	for _, e := range entries {
		if e.Name == "" || e.Name == "." || e.Name == ".." {
			t.Errorf("unexpected entry name %q", e.Name)
		}
	}
}

func TestParse_SortOrder(t *testing.T) {
	var b strings.Builder
	for _, d := range []string{"Zed", "apple", "Banana"} {
		fmt.Fprintf(&b, "drwxr-xr-x 2 u g 4096 2024-01-01 00:00 %s\n", d)
	}
	for _, f := range []string{"b.txt", "A.txt"} {
		fmt.Fprintf(&b, "-rw-r--r-- 1 u g 1 2024-01-01 00:00 %s\n", f)
	}

	assertNames(t, Parse(b.String(), "/sdcard"), []string{"apple", "Banana", "Zed", "A.txt", "b.txt"})
}

func TestSortEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.DirectoryEntry
		want    []string
	}{
		{
			name: "directories first",
			entries: []models.DirectoryEntry{
				{Name: "b.txt"},
				{Name: "Zed", IsDirectory: true},
				{Name: "A.txt"},
				{Name: "Banana", IsDirectory: true},
			},
			want: []string{"Banana", "Zed", "A.txt", "b.txt"},
		},
		{
			name:    "case tie break",
			entries: []models.DirectoryEntry{{Name: "readme"}, {Name: "README"}, {Name: "Readme"}},
			want:    []string{"README", "Readme", "readme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortEntries(tt.entries)
			assertNames(t, tt.entries, tt.want)
		})
	}
}

func TestParse_RootKeepsEverything(t *testing.T) {
	entries := Parse(readFixture(t, "root.txt"), "/")
	if len(entries) != 12 {
		t.Errorf("got %d entries, want 12", len(entries))
	}
}

// resolve marks the named symlinks as directories, as the device resolver would.
func resolve(entries []models.DirectoryEntry, dirs ...string) {
	for i := range entries {
		for _, d := range dirs {
			if entries[i].Name == d {
				entries[i].IsDirectory = true
			}
		}
	}
	SortEntries(entries)
}

func TestHideSystemDirs(t *testing.T) {
	t.Run("resolved links", func(t *testing.T) {
		entries := Parse(readFixture(t, "root.txt"), "/")
		resolve(entries, "d", "etc", "sdcard")

		got := HideSystemDirs("/", entries)
		assertNames(t, got, []string{"cache", "sdcard", "storage", "system", "init.rc"})
		if got[1].Path != "/sdcard" {
			t.Errorf("Path = %q, want /sdcard", got[1].Path)
		}
	})

	t.Run("files named like system dirs stay", func(t *testing.T) {
		out := "-rw-r--r-- 1 root root 100 2024-01-01 00:00 init.rc\n" +
			"-rw-r--r-- 1 root root 5 2024-01-01 00:00 d\n" +
			"drwxr-xr-x 2 root root 4096 2024-01-01 00:00 sdcard\n"
		got := HideSystemDirs("/", Parse(out, "/"))
		assertNames(t, got, []string{"sdcard", "d", "init.rc"})
	})

	t.Run("unresolved links stay as files", func(t *testing.T) {
		got := HideSystemDirs("/", Parse(readFixture(t, "root.txt"), "/"))
		assertNames(t, got, []string{"cache", "storage", "system", "d", "etc", "init.rc", "sdcard"})
	})

	t.Run("only at the root", func(t *testing.T) {
		entries := Parse(readFixture(t, "root.txt"), "/system")
		if got := HideSystemDirs("/system", entries); len(got) != 12 {
			t.Errorf("got %d entries, want 12", len(got))
		}
	})
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
		want Line
	}{
		{
			name: "file",
			raw:  "-rw-rw---- 1 u0_a1 media_rw 1534 2024-03-10 11:00 notes.txt",
			ok:   true,
			want: Line{Type: '-', Size: 1534, Name: "notes.txt"},
		},
		{
			name: "symlink with spaces in both sides",
			raw:  "lrwxrwxrwx 1 root root 9 2024-01-01 00:00 my link -> /x/some target",
			ok:   true,
			want: Line{Type: 'l', Size: 9, Name: "my link", Target: "/x/some target"},
		},
		{
			name: "arrow as the whole name",
			raw:  "-rw-r--r-- 1 root root 3 2024-01-01 00:00 -> b",
			ok:   true,
			want: Line{Type: '-', Size: 3, Name: "-> b"},
		},
		{
			name: "unparsable size",
			raw:  "brw------- 1 root root 7,0 2024-01-01 00:00 loop0",
			ok:   true,
			want: Line{Type: 'b', Size: 0, Name: "loop0"},
		},
		{
			name: "windows line ending",
			raw:  "-rw-r--r-- 1 root root 5 2024-01-01 00:00 a.txt\r",
			ok:   true,
			want: Line{Type: '-', Size: 5, Name: "a.txt"},
		},
		{name: "total", raw: "total 40", ok: false},
		{name: "too short", raw: "-rw-r--r-- 1 root root 5 2024-01-01", ok: false},
		{name: "dot", raw: "drwx------ 2 root root 0 2024-01-01 00:00 .", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	entries := Parse("total 0\n", "/sdcard/Empty")
	if entries == nil || len(entries) != 0 {
		t.Errorf("Parse(empty) = %#v, want empty non-nil slice", entries)
	}
}

func TestIsSystemDir(t *testing.T) {
	if !IsSystemDir("proc") {
		t.Error("proc should be a system dir")
	}
	if IsSystemDir("sdcard") {
		t.Error("sdcard should not be a system dir")
	}
}
