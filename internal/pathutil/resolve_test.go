package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/Pulled", filepath.Join(home, "Pulled")},
		{"~other/x", "~other/x"},
		{"/abs/~/x", "/abs/~/x"},
		{"rel", "rel"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Errorf("ExpandHome(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveDestination_MissingTail(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ResolveDestination("~/freedroid-does-not-exist/Pulled")
	if err != nil {
		t.Fatalf("ResolveDestination failed: %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join("freedroid-does-not-exist", "Pulled")) {
		t.Errorf("got %q, want the missing tail kept", got)
	}
	resolvedHome, _ := filepath.EvalSymlinks(home)
	if !strings.HasPrefix(got, resolvedHome) && !strings.HasPrefix(got, home) {
		t.Errorf("got %q, want it under %q", got, home)
	}
}

func TestResolve_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(base, "real")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	dest, err := ResolveDestination(filepath.Join(link, "new", "dir"))
	if err != nil {
		t.Fatalf("ResolveDestination failed: %v", err)
	}
	if want := filepath.Join(target, "new", "dir"); dest != want {
		t.Errorf("ResolveDestination = %q, want %q", dest, want)
	}

	// Sources keep the link's own name
	srcs := ResolveSources([]string{link, filepath.Join(link, "..", "real")})
	if srcs[0] != link {
		t.Errorf("ResolveSources[0] = %q, want %q", srcs[0], link)
	}
	if srcs[1] != target {
		t.Errorf("ResolveSources[1] = %q, want %q", srcs[1], target)
	}
}

func TestResolveSources_Relative(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got := ResolveSources([]string{"missing.bin", ""})
	if want := filepath.Join(wd, "missing.bin"); got[0] != want {
		t.Errorf("ResolveSources[0] = %q, want %q", got[0], want)
	}
	if got[1] != wd {
		t.Errorf("ResolveSources[1] = %q, want %q", got[1], wd)
	}
}
