package validation

import (
	"path/filepath"
	"testing"
)

func TestValidateEntryName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "IMG_0001.jpg", false},
		{"spaces", "My Recording 01.m4a", false},
		{"double dots inside", "data..v2.csv", false},
		{"hidden", ".nomedia", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"slash", "DCIM/a.jpg", true},
		{"backslash", `a\b`, true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntryName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRemoteRelative(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"a.txt", false},
		{"sub/b.txt", false},
		{"sub/../b.txt", false},
		{"", true},
		{"/etc/passwd", true},
		{"../x", true},
		{"sub/../../x", true},
		{".", true},
	}

	for _, tt := range tests {
		err := ValidateRemoteRelative(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRemoteRelative(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidatePathInDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "Pulled")

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"direct child", "a.txt", false},
		{"nested", filepath.Join("DCIM", "Camera", "a.jpg"), false},
		{"absolute inside", filepath.Join(base, "DCIM", "a.jpg"), false},
		{"base itself", base, false},
		{"parent", "..", true},
		{"climb out", filepath.Join("..", "..", "etc", "passwd"), true},
		{"absolute outside", filepath.Join(filepath.Dir(base), "elsewhere"), true},
		{"sibling with prefix", base + "-evil", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathInDirectory(tt.path, base)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathInDirectory(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}

	if err := ValidatePathInDirectory("a", ""); err == nil {
		t.Error("Expected error for empty base directory")
	}
}
