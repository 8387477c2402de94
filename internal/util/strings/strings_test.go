package strings

import "testing"

func TestPluralize(t *testing.T) {
	tests := []struct {
		word     string
		count    int64
		expected string
	}{
		{"file", 0, "files"},
		{"file", 1, "file"},
		{"file", 2, "files"},
		{"device", 1, "device"},
	}
	for _, tt := range tests {
		if got := Pluralize(tt.word, tt.count); got != tt.expected {
			t.Errorf("Pluralize(%q, %d) = %q, want %q", tt.word, tt.count, got, tt.expected)
		}
	}
}

func TestCount(t *testing.T) {
	if got := Count(1, "file"); got != "1 file" {
		t.Errorf("Count(1) = %q", got)
	}
	if got := Count(12, "item"); got != "12 items" {
		t.Errorf("Count(12) = %q", got)
	}
}
