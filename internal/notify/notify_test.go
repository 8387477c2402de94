package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/freedroid/freedroid/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("Expected Enabled to be true by default")
	}
	if !cfg.ShowBatchComplete {
		t.Error("Expected ShowBatchComplete to be true by default")
	}
	if !cfg.ShowBatchFailed {
		t.Error("Expected ShowBatchFailed to be true by default")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestShortenPath(t *testing.T) {
	long := "/home/user/Pulled/a/very/long/path/that/exceeds/the/maximum/length/IMG_0001.jpg"
	if got := shortenPath("/short/path"); got != "/short/path" {
		t.Errorf("short path changed: %q", got)
	}
	got := shortenPath(long)
	if len(got) >= len(long) {
		t.Errorf("shortenPath(%q) was not shortened: %q", long, got)
	}
	if !strings.HasSuffix(got, "IMG_0001.jpg") {
		t.Errorf("shortened path lost the file name: %q", got)
	}
}

func TestSetEnabled(t *testing.T) {
	n := NewNotifier(nil, nil)
	if !n.IsEnabled() {
		t.Error("Expected initially enabled")
	}

	n.SetEnabled(false)
	if n.IsEnabled() {
		t.Error("Expected disabled after SetEnabled(false)")
	}

	n.SetEnabled(true)
	if !n.IsEnabled() {
		t.Error("Expected enabled after SetEnabled(true)")
	}
}

type sent struct{ title, message string }

func capture(n *Notifier) *[]sent {
	var out []sent
	n.send = func(title, message string) error {
		out = append(out, sent{title, message})
		return nil
	}
	return &out
}

func summary(outcome models.Outcome, success, failed int) *models.OperationSummary {
	results := make([]models.TransferResult, 0, success+failed)
	for i := 0; i < success; i++ {
		results = append(results, models.TransferResult{FileName: "ok", Success: true})
	}
	for i := 0; i < failed; i++ {
		results = append(results, models.TransferResult{FileName: "bad", Error: "Pull failed"})
	}
	s := &models.OperationSummary{
		BatchID:   "b1",
		Direction: models.DirectionPull,
		Totals:    models.NewBatchResult("/home/user/Pulled", results),
		Outcome:   outcome,
	}
	if failed > 0 {
		s.Items = []models.ItemSummary{{Name: "bad.jpg", Error: "Pull failed"}}
	}
	return s
}

func TestBatchComplete_Titles(t *testing.T) {
	tests := []struct {
		name    string
		summary *models.OperationSummary
		title   string
	}{
		{"full", summary(models.OutcomeFull, 2, 0), "Transfer complete"},
		{"partial", summary(models.OutcomePartial, 1, 1), "Transfer finished with errors"},
		{"failed", summary(models.OutcomeFailed, 0, 2), "Transfer failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNotifier(nil, nil)
			out := capture(n)
			n.BatchComplete(tt.summary)

			if len(*out) != 1 {
				t.Fatalf("expected one notification, got %d", len(*out))
			}
			got := (*out)[0]
			if got.title != tt.title {
				t.Errorf("title = %q, want %q", got.title, tt.title)
			}
			if !strings.Contains(got.message, "/home/user/Pulled") {
				t.Errorf("message missing destination: %q", got.message)
			}
		})
	}
}

func TestBatchComplete_FirstErrorIncluded(t *testing.T) {
	n := NewNotifier(nil, nil)
	out := capture(n)
	n.BatchComplete(summary(models.OutcomePartial, 1, 1))

	if !strings.Contains((*out)[0].message, "bad.jpg: Pull failed") {
		t.Errorf("message missing first error: %q", (*out)[0].message)
	}
}

func TestBatchComplete_Filtering(t *testing.T) {
	n := NewNotifier(&Config{Enabled: true, ShowBatchComplete: false, ShowBatchFailed: true}, nil)
	out := capture(n)

	n.BatchComplete(summary(models.OutcomeFull, 1, 0))
	n.BatchComplete(summary(models.OutcomeFailed, 0, 1))
	n.BatchComplete(nil)

	if len(*out) != 1 || (*out)[0].title != "Transfer failed" {
		t.Errorf("expected only the failure notification, got %+v", *out)
	}
}

func TestBatchComplete_SendErrorIsLogged(t *testing.T) {
	n := NewNotifier(nil, nil)
	n.send = func(title, message string) error { return errors.New("no dbus") }
	// Must not panic; the error is only logged
	n.BatchComplete(summary(models.OutcomeFull, 1, 0))
}

func TestNotifierDisabled_NoSend(t *testing.T) {
	n := NewNotifier(&Config{Enabled: false}, nil)
	out := capture(n)

	n.BatchComplete(summary(models.OutcomeFull, 1, 0))
	n.Alert("test alert")

	if len(*out) != 0 {
		t.Errorf("disabled notifier sent %d notifications", len(*out))
	}
}
