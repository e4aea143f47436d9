package diagnose

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	page := []byte(`<html><head><title>Access denied</title><script>var x=1;</script></head>` +
		`<body><div class="day-number" data-date="01/11/2023"></div>` +
		`<div class="performance-row"></div></body></html>`)

	got := Summarize(page)
	for _, want := range []string{`title="Access denied"`, "day_cells=1", "performance_rows=1", "scripts=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

func TestSummarizeEmptyPage(t *testing.T) {
	got := Summarize([]byte(""))
	if !strings.Contains(got, "<no title>") {
		t.Errorf("summary %q should note the missing title", got)
	}
}
