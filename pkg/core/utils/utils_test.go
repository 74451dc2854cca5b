package utils

import (
	"strings"
	"testing"
)

type sample struct {
	Category string  `json:"category"`
	Rank     float64 `json:"rank"`
}

func TestSmartParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"strict", `{"category": "Books", "rank": 500}`},
		{"trailing comma", `{"category": "Books", "rank": 500,}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s sample
			if _, err := SmartParse(tt.input, &s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Category != "Books" || s.Rank != 500 {
				t.Errorf("unexpected result %+v", s)
			}
		})
	}
}

func TestSmartParse_Empty(t *testing.T) {
	var s sample
	if _, err := SmartParse("   ", &s); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestMarkdownToHTML(t *testing.T) {
	html, err := MarkdownToHTML("| A | B |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<td>1</td>") {
		t.Errorf("expected table cells, got %s", html)
	}
}

func TestEscapeTableCell(t *testing.T) {
	if got := EscapeTableCell("a|b\nc"); got != `a\|b c` {
		t.Errorf("unexpected escape %q", got)
	}
}
