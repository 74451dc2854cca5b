package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// MarkdownToHTML converts Markdown (GFM tables enabled) to an HTML fragment.
func MarkdownToHTML(input string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("MARKDOWN_RENDER_FAILED: %v", err)
	}
	return buf.String(), nil
}

// EscapeTableCell makes a value safe to place inside a Markdown table cell.
func EscapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
