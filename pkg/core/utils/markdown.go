package utils

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// MarkdownToHTML renders GitHub-flavoured markdown (tables included) to an HTML
// fragment. Raw HTML in the source is omitted.
func MarkdownToHTML(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// EscapeCell makes s safe inside a markdown table cell.
func EscapeCell(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '|':
			buf.WriteString(`\|`)
		case '\n', '\r':
			buf.WriteByte(' ')
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
