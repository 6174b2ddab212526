package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Growth float64 `json:"growth"`
	WACC   float64 `json:"wacc"`
	Name   string  `json:"name"`
}

func TestSmartDecode(t *testing.T) {
	base := params{Growth: 0.15, WACC: 0.12, Name: "default"}

	tests := []struct {
		name  string
		input string
		want  params
	}{
		{"empty keeps base", "  ", base},
		{"strict json", `{"growth": 0.2}`, params{Growth: 0.2, WACC: 0.12, Name: "default"}},
		{"trailing comma", `{"growth": 0.2, "wacc": 0.1,}`, params{Growth: 0.2, WACC: 0.1, Name: "default"}},
		{"hjson", "{\n  # comment\n  name: custom\n  wacc: 0.1\n}", params{Growth: 0.15, WACC: 0.1, Name: "custom"}},
		{"unquoted keys keep float64", "{wacc: 0.11}", params{Growth: 0.15, WACC: 0.11, Name: "default"}},
		{"quoted trailing comma keeps float64", `{"wacc": 0.11,}`, params{Growth: 0.15, WACC: 0.11, Name: "default"}},
		{"comment before string", "{\n # note\n name: cash_flow\n wacc: 0.09\n}", params{Growth: 0.15, WACC: 0.09, Name: "cash_flow"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SmartDecode(tt.input, base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSmartDecodeFailureKeepsBase(t *testing.T) {
	base := params{Growth: 0.15}
	got, err := SmartDecode(`{"growth": "fast"}`, base)
	assert.Error(t, err)
	assert.Equal(t, base, got)
}

func TestMarkdownToHTML(t *testing.T) {
	out, err := MarkdownToHTML([]byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<table>")
	assert.True(t, strings.Contains(html, "<td>1</td>"))
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `a \| b c`, EscapeCell("a | b\nc"))
}
