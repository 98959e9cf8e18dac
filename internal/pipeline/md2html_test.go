package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIsMarkdownName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"report.md", true},
		{"notes/REPORT.MD", true},
		{"letter.markdown", true},
		{"invoice.html", false},
		{"md", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsMarkdownName(tt.name); got != tt.want {
			t.Errorf("IsMarkdownName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	conv := NewGoldmarkConverter()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "heading with id",
			input:        "# Hello World",
			wantContains: []string{"<h1", `id="hello-world"`, "Hello World</h1>"},
			wantNot:      []string{"<!DOCTYPE", "<html"},
		},
		{
			name:         "hard wraps",
			input:        "Line one\nLine two",
			wantContains: []string{"<p>Line one<br />", "Line two</p>"},
		},
		{
			name:         "GFM table",
			input:        "| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<th>A</th>", "<td>1</td>"},
		},
		{
			name:         "raw html passes through",
			input:        "<div class=\"total\">42</div>",
			wantContains: []string{`<div class="total">42</div>`},
		},
		{
			name:         "code block highlighted inline",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{"<pre", "style="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() missing %q in %q", want, got)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(got, not) {
					t.Errorf("ToHTML() should not contain %q", not)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}
