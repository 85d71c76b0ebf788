package richtext

import (
	"strings"
	"testing"

	"github.com/todolite/todolite/internal/models"
)

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"buy milk", false},
		{"2 litres, semi-skimmed", false},
		{"# Heading", true},
		{"notes\n- first\n- second", true},
		{"see [docs](http://example.com)", true},
		{"**important**", true},
		{"1. step one", true},
		{"> quoted", true},
		{"- [ ] sub task", true},
		{"5 * 3 = 15", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsMarkdown(tt.input); got != tt.want {
				t.Errorf("IsMarkdown(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTaskDocumentWithoutDescription(t *testing.T) {
	doc := TaskDocument(models.Task{ID: 4, Title: "Buy *milk*"})

	if !strings.HasPrefix(doc, `# Buy \*milk\*`) {
		t.Errorf("title not escaped: %q", doc)
	}
	if !strings.Contains(doc, "`#4` · open") {
		t.Errorf("missing status line: %q", doc)
	}
	if !strings.Contains(doc, "*No description*") {
		t.Errorf("missing placeholder: %q", doc)
	}
}

func TestTaskDocumentPlainDescriptionKeepsLineBreaks(t *testing.T) {
	task := models.Task{ID: 1, Title: "A"}.WithDescription("line one\nline_two")
	doc := TaskDocument(task)

	if !strings.Contains(doc, "line one  \nline\\_two\n") {
		t.Errorf("unexpected body: %q", doc)
	}
}

func TestTaskDocumentMarkdownDescriptionVerbatim(t *testing.T) {
	task := models.Task{ID: 1, Title: "A", Completed: true}.WithDescription("- one\n- **two**")
	doc := TaskDocument(task)

	if !strings.Contains(doc, "- one\n- **two**\n") {
		t.Errorf("markdown not embedded verbatim: %q", doc)
	}
	if !strings.Contains(doc, "completed") {
		t.Errorf("missing completed status: %q", doc)
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	out, err := RenderMarkdown("")
	if err != nil || out != "" {
		t.Errorf("RenderMarkdown(\"\") = %q, %v", out, err)
	}
}

func TestRenderPlainHasNoEscapes(t *testing.T) {
	out, err := RenderPlain("# Title\n\nbody text", 40)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain render contains ANSI escapes: %q", out)
	}
	if !strings.Contains(out, "body text") {
		t.Errorf("missing body: %q", out)
	}
}
