// Package richtext turns todos into Markdown documents and renders
// Markdown for terminal display using glamour.
package richtext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/todolite/todolite/internal/models"
)

// DefaultWidth is the wrap width used when the terminal width is unknown.
const DefaultWidth = 80

var markdownPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s`),            // Headings
	regexp.MustCompile(`\*\*[^*]+\*\*`),            // Bold
	regexp.MustCompile(`\*[^*\s][^*]*\*`),          // Italic
	regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),      // Links
	regexp.MustCompile("```"),                      // Code blocks
	regexp.MustCompile(`(?m)^\s*[-*+]\s`),          // Unordered list
	regexp.MustCompile(`(?m)^\s*\d+\.\s`),          // Ordered list
	regexp.MustCompile(`(?m)^>\s`),                 // Blockquote
	regexp.MustCompile(`(?m)^\s*[-*] \[[ xX]\]\s`), // Task list
}

// IsMarkdown reports whether s looks like Markdown rather than plain text.
// This is a heuristic.
func IsMarkdown(s string) bool {
	if s == "" {
		return false
	}
	for _, re := range markdownPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// TaskDocument builds the Markdown document shown by `todolite show`.
// Plain-text descriptions are kept as a single paragraph with line
// breaks preserved; Markdown descriptions are embedded verbatim.
func TaskDocument(task models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeInline(task.Title))

	status := "open"
	if task.Completed {
		status = "completed"
	}
	fmt.Fprintf(&b, "`#%d` · %s\n\n", task.ID, status)

	switch {
	case !task.HasDescription():
		b.WriteString("*No description*\n")
	case IsMarkdown(task.DescriptionText()):
		b.WriteString(task.DescriptionText())
		b.WriteString("\n")
	default:
		lines := strings.Split(strings.TrimSpace(task.DescriptionText()), "\n")
		for i, line := range lines {
			b.WriteString(escapeInline(line))
			if i < len(lines)-1 {
				b.WriteString("  ")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// escapeInline escapes characters that would start Markdown formatting.
func escapeInline(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"[", `\[`,
		"]", `\]`,
		"#", `\#`,
	)
	return r.Replace(s)
}

// RenderMarkdown renders Markdown for terminal display using glamour.
func RenderMarkdown(md string) (string, error) {
	return RenderMarkdownWithWidth(md, DefaultWidth)
}

// RenderMarkdownWithWidth renders Markdown for terminal display with a custom width.
func RenderMarkdownWithWidth(md string, width int) (string, error) {
	if md == "" {
		return "", nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(md)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

// RenderPlain renders Markdown with glamour's ASCII style, for output
// that must not carry ANSI escapes.
func RenderPlain(md string, width int) (string, error) {
	if md == "" {
		return "", nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("ascii"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
