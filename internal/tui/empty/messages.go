// Package empty provides empty state messages for TUI components.
package empty

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/todolite/todolite/internal/tui"
)

// Message represents an empty state message with optional hints.
type Message struct {
	Title string
	Body  string
	Hints []string
}

// NoTodos returns the empty state for a list with nothing open.
// addKey is the key bound to adding a todo.
func NoTodos(addKey string) Message {
	msg := Message{
		Title: "Nothing to do",
		Body:  "Every todo is done.",
	}
	if addKey != "" {
		msg.Hints = []string{"Press " + addKey + " to add a todo."}
	}
	return msg
}

// Unreachable returns the error state shown when the list never loaded.
func Unreachable(refreshKey string) Message {
	msg := Message{
		Title: "Connection error",
		Body:  "Could not reach the todos server.",
		Hints: []string{"Check that the server is running"},
	}
	if refreshKey != "" {
		msg.Hints = append(msg.Hints, "Press "+refreshKey+" to try again")
	}
	return msg
}

// Render lays the message out as a title, a muted body and indented hints.
func Render(theme tui.Theme, msg Message) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Foreground)
	bodyStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	hintStyle := lipgloss.NewStyle().Foreground(theme.Secondary)

	lines := []string{titleStyle.Render(msg.Title)}
	if msg.Body != "" {
		lines = append(lines, bodyStyle.Render(msg.Body))
	}
	if len(msg.Hints) > 0 {
		lines = append(lines, "")
		for _, hint := range msg.Hints {
			lines = append(lines, hintStyle.Render("  "+hint))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
