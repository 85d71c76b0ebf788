package workspace

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/todolite/todolite/internal/tui"
)

// statusBar renders the bottom line: key hints on the left, the latest
// status or the page position on the right.
type statusBar struct {
	styles   *tui.Styles
	width    int
	status   string
	isError  bool
	page     int
	pages    int
	keyHints []key.Binding
}

func newStatusBar(styles *tui.Styles, hints []key.Binding) statusBar {
	return statusBar{styles: styles, keyHints: hints, page: 1, pages: 1}
}

func (s *statusBar) SetStatus(text string, isError bool) {
	s.status = text
	s.isError = isError
}

func (s *statusBar) ClearStatus() {
	s.status = ""
	s.isError = false
}

func (s *statusBar) SetPage(page, pages int) {
	s.page, s.pages = page, pages
}

func (s statusBar) View() string {
	theme := s.styles.Theme()

	var hints []string
	for _, k := range s.keyHints {
		if !k.Enabled() {
			continue
		}
		h := k.Help()
		hints = append(hints,
			lipgloss.NewStyle().Foreground(theme.Primary).Render(h.Key)+
				lipgloss.NewStyle().Foreground(theme.Muted).Render(" "+h.Desc))
	}
	left := strings.Join(hints, "  ")

	var right string
	switch {
	case s.status != "" && s.isError:
		right = s.styles.Error.Render(s.status)
	case s.status != "":
		right = s.styles.Success.Render(s.status)
	case s.pages > 1:
		right = s.styles.Muted.Render(fmt.Sprintf("page %d/%d", s.page, s.pages))
	}

	if s.width <= 0 {
		if right == "" {
			return left
		}
		return left + "  " + right
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}
