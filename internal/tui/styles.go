// Package tui holds the terminal theme, shared styles and interactive prompts.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Background lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
}

// DefaultTheme returns the default todolite theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#0b7285", Dark: "#66d9e8"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#5f6368", Dark: "#9aa0a6"},
		Success:    lipgloss.AdaptiveColor{Light: "#2b8a3e", Dark: "#8ce99a"},
		Warning:    lipgloss.AdaptiveColor{Light: "#e67700", Dark: "#ffd43b"},
		Error:      lipgloss.AdaptiveColor{Light: "#c92a2a", Dark: "#ff8787"},
		Muted:      lipgloss.AdaptiveColor{Light: "#868e96", Dark: "#6e7681"},
		Background: lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1f1f1f"},
		Foreground: lipgloss.AdaptiveColor{Light: "#212529", Dark: "#e9ecef"},
		Border:     lipgloss.AdaptiveColor{Light: "#dee2e6", Dark: "#3c4043"},
	}
}

// Styles holds the styled components for the list view.
type Styles struct {
	theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style

	Box      lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Help     lipgloss.Style

	StatusOK    lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
}

// NewStyles creates a new Styles with the resolved theme.
func NewStyles() *Styles {
	return NewStylesWithTheme(ResolveTheme())
}

// NewStylesWithTheme creates a new Styles with a custom theme.
func NewStylesWithTheme(theme Theme) *Styles {
	s := &Styles{theme: theme}

	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		MarginBottom(1)

	s.Subtitle = lipgloss.NewStyle().Foreground(theme.Secondary)
	s.Body = lipgloss.NewStyle().Foreground(theme.Foreground)
	s.Muted = lipgloss.NewStyle().Foreground(theme.Muted)
	s.Success = lipgloss.NewStyle().Foreground(theme.Success)
	s.Error = lipgloss.NewStyle().Foreground(theme.Error)

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	s.Selected = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Cursor = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Help = lipgloss.NewStyle().
		Foreground(theme.Muted).
		MarginTop(1)

	s.StatusOK = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	s.StatusError = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	s.StatusInfo = lipgloss.NewStyle().Foreground(theme.Primary)

	return s
}

// Theme returns the current theme.
func (s *Styles) Theme() Theme {
	return s.theme
}

// RenderStatus renders a status message with appropriate styling.
func (s *Styles) RenderStatus(ok bool, message string) string {
	if ok {
		return s.StatusOK.Render("✓ " + message)
	}
	return s.StatusError.Render("✗ " + message)
}

// RenderCheckbox renders a todo line with its completion box.
func (s *Styles) RenderCheckbox(checked bool, label string) string {
	if checked {
		return s.Muted.Render("[✓] " + label)
	}
	return s.Body.Render("[ ] " + label)
}
