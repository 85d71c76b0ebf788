package workspace

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/todolite/todolite/internal/view"
)

// RenderMsg carries a page projected by the controller.
type RenderMsg struct {
	Page view.Page
}

// ReportMsg carries an error surfaced by the controller.
type ReportMsg struct {
	Err error
}

// intentDoneMsg marks the end of one dispatched intent.
type intentDoneMsg struct {
	err   error
	label string
}

// statusClearMsg expires a status line set at generation gen.
type statusClearMsg struct {
	gen int
}

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}
