// Package workspace provides the interactive full-screen todo list.
package workspace

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/data"
	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/tui"
	"github.com/todolite/todolite/internal/tui/empty"
	"github.com/todolite/todolite/internal/view"
)

// StatusDuration is how long a status message stays on the status bar.
const StatusDuration = 4 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeDescribe
	modeConfirmDelete
)

// Model is the bubbletea model for the todo list. Every change goes through
// the controller as an intent; the model only draws what the controller
// renders.
type Model struct {
	ctx    context.Context
	ctrl   *data.Controller
	styles *tui.Styles
	log    logrus.FieldLogger
	keys   KeyMap

	page   view.Page
	cursor int
	mode   mode
	target models.Task

	// unreachable is set when a network failure left the list empty.
	unreachable bool

	input     textinput.Model
	spinner   spinner.Model
	pager     paginator.Model
	help      help.Model
	status    statusBar
	statusGen int
	pending   int

	width, height int
}

// Option configures a Model.
type Option func(*Model)

// WithStyles sets the styles.
func WithStyles(s *tui.Styles) Option {
	return func(m *Model) {
		if s != nil {
			m.styles = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithKeyMap replaces the default keybindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// New creates a model over ctrl. Intents run with ctx.
func New(ctx context.Context, ctrl *data.Controller, opts ...Option) *Model {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	m := &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		styles: tui.NewStyles(),
		log:    discard,
		keys:   DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}

	ti := textinput.New()
	ti.Width = 50
	ti.CharLimit = 500
	m.input = ti

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(m.styles.Theme().Primary)
	m.spinner = s

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = m.styles.Selected.Render("•")
	p.InactiveDot = m.styles.Muted.Render("•")
	m.pager = p

	m.help = help.New()
	m.status = newStatusBar(m.styles, m.keys.ShortHelp())

	m.setPage(ctrl.Page())
	return m
}

// Attach routes the controller's renders and reports into s.
func (m *Model) Attach(s Sender) {
	m.ctrl.SetListener(data.ListenerFuncs{
		OnRender: func(p view.Page) { s.Send(RenderMsg{Page: p}) },
		OnReport: func(err error) { s.Send(ReportMsg{Err: err}) },
	})
}

// Init starts the spinner and pulls the list.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.dispatch(data.RefreshIntent{}, ""))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.status.width = msg.Width
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil

	case RenderMsg:
		m.unreachable = false
		m.setPage(msg.Page)
		return m, nil

	case ReportMsg:
		m.log.WithError(msg.Err).Debug("reported")
		if m.page.Empty && output.AsError(msg.Err).Code == output.CodeNetwork {
			m.unreachable = true
		}
		return m, m.setStatus(msg.Err.Error(), true)

	case intentDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.err == nil && msg.label != "" {
			return m, m.setStatus(msg.label, false)
		}
		return m, nil

	case statusClearMsg:
		if msg.gen == m.statusGen {
			m.status.ClearStatus()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == modeBrowse {
			return m, m.handleKey(msg)
		}
		if m.mode == modeConfirmDelete {
			return m, m.handleConfirmKey(msg)
		}
		return m, m.handleInputKey(msg)
	}

	if m.mode != modeBrowse && m.mode != modeConfirmDelete {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.page.Items)-1 {
			m.cursor++
		}
		return nil
	case key.Matches(msg, m.keys.PrevPage):
		if !m.page.HasPrev() {
			return nil
		}
		return m.dispatch(data.ChangePageIntent{Page: m.page.Number - 1}, "")
	case key.Matches(msg, m.keys.NextPage):
		if !m.page.HasNext() {
			return nil
		}
		return m.dispatch(data.ChangePageIntent{Page: m.page.Number + 1}, "")
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(data.RefreshIntent{}, "Refreshed")
	case key.Matches(msg, m.keys.Add):
		return m.startInput(modeAdd, models.Task{}, "New todo: ", "")
	}

	task, ok := m.selected()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m.dispatch(data.ToggleIntent{ID: task.ID}, "Completed")
	case key.Matches(msg, m.keys.Edit):
		return m.startInput(modeEdit, task, "Title: ", task.Title)
	case key.Matches(msg, m.keys.Describe):
		return m.startInput(modeDescribe, task, "Notes: ", task.DescriptionText())
	case key.Matches(msg, m.keys.Delete):
		m.mode = modeConfirmDelete
		m.target = task
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		return nil
	case tea.KeyEnter:
		value := m.input.Value()
		md, target := m.mode, m.target
		m.endInput()
		switch md {
		case modeAdd:
			if strings.TrimSpace(value) == "" {
				return nil
			}
			return m.dispatch(data.CreateIntent{Text: value}, "Added")
		case modeEdit:
			if strings.TrimSpace(value) == "" {
				return nil
			}
			return m.dispatch(data.EditIntent{ID: target.ID, Title: &value}, "Saved")
		case modeDescribe:
			return m.dispatch(data.DescribeIntent{ID: target.ID, Text: value}, "Notes saved")
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	target := m.target
	m.mode = modeBrowse
	m.target = models.Task{}
	if msg.String() != "y" && msg.String() != "Y" {
		return nil
	}
	return m.dispatch(data.DeleteIntent{ID: target.ID}, "Deleted")
}

func (m *Model) startInput(md mode, target models.Task, prompt, value string) tea.Cmd {
	m.mode = md
	m.target = target
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = modeBrowse
	m.target = models.Task{}
	m.input.Blur()
	m.input.Reset()
}

// dispatch runs in off the event loop. The controller reports through the
// attached listener; label is shown when the intent succeeds.
func (m *Model) dispatch(in data.Intent, label string) tea.Cmd {
	m.pending++
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return intentDoneMsg{err: ctrl.Dispatch(ctx, in), label: label}
	}
}

func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.statusGen++
	gen := m.statusGen
	m.status.SetStatus(text, isError)
	return tea.Tick(StatusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{gen: gen}
	})
}

func (m *Model) setPage(p view.Page) {
	m.page = p
	m.pager.PerPage = max(p.Size, 1)
	m.pager.TotalPages = max(p.TotalPages, 1)
	m.pager.Page = p.Number - 1
	m.status.SetPage(p.Number, p.TotalPages)
	if m.cursor >= len(p.Items) {
		m.cursor = max(len(p.Items)-1, 0)
	}
}

func (m *Model) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Items) {
		return models.Task{}, false
	}
	return m.page.Items[m.cursor], true
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	title := "Todos"
	if m.page.TotalItems > 0 {
		title = fmt.Sprintf("Todos (%d)", m.page.TotalItems)
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	switch {
	case m.unreachable:
		b.WriteString(empty.Render(m.styles.Theme(), empty.Unreachable(m.keys.Refresh.Help().Key)))
		b.WriteString("\n")
	case m.page.Empty:
		b.WriteString(empty.Render(m.styles.Theme(), empty.NoTodos(m.keys.Add.Help().Key)))
		b.WriteString("\n")
	}
	for i, task := range m.page.Items {
		b.WriteString(m.renderItem(i, task))
		b.WriteString("\n")
	}

	if m.page.TotalPages > 1 {
		b.WriteString("\n  ")
		b.WriteString(m.pager.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeAdd, modeEdit, modeDescribe:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeConfirmDelete:
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Delete %q? (y/N)", m.target.Title)))
		b.WriteString("\n")
	}

	if m.pending > 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Muted.Render(" syncing"))
		b.WriteString("\n")
	}

	b.WriteString(m.status.View())
	if m.help.ShowAll {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) renderItem(i int, task models.Task) string {
	label := task.Title
	if task.HasDescription() {
		label += m.styles.Muted.Render(" ≡")
	}
	line := m.styles.RenderCheckbox(task.Completed, label)

	cursor := "  "
	if i == m.cursor && m.mode == modeBrowse {
		cursor = m.styles.Cursor.Render("> ")
	}
	out := cursor + line

	if i == m.cursor && task.HasDescription() {
		desc := strings.ReplaceAll(task.DescriptionText(), "\n", " ")
		if m.width > 8 {
			desc = ansi.Truncate(desc, m.width-8, "…")
		}
		out += "\n      " + m.styles.Muted.Render(desc)
	}
	return out
}
