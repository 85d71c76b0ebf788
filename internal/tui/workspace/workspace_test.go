package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todolite/todolite/internal/data"
	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/tui"
)

type memRemote struct {
	mu      sync.Mutex
	todos   []models.Task
	next    int64
	failPut bool
	listErr error
}

func (r *memRemote) List(context.Context) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]models.Task(nil), r.todos...), nil
}

func (r *memRemote) Create(_ context.Context, title string, desc *string) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	t := models.Task{ID: r.next, Title: title, Description: desc}
	r.todos = append(r.todos, t)
	return t, nil
}

func (r *memRemote) Update(_ context.Context, id int64, task models.Task) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPut {
		return models.Task{}, output.ErrAPI(500, "boom")
	}
	for i := range r.todos {
		if r.todos[i].ID == id {
			task.ID = id
			r.todos[i] = task
			return task, nil
		}
	}
	return models.Task{}, output.ErrNotFound("todo", "x")
}

func (r *memRemote) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.todos {
		if r.todos[i].ID == id {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return nil
		}
	}
	return output.ErrNotFound("todo", "x")
}

// inbox collects listener messages the way a running program would.
type inbox struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (b *inbox) Send(msg tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
}

func (b *inbox) drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.msgs
	b.msgs = nil
	return out
}

type harness struct {
	t      *testing.T
	remote *memRemote
	model  *Model
	inbox  *inbox
}

func newHarness(t *testing.T, titles ...string) *harness {
	t.Helper()
	remote := &memRemote{}
	for _, title := range titles {
		_, _ = remote.Create(context.Background(), title, nil)
	}
	ctrl := data.NewController(remote, nil, data.WithPageSize(2))
	h := &harness{
		t:      t,
		remote: remote,
		model:  New(context.Background(), ctrl, WithStyles(tui.NewStyles())),
		inbox:  &inbox{},
	}
	h.model.Attach(h.inbox)
	h.run(h.model.dispatch(data.RefreshIntent{}, ""))
	return h
}

// run executes an intent command synchronously and feeds the listener
// messages and the completion back into the model. Timer commands returned
// by Update are not executed.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	require.NotNil(h.t, cmd)
	done := cmd()
	for _, msg := range h.inbox.drain() {
		h.model.Update(msg)
	}
	h.model.Update(done)
}

func (h *harness) press(k string) tea.Cmd {
	_, cmd := h.model.Update(keyMsg(k))
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func titles(m *Model) []string {
	out := make([]string, len(m.page.Items))
	for i, t := range m.page.Items {
		out[i] = t.Title
	}
	return out
}

func TestInitialRefreshRendersFirstPage(t *testing.T) {
	h := newHarness(t, "A", "B", "C")

	assert.Equal(t, []string{"A", "B"}, titles(h.model))
	assert.Equal(t, 2, h.model.page.TotalPages)
	assert.Zero(t, h.model.pending)
	assert.Contains(t, h.model.View(), "Todos (3)")
}

func TestEmptyListShowsPlaceholder(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.model.page.Empty)
	assert.Contains(t, h.model.View(), "Nothing to do")
}

func TestUnreachableServerShowsConnectionError(t *testing.T) {
	h := newHarness(t)
	h.remote.mu.Lock()
	h.remote.listErr = output.ErrNetwork(errors.New("connection refused"))
	h.remote.mu.Unlock()

	h.run(h.press("r"))
	assert.True(t, h.model.unreachable)
	assert.Contains(t, h.model.View(), "Connection error")
	assert.Contains(t, h.model.View(), "Press r to try again")

	h.remote.mu.Lock()
	h.remote.listErr = nil
	h.remote.mu.Unlock()

	h.run(h.press("r"))
	assert.False(t, h.model.unreachable)
	assert.Contains(t, h.model.View(), "Nothing to do")
}

func TestServerErrorKeepsEmptyState(t *testing.T) {
	h := newHarness(t)
	h.remote.mu.Lock()
	h.remote.listErr = output.ErrAPI(500, "boom")
	h.remote.mu.Unlock()

	h.run(h.press("r"))
	assert.False(t, h.model.unreachable)
	assert.Contains(t, h.model.View(), "Nothing to do")
}

func TestAddCreatesTodo(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	assert.Equal(t, modeAdd, h.model.mode)
	h.typeText("Buy milk")
	h.run(h.press("enter"))

	assert.Equal(t, modeBrowse, h.model.mode)
	assert.Equal(t, []string{"Buy milk"}, titles(h.model))
	assert.Equal(t, "Added", h.model.status.status)
}

func TestAddBlankIsIgnored(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	h.typeText("   ")
	assert.Nil(t, h.press("enter"))
	assert.Equal(t, modeBrowse, h.model.mode)
}

func TestEscCancelsInput(t *testing.T) {
	h := newHarness(t, "A")

	h.press("e")
	h.typeText("zzz")
	assert.Nil(t, h.press("esc"))
	assert.Equal(t, modeBrowse, h.model.mode)
	assert.Equal(t, []string{"A"}, titles(h.model))
}

func TestToggleRemovesSelectedTodo(t *testing.T) {
	h := newHarness(t, "A", "B")

	h.press("j")
	h.run(h.press("x"))

	assert.Equal(t, []string{"A"}, titles(h.model))
	assert.Equal(t, 0, h.model.cursor, "cursor clamps to the shorter page")
}

func TestEditRenamesTodo(t *testing.T) {
	h := newHarness(t, "A")

	h.press("e")
	assert.Equal(t, "A", h.model.input.Value())
	h.model.input.SetValue("Renamed")
	h.run(h.press("enter"))

	assert.Equal(t, []string{"Renamed"}, titles(h.model))
}

func TestDescribeSetsNotes(t *testing.T) {
	h := newHarness(t, "A")

	h.press("n")
	h.typeText("two litres")
	h.run(h.press("enter"))

	require.Len(t, h.model.page.Items, 1)
	assert.Equal(t, "two litres", h.model.page.Items[0].DescriptionText())
	assert.Contains(t, h.model.View(), "two litres")
}

func TestDescribeBlankReportsError(t *testing.T) {
	h := newHarness(t, "A")

	h.press("n")
	h.run(h.press("enter"))

	assert.True(t, h.model.status.isError)
	assert.NotEmpty(t, h.model.status.status)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, "A", "B")

	h.press("d")
	assert.Equal(t, modeConfirmDelete, h.model.mode)
	assert.Contains(t, h.model.View(), `Delete "A"?`)
	assert.Nil(t, h.press("n"))
	assert.Equal(t, []string{"A", "B"}, titles(h.model))

	h.press("d")
	h.run(h.press("y"))
	assert.Equal(t, []string{"B"}, titles(h.model))
}

func TestPageNavigation(t *testing.T) {
	h := newHarness(t, "A", "B", "C")

	assert.Nil(t, h.press("left"), "no page before the first")
	h.run(h.press("right"))
	assert.Equal(t, 2, h.model.page.Number)
	assert.Equal(t, []string{"C"}, titles(h.model))
	assert.Equal(t, 1, h.model.pager.Page)
	assert.Nil(t, h.press("right"), "no page after the last")

	h.run(h.press("left"))
	assert.Equal(t, []string{"A", "B"}, titles(h.model))
}

func TestFailedWriteShowsErrorAndResyncs(t *testing.T) {
	h := newHarness(t, "A")
	h.remote.failPut = true

	h.run(h.press("x"))

	assert.True(t, h.model.status.isError)
	assert.Contains(t, h.model.status.status, "boom")
	assert.Equal(t, []string{"A"}, titles(h.model), "list rebuilt from the remote")
}

func TestStatusClearsOnlyForLatestGeneration(t *testing.T) {
	h := newHarness(t)

	h.model.setStatus("first", false)
	h.model.setStatus("second", false)
	h.model.Update(statusClearMsg{gen: 1})
	assert.Equal(t, "second", h.model.status.status)
	h.model.Update(statusClearMsg{gen: 2})
	assert.Empty(t, h.model.status.status)
}

func TestReportMsgSetsErrorStatus(t *testing.T) {
	h := newHarness(t)

	h.model.Update(ReportMsg{Err: errors.New("offline")})
	assert.Equal(t, "offline", h.model.status.status)
	assert.True(t, h.model.status.isError)
}

func TestQuit(t *testing.T) {
	h := newHarness(t)

	cmd := h.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApplyOverrides(t *testing.T) {
	km := DefaultKeyMap()
	ApplyOverrides(&km, map[string]string{"toggle": "t", "bogus": "z"})

	assert.Equal(t, []string{"t"}, km.Toggle.Keys())
	assert.Equal(t, "done", km.Toggle.Help().Desc)
	assert.Equal(t, []string{"a"}, km.Add.Keys())
}

func TestLoadKeyOverridesMissingFile(t *testing.T) {
	overrides, err := LoadKeyOverrides(t.TempDir() + "/nope.json")
	require.NoError(t, err)
	assert.Nil(t, overrides)
}
