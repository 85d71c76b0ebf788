package data

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/observability"
	"github.com/todolite/todolite/internal/view"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 5

// Remote is the authoritative task collection. *api.Client satisfies it.
type Remote interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, title string, description *string) (models.Task, error)
	Update(ctx context.Context, id int64, task models.Task) (models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Listener receives every projected page and every surfaced error.
// It is called outside the controller's locks and may be called from any
// goroutine that dispatches intents.
type Listener interface {
	Render(page view.Page)
	Report(err error)
}

// ListenerFuncs adapts a pair of functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnRender func(view.Page)
	OnReport func(error)
}

func (f ListenerFuncs) Render(p view.Page) {
	if f.OnRender != nil {
		f.OnRender(p)
	}
}

func (f ListenerFuncs) Report(err error) {
	if f.OnReport != nil {
		f.OnReport(err)
	}
}

// Controller turns intents into optimistic cache changes confirmed by the
// remote, and resynchronizes from the remote whenever a write fails.
type Controller struct {
	remote Remote
	store  *Store
	hooks  observability.Hooks
	log    logrus.FieldLogger

	mu       sync.Mutex
	pageSize int
	page     int
	listener Listener
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithPageSize sets the page size. Zero puts every task on one page.
func WithPageSize(n int) ControllerOption {
	return func(c *Controller) {
		if n >= 0 {
			c.pageSize = n
		}
	}
}

// WithPage sets the initial page number.
func WithPage(n int) ControllerOption {
	return func(c *Controller) { c.page = n }
}

// WithListener sets the render/report callback.
func WithListener(l Listener) ControllerOption {
	return func(c *Controller) { c.listener = l }
}

// WithHooks installs operation hooks.
func WithHooks(h observability.Hooks) ControllerOption {
	return func(c *Controller) {
		if h != nil {
			c.hooks = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// NewController creates a controller over remote and store.
// A nil store gets a fresh one.
func NewController(remote Remote, store *Store, opts ...ControllerOption) *Controller {
	if store == nil {
		store = NewStore()
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Controller{
		remote:   remote,
		store:    store,
		hooks:    observability.NoopHooks{},
		log:      discard,
		pageSize: DefaultPageSize,
		page:     1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the cache the controller owns.
func (c *Controller) Store() *Store {
	return c.store
}

// SetListener replaces the listener.
func (c *Controller) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// Page projects the current cache without notifying the listener.
func (c *Controller) Page() view.Page {
	items := c.store.All()
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.Project(items, c.pageSize, c.page)
}

// Refresh replaces the cache with the remote's active tasks. On failure the
// cache is emptied and the error reported. The view is rendered either way.
func (c *Controller) Refresh(ctx context.Context) error {
	op := observability.OperationInfo{Operation: "Refresh"}
	ctx = c.hooks.OnOperationStart(ctx, op)
	start := time.Now()

	err := c.resync(ctx)
	if err != nil {
		c.report(err)
	}

	c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	return err
}

// resync pulls the remote list and renders. It does not report.
func (c *Controller) resync(ctx context.Context) error {
	items, err := c.remote.List(ctx)
	if err != nil {
		c.store.ReplaceAll(nil)
		c.render()
		return err
	}
	c.store.ReplaceAll(models.Active(items))
	c.render()
	return nil
}

// ChangePage moves to page n, clamped to the valid range, and renders.
// It returns the effective page number.
func (c *Controller) ChangePage(n int) int {
	count := c.store.Len()
	c.mu.Lock()
	c.page = view.Clamp(n, view.TotalPages(count, c.pageSize))
	c.mu.Unlock()
	return c.render().Number
}

// Create adds a task. Blank text is ignored.
func (c *Controller) Create(ctx context.Context, text string, description *string) error {
	return c.Apply(ctx, &createMutation{text: text, description: description})
}

// Toggle marks a task completed, which removes it from the active list.
func (c *Controller) Toggle(ctx context.Context, id int64) error {
	return c.Apply(ctx, &toggleMutation{id: id})
}

// Edit renames a task. A nil or blank title cancels the edit.
func (c *Controller) Edit(ctx context.Context, id int64, title *string) error {
	return c.Apply(ctx, &editMutation{id: id, title: title})
}

// Delete removes a task on the remote, then from the cache.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	return c.Apply(ctx, &deleteMutation{id: id})
}

// SetDescription replaces a task's description. Blank text is rejected.
func (c *Controller) SetDescription(ctx context.Context, id int64, text string) error {
	return c.Apply(ctx, &describeMutation{id: id, text: text})
}

// render projects the cache and hands the page to the listener.
func (c *Controller) render() view.Page {
	items := c.store.All()

	c.mu.Lock()
	page := view.Project(items, c.pageSize, c.page)
	c.page = page.Number
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l.Render(page)
	}
	return page
}

func (c *Controller) report(err error) {
	c.mu.Lock()
	l := c.listener
	c.mu.Unlock()

	if l == nil {
		c.log.WithError(err).Error("todo operation failed")
		return
	}
	c.log.WithError(err).Debug("todo operation failed")
	l.Report(err)
}
