package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/appctx"
	"github.com/todolite/todolite/internal/completion"
	"github.com/todolite/todolite/internal/data"
	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/names"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/view"
)

// requireApp returns the app stored by the root command's pre-run.
func requireApp(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// resolveRef maps a reference to a todo ID using the loaded cache.
func resolveRef(app *appctx.App, ref names.Ref) (int64, error) {
	return names.Resolve(ref, app.Controller.Store().All())
}

// completer serves todo ID completions from the file cache that load keeps.
var completer = completion.NewCompleter(nil)

// load fills the controller's cache from the remote and refreshes the
// completion cache. Errors are returned to the caller for output; the
// listener keeps them off the log.
func load(ctx context.Context, app *appctx.App) error {
	app.Controller.SetListener(data.ListenerFuncs{})
	if err := app.Controller.Refresh(ctx); err != nil {
		return err
	}
	if err := completion.NewStore(app.Config.StateDir).UpdateTodos(app.Controller.Store().All()); err != nil {
		app.Log.WithError(err).Debug("completion cache not saved")
	}
	return nil
}

// cachedTask returns a task from the loaded cache or a not-found error.
func cachedTask(app *appctx.App, id int64) (models.Task, error) {
	task, ok := app.Controller.Store().Get(id)
	if !ok {
		return models.Task{}, output.ErrNotFoundLocal("Todo", id)
	}
	return task, nil
}

// snapshotIDs returns the set of IDs currently cached.
func snapshotIDs(store *data.Store) map[int64]bool {
	ids := make(map[int64]bool, store.Len())
	for _, t := range store.All() {
		ids[t.ID] = true
	}
	return ids
}

// newTasks returns cached tasks whose IDs were not in before, in list order.
func newTasks(store *data.Store, before map[int64]bool) []models.Task {
	var out []models.Task
	for _, t := range store.All() {
		if !before[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// pageMeta describes a page for the output envelope.
func pageMeta(p view.Page) map[string]any {
	return map[string]any{
		"number":      p.Number,
		"size":        p.Size,
		"total_pages": p.TotalPages,
		"total_items": p.TotalItems,
	}
}

func listBreadcrumb() output.Breadcrumb {
	return output.Breadcrumb{
		Action:      "list",
		Cmd:         "todolite list",
		Description: "List todos",
	}
}

func showBreadcrumb(id int64) output.Breadcrumb {
	return output.Breadcrumb{
		Action:      "show",
		Cmd:         fmt.Sprintf("todolite show %d", id),
		Description: "View todo",
	}
}
