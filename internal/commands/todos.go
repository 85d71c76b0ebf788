package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/appctx"
	"github.com/todolite/todolite/internal/completion"
	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/names"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/tui"
	"github.com/todolite/todolite/internal/view"
)

// Prompts are variables so tests can stand in for the terminal.
var (
	promptTitle       = tui.EditTitle
	promptDescription = tui.Description
	promptConfirm     = tui.Confirm
	interactive       = func(app *appctx.App) bool { return app.IsInteractive() }
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var page int
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open todos",
		Long:    "List open todos one page at a time. Completed todos are never shown.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := load(cmd.Context(), app); err != nil {
				return err
			}

			var p view.Page
			if all {
				p = view.Project(app.Controller.Store().All(), 0, 1)
			} else {
				app.Controller.ChangePage(page)
				p = app.Controller.Page()
			}

			items := p.Items
			if items == nil {
				items = []models.Task{}
			}

			crumbs := []output.Breadcrumb{{
				Action:      "add",
				Cmd:         "todolite add <title>",
				Description: "Add a todo",
			}}
			if p.HasNext() {
				crumbs = append(crumbs, output.Breadcrumb{
					Action:      "next",
					Cmd:         fmt.Sprintf("todolite list --page %d", p.Number+1),
					Description: "Next page",
				})
			}

			return app.OK(items,
				output.WithMeta("page", pageMeta(p)),
				output.WithBreadcrumbs(crumbs...),
			)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "n", 1, "Page number (clamped to the last page)")
	cmd.Flags().BoolVarP(&all, "all", "A", false, "Show every open todo on one page")

	return cmd
}

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Long: `Add a todo. The title is trimmed; a blank title adds nothing.

Words are joined, so quoting is optional:
  todolite add Buy milk
  todolite add "Buy milk" -d "2 litres"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := load(cmd.Context(), app); err != nil {
				return err
			}

			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}

			before := snapshotIDs(app.Controller.Store())
			if err := app.Controller.Create(cmd.Context(), strings.Join(args, " "), desc); err != nil {
				return err
			}

			created := newTasks(app.Controller.Store(), before)
			if len(created) == 0 {
				return app.OK(nil, output.WithSummary("Nothing added"))
			}
			task := created[0]

			return app.OK(task,
				output.WithSummary(fmt.Sprintf("Added todo #%d", task.ID)),
				output.WithBreadcrumbs(
					showBreadcrumb(task.ID),
					output.Breadcrumb{
						Action:      "complete",
						Cmd:         fmt.Sprintf("todolite done %d", task.ID),
						Description: "Complete todo",
					},
				),
			)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")

	return cmd
}

// NewDoneCmd creates the done command.
func NewDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <todo>...",
		Aliases: []string{"complete"},
		Short:   "Complete todos",
		Long:    "Mark todos completed. Completed todos leave the list and cannot be reopened.\n\nA todo is named by ID (12 or #12) or by a unique part of its title.",
		Args:    cobra.MinimumNArgs(1),

		ValidArgsFunction: completer.TodoCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			refs, err := names.ParseAll(args)
			if err != nil {
				return err
			}
			if err := load(cmd.Context(), app); err != nil {
				return err
			}
			ids, err := names.ResolveAll(refs, app.Controller.Store().All())
			if err != nil {
				return err
			}

			var done []int64
			for _, id := range ids {
				if err := app.Controller.Toggle(cmd.Context(), id); err != nil {
					if len(done) == 0 {
						return err
					}
					e := output.AsError(err)
					return &output.Error{
						Code:       e.Code,
						Message:    e.Message,
						Hint:       "Already completed " + joinIDs(done),
						HTTPStatus: e.HTTPStatus,
						Local:      e.Local,
						Cause:      err,
					}
				}
				done = append(done, id)
			}

			return app.OK(map[string]any{"completed": done},
				output.WithSummary("Completed "+joinIDs(done)),
				output.WithBreadcrumbs(listBreadcrumb()),
			)
		},
	}
}

// NewEditCmd creates the edit command.
func NewEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <todo> [title]",
		Short: "Rename a todo",
		Long:  "Rename a todo. Without a title an interactive prompt opens; an empty answer cancels.",
		Args:  cobra.MinimumNArgs(1),

		ValidArgsFunction: completion.FirstArgOnly(completer.TodoCompletion()),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			ref, err := names.Parse(args[0])
			if err != nil {
				return err
			}
			if err := load(cmd.Context(), app); err != nil {
				return err
			}
			id, err := resolveRef(app, ref)
			if err != nil {
				return err
			}

			var title *string
			if len(args) > 1 {
				t := strings.Join(args[1:], " ")
				title = &t
			} else {
				current, err := cachedTask(app, id)
				if err != nil {
					return err
				}
				if !interactive(app) {
					return output.ErrUsageHint("Title required", "todolite edit <todo> <title>")
				}
				answer, err := promptTitle(current.Title)
				if err != nil && !errors.Is(err, tui.ErrCanceled) {
					return err
				}
				if err == nil {
					title = &answer
				}
			}

			if err := app.Controller.Edit(cmd.Context(), id, title); err != nil {
				return err
			}

			task, _ := app.Controller.Store().Get(id)
			if title == nil || strings.TrimSpace(*title) == "" {
				return app.OK(task, output.WithSummary("Edit canceled"))
			}
			return app.OK(task,
				output.WithSummary(fmt.Sprintf("Renamed todo #%d", id)),
				output.WithBreadcrumbs(showBreadcrumb(id)),
			)
		},
	}
}

// NewDeleteCmd creates the rm command.
func NewDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <todo>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Long:    "Delete a todo on the server. Interactive sessions confirm first unless --force is given.",
		Args:    cobra.ExactArgs(1),

		ValidArgsFunction: completion.FirstArgOnly(completer.TodoCompletion()),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			ref, err := names.Parse(args[0])
			if err != nil {
				return err
			}
			if err := load(cmd.Context(), app); err != nil {
				return err
			}
			id, err := resolveRef(app, ref)
			if err != nil {
				return err
			}

			if !force && interactive(app) {
				label := fmt.Sprintf("Delete todo #%d?", id)
				if task, ok := app.Controller.Store().Get(id); ok {
					label = fmt.Sprintf("Delete %q (#%d)?", task.Title, id)
				}
				ok, err := promptConfirm(label, false)
				if err != nil && !errors.Is(err, tui.ErrCanceled) {
					return err
				}
				if !ok {
					return app.OK(nil, output.WithSummary("Delete canceled"))
				}
			}

			if err := app.Controller.Delete(cmd.Context(), id); err != nil {
				return err
			}

			return app.OK(map[string]any{"deleted": id},
				output.WithSummary(fmt.Sprintf("Deleted todo #%d", id)),
				output.WithBreadcrumbs(listBreadcrumb()),
			)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}

// NewDescribeCmd creates the describe command.
func NewDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <todo> [text]",
		Short: "Set a todo's description",
		Long:  "Replace a todo's description. Without text an interactive editor opens. Blank descriptions are rejected.",
		Args:  cobra.MinimumNArgs(1),

		ValidArgsFunction: completion.FirstArgOnly(completer.TodoCompletion()),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			ref, err := names.Parse(args[0])
			if err != nil {
				return err
			}
			if err := load(cmd.Context(), app); err != nil {
				return err
			}
			id, err := resolveRef(app, ref)
			if err != nil {
				return err
			}

			var text string
			if len(args) > 1 {
				text = strings.Join(args[1:], " ")
			} else {
				current, err := cachedTask(app, id)
				if err != nil {
					return err
				}
				if !interactive(app) {
					return output.ErrUsageHint("Description text required", "todolite describe <todo> <text>")
				}
				text, err = promptDescription(current.DescriptionText())
				if errors.Is(err, tui.ErrCanceled) {
					return app.OK(current, output.WithSummary("Description unchanged"))
				}
				if err != nil {
					return err
				}
			}

			if err := app.Controller.SetDescription(cmd.Context(), id, text); err != nil {
				return err
			}

			task, _ := app.Controller.Store().Get(id)
			return app.OK(task,
				output.WithSummary(fmt.Sprintf("Updated description of todo #%d", id)),
				output.WithBreadcrumbs(showBreadcrumb(id)),
			)
		},
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}
