package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/completion"
	"github.com/todolite/todolite/internal/names"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/richtext"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <todo>",
		Short: "Show a todo",
		Long:  "Show a todo with its description. Styled output renders Markdown descriptions.",
		Args:  cobra.ExactArgs(1),

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
			task, err := cachedTask(app, id)
			if err != nil {
				return err
			}

			doc := richtext.TaskDocument(task)
			switch {
			case app.Output.Format() == output.FormatMarkdown:
				_, err := fmt.Fprint(app.Stdout(), doc)
				return err
			case app.Output.Styled() && !app.Flags.Stats:
				rendered, err := richtext.RenderMarkdownWithWidth(doc, termWidth())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(app.Stdout(), rendered)
				return err
			}

			return app.OK(task,
				output.WithSummary(fmt.Sprintf("Todo #%d", id)),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "describe",
						Cmd:         fmt.Sprintf("todolite describe %d", id),
						Description: "Edit description",
					},
					output.Breadcrumb{
						Action:      "complete",
						Cmd:         fmt.Sprintf("todolite done %d", id),
						Description: "Complete todo",
					},
				),
			)
		},
	}
}

func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 20 {
		return w - 4
	}
	return richtext.DefaultWidth
}
