package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/version"
)

// CommandInfo describes a CLI command.
type CommandInfo struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Actions     []string `json:"actions,omitempty"`
}

// CommandCategory groups commands by category.
type CommandCategory struct {
	Name     string        `json:"name"`
	Commands []CommandInfo `json:"commands"`
}

// commandCategories returns all command categories for the catalog.
func commandCategories() []CommandCategory {
	return []CommandCategory{
		{
			Name: "Todos",
			Commands: []CommandInfo{
				{Name: "list", Category: "todos", Description: "List open todos"},
				{Name: "add", Category: "todos", Description: "Add a todo"},
				{Name: "done", Category: "todos", Description: "Complete todos"},
				{Name: "edit", Category: "todos", Description: "Rename a todo"},
				{Name: "rm", Category: "todos", Description: "Delete a todo"},
				{Name: "describe", Category: "todos", Description: "Set a todo's description"},
				{Name: "show", Category: "todos", Description: "Show a todo"},
				{Name: "tui", Category: "todos", Description: "Launch the interactive todo list"},
			},
		},
		{
			Name: "Server & Config",
			Commands: []CommandInfo{
				{Name: "serve", Category: "server", Description: "Run the todos HTTP server"},
				{Name: "config", Category: "server", Description: "Manage configuration", Actions: []string{"show", "init", "set", "unset"}},
			},
		},
		{
			Name: "Additional Commands",
			Commands: []CommandInfo{
				{Name: "commands", Category: "additional", Description: "List all commands"},
				{Name: "version", Category: "additional", Description: "Show version"},
				{Name: "help", Category: "additional", Description: "Show help"},
			},
		},
	}
}

// CatalogCommandNames returns all command names from the catalog.
// Used by tests to verify catalog matches registered commands.
func CatalogCommandNames() []string {
	var names []string
	for _, cat := range commandCategories() {
		for _, cmd := range cat.Commands {
			names = append(names, cmd.Name)
		}
	}
	return names
}

// All returns every top-level command in registration order.
func All() []*cobra.Command {
	return []*cobra.Command{
		NewListCmd(),
		NewAddCmd(),
		NewDoneCmd(),
		NewEditCmd(),
		NewDeleteCmd(),
		NewDescribeCmd(),
		NewShowCmd(),
		NewTUICmd(),
		NewServeCmd(),
		NewConfigCmd(),
		NewCommandsCmd(),
		NewVersionCmd(),
	}
}

// NewCommandsCmd creates the commands listing command.
func NewCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "commands",
		Aliases: []string{"cmds"},
		Short:   "List all available commands",
		Long:    "List all available todolite commands organized by category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			return app.OK(commandCategories(),
				output.WithSummary("All available todolite commands"),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "help",
						Cmd:         "todolite --help",
						Description: "View help",
					},
				),
			)
		},
	}
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return err
		},
	}
}
