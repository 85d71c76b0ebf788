package commands

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/config"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/tui"
	"github.com/todolite/todolite/internal/tui/workspace"
)

// NewTUICmd creates the tui command for the interactive list.
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive todo list",
		Long:  "Launch a full-screen terminal list with optimistic updates.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if !interactive(app) {
				return output.ErrUsageHint("The tui needs an interactive terminal", "Use 'todolite list' when piping output")
			}

			keys := workspace.DefaultKeyMap()
			overrides, err := workspace.LoadKeyOverrides(filepath.Join(config.GlobalConfigDir(), "keybindings.json"))
			if err != nil {
				app.Log.WithError(err).Warn("ignoring keybindings.json")
			}
			workspace.ApplyOverrides(&keys, overrides)

			model := workspace.New(cmd.Context(), app.Controller,
				workspace.WithStyles(tui.NewStyles()),
				workspace.WithLogger(app.Log),
				workspace.WithKeyMap(keys),
			)

			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			model.Attach(p)

			_, err = p.Run()
			return err
		},
	}
}
