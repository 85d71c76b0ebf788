// Package cli wires the root command, global flags and error exit codes.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/appctx"
	"github.com/todolite/todolite/internal/commands"
	"github.com/todolite/todolite/internal/config"
	"github.com/todolite/todolite/internal/hostutil"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags
	var host string
	var pageSize int
	var logLevel levelFlag

	cmd := &cobra.Command{
		Use:           "todolite",
		Short:         "A small todo list that syncs with a todos server",
		Long:          "todolite manages a todo list kept on a todos HTTP server, applying changes optimistically.\n\nCommands taking a <todo> accept its ID or a unique part of its title.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			overrides := config.FlagOverrides{LogLevel: logLevel.String()}
			if host != "" {
				overrides.BaseURL = hostutil.Normalize(host)
			}
			if cmd.Flags().Changed("page-size") {
				overrides.PageSize = &pageSize
			}

			cfg, err := config.Load(overrides)
			if err != nil {
				return output.ErrUsage(err.Error())
			}

			resolvePreferences(cmd, cfg, &flags)

			app := appctx.NewApp(cfg,
				appctx.WithStdout(cmd.OutOrStdout()),
				appctx.WithStderr(cmd.ErrOrStderr()),
			)
			app.Flags = flags
			app.ApplyFlags()

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Output format flags
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().BoolVarP(&flags.MD, "md", "m", false, "Output as Markdown (portable)")
	cmd.PersistentFlags().BoolVar(&flags.MD, "markdown", false, "Output as Markdown (portable)")
	cmd.PersistentFlags().BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	cmd.PersistentFlags().BoolVar(&flags.IDsOnly, "ids-only", false, "Output only IDs")
	cmd.PersistentFlags().BoolVar(&flags.Count, "count", false, "Output only count")
	cmd.PersistentFlags().StringVar(&flags.JQ, "jq", "", "Filter JSON data with a jq expression")

	// Remote flags
	cmd.PersistentFlags().StringVar(&host, "host", "", "Todos server (e.g., localhost:3000, todos.example.com)")
	cmd.PersistentFlags().StringVar(&host, "base-url", "", "Todos server base URL (deprecated: use --host)")
	_ = cmd.PersistentFlags().MarkHidden("base-url")
	cmd.PersistentFlags().IntVar(&pageSize, "page-size", 0, "Todos per page (0 shows all)")

	// Behavior flags
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for ops, -vv for requests)")
	cmd.PersistentFlags().BoolVar(&flags.Stats, "stats", false, "Show session statistics")
	cmd.PersistentFlags().Var(&logLevel, "log-level", "Log level (debug, info, warn, error)")

	return cmd
}

// resolvePreferences fills flags the user did not set from config.
func resolvePreferences(cmd *cobra.Command, cfg *config.Config, flags *appctx.GlobalFlags) {
	if !cmd.Flags().Changed("stats") && cfg.Stats != nil {
		flags.Stats = *cfg.Stats
	}
	if !cmd.Flags().Changed("verbose") && cfg.Verbose != nil {
		flags.Verbose = *cfg.Verbose
	}
}

// Execute runs the root command and exits with the error's exit code.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.AddCommand(commands.All()...)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	// Use ExecuteC to get the executed command (for correct context access)
	executedCmd, err := cmd.ExecuteContextC(ctx)
	if err == nil {
		return output.ExitOK
	}

	err = transformCobraError(err)
	apiErr := output.AsError(err)

	// Prefer app.Err for --stats support
	if executedCmd != nil {
		if app := appctx.FromContext(executedCmd.Context()); app != nil {
			if outErr := app.Err(err); outErr != nil {
				fmt.Fprintln(stderr, outErr)
			}
			return apiErr.ExitCode()
		}
	}

	// Fallback: setup failed before the app existed
	writer := output.New(output.Options{
		Format: fallbackFormat(cmd),
		Writer: stdout,
	})
	_ = writer.Err(err)

	return apiErr.ExitCode()
}

// fallbackFormat picks an output format from raw flags when no app exists.
func fallbackFormat(cmd *cobra.Command) output.Format {
	pf := cmd.PersistentFlags()
	quiet, _ := pf.GetBool("quiet")
	idsOnly, _ := pf.GetBool("ids-only")
	count, _ := pf.GetBool("count")
	styled, _ := pf.GetBool("styled")
	md, _ := pf.GetBool("md")
	jsonFlag, _ := pf.GetBool("json")

	switch {
	case quiet:
		return output.FormatQuiet
	case idsOnly:
		return output.FormatIDs
	case count:
		return output.FormatCount
	case styled:
		return output.FormatStyled
	case md:
		return output.FormatMarkdown
	case jsonFlag:
		return output.FormatJSON
	default:
		return output.FormatAuto
	}
}

var shorthandRe = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)

// transformCobraError turns cobra's parse errors into usage errors with
// consistent wording.
func transformCobraError(err error) error {
	msg := err.Error()

	if strings.HasPrefix(msg, "flag needs an argument: ") {
		flag := strings.TrimPrefix(msg, "flag needs an argument: ")
		return output.ErrUsage(flag + " requires a value")
	}

	if strings.HasPrefix(msg, "unknown flag: ") {
		flag := strings.TrimPrefix(msg, "unknown flag: ")
		return output.ErrUsage("Unknown option: " + flag)
	}

	if strings.HasPrefix(msg, "unknown shorthand flag: ") {
		if matches := shorthandRe.FindStringSubmatch(msg); len(matches) > 1 {
			return output.ErrUsage("Unknown option: " + matches[1])
		}
	}

	if strings.HasPrefix(msg, "unknown command ") {
		return output.ErrUsageHint(msg, "Run 'todolite commands' to list commands")
	}

	if strings.Contains(msg, "invalid argument") {
		return output.ErrUsage(msg)
	}

	if strings.Contains(msg, "requires at least") && strings.Contains(msg, "arg(s)") {
		return output.ErrUsage("Todo ID required")
	}

	if strings.Contains(msg, "arg(s), received") {
		return output.ErrUsage(msg)
	}

	return err
}
