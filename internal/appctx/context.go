// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/api"
	"github.com/todolite/todolite/internal/config"
	"github.com/todolite/todolite/internal/data"
	"github.com/todolite/todolite/internal/observability"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/resilience"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config     *config.Config
	Client     *api.Client
	Controller *data.Controller
	Output     *output.Writer
	Log        *logrus.Logger

	// Observability
	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks

	// Flags holds the global flag values
	Flags GlobalFlags

	stdout io.Writer
	stderr io.Writer
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	Quiet   bool
	MD      bool // Literal Markdown syntax output
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool
	JQ      string

	// Behavior flags
	Verbose int // 0=off, 1=operations, 2=operations+requests (stacks with -v -v or -vv)
	Stats   bool
}

// Option customizes NewApp.
type Option func(*App)

// WithStdout redirects command output.
func WithStdout(w io.Writer) Option {
	return func(a *App) { a.stdout = w }
}

// WithStderr redirects logs and traces.
func WithStderr(w io.Writer) Option {
	return func(a *App) { a.stderr = w }
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{Config: cfg, stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}

	a.Log = newLogger(a.stderr, cfg.LogLevel)

	// Collector always runs to gather stats; hooks control trace verbosity.
	// Level 0 initially; ApplyFlags sets the actual level from -v flags.
	a.Collector = observability.NewSessionCollector()
	a.Hooks = observability.NewCLIHooks(0, a.Collector, observability.NewTraceWriterTo(a.stderr))

	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = resilience.DefaultDir()
	}
	breaker := resilience.NewCircuitBreaker(
		resilience.NewStore(stateDir),
		cfg.BaseURL,
		resilience.DefaultCircuitBreakerConfig(),
	)

	a.Client = api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout),
		api.WithRetries(cfg.MaxRetries),
		api.WithHooks(a.Hooks),
		api.WithBreaker(breaker),
		api.WithLogger(a.Log.WithField("component", "api")),
	)

	a.Controller = data.NewController(a.Client, data.NewStore(),
		data.WithPageSize(cfg.PageSize),
		data.WithHooks(a.Hooks),
		data.WithLogger(a.Log.WithField("component", "sync")),
	)

	format, ok := output.ParseFormat(cfg.Format)
	if !ok {
		a.Log.WithField("format", cfg.Format).Warn("unknown output format, using auto")
	}
	a.Output = output.New(output.Options{Format: format, Writer: a.stdout})
	return a
}

func newLogger(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	log.SetLevel(lvl)
	return log
}

// ApplyFlags applies global flag values to the app configuration.
func (a *App) ApplyFlags() {
	// Order matters: specific modes first
	format := a.Output.Format()
	switch {
	case a.Flags.IDsOnly:
		format = output.FormatIDs
	case a.Flags.Count:
		format = output.FormatCount
	case a.Flags.Quiet:
		format = output.FormatQuiet
	case a.Flags.JSON:
		format = output.FormatJSON
	case a.Flags.Styled:
		format = output.FormatStyled
	case a.Flags.MD:
		format = output.FormatMarkdown
	}
	a.Output = output.New(output.Options{Format: format, Writer: a.stdout, JQ: a.Flags.JQ})

	// TODOLITE_DEBUG can be "1", "2", or "true" (treated as 2)
	verboseLevel := a.Flags.Verbose
	if debugEnv := os.Getenv("TODOLITE_DEBUG"); debugEnv != "" {
		if level, err := strconv.Atoi(debugEnv); err == nil {
			if level > verboseLevel {
				verboseLevel = level
			}
		} else if debugEnv == "true" {
			verboseLevel = 2
		}
	}

	a.Hooks.SetLevel(verboseLevel)
	if verboseLevel > 1 {
		a.Log.SetLevel(logrus.DebugLevel)
	}
}

// Stdout is where command output goes.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// OK outputs a success response, including stats if --stats is set.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.Flags.Stats {
		opts = append(opts, output.WithMeta("stats", a.Collector.Summary().ToMap()))
	}
	return a.Output.OK(data, opts...)
}

// Err outputs an error response, printing stats to stderr if --stats is set.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}

	// Machine-consumable modes keep stderr clean
	if a.Flags.Stats && !a.isMachineOutput() {
		a.printStats()
	}
	return nil
}

// isMachineOutput returns true if the output mode is intended for programmatic consumption.
func (a *App) isMachineOutput() bool {
	if a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count || a.Flags.JQ != "" {
		return true
	}
	return a.Config != nil && a.Config.Format == "quiet"
}

func (a *App) printStats() {
	parts := a.Collector.Summary().FormatParts()
	if len(parts) > 0 {
		fmt.Fprintf(a.stderr, "\nStats: %s\n", strings.Join(parts, " | "))
	}
}

// IsInteractive returns true if the terminal supports interactive prompts and the TUI.
func (a *App) IsInteractive() bool {
	if a.Flags.JSON || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count || a.Flags.JQ != "" {
		return false
	}
	f, ok := a.stdout.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(f.Fd()) && term.IsTerminal(os.Stdin.Fd())
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
