package completion

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/appctx"
)

// CacheDirFunc returns the cache directory to use for completion.
type CacheDirFunc func(cmd *cobra.Command) string

// DefaultCacheDirFunc returns the cache directory by checking, in order, the
// app config from context, then TODOLITE_STATE_DIR.
//
// During __complete the root pre-run does not load config files, so a
// state_dir set only in a config file is not honored here.
func DefaultCacheDirFunc(cmd *cobra.Command) string {
	if app := appctx.FromContext(cmd.Context()); app != nil && app.Config != nil {
		return app.Config.StateDir
	}
	return os.Getenv("TODOLITE_STATE_DIR")
}

// Completer provides tab completion functions for todo arguments.
// It reads from the file cache and does NOT initialize the App or the client.
type Completer struct {
	getCacheDir CacheDirFunc
}

// NewCompleter creates a new Completer. A nil getCacheDir uses
// DefaultCacheDirFunc.
func NewCompleter(getCacheDir CacheDirFunc) *Completer {
	if getCacheDir == nil {
		getCacheDir = DefaultCacheDirFunc
	}
	return &Completer{getCacheDir: getCacheDir}
}

// TodoCompletion completes todo IDs with their titles as descriptions.
// IDs already on the command line are skipped. The typed text matches an
// ID prefix or, case-insensitively, any part of a title.
func (c *Completer) TodoCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		todos := NewStore(c.getCacheDir(cmd)).Todos(DefaultMaxAge)
		if len(todos) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		used := make(map[string]bool, len(args))
		for _, a := range args {
			used[strings.TrimPrefix(a, "#")] = true
		}

		sorted := make([]CachedTodo, len(todos))
		copy(sorted, todos)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

		needle := strings.ToLower(strings.TrimPrefix(toComplete, "#"))
		var completions []cobra.Completion
		for _, t := range sorted {
			id := strconv.FormatInt(t.ID, 10)
			if used[id] {
				continue
			}
			if strings.HasPrefix(id, needle) || strings.Contains(strings.ToLower(t.Title), needle) {
				completions = append(completions, cobra.CompletionWithDesc(id, t.Title))
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// FirstArgOnly limits fn to the first positional argument.
func FirstArgOnly(fn cobra.CompletionFunc) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return fn(cmd, args, toComplete)
	}
}
