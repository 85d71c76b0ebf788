package commands

import (
	"testing"

	"github.com/todolite/todolite/internal/appctx"
)

// StubTerminal replaces the terminal prompts for one test.
func StubTerminal(t testing.TB, isInteractive bool, title func(string) (string, error), confirm func(string, bool) (bool, error), description func(string) (string, error)) {
	t.Helper()
	oldTitle, oldConfirm, oldDesc, oldInteractive := promptTitle, promptConfirm, promptDescription, interactive
	t.Cleanup(func() {
		promptTitle, promptConfirm, promptDescription, interactive = oldTitle, oldConfirm, oldDesc, oldInteractive
	})

	interactive = func(*appctx.App) bool { return isInteractive }
	if title != nil {
		promptTitle = title
	}
	if confirm != nil {
		promptConfirm = confirm
	}
	if description != nil {
		promptDescription = description
	}
}
