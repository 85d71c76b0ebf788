package appctx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/config"
	"github.com/todolite/todolite/internal/observability"
	"github.com/todolite/todolite/internal/output"
)

func testApp(t *testing.T) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	var stdout, stderr bytes.Buffer
	return NewApp(cfg, WithStdout(&stdout), WithStderr(&stderr)), &stdout, &stderr
}

func TestNewApp(t *testing.T) {
	app, _, _ := testApp(t)

	if app.Client == nil {
		t.Fatal("Client not initialized")
	}
	if app.Client.BaseURL() != "http://localhost:3000" {
		t.Errorf("BaseURL = %q", app.Client.BaseURL())
	}
	if app.Controller == nil {
		t.Error("Controller not initialized")
	}
	if app.Output == nil {
		t.Error("Output writer not initialized")
	}
	if app.Log.GetLevel() != logrus.WarnLevel {
		t.Errorf("log level = %v, want warn", app.Log.GetLevel())
	}
	if app.Controller.Page().Size != 5 {
		t.Errorf("page size = %d, want 5", app.Controller.Page().Size)
	}
}

func TestNewAppUsesConfigPreferences(t *testing.T) {
	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	cfg.PageSize = 3
	cfg.Format = "json"
	cfg.LogLevel = "debug"

	app := NewApp(cfg, WithStdout(&bytes.Buffer{}), WithStderr(&bytes.Buffer{}))

	if app.Output.Format() != output.FormatJSON {
		t.Errorf("format = %v, want json", app.Output.Format())
	}
	if app.Controller.Page().Size != 3 {
		t.Errorf("page size = %d", app.Controller.Page().Size)
	}
	if app.Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("log level = %v", app.Log.GetLevel())
	}
}

func TestWithAppAndFromContext(t *testing.T) {
	app, _, _ := testApp(t)

	ctx := WithApp(context.Background(), app)
	if FromContext(ctx) != app {
		t.Error("FromContext did not retrieve the same app")
	}
}

func TestFromContextEmpty(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil from empty context")
	}
}

func TestApplyFlagsPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		flags GlobalFlags
		want  output.Format
	}{
		{"none", GlobalFlags{}, output.FormatAuto},
		{"json", GlobalFlags{JSON: true}, output.FormatJSON},
		{"quiet beats json", GlobalFlags{JSON: true, Quiet: true}, output.FormatQuiet},
		{"ids beats everything", GlobalFlags{IDsOnly: true, Count: true, JSON: true}, output.FormatIDs},
		{"count", GlobalFlags{Count: true}, output.FormatCount},
		{"styled", GlobalFlags{Styled: true}, output.FormatStyled},
		{"md", GlobalFlags{MD: true}, output.FormatMarkdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := testApp(t)
			app.Flags = tt.flags
			app.ApplyFlags()
			if got := app.Output.Format(); got != tt.want {
				t.Errorf("format = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyFlagsVerbose(t *testing.T) {
	t.Setenv("TODOLITE_DEBUG", "")
	app, _, _ := testApp(t)
	app.Flags.Verbose = 2
	app.ApplyFlags()

	if app.Hooks.Level() != 2 {
		t.Errorf("hook level = %d, want 2", app.Hooks.Level())
	}
	if app.Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("log level = %v, want debug", app.Log.GetLevel())
	}
}

func TestApplyFlagsDebugEnv(t *testing.T) {
	t.Setenv("TODOLITE_DEBUG", "true")
	app, _, _ := testApp(t)
	app.ApplyFlags()

	if app.Hooks.Level() != 2 {
		t.Errorf("hook level = %d, want 2", app.Hooks.Level())
	}
}

func TestOKIncludesStats(t *testing.T) {
	app, stdout, _ := testApp(t)
	app.Flags.JSON = true
	app.Flags.Stats = true
	app.ApplyFlags()

	if err := app.OK([]string{"a"}); err != nil {
		t.Fatal(err)
	}

	var resp struct {
		OK   bool           `json:"ok"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := resp.Meta["stats"]; !ok {
		t.Errorf("expected stats in meta, got %v", resp.Meta)
	}
}

func TestErrPrintsStatsToStderr(t *testing.T) {
	app, stdout, stderr := testApp(t)
	app.Flags.JSON = true
	app.Flags.Stats = true
	app.ApplyFlags()

	app.Collector.RecordOperation(observability.OperationInfo{Operation: "Refresh"}, nil, 0)
	if err := app.Err(output.ErrUsage("bad")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), `"code": "usage"`) {
		t.Errorf("stdout = %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Stats:") {
		t.Errorf("stderr = %q, want stats line", stderr.String())
	}
}

func TestErrQuietSkipsStats(t *testing.T) {
	app, _, stderr := testApp(t)
	app.Flags.Quiet = true
	app.Flags.Stats = true
	app.ApplyFlags()

	_ = app.Err(errors.New("boom"))
	if strings.Contains(stderr.String(), "Stats:") {
		t.Error("quiet mode should keep stderr clean")
	}
}

func TestIsInteractiveFalseForBuffers(t *testing.T) {
	app, _, _ := testApp(t)
	if app.IsInteractive() {
		t.Error("buffer stdout is not interactive")
	}
}
