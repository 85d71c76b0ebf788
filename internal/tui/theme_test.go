package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColors(t *testing.T) {
	input := `# palette
accent = "#89b4fa"   # inline comment
foreground = '#cdd6f4'
color1 = "red"
no equals sign here

color8 = "#585"`

	got := parseColors([]byte(input))
	assert.Equal(t, map[string]string{
		"accent":     "#89b4fa",
		"foreground": "#cdd6f4",
		"color8":     "#585",
	}, got)
}

func TestIsHexColor(t *testing.T) {
	assert.True(t, isHexColor("#abc"))
	assert.True(t, isHexColor("#A1B2C3"))
	assert.False(t, isHexColor("abc123"))
	assert.False(t, isHexColor("#abcd"))
	assert.False(t, isHexColor("#ggg"))
}

func TestThemeFromColorsFallsBack(t *testing.T) {
	defaults := DefaultTheme()
	theme := themeFromColors(map[string]string{"color4": "#111111", "color1": "#222222"})

	assert.Equal(t, "#111111", theme.Primary.Dark)
	assert.Equal(t, defaults.Primary.Light, theme.Primary.Light)
	assert.Equal(t, "#222222", theme.Error.Dark)
	assert.Equal(t, defaults.Success, theme.Success)
}

func TestResolveThemeNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, NoColorTheme(), ResolveTheme())
}

func TestResolveThemeFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.toml")
	require.NoError(t, os.WriteFile(path, []byte(`accent = "#123456"`), 0o600))

	os.Unsetenv("NO_COLOR")
	t.Setenv("TODOLITE_THEME", path)
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, "#123456", ResolveTheme().Primary.Dark)
}

func TestResolveThemeDefault(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	t.Setenv("TODOLITE_THEME", "")
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, DefaultTheme(), ResolveTheme())
}

func TestRenderCheckbox(t *testing.T) {
	s := NewStylesWithTheme(NoColorTheme())
	assert.Equal(t, "[ ] milk", s.RenderCheckbox(false, "milk"))
	assert.Equal(t, "[✓] milk", s.RenderCheckbox(true, "milk"))
}
