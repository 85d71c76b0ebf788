package tui

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResolveTheme picks the active theme:
//  1. NO_COLOR set: NoColorTheme
//  2. TODOLITE_THEME names a colors file
//  3. ~/.config/todolite/theme/colors.toml
//  4. DefaultTheme
func ResolveTheme() Theme {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NoColorTheme()
	}

	if path := os.Getenv("TODOLITE_THEME"); path != "" {
		if theme, err := LoadThemeFromFile(path); err == nil {
			return theme
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "todolite", "theme", "colors.toml")
		if theme, err := LoadThemeFromFile(path); err == nil {
			return theme
		}
	}

	return DefaultTheme()
}

// NoColorTheme returns a theme with empty colors.
// Lipgloss renders empty colors as plain text.
func NoColorTheme() Theme {
	var empty lipgloss.AdaptiveColor
	return Theme{
		Primary:    empty,
		Secondary:  empty,
		Success:    empty,
		Warning:    empty,
		Error:      empty,
		Muted:      empty,
		Background: empty,
		Foreground: empty,
		Border:     empty,
	}
}

// LoadThemeFromFile reads a colors file of `name = "#rrggbb"` lines.
func LoadThemeFromFile(path string) (Theme, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user's own config
	if err != nil {
		return Theme{}, err
	}
	return themeFromColors(parseColors(data)), nil
}

// parseColors extracts hex colors from key = "value" lines.
// Comments, blank lines and anything that is not a hex color are skipped.
func parseColors(data []byte) map[string]string {
	colors := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 && (value[0] == '"' || value[0] == '\'') {
			if end := strings.IndexByte(value[1:], value[0]); end >= 0 {
				value = value[1 : end+1]
			}
		}
		if isHexColor(value) {
			colors[strings.TrimSpace(key)] = value
		}
	}
	return colors
}

func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// themeFromColors maps terminal palette names onto the theme.
// Terminal palettes are usually dark, so only Dark variants are replaced.
//
//	accent, color4 -> Primary
//	color7         -> Secondary
//	color2         -> Success
//	color3         -> Warning
//	color1         -> Error
//	color8, color0 -> Muted, Border
//	foreground     -> Foreground
//	background     -> Background
func themeFromColors(colors map[string]string) Theme {
	theme := DefaultTheme()
	set := func(c *lipgloss.AdaptiveColor, keys ...string) {
		for _, k := range keys {
			if v, ok := colors[k]; ok {
				c.Dark = v
				return
			}
		}
	}
	set(&theme.Primary, "accent", "color4")
	set(&theme.Secondary, "color7")
	set(&theme.Success, "color2")
	set(&theme.Warning, "color3")
	set(&theme.Error, "color1")
	set(&theme.Muted, "color8", "color0")
	set(&theme.Border, "color8", "color0")
	set(&theme.Foreground, "foreground")
	set(&theme.Background, "background")
	return theme
}
