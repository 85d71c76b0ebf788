package workspace

import (
	"encoding/json"
	"os"
	"reflect"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the list keybindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Add      key.Binding
	Toggle   key.Binding
	Edit     key.Binding
	Describe key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("j/k", "navigate"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/k", "navigate"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("h/l", "page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("h/l", "page"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "done"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Describe: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "notes"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Help, k.Quit}
}

// FullHelp returns all bindings for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.PrevPage},
		{k.Add, k.Toggle, k.Edit},
		{k.Describe, k.Delete, k.Refresh},
		{k.Help, k.Quit},
	}
}

// actionFieldMap maps action names (from keybindings.json) to KeyMap field names.
var actionFieldMap = map[string]string{
	"up":        "Up",
	"down":      "Down",
	"prev_page": "PrevPage",
	"next_page": "NextPage",
	"add":       "Add",
	"toggle":    "Toggle",
	"edit":      "Edit",
	"describe":  "Describe",
	"delete":    "Delete",
	"refresh":   "Refresh",
	"help":      "Help",
	"quit":      "Quit",
}

// LoadKeyOverrides reads keybinding overrides from a JSON file.
// Returns an empty map (not an error) if the file doesn't exist.
func LoadKeyOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is under the config dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// ApplyOverrides remaps keybindings in km according to the overrides map.
// Keys are action names (e.g. "toggle"), values are key strings (e.g. "t").
// Unknown actions are silently ignored.
func ApplyOverrides(km *KeyMap, overrides map[string]string) {
	v := reflect.ValueOf(km).Elem()
	for action, keyStr := range overrides {
		fieldName, ok := actionFieldMap[action]
		if !ok {
			continue
		}
		field := v.FieldByName(fieldName)
		if !field.IsValid() {
			continue
		}
		binding := field.Interface().(key.Binding)
		field.Set(reflect.ValueOf(key.NewBinding(
			key.WithKeys(keyStr),
			key.WithHelp(keyStr, binding.Help().Desc),
		)))
	}
}
