package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrCanceled is returned when the user aborts a prompt.
var ErrCanceled = errors.New("canceled")

// Confirm shows a yes/no confirmation prompt.
func Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&result).
		Run()
	if err != nil {
		return defaultValue, canceled(err)
	}
	return result, nil
}

// EditTitle prompts for a new title prefilled with current.
// An empty answer is returned as-is; the caller treats it as cancellation.
func EditTitle(current string) (string, error) {
	result := current
	err := huh.NewInput().
		Title("Title").
		Placeholder(current).
		Value(&result).
		Run()
	if err != nil {
		return "", canceled(err)
	}
	return strings.TrimSpace(result), nil
}

// Description shows a multiline prompt prefilled with current.
func Description(current string) (string, error) {
	result := current
	err := huh.NewText().
		Title("Description").
		Placeholder("What needs to be remembered?").
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("description cannot be empty")
			}
			return nil
		}).
		Value(&result).
		Run()
	if err != nil {
		return "", canceled(err)
	}
	return result, nil
}

func canceled(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCanceled
	}
	return err
}
