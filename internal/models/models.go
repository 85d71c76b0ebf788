// Package models provides canonical type definitions for todo entities.
// These types are shared by the API client, the sync engine and the server.
package models

import (
	"encoding/json"
	"strings"
)

// Task represents a single todo item.
// Description is nil when the task has no description; it travels as JSON null.
type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

// UnmarshalJSON decodes a task, treating a missing, null or empty
// description as absent.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Description != nil && *p.Description == "" {
		p.Description = nil
	}
	*t = Task(p)
	return nil
}

// HasDescription reports whether the task carries a description.
func (t Task) HasDescription() bool {
	return t.Description != nil
}

// DescriptionText returns the description, or "" when absent.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// WithTitle returns a copy of t with a new title.
func (t Task) WithTitle(title string) Task {
	t.Title = title
	return t
}

// WithDescription returns a copy of t with a new description.
func (t Task) WithDescription(desc string) Task {
	t.Description = Describe(desc)
	return t
}

// WithCompleted returns a copy of t with the completion flag set.
func (t Task) WithCompleted(completed bool) Task {
	t.Completed = completed
	return t
}

// Describe returns a description pointer for s, or nil when s is blank.
func Describe(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Active filters out completed tasks, preserving order.
func Active(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}
