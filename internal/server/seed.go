package server

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/todolite/todolite/internal/models"
)

// seedFile is the YAML layout accepted by --seed:
//
//	todos:
//	  - title: Buy milk
//	    description: 2 litres
//	  - title: Call mom
//	    completed: true
type seedFile struct {
	Todos []seedTodo `yaml:"todos"`
}

type seedTodo struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Completed   bool   `yaml:"completed"`
}

// ParseSeed decodes seed YAML into tasks without IDs.
func ParseSeed(data []byte) ([]models.Task, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	tasks := make([]models.Task, 0, len(f.Todos))
	for i, t := range f.Todos {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			return nil, fmt.Errorf("parse seed: todo %d has no title", i+1)
		}
		tasks = append(tasks, models.Task{
			Title:       title,
			Description: models.Describe(t.Description),
			Completed:   t.Completed,
		})
	}
	return tasks, nil
}

// Seed creates tasks in store unless it already holds todos.
// It returns the number of todos created.
func Seed(ctx context.Context, store Store, tasks []models.Task) (int, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, t := range tasks {
		if _, err := store.Create(ctx, t); err != nil {
			return i, err
		}
	}
	return len(tasks), nil
}

// SeedFromFile reads path and seeds store from it.
func SeedFromFile(ctx context.Context, store Store, path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied
	if err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}
	tasks, err := ParseSeed(data)
	if err != nil {
		return 0, err
	}
	return Seed(ctx, store, tasks)
}
