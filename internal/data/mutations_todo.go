package data

import (
	"context"
	"strings"

	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/observability"
	"github.com/todolite/todolite/internal/output"
)

const resourceTodo = "Todo"

// lookup returns the cached task or a local not-found error.
func lookup(store *Store, id int64) (models.Task, error) {
	task, ok := store.Get(id)
	if !ok {
		return models.Task{}, output.ErrNotFoundLocal(resourceTodo, id)
	}
	return task, nil
}

// createMutation adds a task. Nothing is appended locally: the refresh
// afterwards places the new task where the server ordered it.
type createMutation struct {
	text        string
	description *string
	title       string
}

func (m *createMutation) Info() observability.OperationInfo {
	return observability.OperationInfo{Operation: "Create", IsMutation: true}
}

func (m *createMutation) Prepare(*Store) error {
	m.title = strings.TrimSpace(m.text)
	if m.title == "" {
		return errSkip
	}
	if m.description != nil {
		m.description = models.Describe(*m.description)
	}
	return nil
}

func (m *createMutation) ApplyLocally(*Store) bool { return false }

func (m *createMutation) ApplyRemotely(ctx context.Context, remote Remote) error {
	_, err := remote.Create(ctx, m.title, m.description)
	return err
}

func (m *createMutation) Confirm(*Store) bool { return true }

// toggleMutation completes a task. Completion is an update, never a delete,
// and it only goes one way: completed tasks leave the active list.
type toggleMutation struct {
	id     int64
	record models.Task
}

func (m *toggleMutation) Info() observability.OperationInfo {
	return observability.OperationInfo{Operation: "Toggle", ResourceID: m.id, IsMutation: true}
}

func (m *toggleMutation) Prepare(store *Store) error {
	task, err := lookup(store, m.id)
	if err != nil {
		return err
	}
	m.record = task.WithCompleted(true)
	return nil
}

func (m *toggleMutation) ApplyLocally(store *Store) bool {
	return store.Remove(m.id)
}

func (m *toggleMutation) ApplyRemotely(ctx context.Context, remote Remote) error {
	_, err := remote.Update(ctx, m.id, m.record)
	return err
}

func (m *toggleMutation) Confirm(store *Store) bool {
	store.Remove(m.id)
	return true
}

// editMutation renames a task.
type editMutation struct {
	id     int64
	title  *string
	record models.Task
	result models.Task
}

func (m *editMutation) Info() observability.OperationInfo {
	return observability.OperationInfo{Operation: "Edit", ResourceID: m.id, IsMutation: true}
}

func (m *editMutation) Prepare(store *Store) error {
	task, err := lookup(store, m.id)
	if err != nil {
		return err
	}
	if m.title == nil || strings.TrimSpace(*m.title) == "" {
		return errSkip
	}
	m.record = task.WithTitle(strings.TrimSpace(*m.title))
	return nil
}

func (m *editMutation) ApplyLocally(store *Store) bool {
	store.Upsert(m.record)
	return true
}

func (m *editMutation) ApplyRemotely(ctx context.Context, remote Remote) error {
	var err error
	m.result, err = remote.Update(ctx, m.id, m.record)
	return err
}

func (m *editMutation) Confirm(store *Store) bool {
	store.Upsert(m.result)
	return false
}

// deleteMutation removes a task. The cache keeps the task until the remote
// confirms, so a failed delete never shows the task as gone.
type deleteMutation struct {
	id int64
}

func (m *deleteMutation) Info() observability.OperationInfo {
	return observability.OperationInfo{Operation: "Delete", ResourceID: m.id, IsMutation: true}
}

func (m *deleteMutation) Prepare(*Store) error     { return nil }
func (m *deleteMutation) ApplyLocally(*Store) bool { return false }

func (m *deleteMutation) ApplyRemotely(ctx context.Context, remote Remote) error {
	return remote.Delete(ctx, m.id)
}

func (m *deleteMutation) Confirm(store *Store) bool {
	store.Remove(m.id)
	return false
}

// describeMutation replaces a task's description.
type describeMutation struct {
	id     int64
	text   string
	record models.Task
	result models.Task
}

func (m *describeMutation) Info() observability.OperationInfo {
	return observability.OperationInfo{Operation: "SetDescription", ResourceID: m.id, IsMutation: true}
}

func (m *describeMutation) Prepare(store *Store) error {
	if strings.TrimSpace(m.text) == "" {
		return output.ErrValidation("Description cannot be empty")
	}
	task, err := lookup(store, m.id)
	if err != nil {
		return err
	}
	m.record = task.WithDescription(m.text)
	return nil
}

func (m *describeMutation) ApplyLocally(store *Store) bool {
	store.Upsert(m.record)
	return true
}

func (m *describeMutation) ApplyRemotely(ctx context.Context, remote Remote) error {
	var err error
	m.result, err = remote.Update(ctx, m.id, m.record)
	return err
}

func (m *describeMutation) Confirm(store *Store) bool {
	store.Upsert(m.result)
	return false
}
