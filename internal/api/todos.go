package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/todolite/todolite/internal/models"
)

const todosPath = "/todos"

// createTodoRequest is the POST /todos body. A nil description encodes as null.
type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

// List fetches every task the remote holds, completed ones included.
func (c *Client) List(ctx context.Context) ([]models.Task, error) {
	resp, err := c.Get(ctx, todosPath)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := resp.UnmarshalData(&tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create adds a task and returns the server's record, including its id.
func (c *Client) Create(ctx context.Context, title string, description *string) (models.Task, error) {
	resp, err := c.Post(ctx, todosPath, createTodoRequest{
		Title:       title,
		Description: description,
	})
	if err != nil {
		return models.Task{}, err
	}

	var task models.Task
	if err := resp.UnmarshalData(&task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Update replaces the record stored under id.
func (c *Client) Update(ctx context.Context, id int64, task models.Task) (models.Task, error) {
	task.ID = id
	resp, err := c.Put(ctx, todoPath(id), task)
	if err != nil {
		return models.Task{}, err
	}

	var updated models.Task
	if err := resp.UnmarshalData(&updated); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// Delete removes the record stored under id. Success is judged by status
// class alone; the body is ignored.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, todoPath(id), nil)
	return err
}

func todoPath(id int64) string {
	return fmt.Sprintf("%s/%d", todosPath, id)
}
