package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"opsboard/internal/model"
)

type CreateTaskParams struct {
	ProjectID int        `json:"project_id"`
	Title     string     `json:"title"`
	Priority  *int       `json:"priority,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskParams struct {
	Title    *string    `json:"title,omitempty"`
	Priority *int       `json:"priority,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, params CreateTaskParams) (*model.Task, error) {
	var t model.Task
	if err := c.post(ctx, "/tasks", params, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns all tasks, or only a project's tasks when projectID is
// non-nil.
func (c *Client) ListTasks(ctx context.Context, projectID *int) ([]model.Task, error) {
	var query url.Values
	if projectID != nil {
		query = url.Values{"project_id": []string{strconv.Itoa(*projectID)}}
	}
	var tasks []model.Task
	if err := c.get(ctx, "/tasks", query, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (*model.Task, error) {
	var t model.Task
	if err := c.get(ctx, fmt.Sprintf("/tasks/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ChangeTaskState moves a task through its lifecycle. Moving into IN_PROGRESS
// can be refused with a 400 when the WIP limit is reached.
func (c *Client) ChangeTaskState(ctx context.Context, id int, state model.TaskState) (*model.Task, error) {
	var t model.Task
	body := map[string]model.TaskState{"state": state}
	if err := c.patch(ctx, fmt.Sprintf("/tasks/%d/state", id), body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int, params UpdateTaskParams) (*model.Task, error) {
	var t model.Task
	if err := c.patch(ctx, fmt.Sprintf("/tasks/%d", id), params, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/tasks/%d", id))
}
