package client

import (
	"context"
	"fmt"

	"opsboard/internal/model"
)

type CreateProjectParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     int    `json:"owner_id,omitempty"`
	IsPrivate   bool   `json:"is_private,omitempty"`
}

type UpdateProjectParams struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

func (c *Client) CreateProject(ctx context.Context, params CreateProjectParams) (*model.Project, error) {
	var p model.Project
	if err := c.post(ctx, "/projects", params, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]model.ProjectWithStats, error) {
	var projects []model.ProjectWithStats
	if err := c.get(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id int) (*model.Project, error) {
	var p model.Project
	if err := c.get(ctx, fmt.Sprintf("/projects/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int, params UpdateProjectParams) (*model.Project, error) {
	var p model.Project
	if err := c.patch(ctx, fmt.Sprintf("/projects/%d", id), params, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes a project and everything under it.
func (c *Client) DeleteProject(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/projects/%d", id))
}
