package repository

import (
	"context"
	"time"

	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	defer observe(time.Now(), "insert", "projects")
	r.logger.Debug("Inserting project",
		zap.String("name", p.Name),
		zap.Int("owner_id", p.OwnerID),
	)
	query := `
        INSERT INTO projects (name, description, owner_id, is_private)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.OwnerID,
		p.IsPrivate,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert project",
			zap.Error(err),
			zap.String("name", p.Name),
		)
		return 0, mapError(err)
	}
	r.logger.Info("Project inserted successfully", zap.Int("project_id", p.ID))
	return p.ID, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*model.Project, error) {
	defer observe(time.Now(), "select", "projects")
	query := `
        SELECT id, name, description, owner_id, is_private, created_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.OwnerID,
		&p.IsPrivate,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// ListWithStats returns all projects together with their task counts, newest
// first.
func (r *ProjectRepository) ListWithStats(ctx context.Context) ([]model.ProjectWithStats, error) {
	defer observe(time.Now(), "select", "projects")
	query := `
        SELECT p.id, p.name, p.description, p.created_at, COUNT(t.id)
        FROM projects p
        LEFT JOIN tasks t ON t.project_id = p.id
        GROUP BY p.id
        ORDER BY p.created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.ProjectWithStats{}
	for rows.Next() {
		var p model.ProjectWithStats
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.TaskCount); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	defer observe(time.Now(), "select", "projects")
	query := `
        SELECT id, name, description, owner_id, is_private, created_at
        FROM projects
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.IsPrivate, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	defer observe(time.Now(), "update", "projects")
	query := `
        UPDATE projects
        SET name = $1, description = $2, is_private = $3
        WHERE id = $4
    `
	result, err := r.db.Exec(ctx, query, p.Name, p.Description, p.IsPrivate, p.ID)
	if err != nil {
		r.logger.Error("Failed to update project",
			zap.Error(err),
			zap.Int("project_id", p.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the project. Tasks and everything hanging off them go with
// it through the cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	defer observe(time.Now(), "delete", "projects")
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project",
			zap.Error(err),
			zap.Int("project_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Project deleted", zap.Int("project_id", id))
	return nil
}
