package repository

import (
	"context"
	"time"

	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `
    id, project_id, title, state, priority, due_date, assignee_id,
    context_switch_count, rework_count, dod_checked, created_at, updated_at
`

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.State,
		&t.Priority,
		&t.DueDate,
		&t.AssigneeID,
		&t.ContextSwitchCount,
		&t.ReworkCount,
		&t.DoDChecked,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int, error) {
	defer observe(time.Now(), "insert", "tasks")
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.String("title", t.Title),
	)
	query := `
        INSERT INTO tasks (project_id, title, state, priority, due_date, assignee_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.State,
		t.Priority,
		t.DueDate,
		t.AssigneeID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return 0, mapError(err)
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", t.ID),
		zap.Int("project_id", t.ProjectID),
	)
	return t.ID, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (*model.Task, error) {
	defer observe(time.Now(), "select", "tasks")
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *TaskRepository) collect(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	defer observe(time.Now(), "select", "tasks")
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY priority, created_at`
	return r.collect(ctx, query, projectID)
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	return r.collect(ctx, query)
}

func (r *TaskRepository) ListByState(ctx context.Context, state model.TaskState) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE state = $1 ORDER BY created_at`
	return r.collect(ctx, query, state)
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, userID int) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assignee_id = $1 ORDER BY created_at`
	return r.collect(ctx, query, userID)
}

// CountByState backs the work-in-progress limit check.
func (r *TaskRepository) CountByState(ctx context.Context, state model.TaskState) (int, error) {
	defer observe(time.Now(), "select", "tasks")
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE state = $1`, state).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count tasks by state",
			zap.Error(err),
			zap.String("state", string(state)),
		)
		return 0, err
	}
	return count, nil
}

// UpdateState records a lifecycle transition and bumps the movement counters:
// every transition is a context switch, and leaving DONE counts as rework.
func (r *TaskRepository) UpdateState(ctx context.Context, t *model.Task, to model.TaskState) error {
	defer observe(time.Now(), "update", "tasks")
	rework := 0
	if t.State == model.StateDone && to != model.StateDone {
		rework = 1
	}
	query := `
        UPDATE tasks
        SET state = $1,
            context_switch_count = context_switch_count + 1,
            rework_count = rework_count + $2,
            updated_at = NOW()
        WHERE id = $3
        RETURNING context_switch_count, rework_count, updated_at
    `
	err := r.db.QueryRow(ctx, query, to, rework, t.ID).
		Scan(&t.ContextSwitchCount, &t.ReworkCount, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to update task state",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return mapError(err)
	}
	r.logger.Info("Task state updated",
		zap.Int("task_id", t.ID),
		zap.String("from", string(t.State)),
		zap.String("to", string(to)),
	)
	t.State = to
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	defer observe(time.Now(), "update", "tasks")
	query := `
        UPDATE tasks
        SET title = $1, priority = $2, due_date = $3, assignee_id = $4, updated_at = NOW()
        WHERE id = $5
    `
	result, err := r.db.Exec(ctx, query, t.Title, t.Priority, t.DueDate, t.AssigneeID, t.ID)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDoDChecked flips the denormalized flag kept on the task row whenever a
// definition of done is attached or removed.
func (r *TaskRepository) SetDoDChecked(ctx context.Context, taskID int, checked bool) error {
	defer observe(time.Now(), "update", "tasks")
	result, err := r.db.Exec(ctx,
		`UPDATE tasks SET dod_checked = $1, updated_at = NOW() WHERE id = $2`,
		checked, taskID)
	if err != nil {
		r.logger.Error("Failed to set dod_checked",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	defer observe(time.Now(), "delete", "tasks")
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Task deleted", zap.Int("task_id", id))
	return nil
}
