package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BriefRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBriefRepository(db *pgxpool.Pool, logger *zap.Logger) *BriefRepository {
	return &BriefRepository{db: db, logger: logger}
}

// Insert attaches a brief to a task. The unique index on task_id turns a
// second attempt into ErrConflict.
func (r *BriefRepository) Insert(ctx context.Context, b *model.Brief) (int, error) {
	r.logger.Debug("Inserting brief", zap.Int("task_id", b.TaskID))
	query := `
        INSERT INTO briefs (task_id, purpose, success_criteria, constraints, priority, validation)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		b.TaskID,
		b.Purpose,
		b.SuccessCriteria,
		b.Constraints,
		b.Priority,
		b.Validation,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert brief",
			zap.Error(err),
			zap.Int("task_id", b.TaskID),
		)
		return 0, mapError(err)
	}
	r.logger.Info("Brief inserted successfully",
		zap.Int("brief_id", b.ID),
		zap.Int("task_id", b.TaskID),
	)
	return b.ID, nil
}

func (r *BriefRepository) GetByTask(ctx context.Context, taskID int) (*model.Brief, error) {
	query := `
        SELECT id, task_id, purpose, success_criteria, constraints, priority, validation, created_at
        FROM briefs
        WHERE task_id = $1
    `
	var b model.Brief
	err := r.db.QueryRow(ctx, query, taskID).Scan(
		&b.ID,
		&b.TaskID,
		&b.Purpose,
		&b.SuccessCriteria,
		&b.Constraints,
		&b.Priority,
		&b.Validation,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

func (r *BriefRepository) GetByID(ctx context.Context, id int) (*model.Brief, error) {
	query := `
        SELECT id, task_id, purpose, success_criteria, constraints, priority, validation, created_at
        FROM briefs
        WHERE id = $1
    `
	var b model.Brief
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.TaskID,
		&b.Purpose,
		&b.SuccessCriteria,
		&b.Constraints,
		&b.Priority,
		&b.Validation,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

func (r *BriefRepository) Update(ctx context.Context, b *model.Brief) error {
	query := `
        UPDATE briefs
        SET purpose = $1, success_criteria = $2, constraints = $3, priority = $4, validation = $5
        WHERE id = $6
    `
	result, err := r.db.Exec(ctx, query,
		b.Purpose,
		b.SuccessCriteria,
		b.Constraints,
		b.Priority,
		b.Validation,
		b.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update brief",
			zap.Error(err),
			zap.Int("brief_id", b.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BriefRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM briefs WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete brief",
			zap.Error(err),
			zap.Int("brief_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BriefRepository) ListAll(ctx context.Context) ([]model.Brief, error) {
	query := `
        SELECT id, task_id, purpose, success_criteria, constraints, priority, validation, created_at
        FROM briefs
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query briefs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	briefs := []model.Brief{}
	for rows.Next() {
		var b model.Brief
		if err := rows.Scan(
			&b.ID,
			&b.TaskID,
			&b.Purpose,
			&b.SuccessCriteria,
			&b.Constraints,
			&b.Priority,
			&b.Validation,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}

// TaskIDsWithBrief returns the set of task ids that have a brief attached.
func (r *BriefRepository) TaskIDsWithBrief(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT task_id FROM briefs`)
	if err != nil {
		r.logger.Error("Failed to query brief task ids", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	ids := map[int]bool{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
