package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type DoDRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDoDRepository(db *pgxpool.Pool, logger *zap.Logger) *DoDRepository {
	return &DoDRepository{db: db, logger: logger}
}

// Insert attaches a definition of done to a task and flips the task's
// dod_checked flag in the same transaction. The unique index on task_id turns
// a second attempt into ErrConflict.
func (r *DoDRepository) Insert(ctx context.Context, d *model.DoD) (int, error) {
	r.logger.Debug("Inserting DoD", zap.Int("task_id", d.TaskID))
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO dod (task_id, deliverable_formats, mandatory_checks, quality_bar, verification, deadline, version_tag)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query,
		d.TaskID,
		d.DeliverableFormats,
		d.MandatoryChecks,
		d.QualityBar,
		d.Verification,
		d.Deadline,
		d.VersionTag,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert DoD",
			zap.Error(err),
			zap.Int("task_id", d.TaskID),
		)
		return 0, mapError(err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET dod_checked = TRUE, updated_at = NOW() WHERE id = $1`,
		d.TaskID); err != nil {
		r.logger.Error("Failed to mark task dod_checked",
			zap.Error(err),
			zap.Int("task_id", d.TaskID),
		)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	r.logger.Info("DoD inserted successfully",
		zap.Int("dod_id", d.ID),
		zap.Int("task_id", d.TaskID),
	)
	return d.ID, nil
}

func (r *DoDRepository) GetByTask(ctx context.Context, taskID int) (*model.DoD, error) {
	query := `
        SELECT id, task_id, deliverable_formats, mandatory_checks, quality_bar,
               verification, deadline, version_tag, created_at
        FROM dod
        WHERE task_id = $1
    `
	var d model.DoD
	err := r.db.QueryRow(ctx, query, taskID).Scan(
		&d.ID,
		&d.TaskID,
		&d.DeliverableFormats,
		&d.MandatoryChecks,
		&d.QualityBar,
		&d.Verification,
		&d.Deadline,
		&d.VersionTag,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (r *DoDRepository) GetByID(ctx context.Context, id int) (*model.DoD, error) {
	query := `
        SELECT id, task_id, deliverable_formats, mandatory_checks, quality_bar,
               verification, deadline, version_tag, created_at
        FROM dod
        WHERE id = $1
    `
	var d model.DoD
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.TaskID,
		&d.DeliverableFormats,
		&d.MandatoryChecks,
		&d.QualityBar,
		&d.Verification,
		&d.Deadline,
		&d.VersionTag,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (r *DoDRepository) Update(ctx context.Context, d *model.DoD) error {
	query := `
        UPDATE dod
        SET deliverable_formats = $1, mandatory_checks = $2, quality_bar = $3,
            verification = $4, deadline = $5, version_tag = $6
        WHERE id = $7
    `
	result, err := r.db.Exec(ctx, query,
		d.DeliverableFormats,
		d.MandatoryChecks,
		d.QualityBar,
		d.Verification,
		d.Deadline,
		d.VersionTag,
		d.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update DoD",
			zap.Error(err),
			zap.Int("dod_id", d.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the definition of done and clears the task's dod_checked
// flag in the same transaction.
func (r *DoDRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var taskID int
	err = tx.QueryRow(ctx, `DELETE FROM dod WHERE id = $1 RETURNING task_id`, id).Scan(&taskID)
	if err != nil {
		r.logger.Error("Failed to delete DoD",
			zap.Error(err),
			zap.Int("dod_id", id),
		)
		return mapError(err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET dod_checked = FALSE, updated_at = NOW() WHERE id = $1`,
		taskID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *DoDRepository) ListAll(ctx context.Context) ([]model.DoD, error) {
	query := `
        SELECT id, task_id, deliverable_formats, mandatory_checks, quality_bar,
               verification, deadline, version_tag, created_at
        FROM dod
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query DoDs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	dods := []model.DoD{}
	for rows.Next() {
		var d model.DoD
		if err := rows.Scan(
			&d.ID,
			&d.TaskID,
			&d.DeliverableFormats,
			&d.MandatoryChecks,
			&d.QualityBar,
			&d.Verification,
			&d.Deadline,
			&d.VersionTag,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		dods = append(dods, d)
	}
	return dods, rows.Err()
}

// TaskIDsWithDoD returns the set of task ids that have a definition of done.
func (r *DoDRepository) TaskIDsWithDoD(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT task_id FROM dod`)
	if err != nil {
		r.logger.Error("Failed to query DoD task ids", zap.Error(err))
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
