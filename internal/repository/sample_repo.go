package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SampleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSampleRepository(db *pgxpool.Pool, logger *zap.Logger) *SampleRepository {
	return &SampleRepository{db: db, logger: logger}
}

func (r *SampleRepository) Insert(ctx context.Context, s *model.Sample) (int, error) {
	r.logger.Debug("Inserting sample",
		zap.Int("task_id", s.TaskID),
		zap.Float64("proportion", s.Proportion),
	)
	query := `
        INSERT INTO samples (task_id, proportion, notes, approved)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		s.TaskID,
		s.Proportion,
		s.Notes,
		s.Approved,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert sample",
			zap.Error(err),
			zap.Int("task_id", s.TaskID),
		)
		return 0, mapError(err)
	}
	return s.ID, nil
}

func (r *SampleRepository) GetByID(ctx context.Context, id int) (*model.Sample, error) {
	query := `
        SELECT id, task_id, proportion, notes, approved, created_at
        FROM samples
        WHERE id = $1
    `
	var s model.Sample
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.TaskID, &s.Proportion, &s.Notes, &s.Approved, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *SampleRepository) ListAll(ctx context.Context) ([]model.Sample, error) {
	query := `
        SELECT id, task_id, proportion, notes, approved, created_at
        FROM samples
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query samples", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	samples := []model.Sample{}
	for rows.Next() {
		var s model.Sample
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Proportion, &s.Notes, &s.Approved, &s.CreatedAt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (r *SampleRepository) ListByTask(ctx context.Context, taskID int) ([]model.Sample, error) {
	query := `
        SELECT id, task_id, proportion, notes, approved, created_at
        FROM samples
        WHERE task_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query samples", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	samples := []model.Sample{}
	for rows.Next() {
		var s model.Sample
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Proportion, &s.Notes, &s.Approved, &s.CreatedAt); err != nil {
			r.logger.Error("Failed to scan sample row", zap.Error(err))
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// SetApproved records the sample validation verdict.
func (r *SampleRepository) SetApproved(ctx context.Context, id int, approved bool) error {
	result, err := r.db.Exec(ctx,
		`UPDATE samples SET approved = $1 WHERE id = $2`,
		approved, id)
	if err != nil {
		r.logger.Error("Failed to set sample approval",
			zap.Error(err),
			zap.Int("sample_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SampleRepository) Update(ctx context.Context, s *model.Sample) error {
	result, err := r.db.Exec(ctx,
		`UPDATE samples SET proportion = $1, notes = $2, approved = $3 WHERE id = $4`,
		s.Proportion, s.Notes, s.Approved, s.ID)
	if err != nil {
		r.logger.Error("Failed to update sample",
			zap.Error(err),
			zap.Int("sample_id", s.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SampleRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM samples WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete sample",
			zap.Error(err),
			zap.Int("sample_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Counts returns the total and approved sample counts, the inputs of the
// sample validation rate.
func (r *SampleRepository) Counts(ctx context.Context) (total, approved int, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE approved) FROM samples`,
	).Scan(&total, &approved)
	if err != nil {
		r.logger.Error("Failed to count samples", zap.Error(err))
		return 0, 0, err
	}
	return total, approved, nil
}
