package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReviewRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReviewRepository(db *pgxpool.Pool, logger *zap.Logger) *ReviewRepository {
	return &ReviewRepository{db: db, logger: logger}
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *model.Review) (int, error) {
	r.logger.Debug("Inserting review",
		zap.Int("task_id", rv.TaskID),
		zap.String("type", string(rv.ReviewType)),
	)
	query := `
        INSERT INTO reviews (task_id, review_type, positives, negatives, changes_next)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		rv.TaskID,
		rv.ReviewType,
		rv.Positives,
		rv.Negatives,
		rv.ChangesNext,
	).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert review",
			zap.Error(err),
			zap.Int("task_id", rv.TaskID),
		)
		return 0, mapError(err)
	}
	return rv.ID, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int) (*model.Review, error) {
	query := `
        SELECT id, task_id, review_type, positives, negatives, changes_next, created_at
        FROM reviews
        WHERE id = $1
    `
	var rv model.Review
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.TaskID,
		&rv.ReviewType,
		&rv.Positives,
		&rv.Negatives,
		&rv.ChangesNext,
		&rv.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &rv, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *model.Review) error {
	query := `
        UPDATE reviews
        SET review_type = $1, positives = $2, negatives = $3, changes_next = $4
        WHERE id = $5
    `
	result, err := r.db.Exec(ctx, query,
		rv.ReviewType,
		rv.Positives,
		rv.Negatives,
		rv.ChangesNext,
		rv.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update review",
			zap.Error(err),
			zap.Int("review_id", rv.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) ListByTask(ctx context.Context, taskID int) ([]model.Review, error) {
	query := `
        SELECT id, task_id, review_type, positives, negatives, changes_next, created_at
        FROM reviews
        WHERE task_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query reviews", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.TaskID,
			&rv.ReviewType,
			&rv.Positives,
			&rv.Negatives,
			&rv.ChangesNext,
			&rv.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan review row", zap.Error(err))
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]model.Review, error) {
	query := `
        SELECT id, task_id, review_type, positives, negatives, changes_next, created_at
        FROM reviews
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query reviews", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.TaskID,
			&rv.ReviewType,
			&rv.Positives,
			&rv.Negatives,
			&rv.ChangesNext,
			&rv.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete review",
			zap.Error(err),
			zap.Int("review_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
