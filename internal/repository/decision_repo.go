package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type DecisionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDecisionRepository(db *pgxpool.Pool, logger *zap.Logger) *DecisionRepository {
	return &DecisionRepository{db: db, logger: logger}
}

const decisionColumns = `
    id, task_id, date, problem, options, decision_reason, assumptions_risks,
    d_plus_7_review, created_at
`

func scanDecision(row interface{ Scan(...any) error }) (*model.DecisionLog, error) {
	var d model.DecisionLog
	err := row.Scan(
		&d.ID,
		&d.TaskID,
		&d.Date,
		&d.Problem,
		&d.Options,
		&d.DecisionReason,
		&d.AssumptionsRisks,
		&d.DPlus7Review,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DecisionRepository) Insert(ctx context.Context, d *model.DecisionLog) (int, error) {
	r.logger.Debug("Inserting decision log", zap.Int("task_id", d.TaskID))
	query := `
        INSERT INTO decision_logs (task_id, date, problem, options, decision_reason, assumptions_risks)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		d.TaskID,
		d.Date,
		d.Problem,
		d.Options,
		d.DecisionReason,
		d.AssumptionsRisks,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert decision log",
			zap.Error(err),
			zap.Int("task_id", d.TaskID),
		)
		return 0, mapError(err)
	}
	r.logger.Info("Decision log inserted successfully",
		zap.Int("decision_id", d.ID),
		zap.Int("task_id", d.TaskID),
	)
	return d.ID, nil
}

func (r *DecisionRepository) GetByID(ctx context.Context, id int) (*model.DecisionLog, error) {
	query := `SELECT ` + decisionColumns + ` FROM decision_logs WHERE id = $1`
	d, err := scanDecision(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

func (r *DecisionRepository) collect(ctx context.Context, query string, args ...any) ([]model.DecisionLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query decision logs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	decisions := []model.DecisionLog{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			r.logger.Error("Failed to scan decision row", zap.Error(err))
			return nil, err
		}
		decisions = append(decisions, *d)
	}
	return decisions, rows.Err()
}

func (r *DecisionRepository) ListByTask(ctx context.Context, taskID int) ([]model.DecisionLog, error) {
	query := `SELECT ` + decisionColumns + ` FROM decision_logs WHERE task_id = $1 ORDER BY date DESC`
	return r.collect(ctx, query, taskID)
}

func (r *DecisionRepository) ListAll(ctx context.Context) ([]model.DecisionLog, error) {
	query := `SELECT ` + decisionColumns + ` FROM decision_logs ORDER BY date DESC`
	return r.collect(ctx, query)
}

// SetDPlus7Review writes the retrospective for a decision.
func (r *DecisionRepository) SetDPlus7Review(ctx context.Context, id int, review string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE decision_logs SET d_plus_7_review = $1 WHERE id = $2`,
		review, id)
	if err != nil {
		r.logger.Error("Failed to set D+7 review",
			zap.Error(err),
			zap.Int("decision_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("D+7 review recorded", zap.Int("decision_id", id))
	return nil
}

func (r *DecisionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM decision_logs WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete decision log",
			zap.Error(err),
			zap.Int("decision_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
