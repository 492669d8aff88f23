package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TemplateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTemplateRepository(db *pgxpool.Pool, logger *zap.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

const templateColumns = `
    id, name, description, category, template_type, content,
    is_system_template, is_ai_generated, source_project_id,
    usage_count, success_rate, tags, created_at, updated_at
`

func scanTemplate(row interface{ Scan(...any) error }) (*model.Template, error) {
	var t model.Template
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Category,
		&t.Type,
		&t.Content,
		&t.IsSystemTemplate,
		&t.IsAIGenerated,
		&t.SourceProjectID,
		&t.UsageCount,
		&t.SuccessRate,
		&t.Tags,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) Insert(ctx context.Context, t *model.Template) (int, error) {
	r.logger.Debug("Inserting template",
		zap.String("name", t.Name),
		zap.String("type", string(t.Type)),
	)
	query := `
        INSERT INTO templates (
            name, description, category, template_type, content,
            is_system_template, is_ai_generated, source_project_id, success_rate, tags
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.Name,
		t.Description,
		t.Category,
		t.Type,
		t.Content,
		t.IsSystemTemplate,
		t.IsAIGenerated,
		t.SourceProjectID,
		t.SuccessRate,
		t.Tags,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert template",
			zap.Error(err),
			zap.String("name", t.Name),
		)
		return 0, mapError(err)
	}
	return t.ID, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id int) (*model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *TemplateRepository) collect(ctx context.Context, query string, args ...any) ([]model.Template, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query templates", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			r.logger.Error("Failed to scan template row", zap.Error(err))
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// List returns templates, optionally filtered by category and type. Empty
// filters match everything.
func (r *TemplateRepository) List(ctx context.Context, category model.TemplateCategory, typ model.TemplateType) ([]model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE 1=1`
	args := []any{}
	if category != "" {
		args = append(args, category)
		query += ` AND category = $1`
	}
	if typ != "" {
		args = append(args, typ)
		if len(args) == 1 {
			query += ` AND template_type = $1`
		} else {
			query += ` AND template_type = $2`
		}
	}
	query += ` ORDER BY usage_count DESC, created_at DESC`
	return r.collect(ctx, query, args...)
}

func (r *TemplateRepository) CountSystemTemplates(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM templates WHERE is_system_template`,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count system templates", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *model.Template) error {
	query := `
        UPDATE templates
        SET name = $1, description = $2, category = $3, content = $4,
            success_rate = $5, tags = $6, updated_at = NOW()
        WHERE id = $7
    `
	result, err := r.db.Exec(ctx, query,
		t.Name,
		t.Description,
		t.Category,
		t.Content,
		t.SuccessRate,
		t.Tags,
		t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update template",
			zap.Error(err),
			zap.Int("template_id", t.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete template",
			zap.Error(err),
			zap.Int("template_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordUsage stores the usage and bumps the template's counter in one
// transaction.
func (r *TemplateRepository) RecordUsage(ctx context.Context, u *model.TemplateUsage) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO template_usages (template_id, project_id, task_id, used_for, was_helpful, feedback_notes)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query,
		u.TemplateID,
		u.ProjectID,
		u.TaskID,
		u.UsedFor,
		u.WasHelpful,
		u.FeedbackNotes,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to record template usage",
			zap.Error(err),
			zap.Int("template_id", u.TemplateID),
		)
		return 0, mapError(err)
	}
	result, err := tx.Exec(ctx,
		`UPDATE templates SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`,
		u.TemplateID)
	if err != nil {
		return 0, err
	}
	if result.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (r *TemplateRepository) ListUsages(ctx context.Context, templateID int) ([]model.TemplateUsage, error) {
	query := `
        SELECT id, template_id, project_id, task_id, used_for, was_helpful, feedback_notes, created_at
        FROM template_usages
        WHERE template_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, templateID)
	if err != nil {
		r.logger.Error("Failed to query template usages", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	usages := []model.TemplateUsage{}
	for rows.Next() {
		var u model.TemplateUsage
		if err := rows.Scan(
			&u.ID,
			&u.TemplateID,
			&u.ProjectID,
			&u.TaskID,
			&u.UsedFor,
			&u.WasHelpful,
			&u.FeedbackNotes,
			&u.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan usage row", zap.Error(err))
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

func (r *TemplateRepository) InsertBestPractice(ctx context.Context, bp *model.BestPractice) (int, error) {
	query := `
        INSERT INTO best_practices (
            title, description, category, principles, do_list, dont_list,
            examples, source, confidence_score, tags
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		bp.Title,
		bp.Description,
		bp.Category,
		bp.Principles,
		bp.DoList,
		bp.DontList,
		bp.Examples,
		bp.Source,
		bp.ConfidenceScore,
		bp.Tags,
	).Scan(&bp.ID, &bp.CreatedAt, &bp.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert best practice", zap.Error(err))
		return 0, mapError(err)
	}
	return bp.ID, nil
}

func (r *TemplateRepository) ListBestPractices(ctx context.Context, category model.TemplateCategory) ([]model.BestPractice, error) {
	query := `
        SELECT id, title, description, category, principles, do_list, dont_list,
               examples, source, confidence_score, tags, created_at, updated_at
        FROM best_practices
    `
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY confidence_score DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query best practices", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	practices := []model.BestPractice{}
	for rows.Next() {
		var bp model.BestPractice
		if err := rows.Scan(
			&bp.ID,
			&bp.Title,
			&bp.Description,
			&bp.Category,
			&bp.Principles,
			&bp.DoList,
			&bp.DontList,
			&bp.Examples,
			&bp.Source,
			&bp.ConfidenceScore,
			&bp.Tags,
			&bp.CreatedAt,
			&bp.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan best practice row", zap.Error(err))
			return nil, err
		}
		practices = append(practices, bp)
	}
	return practices, rows.Err()
}
