package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

const notificationColumns = `
    id, type, title, message, status, task_id, project_id, scheduled_for,
    sent_at, read_at, dismissed_at, created_at, updated_at
`

func scanNotification(row interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(
		&n.ID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Status,
		&n.TaskID,
		&n.ProjectID,
		&n.ScheduledFor,
		&n.SentAt,
		&n.ReadAt,
		&n.DismissedAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) (int, error) {
	r.logger.Debug("Inserting notification",
		zap.String("type", string(n.Type)),
		zap.String("title", n.Title),
	)
	query := `
        INSERT INTO notifications (type, title, message, status, task_id, project_id, scheduled_for)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		n.Type,
		n.Title,
		n.Message,
		n.Status,
		n.TaskID,
		n.ProjectID,
		n.ScheduledFor,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert notification", zap.Error(err))
		return 0, mapError(err)
	}
	return n.ID, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

func (r *NotificationRepository) collect(ctx context.Context, query string, args ...any) ([]model.Notification, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query notifications", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			r.logger.Error("Failed to scan notification row", zap.Error(err))
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// List returns notifications newest first, optionally filtered by status.
func (r *NotificationRepository) List(ctx context.Context, status model.NotificationStatus) ([]model.Notification, error) {
	if status == "" {
		query := `SELECT ` + notificationColumns + ` FROM notifications ORDER BY created_at DESC`
		return r.collect(ctx, query)
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE status = $1 ORDER BY created_at DESC`
	return r.collect(ctx, query, status)
}

// ListActive returns the notifications still awaiting a user action.
func (r *NotificationRepository) ListActive(ctx context.Context) ([]model.Notification, error) {
	query := `
        SELECT ` + notificationColumns + `
        FROM notifications
        WHERE status IN ('PENDING', 'SENT')
        ORDER BY created_at DESC
    `
	return r.collect(ctx, query)
}

// ListDue returns PENDING notifications whose schedule has arrived.
func (r *NotificationRepository) ListDue(ctx context.Context) ([]model.Notification, error) {
	query := `
        SELECT ` + notificationColumns + `
        FROM notifications
        WHERE status = 'PENDING' AND scheduled_for <= NOW()
        ORDER BY scheduled_for
    `
	return r.collect(ctx, query)
}

// Save persists a status transition stamped by the model.
func (r *NotificationRepository) Save(ctx context.Context, n *model.Notification) error {
	query := `
        UPDATE notifications
        SET status = $1, sent_at = $2, read_at = $3, dismissed_at = $4, updated_at = $5
        WHERE id = $6
    `
	result, err := r.db.Exec(ctx, query,
		n.Status,
		n.SentAt,
		n.ReadAt,
		n.DismissedAt,
		n.UpdatedAt,
		n.ID,
	)
	if err != nil {
		r.logger.Error("Failed to save notification",
			zap.Error(err),
			zap.Int("notification_id", n.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether an active notification of this type already covers
// the task. Used by the generator to avoid duplicate alerts.
func (r *NotificationRepository) Exists(ctx context.Context, typ model.NotificationType, taskID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE type = $1 AND task_id = $2 AND status IN ('PENDING', 'SENT')
        )
    `, typ, taskID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check notification existence", zap.Error(err))
		return false, err
	}
	return exists, nil
}

// ExistsForProject is the project-scoped variant of Exists, for alerts not
// tied to a task.
func (r *NotificationRepository) ExistsForProject(ctx context.Context, typ model.NotificationType, projectID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE type = $1 AND project_id = $2 AND task_id IS NULL AND status IN ('PENDING', 'SENT')
        )
    `, typ, projectID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check notification existence", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete notification",
			zap.Error(err),
			zap.Int("notification_id", id),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSettings returns the singleton settings row, falling back to defaults
// when none has been saved yet.
func (r *NotificationRepository) GetSettings(ctx context.Context) (*model.NotificationSettings, error) {
	query := `
        SELECT id, due_date_reminder_days, enable_due_date_reminders,
               enable_missing_brief_alerts, enable_missing_dod_alerts,
               stale_task_days, enable_stale_task_alerts,
               enable_review_reminders, review_reminder_frequency_days,
               created_at, updated_at
        FROM notification_settings
        ORDER BY id
        LIMIT 1
    `
	var s model.NotificationSettings
	err := r.db.QueryRow(ctx, query).Scan(
		&s.ID,
		&s.DueDateReminderDays,
		&s.EnableDueDateReminders,
		&s.EnableMissingBriefAlerts,
		&s.EnableMissingDoDAlerts,
		&s.StaleTaskDays,
		&s.EnableStaleTaskAlerts,
		&s.EnableReviewReminders,
		&s.ReviewReminderFrequencyDays,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if mapError(err) == ErrNotFound {
			defaults := model.DefaultNotificationSettings()
			return &defaults, nil
		}
		return nil, err
	}
	return &s, nil
}

// SaveSettings upserts the singleton settings row.
func (r *NotificationRepository) SaveSettings(ctx context.Context, s *model.NotificationSettings) error {
	if s.ID == 0 {
		query := `
            INSERT INTO notification_settings (
                due_date_reminder_days, enable_due_date_reminders,
                enable_missing_brief_alerts, enable_missing_dod_alerts,
                stale_task_days, enable_stale_task_alerts,
                enable_review_reminders, review_reminder_frequency_days
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, created_at, updated_at
        `
		return r.db.QueryRow(ctx, query,
			s.DueDateReminderDays,
			s.EnableDueDateReminders,
			s.EnableMissingBriefAlerts,
			s.EnableMissingDoDAlerts,
			s.StaleTaskDays,
			s.EnableStaleTaskAlerts,
			s.EnableReviewReminders,
			s.ReviewReminderFrequencyDays,
		).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	}
	query := `
        UPDATE notification_settings
        SET due_date_reminder_days = $1, enable_due_date_reminders = $2,
            enable_missing_brief_alerts = $3, enable_missing_dod_alerts = $4,
            stale_task_days = $5, enable_stale_task_alerts = $6,
            enable_review_reminders = $7, review_reminder_frequency_days = $8,
            updated_at = NOW()
        WHERE id = $9
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		s.DueDateReminderDays,
		s.EnableDueDateReminders,
		s.EnableMissingBriefAlerts,
		s.EnableMissingDoDAlerts,
		s.StaleTaskDays,
		s.EnableStaleTaskAlerts,
		s.EnableReviewReminders,
		s.ReviewReminderFrequencyDays,
		s.ID,
	).Scan(&s.UpdatedAt)
	return mapError(err)
}
