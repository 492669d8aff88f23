package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// schema is applied at startup. Unique indexes on briefs.task_id and
// dod.task_id enforce the at-most-one-per-task invariants; the repositories
// surface violations as ErrConflict.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id INT NOT NULL REFERENCES users(id),
		is_private BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		project_id INT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT 'BACKLOG',
		priority INT NOT NULL DEFAULT 3,
		due_date DATE,
		assignee_id INT REFERENCES users(id),
		context_switch_count INT NOT NULL DEFAULT 0,
		rework_count INT NOT NULL DEFAULT 0,
		dod_checked BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_state ON tasks(state)`,
	`CREATE TABLE IF NOT EXISTS briefs (
		id SERIAL PRIMARY KEY,
		task_id INT NOT NULL UNIQUE REFERENCES tasks(id) ON DELETE CASCADE,
		purpose TEXT NOT NULL,
		success_criteria TEXT NOT NULL,
		constraints TEXT NOT NULL,
		priority TEXT NOT NULL,
		validation TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS dod (
		id SERIAL PRIMARY KEY,
		task_id INT NOT NULL UNIQUE REFERENCES tasks(id) ON DELETE CASCADE,
		deliverable_formats TEXT NOT NULL,
		mandatory_checks JSONB NOT NULL DEFAULT '[]',
		quality_bar TEXT NOT NULL,
		verification TEXT NOT NULL,
		deadline DATE,
		version_tag TEXT NOT NULL DEFAULT 'v0.1',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS decision_logs (
		id SERIAL PRIMARY KEY,
		task_id INT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		problem TEXT NOT NULL,
		options TEXT NOT NULL,
		decision_reason TEXT NOT NULL,
		assumptions_risks TEXT NOT NULL,
		d_plus_7_review TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id SERIAL PRIMARY KEY,
		task_id INT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		review_type TEXT NOT NULL,
		positives TEXT NOT NULL,
		negatives TEXT NOT NULL,
		changes_next TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		id SERIAL PRIMARY KEY,
		task_id INT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		proportion DOUBLE PRECISION NOT NULL DEFAULT 0.1,
		notes TEXT NOT NULL DEFAULT '',
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id SERIAL PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		task_id INT REFERENCES tasks(id) ON DELETE CASCADE,
		project_id INT REFERENCES projects(id) ON DELETE CASCADE,
		scheduled_for TIMESTAMPTZ NOT NULL,
		sent_at TIMESTAMPTZ,
		read_at TIMESTAMPTZ,
		dismissed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status)`,
	`CREATE TABLE IF NOT EXISTS notification_settings (
		id SERIAL PRIMARY KEY,
		due_date_reminder_days INT NOT NULL DEFAULT 1,
		enable_due_date_reminders BOOLEAN NOT NULL DEFAULT TRUE,
		enable_missing_brief_alerts BOOLEAN NOT NULL DEFAULT TRUE,
		enable_missing_dod_alerts BOOLEAN NOT NULL DEFAULT TRUE,
		stale_task_days INT NOT NULL DEFAULT 7,
		enable_stale_task_alerts BOOLEAN NOT NULL DEFAULT TRUE,
		enable_review_reminders BOOLEAN NOT NULL DEFAULT TRUE,
		review_reminder_frequency_days INT NOT NULL DEFAULT 7,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS templates (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'GENERAL',
		template_type TEXT NOT NULL,
		content JSONB NOT NULL DEFAULT '{}',
		is_system_template BOOLEAN NOT NULL DEFAULT FALSE,
		is_ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
		source_project_id INT REFERENCES projects(id),
		usage_count INT NOT NULL DEFAULT 0,
		success_rate DOUBLE PRECISION,
		tags JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS template_usages (
		id SERIAL PRIMARY KEY,
		template_id INT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		project_id INT REFERENCES projects(id),
		task_id INT REFERENCES tasks(id),
		used_for TEXT NOT NULL,
		was_helpful BOOLEAN,
		feedback_notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS best_practices (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		principles JSONB NOT NULL DEFAULT '[]',
		do_list JSONB NOT NULL DEFAULT '[]',
		dont_list JSONB NOT NULL DEFAULT '[]',
		examples JSONB NOT NULL DEFAULT '[]',
		source TEXT NOT NULL DEFAULT 'internal',
		confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0.8,
		tags JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		id SERIAL PRIMARY KEY,
		project_id INT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id INT NOT NULL REFERENCES users(id),
		role TEXT NOT NULL DEFAULT 'MEMBER',
		permissions TEXT NOT NULL DEFAULT 'READ',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_invites (
		id SERIAL PRIMARY KEY,
		project_id INT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		invited_by_id INT NOT NULL REFERENCES users(id),
		invited_user_id INT REFERENCES users(id),
		invited_email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'MEMBER',
		permissions TEXT NOT NULL DEFAULT 'READ',
		status TEXT NOT NULL DEFAULT 'PENDING',
		invite_token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		responded_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS approval_workflows (
		id SERIAL PRIMARY KEY,
		project_id INT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		task_id INT REFERENCES tasks(id),
		decision_id INT REFERENCES decision_logs(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		requested_by_id INT NOT NULL REFERENCES users(id),
		required_approvers INT NOT NULL DEFAULT 1,
		approver_user_ids JSONB NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS approval_responses (
		id SERIAL PRIMARY KEY,
		workflow_id INT NOT NULL REFERENCES approval_workflows(id) ON DELETE CASCADE,
		approver_id INT NOT NULL REFERENCES users(id),
		is_approved BOOLEAN NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (workflow_id, approver_id)
	)`,
	`CREATE TABLE IF NOT EXISTS team_decisions (
		id SERIAL PRIMARY KEY,
		project_id INT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		task_id INT REFERENCES tasks(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		options JSONB NOT NULL DEFAULT '[]',
		is_voting_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		voting_deadline TIMESTAMPTZ,
		allow_multiple_votes BOOLEAN NOT NULL DEFAULT FALSE,
		is_concluded BOOLEAN NOT NULL DEFAULT FALSE,
		final_decision TEXT NOT NULL DEFAULT '',
		decision_rationale TEXT NOT NULL DEFAULT '',
		created_by_id INT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		concluded_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS decision_votes (
		id SERIAL PRIMARY KEY,
		decision_id INT NOT NULL REFERENCES team_decisions(id) ON DELETE CASCADE,
		voter_id INT NOT NULL REFERENCES users(id),
		selected_options JSONB NOT NULL DEFAULT '[]',
		reasoning TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS decision_comments (
		id SERIAL PRIMARY KEY,
		decision_id INT NOT NULL REFERENCES team_decisions(id) ON DELETE CASCADE,
		author_id INT NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		parent_comment_id INT REFERENCES decision_comments(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Projects created without an explicit owner fall back to this user, so
	// a fresh database accepts writes before anyone registers.
	`INSERT INTO users (id, username, email, full_name)
		VALUES (1, 'admin', 'admin@opsboard.local', 'Administrator')
		ON CONFLICT (id) DO NOTHING`,
	`SELECT setval('users_id_seq', GREATEST((SELECT MAX(id) FROM users), 1))`,
}

// EnsureSchema applies the DDL. Statements are idempotent, so running it on
// every startup is safe.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.Error("Schema statement failed", zap.Error(err))
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	logger.Info("Database schema ensured")
	return nil
}
