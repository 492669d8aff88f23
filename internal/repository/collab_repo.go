package repository

import (
	"context"
	"opsboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CollabRepository persists project membership, invites, approval workflows
// and team decisions.
type CollabRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCollabRepository(db *pgxpool.Pool, logger *zap.Logger) *CollabRepository {
	return &CollabRepository{db: db, logger: logger}
}

// --- members ---

func (r *CollabRepository) InsertMember(ctx context.Context, m *model.ProjectMember) (int, error) {
	query := `
        INSERT INTO project_members (project_id, user_id, role, permissions)
        VALUES ($1, $2, $3, $4)
        RETURNING id, joined_at
    `
	err := r.db.QueryRow(ctx, query,
		m.ProjectID,
		m.UserID,
		m.Role,
		m.Permissions,
	).Scan(&m.ID, &m.JoinedAt)
	if err != nil {
		r.logger.Error("Failed to insert project member",
			zap.Error(err),
			zap.Int("project_id", m.ProjectID),
			zap.Int("user_id", m.UserID),
		)
		return 0, mapError(err)
	}
	return m.ID, nil
}

func (r *CollabRepository) GetMember(ctx context.Context, projectID, userID int) (*model.ProjectMember, error) {
	query := `
        SELECT id, project_id, user_id, role, permissions, joined_at
        FROM project_members
        WHERE project_id = $1 AND user_id = $2
    `
	var m model.ProjectMember
	err := r.db.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.Permissions, &m.JoinedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

func (r *CollabRepository) ListMembers(ctx context.Context, projectID int) ([]model.ProjectMember, error) {
	query := `
        SELECT id, project_id, user_id, role, permissions, joined_at
        FROM project_members
        WHERE project_id = $1
        ORDER BY joined_at
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query project members", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	members := []model.ProjectMember{}
	for rows.Next() {
		var m model.ProjectMember
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.Permissions, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *CollabRepository) UpdateMemberPermissions(ctx context.Context, projectID, userID int, role model.UserRole, perms model.SharePermission) error {
	result, err := r.db.Exec(ctx, `
        UPDATE project_members SET role = $1, permissions = $2
        WHERE project_id = $3 AND user_id = $4
    `, role, perms, projectID, userID)
	if err != nil {
		r.logger.Error("Failed to update member permissions", zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CollabRepository) RemoveMember(ctx context.Context, projectID, userID int) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	if err != nil {
		r.logger.Error("Failed to remove project member", zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProjectIDsForUser returns the projects the user belongs to or owns.
func (r *CollabRepository) ListProjectIDsForUser(ctx context.Context, userID int) ([]int, error) {
	query := `
        SELECT p.id FROM projects p WHERE p.owner_id = $1
        UNION
        SELECT m.project_id FROM project_members m WHERE m.user_id = $1
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query user projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- invites ---

const inviteColumns = `
    id, project_id, invited_by_id, invited_user_id, invited_email, role,
    permissions, status, invite_token, expires_at, created_at, responded_at
`

func scanInvite(row interface{ Scan(...any) error }) (*model.ProjectInvite, error) {
	var i model.ProjectInvite
	err := row.Scan(
		&i.ID,
		&i.ProjectID,
		&i.InvitedByID,
		&i.InvitedUserID,
		&i.InvitedEmail,
		&i.Role,
		&i.Permissions,
		&i.Status,
		&i.InviteToken,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *CollabRepository) InsertInvite(ctx context.Context, i *model.ProjectInvite) (int, error) {
	query := `
        INSERT INTO project_invites (
            project_id, invited_by_id, invited_user_id, invited_email,
            role, permissions, status, invite_token, expires_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		i.ProjectID,
		i.InvitedByID,
		i.InvitedUserID,
		i.InvitedEmail,
		i.Role,
		i.Permissions,
		i.Status,
		i.InviteToken,
		i.ExpiresAt,
	).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert invite",
			zap.Error(err),
			zap.Int("project_id", i.ProjectID),
		)
		return 0, mapError(err)
	}
	return i.ID, nil
}

func (r *CollabRepository) GetInviteByToken(ctx context.Context, token string) (*model.ProjectInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM project_invites WHERE invite_token = $1`
	i, err := scanInvite(r.db.QueryRow(ctx, query, token))
	if err != nil {
		return nil, mapError(err)
	}
	return i, nil
}

func (r *CollabRepository) ListInvitesForUser(ctx context.Context, userID int) ([]model.ProjectInvite, error) {
	query := `
        SELECT ` + inviteColumns + `
        FROM project_invites
        WHERE invited_user_id = $1 AND status = 'PENDING'
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query invites", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	invites := []model.ProjectInvite{}
	for rows.Next() {
		i, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *i)
	}
	return invites, rows.Err()
}

func (r *CollabRepository) UpdateInviteStatus(ctx context.Context, id int, status model.InviteStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE project_invites SET status = $1, responded_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		r.logger.Error("Failed to update invite status", zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- approval workflows ---

const workflowColumns = `
    id, project_id, task_id, decision_id, title, description, requested_by_id,
    required_approvers, approver_user_ids, status, created_at, completed_at
`

func scanWorkflow(row interface{ Scan(...any) error }) (*model.ApprovalWorkflow, error) {
	var w model.ApprovalWorkflow
	err := row.Scan(
		&w.ID,
		&w.ProjectID,
		&w.TaskID,
		&w.DecisionID,
		&w.Title,
		&w.Description,
		&w.RequestedByID,
		&w.RequiredApprovers,
		&w.ApproverUserIDs,
		&w.Status,
		&w.CreatedAt,
		&w.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *CollabRepository) InsertWorkflow(ctx context.Context, w *model.ApprovalWorkflow) (int, error) {
	query := `
        INSERT INTO approval_workflows (
            project_id, task_id, decision_id, title, description,
            requested_by_id, required_approvers, approver_user_ids, status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		w.ProjectID,
		w.TaskID,
		w.DecisionID,
		w.Title,
		w.Description,
		w.RequestedByID,
		w.RequiredApprovers,
		w.ApproverUserIDs,
		w.Status,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert approval workflow",
			zap.Error(err),
			zap.Int("project_id", w.ProjectID),
		)
		return 0, mapError(err)
	}
	return w.ID, nil
}

func (r *CollabRepository) GetWorkflow(ctx context.Context, id int) (*model.ApprovalWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM approval_workflows WHERE id = $1`
	w, err := scanWorkflow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return w, nil
}

func (r *CollabRepository) ListWorkflows(ctx context.Context, projectID int) ([]model.ApprovalWorkflow, error) {
	query := `
        SELECT ` + workflowColumns + `
        FROM approval_workflows
        WHERE project_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query approval workflows", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	workflows := []model.ApprovalWorkflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *w)
	}
	return workflows, rows.Err()
}

func (r *CollabRepository) UpdateWorkflowStatus(ctx context.Context, id int, status model.ApprovalStatus) error {
	result, err := r.db.Exec(ctx, `
        UPDATE approval_workflows
        SET status = $1,
            completed_at = CASE WHEN $1 IN ('APPROVED', 'REJECTED', 'CANCELLED') THEN NOW() ELSE completed_at END
        WHERE id = $2
    `, status, id)
	if err != nil {
		r.logger.Error("Failed to update workflow status", zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertResponse records one approver's verdict. The unique constraint on
// (workflow_id, approver_id) turns a repeat response into ErrConflict.
func (r *CollabRepository) InsertResponse(ctx context.Context, resp *model.ApprovalResponse) (int, error) {
	query := `
        INSERT INTO approval_responses (workflow_id, approver_id, is_approved, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		resp.WorkflowID,
		resp.ApproverID,
		resp.IsApproved,
		resp.Comment,
	).Scan(&resp.ID, &resp.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert approval response",
			zap.Error(err),
			zap.Int("workflow_id", resp.WorkflowID),
		)
		return 0, mapError(err)
	}
	return resp.ID, nil
}

func (r *CollabRepository) ListResponses(ctx context.Context, workflowID int) ([]model.ApprovalResponse, error) {
	query := `
        SELECT id, workflow_id, approver_id, is_approved, comment, created_at
        FROM approval_responses
        WHERE workflow_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, workflowID)
	if err != nil {
		r.logger.Error("Failed to query approval responses", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	responses := []model.ApprovalResponse{}
	for rows.Next() {
		var resp model.ApprovalResponse
		if err := rows.Scan(&resp.ID, &resp.WorkflowID, &resp.ApproverID, &resp.IsApproved, &resp.Comment, &resp.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// --- team decisions ---

const teamDecisionColumns = `
    id, project_id, task_id, title, description, options, is_voting_enabled,
    voting_deadline, allow_multiple_votes, is_concluded, final_decision,
    decision_rationale, created_by_id, created_at, concluded_at
`

func scanTeamDecision(row interface{ Scan(...any) error }) (*model.TeamDecision, error) {
	var d model.TeamDecision
	err := row.Scan(
		&d.ID,
		&d.ProjectID,
		&d.TaskID,
		&d.Title,
		&d.Description,
		&d.Options,
		&d.IsVotingEnabled,
		&d.VotingDeadline,
		&d.AllowMultipleVotes,
		&d.IsConcluded,
		&d.FinalDecision,
		&d.DecisionRationale,
		&d.CreatedByID,
		&d.CreatedAt,
		&d.ConcludedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *CollabRepository) InsertTeamDecision(ctx context.Context, d *model.TeamDecision) (int, error) {
	query := `
        INSERT INTO team_decisions (
            project_id, task_id, title, description, options,
            is_voting_enabled, voting_deadline, allow_multiple_votes, created_by_id
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		d.ProjectID,
		d.TaskID,
		d.Title,
		d.Description,
		d.Options,
		d.IsVotingEnabled,
		d.VotingDeadline,
		d.AllowMultipleVotes,
		d.CreatedByID,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert team decision",
			zap.Error(err),
			zap.Int("project_id", d.ProjectID),
		)
		return 0, mapError(err)
	}
	return d.ID, nil
}

func (r *CollabRepository) GetTeamDecision(ctx context.Context, id int) (*model.TeamDecision, error) {
	query := `SELECT ` + teamDecisionColumns + ` FROM team_decisions WHERE id = $1`
	d, err := scanTeamDecision(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

func (r *CollabRepository) ListTeamDecisions(ctx context.Context, projectID int) ([]model.TeamDecision, error) {
	query := `
        SELECT ` + teamDecisionColumns + `
        FROM team_decisions
        WHERE project_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query team decisions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	decisions := []model.TeamDecision{}
	for rows.Next() {
		d, err := scanTeamDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, *d)
	}
	return decisions, rows.Err()
}

func (r *CollabRepository) ConcludeTeamDecision(ctx context.Context, id int, finalDecision, rationale string) error {
	result, err := r.db.Exec(ctx, `
        UPDATE team_decisions
        SET is_concluded = TRUE, final_decision = $1, decision_rationale = $2, concluded_at = NOW()
        WHERE id = $3
    `, finalDecision, rationale, id)
	if err != nil {
		r.logger.Error("Failed to conclude team decision", zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- votes ---

func (r *CollabRepository) GetVote(ctx context.Context, decisionID, voterID int) (*model.DecisionVote, error) {
	query := `
        SELECT id, decision_id, voter_id, selected_options, reasoning, created_at, updated_at
        FROM decision_votes
        WHERE decision_id = $1 AND voter_id = $2
    `
	var v model.DecisionVote
	err := r.db.QueryRow(ctx, query, decisionID, voterID).Scan(
		&v.ID, &v.DecisionID, &v.VoterID, &v.SelectedOptions, &v.Reasoning, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &v, nil
}

func (r *CollabRepository) InsertVote(ctx context.Context, v *model.DecisionVote) (int, error) {
	query := `
        INSERT INTO decision_votes (decision_id, voter_id, selected_options, reasoning)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		v.DecisionID,
		v.VoterID,
		v.SelectedOptions,
		v.Reasoning,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert vote",
			zap.Error(err),
			zap.Int("decision_id", v.DecisionID),
		)
		return 0, mapError(err)
	}
	return v.ID, nil
}

func (r *CollabRepository) UpdateVote(ctx context.Context, v *model.DecisionVote) error {
	query := `
        UPDATE decision_votes
        SET selected_options = $1, reasoning = $2, updated_at = NOW()
        WHERE id = $3
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query, v.SelectedOptions, v.Reasoning, v.ID).Scan(&v.UpdatedAt)
	return mapError(err)
}

func (r *CollabRepository) ListVotes(ctx context.Context, decisionID int) ([]model.DecisionVote, error) {
	query := `
        SELECT id, decision_id, voter_id, selected_options, reasoning, created_at, updated_at
        FROM decision_votes
        WHERE decision_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, decisionID)
	if err != nil {
		r.logger.Error("Failed to query votes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	votes := []model.DecisionVote{}
	for rows.Next() {
		var v model.DecisionVote
		if err := rows.Scan(&v.ID, &v.DecisionID, &v.VoterID, &v.SelectedOptions, &v.Reasoning, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// --- comments ---

func (r *CollabRepository) InsertComment(ctx context.Context, c *model.DecisionComment) (int, error) {
	query := `
        INSERT INTO decision_comments (decision_id, author_id, content, parent_comment_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		c.DecisionID,
		c.AuthorID,
		c.Content,
		c.ParentCommentID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert comment",
			zap.Error(err),
			zap.Int("decision_id", c.DecisionID),
		)
		return 0, mapError(err)
	}
	return c.ID, nil
}

func (r *CollabRepository) ListComments(ctx context.Context, decisionID int) ([]model.DecisionComment, error) {
	query := `
        SELECT id, decision_id, author_id, content, parent_comment_id, created_at, updated_at
        FROM decision_comments
        WHERE decision_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, decisionID)
	if err != nil {
		r.logger.Error("Failed to query comments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	comments := []model.DecisionComment{}
	for rows.Next() {
		var c model.DecisionComment
		if err := rows.Scan(&c.ID, &c.DecisionID, &c.AuthorID, &c.Content, &c.ParentCommentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
