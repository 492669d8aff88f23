// Package collab covers accounts, project sharing, approval workflows and
// team decisions.
package collab

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"
	"opsboard/internal/util"

	"go.uber.org/zap"
)

const inviteTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidCredentials is returned on a failed login without revealing
	// which part was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrPermissionDenied is returned when the acting user lacks the
	// required project permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInviteExpired is returned when accepting an invite past its expiry.
	ErrInviteExpired = errors.New("invite expired")
	// ErrInviteResolved is returned when the invite was already answered.
	ErrInviteResolved = errors.New("invite already resolved")
	// ErrVotingClosed is returned when the decision takes no more votes.
	ErrVotingClosed = errors.New("voting closed")
	// ErrNotApprover is returned when a responder is not on the approver
	// list.
	ErrNotApprover = errors.New("not an approver for this workflow")
	// ErrWorkflowResolved is returned when responding to a finished
	// workflow.
	ErrWorkflowResolved = errors.New("workflow already resolved")
)

type Store interface {
	InsertUser(ctx context.Context, u *model.User) (int, error)
	GetUser(ctx context.Context, id int) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	GetProject(ctx context.Context, id int) (*model.Project, error)
	ListProjectIDsForUser(ctx context.Context, userID int) ([]int, error)
	GetTask(ctx context.Context, id int) (*model.Task, error)
	AssignTask(ctx context.Context, t *model.Task) error
	ListTasksByAssignee(ctx context.Context, userID int) ([]model.Task, error)

	InsertMember(ctx context.Context, m *model.ProjectMember) (int, error)
	GetMember(ctx context.Context, projectID, userID int) (*model.ProjectMember, error)
	ListMembers(ctx context.Context, projectID int) ([]model.ProjectMember, error)
	UpdateMemberPermissions(ctx context.Context, projectID, userID int, role model.UserRole, perms model.SharePermission) error
	RemoveMember(ctx context.Context, projectID, userID int) error

	InsertInvite(ctx context.Context, i *model.ProjectInvite) (int, error)
	GetInviteByToken(ctx context.Context, token string) (*model.ProjectInvite, error)
	ListInvitesForUser(ctx context.Context, userID int) ([]model.ProjectInvite, error)
	UpdateInviteStatus(ctx context.Context, id int, status model.InviteStatus) error

	InsertWorkflow(ctx context.Context, w *model.ApprovalWorkflow) (int, error)
	GetWorkflow(ctx context.Context, id int) (*model.ApprovalWorkflow, error)
	ListWorkflows(ctx context.Context, projectID int) ([]model.ApprovalWorkflow, error)
	UpdateWorkflowStatus(ctx context.Context, id int, status model.ApprovalStatus) error
	InsertResponse(ctx context.Context, resp *model.ApprovalResponse) (int, error)
	ListResponses(ctx context.Context, workflowID int) ([]model.ApprovalResponse, error)

	InsertTeamDecision(ctx context.Context, d *model.TeamDecision) (int, error)
	GetTeamDecision(ctx context.Context, id int) (*model.TeamDecision, error)
	ListTeamDecisions(ctx context.Context, projectID int) ([]model.TeamDecision, error)
	ConcludeTeamDecision(ctx context.Context, id int, finalDecision, rationale string) error
	GetVote(ctx context.Context, decisionID, voterID int) (*model.DecisionVote, error)
	InsertVote(ctx context.Context, v *model.DecisionVote) (int, error)
	UpdateVote(ctx context.Context, v *model.DecisionVote) error
	ListVotes(ctx context.Context, decisionID int) ([]model.DecisionVote, error)
	InsertComment(ctx context.Context, c *model.DecisionComment) (int, error)
	ListComments(ctx context.Context, decisionID int) ([]model.DecisionComment, error)
}

// Workload summarizes one user's assigned tasks.
type Workload struct {
	TotalTasks        int            `json:"total_tasks"`
	ByState           map[string]int `json:"by_state"`
	OverdueTasks      int            `json:"overdue_tasks"`
	HighPriorityTasks int            `json:"high_priority_tasks"`
}

// DecisionStats summarizes voting on one team decision.
type DecisionStats struct {
	TotalVotes        int            `json:"total_votes"`
	OptionCounts      map[string]int `json:"option_counts"`
	ParticipationRate float64        `json:"participation_rate"`
}

type Service struct {
	store     Store
	jwtSecret string
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{store: store, jwtSecret: jwtSecret, logger: logger, now: time.Now}
}

// --- accounts ---

// Register creates an account. Duplicate username or email surfaces as
// repository.ErrConflict.
func (s *Service) Register(ctx context.Context, username, email, fullName, password string) (*model.User, error) {
	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if _, err := s.store.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.Int("user_id", u.ID))
	return u, nil
}

// Login checks credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive || !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// --- permissions ---

// HasPermission reports whether the user holds at least the required
// permission on the project. The owner holds everything.
func (s *Service) HasPermission(ctx context.Context, userID, projectID int, required model.SharePermission) (bool, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	if project.OwnerID == userID {
		return true, nil
	}
	member, err := s.store.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.Permissions.Covers(required), nil
}

func (s *Service) requirePermission(ctx context.Context, userID, projectID int, required model.SharePermission) error {
	ok, err := s.HasPermission(ctx, userID, projectID, required)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// --- sharing ---

// ShareProject invites a user into a project. Only holders of ADMIN (or the
// owner) may share.
func (s *Service) ShareProject(ctx context.Context, projectID, inviterID int, invitedUserID *int, invitedEmail string, role model.UserRole, perms model.SharePermission) (*model.ProjectInvite, error) {
	if err := s.requirePermission(ctx, inviterID, projectID, model.PermissionAdmin); err != nil {
		return nil, err
	}
	token, err := inviteToken()
	if err != nil {
		return nil, err
	}
	invite := &model.ProjectInvite{
		ProjectID:     projectID,
		InvitedByID:   inviterID,
		InvitedUserID: invitedUserID,
		InvitedEmail:  invitedEmail,
		Role:          role,
		Permissions:   perms,
		Status:        model.InvitePending,
		InviteToken:   token,
		ExpiresAt:     s.now().Add(inviteTTL),
	}
	if _, err := s.store.InsertInvite(ctx, invite); err != nil {
		return nil, err
	}
	s.logger.Info("Project invite created",
		zap.Int("project_id", projectID),
		zap.Int("invite_id", invite.ID),
	)
	return invite, nil
}

// AcceptInvite exchanges a pending invite token for membership.
func (s *Service) AcceptInvite(ctx context.Context, token string, userID int) (*model.ProjectMember, error) {
	invite, err := s.store.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.Status != model.InvitePending {
		return nil, ErrInviteResolved
	}
	if s.now().After(invite.ExpiresAt) {
		if err := s.store.UpdateInviteStatus(ctx, invite.ID, model.InviteExpired); err != nil {
			return nil, err
		}
		return nil, ErrInviteExpired
	}

	member := &model.ProjectMember{
		ProjectID:   invite.ProjectID,
		UserID:      userID,
		Role:        invite.Role,
		Permissions: invite.Permissions,
	}
	if _, err := s.store.InsertMember(ctx, member); err != nil {
		return nil, err
	}
	if err := s.store.UpdateInviteStatus(ctx, invite.ID, model.InviteAccepted); err != nil {
		return nil, err
	}
	return member, nil
}

// RejectInvite declines a pending invite.
func (s *Service) RejectInvite(ctx context.Context, token string) error {
	invite, err := s.store.GetInviteByToken(ctx, token)
	if err != nil {
		return err
	}
	if invite.Status != model.InvitePending {
		return ErrInviteResolved
	}
	return s.store.UpdateInviteStatus(ctx, invite.ID, model.InviteRejected)
}

// PendingInvites lists the user's open invites.
func (s *Service) PendingInvites(ctx context.Context, userID int) ([]model.ProjectInvite, error) {
	return s.store.ListInvitesForUser(ctx, userID)
}

// Members lists the project roster; requires READ.
func (s *Service) Members(ctx context.Context, projectID, requesterID int) ([]model.ProjectMember, error) {
	if err := s.requirePermission(ctx, requesterID, projectID, model.PermissionRead); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, projectID)
}

// UpdateMember changes a member's role and permissions; requires ADMIN.
func (s *Service) UpdateMember(ctx context.Context, projectID, actorID, userID int, role model.UserRole, perms model.SharePermission) error {
	if err := s.requirePermission(ctx, actorID, projectID, model.PermissionAdmin); err != nil {
		return err
	}
	return s.store.UpdateMemberPermissions(ctx, projectID, userID, role, perms)
}

// RemoveMember drops a member from the project; requires ADMIN.
func (s *Service) RemoveMember(ctx context.Context, projectID, actorID, userID int) error {
	if err := s.requirePermission(ctx, actorID, projectID, model.PermissionAdmin); err != nil {
		return err
	}
	return s.store.RemoveMember(ctx, projectID, userID)
}

// --- assignment and workload ---

// AssignTask sets a task's assignee. The assigner needs WRITE; the assignee
// must at least be a reader of the project.
func (s *Service) AssignTask(ctx context.Context, taskID, assigneeID, assignerID int) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, assignerID, task.ProjectID, model.PermissionWrite); err != nil {
		return nil, err
	}
	ok, err := s.HasPermission(ctx, assigneeID, task.ProjectID, model.PermissionRead)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}
	task.AssigneeID = &assigneeID
	if err := s.store.AssignTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UserWorkload summarizes a user's assigned tasks, optionally scoped to one
// project.
func (s *Service) UserWorkload(ctx context.Context, userID int, projectID *int) (*Workload, error) {
	tasks, err := s.store.ListTasksByAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}
	w := &Workload{ByState: map[string]int{
		string(model.StateBacklog):    0,
		string(model.StateInProgress): 0,
		string(model.StateDone):       0,
		string(model.StatePaused):     0,
		string(model.StateCanceled):   0,
	}}
	now := s.now()
	for _, t := range tasks {
		if projectID != nil && t.ProjectID != *projectID {
			continue
		}
		w.TotalTasks++
		w.ByState[string(t.State)]++
		if t.Overdue(now) {
			w.OverdueTasks++
		}
		if t.Priority <= 2 {
			w.HighPriorityTasks++
		}
	}
	return w, nil
}

// --- approval workflows ---

// CreateWorkflow opens an approval workflow. The required approver count is
// capped at the approver list size.
func (s *Service) CreateWorkflow(ctx context.Context, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	if err := s.requirePermission(ctx, w.RequestedByID, w.ProjectID, model.PermissionWrite); err != nil {
		return nil, err
	}
	if w.RequiredApprovers < 1 {
		w.RequiredApprovers = 1
	}
	if w.RequiredApprovers > len(w.ApproverUserIDs) {
		w.RequiredApprovers = len(w.ApproverUserIDs)
	}
	w.Status = model.ApprovalPending
	if _, err := s.store.InsertWorkflow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// RespondToWorkflow records one approver's verdict and resolves the workflow
// when the tally decides it: any rejection rejects, enough approvals
// approve.
func (s *Service) RespondToWorkflow(ctx context.Context, workflowID, approverID int, approved bool, comment string) (*model.ApprovalWorkflow, error) {
	workflow, err := s.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if workflow.Status != model.ApprovalPending {
		return nil, ErrWorkflowResolved
	}
	if !workflow.HasApprover(approverID) {
		return nil, ErrNotApprover
	}

	resp := &model.ApprovalResponse{
		WorkflowID: workflowID,
		ApproverID: approverID,
		IsApproved: approved,
		Comment:    comment,
	}
	if _, err := s.store.InsertResponse(ctx, resp); err != nil {
		return nil, err
	}

	responses, err := s.store.ListResponses(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	approvedCount, rejectedCount := 0, 0
	for _, r := range responses {
		if r.IsApproved {
			approvedCount++
		} else {
			rejectedCount++
		}
	}

	status := workflow.Status
	switch {
	case approvedCount >= workflow.RequiredApprovers:
		status = model.ApprovalApproved
	case rejectedCount > 0:
		status = model.ApprovalRejected
	}
	if status != workflow.Status {
		if err := s.store.UpdateWorkflowStatus(ctx, workflowID, status); err != nil {
			return nil, err
		}
		workflow.Status = status
		s.logger.Info("Approval workflow resolved",
			zap.Int("workflow_id", workflowID),
			zap.String("status", string(status)),
		)
	}
	return workflow, nil
}

// Workflows lists a project's approval workflows; requires READ.
func (s *Service) Workflows(ctx context.Context, projectID, requesterID int) ([]model.ApprovalWorkflow, error) {
	if err := s.requirePermission(ctx, requesterID, projectID, model.PermissionRead); err != nil {
		return nil, err
	}
	return s.store.ListWorkflows(ctx, projectID)
}

// --- team decisions ---

// CreateTeamDecision opens a decision for discussion or voting; requires
// WRITE.
func (s *Service) CreateTeamDecision(ctx context.Context, d *model.TeamDecision) (*model.TeamDecision, error) {
	if err := s.requirePermission(ctx, d.CreatedByID, d.ProjectID, model.PermissionWrite); err != nil {
		return nil, err
	}
	if _, err := s.store.InsertTeamDecision(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// TeamDecisions lists a project's decisions; requires READ.
func (s *Service) TeamDecisions(ctx context.Context, projectID, requesterID int) ([]model.TeamDecision, error) {
	if err := s.requirePermission(ctx, requesterID, projectID, model.PermissionRead); err != nil {
		return nil, err
	}
	return s.store.ListTeamDecisions(ctx, projectID)
}

// CastVote records a vote. While multiple votes are disallowed, a repeat
// voter's existing vote is updated instead.
func (s *Service) CastVote(ctx context.Context, decisionID, voterID int, selectedOptions []string, reasoning string) (*model.DecisionVote, error) {
	decision, err := s.store.GetTeamDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	if !decision.VotingOpen(s.now()) {
		return nil, ErrVotingClosed
	}
	if err := s.requirePermission(ctx, voterID, decision.ProjectID, model.PermissionRead); err != nil {
		return nil, err
	}

	existing, err := s.store.GetVote(ctx, decisionID, voterID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && !decision.AllowMultipleVotes {
		existing.SelectedOptions = selectedOptions
		existing.Reasoning = reasoning
		if err := s.store.UpdateVote(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	vote := &model.DecisionVote{
		DecisionID:      decisionID,
		VoterID:         voterID,
		SelectedOptions: selectedOptions,
		Reasoning:       reasoning,
	}
	if _, err := s.store.InsertVote(ctx, vote); err != nil {
		return nil, err
	}
	return vote, nil
}

// ConcludeDecision closes a decision. Allowed for the decision's creator or
// a project ADMIN.
func (s *Service) ConcludeDecision(ctx context.Context, decisionID, concluderID int, finalDecision, rationale string) (*model.TeamDecision, error) {
	decision, err := s.store.GetTeamDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	if decision.CreatedByID != concluderID {
		if err := s.requirePermission(ctx, concluderID, decision.ProjectID, model.PermissionAdmin); err != nil {
			return nil, err
		}
	}
	if err := s.store.ConcludeTeamDecision(ctx, decisionID, finalDecision, rationale); err != nil {
		return nil, err
	}
	return s.store.GetTeamDecision(ctx, decisionID)
}

// AddComment attaches a comment, optionally threaded; requires READ.
func (s *Service) AddComment(ctx context.Context, decisionID, authorID int, content string, parentCommentID *int) (*model.DecisionComment, error) {
	decision, err := s.store.GetTeamDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, authorID, decision.ProjectID, model.PermissionRead); err != nil {
		return nil, err
	}
	comment := &model.DecisionComment{
		DecisionID:      decisionID,
		AuthorID:        authorID,
		Content:         content,
		ParentCommentID: parentCommentID,
	}
	if _, err := s.store.InsertComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments lists a decision's comment thread; requires READ.
func (s *Service) Comments(ctx context.Context, decisionID, requesterID int) ([]model.DecisionComment, error) {
	decision, err := s.store.GetTeamDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, requesterID, decision.ProjectID, model.PermissionRead); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, decisionID)
}

// Stats tallies the votes on a decision against the project roster.
func (s *Service) Stats(ctx context.Context, decisionID int) (*DecisionStats, error) {
	votes, err := s.store.ListVotes(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	stats := &DecisionStats{TotalVotes: len(votes), OptionCounts: map[string]int{}}
	if len(votes) == 0 {
		return stats, nil
	}
	for _, v := range votes {
		for _, opt := range v.SelectedOptions {
			stats.OptionCounts[opt]++
		}
	}
	decision, err := s.store.GetTeamDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, decision.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		stats.ParticipationRate = float64(len(votes)) / float64(len(members))
	}
	return stats, nil
}

func inviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
