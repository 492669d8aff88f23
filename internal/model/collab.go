package model

import "time"

type UserRole string

const (
	RoleOwner  UserRole = "OWNER"
	RoleAdmin  UserRole = "ADMIN"
	RoleMember UserRole = "MEMBER"
	RoleViewer UserRole = "VIEWER"
)

type SharePermission string

const (
	PermissionRead  SharePermission = "READ"
	PermissionWrite SharePermission = "WRITE"
	PermissionAdmin SharePermission = "ADMIN"
)

// Level maps the permission onto the ADMIN > WRITE > READ lattice. Unknown
// permissions rank below READ.
func (p SharePermission) Level() int {
	switch p {
	case PermissionRead:
		return 1
	case PermissionWrite:
		return 2
	case PermissionAdmin:
		return 3
	}
	return 0
}

// Covers reports whether p grants at least the required permission.
func (p SharePermission) Covers(required SharePermission) bool {
	return p.Level() >= required.Level()
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
	InviteRejected InviteStatus = "REJECTED"
	InviteExpired  InviteStatus = "EXPIRED"
)

type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "PENDING"
	ApprovalApproved  ApprovalStatus = "APPROVED"
	ApprovalRejected  ApprovalStatus = "REJECTED"
	ApprovalCancelled ApprovalStatus = "CANCELLED"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProjectMember struct {
	ID          int             `json:"id"`
	ProjectID   int             `json:"project_id"`
	UserID      int             `json:"user_id"`
	Role        UserRole        `json:"role"`
	Permissions SharePermission `json:"permissions"`
	JoinedAt    time.Time       `json:"joined_at"`
}

type ProjectInvite struct {
	ID            int             `json:"id"`
	ProjectID     int             `json:"project_id"`
	InvitedByID   int             `json:"invited_by_id"`
	InvitedUserID *int            `json:"invited_user_id,omitempty"`
	InvitedEmail  string          `json:"invited_email,omitempty"`
	Role          UserRole        `json:"role"`
	Permissions   SharePermission `json:"permissions"`
	Status        InviteStatus    `json:"status"`
	InviteToken   string          `json:"invite_token"`
	ExpiresAt     time.Time       `json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
	RespondedAt   *time.Time      `json:"responded_at,omitempty"`
}

type ApprovalWorkflow struct {
	ID         int  `json:"id"`
	ProjectID  int  `json:"project_id"`
	TaskID     *int `json:"task_id,omitempty"`
	DecisionID *int `json:"decision_id,omitempty"`

	Title         string `json:"title"`
	Description   string `json:"description"`
	RequestedByID int    `json:"requested_by_id"`

	RequiredApprovers int   `json:"required_approvers"`
	ApproverUserIDs   []int `json:"approver_user_ids"`

	Status      ApprovalStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// HasApprover reports whether userID belongs to the approver list.
func (w *ApprovalWorkflow) HasApprover(userID int) bool {
	for _, id := range w.ApproverUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type ApprovalResponse struct {
	ID         int       `json:"id"`
	WorkflowID int       `json:"workflow_id"`
	ApproverID int       `json:"approver_id"`
	IsApproved bool      `json:"is_approved"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type TeamDecision struct {
	ID        int  `json:"id"`
	ProjectID int  `json:"project_id"`
	TaskID    *int `json:"task_id,omitempty"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`

	IsVotingEnabled    bool       `json:"is_voting_enabled"`
	VotingDeadline     *time.Time `json:"voting_deadline,omitempty"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`

	IsConcluded       bool   `json:"is_concluded"`
	FinalDecision     string `json:"final_decision,omitempty"`
	DecisionRationale string `json:"decision_rationale,omitempty"`

	CreatedByID int        `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ConcludedAt *time.Time `json:"concluded_at,omitempty"`
}

// VotingOpen reports whether new votes are accepted at the given time.
func (d *TeamDecision) VotingOpen(now time.Time) bool {
	if d.IsConcluded || !d.IsVotingEnabled {
		return false
	}
	if d.VotingDeadline != nil && now.After(*d.VotingDeadline) {
		return false
	}
	return true
}

type DecisionVote struct {
	ID         int `json:"id"`
	DecisionID int `json:"decision_id"`
	VoterID    int `json:"voter_id"`

	SelectedOptions []string `json:"selected_options"`
	Reasoning       string   `json:"reasoning,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DecisionComment struct {
	ID              int    `json:"id"`
	DecisionID      int    `json:"decision_id"`
	AuthorID        int    `json:"author_id"`
	Content         string `json:"content"`
	ParentCommentID *int   `json:"parent_comment_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
