package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/service/collab"
)

// Accounts

type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	var env struct {
		User model.User `json:"user"`
	}
	if err := c.post(ctx, "/collaboration/users", params, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// Login authenticates and installs the returned token on the client, so
// subsequent collaboration calls are authenticated.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	body := map[string]string{"username": username, "password": password}
	var env struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	if err := c.post(ctx, "/collaboration/users/login", body, &env); err != nil {
		return nil, err
	}
	c.SetToken(env.Token)
	return &env.User, nil
}

// Projects and workload

type UserProject struct {
	model.Project
	IsOwner bool `json:"is_owner"`
}

type UserProjectList struct {
	UserID   int           `json:"user_id"`
	Projects []UserProject `json:"projects"`
	Total    int           `json:"total"`
}

func (c *Client) UserProjects(ctx context.Context, userID int, includeShared bool) (*UserProjectList, error) {
	query := url.Values{"include_shared": []string{strconv.FormatBool(includeShared)}}
	var list UserProjectList
	if err := c.get(ctx, fmt.Sprintf("/collaboration/users/%d/projects", userID), query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

type UserWorkload struct {
	UserID    int              `json:"user_id"`
	ProjectID *int             `json:"project_id"`
	Workload  *collab.Workload `json:"workload"`
}

func (c *Client) GetUserWorkload(ctx context.Context, userID int, projectID *int) (*UserWorkload, error) {
	var query url.Values
	if projectID != nil {
		query = url.Values{"project_id": []string{strconv.Itoa(*projectID)}}
	}
	var w UserWorkload
	if err := c.get(ctx, fmt.Sprintf("/collaboration/users/%d/workload", userID), query, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Sharing

type ShareProjectParams struct {
	InvitedUserID *int                  `json:"invited_user_id,omitempty"`
	InvitedEmail  string                `json:"invited_email,omitempty"`
	Role          model.UserRole        `json:"role,omitempty"`
	Permissions   model.SharePermission `json:"permissions,omitempty"`
}

func (c *Client) ShareProject(ctx context.Context, projectID int, params ShareProjectParams) (*model.ProjectInvite, error) {
	var env struct {
		Invite model.ProjectInvite `json:"invite"`
	}
	if err := c.post(ctx, fmt.Sprintf("/collaboration/projects/%d/share", projectID), params, &env); err != nil {
		return nil, err
	}
	return &env.Invite, nil
}

func (c *Client) AcceptInvite(ctx context.Context, token string) (*model.ProjectMember, error) {
	var env struct {
		Member model.ProjectMember `json:"member"`
	}
	if err := c.post(ctx, "/collaboration/invites/"+url.PathEscape(token)+"/accept", nil, &env); err != nil {
		return nil, err
	}
	return &env.Member, nil
}

func (c *Client) RejectInvite(ctx context.Context, token string) error {
	return c.post(ctx, "/collaboration/invites/"+url.PathEscape(token)+"/reject", nil, nil)
}

func (c *Client) PendingInvites(ctx context.Context) ([]model.ProjectInvite, error) {
	var env struct {
		Invites []model.ProjectInvite `json:"invites"`
	}
	if err := c.get(ctx, "/collaboration/invites", nil, &env); err != nil {
		return nil, err
	}
	return env.Invites, nil
}

func (c *Client) ProjectMembers(ctx context.Context, projectID int) ([]model.ProjectMember, error) {
	var env struct {
		Members []model.ProjectMember `json:"members"`
	}
	if err := c.get(ctx, fmt.Sprintf("/collaboration/projects/%d/members", projectID), nil, &env); err != nil {
		return nil, err
	}
	return env.Members, nil
}

func (c *Client) AssignTask(ctx context.Context, taskID, assigneeID int) (*model.Task, error) {
	body := map[string]int{"assignee_id": assigneeID}
	var env struct {
		Task model.Task `json:"task"`
	}
	if err := c.patch(ctx, fmt.Sprintf("/collaboration/tasks/%d/assign", taskID), body, &env); err != nil {
		return nil, err
	}
	return &env.Task, nil
}

// Approvals

type CreateWorkflowParams struct {
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	TaskID            *int   `json:"task_id,omitempty"`
	DecisionID        *int   `json:"decision_id,omitempty"`
	RequiredApprovers int    `json:"required_approvers,omitempty"`
	ApproverUserIDs   []int  `json:"approver_user_ids"`
}

func (c *Client) CreateApprovalWorkflow(ctx context.Context, projectID int, params CreateWorkflowParams) (*model.ApprovalWorkflow, error) {
	var env struct {
		Workflow model.ApprovalWorkflow `json:"workflow"`
	}
	if err := c.post(ctx, fmt.Sprintf("/collaboration/projects/%d/approvals", projectID), params, &env); err != nil {
		return nil, err
	}
	return &env.Workflow, nil
}

func (c *Client) RespondToWorkflow(ctx context.Context, workflowID int, approved bool, comment string) (*model.ApprovalWorkflow, error) {
	body := map[string]any{"approved": approved, "comment": comment}
	var env struct {
		Workflow model.ApprovalWorkflow `json:"workflow"`
	}
	if err := c.post(ctx, fmt.Sprintf("/collaboration/approvals/%d/respond", workflowID), body, &env); err != nil {
		return nil, err
	}
	return &env.Workflow, nil
}

func (c *Client) GetApprovalWorkflow(ctx context.Context, workflowID int) (*collab.ApprovalDetail, error) {
	var detail collab.ApprovalDetail
	if err := c.get(ctx, fmt.Sprintf("/collaboration/approvals/%d", workflowID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Team decisions

type CreateTeamDecisionParams struct {
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	TaskID             *int       `json:"task_id,omitempty"`
	Options            []string   `json:"options"`
	IsVotingEnabled    bool       `json:"is_voting_enabled,omitempty"`
	VotingDeadline     *time.Time `json:"voting_deadline,omitempty"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes,omitempty"`
}

func (c *Client) CreateTeamDecision(ctx context.Context, projectID int, params CreateTeamDecisionParams) (*model.TeamDecision, error) {
	var env struct {
		Decision model.TeamDecision `json:"decision"`
	}
	if err := c.post(ctx, fmt.Sprintf("/collaboration/projects/%d/decisions", projectID), params, &env); err != nil {
		return nil, err
	}
	return &env.Decision, nil
}

func (c *Client) CastVote(ctx context.Context, decisionID int, selectedOptions []string, reasoning string) (*model.DecisionVote, error) {
	body := map[string]any{"selected_options": selectedOptions, "reasoning": reasoning}
	var env struct {
		Vote model.DecisionVote `json:"vote"`
	}
	if err := c.post(ctx, fmt.Sprintf("/collaboration/decisions/%d/vote", decisionID), body, &env); err != nil {
		return nil, err
	}
	return &env.Vote, nil
}

func (c *Client) ConcludeDecision(ctx context.Context, decisionID int, finalDecision, rationale string) (*model.TeamDecision, error) {
	body := map[string]string{"final_decision": finalDecision, "decision_rationale": rationale}
	var env struct {
		Decision model.TeamDecision `json:"decision"`
	}
	if err := c.patch(ctx, fmt.Sprintf("/collaboration/decisions/%d/conclude", decisionID), body, &env); err != nil {
		return nil, err
	}
	return &env.Decision, nil
}

func (c *Client) AddDecisionComment(ctx context.Context, decisionID int, content string, parentCommentID *int) (*model.DecisionComment, error) {
	body := map[string]any{"content": content}
	if parentCommentID != nil {
		body["parent_comment_id"] = *parentCommentID
	}
	var env struct {
		Comment model.DecisionComment `json:"comment"`
	}
	if err := c.post(ctx, fmt.Sprintf("/collaboration/decisions/%d/comments", decisionID), body, &env); err != nil {
		return nil, err
	}
	return &env.Comment, nil
}

func (c *Client) GetTeamDecision(ctx context.Context, decisionID int) (*collab.DecisionDetail, error) {
	var detail collab.DecisionDetail
	if err := c.get(ctx, fmt.Sprintf("/collaboration/decisions/%d", decisionID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

type TeamDecisionStats struct {
	DecisionID int                   `json:"decision_id"`
	Stats      *collab.DecisionStats `json:"stats"`
}

func (c *Client) GetDecisionStats(ctx context.Context, decisionID int) (*TeamDecisionStats, error) {
	var stats TeamDecisionStats
	if err := c.get(ctx, fmt.Sprintf("/collaboration/decisions/%d/stats", decisionID), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
