package handler

import (
	"errors"
	"net/http"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"
	"opsboard/internal/service/collab"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CollabHandler struct {
	svc    *collab.Service
	logger *zap.Logger
}

func NewCollabHandler(svc *collab.Service, logger *zap.Logger) *CollabHandler {
	return &CollabHandler{svc: svc, logger: logger}
}

// respondCollabError translates the service sentinels into HTTP statuses.
func respondCollabError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, collab.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, collab.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, "permission denied")
	case errors.Is(err, collab.ErrNotApprover):
		respondError(c, http.StatusForbidden, "not an approver for this workflow")
	case errors.Is(err, collab.ErrInviteExpired):
		respondError(c, http.StatusBadRequest, "invite expired")
	case errors.Is(err, collab.ErrVotingClosed):
		respondError(c, http.StatusBadRequest, "voting is closed")
	case errors.Is(err, collab.ErrInviteResolved):
		respondError(c, http.StatusConflict, "invite already resolved")
	case errors.Is(err, collab.ErrWorkflowResolved):
		respondError(c, http.StatusConflict, "workflow already resolved")
	case errors.Is(err, repository.ErrConflict):
		respondError(c, http.StatusConflict, "already exists")
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMsg)
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

// authedUserID reads the user id the auth middleware stored on the context.
func authedUserID(c *gin.Context) (int, bool) {
	id := c.GetInt("user_id")
	if id <= 0 {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return id, true
}

// --- accounts ---

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required"`
}

func (h *CollabHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username, email and password are required")
		return
	}
	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		respondCollabError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *CollabHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}
	token, user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondCollabError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// --- projects and workload ---

func (h *CollabHandler) UserProjects(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	includeShared := c.DefaultQuery("include_shared", "true") != "false"
	projects, err := h.svc.UserProjects(c.Request.Context(), userID, includeShared)
	if err != nil {
		respondCollabError(c, err, "User not found")
		return
	}
	type projectView struct {
		model.Project
		IsOwner bool `json:"is_owner"`
	}
	views := []projectView{}
	for _, p := range projects {
		views = append(views, projectView{Project: p, IsOwner: p.OwnerID == userID})
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"projects": views,
		"total":    len(views),
	})
}

func (h *CollabHandler) UserWorkload(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var projectID *int
	if raw := c.Query("project_id"); raw != "" {
		id, err := parsePositiveInt(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid project_id")
			return
		}
		projectID = &id
	}
	workload, err := h.svc.UserWorkload(c.Request.Context(), userID, projectID)
	if err != nil {
		respondCollabError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"project_id": projectID,
		"workload":   workload,
	})
}

// --- sharing ---

type shareProjectRequest struct {
	InvitedUserID *int                  `json:"invited_user_id"`
	InvitedEmail  string                `json:"invited_email"`
	Role          model.UserRole        `json:"role"`
	Permissions   model.SharePermission `json:"permissions"`
}

func (h *CollabHandler) ShareProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	inviterID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req shareProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.InvitedUserID == nil && req.InvitedEmail == "" {
		respondError(c, http.StatusBadRequest, "invited_user_id or invited_email is required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleMember
	}
	if req.Permissions == "" {
		req.Permissions = model.PermissionRead
	}
	invite, err := h.svc.ShareProject(c.Request.Context(), projectID, inviterID, req.InvitedUserID, req.InvitedEmail, req.Role, req.Permissions)
	if err != nil {
		respondCollabError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Invite created", "invite": invite})
}

func (h *CollabHandler) AcceptInvite(c *gin.Context) {
	token := c.Param("invite_token")
	if token == "" {
		respondError(c, http.StatusBadRequest, "invalid invite_token")
		return
	}
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	member, err := h.svc.AcceptInvite(c.Request.Context(), token, userID)
	if err != nil {
		respondCollabError(c, err, "Invite not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invite accepted", "member": member})
}

func (h *CollabHandler) RejectInvite(c *gin.Context) {
	token := c.Param("invite_token")
	if token == "" {
		respondError(c, http.StatusBadRequest, "invalid invite_token")
		return
	}
	if err := h.svc.RejectInvite(c.Request.Context(), token); err != nil {
		respondCollabError(c, err, "Invite not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invite rejected"})
}

func (h *CollabHandler) PendingInvites(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	invites, err := h.svc.PendingInvites(c.Request.Context(), userID)
	if err != nil {
		respondCollabError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites, "total": len(invites)})
}

func (h *CollabHandler) Members(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	requesterID, ok := authedUserID(c)
	if !ok {
		return
	}
	members, err := h.svc.Members(c.Request.Context(), projectID, requesterID)
	if err != nil {
		respondCollabError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project_id": projectID,
		"members":    members,
		"total":      len(members),
	})
}

// --- task assignment ---

type assignTaskRequest struct {
	AssigneeID int `json:"assignee_id" binding:"required"`
}

func (h *CollabHandler) AssignTask(c *gin.Context) {
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	assignerID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req assignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "assignee_id is required")
		return
	}
	t, err := h.svc.AssignTask(c.Request.Context(), taskID, req.AssigneeID, assignerID)
	if err != nil {
		respondCollabError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task assigned", "task": t})
}

// --- approvals ---

type createWorkflowRequest struct {
	Title             string `json:"title" binding:"required"`
	Description       string `json:"description"`
	TaskID            *int   `json:"task_id"`
	DecisionID        *int   `json:"decision_id"`
	RequiredApprovers int    `json:"required_approvers"`
	ApproverUserIDs   []int  `json:"approver_user_ids" binding:"required"`
}

func (h *CollabHandler) CreateWorkflow(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	requesterID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req createWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ApproverUserIDs) == 0 {
		respondError(c, http.StatusBadRequest, "title and approver_user_ids are required")
		return
	}
	w := &model.ApprovalWorkflow{
		ProjectID:         projectID,
		TaskID:            req.TaskID,
		DecisionID:        req.DecisionID,
		Title:             req.Title,
		Description:       req.Description,
		RequestedByID:     requesterID,
		RequiredApprovers: req.RequiredApprovers,
		ApproverUserIDs:   req.ApproverUserIDs,
	}
	w, err := h.svc.CreateWorkflow(c.Request.Context(), w)
	if err != nil {
		respondCollabError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Approval workflow created", "workflow": w})
}

type respondWorkflowRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Comment  string `json:"comment"`
}

func (h *CollabHandler) RespondToWorkflow(c *gin.Context) {
	workflowID, ok := pathID(c, "workflow_id")
	if !ok {
		return
	}
	approverID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req respondWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Approved == nil {
		respondError(c, http.StatusBadRequest, "approved is required")
		return
	}
	w, err := h.svc.RespondToWorkflow(c.Request.Context(), workflowID, approverID, *req.Approved, req.Comment)
	if err != nil {
		respondCollabError(c, err, "Workflow not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Response recorded", "workflow": w})
}

func (h *CollabHandler) GetWorkflow(c *gin.Context) {
	workflowID, ok := pathID(c, "workflow_id")
	if !ok {
		return
	}
	detail, err := h.svc.WorkflowDetail(c.Request.Context(), workflowID)
	if err != nil {
		respondCollabError(c, err, "Workflow not found")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// --- team decisions ---

type createDecisionRequestBody struct {
	Title              string     `json:"title" binding:"required"`
	Description        string     `json:"description"`
	TaskID             *int       `json:"task_id"`
	Options            []string   `json:"options" binding:"required"`
	IsVotingEnabled    bool       `json:"is_voting_enabled"`
	VotingDeadline     *time.Time `json:"voting_deadline"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
}

func (h *CollabHandler) CreateTeamDecision(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	creatorID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req createDecisionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Options) == 0 {
		respondError(c, http.StatusBadRequest, "title and options are required")
		return
	}
	d := &model.TeamDecision{
		ProjectID:          projectID,
		TaskID:             req.TaskID,
		Title:              req.Title,
		Description:        req.Description,
		Options:            req.Options,
		IsVotingEnabled:    req.IsVotingEnabled,
		VotingDeadline:     req.VotingDeadline,
		AllowMultipleVotes: req.AllowMultipleVotes,
		CreatedByID:        creatorID,
	}
	d, err := h.svc.CreateTeamDecision(c.Request.Context(), d)
	if err != nil {
		respondCollabError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Team decision created", "decision": d})
}

type castVoteRequest struct {
	SelectedOptions []string `json:"selected_options" binding:"required"`
	Reasoning       string   `json:"reasoning"`
}

func (h *CollabHandler) CastVote(c *gin.Context) {
	decisionID, ok := pathID(c, "decision_id")
	if !ok {
		return
	}
	voterID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.SelectedOptions) == 0 {
		respondError(c, http.StatusBadRequest, "selected_options is required")
		return
	}
	vote, err := h.svc.CastVote(c.Request.Context(), decisionID, voterID, req.SelectedOptions, req.Reasoning)
	if err != nil {
		respondCollabError(c, err, "Decision not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded", "vote": vote})
}

type concludeDecisionRequest struct {
	FinalDecision     string `json:"final_decision" binding:"required"`
	DecisionRationale string `json:"decision_rationale"`
}

func (h *CollabHandler) ConcludeDecision(c *gin.Context) {
	decisionID, ok := pathID(c, "decision_id")
	if !ok {
		return
	}
	concluderID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req concludeDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "final_decision is required")
		return
	}
	d, err := h.svc.ConcludeDecision(c.Request.Context(), decisionID, concluderID, req.FinalDecision, req.DecisionRationale)
	if err != nil {
		respondCollabError(c, err, "Decision not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Decision concluded", "decision": d})
}

type addCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *int   `json:"parent_comment_id"`
}

func (h *CollabHandler) AddComment(c *gin.Context) {
	decisionID, ok := pathID(c, "decision_id")
	if !ok {
		return
	}
	authorID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "content is required")
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), decisionID, authorID, req.Content, req.ParentCommentID)
	if err != nil {
		respondCollabError(c, err, "Decision not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added", "comment": comment})
}

func (h *CollabHandler) GetTeamDecision(c *gin.Context) {
	decisionID, ok := pathID(c, "decision_id")
	if !ok {
		return
	}
	detail, err := h.svc.DecisionDetail(c.Request.Context(), decisionID)
	if err != nil {
		respondCollabError(c, err, "Decision not found")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *CollabHandler) DecisionStats(c *gin.Context) {
	decisionID, ok := pathID(c, "decision_id")
	if !ok {
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), decisionID)
	if err != nil {
		respondCollabError(c, err, "Decision not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"decision_id": decisionID,
		"stats":       stats,
	})
}
