package collab

import (
	"context"
	"time"

	"opsboard/internal/model"
)

// UserRef is the compact author/approver/voter representation embedded in
// detail views.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

// ApprovalDetail is a workflow together with every recorded response.
type ApprovalDetail struct {
	Workflow  *model.ApprovalWorkflow `json:"workflow"`
	Responses []ResponseView          `json:"responses"`
}

type ResponseView struct {
	ID         int       `json:"id"`
	Approver   UserRef   `json:"approver"`
	IsApproved bool      `json:"is_approved"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DecisionDetail is a team decision with its votes, comments and voting
// statistics.
type DecisionDetail struct {
	Decision *model.TeamDecision `json:"decision"`
	Votes    []VoteView          `json:"votes"`
	Comments []CommentView       `json:"comments"`
	Stats    *DecisionStats      `json:"stats"`
}

type VoteView struct {
	ID              int       `json:"id"`
	Voter           UserRef   `json:"voter"`
	SelectedOptions []string  `json:"selected_options"`
	Reasoning       string    `json:"reasoning,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type CommentView struct {
	ID              int       `json:"id"`
	Author          UserRef   `json:"author"`
	Content         string    `json:"content"`
	ParentCommentID *int      `json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserProjects returns the projects the user owns and, when includeShared is
// set, projects shared with them through membership.
func (s *Service) UserProjects(ctx context.Context, userID int, includeShared bool) ([]model.Project, error) {
	ids, err := s.store.ListProjectIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects := []model.Project{}
	for _, id := range ids {
		p, err := s.store.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		if !includeShared && p.OwnerID != userID {
			continue
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *Service) userRef(ctx context.Context, id int) UserRef {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return UserRef{ID: id}
	}
	return UserRef{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

// WorkflowDetail loads a workflow with its responses and their authors.
func (s *Service) WorkflowDetail(ctx context.Context, workflowID int) (*ApprovalDetail, error) {
	workflow, err := s.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	views := []ResponseView{}
	for _, r := range responses {
		views = append(views, ResponseView{
			ID:         r.ID,
			Approver:   s.userRef(ctx, r.ApproverID),
			IsApproved: r.IsApproved,
			Comment:    r.Comment,
			CreatedAt:  r.CreatedAt,
		})
	}
	return &ApprovalDetail{Workflow: workflow, Responses: views}, nil
}

// DecisionDetail loads a team decision with its votes, comments and stats.
func (s *Service) DecisionDetail(ctx context.Context, decisionID int) (*DecisionDetail, error) {
	decision, err := s.store.GetTeamDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	votes, err := s.store.ListVotes(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	voteViews := []VoteView{}
	for _, v := range votes {
		voteViews = append(voteViews, VoteView{
			ID:              v.ID,
			Voter:           s.userRef(ctx, v.VoterID),
			SelectedOptions: v.SelectedOptions,
			Reasoning:       v.Reasoning,
			CreatedAt:       v.CreatedAt,
		})
	}
	comments, err := s.store.ListComments(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	commentViews := []CommentView{}
	for _, cm := range comments {
		commentViews = append(commentViews, CommentView{
			ID:              cm.ID,
			Author:          s.userRef(ctx, cm.AuthorID),
			Content:         cm.Content,
			ParentCommentID: cm.ParentCommentID,
			CreatedAt:       cm.CreatedAt,
		})
	}
	stats, err := s.Stats(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	return &DecisionDetail{
		Decision: decision,
		Votes:    voteViews,
		Comments: commentViews,
		Stats:    stats,
	}, nil
}
