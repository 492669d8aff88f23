package repository

import (
	"context"
	"opsboard/internal/model"
)

// SearchStore presents the repositories under the method names the search
// service expects.
type SearchStore struct {
	Projects  *ProjectRepository
	Tasks     *TaskRepository
	Briefs    *BriefRepository
	DoDs      *DoDRepository
	Decisions *DecisionRepository
	Reviews   *ReviewRepository
}

func (s *SearchStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.Projects.ListAll(ctx)
}

func (s *SearchStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.Tasks.ListAll(ctx)
}

func (s *SearchStore) ListBriefs(ctx context.Context) ([]model.Brief, error) {
	return s.Briefs.ListAll(ctx)
}

func (s *SearchStore) ListDoDs(ctx context.Context) ([]model.DoD, error) {
	return s.DoDs.ListAll(ctx)
}

func (s *SearchStore) ListDecisions(ctx context.Context) ([]model.DecisionLog, error) {
	return s.Decisions.ListAll(ctx)
}

func (s *SearchStore) ListReviews(ctx context.Context) ([]model.Review, error) {
	return s.Reviews.ListAll(ctx)
}

func (s *SearchStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	return s.Projects.GetByID(ctx, id)
}
