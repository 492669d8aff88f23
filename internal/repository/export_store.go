package repository

import (
	"context"
	"opsboard/internal/model"
)

// ExportStore presents the repositories under the method names the export
// service expects.
type ExportStore struct {
	Projects  *ProjectRepository
	Tasks     *TaskRepository
	Briefs    *BriefRepository
	DoDs      *DoDRepository
	Decisions *DecisionRepository
	Reviews   *ReviewRepository
	Samples   *SampleRepository
}

func (s *ExportStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	return s.Projects.GetByID(ctx, id)
}

func (s *ExportStore) ListTasks(ctx context.Context, projectID int) ([]model.Task, error) {
	return s.Tasks.ListByProject(ctx, projectID)
}

func (s *ExportStore) GetBrief(ctx context.Context, taskID int) (*model.Brief, error) {
	return s.Briefs.GetByTask(ctx, taskID)
}

func (s *ExportStore) GetDoD(ctx context.Context, taskID int) (*model.DoD, error) {
	return s.DoDs.GetByTask(ctx, taskID)
}

func (s *ExportStore) ListDecisions(ctx context.Context, taskID int) ([]model.DecisionLog, error) {
	return s.Decisions.ListByTask(ctx, taskID)
}

func (s *ExportStore) ListReviews(ctx context.Context, taskID int) ([]model.Review, error) {
	return s.Reviews.ListByTask(ctx, taskID)
}

func (s *ExportStore) ListSamples(ctx context.Context, taskID int) ([]model.Sample, error) {
	return s.Samples.ListByTask(ctx, taskID)
}
