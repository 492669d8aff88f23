package repository

import (
	"context"
	"opsboard/internal/model"
)

// TemplateStore presents the repositories under the method names the
// template service expects.
type TemplateStore struct {
	Templates *TemplateRepository
	Projects  *ProjectRepository
	Tasks     *TaskRepository
	Briefs    *BriefRepository
	DoDs      *DoDRepository
}

func (s *TemplateStore) InsertTemplate(ctx context.Context, t *model.Template) (int, error) {
	return s.Templates.Insert(ctx, t)
}

func (s *TemplateStore) GetTemplate(ctx context.Context, id int) (*model.Template, error) {
	return s.Templates.GetByID(ctx, id)
}

func (s *TemplateStore) ListTemplates(ctx context.Context, category model.TemplateCategory, typ model.TemplateType) ([]model.Template, error) {
	return s.Templates.List(ctx, category, typ)
}

func (s *TemplateStore) CountSystemTemplates(ctx context.Context) (int, error) {
	return s.Templates.CountSystemTemplates(ctx)
}

func (s *TemplateStore) RecordUsage(ctx context.Context, u *model.TemplateUsage) (int, error) {
	return s.Templates.RecordUsage(ctx, u)
}

func (s *TemplateStore) ListBestPractices(ctx context.Context, category model.TemplateCategory) ([]model.BestPractice, error) {
	return s.Templates.ListBestPractices(ctx, category)
}

func (s *TemplateStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	return s.Projects.GetByID(ctx, id)
}

func (s *TemplateStore) ListTasks(ctx context.Context, projectID int) ([]model.Task, error) {
	return s.Tasks.ListByProject(ctx, projectID)
}

func (s *TemplateStore) GetBrief(ctx context.Context, taskID int) (*model.Brief, error) {
	return s.Briefs.GetByTask(ctx, taskID)
}

func (s *TemplateStore) GetDoD(ctx context.Context, taskID int) (*model.DoD, error) {
	return s.DoDs.GetByTask(ctx, taskID)
}
