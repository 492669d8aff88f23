package repository

import (
	"context"
	"opsboard/internal/model"
)

// NotifyStore presents the repositories under the method names the notify
// service expects.
type NotifyStore struct {
	Tasks         *TaskRepository
	Projects      *ProjectRepository
	Reviews       *ReviewRepository
	Briefs        *BriefRepository
	DoDs          *DoDRepository
	Notifications *NotificationRepository
}

func (s *NotifyStore) ListTasksByState(ctx context.Context, state model.TaskState) ([]model.Task, error) {
	return s.Tasks.ListByState(ctx, state)
}

func (s *NotifyStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.Projects.ListAll(ctx)
}

func (s *NotifyStore) ListReviews(ctx context.Context) ([]model.Review, error) {
	return s.Reviews.ListAll(ctx)
}

func (s *NotifyStore) GetTask(ctx context.Context, id int) (*model.Task, error) {
	return s.Tasks.GetByID(ctx, id)
}

func (s *NotifyStore) TaskIDsWithBrief(ctx context.Context) (map[int]bool, error) {
	return s.Briefs.TaskIDsWithBrief(ctx)
}

func (s *NotifyStore) TaskIDsWithDoD(ctx context.Context) (map[int]bool, error) {
	return s.DoDs.TaskIDsWithDoD(ctx)
}

func (s *NotifyStore) InsertNotification(ctx context.Context, n *model.Notification) (int, error) {
	return s.Notifications.Insert(ctx, n)
}

func (s *NotifyStore) NotificationExists(ctx context.Context, typ model.NotificationType, taskID int) (bool, error) {
	return s.Notifications.Exists(ctx, typ, taskID)
}

func (s *NotifyStore) ProjectNotificationExists(ctx context.Context, typ model.NotificationType, projectID int) (bool, error) {
	return s.Notifications.ExistsForProject(ctx, typ, projectID)
}

func (s *NotifyStore) GetNotification(ctx context.Context, id int) (*model.Notification, error) {
	return s.Notifications.GetByID(ctx, id)
}

func (s *NotifyStore) SaveNotification(ctx context.Context, n *model.Notification) error {
	return s.Notifications.Save(ctx, n)
}

func (s *NotifyStore) GetSettings(ctx context.Context) (*model.NotificationSettings, error) {
	return s.Notifications.GetSettings(ctx)
}
