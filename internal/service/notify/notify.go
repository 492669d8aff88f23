// Package notify generates notifications from rule-based checks over the
// task population and drives the notification lifecycle.
package notify

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/model"
	"opsboard/pkg/metrics"

	"go.uber.org/zap"
)

type Store interface {
	ListTasksByState(ctx context.Context, state model.TaskState) ([]model.Task, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListReviews(ctx context.Context) ([]model.Review, error)
	GetTask(ctx context.Context, id int) (*model.Task, error)
	TaskIDsWithBrief(ctx context.Context) (map[int]bool, error)
	TaskIDsWithDoD(ctx context.Context) (map[int]bool, error)

	InsertNotification(ctx context.Context, n *model.Notification) (int, error)
	NotificationExists(ctx context.Context, typ model.NotificationType, taskID int) (bool, error)
	ProjectNotificationExists(ctx context.Context, typ model.NotificationType, projectID int) (bool, error)
	GetNotification(ctx context.Context, id int) (*model.Notification, error)
	SaveNotification(ctx context.Context, n *model.Notification) error

	GetSettings(ctx context.Context) (*model.NotificationSettings, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// GenerateAll runs every enabled rule and returns the notifications created.
func (s *Service) GenerateAll(ctx context.Context) ([]model.Notification, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	created := []model.Notification{}
	for _, gen := range []func(context.Context, *model.NotificationSettings) ([]model.Notification, error){
		s.generateDueDate,
		s.generateMissingComponents,
		s.generateStale,
		s.generateReviewSchedule,
	} {
		batch, err := gen(ctx, settings)
		if err != nil {
			return nil, err
		}
		created = append(created, batch...)
	}
	if len(created) > 0 {
		s.logger.Info("Notifications generated", zap.Int("count", len(created)))
	}
	return created, nil
}

// generateDueDate covers tasks due within the reminder window, due today, or
// already overdue. One active reminder per task.
func (s *Service) generateDueDate(ctx context.Context, settings *model.NotificationSettings) ([]model.Notification, error) {
	if !settings.EnableDueDateReminders {
		return nil, nil
	}
	now := s.now()
	reminderCutoff := now.AddDate(0, 0, settings.DueDateReminderDays)

	created := []model.Notification{}
	for _, state := range []model.TaskState{model.StateBacklog, model.StateInProgress} {
		tasks, err := s.store.ListTasksByState(ctx, state)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if t.DueDate == nil || t.DueDate.After(reminderCutoff) {
				continue
			}
			daysUntilDue := daysBetween(now, *t.DueDate)
			var title, message string
			switch {
			case daysUntilDue == 0:
				title = fmt.Sprintf("Due today: %s", t.Title)
				message = fmt.Sprintf("Task %q is due today.", t.Title)
			case daysUntilDue < 0:
				title = fmt.Sprintf("Overdue: %s", t.Title)
				message = fmt.Sprintf("Task %q is %d day(s) past its due date.", t.Title, -daysUntilDue)
			default:
				title = fmt.Sprintf("Due in %d day(s): %s", daysUntilDue, t.Title)
				message = fmt.Sprintf("Task %q is due in %d day(s).", t.Title, daysUntilDue)
			}
			n, err := s.createTaskNotification(ctx, model.NotifyDueDateReminder, &t, title, message)
			if err != nil {
				return nil, err
			}
			if n != nil {
				created = append(created, *n)
			}
		}
	}
	return created, nil
}

// generateMissingComponents alerts on active tasks that lack a brief or a
// definition of done.
func (s *Service) generateMissingComponents(ctx context.Context, settings *model.NotificationSettings) ([]model.Notification, error) {
	if !settings.EnableMissingBriefAlerts && !settings.EnableMissingDoDAlerts {
		return nil, nil
	}
	withBrief, err := s.store.TaskIDsWithBrief(ctx)
	if err != nil {
		return nil, err
	}
	withDoD, err := s.store.TaskIDsWithDoD(ctx)
	if err != nil {
		return nil, err
	}

	created := []model.Notification{}
	for _, state := range []model.TaskState{model.StateBacklog, model.StateInProgress} {
		tasks, err := s.store.ListTasksByState(ctx, state)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if settings.EnableMissingBriefAlerts && !withBrief[t.ID] {
				n, err := s.createTaskNotification(ctx, model.NotifyMissingBrief, &t,
					fmt.Sprintf("Missing 5SB: %s", t.Title),
					fmt.Sprintf("Task %q has no five-sentence brief yet.", t.Title))
				if err != nil {
					return nil, err
				}
				if n != nil {
					created = append(created, *n)
				}
			}
			if settings.EnableMissingDoDAlerts && !withDoD[t.ID] {
				n, err := s.createTaskNotification(ctx, model.NotifyMissingDoD, &t,
					fmt.Sprintf("Missing DoD: %s", t.Title),
					fmt.Sprintf("Task %q has no definition of done yet.", t.Title))
				if err != nil {
					return nil, err
				}
				if n != nil {
					created = append(created, *n)
				}
			}
		}
	}
	return created, nil
}

// generateStale alerts on in-progress tasks that have not been touched for
// the configured number of days.
func (s *Service) generateStale(ctx context.Context, settings *model.NotificationSettings) ([]model.Notification, error) {
	if !settings.EnableStaleTaskAlerts {
		return nil, nil
	}
	now := s.now()
	threshold := now.AddDate(0, 0, -settings.StaleTaskDays)

	tasks, err := s.store.ListTasksByState(ctx, model.StateInProgress)
	if err != nil {
		return nil, err
	}
	created := []model.Notification{}
	for _, t := range tasks {
		if !t.UpdatedAt.Before(threshold) {
			continue
		}
		daysStale := int(now.Sub(t.UpdatedAt).Hours() / 24)
		n, err := s.createTaskNotification(ctx, model.NotifyStaleTask, &t,
			fmt.Sprintf("Stale task: %s", t.Title),
			fmt.Sprintf("Task %q has not been updated for %d day(s).", t.Title, daysStale))
		if err != nil {
			return nil, err
		}
		if n != nil {
			created = append(created, *n)
		}
	}
	return created, nil
}

// generateReviewSchedule alerts on projects with no review inside the
// reminder window.
func (s *Service) generateReviewSchedule(ctx context.Context, settings *model.NotificationSettings) ([]model.Notification, error) {
	if !settings.EnableReviewReminders {
		return nil, nil
	}
	now := s.now()
	windowStart := now.AddDate(0, 0, -settings.ReviewReminderFrequencyDays)

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, err
	}

	// Map each recent review back to its project through the task.
	recentByProject := map[int]bool{}
	taskProject := map[int]int{}
	for _, r := range reviews {
		if !r.CreatedAt.After(windowStart) {
			continue
		}
		projectID, ok := taskProject[r.TaskID]
		if !ok {
			t, err := s.store.GetTask(ctx, r.TaskID)
			if err != nil {
				continue
			}
			projectID = t.ProjectID
			taskProject[r.TaskID] = projectID
		}
		recentByProject[projectID] = true
	}

	created := []model.Notification{}
	for _, p := range projects {
		if recentByProject[p.ID] {
			continue
		}
		exists, err := s.store.ProjectNotificationExists(ctx, model.NotifyReviewSchedule, p.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		projectID := p.ID
		n := &model.Notification{
			Type:         model.NotifyReviewSchedule,
			Title:        fmt.Sprintf("Review due: %s", p.Name),
			Message:      fmt.Sprintf("Project %q has had no review in the last %d day(s).", p.Name, settings.ReviewReminderFrequencyDays),
			Status:       model.NotificationPending,
			ProjectID:    &projectID,
			ScheduledFor: now,
		}
		if _, err := s.store.InsertNotification(ctx, n); err != nil {
			return nil, err
		}
		metrics.IncrementNotificationsGenerated(string(n.Type))
		created = append(created, *n)
	}
	return created, nil
}

func (s *Service) createTaskNotification(ctx context.Context, typ model.NotificationType, t *model.Task, title, message string) (*model.Notification, error) {
	exists, err := s.store.NotificationExists(ctx, typ, t.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}
	taskID, projectID := t.ID, t.ProjectID
	n := &model.Notification{
		Type:         typ,
		Title:        title,
		Message:      message,
		Status:       model.NotificationPending,
		TaskID:       &taskID,
		ProjectID:    &projectID,
		ScheduledFor: s.now(),
	}
	if _, err := s.store.InsertNotification(ctx, n); err != nil {
		return nil, err
	}
	metrics.IncrementNotificationsGenerated(string(typ))
	return n, nil
}

// MarkSent advances a notification to SENT.
func (s *Service) MarkSent(ctx context.Context, id int) (*model.Notification, error) {
	return s.transition(ctx, id, (*model.Notification).MarkSent)
}

// MarkRead advances a notification to READ.
func (s *Service) MarkRead(ctx context.Context, id int) (*model.Notification, error) {
	return s.transition(ctx, id, (*model.Notification).MarkRead)
}

// Dismiss advances a notification to DISMISSED.
func (s *Service) Dismiss(ctx context.Context, id int) (*model.Notification, error) {
	return s.transition(ctx, id, (*model.Notification).Dismiss)
}

func (s *Service) transition(ctx context.Context, id int, apply func(*model.Notification, time.Time) error) (*model.Notification, error) {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(n, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.SaveNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// daysBetween counts whole days from now's date to the target date, negative
// when the target is in the past.
func daysBetween(now, target time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return int(targetDay.Sub(nowDay).Hours() / 24)
}
