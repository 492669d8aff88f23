package notify

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"

	"go.uber.org/zap"
)

type fakeStore struct {
	tasksByState map[model.TaskState][]model.Task
	projects     []model.Project
	reviews      []model.Review
	withBrief    map[int]bool
	withDoD      map[int]bool
	settings     model.NotificationSettings

	inserted      []model.Notification
	existing      map[string]bool // "type/taskID" and "type/project/projectID"
	notifications map[int]*model.Notification
	saved         []model.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasksByState:  map[model.TaskState][]model.Task{},
		withBrief:     map[int]bool{},
		withDoD:       map[int]bool{},
		existing:      map[string]bool{},
		notifications: map[int]*model.Notification{},
		settings: model.NotificationSettings{
			DueDateReminderDays:         3,
			EnableDueDateReminders:      true,
			EnableMissingBriefAlerts:    true,
			EnableMissingDoDAlerts:      true,
			StaleTaskDays:               7,
			EnableStaleTaskAlerts:       true,
			EnableReviewReminders:       true,
			ReviewReminderFrequencyDays: 7,
		},
	}
}

func (f *fakeStore) ListTasksByState(ctx context.Context, state model.TaskState) ([]model.Task, error) {
	return f.tasksByState[state], nil
}
func (f *fakeStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	return f.projects, nil
}
func (f *fakeStore) ListReviews(ctx context.Context) ([]model.Review, error) {
	return f.reviews, nil
}
func (f *fakeStore) GetTask(ctx context.Context, id int) (*model.Task, error) {
	for _, tasks := range f.tasksByState {
		for i := range tasks {
			if tasks[i].ID == id {
				return &tasks[i], nil
			}
		}
	}
	return nil, repository.ErrNotFound
}
func (f *fakeStore) TaskIDsWithBrief(ctx context.Context) (map[int]bool, error) {
	return f.withBrief, nil
}
func (f *fakeStore) TaskIDsWithDoD(ctx context.Context) (map[int]bool, error) {
	return f.withDoD, nil
}
func (f *fakeStore) InsertNotification(ctx context.Context, n *model.Notification) (int, error) {
	n.ID = len(f.inserted) + 1
	f.inserted = append(f.inserted, *n)
	return n.ID, nil
}
func (f *fakeStore) NotificationExists(ctx context.Context, typ model.NotificationType, taskID int) (bool, error) {
	return f.existing[string(typ)+"/"+strconv.Itoa(taskID)], nil
}
func (f *fakeStore) ProjectNotificationExists(ctx context.Context, typ model.NotificationType, projectID int) (bool, error) {
	return f.existing[string(typ)+"/project/"+strconv.Itoa(projectID)], nil
}
func (f *fakeStore) GetNotification(ctx context.Context, id int) (*model.Notification, error) {
	if n, ok := f.notifications[id]; ok {
		return n, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeStore) SaveNotification(ctx context.Context, n *model.Notification) error {
	f.saved = append(f.saved, *n)
	return nil
}
func (f *fakeStore) GetSettings(ctx context.Context) (*model.NotificationSettings, error) {
	s := f.settings
	return &s, nil
}

func newTestService(f *fakeStore, now time.Time) *Service {
	svc := NewService(f, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func countByType(notifications []model.Notification, typ model.NotificationType) int {
	n := 0
	for _, notif := range notifications {
		if notif.Type == typ {
			n++
		}
	}
	return n
}

func TestGenerateDueDateReminders(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	dueToday := now.Add(2 * time.Hour)
	overdue := now.AddDate(0, 0, -2)
	farOff := now.AddDate(0, 0, 30)

	f := newFakeStore()
	f.settings.EnableMissingBriefAlerts = false
	f.settings.EnableMissingDoDAlerts = false
	f.settings.EnableStaleTaskAlerts = false
	f.settings.EnableReviewReminders = false
	f.tasksByState[model.StateInProgress] = []model.Task{
		{ID: 1, ProjectID: 1, Title: "Ship it", DueDate: &dueToday, UpdatedAt: now},
		{ID: 2, ProjectID: 1, Title: "Late one", DueDate: &overdue, UpdatedAt: now},
		{ID: 3, ProjectID: 1, Title: "Future work", DueDate: &farOff, UpdatedAt: now},
		{ID: 4, ProjectID: 1, Title: "No due date", UpdatedAt: now},
	}

	created, err := newTestService(f, now).GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("want 2 reminders, got %d: %+v", len(created), created)
	}
	if created[0].Title != "Due today: Ship it" {
		t.Fatalf("unexpected title %q", created[0].Title)
	}
	if created[1].Title != "Overdue: Late one" {
		t.Fatalf("unexpected title %q", created[1].Title)
	}
}

func TestGenerateSkipsExistingNotifications(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	dueToday := now.Add(time.Hour)

	f := newFakeStore()
	f.settings.EnableMissingBriefAlerts = false
	f.settings.EnableMissingDoDAlerts = false
	f.settings.EnableStaleTaskAlerts = false
	f.settings.EnableReviewReminders = false
	f.tasksByState[model.StateBacklog] = []model.Task{
		{ID: 1, ProjectID: 1, Title: "Ship it", DueDate: &dueToday, UpdatedAt: now},
	}
	f.existing[string(model.NotifyDueDateReminder)+"/1"] = true

	created, err := newTestService(f, now).GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("existing notification should suppress a duplicate, got %+v", created)
	}
}

func TestGenerateMissingComponents(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	f := newFakeStore()
	f.settings.EnableDueDateReminders = false
	f.settings.EnableStaleTaskAlerts = false
	f.settings.EnableReviewReminders = false
	f.tasksByState[model.StateBacklog] = []model.Task{
		{ID: 1, ProjectID: 1, Title: "Complete", UpdatedAt: now},
		{ID: 2, ProjectID: 1, Title: "Bare", UpdatedAt: now},
	}
	f.withBrief[1] = true
	f.withDoD[1] = true

	created, err := newTestService(f, now).GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if got := countByType(created, model.NotifyMissingBrief); got != 1 {
		t.Fatalf("want 1 missing-brief alert, got %d", got)
	}
	if got := countByType(created, model.NotifyMissingDoD); got != 1 {
		t.Fatalf("want 1 missing-dod alert, got %d", got)
	}
	for _, n := range created {
		if n.TaskID == nil || *n.TaskID != 2 {
			t.Fatalf("alerts should target the bare task, got %+v", n)
		}
	}
}

func TestGenerateStaleTasks(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	f := newFakeStore()
	f.settings.EnableDueDateReminders = false
	f.settings.EnableMissingBriefAlerts = false
	f.settings.EnableMissingDoDAlerts = false
	f.settings.EnableReviewReminders = false
	f.withBrief[1], f.withBrief[2] = true, true
	f.withDoD[1], f.withDoD[2] = true, true
	f.tasksByState[model.StateInProgress] = []model.Task{
		{ID: 1, ProjectID: 1, Title: "Active", UpdatedAt: now.AddDate(0, 0, -1)},
		{ID: 2, ProjectID: 1, Title: "Forgotten", UpdatedAt: now.AddDate(0, 0, -10)},
	}

	created, err := newTestService(f, now).GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("want 1 stale alert, got %d: %+v", len(created), created)
	}
	if created[0].Type != model.NotifyStaleTask || *created[0].TaskID != 2 {
		t.Fatalf("unexpected alert %+v", created[0])
	}
}

func TestGenerateReviewSchedule(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	f := newFakeStore()
	f.settings.EnableDueDateReminders = false
	f.settings.EnableMissingBriefAlerts = false
	f.settings.EnableMissingDoDAlerts = false
	f.settings.EnableStaleTaskAlerts = false
	f.projects = []model.Project{
		{ID: 1, Name: "Reviewed recently"},
		{ID: 2, Name: "Neglected"},
	}
	f.tasksByState[model.StateDone] = []model.Task{
		{ID: 10, ProjectID: 1, Title: "Reviewed task"},
	}
	f.reviews = []model.Review{
		{ID: 1, TaskID: 10, CreatedAt: now.AddDate(0, 0, -2)},
	}

	created, err := newTestService(f, now).GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("want 1 review reminder, got %d: %+v", len(created), created)
	}
	n := created[0]
	if n.Type != model.NotifyReviewSchedule || n.ProjectID == nil || *n.ProjectID != 2 {
		t.Fatalf("reminder should target the neglected project, got %+v", n)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	f := newFakeStore()
	f.notifications[1] = &model.Notification{ID: 1, Status: model.NotificationPending}
	svc := newTestService(f, now)

	n, err := svc.MarkSent(context.Background(), 1)
	if err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	if n.Status != model.NotificationSent || n.SentAt == nil {
		t.Fatalf("unexpected notification %+v", n)
	}

	if _, err := svc.MarkRead(context.Background(), 1); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if _, err := svc.Dismiss(context.Background(), 1); !errors.Is(err, model.ErrNotificationFinal) {
		t.Fatalf("dismissing a read notification should fail, got %v", err)
	}
	if len(f.saved) != 2 {
		t.Fatalf("failed transitions must not be saved, saved %d times", len(f.saved))
	}
}
