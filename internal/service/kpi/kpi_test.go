package kpi

import (
	"context"
	"testing"
	"time"

	"opsboard/internal/model"

	"go.uber.org/zap"
)

type fakeStores struct {
	tasks     []model.Task
	projects  []model.ProjectWithStats
	reviews   []model.Review
	decisions []model.DecisionLog

	sampleTotal    int
	sampleApproved int
	briefTaskIDs   map[int]bool
	dodTaskIDs     map[int]bool
}

func (f *fakeStores) ListAll(ctx context.Context) ([]model.Task, error) { return f.tasks, nil }
func (f *fakeStores) ListWithStats(ctx context.Context) ([]model.ProjectWithStats, error) {
	return f.projects, nil
}
func (f *fakeStores) Counts(ctx context.Context) (int, int, error) {
	return f.sampleTotal, f.sampleApproved, nil
}
func (f *fakeStores) TaskIDsWithBrief(ctx context.Context) (map[int]bool, error) {
	return f.briefTaskIDs, nil
}
func (f *fakeStores) TaskIDsWithDoD(ctx context.Context) (map[int]bool, error) {
	return f.dodTaskIDs, nil
}

type fakeReviews struct{ reviews []model.Review }

func (f *fakeReviews) ListAll(ctx context.Context) ([]model.Review, error) { return f.reviews, nil }

type fakeDecisions struct{ decisions []model.DecisionLog }

func (f *fakeDecisions) ListAll(ctx context.Context) ([]model.DecisionLog, error) {
	return f.decisions, nil
}

func newTestService(f *fakeStores) *Service {
	svc := NewService(f, f, &fakeReviews{f.reviews}, &fakeDecisions{f.decisions}, f, f, f, nil, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestSummaryNoTasks(t *testing.T) {
	f := &fakeStores{
		projects: []model.ProjectWithStats{{ID: 1, Name: "Empty"}},
		reviews:  []model.Review{{ID: 1}},
	}
	svc := newTestService(f)

	s, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if s.TotalProjects != 1 || s.TotalTasks != 0 || s.TotalReviews != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.ReworkRate != 0 || s.DoDAdherence != 0 || s.AvgProjectCompletion != 0 {
		t.Fatalf("rates should all be zero with no tasks, got %+v", s)
	}
}

func TestSummaryRates(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -10)

	f := &fakeStores{
		tasks: []model.Task{
			// project 1: one done with rework, one in progress
			{ID: 1, ProjectID: 1, State: model.StateDone, ReworkCount: 1, DoDChecked: true, ContextSwitchCount: 2, CreatedAt: old},
			{ID: 2, ProjectID: 1, State: model.StateInProgress, CreatedAt: old},
			// project 2: untouched backlog
			{ID: 3, ProjectID: 2, State: model.StateBacklog, CreatedAt: now.Add(-time.Hour)},
			{ID: 4, ProjectID: 2, State: model.StateBacklog, CreatedAt: now.Add(-time.Hour)},
		},
		projects: []model.ProjectWithStats{
			{ID: 1},
			{ID: 2},
		},
		sampleTotal:    4,
		sampleApproved: 3,
		briefTaskIDs:   map[int]bool{1: true, 2: true},
		dodTaskIDs:     map[int]bool{1: true},
	}
	svc := newTestService(f)

	s, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	// one of the two DONE/IN_PROGRESS tasks was reworked
	if s.ReworkRate != 0.5 {
		t.Fatalf("ReworkRate = %v, want 0.5", s.ReworkRate)
	}
	// 1 of 4 tasks dod_checked, 2 of 4 with briefs, 1 of 4 with DoD
	if s.DoDAdherence != 0.25 {
		t.Fatalf("DoDAdherence = %v, want 0.25", s.DoDAdherence)
	}
	if s.BriefCompletionRate != 0.5 {
		t.Fatalf("BriefCompletionRate = %v, want 0.5", s.BriefCompletionRate)
	}
	if s.DoDDefinitionRate != 0.25 {
		t.Fatalf("DoDDefinitionRate = %v, want 0.25", s.DoDDefinitionRate)
	}
	if s.SampleValidationRate != 0.75 {
		t.Fatalf("SampleValidationRate = %v, want 0.75", s.SampleValidationRate)
	}
	// project 1 is half done, project 2 not started: (0.5 + 0) / 2
	if s.AvgProjectCompletion != 0.25 {
		t.Fatalf("AvgProjectCompletion = %v, want 0.25", s.AvgProjectCompletion)
	}
	// 2 switches over 10+10+1+1 task-days
	if s.ContextSwitchesPerDay != 0.091 {
		t.Fatalf("ContextSwitchesPerDay = %v, want 0.091", s.ContextSwitchesPerDay)
	}

	if s.TaskStates.Done != 1 || s.TaskStates.InProgress != 1 || s.TaskStates.Backlog != 2 {
		t.Fatalf("unexpected state counts %+v", s.TaskStates)
	}
	// only the two young tasks are recent
	if s.RecentTasks != 2 {
		t.Fatalf("RecentTasks = %d, want 2", s.RecentTasks)
	}
}

func TestProductivity(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	recentDone := now.AddDate(0, 0, -2)
	oldDone := now.AddDate(0, 0, -30)
	pastDue := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	f := &fakeStores{
		projects: []model.ProjectWithStats{
			{ID: 1, Name: "Alpha"},
			{ID: 2, Name: "Beta"},
		},
		tasks: []model.Task{
			{ID: 1, ProjectID: 1, State: model.StateDone, UpdatedAt: recentDone},
			{ID: 2, ProjectID: 1, State: model.StateDone, UpdatedAt: oldDone},
			{ID: 3, ProjectID: 1, State: model.StateInProgress, DueDate: &pastDue},
			{ID: 4, ProjectID: 1, State: model.StateBacklog},
		},
	}
	svc := newTestService(f)

	r, err := svc.Productivity(context.Background())
	if err != nil {
		t.Fatalf("Productivity failed: %v", err)
	}

	if r.TasksInProgress != 1 || r.OverdueTasks != 1 || r.DoneLast7Days != 1 {
		t.Fatalf("unexpected totals %+v", r)
	}
	if len(r.Projects) != 2 {
		t.Fatalf("want 2 projects, got %d", len(r.Projects))
	}

	alpha := r.Projects[0]
	if alpha.TotalTasks != 4 || alpha.DoneTasks != 2 || alpha.InProgress != 1 {
		t.Fatalf("unexpected Alpha counts %+v", alpha)
	}
	if alpha.OverdueTasks != 1 || alpha.DoneLast7Days != 1 {
		t.Fatalf("unexpected Alpha recency %+v", alpha)
	}
	if alpha.CompletionRate != 0.5 {
		t.Fatalf("Alpha CompletionRate = %v, want 0.5", alpha.CompletionRate)
	}

	beta := r.Projects[1]
	if beta.TotalTasks != 0 || beta.CompletionRate != 0 {
		t.Fatalf("empty project should report zeros, got %+v", beta)
	}
}
