package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"

	"go.uber.org/zap"
)

type fakeStore struct {
	project   *model.Project
	tasks     []model.Task
	briefs    map[int]*model.Brief
	dods      map[int]*model.DoD
	decisions map[int][]model.DecisionLog
	reviews   map[int][]model.Review
	samples   map[int][]model.Sample
}

func (f *fakeStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.project, nil
}

func (f *fakeStore) ListTasks(ctx context.Context, projectID int) ([]model.Task, error) {
	return f.tasks, nil
}

func (f *fakeStore) GetBrief(ctx context.Context, taskID int) (*model.Brief, error) {
	if b, ok := f.briefs[taskID]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) GetDoD(ctx context.Context, taskID int) (*model.DoD, error) {
	if d, ok := f.dods[taskID]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListDecisions(ctx context.Context, taskID int) ([]model.DecisionLog, error) {
	return f.decisions[taskID], nil
}

func (f *fakeStore) ListReviews(ctx context.Context, taskID int) ([]model.Review, error) {
	return f.reviews[taskID], nil
}

func (f *fakeStore) ListSamples(ctx context.Context, taskID int) ([]model.Sample, error) {
	return f.samples[taskID], nil
}

func TestFilename(t *testing.T) {
	date := time.Date(2024, time.June, 3, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		project string
		want    string
	}{
		{"plain", "opsboard", "opsboard_2024-06-03.md"},
		{"spaces collapse", "My  Side Project", "My_Side_Project_2024-06-03.md"},
		{"empty falls back", "   ", "project_2024-06-03.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.project, date); got != tt.want {
				t.Fatalf("Filename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProjectMarkdownEmptyProject(t *testing.T) {
	store := &fakeStore{project: &model.Project{ID: 1, Name: "Empty"}}
	svc := NewService(store, zap.NewNop())

	doc, err := svc.ProjectMarkdown(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProjectMarkdown failed: %v", err)
	}
	if !strings.HasPrefix(doc, "# Project: Empty") {
		t.Fatalf("missing title, got %q", doc)
	}
	if !strings.Contains(doc, "(no tasks)") {
		t.Fatalf("empty project should render the placeholder, got %q", doc)
	}
}

func TestProjectMarkdownSections(t *testing.T) {
	store := &fakeStore{
		project: &model.Project{ID: 1, Name: "Site", Description: "Marketing site rebuild"},
		tasks: []model.Task{
			{ID: 10, ProjectID: 1, Title: "Design mockups", State: model.StateDone, Priority: 2, DoDChecked: true},
			{ID: 11, ProjectID: 1, Title: "Write copy", State: model.StateBacklog, Priority: 3},
		},
		briefs: map[int]*model.Brief{
			10: {TaskID: 10, Purpose: "ship the landing page", SuccessCriteria: "lighthouse 90+", Constraints: "one week", Priority: "speed over polish", Validation: "stakeholder signoff"},
		},
		dods: map[int]*model.DoD{
			10: {TaskID: 10, DeliverableFormats: "figma", MandatoryChecks: []string{"responsive", "a11y"}, QualityBar: "pixel-perfect", Verification: "design review"},
		},
		decisions: map[int][]model.DecisionLog{
			10: {{ID: 5, TaskID: 10, Problem: "hero layout", Options: "A or B", DecisionReason: "B converts"}},
		},
	}
	svc := NewService(store, zap.NewNop())

	doc, err := svc.ProjectMarkdown(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProjectMarkdown failed: %v", err)
	}

	for _, want := range []string{
		"# Project: Site",
		"Marketing site rebuild",
		"### [10] Design mockups (DONE)",
		"#### 5SB",
		"- Purpose: ship the landing page",
		"#### DoD",
		"- Mandatory: responsive, a11y",
		"### [11] Write copy (BACKLOG)",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}

	// task 11 has no artifacts; its sections are simply absent
	tail := doc[strings.Index(doc, "### [11]"):]
	if strings.Contains(tail, "#### 5SB") || strings.Contains(tail, "#### DoD") {
		t.Fatalf("bare task should not render artifact sections:\n%s", tail)
	}
}

func TestProjectMarkdownUnknownProject(t *testing.T) {
	svc := NewService(&fakeStore{}, zap.NewNop())
	if _, err := svc.ProjectMarkdown(context.Background(), 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestProjectName(t *testing.T) {
	svc := NewService(&fakeStore{project: &model.Project{ID: 7, Name: "Atlas"}}, zap.NewNop())
	name, err := svc.ProjectName(context.Background(), 7)
	if err != nil || name != "Atlas" {
		t.Fatalf("ProjectName = %q, %v", name, err)
	}
}
