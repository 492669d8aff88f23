package search

import (
	"context"
	"testing"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"

	"go.uber.org/zap"
)

type fakeStore struct {
	projects  []model.Project
	tasks     []model.Task
	briefs    []model.Brief
	dods      []model.DoD
	decisions []model.DecisionLog
	reviews   []model.Review
}

func (f *fakeStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	return f.projects, nil
}
func (f *fakeStore) ListTasks(ctx context.Context) ([]model.Task, error)   { return f.tasks, nil }
func (f *fakeStore) ListBriefs(ctx context.Context) ([]model.Brief, error) { return f.briefs, nil }
func (f *fakeStore) ListDoDs(ctx context.Context) ([]model.DoD, error)     { return f.dods, nil }
func (f *fakeStore) ListDecisions(ctx context.Context) ([]model.DecisionLog, error) {
	return f.decisions, nil
}
func (f *fakeStore) ListReviews(ctx context.Context) ([]model.Review, error) {
	return f.reviews, nil
}
func (f *fakeStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func testStore() *fakeStore {
	createdAt := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	return &fakeStore{
		projects: []model.Project{
			{ID: 1, Name: "Landing page redesign", Description: "marketing site refresh", CreatedAt: createdAt},
			{ID: 2, Name: "Landing page analytics", Description: "traffic dashboards", CreatedAt: createdAt},
			{ID: 3, Name: "Payroll migration", Description: "internal tooling", CreatedAt: createdAt},
		},
		tasks: []model.Task{
			{ID: 10, ProjectID: 1, Title: "Redesign hero section", Priority: 2, State: model.StateInProgress, CreatedAt: createdAt},
			{ID: 11, ProjectID: 3, Title: "Export payroll data", Priority: 3, State: model.StateBacklog, CreatedAt: createdAt},
		},
		decisions: []model.DecisionLog{
			{ID: 20, TaskID: 10, Problem: "hero layout redesign", Options: "single column vs split", DecisionReason: "split converts better", AssumptionsRisks: "mobile clutter", CreatedAt: createdAt},
			{ID: 21, TaskID: 11, Problem: "payroll cutover date", Options: "big bang vs phased", DecisionReason: "phased", AssumptionsRisks: "double bookkeeping", DPlus7Review: "phased worked", CreatedAt: createdAt},
		},
	}
}

func TestUnifiedShortQuery(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())
	resp, err := svc.Unified(context.Background(), "x", nil, 0)
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}
	if resp.TotalResults != 0 || len(resp.Results) != 0 {
		t.Fatalf("short query should return nothing, got %+v", resp)
	}
}

func TestUnifiedGroupsByType(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())
	resp, err := svc.Unified(context.Background(), "redesign", nil, 0)
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}
	if len(resp.Results["projects"]) != 1 {
		t.Fatalf("want 1 project hit, got %d", len(resp.Results["projects"]))
	}
	if len(resp.Results["tasks"]) != 1 {
		t.Fatalf("want 1 task hit, got %d", len(resp.Results["tasks"]))
	}
	if len(resp.Results["decisions"]) != 1 {
		t.Fatalf("want 1 decision hit, got %d", len(resp.Results["decisions"]))
	}
	if resp.TotalResults != 3 {
		t.Fatalf("TotalResults = %d, want 3", resp.TotalResults)
	}
	hit := resp.Results["projects"][0]
	if hit.ID != 1 || hit.Type != "project" || hit.RelevanceScore <= 0 {
		t.Fatalf("unexpected project hit %+v", hit)
	}
}

func TestUnifiedRespectsContentTypeFilter(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())
	resp, err := svc.Unified(context.Background(), "redesign", []string{"tasks"}, 0)
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}
	if _, ok := resp.Results["projects"]; ok {
		t.Fatal("projects should not be searched when filtered out")
	}
	if len(resp.Results["tasks"]) != 1 {
		t.Fatalf("want 1 task hit, got %+v", resp.Results)
	}
}

func TestSimilarProjects(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())
	similar, err := svc.SimilarProjects(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("SimilarProjects failed: %v", err)
	}
	if len(similar) == 0 {
		t.Fatal("want at least one similar project")
	}
	if similar[0].ID != 2 {
		t.Fatalf("the other landing page project should rank first, got %+v", similar)
	}
	for _, s := range similar {
		if s.ID == 1 {
			t.Fatal("a project must not be similar to itself")
		}
	}
	for i := 1; i < len(similar); i++ {
		if similar[i].SimilarityScore > similar[i-1].SimilarityScore {
			t.Fatal("similar projects must be sorted by score descending")
		}
	}
}

func TestSimilarProjectsUnknownProject(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())
	if _, err := svc.SimilarProjects(context.Background(), 99, 0); err == nil {
		t.Fatal("unknown project should error")
	}
}

func TestDecisionPatterns(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())

	patterns, err := svc.DecisionPatterns(context.Background(), "payroll cutover", 0)
	if err != nil {
		t.Fatalf("DecisionPatterns failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("want 1 pattern, got %d", len(patterns))
	}
	p := patterns[0]
	if p.ID != 21 || !p.HasReview || p.DPlus7Review != "phased worked" {
		t.Fatalf("unexpected pattern %+v", p)
	}

	// below the minimum length nothing fires
	short, err := svc.DecisionPatterns(context.Background(), "ab", 0)
	if err != nil || len(short) != 0 {
		t.Fatalf("short query should return nothing, got %v %v", short, err)
	}
}

func TestProjectSuggestions(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())
	s, err := svc.ProjectSuggestions(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProjectSuggestions failed: %v", err)
	}
	if s.Project.ID != 1 || s.Project.Name != "Landing page redesign" {
		t.Fatalf("unexpected project ref %+v", s.Project)
	}
	if len(s.SimilarProjects) == 0 {
		t.Fatal("suggestions should carry similar projects")
	}
	if len(s.Recommendations) != 3 {
		t.Fatalf("want the 3 static recommendations, got %d", len(s.Recommendations))
	}
}

func TestSummary(t *testing.T) {
	svc := NewService(testStore(), zap.NewNop())
	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.Projects != 3 || sum.Tasks != 2 || sum.Decisions != 2 {
		t.Fatalf("unexpected counts %+v", sum)
	}
	if sum.Total != 7 {
		t.Fatalf("Total = %d, want 7", sum.Total)
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords([]string{"The Big Redesign", "big redesign of the site"})
	want := []string{"the", "big", "redesign", "site"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keywords = %v, want %v", got, want)
		}
	}
}

func TestRelevancePhraseOutweighsWords(t *testing.T) {
	phrase := Relevance("hero layout", []string{"hero layout decisions"})
	scattered := Relevance("hero layout", []string{"layout work on the hero banner area"})
	if phrase <= scattered {
		t.Fatalf("phrase match %v should outscore scattered words %v", phrase, scattered)
	}
}
