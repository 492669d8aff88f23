package template

import (
	"context"
	"testing"

	"opsboard/internal/model"
	"opsboard/internal/repository"

	"go.uber.org/zap"
)

type fakeStore struct {
	templates []model.Template
	usages    []model.TemplateUsage
	practices []model.BestPractice

	projects map[int]model.Project
	tasks    map[int][]model.Task
	briefs   map[int]model.Brief
	dods     map[int]model.DoD
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[int]model.Project{},
		tasks:    map[int][]model.Task{},
		briefs:   map[int]model.Brief{},
		dods:     map[int]model.DoD{},
	}
}

func (f *fakeStore) InsertTemplate(ctx context.Context, t *model.Template) (int, error) {
	t.ID = len(f.templates) + 1
	f.templates = append(f.templates, *t)
	return t.ID, nil
}

func (f *fakeStore) GetTemplate(ctx context.Context, id int) (*model.Template, error) {
	for i := range f.templates {
		if f.templates[i].ID == id {
			return &f.templates[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListTemplates(ctx context.Context, category model.TemplateCategory, typ model.TemplateType) ([]model.Template, error) {
	out := []model.Template{}
	for _, t := range f.templates {
		if category != "" && t.Category != category {
			continue
		}
		if typ != "" && t.Type != typ {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) CountSystemTemplates(ctx context.Context) (int, error) {
	n := 0
	for _, t := range f.templates {
		if t.IsSystemTemplate {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) RecordUsage(ctx context.Context, u *model.TemplateUsage) (int, error) {
	u.ID = len(f.usages) + 1
	f.usages = append(f.usages, *u)
	return u.ID, nil
}

func (f *fakeStore) ListBestPractices(ctx context.Context, category model.TemplateCategory) ([]model.BestPractice, error) {
	return f.practices, nil
}

func (f *fakeStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	if p, ok := f.projects[id]; ok {
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListTasks(ctx context.Context, projectID int) ([]model.Task, error) {
	return f.tasks[projectID], nil
}

func (f *fakeStore) GetBrief(ctx context.Context, taskID int) (*model.Brief, error) {
	if b, ok := f.briefs[taskID]; ok {
		return &b, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) GetDoD(ctx context.Context, taskID int) (*model.DoD, error) {
	if d, ok := f.dods[taskID]; ok {
		return &d, nil
	}
	return nil, repository.ErrNotFound
}

func TestSeedSystemTemplatesIdempotent(t *testing.T) {
	f := newFakeStore()
	svc := NewService(f, zap.NewNop())

	if err := svc.SeedSystemTemplates(context.Background()); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	seeded := len(f.templates)
	if seeded == 0 {
		t.Fatal("seeding installed no templates")
	}
	for _, tmpl := range f.templates {
		if !tmpl.IsSystemTemplate {
			t.Fatalf("seeded template %q not flagged as system", tmpl.Name)
		}
	}

	if err := svc.SeedSystemTemplates(context.Background()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if len(f.templates) != seeded {
		t.Fatalf("second seed added templates: %d -> %d", seeded, len(f.templates))
	}
}

func TestRecommendRanksByRelevance(t *testing.T) {
	f := newFakeStore()
	eight := 0.9
	f.templates = []model.Template{
		{ID: 1, Name: "Web application 5SB", Description: "Brief for web projects", Category: model.CategoryWebDevelopment, Type: model.TemplateBrief},
		{ID: 2, Name: "Marketing campaign 5SB", Description: "Campaign planning", Category: model.CategoryMarketing, Type: model.TemplateBrief},
		{ID: 3, Name: "Web application DoD", Description: "Checks for web projects", Category: model.CategoryWebDevelopment, Type: model.TemplateDoD, UsageCount: 10, SuccessRate: &eight},
	}
	svc := NewService(f, zap.NewNop())

	recs, err := svc.Recommend(context.Background(), []string{"web"}, 5)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 recommendations, got %d", len(recs))
	}
	// Template 3 matches the same keywords but carries usage and success
	// bonuses, so it must outrank template 1.
	if recs[0].Template.ID != 3 {
		t.Fatalf("want template 3 first, got %d (score %v)", recs[0].Template.ID, recs[0].RelevanceScore)
	}
	if recs[0].RelevanceScore <= recs[1].RelevanceScore {
		t.Fatalf("scores not descending: %v then %v", recs[0].RelevanceScore, recs[1].RelevanceScore)
	}
	found := false
	for _, reason := range recs[0].MatchReasons {
		if reason == `name contains "web"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing name match reason, got %v", recs[0].MatchReasons)
	}
}

func TestRecommendLimit(t *testing.T) {
	f := newFakeStore()
	for i := 0; i < 8; i++ {
		f.templates = append(f.templates, model.Template{
			ID:   i + 1,
			Name: "Web skeleton",
			Type: model.TemplateBrief,
		})
	}
	svc := NewService(f, zap.NewNop())

	recs, err := svc.Recommend(context.Background(), []string{"web"}, 3)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 recommendations, got %d", len(recs))
	}
}

func TestGenerateFromProject(t *testing.T) {
	f := newFakeStore()
	f.projects[1] = model.Project{ID: 1, Name: "Website redesign", Description: "New frontend"}
	f.tasks[1] = []model.Task{
		{ID: 10, ProjectID: 1, State: model.StateDone},
		{ID: 11, ProjectID: 1, State: model.StateDone},
		{ID: 12, ProjectID: 1, State: model.StateDone},
		{ID: 13, ProjectID: 1, State: model.StateDone},
		{ID: 14, ProjectID: 1, State: model.StateInProgress},
	}
	f.briefs[10] = model.Brief{TaskID: 10, Purpose: "Short", SuccessCriteria: "ok"}
	f.briefs[11] = model.Brief{TaskID: 11, Purpose: "A much longer purpose statement", SuccessCriteria: "detailed criteria", Constraints: "budget", Priority: "mvp", Validation: "tests"}
	f.dods[10] = model.DoD{TaskID: 10, DeliverableFormats: "MD", MandatoryChecks: []string{"a", "b", "c"}, QualityBar: "high", Verification: "review"}

	svc := NewService(f, zap.NewNop())
	got, err := svc.GenerateFromProject(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateFromProject failed: %v", err)
	}
	if got == nil || got.BriefTemplate == nil || got.DoDTemplate == nil {
		t.Fatalf("expected both templates, got %+v", got)
	}
	bt := got.BriefTemplate
	if bt.Category != model.CategoryWebDevelopment {
		t.Fatalf("category inference failed: %s", bt.Category)
	}
	if !bt.IsAIGenerated || bt.SourceProjectID == nil || *bt.SourceProjectID != 1 {
		t.Fatalf("provenance not recorded: %+v", bt)
	}
	// The richer brief from task 11 should be the pattern source.
	if bt.Content["purpose"] != "A much longer purpose statement" {
		t.Fatalf("wrong brief chosen: %v", bt.Content["purpose"])
	}
	if bt.SuccessRate == nil || *bt.SuccessRate != 0.8 {
		t.Fatalf("success rate not 0.8: %v", bt.SuccessRate)
	}
	if len(f.templates) != 2 {
		t.Fatalf("templates not persisted, have %d", len(f.templates))
	}
}

func TestGenerateFromProjectBelowThreshold(t *testing.T) {
	f := newFakeStore()
	f.projects[1] = model.Project{ID: 1, Name: "Half done"}
	f.tasks[1] = []model.Task{
		{ID: 10, ProjectID: 1, State: model.StateDone},
		{ID: 11, ProjectID: 1, State: model.StateBacklog},
	}
	f.briefs[10] = model.Brief{TaskID: 10, Purpose: "p"}

	got, err := NewService(f, zap.NewNop()).GenerateFromProject(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateFromProject failed: %v", err)
	}
	if got != nil {
		t.Fatalf("project below threshold must not generate, got %+v", got)
	}
	if len(f.templates) != 0 {
		t.Fatalf("templates persisted for unqualified project")
	}
}

func TestGenerateFromProjectNoArtifacts(t *testing.T) {
	f := newFakeStore()
	f.projects[1] = model.Project{ID: 1, Name: "Done but bare"}
	f.tasks[1] = []model.Task{{ID: 10, ProjectID: 1, State: model.StateDone}}

	got, err := NewService(f, zap.NewNop()).GenerateFromProject(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateFromProject failed: %v", err)
	}
	if got != nil {
		t.Fatalf("no artifacts means nothing to extract, got %+v", got)
	}
}

func TestStats(t *testing.T) {
	rate := 0.85
	f := newFakeStore()
	f.templates = []model.Template{
		{ID: 1, Name: "A", Category: model.CategoryWebDevelopment, IsSystemTemplate: true, UsageCount: 7, SuccessRate: &rate},
		{ID: 2, Name: "B", Category: model.CategoryWebDevelopment, IsAIGenerated: true, UsageCount: 2},
		{ID: 3, Name: "C", Category: model.CategoryGeneral},
	}
	svc := NewService(f, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalTemplates != 3 || stats.SystemTemplates != 1 || stats.AIGeneratedTemplates != 1 || stats.UserTemplates != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.CategoryDistribution[string(model.CategoryWebDevelopment)] != 2 {
		t.Fatalf("category distribution wrong: %v", stats.CategoryDistribution)
	}
	if len(stats.MostUsedTemplates) != 2 || stats.MostUsedTemplates[0].ID != 1 {
		t.Fatalf("most used list wrong: %+v", stats.MostUsedTemplates)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        model.TemplateCategory
	}{
		{"Shop frontend", "", model.CategoryWebDevelopment},
		{"Quarterly numbers", "data analysis of sales", model.CategoryDataAnalysis},
		{"Ops bot", "", model.CategoryAutomation},
		{"Untitled", "", model.CategoryGeneral},
	}
	for _, tt := range tests {
		p := &model.Project{Name: tt.name, Description: tt.description}
		if got := inferCategory(p); got != tt.want {
			t.Errorf("inferCategory(%q, %q) = %s, want %s", tt.name, tt.description, got, tt.want)
		}
	}
}
