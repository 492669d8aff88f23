// Package template manages reusable brief and DoD skeletons: the built-in
// set, keyword recommendation, and extraction from finished projects.
package template

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"opsboard/internal/model"

	"go.uber.org/zap"
)

// successThreshold is the completion ratio a project needs before it can
// seed a generated template.
const successThreshold = 0.8

type Store interface {
	InsertTemplate(ctx context.Context, t *model.Template) (int, error)
	GetTemplate(ctx context.Context, id int) (*model.Template, error)
	ListTemplates(ctx context.Context, category model.TemplateCategory, typ model.TemplateType) ([]model.Template, error)
	CountSystemTemplates(ctx context.Context) (int, error)
	RecordUsage(ctx context.Context, u *model.TemplateUsage) (int, error)
	ListBestPractices(ctx context.Context, category model.TemplateCategory) ([]model.BestPractice, error)

	GetProject(ctx context.Context, id int) (*model.Project, error)
	ListTasks(ctx context.Context, projectID int) ([]model.Task, error)
	GetBrief(ctx context.Context, taskID int) (*model.Brief, error)
	GetDoD(ctx context.Context, taskID int) (*model.DoD, error)
}

// Recommendation pairs a template with its relevance to a keyword set.
type Recommendation struct {
	Template       model.Template `json:"template"`
	RelevanceScore float64        `json:"relevance_score"`
	MatchReasons   []string       `json:"match_reasons"`
}

// GeneratedTemplates holds the templates extracted from a project.
type GeneratedTemplates struct {
	BriefTemplate *model.Template `json:"brief_template,omitempty"`
	DoDTemplate   *model.Template `json:"dod_template,omitempty"`
}

// Stats summarizes the template library.
type Stats struct {
	TotalTemplates       int            `json:"total_templates"`
	SystemTemplates      int            `json:"system_templates"`
	AIGeneratedTemplates int            `json:"ai_generated_templates"`
	UserTemplates        int            `json:"user_templates"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	MostUsedTemplates    []TemplateRef  `json:"most_used_templates"`
}

// TemplateRef is the compact template listing inside Stats.
type TemplateRef struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	UsageCount  int      `json:"usage_count"`
	SuccessRate *float64 `json:"success_rate,omitempty"`
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// systemTemplates is the built-in library seeded at startup.
var systemTemplates = []model.Template{
	{
		Name:        "Web application 5SB",
		Description: "Five-sentence brief skeleton for web application projects",
		Category:    model.CategoryWebDevelopment,
		Type:        model.TemplateBrief,
		Content: map[string]any{
			"purpose":          "Build a web application delivering [core value] to its users.",
			"success_criteria": "[key features] implemented, [performance target] met, user satisfaction at [target score] or above",
			"constraints":      "Budget [amount], timeline [duration], stack [technologies], team size [people]",
			"priority":         "MVP features first, secondary features in follow-up iterations",
			"validation":       "User testing, performance testing, security review, code review",
		},
	},
	{
		Name:        "Web application DoD",
		Description: "Definition-of-done skeleton for web application projects",
		Category:    model.CategoryWebDevelopment,
		Type:        model.TemplateDoD,
		Content: map[string]any{
			"deliverable_formats": "Deployed application, source code, API docs, user manual",
			"mandatory_checks": []string{
				"All core features working",
				"Responsive layout applied",
				"Cross-browser compatibility verified",
				"Security scan passed",
				"Performance tuning done",
			},
			"quality_bar":  "Page load under 3s, mobile accessibility level AA",
			"verification": "Automated test coverage above 80%, manual test pass complete",
			"version_tag":  "v1.0",
		},
	},
	{
		Name:        "Data analysis project 5SB",
		Description: "Brief skeleton for analysis and insight projects",
		Category:    model.CategoryDataAnalysis,
		Type:        model.TemplateBrief,
		Content: map[string]any{
			"purpose":          "Analyze [dataset] to surface insights toward [business goal].",
			"success_criteria": "[count] key questions answered, [count] actionable recommendations, confidence above [percent]",
			"constraints":      "Data quality limits, analysis window [duration], tooling [tools]",
			"priority":         "Core KPI analysis, then detailed patterns, then predictive modeling",
			"validation":       "Statistical significance checks, domain expert review, reproducibility check",
		},
	},
	{
		Name:        "Research project 5SB",
		Description: "Brief skeleton for research and study projects",
		Category:    model.CategoryResearch,
		Type:        model.TemplateBrief,
		Content: map[string]any{
			"purpose":          "Run a structured study of [topic] to reach [research goal].",
			"success_criteria": "Hypotheses tested, report written, findings presented",
			"constraints":      "Timeline [duration], budget [amount], participants [people], ethics constraints",
			"priority":         "Literature review, study design, data collection, analysis, conclusions",
			"validation":       "Peer review, statistical validation, generalizability assessment",
		},
	},
	{
		Name:        "Marketing campaign 5SB",
		Description: "Brief skeleton for planning and running marketing campaigns",
		Category:    model.CategoryMarketing,
		Type:        model.TemplateBrief,
		Content: map[string]any{
			"purpose":          "Deliver [core message] to [target audience] to reach [business goal].",
			"success_criteria": "Reach [percent], conversion [percent], ROI at [multiple] or above",
			"constraints":      "Budget [amount], campaign window [duration], channel limits",
			"priority":         "Brand awareness, then lead generation, then conversion",
			"validation":       "A/B testing, KPI monitoring, customer feedback collection",
		},
	},
}

// SeedSystemTemplates installs the built-in library once. Subsequent calls
// are no-ops.
func (s *Service) SeedSystemTemplates(ctx context.Context) error {
	count, err := s.store.CountSystemTemplates(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for i := range systemTemplates {
		t := systemTemplates[i]
		t.IsSystemTemplate = true
		t.Tags = []string{"system", "default", strings.ToLower(string(t.Category))}
		if _, err := s.store.InsertTemplate(ctx, &t); err != nil {
			return err
		}
	}
	s.logger.Info("System templates seeded", zap.Int("count", len(systemTemplates)))
	return nil
}

// List returns the library, optionally narrowed by category and type.
func (s *Service) List(ctx context.Context, category model.TemplateCategory, typ model.TemplateType) ([]model.Template, error) {
	return s.store.ListTemplates(ctx, category, typ)
}

// Recommend ranks templates against project keywords.
func (s *Service) Recommend(ctx context.Context, keywords []string, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 5
	}
	templates, err := s.store.ListTemplates(ctx, "", "")
	if err != nil {
		return nil, err
	}

	recommendations := []Recommendation{}
	for _, t := range templates {
		score := relevance(&t, keywords)
		if score <= 0 {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Template:       t,
			RelevanceScore: score,
			MatchReasons:   matchReasons(&t, keywords),
		})
	}
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].RelevanceScore > recommendations[j].RelevanceScore
	})
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

// relevance scores one template against the keyword set. Name matches weigh
// most, then description, tags and category, with popularity and success
// bonuses on top.
func relevance(t *model.Template, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	score := 0.0
	name := strings.ToLower(t.Name)
	desc := strings.ToLower(t.Description)
	category := strings.ToLower(strings.ReplaceAll(string(t.Category), "_", " "))

	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if strings.Contains(name, k) {
			score += 3.0
		}
		if desc != "" && strings.Contains(desc, k) {
			score += 2.0
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), k) {
				score += 1.5
			}
		}
		if strings.Contains(category, k) {
			score += 1.0
		}
	}

	score += math.Min(float64(t.UsageCount)*0.1, 2.0)
	if t.SuccessRate != nil {
		score += *t.SuccessRate * 2.0
	}
	return math.Round(score*100) / 100
}

func matchReasons(t *model.Template, keywords []string) []string {
	reasons := []string{}
	name := strings.ToLower(t.Name)
	desc := strings.ToLower(t.Description)
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if strings.Contains(name, k) {
			reasons = append(reasons, fmt.Sprintf("name contains %q", kw))
		} else if desc != "" && strings.Contains(desc, k) {
			reasons = append(reasons, fmt.Sprintf("description contains %q", kw))
		}
	}
	if t.UsageCount > 5 {
		reasons = append(reasons, fmt.Sprintf("popular template used %d times", t.UsageCount))
	}
	if t.SuccessRate != nil && *t.SuccessRate > 0.8 {
		reasons = append(reasons, fmt.Sprintf("proven template with %.0f%% success rate", *t.SuccessRate*100))
	}
	return reasons
}

// GenerateFromProject extracts brief and DoD templates from a project whose
// completion ratio meets the success threshold. Returns nil when the project
// does not qualify or has nothing to extract.
func (s *Service) GenerateFromProject(ctx context.Context, projectID int) (*GeneratedTemplates, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	done := 0
	for _, t := range tasks {
		if t.State == model.StateDone {
			done++
		}
	}
	successRate := float64(done) / float64(len(tasks))
	if successRate < successThreshold {
		return nil, nil
	}

	briefs := []model.Brief{}
	dods := []model.DoD{}
	for _, t := range tasks {
		if b, err := s.store.GetBrief(ctx, t.ID); err == nil {
			briefs = append(briefs, *b)
		}
		if d, err := s.store.GetDoD(ctx, t.ID); err == nil {
			dods = append(dods, *d)
		}
	}
	if len(briefs) == 0 && len(dods) == 0 {
		return nil, nil
	}

	category := inferCategory(project)
	tags := extractTags(project, tasks, done)
	sourceID := projectID
	result := &GeneratedTemplates{}

	if len(briefs) > 0 {
		best := bestBrief(briefs)
		t := &model.Template{
			Name:        fmt.Sprintf("%s 5SB template", project.Name),
			Description: fmt.Sprintf("5SB template extracted from successful project %q", project.Name),
			Category:    category,
			Type:        model.TemplateBrief,
			Content: map[string]any{
				"purpose":          best.Purpose,
				"success_criteria": best.SuccessCriteria,
				"constraints":      best.Constraints,
				"priority":         best.Priority,
				"validation":       best.Validation,
			},
			IsAIGenerated:   true,
			SourceProjectID: &sourceID,
			SuccessRate:     &successRate,
			Tags:            tags,
		}
		if _, err := s.store.InsertTemplate(ctx, t); err != nil {
			return nil, err
		}
		result.BriefTemplate = t
	}

	if len(dods) > 0 {
		best := bestDoD(dods)
		t := &model.Template{
			Name:        fmt.Sprintf("%s DoD template", project.Name),
			Description: fmt.Sprintf("DoD template extracted from successful project %q", project.Name),
			Category:    category,
			Type:        model.TemplateDoD,
			Content: map[string]any{
				"deliverable_formats": best.DeliverableFormats,
				"mandatory_checks":    best.MandatoryChecks,
				"quality_bar":         best.QualityBar,
				"verification":        best.Verification,
				"version_tag":         "v1.0",
			},
			IsAIGenerated:   true,
			SourceProjectID: &sourceID,
			SuccessRate:     &successRate,
			Tags:            tags,
		}
		if _, err := s.store.InsertTemplate(ctx, t); err != nil {
			return nil, err
		}
		result.DoDTemplate = t
	}

	s.logger.Info("Templates generated from project",
		zap.Int("project_id", projectID),
		zap.Float64("success_rate", successRate),
	)
	return result, nil
}

// bestBrief picks the most detailed brief as the pattern source.
func bestBrief(briefs []model.Brief) *model.Brief {
	best := &briefs[0]
	for i := range briefs {
		b := &briefs[i]
		if len(b.Purpose)+len(b.SuccessCriteria) > len(best.Purpose)+len(best.SuccessCriteria) {
			best = b
		}
	}
	return best
}

// bestDoD picks the DoD with the most mandatory checks.
func bestDoD(dods []model.DoD) *model.DoD {
	best := &dods[0]
	for i := range dods {
		if len(dods[i].MandatoryChecks) > len(best.MandatoryChecks) {
			best = &dods[i]
		}
	}
	return best
}

var categoryKeywords = []struct {
	category model.TemplateCategory
	words    []string
}{
	{model.CategoryWebDevelopment, []string{"web", "website", "frontend", "backend"}},
	{model.CategoryMobileApp, []string{"mobile", "app", "ios", "android"}},
	{model.CategoryDataAnalysis, []string{"data", "analysis", "analytics"}},
	{model.CategoryResearch, []string{"research", "study", "survey"}},
	{model.CategoryMarketing, []string{"marketing", "campaign", "promotion"}},
	{model.CategoryDesign, []string{"design", "ui", "ux", "graphic"}},
	{model.CategoryInfrastructure, []string{"infrastructure", "server", "cloud"}},
	{model.CategoryAutomation, []string{"automation", "script", "bot"}},
}

func inferCategory(p *model.Project) model.TemplateCategory {
	text := strings.ToLower(p.Name + " " + p.Description)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(text, w) {
				return ck.category
			}
		}
	}
	return model.CategoryGeneral
}

func extractTags(p *model.Project, tasks []model.Task, done int) []string {
	seen := map[string]bool{}
	tags := []string{}
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, w := range strings.Fields(strings.ToLower(p.Name)) {
		if len(w) >= 3 {
			add(w)
		}
	}

	switch {
	case len(tasks) > 10:
		add("large-project")
	case len(tasks) > 5:
		add("medium-project")
	default:
		add("small-project")
	}

	ratio := float64(done) / float64(len(tasks))
	if ratio > 0.9 {
		add("high-success")
	} else if ratio > 0.7 {
		add("medium-success")
	}
	return tags
}

// RecordUsage stores a usage record and bumps the template counter.
func (s *Service) RecordUsage(ctx context.Context, u *model.TemplateUsage) error {
	_, err := s.store.RecordUsage(ctx, u)
	return err
}

// Stats summarizes the template library.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	templates, err := s.store.ListTemplates(ctx, "", "")
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalTemplates:       len(templates),
		CategoryDistribution: map[string]int{},
		MostUsedTemplates:    []TemplateRef{},
	}
	for _, c := range model.TemplateCategories {
		stats.CategoryDistribution[string(c)] = 0
	}
	for _, t := range templates {
		if t.IsSystemTemplate {
			stats.SystemTemplates++
		}
		if t.IsAIGenerated {
			stats.AIGeneratedTemplates++
		}
		stats.CategoryDistribution[string(t.Category)]++
	}
	stats.UserTemplates = stats.TotalTemplates - stats.SystemTemplates - stats.AIGeneratedTemplates

	// Templates come back ordered by usage, so the head of the list is the
	// most-used set.
	for _, t := range templates {
		if t.UsageCount == 0 || len(stats.MostUsedTemplates) == 5 {
			break
		}
		stats.MostUsedTemplates = append(stats.MostUsedTemplates, TemplateRef{
			ID:          t.ID,
			Name:        t.Name,
			Category:    string(t.Category),
			UsageCount:  t.UsageCount,
			SuccessRate: t.SuccessRate,
		})
	}
	return stats, nil
}

// BestPractices lists curated guidance, optionally per category.
func (s *Service) BestPractices(ctx context.Context, category model.TemplateCategory) ([]model.BestPractice, error) {
	return s.store.ListBestPractices(ctx, category)
}
