// Package search implements keyword search across every content type, plus
// project similarity and decision pattern lookups.
package search

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"opsboard/internal/model"
	"opsboard/pkg/metrics"

	"go.uber.org/zap"
)

const (
	// MinQueryLength is the floor for unified search queries.
	MinQueryLength = 2
	// MinPatternQueryLength is the floor for decision pattern queries.
	MinPatternQueryLength = 3

	defaultLimit     = 50
	similarLimit     = 5
	patternLimit     = 10
	maxKeywords      = 10
	minKeywordLength = 3
)

type Store interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListBriefs(ctx context.Context) ([]model.Brief, error)
	ListDoDs(ctx context.Context) ([]model.DoD, error)
	ListDecisions(ctx context.Context) ([]model.DecisionLog, error)
	ListReviews(ctx context.Context) ([]model.Review, error)
	GetProject(ctx context.Context, id int) (*model.Project, error)
}

// Result is one search hit.
type Result struct {
	ID             int     `json:"id"`
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	ProjectID      *int    `json:"project_id,omitempty"`
	TaskID         *int    `json:"task_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
	RelevanceScore float64 `json:"relevance_score"`
}

// UnifiedResponse groups hits by content type.
type UnifiedResponse struct {
	Results      map[string][]Result `json:"results"`
	Query        string              `json:"query,omitempty"`
	TotalResults int                 `json:"total_results"`
}

// SimilarProject is a similarity hit against another project.
type SimilarProject struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
	CreatedAt       string  `json:"created_at"`
}

// DecisionPattern is a past decision matched against a problem description.
type DecisionPattern struct {
	ID             int     `json:"id"`
	Problem        string  `json:"problem"`
	Options        string  `json:"options"`
	Decision       string  `json:"decision"`
	Risks          string  `json:"risks"`
	DPlus7Review   string  `json:"d_plus_7_review,omitempty"`
	HasReview      bool    `json:"has_review"`
	TaskID         int     `json:"task_id"`
	CreatedAt      string  `json:"created_at"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ContentSummary counts every searchable record.
type ContentSummary struct {
	Projects  int `json:"projects"`
	Tasks     int `json:"tasks"`
	Briefs    int `json:"briefs"`
	DoD       int `json:"dod"`
	Decisions int `json:"decisions"`
	Reviews   int `json:"reviews"`
	Total     int `json:"total"`
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// AllContentTypes lists the searchable content types in response order.
var AllContentTypes = []string{"projects", "tasks", "briefs", "dod", "decisions", "reviews"}

// Unified searches the requested content types. Queries shorter than
// MinQueryLength return an empty result set rather than an error.
func (s *Service) Unified(ctx context.Context, query string, contentTypes []string, limit int) (*UnifiedResponse, error) {
	metrics.IncrementSearchQueries("unified")
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < MinQueryLength {
		return &UnifiedResponse{Results: map[string][]Result{}}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(contentTypes) == 0 {
		contentTypes = AllContentTypes
	}

	results := map[string][]Result{}
	total := 0
	for _, ct := range contentTypes {
		var (
			hits []Result
			err  error
		)
		switch ct {
		case "projects":
			hits, err = s.searchProjects(ctx, query, limit)
		case "tasks":
			hits, err = s.searchTasks(ctx, query, limit)
		case "briefs":
			hits, err = s.searchBriefs(ctx, query, limit)
		case "dod":
			hits, err = s.searchDoDs(ctx, query, limit)
		case "decisions":
			hits, err = s.searchDecisions(ctx, query, limit)
		case "reviews":
			hits, err = s.searchReviews(ctx, query, limit)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		results[ct] = hits
		total += len(hits)
	}
	return &UnifiedResponse{Results: results, Query: query, TotalResults: total}, nil
}

func (s *Service) searchProjects(ctx context.Context, query string, limit int) ([]Result, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	hits := []Result{}
	for _, p := range projects {
		if len(hits) >= limit {
			break
		}
		if !containsAny(query, p.Name, p.Description) {
			continue
		}
		hits = append(hits, Result{
			ID:             p.ID,
			Type:           "project",
			Title:          p.Name,
			Content:        p.Description,
			CreatedAt:      p.CreatedAt.Format(time.RFC3339),
			RelevanceScore: Relevance(query, []string{p.Name, p.Description}),
		})
	}
	return hits, nil
}

func (s *Service) searchTasks(ctx context.Context, query string, limit int) ([]Result, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	hits := []Result{}
	for _, t := range tasks {
		if len(hits) >= limit {
			break
		}
		if !containsAny(query, t.Title) {
			continue
		}
		projectID := t.ProjectID
		hits = append(hits, Result{
			ID:             t.ID,
			Type:           "task",
			Title:          t.Title,
			Content:        fmt.Sprintf("Priority: P%d, State: %s", t.Priority, t.State),
			ProjectID:      &projectID,
			CreatedAt:      t.CreatedAt.Format(time.RFC3339),
			RelevanceScore: Relevance(query, []string{t.Title}),
		})
	}
	return hits, nil
}

func (s *Service) searchBriefs(ctx context.Context, query string, limit int) ([]Result, error) {
	briefs, err := s.store.ListBriefs(ctx)
	if err != nil {
		return nil, err
	}
	hits := []Result{}
	for _, b := range briefs {
		if len(hits) >= limit {
			break
		}
		fields := []string{b.Purpose, b.SuccessCriteria, b.Constraints, b.Priority, b.Validation}
		if !containsAny(query, fields...) {
			continue
		}
		taskID := b.TaskID
		hits = append(hits, Result{
			ID:             b.ID,
			Type:           "brief",
			Title:          fmt.Sprintf("5SB - Task #%d", b.TaskID),
			Content:        truncate("Purpose: "+b.Purpose, 110),
			TaskID:         &taskID,
			CreatedAt:      b.CreatedAt.Format(time.RFC3339),
			RelevanceScore: Relevance(query, fields),
		})
	}
	return hits, nil
}

func (s *Service) searchDoDs(ctx context.Context, query string, limit int) ([]Result, error) {
	dods, err := s.store.ListDoDs(ctx)
	if err != nil {
		return nil, err
	}
	hits := []Result{}
	for _, d := range dods {
		if len(hits) >= limit {
			break
		}
		fields := []string{d.DeliverableFormats, d.QualityBar, d.Verification}
		if !containsAny(query, fields...) {
			continue
		}
		taskID := d.TaskID
		hits = append(hits, Result{
			ID:             d.ID,
			Type:           "dod",
			Title:          fmt.Sprintf("DoD - Task #%d", d.TaskID),
			Content:        truncate("Quality bar: "+d.QualityBar, 110),
			TaskID:         &taskID,
			CreatedAt:      d.CreatedAt.Format(time.RFC3339),
			RelevanceScore: Relevance(query, fields),
		})
	}
	return hits, nil
}

func (s *Service) searchDecisions(ctx context.Context, query string, limit int) ([]Result, error) {
	decisions, err := s.store.ListDecisions(ctx)
	if err != nil {
		return nil, err
	}
	hits := []Result{}
	for _, d := range decisions {
		if len(hits) >= limit {
			break
		}
		fields := []string{d.Problem, d.Options, d.DecisionReason, d.AssumptionsRisks}
		if !containsAny(query, fields...) {
			continue
		}
		taskID := d.TaskID
		hits = append(hits, Result{
			ID:             d.ID,
			Type:           "decision",
			Title:          truncate("Decision - "+d.Problem, 60),
			Content:        truncate("Decided: "+d.DecisionReason, 110),
			TaskID:         &taskID,
			CreatedAt:      d.CreatedAt.Format(time.RFC3339),
			RelevanceScore: Relevance(query, fields),
		})
	}
	return hits, nil
}

func (s *Service) searchReviews(ctx context.Context, query string, limit int) ([]Result, error) {
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	hits := []Result{}
	for _, r := range reviews {
		if len(hits) >= limit {
			break
		}
		fields := []string{r.Positives, r.Negatives, r.ChangesNext}
		if !containsAny(query, fields...) {
			continue
		}
		taskID := r.TaskID
		hits = append(hits, Result{
			ID:             r.ID,
			Type:           "review",
			Title:          fmt.Sprintf("%s review - Task #%d", r.ReviewType, r.TaskID),
			Content:        truncate("Positives: "+r.Positives, 110),
			TaskID:         &taskID,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
			RelevanceScore: Relevance(query, fields),
		})
	}
	return hits, nil
}

// SimilarProjects ranks other projects by keyword overlap with the given one.
func (s *Service) SimilarProjects(ctx context.Context, projectID, limit int) ([]SimilarProject, error) {
	metrics.IncrementSearchQueries("similar_projects")
	if limit <= 0 {
		limit = similarLimit
	}
	current, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	keywords := ExtractKeywords([]string{current.Name, current.Description})
	if len(keywords) == 0 {
		return []SimilarProject{}, nil
	}

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	similar := []SimilarProject{}
	for _, p := range projects {
		if p.ID == projectID {
			continue
		}
		score := Similarity(keywords, []string{p.Name, p.Description})
		if score <= 0 {
			continue
		}
		similar = append(similar, SimilarProject{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			SimilarityScore: score,
			CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].SimilarityScore > similar[j].SimilarityScore
	})
	if len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}

// DecisionPatterns finds past decisions whose problem or options match the
// query, ranked by relevance. Queries shorter than MinPatternQueryLength
// return nothing.
func (s *Service) DecisionPatterns(ctx context.Context, query string, limit int) ([]DecisionPattern, error) {
	metrics.IncrementSearchQueries("decision_patterns")
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < MinPatternQueryLength {
		return []DecisionPattern{}, nil
	}
	if limit <= 0 {
		limit = patternLimit
	}

	decisions, err := s.store.ListDecisions(ctx)
	if err != nil {
		return nil, err
	}
	patterns := []DecisionPattern{}
	for _, d := range decisions {
		if len(patterns) >= limit {
			break
		}
		if !containsAny(query, d.Problem, d.Options) {
			continue
		}
		patterns = append(patterns, DecisionPattern{
			ID:             d.ID,
			Problem:        d.Problem,
			Options:        d.Options,
			Decision:       d.DecisionReason,
			Risks:          d.AssumptionsRisks,
			DPlus7Review:   d.DPlus7Review,
			HasReview:      d.Reviewed(),
			TaskID:         d.TaskID,
			CreatedAt:      d.CreatedAt.Format(time.RFC3339),
			RelevanceScore: Relevance(query, []string{d.Problem, d.Options}),
		})
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].RelevanceScore > patterns[j].RelevanceScore
	})
	return patterns, nil
}

// Suggestions is the per-project advice bundle: similar past projects plus
// decision patterns matched against the first words of the project name.
type Suggestions struct {
	Project         ProjectRef        `json:"project"`
	SimilarProjects []SimilarProject  `json:"similar_projects"`
	Decisions       []DecisionPattern `json:"related_decisions"`
	Recommendations []string          `json:"recommendations"`
}

type ProjectRef struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var recommendations = []string{
	"Review the success patterns of similar past projects",
	"Study related decision records to spot risks early",
	"Define the 5SB and DoD up front to raise the odds of success",
}

func (s *Service) ProjectSuggestions(ctx context.Context, projectID int) (*Suggestions, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	similar, err := s.SimilarProjects(ctx, projectID, similarLimit)
	if err != nil {
		return nil, err
	}
	words := strings.Fields(project.Name)
	if len(words) > 3 {
		words = words[:3]
	}
	patterns, err := s.DecisionPatterns(ctx, strings.Join(words, " "), similarLimit)
	if err != nil {
		return nil, err
	}
	return &Suggestions{
		Project:         ProjectRef{ID: project.ID, Name: project.Name, Description: project.Description},
		SimilarProjects: similar,
		Decisions:       patterns,
		Recommendations: recommendations,
	}, nil
}

// Summary counts every searchable record.
func (s *Service) Summary(ctx context.Context) (*ContentSummary, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	briefs, err := s.store.ListBriefs(ctx)
	if err != nil {
		return nil, err
	}
	dods, err := s.store.ListDoDs(ctx)
	if err != nil {
		return nil, err
	}
	decisions, err := s.store.ListDecisions(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	summary := &ContentSummary{
		Projects:  len(projects),
		Tasks:     len(tasks),
		Briefs:    len(briefs),
		DoD:       len(dods),
		Decisions: len(decisions),
		Reviews:   len(reviews),
	}
	summary.Total = summary.Projects + summary.Tasks + summary.Briefs +
		summary.DoD + summary.Decisions + summary.Reviews
	return summary, nil
}

func containsAny(query string, texts ...string) bool {
	for _, t := range texts {
		if t != "" && strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

// Relevance scores a query against a set of text fields. Exact phrase
// occurrence weighs ten points, each matched word one; per-field scores are
// normalized by field length and averaged.
func Relevance(query string, texts []string) float64 {
	if query == "" || len(texts) == 0 {
		return 0
	}
	words := strings.Fields(strings.ToLower(query))
	total := 0.0
	for _, text := range texts {
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		score := 0.0
		if strings.Contains(lower, query) {
			score += 10.0
		}
		for _, w := range words {
			if strings.Contains(lower, w) {
				score += 1.0
			}
		}
		if n := len([]rune(lower)); n > 0 {
			score = score / float64(n) * 100
		}
		total += score
	}
	return round2(total / float64(len(texts)))
}

// ExtractKeywords pulls up to ten deduplicated words of three or more
// characters, keeping first-seen order.
func ExtractKeywords(texts []string) []string {
	joined := strings.ToLower(strings.Join(texts, " "))
	seen := map[string]bool{}
	keywords := []string{}
	for _, w := range wordPattern.FindAllString(joined, -1) {
		if len([]rune(w)) < minKeywordLength || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// Similarity is the percentage of keywords found in the combined texts.
func Similarity(keywords []string, texts []string) float64 {
	if len(keywords) == 0 || len(texts) == 0 {
		return 0
	}
	joined := strings.ToLower(strings.Join(texts, " "))
	matches := 0
	for _, k := range keywords {
		if strings.Contains(joined, k) {
			matches++
		}
	}
	return round2(float64(matches) / float64(len(keywords)) * 100)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
