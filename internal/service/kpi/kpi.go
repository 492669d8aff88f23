// Package kpi computes the dashboard metrics from the full task population.
package kpi

import (
	"context"
	"math"
	"time"

	"opsboard/internal/cache"
	"opsboard/internal/model"
	"opsboard/pkg/metrics"

	"go.uber.org/zap"
)

// cacheTTL bounds how stale the dashboard may be. Mutations invalidate
// eagerly, the TTL is the backstop.
const cacheTTL = 30 * time.Second

type TaskStore interface {
	ListAll(ctx context.Context) ([]model.Task, error)
}

type ProjectStore interface {
	ListWithStats(ctx context.Context) ([]model.ProjectWithStats, error)
}

type ReviewStore interface {
	ListAll(ctx context.Context) ([]model.Review, error)
}

type DecisionStore interface {
	ListAll(ctx context.Context) ([]model.DecisionLog, error)
}

type SampleStore interface {
	Counts(ctx context.Context) (total, approved int, err error)
}

type BriefStore interface {
	TaskIDsWithBrief(ctx context.Context) (map[int]bool, error)
}

type DoDStore interface {
	TaskIDsWithDoD(ctx context.Context) (map[int]bool, error)
}

// StateCounts is the task state distribution.
type StateCounts struct {
	Backlog    int `json:"backlog"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Paused     int `json:"paused"`
	Canceled   int `json:"canceled"`
}

// Summary is the full dashboard payload.
type Summary struct {
	ReworkRate            float64 `json:"rework_rate"`
	ContextSwitchesPerDay float64 `json:"context_switches_per_day"`
	DoDAdherence          float64 `json:"dod_adherence"`
	SampleValidationRate  float64 `json:"sample_validation_rate"`
	BriefCompletionRate   float64 `json:"brief_completion_rate"`

	DoDDefinitionRate    float64 `json:"dod_definition_rate"`
	AvgProjectCompletion float64 `json:"avg_project_completion"`

	TotalProjects  int `json:"total_projects"`
	TotalTasks     int `json:"total_tasks"`
	TotalReviews   int `json:"total_reviews"`
	TotalDecisions int `json:"total_decisions"`

	TaskStates StateCounts `json:"task_states"`

	RecentTasks     int `json:"recent_tasks"`
	RecentReviews   int `json:"recent_reviews"`
	RecentDecisions int `json:"recent_decisions"`
}

type Service struct {
	tasks     TaskStore
	projects  ProjectStore
	reviews   ReviewStore
	decisions DecisionStore
	samples   SampleStore
	briefs    BriefStore
	dods      DoDStore

	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewService(
	tasks TaskStore,
	projects ProjectStore,
	reviews ReviewStore,
	decisions DecisionStore,
	samples SampleStore,
	briefs BriefStore,
	dods DoDStore,
	c *cache.Cache,
	logger *zap.Logger,
) *Service {
	return &Service{
		tasks:     tasks,
		projects:  projects,
		reviews:   reviews,
		decisions: decisions,
		samples:   samples,
		briefs:    briefs,
		dods:      dods,
		cache:     c,
		logger:    logger,
		now:       time.Now,
	}
}

// Summary returns the dashboard metrics, served from cache when fresh.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var cached Summary
	if err := s.cache.Get(ctx, cache.KeyKPISummary, &cached); err == nil {
		metrics.IncrementKPICacheLookup("hit")
		return &cached, nil
	}
	metrics.IncrementKPICacheLookup("miss")

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.KeyKPISummary, summary, cacheTTL)
	return summary, nil
}

func (s *Service) compute(ctx context.Context) (*Summary, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListWithStats(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	decisions, err := s.decisions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &Summary{
		TotalProjects:  len(projects),
		TotalTasks:     len(tasks),
		TotalReviews:   len(reviews),
		TotalDecisions: len(decisions),
	}

	// With no tasks the rates are all zero but the counts still report.
	if len(tasks) == 0 {
		summary.RecentReviews = len(reviews)
		summary.RecentDecisions = len(decisions)
		return summary, nil
	}

	sampleTotal, sampleApproved, err := s.samples.Counts(ctx)
	if err != nil {
		return nil, err
	}
	briefTaskIDs, err := s.briefs.TaskIDsWithBrief(ctx)
	if err != nil {
		return nil, err
	}
	dodTaskIDs, err := s.dods.TaskIDsWithDoD(ctx)
	if err != nil {
		return nil, err
	}

	// Rework rate over the population that could have been reworked.
	relevant, reworked := 0, 0
	for _, t := range tasks {
		if t.State == model.StateDone || t.State == model.StateInProgress {
			relevant++
			if t.ReworkCount > 0 {
				reworked++
			}
		}
	}
	if relevant > 0 {
		summary.ReworkRate = round3(float64(reworked) / float64(relevant))
	}

	// Context switches per day, each task weighted by its age. Tasks younger
	// than a day count as one day old.
	totalDays, totalSwitches := 0.0, 0
	for _, t := range tasks {
		days := int(now.Sub(t.CreatedAt).Hours() / 24)
		if days < 1 {
			days = 1
		}
		totalDays += float64(days)
		totalSwitches += t.ContextSwitchCount
	}
	if totalDays > 0 {
		summary.ContextSwitchesPerDay = round3(float64(totalSwitches) / totalDays)
	}

	dodChecked, withBrief, withDoD := 0, 0, 0
	for _, t := range tasks {
		if t.DoDChecked {
			dodChecked++
		}
		if briefTaskIDs[t.ID] {
			withBrief++
		}
		if dodTaskIDs[t.ID] {
			withDoD++
		}
	}
	summary.DoDAdherence = round3(float64(dodChecked) / float64(len(tasks)))
	summary.BriefCompletionRate = round3(float64(withBrief) / float64(len(tasks)))
	summary.DoDDefinitionRate = round3(float64(withDoD) / float64(len(tasks)))

	if sampleTotal > 0 {
		summary.SampleValidationRate = round3(float64(sampleApproved) / float64(sampleTotal))
	}

	// Average per-project completion over projects that have tasks.
	type projectProgress struct{ total, done int }
	byProject := map[int]*projectProgress{}
	for _, t := range tasks {
		p := byProject[t.ProjectID]
		if p == nil {
			p = &projectProgress{}
			byProject[t.ProjectID] = p
		}
		p.total++
		if t.State == model.StateDone {
			p.done++
		}
	}
	if len(byProject) > 0 {
		sum := 0.0
		for _, p := range byProject {
			sum += float64(p.done) / float64(p.total)
		}
		summary.AvgProjectCompletion = round3(sum / float64(len(byProject)))
	}

	for _, t := range tasks {
		switch t.State {
		case model.StateBacklog:
			summary.TaskStates.Backlog++
		case model.StateInProgress:
			summary.TaskStates.InProgress++
		case model.StateDone:
			summary.TaskStates.Done++
		case model.StatePaused:
			summary.TaskStates.Paused++
		case model.StateCanceled:
			summary.TaskStates.Canceled++
		}
		if withinDays(now, t.CreatedAt, 7) {
			summary.RecentTasks++
		}
	}
	for _, r := range reviews {
		if withinDays(now, r.CreatedAt, 7) {
			summary.RecentReviews++
		}
	}
	for _, d := range decisions {
		if withinDays(now, d.CreatedAt, 7) {
			summary.RecentDecisions++
		}
	}

	return summary, nil
}

// ProjectProductivity is the per-project slice of the productivity report.
type ProjectProductivity struct {
	ProjectID      int     `json:"project_id"`
	Name           string  `json:"name"`
	TotalTasks     int     `json:"total_tasks"`
	DoneTasks      int     `json:"done_tasks"`
	InProgress     int     `json:"in_progress"`
	OverdueTasks   int     `json:"overdue_tasks"`
	DoneLast7Days  int     `json:"done_last_7_days"`
	CompletionRate float64 `json:"completion_rate"`
}

// Productivity is the throughput view of the dashboard: work in flight,
// overdue work, and recent completions, overall and per project.
type Productivity struct {
	TasksInProgress int                   `json:"tasks_in_progress"`
	OverdueTasks    int                   `json:"overdue_tasks"`
	DoneLast7Days   int                   `json:"done_last_7_days"`
	Projects        []ProjectProductivity `json:"projects"`
}

// Productivity returns the throughput report, served from cache when fresh.
func (s *Service) Productivity(ctx context.Context) (*Productivity, error) {
	var cached Productivity
	if err := s.cache.Get(ctx, cache.KeyKPIProductivity, &cached); err == nil {
		metrics.IncrementKPICacheLookup("hit")
		return &cached, nil
	}
	metrics.IncrementKPICacheLookup("miss")

	report, err := s.computeProductivity(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.KeyKPIProductivity, report, cacheTTL)
	return report, nil
}

func (s *Service) computeProductivity(ctx context.Context) (*Productivity, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListWithStats(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &Productivity{Projects: make([]ProjectProductivity, 0, len(projects))}

	byProject := make(map[int]*ProjectProductivity, len(projects))
	for _, p := range projects {
		report.Projects = append(report.Projects, ProjectProductivity{
			ProjectID: p.ID,
			Name:      p.Name,
		})
		byProject[p.ID] = &report.Projects[len(report.Projects)-1]
	}

	for _, t := range tasks {
		pp := byProject[t.ProjectID]
		if pp == nil {
			continue
		}
		pp.TotalTasks++
		switch {
		case t.State == model.StateDone:
			pp.DoneTasks++
			// UpdatedAt is the completion time for DONE tasks.
			if withinDays(now, t.UpdatedAt, 7) {
				pp.DoneLast7Days++
				report.DoneLast7Days++
			}
		case t.State == model.StateInProgress:
			pp.InProgress++
			report.TasksInProgress++
		}
		if t.Overdue(now) {
			pp.OverdueTasks++
			report.OverdueTasks++
		}
	}

	for i := range report.Projects {
		pp := &report.Projects[i]
		if pp.TotalTasks > 0 {
			pp.CompletionRate = round3(float64(pp.DoneTasks) / float64(pp.TotalTasks))
		}
	}
	return report, nil
}

func withinDays(now, t time.Time, days int) bool {
	return int(now.Sub(t).Hours()/24) <= days
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
