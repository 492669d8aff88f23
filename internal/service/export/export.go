// Package export renders a project and everything attached to it as a
// markdown document.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"

	"go.uber.org/zap"
)

type Store interface {
	GetProject(ctx context.Context, id int) (*model.Project, error)
	ListTasks(ctx context.Context, projectID int) ([]model.Task, error)
	GetBrief(ctx context.Context, taskID int) (*model.Brief, error)
	GetDoD(ctx context.Context, taskID int) (*model.DoD, error)
	ListDecisions(ctx context.Context, taskID int) ([]model.DecisionLog, error)
	ListReviews(ctx context.Context, taskID int) ([]model.Review, error)
	ListSamples(ctx context.Context, taskID int) ([]model.Sample, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Filename builds the suggested download name: the project name with spaces
// collapsed to underscores, plus the export date.
func Filename(projectName string, date time.Time) string {
	name := strings.Join(strings.Fields(projectName), "_")
	if name == "" {
		name = "project"
	}
	return fmt.Sprintf("%s_%s.md", name, date.Format("2006-01-02"))
}

// ProjectName returns the project's display name, used for download naming.
func (s *Service) ProjectName(ctx context.Context, id int) (string, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// ProjectMarkdown renders the project export. Lookups that come back empty
// for a task simply omit that section.
func (s *Service) ProjectMarkdown(ctx context.Context, projectID int) (string, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	tasks, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Project: %s\n\n", project.Name)
	if project.Description != "" {
		b.WriteString(project.Description + "\n\n")
	}
	b.WriteString("## Tasks\n\n")

	if len(tasks) == 0 {
		b.WriteString("(no tasks)\n")
		return b.String(), nil
	}

	for _, t := range tasks {
		if err := s.writeTask(ctx, &b, &t); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (s *Service) writeTask(ctx context.Context, b *strings.Builder, t *model.Task) error {
	fmt.Fprintf(b, "### [%d] %s (%s)\n\n", t.ID, t.Title, t.State)
	fmt.Fprintf(b, "- Priority: P%d, Due: %s\n", t.Priority, formatDate(t.DueDate))
	fmt.Fprintf(b, "- DoD Checked: %t\n\n", t.DoDChecked)

	brief, err := s.store.GetBrief(ctx, t.ID)
	if err == nil {
		b.WriteString("#### 5SB\n\n")
		fmt.Fprintf(b, "- Purpose: %s\n", brief.Purpose)
		fmt.Fprintf(b, "- Success: %s\n", brief.SuccessCriteria)
		fmt.Fprintf(b, "- Constraints: %s\n", brief.Constraints)
		fmt.Fprintf(b, "- Priorities: %s\n", brief.Priority)
		fmt.Fprintf(b, "- Validation: %s\n\n", brief.Validation)
	} else if !isNotFound(err) {
		return err
	}

	dod, err := s.store.GetDoD(ctx, t.ID)
	if err == nil {
		b.WriteString("#### DoD\n\n")
		fmt.Fprintf(b, "- Formats: %s\n", dod.DeliverableFormats)
		fmt.Fprintf(b, "- Mandatory: %s\n", strings.Join(dod.MandatoryChecks, ", "))
		fmt.Fprintf(b, "- Quality: %s\n", dod.QualityBar)
		fmt.Fprintf(b, "- Verification: %s\n", dod.Verification)
		fmt.Fprintf(b, "- Deadline: %s, Version: %s\n\n", formatDate(dod.Deadline), dod.VersionTag)
	} else if !isNotFound(err) {
		return err
	}

	decisions, err := s.store.ListDecisions(ctx, t.ID)
	if err != nil {
		return err
	}
	if len(decisions) > 0 {
		b.WriteString("#### Decision Logs\n\n")
		for _, d := range decisions {
			fmt.Fprintf(b, "- %s: %s | Reason: %s | Risks: %s | D+7: %s\n",
				d.Date.Format("2006-01-02"), d.Problem, d.DecisionReason, d.AssumptionsRisks, d.DPlus7Review)
		}
		b.WriteString("\n")
	}

	reviews, err := s.store.ListReviews(ctx, t.ID)
	if err != nil {
		return err
	}
	if len(reviews) > 0 {
		b.WriteString("#### Reviews\n\n")
		for _, r := range reviews {
			fmt.Fprintf(b, "- %s: + %s / - %s / next: %s\n",
				r.ReviewType, r.Positives, r.Negatives, r.ChangesNext)
		}
		b.WriteString("\n")
	}

	samples, err := s.store.ListSamples(ctx, t.ID)
	if err != nil {
		return err
	}
	if len(samples) > 0 {
		b.WriteString("#### Samples\n\n")
		for _, sm := range samples {
			fmt.Fprintf(b, "- %d%% | approved=%t | notes=%s\n",
				int(sm.Proportion*100), sm.Approved, sm.Notes)
		}
		b.WriteString("\n")
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
