package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"
	"opsboard/internal/service/export"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeExportStore struct {
	project *model.Project
	tasks   []model.Task
}

func (f *fakeExportStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	if f.project != nil && f.project.ID == id {
		return f.project, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeExportStore) ListTasks(ctx context.Context, projectID int) ([]model.Task, error) {
	return f.tasks, nil
}

func (f *fakeExportStore) GetBrief(ctx context.Context, taskID int) (*model.Brief, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeExportStore) GetDoD(ctx context.Context, taskID int) (*model.DoD, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeExportStore) ListDecisions(ctx context.Context, taskID int) ([]model.DecisionLog, error) {
	return nil, nil
}

func (f *fakeExportStore) ListReviews(ctx context.Context, taskID int) ([]model.Review, error) {
	return nil, nil
}

func (f *fakeExportStore) ListSamples(ctx context.Context, taskID int) ([]model.Sample, error) {
	return nil, nil
}

func exportRouter(store *fakeExportStore) *gin.Engine {
	h := NewExportHandler(export.NewService(store, zap.NewNop()), zap.NewNop())
	h.now = func() time.Time { return time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC) }
	r := gin.New()
	r.GET("/export/project/:project_id/markdown", h.ProjectMarkdown)
	return r
}

func TestExportProjectMarkdown(t *testing.T) {
	store := &fakeExportStore{
		project: &model.Project{ID: 1, Name: "Launch Plan"},
		tasks:   []model.Task{{ID: 10, ProjectID: 1, Title: "Kickoff", State: model.StateDone}},
	}
	r := exportRouter(store)

	w := doJSON(t, r, http.MethodGet, "/export/project/1/markdown", nil)
	assertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("unexpected content type %q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "attachment") || !strings.Contains(cd, "Launch_Plan_2024-06-10.md") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.Contains(w.Body.String(), "# Project: Launch Plan") {
		t.Fatalf("markdown body missing header: %s", w.Body.String())
	}
}

func TestExportUnknownProject(t *testing.T) {
	r := exportRouter(&fakeExportStore{})
	w := doJSON(t, r, http.MethodGet, "/export/project/9/markdown", nil)
	assertStatus(t, w, http.StatusNotFound)
}
