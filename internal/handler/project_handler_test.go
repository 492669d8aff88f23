package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"opsboard/internal/cache"
	"opsboard/internal/model"
	"opsboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeProjectStore struct {
	projects  map[int]*model.Project
	nextID    int
	insertErr error
	lastOwner int
	listCalls int
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: map[int]*model.Project{}, nextID: 1}
}

func (f *fakeProjectStore) Insert(ctx context.Context, p *model.Project) (int, error) {
	f.lastOwner = p.OwnerID
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	p.ID = f.nextID
	f.nextID++
	f.projects[p.ID] = p
	return p.ID, nil
}

func (f *fakeProjectStore) GetByID(ctx context.Context, id int) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	dup := *p
	return &dup, nil
}

func (f *fakeProjectStore) ListWithStats(ctx context.Context) ([]model.ProjectWithStats, error) {
	f.listCalls++
	out := make([]model.ProjectWithStats, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, model.ProjectWithStats{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

func (f *fakeProjectStore) Update(ctx context.Context, p *model.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

// memoryKV backs cache.Cache without a Redis server.
type memoryKV struct {
	data map[string][]byte
}

func (m *memoryKV) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := m.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *memoryKV) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func projectRouter(store *fakeProjectStore, c *cache.Cache, pub EventPublisher) *gin.Engine {
	h := NewProjectHandler(store, c, pub, zap.NewNop())
	r := gin.New()
	r.POST("/projects", h.Create)
	r.GET("/projects", h.List)
	r.GET("/projects/:id", h.Get)
	r.DELETE("/projects/:id", h.Delete)
	return r
}

func TestCreateProjectDefaultsOwner(t *testing.T) {
	store := newFakeProjectStore()
	router := projectRouter(store, nil, &capturingPublisher{})

	w := doJSON(t, router, http.MethodPost, "/projects", map[string]any{"name": "Launch"})
	assertStatus(t, w, http.StatusCreated)

	if store.lastOwner != defaultOwnerID {
		t.Fatalf("owner defaulted to %d, want %d", store.lastOwner, defaultOwnerID)
	}
	var created model.Project
	decodeBody(t, w, &created)
	if created.ID == 0 || created.Name != "Launch" {
		t.Fatalf("unexpected project %+v", created)
	}
}

func TestCreateProjectUnknownOwner(t *testing.T) {
	store := newFakeProjectStore()
	store.insertErr = repository.ErrInvalidReference
	router := projectRouter(store, nil, &capturingPublisher{})

	w := doJSON(t, router, http.MethodPost, "/projects", map[string]any{
		"name":     "Launch",
		"owner_id": 42,
	})
	assertStatus(t, w, http.StatusBadRequest)
	if msg := errorMessage(t, w); msg != "owner user does not exist" {
		t.Fatalf("error message = %q", msg)
	}
}

func TestListProjectsServedFromCache(t *testing.T) {
	store := newFakeProjectStore()
	c := cache.New(&memoryKV{data: map[string][]byte{}}, zap.NewNop())
	router := projectRouter(store, c, &capturingPublisher{})

	doJSON(t, router, http.MethodPost, "/projects", map[string]any{"name": "Launch"})

	w := doJSON(t, router, http.MethodGet, "/projects", nil)
	assertStatus(t, w, http.StatusOK)
	w = doJSON(t, router, http.MethodGet, "/projects", nil)
	assertStatus(t, w, http.StatusOK)

	if store.listCalls != 1 {
		t.Fatalf("second listing should hit the cache, store queried %d times", store.listCalls)
	}

	// A project write invalidates the listing.
	doJSON(t, router, http.MethodPost, "/projects", map[string]any{"name": "Second"})
	w = doJSON(t, router, http.MethodGet, "/projects", nil)
	assertStatus(t, w, http.StatusOK)
	var listed []model.ProjectWithStats
	decodeBody(t, w, &listed)
	if len(listed) != 2 || store.listCalls != 2 {
		t.Fatalf("post-write listing should refetch, got %d projects after %d store calls",
			len(listed), store.listCalls)
	}
}
