package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"opsboard/internal/model"
	"opsboard/pkg/circuitbreaker"
)

func jsonResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/404":
			jsonResponse(w, http.StatusNotFound, `{"error":"Project not found"}`)
		case "/briefs":
			jsonResponse(w, http.StatusConflict, `{"error":"Brief already exists for this task (1:1)"}`)
		case "/tasks/7/state":
			jsonResponse(w, http.StatusBadRequest, `{"error":"WIP limit exceeded (limit=3)"}`)
		default:
			jsonResponse(w, http.StatusOK, `{}`)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.GetProject(ctx, 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Project not found") {
		t.Fatalf("server message lost: %v", err)
	}

	_, err = c.CreateBrief(ctx, BriefParams{TaskID: 1, Purpose: "p", SuccessCriteria: "s", Constraints: "c", Priority: "pr", Validation: "v"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	_, err = c.ChangeTaskState(ctx, 7, "IN_PROGRESS")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "WIP limit exceeded (limit=3)" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		t.Fatalf("4xx must not alias the sentinels: %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c := New(srv.URL)
	_, err := c.ListProjects(context.Background())
	if err == nil {
		t.Fatal("want transport error")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		t.Fatalf("transport error must not alias the sentinels: %v", err)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusInternalServerError, `{"error":"internal error"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithBreaker(circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		var apiErr *APIError
		if _, err := c.ListProjects(ctx); !errors.As(err, &apiErr) {
			t.Fatalf("call %d: want *APIError, got %v", i, err)
		}
	}
	if _, err := c.ListProjects(ctx); !errors.Is(err, circuitbreaker.ErrOpen) {
		t.Fatalf("breaker should be open, got %v", err)
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusNotFound, `{"error":"Task not found"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithBreaker(circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	}))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := c.GetTask(ctx, 1); !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: want ErrNotFound, got %v", i, err)
		}
	}
}

func TestTryCreateBriefCollapsesConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusConflict, `{"error":"Brief already exists for this task (1:1)"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	b, err := c.TryCreateBrief(context.Background(), BriefParams{TaskID: 1, Purpose: "p", SuccessCriteria: "s", Constraints: "c", Priority: "pr", Validation: "v"})
	if err != nil {
		t.Fatalf("conflict should collapse to nil, got %v", err)
	}
	if b != nil {
		t.Fatalf("want nil brief, got %+v", b)
	}
}

func TestLoginInstallsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collaboration/users/login":
			jsonResponse(w, http.StatusOK, `{"token":"tok-123","user":{"id":5,"username":"alice"}}`)
		case "/collaboration/invites":
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(w, http.StatusOK, `{"invites":[]}`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	u, err := c.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if u.ID != 5 {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := c.PendingInvites(context.Background()); err != nil {
		t.Fatalf("invites failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("token not sent: %q", gotAuth)
	}
}

func TestListTasksProjectFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		jsonResponse(w, http.StatusOK, `[]`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	projectID := 9
	if _, err := c.ListTasks(context.Background(), &projectID); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotQuery != "project_id=9" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestExportProjectMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exports/project/3/md" {
			jsonResponse(w, http.StatusNotFound, `{"error":"Project not found"}`)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="Site_Relaunch_2024-06-10.md"`)
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte("# Project: Site Relaunch\n"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	export, err := c.ExportProjectMarkdown(context.Background(), 3)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if export.Filename != "Site_Relaunch_2024-06-10.md" {
		t.Fatalf("filename not parsed: %q", export.Filename)
	}
	if !strings.HasPrefix(string(export.Content), "# Project:") {
		t.Fatalf("unexpected content %q", export.Content)
	}

	if _, err := c.ExportProjectMarkdown(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var (
		mu      sync.Mutex
		fetched []string
		done    = make(chan struct{}, 4)
	)
	d := &SearchDebouncer{
		minLen: 2,
		delay:  20 * time.Millisecond,
		fetch: func(ctx context.Context, query string) (any, error) {
			mu.Lock()
			fetched = append(fetched, query)
			mu.Unlock()
			return query, nil
		},
		onDone: func(query string, result any, err error) {
			done <- struct{}{}
		},
	}
	ctx := context.Background()

	// Rapid keystrokes; only the final query survives the debounce window.
	d.Query(ctx, "la")
	d.Query(ctx, "lan")
	d.Query(ctx, "landing")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced query never fired")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(fetched) != 1 || fetched[0] != "landing" {
		t.Fatalf("want single fetch of final query, got %v", fetched)
	}
}

func TestDebouncerMinLength(t *testing.T) {
	fired := make(chan string, 1)
	d := &SearchDebouncer{
		minLen: 2,
		delay:  10 * time.Millisecond,
		fetch: func(ctx context.Context, query string) (any, error) {
			return nil, nil
		},
		onDone: func(query string, result any, err error) {
			fired <- query
		},
	}
	ctx := context.Background()

	d.Query(ctx, "a")
	d.Query(ctx, "  x  ") // whitespace does not count toward the minimum

	select {
	case q := <-fired:
		t.Fatalf("short query %q should not fire", q)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerShortQueryCancelsPending(t *testing.T) {
	fired := make(chan string, 1)
	d := &SearchDebouncer{
		minLen: 2,
		delay:  30 * time.Millisecond,
		fetch: func(ctx context.Context, query string) (any, error) {
			return nil, nil
		},
		onDone: func(query string, result any, err error) {
			fired <- query
		},
	}
	ctx := context.Background()

	d.Query(ctx, "landing")
	d.Query(ctx, "l") // backspaced below the minimum

	select {
	case q := <-fired:
		t.Fatalf("pending query %q should have been canceled", q)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerCancel(t *testing.T) {
	fired := make(chan string, 1)
	d := &SearchDebouncer{
		minLen: 2,
		delay:  30 * time.Millisecond,
		fetch: func(ctx context.Context, query string) (any, error) {
			return nil, nil
		},
		onDone: func(query string, result any, err error) {
			fired <- query
		},
	}
	d.Query(context.Background(), "landing")
	d.Cancel()

	select {
	case q := <-fired:
		t.Fatalf("canceled query %q fired anyway", q)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewDebouncersUseSearchLimits(t *testing.T) {
	c := New("http://localhost")
	unified := c.NewSearchDebouncer(nil, 0, func(string, any, error) {})
	if unified.minLen != 2 {
		t.Fatalf("unified min length = %d, want 2", unified.minLen)
	}
	patterns := c.NewDecisionPatternDebouncer(0, func(string, any, error) {})
	if patterns.minLen != 3 {
		t.Fatalf("pattern min length = %d, want 3", patterns.minLen)
	}
	if unified.delay != DebounceDelay || patterns.delay != DebounceDelay {
		t.Fatal("debouncers must use the shared delay")
	}
}

func TestDecodeIntoModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusCreated, `{"id":12,"project_id":1,"title":"Build","state":"BACKLOG","priority":3}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	task, err := c.CreateTask(context.Background(), CreateTaskParams{ProjectID: 1, Title: "Build"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if task.ID != 12 || task.State != model.StateBacklog {
		t.Fatalf("unexpected task %+v", task)
	}
}
