package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"mytasks/internal/service"
	"mytasks/internal/task"
	"mytasks/internal/testutil"
	"mytasks/internal/theme"
)

func newTestServer(t *testing.T, fs *testutil.FakeStorage) *Server {
	t.Helper()
	svc, err := service.New(context.Background(), fs)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return New(svc)
}

func do(s *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex_Empty(t *testing.T) {
	s := newTestServer(t, testutil.NewFakeStorage())

	rec := do(s, http.MethodGet, "/", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"My Tasks", "You have no tasks", `data-theme="light"`, "Create Task"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestIndex_Cards(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, `[{"title":"Buy <milk>","summary":""},{"title":"Report","summary":"Q3"}]`)
	fs.Put(theme.StorageKey, "dark")
	s := newTestServer(t, fs)

	body := do(s, http.MethodGet, "/", nil).Body.String()

	if !strings.Contains(body, "Buy &lt;milk&gt;") {
		t.Error("expected escaped title")
	}
	if !strings.Contains(body, "No summary was provided for this task") {
		t.Error("expected placeholder summary")
	}
	if !strings.Contains(body, `action="/tasks/1/delete"`) {
		t.Error("expected delete form for second card")
	}
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Error("expected dark theme")
	}
}

func TestCreateTask(t *testing.T) {
	fs := testutil.NewFakeStorage()
	s := newTestServer(t, fs)

	rec := do(s, http.MethodPost, "/tasks", url.Values{"title": {"Buy milk"}, "summary": {""}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if v, _ := fs.Value(task.StorageKey); v != `[{"title":"Buy milk","summary":""}]` {
		t.Errorf("unexpected stored value %q", v)
	}
}

func TestCreateTask_MissingTitle(t *testing.T) {
	fs := testutil.NewFakeStorage()
	s := newTestServer(t, fs)

	rec := do(s, http.MethodPost, "/tasks", url.Values{"title": {"  "}, "summary": {"x"}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if fs.Sets != 0 {
		t.Errorf("expected no writes, got %d", fs.Sets)
	}
}

func TestCreateTask_StorageFailure(t *testing.T) {
	fs := testutil.NewFakeStorage()
	s := newTestServer(t, fs)
	fs.SetErr = errors.New("disk full")

	rec := do(s, http.MethodPost, "/tasks", url.Values{"title": {"A"}})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk full") {
		t.Error("expected internal error to stay out of the response")
	}
}

func TestDeleteTask(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, `[{"title":"A","summary":""},{"title":"B","summary":""},{"title":"C","summary":""}]`)
	s := newTestServer(t, fs)

	rec := do(s, http.MethodPost, "/tasks/1/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if v, _ := fs.Value(task.StorageKey); v != `[{"title":"A","summary":""},{"title":"C","summary":""}]` {
		t.Errorf("unexpected stored value %q", v)
	}

	tests := []struct {
		target string
		code   int
	}{
		{"/tasks/5/delete", http.StatusNotFound},
		{"/tasks/-1/delete", http.StatusNotFound},
		{"/tasks/abc/delete", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := do(s, http.MethodPost, tt.target, url.Values{}); rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.code, rec.Code)
		}
	}
}

// Another process writing the same storage must not lose its tasks when
// the page creates or deletes one.
func TestWrites_KeepOtherProcessChanges(t *testing.T) {
	ctx := context.Background()
	fs := testutil.NewFakeStorage()
	s := newTestServer(t, fs)
	other, err := service.New(ctx, fs)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := other.CreateTask(ctx, "from cli", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec := do(s, http.MethodPost, "/tasks", url.Values{"title": {"from web"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	want := `[{"title":"from cli","summary":""},{"title":"from web","summary":""}]`
	if v, _ := fs.Value(task.StorageKey); v != want {
		t.Fatalf("expected %q, got %q", want, v)
	}

	if err := other.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := other.CreateTask(ctx, "later", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec := do(s, http.MethodPost, "/tasks/0/delete", url.Values{}); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	want = `[{"title":"from web","summary":""},{"title":"later","summary":""}]`
	if v, _ := fs.Value(task.StorageKey); v != want {
		t.Errorf("expected %q, got %q", want, v)
	}

	body := do(s, http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, "later") {
		t.Error("expected page to show tasks written elsewhere")
	}
}

func TestSetTheme(t *testing.T) {
	fs := testutil.NewFakeStorage()
	s := newTestServer(t, fs)

	// No value flips the current theme.
	if rec := do(s, http.MethodPost, "/theme", url.Values{}); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if v, _ := fs.Value(theme.StorageKey); v != "dark" {
		t.Errorf("expected dark, got %q", v)
	}

	do(s, http.MethodPost, "/theme", url.Values{"theme": {"dark"}})
	if v, _ := fs.Value(theme.StorageKey); v != "dark" {
		t.Errorf("expected explicit dark to stick, got %q", v)
	}

	if rec := do(s, http.MethodPost, "/theme", url.Values{"theme": {"purple"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAPITasks(t *testing.T) {
	fs := testutil.NewFakeStorage()
	s := newTestServer(t, fs)

	rec := do(s, http.MethodGet, "/api/tasks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %q", rec.Body.String())
	}

	do(s, http.MethodPost, "/tasks", url.Values{"title": {"A"}, "summary": {"s"}})

	var got []task.Task
	if err := json.Unmarshal(do(s, http.MethodGet, "/api/tasks", nil).Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0] != (task.Task{Title: "A", Summary: "s"}) {
		t.Errorf("unexpected tasks %v", got)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := newTestServer(t, testutil.NewFakeStorage())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.ListenAndServe(ctx, "127.0.0.1:0"); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestRateLimit(t *testing.T) {
	svc, err := service.New(context.Background(), testutil.NewFakeStorage())
	if err != nil {
		t.Fatal(err)
	}
	// 10 per minute allows a burst of one write.
	s := New(svc, WithRateLimit(10))

	if rec := do(s, http.MethodPost, "/tasks", url.Values{"title": {"A"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected first write to pass, got %d", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/tasks", url.Values{"title": {"B"}}); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/tasks", nil); rec.Code != http.StatusOK {
		t.Errorf("expected reads to pass, got %d", rec.Code)
	}
}

func TestRateLimit_IgnoresForwardedFor(t *testing.T) {
	svc, err := service.New(context.Background(), testutil.NewFakeStorage())
	if err != nil {
		t.Fatal(err)
	}
	s := New(svc, WithRateLimit(10))

	limited := 0
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("title=A"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 4 {
		t.Errorf("expected 4 limited writes, got %d", limited)
	}
}

func TestRateLimiter_ConcurrentFirstRequests(t *testing.T) {
	rl := newRateLimiter(10)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.allow("192.0.2.1") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := allowed.Load(); n != 1 {
		t.Errorf("expected one client bucket to allow 1 write, got %d", n)
	}
}
