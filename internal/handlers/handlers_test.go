package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BorisDmv/my-todo-api/internal/db"
	"github.com/BorisDmv/my-todo-api/internal/models"
)

var errBackend = errors.New("connection refused")

// failingStore fails every operation with a backend error.
type failingStore struct{}

func (failingStore) Ping(context.Context) error { return errBackend }
func (failingStore) ListPublishedPosts(context.Context) ([]models.Post, error) {
	return nil, errBackend
}
func (failingStore) CreatePost(context.Context, string, *string) (*models.Post, error) {
	return nil, errBackend
}
func (failingStore) ListTasks(context.Context) ([]models.Task, error) { return nil, errBackend }
func (failingStore) CreateTask(context.Context, string) (*models.Task, error) {
	return nil, errBackend
}
func (failingStore) SetTaskCompleted(context.Context, int64, bool) (*models.Task, error) {
	return nil, errBackend
}
func (failingStore) DeleteTask(context.Context, int64) error { return errBackend }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(store Store) http.Handler {
	return NewRouter(store, discardLogger(), RouterOptions{
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) {
	t.Helper()

	if rec.Code != wantCode {
		t.Fatalf("expected status %d, got %d (%s)", wantCode, rec.Code, rec.Body.String())
	}
	body := decode[map[string]string](t, rec)
	if body["error"] == "" {
		t.Fatalf("expected error message in body, got %q", rec.Body.String())
	}
}

func mustCreateTask(t *testing.T, h http.Handler, title string) models.Task {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/todos", `{"title":"`+title+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	return decode[models.Task](t, rec)
}

func listTasks(t *testing.T, h http.Handler) []models.Task {
	t.Helper()

	rec := do(t, h, http.MethodGet, "/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list tasks: expected 200, got %d", rec.Code)
	}
	return decode[[]models.Task](t, rec)
}

func TestTodos_BuyMilkScenario(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())

	created := mustCreateTask(t, h, "Buy milk")
	if created.ID != 1 || created.Title != "Buy milk" || created.Completed || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created task: %+v", created)
	}

	rec := do(t, h, http.MethodPut, "/todos/1", `{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if updated := decode[models.Task](t, rec); !updated.Completed {
		t.Fatalf("expected completed=true, got %+v", updated)
	}

	rec = do(t, h, http.MethodDelete, "/todos/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("delete: expected empty body, got %q", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/todos", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", rec.Body.String())
	}
}

func TestTodos_JSONFieldNames(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())
	rec := do(t, h, http.MethodPost, "/todos", `{"title":"shape"}`)

	body := decode[map[string]any](t, rec)
	for _, key := range []string{"id", "title", "completed", "createdAt"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("expected key %q in %v", key, body)
		}
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
}

func TestTodos_CreateRejectsMissingTitle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
	}{
		{name: "empty_object", body: `{}`},
		{name: "empty_title", body: `{"title":""}`},
		{name: "whitespace_title", body: `{"title":"   "}`},
		{name: "no_body", body: ""},
		{name: "malformed_json", body: `{"title":`},
		{name: "wrong_type", body: `{"title":5}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newTestRouter(db.NewMemoryStore())
			rec := do(t, h, http.MethodPost, "/todos", tc.body)
			assertError(t, rec, http.StatusBadRequest)

			if tasks := listTasks(t, h); len(tasks) != 0 {
				t.Fatalf("expected nothing persisted, got %+v", tasks)
			}
		})
	}
}

func TestTodos_ListNewestFirst(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())
	const n = 5
	for i := 0; i < n; i++ {
		mustCreateTask(t, h, "task")
	}

	tasks := listTasks(t, h)
	if len(tasks) != n {
		t.Fatalf("expected %d tasks, got %d", n, len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		prev, cur := tasks[i-1], tasks[i]
		if prev.CreatedAt.Before(cur.CreatedAt) {
			t.Fatalf("tasks not ordered by createdAt desc: %v before %v", prev.CreatedAt, cur.CreatedAt)
		}
		if prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID < cur.ID {
			t.Fatalf("equal timestamps not tie-broken by id desc")
		}
	}
}

func TestTodos_CreateThenListRoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())
	created := mustCreateTask(t, h, "round trip")

	tasks := listTasks(t, h)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != created.ID || got.Title != created.Title || got.Completed != created.Completed || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("listed task %+v differs from created %+v", got, created)
	}
}

func TestTodos_ToggleTwiceRestores(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())
	task := mustCreateTask(t, h, "toggle")

	for _, want := range []bool{true, false} {
		body := `{"completed":false}`
		if want {
			body = `{"completed":true}`
		}
		rec := do(t, h, http.MethodPut, "/todos/1", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decode[models.Task](t, rec); got.Completed != want {
			t.Fatalf("expected completed=%v, got %v", want, got.Completed)
		}
	}

	if tasks := listTasks(t, h); tasks[0].Completed != task.Completed {
		t.Fatalf("expected initial completed value %v, got %v", task.Completed, tasks[0].Completed)
	}
}

func TestTodos_UpdateAndDeleteErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{name: "update_missing_id", method: http.MethodPut, path: "/todos/99", body: `{"completed":true}`, wantCode: http.StatusNotFound},
		{name: "update_non_numeric_id", method: http.MethodPut, path: "/todos/abc", body: `{"completed":true}`, wantCode: http.StatusBadRequest},
		{name: "update_zero_id", method: http.MethodPut, path: "/todos/0", body: `{"completed":true}`, wantCode: http.StatusBadRequest},
		{name: "update_without_completed", method: http.MethodPut, path: "/todos/1", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "update_malformed_json", method: http.MethodPut, path: "/todos/1", body: `{"completed":`, wantCode: http.StatusBadRequest},
		{name: "delete_missing_id", method: http.MethodDelete, path: "/todos/99", wantCode: http.StatusNotFound},
		{name: "delete_non_numeric_id", method: http.MethodDelete, path: "/todos/abc", wantCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newTestRouter(db.NewMemoryStore())
			mustCreateTask(t, h, "existing")

			rec := do(t, h, tc.method, tc.path, tc.body)
			assertError(t, rec, tc.wantCode)

			tasks := listTasks(t, h)
			if len(tasks) != 1 || tasks[0].Completed {
				t.Fatalf("expected existing task untouched, got %+v", tasks)
			}
		})
	}
}

func TestStoreFailuresBecomeGeneric500(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "list_posts", method: http.MethodGet, path: "/api/posts"},
		{name: "create_post", method: http.MethodPost, path: "/api/posts", body: `{"title":"t"}`},
		{name: "list_tasks", method: http.MethodGet, path: "/todos"},
		{name: "create_task", method: http.MethodPost, path: "/todos", body: `{"title":"t"}`},
		{name: "update_task", method: http.MethodPut, path: "/todos/1", body: `{"completed":true}`},
		{name: "delete_task", method: http.MethodDelete, path: "/todos/1"},
	}

	h := newTestRouter(failingStore{})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, h, tc.method, tc.path, tc.body)
			assertError(t, rec, http.StatusInternalServerError)
			if strings.Contains(rec.Body.String(), errBackend.Error()) {
				t.Fatalf("store error leaked to client: %q", rec.Body.String())
			}
		})
	}
}

func TestPosts_CreateAndListPublished(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())

	rec := do(t, h, http.MethodPost, "/api/posts", `{"title":"Hello","content":"World"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	first := decode[models.Post](t, rec)
	if !first.Published || first.Content == nil || *first.Content != "World" {
		t.Fatalf("unexpected created post: %+v", first)
	}

	rec = do(t, h, http.MethodPost, "/api/posts", `{"title":"No content"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	raw := decode[map[string]any](t, rec)
	if v, ok := raw["content"]; !ok || v != nil {
		t.Fatalf("expected content to be null, got %v", raw["content"])
	}

	rec = do(t, h, http.MethodGet, "/api/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	posts := decode[[]models.Post](t, rec)
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Title != "No content" {
		t.Fatalf("expected newest post first, got %q", posts[0].Title)
	}
	for _, p := range posts {
		if !p.Published {
			t.Fatalf("unpublished post listed: %+v", p)
		}
	}
}

func TestPosts_CreateIgnoresClientPublishedFlag(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())
	rec := do(t, h, http.MethodPost, "/api/posts", `{"title":"draft?","published":false}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if post := decode[models.Post](t, rec); !post.Published {
		t.Fatalf("expected post to be published regardless of input")
	}
}

func TestPosts_CreateRejectsMissingTitle(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())
	for _, body := range []string{`{}`, `{"title":""}`, `{"content":"only content"}`, `{"title":" "}`} {
		rec := do(t, h, http.MethodPost, "/api/posts", body)
		assertError(t, rec, http.StatusBadRequest)
	}

	rec := do(t, h, http.MethodGet, "/api/posts", "")
	if posts := decode[[]models.Post](t, rec); len(posts) != 0 {
		t.Fatalf("expected nothing persisted, got %+v", posts)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	if rec := do(t, newTestRouter(db.NewMemoryStore()), http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, newTestRouter(failingStore{}), http.MethodGet, "/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCORS_AllowList(t *testing.T) {
	t.Parallel()

	h := newTestRouter(db.NewMemoryStore())

	testCases := []struct {
		origin    string
		wantAllow string
	}{
		{origin: "http://localhost:5173", wantAllow: "http://localhost:5173"},
		{origin: "https://evil.example", wantAllow: ""},
	}
	for _, tc := range testCases {
		req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
		req.Header.Set("Origin", tc.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllow {
			t.Fatalf("origin %q: expected allow-origin %q, got %q", tc.origin, tc.wantAllow, got)
		}
	}
}

func TestCORS_EmptyAllowListGrantsNothing(t *testing.T) {
	t.Parallel()

	h := NewRouter(db.NewMemoryStore(), discardLogger(), RouterOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
}
