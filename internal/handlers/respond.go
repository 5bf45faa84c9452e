package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/my-todo-api/internal/models"
)

const maxBodyBytes = 1 << 20

// Store is the persistence surface the handlers need. Both db.Store and
// db.MemoryStore satisfy it.
type Store interface {
	Ping(ctx context.Context) error

	ListPublishedPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, title string, content *string) (*models.Post, error)

	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, title string) (*models.Task, error)
	SetTaskCompleted(ctx context.Context, id int64, completed bool) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func normalizeTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	return title, title != ""
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
