package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/BorisDmv/my-todo-api/internal/db"
	"github.com/BorisDmv/my-todo-api/internal/models"
)

type TodosHandler struct {
	store Store
	log   *slog.Logger
}

func NewTodosHandler(store Store, log *slog.Logger) *TodosHandler {
	return &TodosHandler{store: store, log: log}
}

func (h *TodosHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		h.log.Error("list tasks failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load todos")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *TodosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	title, ok := normalizeTitle(req.Title)
	if !ok {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := h.store.CreateTask(r.Context(), title)
	if err != nil {
		h.log.Error("create task failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update sets the completion flag of a single task.
func (h *TodosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req models.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Completed == nil {
		respondError(w, http.StatusBadRequest, "completed is required")
		return
	}

	updated, err := h.store.SetTaskCompleted(r.Context(), id, *req.Completed)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "todo not found")
			return
		}
		h.log.Error("update task failed", "request_id", middleware.GetReqID(r.Context()), "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update todo")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *TodosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "todo not found")
			return
		}
		h.log.Error("delete task failed", "request_id", middleware.GetReqID(r.Context()), "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
