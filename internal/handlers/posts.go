package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/BorisDmv/my-todo-api/internal/models"
)

type PostsHandler struct {
	store Store
	log   *slog.Logger
}

func NewPostsHandler(store Store, log *slog.Logger) *PostsHandler {
	return &PostsHandler{store: store, log: log}
}

// ListPublished returns every published post, newest first.
func (h *PostsHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPublishedPosts(r.Context())
	if err != nil {
		h.log.Error("list posts failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	title, ok := normalizeTitle(req.Title)
	if !ok {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := h.store.CreatePost(r.Context(), title, req.Content)
	if err != nil {
		h.log.Error("create post failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}
