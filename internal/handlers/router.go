package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appmiddleware "github.com/BorisDmv/my-todo-api/internal/middleware"
)

type RouterOptions struct {
	AllowedOrigins []string
	// RateLimiter is optional; nil disables limiting.
	RateLimiter *appmiddleware.RateLimiter
	// AccessLog toggles chi's request logger.
	AccessLog bool
}

func NewRouter(store Store, log *slog.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	// An empty list means "*" to go-chi/cors; without origins no cross-origin
	// access is granted at all.
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}).Handler)
	}
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Limit)
	}

	r.Get("/health", Health(store, log))

	postsHandler := NewPostsHandler(store, log)
	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", postsHandler.ListPublished)
		r.Post("/posts", postsHandler.Create)
	})

	todosHandler := NewTodosHandler(store, log)
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", todosHandler.List)
		r.Post("/", todosHandler.Create)
		r.Put("/{id}", todosHandler.Update)
		r.Delete("/{id}", todosHandler.Delete)
	})

	return r
}
