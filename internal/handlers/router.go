package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BorisDmv/posts-api/internal/docs"
	appmiddleware "github.com/BorisDmv/posts-api/internal/middleware"
)

type RouterOptions struct {
	AllowedOrigins []string
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// NewRouter wires the posts, docs and health routes behind the shared
// middleware stack.
func NewRouter(opts RouterOptions, posts *PostsHandler, health *HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(appmiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.NotFound(appmiddleware.NotFound)
	r.MethodNotAllowed(appmiddleware.MethodNotAllowed)

	r.Get("/health", health.Health)
	docs.Register(r)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", posts.List)
		r.Post("/", posts.Create)
		r.Get("/search", posts.Search)
		r.Get("/{id}", posts.GetByID)
		r.Put("/{id}", posts.Update)
		r.Delete("/{id}", posts.Delete)
	})

	return r
}
