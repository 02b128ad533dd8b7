package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/backyonatan-alt/coronastats/internal/cache"
	"github.com/backyonatan-alt/coronastats/internal/config"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg   *config.Config
	cache *cache.Cache
}

func New(cfg *config.Config, cache *cache.Cache) *Server {
	return &Server{cfg: cfg, cache: cache}
}

// Router returns the HTTP handler with all routes registered. Paths are
// matched with or without a trailing slash.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.corsMiddleware)

	r.Get("/", s.handleSummary)
	r.Get("/all", s.handleAll)
	r.Get("/countries", s.handleCountries)
	r.Get("/invite", s.handleInvite)
	r.Get("/healthz", s.handleHealth)
	return r
}
