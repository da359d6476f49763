// Package web is the plugin's HTTP glue: a small JSON API in front of the
// renderer, detector, and entry-format hook.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/exedev/ticketmd/internal/auth"
	"github.com/exedev/ticketmd/internal/config"
	"github.com/exedev/ticketmd/internal/entries"
	"github.com/exedev/ticketmd/internal/render"
)

type Server struct {
	cfg      *config.Config
	store    config.Store
	renderer *render.Renderer
	hook     *entries.Hook
}

func NewRouter(cfg *config.Config, store config.Store, formats entries.FormatStore) http.Handler {
	s := &Server{
		cfg:      cfg,
		store:    store,
		renderer: render.New(),
		hook:     entries.NewHook(store, formats),
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey(cfg.APIKeyHash))

		r.Post("/render", s.handleRender)
		r.Post("/detect", s.handleDetect)
		r.Post("/hooks/entry-changed", s.handleEntryChanged)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// requireAPIKey rejects requests whose X-API-Key header does not match the
// configured bcrypt hash. An empty hash disables the check.
func requireAPIKey(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				next.ServeHTTP(w, r)
				return
			}
			if err := auth.VerifyToken(hash, r.Header.Get("X-API-Key")); err != nil {
				slog.Warn("rejected request with invalid api key",
					"path", r.URL.Path,
					"ip", r.RemoteAddr,
				)
				writeJSON(w, http.StatusUnauthorized, errorResponse("invalid api key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
