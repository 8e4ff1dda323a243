package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alfagnish/simple-crud/internal/config"
	"github.com/alfagnish/simple-crud/internal/events"
	"github.com/alfagnish/simple-crud/internal/handlers"
	"github.com/alfagnish/simple-crud/internal/middleware"
	"github.com/alfagnish/simple-crud/internal/users"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a fully-configured chi router with all route groups,
// middleware, and handlers wired together.
func New(cfg *config.Config, store *users.Store, hub *events.Hub, logger *slog.Logger, started time.Time) http.Handler {
	r := chi.NewRouter()

	// ── Middleware ───────────────────────────────────────────
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(chimw.GetHead)

	// Unknown paths and unsupported methods on known paths share one answer.
	r.NotFound(handlers.RouteNotFound)
	r.MethodNotAllowed(handlers.RouteNotFound)

	// ── Handlers ────────────────────────────────────────────
	systemH := handlers.NewSystemHandler(started)
	usersH := handlers.NewUsersHandler(store, logger)
	eventsH := handlers.NewEventsHandler(hub, logger)

	// ── Routes ──────────────────────────────────────────────
	systemH.Routes(r)

	r.Route("/users", func(r chi.Router) {
		r.Get("/events", eventsH.Stream)
		usersH.Routes(r)
	})

	if cfg.EnableAdmin {
		r.Route("/admin", handlers.NewAdminHandler(store).Routes)
	}

	return r
}
