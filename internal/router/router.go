package router

import (
	"net/http"

	"mgacha-dashboard/internal/handler"
	"mgacha-dashboard/internal/middleware"
	"mgacha-dashboard/internal/monitor"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler           *handler.Handler
	DashboardHandler  *handler.DashboardHandler
	AdminHandler      *handler.AdminHandler
	SessionMiddleware func(http.Handler) http.Handler
	StaticDir         string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", middleware.SessionHeader},
		ExposedHeaders:   []string{"X-Request-ID", middleware.SessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Handle("/metrics", monitor.Handler())

	// Dashboard page and its assets
	if cfg.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/static/index.html", http.StatusFound)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.DashboardHandler != nil {
			r.Get("/leaderboard", cfg.DashboardHandler.Leaderboard)
			r.Get("/users", cfg.DashboardHandler.Users)

			if cfg.SessionMiddleware != nil {
				r.Route("/session", func(r chi.Router) {
					r.Use(cfg.SessionMiddleware)
					r.Post("/select", cfg.DashboardHandler.Select)
					r.Get("/view", cfg.DashboardHandler.View)
					r.Put("/view", cfg.DashboardHandler.UpdateView)
					r.Post("/refresh", cfg.DashboardHandler.Refresh)
				})
			}
		}

		if cfg.AdminHandler != nil {
			r.Get("/admin/stats", cfg.AdminHandler.GetStats)
		}
	})

	return r
}
