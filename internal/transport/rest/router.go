package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/website-management/internal"
	"github.com/frahmantamala/website-management/internal/auth"
	"github.com/frahmantamala/website-management/internal/transport/middleware"
	"github.com/frahmantamala/website-management/internal/transport/swagger"
	"github.com/frahmantamala/website-management/internal/user"
	"github.com/frahmantamala/website-management/internal/website"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Website  *website.Handler
	Download *DownloadHandler
}

func RegisterAllRoutes(router *chi.Mux, cfg *internal.Config, db *sql.DB, snapshot SnapshotState, h Handlers, rbac *auth.RBACAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, snapshot)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if cfg.Observability.Metrics.Enabled {
		router.Use(middleware.Metrics)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	if cfg.Observability.Metrics.Enabled {
		router.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// File download proxy; auth is deliberately skipped so the
		// browser can follow the link directly.
		if h.Download != nil {
			r.Handle("/download", h.Download)
		}

		// Auth routes
		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/signup", h.Auth.Signup)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)
				pr.Use(rbac.RequireActiveUser())

				// User routes
				if h.User != nil {
					pr.Get("/users/me", h.User.GetCurrentUser)
					pr.Patch("/users/{userID}", h.User.UpdateUser)
					pr.Post("/users/{userID}/password", h.User.ChangePassword)

					pr.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireAdmin())
						ar.Get("/users", h.User.GetAllUsers)
						ar.Patch("/users/{userID}/status", h.User.UpdateUserStatus)
						ar.Delete("/users/{userID}", h.User.DeleteUser)
					})
				}

				// Website routes
				if h.Website != nil {
					pr.Route("/websites", func(wr chi.Router) {
						wr.Post("/", h.Website.CreateWebsite)
						wr.Get("/", h.Website.ListWebsites)
						wr.Get("/{websiteID}", h.Website.GetWebsite)
						wr.Delete("/{websiteID}", h.Website.DeleteWebsite)
						wr.Get("/{websiteID}/records/export", h.Website.ExportRecords)

						// Admin routes with permission protection
						wr.Group(func(ar chi.Router) {
							ar.Use(rbac.RequireAdmin())
							ar.Patch("/{websiteID}/approve", h.Website.ApproveWebsite)
							ar.Patch("/{websiteID}/reject", h.Website.RejectWebsite)
							ar.Post("/{websiteID}/records", h.Website.AddRecord)
							ar.Patch("/{websiteID}/records/{recordID}", h.Website.UpdateRecord)
							ar.Delete("/{websiteID}/records/{recordID}", h.Website.DeleteRecord)
							ar.Delete("/{websiteID}/records", h.Website.ClearRecords)
						})
					})
				}
			})
		}
	})
}
