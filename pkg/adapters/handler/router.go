package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/services"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

// Services bundles what the router dispatches to.
type Services struct {
	Links    ports.LinkService
	Profiles ports.ProfileService
	Pages    ports.PageService
	Avatars  ports.AvatarService
	Resolver *services.Resolver
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, logger logging.Logger, svc Services) http.Handler {
	// Initialize Handlers
	h := NewHTTPHandler(svc.Links, logger)
	ph := NewProfileHandler(svc.Profiles, svc.Avatars, logger)
	pages := NewPageHandler(svc.Pages, logger)

	// Initialize Middleware
	mw := NewMiddleware(cfg, logger)

	// Initialize Auth Handler
	authHandler := NewAuthHandler(cfg, logger)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /demo", pages.Demo)
	mux.HandleFunc("GET /u/{username}", pages.GetPublicPage)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/usernames/check", ph.CheckUsername)
	protectedMux.HandleFunc("PUT /api/v1/profile/username", ph.SetUsername)
	protectedMux.HandleFunc("GET /api/v1/profile", ph.Get)
	protectedMux.HandleFunc("PUT /api/v1/profile", ph.Update)
	protectedMux.HandleFunc("POST /api/v1/profile/avatar", ph.AvatarUpload)

	protectedMux.HandleFunc("GET /api/v1/links", h.List)
	protectedMux.HandleFunc("POST /api/v1/links", h.Create)
	protectedMux.HandleFunc("PUT /api/v1/links/order", h.Reorder)
	protectedMux.HandleFunc("PATCH /api/v1/links/{id}", h.Update)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", h.Delete)

	// protectedMux holds full paths, so /api/v1/ dispatches straight into it.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return mw.RequestLogger(ResolverMiddleware(svc.Resolver, mux))
}
