package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"einnames/internal/cache"
	"einnames/internal/handlers"
	"einnames/internal/handlers/api"
	"einnames/internal/middleware"
	"einnames/internal/persist"
	"einnames/internal/seed"
	"einnames/internal/store"
	"einnames/internal/suggest"
)

// Deps carries the collaborators the route handlers need.
type Deps struct {
	Store       *store.Store
	Snapshotter persist.Snapshotter
	Seeder      *seed.Source
	Suggester   *suggest.Client
	Cache       *cache.ViewCache
	WorkingPath string
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg.OIDCEnabled())

	recordHandler := api.NewRecordHandler(deps.Store)
	statsHandler := api.NewStatsHandler(deps.Store, deps.Snapshotter)
	suggestHandler := api.NewSuggestHandler(deps.Suggester)
	systemHandler := api.NewSystemHandler(deps.Store, deps.Snapshotter, deps.Seeder, deps.Suggester, deps.Cache, deps.WorkingPath)

	// Auth routes - only registered when OIDC is configured
	if s.Cfg.OIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		log.Println("OIDC authentication is disabled. Set OIDC_ISSUER to enable.")
	}

	// Read API
	s.App.Get("/api/eins", recordHandler.List)
	s.App.Get("/api/ein/:ein", recordHandler.Get)
	s.App.Get("/api/stats", statsHandler.Stats)

	// Mutating API - requires a session when OIDC is enabled
	s.App.Post("/api/ein/:ein/save", authMiddleware.RequireAuth, recordHandler.Save)
	s.App.Post("/api/suggest-name", authMiddleware.RequireAuth, suggestHandler.Suggest)
	s.App.Post("/api/reload", authMiddleware.RequireAuth, systemHandler.Reload)

	// System endpoints
	s.App.Get("/health", systemHandler.Health)
	s.App.Get("/api", systemHandler.Info)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	s.App.Get("/", systemHandler.Root)

	return nil
}
