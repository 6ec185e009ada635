package api

import (
	"os"

	"github.com/gofiber/fiber/v3"

	"einnames/internal/cache"
	"einnames/internal/persist"
	"einnames/internal/seed"
	"einnames/internal/store"
	"einnames/internal/suggest"
)

// Version is the service version reported by the info endpoints.
const Version = "2.2.0"

// SystemHandler serves health, service info, and reload endpoints.
type SystemHandler struct {
	store   *store.Store
	snap    persist.Snapshotter
	seeder  *seed.Source
	suggest *suggest.Client
	cache   *cache.ViewCache
	working string // Working file path, empty in Postgres mode
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(s *store.Store, snap persist.Snapshotter, seeder *seed.Source, sc *suggest.Client, vc *cache.ViewCache, workingPath string) *SystemHandler {
	return &SystemHandler{
		store:   s,
		snap:    snap,
		seeder:  seeder,
		suggest: sc,
		cache:   vc,
		working: workingPath,
	}
}

// Health reports liveness for monitoring. Degraded when no data is loaded.
func (h *SystemHandler) Health(c fiber.Ctx) error {
	status := "healthy"
	if !h.store.Loaded() {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":              status,
		"data_loaded":         h.store.Loaded(),
		"working_file_exists": h.snap.Exists(c.Context()),
		"source_file_exists":  h.seeder.Exists(),
		"ai_available":        h.suggest.Configured(),
	})
}

// Info returns service metadata.
func (h *SystemHandler) Info(c fiber.Ctx) error {
	return c.JSON(h.info())
}

// Root serves the bundled frontend if present, otherwise service metadata.
func (h *SystemHandler) Root(c fiber.Ctx) error {
	if _, err := os.Stat("index.html"); err == nil {
		return c.SendFile("index.html")
	}
	return c.JSON(h.info())
}

// Reload discards the in-memory store and reloads from the snapshot, or from
// the seed file when no snapshot exists.
func (h *SystemHandler) Reload(c fiber.Ctx) error {
	if err := h.store.Load(c.Context(), h.seeder); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to reload data")
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Data reloaded",
		"records": h.store.Len(),
	})
}

func (h *SystemHandler) info() fiber.Map {
	return fiber.Map{
		"message":         "EIN Names Editor API",
		"version":         Version,
		"has_data_loaded": h.store.Loaded(),
		"cache_hits":      h.cache.Hits(),
		"cache_misses":    h.cache.Misses(),
		"source_file":     h.seeder.Path(),
		"working_file":    h.working,
	}
}
