package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"einnames/internal/persist"
	"einnames/internal/store"
)

// StatsHandler reports review progress across the whole store.
type StatsHandler struct {
	store *store.Store
	snap  persist.Snapshotter
}

// NewStatsHandler creates a new API stats handler.
func NewStatsHandler(s *store.Store, snap persist.Snapshotter) *StatsHandler {
	return &StatsHandler{store: s, snap: snap}
}

// Stats returns aggregate counts plus whether a saved snapshot exists.
func (h *StatsHandler) Stats(c fiber.Ctx) error {
	stats, err := h.store.Stats()
	if err != nil {
		if errors.Is(err, store.ErrNotLoaded) {
			return jsonError(c, fiber.StatusBadRequest, "data not loaded")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute stats")
	}

	return jsonSuccess(c, fiber.Map{
		"total_eins":           stats.TotalRecords,
		"edited_eins":          stats.EditedRecords,
		"total_names":          stats.TotalNames,
		"total_mappings":       stats.TotalMappings,
		"done_count":           stats.DoneCount,
		"partially_done_count": stats.PartiallyDoneCount,
		"not_started_count":    stats.NotStartedCount,
		"has_saved_data":       h.snap.Exists(c.Context()),
	})
}
