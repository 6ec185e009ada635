package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"einnames/internal/metrics"
	"einnames/internal/models"
	"einnames/internal/store"
	"einnames/internal/validation"
)

// RecordHandler handles record listing, retrieval, and saves via JSON API.
type RecordHandler struct {
	store *store.Store
}

// NewRecordHandler creates a new API record handler.
func NewRecordHandler(s *store.Store) *RecordHandler {
	return &RecordHandler{store: s}
}

// List returns a paginated listing of all records.
func (h *RecordHandler) List(c fiber.Ctx) error {
	page := fiber.Query(c, "page", 1)
	pageSize := fiber.Query(c, "page_size", 20)
	page, pageSize = validation.NormalizePageParams(page, pageSize)

	resp, err := h.store.List(page, pageSize)
	if err != nil {
		if errors.Is(err, store.ErrNotLoaded) {
			return jsonError(c, fiber.StatusBadRequest, "data not loaded")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to list records")
	}

	return jsonSuccess(c, resp)
}

// Get returns a single record view by EIN.
func (h *RecordHandler) Get(c fiber.Ctx) error {
	ein, err := parseEIN(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid ein")
	}

	view, err := h.store.Get(ein)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "ein not found")
		}
		if errors.Is(err, store.ErrNotLoaded) {
			return jsonError(c, fiber.StatusBadRequest, "data not loaded")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch record")
	}

	return jsonSuccess(c, view)
}

// Save applies marked names, the representative, and name mappings to a record.
func (h *RecordHandler) Save(c fiber.Ctx) error {
	ein, err := parseEIN(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid ein")
	}

	var body struct {
		MarkedNames  []string         `json:"marked_names"`
		NewName      string           `json:"new_name"`
		NameMappings map[string]int64 `json:"name_ein_mappings"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	req := store.UpdateRequest{
		EIN:            ein,
		Marked:         body.MarkedNames,
		Representative: body.NewName,
		Mappings:       orderedMappings(body.NameMappings),
	}

	result, err := h.store.ApplyUpdate(c.Context(), req)
	if err != nil {
		var perr *store.PersistError
		switch {
		case errors.As(err, &perr):
			metrics.RecordPersistFailure()
			return jsonErrorWithData(c, fiber.StatusInternalServerError,
				"changes saved in memory but could not be written to disk", perr.Result)
		case errors.Is(err, store.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "ein not found")
		case errors.Is(err, store.ErrNotLoaded):
			return jsonError(c, fiber.StatusBadRequest, "data not loaded")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "failed to save changes")
		}
	}

	metrics.RecordSave(result.TransferredCount)

	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": saveMessage(result),
		"data":    result,
	})
}

// saveMessage mirrors the editor's save confirmation wording.
func saveMessage(result *models.UpdateResult) string {
	msg := "Changes Saved"
	if result.TransferredCount > 0 {
		msg += fmt.Sprintf(". %d name(s) transferred to existing EIN(s)", result.TransferredCount)
	}
	if result.PendingCount > 0 {
		msg += fmt.Sprintf(". %d name(s) mapped to non-existent EIN(s)", result.PendingCount)
	}
	return msg + "."
}

// orderedMappings converts the request's name-to-EIN map into a deterministic
// ordered slice. JSON objects carry no order, so names sort lexically.
func orderedMappings(m map[string]int64) []store.NameMapping {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]store.NameMapping, 0, len(names))
	for _, name := range names {
		out = append(out, store.NameMapping{Name: name, TargetEIN: m[name]})
	}
	return out
}

func parseEIN(c fiber.Ctx) (int64, error) {
	ein, err := strconv.ParseInt(c.Params("ein"), 10, 64)
	if err != nil || !validation.ValidateEIN(ein) {
		return 0, errors.New("invalid ein")
	}
	return ein, nil
}
