package api

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"einnames/internal/metrics"
	"einnames/internal/suggest"
	"einnames/internal/validation"
)

// SuggestHandler proxies name suggestion requests to the AI client.
type SuggestHandler struct {
	client *suggest.Client
}

// NewSuggestHandler creates a new API suggestion handler.
func NewSuggestHandler(client *suggest.Client) *SuggestHandler {
	return &SuggestHandler{client: client}
}

// Suggest returns a standardized company name for a set of variants.
func (h *SuggestHandler) Suggest(c fiber.Ctx) error {
	var body struct {
		Names []string `json:"names"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		metrics.RecordSuggestion("invalid")
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if ok, msg := validation.ValidateSuggestNames(body.Names); !ok {
		metrics.RecordSuggestion("invalid")
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	name, err := h.client.Suggest(c.Context(), body.Names)
	if err != nil {
		switch {
		case errors.Is(err, suggest.ErrNotConfigured):
			metrics.RecordSuggestion("unconfigured")
			return jsonError(c, fiber.StatusServiceUnavailable, "AI service not available. API_KEY not configured.")
		case errors.Is(err, suggest.ErrNoNames):
			metrics.RecordSuggestion("invalid")
			return jsonError(c, fiber.StatusBadRequest, "no names provided")
		case errors.Is(err, suggest.ErrUpstream):
			metrics.RecordSuggestion("upstream_error")
			slog.Error("suggestion upstream error", "error", err)
			return jsonError(c, fiber.StatusBadGateway, "AI service error")
		default:
			metrics.RecordSuggestion("upstream_error")
			slog.Error("suggestion failed", "error", err)
			return jsonError(c, fiber.StatusInternalServerError, "failed to generate suggestion")
		}
	}

	metrics.RecordSuggestion("ok")
	slog.Info("suggested name", "input_count", len(body.Names), "suggested", name)

	return jsonSuccess(c, fiber.Map{
		"suggested_name": name,
		"input_count":    len(body.Names),
		"model":          h.client.Model(),
	})
}
