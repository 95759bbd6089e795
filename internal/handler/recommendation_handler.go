package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"persona-movie-recommender/internal/llm"
	"persona-movie-recommender/internal/models"
	"persona-movie-recommender/internal/service"
	"persona-movie-recommender/internal/tmdb"
)

type RecommendationHandler struct {
	svc *service.RecommendationService
}

func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Health godoc
// GET /health
func (h *RecommendationHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "persona-movie-recommender",
	})
}

// Generate godoc
// POST /api/v1/users/:id/recommendations
func (h *RecommendationHandler) Generate(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	var req models.PersonaRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resp, err := h.svc.Generate(c.Context(), userID, req)
	if err != nil {
		return h.recommendationError(c, userID, err)
	}

	return c.JSON(resp)
}

// History godoc
// GET /api/v1/users/:id/recommendations/history
func (h *RecommendationHandler) History(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	limit := fiber.Query(c, "limit", 5)
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	batches, err := h.svc.History(c.Context(), userID, limit)
	if err != nil {
		slog.Error("failed to fetch recommendation history", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch recommendation history",
		})
	}

	return c.JSON(fiber.Map{
		"user_id": userID,
		"batches": batches,
	})
}

func (h *RecommendationHandler) recommendationError(c fiber.Ctx, userID int, err error) error {
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey) || errors.Is(err, tmdb.ErrMissingAPIKey):
		slog.Error("recommendation service misconfigured", "user_id", userID, "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "recommendation service is not configured",
		})
	case errors.Is(err, llm.ErrUpstream):
		slog.Error("generation service failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "generation service unavailable, try again later",
		})
	default:
		slog.Error("failed to generate recommendations", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate recommendations",
		})
	}
}
