package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"persona-movie-recommender/internal/models"
	"persona-movie-recommender/internal/service"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// SavePersona godoc
// PUT /api/v1/users/:id/persona
func (h *ProfileHandler) SavePersona(c fiber.Ctx) error {
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

	persona, err := h.svc.SavePersona(userID, req)
	if err != nil {
		slog.Error("failed to save persona", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save persona",
		})
	}

	return c.JSON(persona)
}

// GetPersona godoc
// GET /api/v1/users/:id/persona
func (h *ProfileHandler) GetPersona(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	persona, err := h.svc.GetPersona(userID)
	if err != nil {
		if errors.Is(err, service.ErrPersonaNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "persona not found",
			})
		}
		slog.Error("failed to fetch persona", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch persona",
		})
	}

	return c.JSON(persona)
}

// RateMovie godoc
// PUT /api/v1/users/:id/watched
func (h *ProfileHandler) RateMovie(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	var req models.RateMovieRequest
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

	watched, err := h.svc.RateMovie(userID, req)
	if err != nil {
		slog.Error("failed to rate movie", "user_id", userID, "title", req.Title, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to rate movie",
		})
	}

	return c.JSON(watched)
}

// ListWatched godoc
// GET /api/v1/users/:id/watched
func (h *ProfileHandler) ListWatched(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	watched, err := h.svc.ListWatched(userID)
	if err != nil {
		slog.Error("failed to list watched movies", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list watched movies",
		})
	}

	return c.JSON(fiber.Map{
		"user_id": userID,
		"watched": watched,
	})
}

// Dashboard godoc
// GET /api/v1/users/:id/dashboard
func (h *ProfileHandler) Dashboard(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	dashboard, err := h.svc.Dashboard(userID)
	if err != nil {
		slog.Error("failed to build dashboard", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build dashboard",
		})
	}

	return c.JSON(dashboard)
}
