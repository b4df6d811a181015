package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/engine"
	"github.com/dataspeak/backend/internal/storage/models"
	"github.com/dataspeak/backend/pkg/logger"
)

type FeedbackHandler struct {
	queryEngine *engine.Engine
}

func NewFeedbackHandler(queryEngine *engine.Engine) *FeedbackHandler {
	return &FeedbackHandler{
		queryEngine: queryEngine,
	}
}

func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req struct {
		QueryID string `json:"query_id"`
		Helpful bool   `json:"helpful"`
		Comment string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.QueryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query_id is required",
		})
	}

	fb := &models.Feedback{
		QueryID: req.QueryID,
		Helpful: req.Helpful,
		Comment: req.Comment,
	}

	if err := h.queryEngine.StoreFeedback(fb); err != nil {
		logger.Error("Failed to store feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Feedback recorded",
	})
}
