package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/metrics"
	"alfredoptarigan/job-matcher/internal/models"
	"alfredoptarigan/job-matcher/internal/services"
)

type ChatHandler struct {
	advisor services.AdvisorService
	logger  *zap.Logger
}

func NewChatHandler(advisor services.AdvisorService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		advisor: advisor,
		logger:  logger,
	}
}

// HandleChat handles POST /chat. The conversation lives on the client; the
// full history arrives with every request.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid chat payload", apperrors.ErrValidation)
	}

	metrics.ChatRequests.Inc()

	reply, err := h.advisor.Chat(c.UserContext(), req.Message, req.ChatHistory)
	if err != nil {
		return err
	}

	return c.JSON(models.ChatResponse{Response: reply})
}
