package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/config"
	"alfredoptarigan/job-matcher/internal/models"
)

// AdvisorService answers career questions. It is stateless: the client
// resends the full history each call, and the service bounds what reaches
// the LLM rather than storing anything server-side.
type AdvisorService interface {
	Chat(ctx context.Context, message string, history []models.ChatTurn) (string, error)
}

type advisorService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	cfg           config.ChatConfig
	maxRetries    int
	logger        *zap.Logger
}

func NewAdvisorService(gemini GeminiService, cfg config.ChatConfig, maxRetries int, logger *zap.Logger) AdvisorService {
	return &advisorService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		cfg:           cfg,
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

// Chat implements AdvisorService.
func (a *advisorService) Chat(ctx context.Context, message string, history []models.ChatTurn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", apperrors.ErrValidation)
	}

	bounded := BoundHistory(history, a.cfg.MaxTurns, a.cfg.HistoryBudget)
	if dropped := len(history) - len(bounded); dropped > 0 {
		a.logger.Debug("chat history truncated",
			zap.Int("dropped_turns", dropped),
			zap.Int("kept_turns", len(bounded)))
	}

	chatCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	prompt := a.promptBuilder.BuildChatPrompt(message, bounded, "")

	reply, err := a.gemini.GenerateTextWithRetry(chatCtx, prompt, 0.7, a.maxRetries)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(reply), nil
}

// BoundHistory trims a conversation to at most maxTurns turns and charBudget
// total characters, dropping the OLDEST turns first.
func BoundHistory(history []models.ChatTurn, maxTurns, charBudget int) []models.ChatTurn {
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	if charBudget <= 0 {
		return history
	}

	total := 0
	// Walk newest to oldest and keep what fits the budget.
	cut := 0
	for i := len(history) - 1; i >= 0; i-- {
		total += len(history[i].Content)
		if total > charBudget {
			cut = i + 1
			break
		}
	}

	return history[cut:]
}
