package handlers

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/metrics"
	"alfredoptarigan/job-matcher/internal/models"
	"alfredoptarigan/job-matcher/internal/services"
)

type MatchHandler struct {
	extractor   services.DocumentExtractor
	matcher     services.MatcherService
	maxFileSize int64
	logger      *zap.Logger
}

func NewMatchHandler(
	extractor services.DocumentExtractor,
	matcher services.MatcherService,
	maxFileSize int64,
	logger *zap.Logger,
) *MatchHandler {
	return &MatchHandler{
		extractor:   extractor,
		matcher:     matcher,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// HandleUploadAndMatch handles POST /upload-cv-and-match. The uploaded CV is
// processed entirely in memory and discarded with the request.
func (h *MatchHandler) HandleUploadAndMatch(c *fiber.Ctx) error {
	file, err := c.FormFile("cv")
	if err != nil {
		return fmt.Errorf("%w: multipart field 'cv' is required", apperrors.ErrValidation)
	}

	if file.Size > h.maxFileSize {
		return fmt.Errorf("%w: file too large (max %d bytes)", apperrors.ErrValidation, h.maxFileSize)
	}

	topK := 0
	if v := c.FormValue("top_k"); v != "" {
		topK, err = strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: top_k must be an integer", apperrors.ErrValidation)
		}
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: failed to open uploaded file", apperrors.ErrValidation)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("%w: failed to read uploaded file", apperrors.ErrValidation)
	}

	text, err := h.extractor.Extract(c.UserContext(), data, file.Filename)
	if err != nil {
		return err
	}

	return h.runMatch(c, text, topK)
}

// HandleMatchJobs handles POST /match-jobs (raw CV text, no file parsing).
func (h *MatchHandler) HandleMatchJobs(c *fiber.Ctx) error {
	var req models.MatchJobsRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid request payload", apperrors.ErrValidation)
	}

	if req.CVText == "" {
		return models.ErrMissingField("cv_text")
	}

	return h.runMatch(c, req.CVText, req.TopK)
}

func (h *MatchHandler) runMatch(c *fiber.Ctx, cvText string, topK int) error {
	metrics.MatchRequests.Inc()
	start := time.Now()

	report, err := h.matcher.Match(c.UserContext(), cvText, topK)
	if err != nil {
		return err
	}

	metrics.MatchDuration.Observe(time.Since(start).Seconds())

	h.logger.Info("match request served",
		zap.Int("matches", len(report.Matches)),
		zap.Duration("elapsed", time.Since(start)))

	return c.JSON(report)
}
