package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/models"
	"alfredoptarigan/job-matcher/internal/repositories"
	"alfredoptarigan/job-matcher/internal/services"
)

type JobHandler struct {
	ingest     services.JobIngestService
	store      services.JobStore
	repo       repositories.JobRepository
	collection string
	logger     *zap.Logger
}

func NewJobHandler(
	ingest services.JobIngestService,
	store services.JobStore,
	repo repositories.JobRepository,
	collection string,
	logger *zap.Logger,
) *JobHandler {
	return &JobHandler{
		ingest:     ingest,
		store:      store,
		repo:       repo,
		collection: collection,
		logger:     logger,
	}
}

// HandleAddJob handles POST /add-job.
func (h *JobHandler) HandleAddJob(c *fiber.Ctx) error {
	var job models.JobPosting
	if err := c.BodyParser(&job); err != nil {
		return fmt.Errorf("%w: invalid job payload", apperrors.ErrValidation)
	}

	if err := h.ingest.AddJob(c.UserContext(), &job); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleAddJobs handles POST /add-jobs. Partial success is expected: the
// response reports each record's outcome and never aborts the batch.
func (h *JobHandler) HandleAddJobs(c *fiber.Ctx) error {
	var jobs []models.JobPosting
	if err := c.BodyParser(&jobs); err != nil {
		return fmt.Errorf("%w: expected a JSON array of jobs", apperrors.ErrValidation)
	}

	if len(jobs) == 0 {
		return fmt.Errorf("%w: job list is empty", apperrors.ErrValidation)
	}

	report := h.ingest.AddJobs(c.UserContext(), jobs)

	h.logger.Info("bulk job ingestion finished",
		zap.Int("inserted", report.Inserted),
		zap.Int("failed", report.Failed))

	return c.JSON(report)
}

// HandleDeleteJob handles DELETE /jobs/:id.
func (h *JobHandler) HandleDeleteJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fmt.Errorf("%w: invalid job id", apperrors.ErrValidation)
	}

	if err := h.ingest.DeleteJob(c.UserContext(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": id.String()})
}

// HandleCollectionStats handles GET /collection-stats.
func (h *JobHandler) HandleCollectionStats(c *fiber.Ctx) error {
	vectors, err := h.store.Count(c.UserContext())
	if err != nil {
		return err
	}

	rows, err := h.repo.Count()
	if err != nil {
		return err
	}

	return c.JSON(models.CollectionStatsResponse{
		Collection:  h.collection,
		VectorCount: vectors,
		CatalogRows: rows,
	})
}
