package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/metrics"
	"alfredoptarigan/job-matcher/internal/models"
	"alfredoptarigan/job-matcher/internal/repositories"
)

// JobIngestService adds postings to both sides of the Job Store: the Qdrant
// vector index and the Postgres catalog. The embedding is computed at insert
// time from the posting's concatenated title, description and skills.
type JobIngestService interface {
	AddJob(ctx context.Context, job *models.JobPosting) error
	AddJobs(ctx context.Context, jobs []models.JobPosting) *models.BulkInsertReport
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

type jobIngestService struct {
	gemini GeminiService
	store  JobStore
	repo   repositories.JobRepository
	pool   EmbedPool
	logger *zap.Logger
}

func NewJobIngestService(
	gemini GeminiService,
	store JobStore,
	repo repositories.JobRepository,
	pool EmbedPool,
	logger *zap.Logger,
) JobIngestService {
	return &jobIngestService{
		gemini: gemini,
		store:  store,
		repo:   repo,
		pool:   pool,
		logger: logger,
	}
}

// AddJob implements JobIngestService. A job carrying an existing id replaces
// the stored posting (documented upsert policy).
func (s *jobIngestService) AddJob(ctx context.Context, job *models.JobPosting) error {
	if err := job.Validate(); err != nil {
		return err
	}

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	embedding, err := s.gemini.GenerateEmbedding(ctx, job.EmbedText())
	if err != nil {
		return err
	}

	if err := s.store.Upsert(ctx, job, embedding); err != nil {
		return err
	}

	if err := s.repo.Upsert(job); err != nil {
		return err
	}

	metrics.JobsIngested.Inc()
	return nil
}

// AddJobs implements JobIngestService. Each record succeeds or fails on its
// own; one malformed record never aborts the rest of the batch.
func (s *jobIngestService) AddJobs(ctx context.Context, jobs []models.JobPosting) *models.BulkInsertReport {
	report := &models.BulkInsertReport{
		Results: make([]models.BulkInsertResult, len(jobs)),
	}

	// Validate up front so only valid records reach the embedding pool.
	texts := make([]string, 0, len(jobs))
	valid := make([]int, 0, len(jobs))
	for i := range jobs {
		report.Results[i].Index = i

		if err := jobs[i].Validate(); err != nil {
			report.Results[i].Error = err.Error()
			report.Failed++
			continue
		}

		if jobs[i].ID == uuid.Nil {
			jobs[i].ID = uuid.New()
		}

		texts = append(texts, jobs[i].EmbedText())
		valid = append(valid, i)
	}

	embedded := s.pool.EmbedBatch(ctx, texts)

	for n, res := range embedded {
		i := valid[n]

		if res.Err != nil {
			report.Results[i].Error = res.Err.Error()
			report.Failed++
			continue
		}

		if err := s.store.Upsert(ctx, &jobs[i], res.Embedding); err != nil {
			report.Results[i].Error = err.Error()
			report.Failed++
			continue
		}

		if err := s.repo.Upsert(&jobs[i]); err != nil {
			s.logger.Error("catalog upsert failed after vector upsert",
				zap.String("job_id", jobs[i].ID.String()),
				zap.Error(err))
			report.Results[i].Error = err.Error()
			report.Failed++
			continue
		}

		report.Results[i].ID = jobs[i].ID.String()
		report.Inserted++
		metrics.JobsIngested.Inc()
	}

	return report
}

// DeleteJob implements JobIngestService.
func (s *jobIngestService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	return s.repo.Delete(id)
}
