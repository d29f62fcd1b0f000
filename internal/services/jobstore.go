package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/config"
	"alfredoptarigan/job-matcher/internal/models"
)

// JobStore is the vector-indexed collection of job postings. Duplicate ids
// REPLACE the stored posting: the Qdrant point id is the job id, so an
// upsert with an existing id overwrites vector and payload in place.
type JobStore interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, job *models.JobPosting, embedding []float32) error
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.MatchResult, error)
	Count(ctx context.Context) (uint64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewJobStore(cfg config.QdrantConfig, vectorSize uint64, logger *zap.Logger) (JobStore, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port; the REST port in QDRANT_URL is only used for host/TLS.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &jobStore{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     vectorSize,
		logger:         logger,
	}, nil
}

// InitCollection implements JobStore.
func (s *jobStore) InitCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("%w: failed to check collection: %v", apperrors.ErrStoreUnavailable, err)
	}

	if exists {
		s.logger.Info("qdrant collection already exists", zap.String("collection", s.collectionName))
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create collection: %v", apperrors.ErrStoreUnavailable, err)
	}

	s.logger.Info("qdrant collection created", zap.String("collection", s.collectionName))
	return nil
}

// Upsert implements JobStore.
func (s *jobStore) Upsert(ctx context.Context, job *models.JobPosting, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(job.ID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"title":                  job.Title,
			"company":                job.Company,
			"description":            job.Description,
			"required_skills":        job.RequiredSkills,
			"location":               job.Location,
			"salary_range":           job.SalaryRange,
			"experience_level":       job.ExperienceLevel,
			"education_requirements": job.EducationRequirements,
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upsert point: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}

// Search implements JobStore. An empty collection yields an empty slice,
// never an error; results are at most topK, descending by score.
func (s *jobStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.MatchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search failed: %v", apperrors.ErrStoreUnavailable, err)
	}

	results := make([]models.MatchResult, 0, len(points))
	for _, point := range points {
		job := jobFromPayload(point.Payload)
		if id := pointUUID(point.Id); id != uuid.Nil {
			job.ID = id
		}

		results = append(results, models.MatchResult{
			Job:             job,
			SimilarityScore: NormalizeScore(point.Score),
		})
	}

	return results, nil
}

// Count implements JobStore.
func (s *jobStore) Count(ctx context.Context) (uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count failed: %v", apperrors.ErrStoreUnavailable, err)
	}

	return count, nil
}

// Delete implements JobStore.
func (s *jobStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(id.String())),
	})
	if err != nil {
		return fmt.Errorf("%w: delete failed: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}

// NormalizeScore maps a cosine similarity to the [0,100] range used by the
// API. Negative similarity clamps to zero.
func NormalizeScore(score float32) float64 {
	normalized := float64(score) * 100
	if normalized < 0 {
		return 0
	}
	if normalized > 100 {
		return 100
	}
	return normalized
}

func jobFromPayload(payload map[string]*qdrant.Value) models.JobPosting {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	return models.JobPosting{
		Title:                 get("title"),
		Company:               get("company"),
		Description:           get("description"),
		RequiredSkills:        get("required_skills"),
		Location:              get("location"),
		SalaryRange:           get("salary_range"),
		ExperienceLevel:       get("experience_level"),
		EducationRequirements: get("education_requirements"),
	}
}

func pointUUID(id *qdrant.PointId) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(id.GetUuid())
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
