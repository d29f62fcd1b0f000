package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/config"
	"alfredoptarigan/job-matcher/internal/models"
	"alfredoptarigan/job-matcher/internal/repositories"
)

type stubGemini struct {
	embedding []float32
	embedErr  error
	responses []string
	textErr   error
	textCalls int
}

func (s *stubGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return s.embedding, nil
}

func (s *stubGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return s.GenerateTextWithRetry(ctx, prompt, temperature, 1)
}

func (s *stubGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	if s.textErr != nil {
		return "", s.textErr
	}
	if s.textCalls >= len(s.responses) {
		return "", fmt.Errorf("no stubbed response for call %d", s.textCalls)
	}
	resp := s.responses[s.textCalls]
	s.textCalls++
	return resp, nil
}

type stubStore struct {
	results   []models.MatchResult
	searchErr error
	upserted  []uuid.UUID
	upsertErr error
	deleted   []uuid.UUID
	count     uint64
}

func (s *stubStore) InitCollection(ctx context.Context) error { return nil }

func (s *stubStore) Upsert(ctx context.Context, job *models.JobPosting, embedding []float32) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, job.ID)
	return nil
}

func (s *stubStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.MatchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	// Return a fresh slice, as a real store would; sharing s.results' backing
	// array would let the service's in-place sort reorder the test's fixture.
	results := make([]models.MatchResult, len(s.results))
	copy(results, s.results)
	if topK < len(results) {
		return results[:topK], nil
	}
	return results, nil
}

func (s *stubStore) Count(ctx context.Context) (uint64, error) { return s.count, nil }

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubRepo struct {
	upserted  []uuid.UUID
	upsertErr error
	deleted   []uuid.UUID
	count     int64
}

func (r *stubRepo) Upsert(job *models.JobPosting) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserted = append(r.upserted, job.ID)
	return nil
}

func (r *stubRepo) FindByID(id uuid.UUID) (*models.JobPosting, error) { return nil, nil }

func (r *stubRepo) List(limit, offset int) ([]models.JobPosting, error) { return nil, nil }

func (r *stubRepo) Count() (int64, error) { return r.count, nil }

func (r *stubRepo) Delete(id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return nil
}

var _ repositories.JobRepository = (*stubRepo)(nil)

func testMatcherConfig() config.MatcherConfig {
	return config.MatcherConfig{
		DefaultTopK:      5,
		RescoreTimeout:   5 * time.Second,
		AnalysisTimeout:  5 * time.Second,
		EmbedConcurrency: 2,
	}
}

func makeCandidates(t *testing.T, sims ...float64) []models.MatchResult {
	t.Helper()
	out := make([]models.MatchResult, len(sims))
	for i, sim := range sims {
		out[i] = models.MatchResult{
			Job: models.JobPosting{
				ID:          uuid.New(),
				Title:       fmt.Sprintf("Job %d", i),
				Description: "desc",
			},
			SimilarityScore: sim,
		}
	}
	return out
}

func TestMatchRescoreReorders(t *testing.T) {
	candidates := makeCandidates(t, 80, 70)

	rescoreJSON := fmt.Sprintf(
		`[{"id":%q,"score":40,"reason":"weak fit"},{"id":%q,"score":95,"reason":"strong fit"}]`,
		candidates[0].Job.ID, candidates[1].Job.ID)

	gemini := &stubGemini{
		embedding: []float32{0.1, 0.2},
		responses: []string{rescoreJSON, "Overall a solid profile."},
	}
	store := &stubStore{results: candidates}

	m := NewMatcherService(gemini, store, testMatcherConfig(), 3, zap.NewNop())

	report, err := m.Match(context.Background(), "experienced engineer", 2)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}

	if len(report.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(report.Matches))
	}
	if report.Matches[0].Job.ID != candidates[1].Job.ID {
		t.Errorf("expected rescored job first, got %s", report.Matches[0].Job.Title)
	}
	if report.Matches[0].RescoredScore == nil || *report.Matches[0].RescoredScore != 95 {
		t.Errorf("expected rescored score 95, got %v", report.Matches[0].RescoredScore)
	}
	if report.Matches[0].RescoreReason != "strong fit" {
		t.Errorf("unexpected rescore reason: %q", report.Matches[0].RescoreReason)
	}
	if report.Analysis != "Overall a solid profile." {
		t.Errorf("unexpected analysis: %q", report.Analysis)
	}
}

func TestMatchRescoreFailureFallsBackToVectorRanking(t *testing.T) {
	candidates := makeCandidates(t, 80, 70)

	gemini := &stubGemini{
		embedding: []float32{0.1},
		textErr:   errors.New("model overloaded"),
	}
	store := &stubStore{results: candidates}

	m := NewMatcherService(gemini, store, testMatcherConfig(), 3, zap.NewNop())

	report, err := m.Match(context.Background(), "engineer cv", 2)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}

	if len(report.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(report.Matches))
	}
	for i, match := range report.Matches {
		if match.Job.ID != candidates[i].Job.ID {
			t.Errorf("vector order not preserved at %d", i)
		}
		if match.RescoredScore != nil {
			t.Errorf("match %d should not carry a rescored score", i)
		}
	}
	if report.Analysis == "" {
		t.Error("analysis should degrade to a notice, not be empty")
	}
}

func TestMatchRescoreUnparseableFallsBack(t *testing.T) {
	candidates := makeCandidates(t, 90, 60)

	gemini := &stubGemini{
		embedding: []float32{0.1},
		responses: []string{"I cannot score these jobs, sorry.", "analysis"},
	}
	store := &stubStore{results: candidates}

	m := NewMatcherService(gemini, store, testMatcherConfig(), 3, zap.NewNop())

	report, err := m.Match(context.Background(), "engineer cv", 2)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if report.Matches[0].Job.ID != candidates[0].Job.ID {
		t.Error("vector ranking should be preserved when rescore output is unparseable")
	}
	if report.Matches[0].RescoredScore != nil {
		t.Error("no rescored score expected on fallback")
	}
}

func TestMatchRescoreClampsOutOfRangeScores(t *testing.T) {
	candidates := makeCandidates(t, 50)

	rescoreJSON := fmt.Sprintf(`[{"id":%q,"score":180,"reason":"over"}]`, candidates[0].Job.ID)

	gemini := &stubGemini{
		embedding: []float32{0.1},
		responses: []string{rescoreJSON, "analysis"},
	}
	store := &stubStore{results: candidates}

	m := NewMatcherService(gemini, store, testMatcherConfig(), 3, zap.NewNop())

	report, err := m.Match(context.Background(), "cv", 1)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got := *report.Matches[0].RescoredScore; got != 100 {
		t.Errorf("expected score clamped to 100, got %v", got)
	}
}

func TestMatchEqualRescoresTieBreakOnSimilarity(t *testing.T) {
	candidates := makeCandidates(t, 70, 80)

	rescoreJSON := fmt.Sprintf(
		`[{"id":%q,"score":50,"reason":"a"},{"id":%q,"score":50,"reason":"b"}]`,
		candidates[0].Job.ID, candidates[1].Job.ID)

	gemini := &stubGemini{
		embedding: []float32{0.1},
		responses: []string{rescoreJSON, "analysis"},
	}
	store := &stubStore{results: candidates}

	m := NewMatcherService(gemini, store, testMatcherConfig(), 3, zap.NewNop())

	report, err := m.Match(context.Background(), "cv", 2)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if report.Matches[0].SimilarityScore != 80 {
		t.Errorf("tie should break on similarity, got %v first", report.Matches[0].SimilarityScore)
	}
}

func TestMatchEmptyStoreReturnsEmptyMatches(t *testing.T) {
	gemini := &stubGemini{embedding: []float32{0.1}}
	store := &stubStore{}

	m := NewMatcherService(gemini, store, testMatcherConfig(), 3, zap.NewNop())

	report, err := m.Match(context.Background(), "engineer cv", 5)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if len(report.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(report.Matches))
	}
	if report.Matches == nil {
		t.Error("matches should be an empty slice, not nil")
	}
	if report.Analysis == "" {
		t.Error("empty store should still produce an analysis notice")
	}
	if gemini.textCalls != 0 {
		t.Errorf("no LLM calls expected for an empty store, got %d", gemini.textCalls)
	}
}

func TestMatchEmptyCVRejected(t *testing.T) {
	m := NewMatcherService(&stubGemini{}, &stubStore{}, testMatcherConfig(), 3, zap.NewNop())

	_, err := m.Match(context.Background(), "   \n\t  ", 5)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMatchEmbeddingErrorPropagates(t *testing.T) {
	gemini := &stubGemini{embedErr: fmt.Errorf("%w: quota", apperrors.ErrEmbedding)}

	m := NewMatcherService(gemini, &stubStore{}, testMatcherConfig(), 3, zap.NewNop())

	_, err := m.Match(context.Background(), "cv text", 5)
	if !errors.Is(err, apperrors.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestParseRescoreResponse(t *testing.T) {
	fenced := "```json\n[{\"id\":\"abc\",\"score\":75,\"reason\":\"good\"}]\n```"

	entries, err := parseRescoreResponse(fenced)
	if err != nil {
		t.Fatalf("parseRescoreResponse failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "abc" || entries[0].Score != 75 {
		t.Errorf("unexpected entries: %+v", entries)
	}

	if _, err := parseRescoreResponse("[]"); err == nil {
		t.Error("empty array should be an error")
	}
	if _, err := parseRescoreResponse("not json at all"); err == nil {
		t.Error("non-JSON should be an error")
	}
}
