package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/config"
	"alfredoptarigan/job-matcher/internal/metrics"
	"alfredoptarigan/job-matcher/internal/models"
)

// MatcherService runs the CV-to-job pipeline: clean, embed, vector search,
// LLM rescoring, analysis. Rescoring is best-effort: any failure falls back
// to the raw vector ranking instead of failing the request.
type MatcherService interface {
	Match(ctx context.Context, cvText string, topK int) (*models.MatchReport, error)
}

type matcherService struct {
	gemini        GeminiService
	store         JobStore
	promptBuilder *PromptBuilder
	cfg           config.MatcherConfig
	maxRetries    int
	logger        *zap.Logger
}

func NewMatcherService(
	gemini GeminiService,
	store JobStore,
	cfg config.MatcherConfig,
	maxRetries int,
	logger *zap.Logger,
) MatcherService {
	return &matcherService{
		gemini:        gemini,
		store:         store,
		promptBuilder: NewPromptBuilder(),
		cfg:           cfg,
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

type rescoreEntry struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Match implements MatcherService.
func (m *matcherService) Match(ctx context.Context, cvText string, topK int) (*models.MatchReport, error) {
	cleaned := CleanText(cvText)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: cv_text is empty", apperrors.ErrValidation)
	}

	if topK <= 0 {
		topK = m.cfg.DefaultTopK
	}

	summary := BuildCVSummary(cvText, cleaned)

	embedding, err := m.gemini.GenerateEmbedding(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	candidates, err := m.store.Search(ctx, embedding, topK)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return &models.MatchReport{
			Matches:   []models.MatchResult{},
			CVSummary: summary,
			Analysis:  "No job postings are available to match against yet.",
		}, nil
	}

	matches := m.rescore(ctx, cleaned, candidates)

	sort.SliceStable(matches, func(i, j int) bool {
		si, sj := matches[i].EffectiveScore(), matches[j].EffectiveScore()
		if si != sj {
			return si > sj
		}
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})

	return &models.MatchReport{
		Matches:   matches,
		CVSummary: summary,
		Analysis:  m.analyze(ctx, cleaned, matches),
	}, nil
}

// rescore asks the LLM for corrected scores. On any failure the candidates
// come back unchanged, which preserves the vector ranking.
func (m *matcherService) rescore(ctx context.Context, cvText string, candidates []models.MatchResult) []models.MatchResult {
	rescoreCtx, cancel := context.WithTimeout(ctx, m.cfg.RescoreTimeout)
	defer cancel()

	prompt := m.promptBuilder.BuildRescorePrompt(cvText, candidates)

	response, err := m.gemini.GenerateTextWithRetry(rescoreCtx, prompt, 0.3, m.maxRetries)
	if err != nil {
		m.logger.Warn("rescoring failed, falling back to vector ranking", zap.Error(err))
		metrics.RescoreFallbacks.Inc()
		return candidates
	}

	entries, err := parseRescoreResponse(response)
	if err != nil {
		m.logger.Warn("rescoring response unparseable, falling back to vector ranking",
			zap.Error(err))
		metrics.RescoreFallbacks.Inc()
		return candidates
	}

	byID := make(map[string]rescoreEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	applied := 0
	for i := range candidates {
		entry, ok := byID[candidates[i].Job.ID.String()]
		if !ok {
			continue
		}
		score := clampScore(entry.Score)
		candidates[i].RescoredScore = &score
		candidates[i].RescoreReason = entry.Reason
		applied++
	}

	if applied == 0 {
		m.logger.Warn("rescoring matched no candidate ids, falling back to vector ranking")
		metrics.RescoreFallbacks.Inc()
	}

	return candidates
}

// analyze produces the free-text summary. Failures degrade to a notice; the
// match response itself never fails on this step.
func (m *matcherService) analyze(ctx context.Context, cvText string, matches []models.MatchResult) string {
	analysisCtx, cancel := context.WithTimeout(ctx, m.cfg.AnalysisTimeout)
	defer cancel()

	prompt := m.promptBuilder.BuildAnalysisPrompt(cvText, matches)

	analysis, err := m.gemini.GenerateTextWithRetry(analysisCtx, prompt, 0.5, m.maxRetries)
	if err != nil {
		m.logger.Warn("analysis generation failed", zap.Error(err))
		return "Match analysis is temporarily unavailable; the ranked results above are unaffected."
	}

	return strings.TrimSpace(analysis)
}

func parseRescoreResponse(response string) ([]rescoreEntry, error) {
	jsonStr := ExtractJSON(response)

	var entries []rescoreEntry
	if err := json.Unmarshal([]byte(jsonStr), &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rescore JSON: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("rescore response contained no entries")
	}

	return entries, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
