package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EmbedResult is the outcome of embedding one text of a batch.
type EmbedResult struct {
	Index     int
	Embedding []float32
	Err       error
}

// EmbedPool embeds batches of texts with bounded concurrency so bulk job
// ingestion does not serialize on the embedding API.
type EmbedPool interface {
	EmbedBatch(ctx context.Context, texts []string) []EmbedResult
}

type embedPool struct {
	gemini      GeminiService
	concurrency int
	logger      *zap.Logger
}

func NewEmbedPool(gemini GeminiService, concurrency int, logger *zap.Logger) EmbedPool {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &embedPool{
		gemini:      gemini,
		concurrency: concurrency,
		logger:      logger,
	}
}

// EmbedBatch implements EmbedPool. Results are returned in input order; a
// failed item carries its error and does not abort the rest of the batch.
func (p *embedPool) EmbedBatch(ctx context.Context, texts []string) []EmbedResult {
	results := make([]EmbedResult, len(texts))
	jobs := make(chan int, len(texts))

	var wg sync.WaitGroup
	workers := p.concurrency
	if workers > len(texts) {
		workers = len(texts)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				embedding, err := p.gemini.GenerateEmbedding(ctx, texts[i])
				if err != nil {
					p.logger.Warn("batch embedding failed",
						zap.Int("index", i),
						zap.Error(err))
				}
				results[i] = EmbedResult{Index: i, Embedding: embedding, Err: err}
			}
		}()
	}

	for i := range texts {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return results
}
