package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// embedFnGemini routes embedding calls through a per-text function so a
// batch can mix successes and failures.
type embedFnGemini struct {
	fn func(text string) ([]float32, error)
}

func (g *embedFnGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return g.fn(text)
}

func (g *embedFnGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return "", nil
}

func (g *embedFnGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return "", nil
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	gemini := &embedFnGemini{
		fn: func(text string) ([]float32, error) {
			// Encode the text length so each result is distinguishable.
			return []float32{float32(len(text))}, nil
		},
	}

	pool := NewEmbedPool(gemini, 3, zap.NewNop())

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	results := pool.EmbedBatch(context.Background(), texts)

	if len(results) != len(texts) {
		t.Fatalf("expected %d results, got %d", len(texts), len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d carries index %d", i, res.Index)
		}
		if res.Err != nil {
			t.Errorf("result %d unexpected error: %v", i, res.Err)
		}
		if len(res.Embedding) != 1 || res.Embedding[0] != float32(len(texts[i])) {
			t.Errorf("result %d does not match input %q", i, texts[i])
		}
	}
}

func TestEmbedBatchPartialFailure(t *testing.T) {
	gemini := &embedFnGemini{
		fn: func(text string) ([]float32, error) {
			if strings.Contains(text, "bad") {
				return nil, errors.New("embedding rejected")
			}
			return []float32{1}, nil
		},
	}

	pool := NewEmbedPool(gemini, 2, zap.NewNop())

	results := pool.EmbedBatch(context.Background(), []string{"ok", "bad one", "ok too"})

	if results[0].Err != nil || results[2].Err != nil {
		t.Error("healthy items should not fail")
	}
	if results[1].Err == nil {
		t.Error("failed item should carry its error")
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	pool := NewEmbedPool(&embedFnGemini{fn: func(string) ([]float32, error) {
		return nil, fmt.Errorf("must not be called")
	}}, 2, zap.NewNop())

	if got := pool.EmbedBatch(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestEmbedBatchZeroConcurrencyStillWorks(t *testing.T) {
	gemini := &embedFnGemini{fn: func(string) ([]float32, error) {
		return []float32{1}, nil
	}}

	pool := NewEmbedPool(gemini, 0, zap.NewNop())

	results := pool.EmbedBatch(context.Background(), []string{"x", "y"})
	if len(results) != 2 || results[0].Err != nil || results[1].Err != nil {
		t.Errorf("unexpected results: %+v", results)
	}
}
