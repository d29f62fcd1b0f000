package models

import (
	"fmt"

	"alfredoptarigan/job-matcher/internal/apperrors"
)

// ErrMissingField wraps apperrors.ErrValidation with the offending field.
func ErrMissingField(field string) error {
	return fmt.Errorf("%w: %s is required", apperrors.ErrValidation, field)
}

type MatchJobsRequest struct {
	CVText string `json:"cv_text"`
	TopK   int    `json:"top_k"`
}

type MatchReport struct {
	Matches   []MatchResult `json:"matches"`
	CVSummary CVSummary     `json:"cv_summary"`
	Analysis  string        `json:"analysis"`
}

// BulkInsertResult reports the outcome for one record of a bulk ingestion.
type BulkInsertResult struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type BulkInsertReport struct {
	Inserted int                `json:"inserted"`
	Failed   int                `json:"failed"`
	Results  []BulkInsertResult `json:"results"`
}

type ChatRequest struct {
	Message     string     `json:"message"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type CollectionStatsResponse struct {
	Collection  string `json:"collection"`
	VectorCount uint64 `json:"vector_count"`
	CatalogRows int64  `json:"catalog_rows"`
}
