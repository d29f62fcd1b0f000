// Package apperrors defines the sentinel errors shared across the matching
// pipeline. Handlers translate them into HTTP responses with human-readable
// reasons; nothing above the handler layer ever sees a raw stack trace.
package apperrors

import "errors"

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not one of
	// the supported CV formats (pdf, doc, docx, txt).
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction is returned when a supported file yields no usable text
	// (corrupt, password-protected, or empty).
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding is returned when the embedding model call fails.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrStoreUnavailable is returned when the vector database cannot be
	// reached. Callers may retry the request.
	ErrStoreUnavailable = errors.New("job store unavailable")

	// ErrLLM is returned when a chat or analysis LLM call fails. Rescoring
	// failures are never surfaced as this error; the matcher falls back to
	// the vector ranking instead.
	ErrLLM = errors.New("language model call failed")

	// ErrValidation is returned for malformed request bodies.
	ErrValidation = errors.New("invalid request")
)
