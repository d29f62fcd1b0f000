package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/job-matcher/internal/apperrors"
)

// DocumentExtractor converts uploaded CV bytes into cleaned plain text.
// Extraction failures are terminal for the request; there is no retry.
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

type documentExtractor struct {
	tika TikaService
}

func NewDocumentExtractor(tika TikaService) DocumentExtractor {
	return &documentExtractor{tika: tika}
}

func (e *documentExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", apperrors.ErrExtraction)
	}

	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = e.extractPDF(data)
	case ".txt":
		text, err = extractPlainText(data)
	case ".doc", ".docx":
		text, err = e.extractOffice(ctx, data)
	default:
		return "", fmt.Errorf("%w: %s (supported: pdf, doc, docx, txt)",
			apperrors.ErrUnsupportedFormat, filepath.Ext(filename))
	}

	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrExtraction, err)
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", fmt.Errorf("%w: no text content found in %s", apperrors.ErrExtraction, filename)
	}

	return cleaned, nil
}

func (e *documentExtractor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

func (e *documentExtractor) extractOffice(ctx context.Context, data []byte) (string, error) {
	if !e.tika.Enabled() {
		return "", fmt.Errorf("doc/docx extraction requires a Tika server (set TIKA_URL)")
	}
	return e.tika.ExtractText(ctx, data)
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		// Salvage what we can; invalid sequences become replacement runes
		// which CleanText strips.
		return strings.ToValidUTF8(string(data), " "), nil
	}
	return string(data), nil
}

// CleanText strips non-printable bytes and collapses repeated whitespace
// while keeping the line structure readable.
func CleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == unicode.ReplacementChar:
			b.WriteRune(' ')
		case unicode.IsControl(r) || !unicode.IsPrint(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	var cleanedLines []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
