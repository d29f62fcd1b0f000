package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-tika/tika"
)

// TikaService extracts text from office formats (doc, docx) by delegating to
// an Apache Tika server. PDFs and plain text are parsed locally and never go
// through Tika.
type TikaService interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
	Enabled() bool
}

type tikaService struct {
	client *tika.Client
}

// NewTikaService returns a service bound to the given Tika server URL. An
// empty URL yields a disabled service; doc/docx extraction then fails with
// an explanatory error instead of a connection error.
func NewTikaService(serverURL string) TikaService {
	if serverURL == "" {
		return &tikaService{}
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	return &tikaService{
		client: tika.NewClient(httpClient, serverURL),
	}
}

func (t *tikaService) Enabled() bool {
	return t.client != nil
}

func (t *tikaService) ExtractText(ctx context.Context, data []byte) (string, error) {
	if t.client == nil {
		return "", fmt.Errorf("no tika server configured")
	}

	text, err := t.client.Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("tika parse: %w", err)
	}

	return text, nil
}
