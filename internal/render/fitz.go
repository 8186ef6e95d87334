package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gen2brain/go-fitz"
)

// Fitz renders PDF text with MuPDF
type Fitz struct{}

// NewFitz creates a new Fitz renderer
func NewFitz() *Fitz {
	return &Fitz{}
}

// RenderText extracts the text layer of every page. A page that cannot be read
// contributes an empty string rather than failing the document.
func (f *Fitz) RenderText(ctx context.Context, data []byte, contentType string) (string, error) {
	if mimeType := normalizeContentType(contentType); mimeType != "application/pdf" {
		return "", fmt.Errorf("unsupported content type for text rendering: %s", mimeType)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, doc.NumPage())
	for n := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(n)
		if err != nil {
			slog.Warn("Failed to extract page text", "page", n+1, "error", err)
			continue
		}
		pages[n] = text
	}

	return joinPages(pages), nil
}

// Close is a no-op; documents are closed after each render
func (f *Fitz) Close() error {
	return nil
}
