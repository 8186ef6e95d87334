package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// PDF renders PDF text with a pure Go reader. It needs no C toolchain but handles
// fewer font encodings than Fitz.
type PDF struct{}

// NewPDF creates a new PDF renderer
func NewPDF() *PDF {
	return &PDF{}
}

// RenderText extracts the plain text of every page
func (p *PDF) RenderText(ctx context.Context, data []byte, contentType string) (text string, err error) {
	// the reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading PDF: %v", r)
		}
	}()

	if mimeType := normalizeContentType(contentType); mimeType != "application/pdf" {
		return "", fmt.Errorf("unsupported content type for text rendering: %s", mimeType)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	pages := make([]string, r.NumPage())
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("Failed to extract page text", "page", i+1, "error", err)
			continue
		}
		pages[i] = text
	}

	return joinPages(pages), nil
}

// Close is a no-op
func (p *PDF) Close() error {
	return nil
}
