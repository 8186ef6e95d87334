package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

// DefaultMinTextChars is the amount of non-space text below which a PDF is treated as scanned
const DefaultMinTextChars = 20

// Auto picks a renderer per document. Plain text passes through, PDFs go to the text
// renderer, and images or PDFs without a usable text layer go to the transcriber.
type Auto struct {
	Text         Renderer
	Transcriber  Renderer // optional
	MinTextChars int
}

// NewAuto creates an Auto renderer. transcriber may be nil.
func NewAuto(text, transcriber Renderer) *Auto {
	return &Auto{
		Text:         text,
		Transcriber:  transcriber,
		MinTextChars: DefaultMinTextChars,
	}
}

// RenderText implements Renderer
func (a *Auto) RenderText(ctx context.Context, data []byte, contentType string) (string, error) {
	mimeType := normalizeContentType(contentType)

	switch {
	case mimeType == "text/plain":
		return string(data), nil
	case strings.HasPrefix(mimeType, "image/"):
		if a.Transcriber == nil {
			return "", fmt.Errorf("no transcriber configured for %s", mimeType)
		}
		return a.Transcriber.RenderText(ctx, data, mimeType)
	}

	if a.Text == nil {
		return "", fmt.Errorf("no text renderer configured for %s", mimeType)
	}
	text, err := a.Text.RenderText(ctx, data, mimeType)
	if a.Transcriber == nil || errors.Is(err, context.Canceled) {
		return text, err
	}
	if err == nil && visibleChars(text) >= a.MinTextChars {
		return text, nil
	}

	slog.Info("Text layer missing or too short, transcribing", "content_type", mimeType, "chars", visibleChars(text), "error", err)
	transcribed, terr := a.Transcriber.RenderText(ctx, data, mimeType)
	if terr != nil {
		if err != nil {
			return "", errors.Join(err, terr)
		}
		// keep what the text layer had
		slog.Warn("Transcription failed", "error", terr)
		return text, nil
	}
	return transcribed, nil
}

// Close closes both renderers
func (a *Auto) Close() error {
	var errs []error
	if a.Text != nil {
		errs = append(errs, a.Text.Close())
	}
	if a.Transcriber != nil {
		errs = append(errs, a.Transcriber.Close())
	}
	return errors.Join(errs...)
}

func visibleChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
