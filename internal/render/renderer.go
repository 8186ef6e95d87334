package render

import (
	"context"
	"path/filepath"
	"strings"
)

// Renderer turns an uploaded document into plain text
type Renderer interface {
	// RenderText returns the text of every page of the document, in page order
	RenderText(ctx context.Context, data []byte, contentType string) (string, error)
	// Close releases any resources held by the renderer
	Close() error
}

// ContentTypeFor guesses a content type from a filename extension
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// normalizeContentType lowercases the media type and drops any parameters
func normalizeContentType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// joinPages concatenates page texts in order, one page per line block
func joinPages(pages []string) string {
	return strings.Join(pages, "\n")
}
