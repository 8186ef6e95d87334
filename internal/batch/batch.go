package batch

import (
	"errors"
	"time"

	"github.com/zombor/payroll-tracker/internal/payroll"
)

var (
	// ErrNotFound is returned when a batch or one of its files does not exist
	ErrNotFound = errors.New("not found")
	// ErrNoFiles is returned when a batch is submitted without any files
	ErrNoFiles = errors.New("at least one file is required")
	// ErrUnsupportedFormat is returned for unknown export formats
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Upload is one file submitted as part of a batch
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// File describes an uploaded file kept with a batch
type File struct {
	Name        string `json:"name"`      // original filename, as shown in the report
	StoredAs    string `json:"stored_as"` // path in storage
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	TextChars   int    `json:"text_chars"` // length of the rendered text
	RenderError string `json:"render_error,omitempty"`
}

// Batch is a processed set of payroll receipts and its report
type Batch struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Files     []File         `json:"files"`
	Report    payroll.BatchReport `json:"report"`
}
