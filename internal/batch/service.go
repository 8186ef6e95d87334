package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/payroll-tracker/internal/export"
	"github.com/zombor/payroll-tracker/internal/payroll"
	"github.com/zombor/payroll-tracker/internal/render"
)

// Export formats understood by ExportBatch
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// IDGenerator generates unique IDs for batches
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles batch operations
type Service struct {
	db          DB
	renderer    render.Renderer
	storage     Storage
	pipeline    *payroll.Pipeline
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, renderer render.Renderer, storage Storage, workers int) *Service {
	return NewServiceWithDeps(db, renderer, storage, payroll.NewPipeline(workers), &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, renderer render.Renderer, storage Storage, pipeline *payroll.Pipeline, idGen IDGenerator, timeSrc TimeSource) *Service {
	if pipeline == nil {
		pipeline = payroll.NewPipeline(1)
	}
	return &Service{
		db:          db,
		renderer:    renderer,
		storage:     storage,
		pipeline:    pipeline,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename for storage
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(filename))
	if strings.ContainsAny(ext, ` /\`) || len(ext) > 10 {
		ext = ""
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeChars.ReplaceAllString(base, "")
	base = spaceRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "recibo"
	}
	return base + ext
}

// contentTypeOf prefers the declared content type unless it is generic
func contentTypeOf(u Upload) string {
	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if ct == "" || ct == "application/octet-stream" {
		return render.ContentTypeFor(u.Filename)
	}
	return ct
}

// renderAll renders every upload, keeping upload order. A file that cannot
// be rendered contributes empty text so it still shows up in the report.
func (s *Service) renderAll(ctx context.Context, uploads []Upload, files []File) ([]payroll.Document, error) {
	docs := make([]payroll.Document, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.pipeline.Workers, 1))
	for i, u := range uploads {
		g.Go(func() error {
			text, err := s.renderer.RenderText(gctx, u.Data, files[i].ContentType)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Warn("Failed to render file",
					"filename", u.Filename,
					"content_type", files[i].ContentType,
					"file_size", len(u.Data),
					"error", err,
				)
				files[i].RenderError = err.Error()
				text = ""
			}
			files[i].TextChars = len(text)
			docs[i] = payroll.Document{Name: u.Filename, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rendering files: %w", err)
	}
	return docs, nil
}

// ProcessBatch renders, extracts and deduplicates a set of uploads and archives the result
func (s *Service) ProcessBatch(ctx context.Context, uploads []Upload) (*Batch, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	files := make([]File, len(uploads))
	for i, u := range uploads {
		files[i] = File{
			Name:        u.Filename,
			ContentType: contentTypeOf(u),
			Size:        len(u.Data),
		}
	}

	docs, err := s.renderAll(ctx, uploads, files)
	if err != nil {
		return nil, err
	}

	report := s.pipeline.Run(docs)
	for _, r := range report.Rejected {
		slog.Info("Duplicate receipt skipped",
			"batch_id", id,
			"identifier", r.Identifier,
			"source", r.Source,
			"original", r.Original,
		)
	}

	// Index prefix keeps two uploads with the same name apart
	for i, u := range uploads {
		stored, err := s.storage.Save(id, fmt.Sprintf("%03d_%s", i+1, sanitizeFilename(u.Filename)), u.Data)
		if err != nil {
			s.cleanupFiles(id)
			return nil, fmt.Errorf("saving file: %w", err)
		}
		files[i].StoredAs = stored
	}

	batch := &Batch{
		ID:        id,
		CreatedAt: now,
		Files:     files,
		Report:    report,
	}

	if err := s.db.SaveBatch(batch); err != nil {
		// Clean up files if database save fails
		s.cleanupFiles(id)
		return nil, fmt.Errorf("saving batch to database: %w", err)
	}

	slog.Info("Batch processed",
		"batch_id", id,
		"files", len(uploads),
		"accepted", len(report.Accepted),
		"rejected", len(report.Rejected),
	)
	return batch, nil
}

func (s *Service) cleanupFiles(id string) {
	if err := s.storage.DeleteBatch(id); err != nil {
		slog.Warn("Failed to clean up batch files", "batch_id", id, "error", err)
	}
}

// GetBatch retrieves a batch by ID
func (s *Service) GetBatch(id string) (*Batch, error) {
	batch, err := s.db.GetBatch(id)
	if err != nil {
		return nil, fmt.Errorf("getting batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns all batches, newest first
func (s *Service) ListBatches() ([]*Batch, error) {
	batches, err := s.db.ListBatches()
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].CreatedAt.After(batches[j].CreatedAt)
	})
	return batches, nil
}

// DeleteBatch removes a batch and its files
func (s *Service) DeleteBatch(id string) error {
	if _, err := s.db.GetBatch(id); err != nil {
		return fmt.Errorf("getting batch for deletion: %w", err)
	}

	if err := s.storage.DeleteBatch(id); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete batch files", "batch_id", id, "error", err)
	}

	if err := s.db.DeleteBatch(id); err != nil {
		return fmt.Errorf("deleting batch from database: %w", err)
	}
	return nil
}

// GetBatchFile retrieves one original upload of a batch by its stored name
func (s *Service) GetBatchFile(id, name string) ([]byte, string, error) {
	batch, err := s.db.GetBatch(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting batch: %w", err)
	}

	for _, f := range batch.Files {
		if path.Base(f.StoredAs) != name {
			continue
		}
		data, err := s.storage.Get(f.StoredAs)
		if err != nil {
			return nil, "", fmt.Errorf("getting batch file: %w", err)
		}
		return data, f.ContentType, nil
	}
	return nil, "", fmt.Errorf("file %s in batch %s: %w", name, id, ErrNotFound)
}

// ExportBatch renders the batch report as csv or xlsx
func (s *Service) ExportBatch(id, format string) ([]byte, string, error) {
	var write func(*bytes.Buffer, payroll.BatchReport) error
	var contentType string
	switch format {
	case FormatCSV:
		write = func(buf *bytes.Buffer, r payroll.BatchReport) error { return export.WriteCSV(buf, r.Accepted) }
		contentType = csvContentType
	case FormatXLSX:
		write = func(buf *bytes.Buffer, r payroll.BatchReport) error { return export.WriteXLSX(buf, r) }
		contentType = xlsxContentType
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	batch, err := s.db.GetBatch(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting batch: %w", err)
	}

	var buf bytes.Buffer
	if err := write(&buf, batch.Report); err != nil {
		return nil, "", fmt.Errorf("exporting batch %s as %s: %w", id, format, err)
	}
	return buf.Bytes(), contentType, nil
}

// IsNotFound reports whether err means a batch or file is missing
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
