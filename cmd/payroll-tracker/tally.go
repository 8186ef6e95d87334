package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/peterbourgon/ff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/payroll-tracker/internal/export"
	"github.com/zombor/payroll-tracker/internal/payroll"
	"github.com/zombor/payroll-tracker/internal/render"
)

func newTallyCommand(parent *ff.FlagSet, cfg *rootConfig, stdout io.Writer) *ff.Command {
	fs := ff.NewFlagSet("tally").SetParent(parent)
	var (
		csvPath  = fs.StringLong("csv", "", "Also write accepted receipts to this CSV file")
		xlsxPath = fs.StringLong("xlsx", "", "Also write the report to this XLSX workbook")
	)

	return &ff.Command{
		Name:      "tally",
		Usage:     "payroll-tracker tally [FLAGS] FILE...",
		ShortHelp: "total a batch of receipt files and print the summary",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg.setupLogging()
			if len(args) == 0 {
				return fmt.Errorf("at least one receipt file is required")
			}

			renderer, err := cfg.newRenderer()
			if err != nil {
				return err
			}
			defer renderer.Close()

			report, err := tally(ctx, renderer, *cfg.workers, args)
			if err != nil {
				return err
			}

			if err := export.WriteSummary(stdout, report); err != nil {
				return fmt.Errorf("writing summary: %w", err)
			}
			if *csvPath != "" {
				if err := writeFile(*csvPath, func(w io.Writer) error { return export.WriteCSV(w, report.Accepted) }); err != nil {
					return err
				}
			}
			if *xlsxPath != "" {
				if err := writeFile(*xlsxPath, func(w io.Writer) error { return export.WriteXLSX(w, report) }); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// tally renders every file in argument order and runs them through the pipeline as one batch.
// Files that cannot be read or rendered are still reported, with an unknown identifier.
func tally(ctx context.Context, renderer render.Renderer, workers int, paths []string) (payroll.BatchReport, error) {
	docs := make([]payroll.Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			name := filepath.Base(path)
			data, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("Failed to read file", "path", path, "error", err)
				docs[i] = payroll.Document{Name: name}
				return nil
			}
			text, err := renderer.RenderText(gctx, data, render.ContentTypeFor(name))
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Warn("Failed to render file", "path", path, "error", err)
				text = ""
			}
			docs[i] = payroll.Document{Name: name, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.BatchReport{}, err
	}

	return payroll.NewPipeline(workers).Run(docs), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	slog.Info("Wrote export", "path", path)
	return nil
}
