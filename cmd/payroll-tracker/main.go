package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

var errNoCommand = errors.New("a subcommand is required")

// rootConfig holds the flags shared by every subcommand
type rootConfig struct {
	verbose     *bool
	workers     *int
	renderer    *string
	transcriber *string
	minChars    *int
	geminiKey   *string
	geminiModel *string
	ollamaURL   *string
	ollamaModel *string
}

func newRootCommand() *ff.Command {
	fs := ff.NewFlagSet("payroll-tracker")
	cfg := &rootConfig{
		verbose:     fs.BoolLong("verbose", "Enable debug logging"),
		workers:     fs.IntLong("workers", 4, "Files rendered and extracted in parallel"),
		renderer:    fs.StringLong("renderer", "fitz", "PDF text renderer: 'fitz' or 'pdf'"),
		transcriber: fs.StringLong("transcriber", "none", "Transcriber for scans and images: 'none', 'gemini' or 'ollama'"),
		minChars:    fs.IntLong("min-text-chars", 20, "PDFs with less text than this are sent to the transcriber"),
		geminiKey:   fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)"),
		geminiModel: fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name"),
		ollamaURL:   fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL"),
		ollamaModel: fs.StringLong("ollama-model", "llava", "Ollama vision model name"),
	}
	_ = fs.BoolLong("version", "Show version information")

	root := &ff.Command{
		Name:      "payroll-tracker",
		Usage:     "payroll-tracker [FLAGS] <SUBCOMMAND> ...",
		ShortHelp: "totals Mexican payroll receipts, skipping duplicates",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			return errNoCommand
		},
	}
	root.Subcommands = []*ff.Command{
		newServeCommand(fs, cfg),
		newTallyCommand(fs, cfg, os.Stdout),
	}
	return root
}

// setupLogging installs the default text logger on stderr
func (c *rootConfig) setupLogging() {
	level := slog.LevelInfo
	if *c.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	err := root.ParseAndRun(ctx, os.Args[1:], ff.WithEnvVarPrefix("PAYROLL_TRACKER"))
	switch {
	case err == nil:
	case errors.Is(err, ff.ErrHelp):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
	default:
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
