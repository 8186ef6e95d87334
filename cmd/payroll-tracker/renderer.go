package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zombor/payroll-tracker/internal/render"
)

// newRenderer builds the text renderer, wrapped with the optional transcriber
func (c *rootConfig) newRenderer() (render.Renderer, error) {
	var text render.Renderer
	switch *c.renderer {
	case "fitz":
		text = render.NewFitz()
	case "pdf":
		text = render.NewPDF()
	default:
		return nil, fmt.Errorf("invalid renderer %q: valid values are fitz or pdf", *c.renderer)
	}

	var transcriber render.Renderer
	switch *c.transcriber {
	case "none", "":
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *c.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini transcriber...", "model", *c.geminiModel)
		g, err := render.NewGemini(apiKey, *c.geminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini: %w", err)
		}
		transcriber = g
	case "ollama":
		slog.Info("Initializing Ollama transcriber...", "url", *c.ollamaURL, "model", *c.ollamaModel)
		o, err := render.NewOllama(*c.ollamaURL, *c.ollamaModel)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama: %w", err)
		}
		transcriber = o
	default:
		return nil, fmt.Errorf("invalid transcriber %q: valid values are none, gemini or ollama", *c.transcriber)
	}

	auto := render.NewAuto(text, transcriber)
	auto.MinTextChars = *c.minChars
	slog.Debug("Renderer ready", "renderer", *c.renderer, "transcriber", *c.transcriber, "min_text_chars", auto.MinTextChars)
	return auto, nil
}
