// Package render turns a structured resume record into output documents.
// Two formats are supported: a Word document and a LaTeX source file meant
// for pdflatex.
package render

import (
	"fmt"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/resume"

	"go.uber.org/zap"
)

// Output formats. FormatLaTeX produces .tex source meant for pdflatex.
const (
	FormatLaTeX = "latex"
	FormatDOCX  = "docx"
)

// Config carries renderer tuning.
type Config struct {
	// SkillOrder is the category flattening order for skill maps.
	SkillOrder []string
	// TemplateFile overrides the embedded LaTeX template.
	TemplateFile string
	// UseAI enables generative LaTeX filling with template-based fallback.
	UseAI bool
}

// Renderer produces the bytes of one output document from a record.
type Renderer interface {
	Render(record *resume.Record) ([]byte, error)
}

// New builds the renderer for the requested format. The generator is only
// used by the LaTeX renderer when cfg.UseAI is set; it may be nil otherwise.
func New(format string, cfg *Config, generator ai.Generator, logger *zap.Logger) (Renderer, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	switch format {
	case FormatDOCX:
		return &DocxRenderer{skillOrder: cfg.SkillOrder}, nil
	case FormatLaTeX:
		latex, err := NewLaTeXRenderer(cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.UseAI && generator != nil {
			return &GenerativeLaTeXRenderer{
				generator: generator,
				fallback:  latex,
				logger:    logger,
			}, nil
		}
		return latex, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
