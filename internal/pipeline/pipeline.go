// Package pipeline drives a full optimization run: extract, assess, rewrite,
// render. Stages run sequentially and each logs its outcome; a stage failure
// short-circuits the run unless the stage owns a fallback.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/analysis"
	"github.com/resumetools/resume-optimizer/internal/extract"
	"github.com/resumetools/resume-optimizer/internal/render"
	"github.com/resumetools/resume-optimizer/internal/repair"
	"github.com/resumetools/resume-optimizer/internal/resume"
	"github.com/resumetools/resume-optimizer/internal/rewrite"

	"go.uber.org/zap"
)

// Options configures one optimization run.
type Options struct {
	// ResumePath points at the input resume (pdf, docx or plain text).
	ResumePath string
	// JobInput is a job description file path or the literal text.
	JobInput string
	// OutputStem is the output path without extension.
	OutputStem string
	// Format is "pdf" or "docx".
	Format string
	// Debug additionally writes the optimized record as <stem>.json.
	Debug bool

	JobKeywords    int
	ResumeKeywords int

	Render *render.Config
}

// Pipeline wires the stages around a shared generative client.
type Pipeline struct {
	generator ai.Generator
	opts      Options
	logger    *zap.Logger
}

func New(generator ai.Generator, opts Options, logger *zap.Logger) *Pipeline {
	if opts.Render == nil {
		opts.Render = &render.Config{}
	}
	return &Pipeline{generator: generator, opts: opts, logger: logger}
}

// state carries the intermediate artifacts between stages.
type state struct {
	resumeText string
	jobText    string
	original   *resume.Record
	assessment analysis.Assessment
	optimized  *resume.Record
}

type stage struct {
	name string
	run  func(ctx context.Context, st *state) error
}

// Run executes all stages. The returned error names the failing stage.
func (p *Pipeline) Run(ctx context.Context) error {
	st := &state{}

	stages := []stage{
		{"extract resume text", p.extractResume},
		{"read job description", p.readJobDescription},
		{"extract structured resume", p.extractStructured},
		{"assess match", p.assess},
		{"rewrite resume", p.rewrite},
		{"render output", p.render},
	}

	for _, s := range stages {
		if err := s.run(ctx, st); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		p.logger.Info("pipeline stage complete", zap.String("name", s.name))
	}

	return nil
}

func (p *Pipeline) extractResume(_ context.Context, st *state) error {
	text, err := extract.Text(p.opts.ResumePath)
	if err != nil {
		return err
	}
	st.resumeText = text

	// Keep the raw text next to the outputs for inspection.
	dump := filepath.Join(filepath.Dir(p.opts.OutputStem), "resume_text.txt")
	if err := os.WriteFile(dump, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write text dump: %w", err)
	}

	return nil
}

func (p *Pipeline) readJobDescription(_ context.Context, st *state) error {
	text, err := extract.JobDescription(p.opts.JobInput)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("job description is empty")
	}
	st.jobText = text
	return nil
}

func (p *Pipeline) extractStructured(ctx context.Context, st *state) error {
	extractor := extract.NewStructuredExtractor(p.generator, repair.New(p.generator, p.logger), p.logger)
	st.original = extractor.Structured(ctx, st.resumeText)
	return nil
}

func (p *Pipeline) assess(_ context.Context, st *state) error {
	st.assessment = analysis.Assess(st.jobText, st.resumeText, p.opts.JobKeywords, p.opts.ResumeKeywords)

	p.logger.Info("match assessed",
		zap.Float64("score", st.assessment.Score),
		zap.Strings("missing_skills", st.assessment.MissingSkills),
	)
	return nil
}

func (p *Pipeline) rewrite(ctx context.Context, st *state) error {
	rewriter := rewrite.New(p.generator, repair.New(p.generator, p.logger), p.logger)
	st.optimized = rewriter.Rewrite(ctx, st.original, st.jobText, st.assessment)

	if p.opts.Debug {
		data, err := json.MarshalIndent(st.optimized, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal debug dump: %w", err)
		}
		debugFile := p.opts.OutputStem + ".json"
		if err := os.WriteFile(debugFile, data, 0o644); err != nil {
			return fmt.Errorf("write debug dump: %w", err)
		}
		p.logger.Info("debug dump written", zap.String("path", debugFile))
	}

	return nil
}

func (p *Pipeline) render(ctx context.Context, st *state) error {
	switch p.opts.Format {
	case "docx":
		return p.renderDocx(st)
	case "pdf":
		return p.renderPDF(ctx, st)
	default:
		return fmt.Errorf("unsupported output format %q", p.opts.Format)
	}
}

func (p *Pipeline) renderDocx(st *state) error {
	renderer, err := render.New(render.FormatDOCX, p.opts.Render, p.generator, p.logger)
	if err != nil {
		return err
	}

	data, err := renderer.Render(st.optimized)
	if err != nil {
		return err
	}

	out := p.opts.OutputStem + ".docx"
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	p.logger.Info("document written", zap.String("path", out))
	return nil
}

func (p *Pipeline) renderPDF(ctx context.Context, st *state) error {
	renderer, err := render.New(render.FormatLaTeX, p.opts.Render, p.generator, p.logger)
	if err != nil {
		return err
	}

	data, err := renderer.Render(st.optimized)
	if err != nil {
		return err
	}

	texFile := p.opts.OutputStem + ".tex"
	if err := os.WriteFile(texFile, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", texFile, err)
	}
	p.logger.Info("latex source written", zap.String("path", texFile))

	// The .tex compiles against the bundled class; place it alongside
	// unless one is already there.
	clsFile := filepath.Join(filepath.Dir(texFile), "resume.cls")
	if _, err := os.Stat(clsFile); os.IsNotExist(err) {
		if err := os.WriteFile(clsFile, render.ClassFile(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", clsFile, err)
		}
	}

	if err := p.compilePDF(ctx, texFile); err != nil {
		return err
	}

	p.logger.Info("document written", zap.String("path", p.opts.OutputStem+".pdf"))
	return nil
}
