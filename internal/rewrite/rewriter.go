// Package rewrite produces a job-tailored version of a resume record with the
// generative service. The operation is total: any failure along the way
// degrades to a fallback record instead of an error.
package rewrite

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/analysis"
	"github.com/resumetools/resume-optimizer/internal/repair"
	"github.com/resumetools/resume-optimizer/internal/resume"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

// Rewriter asks the generative service for an optimized resume and repairs
// whatever comes back.
type Rewriter struct {
	generator ai.Generator
	engine    *repair.Engine
	logger    *zap.Logger
}

func New(generator ai.Generator, engine *repair.Engine, logger *zap.Logger) *Rewriter {
	return &Rewriter{generator: generator, engine: engine, logger: logger}
}

// Rewrite returns the optimized record. It never returns an error: when the
// generative call fails, or the response cannot be repaired, the result is a
// minimal fallback derived from the original record.
func (r *Rewriter) Rewrite(ctx context.Context, original *resume.Record, jobDescription string, assessment analysis.Assessment) *resume.Record {
	fallback := resume.Fallback(original)

	prompt, err := buildPrompt(original, jobDescription, assessment)
	if err != nil {
		r.logger.Warn("could not build rewrite prompt", zap.Error(err))
		return fallback
	}

	raw, err := r.generator.GenerateContent(ctx, prompt, &ai.Options{
		Temperature:      ai.Float32(0.2),
		TopP:             ai.Float32(0.95),
		TopK:             ai.Float32(40),
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		r.logger.Warn("rewrite generation failed, using fallback record", zap.Error(err))
		return fallback
	}

	return r.engine.Repair(ctx, raw, fallback)
}

func buildPrompt(original *resume.Record, jobDescription string, assessment analysis.Assessment) (string, error) {
	resumeJSON, err := json.MarshalIndent(original, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal original resume: %w", err)
	}

	missing := "none identified"
	if len(assessment.MissingSkills) > 0 {
		missing = strings.Join(assessment.MissingSkills, ", ")
	}

	replacer := strings.NewReplacer(
		"{{RESUME_JSON}}", string(resumeJSON),
		"{{JOB_DESCRIPTION}}", jobDescription,
		"{{MATCH_SCORE}}", fmt.Sprintf("%.2f", assessment.Score),
		"{{MISSING_SKILLS}}", missing,
	)

	return replacer.Replace(promptTemplate), nil
}
