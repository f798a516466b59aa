package render

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/resume"

	"go.uber.org/zap"
)

// GenerativeLaTeXRenderer lets the generative service fill the template
// directly, falling back to mechanical template filling whenever the response
// is unusable.
type GenerativeLaTeXRenderer struct {
	generator ai.Generator
	fallback  *LaTeXRenderer
	logger    *zap.Logger
}

func (r *GenerativeLaTeXRenderer) Render(record *resume.Record) ([]byte, error) {
	content, err := r.generate(context.Background(), record)
	if err != nil {
		r.logger.Warn("generative latex rendering failed, using template fill", zap.Error(err))
		return r.fallback.Render(record)
	}
	return content, nil
}

func (r *GenerativeLaTeXRenderer) generate(ctx context.Context, record *resume.Record) ([]byte, error) {
	recordJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	prompt := latexPrompt(r.fallback.template, string(recordJSON))

	response, err := r.generator.GenerateContent(ctx, prompt, &ai.Options{
		Temperature:      ai.Float32(0),
		TopP:             ai.Float32(0.5),
		TopK:             ai.Float32(40),
		MaxOutputTokens:  8192,
		ResponseMIMEType: "text/plain",
	})
	if err != nil {
		return nil, err
	}

	content := stripLaTeXFences(response)
	if !strings.Contains(content, `\documentclass`) {
		return nil, fmt.Errorf("response is not a latex document")
	}

	return []byte(content), nil
}

func latexPrompt(template, recordJSON string) string {
	sections := sectionHeading.FindAllStringSubmatch(template, -1)
	commented := commentedHeading.FindAllStringSubmatch(template, -1)

	return fmt.Sprintf(`You are an expert LaTeX document generator. Create a well-formatted resume in LaTeX using this template structure.

TEMPLATE SECTIONS:
%s

COMMENTED SECTIONS (can be uncommented):
%s

JSON RESUME DATA:
%s

CURRENT TEMPLATE STRUCTURE:
%s

Requirements:
1. Keep the document class and package definitions exactly as they are
2. Use the \name{} command for the person's name from contact_info
3. Use the \address{} commands for contact information
4. Fill each rSection with appropriate content from the JSON data
5. Escape LaTeX special characters (_, %%, $, #, &) in all content
6. Keep the template's style and spacing
7. Keep the \begin{document} and \end{document} structure
8. Keep address lines short; for long URLs use \href{url}{short text}

Return ONLY the complete LaTeX document with no additional text before or after.`,
		headingNames(sections), headingNames(commented), recordJSON, template)
}

func headingNames(matches [][]string) string {
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}
	return strings.Join(names, ", ")
}

var latexFence = regexp.MustCompile("(?s)```(?:latex)?\\s*(.+?)\\s*```")

func stripLaTeXFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	if match := latexFence.FindStringSubmatch(s); match != nil {
		return match[1]
	}
	s = strings.ReplaceAll(s, "```latex", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
