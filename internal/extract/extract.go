// Package extract pulls plain text out of resume and job description inputs
// and, with the generative service, turns resume text into a structured
// record.
package extract

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/repair"
	"github.com/resumetools/resume-optimizer/internal/resume"

	"go.uber.org/zap"
)

//go:embed prompt.md
var structuredPrompt string

// Text extracts plain text from the file at path. PDF and DOCX inputs are
// parsed; anything else is read as plain text.
func Text(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("input file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdfText(path)
	case ".docx":
		return docxText(path)
	default:
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(content), nil
	}
}

// JobDescription resolves the job description input: a path to a .txt, .pdf
// or .docx file is read and parsed, anything else is treated as the literal
// description text.
func JobDescription(input string) (string, error) {
	if _, err := os.Stat(input); err != nil {
		return input, nil
	}

	switch strings.ToLower(filepath.Ext(input)) {
	case ".txt", ".pdf", ".docx":
		return Text(input)
	default:
		return input, nil
	}
}

func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer file.Close()

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d of %s: %w", pageNum, path, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func docxText(path string) (string, error) {
	reader, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer reader.Close()

	return flattenDocxXML(reader.Editable().GetContent()), nil
}

// flattenDocxXML strips WordprocessingML markup, inserting line breaks at
// paragraph boundaries.
func flattenDocxXML(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	var builder strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// StructuredExtractor turns plain resume text into a structured record with
// the generative service.
type StructuredExtractor struct {
	generator ai.Generator
	engine    *repair.Engine
	logger    *zap.Logger
}

func NewStructuredExtractor(generator ai.Generator, engine *repair.Engine, logger *zap.Logger) *StructuredExtractor {
	return &StructuredExtractor{generator: generator, engine: engine, logger: logger}
}

// Structured parses resume text into a record. Like the rewrite stage it is
// total: failures degrade to the placeholder fallback record.
func (e *StructuredExtractor) Structured(ctx context.Context, text string) *resume.Record {
	fallback := resume.Fallback(nil)

	prompt := strings.Replace(structuredPrompt, "{{RESUME_TEXT}}", text, 1)

	raw, err := e.generator.GenerateContent(ctx, prompt, &ai.Options{
		Temperature:      ai.Float32(0.2),
		TopP:             ai.Float32(0.95),
		TopK:             ai.Float32(40),
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		e.logger.Warn("structured extraction failed, using fallback record", zap.Error(err))
		return fallback
	}

	return e.engine.Repair(ctx, raw, fallback)
}
