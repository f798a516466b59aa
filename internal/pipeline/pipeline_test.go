package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/resumetools/resume-optimizer/internal/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response string
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string, _ *ai.Options) (string, error) {
	return s.response, nil
}

const stubResumeJSON = `{
  "contact_info": {"name": "Ann Chen", "email": "ann@example.com", "phone": "555-1234", "location": "Austin, TX"},
  "summary": "Backend engineer with a platform focus.",
  "skills": ["Go", "Kubernetes", "PostgreSQL"],
  "experience": [{"title": "Senior Engineer", "company": "Acme", "dates": "2021 - Present", "description": ["Led the Kubernetes migration."]}],
  "education": [{"degree": "BSc Computer Science", "institution": "State University", "dates": "2013 - 2017"}]
}`

func writeResume(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "resume.txt")
	content := "Ann Chen\nBackend engineer.\nSkills: Go, Kubernetes, PostgreSQL.\nSenior Engineer at Acme."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipelineDocxRun(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "optimized_resume")

	p := New(&stubGenerator{response: stubResumeJSON}, Options{
		ResumePath: writeResume(t, dir),
		JobInput:   "We need a Go engineer with Kubernetes and Terraform experience.",
		OutputStem: stem,
		Format:     "docx",
	}, zap.NewNop())

	require.NoError(t, p.Run(context.Background()))

	assert.FileExists(t, stem+".docx")
	assert.FileExists(t, filepath.Join(dir, "resume_text.txt"))
}

func TestPipelineDebugDump(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "optimized_resume")

	p := New(&stubGenerator{response: stubResumeJSON}, Options{
		ResumePath: writeResume(t, dir),
		JobInput:   "Go engineer role.",
		OutputStem: stem,
		Format:     "docx",
		Debug:      true,
	}, zap.NewNop())

	require.NoError(t, p.Run(context.Background()))

	data, err := os.ReadFile(stem + ".json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ann Chen")
}

func TestPipelineMissingEngineKeepsLatexSource(t *testing.T) {
	original := lookupTexEngine
	lookupTexEngine = func() string { return "" }
	t.Cleanup(func() { lookupTexEngine = original })

	dir := t.TempDir()
	stem := filepath.Join(dir, "optimized_resume")

	p := New(&stubGenerator{response: stubResumeJSON}, Options{
		ResumePath: writeResume(t, dir),
		JobInput:   "Go engineer role.",
		OutputStem: stem,
		Format:     "pdf",
	}, zap.NewNop())

	err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdflatex not found")
	assert.FileExists(t, stem+".tex")
	assert.FileExists(t, filepath.Join(dir, "resume.cls"))
}

func TestPipelineRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()

	p := New(&stubGenerator{response: stubResumeJSON}, Options{
		ResumePath: writeResume(t, dir),
		JobInput:   "Go engineer role.",
		OutputStem: filepath.Join(dir, "out"),
		Format:     "odt",
	}, zap.NewNop())

	err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestPipelineMissingResumeFails(t *testing.T) {
	dir := t.TempDir()

	p := New(&stubGenerator{response: stubResumeJSON}, Options{
		ResumePath: filepath.Join(dir, "absent.pdf"),
		JobInput:   "Go engineer role.",
		OutputStem: filepath.Join(dir, "out"),
		Format:     "docx",
	}, zap.NewNop())

	err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract resume text")
}
