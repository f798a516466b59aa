package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/analysis"
	"github.com/resumetools/resume-optimizer/internal/repair"
	"github.com/resumetools/resume-optimizer/internal/resume"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
	opts     *ai.Options
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string, opts *ai.Options) (string, error) {
	s.prompt = prompt
	s.opts = opts
	return s.response, s.err
}

func original() *resume.Record {
	return &resume.Record{
		ContactInfo: &resume.ContactInfo{Name: "Ann Chen", Email: "ann@example.com"},
		Summary:     "Backend engineer.",
		Experience:  []resume.Experience{{Title: "Engineer", Company: "Acme"}},
		Education:   []resume.Education{{Degree: "BSc", Institution: "State"}},
	}
}

func TestRewriteReturnsRepairedRecord(t *testing.T) {
	stub := &stubGenerator{
		response: `{"contact_info": {"name": "Ann Chen"}, "summary": "Kubernetes-focused backend engineer.", "experience": [], "education": []}`,
	}
	rewriter := New(stub, repair.New(stub, zap.NewNop()), zap.NewNop())

	record := rewriter.Rewrite(context.Background(), original(), "Kubernetes role", analysis.Assessment{
		Score:         0.42,
		MissingSkills: []string{"kubernetes", "terraform"},
	})

	require.NotNil(t, record.ContactInfo)
	assert.Equal(t, "Ann Chen", record.ContactInfo.Name)
	assert.Equal(t, "Kubernetes-focused backend engineer.", record.Summary)
}

func TestRewritePromptContainsAnalysis(t *testing.T) {
	stub := &stubGenerator{
		response: `{"contact_info": {"name": "Ann Chen"}, "experience": [], "education": []}`,
	}
	rewriter := New(stub, repair.New(nil, zap.NewNop()), zap.NewNop())

	rewriter.Rewrite(context.Background(), original(), "We want Kubernetes experts.", analysis.Assessment{
		Score:         0.42,
		MissingSkills: []string{"kubernetes", "terraform"},
	})

	assert.Contains(t, stub.prompt, "Ann Chen")
	assert.Contains(t, stub.prompt, "We want Kubernetes experts.")
	assert.Contains(t, stub.prompt, "0.42 out of 1.00")
	assert.Contains(t, stub.prompt, "kubernetes, terraform")
	assert.NotContains(t, stub.prompt, "{{")
}

func TestRewriteRequestsStructuredOutput(t *testing.T) {
	stub := &stubGenerator{
		response: `{"contact_info": {"name": "Ann Chen"}, "experience": [], "education": []}`,
	}
	rewriter := New(stub, repair.New(nil, zap.NewNop()), zap.NewNop())

	rewriter.Rewrite(context.Background(), original(), "role", analysis.Assessment{})

	require.NotNil(t, stub.opts)
	assert.Equal(t, "application/json", stub.opts.ResponseMIMEType)
	assert.Equal(t, float32(0.2), *stub.opts.Temperature)
	assert.Equal(t, int32(2048), stub.opts.MaxOutputTokens)
}

func TestRewriteGeneratorErrorFallsBack(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	rewriter := New(stub, repair.New(nil, zap.NewNop()), zap.NewNop())

	record := rewriter.Rewrite(context.Background(), original(), "role", analysis.Assessment{})

	require.NotNil(t, record)
	require.NotNil(t, record.ContactInfo)
	assert.Equal(t, "Ann Chen", record.ContactInfo.Name)
	assert.True(t, record.Renderable())
}

func TestRewriteGarbageResponseFallsBack(t *testing.T) {
	stub := &stubGenerator{response: "I cannot produce a resume right now."}
	rewriter := New(stub, repair.New(nil, zap.NewNop()), zap.NewNop())

	record := rewriter.Rewrite(context.Background(), original(), "role", analysis.Assessment{})

	require.NotNil(t, record)
	assert.True(t, record.Renderable())
}
