package gemini

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/util"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeModels struct {
	mu      sync.Mutex
	queue   []fakeResponse
	calls   int
	prompts []string
	configs []*genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.configs = append(f.configs, config)
	for _, content := range contents {
		for _, part := range content.Parts {
			f.prompts = append(f.prompts, part.Text)
		}
	}
	if len(f.queue) == 0 {
		return nil, genai.APIError{Code: http.StatusInternalServerError, Status: "UNEXPECTED_CALL"}
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestClientRetriesOnServiceUnavailable(t *testing.T) {
	originalSleep := util.Sleep
	util.Sleep = func(time.Duration) {}
	defer func() { util.Sleep = originalSleep }()

	models := &fakeModels{queue: []fakeResponse{
		{err: genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}},
		{resp: textResponse("retry ok")},
	}}

	c := &Client{models: models, model: "gemini-2.0-flash", maxRetries: 3, logger: zap.NewNop()}

	output, err := c.GenerateContent(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}
}

func TestClientStopsAfterRetriesExhausted(t *testing.T) {
	originalSleep := util.Sleep
	util.Sleep = func(time.Duration) {}
	defer func() { util.Sleep = originalSleep }()

	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models := &fakeModels{queue: []fakeResponse{{err: tempErr}, {err: tempErr}, {err: tempErr}}}

	c := &Client{models: models, model: "gemini-2.0-flash", maxRetries: 3, logger: zap.NewNop()}

	if _, err := c.GenerateContent(context.Background(), "prompt", nil); err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if models.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", models.calls)
	}
}

func TestClientDoesNotRetryNonTransientErrors(t *testing.T) {
	models := &fakeModels{queue: []fakeResponse{
		{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
	}}

	c := &Client{models: models, model: "gemini-2.0-flash", maxRetries: 3, logger: zap.NewNop()}

	if _, err := c.GenerateContent(context.Background(), "prompt", nil); err == nil {
		t.Fatal("expected error for non-transient failure")
	}

	if models.calls != 1 {
		t.Fatalf("expected single call, got %d", models.calls)
	}
}

func TestClientPassesOptionsThrough(t *testing.T) {
	models := &fakeModels{queue: []fakeResponse{{resp: textResponse("{}")}}}

	c := &Client{models: models, model: "gemini-2.0-flash", maxRetries: 1, logger: zap.NewNop()}

	opts := &ai.Options{
		Temperature:      ai.Float32(0.2),
		TopP:             ai.Float32(0.95),
		TopK:             ai.Float32(40),
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
	}
	_, err := c.GenerateContent(context.Background(), "prompt", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := models.configs[0]
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Fatalf("temperature not forwarded: %+v", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != 2048 {
		t.Fatalf("max output tokens not forwarded: %d", cfg.MaxOutputTokens)
	}
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("response mime type not forwarded: %q", cfg.ResponseMIMEType)
	}
}
