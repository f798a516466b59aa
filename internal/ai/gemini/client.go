package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/util"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultMaxRetries = 3
	initialBackoff    = time.Second
)

// modelCaller is the slice of the genai client the Client depends on.
// Narrowed to an interface so tests can enqueue canned responses.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client wraps the Google GenAI client behind the ai.Generator interface.
// Transient service errors are retried with exponential backoff; all other
// failures are returned to the caller immediately.
type Client struct {
	models     modelCaller
	model      string
	maxRetries int
	logger     *zap.Logger
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Client{
		models:     client.Models,
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the joined textual response.
func (c *Client) GenerateContent(ctx context.Context, prompt string, opts *ai.Options) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	cfg := buildConfig(opts)

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
		if err == nil {
			return joinCandidates(resp)
		}

		if !IsTransient(err) || attempt >= c.maxRetries {
			return "", fmt.Errorf("generate content: %w", err)
		}

		c.logger.Warn("transient generative service error, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		if err := util.WaitFor(ctx, backoff); err != nil {
			return "", err
		}
		backoff *= 2
	}
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// IsTransient reports whether the error belongs to the service-unavailable
// class that is worth retrying. Quota and validation failures are not.
func IsTransient(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusServiceUnavailable || apiErr.Status == "UNAVAILABLE"
}

func buildConfig(opts *ai.Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts == nil {
		return cfg
	}

	cfg.Temperature = opts.Temperature
	cfg.TopP = opts.TopP
	cfg.TopK = opts.TopK
	cfg.MaxOutputTokens = opts.MaxOutputTokens
	cfg.ResponseMIMEType = opts.ResponseMIMEType

	return cfg
}

func joinCandidates(resp *genai.GenerateContentResponse) (string, error) {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
