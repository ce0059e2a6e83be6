// Package gemini implements the generation backend over Vertex AI using
// the google.golang.org/genai SDK.
//
// The Client satisfies chat.Generator: it submits a content payload and
// exposes the model's streamed response as a lazy chunk sequence. All
// generation parameters arrive pre-built in a GenerateContentConfig; the
// client adds only transport concerns (rate limiting, logging).
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/demystifier/demystifier/internal/config"
	"github.com/demystifier/demystifier/internal/log"
)

// Config contains the parameters for the Vertex AI client.
type Config struct {
	Project  string
	Location string
	Model    string

	// RateLimiter optionally throttles outgoing requests.
	// nil uses the default: 10 requests/sec sustained, burst of 30.
	RateLimiter *rate.Limiter

	Logger log.Logger
}

// Client is a rate-limited Vertex AI generation client.
// Client is safe for concurrent use.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	logger  log.Logger
}

// NewClient creates a Vertex AI generation client. Credentials come from
// Application Default Credentials; only project and location are wired
// here.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Project == "" {
		return nil, errors.New("project is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.Project,
		Location: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Generate streams a model response for the given content payload.
// The returned sequence is lazy and single-pass; ctx is honored both at
// the rate-limit wait and at each chunk-wait.
func (c *Client) Generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		if err := c.limiter.Wait(ctx); err != nil {
			yield(nil, fmt.Errorf("rate limit wait: %w", err))
			return
		}

		c.logger.Debug("generate content stream",
			"model", c.model,
			"contents", len(contents))

		for chunk, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, cfg) {
			if !yield(chunk, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// GenerateText performs a non-streaming generation for single-prompt
// callers (precedent analysis). The full response text is returned.
func (c *Client) GenerateText(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// GenerateConfig builds the backend generation config from application
// configuration. The chat core passes it through untouched: sampling
// parameters, safety policy, and the system instruction are configuration
// the core receives, not behavior it computes.
func GenerateConfig(cfg config.GeminiConfig) *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopP:            genai.Ptr(cfg.TopP),
		MaxOutputTokens: cfg.MaxOutputTokens,
		SafetySettings:  offSafetySettings(),
	}
	if cfg.SystemPrompt != "" {
		out.SystemInstruction = genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser)
	}
	return out
}

// offSafetySettings disables the four standard harm filters. The legal
// corpus routinely trips them on quoted statute and case text.
func offSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryHarassment,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  cat,
			Threshold: genai.HarmBlockThresholdOff,
		})
	}
	return settings
}
