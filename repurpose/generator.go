package repurpose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no Gemini model is configured.
const DefaultModel = "gemini-2.0-flash"

var (
	// ErrNotConfigured is returned when no model credentials were provided.
	ErrNotConfigured = errors.New("content generation is not configured")
	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Result is a single model completion.
type Result struct {
	Text       string
	TokensUsed int
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
	Model() string
}

// Unconfigured is the Generator used when no API key is available.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string) (Result, error) {
	return Result{}, ErrNotConfigured
}

func (Unconfigured) Model() string { return "none" }

// GeminiGenerator generates text with Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiGenerator creates a Gemini-backed Generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.7),
		},
	}, nil
}

// Generate sends prompt to the model and returns its text answer.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (Result, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Result{}, ErrEmptyResponse
	}

	res := Result{Text: text}
	if resp.UsageMetadata != nil {
		res.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return res, nil
}

// Model returns the Gemini model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}
