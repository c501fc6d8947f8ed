package repurpose

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited is returned when a user asks for too many generations.
var ErrRateLimited = errors.New("too many generation requests")

// Output is a finished repurposing job.
type Output struct {
	Text       string
	Hashtags   []string
	Prompt     string
	Model      string
	TokensUsed int
	Duration   time.Duration
}

// Limiter decides whether key may start another generation.
type Limiter interface {
	Allow(key string) bool
}

// Service validates requests, applies per-user limits and calls the Generator.
type Service struct {
	gen     Generator
	limiter Limiter
}

// NewService creates a Service. A nil limiter disables rate limiting.
func NewService(gen Generator, limiter Limiter) *Service {
	if gen == nil {
		gen = Unconfigured{}
	}
	return &Service{gen: gen, limiter: limiter}
}

// Model returns the name of the underlying model.
func (s *Service) Model() string {
	return s.gen.Model()
}

// Repurpose rewrites req.OriginalContent for req.Target on behalf of userID.
// On failure the returned Output still carries Prompt, Model and Duration so
// callers can record the attempt.
func (s *Service) Repurpose(ctx context.Context, userID string, req Request) (Output, error) {
	out := Output{Model: s.gen.Model()}
	if err := req.Validate(); err != nil {
		return out, err
	}
	if s.limiter != nil && !s.limiter.Allow(userID) {
		return out, ErrRateLimited
	}

	out.Prompt = BuildPrompt(req)
	start := time.Now()
	res, err := s.gen.Generate(ctx, out.Prompt)
	out.Duration = time.Since(start)
	if err != nil {
		return out, err
	}

	out.Text = res.Text
	out.TokensUsed = res.TokensUsed
	out.Hashtags = Hashtags(res.Text)
	return out, nil
}
