package repurpose

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

type retrying struct {
	next       Generator
	maxRetries uint64
	base       time.Duration
}

// Retrying wraps g so transient failures are retried with exponential backoff,
// starting at base and giving up after maxRetries additional attempts.
func Retrying(g Generator, maxRetries uint64, base time.Duration) Generator {
	return &retrying{next: g, maxRetries: maxRetries, base: base}
}

func (r *retrying) Model() string { return r.next.Model() }

func (r *retrying) Generate(ctx context.Context, prompt string) (Result, error) {
	var res Result
	b := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.base))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		out, err := r.next.Generate(ctx, prompt)
		if err != nil {
			if shouldRetry(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		res = out
		return nil
	})
	return res, err
}

// shouldRetry reports whether err may succeed on a later attempt.
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrInvalidRequest) {
		return false
	}
	return true
}
