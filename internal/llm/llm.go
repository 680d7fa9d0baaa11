// Package llm talks to hosted language models for text generation and embeddings.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrGenerationUnavailable wraps transport, auth, quota and model errors.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	// ErrGenerationTimeout is returned when the generation deadline expires.
	ErrGenerationTimeout = errors.New("generation timed out")
)

// Answer is the model's completion, returned unmodified.
type Answer struct {
	Text string
}

// classify wraps err with the generation sentinel matching its cause.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrGenerationTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrGenerationUnavailable, err)
}
