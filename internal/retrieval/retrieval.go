// Package retrieval fetches document chunks relevant to a question from a search backend.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuestion is returned for an empty or whitespace-only question.
	ErrInvalidQuestion = errors.New("question must not be empty")
	// ErrRetrievalUnavailable wraps transport, auth and service failures of the backend.
	ErrRetrievalUnavailable = errors.New("retrieval service unavailable")
)

// DocumentChunk is one passage returned by the search backend.
type DocumentChunk struct {
	Text     string
	SourceID string
}

// Backend is a retriever that can also report whether its search service is reachable.
type Backend interface {
	Retrieve(ctx context.Context, question string) ([]DocumentChunk, error)
	PingContext(ctx context.Context) error
}

// Filter is the fixed query restriction applied to every retrieval.
type Filter struct {
	LanguageCode string
	TopK         int
}

// Validate checks the filter is usable.
func (f Filter) Validate() error {
	if f.LanguageCode == "" {
		return fmt.Errorf("language code must not be empty")
	}
	if f.TopK <= 0 {
		return fmt.Errorf("top k must be greater than 0, got %d", f.TopK)
	}
	return nil
}

func validateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrInvalidQuestion
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRetrievalUnavailable, err)
}
