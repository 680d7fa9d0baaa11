package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_greeting_service.go -package=mocks -mock_names=GreetingService=MockGreetingService geekqa/internal/service GreetingService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"geekqa/internal/contextutil"
	"geekqa/internal/storage"
)

// MaxGreetingNameLength bounds a stored greeting name, in characters.
const MaxGreetingNameLength = 200

// GreetingService provides the greeting list operations.
type GreetingService interface {
	// List returns all stored greetings.
	List(ctx context.Context) ([]storage.Greeting, error)
	// Add validates and stores a greeting name.
	Add(ctx context.Context, name string) (storage.Greeting, error)
}

// greetingService implements GreetingService.
type greetingService struct {
	store storage.GreetingStore
}

// NewGreetingService creates a new GreetingService.
func NewGreetingService(store storage.GreetingStore) GreetingService {
	return &greetingService{store: store}
}

// Greet renders the plain greeting for name, defaulting to "World".
func Greet(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "World"
	}
	return fmt.Sprintf("Hello, %s!", name)
}

// List returns all stored greetings.
func (s *greetingService) List(ctx context.Context) ([]storage.Greeting, error) {
	logger := contextutil.LoggerFromContext(ctx)

	greetings, err := s.store.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list greetings", "error", err)
		return nil, WrapError(fmt.Errorf("%w: %w", ErrStorage, err), "failed to list greetings")
	}
	return greetings, nil
}

// Add validates and stores a greeting name.
func (s *greetingService) Add(ctx context.Context, name string) (storage.Greeting, error) {
	logger := contextutil.LoggerFromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		logger.WarnContext(ctx, "empty greeting name")
		return storage.Greeting{}, &ValidationError{
			Field:   "name",
			Message: "cannot be empty",
		}
	}
	if utf8.RuneCountInString(name) > MaxGreetingNameLength {
		logger.WarnContext(ctx, "greeting name too long", "length", utf8.RuneCountInString(name))
		return storage.Greeting{}, &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("must be at most %d characters", MaxGreetingNameLength),
		}
	}

	g, err := s.store.Create(ctx, name)
	if err != nil {
		logger.ErrorContext(ctx, "failed to store greeting", "error", err)
		return storage.Greeting{}, WrapError(fmt.Errorf("%w: %w", ErrStorage, err), "failed to add greeting")
	}

	logger.InfoContext(ctx, "greeting added", slog.Int64("id", g.ID))
	return g, nil
}
