package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_greeting_store.go -package=mocks geekqa/internal/storage GreetingStore

import (
	"context"
	"database/sql"
	"fmt"
)

// GreetingStore defines the interface for greeting storage operations.
type GreetingStore interface {
	// ListAll returns all greetings in insertion order.
	ListAll(ctx context.Context) ([]Greeting, error)
	// Create stores a new greeting and returns it with its generated fields.
	Create(ctx context.Context, name string) (Greeting, error)
	// PingContext verifies the underlying connection.
	PingContext(ctx context.Context) error
}

// GreetingRepo provides methods for greeting operations.
// It implements the GreetingStore interface.
type GreetingRepo struct {
	db *sql.DB
}

// NewGreetingRepo creates a new GreetingRepo.
func NewGreetingRepo(db *sql.DB) *GreetingRepo {
	return &GreetingRepo{db: db}
}

// ListAll returns all greetings ordered by id.
func (r *GreetingRepo) ListAll(ctx context.Context) ([]Greeting, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM greetings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query greetings: %w", err)
	}
	defer rows.Close()

	greetings := make([]Greeting, 0)
	for rows.Next() {
		var g Greeting
		var createdAt dbTime
		if err := rows.Scan(&g.ID, &g.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan greeting: %w", err)
		}
		g.CreatedAt = createdAt.Time
		greetings = append(greetings, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate greetings: %w", err)
	}

	return greetings, nil
}

// Create inserts a greeting. Both SQLite and PostgreSQL accept $N placeholders and RETURNING.
func (r *GreetingRepo) Create(ctx context.Context, name string) (Greeting, error) {
	g := Greeting{Name: name}
	var createdAt dbTime
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO greetings (name) VALUES ($1) RETURNING id, created_at",
		name,
	).Scan(&g.ID, &createdAt)
	if err != nil {
		return Greeting{}, fmt.Errorf("failed to insert greeting: %w", err)
	}
	g.CreatedAt = createdAt.Time
	return g, nil
}

// PingContext verifies the database connection is alive.
func (r *GreetingRepo) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
