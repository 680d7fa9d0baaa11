package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *GreetingRepo {
	t.Helper()

	db, err := New(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return NewGreetingRepo(db)
}

func TestGreetingRepo_ListAll_Empty(t *testing.T) {
	repo := newTestRepo(t)

	greetings, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if greetings == nil {
		t.Error("ListAll() should return an empty slice, not nil")
	}
	if len(greetings) != 0 {
		t.Errorf("ListAll() returned %d greetings, want 0", len(greetings))
	}
}

func TestGreetingRepo_CreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	names := []string{"World", "秋葉原", "Geek"}
	for _, name := range names {
		g, err := repo.Create(ctx, name)
		if err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
		if g.ID <= 0 {
			t.Errorf("Create(%q) ID = %d, want > 0", name, g.ID)
		}
		if g.Name != name {
			t.Errorf("Create() Name = %q, want %q", g.Name, name)
		}
		if g.CreatedAt.IsZero() {
			t.Errorf("Create(%q) CreatedAt should be set", name)
		}
	}

	greetings, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(greetings) != len(names) {
		t.Fatalf("ListAll() returned %d greetings, want %d", len(greetings), len(names))
	}
	for i, g := range greetings {
		if g.Name != names[i] {
			t.Errorf("ListAll()[%d].Name = %q, want %q", i, g.Name, names[i])
		}
	}
}

func TestGreetingRepo_PingContext(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.PingContext(context.Background()); err != nil {
		t.Errorf("PingContext() error = %v", err)
	}
}

func TestGreetingRepo_ClosedDatabase(t *testing.T) {
	db, err := New(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	repo := NewGreetingRepo(db)
	_ = db.Close()

	if _, err := repo.ListAll(context.Background()); err == nil {
		t.Error("ListAll() on closed database should return error")
	}
	if _, err := repo.Create(context.Background(), "x"); err == nil {
		t.Error("Create() on closed database should return error")
	}
}
