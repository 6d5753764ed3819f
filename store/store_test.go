package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-barry/library/core"
)

func TestOpen_MemoryDefault(t *testing.T) {
	for _, driver := range []string{"", "memory"} {
		b, err := Open(context.Background(), core.StoreConfig{Driver: driver})
		if err != nil {
			t.Fatalf("driver %q: unexpected error: %v", driver, err)
		}
		if _, ok := b.(*MemoryStore); !ok {
			t.Errorf("driver %q: expected *MemoryStore, got %T", driver, b)
		}
		b.Close()
	}
}

func TestOpen_MemoryWithSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "posts.json")
	if err := os.WriteFile(seed, []byte(`[{"id": 1, "title": "Seed"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := Open(context.Background(), core.StoreConfig{Driver: "memory", SeedFile: seed})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	got, err := b.GetPost(context.Background(), 1)
	if err != nil || got.Title != "Seed" {
		t.Errorf("expected seeded post, got %+v, %v", got, err)
	}
}

func TestOpen_BadSeed(t *testing.T) {
	_, err := Open(context.Background(), core.StoreConfig{SeedFile: filepath.Join(t.TempDir(), "none.json")})
	if err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestOpen_PostgresNeedsDSN(t *testing.T) {
	_, err := Open(context.Background(), core.StoreConfig{Driver: "postgres"})
	if err == nil || !strings.Contains(err.Error(), "dsn") {
		t.Errorf("expected dsn error, got %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), core.StoreConfig{Driver: "sqlite"})
	if err == nil || err.Error() != `unknown store driver "sqlite"` {
		t.Errorf("unexpected error: %v", err)
	}
}
