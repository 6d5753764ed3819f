// Package store reads posts by primary key from the configured backend.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-barry/library/core"
)

// Post is a single library entry. Body holds markdown.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store looks a post up by ID. A missing post is reported with an error
// wrapping core.ErrNotFound.
type Store interface {
	GetPost(ctx context.Context, id int64) (*Post, error)
}

// Backend is a Store that owns resources.
type Backend interface {
	Store
	Close() error
}

func notFound(id int64) error {
	return fmt.Errorf("post %d: %w", id, core.ErrNotFound)
}

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg core.StoreConfig) (Backend, error) {
	switch cfg.Driver {
	case "", "memory":
		s := NewMemoryStore()
		if cfg.SeedFile != "" {
			if err := s.LoadFile(cfg.SeedFile); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "postgres":
		return NewPostgresStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
