package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/segmentio/encoding/json"
)

var _ Backend = (*MemoryStore)(nil)

// MemoryStore keeps posts in a map. Posts are copied on the way in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[int64]Post
}

func NewMemoryStore(posts ...Post) *MemoryStore {
	s := &MemoryStore{posts: make(map[int64]Post, len(posts))}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *MemoryStore) GetPost(ctx context.Context, id int64) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	found, ok := s.posts[id]
	if !ok {
		return nil, notFound(id)
	}
	return &found, nil
}

// Put inserts or replaces a post.
func (s *MemoryStore) Put(p Post) {
	s.mu.Lock()
	s.posts[p.ID] = p
	s.mu.Unlock()
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Load reads a JSON array of posts and stores each of them.
func (s *MemoryStore) Load(r io.Reader) error {
	var posts []Post
	if err := json.NewDecoder(r).Decode(&posts); err != nil {
		return fmt.Errorf("decode posts: %w", err)
	}

	for _, p := range posts {
		if p.ID <= 0 {
			return fmt.Errorf("decode posts: invalid id %d", p.ID)
		}
		s.Put(p)
	}
	return nil
}

func (s *MemoryStore) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return s.Load(f)
}

func (s *MemoryStore) Close() error {
	return nil
}
