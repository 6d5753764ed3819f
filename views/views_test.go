package views

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-barry/library/core"
	"github.com/go-barry/library/store"
)

type countingStore struct {
	store.Store
	calls int
}

func (c *countingStore) GetPost(ctx context.Context, id int64) (*store.Post, error) {
	c.calls++
	return c.Store.GetPost(ctx, id)
}

type failingStore struct{ err error }

func (f failingStore) GetPost(ctx context.Context, id int64) (*store.Post, error) {
	return nil, f.err
}

func request() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}

func TestIndex_EmptyContext(t *testing.T) {
	data, err := Index(request(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data == nil || len(data) != 0 {
		t.Errorf("expected empty non-nil context, got %#v", data)
	}
}

func TestItem_FoundPost(t *testing.T) {
	s := store.NewMemoryStore(store.Post{ID: 1, Title: "Post 1"})

	data, err := Item(s)(request(), map[string]string{"post_id": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("expected single key context, got %#v", data)
	}
	post, ok := data[PostKey].(*store.Post)
	if !ok || post.ID != 1 || post.Title != "Post 1" {
		t.Errorf("unexpected post in context: %#v", data[PostKey])
	}
}

func TestItem_MissingPostIsNotFound(t *testing.T) {
	_, err := Item(store.NewMemoryStore())(request(), map[string]string{"post_id": "1"})
	if !core.IsNotFoundError(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestItem_MalformedIDsSkipStore(t *testing.T) {
	ids := []string{"", "0", "007", "-1", "abc", "1.5", "+1", "0x10", "1e3", "99999999999999999999"}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			s := &countingStore{Store: store.NewMemoryStore(store.Post{ID: 1}, store.Post{ID: 7})}

			_, err := Item(s)(request(), map[string]string{"post_id": id})
			if !core.IsNotFoundError(err) {
				t.Errorf("expected not found for %q, got %v", id, err)
			}
			if s.calls != 0 {
				t.Errorf("expected no store read for %q", id)
			}
		})
	}
}

func TestItem_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("database is down")

	_, err := Item(failingStore{err: boom})(request(), map[string]string{"post_id": "3"})
	if !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
	if core.IsNotFoundError(err) {
		t.Error("store failure must not read as not found")
	}
}

func TestItemJSON_ReturnsPost(t *testing.T) {
	s := store.NewMemoryStore(store.Post{ID: 2, Title: "Two"})

	v, err := ItemJSON(s)(request(), map[string]string{"post_id": "2"})
	if err != nil {
		t.Fatal(err)
	}
	if post, ok := v.(*store.Post); !ok || post.Title != "Two" {
		t.Errorf("unexpected result %#v", v)
	}

	if _, err := ItemJSON(s)(request(), map[string]string{"post_id": "3"}); !core.IsNotFoundError(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestParsePostID(t *testing.T) {
	tests := map[string]int64{
		"1":                   1,
		"42":                  42,
		"9223372036854775807": 9223372036854775807,
	}
	for raw, want := range tests {
		got, err := parsePostID(raw)
		if err != nil || got != want {
			t.Errorf("parsePostID(%q) = %d, %v; want %d", raw, got, err, want)
		}
	}
}

func TestRegister(t *testing.T) {
	reg := core.NewRegistry()
	s := store.NewMemoryStore(store.Post{ID: 1})

	if err := Register(reg, s); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{IndexRoute, ItemRoute} {
		if _, ok := reg.Page(key); !ok {
			t.Errorf("expected page handler for %q", key)
		}
	}
	if _, ok := reg.API(ItemAPIRoute); !ok {
		t.Errorf("expected api handler for %q", ItemAPIRoute)
	}
}
