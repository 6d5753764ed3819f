package views

import (
	"fmt"
	"net/http"

	"github.com/go-barry/library/core"
	"github.com/go-barry/library/store"
	"github.com/spf13/cast"
)

// parsePostID accepts positive base-10 integers without leading zeros. Any
// other value cannot name a stored post and is reported as not found.
func parsePostID(raw string) (int64, error) {
	if raw == "" || raw[0] == '0' {
		return 0, fmt.Errorf("post id %q: %w", raw, core.ErrNotFound)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("post id %q: %w", raw, core.ErrNotFound)
		}
	}

	id, err := cast.ToInt64E(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("post id %q: %w", raw, core.ErrNotFound)
	}
	return id, nil
}

func lookupPost(s store.Store, r *http.Request, params map[string]string) (*store.Post, error) {
	id, err := parsePostID(params["post_id"])
	if err != nil {
		return nil, err
	}
	return s.GetPost(r.Context(), id)
}

// Item renders the item template with the post bound under "post".
func Item(s store.Store) core.PageHandlerFunc {
	return func(r *http.Request, params map[string]string) (map[string]interface{}, error) {
		post, err := lookupPost(s, r, params)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{PostKey: post}, nil
	}
}

// ItemJSON serves the same lookup as Item for /api/items/<post_id>.
func ItemJSON(s store.Store) core.APIHandlerFunc {
	return func(r *http.Request, params map[string]string) (interface{}, error) {
		return lookupPost(s, r, params)
	}
}
