// Package views holds the page handlers of the library site: the index page
// and the item page for a single post.
package views

import (
	"github.com/go-barry/library/core"
	"github.com/go-barry/library/store"
)

const (
	IndexRoute   = ""
	ItemRoute    = "items/[post_id]"
	ItemAPIRoute = "items/[post_id]"

	// PostKey is the context key the item template reads the post from.
	PostKey = "post"
)

// Register binds the views to their routes.
func Register(reg *core.Registry, s store.Store) error {
	if err := reg.HandlePage(IndexRoute, Index); err != nil {
		return err
	}
	if err := reg.HandlePage(ItemRoute, Item(s)); err != nil {
		return err
	}
	return reg.HandleAPI(ItemAPIRoute, ItemJSON(s))
}
