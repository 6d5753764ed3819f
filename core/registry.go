package core

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

// PageHandlerFunc builds the template context for a page route. Returning an
// error that satisfies IsNotFoundError renders the 404 page.
type PageHandlerFunc func(r *http.Request, params map[string]string) (map[string]interface{}, error)

// APIHandlerFunc returns a value that is written to the client as JSON.
type APIHandlerFunc func(r *http.Request, params map[string]string) (interface{}, error)

// Registry maps route keys to the handlers that serve them. Page keys are the
// route directory relative to the routes dir ("" for the root page), using the
// same [param] segments as the directory tree.
type Registry struct {
	pages sync.Map
	apis  sync.Map
}

func NewRegistry() *Registry {
	return &Registry{}
}

func normaliseKey(key string) string {
	return strings.Trim(strings.ReplaceAll(key, "\\", "/"), "/")
}

func (reg *Registry) HandlePage(key string, fn PageHandlerFunc) error {
	if fn == nil {
		return ErrInvalidHandler
	}
	reg.pages.Store(normaliseKey(key), fn)
	return nil
}

func (reg *Registry) HandleAPI(pattern string, fn APIHandlerFunc) error {
	pattern = normaliseKey(pattern)
	if fn == nil || pattern == "" {
		return ErrInvalidHandler
	}
	reg.apis.Store(pattern, fn)
	return nil
}

func (reg *Registry) Page(key string) (PageHandlerFunc, bool) {
	if reg == nil {
		return nil, false
	}
	val, ok := reg.pages.Load(normaliseKey(key))
	if !ok {
		return nil, false
	}
	return val.(PageHandlerFunc), true
}

func (reg *Registry) API(pattern string) (APIHandlerFunc, bool) {
	if reg == nil {
		return nil, false
	}
	val, ok := reg.apis.Load(normaliseKey(pattern))
	if !ok {
		return nil, false
	}
	return val.(APIHandlerFunc), true
}

// APIPatterns returns the registered API patterns in a stable order.
func (reg *Registry) APIPatterns() []string {
	if reg == nil {
		return nil
	}
	var patterns []string
	reg.apis.Range(func(k, _ any) bool {
		patterns = append(patterns, k.(string))
		return true
	})
	sort.Strings(patterns)
	return patterns
}
