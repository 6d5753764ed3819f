package core

import (
	"net/http"
	"regexp"

	"github.com/segmentio/encoding/json"
)

type ApiRoute struct {
	Pattern    string
	URLPattern *regexp.Regexp
	ParamKeys  []string
}

func (r *Router) loadApiRoutes() {
	routes := []ApiRoute{}

	for _, pattern := range r.registry.APIPatterns() {
		regex, paramKeys := compileRoutePattern(pattern)
		routes = append(routes, ApiRoute{
			Pattern:    pattern,
			URLPattern: regex,
			ParamKeys:  paramKeys,
		})
	}

	sortByParamCount(routes, func(i int) (int, string) {
		return len(routes[i].ParamKeys), routes[i].Pattern
	})

	r.mu.Lock()
	r.apiRoutes = routes
	r.mu.Unlock()
}

func (r *Router) matchAPI(path string) (ApiRoute, map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.apiRoutes {
		if matches := route.URLPattern.FindStringSubmatch(path); matches != nil {
			params := make(map[string]string, len(route.ParamKeys))
			for i, key := range route.ParamKeys {
				params[key] = matches[i+1]
			}
			return route, params, true
		}
	}
	return ApiRoute{}, nil, false
}

func (r *Router) handleAPI(w http.ResponseWriter, req *http.Request, route ApiRoute, params map[string]string) {
	handler, ok := r.registry.API(route.Pattern)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	result, err := handler(req, params)
	if err != nil {
		if IsNotFoundError(err) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		LogWithContext(req.Context(), "api handler failed", "route", "/api/"+route.Pattern, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		LogWithContext(req.Context(), "api encode failed", "route", "/api/"+route.Pattern, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if req.Method != http.MethodHead {
		w.Write(append(body, '\n'))
	}
}
