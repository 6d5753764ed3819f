package core

import (
	"bufio"
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type RuntimeContext struct {
	Env         string
	EnableWatch bool
	OnReload    func()
	Registry    *Registry
}

type Route struct {
	Key        string
	URLPattern *regexp.Regexp
	ParamKeys  []string
	HTMLPath   string
	FilePath   string
}

type Router struct {
	config    Config
	env       string
	registry  *Registry
	onReload  func()
	watcher   *Watcher
	mu        sync.RWMutex
	routes    []Route
	apiRoutes []ApiRoute
	templates sync.Map
}

var NewRouter = func(config Config, ctx RuntimeContext) http.Handler {
	r := &Router{
		config:   config,
		env:      ctx.Env,
		registry: ctx.Registry,
		onReload: ctx.OnReload,
	}
	r.loadRoutes()
	r.loadApiRoutes()

	if ctx.EnableWatch {
		w, err := Watch([]string{config.RoutesDir, config.ComponentsDir}, r.reload)
		if err != nil {
			fmt.Fprintln(os.Stderr, "⚠️  File watching disabled:", err)
		} else {
			r.watcher = w
		}
	}

	return r
}

func (r *Router) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	path := strings.Trim(req.URL.Path, "/")

	if path == "api" || strings.HasPrefix(path, "api/") {
		apiPath := strings.TrimPrefix(strings.TrimPrefix(path, "api"), "/")
		if route, params, ok := r.matchAPI(apiPath); ok {
			r.handleAPI(w, req, route, params)
			return
		}
	}

	route, params, ok := r.match(path)
	if !ok {
		r.renderError(w, req, http.StatusNotFound)
		return
	}

	r.servePage(w, req, route, params)
}

func (r *Router) match(path string) (Route, map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		if matches := route.URLPattern.FindStringSubmatch(path); matches != nil {
			params := make(map[string]string, len(route.ParamKeys))
			for i, key := range route.ParamKeys {
				params[key] = matches[i+1]
			}
			return route, params, true
		}
	}
	return Route{}, nil, false
}

func (r *Router) servePage(w http.ResponseWriter, req *http.Request, route Route, params map[string]string) {
	data := map[string]interface{}{}

	if handler, ok := r.registry.Page(route.Key); ok {
		result, err := handler(req, params)
		if err != nil {
			if IsNotFoundError(err) {
				r.renderError(w, req, http.StatusNotFound)
				return
			}
			LogWithContext(req.Context(), "page handler failed", "route", "/"+route.Key, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if result != nil {
			data = result
		}
	}

	page, err := r.render(route.HTMLPath, data)
	if err != nil {
		LogWithContext(req.Context(), "page render failed", "route", "/"+route.Key, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if r.config.DebugHeaders {
		w.Header().Set("X-Library-Route", "/"+route.Key)
	}
	r.write(w, req, http.StatusOK, page)
}

// renderError serves routes/_error/<status>.html, falling back to
// routes/_error/index.html and then to a plain text response.
func (r *Router) renderError(w http.ResponseWriter, req *http.Request, status int) {
	errorDir := filepath.Join(r.config.RoutesDir, "_error")
	candidates := []string{
		filepath.Join(errorDir, strconv.Itoa(status)+".html"),
		filepath.Join(errorDir, "index.html"),
	}

	data := map[string]interface{}{
		"Status":     status,
		"StatusText": http.StatusText(status),
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		page, err := r.render(candidate, data)
		if err != nil {
			break
		}
		r.write(w, req, status, page)
		return
	}

	http.Error(w, http.StatusText(status), status)
}

func (r *Router) write(w http.ResponseWriter, req *http.Request, status int, page []byte) {
	switch r.env {
	case "dev":
		page = InjectReloadScript(page)
	case "prod":
		page = MinifyHTML(page)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(page)))
	w.WriteHeader(status)
	if req.Method != http.MethodHead {
		w.Write(page)
	}
}

func (r *Router) render(htmlPath string, data map[string]interface{}) ([]byte, error) {
	page, err := r.page(htmlPath)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// page returns the parsed template set for htmlPath. Prod keeps parsed sets
// for the life of the router; other envs parse on every request.
func (r *Router) page(htmlPath string) (*Page, error) {
	if r.env == "prod" {
		if cached, ok := r.templates.Load(htmlPath); ok {
			return cached.(*Page), nil
		}
	}

	page, err := ParsePage(r.config, r.env, htmlPath)
	if err != nil {
		return nil, err
	}

	if r.env == "prod" {
		r.templates.Store(htmlPath, page)
	}
	return page, nil
}

func (r *Router) reload() {
	r.loadRoutes()
	r.templates.Range(func(key, _ any) bool {
		r.templates.Delete(key)
		return true
	})
	fmt.Println("🔁 Routes reloaded")
	if r.onReload != nil {
		r.onReload()
	}
}

func (r *Router) loadRoutes() {
	root := r.config.RoutesDir
	routes := []Route{}

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), "_") {
			return filepath.SkipDir
		}

		htmlPath := filepath.Join(path, "index.html")
		if _, err := os.Stat(htmlPath); err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		key := normaliseKey(filepath.ToSlash(rel))
		if key == "." {
			key = ""
		}

		pattern, paramKeys := compileRoutePattern(key)
		routes = append(routes, Route{
			Key:        key,
			URLPattern: pattern,
			ParamKeys:  paramKeys,
			HTMLPath:   htmlPath,
			FilePath:   path,
		})
		return nil
	})

	sortByParamCount(routes, func(i int) (int, string) {
		return len(routes[i].ParamKeys), routes[i].Key
	})

	r.mu.Lock()
	r.routes = routes
	r.mu.Unlock()
}

// compileRoutePattern turns "items/[post_id]" into ^items/([^/]+)$ with the
// param key list ["post_id"].
func compileRoutePattern(key string) (*regexp.Regexp, []string) {
	key = normaliseKey(key)
	if key == "" {
		return regexp.MustCompile("^$"), nil
	}

	paramKeys := []string{}
	parts := strings.Split(key, "/")
	segments := make([]string, 0, len(parts))

	for _, part := range parts {
		if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") && len(part) > 2 {
			paramKeys = append(paramKeys, part[1:len(part)-1])
			segments = append(segments, "([^/]+)")
		} else {
			segments = append(segments, regexp.QuoteMeta(part))
		}
	}

	return regexp.MustCompile("^" + strings.Join(segments, "/") + "$"), paramKeys
}

// sortByParamCount orders literal routes ahead of parameterised ones so that
// items/new wins over items/[post_id].
func sortByParamCount[T any](routes []T, key func(i int) (int, string)) {
	sort.SliceStable(routes, func(i, j int) bool {
		ci, ki := key(i)
		cj, kj := key(j)
		if ci != cj {
			return ci < cj
		}
		return ki < kj
	})
}

type Page struct {
	Template *template.Template
	Layout   string
}

func (p *Page) Execute(w io.Writer, data interface{}) error {
	if p.Layout != "" {
		return p.Template.ExecuteTemplate(w, "layout", data)
	}
	return p.Template.Execute(w, data)
}

// ParsePage builds the template set for a route: its layout (if declared),
// the page itself and every component.
func ParsePage(config Config, env, htmlPath string) (*Page, error) {
	files := []string{htmlPath}

	layout := getLayoutPath(htmlPath)
	if layout != "" {
		layout = filepath.Join(config.ProjectRoot(), layout)
		files = append([]string{layout}, files...)
	}

	files = append(files, componentFiles(config.ComponentsDir)...)

	tmpl, err := template.New(filepath.Base(files[0])).
		Funcs(TemplateFuncs(config, env)).
		ParseFiles(files...)
	if err != nil {
		return nil, err
	}

	return &Page{Template: tmpl, Layout: layout}, nil
}

func componentFiles(dir string) []string {
	var files []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".html") {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// getLayoutPath reads the <!-- layout: path --> directive from a page.
func getLayoutPath(htmlPath string) string {
	f, err := os.Open(htmlPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "<!-- layout:") && strings.HasSuffix(line, "-->") {
			return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "<!-- layout:"), "-->"))
		}
	}
	return ""
}
