package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-barry/library/core"
	"github.com/go-barry/library/store"
	"github.com/go-barry/library/views"
)

const DefaultConfigPath = "library.config.yml"

type RuntimeConfig struct {
	Env        string
	Port       int
	ConfigPath string
}

type Server struct {
	Addr    string
	Handler http.Handler
	closers []io.Closer
	once    sync.Once
	err     error
}

// Close releases the router's watcher and the store, newest first.
func (s *Server) Close() error {
	s.once.Do(func() {
		var errs []error
		for i := len(s.closers) - 1; i >= 0; i-- {
			if err := s.closers[i].Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}

var OpenStore = func(ctx context.Context, cfg core.StoreConfig) (store.Backend, error) {
	return store.Open(ctx, cfg)
}

var ListenAndServe = func(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

var Exit = os.Exit

var Start = func(cfg RuntimeConfig) {
	fmt.Println("Starting library in", cfg.Env, "mode...")

	srv, err := BuildServer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ Server failed:", err)
		Exit(1)
		return
	}
	defer srv.Close()

	fmt.Printf("✅ Library running at http://localhost%s\n", srv.Addr)
	if err := ListenAndServe(srv.Addr, srv.Handler); err != nil {
		fmt.Fprintln(os.Stderr, "❌ Server failed:", err)
		srv.Close()
		Exit(1)
	}
}

// BuildServer wires config, store, views and router into one handler.
func BuildServer(cfg RuntimeConfig) (*Server, error) {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config, err := core.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	backend, err := OpenStore(context.Background(), config.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	srv := &Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		closers: []io.Closer{backend},
	}

	registry := core.NewRegistry()
	if err := views.Register(registry, backend); err != nil {
		srv.Close()
		return nil, fmt.Errorf("register views: %w", err)
	}

	mux := http.NewServeMux()
	rtCtx := core.RuntimeContext{
		Env:      cfg.Env,
		Registry: registry,
	}

	if cfg.Env == "dev" {
		setupDevStaticRoutes(mux, config.PublicDir)

		reloader := core.NewLiveReloader()
		mux.HandleFunc(core.ReloadPath, reloader.Handler)

		rtCtx.EnableWatch = true
		rtCtx.OnReload = reloader.BroadcastReload
	} else {
		setupProdStaticRoutes(mux, config.PublicDir, filepath.Join(config.OutputDir, "static"))
	}

	router := core.NewRouter(*config, rtCtx)
	if closer, ok := router.(io.Closer); ok {
		srv.closers = append(srv.closers, closer)
	}
	mux.Handle("/", router)

	srv.Handler = core.RequestMiddleware(*config, mux)
	return srv, nil
}

func setupDevStaticRoutes(mux *http.ServeMux, publicDir string) {
	staticHandler := http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.FileServer(http.Dir(publicDir)).ServeHTTP(w, r)
	}))
	mux.Handle("/static/", staticHandler)

	for _, name := range []string{"favicon.ico", "robots.txt"} {
		file := filepath.Join(publicDir, name)
		mux.HandleFunc("/"+name, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, file)
		})
	}
}

func setupProdStaticRoutes(mux *http.ServeMux, publicDir, cacheStaticDir string) {
	mux.Handle("/static/", makeStaticHandler(publicDir, cacheStaticDir))

	for _, name := range []string{"favicon.ico", "robots.txt"} {
		file := filepath.Join(publicDir, name)
		mux.HandleFunc("/"+name, func(w http.ResponseWriter, r *http.Request) {
			serveFileWithHeaders(w, r, file, "public, max-age=31536000, immutable")
		})
	}
}

// makeStaticHandler serves /static/ from the minified asset dir first
// (preferring a .gz twin when the client accepts gzip) and then from publicDir.
func makeStaticHandler(publicDir, cacheStaticDir string) http.Handler {
	const immutable = "public, max-age=31536000, immutable"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.Path
		if i := strings.Index(uri, "?"); i != -1 {
			uri = uri[:i]
		}
		trimmed := strings.TrimPrefix(uri, "/static/")

		if trimmed == "" || strings.Contains(trimmed, "..") || strings.HasPrefix(trimmed, "/") {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		cachedFile := filepath.Join(cacheStaticDir, filepath.FromSlash(trimmed))
		gzipFile := cachedFile + ".gz"

		if acceptsGzip(r) {
			if _, err := os.Stat(gzipFile); err == nil {
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Set("Vary", "Accept-Encoding")
				w.Header().Set("Content-Type", detectMimeType(cachedFile))
				w.Header().Set("Cache-Control", immutable)
				http.ServeFile(w, r, gzipFile)
				return
			}
		}

		if _, err := os.Stat(cachedFile); err == nil {
			serveFileWithHeaders(w, r, cachedFile, immutable)
			return
		}

		publicFile := filepath.Join(publicDir, filepath.FromSlash(trimmed))
		if _, err := os.Stat(publicFile); err == nil {
			serveFileWithHeaders(w, r, publicFile, immutable)
			return
		}

		http.NotFound(w, r)
	})
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, path, cacheControl string) {
	w.Header().Set("Content-Type", detectMimeType(path))
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, path)
}

func detectMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ico":
		return "image/x-icon"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
