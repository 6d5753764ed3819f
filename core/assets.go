package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/russross/blackfriday/v2"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"
	minjs "github.com/tdewolff/minify/v2/js"
)

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)
	m.Add("text/html", &minhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

func contentHash(data []byte) string {
	h := md5.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:6]
}

type minifiedAsset struct {
	modTime time.Time
	size    int64
	url     string
}

// minified remembers the output of MinifyAsset per source and destination so
// prod renders only rewrite an asset after its source changes.
var minified sync.Map

// MinifyAsset minifies a /static/ css or js file into cacheDir/static in prod
// and returns the versioned URL of the result. Anything else returns path.
func MinifyAsset(env, path, publicDir, cacheDir string) string {
	if env != "prod" {
		return path
	}

	ext := filepath.Ext(path)
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, ext)

	if ext != ".css" && ext != ".js" {
		return path
	}

	if strings.Contains(name, ".min") {
		return path
	}

	rel := strings.TrimPrefix(path, "/static/")
	src := filepath.Join(publicDir, rel)
	min := filepath.Join(cacheDir, "static", fmt.Sprintf("%s.min%s", name, ext))

	info, err := os.Stat(src)
	if err != nil {
		return path
	}

	key := src + "\x00" + min
	if v, ok := minified.Load(key); ok {
		cached := v.(minifiedAsset)
		if cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
			if _, err := os.Stat(min); err == nil {
				return cached.url
			}
		}
	}

	original, err := os.ReadFile(src)
	if err != nil {
		return path
	}

	mediaType := "text/css"
	if ext == ".js" {
		mediaType = "application/javascript"
	}

	var buf bytes.Buffer
	if err := newMinifier().Minify(mediaType, &buf, bytes.NewReader(original)); err != nil {
		return path
	}
	out := buf.Bytes()

	if err := os.MkdirAll(filepath.Dir(min), os.ModePerm); err != nil {
		return path
	}
	err = writeFileAtomic(min, func(w io.Writer) error {
		_, err := w.Write(out)
		return err
	})
	if err != nil {
		return path
	}
	err = writeFileAtomic(min+".gz", func(w io.Writer) error {
		gz := gzip.NewWriter(w)
		if _, err := gz.Write(out); err != nil {
			return err
		}
		return gz.Close()
	})
	if err != nil {
		return path
	}

	url := fmt.Sprintf("/static/%s.min%s?v=%s", name, ext, contentHash(out))
	minified.Store(key, minifiedAsset{modTime: info.ModTime(), size: info.Size(), url: url})
	return url
}

// writeFileAtomic writes to a temp file beside path and renames it into
// place, so readers see either the old file or the complete new one.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// MinifyHTML returns the minified page, or the input unchanged on failure.
func MinifyHTML(page []byte) []byte {
	var buf bytes.Buffer
	if err := newMinifier().Minify("text/html", &buf, bytes.NewReader(page)); err != nil {
		return page
	}
	return buf.Bytes()
}

func TemplateFuncs(config Config, env string) template.FuncMap {
	funcs := sprig.FuncMap()

	funcs["minify"] = func(path string) string {
		return MinifyAsset(env, path, config.PublicDir, config.OutputDir)
	}
	funcs["props"] = func(values ...interface{}) map[string]interface{} {
		if len(values)%2 != 0 {
			panic("props must be called with even number of arguments")
		}
		m := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				panic("props keys must be strings")
			}
			m[key] = values[i+1]
		}
		return m
	}
	funcs["safeHTML"] = func(s interface{}) template.HTML {
		switch val := s.(type) {
		case template.HTML:
			return val
		case string:
			return template.HTML(val)
		default:
			return ""
		}
	}
	// Post bodies come from the store, which is trusted content.
	funcs["markdown"] = func(s string) template.HTML {
		return template.HTML(blackfriday.Run([]byte(s)))
	}
	funcs["versioned"] = func(path string) string {
		if !strings.HasPrefix(path, "/static/") {
			return path
		}

		rel := strings.TrimPrefix(path, "/static/")
		locations := []string{
			filepath.Join(config.PublicDir, rel),
			filepath.Join(config.OutputDir, "static", rel),
		}

		for _, file := range locations {
			if content, err := os.ReadFile(file); err == nil {
				return fmt.Sprintf("/static/%s?v=%s", rel, contentHash(content))
			}
		}

		return path
	}

	return funcs
}
