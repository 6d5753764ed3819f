package cli

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-barry/library/core"
	"github.com/urfave/cli/v2"
)

// checkPage parses a page with its layout and components. Pages without
// route params are also executed with data.
func checkPage(config core.Config, htmlPath string, execute bool, data map[string]interface{}) error {
	page, err := core.ParsePage(config, "dev", htmlPath)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if !execute {
		return nil
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}
	return nil
}

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Validate route templates, layouts and components",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config, err := projectConfig(c)
		if err != nil {
			return err
		}
		root := config.RoutesDir
		var failed bool

		report := func(label string, err error) {
			if err != nil {
				failed = true
				fmt.Printf("❌ %s → %v\n", label, err)
				return
			}
			fmt.Printf("✅ %s\n", label)
		}

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

			rel, _ := filepath.Rel(root, path)
			label := "/"
			if rel != "." {
				label = "/" + filepath.ToSlash(rel)
			}

			hasParams := strings.Contains(label, "[")
			report(label, checkPage(*config, htmlPath, !hasParams, map[string]interface{}{}))
			return nil
		})

		errorPages, _ := filepath.Glob(filepath.Join(root, "_error", "*.html"))
		for _, htmlPath := range errorPages {
			data := map[string]interface{}{
				"Status":     http.StatusNotFound,
				"StatusText": http.StatusText(http.StatusNotFound),
			}
			report("error page "+filepath.Base(htmlPath), checkPage(*config, htmlPath, true, data))
		}

		if failed {
			return cli.Exit("some templates failed to compile", 1)
		}

		fmt.Println("✅ All templates validated successfully.")
		return nil
	},
}
