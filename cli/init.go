package cli

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

//go:embed all:_starter
var starterFS embed.FS

var execCommand = exec.Command

var InitCommand = &cli.Command{
	Name:  "init",
	Usage: "Create a new library site from the default starter",
	Action: func(c *cli.Context) error {
		targetDir, _ := os.Getwd()
		fmt.Println("🚀 Creating library site in:", targetDir)

		if err := copyEmbeddedDir(starterFS, "_starter", targetDir); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		mainFile := filepath.Join(targetDir, "main.go")
		modFile := filepath.Join(targetDir, "go.mod")

		if _, err := os.Stat(mainFile); err == nil {
			if _, err := os.Stat(modFile); os.IsNotExist(err) {
				moduleName := filepath.Base(targetDir)
				fmt.Println("🔧 Initialising Go module:", moduleName)

				for _, args := range [][]string{{"mod", "init", moduleName}, {"mod", "tidy"}} {
					cmd := execCommand("go", args...)
					cmd.Stdout = os.Stdout
					cmd.Stderr = os.Stderr
					cmd.Dir = targetDir
					if err := cmd.Run(); err != nil {
						return fmt.Errorf("failed to run go %s: %w", strings.Join(args, " "), err)
					}
				}
			}
		}

		fmt.Println("✅ Project created successfully.")
		fmt.Println("▶  Run: library dev")
		return nil
	},
}

// copyEmbeddedDir writes every file under sourceDir into targetDir,
// overwriting files that already exist.
func copyEmbeddedDir(source fs.FS, sourceDir string, targetDir string) error {
	sub, err := fs.Sub(source, sourceDir)
	if err != nil {
		return err
	}

	return fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == "." {
			return err
		}

		targetPath := filepath.Join(targetDir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(targetPath, 0755)
		}

		data, err := fs.ReadFile(sub, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return os.WriteFile(targetPath, data, 0644)
	})
}
