package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

func countFiles(root string, match func(path string, info os.FileInfo) bool) int {
	count := 0
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && match(path, info) {
			count++
		}
		return nil
	})
	return count
}

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print project structure, store and asset summary",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config, err := projectConfig(c)
		if err != nil {
			return err
		}

		fmt.Println("📁 Output Directory:", config.OutputDir)
		fmt.Println("🗄️  Store Driver:", config.Store.Driver)
		if config.Store.SeedFile != "" {
			fmt.Println("🌱 Seed File:", config.Store.SeedFile)
		}
		fmt.Println("🔁 Debug Headers Enabled:", config.DebugHeaders)
		fmt.Println("🔁 Debug Logs Enabled:", config.DebugLogs)
		fmt.Println()

		componentCount := countFiles(config.ComponentsDir, func(path string, info os.FileInfo) bool {
			return !info.IsDir() && strings.HasSuffix(path, ".html")
		})

		routeCount := countFiles(config.RoutesDir, func(path string, info os.FileInfo) bool {
			if !info.IsDir() || strings.HasPrefix(info.Name(), "_") {
				return false
			}
			_, err := os.Stat(filepath.Join(path, "index.html"))
			return err == nil
		})

		assetCount := countFiles(filepath.Join(config.OutputDir, "static"), func(path string, info os.FileInfo) bool {
			return !info.IsDir() && !strings.HasSuffix(path, ".gz")
		})

		fmt.Println("🗂️  Routes Found:", routeCount)
		fmt.Println("📦 Components Found:", componentCount)
		fmt.Println("💾 Minified Assets:", assetCount)

		return nil
	},
}
