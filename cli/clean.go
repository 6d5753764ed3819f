package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

var CleanCommand = &cli.Command{
	Name:      "clean",
	Usage:     "Delete generated assets from the output directory (default: outputDir in library.config.yml)",
	ArgsUsage: "[path (optional)]",
	Flags:     []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config, err := projectConfig(c)
		if err != nil {
			return err
		}
		target := config.OutputDir

		if c.Args().Len() > 0 {
			sub := strings.TrimPrefix(c.Args().Get(0), "/")
			if strings.Contains(sub, "..") {
				return fmt.Errorf("path escapes output directory: %s", sub)
			}
			target = filepath.Join(config.OutputDir, sub)
		}

		info, err := os.Stat(target)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("🧼 Nothing to clean:", target)
				return nil
			}
			return fmt.Errorf("failed to access path: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", target)
		}

		fmt.Println("🧹 Cleaning:", target)
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to clean output: %w", err)
		}

		fmt.Println("✅ Done.")
		return nil
	},
}
