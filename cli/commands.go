package cli

import (
	"github.com/go-barry/library"
	"github.com/go-barry/library/core"

	"github.com/urfave/cli/v2"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   library.DefaultConfigPath,
		Usage:   "path to the project config file",
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   8080,
			Usage:   "port to listen on",
			EnvVars: []string{"LIBRARY_PORT"},
		},
		configFlag(),
	}
}

// projectConfig loads the config named by --config.
func projectConfig(c *cli.Context) (*core.Config, error) {
	return core.LoadConfig(c.String("config"))
}

func runtimeConfig(c *cli.Context, env string) library.RuntimeConfig {
	return library.RuntimeConfig{
		Env:        env,
		Port:       c.Int("port"),
		ConfigPath: c.String("config"),
	}
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start the library in dev mode (live reload, templates parsed per request)",
	Flags: serverFlags(),
	Action: func(c *cli.Context) error {
		library.Start(runtimeConfig(c, "dev"))
		return nil
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start the library in production mode (minified output)",
	Flags: serverFlags(),
	Action: func(c *cli.Context) error {
		library.Start(runtimeConfig(c, "prod"))
		return nil
	},
}
