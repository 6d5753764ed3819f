package main

import (
	"log"
	"os"

	librarycli "github.com/go-barry/library/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "library",
		Usage: "Serve the library index and item pages from file-routed templates",
		Commands: []*clilib.Command{
			librarycli.InitCommand,
			librarycli.DevCommand,
			librarycli.ProdCommand,
			librarycli.CleanCommand,
			librarycli.CheckCommand,
			librarycli.InfoCommand,
		},
	}
	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
