package main

import "github.com/go-barry/library"

func main() {
	library.Start(library.RuntimeConfig{
		Env:        "dev",
		Port:       8080,
		ConfigPath: library.DefaultConfigPath,
	})
}
