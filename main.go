package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/docsage-ai/docsage-cli/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	// A local .env is optional; environment variables win either way
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
