package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Provider API keys commonly live in a local .env during development.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "mathforge",
		Short:   "Mathforge — adversarial math problem generation pipeline",
		Version: version,
	}

	root.AddCommand(
		newGenerateCmd(),
		newCostCmd(),
		newCacheCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
