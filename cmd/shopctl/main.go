package main

import (
	"fmt"
	"os"

	"storefront-backend/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Same .env as the server; a missing file is fine
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
