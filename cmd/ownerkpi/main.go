package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cleared-dev/ownerkpi/internal/commands"
)

func main() {
	// A missing .env is fine; real environment variables win.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
