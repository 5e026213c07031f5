package main

import (
	"os"

	"github.com/pricecast-dev/pricecast/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
