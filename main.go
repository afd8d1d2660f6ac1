package main

import (
	"os"

	"github.com/givin-app/givin/internal/commands"
	"github.com/givin-app/givin/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	if err := commands.NewRootCommand(cfg, Version+" ("+Commit+")").Execute(); err != nil {
		os.Exit(1)
	}
}
