package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/KartikLabhshetwar/FolioSign/internal/config"
	"github.com/KartikLabhshetwar/FolioSign/pkg/logging"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.toml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(&cfg.Logging)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
