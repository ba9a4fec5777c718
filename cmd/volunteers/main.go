package main

import (
	"fmt"
	"os"

	"github.com/handii-app/volunteer-directory/internal/app"
	"github.com/handii-app/volunteer-directory/internal/config"
	"github.com/handii-app/volunteer-directory/internal/logger"
)

func main() {
	root := newRootCmd(loadConsole)
	err := root.Execute()
	_ = logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

// loadConsole builds the runtime from env/config, applying flag overrides.
func loadConsole(opts rootOptions) (*app.Console, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.baseURL != "" {
		cfg.DirectoryBaseURL = opts.baseURL
	}
	if opts.timeout > 0 {
		cfg.DirectoryTimeout = opts.timeout
	}
	if opts.hubsFile != "" {
		cfg.HubsFile = opts.hubsFile
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("volunteers cli starting", "cli_config", map[string]any{
		"base_url":   cfg.DirectoryBaseURL,
		"timeout_ms": cfg.DirectoryTimeout.Milliseconds(),
	})

	return app.NewConsole(cfg, log)
}
