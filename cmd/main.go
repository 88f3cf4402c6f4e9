package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/foodgram/internal/shared"
)

// EnvConfigPath names the config file; it defaults to config.toml in the working directory.
const EnvConfigPath = "FOODGRAM_CONFIG"

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = "config.toml"
	}

	config, err := shared.ResolveConfig(configPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
	}
	if err := shared.ApplyLogLevel(logger, config.Log.Level); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.App().Run(ctx, os.Args); err != nil {
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
