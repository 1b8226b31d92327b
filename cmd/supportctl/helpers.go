package main

import (
	"context"
	"fmt"

	"supportflow/internal/gateway/app"
	"supportflow/internal/gateway/config"
	"supportflow/internal/logging"
)

func openEngine(ctx context.Context) (*app.Engine, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rootFlags.provider != "" {
		cfg.LLM.Provider = rootFlags.provider
	}
	level := cfg.LogLevel
	if rootFlags.logLevel != "" {
		level = rootFlags.logLevel
	} else if level == "info" {
		level = "warn"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		return nil, err
	}
	return app.NewEngine(ctx, cfg, log)
}
