package main

import (
	"fmt"

	"github.com/nebari-dev/attributes/internal/logger"
	"github.com/nebari-dev/attributes/internal/server"
)

// openApp loads the configuration and wires the application for one
// administrative command. Logging goes to stdout at warn level so command
// output stays readable.
func openApp() (*server.App, error) {
	cfg, err := server.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Log.Format, "warn")
	cfg.Database.LogLevel = "silent"
	return server.NewApp(cfg)
}
