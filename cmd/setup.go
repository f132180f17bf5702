package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/shared"
)

// Setup creates the config file when missing and reports the database state.
//
// The database itself is opened and migrated by [Runner.Bootstrap].
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file already exists", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	if r.db == nil {
		return fmt.Errorf("%w: database not initialized", shared.ErrServiceUnavailable)
	}

	version, err := shared.SchemaVersion(r.db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s (schema v%d)\n", r.config.Database.Path, version)
	r.writePlain("✓ Service: %s\n", r.config.Server.BaseURL)
	return nil
}
