// Package commands implements the squint subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/squint-lang/squint/internal/cli/config"
	"github.com/squint-lang/squint/internal/engine"
	"github.com/squint-lang/squint/internal/runlog"
)

// getConfig returns the loaded configuration, falling back to defaults
// when none was loaded (e.g. in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath: config.DefaultStateFile,
		History:   true,
		LogFormat: config.DefaultLogFormat,
		Seed:      config.DefaultSeed,
	}
}

// createEngine builds an engine from the current configuration. The
// simulate argument forces simulation on regardless of configuration;
// outDir redirects artifacts away from the source directory when set.
func createEngine(cmd *cobra.Command, cfg *config.Config, simulate bool, outDir string) (*engine.Engine, error) {
	statePath := cfg.StatePath
	if !cfg.History {
		statePath = ""
	}
	if statePath != "" {
		stateDir := filepath.Dir(statePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	return engine.New(engine.Config{
		StatePath: statePath,
		Strict:    cfg.StrictOverlays,
		Simulate:  simulate || cfg.Simulate,
		Seed:      cfg.Seed,
		LogFormat: runlog.Format(cfg.LogFormat),
		OutDir:    outDir,
		Logger:    getLogger(cmd),
	})
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	return config.GetLogger(cmd.Context())
}
