// Package logging builds the application logger. The TUI owns stdout, so
// log output goes to a file in the config directory.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"pilot/internal/config"
)

// New returns a JSON file logger when debug is on, otherwise a no-op logger.
func New(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "pilot.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths

	return cfg.Build()
}
