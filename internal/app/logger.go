package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the slog.Logger shared by the API and worker processes.
// Production runs emit JSON at info level for the log pipeline; development
// defaults to human-readable text with debug output enabled.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
