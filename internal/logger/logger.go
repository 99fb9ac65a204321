// Package logger builds the application's slog logger from configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const defaultLogFile = "merge-warden.log"

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	// File is the log destination when Output is "file".
	File string `mapstructure:"file"`
}

// NewLogger initializes a slog logger from the configuration. A nil output
// writer selects the destination named by cfg.Output.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = cfg.writer()
	}

	opts := &slog.HandlerOptions{Level: cfg.level()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}

// level parses the configured level, defaulting to info on anything
// unrecognized.
func (c Config) level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) writer() io.Writer {
	switch c.Output {
	case "stderr":
		return os.Stderr
	case "file":
		name := c.File
		if name == "" {
			name = defaultLogFile
		}
		file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", name, err)
			return os.Stdout
		}
		return file
	default:
		return os.Stdout
	}
}
