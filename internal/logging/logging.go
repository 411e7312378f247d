// Package logging builds the zap logger used by the CLI.
package logging

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	Level   string // "debug" | "info" | "warn" | "error"
	Format  string // "auto" | "json" | "console"
	Verbose bool   // forces debug level
}

// New returns a logger writing to stderr. Format "auto" picks the console
// encoder when stderr is a terminal and JSON otherwise.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelOrDefault(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var config zap.Config
	switch resolveFormat(opts.Format, isTerminal(os.Stderr)) {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	default:
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: failed to initialize logger: %w", err)
	}
	return logger, nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func resolveFormat(format string, terminal bool) string {
	switch format {
	case "json", "console":
		return format
	}
	if terminal {
		return "console"
	}
	return "json"
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
