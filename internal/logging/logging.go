// Package logging provides structured logging with zap.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stdout, stderr, or file path; empty disables logging
}

// New builds a logger from cfg. An empty OutputPath yields a no-op logger so the
// terminal UI is never interleaved with log lines.
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	level := ParseLevel(cfg.Level)
	atomic := zap.NewAtomicLevelAt(level)

	if cfg.OutputPath == "" {
		return zap.NewNop(), atomic, nil
	}

	var config zap.Config
	if cfg.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	config.Level = atomic
	config.OutputPaths = []string{cfg.OutputPath}
	config.ErrorOutputPaths = []string{cfg.OutputPath}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, atomic, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, atomic, nil
}

// ParseLevel converts a level name to a zap level, falling back to info.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}

	return level
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
