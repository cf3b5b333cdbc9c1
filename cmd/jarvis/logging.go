package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/koscakluka/ema-jarvis/internal/config"
)

// newLogger logs to stderr and, when logPath is set, to that file too.
func newLogger(cfg config.LoggingConfig, logPath string) (*slog.Logger, func() error, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	output := io.Writer(os.Stderr)
	closeFn := func() error { return nil }
	if logPath != "" {
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeFn, nil
}
