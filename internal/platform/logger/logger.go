// Package logger centralizes slog construction so every component logs in the
// same shape.
package logger

import (
	"log/slog"
	"os"
)

// New returns a text-format stdout logger at the given level.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
