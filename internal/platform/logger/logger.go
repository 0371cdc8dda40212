package logger

import (
	"log/slog"
	"os"
)

// New returns a slog.Logger writing to stdout, JSON when format is "json".
func New(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
