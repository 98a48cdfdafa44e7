// Package logger builds the process loggers.
package logger

import (
	"log/slog"
	"os"
)

// New returns the structured application logger, JSON on stdout.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// NewAudit returns the audit sink used for administration-scope activity
// events. Kept separate from the application logger so operators can route
// it independently; every line carries log_type=audit.
func NewAudit() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("channel", "audit")
}
