package helpers

import "log/slog"

// NewNoopLogger returns a logger that drops every record. Components default to it.
func NewNoopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
