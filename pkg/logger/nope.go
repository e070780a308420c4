package logger

import "log/slog"

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNope returns l, or a discarding logger when l is nil.
func OrNope(l *slog.Logger) *slog.Logger {
	if l == nil {
		return NewNope()
	}
	return l
}
