package logger

import "errors"

var (
	ErrUnknownLevel  = errors.New("logger: unknown level")
	ErrUnknownFormat = errors.New("logger: unknown format")
	ErrFlushTimeout  = errors.New("logger: sentry flush timed out")
)
