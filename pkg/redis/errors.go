package redis

import "errors"

var (
	ErrEmptyHost         = errors.New("redis: endpoint host is empty")
	ErrConnectionFailed  = errors.New("redis: failed to establish connection")
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")

	// ErrCommandFailed wraps command errors other than a missing key.
	ErrCommandFailed = errors.New("redis: command failed")
)
