package config

import "errors"

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrReadFile      = errors.New("config: failed to read configuration file")
	ErrInvalidAuth   = errors.New("config: invalid auth-type")

	// ErrUnknownTenant and ErrNoBucket are configuration errors surfaced per request.
	ErrUnknownTenant = errors.New("config: unknown tenant")
	ErrNoBucket      = errors.New("config: tenant has no bucket")

	ErrNoSessionEndpoint = errors.New("config: no session store endpoint configured")
	ErrMalformedTenant   = errors.New("config: malformed tenant record")
)
