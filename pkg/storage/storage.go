package storage

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the settings for one S3-compatible endpoint.
// The bucket is not part of it: buckets are resolved per request.
type Config struct {
	// Endpoint is the base URL of the S3-compatible service (required).
	// A value without a scheme is treated as https.
	Endpoint string

	// AccessKey is the access key ID (required).
	AccessKey string

	// SecretKey is the secret access key (required).
	SecretKey string

	// Region is the signing region (default: us-east-1).
	Region string

	// PresignExpiry is the default lifetime of presigned URLs (default: 15 minutes).
	PresignExpiry time.Duration

	// VirtualHost switches from path-style to virtual-hosted-style addressing.
	// Most self-hosted S3-compatible services need path-style, so it is off by default.
	VirtualHost bool
}

// Default configuration values.
const (
	DefaultRegion = "us-east-1"
)

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.PresignExpiry <= 0 {
		c.PresignExpiry = DefaultURLExpiry
	}
	c.Endpoint = normalizeEndpoint(c.Endpoint)
}

// validate checks that required configuration fields are set and the endpoint parses.
func (c *Config) validate() error {
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("%w: missing credentials", ErrInvalidConfig)
	}
	if c.Endpoint == "" {
		return fmt.Errorf("%w: missing endpoint", ErrInvalidConfig)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported endpoint scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: endpoint has no host", ErrInvalidConfig)
	}
	return nil
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimSuffix(endpoint, "/")
}
