package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResolvePath picks the configuration file: an explicit path first,
// then the OBJGATE_CONFIG_PATH environment variable, then config.yaml.
func ResolvePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnv)); p != "" {
		return p
	}
	return DefaultConfigFile
}

// Load reads, defaults and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, ErrInvalidAuth) {
			return nil, err
		}
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	cfg.applyDefaults()
	cfg.inheritBuckets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// inheritBuckets gives tenants without a bucket-name the default one.
func (c *Config) inheritBuckets() {
	if c.Default.BucketName == "" {
		return
	}
	for key, t := range c.Power {
		if t.BucketName == "" {
			t.BucketName = c.Default.BucketName
			c.Power[key] = t
		}
	}
}

// Validate reports every structural problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.ServerPort < 0 || c.ServerPort > 65535 {
		add("server-port %d out of range", c.ServerPort)
	}
	if !strings.HasPrefix(c.MatchPrefix, "/") {
		add("match-prefix %q must start with /", c.MatchPrefix)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		add("logging.format %q must be json or text", c.Logging.Format)
	}

	validateTenant := func(name string, t Tenant) {
		for i, m := range t.Minio {
			if strings.TrimSpace(m.Endpoint) == "" {
				add("%s.minio-config[%d]: endpoint is required", name, i)
			}
			if m.AccessKey == "" || m.SecretKey == "" {
				add("%s.minio-config[%d]: access-key and secret-key are required", name, i)
			}
			if m.MaxPoolIdle < 0 || m.IdlePoolSize < 0 {
				add("%s.minio-config[%d]: pool sizes must not be negative", name, i)
			}
		}
		for i, r := range t.Redis {
			if strings.TrimSpace(r.Host) == "" {
				add("%s.redis-config[%d]: host is required", name, i)
			}
			if r.MaxPoolIdle < 0 || r.IdlePoolSize < 0 {
				add("%s.redis-config[%d]: pool sizes must not be negative", name, i)
			}
		}
	}

	validateTenant("default", c.Default)
	for key, t := range c.Power {
		if strings.TrimSpace(key) == "" {
			add("power: empty tenant key")
			continue
		}
		if strings.Contains(key, "/") {
			add("power: tenant key %q must not contain /", key)
		}
		validateTenant("power."+key, t)
	}

	return errors.Join(errs...)
}
