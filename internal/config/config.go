package config

import "time"

// Defaults applied by Load.
const (
	DefaultPort              = 9928
	DefaultMatchPrefix       = "/minio"
	DefaultStorageMaxSize    = 8
	DefaultSessionMaxSize    = 50
	DefaultHealthInterval    = 60 * time.Second
	DefaultProbeTimeout      = 10 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultPresignExpiry     = 15 * time.Minute
	DefaultTenantKey         = "default"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultSentryEnvironment = "production"
	DefaultConfigFile        = "config.yaml"
	ConfigPathEnv            = "OBJGATE_CONFIG_PATH"
)

// Config is the on-disk configuration.
type Config struct {
	AuthType           AuthType          `yaml:"auth-type"`
	Power              map[string]Tenant `yaml:"power"`
	MatchPrefix        string            `yaml:"match-prefix"`
	TenantLookupPrefix string            `yaml:"tenant-lookup-prefix"`
	Logging            Logging           `yaml:"logging"`
	CORS               CORS              `yaml:"cors"`
	Default            Tenant            `yaml:"default"`
	Server             Server            `yaml:"server"`
	Health             Health            `yaml:"health"`
	PresignExpiry      time.Duration     `yaml:"presign-expiry"`
	ServerPort         int               `yaml:"server-port"`
	ParsingContentType bool              `yaml:"parsing-content-type"`
}

// Tenant is one entry under power (or the default section).
// Convert is accepted for compatibility with older files and has no effect.
type Tenant struct {
	Convert    map[string]string `yaml:"convert"`
	BucketName string            `yaml:"bucket-name"`
	Redis      []RedisEntry      `yaml:"redis-config"`
	Minio      []MinioEntry      `yaml:"minio-config"`
}

// RedisEntry describes one session-store server.
type RedisEntry struct {
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	// MaxPoolIdle is the pool's maximum size.
	MaxPoolIdle int `yaml:"max-pool-idle"`
	// IdlePoolSize is the number of connections kept open.
	IdlePoolSize int `yaml:"idle-pool-size"`
}

// MinioEntry describes one S3-compatible storage endpoint.
type MinioEntry struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access-key"`
	SecretKey    string `yaml:"secret-key"`
	Region       string `yaml:"region"`
	MaxPoolIdle  int    `yaml:"max-pool-idle"`
	IdlePoolSize int    `yaml:"idle-pool-size"`
	VirtualHost  bool   `yaml:"virtual-host"`
}

// Logging configures the process logger.
type Logging struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	SentryDSN   string `yaml:"sentry-dsn"`
	Environment string `yaml:"environment"`
}

// Health configures the background health monitor.
type Health struct {
	Interval     time.Duration `yaml:"interval"`
	ProbeTimeout time.Duration `yaml:"probe-timeout"`
}

// Server configures the HTTP server.
type Server struct {
	ShutdownTimeout   time.Duration `yaml:"shutdown-timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read-header-timeout"`
	IdleTimeout       time.Duration `yaml:"idle-timeout"`
}

// CORS configures cross-origin access.
type CORS struct {
	AllowOrigins []string `yaml:"allow-origins"`
}

// applyDefaults fills unset fields. A zero port means the default port.
func (c *Config) applyDefaults() {
	if c.ServerPort == 0 {
		c.ServerPort = DefaultPort
	}
	if c.MatchPrefix == "" {
		c.MatchPrefix = DefaultMatchPrefix
	}
	if c.PresignExpiry <= 0 {
		c.PresignExpiry = DefaultPresignExpiry
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Environment == "" {
		c.Logging.Environment = DefaultSentryEnvironment
	}
	if c.Health.Interval <= 0 {
		c.Health.Interval = DefaultHealthInterval
	}
	if c.Health.ProbeTimeout <= 0 {
		c.Health.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
}
