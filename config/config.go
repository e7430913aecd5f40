// Package config loads service configuration from a .env file, an optional TOML
// file, and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	EnvConfigFile = "CONFIG_FILE"

	EnvServerAddr       = "SERVER_ADDR"
	EnvAPIPrefix        = "API_PREFIX"
	EnvShutdownTimeout  = "SERVER_SHUTDOWN_TIMEOUT"
	EnvMaxBodySize      = "HTTP_MAX_BODY_SIZE"
	EnvCORSOrigins      = "CORS_ALLOWED_ORIGINS"
	EnvKVBackend        = "KV_BACKEND"
	EnvBadgerDir        = "BADGER_DIR"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvDatabaseDriver   = "DATABASE_DRIVER"
	EnvKVTable          = "KV_TABLE"
	EnvSupabaseURL      = "SUPABASE_URL"
	EnvServiceRoleKey   = "SUPABASE_SERVICE_ROLE_KEY"
	EnvJWTSecret        = "SUPABASE_JWT_SECRET"
	EnvServerTimestamps = "DOCUMENTS_SERVER_TIMESTAMPS"
	EnvLogLevel         = "LOG_LEVEL"
)

// Storage backends accepted by StoreConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// SQL drivers for the postgres backend.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Auth      AuthConfig      `toml:"auth"`
	Documents DocumentsConfig `toml:"documents"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Addr            string   `toml:"addr"`
	APIPrefix       string   `toml:"api_prefix"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	MaxBodySize     string   `toml:"max_body_size"`
	CORSOrigins     []string `toml:"cors_allowed_origins"`

	shutdownTimeout time.Duration
	maxBodySize     int64
}

// ShutdownTimeoutDuration is valid after Finalize.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return c.shutdownTimeout }

// MaxBodySizeBytes is valid after Finalize.
func (c *ServerConfig) MaxBodySizeBytes() int64 { return c.maxBodySize }

type StoreConfig struct {
	Backend     string `toml:"backend"`
	BadgerDir   string `toml:"badger_dir"`
	DatabaseURL string `toml:"database_url"`
	Driver      string `toml:"driver"`
	Table       string `toml:"table"`
}

type AuthConfig struct {
	SupabaseURL    string `toml:"supabase_url"`
	ServiceRoleKey string `toml:"service_role_key"`
	JWTSecret      string `toml:"jwt_secret"`
}

type DocumentsConfig struct {
	// ServerTimestamps makes the server stamp createdAt/updatedAt instead of
	// trusting the client's values.
	ServerTimestamps bool `toml:"server_timestamps"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Load reads .env (if present) and the TOML file named by CONFIG_FILE (if set),
// then applies defaults and environment overrides.
func Load() (*Config, error) {
	// A missing .env is fine; the OS environment is used as is.
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv(EnvConfigFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) loadDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.APIPrefix == "" {
		c.Server.APIPrefix = "/make-server"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Server.MaxBodySize == "" {
		c.Server.MaxBodySize = "1MB"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendMemory
	}
	if c.Store.BadgerDir == "" {
		c.Store.BadgerDir = ".data/badger"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverPQ
	}
	if c.Store.Table == "" {
		c.Store.Table = "kv_store"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) loadEnv() error {
	setString(&c.Server.Addr, EnvServerAddr)
	setString(&c.Server.APIPrefix, EnvAPIPrefix)
	setString(&c.Server.ShutdownTimeout, EnvShutdownTimeout)
	setString(&c.Server.MaxBodySize, EnvMaxBodySize)
	if v := strings.TrimSpace(os.Getenv(EnvCORSOrigins)); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	setString(&c.Store.Backend, EnvKVBackend)
	setString(&c.Store.BadgerDir, EnvBadgerDir)
	setString(&c.Store.DatabaseURL, EnvDatabaseURL)
	setString(&c.Store.Driver, EnvDatabaseDriver)
	setString(&c.Store.Table, EnvKVTable)
	setString(&c.Auth.SupabaseURL, EnvSupabaseURL)
	setString(&c.Auth.ServiceRoleKey, EnvServiceRoleKey)
	setString(&c.Auth.JWTSecret, EnvJWTSecret)
	setString(&c.Logging.Level, EnvLogLevel)

	if v := strings.TrimSpace(os.Getenv(EnvServerTimestamps)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvServerTimestamps, err)
		}
		c.Documents.ServerTimestamps = b
	}
	return nil
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	c.Server.shutdownTimeout = d

	size, err := units.FromHumanSize(c.Server.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return errors.New("max_body_size must be positive")
	}
	c.Server.maxBodySize = size

	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with '/': %q", c.Server.APIPrefix)
	}
	c.Server.APIPrefix = strings.TrimRight(c.Server.APIPrefix, "/")

	switch c.Store.Backend {
	case BackendMemory, BackendBadger:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%s is required for the postgres backend", EnvDatabaseURL)
		}
		if c.Store.Driver != DriverPQ && c.Store.Driver != DriverPGX {
			return fmt.Errorf("unknown database driver %q", c.Store.Driver)
		}
		if !tableName.MatchString(c.Store.Table) {
			return fmt.Errorf("invalid kv table name %q", c.Store.Table)
		}
	default:
		return fmt.Errorf("unknown kv backend %q", c.Store.Backend)
	}

	if c.Auth.JWTSecret == "" && (c.Auth.SupabaseURL == "" || c.Auth.ServiceRoleKey == "") {
		return fmt.Errorf("either %s or both %s and %s must be set", EnvJWTSecret, EnvSupabaseURL, EnvServiceRoleKey)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
