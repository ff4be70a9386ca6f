package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const defaultSessionSecret = "default-secret-key-change-me"

type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	GinMode    string `mapstructure:"gin_mode"`

	DatabaseURL string `mapstructure:"database_url"`

	UploadBackend  string `mapstructure:"upload_backend"`
	UploadDir      string `mapstructure:"upload_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	S3Bucket       string `mapstructure:"s3_bucket"`
	S3Region       string `mapstructure:"s3_region"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3AccessKey    string `mapstructure:"s3_access_key"`
	S3SecretKey    string `mapstructure:"s3_secret_key"`

	SessionSecret string `mapstructure:"session_secret"`
	SessionStore  string `mapstructure:"session_store"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`

	CSRFEnabled      bool `mapstructure:"csrf_enabled"`
	AllowAdminSignup bool `mapstructure:"allow_admin_signup"`
	LoginRateLimit   int  `mapstructure:"login_rate_limit"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"listen_addr":        ":8080",
	"gin_mode":           "debug",
	"database_url":       "sqlite://employees.db",
	"upload_backend":     "local",
	"upload_dir":         "uploads",
	"max_upload_bytes":   5 << 20,
	"s3_bucket":          "",
	"s3_region":          "us-east-1",
	"s3_endpoint":        "",
	"s3_access_key":      "",
	"s3_secret_key":      "",
	"session_secret":     defaultSessionSecret,
	"session_store":      "cookie",
	"redis_host":         "localhost",
	"redis_port":         "6379",
	"csrf_enabled":       true,
	"allow_admin_signup": false,
	"login_rate_limit":   10,
	"log_level":          "info",
	"log_format":         "text",
}

// Load reads configuration from the environment (DATABASE_URL, UPLOAD_DIR,
// SESSION_SECRET, ...) and, when path is non-empty, from that config file.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// UsesDefaultSecret reports whether the built-in development secret is in use.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == defaultSessionSecret
}

func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "database_url is required")
	}
	if c.SessionSecret == "" {
		errs = append(errs, "session_secret is required")
	}
	if c.IsProduction() && (c.UsesDefaultSecret() || len(c.SessionSecret) < 32) {
		errs = append(errs, "session_secret must be set to at least 32 bytes in release mode")
	}

	switch c.UploadBackend {
	case "local":
		if c.UploadDir == "" {
			errs = append(errs, "upload_dir is required for the local upload backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, "s3_bucket is required for the s3 upload backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown upload_backend %q", c.UploadBackend))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, "max_upload_bytes must be positive")
	}

	switch c.SessionStore {
	case "cookie", "redis":
	default:
		errs = append(errs, fmt.Sprintf("unknown session_store %q", c.SessionStore))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}
