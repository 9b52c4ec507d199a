package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/syncwell/personio-extract/internal/observability"
	"github.com/syncwell/personio-extract/internal/secretstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText       LogFormat = observability.FormatText
	LogFormatJSON       LogFormat = observability.FormatJSON
	LogFormatOTLP       LogFormat = observability.FormatOTLP
	LogFormatOTLPStdout LogFormat = observability.FormatOTLPStdout
)

// SecretStorageType represents the storage backends for the client secret.
type SecretStorageType string

const (
	SecretStorageTypeFile    SecretStorageType = "file"
	SecretStorageTypeEnv     SecretStorageType = "env"
	SecretStorageTypeKeyring SecretStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigServerHost      = "127.0.0.1"
	DefaultConfigServerPort      = 4040
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigAPIBaseURL      = "https://api.personio.de/v1"
	DefaultConfigSecretStorage   = SecretStorageTypeFile
	DefaultConfigPageSize        = 200
	DefaultConfigOutput          = "-"
)

// ServerConfig holds the optional status server configuration.
type ServerConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host" validate:"hostname_rfc1123|ip"`
	Port    uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// APIConfig holds Personio API configuration.
type APIConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`
}

// AuthURL returns the token exchange endpoint under the configured base.
func (a APIConfig) AuthURL() string {
	return strings.TrimSuffix(a.BaseURL, "/") + "/auth"
}

// SecretConfig describes where the client secret lives at rest.
type SecretConfig struct {
	Storage SecretStorageType `json:"storage" validate:"required,oneof=file env keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	File        string `json:"file,omitempty"`         // For file storage: path to secret file
	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable name
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier
}

// NewStore creates a secret store from the configuration.
func (s *SecretConfig) NewStore() (secretstore.Store, error) {
	switch s.Storage {
	case SecretStorageTypeFile:
		return secretstore.NewFileStore(s.File)
	case SecretStorageTypeEnv:
		return secretstore.NewEnvStore(s.EnvKey)
	case SecretStorageTypeKeyring:
		return secretstore.NewKeyringStore("personio-extract-secret", s.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", s.Storage)
	}
}

// AuthConfig holds Personio authentication configuration.
type AuthConfig struct {
	ClientID string `json:"client_id" validate:"required"`

	// ClientSecret inline in config. When empty, the secret is read from
	// the configured store.
	ClientSecret string `json:"client_secret,omitempty"`

	Secret SecretConfig `json:"secret"`

	// DefaultExpiration applies when the token response has no expires_in.
	// Zero means such tokens never expire.
	DefaultExpiration time.Duration `json:"default_expiration"`
}

// ResolveClientSecret returns the inline secret or reads it from the store.
func (a *AuthConfig) ResolveClientSecret(ctx context.Context) (string, error) {
	if a.ClientSecret != "" {
		return a.ClientSecret, nil
	}

	store, err := a.Secret.NewStore()
	if err != nil {
		return "", fmt.Errorf("creating secret store: %w", err)
	}
	secret, err := store.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("reading client secret: %w", err)
	}
	return secret, nil
}

// ExtractConfig holds extraction run configuration.
type ExtractConfig struct {
	// Streams to extract. Empty means all streams.
	Streams []string `json:"streams" validate:"dive,oneof=employees time_offs attendances"`

	PageSize    int `json:"page_size" validate:"min=1,max=200"`
	Concurrency int `json:"concurrency" validate:"min=0"`

	// Output path for JSON lines, "-" for stdout.
	Output string `json:"output" validate:"required"`

	// Date window for time-bound streams, inclusive, format 2006-01-02.
	StartDate string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json otlp otlp-stdout"`
	Server    ServerConfig   `json:"server"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	API       APIConfig      `json:"api"`
	Auth      AuthConfig     `json:"auth"`
	Extract   ExtractConfig  `json:"extract"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultConfigAPIBaseURL
	}
	if c.Auth.Secret.Storage == "" {
		c.Auth.Secret.Storage = DefaultConfigSecretStorage
	}
	if c.Extract.PageSize == 0 {
		c.Extract.PageSize = DefaultConfigPageSize
	}
	if c.Extract.Output == "" {
		c.Extract.Output = DefaultConfigOutput
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Secret.Storage {
	case SecretStorageTypeFile:
		if c.Auth.Secret.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.secret.file required (auto-detect failed: %w)", err)
			}
			c.Auth.Secret.File = filepath.Join(configDir, "personio-extract", "secret")
		}
	case SecretStorageTypeKeyring:
		if c.Auth.Secret.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.secret.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.Secret.KeyringUser = currentUser.Username
		}
	case SecretStorageTypeEnv:
		// env_key must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Auth.ClientSecret == "" {
		switch c.Auth.Secret.Storage {
		case SecretStorageTypeFile:
			if c.Auth.Secret.File == "" {
				return errors.New("file path required for file storage")
			}
		case SecretStorageTypeEnv:
			if c.Auth.Secret.EnvKey == "" {
				return errors.New("env_key required for env storage")
			}
		case SecretStorageTypeKeyring:
			if c.Auth.Secret.KeyringUser == "" {
				return errors.New("keyring_user required for keyring storage")
			}
		}
	}

	if c.Extract.StartDate != "" && c.Extract.EndDate != "" && c.Extract.EndDate < c.Extract.StartDate {
		return errors.New("extract.end_date must not precede extract.start_date")
	}

	return nil
}
