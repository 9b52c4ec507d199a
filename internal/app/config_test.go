package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Auth.ClientID = "client-id"
	cfg.Auth.ClientSecret = "client-secret"
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfigLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultConfigServerHost, cfg.Server.Host)
	assert.Equal(t, uint16(DefaultConfigServerPort), cfg.Server.Port)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, DefaultConfigShutdownTimeout, cfg.Shutdown.Timeout)
	assert.Equal(t, DefaultConfigAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultConfigSecretStorage, cfg.Auth.Secret.Storage)
	assert.NotEmpty(t, cfg.Auth.Secret.File)
	assert.Equal(t, DefaultConfigPageSize, cfg.Extract.PageSize)
	assert.Equal(t, DefaultConfigOutput, cfg.Extract.Output)
}

func TestConfig_AuthURL(t *testing.T) {
	cfg := APIConfig{BaseURL: "https://api.personio.de/v1"}
	assert.Equal(t, "https://api.personio.de/v1/auth", cfg.AuthURL())

	cfg.BaseURL = "https://gateway.internal/personio/"
	assert.Equal(t, "https://gateway.internal/personio/auth", cfg.AuthURL())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestConfig_Validate_MissingClientID(t *testing.T) {
	cfg := validConfig(t)
	cfg.Auth.ClientID = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_UnknownStream(t *testing.T) {
	cfg := validConfig(t)
	cfg.Extract.Streams = []string{"employees", "payroll"}
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_BadLogFormat(t *testing.T) {
	cfg := validConfig(t)
	cfg.LogFormat = "yaml"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_PageSizeBounds(t *testing.T) {
	cfg := validConfig(t)
	cfg.Extract.PageSize = 500
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_EnvStorageNeedsKey(t *testing.T) {
	cfg := validConfig(t)
	cfg.Auth.ClientSecret = ""
	cfg.Auth.Secret.Storage = SecretStorageTypeEnv
	cfg.Auth.Secret.EnvKey = ""
	assert.ErrorContains(t, cfg.Validate(), "env_key")
}

func TestConfig_Validate_WindowOrder(t *testing.T) {
	cfg := validConfig(t)
	cfg.Extract.StartDate = "2026-02-01"
	cfg.Extract.EndDate = "2026-01-01"
	assert.ErrorContains(t, cfg.Validate(), "end_date")
}

func TestConfig_Validate_BadDate(t *testing.T) {
	cfg := validConfig(t)
	cfg.Extract.StartDate = "01.02.2026"
	assert.Error(t, cfg.Validate())
}

func TestAuthConfig_ResolveClientSecret_Inline(t *testing.T) {
	cfg := AuthConfig{ClientID: "id", ClientSecret: "inline"}

	secret, err := cfg.ResolveClientSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inline", secret)
}

func TestAuthConfig_ResolveClientSecret_FromStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	cfg := AuthConfig{
		ClientID: "id",
		Secret: SecretConfig{
			Storage: SecretStorageTypeFile,
			File:    path,
		},
	}

	store, err := cfg.Secret.NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), "stored-secret"))

	secret, err := cfg.ResolveClientSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-secret", secret)
}

func TestAuthConfig_DefaultExpirationRoundTrip(t *testing.T) {
	cfg := validConfig(t)
	cfg.Auth.DefaultExpiration = 24 * time.Hour
	assert.NoError(t, cfg.Validate())
}
