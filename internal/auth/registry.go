package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// ProviderConfig identifies one provider in a Registry. Two configs with the
// same fingerprint share a Provider instance, and with it one token fetch.
type ProviderConfig struct {
	// Endpoint of the token exchange. Empty means DefaultEndpoint.
	Endpoint string

	Credentials Credentials

	// DefaultExpiration applies when the exchange response carries no
	// expires_in. Zero means such tokens never expire.
	DefaultExpiration time.Duration
}

// fingerprint derives a stable cache key from every field that affects
// token exchange behavior.
func (c ProviderConfig) fingerprint() string {
	h := sha256.New()
	for _, part := range []string{
		c.Endpoint,
		c.Credentials.ClientID,
		c.Credentials.ClientSecret,
		strconv.FormatInt(int64(c.DefaultExpiration), 10),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Registry hands out one Provider per credential set, constructed lazily on
// first lookup. It replaces hidden global state with an explicit mapping
// from configuration fingerprint to instance.
type Registry struct {
	providers *cache.Cache
}

// NewRegistry creates an empty Registry. Entries never expire; a provider
// lives as long as the registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: cache.New(cache.NoExpiration, 0),
	}
}

// Provider returns the Provider for the given config, constructing it on
// first use. Concurrent lookups of the same config converge on one instance.
func (r *Registry) Provider(cfg ProviderConfig, opts ...ProviderOption) (*Provider, error) {
	key := cfg.fingerprint()

	if cached, ok := r.providers.Get(key); ok {
		return cached.(*Provider), nil
	}

	if cfg.Endpoint != "" {
		opts = append(opts, WithEndpoint(cfg.Endpoint))
	}
	if cfg.DefaultExpiration > 0 {
		opts = append(opts, WithDefaultExpiration(cfg.DefaultExpiration))
	}

	provider, err := NewProvider(cfg.Credentials, opts...)
	if err != nil {
		return nil, err
	}

	// Add fails if another goroutine won the construction race; reuse the
	// winner so both callers share one instance.
	if err := r.providers.Add(key, provider, cache.NoExpiration); err != nil {
		if cached, ok := r.providers.Get(key); ok {
			return cached.(*Provider), nil
		}
	}
	return provider, nil
}
