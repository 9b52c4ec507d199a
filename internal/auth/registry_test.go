package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SameConfigSharesInstance(t *testing.T) {
	r := NewRegistry()

	cfg := ProviderConfig{
		Credentials:       Credentials{ClientID: "id", ClientSecret: "secret"},
		DefaultExpiration: time.Hour,
	}

	a, err := r.Provider(cfg)
	require.NoError(t, err)
	b, err := r.Provider(cfg)
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestRegistry_DistinctConfigsGetDistinctInstances(t *testing.T) {
	r := NewRegistry()

	base := ProviderConfig{
		Credentials: Credentials{ClientID: "id", ClientSecret: "secret"},
	}
	a, err := r.Provider(base)
	require.NoError(t, err)

	variants := []ProviderConfig{
		{Credentials: Credentials{ClientID: "other", ClientSecret: "secret"}},
		{Credentials: Credentials{ClientID: "id", ClientSecret: "other"}},
		{Credentials: base.Credentials, Endpoint: "https://gateway.internal/v1/auth"},
		{Credentials: base.Credentials, DefaultExpiration: time.Minute},
	}
	for _, v := range variants {
		b, err := r.Provider(v)
		require.NoError(t, err)
		assert.NotSame(t, a, b)
	}
}

func TestRegistry_InvalidConfig(t *testing.T) {
	r := NewRegistry()

	_, err := r.Provider(ProviderConfig{})
	assert.Error(t, err)
}

func TestRegistry_ConcurrentLookupsConverge(t *testing.T) {
	r := NewRegistry()
	cfg := ProviderConfig{
		Credentials: Credentials{ClientID: "id", ClientSecret: "secret"},
	}

	const lookups = 32
	providers := make([]*Provider, lookups)
	var wg sync.WaitGroup
	wg.Add(lookups)
	for i := range lookups {
		go func() {
			defer wg.Done()
			p, err := r.Provider(cfg)
			if err != nil {
				t.Error(err)
				return
			}
			providers[i] = p
		}()
	}
	wg.Wait()

	for i := 1; i < lookups; i++ {
		assert.Same(t, providers[0], providers[i])
	}
}
