package secretstore

import (
	"context"
	"fmt"
	"os"
)

// EnvStore reads the secret from an environment variable. It is read-only;
// the variable is expected to be injected by external secret management.
type EnvStore struct {
	key string
}

// Compile-time check to ensure EnvStore implements Store
var _ Store = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore for the given variable. Returns an error
// if the name is empty or the variable is not set.
func NewEnvStore(key string) (*EnvStore, error) {
	if key == "" {
		return nil, fmt.Errorf("environment variable name cannot be empty")
	}
	if _, ok := os.LookupEnv(key); !ok {
		return nil, fmt.Errorf("environment variable %s not set", key)
	}

	return &EnvStore{key: key}, nil
}

// Read returns the secret from the environment. Returns an error if empty.
func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	secret := os.Getenv(e.key)
	if secret == "" {
		return "", fmt.Errorf("environment variable %s is empty", e.key)
	}
	return secret, nil
}

// Write is not supported; environment variables are read-only.
func (e *EnvStore) Write(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("environment variable storage is read-only")
}
