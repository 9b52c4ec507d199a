package secretstore

import "context"

// Store reads and writes the API client secret.
type Store interface {
	// Read returns the stored secret. Returns an error if the secret is
	// missing or empty.
	Read(ctx context.Context) (string, error)

	// Write persists the secret. Returns an error if the backend is
	// read-only (environment variables) or the write fails.
	Write(ctx context.Context, secret string) error
}
