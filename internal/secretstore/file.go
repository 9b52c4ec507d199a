package secretstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the secret in a single file. Writes go through a temp
// file plus rename for crash safety, and reads reject files readable by
// anyone but the owner.
type FileStore struct {
	path string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore at the given path, creating parent
// directories with 0700 permissions as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("secret file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	return &FileStore{path: path}, nil
}

// Read returns the stored secret with surrounding whitespace trimmed.
func (f *FileStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return "", err
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		return "", fmt.Errorf("insecure permissions on %s: %04o (expected 0600)", f.path, perm)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("empty secret file %s", f.path)
	}
	return secret, nil
}

// Write replaces the stored secret atomically and leaves the file with
// 0600 permissions.
func (f *FileStore) Write(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "secret-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	defer func() { _ = tmp.Close() }()

	if err := tmp.Chmod(0600); err != nil {
		return err
	}
	if _, err := tmp.WriteString(strings.TrimSpace(secret) + "\n"); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, f.path)
}
