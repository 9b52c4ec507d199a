package secretstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "papi-secret-value"))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "papi-secret-value", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_WriteTrimsWhitespace(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "secret"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "  value\n"))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}

func TestFileStore_ReadMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)

	_, err = store.Read(context.Background())
	assert.Error(t, err)
}

func TestFileStore_ReadRejectsLoosePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("value\n"), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Read(context.Background())
	assert.ErrorContains(t, err, "insecure permissions")
}

func TestFileStore_ReadRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Read(context.Background())
	assert.ErrorContains(t, err, "empty secret")
}

func TestFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
