package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/infrastructure/credentials"
)

func TestStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	store := credentials.NewStore(path)
	require.NoError(t, store.Load())

	_, ok := store.Token()
	assert.False(t, ok)

	creds := entities.Credentials{Token: "tok-1", Role: "user", Email: "a@b.c"}
	require.NoError(t, store.Save(creds))

	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)

	// A fresh store reads the same identity back from disk.
	reloaded := credentials.NewStore(path)
	require.NoError(t, reloaded.Load())
	current, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, creds, current)
}

func TestStore_InvalidateClearsMemoryAndDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store := credentials.NewStore(path)
	require.NoError(t, store.Save(entities.Credentials{Token: "tok-1"}))
	require.NoError(t, store.Invalidate())

	_, ok := store.Token()
	assert.False(t, ok)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Invalidating an already-empty store is a no-op.
	require.NoError(t, store.Invalidate())
}

func TestStore_MissingFileMeansNoIdentity(t *testing.T) {
	store := credentials.NewStore(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, store.Load())
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestStore_CorruptFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store := credentials.NewStore(path)
	assert.Error(t, store.Load())
}

func TestStore_FilePermissionsAreOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store := credentials.NewStore(path)
	require.NoError(t, store.Save(entities.Credentials{Token: "tok-1"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
