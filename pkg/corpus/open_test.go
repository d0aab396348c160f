package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corpus.yaml")

	store, err := Open(ctx, Options{Backend: "file", Path: path})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, threeFriends()))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, threeFriends(), loaded)
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Options{Backend: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, threeFriends()))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, threeFriends().Names(), loaded.Names())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "postgres"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
