package filestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janelia-flyem/brickvol/brick"
	"github.com/janelia-flyem/brickvol/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.Equal(t, storage.FileSystem, store.Kind())

	payload := []byte("brick payload")
	require.NoError(t, store.Write(ctx, "bricks/lod0/00000000.brick", payload))

	data, err := store.Read(ctx, "bricks/lod0/00000000.brick")
	require.NoError(t, err)
	require.Equal(t, payload, data)

	found, err := store.Exists(ctx, "bricks/lod0/00000000.brick")
	require.NoError(t, err)
	require.True(t, found)

	size, err := store.Size(ctx, "bricks/lod0/00000000.brick")
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), size)
}

func TestStoreCreatesBaseAndParents(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "not", "yet", "there")
	store, err := NewStore(base)
	require.NoError(t, err)
	defer store.Close()

	// Nested path parents appear transparently on write.
	require.NoError(t, store.Write(ctx, "bricks/lod3/00000007.brick", []byte{1}))
	data, err := store.Read(ctx, "bricks/lod3/00000007.brick")
	require.NoError(t, err)
	require.Equal(t, []byte{1}, data)
}

func TestStoreMissingPath(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Read(ctx, "metadata.json")
	require.ErrorIs(t, err, brick.ErrNotFound)

	found, err := store.Exists(ctx, "metadata.json")
	require.NoError(t, err)
	require.False(t, found)

	_, err = store.Size(ctx, "metadata.json")
	require.ErrorIs(t, err, brick.ErrNotFound)

	err = store.Delete(ctx, "metadata.json")
	require.ErrorIs(t, err, brick.ErrNotFound)
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(ctx, "k", []byte("first version, longer")))
	require.NoError(t, store.Write(ctx, "k", []byte("second")))
	data, err := store.Read(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)
}

func TestStoreDeleteAndList(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(ctx, "bricks/lod0/00000000.brick", []byte{1}))
	require.NoError(t, store.Write(ctx, "bricks/lod0/00000001.brick", []byte{2}))

	names, err := store.List(ctx, "bricks/lod0")
	require.NoError(t, err)
	require.ElementsMatch(t,
		[]string{"00000000.brick", "00000001.brick"}, names)

	require.NoError(t, store.Delete(ctx, "bricks/lod0/00000000.brick"))
	found, err := store.Exists(ctx, "bricks/lod0/00000000.brick")
	require.NoError(t, err)
	require.False(t, found)

	// Listing an absent prefix is empty, not an error.
	names, err = store.List(ctx, "bricks/lod9")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestStoreHonorsCancellation(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, store.Write(ctx, "k", []byte{1}))
	_, err = store.Read(ctx, "k")
	require.Error(t, err)
}

func TestEngineRegistration(t *testing.T) {
	e, found := storage.EngineFor(storage.FileSystem)
	require.True(t, found)
	require.Equal(t, "filestore", e.Name)

	store, err := storage.Open("file://" + t.TempDir())
	require.NoError(t, err)
	require.Equal(t, storage.FileSystem, store.Kind())
	store.Close()
}

func TestNewStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewStore("")
	require.ErrorIs(t, err, brick.ErrConfiguration)
}
