package vfs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// providerUnderTest builds each Provider implementation so the whole
// contract suite runs against all of them.
func providersUnderTest(t *testing.T) map[string]Provider {
	t.Helper()

	boltProvider, err := OpenBoltProvider(filepath.Join(t.TempDir(), "fs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { boltProvider.Close() })

	return map[string]Provider{
		"memory": NewMemoryProvider(nil),
		"bolt":   boltProvider,
	}
}

func TestProviderContract(t *testing.T) {
	for name, provider := range providersUnderTest(t) {
		provider := provider
		ctx := context.Background()

		t.Run(name+"/root is a directory", func(t *testing.T) {
			meta, err := provider.Stat(ctx, provider.Root())
			require.NoError(t, err)
			assert.True(t, meta.IsDir())
			assert.True(t, provider.Exists(ctx, provider.Root()))
		})

		t.Run(name+"/write read roundtrip", func(t *testing.T) {
			meta, err := provider.CreateInode(ctx, KindFile, 0644)
			require.NoError(t, err)
			require.NoError(t, provider.Link(ctx, provider.Root(), "data.txt", meta.Ino))

			require.NoError(t, provider.WriteFile(ctx, meta.Ino, []byte("hello")))
			data, err := provider.ReadFile(ctx, meta.Ino)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), data)

			updated, err := provider.Stat(ctx, meta.Ino)
			require.NoError(t, err)
			assert.Equal(t, int64(5), updated.Size)
		})

		t.Run(name+"/directories reject file io", func(t *testing.T) {
			_, err := provider.ReadFile(ctx, provider.Root())
			assert.ErrorIs(t, err, ErrIsDirectory)
			assert.ErrorIs(t, provider.WriteFile(ctx, provider.Root(), nil), ErrIsDirectory)
		})

		t.Run(name+"/readdir sorted", func(t *testing.T) {
			dir, err := provider.CreateInode(ctx, KindDirectory, 0755)
			require.NoError(t, err)
			require.NoError(t, provider.Link(ctx, provider.Root(), "sorted", dir.Ino))

			for _, child := range []string{"zeta", "alpha", "mid"} {
				meta, err := provider.CreateInode(ctx, KindFile, 0644)
				require.NoError(t, err)
				require.NoError(t, provider.Link(ctx, dir.Ino, child, meta.Ino))
			}

			entries, err := provider.ReadDir(ctx, dir.Ino)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, "alpha", entries[0].Name)
			assert.Equal(t, "mid", entries[1].Name)
			assert.Equal(t, "zeta", entries[2].Name)
		})

		t.Run(name+"/duplicate link fails", func(t *testing.T) {
			meta, err := provider.CreateInode(ctx, KindFile, 0644)
			require.NoError(t, err)
			require.NoError(t, provider.Link(ctx, provider.Root(), "dup", meta.Ino))
			assert.ErrorIs(t, provider.Link(ctx, provider.Root(), "dup", meta.Ino), ErrExist)
		})

		t.Run(name+"/unlink tracks link count", func(t *testing.T) {
			meta, err := provider.CreateInode(ctx, KindFile, 0644)
			require.NoError(t, err)
			require.NoError(t, provider.Link(ctx, provider.Root(), "counted", meta.Ino))

			linked, err := provider.Stat(ctx, meta.Ino)
			require.NoError(t, err)
			assert.Equal(t, 1, linked.LinkCount)

			require.NoError(t, provider.Unlink(ctx, provider.Root(), "counted"))
			unlinked, err := provider.Stat(ctx, meta.Ino)
			require.NoError(t, err)
			assert.Equal(t, 0, unlinked.LinkCount)

			assert.ErrorIs(t, provider.Unlink(ctx, provider.Root(), "counted"), ErrNotFound)
		})

		t.Run(name+"/delete non-empty directory fails", func(t *testing.T) {
			dir, err := provider.CreateInode(ctx, KindDirectory, 0755)
			require.NoError(t, err)
			require.NoError(t, provider.Link(ctx, provider.Root(), "full", dir.Ino))

			child, err := provider.CreateInode(ctx, KindFile, 0644)
			require.NoError(t, err)
			require.NoError(t, provider.Link(ctx, dir.Ino, "child", child.Ino))

			assert.ErrorIs(t, provider.DeleteInode(ctx, dir.Ino), ErrNotEmpty)

			require.NoError(t, provider.Unlink(ctx, dir.Ino, "child"))
			require.NoError(t, provider.DeleteInode(ctx, child.Ino))
			require.NoError(t, provider.Unlink(ctx, provider.Root(), "full"))
			require.NoError(t, provider.DeleteInode(ctx, dir.Ino))
			assert.False(t, provider.Exists(ctx, dir.Ino))
		})

		t.Run(name+"/partial update", func(t *testing.T) {
			meta, err := provider.CreateInode(ctx, KindFile, 0644)
			require.NoError(t, err)

			uid, gid := 1000, 1000
			updated, err := provider.UpdateInode(ctx, meta.Ino, InodeUpdate{UID: &uid, GID: &gid})
			require.NoError(t, err)
			assert.Equal(t, 1000, updated.UID)
			assert.Equal(t, 1000, updated.GID)
			// Untouched fields survive.
			assert.Equal(t, meta.Perm, updated.Perm)
		})

		t.Run(name+"/missing inode", func(t *testing.T) {
			_, err := provider.Stat(ctx, 999999)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.False(t, provider.Exists(ctx, 999999))
		})

		t.Run(name+"/canceled context", func(t *testing.T) {
			canceled, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := provider.Stat(canceled, provider.Root())
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestBoltProviderDurability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fs.db")
	ctx := context.Background()

	provider, err := OpenBoltProvider(path, nil)
	require.NoError(t, err)

	meta, err := provider.CreateInode(ctx, KindFile, 0644)
	require.NoError(t, err)
	require.NoError(t, provider.Link(ctx, provider.Root(), "persisted.txt", meta.Ino))
	require.NoError(t, provider.WriteFile(ctx, meta.Ino, []byte("still here")))
	require.NoError(t, provider.Close())

	reopened, err := OpenBoltProvider(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.ReadDir(ctx, reopened.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted.txt", entries[0].Name)

	data, err := reopened.ReadFile(ctx, entries[0].Ino)
	require.NoError(t, err)
	assert.Equal(t, []byte("still here"), data)
}
