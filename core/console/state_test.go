package console

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateStoresUnderTest(t *testing.T) map[string]StateStore {
	t.Helper()

	boltStore, err := OpenBoltStateStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { boltStore.Close() })

	return map[string]StateStore{
		"memory": NewMemoryStateStore(),
		"bolt":   boltStore,
	}
}

func TestStateStoreContract(t *testing.T) {
	for name, store := range stateStoresUnderTest(t) {
		store := store

		t.Run(name+"/roundtrip", func(t *testing.T) {
			require.NoError(t, store.Put("sess", "lines", []string{"a", "b"}))

			var lines []string
			ok, err := store.Get("sess", "lines", &lines)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []string{"a", "b"}, lines)
		})

		t.Run(name+"/missing key", func(t *testing.T) {
			var out string
			ok, err := store.Get("sess", "absent", &out)
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run(name+"/namespaces are independent", func(t *testing.T) {
			require.NoError(t, store.Put("alpha", "k", "from-alpha"))
			require.NoError(t, store.Put("beta", "k", "from-beta"))

			var got string
			_, err := store.Get("alpha", "k", &got)
			require.NoError(t, err)
			assert.Equal(t, "from-alpha", got)
		})

		t.Run(name+"/delete", func(t *testing.T) {
			require.NoError(t, store.Put("sess", "gone", 1))
			require.NoError(t, store.Delete("sess", "gone"))

			var out int
			ok, err := store.Get("sess", "gone", &out)
			require.NoError(t, err)
			assert.False(t, ok)

			// Deleting an absent key or namespace is fine.
			require.NoError(t, store.Delete("sess", "gone"))
			require.NoError(t, store.Delete("never-seen", "k"))
		})

		t.Run(name+"/namespaces listing", func(t *testing.T) {
			assert.Contains(t, store.Namespaces(), "alpha")
			assert.Contains(t, store.Namespaces(), "beta")
		})
	}
}

func TestBoltStateStoreDurability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := OpenBoltStateStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put("sess", "cwd", "/home/guest"))
	require.NoError(t, store.Close())

	reopened, err := OpenBoltStateStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	var cwd string
	ok, err := reopened.Get("sess", "cwd", &cwd)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/home/guest", cwd)
}

func TestScopedState(t *testing.T) {
	store := NewMemoryStateStore()
	scoped := &ScopedState{store: store, namespace: "sess"}

	require.NoError(t, scoped.Put("k", 42))

	var direct int
	ok, err := store.Get("sess", "k", &direct)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, direct)

	require.NoError(t, scoped.Delete("k"))
	ok, err = scoped.Get("k", &direct)
	require.NoError(t, err)
	assert.False(t, ok)
}
