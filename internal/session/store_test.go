package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		KindMemory: NewMemoryStore(),
		KindFile:   NewFileStore(filepath.Join(dir, "nested", "session.toml")),
		KindSQLite: sqlite,
	}
}

func TestStoresGetSet(t *testing.T) {
	for name, store := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			v, err := store.Get("missing")
			require.NoError(t, err)
			assert.Equal(t, "", v)

			require.NoError(t, store.Set("HomePage_searchQuery", "cat"))
			require.NoError(t, store.Set("other", "dog"))
			require.NoError(t, store.Set("HomePage_searchQuery", "cats"))

			v, err = store.Get("HomePage_searchQuery")
			require.NoError(t, err)
			assert.Equal(t, "cats", v)

			v, err = store.Get("other")
			require.NoError(t, err)
			assert.Equal(t, "dog", v)
		})
	}
}

func TestNamespacedKeys(t *testing.T) {
	store := NewMemoryStore()
	a := NewNamespaced(store, "alpha")
	b := NewNamespaced(store, "beta")

	require.NoError(t, a.SaveQuery("cat"))
	require.NoError(t, b.SaveQuery("dog"))

	v, err := a.LoadQuery()
	require.NoError(t, err)
	assert.Equal(t, "cat", v)

	v, err = b.LoadQuery()
	require.NoError(t, err)
	assert.Equal(t, "dog", v)

	assert.Equal(t, "alpha_searchQuery", a.Key())
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")

	require.NoError(t, NewFileStore(path).Set("k", "value with \"quotes\""))

	v, err := NewFileStore(path).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "value with \"quotes\"", v)
}

func TestFileStoreReportsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("values = [not toml"), 0o644))

	_, err := NewFileStore(path).Get("k")
	assert.Error(t, err)
}

func TestSQLiteStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "cat"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	v, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "cat", v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, closer, err := Open("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, closer.Close())

	store, closer, err = Open(KindSQLite, filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	assert.NoError(t, closer.Close())

	_, _, err = Open(KindFile, "")
	assert.Error(t, err)

	_, _, err = Open("redis", "")
	assert.Error(t, err)
}
