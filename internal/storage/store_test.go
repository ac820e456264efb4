package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStoreRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	want := testDoc{Name: "alpha", Count: 3}
	require.NoError(t, store.Write("doc.json", want))

	var got testDoc
	ok, err := store.Read("doc.json", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestStoreReadMissingLeavesDefault(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc := testDoc{Name: "default", Count: 7}
	ok, err := store.Read("missing.json", &doc)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, testDoc{Name: "default", Count: 7}, doc, "missing document must not touch the destination")
}

func TestStoreReadCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	var doc testDoc
	_, err = store.Read("bad.json", &doc)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCorruptDocument))
}

func TestStoreWriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Write("doc.json", testDoc{Name: "v1", Count: 1}))
	require.NoError(t, store.Write("doc.json", testDoc{Name: "v2", Count: 2}))

	var got testDoc
	ok, err := store.Read("doc.json", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", got.Name)

	// No temp artifacts survive a successful write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStoreFailedWritePreservesCanonical(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Write("doc.json", testDoc{Name: "stable", Count: 1}))

	// Channels cannot be marshalled; the write must fail before touching disk.
	err = store.Write("doc.json", make(chan int))
	require.Error(t, err)

	var got testDoc
	ok, err := store.Read("doc.json", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "stable", got.Name, "failed write must leave the canonical document untouched")
}

func TestStoreStrayTempDoesNotShadowCanonical(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Write("doc.json", testDoc{Name: "canonical", Count: 1}))

	// Simulate a crash between scratch-write and rename: a leftover temp file
	// next to the canonical document.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.json.tmp-crash"), []byte("garbage"), 0o644))

	var got testDoc
	ok, err := store.Read("doc.json", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "canonical", got.Name)
}
