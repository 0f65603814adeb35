package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutWritesFileAndReturnsURI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	uri, err := store.Put(context.Background(), "basics/Black_hole.txt", "text/plain", []byte("content"))
	require.NoError(t, err)
	require.Equal(t, "file://"+filepath.Join(dir, "basics", "Black_hole.txt"), uri)

	data, err := os.ReadFile(filepath.Join(dir, "basics", "Black_hole.txt"))
	require.NoError(t, err)
	require.Equal(t, "content", string(data))
}

func TestPutRejectsPathTraversal(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.txt", "", []byte("x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "path traversal")
}

func TestPutRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "  ", "", []byte("x"))
	require.Error(t, err)
}

func TestNewCreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	_, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestNewRejectsEmptyBase(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)
}
