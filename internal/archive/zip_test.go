package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "basics"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "INDEX.txt"), []byte("index"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "basics", "Black_hole.txt"), []byte("doc"), 0o600))
	return root
}

func readEntries(t *testing.T, data []byte) map[string]string {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string, len(reader.File))
	for _, f := range reader.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(content)
	}
	return entries
}

func TestZipDirBundlesTree(t *testing.T) {
	t.Parallel()

	data, err := ZipDir(writeTree(t), "job-1")
	require.NoError(t, err)

	entries := readEntries(t, data)
	require.Equal(t, map[string]string{
		"job-1/INDEX.txt":             "index",
		"job-1/basics/Black_hole.txt": "doc",
	}, entries)
}

func TestZipDirWithoutPrefix(t *testing.T) {
	t.Parallel()

	data, err := ZipDir(writeTree(t), "")
	require.NoError(t, err)

	entries := readEntries(t, data)
	require.Contains(t, entries, "INDEX.txt")
	require.Contains(t, entries, "basics/Black_hole.txt")
}

func TestZipDirMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := ZipDir(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
}
