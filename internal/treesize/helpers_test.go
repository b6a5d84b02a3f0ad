package treesize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files of the given sizes beneath root.
// Keys are slash-separated paths relative to root.
func writeTree(t *testing.T, root string, files map[string]int) {
	t.Helper()

	for rel, size := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	}
}

// ancestorsOf returns path and each of its ancestors up to the filesystem root.
func ancestorsOf(path string) []string {
	var chain []string

	for {
		chain = append(chain, path)

		parent := filepath.Dir(path)
		if parent == path {
			return chain
		}

		path = parent
	}
}

// sizesOf indexes the rows of a report by path.
func sizesOf(report *Report) map[string]int64 {
	sizes := make(map[string]int64, len(report.Rows))
	for _, row := range report.Rows {
		sizes[row.Path] = row.Size
	}

	return sizes
}
