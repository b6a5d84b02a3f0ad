package treesize

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedSizes computes the ancestor sums of files (absolute path -> size) directly.
func expectedSizes(files map[string]int64) Mapping {
	want := make(Mapping)

	for file, size := range files {
		for _, path := range ancestorsOf(file) {
			want[path] += size
		}
	}

	return want
}

// absFiles resolves a relative tree description against root.
func absFiles(root string, files map[string]int) map[string]int64 {
	abs := make(map[string]int64, len(files))
	for rel, size := range files {
		abs[filepath.Join(root, filepath.FromSlash(rel))] = int64(size)
	}

	return abs
}

func TestWalkAncestorSums(t *testing.T) {
	root := t.TempDir()
	files := map[string]int{
		"a/file1":         100,
		"a/file2":         50,
		"a/deep/er/file3": 7,
		"a/deep/file4":    3,
	}
	writeTree(t, root, files)

	walker := NewWalker(root, nil, nil, 0)

	local, err := walker.Walk(context.Background(), Unit{Path: filepath.Join(root, "a")})
	require.NoError(t, err)

	assert.Equal(t, expectedSizes(absFiles(root, files)), local.Sizes)
	assert.Equal(t, int64(4), local.Files)
	assert.Zero(t, local.Errors)
	assert.Equal(t, int64(160), local.Sizes[root])
	assert.Equal(t, int64(10), local.Sizes[filepath.Join(root, "a", "deep")])
}

func TestWalkZeroByteFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a/empty": 0})

	local, err := NewWalker(root, nil, nil, 1).Walk(context.Background(), Unit{Path: filepath.Join(root, "a")})
	require.NoError(t, err)

	size, ok := local.Sizes[filepath.Join(root, "a", "empty")]
	require.True(t, ok)
	assert.Zero(t, size)
	assert.Equal(t, int64(1), local.Files)
}

func TestWalkEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", "c"), 0o755))

	local, err := NewWalker(root, nil, nil, 0).Walk(context.Background(), Unit{Path: filepath.Join(root, "a")})
	require.NoError(t, err)

	assert.Empty(t, local.Sizes)
	assert.Zero(t, local.Files)
}

func TestWalkFileUnit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"top.bin": 42})

	file := filepath.Join(root, "top.bin")

	local, err := NewWalker(root, nil, nil, 0).Walk(context.Background(), Unit{Path: file})
	require.NoError(t, err)

	assert.Equal(t, expectedSizes(map[string]int64{file: 42}), local.Sizes)
}

func TestWalkDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"target/big.bin": 1 << 20,
		"a/real":         10,
	})

	dirLink := filepath.Join(root, "a", "dirlink")
	fileLink := filepath.Join(root, "a", "filelink")

	if err := os.Symlink(filepath.Join(root, "target"), dirLink); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	require.NoError(t, os.Symlink(filepath.Join(root, "target", "big.bin"), fileLink))

	// A link pointing at its own parent would loop forever if followed.
	loop := filepath.Join(root, "a", "loop")
	require.NoError(t, os.Symlink(filepath.Join(root, "a"), loop))

	local, err := NewWalker(root, nil, nil, 0).Walk(context.Background(), Unit{Path: filepath.Join(root, "a")})
	require.NoError(t, err)

	files := map[string]int64{filepath.Join(root, "a", "real"): 10}

	for _, link := range []string{dirLink, fileLink, loop} {
		info, err := os.Lstat(link)
		require.NoError(t, err)

		files[link] = info.Size()
	}

	assert.Equal(t, expectedSizes(files), local.Sizes)

	for path := range local.Sizes {
		assert.False(t, strings.HasPrefix(path, dirLink+string(filepath.Separator)), "followed %s", path)
	}

	assert.Less(t, local.Sizes[root], int64(1<<20))
}

func TestWalkSymlinkUnit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"target/big.bin": 4096})

	link := filepath.Join(root, "link")
	if err := os.Symlink(filepath.Join(root, "target"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	local, err := NewWalker(root, nil, nil, 0).Walk(context.Background(), Unit{Path: link})
	require.NoError(t, err)

	info, err := os.Lstat(link)
	require.NoError(t, err)

	assert.Equal(t, expectedSizes(map[string]int64{link: info.Size()}), local.Sizes)
}

func TestWalkIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"a/keep.go":                 5,
		"a/scratch.tmp":             100,
		"a/node_modules/dep/big.js": 1000,
		"a/sub/node_modules/x.js":   1000,
	})

	walker := NewWalker(root, nil, []string{"node_modules/", "*.tmp"}, 0)

	local, err := walker.Walk(context.Background(), Unit{Path: filepath.Join(root, "a")})
	require.NoError(t, err)

	assert.Equal(t, expectedSizes(map[string]int64{filepath.Join(root, "a", "keep.go"): 5}), local.Sizes)
}

func TestWalkExcludedSubtree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"A/B/f":  10,
		"A/Bx/g": 20,
		"A/B2/h": 0,
	})

	walker := NewWalker(root, NewFilter(root, []string{"A/B"}), nil, 0)

	local, err := walker.Walk(context.Background(), Unit{Path: filepath.Join(root, "A")})
	require.NoError(t, err)

	assert.NotContains(t, local.Sizes, filepath.Join(root, "A", "B"))
	assert.NotContains(t, local.Sizes, filepath.Join(root, "A", "B", "f"))
	assert.Equal(t, int64(20), local.Sizes[filepath.Join(root, "A", "Bx")])
	assert.Contains(t, local.Sizes, filepath.Join(root, "A", "B2", "h"))
	assert.Equal(t, int64(20), local.Sizes[filepath.Join(root, "A")])
}

func TestWalkVanishedUnit(t *testing.T) {
	root := t.TempDir()

	local, err := NewWalker(root, nil, nil, 0).Walk(context.Background(), Unit{Path: filepath.Join(root, "gone")})
	require.NoError(t, err)

	assert.Empty(t, local.Sizes)
	assert.Equal(t, int64(1), local.Errors)
}

func TestWalkUnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]int{"a/ok/f": 10, "a/locked/g": 99})

	locked := filepath.Join(root, "a", "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	local, err := NewWalker(root, nil, nil, 0).Walk(context.Background(), Unit{Path: filepath.Join(root, "a")})
	require.NoError(t, err)

	assert.Equal(t, int64(10), local.Sizes[filepath.Join(root, "a")])
	assert.Equal(t, int64(10), local.Sizes[filepath.Join(root, "a", "ok")])
	assert.NotContains(t, local.Sizes, filepath.Join(locked, "g"))
	assert.Equal(t, int64(1), local.Files)
	assert.Equal(t, int64(1), local.Errors)

	report, err := Run(context.Background(), Options{Root: root}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), report.Total)
	assert.Equal(t, int64(1), report.ErrorCount)
}

func TestWalkCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a/f": 1, "a/b/g": 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	local, err := NewWalker(root, nil, nil, 0).Walk(ctx, Unit{Path: filepath.Join(root, "a")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, local)
}

func TestWalkReportsProgress(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a/f": 10, "a/b/g": 20, "c": 5})

	counter := &progress{}
	walker := NewWalker(root, nil, nil, 0).withProgress(counter)

	for _, unit := range []string{"a", "c"} {
		_, err := walker.Walk(context.Background(), Unit{Path: filepath.Join(root, unit)})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), counter.files.Load())
	assert.Equal(t, int64(35), counter.bytes.Load())
}
