package treesize

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportOrder(t *testing.T) {
	global := &Global{Sizes: Mapping{
		"/root/b/file3": 25,
		"/root/a":       150,
		"/root/a/file2": 50,
		"/root":         175,
		"/root/b":       25,
		"/root/a/file1": 100,
	}}

	report := BuildReport(global, time.Second)

	want := []Row{
		{Path: "/root", Size: 175, SizeGB: 175 / BytesPerGB},
		{Path: "/root/a", Size: 150, SizeGB: 150 / BytesPerGB},
		{Path: "/root/a/file1", Size: 100, SizeGB: 100 / BytesPerGB},
		{Path: "/root/a/file2", Size: 50, SizeGB: 50 / BytesPerGB},
		{Path: "/root/b", Size: 25, SizeGB: 25 / BytesPerGB},
		{Path: "/root/b/file3", Size: 25, SizeGB: 25 / BytesPerGB},
	}

	assert.Equal(t, want, report.Rows)
	assert.Equal(t, int64(175), report.Total)
	assert.Equal(t, time.Second, report.Elapsed)
}

func TestBuildReportIdempotent(t *testing.T) {
	global := &Global{Sizes: make(Mapping)}
	for _, name := range []string{"q", "w", "e", "r", "t", "y"} {
		global.Sizes.AddFile(filepath.Join("/x", name), 10)
	}

	snapshot := make(Mapping, len(global.Sizes))
	snapshot.Fold(global.Sizes)

	first := BuildReport(global, 0)
	second := BuildReport(global, 0)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, snapshot, global.Sizes, "report must not modify the mapping")
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(Aggregate(), 0)

	require.NotNil(t, report.Rows)
	assert.Empty(t, report.Rows)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.TotalGB())
}

func TestBuildReportCounters(t *testing.T) {
	report := BuildReport(&Global{Sizes: Mapping{}, Files: 4, Errors: 2, Units: 3}, 0)

	assert.Equal(t, int64(4), report.FileCount)
	assert.Equal(t, int64(2), report.ErrorCount)
	assert.Equal(t, 3, report.UnitCount)
}
