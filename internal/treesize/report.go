package treesize

import (
	"cmp"
	"slices"
	"time"
)

// BytesPerGB is the divisor used for the SizeGB column.
const BytesPerGB = 1e9

// Row is a single path of the report.
type Row struct {
	// Path is the absolute file or directory path.
	Path string `json:"path"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size"`
	// SizeGB is Size divided by 1e9.
	SizeGB float64 `json:"size_gb"`
}

// Report is the sorted result of a scan.
type Report struct {
	// Root is the scanned directory.
	Root string `json:"root"`
	// Rows holds every path, largest first.
	Rows []Row `json:"rows"`
	// Total is the largest size in the report, which is the size of the filesystem root.
	Total int64 `json:"total"`
	// FileCount is the number of files recorded.
	FileCount int64 `json:"file_count"`
	// ErrorCount is the number of entries skipped because they could not be read.
	ErrorCount int64 `json:"error_count"`
	// UnitCount is the number of units folded into the report.
	UnitCount int `json:"unit_count"`
	// Skipped lists units dropped under the skip policy.
	Skipped []string `json:"skipped,omitempty"`
	// Elapsed is the wall-clock time of the whole run.
	Elapsed time.Duration `json:"elapsed"`
}

// TotalGB returns Total in gigabytes.
func (r *Report) TotalGB() float64 {
	return float64(r.Total) / BytesPerGB
}

// BuildReport turns the global mapping into rows sorted by size, largest
// first, ties broken by ascending path. The mapping is not modified.
func BuildReport(global *Global, elapsed time.Duration) *Report {
	report := &Report{
		Rows:    make([]Row, 0, len(global.Sizes)),
		Elapsed: elapsed,
	}

	for path, size := range global.Sizes {
		report.Rows = append(report.Rows, Row{
			Path:   path,
			Size:   size,
			SizeGB: float64(size) / BytesPerGB,
		})
	}

	slices.SortFunc(report.Rows, func(a, b Row) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}

		return cmp.Compare(a.Path, b.Path)
	})

	if len(report.Rows) > 0 {
		report.Total = report.Rows[0].Size
	}

	report.FileCount = global.Files
	report.ErrorCount = global.Errors
	report.UnitCount = global.Units

	return report
}
