package treesize

import "path/filepath"

// Mapping maps a normalized absolute path to the cumulative size in bytes of
// every file at or beneath it.
type Mapping map[string]int64

// AddFile adds size to path and to every ancestor of path up to and including
// the filesystem root. Zero sizes still create the entries.
func (m Mapping) AddFile(path string, size int64) {
	path = filepath.Clean(path)

	for {
		m[path] += size

		parent := filepath.Dir(path)
		if parent == path {
			return
		}

		path = parent
	}
}

// Fold adds every entry of other into m.
func (m Mapping) Fold(other Mapping) {
	for path, size := range other {
		m[path] += size
	}
}

// Local is the result of walking a single unit.
type Local struct {
	// Unit is the walked unit.
	Unit Unit
	// Sizes holds the cumulative sizes found beneath the unit.
	Sizes Mapping
	// Files is the number of files recorded.
	Files int64
	// Errors is the number of entries skipped because they could not be read.
	Errors int64
}

// newLocal creates an empty result for unit.
func newLocal(unit Unit) *Local {
	return &Local{
		Unit:  unit,
		Sizes: make(Mapping),
	}
}

// Global is the merge of all local results of a run.
type Global struct {
	// Sizes holds the cumulative sizes for the whole scan.
	Sizes Mapping
	// Files is the total number of files recorded.
	Files int64
	// Errors is the total number of skipped entries.
	Errors int64
	// Units is the number of folded units.
	Units int
}

// Aggregate folds local results into one global result. The result does not
// depend on the order of locals. Nil entries are ignored.
func Aggregate(locals ...*Local) *Global {
	global := &Global{Sizes: make(Mapping)}

	for _, local := range locals {
		if local == nil {
			continue
		}

		global.Sizes.Fold(local.Sizes)
		global.Files += local.Files
		global.Errors += local.Errors
		global.Units++
	}

	return global
}
