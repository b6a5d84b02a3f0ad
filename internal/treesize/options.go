package treesize

import (
	"fmt"
	"runtime"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Mode selects how scan units are scheduled.
type Mode string

const (
	// Parallel walks units on a bounded worker pool.
	Parallel Mode = "parallel"
	// Sequential walks units one after the other on the calling goroutine.
	Sequential Mode = "sequential"
)

// ErrorPolicy decides what happens when a whole unit fails.
type ErrorPolicy string

const (
	// FailRun aborts the run on the first failed unit.
	FailRun ErrorPolicy = "fail"
	// SkipUnit logs the failure and counts the unit as zero.
	SkipUnit ErrorPolicy = "skip"
)

// Options configures a scan.
type Options struct {
	// Root is the directory to scan.
	Root string
	// Excludes are path prefixes whose subtrees are not scanned.
	// Relative entries are resolved against Root.
	Excludes []string
	// Ignores are gitignore-style patterns applied to every entry during the walk.
	Ignores []string
	// Workers is the number of units walked concurrently in parallel mode.
	Workers int
	// Mode selects parallel or sequential scheduling.
	Mode Mode
	// OnUnitError is the policy for failed units.
	OnUnitError ErrorPolicy
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// DefaultWorkers returns the default pool size: six, bounded by the CPU count.
func DefaultWorkers() int {
	return max(1, min(6, runtime.NumCPU()))
}

// validate fills defaults and rejects unknown enumerations.
func (o *Options) validate() error {
	if o.Root == "" {
		o.Root = "."
	}

	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}

	switch o.Mode {
	case "":
		o.Mode = Parallel
	case Parallel, Sequential:
	default:
		return fmt.Errorf("unknown mode %q: must be one of [%s %s]", o.Mode, Parallel, Sequential)
	}

	switch o.OnUnitError {
	case "":
		o.OnUnitError = FailRun
	case FailRun, SkipUnit:
	default:
		return fmt.Errorf("unknown unit error policy %q: must be one of [%s %s]", o.OnUnitError, FailRun, SkipUnit)
	}

	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}

	return nil
}
