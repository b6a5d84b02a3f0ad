package treesize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// skips collects units dropped under the skip policy. Safe for concurrent use.
type skips struct {
	mu    sync.Mutex
	units []string
	err   error
}

// add records a failed unit.
func (s *skips) add(unit Unit, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.units = append(s.units, unit.Path)
	s.err = multierr.Append(s.err, err)
}

// walkUnit walks a single unit, turning a panic into a unit error.
func walkUnit(ctx context.Context, walker *Walker, unit Unit) (local *Local, err error) {
	defer func() {
		if r := recover(); r != nil {
			local, err = nil, fmt.Errorf("walking unit %q: panic: %v", unit.Path, r)
		}
	}()

	return walker.Walk(ctx, unit)
}

// settle applies the unit error policy to the outcome of walkUnit.
// A cancelled context always fails the run.
func settle(ctx context.Context, policy ErrorPolicy, unit Unit, local *Local, err error, skipped *skips) (*Local, error) {
	if err == nil {
		return local, nil
	}

	if policy == SkipUnit && ctx.Err() == nil {
		zerolog.Ctx(ctx).Warn().Str("unit", unit.Path).Err(err).Msg("skipping failed unit")
		skipped.add(unit, err)

		return nil, nil
	}

	return nil, err
}

// scanParallel walks units on a bounded pool and waits for all of them.
func scanParallel(ctx context.Context, walker *Walker, units []Unit, workers int, policy ErrorPolicy, skipped *skips) ([]*Local, error) {
	p := pool.NewWithResults[*Local]().
		WithMaxGoroutines(workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, unit := range units {
		p.Go(func(ctx context.Context) (*Local, error) {
			local, err := walkUnit(ctx, walker, unit)

			return settle(ctx, policy, unit, local, err, skipped)
		})
	}

	// Barrier: every dispatched unit has finished once Wait returns.
	return p.Wait()
}

// scanSequential walks units one after the other.
func scanSequential(ctx context.Context, walker *Walker, units []Unit, policy ErrorPolicy, skipped *skips) ([]*Local, error) {
	locals := make([]*Local, 0, len(units))

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		local, err := walkUnit(ctx, walker, unit)

		local, err = settle(ctx, policy, unit, local, err, skipped)
		if err != nil {
			return nil, err
		}

		locals = append(locals, local)
	}

	return locals, nil
}

// Run scans opt.Root and returns the sorted report.
//
// The root's children are partitioned into units that are walked
// concurrently (or sequentially, depending on opt.Mode), each into its own
// local mapping. After all units are done the local mappings are folded into
// one global mapping and turned into a report.
//
// Configuration errors (unknown options, missing root, root not a directory)
// are returned before any unit is walked. Progress updates are sent to
// progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	log := zerolog.Ctx(ctx)
	start := time.Now()

	if err := opt.validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(filepath.FromSlash(opt.Root))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// validate path exists and is a directory
	if statInfo, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("accessing root %q: %w", root, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("root %q: %w", root, ErrNotDirectory)
	}

	filter := NewFilter(root, opt.Excludes)

	log.Debug().
		Str("root", root).
		Strs("excludes", filter.Prefixes()).
		Strs("ignores", opt.Ignores).
		Str("mode", string(opt.Mode)).
		Int("workers", opt.Workers).
		Str("on_unit_error", string(opt.OnUnitError)).
		Msg("starting scan")

	units, err := Partition(ctx, root, filter)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("units", len(units)).Msg("partitioned root")

	counter := &progress{}

	stopProgress := startProgressReporter(ctx, counter, progressHook, opt.ProgressInterval)
	defer stopProgress()

	skipped := &skips{}

	var locals []*Local

	switch opt.Mode {
	case Sequential:
		walker := NewWalker(root, filter, opt.Ignores, 1).withProgress(counter)
		locals, err = scanSequential(ctx, walker, units, opt.OnUnitError, skipped)
	default:
		walker := NewWalker(root, filter, opt.Ignores, 0).withProgress(counter)
		locals, err = scanParallel(ctx, walker, units, opt.Workers, opt.OnUnitError, skipped)
	}

	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if skipped.err != nil {
		log.Warn().Err(skipped.err).Int("units", len(skipped.units)).Msg("some units were not scanned")
	}

	report := BuildReport(Aggregate(locals...), time.Since(start))
	report.Root = root
	report.Skipped = skipped.units
	slices.Sort(report.Skipped)

	log.Debug().
		Int("units", report.UnitCount).
		Int64("files", report.FileCount).
		Int64("errors", report.ErrorCount).
		Int("paths", len(report.Rows)).
		Msg("scan finished")

	return report, nil
}
