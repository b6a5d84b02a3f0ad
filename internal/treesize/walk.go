package treesize

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
)

// ProgressEvery is the number of files of a unit between two debug progress lines.
const ProgressEvery = 1000

// Walker builds the local mapping of a unit.
type Walker struct {
	root     string
	filter   *Filter
	ignore   *ignore.GitIgnore
	workers  int
	progress *progress
}

// NewWalker creates a walker for units beneath root.
// Subtrees excluded by filter are pruned. Ignore patterns use gitignore
// syntax and are matched relative to root.
// workers is passed to fastwalk (0 = fastwalk default).
func NewWalker(root string, filter *Filter, ignores []string, workers int) *Walker {
	walker := &Walker{
		root:    root,
		filter:  filter,
		workers: workers,
	}

	if len(ignores) > 0 {
		walker.ignore = ignore.CompileIgnoreLines(ignores...)
	}

	return walker
}

// withProgress makes the walker report every file to p.
func (w *Walker) withProgress(p *progress) *Walker {
	w.progress = p

	return w
}

// ignored checks path against the exclusion filter and the ignore patterns.
func (w *Walker) ignored(path string, dir bool) bool {
	if w.filter.Excluded(path) {
		return true
	}

	if w.ignore == nil {
		return false
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}

	rel = filepath.ToSlash(rel)
	if dir {
		rel += "/"
	}

	return w.ignore.MatchesPath(rel)
}

// record adds a file to local. Callers hold the lock protecting local.
func (w *Walker) record(local *Local, path string, size int64) int64 {
	local.Sizes.AddFile(path, size)
	local.Files++

	w.progress.add(size)

	return local.Files
}

// entryInfo returns the info of the entry itself. Symbolic links are never followed.
func entryInfo(path string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		return os.Lstat(path)
	}

	return d.Info()
}

// Walk enumerates every file beneath unit and returns its local mapping.
//
// Entries that vanish or cannot be read are skipped and counted as errors.
// Symbolic links are counted with the size of the link itself and never
// followed. The returned error is non-nil only when the walk as a whole
// failed, in which case no partial mapping is returned.
func (w *Walker) Walk(ctx context.Context, unit Unit) (*Local, error) {
	log := zerolog.Ctx(ctx).With().Str("unit", unit.Path).Logger()
	local := newLocal(unit)

	info, err := os.Lstat(unit.Path)
	if err != nil {
		log.Debug().Err(err).Msg("skipping unreadable unit")

		local.Errors++

		return local, nil
	}

	if w.ignored(unit.Path, info.IsDir()) {
		log.Debug().Msg("ignoring unit")

		return local, nil
	}

	if !info.IsDir() {
		w.record(local, unit.Path, info.Size())

		return local, nil
	}

	// fastwalk invokes the callback from several goroutines.
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, unit.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")

			mu.Lock()
			local.Errors++
			mu.Unlock()

			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == unit.Path {
			return nil
		}

		if w.ignored(path, d.IsDir()) {
			log.Debug().Str("path", path).Msg("ignoring entry")

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		info, err := entryInfo(path, d)
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("skipping entry without size")

			mu.Lock()
			local.Errors++
			mu.Unlock()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		mu.Lock()
		files := w.record(local, path, info.Size())
		mu.Unlock()

		if files%ProgressEvery == 0 {
			log.Debug().Int64("files", files).Msg("scanning")
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking unit %q: %w", unit.Path, walkErr)
	}

	return local, nil
}
