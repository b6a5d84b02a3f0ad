package treesize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ErrNoAccessibleEntries is returned when the root has entries but none of them can be scanned.
var ErrNoAccessibleEntries = errors.New("no accessible entries")

// Unit is an independently walkable child of the scan root.
type Unit struct {
	// Path is the absolute path of the child.
	Path string `json:"path"`
}

// Partition splits the immediate children of root into scan units, one per
// child that is neither excluded by filter nor an unlistable directory.
// Units are returned in name order.
func Partition(ctx context.Context, root string, filter *Filter) ([]Unit, error) {
	log := zerolog.Ctx(ctx)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing root %q: %w", root, err)
	}

	units := make([]Unit, 0, len(entries))
	inaccessible := 0

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		if filter.Excluded(path) {
			log.Debug().Str("path", path).Msg("excluding unit")

			continue
		}

		if entry.IsDir() {
			if err := probeDir(path); err != nil {
				inaccessible++

				log.Debug().Str("path", path).Err(err).Msg("skipping unlistable unit")

				continue
			}
		}

		units = append(units, Unit{Path: path})
	}

	if len(units) == 0 && inaccessible > 0 {
		return nil, fmt.Errorf("root %q: %w (%d skipped)", root, ErrNoAccessibleEntries, inaccessible)
	}

	return units, nil
}

// probeDir checks that a directory can be opened for listing.
func probeDir(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}

	return dir.Close()
}
