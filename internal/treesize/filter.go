package treesize

import (
	"path/filepath"
	"strings"

	"github.com/armon/go-radix"
)

// Filter decides whether a path lies inside one of the excluded subtrees.
//
// Matching is by path component: an excluded "/A/B" covers "/A/B" and
// "/A/B/c" but not "/A/Bx".
type Filter struct {
	tree *radix.Tree
}

// NewFilter builds a filter from exclusion prefixes. Relative prefixes are
// resolved against root. Empty entries are ignored.
func NewFilter(root string, excludes []string) *Filter {
	tree := radix.New()

	for _, e := range excludes {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		e = filepath.FromSlash(e)
		if !filepath.IsAbs(e) {
			e = filepath.Join(root, e)
		}

		tree.Insert(filepath.Clean(e), struct{}{})
	}

	return &Filter{tree: tree}
}

// Len returns the number of distinct excluded prefixes.
func (f *Filter) Len() int {
	return f.tree.Len()
}

// Prefixes returns the excluded prefixes in lexical order.
func (f *Filter) Prefixes() []string {
	prefixes := make([]string, 0, f.tree.Len())

	f.tree.Walk(func(key string, _ any) bool {
		prefixes = append(prefixes, key)

		return false
	})

	return prefixes
}

// Excluded reports whether path equals an excluded prefix or lies beneath one.
// The path is expected to be absolute; it is cleaned but not resolved.
func (f *Filter) Excluded(path string) bool {
	if f == nil || f.tree.Len() == 0 {
		return false
	}

	path = filepath.Clean(filepath.FromSlash(path))

	excluded := false

	// WalkPath visits every key that is a string prefix of path, shortest first.
	f.tree.WalkPath(path, func(prefix string, _ any) bool {
		excluded = onBoundary(path, prefix)

		return excluded
	})

	return excluded
}

// onBoundary reports whether prefix, already known to be a string prefix of
// path, ends on a path component boundary of path.
func onBoundary(path, prefix string) bool {
	if len(path) == len(prefix) {
		return true
	}

	// Filesystem roots ("/", `C:\`) keep their trailing separator after Clean.
	if strings.HasSuffix(prefix, string(filepath.Separator)) {
		return true
	}

	return path[len(prefix)] == filepath.Separator
}
