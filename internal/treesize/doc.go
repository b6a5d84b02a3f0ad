// Package treesize computes cumulative disk usage for every file and
// directory of a filesystem subtree.
//
// The root's immediate children are partitioned into independent scan units.
// Each unit is walked with fastwalk into its own local mapping of path to
// cumulative size, covering every ancestor up to the filesystem root. Once
// all units have completed, the local mappings are folded into one global
// mapping and turned into a report sorted by size.
package treesize
