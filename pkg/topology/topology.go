// Package topology resolves topology-type depth ordering and the host's
// current coordinate for each type (spec §4.2).
//
// A topology type is a nesting level in the host's location hierarchy (e.g.
// habitat ⊂ region ⊂ superregion); depth orders breadth, broadest type
// first in the configured ordering.
package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source resolves the ordered set of available topology types and the
// host's current coordinate for any one of them.
type Source interface {
	// AvailableLocationTypes returns the ordered sequence of topology
	// types this host understands, broadest first. Index is depth.
	AvailableLocationTypes() []string

	// CurrentLocation returns the host's current coordinate for the given
	// topology type.
	CurrentLocation(locationType string) (string, error)
}

// DirSource reads one file per topology type from a fixed directory,
// mirroring the original's get_my_grouping ("/nail/etc/<grouping>"): file
// contents trimmed of surrounding whitespace are the coordinate.
//
// The available-types ordering is a configuration concern, not something
// derived by listing the directory — the original source gets this list
// from a separate environment_tools module with its own fixed ordering.
type DirSource struct {
	Dir   string
	Order []string // broadest first
}

// NewDirSource constructs a DirSource. order must list topology types
// broadest-first; its index doubles as depth.
func NewDirSource(dir string, order []string) *DirSource {
	return &DirSource{Dir: dir, Order: order}
}

func (d *DirSource) AvailableLocationTypes() []string {
	return d.Order
}

func (d *DirSource) CurrentLocation(locationType string) (string, error) {
	path := filepath.Join(d.Dir, locationType)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading location %q: %w", locationType, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DepthIndex builds a topology-type -> depth lookup from an ordered,
// broadest-first list of types, as returned by Source.AvailableLocationTypes.
func DepthIndex(availableTypes []string) map[string]int {
	idx := make(map[string]int, len(availableTypes))
	for depth, t := range availableTypes {
		idx[t] = depth
	}
	return idx
}

// FilterAndSortAdvertise filters advertise to the types present in
// available, then sorts by depth descending (most-specific first), per
// spec §4.2. Types not in available are silently dropped.
func FilterAndSortAdvertise(advertise []string, available []string) []string {
	depth := DepthIndex(available)
	filtered := make([]string, 0, len(advertise))
	for _, t := range advertise {
		if _, ok := depth[t]; ok {
			filtered = append(filtered, t)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return depth[filtered[i]] > depth[filtered[j]]
	})
	return filtered
}

// Contains reports whether types contains t.
func Contains(types []string, t string) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// CompareDepth reports whether advertiseType is no broader than
// discoverType (i.e. its depth is >= discoverType's depth), implementing
// spec invariant §3.2 ("no downcasting"). available must be the
// broadest-first ordering used to compute depth.
func CompareDepth(discoverType, advertiseType string, available []string) bool {
	depth := DepthIndex(available)
	return depth[advertiseType] >= depth[discoverType]
}
