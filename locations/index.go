// Package locations resolves node references in ways and areas to coordinates.
//
// Resolution runs in two passes over one or more arenas: IndexNodes records the
// location of every node, then Resolve writes those locations into the
// location and ring lists of ways and areas in place.
//
//	idx := locations.NewIndex()
//	if err := locations.IndexNodes(a, idx); err != nil {
//	    return err
//	}
//	missing := locations.Resolve(a, idx)
package locations

import (
	"fmt"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/osm"
)

// Index maps node ids to locations.
//
// Note: The Index is NOT thread-safe.
type Index struct {
	locs       map[int64]osm.Location
	duplicates int // identical re-definitions
	undefined  int // nodes skipped by IndexNodes
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{locs: make(map[int64]osm.Location)}
}

// Set records the location of node id.
//
// Setting the same location twice is accepted and counted as a duplicate.
//
// Returns:
//   - error: ErrUndefinedLocation for the undefined location, ErrDuplicateNode
//     if id is already mapped to a different location
func (idx *Index) Set(id int64, loc osm.Location) error {
	if !loc.IsDefined() {
		return fmt.Errorf("%w: node %d", errs.ErrUndefinedLocation, id)
	}

	if existing, ok := idx.locs[id]; ok {
		if existing != loc {
			return fmt.Errorf("%w: node %d at %s and %s", errs.ErrDuplicateNode, id, existing, loc)
		}
		idx.duplicates++

		return nil
	}

	idx.locs[id] = loc

	return nil
}

// Get returns the location of node id, or the undefined location and false.
func (idx *Index) Get(id int64) (osm.Location, bool) {
	loc, ok := idx.locs[id]
	if !ok {
		return osm.UndefinedLocation(), false
	}

	return loc, true
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int {
	return len(idx.locs)
}

// Duplicates returns how many identical re-definitions were seen.
func (idx *Index) Duplicates() int {
	return idx.duplicates
}

// Undefined returns how many nodes IndexNodes skipped for lacking a location.
func (idx *Index) Undefined() int {
	return idx.undefined
}

// Reset clears the index, keeping the allocated map.
func (idx *Index) Reset() {
	clear(idx.locs)
	idx.duplicates = 0
	idx.undefined = 0
}
