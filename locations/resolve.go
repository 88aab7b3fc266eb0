package locations

import (
	"fmt"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/osm"
)

// IndexNodes adds the location of every node record in a to idx. Nodes with
// the undefined location are skipped and counted in idx.Undefined.
//
// Returns:
//   - error: the first Set failure, annotated with the record handle
func IndexNodes(a *arena.Arena, idx *Index) error {
	for h, rec := range a.Handles() {
		if rec.Kind() != osm.KindNode {
			continue
		}

		loc, err := rec.Location()
		if err != nil {
			return err
		}
		if !loc.IsDefined() {
			idx.undefined++
			continue
		}

		if err := idx.Set(rec.ID(), loc); err != nil {
			return fmt.Errorf("record %d: %w", h, err)
		}
	}

	return nil
}

// Resolve writes indexed locations into the geometry lists of every way and
// area in a. Elements whose node is not indexed keep their current location.
//
// Returns the number of elements still undefined afterwards.
func Resolve(a *arena.Arena, idx *Index) int {
	unresolved := 0
	for rec := range a.All() {
		unresolved += ResolveRecord(rec, idx)
	}

	return unresolved
}

// ResolveRecord resolves a single record. Nodes have nothing to resolve.
func ResolveRecord(rec arena.RecordView, idx *Index) int {
	geom := rec.Kind().Geometry()
	if geom == osm.KindUndefined {
		return 0
	}

	list, err := rec.Subcollection(geom)
	if err != nil {
		return 0
	}

	unresolved := 0
	for _, e := range list.Elements() {
		if loc, ok := idx.Get(e.Ref()); ok {
			e.SetLocation(loc)
			continue
		}
		if !e.Location().IsDefined() {
			unresolved++
		}
	}

	return unresolved
}
