package pool

import (
	"sync"

	"github.com/arloliu/geoarena/osm"
)

// locationSlicePool holds geometry scratch space.
var locationSlicePool = sync.Pool{
	New: func() any { return &[]osm.Location{} },
}

// GetLocationSlice retrieves an empty location slice with at least the given capacity.
//
// The caller must call the returned cleanup function to return the slice to the pool.
// Appending past the capacity is allowed; the grown slice is what goes back to the pool.
//
// Example:
//
//	points, cleanup := pool.GetLocationSlice(64)
//	defer cleanup()
//	points = append(points, loc)
func GetLocationSlice(capacity int) (*[]osm.Location, func()) {
	ptr, _ := locationSlicePool.Get().(*[]osm.Location)
	if cap(*ptr) < capacity {
		*ptr = make([]osm.Location, 0, capacity)
	} else {
		*ptr = (*ptr)[:0]
	}

	return ptr, func() { locationSlicePool.Put(ptr) }
}
