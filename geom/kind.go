package geom

// Kind is the geometry type produced by a Builder.
type Kind uint8

const (
	Point        Kind = 0x1 // a single location
	LineString   Kind = 0x2 // an ordered run of at least two locations
	Polygon      Kind = 0x3 // one outer ring with optional inner rings
	MultiPolygon Kind = 0x4 // one or more polygons
)

// String returns the GeoJSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case Point:
		return "Point"
	case LineString:
		return "LineString"
	case Polygon:
		return "Polygon"
	case MultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// IsValid reports whether k is a known geometry kind.
func (k Kind) IsValid() bool {
	return k >= Point && k <= MultiPolygon
}

// HasRings reports whether geometries of kind k are made of rings.
func (k Kind) HasRings() bool {
	return k == Polygon || k == MultiPolygon
}

// State is the position of a Builder in its construction sequence.
type State uint8

const (
	// Idle is the state before Start and after Finish.
	Idle State = iota
	// Open follows Start until the first location or ring.
	Open
	// Collecting accepts locations for the current line or ring.
	Collecting
	// RingBoundary follows AddOuterRing or AddInnerRing until the ring's first location.
	RingBoundary
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Open:
		return "open"
	case Collecting:
		return "collecting"
	case RingBoundary:
		return "ring-boundary"
	default:
		return "unknown"
	}
}

// Minimum location counts, checked on the raw accumulated points.
const (
	MinLineStringPoints = 2
	MinRingPoints       = 4
)

// Options are the finishing policies applied to the accumulated points.
type Options struct {
	// Reverse emits every line and ring in reverse order.
	Reverse bool
	// Deduplicate collapses consecutive identical locations.
	Deduplicate bool
}
