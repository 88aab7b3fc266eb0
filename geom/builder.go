// Package geom turns sequences of locations into serialized geometries.
//
// A Builder owns the construction sequence and its validity rules. The text
// or binary syntax is supplied by a Sink: WKTSink, GeoJSONSink, OrbSink and
// WKBSink ship with the package. A Factory drives a Builder from arena records.
//
//	b := geom.NewBuilder(geom.NewWKTSink())
//	_ = b.Start(geom.LineString)
//	_ = b.AddLocation(osm.NewLocation(3.2, 4.2))
//	_ = b.AddLocation(osm.NewLocation(3.5, 4.7))
//	wkt, err := b.Finish(geom.Options{})
//	// LINESTRING(3.2 4.2,3.5 4.7)
package geom

import (
	"fmt"
	"slices"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/internal/pool"
	"github.com/arloliu/geoarena/osm"
)

type ring struct {
	start int // index of the first point in Builder.points
	outer bool
}

// Builder is the geometry construction state machine.
//
// Points are accumulated until Finish, which checks the minimum counts,
// applies Options and only then replays the geometry into the Sink. A failed
// Finish emits nothing.
//
// Note: The Builder is NOT thread-safe.
type Builder struct {
	sink   Sink
	kind   Kind
	state  State
	points []osm.Location
	rings  []ring
}

// NewBuilder creates an idle builder emitting into sink.
func NewBuilder(sink Sink) *Builder {
	return &Builder{sink: sink}
}

// Sink returns the sink the builder emits into.
func (b *Builder) Sink() Sink {
	return b.sink
}

// State returns the current state.
func (b *Builder) State() State {
	return b.state
}

// Kind returns the kind of the geometry under construction.
func (b *Builder) Kind() Kind {
	return b.kind
}

// Len returns the number of accumulated points.
func (b *Builder) Len() int {
	return len(b.points)
}

// Start begins a new geometry.
//
// Returns:
//   - error: ErrInvalidGeometryKind for unknown kinds, ErrGeometryState unless idle
func (b *Builder) Start(kind Kind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidGeometryKind, kind)
	}

	if b.state != Idle {
		return fmt.Errorf("%w: start %s while %s", errs.ErrGeometryState, kind, b.state)
	}

	b.kind = kind
	b.points = b.points[:0]
	b.rings = b.rings[:0]
	b.state = Open

	return nil
}

// AddLocation appends a location to the current point, line or ring.
// A rejected location leaves the builder unchanged.
//
// Returns:
//   - error: ErrUndefinedLocation for the undefined sentinel, ErrGeometryState
//     when no geometry or ring is open or a point already has its location
func (b *Builder) AddLocation(loc osm.Location) error {
	switch b.state {
	case Idle:
		return fmt.Errorf("%w: location added before start", errs.ErrGeometryState)
	case Open:
		if b.kind.HasRings() {
			return fmt.Errorf("%w: %s needs a ring before locations", errs.ErrGeometryState, b.kind)
		}
	case Collecting, RingBoundary:
	}

	if !loc.IsDefined() {
		return fmt.Errorf("%w: point %d of %s", errs.ErrUndefinedLocation, len(b.points), b.kind)
	}

	if b.kind == Point && len(b.points) == 1 {
		return fmt.Errorf("%w: point already has a location", errs.ErrGeometryState)
	}

	b.points = append(b.points, loc)
	b.state = Collecting

	return nil
}

// AddOuterRing starts a new outer ring. For a MultiPolygon each outer ring
// starts a new polygon; a Polygon has exactly one.
//
// Returns:
//   - error: ErrGeometryState for non-ring kinds, after an empty ring, or on a
//     second outer ring of a Polygon
func (b *Builder) AddOuterRing() error {
	if err := b.checkRingBoundary("outer"); err != nil {
		return err
	}

	if b.kind == Polygon && len(b.rings) > 0 {
		return fmt.Errorf("%w: polygon already has an outer ring", errs.ErrGeometryState)
	}

	b.rings = append(b.rings, ring{start: len(b.points), outer: true})
	b.state = RingBoundary

	return nil
}

// AddInnerRing starts a new inner ring of the current polygon.
//
// Returns:
//   - error: ErrGeometryState for non-ring kinds, after an empty ring, or before any outer ring
func (b *Builder) AddInnerRing() error {
	if err := b.checkRingBoundary("inner"); err != nil {
		return err
	}

	if len(b.rings) == 0 {
		return fmt.Errorf("%w: inner ring before outer ring", errs.ErrGeometryState)
	}

	b.rings = append(b.rings, ring{start: len(b.points)})
	b.state = RingBoundary

	return nil
}

func (b *Builder) checkRingBoundary(role string) error {
	if !b.kind.HasRings() || b.state == Idle {
		return fmt.Errorf("%w: %s ring on %s geometry in state %s", errs.ErrGeometryState, role, b.kind, b.state)
	}

	if b.state == RingBoundary {
		return fmt.Errorf("%w: %s ring follows an empty ring", errs.ErrGeometryState, role)
	}

	return nil
}

// Finish validates the accumulated geometry, emits it through the sink and
// returns the builder to Idle.
//
// Returns:
//   - string: the serialized geometry
//   - error: ErrGeometryState when idle, ErrInsufficientPoints when a minimum is
//     not met, or a sink error. Every failure resets the builder to Idle.
func (b *Builder) Finish(opts Options) (string, error) {
	if b.state == Idle {
		return "", fmt.Errorf("%w: finish without start", errs.ErrGeometryState)
	}
	defer b.Reset()

	if err := b.validate(); err != nil {
		return "", err
	}

	scratch, release := pool.GetLocationSlice(len(b.points))
	defer release()

	b.sink.Begin(b.kind)
	if !b.kind.HasRings() {
		*scratch = applyOptions((*scratch)[:0], b.points, opts)
		b.emitPoints(*scratch)

		return b.end()
	}

	inPolygon := false
	for i, r := range b.rings {
		end := len(b.points)
		if i+1 < len(b.rings) {
			end = b.rings[i+1].start
		}

		if r.outer {
			if inPolygon {
				b.sink.EndPolygon()
			}
			b.sink.BeginPolygon()
			inPolygon = true
		}

		*scratch = applyOptions((*scratch)[:0], b.points[r.start:end], opts)
		b.sink.BeginRing(r.outer)
		b.emitPoints(*scratch)
		b.sink.EndRing()
	}
	b.sink.EndPolygon()

	return b.end()
}

func (b *Builder) end() (string, error) {
	out, err := b.sink.End()
	if err != nil {
		b.sink.Reset()
		return "", err
	}

	return out, nil
}

func (b *Builder) emitPoints(points []osm.Location) {
	for _, loc := range points {
		b.sink.Location(loc)
	}
}

func (b *Builder) validate() error {
	switch b.kind {
	case Point:
		if len(b.points) != 1 {
			return fmt.Errorf("%w: point has no location", errs.ErrInsufficientPoints)
		}
	case LineString:
		if len(b.points) < MinLineStringPoints {
			return fmt.Errorf("%w: linestring has %d points, needs %d",
				errs.ErrInsufficientPoints, len(b.points), MinLineStringPoints)
		}
	case Polygon, MultiPolygon:
		if len(b.rings) == 0 {
			return fmt.Errorf("%w: %s has no rings", errs.ErrInsufficientPoints, b.kind)
		}
		for i, r := range b.rings {
			end := len(b.points)
			if i+1 < len(b.rings) {
				end = b.rings[i+1].start
			}
			if n := end - r.start; n < MinRingPoints {
				return fmt.Errorf("%w: ring %d has %d points, needs %d",
					errs.ErrInsufficientPoints, i, n, MinRingPoints)
			}
		}
	}

	return nil
}

// Reset abandons the geometry under construction and returns to Idle.
func (b *Builder) Reset() {
	b.points = b.points[:0]
	b.rings = b.rings[:0]
	b.state = Idle
}

// applyOptions appends src to dst with consecutive duplicates collapsed and/or reversed.
func applyOptions(dst, src []osm.Location, opts Options) []osm.Location {
	for i, loc := range src {
		if opts.Deduplicate && i > 0 && loc == src[i-1] {
			continue
		}
		dst = append(dst, loc)
	}

	if opts.Reverse {
		slices.Reverse(dst)
	}

	return dst
}
