package geom

import (
	"fmt"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/osm"
)

// Factory builds geometries from arena records through a Builder.
//
// Note: The Factory is NOT thread-safe; use one per goroutine.
type Factory struct {
	b *Builder
}

// NewFactory creates a factory emitting into sink.
func NewFactory(sink Sink) *Factory {
	return &Factory{b: NewBuilder(sink)}
}

// Sink returns the sink the factory emits into.
func (f *Factory) Sink() Sink {
	return f.b.Sink()
}

// CreatePoint builds a point from a node record.
func (f *Factory) CreatePoint(rec arena.RecordView) (string, error) {
	loc, err := rec.Location()
	if err != nil {
		return "", err
	}

	out, err := f.point(loc)

	return f.wrap(rec, out, err)
}

// CreateLineString builds a linestring from the location list of a way.
func (f *Factory) CreateLineString(rec arena.RecordView, opts Options) (string, error) {
	list, err := rec.NodeRefs()
	if err != nil {
		return "", err
	}

	if err := f.start(LineString); err != nil {
		return "", err
	}

	if err := f.addLocations(list); err != nil {
		return f.wrap(rec, "", err)
	}

	out, err := f.b.Finish(opts)

	return f.wrap(rec, out, err)
}

// CreatePolygon builds a single-ring polygon from a closed way.
//
// Returns:
//   - error: ErrGeometryState if the way is not closed, ErrInsufficientPoints
//     for rings shorter than four points
func (f *Factory) CreatePolygon(rec arena.RecordView, opts Options) (string, error) {
	list, err := rec.NodeRefs()
	if err != nil {
		return "", err
	}

	if !list.IsClosed() {
		return "", fmt.Errorf("%s %d: %w: way is not closed", rec.Kind(), rec.ID(), errs.ErrGeometryState)
	}

	if err := f.start(Polygon); err != nil {
		return "", err
	}
	if err := f.b.AddOuterRing(); err != nil {
		return f.wrap(rec, "", err)
	}
	if err := f.addLocations(list); err != nil {
		return f.wrap(rec, "", err)
	}

	out, err := f.b.Finish(opts)

	return f.wrap(rec, out, err)
}

// CreateMultiPolygon builds a multipolygon from the ring list of an area.
// A change of ring index starts a new ring; outer rings start new polygons.
func (f *Factory) CreateMultiPolygon(rec arena.RecordView, opts Options) (string, error) {
	list, err := rec.RingMembers()
	if err != nil {
		return "", err
	}

	if err := f.start(MultiPolygon); err != nil {
		return "", err
	}

	current := uint32(0)
	for i, e := range list.Elements() {
		if i == 0 || e.Ring() != current {
			current = e.Ring()
			if e.Role() == osm.RoleInner {
				err = f.b.AddInnerRing()
			} else {
				err = f.b.AddOuterRing()
			}
			if err != nil {
				return f.wrap(rec, "", err)
			}
		}

		if err := f.b.AddLocation(e.Location()); err != nil {
			return f.wrap(rec, "", err)
		}
	}

	out, err := f.b.Finish(opts)

	return f.wrap(rec, out, err)
}

// Create builds the natural geometry of a record: a point for nodes, a
// linestring for ways and a multipolygon for areas.
func (f *Factory) Create(rec arena.RecordView, opts Options) (string, error) {
	switch rec.Kind() { //nolint: exhaustive
	case osm.KindNode:
		return f.CreatePoint(rec)
	case osm.KindWay:
		return f.CreateLineString(rec, opts)
	case osm.KindArea:
		return f.CreateMultiPolygon(rec, opts)
	default:
		return "", fmt.Errorf("%w: %s has no geometry", errs.ErrInvalidGeometryKind, rec.Kind())
	}
}

func (f *Factory) start(kind Kind) error {
	if f.b.State() != Idle {
		f.b.Reset()
	}

	return f.b.Start(kind)
}

func (f *Factory) point(loc osm.Location) (string, error) {
	if err := f.start(Point); err != nil {
		return "", err
	}
	if err := f.b.AddLocation(loc); err != nil {
		f.b.Reset()
		return "", err
	}

	return f.b.Finish(Options{})
}

func (f *Factory) addLocations(list arena.SubcollectionView) error {
	for loc := range list.Locations() {
		if err := f.b.AddLocation(loc); err != nil {
			return err
		}
	}

	return nil
}

// wrap resets the builder after a failure and annotates the error with the record.
func (f *Factory) wrap(rec arena.RecordView, out string, err error) (string, error) {
	if err != nil {
		f.b.Reset()
		return "", fmt.Errorf("%s %d: %w", rec.Kind(), rec.ID(), err)
	}

	return out, nil
}
