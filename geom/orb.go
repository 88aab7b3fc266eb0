package geom

import (
	"fmt"
	"strings"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/osm"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
)

// OrbSink collects the geometry as an orb.Geometry value. End renders it
// with orb's WKT encoder; Geometry returns the value itself.
type OrbSink struct {
	kind     Kind
	line     orb.LineString
	polygons orb.MultiPolygon
	geometry orb.Geometry
}

var _ Sink = (*OrbSink)(nil)

// NewOrbSink creates an orb geometry sink.
func NewOrbSink() *OrbSink {
	return &OrbSink{}
}

func toPoint(loc osm.Location) orb.Point {
	return orb.Point{loc.Lon(), loc.Lat()}
}

func (s *OrbSink) Begin(kind Kind) {
	s.kind = kind
	s.line = nil
	s.polygons = nil
	s.geometry = nil
}

func (s *OrbSink) BeginPolygon() {
	s.polygons = append(s.polygons, orb.Polygon{})
}

func (s *OrbSink) BeginRing(bool) {
	s.line = nil
}

func (s *OrbSink) Location(loc osm.Location) {
	s.line = append(s.line, toPoint(loc))
}

func (s *OrbSink) EndRing() {
	last := len(s.polygons) - 1
	s.polygons[last] = append(s.polygons[last], orb.Ring(s.line))
	s.line = nil
}

func (s *OrbSink) EndPolygon() {}

func (s *OrbSink) build() (orb.Geometry, error) {
	switch s.kind {
	case Point:
		if len(s.line) != 1 {
			return nil, fmt.Errorf("%w: point has %d locations", errs.ErrInsufficientPoints, len(s.line))
		}

		return s.line[0], nil
	case LineString:
		return s.line, nil
	case Polygon:
		if len(s.polygons) != 1 {
			return nil, fmt.Errorf("%w: polygon sink received %d polygons", errs.ErrGeometryState, len(s.polygons))
		}

		return s.polygons[0], nil
	case MultiPolygon:
		return s.polygons, nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidGeometryKind, s.kind)
	}
}

func (s *OrbSink) End() (string, error) {
	g, err := s.build()
	if err != nil {
		return "", err
	}
	s.geometry = g

	return wkt.MarshalString(g), nil
}

// Geometry returns the geometry completed by the last End, or nil.
func (s *OrbSink) Geometry() orb.Geometry {
	return s.geometry
}

func (s *OrbSink) Reset() {
	s.Begin(s.kind)
}

// WKBSink renders hex-encoded little-endian Well-Known Binary in upper case.
type WKBSink struct {
	OrbSink
}

var _ Sink = (*WKBSink)(nil)

// NewWKBSink creates a hex WKB sink.
func NewWKBSink() *WKBSink {
	return &WKBSink{}
}

func (s *WKBSink) End() (string, error) {
	g, err := s.build()
	if err != nil {
		return "", err
	}
	s.geometry = g

	out, err := wkb.MarshalToHex(g)
	if err != nil {
		return "", fmt.Errorf("wkb: %w", err)
	}

	return strings.ToUpper(out), nil
}

// GeometrySink only builds the orb.Geometry. End returns an empty string;
// callers read the value through Geometry.
type GeometrySink struct {
	OrbSink
}

var _ Sink = (*GeometrySink)(nil)

// NewGeometrySink creates a build-only orb geometry sink.
func NewGeometrySink() *GeometrySink {
	return &GeometrySink{}
}

func (s *GeometrySink) End() (string, error) {
	g, err := s.build()
	if err != nil {
		return "", err
	}
	s.geometry = g

	return "", nil
}
