package geom

import (
	"strconv"

	"github.com/arloliu/geoarena/osm"
)

// Sink receives a validated geometry from a Builder and renders it.
//
// The Builder calls Begin, then for ring kinds a sequence of
// BeginPolygon/BeginRing/Location/EndRing/EndPolygon, for other kinds only
// Location, and finally End. Begin discards any previous geometry. Reset is
// called when a geometry is abandoned after Begin.
type Sink interface {
	Begin(kind Kind)
	BeginPolygon()
	BeginRing(outer bool)
	Location(loc osm.Location)
	EndRing()
	EndPolygon()
	End() (string, error)
	Reset()
}

// textSink tracks comma placement for the bracketed text formats.
type textSink struct {
	buf          []byte
	kind         Kind
	firstPolygon bool
	firstRing    bool
	firstPoint   bool
}

func (s *textSink) begin(kind Kind) {
	s.buf = s.buf[:0]
	s.kind = kind
	s.firstPolygon = true
	s.firstRing = true
	s.firstPoint = true
}

// sep appends a comma unless *first is set, then clears *first.
func (s *textSink) sep(first *bool) {
	if !*first {
		s.buf = append(s.buf, ',')
	}
	*first = false
}

func (s *textSink) Reset() {
	s.buf = s.buf[:0]
}

// WKTSink renders Well-Known Text, e.g. LINESTRING(3.2 4.2,3.5 4.7).
// With an SRID set it renders EWKT, e.g. SRID=4326;POINT(3.2 4.2).
type WKTSink struct {
	textSink
	srid int
}

var _ Sink = (*WKTSink)(nil)

// NewWKTSink creates a WKT sink.
func NewWKTSink() *WKTSink {
	return &WKTSink{}
}

// NewEWKTSink creates a sink that prefixes every geometry with SRID=srid;.
func NewEWKTSink(srid int) *WKTSink {
	return &WKTSink{srid: srid}
}

func (s *WKTSink) Begin(kind Kind) {
	s.begin(kind)
	if s.srid != 0 {
		s.buf = append(s.buf, "SRID="...)
		s.buf = strconv.AppendInt(s.buf, int64(s.srid), 10)
		s.buf = append(s.buf, ';')
	}

	switch kind {
	case Point:
		s.buf = append(s.buf, "POINT("...)
	case LineString:
		s.buf = append(s.buf, "LINESTRING("...)
	case Polygon:
		s.buf = append(s.buf, "POLYGON("...)
	case MultiPolygon:
		s.buf = append(s.buf, "MULTIPOLYGON("...)
	}
}

func (s *WKTSink) BeginPolygon() {
	if s.kind == MultiPolygon {
		s.sep(&s.firstPolygon)
		s.buf = append(s.buf, '(')
	}
	s.firstRing = true
}

func (s *WKTSink) BeginRing(bool) {
	s.sep(&s.firstRing)
	s.buf = append(s.buf, '(')
	s.firstPoint = true
}

func (s *WKTSink) Location(loc osm.Location) {
	s.sep(&s.firstPoint)
	s.buf = loc.AppendText(s.buf, ' ')
}

func (s *WKTSink) EndRing() {
	s.buf = append(s.buf, ')')
}

func (s *WKTSink) EndPolygon() {
	if s.kind == MultiPolygon {
		s.buf = append(s.buf, ')')
	}
}

func (s *WKTSink) End() (string, error) {
	s.buf = append(s.buf, ')')
	return string(s.buf), nil
}

// GeoJSONSink renders a GeoJSON geometry object, e.g.
// {"type":"Point","coordinates":[3.2,4.2]}.
type GeoJSONSink struct {
	textSink
}

var _ Sink = (*GeoJSONSink)(nil)

// NewGeoJSONSink creates a GeoJSON geometry sink.
func NewGeoJSONSink() *GeoJSONSink {
	return &GeoJSONSink{}
}

func (s *GeoJSONSink) Begin(kind Kind) {
	s.begin(kind)
	s.buf = append(s.buf, `{"type":"`...)
	s.buf = append(s.buf, kind.String()...)
	s.buf = append(s.buf, `","coordinates":`...)
	if kind != Point {
		s.buf = append(s.buf, '[')
	}
}

func (s *GeoJSONSink) BeginPolygon() {
	if s.kind == MultiPolygon {
		s.sep(&s.firstPolygon)
		s.buf = append(s.buf, '[')
	}
	s.firstRing = true
}

func (s *GeoJSONSink) BeginRing(bool) {
	s.sep(&s.firstRing)
	s.buf = append(s.buf, '[')
	s.firstPoint = true
}

func (s *GeoJSONSink) Location(loc osm.Location) {
	s.sep(&s.firstPoint)
	s.buf = append(s.buf, '[')
	s.buf = loc.AppendText(s.buf, ',')
	s.buf = append(s.buf, ']')
}

func (s *GeoJSONSink) EndRing() {
	s.buf = append(s.buf, ']')
}

func (s *GeoJSONSink) EndPolygon() {
	if s.kind == MultiPolygon {
		s.buf = append(s.buf, ']')
	}
}

func (s *GeoJSONSink) End() (string, error) {
	if s.kind != Point {
		s.buf = append(s.buf, ']')
	}
	s.buf = append(s.buf, '}')

	return string(s.buf), nil
}
