package output

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/geom"
	"github.com/arloliu/geoarena/internal/pool"
	"github.com/arloliu/geoarena/osm"
	"github.com/paulmach/orb/geojson"
)

// isGeometryError reports whether err means the entity has no valid geometry,
// as opposed to a corrupt arena.
func isGeometryError(err error) bool {
	return errors.Is(err, errs.ErrUndefinedLocation) ||
		errors.Is(err, errs.ErrInsufficientPoints) ||
		errors.Is(err, errs.ErrGeometryState) ||
		errors.Is(err, errs.ErrSubcollectionNotFound)
}

// lineEncoder writes "<kind><id>\t<geometry>\n" lines for the text and hex
// geometry formats. Entities without a valid geometry are skipped.
type lineEncoder struct {
	noFraming
	skips

	format  format.FileFormat
	newSink func() geom.Sink
	opts    geom.Options
	logger  *slog.Logger
}

// NewWKT creates an encoder writing Well-Known Text geometries.
func NewWKT(cfg Config) (Encoder, error) {
	return &lineEncoder{
		format:  format.FormatWKT,
		newSink: func() geom.Sink { return geom.NewWKTSink() },
		opts:    cfg.Geometry,
		logger:  cfg.Logger,
	}, nil
}

// NewWKB creates an encoder writing hex Well-Known Binary geometries.
func NewWKB(cfg Config) (Encoder, error) {
	return &lineEncoder{
		format:  format.FormatWKB,
		newSink: func() geom.Sink { return geom.NewWKBSink() },
		opts:    cfg.Geometry,
		logger:  cfg.Logger,
	}, nil
}

func (e *lineEncoder) Format() format.FileFormat { return e.format }

func (e *lineEncoder) Encode(a *arena.Arena) ([]byte, error) {
	factory := geom.NewFactory(e.newSink())

	return encodeWith(func(buf *pool.ByteBuffer) error {
		for rec := range a.All() {
			g, err := factory.Create(rec, e.opts)
			if err != nil {
				if isGeometryError(err) {
					e.skip(e.logger, e.format, err)
					continue
				}

				return wrapRecord(rec, err)
			}

			buf.B = appendEntityRef(buf.B, rec)
			buf.B = append(buf.B, '\t')
			buf.B = append(buf.B, g...)
			buf.B = append(buf.B, '\n')
		}

		return nil
	})
}

// appendEntityRef appends the OPL style entity reference, e.g. "w42".
func appendEntityRef(dst []byte, rec arena.RecordView) []byte {
	switch rec.Kind() { //nolint: exhaustive
	case osm.KindNode:
		dst = append(dst, 'n')
	case osm.KindWay:
		dst = append(dst, 'w')
	default:
		dst = append(dst, 'a')
	}

	return strconv.AppendInt(dst, rec.ID(), 10)
}

// geojsonEncoder writes one GeoJSON feature per line (newline-delimited GeoJSON).
// The feature id is the entity reference and attributes become properties.
type geojsonEncoder struct {
	noFraming
	skips

	opts   geom.Options
	logger *slog.Logger
}

// NewGeoJSON creates a newline-delimited GeoJSON feature encoder.
func NewGeoJSON(cfg Config) (Encoder, error) {
	return &geojsonEncoder{opts: cfg.Geometry, logger: cfg.Logger}, nil
}

func (e *geojsonEncoder) Format() format.FileFormat { return format.FormatGeoJSON }

func (e *geojsonEncoder) Encode(a *arena.Arena) ([]byte, error) {
	sink := geom.NewGeometrySink()
	factory := geom.NewFactory(sink)

	return encodeWith(func(buf *pool.ByteBuffer) error {
		for rec := range a.All() {
			if _, err := factory.Create(rec, e.opts); err != nil {
				if isGeometryError(err) {
					e.skip(e.logger, format.FormatGeoJSON, err)
					continue
				}

				return wrapRecord(rec, err)
			}

			attrs, err := rec.Attributes()
			if err != nil {
				return wrapRecord(rec, err)
			}

			feature := geojson.NewFeature(sink.Geometry())
			feature.ID = string(appendEntityRef(nil, rec))
			for _, attr := range attrs {
				feature.Properties[attr.Key] = attr.Value
			}

			data, err := feature.MarshalJSON()
			if err != nil {
				return wrapRecord(rec, fmt.Errorf("geojson: %w", err))
			}
			buf.B = append(buf.B, data...)
			buf.B = append(buf.B, '\n')
		}

		return nil
	})
}
