// Package geoarena stores map entities in compact binary arenas and exports
// them concurrently to OSM and geometry formats.
//
// # Core Features
//
//   - Append-only arenas of aligned, self-describing entity records
//   - Atomic record builders: an aborted record never becomes visible
//   - Two-pass location resolution for way nodes and area rings
//   - Geometry construction to WKT, EWKT, hex WKB, GeoJSON and orb geometries
//   - Encoders for OPL, XML, PBF, WKT, WKB, GeoJSON and a checksummed native format
//   - Order-preserving concurrent encode pipeline
//
// # Basic Usage
//
//	a, _ := geoarena.NewArena()
//
//	b, _ := a.BeginRecord(osm.KindNode, 1)
//	b.SetLocation(osm.NewLocation(3.2, 4.2))
//	b.Commit()
//
//	stats, err := geoarena.Export(ctx, os.Stdout, format.FormatGeoJSON, slices.Values(arenas),
//	    geoarena.WithPipelineOptions(pipeline.WithWorkers(4)))
//
// # Package Structure
//
// This package provides convenient top-level wrappers for the common cases.
// The arena, locations, geom, output and pipeline packages expose the full API.
package geoarena

import (
	"context"
	"io"
	"iter"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/geom"
	"github.com/arloliu/geoarena/internal/options"
	"github.com/arloliu/geoarena/internal/pool"
	"github.com/arloliu/geoarena/locations"
	"github.com/arloliu/geoarena/output"
	"github.com/arloliu/geoarena/pipeline"
)

// DefaultArenaCapacity is the initial capacity of arenas created by NewArena.
const DefaultArenaCapacity = pool.ArenaBufferDefaultSize

// NewArena creates an empty arena with the default capacity.
func NewArena(opts ...arena.Option) (*arena.Arena, error) {
	return arena.New(DefaultArenaCapacity, opts...)
}

// NewEncoder creates an encoder from the default format registry.
func NewEncoder(f format.FileFormat, opts ...output.Option) (output.Encoder, error) {
	return output.Create(f, opts...)
}

// NewEncoderByName creates an encoder for a format name such as "geojson".
func NewEncoderByName(name string, opts ...output.Option) (output.Encoder, error) {
	f, err := format.ParseFileFormat(name)
	if err != nil {
		return nil, err
	}

	return output.Create(f, opts...)
}

// NewPipeline starts an ordered encode pipeline writing to w.
func NewPipeline(ctx context.Context, enc output.Encoder, w io.Writer, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.New(ctx, enc, w, opts...)
}

// ExportConfig holds the encoder and pipeline settings of Export.
type ExportConfig struct {
	encoder  []output.Option
	pipeline []pipeline.Option
}

// ExportOption configures Export.
type ExportOption = options.Option[*ExportConfig]

// WithEncoderOptions passes opts to the format encoder.
func WithEncoderOptions(opts ...output.Option) ExportOption {
	return options.NoError(func(c *ExportConfig) {
		c.encoder = append(c.encoder, opts...)
	})
}

// WithPipelineOptions passes opts, such as pipeline.WithWorkers, to the pipeline.
func WithPipelineOptions(opts ...pipeline.Option) ExportOption {
	return options.NoError(func(c *ExportConfig) {
		c.pipeline = append(c.pipeline, opts...)
	})
}

// Export encodes every arena of arenas in format f and writes the result to w in order.
//
// Returns:
//   - pipeline.Stats: counters of the run
//   - error: encoder or pipeline option errors, or the pipeline failure
func Export(ctx context.Context, w io.Writer, f format.FileFormat, arenas iter.Seq[*arena.Arena], opts ...ExportOption) (pipeline.Stats, error) {
	cfg := &ExportConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return pipeline.Stats{}, err
	}

	enc, err := output.Create(f, cfg.encoder...)
	if err != nil {
		return pipeline.Stats{}, err
	}

	return pipeline.Run(ctx, enc, w, arenas, cfg.pipeline...)
}

// ResolveLocations indexes the nodes of every arena and fills the locations
// of all way and area references they resolve.
//
// Returns:
//   - *locations.Index: the node index
//   - int: references that remain undefined
//   - error: ErrDuplicateNode for conflicting node locations
func ResolveLocations(arenas ...*arena.Arena) (*locations.Index, int, error) {
	idx := locations.NewIndex()
	for _, a := range arenas {
		if err := locations.IndexNodes(a, idx); err != nil {
			return nil, 0, err
		}
	}

	unresolved := 0
	for _, a := range arenas {
		unresolved += locations.Resolve(a, idx)
	}

	return idx, unresolved, nil
}

// WKT returns the Well-Known Text geometry of rec.
func WKT(rec arena.RecordView, opts geom.Options) (string, error) {
	return geom.NewFactory(geom.NewWKTSink()).Create(rec, opts)
}

// GeoJSON returns the GeoJSON geometry object of rec.
func GeoJSON(rec arena.RecordView, opts geom.Options) (string, error) {
	return geom.NewFactory(geom.NewGeoJSONSink()).Create(rec, opts)
}
