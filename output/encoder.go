// Package output turns committed arenas into byte chunks of a selected file format.
//
// Formats are looked up in a Registry by format.FileFormat. Every Encoder is
// stateless per arena: Encode may be called concurrently from several
// goroutines, each with its own arena, which is what the pipeline package does.
//
//	enc, err := output.Create(format.FormatGeoJSON)
//	if err != nil {
//	    return err
//	}
//	chunk, err := enc.Encode(a)
//
// The shipped encoders are:
//
//	blackhole  discards every arena
//	opl        one entity per line
//	wkt        id and Well-Known Text geometry per line
//	wkb        id and hex Well-Known Binary geometry per line
//	geojson    one GeoJSON feature per line
//	xml        OSM XML
//	pbf        OSM PBF blobs
//	native     the raw arena image in a checksummed chunk, see DecodeNative
package output

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/compress"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/geom"
	"github.com/arloliu/geoarena/internal/options"
	"github.com/arloliu/geoarena/internal/pool"
)

// DefaultGenerator is written into format headers that name their producer.
const DefaultGenerator = "geoarena"

// Encoder serializes arenas of one file format.
type Encoder interface {
	// Format returns the file format produced by the encoder.
	Format() format.FileFormat
	// Header returns the bytes that precede the first chunk, possibly none.
	Header() ([]byte, error)
	// Encode serializes every committed record of a in commit order.
	// It must not modify a and is safe for concurrent use with distinct arenas.
	Encode(a *arena.Arena) ([]byte, error)
	// Footer returns the bytes that follow the last chunk, possibly none.
	Footer() ([]byte, error)
}

// SkipCounter is implemented by encoders that drop entities they cannot represent.
type SkipCounter interface {
	// Skipped returns the number of entities dropped so far.
	Skipped() int64
}

// Config holds the settings shared by all encoders. Each encoder reads the
// fields it understands and ignores the rest.
type Config struct {
	Compression format.CompressionType
	Geometry    geom.Options
	Generator   string
	BigEndian   bool
	Logger      *slog.Logger
}

// Option configures an encoder.
type Option = options.Option[*Config]

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) (Config, error) {
	cfg := Config{
		Compression: format.CompressionNone,
		Generator:   DefaultGenerator,
		Logger:      slog.Default(),
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WithCompression selects the payload compression of binary formats.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.Compression = ct

		return nil
	})
}

// WithGeometryOptions sets the reverse and deduplicate policies of geometry formats.
func WithGeometryOptions(opts geom.Options) Option {
	return options.NoError(func(c *Config) {
		c.Geometry = opts
	})
}

// WithGenerator sets the producer name written into format headers.
func WithGenerator(name string) Option {
	return options.NoError(func(c *Config) {
		if name != "" {
			c.Generator = name
		}
	})
}

// WithBigEndian selects big-endian integers in native chunk headers.
func WithBigEndian(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.BigEndian = enabled
	})
}

// WithLogger sets the logger used to report skipped entities.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	})
}

// skips counts dropped entities for SkipCounter implementations.
type skips struct {
	n atomic.Int64
}

func (s *skips) Skipped() int64 {
	return s.n.Load()
}

func (s *skips) skip(logger *slog.Logger, f format.FileFormat, err error) {
	s.n.Add(1)
	logger.Debug("entity skipped", "format", f, "error", err)
}

// encodeWith renders a into a pooled chunk buffer and returns a copy of the result.
func encodeWith(fn func(buf *pool.ByteBuffer) error) ([]byte, error) {
	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	if err := fn(buf); err != nil {
		return nil, err
	}

	return bytes.Clone(buf.Bytes()), nil
}

// noFraming provides empty Header and Footer methods.
type noFraming struct{}

func (noFraming) Header() ([]byte, error) { return nil, nil }
func (noFraming) Footer() ([]byte, error) { return nil, nil }

// wrapRecord annotates an encode error with the failing record.
func wrapRecord(rec arena.RecordView, err error) error {
	return fmt.Errorf("%s %d: %w", rec.Kind(), rec.ID(), err)
}
