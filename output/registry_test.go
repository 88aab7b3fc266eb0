package output

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==============================================================================
// Config
// ==============================================================================

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, format.CompressionNone, cfg.Compression)
	assert.Equal(t, DefaultGenerator, cfg.Generator)
	assert.False(t, cfg.BigEndian)
	assert.NotNil(t, cfg.Logger)

	logger := slog.New(slog.DiscardHandler)
	cfg, err = NewConfig(
		WithCompression(format.CompressionZstd),
		WithGeometryOptions(geom.Options{Reverse: true}),
		WithGenerator("tester"),
		WithBigEndian(true),
		WithLogger(logger),
	)
	require.NoError(t, err)
	assert.Equal(t, format.CompressionZstd, cfg.Compression)
	assert.True(t, cfg.Geometry.Reverse)
	assert.Equal(t, "tester", cfg.Generator)
	assert.True(t, cfg.BigEndian)
	assert.Same(t, logger, cfg.Logger)

	cfg, err = NewConfig(WithGenerator(""), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultGenerator, cfg.Generator, "empty generator keeps the default")
	assert.NotNil(t, cfg.Logger)

	_, err = NewConfig(WithCompression(format.CompressionType(0x7f)))
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

// ==============================================================================
// Registry
// ==============================================================================

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.ErrorIs(t, r.Register(format.FormatUnknown, NewOPL), errs.ErrUnsupportedFormat)
	require.ErrorIs(t, r.Register(format.FormatOPL, nil), errs.ErrUnsupportedFormat)

	require.NoError(t, r.Register(format.FormatWKT, NewWKT))
	require.NoError(t, r.Register(format.FormatOPL, NewOPL))
	require.ErrorIs(t, r.Register(format.FormatOPL, NewOPL), errs.ErrFormatRegistered)

	assert.Equal(t, []format.FileFormat{format.FormatOPL, format.FormatWKT}, r.Formats())
	assert.False(t, r.Frozen())

	r.Freeze()
	assert.True(t, r.Frozen())
	require.ErrorIs(t, r.Register(format.FormatXML, NewXML), errs.ErrRegistryFrozen)
}

func TestRegistry_Create(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(format.FormatOPL, NewOPL))

	_, err := r.Create(format.FormatXML)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
	assert.True(t, r.Frozen(), "a lookup freezes the registry")
	require.ErrorIs(t, r.Register(format.FormatXML, NewXML), errs.ErrRegistryFrozen)

	enc, err := r.Create(format.FormatOPL)
	require.NoError(t, err)
	assert.Equal(t, format.FormatOPL, enc.Format())

	_, err = r.Create(format.FormatOPL, WithCompression(format.CompressionType(0x7f)))
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(format.FormatBlackhole, NewBlackhole))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enc, err := r.Create(format.FormatBlackhole)
			assert.NoError(t, err)
			assert.NotNil(t, enc)
		}()
	}
	wg.Wait()
}

func TestDefault(t *testing.T) {
	assert.Equal(t, format.FileFormats(), Default.Formats())

	for _, f := range format.FileFormats() {
		t.Run(f.String(), func(t *testing.T) {
			create(t, f)
		})
	}

	assert.True(t, Default.Frozen())
	require.ErrorIs(t, Register(format.FormatOPL, NewOPL), errs.ErrRegistryFrozen)
}
