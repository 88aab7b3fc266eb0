package format

import (
	"testing"

	"github.com/arloliu/geoarena/errs"
	"github.com/stretchr/testify/require"
)

func TestFileFormat_String(t *testing.T) {
	require.Equal(t, "geojson", FormatGeoJSON.String())
	require.Equal(t, "native", FormatNative.String())
	require.Equal(t, "unknown", FormatUnknown.String())
	require.Equal(t, "unknown", FileFormat(0xff).String())
}

func TestParseFileFormat(t *testing.T) {
	for _, f := range FileFormats() {
		t.Run(f.String(), func(t *testing.T) {
			got, err := ParseFileFormat(f.String())
			require.NoError(t, err)
			require.Equal(t, f, got)
		})
	}

	got, err := ParseFileFormat(" WKT ")
	require.NoError(t, err)
	require.Equal(t, FormatWKT, got)

	_, err = ParseFileFormat("shapefile")
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)

	_, err = ParseFileFormat("unknown")
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestParseCompressionType(t *testing.T) {
	tests := []struct {
		in   string
		want CompressionType
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"ZSTD", CompressionZstd},
		{"s2", CompressionS2},
		{"lz4", CompressionLZ4},
	}
	for _, tt := range tests {
		got, err := ParseCompressionType(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
		if tt.in != "" {
			require.Equal(t, tt.want, mustParse(t, got.String()))
		}
	}

	_, err := ParseCompressionType("gzip")
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func mustParse(t *testing.T, name string) CompressionType {
	t.Helper()
	c, err := ParseCompressionType(name)
	require.NoError(t, err)

	return c
}

func TestCompressionType_IsValid(t *testing.T) {
	require.True(t, CompressionNone.IsValid())
	require.True(t, CompressionLZ4.IsValid())
	require.False(t, CompressionType(0).IsValid())
	require.False(t, CompressionType(9).IsValid())
}
