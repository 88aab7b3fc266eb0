// Package format defines the identifiers used to select output formats and
// chunk compression.
package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/geoarena/errs"
)

type (
	FileFormat      uint8
	CompressionType uint8
)

const (
	FormatUnknown   FileFormat = 0x0 // FormatUnknown is the zero value and never registered.
	FormatBlackhole FileFormat = 0x1 // FormatBlackhole discards everything it is given.
	FormatOPL       FileFormat = 0x2 // FormatOPL is the one-entity-per-line text format.
	FormatWKT       FileFormat = 0x3 // FormatWKT emits well-known text geometries.
	FormatGeoJSON   FileFormat = 0x4 // FormatGeoJSON emits line-delimited GeoJSON features.
	FormatWKB       FileFormat = 0x5 // FormatWKB emits hex-encoded well-known binary geometries.
	FormatXML       FileFormat = 0x6 // FormatXML emits OSM XML.
	FormatPBF       FileFormat = 0x7 // FormatPBF emits length-prefixed protobuf blocks.
	FormatNative    FileFormat = 0x8 // FormatNative frames the raw arena image.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

var fileFormatNames = [...]string{
	FormatUnknown:   "unknown",
	FormatBlackhole: "blackhole",
	FormatOPL:       "opl",
	FormatWKT:       "wkt",
	FormatGeoJSON:   "geojson",
	FormatWKB:       "wkb",
	FormatXML:       "xml",
	FormatPBF:       "pbf",
	FormatNative:    "native",
}

func (f FileFormat) String() string {
	if int(f) < len(fileFormatNames) {
		return fileFormatNames[f]
	}

	return "unknown"
}

// FileFormats returns every known format except FormatUnknown.
func FileFormats() []FileFormat {
	return []FileFormat{
		FormatBlackhole, FormatOPL, FormatWKT, FormatGeoJSON,
		FormatWKB, FormatXML, FormatPBF, FormatNative,
	}
}

// ParseFileFormat resolves a case-insensitive format name such as "geojson".
//
// Returns:
//   - error: ErrUnsupportedFormat for unknown names
func ParseFileFormat(name string) (FileFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range FileFormats() {
		if fileFormatNames[f] == name {
			return f, nil
		}
	}

	return FormatUnknown, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, name)
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known compression type.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// ParseCompressionType resolves a case-insensitive compression name; the empty
// string means CompressionNone.
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: compression %q", errs.ErrUnsupportedFormat, name)
	}
}
