package compress

import "github.com/arloliu/geoarena/format"

// ZstdCompressor compresses payloads with Zstandard.
//
// It gives the best ratio of the built-in codecs and suits archival exports,
// where chunks are written once and read rarely. Builds with the gozstd tag and
// cgo use the valyala/gozstd binding; all others use klauspost/compress/zstd.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd codec instance
//
// Example:
//
//	codec := NewZstdCompressor()
//	compressed, err := codec.Compress(image)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type returns format.CompressionZstd.
func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}

// DecompressSized decompresses and checks the result against size.
func (c ZstdCompressor) DecompressSized(data []byte, size int) ([]byte, error) {
	if err := checkLimit(size, format.CompressionZstd); err != nil {
		return nil, err
	}

	out, err := c.Decompress(data)
	if err != nil {
		return nil, err
	}

	return checkSize(out, size, format.CompressionZstd)
}
