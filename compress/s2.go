package compress

import (
	"github.com/arloliu/geoarena/format"
	"github.com/klauspost/compress/s2"
)

// S2Compressor compresses payloads with S2, the Snappy-compatible block format.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Type returns format.CompressionS2.
func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// DecompressSized decompresses into a buffer of exactly size bytes.
func (c S2Compressor) DecompressSized(data []byte, size int) ([]byte, error) {
	if err := checkLimit(size, format.CompressionS2); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return checkSize(nil, size, format.CompressionS2)
	}

	out, err := s2.Decode(make([]byte, size), data)
	if err != nil {
		return nil, err
	}

	return checkSize(out, size, format.CompressionS2)
}
