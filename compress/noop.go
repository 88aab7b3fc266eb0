package compress

import "github.com/arloliu/geoarena/format"

// NoOpCompressor stores payloads uncompressed.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec.
//
// Returns:
//   - NoOpCompressor: New no-op codec instance
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Type returns format.CompressionNone.
func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns data itself without copying.
//
// Callers should not modify data afterwards if they keep the returned slice.
//
// Parameters:
//   - data: Input data (returned as-is)
//
// Returns:
//   - []byte: Same slice as input data
//   - error: Always nil
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself without copying.
//
// Parameters:
//   - data: Input data (returned as-is)
//
// Returns:
//   - []byte: Same slice as input data
//   - error: Always nil
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressSized returns data itself after checking its length.
//
// Parameters:
//   - data: Stored payload
//   - size: Expected payload length
//
// Returns:
//   - []byte: Same slice as input data
//   - error: ErrInvalidChunk if len(data) differs from size or size is out of range
func (c NoOpCompressor) DecompressSized(data []byte, size int) ([]byte, error) {
	if err := checkLimit(size, format.CompressionNone); err != nil {
		return nil, err
	}

	return checkSize(data, size, format.CompressionNone)
}
