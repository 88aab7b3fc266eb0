package compress

import (
	"fmt"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
)

// Compressor compresses one chunk payload.
type Compressor interface {
	// Compress compresses data and returns the result.
	//
	// The returned slice is owned by the caller unless the codec is the no-op
	// codec, which returns data itself. The input is never modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	// Decompress decompresses data produced by the matching Compressor.
	Decompress(data []byte) ([]byte, error)

	// DecompressSized decompresses data whose original length is known.
	//
	// Parameters:
	//   - data: Compressed payload
	//   - size: Recorded original length, at most MaxDecompressedSize
	//
	// Returns:
	//   - []byte: Decompressed data of exactly size bytes
	//   - error: ErrInvalidChunk if size is out of range or the decompressed length differs
	DecompressSized(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor

	// Type returns the compression identifier recorded in chunk headers.
	Type() format.CompressionType
}

// CreateCodec creates a new Codec for the given compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: ErrUnsupportedFormat for unknown types
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s compression: %s", errs.ErrUnsupportedFormat, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type: %s", errs.ErrUnsupportedFormat, compressionType)
}

// MaxDecompressedSize is the largest size DecompressSized accepts.
const MaxDecompressedSize = 1 << 30

// checkLimit rejects sizes that are negative or above MaxDecompressedSize
// before any buffer is allocated.
func checkLimit(size int, ct format.CompressionType) error {
	if size < 0 || size > MaxDecompressedSize {
		return fmt.Errorf("%w: %s payload declares %d bytes, limit %d",
			errs.ErrInvalidChunk, ct, size, MaxDecompressedSize)
	}

	return nil
}

// checkSize verifies a decompressed payload against the recorded length.
func checkSize(out []byte, size int, ct format.CompressionType) ([]byte, error) {
	if len(out) != size {
		return nil, fmt.Errorf("%w: %s payload decompressed to %d bytes, header says %d",
			errs.ErrInvalidChunk, ct, len(out), size)
	}

	return out, nil
}
