package section

import (
	"fmt"

	"github.com/arloliu/geoarena/endian"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
)

// ChunkHeaderSize is the size of the native chunk header in bytes.
const ChunkHeaderSize = 24

// ChunkMagic identifies a native chunk.
var ChunkMagic = [4]byte{'G', 'E', 'O', 'A'}

// ChunkVersion is the native chunk layout version.
const ChunkVersion = 1

// MaxChunkSize bounds the raw and payload sizes a chunk header may declare.
const MaxChunkSize = 1 << 30

// Chunk header flags.
const (
	ChunkFlagBigEndian uint8 = 1 << 0 // header integers are big-endian
)

// Chunk header field offsets.
const (
	chunkMagicOffset       = 0
	chunkVersionOffset     = 4
	chunkFlagsOffset       = 5
	chunkCompressionOffset = 6
	chunkRawSizeOffset     = 8
	chunkPayloadSizeOffset = 12
	chunkChecksumOffset    = 16
)

// ChunkHeader frames one committed arena image in the native output format.
//
// Layout:
//
//	magic(4) | version(1) | flags(1) | compression(1) | reserved(1) |
//	raw_size(4) | payload_size(4) | checksum(8)
//
// The flags byte selects the byte order of the integer fields. The framed
// arena image itself is always little-endian.
type ChunkHeader struct {
	Flags       uint8
	Compression format.CompressionType
	RawSize     uint32 // length of the arena image
	PayloadSize uint32 // length of the (possibly compressed) payload that follows
	Checksum    uint64 // xxHash64 of the arena image
}

// IsBigEndian reports whether the header integers are big-endian.
func (h *ChunkHeader) IsBigEndian() bool {
	return h.Flags&ChunkFlagBigEndian != 0
}

// Engine returns the byte order selected by the flags.
func (h *ChunkHeader) Engine() endian.EndianEngine {
	return endian.Engine(h.IsBigEndian())
}

// Parse parses a chunk header from the first ChunkHeaderSize bytes of data.
//
// Returns:
//   - error: ErrInvalidChunk for short data, a bad magic, an unknown version or
//     compression, or a size above MaxChunkSize
func (h *ChunkHeader) Parse(data []byte) error {
	if len(data) < ChunkHeaderSize {
		return fmt.Errorf("%w: chunk header needs %d bytes, got %d", errs.ErrInvalidChunk, ChunkHeaderSize, len(data))
	}

	if [4]byte(data[chunkMagicOffset:chunkVersionOffset]) != ChunkMagic {
		return fmt.Errorf("%w: bad magic %q", errs.ErrInvalidChunk, data[chunkMagicOffset:chunkVersionOffset])
	}

	if v := data[chunkVersionOffset]; v != ChunkVersion {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidChunk, v)
	}

	h.Flags = data[chunkFlagsOffset]
	h.Compression = format.CompressionType(data[chunkCompressionOffset])
	if !h.Compression.IsValid() {
		return fmt.Errorf("%w: unknown compression %d", errs.ErrInvalidChunk, h.Compression)
	}

	engine := h.Engine()
	h.RawSize = engine.Uint32(data[chunkRawSizeOffset:])
	h.PayloadSize = engine.Uint32(data[chunkPayloadSizeOffset:])
	h.Checksum = engine.Uint64(data[chunkChecksumOffset:])

	if h.RawSize > MaxChunkSize || h.PayloadSize > MaxChunkSize {
		return fmt.Errorf("%w: declared sizes raw=%d payload=%d exceed %d",
			errs.ErrInvalidChunk, h.RawSize, h.PayloadSize, MaxChunkSize)
	}

	return nil
}

// AppendTo appends the encoded header to dst.
func (h *ChunkHeader) AppendTo(dst []byte) []byte {
	engine := h.Engine()
	dst = append(dst, ChunkMagic[:]...)
	dst = append(dst, ChunkVersion, h.Flags, uint8(h.Compression), 0)
	dst = engine.AppendUint32(dst, h.RawSize)
	dst = engine.AppendUint32(dst, h.PayloadSize)

	return engine.AppendUint64(dst, h.Checksum)
}
