package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/compress"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/internal/hash"
	"github.com/arloliu/geoarena/internal/pool"
	"github.com/arloliu/geoarena/section"
)

// nativeEncoder frames each committed arena image as one chunk:
// a section.ChunkHeader followed by the (possibly compressed) image.
type nativeEncoder struct {
	noFraming

	codec compress.Codec
	flags uint8
}

// NewNative creates an encoder for the native chunk format. Every compression type is supported.
func NewNative(cfg Config) (Encoder, error) {
	codec, err := compress.GetCodec(cfg.Compression)
	if err != nil {
		return nil, err
	}

	var flags uint8
	if cfg.BigEndian {
		flags |= section.ChunkFlagBigEndian
	}

	return &nativeEncoder{codec: codec, flags: flags}, nil
}

func (e *nativeEncoder) Format() format.FileFormat { return format.FormatNative }

func (e *nativeEncoder) Encode(a *arena.Arena) ([]byte, error) {
	image := a.Bytes()
	if len(image) > section.MaxChunkSize {
		return nil, fmt.Errorf("%w: arena image of %d bytes exceeds %d", errs.ErrInvalidChunk, len(image), section.MaxChunkSize)
	}

	payload, err := e.codec.Compress(image)
	if err != nil {
		return nil, fmt.Errorf("native: compress arena image: %w", err)
	}

	hdr := section.ChunkHeader{
		Flags:       e.flags,
		Compression: e.codec.Type(),
		RawSize:     uint32(len(image)),   //nolint: gosec
		PayloadSize: uint32(len(payload)), //nolint: gosec
		Checksum:    hash.Sum64(image),
	}

	return encodeWith(func(buf *pool.ByteBuffer) error {
		buf.B = hdr.AppendTo(buf.B)
		buf.MustWrite(payload)

		return nil
	})
}

// DecodeNative decodes one native chunk into a new arena.
//
// Returns:
//   - *arena.Arena: the adopted arena image
//   - int: number of bytes consumed from data
//   - error: ErrInvalidChunk, ErrChecksumMismatch or ErrCorruptRecord
func DecodeNative(data []byte) (*arena.Arena, int, error) {
	var hdr section.ChunkHeader
	if err := hdr.Parse(data); err != nil {
		return nil, 0, err
	}

	end := section.ChunkHeaderSize + int(hdr.PayloadSize)
	if end > len(data) {
		return nil, 0, fmt.Errorf("%w: payload needs %d bytes, got %d",
			errs.ErrInvalidChunk, hdr.PayloadSize, len(data)-section.ChunkHeaderSize)
	}

	a, err := decodeNativePayload(&hdr, data[section.ChunkHeaderSize:end])
	if err != nil {
		return nil, 0, err
	}

	return a, end, nil
}

func decodeNativePayload(hdr *section.ChunkHeader, payload []byte) (*arena.Arena, error) {
	codec, err := compress.GetCodec(hdr.Compression)
	if err != nil {
		return nil, err
	}

	image, err := codec.DecompressSized(payload, int(hdr.RawSize))
	if err != nil {
		return nil, err
	}
	if hdr.Compression == format.CompressionNone {
		image = slices.Clone(image)
	}

	if sum := hash.Sum64(image); sum != hdr.Checksum {
		return nil, fmt.Errorf("%w: got %016x, want %016x", errs.ErrChecksumMismatch, sum, hdr.Checksum)
	}

	return arena.FromBytes(image)
}

// NativeDecoder reads a stream of concatenated native chunks.
type NativeDecoder struct {
	r      *bufio.Reader
	hdr    [section.ChunkHeaderSize]byte
	chunks int
}

// NewNativeDecoder creates a decoder reading from r.
func NewNativeDecoder(r io.Reader) *NativeDecoder {
	return &NativeDecoder{r: bufio.NewReader(r)}
}

// Decode reads the next chunk.
//
// Returns:
//   - *arena.Arena: the decoded arena
//   - error: io.EOF after the last chunk, ErrInvalidChunk for a truncated stream
func (d *NativeDecoder) Decode() (*arena.Arena, error) {
	if _, err := io.ReadFull(d.r, d.hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("%w: chunk %d: truncated header", errs.ErrInvalidChunk, d.chunks)
	}

	var hdr section.ChunkHeader
	if err := hdr.Parse(d.hdr[:]); err != nil {
		return nil, fmt.Errorf("chunk %d: %w", d.chunks, err)
	}

	// grows with the data actually read, not with the declared size
	payload, err := io.ReadAll(io.LimitReader(d.r, int64(hdr.PayloadSize)))
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", d.chunks, err)
	}
	if len(payload) < int(hdr.PayloadSize) {
		return nil, fmt.Errorf("%w: chunk %d: truncated payload", errs.ErrInvalidChunk, d.chunks)
	}

	a, err := decodeNativePayload(&hdr, payload)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", d.chunks, err)
	}
	d.chunks++

	return a, nil
}

// Chunks returns the number of chunks decoded so far.
func (d *NativeDecoder) Chunks() int {
	return d.chunks
}
