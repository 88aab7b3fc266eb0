package section

import (
	"fmt"

	"github.com/arloliu/geoarena/endian"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/osm"
)

// engine is the byte order of every arena record. It is fixed so that a committed
// arena image means the same thing on every host.
var engine = endian.GetLittleEndianEngine()

// Engine returns the byte order used by the record layout.
func Engine() endian.EndianEngine {
	return engine
}

// RecordHeader is the fixed-size header at the start of every entity record.
type RecordHeader struct {
	// ByteLength is the full record length including header, fixed fields,
	// sub-collections and padding. Always a multiple of AlignBytes.
	ByteLength uint32 // byte offset 0-3
	// Kind is the entity kind of the record.
	Kind osm.ItemKind // byte offset 4-5
	// FixedLength is the number of fixed-field bytes following the header.
	// Sub-collections start at Padded(RecordHeaderSize+FixedLength).
	FixedLength uint16 // byte offset 6-7
	// ID is the entity id.
	ID int64 // byte offset 8-15
}

// Parse parses the header from the first RecordHeaderSize bytes of data.
//
// Returns:
//   - error: ErrCorruptRecord if data is too short or the header is inconsistent
func (h *RecordHeader) Parse(data []byte) error {
	if len(data) < RecordHeaderSize {
		return fmt.Errorf("%w: record header needs %d bytes, got %d", errs.ErrCorruptRecord, RecordHeaderSize, len(data))
	}

	h.ByteLength = engine.Uint32(data[recLengthOffset:])
	h.Kind = osm.ItemKind(engine.Uint16(data[recKindOffset:]))
	h.FixedLength = engine.Uint16(data[recFixedLenOffset:])
	h.ID = endian.Int64(engine, data[recIDOffset:])

	return h.Validate()
}

// Validate checks the header invariants.
func (h *RecordHeader) Validate() error {
	if !h.Kind.IsEntity() {
		return fmt.Errorf("%w: kind %s is not an entity", errs.ErrCorruptRecord, h.Kind)
	}

	if h.ByteLength < RecordHeaderSize || !IsAligned(int(h.ByteLength)) {
		return fmt.Errorf("%w: record length %d is not a valid aligned length", errs.ErrCorruptRecord, h.ByteLength)
	}

	if h.SubcollectionOffset() > int(h.ByteLength) {
		return fmt.Errorf("%w: %d fixed bytes overflow record length %d", errs.ErrCorruptRecord, h.FixedLength, h.ByteLength)
	}

	return nil
}

// WriteToSlice writes the header into data at offset.
// Panics if data is too short, the caller reserves the space up front.
func (h *RecordHeader) WriteToSlice(data []byte, offset int) {
	b := data[offset : offset+RecordHeaderSize]
	engine.PutUint32(b[recLengthOffset:], h.ByteLength)
	engine.PutUint16(b[recKindOffset:], uint16(h.Kind))
	engine.PutUint16(b[recFixedLenOffset:], h.FixedLength)
	endian.PutInt64(engine, b[recIDOffset:], h.ID)
}

// SubcollectionOffset returns the offset of the first sub-collection relative to the record start.
func (h *RecordHeader) SubcollectionOffset() int {
	return Padded(RecordHeaderSize + int(h.FixedLength))
}

// PeekRecordLength returns the byte_length field of the record starting at data[0].
func PeekRecordLength(data []byte) uint32 {
	return engine.Uint32(data[recLengthOffset:])
}

// SubHeader is the fixed-size header of an embedded sub-collection.
type SubHeader struct {
	// ByteLength is the sub-collection length including header and padding.
	ByteLength uint32 // byte offset 0-3
	// Kind is the sub-collection kind.
	Kind osm.ItemKind // byte offset 4-5
	// ElementSize is the size of each element in bytes.
	ElementSize uint16 // byte offset 6-7
	// Count is the number of elements. Padding after the last element is not counted.
	Count uint32 // byte offset 8-11
}

// Parse parses the sub-collection header from the first SubHeaderSize bytes of data.
func (h *SubHeader) Parse(data []byte) error {
	if len(data) < SubHeaderSize {
		return fmt.Errorf("%w: sub-collection header needs %d bytes, got %d", errs.ErrCorruptRecord, SubHeaderSize, len(data))
	}

	h.ByteLength = engine.Uint32(data[subLengthOffset:])
	h.Kind = osm.ItemKind(engine.Uint16(data[subKindOffset:]))
	h.ElementSize = engine.Uint16(data[subElementSizeOffset:])
	h.Count = engine.Uint32(data[subCountOffset:])

	if !h.Kind.IsSubcollection() {
		return fmt.Errorf("%w: kind %s is not a sub-collection", errs.ErrCorruptRecord, h.Kind)
	}
	if int(h.ElementSize) != h.Kind.ElementSize() {
		return fmt.Errorf("%w: %s element size %d, want %d", errs.ErrCorruptRecord, h.Kind, h.ElementSize, h.Kind.ElementSize())
	}
	if h.ByteLength < SubHeaderSize || !IsAligned(int(h.ByteLength)) {
		return fmt.Errorf("%w: sub-collection length %d is not a valid aligned length", errs.ErrCorruptRecord, h.ByteLength)
	}
	if uint64(h.Count)*uint64(h.ElementSize) > uint64(h.ByteLength-SubHeaderSize) {
		return fmt.Errorf("%w: %d elements of %d bytes overflow sub-collection length %d",
			errs.ErrCorruptRecord, h.Count, h.ElementSize, h.ByteLength)
	}

	return nil
}

// WriteToSlice writes the sub-collection header into data at offset.
func (h *SubHeader) WriteToSlice(data []byte, offset int) {
	b := data[offset : offset+SubHeaderSize]
	engine.PutUint32(b[subLengthOffset:], h.ByteLength)
	engine.PutUint16(b[subKindOffset:], uint16(h.Kind))
	engine.PutUint16(b[subElementSizeOffset:], h.ElementSize)
	engine.PutUint32(b[subCountOffset:], h.Count)
	engine.PutUint32(b[subCountOffset+4:], 0)
}

// DataLength returns the number of element bytes, excluding header and padding.
func (h *SubHeader) DataLength() int {
	return int(h.Count) * int(h.ElementSize)
}
