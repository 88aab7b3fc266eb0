package section

import "math"

// Alignment and fixed sizes of the arena record layout.
const (
	AlignBytes = 8 // every record and sub-collection starts at a multiple of AlignBytes

	RecordHeaderSize = 16 // byte_length(4) + kind(2) + fixed_length(2) + entity_id(8)
	SubHeaderSize    = 16 // byte_length(4) + kind(2) + element_size(2) + count(4) + reserved(4)
	LocationSize     = 8  // x(4) + y(4)

	// MaxRecordSize is the largest byte_length representable in a header, aligned down.
	MaxRecordSize = math.MaxUint32 &^ (AlignBytes - 1)
)

// Record header field offsets.
const (
	recLengthOffset   = 0
	recKindOffset     = 4
	recFixedLenOffset = 6
	recIDOffset       = 8
)

// Sub-collection header field offsets.
const (
	subLengthOffset      = 0
	subKindOffset        = 4
	subElementSizeOffset = 6
	subCountOffset       = 8
)

// Element field offsets, shared by node refs and ring members.
const (
	elemRefOffset  = 0
	elemXOffset    = 8
	elemYOffset    = 12
	elemRingOffset = 16
	elemRoleOffset = 20
)

// Padded rounds n up to the next multiple of AlignBytes.
func Padded(n int) int {
	return (n + AlignBytes - 1) &^ (AlignBytes - 1)
}

// IsAligned reports whether n is a multiple of AlignBytes.
func IsAligned(n int) bool {
	return n&(AlignBytes-1) == 0
}
