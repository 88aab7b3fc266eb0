package section

import (
	"math"
	"slices"
	"testing"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/osm"
	"github.com/stretchr/testify/require"
)

// ==============================================================================
// Alignment
// ==============================================================================

func TestPadded(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0}, {1, 8}, {7, 8}, {8, 8}, {9, 16}, {16, 16}, {17, 24},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Padded(tt.in), "Padded(%d)", tt.in)
		require.True(t, IsAligned(Padded(tt.in)))
	}

	require.False(t, IsAligned(12))
	require.True(t, IsAligned(MaxRecordSize))
}

// ==============================================================================
// RecordHeader
// ==============================================================================

func TestRecordHeader_Parse(t *testing.T) {
	t.Run("Valid header", func(t *testing.T) {
		original := RecordHeader{ByteLength: 40, Kind: osm.KindWay, ID: -42}
		data := make([]byte, RecordHeaderSize)
		original.WriteToSlice(data, 0)

		var parsed RecordHeader
		require.NoError(t, parsed.Parse(data))
		require.Equal(t, original, parsed)
		require.Equal(t, uint32(40), PeekRecordLength(data))
	})

	t.Run("Write at offset", func(t *testing.T) {
		data := make([]byte, 8+RecordHeaderSize)
		h := RecordHeader{ByteLength: 24, Kind: osm.KindNode, ID: math.MaxInt64, FixedLength: 8}
		h.WriteToSlice(data, 8)

		var parsed RecordHeader
		require.NoError(t, parsed.Parse(data[8:]))
		require.Equal(t, h, parsed)
		require.Equal(t, make([]byte, 8), data[:8])
	})

	t.Run("Too short", func(t *testing.T) {
		var h RecordHeader
		err := h.Parse([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrCorruptRecord)
	})

	t.Run("Unaligned length", func(t *testing.T) {
		data := make([]byte, RecordHeaderSize)
		(&RecordHeader{ByteLength: 20, Kind: osm.KindNode}).WriteToSlice(data, 0)

		var h RecordHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrCorruptRecord)
	})

	t.Run("Length shorter than header", func(t *testing.T) {
		data := make([]byte, RecordHeaderSize)
		(&RecordHeader{ByteLength: 8, Kind: osm.KindNode}).WriteToSlice(data, 0)

		var h RecordHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrCorruptRecord)
	})

	t.Run("Fixed fields overflow", func(t *testing.T) {
		data := make([]byte, RecordHeaderSize)
		(&RecordHeader{ByteLength: 16, Kind: osm.KindNode, FixedLength: 8}).WriteToSlice(data, 0)

		var h RecordHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrCorruptRecord)
		require.Equal(t, 24, h.SubcollectionOffset())
	})

	t.Run("Non-entity kind", func(t *testing.T) {
		data := make([]byte, RecordHeaderSize)
		(&RecordHeader{ByteLength: 16, Kind: osm.KindLocationList}).WriteToSlice(data, 0)

		var h RecordHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrCorruptRecord)
	})
}

// ==============================================================================
// SubHeader
// ==============================================================================

func TestSubHeader_Parse(t *testing.T) {
	t.Run("Valid location list", func(t *testing.T) {
		original := SubHeader{ByteLength: 48, Kind: osm.KindLocationList, ElementSize: osm.NodeRefSize, Count: 2}
		data := make([]byte, SubHeaderSize)
		original.WriteToSlice(data, 0)

		var parsed SubHeader
		require.NoError(t, parsed.Parse(data))
		require.Equal(t, original, parsed)
		require.Equal(t, 32, parsed.DataLength())
	})

	t.Run("Attribute list with padding", func(t *testing.T) {
		original := SubHeader{ByteLength: 24, Kind: osm.KindAttributeList, ElementSize: osm.AttributeSize, Count: 5}
		data := make([]byte, SubHeaderSize)
		original.WriteToSlice(data, 0)

		var parsed SubHeader
		require.NoError(t, parsed.Parse(data))
		require.Equal(t, 5, parsed.DataLength())
	})

	t.Run("Wrong element size", func(t *testing.T) {
		data := make([]byte, SubHeaderSize)
		(&SubHeader{ByteLength: 32, Kind: osm.KindRingList, ElementSize: 16, Count: 1}).WriteToSlice(data, 0)

		var h SubHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrCorruptRecord)
	})

	t.Run("Count overflows length", func(t *testing.T) {
		data := make([]byte, SubHeaderSize)
		(&SubHeader{ByteLength: 32, Kind: osm.KindLocationList, ElementSize: osm.NodeRefSize, Count: 2}).WriteToSlice(data, 0)

		var h SubHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrCorruptRecord)
	})

	t.Run("Entity kind", func(t *testing.T) {
		data := make([]byte, SubHeaderSize)
		(&SubHeader{ByteLength: 16, Kind: osm.KindNode}).WriteToSlice(data, 0)

		var h SubHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrCorruptRecord)
	})
}

// ==============================================================================
// Elements
// ==============================================================================

func TestNodeRef_Codec(t *testing.T) {
	ref := osm.NodeRef{Ref: -7, Location: osm.NewLocation(3.2, 4.2)}
	elem := AppendNodeRef(nil, ref)

	require.Len(t, elem, osm.NodeRefSize)
	require.Equal(t, ref, ReadNodeRef(elem))
	require.Equal(t, int64(-7), ElementRef(elem))
	require.Equal(t, ref.Location, ElementLocation(elem))

	SetElementLocation(elem, osm.UndefinedLocation())
	require.False(t, ElementLocation(elem).IsDefined())
	require.Equal(t, int64(-7), ElementRef(elem))
}

func TestRingMember_Codec(t *testing.T) {
	m := osm.RingMember{Ref: 99, Location: osm.NewLocation(-0.5, 12.25), Ring: 3, Role: osm.RoleInner}
	elem := AppendRingMember(nil, m)

	require.Len(t, elem, osm.RingMemberSize)
	require.Equal(t, m, ReadRingMember(elem))
	require.Equal(t, uint32(3), ElementRing(elem))
	require.Equal(t, osm.RoleInner, ElementRole(elem))
	require.Equal(t, []byte{0, 0, 0}, elem[21:])
}

func TestAttributes(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		var data []byte
		data = AppendAttribute(data, "highway", "primary")
		data = AppendAttribute(data, "name", "")
		require.Len(t, data, AttributeLen("highway", "primary")+AttributeLen("name", ""))

		var got []osm.Attribute
		err := ParseAttributes(data, func(k, v string) bool {
			got = append(got, osm.Attribute{Key: k, Value: v})
			return true
		})
		require.NoError(t, err)
		require.Equal(t, []osm.Attribute{{Key: "highway", Value: "primary"}, {Key: "name", Value: ""}}, got)
	})

	t.Run("Stop early", func(t *testing.T) {
		data := AppendAttribute(AppendAttribute(nil, "a", "1"), "b", "2")

		calls := 0
		err := ParseAttributes(data, func(string, string) bool {
			calls++
			return false
		})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("Unterminated value", func(t *testing.T) {
		err := ParseAttributes([]byte("key\x00value"), func(string, string) bool { return true })
		require.ErrorIs(t, err, errs.ErrCorruptRecord)
	})

	t.Run("Unterminated key", func(t *testing.T) {
		err := ParseAttributes([]byte("key"), func(string, string) bool { return true })
		require.ErrorIs(t, err, errs.ErrCorruptRecord)
	})
}

// ==============================================================================
// ChunkHeader
// ==============================================================================

func TestChunkHeader_Parse(t *testing.T) {
	for _, flags := range []uint8{0, ChunkFlagBigEndian} {
		original := ChunkHeader{
			Flags:       flags,
			Compression: format.CompressionZstd,
			RawSize:     4096,
			PayloadSize: 517,
			Checksum:    0xdeadbeefcafef00d,
		}
		data := original.AppendTo(nil)
		require.Len(t, data, ChunkHeaderSize)
		require.Equal(t, []byte("GEOA"), data[:4])

		var parsed ChunkHeader
		require.NoError(t, parsed.Parse(data))
		require.Equal(t, original, parsed)
	}

	t.Run("Byte order", func(t *testing.T) {
		h := ChunkHeader{Flags: ChunkFlagBigEndian, Compression: format.CompressionNone, RawSize: 1}
		data := h.AppendTo(nil)
		require.Equal(t, []byte{0, 0, 0, 1}, data[8:12])

		h.Flags = 0
		data = h.AppendTo(nil)
		require.Equal(t, []byte{1, 0, 0, 0}, data[8:12])
	})

	t.Run("Invalid", func(t *testing.T) {
		valid := (&ChunkHeader{Compression: format.CompressionNone}).AppendTo(nil)

		var h ChunkHeader
		require.ErrorIs(t, h.Parse(valid[:10]), errs.ErrInvalidChunk)

		bad := slices.Clone(valid)
		bad[0] = 'X'
		require.ErrorIs(t, h.Parse(bad), errs.ErrInvalidChunk)

		bad = slices.Clone(valid)
		bad[4] = 9
		require.ErrorIs(t, h.Parse(bad), errs.ErrInvalidChunk)

		bad = slices.Clone(valid)
		bad[6] = 0
		require.ErrorIs(t, h.Parse(bad), errs.ErrInvalidChunk)
	})

	t.Run("Declared size limit", func(t *testing.T) {
		var h ChunkHeader
		atLimit := (&ChunkHeader{Compression: format.CompressionNone, RawSize: MaxChunkSize, PayloadSize: MaxChunkSize}).AppendTo(nil)
		require.NoError(t, h.Parse(atLimit))

		huge := (&ChunkHeader{Compression: format.CompressionNone, PayloadSize: 0xFFFFFFFF}).AppendTo(nil)
		require.ErrorIs(t, h.Parse(huge), errs.ErrInvalidChunk)

		huge = (&ChunkHeader{Compression: format.CompressionNone, RawSize: MaxChunkSize + 1}).AppendTo(nil)
		require.ErrorIs(t, h.Parse(huge), errs.ErrInvalidChunk)
	})
}
