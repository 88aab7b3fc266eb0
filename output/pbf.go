package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/compress"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/internal/pool"
	"github.com/arloliu/geoarena/osm"
	"google.golang.org/protobuf/encoding/protowire"
)

// PBFBlockSize is the maximum number of entities in one PBF data block.
const PBFBlockSize = 8000

// Blob types of the OSM PBF file blocks.
const (
	pbfHeaderType = "OSMHeader"
	pbfDataType   = "OSMData"
)

// Field numbers of the OSM PBF messages.
const (
	// BlobHeader
	fieldBlobHeaderType     protowire.Number = 1
	fieldBlobHeaderDatasize protowire.Number = 3

	// Blob
	fieldBlobRaw      protowire.Number = 1
	fieldBlobRawSize  protowire.Number = 2
	fieldBlobLZ4Data  protowire.Number = 6
	fieldBlobZstdData protowire.Number = 7

	// HeaderBlock
	fieldHeaderRequiredFeatures protowire.Number = 4
	fieldHeaderWritingProgram   protowire.Number = 16

	// PrimitiveBlock
	fieldBlockStringTable protowire.Number = 1
	fieldBlockGroup       protowire.Number = 2
	fieldBlockGranularity protowire.Number = 17
	fieldStringTableS     protowire.Number = 1

	// PrimitiveGroup
	fieldGroupDense     protowire.Number = 2
	fieldGroupWays      protowire.Number = 3
	fieldGroupRelations protowire.Number = 4

	// DenseNodes
	fieldDenseID       protowire.Number = 1
	fieldDenseInfo     protowire.Number = 5
	fieldDenseLat      protowire.Number = 8
	fieldDenseLon      protowire.Number = 9
	fieldDenseKeysVals protowire.Number = 10

	// DenseInfo
	fieldInfoVersion   protowire.Number = 1
	fieldInfoTimestamp protowire.Number = 2
	fieldInfoChangeset protowire.Number = 3
	fieldInfoUID       protowire.Number = 4
	fieldInfoUserSID   protowire.Number = 5
	fieldInfoVisible   protowire.Number = 6

	// Way and Relation
	fieldElemID         protowire.Number = 1
	fieldElemKeys       protowire.Number = 2
	fieldElemVals       protowire.Number = 3
	fieldWayRefs        protowire.Number = 8
	fieldRelRoles       protowire.Number = 8
	fieldRelMemIDs      protowire.Number = 9
	fieldRelMemberTypes protowire.Number = 10
)

// pbfGranularity is the coordinate unit in nanodegrees; it matches osm.Location.
const pbfGranularity = 1_000_000_000 / osm.CoordinatePrecision

// pbfEncoder writes OSM PBF file blocks. Every arena becomes one or more
// OSMData blocks of at most PBFBlockSize entities. Consecutive entities of
// the same kind share a primitive group, so commit order is kept. Areas are
// written as multipolygon relations with node members. Nodes without a
// location cannot be represented and are skipped.
type pbfEncoder struct {
	noFraming
	skips

	codec     compress.Codec
	generator string
	logger    *slog.Logger
}

// NewPBF creates an OSM PBF encoder. Supported compressions are None, Zstd and LZ4.
func NewPBF(cfg Config) (Encoder, error) {
	switch cfg.Compression {
	case format.CompressionNone, format.CompressionZstd, format.CompressionLZ4:
	default:
		return nil, fmt.Errorf("%w: pbf does not support %s compression", errs.ErrUnsupportedFormat, cfg.Compression)
	}

	codec, err := compress.CreateCodec(cfg.Compression, "pbf")
	if err != nil {
		return nil, err
	}

	return &pbfEncoder{codec: codec, generator: cfg.Generator, logger: cfg.Logger}, nil
}

func (e *pbfEncoder) Format() format.FileFormat { return format.FormatPBF }

func (e *pbfEncoder) Header() ([]byte, error) {
	var hdr []byte
	hdr = protowire.AppendTag(hdr, fieldHeaderRequiredFeatures, protowire.BytesType)
	hdr = protowire.AppendString(hdr, "OsmSchema-V0.6")
	hdr = protowire.AppendTag(hdr, fieldHeaderRequiredFeatures, protowire.BytesType)
	hdr = protowire.AppendString(hdr, "DenseNodes")
	hdr = protowire.AppendTag(hdr, fieldHeaderWritingProgram, protowire.BytesType)
	hdr = protowire.AppendString(hdr, e.generator)

	return e.appendFileBlock(nil, pbfHeaderType, hdr)
}

func (e *pbfEncoder) Encode(a *arena.Arena) ([]byte, error) {
	return encodeWith(func(buf *pool.ByteBuffer) error {
		scratch := pool.GetScratchBuffer()
		defer pool.PutScratchBuffer(scratch)

		var block pbfBlock
		flush := func() error {
			if block.entities == 0 {
				return nil
			}
			scratch.B = block.appendTo(scratch.B[:0])
			out, err := e.appendFileBlock(buf.B, pbfDataType, scratch.B)
			if err != nil {
				return err
			}
			buf.B = out
			block.reset()

			return nil
		}

		for rec := range a.All() {
			if err := block.add(rec); err != nil {
				if errors.Is(err, errSkipEntity) {
					e.skip(e.logger, format.FormatPBF, wrapRecord(rec, errs.ErrUndefinedLocation))
					continue
				}

				return wrapRecord(rec, err)
			}
			if block.entities >= PBFBlockSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}

		return flush()
	})
}

// appendFileBlock appends a BlobHeader length, BlobHeader and Blob carrying payload.
func (e *pbfEncoder) appendFileBlock(dst []byte, typ string, payload []byte) ([]byte, error) {
	var blob []byte
	if e.codec.Type() == format.CompressionNone {
		blob = protowire.AppendTag(blob, fieldBlobRaw, protowire.BytesType)
		blob = protowire.AppendBytes(blob, payload)
	} else {
		compressed, err := e.codec.Compress(payload)
		if err != nil {
			return nil, fmt.Errorf("pbf: compress %s block: %w", typ, err)
		}
		blob = protowire.AppendTag(blob, fieldBlobRawSize, protowire.VarintType)
		blob = protowire.AppendVarint(blob, uint64(len(payload)))

		field := fieldBlobZstdData
		if e.codec.Type() == format.CompressionLZ4 {
			field = fieldBlobLZ4Data
		}
		blob = protowire.AppendTag(blob, field, protowire.BytesType)
		blob = protowire.AppendBytes(blob, compressed)
	}

	var header []byte
	header = protowire.AppendTag(header, fieldBlobHeaderType, protowire.BytesType)
	header = protowire.AppendString(header, typ)
	header = protowire.AppendTag(header, fieldBlobHeaderDatasize, protowire.VarintType)
	header = protowire.AppendVarint(header, uint64(len(blob)))

	dst = binary.BigEndian.AppendUint32(dst, uint32(len(header))) //nolint: gosec
	dst = append(dst, header...)

	return append(dst, blob...), nil
}

var errSkipEntity = errors.New("pbf: entity has no representation")

type pbfGroupKind uint8

const (
	pbfGroupNone pbfGroupKind = iota
	pbfGroupDense
	pbfGroupWays
	pbfGroupRelations
)

// pbfBlock accumulates one PrimitiveBlock.
type pbfBlock struct {
	strings  []string
	index    map[string]uint32
	groups   []byte // encoded primitivegroup fields
	entities int

	kind pbfGroupKind
	// dense node columns of the open group
	ids, lats, lons []int64
	keysVals        []uint64
	// way or relation messages of the open group
	elems []byte
}

func (b *pbfBlock) reset() {
	b.strings = b.strings[:0]
	clear(b.index)
	b.groups = b.groups[:0]
	b.entities = 0
	b.resetGroup()
}

func (b *pbfBlock) resetGroup() {
	b.kind = pbfGroupNone
	b.ids, b.lats, b.lons = b.ids[:0], b.lats[:0], b.lons[:0]
	b.keysVals = b.keysVals[:0]
	b.elems = b.elems[:0]
}

// sid returns the string table index of s, adding it if needed. Index 0 is reserved.
func (b *pbfBlock) sid(s string) uint32 {
	if b.index == nil {
		b.index = make(map[string]uint32)
	}
	if len(b.strings) == 0 {
		b.strings = append(b.strings, "")
	}

	if id, ok := b.index[s]; ok {
		return id
	}
	id := uint32(len(b.strings)) //nolint: gosec
	b.strings = append(b.strings, s)
	b.index[s] = id

	return id
}

func (b *pbfBlock) switchGroup(kind pbfGroupKind) {
	if b.kind != kind {
		b.closeGroup()
		b.kind = kind
	}
}

func (b *pbfBlock) add(rec arena.RecordView) error {
	attrs, err := rec.Attributes()
	if err != nil {
		return err
	}

	switch rec.Kind() { //nolint: exhaustive
	case osm.KindNode:
		loc, err := rec.Location()
		if err != nil {
			return err
		}
		if !loc.IsDefined() {
			return errSkipEntity
		}

		b.switchGroup(pbfGroupDense)
		b.ids = append(b.ids, rec.ID())
		b.lats = append(b.lats, int64(loc.Y))
		b.lons = append(b.lons, int64(loc.X))
		for _, attr := range attrs {
			b.keysVals = append(b.keysVals, uint64(b.sid(attr.Key)), uint64(b.sid(attr.Value)))
		}
		b.keysVals = append(b.keysVals, 0)
	case osm.KindWay:
		list, err := rec.NodeRefs()
		if err != nil {
			return err
		}

		b.switchGroup(pbfGroupWays)
		var msg []byte
		msg = b.appendElemHeader(msg, rec.ID(), attrs)
		refs := make([]int64, 0, list.Len())
		for _, e := range list.Elements() {
			refs = append(refs, e.Ref())
		}
		msg = appendPackedDelta(msg, fieldWayRefs, refs)
		b.elems = protowire.AppendTag(b.elems, fieldGroupWays, protowire.BytesType)
		b.elems = protowire.AppendBytes(b.elems, msg)
	default:
		list, err := rec.RingMembers()
		if err != nil {
			return err
		}

		hasType := false
		for _, attr := range attrs {
			if attr.Key == "type" {
				hasType = true
			}
		}
		if !hasType {
			attrs = append(attrs, osm.Attribute{Key: "type", Value: "multipolygon"})
		}

		b.switchGroup(pbfGroupRelations)
		var msg []byte
		msg = b.appendElemHeader(msg, rec.ID(), attrs)
		roles := make([]uint64, 0, list.Len())
		ids := make([]int64, 0, list.Len())
		types := make([]uint64, 0, list.Len())
		for _, e := range list.Elements() {
			roles = append(roles, uint64(b.sid(e.Role().String())))
			ids = append(ids, e.Ref())
			types = append(types, 0) // NODE
		}
		msg = appendPacked(msg, fieldRelRoles, roles)
		msg = appendPackedDelta(msg, fieldRelMemIDs, ids)
		msg = appendPacked(msg, fieldRelMemberTypes, types)
		b.elems = protowire.AppendTag(b.elems, fieldGroupRelations, protowire.BytesType)
		b.elems = protowire.AppendBytes(b.elems, msg)
	}
	b.entities++

	return nil
}

func (b *pbfBlock) appendElemHeader(msg []byte, id int64, attrs []osm.Attribute) []byte {
	msg = protowire.AppendTag(msg, fieldElemID, protowire.VarintType)
	msg = protowire.AppendVarint(msg, uint64(id)) //nolint: gosec

	keys := make([]uint64, len(attrs))
	vals := make([]uint64, len(attrs))
	for i, attr := range attrs {
		keys[i] = uint64(b.sid(attr.Key))
		vals[i] = uint64(b.sid(attr.Value))
	}
	msg = appendPacked(msg, fieldElemKeys, keys)

	return appendPacked(msg, fieldElemVals, vals)
}

// closeGroup encodes the open primitive group into b.groups.
func (b *pbfBlock) closeGroup() {
	var group []byte
	switch b.kind {
	case pbfGroupNone:
		return
	case pbfGroupDense:
		var dense []byte
		dense = appendPackedDelta(dense, fieldDenseID, b.ids)
		dense = protowire.AppendTag(dense, fieldDenseInfo, protowire.BytesType)
		dense = protowire.AppendBytes(dense, appendDenseInfo(nil, len(b.ids)))
		dense = appendPackedDelta(dense, fieldDenseLat, b.lats)
		dense = appendPackedDelta(dense, fieldDenseLon, b.lons)
		dense = appendPacked(dense, fieldDenseKeysVals, b.keysVals)
		group = protowire.AppendTag(group, fieldGroupDense, protowire.BytesType)
		group = protowire.AppendBytes(group, dense)
	case pbfGroupWays, pbfGroupRelations:
		group = append(group, b.elems...)
	}

	b.groups = protowire.AppendTag(b.groups, fieldBlockGroup, protowire.BytesType)
	b.groups = protowire.AppendBytes(b.groups, group)
	b.resetGroup()
}

// appendTo closes the open group and appends the encoded PrimitiveBlock to dst.
func (b *pbfBlock) appendTo(dst []byte) []byte {
	b.closeGroup()
	if len(b.strings) == 0 {
		b.strings = append(b.strings, "") // DenseInfo user_sid 0
	}

	var table []byte
	for _, s := range b.strings {
		table = protowire.AppendTag(table, fieldStringTableS, protowire.BytesType)
		table = protowire.AppendString(table, s)
	}
	dst = protowire.AppendTag(dst, fieldBlockStringTable, protowire.BytesType)
	dst = protowire.AppendBytes(dst, table)
	dst = append(dst, b.groups...)
	dst = protowire.AppendTag(dst, fieldBlockGranularity, protowire.VarintType)

	return protowire.AppendVarint(dst, pbfGranularity)
}

// appendDenseInfo appends metadata columns for n nodes: version 1, visible,
// and zero timestamp, changeset and user.
func appendDenseInfo(dst []byte, n int) []byte {
	ones := make([]uint64, n)
	zeros := make([]uint64, n)
	for i := range ones {
		ones[i] = 1
	}

	dst = appendPacked(dst, fieldInfoVersion, ones)
	for _, num := range []protowire.Number{fieldInfoTimestamp, fieldInfoChangeset, fieldInfoUID, fieldInfoUserSID} {
		dst = appendPacked(dst, num, zeros)
	}

	return appendPacked(dst, fieldInfoVisible, ones)
}

// appendPacked appends a packed repeated varint field. Empty fields are omitted.
func appendPacked(dst []byte, num protowire.Number, values []uint64) []byte {
	if len(values) == 0 {
		return dst
	}

	var packed []byte
	for _, v := range values {
		packed = protowire.AppendVarint(packed, v)
	}
	dst = protowire.AppendTag(dst, num, protowire.BytesType)

	return protowire.AppendBytes(dst, packed)
}

// appendPackedDelta appends a packed repeated sint64 field of delta-coded values.
func appendPackedDelta(dst []byte, num protowire.Number, values []int64) []byte {
	if len(values) == 0 {
		return dst
	}

	var packed []byte
	prev := int64(0)
	for _, v := range values {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(v-prev))
		prev = v
	}
	dst = protowire.AppendTag(dst, num, protowire.BytesType)

	return protowire.AppendBytes(dst, packed)
}
