package section

import (
	"bytes"
	"fmt"

	"github.com/arloliu/geoarena/endian"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/osm"
)

// PutLocation writes loc into data at offset.
func PutLocation(data []byte, offset int, loc osm.Location) {
	endian.PutInt32(engine, data[offset:], loc.X)
	endian.PutInt32(engine, data[offset+4:], loc.Y)
}

// ReadLocation reads a location from data at offset.
func ReadLocation(data []byte, offset int) osm.Location {
	return osm.Location{
		X: endian.Int32(engine, data[offset:]),
		Y: endian.Int32(engine, data[offset+4:]),
	}
}

// AppendLocation appends the encoded location to dst.
func AppendLocation(dst []byte, loc osm.Location) []byte {
	dst = engine.AppendUint32(dst, uint32(loc.X))  //nolint: gosec
	return engine.AppendUint32(dst, uint32(loc.Y)) //nolint: gosec
}

// AppendNodeRef appends a NodeRefSize element to dst.
func AppendNodeRef(dst []byte, ref osm.NodeRef) []byte {
	dst = engine.AppendUint64(dst, uint64(ref.Ref)) //nolint: gosec
	return AppendLocation(dst, ref.Location)
}

// ReadNodeRef decodes a node ref element.
func ReadNodeRef(elem []byte) osm.NodeRef {
	return osm.NodeRef{
		Ref:      endian.Int64(engine, elem[elemRefOffset:]),
		Location: ReadLocation(elem, elemXOffset),
	}
}

// AppendRingMember appends a RingMemberSize element to dst.
func AppendRingMember(dst []byte, m osm.RingMember) []byte {
	dst = engine.AppendUint64(dst, uint64(m.Ref)) //nolint: gosec
	dst = AppendLocation(dst, m.Location)
	dst = engine.AppendUint32(dst, m.Ring)

	return append(dst, byte(m.Role), 0, 0, 0)
}

// ReadRingMember decodes a ring member element.
func ReadRingMember(elem []byte) osm.RingMember {
	return osm.RingMember{
		Ref:      endian.Int64(engine, elem[elemRefOffset:]),
		Location: ReadLocation(elem, elemXOffset),
		Ring:     engine.Uint32(elem[elemRingOffset:]),
		Role:     osm.Role(elem[elemRoleOffset]),
	}
}

// ElementRef reads the ref field shared by node ref and ring member elements.
func ElementRef(elem []byte) int64 {
	return endian.Int64(engine, elem[elemRefOffset:])
}

// ElementLocation reads the location field shared by node ref and ring member elements.
func ElementLocation(elem []byte) osm.Location {
	return ReadLocation(elem, elemXOffset)
}

// SetElementLocation overwrites the location field of a node ref or ring member element in place.
func SetElementLocation(elem []byte, loc osm.Location) {
	PutLocation(elem, elemXOffset, loc)
}

// ElementRing reads the ring index of a ring member element.
func ElementRing(elem []byte) uint32 {
	return engine.Uint32(elem[elemRingOffset:])
}

// ElementRole reads the role of a ring member element.
func ElementRole(elem []byte) osm.Role {
	return osm.Role(elem[elemRoleOffset])
}

// AppendAttribute appends one key/value pair in attribute list form (key\0value\0).
func AppendAttribute(dst []byte, key, value string) []byte {
	dst = append(dst, key...)
	dst = append(dst, 0)
	dst = append(dst, value...)

	return append(dst, 0)
}

// AttributeLen returns the encoded size of one key/value pair.
func AttributeLen(key, value string) int {
	return len(key) + len(value) + 2
}

// ParseAttributes walks an attribute list payload and calls fn for every pair.
// Iteration stops early when fn returns false.
//
// Returns:
//   - error: ErrCorruptRecord if a key or value is missing its terminator
func ParseAttributes(data []byte, fn func(key, value string) bool) error {
	for len(data) > 0 {
		k := bytes.IndexByte(data, 0)
		if k < 0 {
			return fmt.Errorf("%w: unterminated attribute key", errs.ErrCorruptRecord)
		}
		rest := data[k+1:]
		v := bytes.IndexByte(rest, 0)
		if v < 0 {
			return fmt.Errorf("%w: unterminated attribute value", errs.ErrCorruptRecord)
		}

		if !fn(string(data[:k]), string(rest[:v])) {
			return nil
		}
		data = rest[v+1:]
	}

	return nil
}
