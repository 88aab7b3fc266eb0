package arena

import (
	"errors"
	"fmt"
	"iter"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/osm"
	"github.com/arloliu/geoarena/section"
)

// RecordView is a read-only window onto one committed record.
//
// The view aliases the arena buffer and does not copy. The only mutation it
// allows is ElementView.SetLocation, which never changes a record's length.
type RecordView struct {
	data   []byte // the record bytes, header included
	offset int
	hdr    section.RecordHeader
}

// newRecordView builds a view of the record at off within a committed image.
// The image was validated on commit or adoption, so parse errors cannot happen.
func newRecordView(image []byte, off int) RecordView {
	v := RecordView{offset: off}
	_ = v.hdr.Parse(image[off:])
	v.data = image[off : off+int(v.hdr.ByteLength)]

	return v
}

// Kind returns the entity kind.
func (v RecordView) Kind() osm.ItemKind {
	return v.hdr.Kind
}

// ID returns the entity id.
func (v RecordView) ID() int64 {
	return v.hdr.ID
}

// ByteLength returns the record length including header and padding.
func (v RecordView) ByteLength() int {
	return int(v.hdr.ByteLength)
}

// Offset returns the byte offset of the record in its arena.
func (v RecordView) Offset() int {
	return v.offset
}

// Handle returns the stable handle of the record.
func (v RecordView) Handle() RecordHandle {
	return RecordHandle(v.offset)
}

// Bytes returns the raw record bytes. Callers must not modify them.
func (v RecordView) Bytes() []byte {
	return v.data
}

// Fixed returns the fixed field bytes that follow the header.
func (v RecordView) Fixed() []byte {
	return v.data[section.RecordHeaderSize : section.RecordHeaderSize+int(v.hdr.FixedLength)]
}

// Location returns the location of a node record.
//
// Returns:
//   - error: ErrWrongKind for ways and areas
func (v RecordView) Location() (osm.Location, error) {
	if v.hdr.Kind != osm.KindNode || v.hdr.FixedLength < section.LocationSize {
		return osm.UndefinedLocation(), fmt.Errorf("%w: %s %d has no location", errs.ErrWrongKind, v.hdr.Kind, v.hdr.ID)
	}

	return section.ReadLocation(v.data, section.RecordHeaderSize), nil
}

// Subcollections returns an iterator over every embedded sub-collection in storage order.
func (v RecordView) Subcollections() iter.Seq[SubcollectionView] {
	return func(yield func(SubcollectionView) bool) {
		for off := v.hdr.SubcollectionOffset(); off < len(v.data); {
			var hdr section.SubHeader
			if err := hdr.Parse(v.data[off:]); err != nil {
				return
			}
			sub := SubcollectionView{data: v.data[off : off+int(hdr.ByteLength)], hdr: hdr}
			if !yield(sub) {
				return
			}
			off += int(hdr.ByteLength)
		}
	}
}

// Subcollection finds the embedded sub-collection of the given kind.
//
// Returns:
//   - error: ErrSubcollectionNotFound if the record embeds no collection of that kind
func (v RecordView) Subcollection(kind osm.ItemKind) (SubcollectionView, error) {
	for sub := range v.Subcollections() {
		if sub.Kind() == kind {
			return sub, nil
		}
	}

	return SubcollectionView{}, fmt.Errorf("%w: %s in %s %d", errs.ErrSubcollectionNotFound, kind, v.hdr.Kind, v.hdr.ID)
}

// NodeRefs returns the location list of a way.
func (v RecordView) NodeRefs() (SubcollectionView, error) {
	return v.Subcollection(osm.KindLocationList)
}

// RingMembers returns the ring list of an area.
func (v RecordView) RingMembers() (SubcollectionView, error) {
	return v.Subcollection(osm.KindRingList)
}

// Attributes decodes the attribute list. A record without one yields no attributes.
//
// Returns:
//   - error: ErrCorruptRecord if the attribute payload is malformed
func (v RecordView) Attributes() ([]osm.Attribute, error) {
	sub, err := v.Subcollection(osm.KindAttributeList)
	if errors.Is(err, errs.ErrSubcollectionNotFound) {
		return nil, nil
	}

	var attrs []osm.Attribute
	err = section.ParseAttributes(sub.Payload(), func(key, value string) bool {
		attrs = append(attrs, osm.Attribute{Key: key, Value: value})
		return true
	})
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

// SubcollectionView is a read-only window onto one embedded sub-collection.
type SubcollectionView struct {
	data []byte // header included
	hdr  section.SubHeader
}

// Kind returns the sub-collection kind.
func (s SubcollectionView) Kind() osm.ItemKind {
	return s.hdr.Kind
}

// Len returns the number of elements.
func (s SubcollectionView) Len() int {
	return int(s.hdr.Count)
}

// ElementSize returns the size of each element in bytes.
func (s SubcollectionView) ElementSize() int {
	return int(s.hdr.ElementSize)
}

// Payload returns the element bytes without header and padding.
func (s SubcollectionView) Payload() []byte {
	return s.data[section.SubHeaderSize : section.SubHeaderSize+s.hdr.DataLength()]
}

// Element returns the i-th element. It panics if i is out of range.
func (s SubcollectionView) Element(i int) ElementView {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("arena: element index %d out of range [0, %d)", i, s.Len()))
	}

	size := s.ElementSize()
	off := section.SubHeaderSize + i*size

	return ElementView{data: s.data[off : off+size : off+size], kind: s.hdr.Kind}
}

// Elements returns an iterator over the elements and their indexes.
func (s SubcollectionView) Elements() iter.Seq2[int, ElementView] {
	return func(yield func(int, ElementView) bool) {
		for i := range s.Len() {
			if !yield(i, s.Element(i)) {
				return
			}
		}
	}
}

// Locations returns an iterator over the element locations of a location or ring list.
func (s SubcollectionView) Locations() iter.Seq[osm.Location] {
	return func(yield func(osm.Location) bool) {
		if s.hdr.Kind == osm.KindAttributeList {
			return
		}
		for _, e := range s.Elements() {
			if !yield(e.Location()) {
				return
			}
		}
	}
}

// IsClosed reports whether the first and last element reference the same node.
// Lists with fewer than two elements are never closed.
func (s SubcollectionView) IsClosed() bool {
	if s.hdr.Kind == osm.KindAttributeList || s.Len() < 2 {
		return false
	}

	return s.Element(0).Ref() == s.Element(s.Len()-1).Ref()
}

// EndsHaveSameLocation reports whether the first and last element share a defined location.
func (s SubcollectionView) EndsHaveSameLocation() bool {
	if s.hdr.Kind == osm.KindAttributeList || s.Len() < 2 {
		return false
	}

	first := s.Element(0).Location()

	return first.IsDefined() && first == s.Element(s.Len()-1).Location()
}

// UpdateLocation sets loc on every element referencing ref and returns how many were updated.
func (s SubcollectionView) UpdateLocation(ref int64, loc osm.Location) int {
	if s.hdr.Kind == osm.KindAttributeList {
		return 0
	}

	n := 0
	for _, e := range s.Elements() {
		if e.Ref() == ref {
			e.SetLocation(loc)
			n++
		}
	}

	return n
}

// ElementView is a window onto one sub-collection element.
type ElementView struct {
	data []byte
	kind osm.ItemKind
}

// Bytes returns the raw element bytes.
func (e ElementView) Bytes() []byte {
	return e.data
}

func (e ElementView) hasRef() bool {
	return len(e.data) >= osm.NodeRefSize
}

// Ref returns the referenced node id, or 0 for attribute bytes.
func (e ElementView) Ref() int64 {
	if !e.hasRef() {
		return 0
	}

	return section.ElementRef(e.data)
}

// Location returns the resolved location, or the undefined location.
func (e ElementView) Location() osm.Location {
	if !e.hasRef() {
		return osm.UndefinedLocation()
	}

	return section.ElementLocation(e.data)
}

// SetLocation stores a resolved location in place. It does nothing on attribute bytes.
func (e ElementView) SetLocation(loc osm.Location) {
	if e.hasRef() {
		section.SetElementLocation(e.data, loc)
	}
}

// NodeRef decodes the element as a node reference.
func (e ElementView) NodeRef() osm.NodeRef {
	return section.ReadNodeRef(e.data)
}

// Ring returns the ring index of a ring member, or 0 for other elements.
func (e ElementView) Ring() uint32 {
	if e.kind != osm.KindRingList {
		return 0
	}

	return section.ElementRing(e.data)
}

// Role returns the role of a ring member, or 0 for other elements.
func (e ElementView) Role() osm.Role {
	if e.kind != osm.KindRingList {
		return 0
	}

	return section.ElementRole(e.data)
}

// RingMember decodes the element as a ring member.
func (e ElementView) RingMember() osm.RingMember {
	if e.kind != osm.KindRingList {
		return osm.RingMember{Ref: e.Ref(), Location: e.Location()}
	}

	return section.ReadRingMember(e.data)
}
