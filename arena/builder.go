package arena

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/osm"
	"github.com/arloliu/geoarena/section"
)

type builderState uint8

const (
	stateFixed builderState = iota // accepting fixed fields
	stateSubs                      // at least one sub-collection started
	stateCommitted
	stateAborted
)

// kindSet is a small set of sub-collection kinds.
type kindSet uint8

func kindBit(k osm.ItemKind) kindSet {
	switch k { //nolint: exhaustive
	case osm.KindLocationList:
		return 1
	case osm.KindRingList:
		return 2
	case osm.KindAttributeList:
		return 4
	default:
		return 0
	}
}

func (s kindSet) has(k osm.ItemKind) bool { return s&kindBit(k) != 0 }
func (s *kindSet) add(k osm.ItemKind)     { *s |= kindBit(k) }

// allowedSubcollection reports whether an entity of kind entity may embed a
// sub-collection of kind sub.
func allowedSubcollection(entity, sub osm.ItemKind) bool {
	if sub == osm.KindAttributeList {
		return true
	}

	return entity.Geometry() == sub
}

// Builder assembles one record at the tail of an arena.
//
// A Builder is created by Arena.BeginRecord and is finished by exactly one of
// Commit or Abort. Only one Builder may be open on an arena at a time.
//
// Note: The Builder is NOT thread-safe.
type Builder struct {
	arena *Arena
	start int
	kind  osm.ItemKind
	id    int64
	state builderState

	fixedLen int
	sub      *SubBuilder
	seen     kindSet
	nonEmpty kindSet
	err      error // sticky size error, reported again by Commit
}

// Kind returns the entity kind of the record being built.
func (b *Builder) Kind() osm.ItemKind {
	return b.kind
}

// ID returns the entity id of the record being built.
func (b *Builder) ID() int64 {
	return b.id
}

// Size returns the number of bytes written so far, header included.
func (b *Builder) Size() int {
	if b.state >= stateCommitted {
		return 0
	}

	return b.arena.buf.Len() - b.start
}

func (b *Builder) checkOpen() error {
	if b.state >= stateCommitted {
		return fmt.Errorf("%w: record %s/%d", errs.ErrBuilderClosed, b.kind, b.id)
	}

	return b.err
}

// grow reserves n more bytes at the tail and returns them. The region is zeroed.
func (b *Builder) grow(n int) ([]byte, error) {
	if size := b.Size() + n; size > b.arena.maxRecordSize {
		b.err = fmt.Errorf("%w: record %s/%d needs %d bytes, limit %d",
			errs.ErrRecordTooLarge, b.kind, b.id, size, b.arena.maxRecordSize)

		return nil, b.err
	}

	return b.arena.buf.ExtendZeroed(n), nil
}

// pad zero-fills the tail up to the next alignment boundary.
func (b *Builder) pad() error {
	tail := b.arena.buf.Len()
	if n := section.Padded(tail) - tail; n > 0 {
		_, err := b.grow(n)
		return err
	}

	return nil
}

// AppendFixed appends kind-specific fixed field bytes directly after the header.
//
// Returns:
//   - error: ErrBuilderState once a sub-collection has been started,
//     ErrRecordTooLarge if the fixed part exceeds 65535 bytes or the record limit
func (b *Builder) AppendFixed(data []byte) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	if b.state != stateFixed {
		return fmt.Errorf("%w: fixed fields must precede sub-collections", errs.ErrBuilderState)
	}

	if b.fixedLen+len(data) > math.MaxUint16 {
		return fmt.Errorf("%w: fixed fields exceed 65535 bytes", errs.ErrRecordTooLarge)
	}

	dst, err := b.grow(len(data))
	if err != nil {
		return err
	}
	copy(dst, data)
	b.fixedLen += len(data)

	return nil
}

// SetLocation writes the location fixed field of a node record.
//
// Returns:
//   - error: ErrWrongKind for non-node records, ErrBuilderState if the location was already written
func (b *Builder) SetLocation(loc osm.Location) error {
	if b.kind != osm.KindNode {
		return fmt.Errorf("%w: %s records have no location field", errs.ErrWrongKind, b.kind)
	}

	if b.fixedLen != 0 {
		return fmt.Errorf("%w: node location already set", errs.ErrBuilderState)
	}

	var buf [section.LocationSize]byte

	return b.AppendFixed(section.AppendLocation(buf[:0], loc))
}

// BeginSubcollection opens an embedded sub-collection of the given kind.
//
// Returns:
//   - *SubBuilder: the sub-builder, which must be closed before the next sibling or Commit
//   - error: ErrInvalidKind for non sub-collection kinds, ErrSubcollectionOpen while a
//     sibling is open, ErrInvalidSubcollection if the kind is not allowed for the
//     entity or was already embedded
func (b *Builder) BeginSubcollection(kind osm.ItemKind) (*SubBuilder, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	if !kind.IsSubcollection() {
		return nil, fmt.Errorf("%w: %s is not a sub-collection kind", errs.ErrInvalidKind, kind)
	}

	if b.sub != nil {
		return nil, fmt.Errorf("%w: %s must be closed before opening %s", errs.ErrSubcollectionOpen, b.sub.kind, kind)
	}

	if !allowedSubcollection(b.kind, kind) {
		return nil, fmt.Errorf("%w: %s cannot embed %s", errs.ErrInvalidSubcollection, b.kind, kind)
	}

	if b.seen.has(kind) {
		return nil, fmt.Errorf("%w: %s already embedded in %s/%d", errs.ErrInvalidSubcollection, kind, b.kind, b.id)
	}

	if err := b.pad(); err != nil {
		return nil, err
	}
	if _, err := b.grow(section.SubHeaderSize); err != nil {
		return nil, err
	}

	b.state = stateSubs
	b.seen.add(kind)
	b.sub = &SubBuilder{
		parent: b,
		start:  b.arena.buf.Len() - section.SubHeaderSize,
		kind:   kind,
	}

	return b.sub, nil
}

// Commit finalizes the record and makes it visible to iteration.
//
// Any failure aborts the record, leaving the arena exactly as it was before
// BeginRecord.
//
// Returns:
//   - RecordHandle: stable handle of the committed record
//   - error: ErrBuilderClosed, ErrIncompleteRecord if a required sub-collection or
//     field is missing or a sub-collection is still open, ErrRecordTooLarge
func (b *Builder) Commit() (RecordHandle, error) {
	if b.state >= stateCommitted {
		return 0, fmt.Errorf("%w: record %s/%d", errs.ErrBuilderClosed, b.kind, b.id)
	}

	if err := b.validate(); err != nil {
		b.Abort()
		return 0, err
	}

	if err := b.pad(); err != nil {
		b.Abort()
		return 0, err
	}

	a := b.arena
	end := a.buf.Len()
	hdr := section.RecordHeader{
		ByteLength:  uint32(end - b.start), //nolint: gosec
		Kind:        b.kind,
		FixedLength: uint16(b.fixedLen), //nolint: gosec
		ID:          b.id,
	}
	hdr.WriteToSlice(a.buf.B, b.start)

	a.committed = end
	a.starts = append(a.starts, b.start)
	a.open = nil
	b.state = stateCommitted

	return RecordHandle(b.start), nil
}

func (b *Builder) validate() error {
	if b.err != nil {
		return b.err
	}

	if b.sub != nil {
		return fmt.Errorf("%w: %s still open in %s/%d", errs.ErrIncompleteRecord, b.sub.kind, b.kind, b.id)
	}

	switch b.kind { //nolint: exhaustive
	case osm.KindNode:
		if b.fixedLen < section.LocationSize {
			return fmt.Errorf("%w: node %d has no location", errs.ErrIncompleteRecord, b.id)
		}
	case osm.KindWay, osm.KindArea:
		geom := b.kind.Geometry()
		if !b.nonEmpty.has(geom) {
			return fmt.Errorf("%w: %s %d has no %s entries", errs.ErrIncompleteRecord, b.kind, b.id, geom)
		}
	}

	return nil
}

// Abort discards the record and truncates the arena back to its committed length.
// It is idempotent and does nothing after a successful Commit, so it is safe to defer.
func (b *Builder) Abort() {
	if b.state >= stateCommitted {
		return
	}

	a := b.arena
	if a.buf != nil && a.buf.B != nil {
		a.buf.SetLength(b.start)
	}
	if a.open == b {
		a.open = nil
	}
	if b.sub != nil {
		b.sub.closed = true
		b.sub = nil
	}
	b.state = stateAborted
}

// SubBuilder appends fixed-size elements to one embedded sub-collection.
type SubBuilder struct {
	parent *Builder
	start  int
	kind   osm.ItemKind
	count  int
	closed bool
}

// Kind returns the sub-collection kind.
func (s *SubBuilder) Kind() osm.ItemKind {
	return s.kind
}

// Len returns the number of elements appended so far.
func (s *SubBuilder) Len() int {
	return s.count
}

func (s *SubBuilder) checkOpen() error {
	if s.closed {
		return fmt.Errorf("%w: %s sub-collection is closed", errs.ErrBuilderClosed, s.kind)
	}

	return s.parent.checkOpen()
}

// AppendElement appends one or more raw elements. len(elem) must be a non-zero
// multiple of the kind's element size.
//
// Returns:
//   - error: ErrInvalidElementSize, ErrBuilderClosed, ErrRecordTooLarge
func (s *SubBuilder) AppendElement(elem []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	size := s.kind.ElementSize()
	if len(elem) == 0 || len(elem)%size != 0 {
		return fmt.Errorf("%w: %d bytes for %s elements of %d bytes", errs.ErrInvalidElementSize, len(elem), s.kind, size)
	}

	if uint64(s.count)+uint64(len(elem)/size) > math.MaxUint32 {
		return fmt.Errorf("%w: %s element count overflow", errs.ErrRecordTooLarge, s.kind)
	}

	dst, err := s.parent.grow(len(elem))
	if err != nil {
		return err
	}
	copy(dst, elem)
	s.count += len(elem) / size

	return nil
}

func (s *SubBuilder) requireKind(kind osm.ItemKind) error {
	if s.kind != kind {
		return fmt.Errorf("%w: %s element added to %s", errs.ErrWrongKind, kind, s.kind)
	}

	return nil
}

// AddNodeRef appends a node reference to a location list.
func (s *SubBuilder) AddNodeRef(ref osm.NodeRef) error {
	if err := s.requireKind(osm.KindLocationList); err != nil {
		return err
	}

	var buf [osm.NodeRefSize]byte

	return s.AppendElement(section.AppendNodeRef(buf[:0], ref))
}

// AddRingMember appends a ring member to a ring list.
func (s *SubBuilder) AddRingMember(m osm.RingMember) error {
	if err := s.requireKind(osm.KindRingList); err != nil {
		return err
	}

	var buf [osm.RingMemberSize]byte

	return s.AppendElement(section.AppendRingMember(buf[:0], m))
}

// AddAttribute appends a key/value pair to an attribute list.
// Neither key nor value may contain a NUL byte.
func (s *SubBuilder) AddAttribute(key, value string) error {
	if err := s.requireKind(osm.KindAttributeList); err != nil {
		return err
	}

	if strings.IndexByte(key, 0) >= 0 || strings.IndexByte(value, 0) >= 0 {
		return fmt.Errorf("%w: attribute %q contains a NUL byte", errs.ErrInvalidElementSize, key)
	}

	return s.AppendElement(section.AppendAttribute(make([]byte, 0, section.AttributeLen(key, value)), key, value))
}

// Close pads the sub-collection and writes its header. Closing twice returns ErrBuilderClosed.
func (s *SubBuilder) Close() error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	b := s.parent
	if err := b.pad(); err != nil {
		return err
	}

	buf := b.arena.buf
	hdr := section.SubHeader{
		ByteLength:  uint32(buf.Len() - s.start), //nolint: gosec
		Kind:        s.kind,
		ElementSize: uint16(s.kind.ElementSize()), //nolint: gosec
		Count:       uint32(s.count),              //nolint: gosec
	}
	hdr.WriteToSlice(buf.B, s.start)

	if s.count > 0 {
		b.nonEmpty.add(s.kind)
	}
	s.closed = true
	b.sub = nil

	return nil
}
