// Package arena stores map entities as self-describing binary records in a
// single growable byte buffer.
//
// An Arena is written through a Builder, one record at a time, and read back
// through RecordView values. Records are identified by RecordHandle, a byte
// offset that stays valid when the buffer is reallocated.
//
// # Writing
//
//	b, err := a.BeginRecord(osm.KindWay, 42)
//	if err != nil {
//	    return err
//	}
//	defer b.Abort()
//
//	nodes, err := b.BeginSubcollection(osm.KindLocationList)
//	...
//	nodes.AddNodeRef(osm.NodeRef{Ref: 1})
//	nodes.AddNodeRef(osm.NodeRef{Ref: 2})
//	if err := nodes.Close(); err != nil {
//	    return err
//	}
//	h, err := b.Commit()
//
// Abort is a no-op after a successful Commit, so the deferred call only rolls
// back records that were left incomplete by an early return.
//
// # Reading
//
//	for rec := range a.All() {
//	    fmt.Println(rec.Kind(), rec.ID())
//	}
//
// # Concurrency
//
// An Arena is not safe for concurrent use. Iteration and mutation must not
// overlap; views returned by All and View alias the arena buffer and are
// invalidated by the next call that may grow it (BeginRecord, Reserve and any
// Builder append). Handles stay valid until Clear or Release.
package arena

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/internal/options"
	"github.com/arloliu/geoarena/internal/pool"
	"github.com/arloliu/geoarena/osm"
	"github.com/arloliu/geoarena/section"
)

// RecordHandle identifies a committed record by its byte offset in the arena.
type RecordHandle int

// Offset returns the byte offset of the record.
func (h RecordHandle) Offset() int {
	return int(h)
}

// Arena is an append-only region of committed entity records.
//
// Bytes [0, Committed()) always hold complete, aligned records without gaps.
// Bytes past Committed() belong to the open Builder, if any.
type Arena struct {
	buf           *pool.ByteBuffer
	committed     int
	starts        []int // record offsets in commit order
	maxRecordSize int
	open          *Builder
}

// Config holds arena construction settings.
type Config struct {
	maxRecordSize int
}

// Option configures an Arena.
type Option = options.Option[*Config]

// WithMaxRecordSize limits the byte length of a single record.
// The limit is rounded down to the alignment unit.
func WithMaxRecordSize(n int) Option {
	return options.New(func(c *Config) error {
		n = n &^ (section.AlignBytes - 1)
		if n < section.RecordHeaderSize || n > section.MaxRecordSize {
			return fmt.Errorf("%w: max record size %d out of range [%d, %d]",
				errs.ErrRecordTooLarge, n, section.RecordHeaderSize, section.MaxRecordSize)
		}
		c.maxRecordSize = n

		return nil
	})
}

// New creates an empty arena with at least initialCapacity bytes reserved.
//
// Returns:
//   - *Arena: the new arena
//   - error: option validation error
func New(initialCapacity int, opts ...Option) (*Arena, error) {
	cfg := &Config{maxRecordSize: section.MaxRecordSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if initialCapacity < 0 {
		initialCapacity = 0
	}

	return &Arena{
		buf:           pool.NewByteBuffer(initialCapacity),
		maxRecordSize: cfg.maxRecordSize,
	}, nil
}

// FromBytes adopts a committed arena image, validating every record header and
// sub-collection header. The arena takes ownership of data.
//
// Returns:
//   - error: ErrCorruptRecord if data is not a gap-free run of valid records
func FromBytes(data []byte) (*Arena, error) {
	a := &Arena{
		buf:           &pool.ByteBuffer{B: data},
		maxRecordSize: section.MaxRecordSize,
	}

	starts, err := validateImage(data)
	if err != nil {
		return nil, err
	}
	a.committed = len(data)
	a.starts = starts

	return a, nil
}

// Reserve grows the backing store to at least minCapacity bytes. It never shrinks.
func (a *Arena) Reserve(minCapacity int) {
	a.buf.Reserve(minCapacity)
}

// BeginRecord opens a Builder for a new record of the given entity kind.
//
// Returns:
//   - *Builder: the builder, which owns the arena tail until Commit or Abort
//   - error: ErrBuilderConflict if a builder is already open, ErrInvalidKind for non-entity kinds
func (a *Arena) BeginRecord(kind osm.ItemKind, id int64) (*Builder, error) {
	if a.open != nil {
		return nil, fmt.Errorf("%w: record %s/%d is still being built", errs.ErrBuilderConflict, a.open.kind, a.open.id)
	}

	if !kind.IsEntity() {
		return nil, fmt.Errorf("%w: %s is not an entity kind", errs.ErrInvalidKind, kind)
	}

	if a.buf == nil {
		a.buf = pool.NewByteBuffer(pool.ArenaBufferDefaultSize)
	}

	b := &Builder{
		arena: a,
		start: a.committed,
		kind:  kind,
		id:    id,
	}
	a.buf.ExtendZeroed(section.RecordHeaderSize)
	a.open = b

	return b, nil
}

// Clear removes every record while keeping the allocated capacity.
//
// Returns:
//   - error: ErrBuilderConflict if a builder is open
func (a *Arena) Clear() error {
	if a.open != nil {
		return fmt.Errorf("%w: cannot clear while building", errs.ErrBuilderConflict)
	}

	if a.buf != nil {
		a.buf.Reset()
	}
	a.committed = 0
	a.starts = a.starts[:0]

	return nil
}

// Release drops the backing store. Every handle and view of the arena becomes invalid.
// An open builder is aborted first.
func (a *Arena) Release() {
	if a.open != nil {
		a.open.Abort()
	}

	if a.buf != nil {
		a.buf.Release()
	}
	a.committed = 0
	a.starts = nil
}

// Committed returns the number of committed bytes.
func (a *Arena) Committed() int {
	return a.committed
}

// Cap returns the capacity of the backing store.
func (a *Arena) Cap() int {
	if a.buf == nil {
		return 0
	}

	return a.buf.Cap()
}

// Len returns the number of committed records.
func (a *Arena) Len() int {
	return len(a.starts)
}

// Building reports whether a builder is open.
func (a *Arena) Building() bool {
	return a.open != nil
}

// Bytes returns the committed image. Callers must not modify it.
func (a *Arena) Bytes() []byte {
	if a.buf == nil {
		return nil
	}

	return a.buf.B[:a.committed]
}

// All returns an iterator over the committed records in commit order.
// Each call starts over at the first record.
func (a *Arena) All() iter.Seq[RecordView] {
	return func(yield func(RecordView) bool) {
		data := a.Bytes()
		for off := 0; off < len(data); {
			rec := newRecordView(data, off)
			if !yield(rec) {
				return
			}
			off += rec.ByteLength()
		}
	}
}

// Handles returns an iterator over the committed records paired with their handles.
func (a *Arena) Handles() iter.Seq2[RecordHandle, RecordView] {
	return func(yield func(RecordHandle, RecordView) bool) {
		for rec := range a.All() {
			if !yield(rec.Handle(), rec) {
				return
			}
		}
	}
}

// View returns the record at h. Handles are checked against the recorded
// record starts, so an offset inside a record is rejected.
//
// Returns:
//   - error: ErrInvalidHandle if h is not the offset of a committed record
func (a *Arena) View(h RecordHandle) (RecordView, error) {
	off := h.Offset()
	if off < 0 || off >= a.committed || !section.IsAligned(off) {
		return RecordView{}, fmt.Errorf("%w: offset %d, committed %d", errs.ErrInvalidHandle, off, a.committed)
	}

	if _, found := slices.BinarySearch(a.starts, off); !found {
		return RecordView{}, fmt.Errorf("%w: offset %d is not a record start", errs.ErrInvalidHandle, off)
	}

	return newRecordView(a.Bytes(), off), nil
}

// validateImage walks data as a run of records and returns the record offsets.
func validateImage(data []byte) ([]int, error) {
	if !section.IsAligned(len(data)) {
		return nil, fmt.Errorf("%w: image length %d is not aligned", errs.ErrCorruptRecord, len(data))
	}

	var starts []int
	for off := 0; off < len(data); {
		var hdr section.RecordHeader
		if err := hdr.Parse(data[off:]); err != nil {
			return nil, fmt.Errorf("record at offset %d: %w", off, err)
		}

		end := off + int(hdr.ByteLength)
		if end > len(data) {
			return nil, fmt.Errorf("%w: record at offset %d overruns image", errs.ErrCorruptRecord, off)
		}

		if err := validateSubcollections(data[off:end], &hdr); err != nil {
			return nil, fmt.Errorf("record at offset %d: %w", off, err)
		}

		starts = append(starts, off)
		off = end
	}

	return starts, nil
}

func validateSubcollections(rec []byte, hdr *section.RecordHeader) error {
	var seen kindSet
	for off := hdr.SubcollectionOffset(); off < len(rec); {
		var sub section.SubHeader
		if err := sub.Parse(rec[off:]); err != nil {
			return err
		}
		if off+int(sub.ByteLength) > len(rec) {
			return fmt.Errorf("%w: %s overruns record", errs.ErrCorruptRecord, sub.Kind)
		}
		if !allowedSubcollection(hdr.Kind, sub.Kind) || seen.has(sub.Kind) {
			return fmt.Errorf("%w: %s in %s", errs.ErrCorruptRecord, sub.Kind, hdr.Kind)
		}
		seen.add(sub.Kind)
		off += int(sub.ByteLength)
	}

	return nil
}
