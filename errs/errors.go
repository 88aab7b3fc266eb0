// Package errs defines the sentinel errors returned by geoarena packages.
//
// Errors are wrapped with context at the call site using fmt.Errorf and the %w
// verb, so callers should always compare with errors.Is:
//
//	b, err := a.BeginRecord(osm.KindWay, 42)
//	if errors.Is(err, errs.ErrBuilderConflict) {
//	    // another builder is still open on this arena
//	}
package errs

import "errors"

// Construction errors. They are local to one builder/arena interaction and never
// leave the arena in a modified state.
var (
	// ErrBuilderConflict is returned when a builder is requested on an arena that already has one open.
	ErrBuilderConflict = errors.New("builder already open on arena")
	// ErrBuilderClosed is returned when a builder is used after Commit or Abort.
	ErrBuilderClosed = errors.New("builder is closed")
	// ErrBuilderState is returned when builder operations are issued in an invalid order.
	ErrBuilderState = errors.New("invalid builder state")
	// ErrIncompleteRecord is returned by Commit when a required sub-collection is missing or still open.
	ErrIncompleteRecord = errors.New("incomplete record")
	// ErrRecordTooLarge is returned when a record or sub-collection exceeds the size limit.
	ErrRecordTooLarge = errors.New("record too large")
	// ErrInvalidKind is returned when an item kind is not valid in the requested position.
	ErrInvalidKind = errors.New("invalid item kind")
	// ErrSubcollectionOpen is returned when a sub-collection is opened while a sibling is still open.
	ErrSubcollectionOpen = errors.New("sub-collection still open")
	// ErrInvalidSubcollection is returned when a sub-collection kind is not allowed for the entity.
	ErrInvalidSubcollection = errors.New("invalid sub-collection for entity")
	// ErrInvalidElementSize is returned when an element does not match the sub-collection element size.
	ErrInvalidElementSize = errors.New("invalid element size")
)

// Traversal errors. They signal absence or a malformed image, not a modified arena.
var (
	// ErrSubcollectionNotFound is returned when a record has no embedded sub-collection of the requested kind.
	ErrSubcollectionNotFound = errors.New("sub-collection not found")
	// ErrInvalidHandle is returned when a record handle does not point at a committed record.
	ErrInvalidHandle = errors.New("invalid record handle")
	// ErrWrongKind is returned when a typed accessor is used on a record or element of another kind.
	ErrWrongKind = errors.New("wrong item kind")
	// ErrCorruptRecord is returned when a committed byte image fails validation.
	ErrCorruptRecord = errors.New("corrupt record")
)

// Location resolution errors.
var (
	// ErrDuplicateNode is returned when a node id is indexed twice with different locations.
	ErrDuplicateNode = errors.New("duplicate node id")
)

// Geometry validity errors.
var (
	// ErrUndefinedLocation is returned when the undefined location sentinel is added to a geometry.
	ErrUndefinedLocation = errors.New("undefined location")
	// ErrInsufficientPoints is returned when a geometry has fewer points than its kind requires.
	ErrInsufficientPoints = errors.New("insufficient points for geometry")
	// ErrGeometryState is returned when geometry builder calls are issued in an invalid order.
	ErrGeometryState = errors.New("invalid geometry builder state")
	// ErrInvalidGeometryKind is returned for an unknown geometry kind.
	ErrInvalidGeometryKind = errors.New("invalid geometry kind")
)

// Pipeline and format errors.
var (
	// ErrUnsupportedFormat is returned by the registry when no constructor is registered for a format.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrFormatRegistered is returned when a format is registered twice.
	ErrFormatRegistered = errors.New("format already registered")
	// ErrRegistryFrozen is returned when registering after the registry has been frozen.
	ErrRegistryFrozen = errors.New("format registry is frozen")
	// ErrInvalidOption is returned when a pipeline option is out of range.
	ErrInvalidOption = errors.New("invalid option")
	// ErrPipelineStopped is returned when submitting to a pipeline that has stopped.
	ErrPipelineStopped = errors.New("pipeline stopped")
	// ErrPipelineClosed is returned when submitting to a pipeline after Close.
	ErrPipelineClosed = errors.New("pipeline closed")
	// ErrInvalidChunk is returned when decoding a malformed output chunk.
	ErrInvalidChunk = errors.New("invalid chunk")
	// ErrChecksumMismatch is returned when a chunk checksum does not match its payload.
	ErrChecksumMismatch = errors.New("chunk checksum mismatch")
)
