// Package section defines the binary record layout stored in a geoarena arena.
//
// The package holds the constants, headers and element codecs that give an
// arena image its physical shape. It knows nothing about arenas or builders;
// it only encodes and decodes fixed-size structures at given offsets.
//
// # Record Structure
//
// An arena is a gap-free run of records. Every record and every embedded
// sub-collection starts at a multiple of AlignBytes:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ RecordHeader (16 bytes)                                 │
//	│  - ByteLength (4): whole record incl. padding           │
//	│  - Kind (2), FixedLength (2)                            │
//	│  - ID (8)                                               │
//	├─────────────────────────────────────────────────────────┤
//	│ Fixed fields (nodes: Location, 8 bytes)                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Sub-collection 0..n                                     │
//	│  - SubHeader (16 bytes)                                 │
//	│  - Count × ElementSize element bytes                    │
//	│  - Zero padding up to AlignBytes                        │
//	├─────────────────────────────────────────────────────────┤
//	│ Zero padding up to AlignBytes                           │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
// RecordHeader (16 bytes):
//
//	Bytes  | Field      | Type   | Description
//	-------|------------|--------|----------------------------------
//	0-3    | ByteLength | uint32 | Record length, multiple of 8
//	4-5    | Kind       | uint16 | Entity kind (node, way, area)
//	6-7    | FixedLen   | uint16 | Fixed-field bytes after header
//	8-15   | ID         | int64  | Entity id
//
// SubHeader (16 bytes):
//
//	Bytes  | Field       | Type   | Description
//	-------|-------------|--------|----------------------------------
//	0-3    | ByteLength  | uint32 | Length incl. header and padding
//	4-5    | Kind        | uint16 | Sub-collection kind
//	6-7    | ElementSize | uint16 | Bytes per element
//	8-11   | Count       | uint32 | Number of elements
//	12-15  | Reserved    | uint32 | Zero
//
// # Element Format
//
// NodeRef (16 bytes): ref int64, x int32, y int32.
//
// RingMember (24 bytes): ref int64, x int32, y int32, ring uint32, role uint8, 3 bytes padding.
//
// Attribute lists use one-byte elements holding "key\x00value\x00" pairs.
//
// # Byte Order
//
// Records are always little-endian. Engine returns the engine in use so that
// callers decoding raw images agree with the layout.
package section
