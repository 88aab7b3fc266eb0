// Package endian provides byte order utilities for the geoarena binary layouts.
//
// The package combines encoding/binary's ByteOrder and AppendByteOrder
// interfaces into a single EndianEngine, so layout code can both patch fixed
// offsets (PutUint32) and append new fields (AppendUint64) through one value.
//
// # Basic Usage
//
// Arena records are always little-endian:
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint32(buf[0:4], byteLength)
//
// Framed output chunks may select big-endian for interoperability:
//
//	engine := endian.GetBigEndianEngine()
//	header = engine.AppendUint64(header, checksum)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used by arena records.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Engine returns the big-endian engine when bigEndian is set, little-endian otherwise.
func Engine(bigEndian bool) EndianEngine {
	if bigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Int32 reads a two's complement int32 using engine.
func Int32(engine EndianEngine, b []byte) int32 {
	return int32(engine.Uint32(b)) //nolint: gosec
}

// Int64 reads a two's complement int64 using engine.
func Int64(engine EndianEngine, b []byte) int64 {
	return int64(engine.Uint64(b)) //nolint: gosec
}

// PutInt32 writes a two's complement int32 using engine.
func PutInt32(engine EndianEngine, b []byte, v int32) {
	engine.PutUint32(b, uint32(v)) //nolint: gosec
}

// PutInt64 writes a two's complement int64 using engine.
func PutInt64(engine EndianEngine, b []byte, v int64) {
	engine.PutUint64(b, uint64(v)) //nolint: gosec
}
