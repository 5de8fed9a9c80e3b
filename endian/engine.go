// Package endian resolves the byte order of a TIFF container and decodes
// multi-byte samples with it.
//
// A classic TIFF file starts with a two-byte order mark, "II" for little-endian
// (Intel) or "MM" for big-endian (Motorola). Every multi-byte field of the file,
// including 16-bit samples of uncompressed strips, follows that order.
//
// # Basic Usage
//
//	engine, err := endian.FromMark(header[:2])
//	if err != nil {
//	    return err
//	}
//	magic := engine.Uint16(header[2:4])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

const (
	// LittleEndianMark is the order mark of an Intel-ordered TIFF file.
	LittleEndianMark = "II"
	// BigEndianMark is the order mark of a Motorola-ordered TIFF file.
	BigEndianMark = "MM"
)

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// FromMark returns the engine selected by a two-byte TIFF order mark.
func FromMark(mark []byte) (EndianEngine, error) {
	if len(mark) < 2 {
		return nil, fmt.Errorf("byte order mark too short: %d bytes", len(mark))
	}

	switch string(mark[:2]) {
	case LittleEndianMark:
		return GetLittleEndianEngine(), nil
	case BigEndianMark:
		return GetBigEndianEngine(), nil
	default:
		return nil, fmt.Errorf("invalid byte order mark %q", mark[:2])
	}
}

// Mark returns the TIFF order mark of engine.
func Mark(engine EndianEngine) string {
	if engine == GetBigEndianEngine() {
		return BigEndianMark
	}

	return LittleEndianMark
}

// DecodeUint16s decodes len(dst) 16-bit values from src into dst.
// src must hold at least 2*len(dst) bytes.
func DecodeUint16s(engine EndianEngine, dst []uint16, src []byte) {
	if len(dst) == 0 {
		return
	}

	_ = src[2*len(dst)-1]
	for i := range dst {
		dst[i] = engine.Uint16(src[2*i:])
	}
}
