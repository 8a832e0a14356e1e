// Package reader defines the inward contract (§6.1) that the core
// requires from the Oracle-side log reader. The reader itself, pulling
// raw blocks off disk or the network, is an external collaborator and
// out of scope for this repository; only the interface and the wire
// byte-order helpers it must use live here, so the decoder can be tested
// against literal RawRecord fixtures without any I/O.
package reader

import "encoding/binary"

// RawRecord is one physical redo record as handed to the decoder, already
// framed by the Reader.
type RawRecord struct {
	Scn               uint64
	Opcode            uint16
	Data              []byte
	FieldLengthsDelta int
	FieldCnt          uint16
	FieldPos          int
	Length            uint32
}

// Reader is the inward contract: present one physical redo record per
// call, in byte-order already converted to host order.
type Reader interface {
	// NextRecord returns the next physical redo record, or ok=false once
	// the source is exhausted (not an error: the caller re-polls).
	NextRecord() (rec RawRecord, ok bool, err error)
	Close() error
}

// ByteOrder is the wire byte order for all Oracle redo integers.
var ByteOrder = binary.LittleEndian

// Read16 decodes a 16-bit little-endian integer at data[off:].
func Read16(data []byte, off int) uint16 {
	if off+2 > len(data) {
		return 0
	}
	return ByteOrder.Uint16(data[off:])
}

// Read32 decodes a 32-bit little-endian integer at data[off:].
func Read32(data []byte, off int) uint32 {
	if off+4 > len(data) {
		return 0
	}
	return ByteOrder.Uint32(data[off:])
}

// Read48 decodes a 48-bit little-endian integer at data[off:]. The
// decoders in this repository do not call it; UBA fields are read with
// Read56.
func Read48(data []byte, off int) uint64 {
	if off+6 > len(data) {
		return 0
	}
	var buf [8]byte
	copy(buf[:6], data[off:off+6])
	return ByteOrder.Uint64(buf[:])
}

// Read56 decodes a 56-bit little-endian integer at data[off:] (UBA).
func Read56(data []byte, off int) uint64 {
	if off+7 > len(data) {
		return 0
	}
	var buf [8]byte
	copy(buf[:7], data[off:off+7])
	return ByteOrder.Uint64(buf[:])
}
