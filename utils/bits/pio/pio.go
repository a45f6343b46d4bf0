// Package pio provides big-endian byte slice accessors for wire-format codecs.
package pio

// RecommendBufioSize is the buffer size suggested for buffered writers
// that emit atom streams.
const RecommendBufioSize = 1024 * 64

func U8(b []byte) uint8 {
	return b[0]
}

func U16BE(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func U24BE(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func U32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func U64BE(b []byte) uint64 {
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}

func I8(b []byte) int8 {
	return int8(b[0])
}

func I16BE(b []byte) int16 {
	return int16(U16BE(b))
}

func I24BE(b []byte) (v int32) {
	v = int32(U24BE(b))
	if v&0x800000 != 0 {
		v |= ^int32(0xffffff)
	}
	return
}

func I32BE(b []byte) int32 {
	return int32(U32BE(b))
}

func I64BE(b []byte) int64 {
	return int64(U64BE(b))
}

func PutU8(b []byte, v uint8) {
	b[0] = v
}

func PutU16BE(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func PutU24BE(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func PutU32BE(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func PutU64BE(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}

func PutI8(b []byte, v int8) {
	b[0] = uint8(v)
}

func PutI16BE(b []byte, v int16) {
	PutU16BE(b, uint16(v))
}

func PutI24BE(b []byte, v int32) {
	PutU24BE(b, uint32(v))
}

func PutI32BE(b []byte, v int32) {
	PutU32BE(b, uint32(v))
}

func PutI64BE(b []byte, v int64) {
	PutU64BE(b, uint64(v))
}
