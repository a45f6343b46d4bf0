package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STZ2 = Tag(0x73747a32)

// CompactSampleSize packs per-sample sizes into 4, 8 or 16 bit fields.
// Entries are widened to uint32 in memory; FieldSize controls the wire
// encoding.
type CompactSampleSize struct {
	Version   uint8
	Flags     uint32
	FieldSize uint8
	Entries   []uint32
	AtomPos
}

func (s *CompactSampleSize) Tag() Tag {
	return STZ2
}

func (s *CompactSampleSize) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STZ2))
	n += s.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (s *CompactSampleSize) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], s.Version)
	n += 1
	pio.PutU24BE(b[n:], s.Flags)
	n += 3
	pio.PutU24BE(b[n:], 0)
	n += 3
	pio.PutU8(b[n:], s.FieldSize)
	n += 1
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	switch s.FieldSize {
	case 4:
		for i := 0; i < len(s.Entries); i += 2 {
			v := uint8(s.Entries[i]&0xf) << 4
			if i+1 < len(s.Entries) {
				v |= uint8(s.Entries[i+1] & 0xf)
			}
			pio.PutU8(b[n:], v)
			n += 1
		}
	case 8:
		for _, entry := range s.Entries {
			pio.PutU8(b[n:], uint8(entry))
			n += 1
		}
	case 16:
		for _, entry := range s.Entries {
			pio.PutU16BE(b[n:], uint16(entry))
			n += 2
		}
	}
	return
}

func (s *CompactSampleSize) Len() (n int) {
	n += HeaderSize
	n += 12
	switch s.FieldSize {
	case 4:
		n += (len(s.Entries) + 1) / 2
	case 8:
		n += len(s.Entries)
	case 16:
		n += len(s.Entries) * 2
	}
	return
}

func (s *CompactSampleSize) Unmarshal(b []byte, offset int) (n int, err error) {
	(&s.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+12 {
		err = parseErr("SampleCount", n+offset, ErrTruncated)
		return
	}
	s.Version = pio.U8(b[n:])
	n += 1
	s.Flags = pio.U24BE(b[n:])
	n += 3
	n += 3 // reserved
	s.FieldSize = pio.U8(b[n:])
	n += 1
	count := int(pio.U32BE(b[n:]))
	n += 4
	var byteLen int
	switch s.FieldSize {
	case 4:
		byteLen = (count + 1) / 2
	case 8:
		byteLen = count
	case 16:
		byteLen = count * 2
	default:
		err = parseErr("FieldSize", n+offset, ErrInvalid)
		return
	}
	if len(b) < n+byteLen {
		err = parseErr("Entries", n+offset, ErrTruncated)
		return
	}
	s.Entries = make([]uint32, count)
	switch s.FieldSize {
	case 4:
		for i := 0; i < count; i++ {
			v := pio.U8(b[n+i/2:])
			if i%2 == 0 {
				s.Entries[i] = uint32(v >> 4)
			} else {
				s.Entries[i] = uint32(v & 0xf)
			}
		}
		n += byteLen
	case 8:
		for i := 0; i < count; i++ {
			s.Entries[i] = uint32(pio.U8(b[n:]))
			n += 1
		}
	case 16:
		for i := 0; i < count; i++ {
			s.Entries[i] = uint32(pio.U16BE(b[n:]))
			n += 2
		}
	}
	return
}

func (s *CompactSampleSize) Children() []Atom {
	return nil
}
