package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STSZ = Tag(0x7374737a)

// SampleSize carries either a uniform sample size or one entry per
// sample. SampleCount is always present on the wire, even when
// SampleSize is non-zero.
type SampleSize struct {
	Version     uint8
	Flags       uint32
	SampleSize  uint32
	SampleCount uint32
	Entries     []uint32
	AtomPos
}

func (s *SampleSize) Tag() Tag {
	return STSZ
}

func (s *SampleSize) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STSZ))
	n += s.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (s *SampleSize) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], s.Version)
	n += 1
	pio.PutU24BE(b[n:], s.Flags)
	n += 3
	pio.PutU32BE(b[n:], s.SampleSize)
	n += 4
	if s.SampleSize != 0 {
		pio.PutU32BE(b[n:], s.SampleCount)
		n += 4
		return
	}
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	for _, entry := range s.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	return
}

func (s *SampleSize) Len() (n int) {
	n += HeaderSize
	n += 12
	if s.SampleSize == 0 {
		n += len(s.Entries) * 4
	}
	return
}

func (s *SampleSize) Unmarshal(b []byte, offset int) (n int, err error) {
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
	s.SampleSize = pio.U32BE(b[n:])
	n += 4
	s.SampleCount = pio.U32BE(b[n:])
	n += 4
	if s.SampleSize != 0 {
		return
	}
	count := int(s.SampleCount)
	if len(b) < n+count*4 {
		err = parseErr("Entries", n+offset, ErrTruncated)
		return
	}
	s.Entries = make([]uint32, count)
	for i := 0; i < count; i++ {
		s.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

func (s *SampleSize) Children() []Atom {
	return nil
}
