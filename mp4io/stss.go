package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STSS = Tag(0x73747373)

// SyncSample lists the 1-based numbers of samples that are random
// access points. Entries are expected in increasing order.
type SyncSample struct {
	Version uint8
	Flags   uint32
	Entries []uint32
	AtomPos
}

func (s *SyncSample) Tag() Tag {
	return STSS
}

func (s *SyncSample) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STSS))
	n += s.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (s *SyncSample) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], s.Version)
	n += 1
	pio.PutU24BE(b[n:], s.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	for _, entry := range s.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	return
}

func (s *SyncSample) Len() (n int) {
	n += HeaderSize
	n += 8
	n += len(s.Entries) * 4
	return
}

func (s *SyncSample) Unmarshal(b []byte, offset int) (n int, err error) {
	(&s.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+8 {
		err = parseErr("EntryCount", n+offset, ErrTruncated)
		return
	}
	s.Version = pio.U8(b[n:])
	n += 1
	s.Flags = pio.U24BE(b[n:])
	n += 3
	count := int(pio.U32BE(b[n:]))
	n += 4
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

func (s *SyncSample) Children() []Atom {
	return nil
}
