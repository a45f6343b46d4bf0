package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STSC = Tag(0x73747363)

type SampleToChunkEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
	SampleDescId    uint32
}

type SampleToChunk struct {
	Version uint8
	Flags   uint32
	Entries []SampleToChunkEntry
	AtomPos
}

func (s *SampleToChunk) Tag() Tag {
	return STSC
}

func (s *SampleToChunk) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STSC))
	n += s.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (s *SampleToChunk) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], s.Version)
	n += 1
	pio.PutU24BE(b[n:], s.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(s.Entries)))
	n += 4
	for _, entry := range s.Entries {
		pio.PutU32BE(b[n:], entry.FirstChunk)
		n += 4
		pio.PutU32BE(b[n:], entry.SamplesPerChunk)
		n += 4
		pio.PutU32BE(b[n:], entry.SampleDescId)
		n += 4
	}
	return
}

func (s *SampleToChunk) Len() (n int) {
	n += HeaderSize
	n += 8
	n += len(s.Entries) * 12
	return
}

func (s *SampleToChunk) Unmarshal(b []byte, offset int) (n int, err error) {
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
	if len(b) < n+count*12 {
		err = parseErr("Entries", n+offset, ErrTruncated)
		return
	}
	s.Entries = make([]SampleToChunkEntry, count)
	for i := 0; i < count; i++ {
		s.Entries[i].FirstChunk = pio.U32BE(b[n:])
		n += 4
		s.Entries[i].SamplesPerChunk = pio.U32BE(b[n:])
		n += 4
		s.Entries[i].SampleDescId = pio.U32BE(b[n:])
		n += 4
	}
	return
}

func (s *SampleToChunk) Children() []Atom {
	return nil
}
