package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STTS = Tag(0x73747473)

type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

type TimeToSample struct {
	Version uint8
	Flags   uint32
	Entries []TimeToSampleEntry
	AtomPos
}

func (t *TimeToSample) Tag() Tag {
	return STTS
}

func (t *TimeToSample) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STTS))
	n += t.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (t *TimeToSample) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], t.Version)
	n += 1
	pio.PutU24BE(b[n:], t.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(t.Entries)))
	n += 4
	for _, entry := range t.Entries {
		pio.PutU32BE(b[n:], entry.Count)
		n += 4
		pio.PutU32BE(b[n:], entry.Duration)
		n += 4
	}
	return
}

func (t *TimeToSample) Len() (n int) {
	n += HeaderSize
	n += 8
	n += len(t.Entries) * 8
	return
}

func (t *TimeToSample) Unmarshal(b []byte, offset int) (n int, err error) {
	(&t.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+8 {
		err = parseErr("EntryCount", n+offset, ErrTruncated)
		return
	}
	t.Version = pio.U8(b[n:])
	n += 1
	t.Flags = pio.U24BE(b[n:])
	n += 3
	count := int(pio.U32BE(b[n:]))
	n += 4
	if len(b) < n+count*8 {
		err = parseErr("Entries", n+offset, ErrTruncated)
		return
	}
	t.Entries = make([]TimeToSampleEntry, count)
	for i := 0; i < count; i++ {
		t.Entries[i].Count = pio.U32BE(b[n:])
		n += 4
		t.Entries[i].Duration = pio.U32BE(b[n:])
		n += 4
	}
	return
}

func (t *TimeToSample) Children() []Atom {
	return nil
}
