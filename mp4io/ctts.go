package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const CTTS = Tag(0x63747473)

// CompositionOffsetEntry offsets are signed. Version 0 writers store
// them unsigned but negative values appear in version 1 files.
type CompositionOffsetEntry struct {
	Count  uint32
	Offset int32
}

type CompositionOffset struct {
	Version uint8
	Flags   uint32
	Entries []CompositionOffsetEntry
	AtomPos
}

func (c *CompositionOffset) Tag() Tag {
	return CTTS
}

func (c *CompositionOffset) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(CTTS))
	n += c.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (c *CompositionOffset) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], c.Version)
	n += 1
	pio.PutU24BE(b[n:], c.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, entry := range c.Entries {
		pio.PutU32BE(b[n:], entry.Count)
		n += 4
		pio.PutI32BE(b[n:], entry.Offset)
		n += 4
	}
	return
}

func (c *CompositionOffset) Len() (n int) {
	n += HeaderSize
	n += 8
	n += len(c.Entries) * 8
	return
}

func (c *CompositionOffset) Unmarshal(b []byte, offset int) (n int, err error) {
	(&c.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+8 {
		err = parseErr("EntryCount", n+offset, ErrTruncated)
		return
	}
	c.Version = pio.U8(b[n:])
	n += 1
	c.Flags = pio.U24BE(b[n:])
	n += 3
	count := int(pio.U32BE(b[n:]))
	n += 4
	if len(b) < n+count*8 {
		err = parseErr("Entries", n+offset, ErrTruncated)
		return
	}
	c.Entries = make([]CompositionOffsetEntry, count)
	for i := 0; i < count; i++ {
		c.Entries[i].Count = pio.U32BE(b[n:])
		n += 4
		c.Entries[i].Offset = pio.I32BE(b[n:])
		n += 4
	}
	return
}

func (c *CompositionOffset) Children() []Atom {
	return nil
}
