package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
)

type ChunkOffset struct {
	Version uint8
	Flags   uint32
	Entries []uint32
	AtomPos
}

func (c *ChunkOffset) Tag() Tag {
	return STCO
}

func (c *ChunkOffset) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STCO))
	n += c.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (c *ChunkOffset) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], c.Version)
	n += 1
	pio.PutU24BE(b[n:], c.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, entry := range c.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	return
}

func (c *ChunkOffset) Len() (n int) {
	n += HeaderSize
	n += 8
	n += len(c.Entries) * 4
	return
}

func (c *ChunkOffset) Unmarshal(b []byte, offset int) (n int, err error) {
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
	if len(b) < n+count*4 {
		err = parseErr("Entries", n+offset, ErrTruncated)
		return
	}
	c.Entries = make([]uint32, count)
	for i := 0; i < count; i++ {
		c.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

func (c *ChunkOffset) Children() []Atom {
	return nil
}

type ChunkOffset64 struct {
	Version uint8
	Flags   uint32
	Entries []uint64
	AtomPos
}

func (c *ChunkOffset64) Tag() Tag {
	return CO64
}

func (c *ChunkOffset64) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(CO64))
	n += c.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (c *ChunkOffset64) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], c.Version)
	n += 1
	pio.PutU24BE(b[n:], c.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, entry := range c.Entries {
		pio.PutU64BE(b[n:], entry)
		n += 8
	}
	return
}

func (c *ChunkOffset64) Len() (n int) {
	n += HeaderSize
	n += 8
	n += len(c.Entries) * 8
	return
}

func (c *ChunkOffset64) Unmarshal(b []byte, offset int) (n int, err error) {
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
	c.Entries = make([]uint64, count)
	for i := 0; i < count; i++ {
		c.Entries[i] = pio.U64BE(b[n:])
		n += 8
	}
	return
}

func (c *ChunkOffset64) Children() []Atom {
	return nil
}
