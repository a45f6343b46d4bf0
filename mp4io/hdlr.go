package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const HDLR = Tag(0x68646c72)

// Handler subtypes the track model recognizes.
var (
	HandlerVideo    = [4]byte{'v', 'i', 'd', 'e'}
	HandlerSound    = [4]byte{'s', 'o', 'u', 'n'}
	HandlerSubtitle = [4]byte{'s', 'b', 't', 'l'}
	HandlerText     = [4]byte{'t', 'e', 'x', 't'}
)

type HandlerRefer struct {
	Version    uint8
	Flags      uint32
	PreDefined uint32
	SubType    [4]byte
	Name       []byte
	AtomPos
}

func (h *HandlerRefer) Tag() Tag {
	return HDLR
}

func (h *HandlerRefer) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(HDLR))
	n += h.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (h *HandlerRefer) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], h.Version)
	n += 1
	pio.PutU24BE(b[n:], h.Flags)
	n += 3
	pio.PutU32BE(b[n:], h.PreDefined)
	n += 4
	copy(b[n:], h.SubType[:])
	n += 4
	n += 12 // reserved
	copy(b[n:], h.Name)
	n += len(h.Name)
	return
}

func (h *HandlerRefer) Len() (n int) {
	n += HeaderSize
	n += 4 + 4 + 4 + 12
	n += len(h.Name)
	return
}

func (h *HandlerRefer) Unmarshal(b []byte, offset int) (n int, err error) {
	(&h.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+4+4+4+12 {
		err = parseErr("SubType", n+offset, ErrTruncated)
		return
	}
	h.Version = pio.U8(b[n:])
	n += 1
	h.Flags = pio.U24BE(b[n:])
	n += 3
	h.PreDefined = pio.U32BE(b[n:])
	n += 4
	copy(h.SubType[:], b[n:])
	n += 4
	n += 12
	h.Name = b[n:]
	n += len(h.Name)
	return
}

func (h *HandlerRefer) Children() []Atom {
	return nil
}
