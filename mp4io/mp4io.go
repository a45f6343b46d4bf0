// Package mp4io implements the ISO Base Media File Format box (atom) codec:
// typed marshal/unmarshal for the boxes the engine models and opaque,
// byte-exact preservation for everything else.
package mp4io

import (
	"errors"
	"math"
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const (
	// HeaderSize is the length of the compact box header.
	HeaderSize = 8
	// LargeHeaderSize is the length of a box header carrying a 64-bit size.
	LargeHeaderSize = 16
)

// MaxCompactSize is the largest box total representable with a 32-bit
// size field.
const MaxCompactSize int64 = math.MaxUint32

// ErrSizeOverflow reports a nested box whose serialized length cannot be
// represented with a 32-bit size field.
var ErrSizeOverflow = errors.New("mp4io: box size exceeds representable range")

func GetTime32(b []byte) (t time.Time) {
	sec := pio.U32BE(b)
	t = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
	t = t.Add(time.Second * time.Duration(sec))
	return
}

func PutTime32(b []byte, t time.Time) {
	dur := t.Sub(time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC))
	sec := uint32(dur / time.Second)
	pio.PutU32BE(b, sec)
}

func GetTime64(b []byte) (t time.Time) {
	sec := pio.U64BE(b)
	t = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
	t = t.Add(time.Second * time.Duration(sec))
	return
}

func PutTime64(b []byte, t time.Time) {
	dur := t.Sub(time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC))
	sec := uint64(dur / time.Second)
	pio.PutU64BE(b, sec)
}

func PutFixed16(b []byte, f float64) {
	intpart, fracpart := math.Modf(f)
	b[0] = uint8(intpart)
	b[1] = uint8(fracpart * 256.0)
}

func GetFixed16(b []byte) float64 {
	return float64(b[0]) + float64(b[1])/256.0
}

func PutFixed32(b []byte, f float64) {
	intpart, fracpart := math.Modf(f)
	pio.PutU16BE(b[0:2], uint16(intpart))
	pio.PutU16BE(b[2:4], uint16(fracpart*65536.0))
}

func GetFixed32(b []byte) float64 {
	return float64(pio.U16BE(b[0:2])) + float64(pio.U16BE(b[2:4]))/65536.0
}

// Tag is a four-character box type code.
type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i := 0; i < 4; i++ {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

// Tags of boxes the engine retains by position only or preserves opaquely.
const (
	MDAT = Tag(0x6d646174)
	SKIP = Tag(0x736b6970)
	META = Tag(0x6d657461)
	MOOF = Tag(0x6d6f6f66)
	UDTA = Tag(0x75647461)
	UUID = Tag(0x75756964)
)

const uuidTypeLen = 16

// Atom is one box in the tree. Unmarshal receives the whole box starting
// at its compact header; Marshal emits it the same way, re-deriving the
// size from Len.
type Atom interface {
	Pos() (int, int)
	Tag() Tag
	Marshal([]byte) int
	Unmarshal([]byte, int) (int, error)
	Len() int
	Children() []Atom
}

// AtomPos records where the box sat in the parsed stream.
type AtomPos struct {
	Offset int
	Size   int
}

func (p AtomPos) Pos() (int, int) {
	return p.Offset, p.Size
}

func (p *AtomPos) setPos(offset int, size int) {
	p.Offset, p.Size = offset, size
}

// Dummy preserves a box the engine does not model as its raw bytes,
// header included, so re-marshaling is byte-exact. For uuid boxes the
// 16-byte extended type is captured as part of the effective type key.
type Dummy struct {
	Data    []byte
	Tag_    Tag
	ExtType []byte
	AtomPos
}

func (d Dummy) Children() []Atom {
	return nil
}

func (d Dummy) Tag() Tag {
	return d.Tag_
}

func (d Dummy) Len() int {
	return len(d.Data)
}

func (d Dummy) Marshal(b []byte) int {
	copy(b, d.Data)
	return len(d.Data)
}

func (d *Dummy) Unmarshal(b []byte, offset int) (n int, err error) {
	(&d.AtomPos).setPos(offset, len(b))
	d.Data = b
	if d.Tag_ == UUID {
		hdr := HeaderSize
		if len(b) >= HeaderSize && pio.U32BE(b) == 1 {
			hdr = LargeHeaderSize
		}
		if len(b) < hdr+uuidTypeLen {
			err = parseErr("ExtType", offset+hdr, ErrTruncated)
			return
		}
		d.ExtType = b[hdr : hdr+uuidTypeLen]
	}
	n = len(b)
	return
}

// parseHeader decodes the box header at b[0:], where b is the remaining
// bytes of the enclosing scope. size is the total box length including
// the header; a zero size field resolves to the rest of the scope.
func parseHeader(b []byte, offset int) (tag Tag, size int, hdr int, err error) {
	if len(b) < HeaderSize {
		err = parseErr("header", offset, ErrTruncated)
		return
	}
	size32 := pio.U32BE(b)
	tag = Tag(pio.U32BE(b[4:]))
	hdr = HeaderSize
	switch size32 {
	case 0:
		size = len(b)
	case 1:
		if len(b) < LargeHeaderSize {
			err = parseErr("largesize", offset, ErrTruncated)
			return
		}
		hdr = LargeHeaderSize
		size64 := pio.U64BE(b[HeaderSize:])
		if size64 < uint64(hdr) || size64 > uint64(len(b)) {
			err = parseErr(tag.String(), offset, ErrOverrun)
			return
		}
		size = int(size64)
	default:
		if size32 < HeaderSize {
			err = parseErr(tag.String(), offset, ErrOverrun)
			return
		}
		if uint64(size32) > uint64(len(b)) {
			err = parseErr(tag.String(), offset, ErrOverrun)
			return
		}
		size = int(size32)
	}
	if tag == UUID && size < hdr+uuidTypeLen {
		err = parseErr("ExtType", offset, ErrTruncated)
	}
	return
}

// childScope reframes a child box for Unmarshal. Modeled atoms skip a
// fixed 8-byte header, so a child carrying a 16-byte large header is
// handed a scope starting 8 bytes in: the largesize occupies the header
// slot and the payload lines up.
func childScope(b []byte, n, size, hdr int) (scope []byte, off int) {
	lead := hdr - HeaderSize
	return b[n+lead : n+size], n + lead
}

// childOrder remembers the sequence children arrived in on the wire so a
// re-marshal keeps every box, modeled or not, at its original position
// among its siblings. Atoms built in code carry no order and marshal in
// declared field order.
type childOrder struct {
	order []Atom
}

func (c *childOrder) noteChild(a Atom) {
	c.order = append(c.order, a)
}

// ordered returns the wire order plus any children attached after
// parsing, or nil when the atom was built in code.
func (c *childOrder) ordered(children []Atom) []Atom {
	if c.order == nil {
		return nil
	}
	out := make([]Atom, len(c.order), len(c.order)+len(children))
	copy(out, c.order)
	for _, child := range children {
		noted := false
		for _, atom := range c.order {
			if atom == child {
				noted = true
				break
			}
		}
		if !noted {
			out = append(out, child)
		}
	}
	return out
}

func marshalAtoms(atoms []Atom, b []byte) (n int) {
	for _, atom := range atoms {
		n += atom.Marshal(b[n:])
	}
	return
}

func lenAtoms(atoms []Atom) (n int) {
	for _, atom := range atoms {
		n += atom.Len()
	}
	return
}

// MarshalAtom serializes a into b, using the 64-bit header form when the
// total exceeds the 32-bit limit. Nested boxes always use compact
// headers; a nested box too large for one yields ErrSizeOverflow.
func MarshalAtom(a Atom, b []byte) (n int, err error) {
	for _, child := range a.Children() {
		if err = oversize(child); err != nil {
			return
		}
	}
	n = a.Len()
	if int64(n) <= MaxCompactSize {
		return a.Marshal(b), nil
	}
	a.Marshal(b[HeaderSize:])
	pio.PutU32BE(b, 1)
	pio.PutU32BE(b[4:], uint32(a.Tag()))
	pio.PutU64BE(b[HeaderSize:], uint64(n)+HeaderSize)
	return n + HeaderSize, nil
}

func oversize(a Atom) error {
	if int64(a.Len()) > MaxCompactSize {
		return ErrSizeOverflow
	}
	for _, child := range a.Children() {
		if err := oversize(child); err != nil {
			return err
		}
	}
	return nil
}

func FindChildrenByName(root Atom, tag string) Atom {
	return FindChildren(root, StringToTag(tag))
}

func FindChildren(root Atom, tag Tag) Atom {
	if root.Tag() == tag {
		return root
	}
	for _, child := range root.Children() {
		if r := FindChildren(child, tag); r != nil {
			return r
		}
	}
	return nil
}
