package mp4io

import (
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const TKHD = Tag(0x746b6864)

type TrackHeader struct {
	Version        uint8
	Flags          uint32
	CreateTime     time.Time
	ModifyTime     time.Time
	TrackID        uint32
	Duration       uint64
	Layer          int16
	AlternateGroup int16
	Volume         float64
	Matrix         [9]int32
	TrackWidth     float64
	TrackHeight    float64
	AtomPos
}

func (t *TrackHeader) Tag() Tag {
	return TKHD
}

func (t *TrackHeader) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(TKHD))
	n += t.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (t *TrackHeader) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], t.Version)
	n += 1
	pio.PutU24BE(b[n:], t.Flags)
	n += 3
	if t.Version == 1 {
		PutTime64(b[n:], t.CreateTime)
		n += 8
		PutTime64(b[n:], t.ModifyTime)
		n += 8
		pio.PutU32BE(b[n:], t.TrackID)
		n += 4
		n += 4 // reserved
		pio.PutU64BE(b[n:], t.Duration)
		n += 8
	} else {
		PutTime32(b[n:], t.CreateTime)
		n += 4
		PutTime32(b[n:], t.ModifyTime)
		n += 4
		pio.PutU32BE(b[n:], t.TrackID)
		n += 4
		n += 4 // reserved
		pio.PutU32BE(b[n:], uint32(t.Duration))
		n += 4
	}
	n += 8 // reserved
	pio.PutI16BE(b[n:], t.Layer)
	n += 2
	pio.PutI16BE(b[n:], t.AlternateGroup)
	n += 2
	PutFixed16(b[n:], t.Volume)
	n += 2
	n += 2 // reserved
	for _, v := range t.Matrix {
		pio.PutI32BE(b[n:], v)
		n += 4
	}
	PutFixed32(b[n:], t.TrackWidth)
	n += 4
	PutFixed32(b[n:], t.TrackHeight)
	n += 4
	return
}

func (t *TrackHeader) Len() (n int) {
	n += HeaderSize
	n += 4
	if t.Version == 1 {
		n += 8 + 8 + 4 + 4 + 8
	} else {
		n += 4 + 4 + 4 + 4 + 4
	}
	n += 8 + 2 + 2 + 2 + 2 + 36 + 4 + 4
	return
}

func (t *TrackHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	(&t.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+4 {
		err = parseErr("Version", n+offset, ErrTruncated)
		return
	}
	t.Version = pio.U8(b[n:])
	n += 1
	t.Flags = pio.U24BE(b[n:])
	n += 3
	if t.Version == 1 {
		if len(b) < n+32 {
			err = parseErr("Duration", n+offset, ErrTruncated)
			return
		}
		t.CreateTime = GetTime64(b[n:])
		n += 8
		t.ModifyTime = GetTime64(b[n:])
		n += 8
		t.TrackID = pio.U32BE(b[n:])
		n += 4
		n += 4
		t.Duration = pio.U64BE(b[n:])
		n += 8
	} else {
		if len(b) < n+20 {
			err = parseErr("Duration", n+offset, ErrTruncated)
			return
		}
		t.CreateTime = GetTime32(b[n:])
		n += 4
		t.ModifyTime = GetTime32(b[n:])
		n += 4
		t.TrackID = pio.U32BE(b[n:])
		n += 4
		n += 4
		t.Duration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	if len(b) < n+8+2+2+2+2+36+4+4 {
		err = parseErr("TrackHeight", n+offset, ErrTruncated)
		return
	}
	n += 8
	t.Layer = pio.I16BE(b[n:])
	n += 2
	t.AlternateGroup = pio.I16BE(b[n:])
	n += 2
	t.Volume = GetFixed16(b[n:])
	n += 2
	n += 2
	for i := range t.Matrix {
		t.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	t.TrackWidth = GetFixed32(b[n:])
	n += 4
	t.TrackHeight = GetFixed32(b[n:])
	n += 4
	return
}

func (t *TrackHeader) Children() []Atom {
	return nil
}
