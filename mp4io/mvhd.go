package mp4io

import (
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const MVHD = Tag(0x6d766864)

// NewMovieHeader returns an mvhd with identity matrix and unit rate.
func NewMovieHeader() *MovieHeader {
	now := time.Now()
	return &MovieHeader{
		CreateTime:      now,
		ModifyTime:      now,
		TimeScale:       1000,
		PreferredRate:   1,
		PreferredVolume: 1,
		Matrix:          [9]int32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000},
		NextTrackID:     1,
	}
}

type MovieHeader struct {
	Version         uint8
	Flags           uint32
	CreateTime      time.Time
	ModifyTime      time.Time
	TimeScale       uint32
	Duration        uint64
	PreferredRate   float64
	PreferredVolume float64
	Matrix          [9]int32
	NextTrackID     uint32
	AtomPos
}

func (m *MovieHeader) Tag() Tag {
	return MVHD
}

func (m *MovieHeader) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(MVHD))
	n += m.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (m *MovieHeader) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], m.Version)
	n += 1
	pio.PutU24BE(b[n:], m.Flags)
	n += 3
	if m.Version == 1 {
		PutTime64(b[n:], m.CreateTime)
		n += 8
		PutTime64(b[n:], m.ModifyTime)
		n += 8
		pio.PutU32BE(b[n:], m.TimeScale)
		n += 4
		pio.PutU64BE(b[n:], m.Duration)
		n += 8
	} else {
		PutTime32(b[n:], m.CreateTime)
		n += 4
		PutTime32(b[n:], m.ModifyTime)
		n += 4
		pio.PutU32BE(b[n:], m.TimeScale)
		n += 4
		pio.PutU32BE(b[n:], uint32(m.Duration))
		n += 4
	}
	PutFixed32(b[n:], m.PreferredRate)
	n += 4
	PutFixed16(b[n:], m.PreferredVolume)
	n += 2
	n += 10 // reserved
	for _, v := range m.Matrix {
		pio.PutI32BE(b[n:], v)
		n += 4
	}
	n += 24 // pre_defined
	pio.PutU32BE(b[n:], m.NextTrackID)
	n += 4
	return
}

func (m *MovieHeader) Len() (n int) {
	n += HeaderSize
	n += 4
	if m.Version == 1 {
		n += 8 + 8 + 4 + 8
	} else {
		n += 4 + 4 + 4 + 4
	}
	n += 4 + 2 + 10 + 36 + 24 + 4
	return
}

func (m *MovieHeader) Unmarshal(b []byte, offset int) (n int, err error) {
	(&m.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+4 {
		err = parseErr("Version", n+offset, ErrTruncated)
		return
	}
	m.Version = pio.U8(b[n:])
	n += 1
	m.Flags = pio.U24BE(b[n:])
	n += 3
	if m.Version == 1 {
		if len(b) < n+28 {
			err = parseErr("Duration", n+offset, ErrTruncated)
			return
		}
		m.CreateTime = GetTime64(b[n:])
		n += 8
		m.ModifyTime = GetTime64(b[n:])
		n += 8
		m.TimeScale = pio.U32BE(b[n:])
		n += 4
		m.Duration = pio.U64BE(b[n:])
		n += 8
	} else {
		if len(b) < n+16 {
			err = parseErr("Duration", n+offset, ErrTruncated)
			return
		}
		m.CreateTime = GetTime32(b[n:])
		n += 4
		m.ModifyTime = GetTime32(b[n:])
		n += 4
		m.TimeScale = pio.U32BE(b[n:])
		n += 4
		m.Duration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	if len(b) < n+4+2+10+36+24+4 {
		err = parseErr("NextTrackID", n+offset, ErrTruncated)
		return
	}
	m.PreferredRate = GetFixed32(b[n:])
	n += 4
	m.PreferredVolume = GetFixed16(b[n:])
	n += 2
	n += 10
	for i := range m.Matrix {
		m.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	n += 24
	m.NextTrackID = pio.U32BE(b[n:])
	n += 4
	return
}

func (m *MovieHeader) Children() []Atom {
	return nil
}
