package mp4io

import (
	"time"

	"github.com/ugparu/gomp4/utils/bits/pio"
)

const MDHD = Tag(0x6d646864)

type MediaHeader struct {
	Version    uint8
	Flags      uint32
	CreateTime time.Time
	ModifyTime time.Time
	TimeScale  uint32
	Duration   uint64
	Language   uint16
	Quality    int16
	AtomPos
}

func (m *MediaHeader) Tag() Tag {
	return MDHD
}

// LanguageString unpacks the three 5-bit ISO-639-2/T letters.
func (m *MediaHeader) LanguageString() string {
	code := m.Language
	if code == 0 {
		return "und"
	}
	return string([]byte{
		byte(code>>10&0x1f) + 0x60,
		byte(code>>5&0x1f) + 0x60,
		byte(code&0x1f) + 0x60,
	})
}

// SetLanguageString packs a three-letter ISO-639-2/T code.
func (m *MediaHeader) SetLanguageString(lang string) {
	if len(lang) != 3 {
		return
	}
	m.Language = uint16(lang[0]-0x60)<<10 | uint16(lang[1]-0x60)<<5 | uint16(lang[2]-0x60)
}

func (m *MediaHeader) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(MDHD))
	n += m.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (m *MediaHeader) marshal(b []byte) (n int) {
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
	pio.PutU16BE(b[n:], m.Language)
	n += 2
	pio.PutI16BE(b[n:], m.Quality)
	n += 2
	return
}

func (m *MediaHeader) Len() (n int) {
	n += HeaderSize
	n += 4
	if m.Version == 1 {
		n += 8 + 8 + 4 + 8
	} else {
		n += 4 + 4 + 4 + 4
	}
	n += 4
	return
}

func (m *MediaHeader) Unmarshal(b []byte, offset int) (n int, err error) {
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
	if len(b) < n+4 {
		err = parseErr("Language", n+offset, ErrTruncated)
		return
	}
	m.Language = pio.U16BE(b[n:])
	n += 2
	m.Quality = pio.I16BE(b[n:])
	n += 2
	return
}

func (m *MediaHeader) Children() []Atom {
	return nil
}
