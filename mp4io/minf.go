package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	MINF = Tag(0x6d696e66)
	VMHD = Tag(0x766d6864)
	SMHD = Tag(0x736d6864)
)

type MediaInfo struct {
	Video    *VideoMediaInfo
	Sound    *SoundMediaInfo
	Data     *DataInfo
	Sample   *SampleTable
	Unknowns []Atom
	childOrder
	AtomPos
}

func (m *MediaInfo) Tag() Tag {
	return MINF
}

func (m *MediaInfo) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(MINF))
	n += m.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (m *MediaInfo) marshal(b []byte) (n int) {
	if order := m.ordered(m.Children()); order != nil {
		return marshalAtoms(order, b)
	}
	if m.Video != nil {
		n += m.Video.Marshal(b[n:])
	}
	if m.Sound != nil {
		n += m.Sound.Marshal(b[n:])
	}
	if m.Data != nil {
		n += m.Data.Marshal(b[n:])
	}
	if m.Sample != nil {
		n += m.Sample.Marshal(b[n:])
	}
	for _, atom := range m.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (m *MediaInfo) Len() (n int) {
	n += HeaderSize
	if order := m.ordered(m.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if m.Video != nil {
		n += m.Video.Len()
	}
	if m.Sound != nil {
		n += m.Sound.Len()
	}
	if m.Data != nil {
		n += m.Data.Len()
	}
	if m.Sample != nil {
		n += m.Sample.Len()
	}
	for _, atom := range m.Unknowns {
		n += atom.Len()
	}
	return
}

func (m *MediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&m.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("minf", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case VMHD:
			atom := &VideoMediaInfo{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("vmhd", offset+n, err)
				return
			}
			m.Video = atom
			m.noteChild(atom)
		case SMHD:
			atom := &SoundMediaInfo{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("smhd", offset+n, err)
				return
			}
			m.Sound = atom
			m.noteChild(atom)
		case DINF:
			atom := &DataInfo{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				if !degradable(err) {
					err = parseErr("dinf", offset+n, err)
					return
				}
				err = nil
				dummy := opaque(tag, b[n:n+size], offset+n)
				m.Unknowns = append(m.Unknowns, dummy)
				m.noteChild(dummy)
				break
			}
			m.Data = atom
			m.noteChild(atom)
		case STBL:
			atom := &SampleTable{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stbl", offset+n, err)
				return
			}
			m.Sample = atom
			m.noteChild(atom)
		default:
			dummy := opaque(tag, b[n:n+size], offset+n)
			m.Unknowns = append(m.Unknowns, dummy)
			m.noteChild(dummy)
		}
		n += size
	}
	return
}

func (m *MediaInfo) Children() (r []Atom) {
	if m.Video != nil {
		r = append(r, m.Video)
	}
	if m.Sound != nil {
		r = append(r, m.Sound)
	}
	if m.Data != nil {
		r = append(r, m.Data)
	}
	if m.Sample != nil {
		r = append(r, m.Sample)
	}
	r = append(r, m.Unknowns...)
	return
}

type VideoMediaInfo struct {
	Version      uint8
	Flags        uint32
	GraphicsMode int16
	Opcolor      [3]int16
	AtomPos
}

func (v *VideoMediaInfo) Tag() Tag {
	return VMHD
}

func (v *VideoMediaInfo) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(VMHD))
	n += v.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (v *VideoMediaInfo) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], v.Version)
	n += 1
	pio.PutU24BE(b[n:], v.Flags)
	n += 3
	pio.PutI16BE(b[n:], v.GraphicsMode)
	n += 2
	for _, c := range v.Opcolor {
		pio.PutI16BE(b[n:], c)
		n += 2
	}
	return
}

func (v *VideoMediaInfo) Len() (n int) {
	n += HeaderSize
	n += 4 + 2 + 6
	return
}

func (v *VideoMediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&v.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+4+2+6 {
		err = parseErr("Opcolor", n+offset, ErrTruncated)
		return
	}
	v.Version = pio.U8(b[n:])
	n += 1
	v.Flags = pio.U24BE(b[n:])
	n += 3
	v.GraphicsMode = pio.I16BE(b[n:])
	n += 2
	for i := range v.Opcolor {
		v.Opcolor[i] = pio.I16BE(b[n:])
		n += 2
	}
	return
}

func (v *VideoMediaInfo) Children() []Atom {
	return nil
}

type SoundMediaInfo struct {
	Version uint8
	Flags   uint32
	Balance int16
	AtomPos
}

func (s *SoundMediaInfo) Tag() Tag {
	return SMHD
}

func (s *SoundMediaInfo) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(SMHD))
	n += s.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (s *SoundMediaInfo) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], s.Version)
	n += 1
	pio.PutU24BE(b[n:], s.Flags)
	n += 3
	pio.PutI16BE(b[n:], s.Balance)
	n += 2
	n += 2 // reserved
	return
}

func (s *SoundMediaInfo) Len() (n int) {
	n += HeaderSize
	n += 4 + 2 + 2
	return
}

func (s *SoundMediaInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&s.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+4+2+2 {
		err = parseErr("Balance", n+offset, ErrTruncated)
		return
	}
	s.Version = pio.U8(b[n:])
	n += 1
	s.Flags = pio.U24BE(b[n:])
	n += 3
	s.Balance = pio.I16BE(b[n:])
	n += 2
	n += 2
	return
}

func (s *SoundMediaInfo) Children() []Atom {
	return nil
}
