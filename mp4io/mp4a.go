package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	MP4A = Tag(0x6d703461)
	ESDS = Tag(0x65736473)
)

type MP4ADesc struct {
	DataRefIdx       int16
	Version          int16
	RevisionLevel    int16
	Vendor           int32
	NumberOfChannels int16
	SampleSize       int16
	CompressionId    int16
	SampleRate       float64
	Conf             *ElemStreamDesc
	Unknowns         []Atom
	childOrder
	AtomPos
}

func (m *MP4ADesc) Tag() Tag {
	return MP4A
}

func (m *MP4ADesc) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(MP4A))
	n += m.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (m *MP4ADesc) marshal(b []byte) (n int) {
	n += 6
	pio.PutI16BE(b[n:], m.DataRefIdx)
	n += 2
	pio.PutI16BE(b[n:], m.Version)
	n += 2
	pio.PutI16BE(b[n:], m.RevisionLevel)
	n += 2
	pio.PutI32BE(b[n:], m.Vendor)
	n += 4
	pio.PutI16BE(b[n:], m.NumberOfChannels)
	n += 2
	pio.PutI16BE(b[n:], m.SampleSize)
	n += 2
	pio.PutI16BE(b[n:], m.CompressionId)
	n += 2
	n += 2
	PutFixed32(b[n:], m.SampleRate)
	n += 4
	if order := m.ordered(m.Children()); order != nil {
		n += marshalAtoms(order, b[n:])
		return
	}
	if m.Conf != nil {
		n += m.Conf.Marshal(b[n:])
	}
	for _, atom := range m.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (m *MP4ADesc) Len() (n int) {
	n += HeaderSize
	n += 28
	if order := m.ordered(m.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if m.Conf != nil {
		n += m.Conf.Len()
	}
	for _, atom := range m.Unknowns {
		n += atom.Len()
	}
	return
}

func (m *MP4ADesc) Unmarshal(b []byte, offset int) (n int, err error) {
	(&m.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+28 {
		err = parseErr("SampleEntry", n+offset, ErrTruncated)
		return
	}
	n += 6
	m.DataRefIdx = pio.I16BE(b[n:])
	n += 2
	m.Version = pio.I16BE(b[n:])
	n += 2
	m.RevisionLevel = pio.I16BE(b[n:])
	n += 2
	m.Vendor = pio.I32BE(b[n:])
	n += 4
	m.NumberOfChannels = pio.I16BE(b[n:])
	n += 2
	m.SampleSize = pio.I16BE(b[n:])
	n += 2
	m.CompressionId = pio.I16BE(b[n:])
	n += 2
	n += 2
	m.SampleRate = GetFixed32(b[n:])
	n += 4
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("mp4a", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case ESDS:
			atom := &ElemStreamDesc{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("esds", offset+n, err)
				return
			}
			m.Conf = atom
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

func (m *MP4ADesc) Children() (r []Atom) {
	if m.Conf != nil {
		r = append(r, m.Conf)
	}
	r = append(r, m.Unknowns...)
	return
}

// ElemStreamDesc keeps the ES descriptor payload verbatim, version and
// flags included.
type ElemStreamDesc struct {
	Data []byte
	AtomPos
}

func (e *ElemStreamDesc) Tag() Tag {
	return ESDS
}

func (e *ElemStreamDesc) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(ESDS))
	n += e.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (e *ElemStreamDesc) marshal(b []byte) (n int) {
	copy(b[n:], e.Data)
	n += len(e.Data)
	return
}

func (e *ElemStreamDesc) Len() (n int) {
	n += HeaderSize
	n += len(e.Data)
	return
}

func (e *ElemStreamDesc) Unmarshal(b []byte, offset int) (n int, err error) {
	(&e.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+4 {
		err = parseErr("Version", n+offset, ErrTruncated)
		return
	}
	e.Data = b[n:]
	n += len(b[n:])
	return
}

func (e *ElemStreamDesc) Children() []Atom {
	return nil
}
