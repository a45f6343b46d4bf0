package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const MOOV = Tag(0x6d6f6f76)

type Movie struct {
	Header   *MovieHeader
	Tracks   []*Track
	Unknowns []Atom
	childOrder
	AtomPos
}

func (m *Movie) Tag() Tag {
	return MOOV
}

func (m *Movie) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(MOOV))
	n += m.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (m *Movie) marshal(b []byte) (n int) {
	if order := m.ordered(m.Children()); order != nil {
		return marshalAtoms(order, b)
	}
	if m.Header != nil {
		n += m.Header.Marshal(b[n:])
	}
	for _, atom := range m.Tracks {
		n += atom.Marshal(b[n:])
	}
	for _, atom := range m.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (m *Movie) Len() (n int) {
	n += HeaderSize
	if order := m.ordered(m.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if m.Header != nil {
		n += m.Header.Len()
	}
	for _, atom := range m.Tracks {
		n += atom.Len()
	}
	for _, atom := range m.Unknowns {
		n += atom.Len()
	}
	return
}

func (m *Movie) Unmarshal(b []byte, offset int) (n int, err error) {
	(&m.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("moov", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case MVHD:
			atom := &MovieHeader{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("mvhd", offset+n, err)
				return
			}
			m.Header = atom
			m.noteChild(atom)
		case TRAK:
			atom := &Track{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				if !degradable(err) {
					err = parseErr("trak", offset+n, err)
					return
				}
				err = nil
				dummy := opaque(tag, b[n:n+size], offset+n)
				m.Unknowns = append(m.Unknowns, dummy)
				m.noteChild(dummy)
				break
			}
			m.Tracks = append(m.Tracks, atom)
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

func (m *Movie) Children() (r []Atom) {
	if m.Header != nil {
		r = append(r, m.Header)
	}
	for _, atom := range m.Tracks {
		r = append(r, atom)
	}
	r = append(r, m.Unknowns...)
	return
}

// opaque wraps a raw child range for byte-exact preservation.
func opaque(tag Tag, b []byte, offset int) *Dummy {
	atom := &Dummy{Tag_: tag, Data: b}
	atom.setPos(offset, len(b))
	if tag == UUID {
		hdr := HeaderSize
		if len(b) >= HeaderSize && pio.U32BE(b) == 1 {
			hdr = LargeHeaderSize
		}
		if len(b) >= hdr+uuidTypeLen {
			atom.ExtType = b[hdr : hdr+uuidTypeLen]
		}
	}
	return atom
}
