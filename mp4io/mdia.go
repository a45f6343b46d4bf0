package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const MDIA = Tag(0x6d646961)

type Media struct {
	Header   *MediaHeader
	Handler  *HandlerRefer
	Info     *MediaInfo
	Unknowns []Atom
	childOrder
	AtomPos
}

func (m *Media) Tag() Tag {
	return MDIA
}

func (m *Media) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(MDIA))
	n += m.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (m *Media) marshal(b []byte) (n int) {
	if order := m.ordered(m.Children()); order != nil {
		return marshalAtoms(order, b)
	}
	if m.Header != nil {
		n += m.Header.Marshal(b[n:])
	}
	if m.Handler != nil {
		n += m.Handler.Marshal(b[n:])
	}
	if m.Info != nil {
		n += m.Info.Marshal(b[n:])
	}
	for _, atom := range m.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (m *Media) Len() (n int) {
	n += HeaderSize
	if order := m.ordered(m.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if m.Header != nil {
		n += m.Header.Len()
	}
	if m.Handler != nil {
		n += m.Handler.Len()
	}
	if m.Info != nil {
		n += m.Info.Len()
	}
	for _, atom := range m.Unknowns {
		n += atom.Len()
	}
	return
}

func (m *Media) Unmarshal(b []byte, offset int) (n int, err error) {
	(&m.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("mdia", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case MDHD:
			atom := &MediaHeader{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("mdhd", offset+n, err)
				return
			}
			m.Header = atom
			m.noteChild(atom)
		case HDLR:
			atom := &HandlerRefer{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("hdlr", offset+n, err)
				return
			}
			m.Handler = atom
			m.noteChild(atom)
		case MINF:
			atom := &MediaInfo{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("minf", offset+n, err)
				return
			}
			m.Info = atom
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

func (m *Media) Children() (r []Atom) {
	if m.Header != nil {
		r = append(r, m.Header)
	}
	if m.Handler != nil {
		r = append(r, m.Handler)
	}
	if m.Info != nil {
		r = append(r, m.Info)
	}
	r = append(r, m.Unknowns...)
	return
}
