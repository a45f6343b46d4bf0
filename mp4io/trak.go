package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const TRAK = Tag(0x7472616b)

type Track struct {
	Header   *TrackHeader
	Edit     *Edit
	Media    *Media
	Unknowns []Atom
	childOrder
	AtomPos
}

func (t *Track) Tag() Tag {
	return TRAK
}

func (t *Track) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(TRAK))
	n += t.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (t *Track) marshal(b []byte) (n int) {
	if order := t.ordered(t.Children()); order != nil {
		return marshalAtoms(order, b)
	}
	if t.Header != nil {
		n += t.Header.Marshal(b[n:])
	}
	if t.Edit != nil {
		n += t.Edit.Marshal(b[n:])
	}
	if t.Media != nil {
		n += t.Media.Marshal(b[n:])
	}
	for _, atom := range t.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (t *Track) Len() (n int) {
	n += HeaderSize
	if order := t.ordered(t.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if t.Header != nil {
		n += t.Header.Len()
	}
	if t.Edit != nil {
		n += t.Edit.Len()
	}
	if t.Media != nil {
		n += t.Media.Len()
	}
	for _, atom := range t.Unknowns {
		n += atom.Len()
	}
	return
}

func (t *Track) Unmarshal(b []byte, offset int) (n int, err error) {
	(&t.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("trak", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case TKHD:
			atom := &TrackHeader{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("tkhd", offset+n, err)
				return
			}
			t.Header = atom
			t.noteChild(atom)
		case EDTS:
			atom := &Edit{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				if !degradable(err) {
					err = parseErr("edts", offset+n, err)
					return
				}
				err = nil
				dummy := opaque(tag, b[n:n+size], offset+n)
				t.Unknowns = append(t.Unknowns, dummy)
				t.noteChild(dummy)
				break
			}
			t.Edit = atom
			t.noteChild(atom)
		case MDIA:
			atom := &Media{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("mdia", offset+n, err)
				return
			}
			t.Media = atom
			t.noteChild(atom)
		default:
			dummy := opaque(tag, b[n:n+size], offset+n)
			t.Unknowns = append(t.Unknowns, dummy)
			t.noteChild(dummy)
		}
		n += size
	}
	return
}

func (t *Track) Children() (r []Atom) {
	if t.Header != nil {
		r = append(r, t.Header)
	}
	if t.Edit != nil {
		r = append(r, t.Edit)
	}
	if t.Media != nil {
		r = append(r, t.Media)
	}
	r = append(r, t.Unknowns...)
	return
}

// GetAVC1Conf returns the avcC configuration record, if any.
func (t *Track) GetAVC1Conf() (conf *AVC1Conf) {
	atom := FindChildren(t, AVCC)
	conf, _ = atom.(*AVC1Conf)
	return
}

// GetHV1Conf returns the hvcC configuration record, if any.
func (t *Track) GetHV1Conf() (conf *HV1Conf) {
	atom := FindChildren(t, HVCC)
	conf, _ = atom.(*HV1Conf)
	return
}

// GetElemStreamDesc returns the esds descriptor, if any.
func (t *Track) GetElemStreamDesc() (esds *ElemStreamDesc) {
	atom := FindChildren(t, ESDS)
	esds, _ = atom.(*ElemStreamDesc)
	return
}
