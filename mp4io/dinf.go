package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	DINF = Tag(0x64696e66)
	DREF = Tag(0x64726566)
	URL  = Tag(0x75726c20)
)

type DataInfo struct {
	Refer    *DataRefer
	Unknowns []Atom
	childOrder
	AtomPos
}

func (d *DataInfo) Tag() Tag {
	return DINF
}

func (d *DataInfo) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(DINF))
	n += d.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (d *DataInfo) marshal(b []byte) (n int) {
	if order := d.ordered(d.Children()); order != nil {
		return marshalAtoms(order, b)
	}
	if d.Refer != nil {
		n += d.Refer.Marshal(b[n:])
	}
	for _, atom := range d.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (d *DataInfo) Len() (n int) {
	n += HeaderSize
	if order := d.ordered(d.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if d.Refer != nil {
		n += d.Refer.Len()
	}
	for _, atom := range d.Unknowns {
		n += atom.Len()
	}
	return
}

func (d *DataInfo) Unmarshal(b []byte, offset int) (n int, err error) {
	(&d.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("dinf", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case DREF:
			atom := &DataRefer{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("dref", offset+n, err)
				return
			}
			d.Refer = atom
			d.noteChild(atom)
		default:
			dummy := opaque(tag, b[n:n+size], offset+n)
			d.Unknowns = append(d.Unknowns, dummy)
			d.noteChild(dummy)
		}
		n += size
	}
	return
}

func (d *DataInfo) Children() (r []Atom) {
	if d.Refer != nil {
		r = append(r, d.Refer)
	}
	r = append(r, d.Unknowns...)
	return
}

type DataRefer struct {
	Version  uint8
	Flags    uint32
	Url      *DataReferUrl
	Unknowns []Atom
	childOrder
	AtomPos
}

func (d *DataRefer) Tag() Tag {
	return DREF
}

func (d *DataRefer) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(DREF))
	n += d.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (d *DataRefer) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], d.Version)
	n += 1
	pio.PutU24BE(b[n:], d.Flags)
	n += 3
	if order := d.ordered(d.Children()); order != nil {
		pio.PutU32BE(b[n:], uint32(len(order)))
		n += 4
		n += marshalAtoms(order, b[n:])
		return
	}
	count := len(d.Unknowns)
	if d.Url != nil {
		count++
	}
	pio.PutU32BE(b[n:], uint32(count))
	n += 4
	if d.Url != nil {
		n += d.Url.Marshal(b[n:])
	}
	for _, atom := range d.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (d *DataRefer) Len() (n int) {
	n += HeaderSize
	n += 8
	if order := d.ordered(d.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if d.Url != nil {
		n += d.Url.Len()
	}
	for _, atom := range d.Unknowns {
		n += atom.Len()
	}
	return
}

func (d *DataRefer) Unmarshal(b []byte, offset int) (n int, err error) {
	(&d.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+8 {
		err = parseErr("EntryCount", n+offset, ErrTruncated)
		return
	}
	d.Version = pio.U8(b[n:])
	n += 1
	d.Flags = pio.U24BE(b[n:])
	n += 3
	n += 4 // entry count
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("dref", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		if tag == URL {
			atom := &DataReferUrl{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("url ", offset+n, err)
				return
			}
			d.Url = atom
			d.noteChild(atom)
		} else {
			dummy := opaque(tag, b[n:n+size], offset+n)
			d.Unknowns = append(d.Unknowns, dummy)
			d.noteChild(dummy)
		}
		n += size
	}
	return
}

func (d *DataRefer) Children() (r []Atom) {
	if d.Url != nil {
		r = append(r, d.Url)
	}
	r = append(r, d.Unknowns...)
	return
}

type DataReferUrl struct {
	Version uint8
	Flags   uint32
	AtomPos
}

func (u *DataReferUrl) Tag() Tag {
	return URL
}

func (u *DataReferUrl) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(URL))
	n += u.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (u *DataReferUrl) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], u.Version)
	n += 1
	pio.PutU24BE(b[n:], u.Flags)
	n += 3
	return
}

func (u *DataReferUrl) Len() (n int) {
	n += HeaderSize
	n += 4
	return
}

func (u *DataReferUrl) Unmarshal(b []byte, offset int) (n int, err error) {
	(&u.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+4 {
		err = parseErr("Flags", n+offset, ErrTruncated)
		return
	}
	u.Version = pio.U8(b[n:])
	n += 1
	u.Flags = pio.U24BE(b[n:])
	n += 3
	return
}

func (u *DataReferUrl) Children() []Atom {
	return nil
}
