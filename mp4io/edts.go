package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	EDTS = Tag(0x65647473)
	ELST = Tag(0x656c7374)
)

type Edit struct {
	List     *EditList
	Unknowns []Atom
	childOrder
	AtomPos
}

func (e *Edit) Tag() Tag {
	return EDTS
}

func (e *Edit) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(EDTS))
	n += e.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (e *Edit) marshal(b []byte) (n int) {
	if order := e.ordered(e.Children()); order != nil {
		return marshalAtoms(order, b)
	}
	if e.List != nil {
		n += e.List.Marshal(b[n:])
	}
	for _, atom := range e.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (e *Edit) Len() (n int) {
	n += HeaderSize
	if order := e.ordered(e.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if e.List != nil {
		n += e.List.Len()
	}
	for _, atom := range e.Unknowns {
		n += atom.Len()
	}
	return
}

func (e *Edit) Unmarshal(b []byte, offset int) (n int, err error) {
	(&e.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("edts", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case ELST:
			atom := &EditList{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("elst", offset+n, err)
				return
			}
			e.List = atom
			e.noteChild(atom)
		default:
			dummy := opaque(tag, b[n:n+size], offset+n)
			e.Unknowns = append(e.Unknowns, dummy)
			e.noteChild(dummy)
		}
		n += size
	}
	return
}

func (e *Edit) Children() (r []Atom) {
	if e.List != nil {
		r = append(r, e.List)
	}
	r = append(r, e.Unknowns...)
	return
}

type EditListEntry struct {
	SegmentDuration   uint64
	MediaTime         int64
	MediaRateInteger  int16
	MediaRateFraction int16
}

type EditList struct {
	Version uint8
	Flags   uint32
	Entries []EditListEntry
	AtomPos
}

func (e *EditList) Tag() Tag {
	return ELST
}

func (e *EditList) entryLen() int {
	if e.Version == 1 {
		return 20
	}
	return 12
}

func (e *EditList) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(ELST))
	n += e.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (e *EditList) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], e.Version)
	n += 1
	pio.PutU24BE(b[n:], e.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(e.Entries)))
	n += 4
	for _, entry := range e.Entries {
		if e.Version == 1 {
			pio.PutU64BE(b[n:], entry.SegmentDuration)
			n += 8
			pio.PutI64BE(b[n:], entry.MediaTime)
			n += 8
		} else {
			pio.PutU32BE(b[n:], uint32(entry.SegmentDuration))
			n += 4
			pio.PutI32BE(b[n:], int32(entry.MediaTime))
			n += 4
		}
		pio.PutI16BE(b[n:], entry.MediaRateInteger)
		n += 2
		pio.PutI16BE(b[n:], entry.MediaRateFraction)
		n += 2
	}
	return
}

func (e *EditList) Len() (n int) {
	n += HeaderSize
	n += 4 + 4
	n += e.entryLen() * len(e.Entries)
	return
}

func (e *EditList) Unmarshal(b []byte, offset int) (n int, err error) {
	(&e.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+8 {
		err = parseErr("EntryCount", n+offset, ErrTruncated)
		return
	}
	e.Version = pio.U8(b[n:])
	n += 1
	e.Flags = pio.U24BE(b[n:])
	n += 3
	count := int(pio.U32BE(b[n:]))
	n += 4
	if len(b) < n+e.entryLen()*count {
		err = parseErr("EditListEntry", n+offset, ErrTruncated)
		return
	}
	e.Entries = make([]EditListEntry, count)
	for i := range e.Entries {
		if e.Version == 1 {
			e.Entries[i].SegmentDuration = pio.U64BE(b[n:])
			n += 8
			e.Entries[i].MediaTime = pio.I64BE(b[n:])
			n += 8
		} else {
			e.Entries[i].SegmentDuration = uint64(pio.U32BE(b[n:]))
			n += 4
			e.Entries[i].MediaTime = int64(pio.I32BE(b[n:]))
			n += 4
		}
		e.Entries[i].MediaRateInteger = pio.I16BE(b[n:])
		n += 2
		e.Entries[i].MediaRateFraction = pio.I16BE(b[n:])
		n += 2
	}
	return
}

func (e *EditList) Children() []Atom {
	return nil
}
