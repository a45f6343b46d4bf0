package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STSD = Tag(0x73747364)

type SampleDesc struct {
	Version  uint8
	AVC1Desc *AVC1Desc
	HV1Desc  *HV1Desc
	MP4ADesc *MP4ADesc
	Unknowns []Atom
	childOrder
	AtomPos
}

func (s *SampleDesc) Tag() Tag {
	return STSD
}

func (s *SampleDesc) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STSD))
	n += s.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (s *SampleDesc) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], s.Version)
	n += 1
	n += 3
	if order := s.ordered(s.Children()); order != nil {
		pio.PutU32BE(b[n:], uint32(len(order)))
		n += 4
		n += marshalAtoms(order, b[n:])
		return
	}
	count := len(s.Unknowns)
	if s.AVC1Desc != nil {
		count++
	}
	if s.HV1Desc != nil {
		count++
	}
	if s.MP4ADesc != nil {
		count++
	}
	pio.PutU32BE(b[n:], uint32(count))
	n += 4
	if s.AVC1Desc != nil {
		n += s.AVC1Desc.Marshal(b[n:])
	}
	if s.HV1Desc != nil {
		n += s.HV1Desc.Marshal(b[n:])
	}
	if s.MP4ADesc != nil {
		n += s.MP4ADesc.Marshal(b[n:])
	}
	for _, atom := range s.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (s *SampleDesc) Len() (n int) {
	n += HeaderSize
	n += 8
	if order := s.ordered(s.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if s.AVC1Desc != nil {
		n += s.AVC1Desc.Len()
	}
	if s.HV1Desc != nil {
		n += s.HV1Desc.Len()
	}
	if s.MP4ADesc != nil {
		n += s.MP4ADesc.Len()
	}
	for _, atom := range s.Unknowns {
		n += atom.Len()
	}
	return
}

func (s *SampleDesc) Unmarshal(b []byte, offset int) (n int, err error) {
	(&s.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+8 {
		err = parseErr("EntryCount", n+offset, ErrTruncated)
		return
	}
	s.Version = pio.U8(b[n:])
	n += 1
	n += 3
	n += 4 // entry count
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("stsd", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case AVC1:
			atom := &AVC1Desc{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				if !degradable(err) {
					err = parseErr("avc1", offset+n, err)
					return
				}
				err = nil
				dummy := opaque(tag, b[n:n+size], offset+n)
				s.Unknowns = append(s.Unknowns, dummy)
				s.noteChild(dummy)
				break
			}
			s.AVC1Desc = atom
			s.noteChild(atom)
		case HEV1:
			atom := &HV1Desc{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				if !degradable(err) {
					err = parseErr("hev1", offset+n, err)
					return
				}
				err = nil
				dummy := opaque(tag, b[n:n+size], offset+n)
				s.Unknowns = append(s.Unknowns, dummy)
				s.noteChild(dummy)
				break
			}
			s.HV1Desc = atom
			s.noteChild(atom)
		case MP4A:
			atom := &MP4ADesc{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				if !degradable(err) {
					err = parseErr("mp4a", offset+n, err)
					return
				}
				err = nil
				dummy := opaque(tag, b[n:n+size], offset+n)
				s.Unknowns = append(s.Unknowns, dummy)
				s.noteChild(dummy)
				break
			}
			s.MP4ADesc = atom
			s.noteChild(atom)
		default:
			dummy := opaque(tag, b[n:n+size], offset+n)
			s.Unknowns = append(s.Unknowns, dummy)
			s.noteChild(dummy)
		}
		n += size
	}
	return
}

func (s *SampleDesc) Children() (r []Atom) {
	if s.AVC1Desc != nil {
		r = append(r, s.AVC1Desc)
	}
	if s.HV1Desc != nil {
		r = append(r, s.HV1Desc)
	}
	if s.MP4ADesc != nil {
		r = append(r, s.MP4ADesc)
	}
	r = append(r, s.Unknowns...)
	return
}
