package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const STBL = Tag(0x7374626c)

type SampleTable struct {
	SampleDesc        *SampleDesc
	TimeToSample      *TimeToSample
	CompositionOffset *CompositionOffset
	SampleToChunk     *SampleToChunk
	SyncSample        *SyncSample
	ChunkOffset       *ChunkOffset
	ChunkOffset64     *ChunkOffset64
	SampleSize        *SampleSize
	CompactSampleSize *CompactSampleSize
	Unknowns          []Atom
	childOrder
	AtomPos
}

func (s *SampleTable) Tag() Tag {
	return STBL
}

func (s *SampleTable) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STBL))
	n += s.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (s *SampleTable) marshal(b []byte) (n int) {
	if order := s.ordered(s.Children()); order != nil {
		return marshalAtoms(order, b)
	}
	if s.SampleDesc != nil {
		n += s.SampleDesc.Marshal(b[n:])
	}
	if s.TimeToSample != nil {
		n += s.TimeToSample.Marshal(b[n:])
	}
	if s.CompositionOffset != nil {
		n += s.CompositionOffset.Marshal(b[n:])
	}
	if s.SampleToChunk != nil {
		n += s.SampleToChunk.Marshal(b[n:])
	}
	if s.SyncSample != nil {
		n += s.SyncSample.Marshal(b[n:])
	}
	if s.SampleSize != nil {
		n += s.SampleSize.Marshal(b[n:])
	}
	if s.CompactSampleSize != nil {
		n += s.CompactSampleSize.Marshal(b[n:])
	}
	if s.ChunkOffset != nil {
		n += s.ChunkOffset.Marshal(b[n:])
	}
	if s.ChunkOffset64 != nil {
		n += s.ChunkOffset64.Marshal(b[n:])
	}
	for _, atom := range s.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (s *SampleTable) Len() (n int) {
	n += HeaderSize
	if order := s.ordered(s.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if s.SampleDesc != nil {
		n += s.SampleDesc.Len()
	}
	if s.TimeToSample != nil {
		n += s.TimeToSample.Len()
	}
	if s.CompositionOffset != nil {
		n += s.CompositionOffset.Len()
	}
	if s.SampleToChunk != nil {
		n += s.SampleToChunk.Len()
	}
	if s.SyncSample != nil {
		n += s.SyncSample.Len()
	}
	if s.SampleSize != nil {
		n += s.SampleSize.Len()
	}
	if s.CompactSampleSize != nil {
		n += s.CompactSampleSize.Len()
	}
	if s.ChunkOffset != nil {
		n += s.ChunkOffset.Len()
	}
	if s.ChunkOffset64 != nil {
		n += s.ChunkOffset64.Len()
	}
	for _, atom := range s.Unknowns {
		n += atom.Len()
	}
	return
}

func (s *SampleTable) Unmarshal(b []byte, offset int) (n int, err error) {
	(&s.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("stbl", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case STSD:
			atom := &SampleDesc{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stsd", offset+n, err)
				return
			}
			s.SampleDesc = atom
			s.noteChild(atom)
		case STTS:
			atom := &TimeToSample{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stts", offset+n, err)
				return
			}
			s.TimeToSample = atom
			s.noteChild(atom)
		case CTTS:
			atom := &CompositionOffset{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("ctts", offset+n, err)
				return
			}
			s.CompositionOffset = atom
			s.noteChild(atom)
		case STSC:
			atom := &SampleToChunk{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stsc", offset+n, err)
				return
			}
			s.SampleToChunk = atom
			s.noteChild(atom)
		case STSS:
			atom := &SyncSample{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stss", offset+n, err)
				return
			}
			s.SyncSample = atom
			s.noteChild(atom)
		case STSZ:
			atom := &SampleSize{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stsz", offset+n, err)
				return
			}
			s.SampleSize = atom
			s.noteChild(atom)
		case STZ2:
			atom := &CompactSampleSize{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stz2", offset+n, err)
				return
			}
			s.CompactSampleSize = atom
			s.noteChild(atom)
		case STCO:
			atom := &ChunkOffset{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("stco", offset+n, err)
				return
			}
			s.ChunkOffset = atom
			s.noteChild(atom)
		case CO64:
			atom := &ChunkOffset64{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("co64", offset+n, err)
				return
			}
			s.ChunkOffset64 = atom
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

func (s *SampleTable) Children() (r []Atom) {
	if s.SampleDesc != nil {
		r = append(r, s.SampleDesc)
	}
	if s.TimeToSample != nil {
		r = append(r, s.TimeToSample)
	}
	if s.CompositionOffset != nil {
		r = append(r, s.CompositionOffset)
	}
	if s.SampleToChunk != nil {
		r = append(r, s.SampleToChunk)
	}
	if s.SyncSample != nil {
		r = append(r, s.SyncSample)
	}
	if s.SampleSize != nil {
		r = append(r, s.SampleSize)
	}
	if s.CompactSampleSize != nil {
		r = append(r, s.CompactSampleSize)
	}
	if s.ChunkOffset != nil {
		r = append(r, s.ChunkOffset)
	}
	if s.ChunkOffset64 != nil {
		r = append(r, s.ChunkOffset64)
	}
	r = append(r, s.Unknowns...)
	return
}
