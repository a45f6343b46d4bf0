package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	AVC1 = Tag(0x61766331)
	AVCC = Tag(0x61766343)
)

type AVC1Desc struct {
	DataRefIdx           int16
	Version              int16
	Revision             int16
	Vendor               int32
	TemporalQuality      int32
	SpatialQuality       int32
	Width                int16
	Height               int16
	HorizontalResolution float64
	VerticalResolution   float64
	FrameCount           int16
	CompressorName       [32]byte
	Depth                int16
	ColorTableId         int16
	Conf                 *AVC1Conf
	Unknowns             []Atom
	childOrder
	AtomPos
}

func (a *AVC1Desc) Tag() Tag {
	return AVC1
}

func (a *AVC1Desc) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(AVC1))
	n += a.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (a *AVC1Desc) marshal(b []byte) (n int) {
	n += 6
	pio.PutI16BE(b[n:], a.DataRefIdx)
	n += 2
	pio.PutI16BE(b[n:], a.Version)
	n += 2
	pio.PutI16BE(b[n:], a.Revision)
	n += 2
	pio.PutI32BE(b[n:], a.Vendor)
	n += 4
	pio.PutI32BE(b[n:], a.TemporalQuality)
	n += 4
	pio.PutI32BE(b[n:], a.SpatialQuality)
	n += 4
	pio.PutI16BE(b[n:], a.Width)
	n += 2
	pio.PutI16BE(b[n:], a.Height)
	n += 2
	PutFixed32(b[n:], a.HorizontalResolution)
	n += 4
	PutFixed32(b[n:], a.VerticalResolution)
	n += 4
	n += 4
	pio.PutI16BE(b[n:], a.FrameCount)
	n += 2
	copy(b[n:], a.CompressorName[:])
	n += len(a.CompressorName)
	pio.PutI16BE(b[n:], a.Depth)
	n += 2
	pio.PutI16BE(b[n:], a.ColorTableId)
	n += 2
	if order := a.ordered(a.Children()); order != nil {
		n += marshalAtoms(order, b[n:])
		return
	}
	if a.Conf != nil {
		n += a.Conf.Marshal(b[n:])
	}
	for _, atom := range a.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (a *AVC1Desc) Len() (n int) {
	n += HeaderSize
	n += 78
	if order := a.ordered(a.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if a.Conf != nil {
		n += a.Conf.Len()
	}
	for _, atom := range a.Unknowns {
		n += atom.Len()
	}
	return
}

func (a *AVC1Desc) Unmarshal(b []byte, offset int) (n int, err error) {
	(&a.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+78 {
		err = parseErr("SampleEntry", n+offset, ErrTruncated)
		return
	}
	n += 6
	a.DataRefIdx = pio.I16BE(b[n:])
	n += 2
	a.Version = pio.I16BE(b[n:])
	n += 2
	a.Revision = pio.I16BE(b[n:])
	n += 2
	a.Vendor = pio.I32BE(b[n:])
	n += 4
	a.TemporalQuality = pio.I32BE(b[n:])
	n += 4
	a.SpatialQuality = pio.I32BE(b[n:])
	n += 4
	a.Width = pio.I16BE(b[n:])
	n += 2
	a.Height = pio.I16BE(b[n:])
	n += 2
	a.HorizontalResolution = GetFixed32(b[n:])
	n += 4
	a.VerticalResolution = GetFixed32(b[n:])
	n += 4
	n += 4
	a.FrameCount = pio.I16BE(b[n:])
	n += 2
	copy(a.CompressorName[:], b[n:])
	n += len(a.CompressorName)
	a.Depth = pio.I16BE(b[n:])
	n += 2
	a.ColorTableId = pio.I16BE(b[n:])
	n += 2
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("avc1", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case AVCC:
			atom := &AVC1Conf{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("avcC", offset+n, err)
				return
			}
			a.Conf = atom
			a.noteChild(atom)
		default:
			dummy := opaque(tag, b[n:n+size], offset+n)
			a.Unknowns = append(a.Unknowns, dummy)
			a.noteChild(dummy)
		}
		n += size
	}
	return
}

func (a *AVC1Desc) Children() (r []Atom) {
	if a.Conf != nil {
		r = append(r, a.Conf)
	}
	r = append(r, a.Unknowns...)
	return
}

// AVC1Conf carries the decoder configuration record verbatim.
type AVC1Conf struct {
	Data []byte
	AtomPos
}

func (a *AVC1Conf) Tag() Tag {
	return AVCC
}

func (a *AVC1Conf) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(AVCC))
	n += a.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (a *AVC1Conf) marshal(b []byte) (n int) {
	copy(b[n:], a.Data)
	n += len(a.Data)
	return
}

func (a *AVC1Conf) Len() (n int) {
	n += HeaderSize
	n += len(a.Data)
	return
}

func (a *AVC1Conf) Unmarshal(b []byte, offset int) (n int, err error) {
	(&a.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	a.Data = b[n:]
	n += len(b[n:])
	return
}

func (a *AVC1Conf) Children() []Atom {
	return nil
}
