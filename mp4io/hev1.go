package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	HEV1 = Tag(0x68657631)
	HVCC = Tag(0x68766343)
)

type HV1Desc struct {
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
	Conf                 *HV1Conf
	Unknowns             []Atom
	childOrder
	AtomPos
}

func (h *HV1Desc) Tag() Tag {
	return HEV1
}

func (h *HV1Desc) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(HEV1))
	n += h.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (h *HV1Desc) marshal(b []byte) (n int) {
	n += 6
	pio.PutI16BE(b[n:], h.DataRefIdx)
	n += 2
	pio.PutI16BE(b[n:], h.Version)
	n += 2
	pio.PutI16BE(b[n:], h.Revision)
	n += 2
	pio.PutI32BE(b[n:], h.Vendor)
	n += 4
	pio.PutI32BE(b[n:], h.TemporalQuality)
	n += 4
	pio.PutI32BE(b[n:], h.SpatialQuality)
	n += 4
	pio.PutI16BE(b[n:], h.Width)
	n += 2
	pio.PutI16BE(b[n:], h.Height)
	n += 2
	PutFixed32(b[n:], h.HorizontalResolution)
	n += 4
	PutFixed32(b[n:], h.VerticalResolution)
	n += 4
	n += 4
	pio.PutI16BE(b[n:], h.FrameCount)
	n += 2
	copy(b[n:], h.CompressorName[:])
	n += len(h.CompressorName)
	pio.PutI16BE(b[n:], h.Depth)
	n += 2
	pio.PutI16BE(b[n:], h.ColorTableId)
	n += 2
	if order := h.ordered(h.Children()); order != nil {
		n += marshalAtoms(order, b[n:])
		return
	}
	if h.Conf != nil {
		n += h.Conf.Marshal(b[n:])
	}
	for _, atom := range h.Unknowns {
		n += atom.Marshal(b[n:])
	}
	return
}

func (h *HV1Desc) Len() (n int) {
	n += HeaderSize
	n += 78
	if order := h.ordered(h.Children()); order != nil {
		return n + lenAtoms(order)
	}
	if h.Conf != nil {
		n += h.Conf.Len()
	}
	for _, atom := range h.Unknowns {
		n += atom.Len()
	}
	return
}

func (h *HV1Desc) Unmarshal(b []byte, offset int) (n int, err error) {
	(&h.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	if len(b) < n+78 {
		err = parseErr("SampleEntry", n+offset, ErrTruncated)
		return
	}
	n += 6
	h.DataRefIdx = pio.I16BE(b[n:])
	n += 2
	h.Version = pio.I16BE(b[n:])
	n += 2
	h.Revision = pio.I16BE(b[n:])
	n += 2
	h.Vendor = pio.I32BE(b[n:])
	n += 4
	h.TemporalQuality = pio.I32BE(b[n:])
	n += 4
	h.SpatialQuality = pio.I32BE(b[n:])
	n += 4
	h.Width = pio.I16BE(b[n:])
	n += 2
	h.Height = pio.I16BE(b[n:])
	n += 2
	h.HorizontalResolution = GetFixed32(b[n:])
	n += 4
	h.VerticalResolution = GetFixed32(b[n:])
	n += 4
	n += 4
	h.FrameCount = pio.I16BE(b[n:])
	n += 2
	copy(h.CompressorName[:], b[n:])
	n += len(h.CompressorName)
	h.Depth = pio.I16BE(b[n:])
	n += 2
	h.ColorTableId = pio.I16BE(b[n:])
	n += 2
	for n < len(b) {
		tag, size, hdr, herr := parseHeader(b[n:], offset+n)
		if herr != nil {
			err = parseErr("hev1", offset+n, herr)
			return
		}
		scope, off := childScope(b, n, size, hdr)
		switch tag {
		case HVCC:
			atom := &HV1Conf{}
			if _, err = atom.Unmarshal(scope, offset+off); err != nil {
				err = parseErr("hvcC", offset+n, err)
				return
			}
			h.Conf = atom
			h.noteChild(atom)
		default:
			dummy := opaque(tag, b[n:n+size], offset+n)
			h.Unknowns = append(h.Unknowns, dummy)
			h.noteChild(dummy)
		}
		n += size
	}
	return
}

func (h *HV1Desc) Children() (r []Atom) {
	if h.Conf != nil {
		r = append(r, h.Conf)
	}
	r = append(r, h.Unknowns...)
	return
}

type HV1Conf struct {
	Data []byte
	AtomPos
}

func (h *HV1Conf) Tag() Tag {
	return HVCC
}

func (h *HV1Conf) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(HVCC))
	n += h.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (h *HV1Conf) marshal(b []byte) (n int) {
	copy(b[n:], h.Data)
	n += len(h.Data)
	return
}

func (h *HV1Conf) Len() (n int) {
	n += HeaderSize
	n += len(h.Data)
	return
}

func (h *HV1Conf) Unmarshal(b []byte, offset int) (n int, err error) {
	(&h.AtomPos).setPos(offset, len(b))
	n += HeaderSize
	h.Data = b[n:]
	n += len(b[n:])
	return
}

func (h *HV1Conf) Children() []Atom {
	return nil
}
