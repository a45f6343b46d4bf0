package mp4io

import "github.com/ugparu/gomp4/utils/bits/pio"

const (
	FTYP          = Tag(0x66747970)
	baseFtypSize  = 16
	bytesPerBrand = 4
)

// NewFileType returns an ftyp with the brands the writer emits by default.
func NewFileType() *FileType {
	return &FileType{
		MajorBrand:   pio.U32BE([]byte("isom")),
		MinorVersion: 0x200,
		CompatibleBrands: []uint32{
			pio.U32BE([]byte("isom")),
			pio.U32BE([]byte("iso2")),
			pio.U32BE([]byte("avc1")),
			pio.U32BE([]byte("mp41")),
		},
	}
}

type FileType struct {
	MajorBrand       uint32
	MinorVersion     uint32
	CompatibleBrands []uint32
	AtomPos
}

func (*FileType) Tag() Tag {
	return FTYP
}

func (f *FileType) Marshal(b []byte) (n int) {
	l := f.Len()
	pio.PutU32BE(b, uint32(l))
	pio.PutU32BE(b[4:], uint32(FTYP))
	pio.PutU32BE(b[8:], f.MajorBrand)
	pio.PutU32BE(b[12:], f.MinorVersion)
	for i, v := range f.CompatibleBrands {
		pio.PutU32BE(b[baseFtypSize+bytesPerBrand*i:], v)
	}
	return l
}

func (f *FileType) Len() int {
	return baseFtypSize + bytesPerBrand*len(f.CompatibleBrands)
}

func (f *FileType) Unmarshal(b []byte, offset int) (n int, err error) {
	f.AtomPos.setPos(offset, len(b))
	n = HeaderSize
	if len(b) < n+8 {
		err = parseErr("MajorBrand", offset+n, ErrTruncated)
		return
	}
	f.MajorBrand = pio.U32BE(b[n:])
	n += 4
	f.MinorVersion = pio.U32BE(b[n:])
	n += 4
	for n+bytesPerBrand <= len(b) {
		f.CompatibleBrands = append(f.CompatibleBrands, pio.U32BE(b[n:]))
		n += bytesPerBrand
	}
	return
}

func (*FileType) Children() []Atom {
	return nil
}
