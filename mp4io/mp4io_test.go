package mp4io

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4/utils/bits/pio"
)

func box(tag string, payload ...byte) []byte {
	b := make([]byte, 8+len(payload))
	pio.PutU32BE(b, uint32(len(b)))
	copy(b[4:], tag)
	copy(b[8:], payload)
	return b
}

func largeBox(tag string, payload ...byte) []byte {
	b := make([]byte, 16+len(payload))
	pio.PutU32BE(b, 1)
	copy(b[4:], tag)
	pio.PutU64BE(b[8:], uint64(len(b)))
	copy(b[16:], payload)
	return b
}

func container(tag string, children ...[]byte) []byte {
	var payload []byte
	for _, c := range children {
		payload = append(payload, c...)
	}
	return box(tag, payload...)
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	t.Run("compact", func(t *testing.T) {
		t.Parallel()
		b := box("free", 1, 2, 3)
		tag, size, hdr, err := parseHeader(b, 0)
		require.NoError(t, err)
		require.Equal(t, StringToTag("free"), tag)
		require.Equal(t, 11, size)
		require.Equal(t, HeaderSize, hdr)
	})

	t.Run("large", func(t *testing.T) {
		t.Parallel()
		b := largeBox("mdat", 9, 9)
		tag, size, hdr, err := parseHeader(b, 0)
		require.NoError(t, err)
		require.Equal(t, MDAT, tag)
		require.Equal(t, 18, size)
		require.Equal(t, LargeHeaderSize, hdr)
	})

	t.Run("zero_extends_to_scope_end", func(t *testing.T) {
		t.Parallel()
		b := box("mdat", 1, 2, 3, 4)
		pio.PutU32BE(b, 0)
		_, size, hdr, err := parseHeader(b, 0)
		require.NoError(t, err)
		require.Equal(t, len(b), size)
		require.Equal(t, HeaderSize, hdr)
	})

	t.Run("short_header", func(t *testing.T) {
		t.Parallel()
		_, _, _, err := parseHeader([]byte{0, 0, 0, 9}, 0)
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("short_largesize", func(t *testing.T) {
		t.Parallel()
		b := box("mdat")
		pio.PutU32BE(b, 1)
		_, _, _, err := parseHeader(b, 0)
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("size_below_header", func(t *testing.T) {
		t.Parallel()
		b := box("free")
		pio.PutU32BE(b, 4)
		_, _, _, err := parseHeader(b, 0)
		require.ErrorIs(t, err, ErrOverrun)
	})

	t.Run("size_beyond_scope", func(t *testing.T) {
		t.Parallel()
		b := box("free", 1, 2, 3)
		pio.PutU32BE(b, 20)
		_, _, _, err := parseHeader(b, 0)
		require.ErrorIs(t, err, ErrOverrun)
	})

	t.Run("uuid_needs_ext_type", func(t *testing.T) {
		t.Parallel()
		b := box("uuid", 1, 2, 3)
		_, _, _, err := parseHeader(b, 0)
		require.ErrorIs(t, err, ErrTruncated)
	})
}

func TestChildOverrunFailsContainer(t *testing.T) {
	t.Parallel()

	// A child declaring 20 bytes where only 15 remain must fail the
	// whole parse, not degrade.
	child := make([]byte, 15)
	pio.PutU32BE(child, 20)
	copy(child[4:], "free")
	b := container("moov", child)

	var moov Movie
	_, err := moov.Unmarshal(b, 0)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrOverrun)
	require.Nil(t, moov.Tracks)
	require.Nil(t, moov.Unknowns)
}

func TestUnknownBoxPreserved(t *testing.T) {
	t.Parallel()

	raw := box("wide", 0xde, 0xad)
	b := container("moov", raw)

	var moov Movie
	_, err := moov.Unmarshal(b, 0)
	require.NoError(t, err)
	require.Len(t, moov.Unknowns, 1)
	require.Equal(t, StringToTag("wide"), moov.Unknowns[0].Tag())

	out := make([]byte, moov.Len())
	n := moov.Marshal(out)
	require.Equal(t, b, out[:n])
}

func TestUnknownBoxKeepsSiblingPosition(t *testing.T) {
	t.Parallel()

	// Unknown children re-marshal where they stood, not after the
	// modeled ones.
	mvhd := NewMovieHeader()
	hdr := make([]byte, mvhd.Len())
	mvhd.Marshal(hdr)
	b := container("moov", box("udta", 1, 2, 3), hdr, box("wide"))

	var moov Movie
	_, err := moov.Unmarshal(b, 0)
	require.NoError(t, err)
	require.NotNil(t, moov.Header)
	require.Len(t, moov.Unknowns, 2)

	out := make([]byte, moov.Len())
	n := moov.Marshal(out)
	require.Equal(t, b, out[:n])
}

func TestSampleEntryOrderPreserved(t *testing.T) {
	t.Parallel()

	// An unrecognized sample entry ahead of mp4a keeps its slot and the
	// written entry count covers both.
	entry := make([]byte, 28)
	b := box("stsd", append([]byte{0, 0, 0, 0, 0, 0, 0, 2},
		append(box("smpl", 7, 7), box("mp4a", entry...)...)...)...)

	var stsd SampleDesc
	_, err := stsd.Unmarshal(b, 0)
	require.NoError(t, err)
	require.NotNil(t, stsd.MP4ADesc)
	require.Len(t, stsd.Unknowns, 1)

	out := make([]byte, stsd.Len())
	n := stsd.Marshal(out)
	require.Equal(t, b, out[:n])
}

func TestUUIDChildCarriesExtType(t *testing.T) {
	t.Parallel()

	ext := []byte("0123456789abcdef")
	raw := box("uuid", append(append([]byte{}, ext...), 0xff)...)
	b := container("moov", raw)

	var moov Movie
	_, err := moov.Unmarshal(b, 0)
	require.NoError(t, err)
	require.Len(t, moov.Unknowns, 1)
	dummy, ok := moov.Unknowns[0].(*Dummy)
	require.True(t, ok)
	require.Equal(t, ext, dummy.ExtType)

	out := make([]byte, moov.Len())
	n := moov.Marshal(out)
	require.Equal(t, b, out[:n])
}

func TestLargeHeaderChildParses(t *testing.T) {
	t.Parallel()

	// An mvhd marshaled compact, then re-wrapped with a 64-bit header.
	hdr := NewMovieHeader()
	hdr.TimeScale = 600
	hdr.Duration = 4242
	compact := make([]byte, hdr.Len())
	hdr.Marshal(compact)
	large := largeBox("mvhd", compact[8:]...)
	b := container("moov", large)

	var moov Movie
	_, err := moov.Unmarshal(b, 0)
	require.NoError(t, err)
	require.NotNil(t, moov.Header)
	require.Equal(t, uint32(600), moov.Header.TimeScale)
	require.Equal(t, uint64(4242), moov.Header.Duration)
}

func TestBrokenTrakDegradesToOpaque(t *testing.T) {
	t.Parallel()

	// A trak whose stz2 declares an unsupported field width degrades to
	// opaque preservation; the surrounding moov still parses and the
	// raw bytes survive re-marshal.
	badStz2 := box("stz2", 0, 0, 0, 0, 0, 0, 0, 9, 0, 0, 0, 0)
	trak := container("trak", container("mdia", container("minf", container("stbl", badStz2))))
	b := container("moov", trak)

	var moov Movie
	_, err := moov.Unmarshal(b, 0)
	require.NoError(t, err)
	require.Empty(t, moov.Tracks)
	require.Len(t, moov.Unknowns, 1)

	out := make([]byte, moov.Len())
	n := moov.Marshal(out)
	require.Equal(t, b, out[:n])
}

func TestTruncatedLeafFailsParse(t *testing.T) {
	t.Parallel()

	// Truncation inside a modeled leaf never degrades.
	badTkhd := box("tkhd", 0, 0, 0, 1)
	trak := container("trak", badTkhd)
	b := container("moov", trak)

	var moov Movie
	_, err := moov.Unmarshal(b, 0)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestMarshalAtomPromotion(t *testing.T) {
	t.Parallel()

	t.Run("compact_stays_compact", func(t *testing.T) {
		t.Parallel()
		atom := &Dummy{Tag_: StringToTag("free"), Data: box("free", 1)}
		b := make([]byte, atom.Len()+HeaderSize)
		n, err := MarshalAtom(atom, b)
		require.NoError(t, err)
		require.Equal(t, atom.Data, b[:n])
	})

	t.Run("oversize_promotes", func(t *testing.T) {
		t.Parallel()
		atom := &hugeAtom{size: MaxCompactSize + 100}
		b := make([]byte, 64)
		n, err := MarshalAtom(atom, b)
		require.NoError(t, err)
		require.Equal(t, int(atom.size)+HeaderSize, n)
		require.Equal(t, uint32(1), pio.U32BE(b))
		require.Equal(t, uint32(MDAT), pio.U32BE(b[4:]))
		require.Equal(t, uint64(atom.size)+HeaderSize, pio.U64BE(b[8:]))
	})

	t.Run("oversize_child_errors", func(t *testing.T) {
		t.Parallel()
		parent := &hugeAtom{size: 100, child: &hugeAtom{size: MaxCompactSize + 1}}
		_, err := MarshalAtom(parent, make([]byte, 64))
		require.ErrorIs(t, err, ErrSizeOverflow)
	})
}

// hugeAtom fakes its length so 64-bit header handling is testable
// without allocating gigabytes.
type hugeAtom struct {
	size  int64
	child Atom
	AtomPos
}

func (h *hugeAtom) Tag() Tag { return MDAT }
func (h *hugeAtom) Len() int { return int(h.size) }
func (h *hugeAtom) Marshal(b []byte) int {
	pio.PutU32BE(b, uint32(h.size))
	pio.PutU32BE(b[4:], uint32(MDAT))
	return HeaderSize
}
func (h *hugeAtom) Unmarshal(b []byte, offset int) (int, error) { return len(b), nil }
func (h *hugeAtom) Children() []Atom {
	if h.child != nil {
		return []Atom{h.child}
	}
	return nil
}

func TestFixedPoint(t *testing.T) {
	t.Parallel()

	b := make([]byte, 4)
	PutFixed32(b, 72.5)
	require.Equal(t, 72.5, GetFixed32(b))

	PutFixed16(b, 1.5)
	require.Equal(t, 1.5, GetFixed16(b))
}

func TestTagString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "moov", MOOV.String())
	require.Equal(t, MOOV, StringToTag("moov"))
	require.Equal(t, "url ", URL.String())
}
