package gomp4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4/mp4io"
	"github.com/ugparu/gomp4/utils/bits/pio"
)

func marshalAtom(t *testing.T, atom mp4io.Atom) []byte {
	t.Helper()
	b := make([]byte, atom.Len()+mp4io.HeaderSize)
	n, err := mp4io.MarshalAtom(atom, b)
	require.NoError(t, err)
	return b[:n]
}

func rawBox(tag string, payload ...byte) []byte {
	b := make([]byte, 8+len(payload))
	pio.PutU32BE(b, uint32(len(b)))
	copy(b[4:], tag)
	copy(b[8:], payload)
	return b
}

func videoTrack(id uint32, stbl *mp4io.SampleTable) *mp4io.Track {
	return &mp4io.Track{
		Header: &mp4io.TrackHeader{
			TrackID:     id,
			Duration:    10000,
			TrackWidth:  640,
			TrackHeight: 480,
		},
		Media: &mp4io.Media{
			Header: &mp4io.MediaHeader{
				TimeScale: 1000,
				Duration:  10000,
			},
			Handler: &mp4io.HandlerRefer{
				SubType: mp4io.HandlerVideo,
				Name:    []byte("VideoHandler"),
			},
			Info: &mp4io.MediaInfo{Sample: stbl},
		},
	}
}

// uniformStbl maps count samples of the given size into one chunk.
func uniformStbl(count, size, duration uint32, chunkOffset uint32) *mp4io.SampleTable {
	return &mp4io.SampleTable{
		TimeToSample: &mp4io.TimeToSample{
			Entries: []mp4io.TimeToSampleEntry{{Count: count, Duration: duration}},
		},
		SampleToChunk: &mp4io.SampleToChunk{
			Entries: []mp4io.SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: count, SampleDescId: 1}},
		},
		SampleSize:  &mp4io.SampleSize{SampleSize: size, SampleCount: count},
		ChunkOffset: &mp4io.ChunkOffset{Entries: []uint32{chunkOffset}},
	}
}

func buildFile(t *testing.T, moov *mp4io.Movie, extra ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(marshalAtom(t, mp4io.NewFileType()))
	if moov != nil {
		buf.Write(marshalAtom(t, moov))
	}
	for _, b := range extra {
		buf.Write(b)
	}
	return buf.Bytes()
}

func demux(t *testing.T, file []byte) *Demuxer {
	t.Helper()
	dmx := NewDemuxer(bytes.NewReader(file), int64(len(file)))
	require.NoError(t, dmx.Demux())
	return dmx
}

func TestDemuxEmptyMovie(t *testing.T) {
	t.Parallel()

	file := buildFile(t, &mp4io.Movie{Header: mp4io.NewMovieHeader()})
	dmx := demux(t, file)

	require.Equal(t, "isom", dmx.MajorBrand().String())
	require.Equal(t, uint32(0x200), dmx.MinorVersion())
	require.NotEmpty(t, dmx.CompatibleBrands())
	require.Empty(t, dmx.Tracks())
	require.Equal(t, uint64(0), dmx.Duration())
	require.Equal(t, int64(len(file)), dmx.Size())
}

func TestDemuxRequiredBoxes(t *testing.T) {
	t.Parallel()

	t.Run("missing_moov", func(t *testing.T) {
		t.Parallel()
		file := buildFile(t, nil)
		dmx := NewDemuxer(bytes.NewReader(file), int64(len(file)))
		err := dmx.Demux()
		var rbe RequiredBoxError
		require.ErrorAs(t, err, &rbe)
		require.Equal(t, "moov", rbe.Tag)
		require.Equal(t, 0, rbe.Count)
	})

	t.Run("missing_ftyp", func(t *testing.T) {
		t.Parallel()
		file := marshalAtom(t, &mp4io.Movie{Header: mp4io.NewMovieHeader()})
		dmx := NewDemuxer(bytes.NewReader(file), int64(len(file)))
		err := dmx.Demux()
		var rbe RequiredBoxError
		require.ErrorAs(t, err, &rbe)
		require.Equal(t, "ftyp", rbe.Tag)
	})

	t.Run("duplicate_moov", func(t *testing.T) {
		t.Parallel()
		moov := marshalAtom(t, &mp4io.Movie{Header: mp4io.NewMovieHeader()})
		file := buildFile(t, &mp4io.Movie{Header: mp4io.NewMovieHeader()}, moov)
		dmx := NewDemuxer(bytes.NewReader(file), int64(len(file)))
		err := dmx.Demux()
		var rbe RequiredBoxError
		require.ErrorAs(t, err, &rbe)
		require.Equal(t, "moov", rbe.Tag)
		require.Equal(t, 2, rbe.Count)
	})
}

func TestDemuxDuplicateTrackID(t *testing.T) {
	t.Parallel()

	moov := &mp4io.Movie{
		Header: mp4io.NewMovieHeader(),
		Tracks: []*mp4io.Track{
			videoTrack(7, uniformStbl(1, 10, 100, 64)),
			videoTrack(7, uniformStbl(1, 10, 100, 128)),
		},
	}
	file := buildFile(t, moov)
	dmx := NewDemuxer(bytes.NewReader(file), int64(len(file)))
	err := dmx.Demux()
	var dup DuplicateTrackIDError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, uint32(7), dup.ID)
}

func TestDemuxTopLevelOverrun(t *testing.T) {
	t.Parallel()

	file := buildFile(t, &mp4io.Movie{Header: mp4io.NewMovieHeader()})
	bad := rawBox("mdat", 1, 2, 3)
	pio.PutU32BE(bad, 50)
	file = append(file, bad...)

	dmx := NewDemuxer(bytes.NewReader(file), int64(len(file)))
	err := dmx.Demux()
	var ore OverrunError
	require.ErrorAs(t, err, &ore)
	require.Equal(t, "mdat", ore.Tag)
}

func TestDemuxZeroSizeBoxExtendsToEnd(t *testing.T) {
	t.Parallel()

	mdat := rawBox("mdat", 0xaa, 0xbb, 0xcc)
	pio.PutU32BE(mdat, 0)
	file := buildFile(t, &mp4io.Movie{Header: mp4io.NewMovieHeader()}, mdat)

	dmx := demux(t, file)
	tops := dmx.tops
	last := tops[len(tops)-1]
	require.Equal(t, mp4io.MDAT, last.tag)
	require.Equal(t, int64(len(mdat)), last.size)
	require.Equal(t, int64(len(file)), last.offset+last.size)
}

func TestDemuxDuration(t *testing.T) {
	t.Parallel()

	hdr := mp4io.NewMovieHeader()
	hdr.TimeScale = 600
	slow := videoTrack(1, uniformStbl(1, 10, 100, 64))
	slow.Media.Header.TimeScale = 1000
	slow.Media.Header.Duration = 10000 // 10s -> 6000 movie ticks
	fast := videoTrack(2, uniformStbl(1, 10, 100, 128))
	fast.Media.Header.TimeScale = 90000
	fast.Media.Header.Duration = 450000 // 5s -> 3000 movie ticks

	moov := &mp4io.Movie{Header: hdr, Tracks: []*mp4io.Track{slow, fast}}
	dmx := demux(t, buildFile(t, moov))

	require.Equal(t, uint32(600), dmx.Timescale())
	require.Equal(t, uint64(6000), dmx.Duration())
	require.Len(t, dmx.Tracks(), 2)
}
