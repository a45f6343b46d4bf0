package gomp4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4/mp4io"
)

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()

	moov := &mp4io.Movie{
		Header: mp4io.NewMovieHeader(),
		Tracks: []*mp4io.Track{videoTrack(1, variableStbl())},
	}
	// Unknown boxes at top level and inside moov must both survive.
	udta := rawBox("udta", 0x01, 0x02, 0x03)
	moovBytes := marshalAtom(t, moov)
	moovBytes = injectChild(t, moovBytes, udta)
	mdat := rawBox("mdat", 0xde, 0xad, 0xbe, 0xef)
	wide := rawBox("wide")

	var in bytes.Buffer
	in.Write(marshalAtom(t, mp4io.NewFileType()))
	in.Write(moovBytes)
	in.Write(wide)
	in.Write(mdat)
	file := in.Bytes()

	dmx := demux(t, file)

	var out bytes.Buffer
	require.NoError(t, NewMuxer(&out).WriteFile(dmx))
	require.Equal(t, file, out.Bytes())

	// The rewritten file demuxes to identical samples.
	redmx := demux(t, out.Bytes())
	require.Equal(t, dmx.MajorBrand(), redmx.MajorBrand())
	require.Len(t, redmx.Tracks(), 1)
	track, retrack := dmx.Tracks()[0], redmx.Tracks()[0]
	require.Equal(t, track.SampleCount(), retrack.SampleCount())
	for i := uint32(1); i <= track.SampleCount(); i++ {
		want, err := track.SampleInfo(i)
		require.NoError(t, err)
		got, err := retrack.SampleInfo(i)
		require.NoError(t, err)
		require.Equal(t, want, got, "sample %d", i)
	}
}

func TestWriteFileUnknownBoxBeforeSiblings(t *testing.T) {
	t.Parallel()

	moov := &mp4io.Movie{
		Header: mp4io.NewMovieHeader(),
		Tracks: []*mp4io.Track{videoTrack(1, variableStbl())},
	}
	moovBytes := marshalAtom(t, moov)

	// udta ahead of mvhd must come back ahead of mvhd.
	udta := rawBox("udta", 0xaa, 0xbb)
	grown := make([]byte, 0, len(moovBytes)+len(udta))
	grown = append(grown, moovBytes[:8]...)
	grown = append(grown, udta...)
	grown = append(grown, moovBytes[8:]...)
	grown[0] = byte(len(grown) >> 24)
	grown[1] = byte(len(grown) >> 16)
	grown[2] = byte(len(grown) >> 8)
	grown[3] = byte(len(grown))

	var in bytes.Buffer
	in.Write(marshalAtom(t, mp4io.NewFileType()))
	in.Write(grown)
	in.Write(rawBox("mdat", 0x01))
	file := in.Bytes()

	dmx := demux(t, file)

	var out bytes.Buffer
	require.NoError(t, NewMuxer(&out).WriteFile(dmx))
	require.Equal(t, file, out.Bytes())
}

// injectChild appends a raw child box to a marshaled container and
// fixes up the container size.
func injectChild(t *testing.T, parent, child []byte) []byte {
	t.Helper()
	grown := append(append([]byte{}, parent...), child...)
	require.LessOrEqual(t, int64(len(grown)), mp4io.MaxCompactSize)
	grown[0] = byte(len(grown) >> 24)
	grown[1] = byte(len(grown) >> 16)
	grown[2] = byte(len(grown) >> 8)
	grown[3] = byte(len(grown))
	return grown
}

func TestWriteFileLargeMdatCopied(t *testing.T) {
	t.Parallel()

	// A top-level box with a 64-bit header is copied verbatim,
	// header form included.
	payload := []byte{1, 2, 3, 4, 5}
	mdat := make([]byte, 16+len(payload))
	mdat[3] = 1
	copy(mdat[4:], "mdat")
	mdat[15] = byte(len(mdat))
	copy(mdat[16:], payload)

	file := buildFile(t, &mp4io.Movie{Header: mp4io.NewMovieHeader()}, mdat)
	dmx := demux(t, file)

	var out bytes.Buffer
	require.NoError(t, NewMuxer(&out).WriteFile(dmx))
	require.Equal(t, file, out.Bytes())
}
