package gomp4

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4/mp4io"
)

// variableStbl spreads 7 variable-size samples over chunks of 3, 3 and 1.
func variableStbl() *mp4io.SampleTable {
	return &mp4io.SampleTable{
		TimeToSample: &mp4io.TimeToSample{
			Entries: []mp4io.TimeToSampleEntry{
				{Count: 4, Duration: 100},
				{Count: 3, Duration: 50},
			},
		},
		SampleToChunk: &mp4io.SampleToChunk{
			Entries: []mp4io.SampleToChunkEntry{
				{FirstChunk: 1, SamplesPerChunk: 3, SampleDescId: 1},
				{FirstChunk: 3, SamplesPerChunk: 1, SampleDescId: 1},
			},
		},
		SampleSize: &mp4io.SampleSize{
			SampleCount: 7,
			Entries:     []uint32{10, 20, 30, 40, 50, 60, 70},
		},
		ChunkOffset: &mp4io.ChunkOffset{Entries: []uint32{1000, 5000, 9000}},
		CompositionOffset: &mp4io.CompositionOffset{
			Entries: []mp4io.CompositionOffsetEntry{
				{Count: 5, Offset: 20},
				{Count: 2, Offset: -10},
			},
		},
		SyncSample: &mp4io.SyncSample{Entries: []uint32{1, 4, 7}},
	}
}

func TestIteratorMatchesQueries(t *testing.T) {
	t.Parallel()

	moov := &mp4io.Movie{Header: mp4io.NewMovieHeader(), Tracks: []*mp4io.Track{videoTrack(1, variableStbl())}}
	dmx := demux(t, buildFile(t, moov))
	track := dmx.Tracks()[0]

	it := track.Samples()
	var got []SampleInfo
	for it.Next() {
		got = append(got, it.Sample())
	}
	require.NoError(t, it.Err())
	require.Len(t, got, 7)

	for i, sample := range got {
		want, err := track.SampleInfo(uint32(i + 1))
		require.NoError(t, err)
		require.Equal(t, want, sample, "sample %d", i+1)
	}
}

func TestIteratorSkipsEmptyChunkRuns(t *testing.T) {
	t.Parallel()

	// A run declaring zero samples per chunk maps nothing; the iterator
	// steps over its chunks the same way point queries do.
	stbl := &mp4io.SampleTable{
		TimeToSample: &mp4io.TimeToSample{
			Entries: []mp4io.TimeToSampleEntry{{Count: 8, Duration: 100}},
		},
		SampleToChunk: &mp4io.SampleToChunk{
			Entries: []mp4io.SampleToChunkEntry{
				{FirstChunk: 1, SamplesPerChunk: 4, SampleDescId: 1},
				{FirstChunk: 2, SamplesPerChunk: 0, SampleDescId: 1},
				{FirstChunk: 3, SamplesPerChunk: 4, SampleDescId: 1},
			},
		},
		SampleSize:  &mp4io.SampleSize{SampleSize: 10, SampleCount: 8},
		ChunkOffset: &mp4io.ChunkOffset{Entries: []uint32{1000, 2000, 3000}},
	}
	moov := &mp4io.Movie{Header: mp4io.NewMovieHeader(), Tracks: []*mp4io.Track{videoTrack(1, stbl)}}
	dmx := demux(t, buildFile(t, moov))
	track := dmx.Tracks()[0]

	it := track.Samples()
	for i := uint32(1); i <= 8; i++ {
		require.True(t, it.Next(), "sample %d", i)
		want, err := track.SampleInfo(i)
		require.NoError(t, err)
		require.Equal(t, want, it.Sample(), "sample %d", i)
	}
	require.False(t, it.Next())
	require.NoError(t, it.Err())

	fifth, err := track.SampleInfo(5)
	require.NoError(t, err)
	require.Equal(t, int64(3000), fifth.Offset)
}

func TestIteratorRestartable(t *testing.T) {
	t.Parallel()

	moov := &mp4io.Movie{Header: mp4io.NewMovieHeader(), Tracks: []*mp4io.Track{videoTrack(1, variableStbl())}}
	dmx := demux(t, buildFile(t, moov))
	track := dmx.Tracks()[0]

	first := track.Samples()
	require.True(t, first.Next())
	require.True(t, first.Next())

	second := track.Samples()
	require.True(t, second.Next())
	want, err := track.SampleInfo(1)
	require.NoError(t, err)
	require.Equal(t, want, second.Sample())
}

func TestIteratorInvariants(t *testing.T) {
	t.Parallel()

	moov := &mp4io.Movie{Header: mp4io.NewMovieHeader(), Tracks: []*mp4io.Track{videoTrack(1, variableStbl())}}
	dmx := demux(t, buildFile(t, moov))
	track := dmx.Tracks()[0]

	chunkStarts := map[int64]bool{1000: true, 5000: true, 9000: true}
	it := track.Samples()
	var prev SampleInfo
	var n int
	for it.Next() {
		cur := it.Sample()
		if n > 0 {
			require.GreaterOrEqual(t, cur.DecodeTime, prev.DecodeTime)
			if !chunkStarts[cur.Offset] {
				// Inside a chunk samples are contiguous.
				require.Equal(t, prev.Offset+int64(prev.Size), cur.Offset)
			}
		}
		prev = cur
		n++
	}
	require.NoError(t, it.Err())
	require.Equal(t, 7, n)
}
