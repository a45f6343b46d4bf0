// Package gomp4 reads and writes the ISO base media file format container.
// It parses the box tree, expands the sample tables of each track into
// per-sample file positions and timing, and re-emits files byte-exactly,
// preserving boxes it does not model. Media payloads stay opaque.
package gomp4

// MediaType classifies a track by its handler subtype.
type MediaType uint8

const (
	MediaTypeOther MediaType = iota
	MediaTypeVideo
	MediaTypeAudio
	MediaTypeSubtitle
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeSubtitle:
		return "subtitle"
	default:
		return "other"
	}
}

// SampleInfo locates and times one sample of a track. Offset is absolute
// in the file; DecodeTime and Duration are in the track timescale.
type SampleInfo struct {
	Offset            int64
	Size              uint32
	DecodeTime        uint64
	Duration          uint32
	CompositionOffset int32
	Sync              bool
}
