package gomp4

import (
	"io"

	"github.com/ugparu/gomp4/mp4io"
	"github.com/ugparu/gomp4/utils/bits/pio"
	"github.com/ugparu/gomp4/utils/logger"
)

// topBox is one top-level box. Modeled boxes (ftyp, moov) carry their
// parsed atom; everything else is retained by tag, position and length
// so the writer can copy it verbatim from the source.
type topBox struct {
	tag    mp4io.Tag
	offset int64
	size   int64
	atom   mp4io.Atom
}

// Demuxer parses the box tree of one file. After a successful Demux the
// parsed tree is read-only and safe to share across goroutines.
type Demuxer struct {
	r      io.ReadSeeker
	size   int64
	ftyp   *mp4io.FileType
	moov   *mp4io.Movie
	tops   []topBox
	tracks []*Track
}

// NewDemuxer reads from r, which must cover exactly size bytes of file.
func NewDemuxer(r io.ReadSeeker, size int64) *Demuxer {
	return &Demuxer{r: r, size: size}
}

// Demux scans the top-level boxes, parses ftyp and moov, and builds the
// track list. The file must contain exactly one ftyp and one moov.
func (dmx *Demuxer) Demux() (err error) {
	if _, err = dmx.r.Seek(0, io.SeekStart); err != nil {
		return
	}
	dmx.tops = nil
	dmx.ftyp = nil
	dmx.moov = nil
	dmx.tracks = nil

	var ftypCount, moovCount int
	var offset int64
	var hdrbuf [mp4io.LargeHeaderSize]byte
	for offset < dmx.size {
		if dmx.size-offset < int64(mp4io.HeaderSize) {
			return TruncatedError{Offset: offset}
		}
		if _, err = io.ReadFull(dmx.r, hdrbuf[:mp4io.HeaderSize]); err != nil {
			return TruncatedError{Offset: offset}
		}
		size32 := pio.U32BE(hdrbuf[:])
		tag := mp4io.Tag(pio.U32BE(hdrbuf[4:]))
		hdr := int64(mp4io.HeaderSize)
		var boxSize int64
		switch size32 {
		case 0:
			boxSize = dmx.size - offset
		case 1:
			if dmx.size-offset < int64(mp4io.LargeHeaderSize) {
				return TruncatedError{Offset: offset}
			}
			if _, err = io.ReadFull(dmx.r, hdrbuf[mp4io.HeaderSize:]); err != nil {
				return TruncatedError{Offset: offset}
			}
			hdr = int64(mp4io.LargeHeaderSize)
			size64 := pio.U64BE(hdrbuf[mp4io.HeaderSize:])
			if size64 < uint64(hdr) || size64 > uint64(dmx.size-offset) {
				return OverrunError{Tag: tag.String(), Offset: offset}
			}
			boxSize = int64(size64)
		default:
			if int64(size32) < int64(mp4io.HeaderSize) || int64(size32) > dmx.size-offset {
				return OverrunError{Tag: tag.String(), Offset: offset}
			}
			boxSize = int64(size32)
		}
		logger.Debugf(dmx, "box %s at %d size %d", tag, offset, boxSize)

		top := topBox{tag: tag, offset: offset, size: boxSize}
		switch tag {
		case mp4io.FTYP:
			ftypCount++
			var atom *mp4io.FileType
			if atom, err = dmx.parseFileType(hdrbuf[:hdr], offset, boxSize); err != nil {
				return
			}
			dmx.ftyp = atom
			top.atom = atom
		case mp4io.MOOV:
			moovCount++
			var atom *mp4io.Movie
			if atom, err = dmx.parseMovie(hdrbuf[:hdr], offset, boxSize); err != nil {
				return
			}
			dmx.moov = atom
			top.atom = atom
		default:
			if _, err = dmx.r.Seek(boxSize-hdr, io.SeekCurrent); err != nil {
				return
			}
		}
		dmx.tops = append(dmx.tops, top)
		offset += boxSize
	}

	if ftypCount != 1 {
		return RequiredBoxError{Tag: mp4io.FTYP.String(), Count: ftypCount}
	}
	if moovCount != 1 {
		return RequiredBoxError{Tag: mp4io.MOOV.String(), Count: moovCount}
	}
	return dmx.buildTracks()
}

// readBox pulls the remainder of one box into memory, with the already
// consumed header bytes restored at the front. Modeled atoms skip a
// fixed 8-byte header, so a 16-byte large header is handed over starting
// 8 bytes in.
func (dmx *Demuxer) readBox(hdrbuf []byte, offset, size int64) (scope []byte, scopeOff int, err error) {
	b := make([]byte, size)
	copy(b, hdrbuf)
	if _, err = io.ReadFull(dmx.r, b[len(hdrbuf):]); err != nil {
		err = TruncatedError{Offset: offset}
		return
	}
	lead := len(hdrbuf) - mp4io.HeaderSize
	return b[lead:], int(offset) + lead, nil
}

func (dmx *Demuxer) parseFileType(hdrbuf []byte, offset, size int64) (atom *mp4io.FileType, err error) {
	scope, scopeOff, err := dmx.readBox(hdrbuf, offset, size)
	if err != nil {
		return
	}
	atom = &mp4io.FileType{}
	_, err = atom.Unmarshal(scope, scopeOff)
	return
}

func (dmx *Demuxer) parseMovie(hdrbuf []byte, offset, size int64) (atom *mp4io.Movie, err error) {
	scope, scopeOff, err := dmx.readBox(hdrbuf, offset, size)
	if err != nil {
		return
	}
	atom = &mp4io.Movie{}
	_, err = atom.Unmarshal(scope, scopeOff)
	return
}

func (dmx *Demuxer) buildTracks() (err error) {
	if dmx.moov.Header == nil {
		return RequiredBoxError{Tag: "mvhd", Count: 0}
	}
	seen := make(map[uint32]bool, len(dmx.moov.Tracks))
	for _, atrack := range dmx.moov.Tracks {
		var track *Track
		if track, err = newTrack(atrack); err != nil {
			return
		}
		if track.id == 0 || seen[track.id] {
			return DuplicateTrackIDError{ID: track.id}
		}
		seen[track.id] = true
		dmx.tracks = append(dmx.tracks, track)
		logger.Debugf(dmx, "track %d %s ts=%d samples=%d",
			track.id, track.mediaType, track.timeScale, track.sampleCount)
	}
	return nil
}

// Size returns the file size given at construction.
func (dmx *Demuxer) Size() int64 {
	return dmx.size
}

func (dmx *Demuxer) MajorBrand() mp4io.Tag {
	if dmx.ftyp == nil {
		return 0
	}
	return mp4io.Tag(dmx.ftyp.MajorBrand)
}

func (dmx *Demuxer) MinorVersion() uint32 {
	if dmx.ftyp == nil {
		return 0
	}
	return dmx.ftyp.MinorVersion
}

func (dmx *Demuxer) CompatibleBrands() []mp4io.Tag {
	if dmx.ftyp == nil {
		return nil
	}
	brands := make([]mp4io.Tag, len(dmx.ftyp.CompatibleBrands))
	for i, b := range dmx.ftyp.CompatibleBrands {
		brands[i] = mp4io.Tag(b)
	}
	return brands
}

// Timescale returns the movie timescale from mvhd.
func (dmx *Demuxer) Timescale() uint32 {
	if dmx.moov == nil || dmx.moov.Header == nil {
		return 0
	}
	return dmx.moov.Header.TimeScale
}

// Duration returns the longest track duration converted to the movie
// timescale, truncating.
func (dmx *Demuxer) Duration() uint64 {
	mts := dmx.Timescale()
	var max uint64
	for _, track := range dmx.tracks {
		if track.timeScale == 0 {
			continue
		}
		d := track.duration * uint64(mts) / uint64(track.timeScale)
		if d > max {
			max = d
		}
	}
	return max
}

func (dmx *Demuxer) Tracks() []*Track {
	return dmx.tracks
}

// Movie exposes the parsed moov tree.
func (dmx *Demuxer) Movie() *mp4io.Movie {
	return dmx.moov
}
