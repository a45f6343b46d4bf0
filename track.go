package gomp4

import (
	"sort"
	"sync"

	"github.com/ugparu/gomp4/mp4io"
)

// Track is a read-only view over one trak of the movie. Sample queries
// share lazily built prefix-sum caches; building happens once and the
// caches are safe for concurrent readers afterwards.
type Track struct {
	atom *mp4io.Track
	stbl *mp4io.SampleTable

	id          uint32
	mediaType   MediaType
	language    string
	timeScale   uint32
	duration    uint64
	sampleCount uint32

	expandOnce sync.Once
	expandErr  error

	// Cumulative sample counts before each run, one trailing total each.
	sttsPrefix []uint64
	sttsTime   []uint64
	cttsPrefix []uint64
	stscPrefix []uint64
}

func newTrack(atom *mp4io.Track) (*Track, error) {
	if atom.Header == nil {
		return nil, RequiredBoxError{Tag: "tkhd", Count: 0}
	}
	media := atom.Media
	if media == nil {
		return nil, RequiredBoxError{Tag: "mdia", Count: 0}
	}
	if media.Header == nil {
		return nil, RequiredBoxError{Tag: "mdhd", Count: 0}
	}
	if media.Handler == nil {
		return nil, RequiredBoxError{Tag: "hdlr", Count: 0}
	}
	if media.Info == nil || media.Info.Sample == nil {
		return nil, RequiredBoxError{Tag: "stbl", Count: 0}
	}

	track := &Track{
		atom:      atom,
		stbl:      media.Info.Sample,
		id:        atom.Header.TrackID,
		language:  media.Header.LanguageString(),
		timeScale: media.Header.TimeScale,
		duration:  media.Header.Duration,
	}
	switch media.Handler.SubType {
	case mp4io.HandlerVideo:
		track.mediaType = MediaTypeVideo
	case mp4io.HandlerSound:
		track.mediaType = MediaTypeAudio
	case mp4io.HandlerSubtitle, mp4io.HandlerText:
		track.mediaType = MediaTypeSubtitle
	default:
		track.mediaType = MediaTypeOther
	}
	track.sampleCount = track.declaredSampleCount()
	return track, nil
}

func (t *Track) declaredSampleCount() uint32 {
	if s := t.stbl.SampleSize; s != nil {
		return s.SampleCount
	}
	if s := t.stbl.CompactSampleSize; s != nil {
		return uint32(len(s.Entries))
	}
	return 0
}

func (t *Track) ID() uint32 {
	return t.id
}

func (t *Track) MediaType() MediaType {
	return t.mediaType
}

// Language returns the ISO-639 code packed in mdhd, "und" when unset.
func (t *Track) Language() string {
	return t.language
}

func (t *Track) Timescale() uint32 {
	return t.timeScale
}

// Duration is in track timescale units.
func (t *Track) Duration() uint64 {
	return t.duration
}

func (t *Track) SampleCount() uint32 {
	return t.sampleCount
}

// Width prefers the coded size from the sample entry over the
// presentation size in tkhd.
func (t *Track) Width() uint16 {
	if d := t.sampleDesc(); d != nil {
		if d.AVC1Desc != nil {
			return uint16(d.AVC1Desc.Width)
		}
		if d.HV1Desc != nil {
			return uint16(d.HV1Desc.Width)
		}
	}
	return uint16(t.atom.Header.TrackWidth)
}

func (t *Track) Height() uint16 {
	if d := t.sampleDesc(); d != nil {
		if d.AVC1Desc != nil {
			return uint16(d.AVC1Desc.Height)
		}
		if d.HV1Desc != nil {
			return uint16(d.HV1Desc.Height)
		}
	}
	return uint16(t.atom.Header.TrackHeight)
}

func (t *Track) sampleDesc() *mp4io.SampleDesc {
	return t.stbl.SampleDesc
}

// CodecTag returns the fourcc of the first sample entry, zero when the
// track carries none.
func (t *Track) CodecTag() mp4io.Tag {
	d := t.sampleDesc()
	if d == nil {
		return 0
	}
	children := d.Children()
	if len(children) == 0 {
		return 0
	}
	return children[0].Tag()
}

// AVCDecoderConfig returns the raw avcC payload, nil when absent.
func (t *Track) AVCDecoderConfig() []byte {
	if conf := t.atom.GetAVC1Conf(); conf != nil {
		return conf.Data
	}
	return nil
}

// HEVCDecoderConfig returns the raw hvcC payload, nil when absent.
func (t *Track) HEVCDecoderConfig() []byte {
	if conf := t.atom.GetHV1Conf(); conf != nil {
		return conf.Data
	}
	return nil
}

// MPEG4AudioConfig returns the raw esds payload, nil when absent.
func (t *Track) MPEG4AudioConfig() []byte {
	if esds := t.atom.GetElemStreamDesc(); esds != nil {
		return esds.Data
	}
	return nil
}

// Atom exposes the underlying trak tree.
func (t *Track) Atom() *mp4io.Track {
	return t.atom
}

func (t *Track) inconsistent(reason string) error {
	return InconsistentTableError{TrackID: t.id, Reason: reason}
}

func (t *Track) chunkCount() int {
	if c := t.stbl.ChunkOffset; c != nil {
		return len(c.Entries)
	}
	if c := t.stbl.ChunkOffset64; c != nil {
		return len(c.Entries)
	}
	return 0
}

func (t *Track) chunkOffset(chunk uint64) int64 {
	if c := t.stbl.ChunkOffset; c != nil {
		return int64(c.Entries[chunk])
	}
	return int64(t.stbl.ChunkOffset64.Entries[chunk])
}

// sampleSize takes a 0-based index already checked against sampleCount.
func (t *Track) sampleSize(k uint64) uint32 {
	if s := t.stbl.SampleSize; s != nil {
		if s.SampleSize != 0 {
			return s.SampleSize
		}
		return s.Entries[k]
	}
	return t.stbl.CompactSampleSize.Entries[k]
}

// expand builds the prefix-sum caches and cross-checks the tables. The
// result is cached; an inconsistent track keeps returning the same error
// without poisoning its siblings.
func (t *Track) expand() error {
	t.expandOnce.Do(t.build)
	return t.expandErr
}

func (t *Track) build() {
	if t.sampleCount == 0 {
		return
	}
	total := uint64(t.sampleCount)
	stbl := t.stbl
	if stbl.TimeToSample == nil {
		t.expandErr = t.inconsistent("stts missing")
		return
	}
	if stbl.SampleToChunk == nil {
		t.expandErr = t.inconsistent("stsc missing")
		return
	}
	chunks := t.chunkCount()
	if chunks == 0 {
		t.expandErr = t.inconsistent("no chunk offsets")
		return
	}

	stts := stbl.TimeToSample.Entries
	t.sttsPrefix = make([]uint64, len(stts)+1)
	t.sttsTime = make([]uint64, len(stts)+1)
	var count, tm uint64
	for i, entry := range stts {
		t.sttsPrefix[i] = count
		t.sttsTime[i] = tm
		count += uint64(entry.Count)
		tm += uint64(entry.Count) * uint64(entry.Duration)
	}
	t.sttsPrefix[len(stts)] = count
	t.sttsTime[len(stts)] = tm
	if count != total {
		t.expandErr = t.inconsistent("stts covers a different sample count")
		return
	}

	if ctts := stbl.CompositionOffset; ctts != nil {
		t.cttsPrefix = make([]uint64, len(ctts.Entries)+1)
		var covered uint64
		for i, entry := range ctts.Entries {
			t.cttsPrefix[i] = covered
			covered += uint64(entry.Count)
		}
		t.cttsPrefix[len(ctts.Entries)] = covered
	}

	stsc := stbl.SampleToChunk.Entries
	if len(stsc) == 0 {
		t.expandErr = t.inconsistent("stsc empty")
		return
	}
	t.stscPrefix = make([]uint64, len(stsc)+1)
	var covered uint64
	for i, entry := range stsc {
		t.stscPrefix[i] = covered
		if i == 0 && entry.FirstChunk != 1 {
			t.expandErr = t.inconsistent("stsc does not start at chunk 1")
			return
		}
		var span uint64
		if i+1 < len(stsc) {
			next := stsc[i+1].FirstChunk
			if next <= entry.FirstChunk {
				t.expandErr = t.inconsistent("stsc first chunks not increasing")
				return
			}
			span = uint64(next - entry.FirstChunk)
		} else {
			if uint64(entry.FirstChunk) > uint64(chunks) {
				t.expandErr = t.inconsistent("stsc points past the chunk list")
				return
			}
			span = uint64(chunks) - uint64(entry.FirstChunk) + 1
		}
		covered += span * uint64(entry.SamplesPerChunk)
	}
	// The last chunk may hold fewer samples than its run declares;
	// any shortfall beyond one chunk's worth is a real mismatch.
	if covered != total {
		short := covered - total
		if covered < total || short >= uint64(stsc[len(stsc)-1].SamplesPerChunk) {
			t.expandErr = t.inconsistent("chunk map covers a different sample count")
			return
		}
	}
	t.stscPrefix[len(stsc)] = total
}

// SampleInfo resolves one sample by its 1-based number.
func (t *Track) SampleInfo(index uint32) (info SampleInfo, err error) {
	if err = t.expand(); err != nil {
		return
	}
	if index == 0 || index > t.sampleCount {
		err = IndexOutOfRangeError{Index: index, Count: t.sampleCount}
		return
	}
	k := uint64(index - 1)

	run := searchRun(t.sttsPrefix, k)
	entry := t.stbl.TimeToSample.Entries[run]
	info.DecodeTime = t.sttsTime[run] + (k-t.sttsPrefix[run])*uint64(entry.Duration)
	info.Duration = entry.Duration

	// Samples past the runs ctts covers keep offset zero.
	if ctts := t.stbl.CompositionOffset; ctts != nil && k < t.cttsPrefix[len(t.cttsPrefix)-1] {
		run = searchRun(t.cttsPrefix, k)
		info.CompositionOffset = ctts.Entries[run].Offset
	}

	info.Sync = true
	if stss := t.stbl.SyncSample; stss != nil {
		entries := stss.Entries
		i := sort.Search(len(entries), func(i int) bool { return entries[i] >= index })
		info.Sync = i < len(entries) && entries[i] == index
	}

	run = searchRun(t.stscPrefix, k)
	group := t.stbl.SampleToChunk.Entries[run]
	rel := k - t.stscPrefix[run]
	chunk := uint64(group.FirstChunk-1) + rel/uint64(group.SamplesPerChunk)
	first := t.stscPrefix[run] + (chunk-uint64(group.FirstChunk-1))*uint64(group.SamplesPerChunk)
	offset := t.chunkOffset(chunk)
	for i := first; i < k; i++ {
		offset += int64(t.sampleSize(i))
	}
	info.Offset = offset
	info.Size = t.sampleSize(k)
	return
}

// searchRun finds the run whose half-open sample range contains k.
// prefix has one entry per run plus the trailing total.
func searchRun(prefix []uint64, k uint64) int {
	return sort.Search(len(prefix)-1, func(i int) bool { return prefix[i+1] > k })
}
