package gomp4

// SampleIter walks a track's samples in order without materializing
// them. Cursors into every table advance in lockstep, so each step is
// constant time. Create a fresh iterator to restart from sample 1.
type SampleIter struct {
	track *Track
	err   error
	cur   SampleInfo

	index uint32 // 1-based number of the sample cur describes

	chunkGroup    int
	chunk         uint64
	indexInChunk  uint32
	offsetInChunk int64

	sttsRun   int
	inSttsRun uint32

	cttsRun   int
	inCttsRun uint32

	syncIndex int

	decodeTime uint64
}

// Samples returns an iterator positioned before the first sample.
func (t *Track) Samples() *SampleIter {
	it := &SampleIter{track: t}
	if err := t.expand(); err != nil {
		it.err = err
		return it
	}
	if t.sampleCount > 0 {
		it.chunk = uint64(t.stbl.SampleToChunk.Entries[0].FirstChunk - 1)
		it.skipEmptyGroups()
	}
	return it
}

// skipEmptyGroups moves the chunk cursor past runs that map no samples,
// landing on the first chunk of the next populated run.
func (it *SampleIter) skipEmptyGroups() {
	groups := it.track.stbl.SampleToChunk.Entries
	for it.chunkGroup+1 < len(groups) && groups[it.chunkGroup].SamplesPerChunk == 0 {
		it.chunkGroup++
		it.chunk = uint64(groups[it.chunkGroup].FirstChunk - 1)
	}
}

// Next advances to the following sample. It returns false at the end of
// the track or on error; check Err afterwards.
func (it *SampleIter) Next() bool {
	if it.err != nil || it.index >= it.track.sampleCount {
		return false
	}
	t := it.track
	k := uint64(it.index) // 0-based index of the sample being produced

	it.cur = SampleInfo{
		Offset:     t.chunkOffset(it.chunk) + it.offsetInChunk,
		Size:       t.sampleSize(k),
		DecodeTime: it.decodeTime,
		Sync:       true,
	}
	it.cur.Duration = t.stbl.TimeToSample.Entries[it.sttsRun].Duration

	if ctts := t.stbl.CompositionOffset; ctts != nil && it.cttsRun < len(ctts.Entries) {
		it.cur.CompositionOffset = ctts.Entries[it.cttsRun].Offset
	}
	if stss := t.stbl.SyncSample; stss != nil {
		entries := stss.Entries
		it.cur.Sync = it.syncIndex < len(entries) && entries[it.syncIndex] == it.index+1
	}

	it.advance()
	it.index++
	return true
}

// advance moves every cursor past the sample just produced.
func (it *SampleIter) advance() {
	t := it.track
	stbl := t.stbl

	it.decodeTime += uint64(it.cur.Duration)
	it.inSttsRun++
	if it.inSttsRun == stbl.TimeToSample.Entries[it.sttsRun].Count {
		it.inSttsRun = 0
		it.sttsRun++
	}

	if ctts := stbl.CompositionOffset; ctts != nil && it.cttsRun < len(ctts.Entries) {
		it.inCttsRun++
		if it.inCttsRun == ctts.Entries[it.cttsRun].Count {
			it.inCttsRun = 0
			it.cttsRun++
		}
	}

	if stss := stbl.SyncSample; stss != nil {
		for it.syncIndex < len(stss.Entries) && stss.Entries[it.syncIndex] <= it.index+1 {
			it.syncIndex++
		}
	}

	groups := stbl.SampleToChunk.Entries
	it.indexInChunk++
	if it.indexInChunk == groups[it.chunkGroup].SamplesPerChunk {
		it.indexInChunk = 0
		it.offsetInChunk = 0
		it.chunk++
		for it.chunkGroup+1 < len(groups) &&
			it.chunk >= uint64(groups[it.chunkGroup+1].FirstChunk-1) {
			it.chunkGroup++
		}
		it.skipEmptyGroups()
	} else {
		it.offsetInChunk += int64(it.cur.Size)
	}
}

// Sample returns the sample Next produced.
func (it *SampleIter) Sample() SampleInfo {
	return it.cur
}

// Err reports the table validation error, if any.
func (it *SampleIter) Err() error {
	return it.err
}
