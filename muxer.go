package gomp4

import (
	"errors"
	"io"

	"github.com/ugparu/gomp4/mp4io"
	"github.com/ugparu/gomp4/utils/logger"
)

// Muxer re-emits a demuxed file. Modeled boxes are serialized from their
// parsed form with sizes re-derived bottom-up; everything else is copied
// byte-for-byte from the demuxer's source.
type Muxer struct {
	w io.Writer
}

func NewMuxer(w io.Writer) *Muxer {
	return &Muxer{w: w}
}

// WriteFile writes the demuxer's top-level boxes in their original
// order. dmx must have completed Demux.
func (mx *Muxer) WriteFile(dmx *Demuxer) (err error) {
	var written int64
	for _, top := range dmx.tops {
		var n int64
		if top.atom != nil {
			n, err = mx.writeAtom(top.atom)
		} else {
			n, err = mx.copyBox(dmx, top)
		}
		if err != nil {
			return
		}
		written += n
	}
	logger.Debugf(mx, "wrote %d bytes in %d boxes", written, len(dmx.tops))
	return nil
}

func (mx *Muxer) writeAtom(atom mp4io.Atom) (int64, error) {
	// Headroom for the large header form.
	b := make([]byte, atom.Len()+mp4io.HeaderSize)
	n, err := mp4io.MarshalAtom(atom, b)
	if err != nil {
		if errors.Is(err, mp4io.ErrSizeOverflow) {
			err = SizeOverflowError{Tag: atom.Tag().String()}
		}
		return 0, err
	}
	if _, err = mx.w.Write(b[:n]); err != nil {
		return 0, err
	}
	return int64(n), nil
}

// copyBox streams one retained box from the source, header included.
func (mx *Muxer) copyBox(dmx *Demuxer, top topBox) (int64, error) {
	if ra, ok := dmx.r.(io.ReaderAt); ok {
		return io.Copy(mx.w, io.NewSectionReader(ra, top.offset, top.size))
	}
	if _, err := dmx.r.Seek(top.offset, io.SeekStart); err != nil {
		return 0, err
	}
	return io.CopyN(mx.w, dmx.r, top.size)
}
