/*
Package deltalog appends successive dictionary states to a byte
stream as a full snapshot frame followed by per-step delta frames,
shrinking logs of high-frequency state where only a few leaves change
between steps.

Each frame is a kind byte (snapshot or delta), a flags byte, a uvarint
payload length, and the payload: the MessagePack encoding of either
the whole tree or of its difference against the previously appended
state.  Replaying merges each delta into the reconstructed state under
the usual wire rules, so leaf types stay pinned across the log.

Deltas cannot express key removal; a state that drops keys should be
appended after forcing a snapshot (Options.SnapshotEvery).
*/
package deltalog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/jrhy/dict"
)

const (
	kindSnapshot byte = 0x00
	kindDelta    byte = 0x01

	flagZstd byte = 0x01

	// maxFrameSize caps a frame's declared payload length, so a
	// corrupt length prefix fails instead of allocating gigabytes.
	maxFrameSize = 1 << 28
)

// Options configures a Writer.
type Options struct {
	// SnapshotEvery forces a full snapshot frame every N appends.
	// Zero means only the first frame is a snapshot.
	SnapshotEvery int

	// Compress compresses frame payloads with zstd.
	Compress bool
}

// Writer appends dictionary states to a stream.  It is not safe for
// concurrent use.
type Writer struct {
	w     io.Writer
	opts  Options
	prev  *dict.Dictionary
	count int
	zenc  *zstd.Encoder
}

// NewWriter returns a Writer appending frames to w.  A nil opts uses
// the defaults.
func NewWriter(w io.Writer, opts *Options) (*Writer, error) {
	lw := &Writer{w: w}
	if opts != nil {
		lw.opts = *opts
	}
	if lw.opts.Compress {
		zenc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		lw.zenc = zenc
	}
	return lw, nil
}

// Append writes d as the next frame: a snapshot if this is the first
// append or a snapshot is due, otherwise the difference against the
// previously appended state.
func (w *Writer) Append(d *dict.Dictionary) error {
	kind := kindDelta
	payloadTree := d
	if w.prev == nil || (w.opts.SnapshotEvery > 0 && w.count%w.opts.SnapshotEvery == 0) {
		kind = kindSnapshot
	} else {
		delta, err := d.Difference(w.prev)
		if err != nil {
			return fmt.Errorf("difference: %w", err)
		}
		payloadTree = delta
	}
	payload, err := payloadTree.Serialize()
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	prev, err := d.DeepCopy()
	if err != nil {
		return fmt.Errorf("copy state: %w", err)
	}
	var flags byte
	if w.zenc != nil {
		payload = w.zenc.EncodeAll(payload, nil)
		flags |= flagZstd
	}
	header := []byte{kind, flags}
	header = binary.AppendUvarint(header, uint64(len(payload)))
	if _, err := w.w.Write(header); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	w.prev = prev
	w.count++
	return nil
}

// Close releases the compressor.  It does not close the underlying
// writer.
func (w *Writer) Close() error {
	if w.zenc != nil {
		return w.zenc.Close()
	}
	return nil
}

// Reader replays a delta log frame by frame.
type Reader struct {
	r     *bufio.Reader
	state *dict.Dictionary
	zdec  *zstd.Decoder
}

// NewReader returns a Reader replaying frames from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next reads one frame and returns the reconstructed state after
// applying it.  The returned dictionary is owned by the Reader and
// only valid until the next call; DeepCopy it to retain.  Returns
// io.EOF at the end of the log.
func (r *Reader) Next() (*dict.Dictionary, error) {
	kind, err := r.r.ReadByte()
	if err != nil {
		return nil, err
	}
	flags, err := r.r.ReadByte()
	if err != nil {
		return nil, eofErr(err)
	}
	n, err := binary.ReadUvarint(r.r)
	if err != nil {
		return nil, eofErr(err)
	}
	if n > maxFrameSize {
		return nil, fmt.Errorf("frame length %d exceeds %d", n, maxFrameSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, eofErr(err)
	}
	if flags&flagZstd != 0 {
		if r.zdec == nil {
			zdec, err := zstd.NewReader(nil)
			if err != nil {
				return nil, fmt.Errorf("zstd: %w", err)
			}
			r.zdec = zdec
		}
		payload, err = r.zdec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress frame: %w", err)
		}
	}
	switch kind {
	case kindSnapshot:
		state := dict.New()
		if err := state.UpdateBytes(payload); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		r.state = state
	case kindDelta:
		if r.state == nil {
			return nil, fmt.Errorf("delta frame before any snapshot")
		}
		if err := r.state.UpdateBytes(payload); err != nil {
			return nil, fmt.Errorf("merge delta: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown frame kind 0x%02x", kind)
	}
	return r.state, nil
}

// Close releases the decompressor.  It does not close the underlying
// reader.
func (r *Reader) Close() error {
	if r.zdec != nil {
		r.zdec.Close()
		r.zdec = nil
	}
	return nil
}

// eofErr maps a truncated frame to io.ErrUnexpectedEOF so callers can
// tell it apart from a clean end of log.
func eofErr(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
