package kvs

import (
	"bufio"
	"encoding/json"
	"io"

	"kvd/internal/engine"
)

// recordKind tags a persisted operation record. Only set and remove are
// ever written to a segment file; get is wire-only (internal/protocol)
// and never appears here.
type recordKind string

const (
	kindSet recordKind = "set"
	kindRm  recordKind = "rm"
)

// record is the on-disk representation of a Set or Remove operation. It
// is encoded as a single JSON object per frame; frame boundaries are
// recovered by decoding a stream of such objects one at a time, which is
// what makes the encoding self-delimited without an explicit length
// prefix (whitespace between objects is insignificant to the decoder).
type record struct {
	Kind  recordKind `json:"kind"`
	Key   string     `json:"key"`
	Value string     `json:"value,omitempty"`
}

func encodeSet(w io.Writer, key, value string) (int, error) {
	return encodeRecord(w, record{Kind: kindSet, Key: key, Value: value})
}

func encodeRemove(w io.Writer, key string) (int, error) {
	return encodeRecord(w, record{Kind: kindRm, Key: key})
}

// encodeRecord writes r as a JSON frame with no separator and returns
// the number of bytes written, which becomes the record's
// Locator.Length. Frames are written back to back with no delimiter
// between them; json.Decoder can recover the boundary between
// consecutive top-level values on its own, which is what "whitespace
// insensitive framing" buys us here: no length prefix, no separator
// byte to keep in sync with Locator.Length.
func encodeRecord(w io.Writer, r record) (int, error) {
	buf, err := json.Marshal(r)
	if err != nil {
		return 0, engine.SerdeError("encode record", err)
	}
	n, err := w.Write(buf)
	if err != nil {
		return n, engine.IoError("write record", err)
	}
	return n, nil
}

// recordStream decodes a sequence of self-delimited record frames from
// r, tracking the byte offset just past each decoded frame so callers
// can compute Locator.Length for replay. json.Decoder.InputOffset()
// already reports true position in the underlying stream regardless of
// the bufio.Reader in between, so no extra bookkeeping is needed.
type recordStream struct {
	dec *json.Decoder
}

func newRecordStream(r io.Reader) *recordStream {
	return &recordStream{dec: json.NewDecoder(bufio.NewReader(r))}
}

// next decodes the next frame. It returns io.EOF (unwrapped) when the
// stream ends cleanly between frames, and a Serde error when a frame is
// malformed mid-stream. offset is the number of bytes consumed from the
// start of the stream up to and including this frame, i.e. exactly the
// value needed to compute (prevOffset, offset-prevOffset) as a Locator.
func (s *recordStream) next() (rec record, offset int64, err error) {
	startOffset := s.dec.InputOffset()
	if err := s.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return record{}, startOffset, io.EOF
		}
		return record{}, startOffset, engine.SerdeError("decode record", err)
	}
	return rec, s.dec.InputOffset(), nil
}
