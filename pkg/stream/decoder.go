package stream

import (
	"bytes"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Decoder reassembles frames from an arbitrarily-chunked byte stream. The
// transport may split a frame's marker, JSON payload, or terminating
// newline across any number of deliveries; the decoder buffers the pending
// partial line and emits identical frames regardless of where the chunk
// boundaries fall.
//
// Lines that do not begin with the frame marker are ignored; this tolerates
// stray keep-alive content on the transport. Marker lines that fail to
// parse, or that carry an unknown type, are logged and skipped; they never
// fail the stream and never count as a terminal frame.
type Decoder struct {
	buf []byte
	log zerolog.Logger
}

// NewDecoder creates a decoder. The logger receives skipped-line warnings;
// pass zerolog.Nop() to discard them.
func NewDecoder(log zerolog.Logger) *Decoder {
	return &Decoder{log: log}
}

// Feed appends raw transport bytes and returns every frame completed by
// this delivery, in wire order. A trailing unterminated fragment is
// retained for the next call.
func (d *Decoder) Feed(p []byte) []Frame {
	d.buf = append(d.buf, p...)

	var frames []Frame
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := d.buf[:i]
		d.buf = d.buf[i+1:]

		if f, ok := d.parseLine(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Finish signals end of stream. Any retained unterminated fragment is
// dropped; a truncated frame cannot be decoded and must not be guessed at.
func (d *Decoder) Finish() {
	if len(d.buf) > 0 {
		d.log.Debug().
			Int("bytes", len(d.buf)).
			Msg("discarding unterminated frame fragment at end of stream")
		d.buf = nil
	}
}

// parseLine decodes one complete line into a frame. The bool result is
// false for ignored and skipped lines.
func (d *Decoder) parseLine(line []byte) (Frame, bool) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return Frame{}, false
	}
	if !bytes.HasPrefix(line, []byte(Marker)) {
		// Not a frame line. Transport keep-alives and comments land here.
		return Frame{}, false
	}

	payload := line[len(Marker):]
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		d.log.Warn().
			Err(err).
			Str("line", string(line)).
			Msg("skipping malformed frame")
		return Frame{}, false
	}
	if !knownType(f.Type) {
		d.log.Warn().
			Str("frame_type", string(f.Type)).
			Msg("skipping frame with unknown type")
		return Frame{}, false
	}
	return f, true
}
