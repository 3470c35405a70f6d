package stream

import (
	"errors"
	"io"
	"net/http"
)

// Encoder writes frames to an underlying writer, one line per frame. If the
// writer implements http.Flusher every frame is flushed immediately so that
// transport-level chunking reflects generation progress rather than
// batching.
//
// The encoder tracks just enough state to enforce the frame ordering
// invariant: at most one start, nothing after a terminal frame.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
	started bool
	done    bool
}

// ErrTerminated is returned when a frame is encoded after a terminal frame.
var ErrTerminated = errors.New("stream: exchange already terminated")

// ErrDuplicateStart is returned when a second start frame is encoded.
var ErrDuplicateStart = errors.New("stream: duplicate start frame")

// NewEncoder creates an encoder writing to w. Pass an http.ResponseWriter
// to get per-frame flushing.
func NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		enc.flusher = f
	}
	return enc
}

// Encode writes one frame and flushes it.
func (e *Encoder) Encode(f Frame) error {
	if e.done {
		return ErrTerminated
	}
	if f.Type == TypeStart {
		if e.started {
			return ErrDuplicateStart
		}
		e.started = true
	}

	line, err := f.Marshal()
	if err != nil {
		return err
	}
	if _, err := e.w.Write(line); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}

	if f.Terminal() {
		e.done = true
	}
	return nil
}

// Start emits a start frame.
func (e *Encoder) Start() error {
	return e.Encode(Start())
}

// Chunk emits a chunk frame carrying a content fragment.
func (e *Encoder) Chunk(content string) error {
	return e.Encode(Chunk(content))
}

// Complete emits the terminal complete frame, optionally carrying a session
// identity.
func (e *Encoder) Complete(sessionID string) error {
	return e.Encode(Complete(sessionID))
}

// Error emits the terminal error frame.
func (e *Encoder) Error(message string) error {
	return e.Encode(Error(message))
}

// Terminated reports whether a terminal frame has been emitted.
func (e *Encoder) Terminated() bool {
	return e.done
}
