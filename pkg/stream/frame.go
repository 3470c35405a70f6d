// Package stream implements the wire protocol that carries a generated
// answer from the server to a client as an ordered sequence of frames over
// a single chunked HTTP response.
//
// Each frame is one UTF-8 text line: the fixed marker "data: " followed by
// a JSON object, terminated by a single newline. The JSON object carries a
// "type" discriminator and the type-specific payload. For one exchange the
// producer emits at most one start frame, any number of chunk frames, and
// exactly one terminal frame (complete or error), in that order.
package stream

import (
	"encoding/json"
	"fmt"
)

// Marker prefixes every frame line on the wire.
const Marker = "data: "

// FrameType discriminates frame payloads.
type FrameType string

const (
	TypeStart    FrameType = "start"
	TypeChunk    FrameType = "chunk"
	TypeComplete FrameType = "complete"
	TypeError    FrameType = "error"
)

// Frame is one unit of the streaming wire protocol.
type Frame struct {
	Type FrameType `json:"type"`

	// Content is the text fragment carried by a chunk frame. Fragments
	// concatenated in arrival order form the full answer text.
	Content string `json:"content,omitempty"`

	// SessionID optionally assigns a conversation identity on a complete
	// frame.
	SessionID string `json:"session_id,omitempty"`

	// Message is the failure description on an error frame.
	Message string `json:"message,omitempty"`
}

// Start returns a start frame.
func Start() Frame {
	return Frame{Type: TypeStart}
}

// Chunk returns a chunk frame carrying a content fragment.
func Chunk(content string) Frame {
	return Frame{Type: TypeChunk, Content: content}
}

// Complete returns a complete frame, optionally carrying a session identity.
func Complete(sessionID string) Frame {
	return Frame{Type: TypeComplete, SessionID: sessionID}
}

// Error returns an error frame carrying a failure message.
func Error(message string) Frame {
	return Frame{Type: TypeError, Message: message}
}

// Terminal reports whether the frame ends an exchange.
func (f Frame) Terminal() bool {
	return f.Type == TypeComplete || f.Type == TypeError
}

// knownType reports whether the discriminator is one of the four frame kinds.
func knownType(t FrameType) bool {
	switch t {
	case TypeStart, TypeChunk, TypeComplete, TypeError:
		return true
	}
	return false
}

// Marshal serializes the frame as a single wire line including the marker
// and trailing newline. encoding/json escapes newlines inside strings, so
// the line is always self-delimited.
func (f Frame) Marshal() ([]byte, error) {
	if !knownType(f.Type) {
		return nil, fmt.Errorf("stream: unknown frame type %q", f.Type)
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	line := make([]byte, 0, len(Marker)+len(payload)+1)
	line = append(line, Marker...)
	line = append(line, payload...)
	line = append(line, '\n')
	return line, nil
}
