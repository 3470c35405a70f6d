package generate

import "context"

// Turn is one prior exchange message supplied as generation context.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Request describes one generation call.
type Request struct {
	System  string // system prompt, may be empty
	History []Turn // prior conversation turns, oldest first
	Message string // the new user message
}

// Stream delivers a generated answer as an ordered sequence of text
// fragments. Next returns io.EOF after the final fragment; any other error
// means the generation failed mid-stream.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Generator produces answers. Implementations must be safe for concurrent
// use by multiple exchanges.
type Generator interface {
	// Stream starts an incremental generation. Fragment boundaries are
	// arbitrary; callers must not assume words or lines.
	Stream(ctx context.Context, req Request) (Stream, error)

	// Complete runs a non-streaming generation and returns the full text.
	Complete(ctx context.Context, req Request) (string, error)

	// Name identifies the backend for logs and health checks.
	Name() string
}
