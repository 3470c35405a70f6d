package stream

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEncodeWireShape(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Start(); err != nil {
		t.Fatal(err)
	}
	if err := enc.Chunk("Hello"); err != nil {
		t.Fatal(err)
	}
	if err := enc.Complete("abc"); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		`data: {"type":"start"}`,
		`data: {"type":"chunk","content":"Hello"}`,
		`data: {"type":"complete","session_id":"abc"}`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

// A fragment containing a newline must still serialize to one line.
func TestEncodeEscapesNewlines(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Chunk("line one\nline two"); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("frame spans %d lines, want 1: %q", got, buf.String())
	}
}

func TestEncodeOrderingInvariant(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Start(); err != nil {
		t.Fatal(err)
	}
	if err := enc.Start(); err != ErrDuplicateStart {
		t.Fatalf("second start: got %v, want ErrDuplicateStart", err)
	}
	if err := enc.Complete(""); err != nil {
		t.Fatal(err)
	}
	if !enc.Terminated() {
		t.Fatal("encoder should be terminated after complete")
	}
	if err := enc.Chunk("late"); err != ErrTerminated {
		t.Fatalf("chunk after terminal: got %v, want ErrTerminated", err)
	}
	if err := enc.Error("late"); err != ErrTerminated {
		t.Fatalf("error after terminal: got %v, want ErrTerminated", err)
	}
}

func TestEncodeFlushesPerFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	enc := NewEncoder(rec)

	if err := enc.Start(); err != nil {
		t.Fatal(err)
	}
	if !rec.Flushed {
		t.Fatal("expected flush after frame")
	}
}

func TestEncodeUnknownType(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Encode(Frame{Type: "telemetry"}); err == nil {
		t.Fatal("expected error for unknown frame type")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on error, got %q", buf.String())
	}
}
