package edumentor

import (
	"strings"
	"testing"
	"time"

	"github.com/EyadAmgad/EduMentorAI/pkg/stream"
)

// newTestDispatcher wires a dispatcher with a raw-text renderer and a fixed
// clock so output is predictable.
func newTestDispatcher(t *testing.T) (*Dispatcher, *Session, *Indicator, *[]IndicatorState) {
	t.Helper()
	var states []IndicatorState
	session := NewSession()
	indicator := NewIndicator(func(s IndicatorState) { states = append(states, s) })
	d := NewDispatcher(session, indicator, &Renderer{}, nil)
	d.now = func() time.Time { return time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC) }
	d.Begin()
	return d, session, indicator, &states
}

func TestDispatchHappyPath(t *testing.T) {
	d, session, indicator, states := newTestDispatcher(t)

	d.Dispatch(stream.Start())
	d.Dispatch(stream.Chunk("Hello, "))
	d.Dispatch(stream.Chunk("world."))
	d.Dispatch(stream.Complete("sess-1"))

	if !d.Done() {
		t.Fatal("complete frame must terminate the exchange")
	}
	if !strings.Contains(d.Output(), "Hello, world.") {
		t.Fatalf("output = %q, want accumulated text", d.Output())
	}
	if !strings.Contains(d.Output(), "answered 09:30") {
		t.Fatalf("output = %q, want timestamp marker", d.Output())
	}
	if session.ID() != "sess-1" {
		t.Fatalf("session identity = %q, want sess-1", session.ID())
	}
	if indicator.State() != StateIdle {
		t.Fatalf("indicator = %v, want Idle", indicator.State())
	}
	want := []IndicatorState{StateWaiting, StateStreaming, StateIdle}
	if len(*states) != len(want) {
		t.Fatalf("state sequence = %v, want %v", *states, want)
	}
}

func TestDispatchErrorBeforeContent(t *testing.T) {
	d, _, indicator, states := newTestDispatcher(t)

	d.Dispatch(stream.Start())
	d.Dispatch(stream.Error("model unavailable"))

	if !d.Done() {
		t.Fatal("error frame must terminate the exchange")
	}
	if !strings.Contains(d.Output(), "model unavailable") {
		t.Fatalf("output = %q, want the error text shown as the answer", d.Output())
	}
	if indicator.State() != StateIdle {
		t.Fatal("exchange must be released after an error")
	}
	want := []IndicatorState{StateWaiting, StateFailed, StateIdle}
	for i, s := range want {
		if (*states)[i] != s {
			t.Fatalf("state sequence = %v, want %v", *states, want)
		}
	}
}

func TestDispatchErrorWithEmptyMessageUsesFallback(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)

	d.Dispatch(stream.Start())
	d.Dispatch(stream.Error(""))

	if !strings.Contains(d.Output(), genericFailure) {
		t.Fatalf("output = %q, want generic failure text", d.Output())
	}
}

func TestDispatchErrorAfterPartialContent(t *testing.T) {
	d, _, indicator, _ := newTestDispatcher(t)

	d.Dispatch(stream.Start())
	d.Dispatch(stream.Chunk("Partial answer"))
	d.Dispatch(stream.Error("connection lost"))

	if !strings.Contains(d.Output(), "Partial answer") {
		t.Fatal("partial content must be preserved")
	}
	if !strings.Contains(d.Output(), "connection lost") {
		t.Fatal("failure must be annotated alongside the partial content")
	}
	if indicator.State() != StateIdle {
		t.Fatal("exchange must be released")
	}
}

func TestDispatchIgnoresFramesAfterTerminal(t *testing.T) {
	d, session, _, _ := newTestDispatcher(t)

	d.Dispatch(stream.Start())
	d.Dispatch(stream.Chunk("Answer"))
	d.Dispatch(stream.Complete("sess-1"))
	before := d.Output()

	d.Dispatch(stream.Chunk("late"))
	d.Dispatch(stream.Complete("sess-2"))
	d.Dispatch(stream.Error("late error"))

	if d.Output() != before {
		t.Fatal("frames after the terminal frame must not change the output")
	}
	if session.ID() != "sess-1" {
		t.Fatal("late frames must not rebind the session")
	}
}

func TestDispatchCompleteWithoutSessionIDKeepsSessionUnknown(t *testing.T) {
	d, session, _, _ := newTestDispatcher(t)

	d.Dispatch(stream.Start())
	d.Dispatch(stream.Chunk("ok"))
	d.Dispatch(stream.Complete(""))

	if session.Known() {
		t.Fatal("a complete frame without identity must not adopt one")
	}
}
