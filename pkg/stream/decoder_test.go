package stream

import (
	"bytes"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func encodeAll(t *testing.T, frames []Frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func feedAll(dec *Decoder, chunks [][]byte) []Frame {
	var got []Frame
	for _, c := range chunks {
		got = append(got, dec.Feed(c)...)
	}
	dec.Finish()
	return got
}

func TestDecodeSingleDelivery(t *testing.T) {
	frames := []Frame{
		Start(),
		Chunk("Hello "),
		Chunk("world"),
		Complete("abc"),
	}
	wire := encodeAll(t, frames)

	dec := NewDecoder(zerolog.Nop())
	got := feedAll(dec, [][]byte{wire})
	if !reflect.DeepEqual(got, frames) {
		t.Fatalf("got %+v, want %+v", got, frames)
	}
}

// Feeding the wire bytes one byte at a time must yield the same frames as
// one delivery. This is the worst-case transport fragmentation.
func TestDecodeBytewise(t *testing.T) {
	frames := []Frame{
		Start(),
		Chunk("partial answ"),
		Chunk("er with\nnewline in text"),
		Error("rate limited"),
	}
	wire := encodeAll(t, frames)

	dec := NewDecoder(zerolog.Nop())
	var chunks [][]byte
	for i := range wire {
		chunks = append(chunks, wire[i:i+1])
	}
	got := feedAll(dec, chunks)
	if !reflect.DeepEqual(got, frames) {
		t.Fatalf("got %+v, want %+v", got, frames)
	}
}

// Any way of splitting the serialized bytes into non-empty chunks must
// reconstruct the identical frame sequence.
func TestDecodeBoundaryIndependence(t *testing.T) {
	frames := []Frame{
		Start(),
		Chunk("Hello "),
		Chunk("world"),
		Complete("abc"),
	}
	wire := encodeAll(t, frames)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		var chunks [][]byte
		rest := wire
		for len(rest) > 0 {
			n := 1 + rng.Intn(len(rest))
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}

		dec := NewDecoder(zerolog.Nop())
		got := feedAll(dec, chunks)
		if !reflect.DeepEqual(got, frames) {
			t.Fatalf("trial %d: got %+v, want %+v (splits %d)", trial, got, frames, len(chunks))
		}
	}
}

// Splits landing exactly inside the marker, the JSON payload, and the
// terminating newline.
func TestDecodeSplitMidFrame(t *testing.T) {
	frames := []Frame{Start(), Chunk("hi"), Complete("s1")}
	wire := encodeAll(t, frames)

	for cut := 1; cut < len(wire); cut++ {
		dec := NewDecoder(zerolog.Nop())
		got := feedAll(dec, [][]byte{wire[:cut], wire[cut:]})
		if !reflect.DeepEqual(got, frames) {
			t.Fatalf("cut at %d: got %+v, want %+v", cut, got, frames)
		}
	}
}

func TestDecodeIgnoresNonMarkerLines(t *testing.T) {
	var wire bytes.Buffer
	wire.WriteString(Marker + `{"type":"chunk","content":"a"}` + "\n")
	wire.WriteString(": keep-alive\n")
	wire.WriteString("\n")
	wire.WriteString(Marker + `{"type":"chunk","content":"b"}` + "\n")

	dec := NewDecoder(zerolog.Nop())
	got := dec.Feed(wire.Bytes())
	want := []Frame{Chunk("a"), Chunk("b")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// A malformed line between two valid chunks is skipped and the valid
// chunks still decode in order.
func TestDecodeSkipsMalformedLines(t *testing.T) {
	var wire bytes.Buffer
	wire.WriteString(Marker + `{"type":"chunk","content":"Hello "}` + "\n")
	wire.WriteString(Marker + `{"type":` + "\n")
	wire.WriteString(Marker + `{"type":"telemetry","content":"x"}` + "\n")
	wire.WriteString(Marker + `{"type":"chunk","content":"world"}` + "\n")

	dec := NewDecoder(zerolog.Nop())
	got := dec.Feed(wire.Bytes())
	want := []Frame{Chunk("Hello "), Chunk("world")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodeCRLF(t *testing.T) {
	wire := []byte(Marker + `{"type":"chunk","content":"a"}` + "\r\n")
	dec := NewDecoder(zerolog.Nop())
	got := dec.Feed(wire)
	want := []Frame{Chunk("a")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFinishDropsTrailingFragment(t *testing.T) {
	dec := NewDecoder(zerolog.Nop())
	got := dec.Feed([]byte(Marker + `{"type":"chunk","content":"trunc`))
	if len(got) != 0 {
		t.Fatalf("expected no frames from unterminated line, got %+v", got)
	}
	dec.Finish()

	// The decoder is reusable after Finish; the fragment must not leak
	// into later lines.
	got = dec.Feed([]byte(Marker + `{"type":"chunk","content":"ok"}` + "\n"))
	want := []Frame{Chunk("ok")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
