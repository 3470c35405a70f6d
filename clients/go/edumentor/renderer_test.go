package edumentor

import (
	"strings"
	"testing"
)

func TestRendererIdempotent(t *testing.T) {
	r := NewRenderer()
	text := "# Heading\n\nSome **bold** text with\n\n- one\n- two\n"

	first := r.Update(text)
	second := r.Update(text)
	if first != second {
		t.Fatal("same input must produce identical output")
	}
}

func TestRendererIncrementalEqualsFinal(t *testing.T) {
	r := NewRenderer()
	full := "Answer part one. Answer part two.\n\n**Done.**"

	// Feed growing prefixes the way chunks arrive; only the last result
	// matters and it must match a single render of the full text.
	var last string
	for i := 1; i <= len(full); i += 7 {
		last = r.Update(full[:i])
	}
	last = r.Update(full)

	if want := NewRenderer().Update(full); last != want {
		t.Fatal("N incremental updates must end identical to one final update")
	}
}

func TestRendererFallbackPreservesLineBreaks(t *testing.T) {
	r := &Renderer{} // no glamour renderer, forces the raw path
	text := "line one\r\nline two\nline three"

	got := r.Update(text)
	if !strings.Contains(got, "line one\nline two\nline three") {
		t.Fatalf("fallback output = %q, want raw text with line breaks", got)
	}
}

func TestRendererNeverEmptyOnNonMarkdown(t *testing.T) {
	r := NewRenderer()
	got := r.Update("plain text, no markdown at all")
	if strings.TrimSpace(got) == "" {
		t.Fatal("rendering must never swallow the answer")
	}
}
