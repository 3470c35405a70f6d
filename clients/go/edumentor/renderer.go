package edumentor

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns the accumulated answer text into display output. Every
// update re-renders the complete text from scratch, so the result depends
// only on the input: N incremental updates end in exactly the same output
// as a single final update.
type Renderer struct {
	tr *glamour.TermRenderer
}

// NewRenderer creates a markdown renderer. A glamour setup failure is
// tolerated; rendering then falls back to raw text.
func NewRenderer() *Renderer {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		tr = nil
	}
	return &Renderer{tr: tr}
}

// Update renders the full accumulated text. Markdown failures fall back to
// the raw text with line breaks preserved; rendering never fails an
// exchange.
func (r *Renderer) Update(fullText string) string {
	if r.tr != nil {
		out, err := r.tr.Render(fullText)
		if err == nil {
			return out
		}
	}
	return rawFallback(fullText)
}

// rawFallback normalizes line endings but otherwise leaves the text as-is.
func rawFallback(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
