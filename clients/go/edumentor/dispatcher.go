package edumentor

import (
	"strings"
	"time"

	"github.com/EyadAmgad/EduMentorAI/pkg/stream"
)

// genericFailure stands in when an error frame carries no message.
const genericFailure = "Something went wrong while generating the answer."

// Dispatcher routes decoded frames to the renderer, the indicator and the
// session, in arrival order. One dispatcher serves one exchange; frames
// arriving after the terminal frame are ignored.
type Dispatcher struct {
	session   *Session
	indicator *Indicator
	renderer  *Renderer

	buf      strings.Builder
	output   string
	terminal bool

	onUpdate func(string)
	now      func() time.Time
}

// NewDispatcher creates a dispatcher for one exchange. onUpdate, if
// non-nil, observes every display change with the full rendered output.
func NewDispatcher(session *Session, indicator *Indicator, renderer *Renderer, onUpdate func(string)) *Dispatcher {
	return &Dispatcher{
		session:   session,
		indicator: indicator,
		renderer:  renderer,
		onUpdate:  onUpdate,
		now:       time.Now,
	}
}

// Begin marks the exchange submitted: the indicator shows Waiting until
// content or a terminal frame arrives.
func (d *Dispatcher) Begin() {
	d.indicator.Submit()
}

// Output returns the current display output for the exchange.
func (d *Dispatcher) Output() string {
	return d.output
}

// Done reports whether the terminal frame has been processed.
func (d *Dispatcher) Done() bool {
	return d.terminal
}

// HasContent reports whether any chunk content arrived.
func (d *Dispatcher) HasContent() bool {
	return d.buf.Len() > 0
}

func (d *Dispatcher) show(output string) {
	d.output = output
	if d.onUpdate != nil {
		d.onUpdate(output)
	}
}

// Dispatch processes one frame.
func (d *Dispatcher) Dispatch(f stream.Frame) {
	if d.terminal {
		return
	}

	switch f.Type {
	case stream.TypeStart:
		// Acknowledgement only; the indicator already shows Waiting.

	case stream.TypeChunk:
		if !d.HasContent() {
			d.indicator.StreamingStarted()
		}
		d.buf.WriteString(f.Content)
		d.show(d.renderer.Update(d.buf.String()))

	case stream.TypeComplete:
		d.terminal = true
		marker := d.now().Format("15:04")
		d.show(d.output + "\nanswered " + marker + "\n")
		if f.SessionID != "" {
			d.session.Adopt(f.SessionID)
		}
		d.indicator.Release()

	case stream.TypeError:
		d.terminal = true
		msg := f.Message
		if msg == "" {
			msg = genericFailure
		}
		if d.HasContent() {
			// Keep the partial answer; annotate the failure alongside it.
			d.show(d.output + "\n[answer interrupted: " + msg + "]\n")
		} else {
			d.show(msg + "\n")
			d.indicator.Failed()
		}
		d.indicator.Release()
	}
}
