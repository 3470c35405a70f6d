package edumentor

import "sync"

// IndicatorState is one phase of the progress indicator lifecycle.
type IndicatorState int

const (
	// StateIdle means no exchange is running; input is enabled.
	StateIdle IndicatorState = iota
	// StateWaiting means a message was submitted and no content has
	// arrived yet.
	StateWaiting
	// StateStreaming means content is arriving; the indicator is hidden
	// because the growing answer itself shows progress.
	StateStreaming
	// StateFailed means the exchange failed before any content arrived.
	StateFailed
)

func (s IndicatorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Indicator is the progress indicator state machine. Transitions are purely
// event-driven: submit, first chunk, error with no prior content, and
// terminal processing. There are no timers.
type Indicator struct {
	mu       sync.Mutex
	state    IndicatorState
	onChange func(IndicatorState)
}

// NewIndicator creates an idle indicator. onChange, if non-nil, observes
// every state change; it is called with the indicator unlocked.
func NewIndicator(onChange func(IndicatorState)) *Indicator {
	return &Indicator{onChange: onChange}
}

// State returns the current state.
func (i *Indicator) State() IndicatorState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Indicator) transition(from, to IndicatorState) bool {
	i.mu.Lock()
	if i.state != from {
		i.mu.Unlock()
		return false
	}
	i.state = to
	i.mu.Unlock()
	if i.onChange != nil {
		i.onChange(to)
	}
	return true
}

// Submit moves Idle to Waiting when an exchange begins.
func (i *Indicator) Submit() bool {
	return i.transition(StateIdle, StateWaiting)
}

// StreamingStarted moves Waiting to Streaming on the first content chunk.
func (i *Indicator) StreamingStarted() bool {
	return i.transition(StateWaiting, StateStreaming)
}

// Failed moves Waiting to Failed when an exchange errors before any
// content arrived.
func (i *Indicator) Failed() bool {
	return i.transition(StateWaiting, StateFailed)
}

// Release returns to Idle once the terminal frame has been processed,
// whatever phase the exchange ended in.
func (i *Indicator) Release() bool {
	i.mu.Lock()
	if i.state == StateIdle {
		i.mu.Unlock()
		return false
	}
	i.state = StateIdle
	i.mu.Unlock()
	if i.onChange != nil {
		i.onChange(StateIdle)
	}
	return true
}
