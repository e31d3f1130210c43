// Package panel implements the product description AI tools panel: a state
// machine and a driver that streams completions into it and saves the
// result back to the product.
package panel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mlorentedev/productai/internal/prompt"
)

// State is the panel's coarse state.
type State int

const (
	Idle State = iota
	Streaming
	ReviewReady
	Saving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case ReviewReady:
		return "review"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrInvalidTransition is returned for an action the current state does not allow.
	ErrInvalidTransition = errors.New("panel: invalid transition")
	// ErrEmptyCompletion is recorded when a stream ends without any text.
	ErrEmptyCompletion = errors.New("panel: empty completion")
)

// Snapshot is a consistent copy of the machine state.
type Snapshot struct {
	State  State
	Active prompt.Type
	Draft  string
	// Err is the last stream or save failure; cleared by the next Start.
	Err error
	Gen uint64
}

// Machine holds the panel state. Every stream is tagged with the generation
// returned by Start; chunks and results of an older generation are dropped.
type Machine struct {
	mu     sync.Mutex
	state  State
	active prompt.Type
	draft  string
	err    error
	gen    uint64
}

// Start begins a new stream for t from any state, discarding the current
// draft and superseding any earlier stream.
func (m *Machine) Start(t prompt.Type) (uint64, error) {
	if _, err := prompt.Lookup(t); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state = Streaming
	m.active = t
	m.draft = ""
	m.err = nil
	return m.gen, nil
}

// Append adds a chunk to the draft. It reports false when gen is no longer
// the live stream.
func (m *Machine) Append(gen uint64, chunk string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.state != Streaming {
		return false
	}
	m.draft += chunk
	return true
}

// Finish ends stream gen. A failed or empty stream returns to Idle with the
// partial draft discarded; otherwise the draft is ready for review.
func (m *Machine) Finish(gen uint64, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.state != Streaming {
		return false
	}
	switch {
	case err != nil:
		m.reset()
		m.err = err
	case m.draft == "":
		m.reset()
		m.err = ErrEmptyCompletion
	default:
		m.state = ReviewReady
	}
	return true
}

// Edit replaces the draft with user-edited text.
func (m *Machine) Edit(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ReviewReady {
		return fmt.Errorf("%w: edit while %s", ErrInvalidTransition, m.state)
	}
	m.draft = text
	return nil
}

// Cancel discards a reviewed draft.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ReviewReady {
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, m.state)
	}
	m.reset()
	return nil
}

// BeginSave moves a reviewed draft to Saving and returns the text to persist.
func (m *Machine) BeginSave() (uint64, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ReviewReady {
		return 0, "", fmt.Errorf("%w: save while %s", ErrInvalidTransition, m.state)
	}
	m.state = Saving
	m.err = nil
	return m.gen, m.draft, nil
}

// EndSave records the update result. Success clears the draft; failure
// keeps it for another attempt.
func (m *Machine) EndSave(gen uint64, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.state != Saving {
		return false
	}
	if err != nil {
		m.state = ReviewReady
		m.err = err
		return true
	}
	m.reset()
	return true
}

// Enabled reports whether the button for t accepts clicks. While streaming
// only the active action stays enabled.
func (m *Machine) Enabled(t prompt.Type) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != Streaming || t == m.active
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, Active: m.active, Draft: m.draft, Err: m.err, Gen: m.gen}
}

// reset must be called with mu held.
func (m *Machine) reset() {
	m.state = Idle
	m.active = ""
	m.draft = ""
	m.err = nil
}
