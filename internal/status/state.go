package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/wppclone/internal/bus"
)

// State is the client's view of its link to the backend.
type State string

const (
	Connecting State = "CONNECTING"
	Online     State = "ONLINE"
	Degraded   State = "DEGRADED"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Connecting: {Online, Degraded},
	Online:     {Degraded},
	Degraded:   {Online},
}

// Machine tracks the backend link state from poll outcomes.
type Machine struct {
	mu      sync.RWMutex
	current State
	lastErr error
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Connecting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Connecting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// LastError returns the error that caused the last degradation, if any.
func (m *Machine) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

// Report records the outcome of a backend request: nil moves the link
// online, anything else degrades it. Repeating the current state is a no-op.
func (m *Machine) Report(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	to := Online
	if err != nil {
		to = Degraded
	}
	m.lastErr = err
	if to == m.current {
		return
	}
	_ = m.transitionLocked(to)
}

func (m *Machine) transitionLocked(to State) error {
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Emit(bus.LinkChanged, StatusChange{From: from, To: to})
	return nil
}

// StatusChange is the payload for link change events.
type StatusChange struct {
	From State
	To   State
}
