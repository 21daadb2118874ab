package animate

import (
	"log/slog"
	"sync"
)

// StateMachine switches a widget between named property sets. The compiler
// registers an applier per state; Set runs the requested one. Unknown state
// names are logged and ignored, matching the forgiving posture of the rest
// of the directive layer. There is no transition validation: any state may
// follow any other.
type StateMachine struct {
	node string
	log  *slog.Logger

	mu       sync.Mutex
	current  string
	appliers map[string]func() error
}

// NewStateMachine creates an empty machine for the given node.
func NewStateMachine(node string) *StateMachine {
	return &StateMachine{
		node:     node,
		log:      slog.Default().With("component", "animate"),
		appliers: make(map[string]func() error),
	}
}

// Define registers the applier for a state name, replacing any previous one.
func (m *StateMachine) Define(name string, apply func() error) {
	m.mu.Lock()
	m.appliers[name] = apply
	m.mu.Unlock()
}

// Names returns the defined state names, in no particular order.
func (m *StateMachine) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.appliers))
	for name := range m.appliers {
		out = append(out, name)
	}
	return out
}

// Set switches to the named state. An unknown name is logged and leaves the
// widget untouched.
func (m *StateMachine) Set(name string) error {
	m.mu.Lock()
	apply, ok := m.appliers[name]
	if ok {
		m.current = name
	}
	m.mu.Unlock()

	if !ok {
		m.log.Warn("unknown state", "node", m.node, "state", name)
		return nil
	}
	return apply()
}

// Current returns the most recently applied state name, or "" before any
// successful Set.
func (m *StateMachine) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
