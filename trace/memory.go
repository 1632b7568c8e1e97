package trace

import (
	"sync"

	"github.com/probfold/dimstack/dims"
)

// Memory buffers events in recording order. It backs tests and any tool
// that wants events without touching disk.
type Memory struct {
	mu     sync.Mutex
	events []dims.Event
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends one event. The signature matches dims.Stack.OnEvent.
func (m *Memory) Record(ev dims.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// Events returns a copy of the recorded events.
func (m *Memory) Events() []dims.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dims.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Count returns how many events of the given kind were recorded.
func (m *Memory) Count(kind dims.EventKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards all recorded events.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
