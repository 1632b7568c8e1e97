package dims

import (
	"github.com/probfold/dimstack/effects"
)

// Scope is a re-entrant scope handler with balanced Enter/Exit pairs.
type Scope interface {
	Enter()
	Exit()
}

// With runs fn inside the scope, releasing it on every exit path
// including panics.
func With(s Scope, fn func() error) error {
	s.Enter()
	defer s.Exit()
	return fn()
}

// scopeCore carries the lifecycle every scope handler shares: reference
// counting, registration on the interception chain, and outermost cleanup
// duty. The first handler to activate on an unowned stack becomes its
// owner; when the owner finally exits it resets the cursor and stashes
// the global frame, and a later activation restores the stash.
type scopeCore struct {
	st    *Stack
	self  effects.Handler
	kind  string
	ref   int
	saved []Binding
}

func (c *scopeCore) enter() {
	if c.ref == 0 {
		if c.st.owner == nil {
			c.st.owner = c
			for _, b := range c.saved {
				c.st.Global().Write(b.Name, b.Dim)
				c.st.emit(Event{Kind: EventRestore, Scope: c.kind, Name: b.Name, Dim: b.Dim})
			}
			c.saved = nil
		}
		c.st.handlers.Push(c.self)
	}
	c.ref++
	c.st.emit(Event{Kind: EventScopeEnter, Scope: c.kind})
}

func (c *scopeCore) exit() {
	if c.ref <= 0 {
		panic("dims: unbalanced scope exit")
	}
	if c.ref == 1 {
		if c.st.owner == c {
			c.st.owner = nil
			c.st.SetFirstAvailableDim(c.st.initialFirst)
			bindings := c.st.Global().Bindings()
			for i := len(bindings) - 1; i >= 0; i-- {
				b := bindings[i]
				c.st.Global().Free(b.Name, b.Dim)
				c.saved = append(c.saved, b)
				c.st.emit(Event{Kind: EventStash, Scope: c.kind, Name: b.Name, Dim: b.Dim})
			}
		}
		c.st.handlers.Remove(c.self)
	}
	c.ref--
	c.st.emit(Event{Kind: EventScopeExit, Scope: c.kind})
}

// namedCore gives a handler the conversion-intercepting behavior: resolve
// the request against the stack and stop propagation, so resolution runs
// exactly once per dispatch no matter how many scopes are active.
type namedCore struct {
	core scopeCore
}

func (n *namedCore) Process(m *effects.Message) {
	switch body := m.Body.(type) {
	case *positionalRequest:
		m.Err = n.core.st.resolvePositional(body)
		m.Stop = true
	case *namedRequest:
		m.Err = n.core.st.resolveNamed(body)
		m.Stop = true
	}
}

func (n *namedCore) Post(*effects.Message) {}

// Cleanup is the bare outermost-cleanup scope. It claims cursor and
// global-frame restoration duty without intercepting conversions.
type Cleanup struct {
	core scopeCore
}

// NewCleanup creates a cleanup scope on st.
func NewCleanup(st *Stack) *Cleanup {
	c := &Cleanup{core: scopeCore{st: st, kind: "cleanup"}}
	c.core.self = c
	return c
}

func (c *Cleanup) Enter() { c.core.enter() }
func (c *Cleanup) Exit()  { c.core.exit() }

// Process implements effects.Handler; cleanup leaves messages alone.
func (c *Cleanup) Process(*effects.Message) {}
func (c *Cleanup) Post(*effects.Message)    {}

// Named is the basic conversion-intercepting scope. It adds no frames and
// no binding lifecycle of its own; it brackets a region where conversions
// resolve against the stack.
type Named struct {
	namedCore
}

// NewNamed creates a named scope on st.
func NewNamed(st *Stack) *Named {
	n := &Named{}
	n.core = scopeCore{st: st, kind: "named", self: n}
	return n
}

func (n *Named) Enter() { n.core.enter() }
func (n *Named) Exit()  { n.core.exit() }
