// Package effects implements the interception stack that conversion
// requests are dispatched through. Handlers are pushed innermost-last. A
// dispatched message visits handlers from innermost to outermost until one
// of them stops it, the default behavior runs unless a handler already
// produced the result, and exactly the handlers that saw the message
// post-process it in the opposite order.
package effects

// Message carries one interceptable operation through the handler stack.
// Body is the operation payload and is mutated in place by handlers.
type Message struct {
	Kind string
	Body any

	// Err records a failure during processing; later handlers and the
	// default behavior should leave a failed message alone.
	Err error

	// Stop prevents propagation to handlers further out.
	Stop bool

	// Done marks the default behavior as already performed.
	Done bool
}

// Handler intercepts messages. Process runs on the way out (innermost
// first), Post runs on the way back for every handler whose Process ran.
// Implementations must be comparable by identity (pointer receivers).
type Handler interface {
	Process(*Message)
	Post(*Message)
}

// Stack is an ordered set of active handlers. It is not safe for
// concurrent use, and the handler set must not change during a Dispatch.
type Stack struct {
	handlers []Handler
}

// NewStack returns an empty handler stack.
func NewStack() *Stack {
	return &Stack{}
}

// Len returns the number of active handlers.
func (s *Stack) Len() int {
	return len(s.handlers)
}

// Push installs h as the new innermost handler.
func (s *Stack) Push(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Remove uninstalls h, which must be the innermost handler. Out-of-order
// removal is a scope discipline violation and panics.
func (s *Stack) Remove(h Handler) {
	if len(s.handlers) == 0 {
		panic("effects: remove on empty handler stack")
	}
	top := s.handlers[len(s.handlers)-1]
	if top != h {
		panic("effects: remove of non-innermost handler")
	}
	s.handlers[len(s.handlers)-1] = nil
	s.handlers = s.handlers[:len(s.handlers)-1]
}

// Dispatch sends m through the stack. deflt supplies the default behavior
// and may be nil.
func (s *Stack) Dispatch(m *Message, deflt func(*Message)) {
	processed := 0
	for i := len(s.handlers) - 1; i >= 0; i-- {
		processed++
		s.handlers[i].Process(m)
		if m.Stop {
			break
		}
	}
	if !m.Done {
		if deflt != nil {
			deflt(m)
		}
		m.Done = true
	}
	for i := len(s.handlers) - processed; i < len(s.handlers); i++ {
		s.handlers[i].Post(m)
	}
}
