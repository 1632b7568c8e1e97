package dims

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/probfold/dimstack/effects"
)

var log = commonlog.GetLogger("dimstack.dims")

const (
	// DefaultFirstDim is the allocation cursor of a new Stack. Fresh dims
	// are probed from the cursor downward.
	DefaultFirstDim = -5

	// MaxDim is the deepest allocatable dim. Probing below it is
	// exhaustion, never wraparound.
	MaxDim = -25
)

// Stack is the allocation context: a stack of binding frames rooted at a
// permanent global frame, an allocation cursor, and the interception
// chain scope handlers install themselves on.
//
// A Stack serves one logical execution. It is not safe for concurrent
// use.
type Stack struct {
	// OnEvent, when set, observes every allocation event. Used by the
	// trace sinks; nil by default.
	OnEvent func(Event)

	id           string
	frames       []*Frame
	owner        *scopeCore
	iterAnchor   *Frame
	first        int
	initialFirst int
	handlers     *effects.Stack
}

// StackOption configures a new Stack.
type StackOption func(*Stack)

// WithFirstDim sets the initial allocation cursor. Outermost-scope
// cleanup resets the cursor to this value, not to DefaultFirstDim.
func WithFirstDim(dim int) StackOption {
	return func(s *Stack) {
		if dim >= 0 || dim <= MaxDim {
			panic(fmt.Sprintf("dims: first dim %d out of range (%d, 0)", dim, MaxDim))
		}
		s.first = dim
		s.initialFirst = dim
	}
}

// NewStack creates a stack holding only its global frame, with the cursor
// at DefaultFirstDim.
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{
		id:           uuid.New().String(),
		frames:       []*Frame{NewFrame(0, false)},
		first:        DefaultFirstDim,
		initialFirst: DefaultFirstDim,
		handlers:     effects.NewStack(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the stack's session id.
func (s *Stack) ID() string {
	return s.id
}

// Handlers returns the interception chain conversions dispatch through.
func (s *Stack) Handlers() *effects.Stack {
	return s.handlers
}

// Global returns the permanent global frame.
func (s *Stack) Global() *Frame {
	return s.frames[0]
}

// Current returns the innermost frame. With no local scopes active this
// is the global frame.
func (s *Stack) Current() *Frame {
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames pushed above the global frame.
func (s *Stack) Depth() int {
	return len(s.frames) - 1
}

// Push makes f the current frame.
func (s *Stack) Push(f *Frame) {
	if f == nil {
		panic("dims: push of nil frame")
	}
	s.frames = append(s.frames, f)
}

// Pop removes and returns the current frame. Popping the global frame is
// a scope discipline violation and panics.
func (s *Stack) Pop() *Frame {
	if len(s.frames) == 1 {
		panic("dims: pop of global frame")
	}
	f := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	if !f.Keep {
		for _, b := range f.Bindings() {
			s.emit(Event{Kind: EventFree, Name: b.Name, Dim: b.Dim})
		}
	}
	return f
}

// FirstAvailableDim returns the allocation cursor.
func (s *Stack) FirstAvailableDim() int {
	return s.first
}

// SetFirstAvailableDim moves the allocation cursor and returns the
// previous value. The cursor must stay within (MaxDim, 0).
func (s *Stack) SetFirstAvailableDim(dim int) int {
	if dim >= 0 || dim <= MaxDim {
		panic(fmt.Sprintf("dims: first available dim %d out of range (%d, 0)", dim, MaxDim))
	}
	prev := s.first
	s.first = dim
	s.emit(Event{Kind: EventCursor, Dim: dim})
	log.Debugf("cursor %d -> %d", prev, dim)
	return prev
}

// localWindow returns the frames visible from the current frame: itself,
// up to History enclosing local frames nearest first, and the global
// frame last.
func (s *Stack) localWindow() []*Frame {
	top := len(s.frames) - 1
	if top == 0 {
		return []*Frame{s.frames[0]}
	}
	cur := s.frames[top]
	window := make([]*Frame, 0, cur.History+2)
	window = append(window, cur)
	for i := 1; i <= cur.History && top-i >= 1; i++ {
		window = append(window, s.frames[top-i])
	}
	return append(window, s.frames[0])
}

// readFrames returns the lookup window for a request: the local window
// for local requests, the global frame alone otherwise.
func (s *Stack) readFrames(t DimType) []*Frame {
	if t != DimLocal {
		return []*Frame{s.Global()}
	}
	return s.localWindow()
}

// conflictFrames returns the frames a new allocation must not collide
// with.
func (s *Stack) conflictFrames(t DimType) []*Frame {
	if t != DimLocal {
		if s.Current() == s.Global() {
			return []*Frame{s.Global()}
		}
		return []*Frame{s.Current(), s.Global()}
	}
	return s.localWindow()
}

func (s *Stack) emit(ev Event) {
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}
