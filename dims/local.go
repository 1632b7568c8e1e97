package dims

import "iter"

// Local brackets a history-bounded scope. Every Enter pushes a frame and
// every Exit pops it, so nested activations accumulate frames and a
// binding resolved in one activation slides out of view after History
// further activations unless it is referenced again.
type Local struct {
	namedCore
	history int
	keep    bool
	archive []*Frame
}

// LocalOption configures a Local scope.
type LocalOption func(*Local)

// History sets how many enclosing frames each activation can see.
// History 0 makes sibling activations fully independent.
func History(n int) LocalOption {
	return func(l *Local) { l.history = n }
}

// Keep archives popped frames for replay: a later activation resumes from
// the earliest archived frame instead of starting empty, so re-executed
// branches observe the bindings of their previous run.
func Keep(keep bool) LocalOption {
	return func(l *Local) { l.keep = keep }
}

// NewLocal creates a local scope with history 1 and no replay.
func NewLocal(st *Stack, opts ...LocalOption) *Local {
	l := &Local{history: 1}
	l.core = scopeCore{st: st, kind: "local", self: l}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) Enter() {
	var frame *Frame
	if l.keep && len(l.archive) > 0 {
		frame = l.archive[len(l.archive)-1]
		l.archive = l.archive[:len(l.archive)-1]
	} else {
		frame = NewFrame(l.history, l.keep)
	}
	l.core.st.Push(frame)
	l.core.enter()
}

func (l *Local) Exit() {
	popped := l.core.st.Pop()
	if l.keep {
		l.archive = append(l.archive, popped)
	}
	l.core.exit()
}

// Range iterates 0..n-1, re-entering the scope once per step so that the
// steps nest: step i sees the frames of the History previous steps. All
// accumulated entries are released when the loop finishes or breaks, and
// the previous iteration anchor is restored so loops nest.
func (l *Local) Range(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		st := l.core.st
		prev := st.iterAnchor
		st.iterAnchor = st.Current()
		entered := 0
		defer func() {
			for ; entered > 0; entered-- {
				l.Exit()
			}
			st.iterAnchor = prev
		}()
		for i := 0; i < n; i++ {
			l.Enter()
			entered++
			if !yield(i) {
				return
			}
		}
	}
}

// Iterate wraps an arbitrary sequence the way Range wraps integers.
func Iterate[T any](l *Local, seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		st := l.core.st
		prev := st.iterAnchor
		st.iterAnchor = st.Current()
		entered := 0
		defer func() {
			for ; entered > 0; entered-- {
				l.Exit()
			}
			st.iterAnchor = prev
		}()
		for v := range seq {
			l.Enter()
			entered++
			if !yield(v) {
				return
			}
		}
	}
}
