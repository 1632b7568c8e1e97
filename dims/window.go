package dims

import "fmt"

// Window brackets a region with its own allocation cursor; enumeration
// style scopes build on it. Installing NewWindow(st, -1) as the root
// scope gives a program the full dim range.
type Window struct {
	namedCore
	firstDim int
	prev     int
}

// NewWindow creates a cursor-window scope on st. firstDim must lie in
// (MaxDim, 0).
func NewWindow(st *Stack, firstDim int) *Window {
	if firstDim >= 0 || firstDim <= MaxDim {
		panic(fmt.Sprintf("dims: window first dim %d out of range (%d, 0)", firstDim, MaxDim))
	}
	w := &Window{firstDim: firstDim}
	w.core = scopeCore{st: st, kind: "window", self: w}
	return w
}

func (w *Window) Enter() {
	if w.core.ref == 0 {
		w.prev = w.core.st.SetFirstAvailableDim(w.firstDim)
	}
	w.core.enter()
}

func (w *Window) Exit() {
	if w.core.ref == 1 {
		w.core.st.SetFirstAvailableDim(w.prev)
	}
	w.core.exit()
}
