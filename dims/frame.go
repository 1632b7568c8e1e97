package dims

// Binding is one live name<->dim pair.
type Binding struct {
	Name string
	Dim  int
}

// Frame is one scope's binding table. The two maps are exact inverses
// after every operation, and insertion order of live names is preserved
// for stashing and inspection.
type Frame struct {
	// History is how many enclosing frames are visible from this frame
	// for lookup and conflict purposes.
	History int

	// Keep marks the frame for archival on pop, enabling replay.
	Keep bool

	nameToDim map[string]int
	dimToName map[int]string
	order     []string
}

// NewFrame creates an empty frame with the given visibility window.
func NewFrame(history int, keep bool) *Frame {
	return &Frame{
		History:   history,
		Keep:      keep,
		nameToDim: make(map[string]int),
		dimToName: make(map[int]string),
	}
}

// Write inserts the pair, first unlinking any existing binding of either
// the name or the dim so bijectivity holds afterwards.
func (f *Frame) Write(name string, dim int) {
	if name == "" {
		panic("dims: write of empty name")
	}
	if dim >= 0 {
		panic("dims: write of non-negative dim")
	}
	if old, ok := f.nameToDim[name]; ok {
		f.Free(name, old)
	}
	if old, ok := f.dimToName[dim]; ok {
		f.Free(old, dim)
	}
	f.nameToDim[name] = dim
	f.dimToName[dim] = name
	f.order = append(f.order, name)
}

// Free deletes both directions of the pair. Absent keys are ignored.
func (f *Frame) Free(name string, dim int) {
	delete(f.nameToDim, name)
	delete(f.dimToName, dim)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Dim returns the dim bound to name, if any.
func (f *Frame) Dim(name string) (int, bool) {
	dim, ok := f.nameToDim[name]
	return dim, ok
}

// Name returns the name bound to dim, if any.
func (f *Frame) Name(dim int) (string, bool) {
	name, ok := f.dimToName[dim]
	return name, ok
}

// Len returns the number of live bindings.
func (f *Frame) Len() int {
	return len(f.nameToDim)
}

// Bindings returns the live pairs in insertion order.
func (f *Frame) Bindings() []Binding {
	out := make([]Binding, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, Binding{Name: name, Dim: f.nameToDim[name]})
	}
	return out
}
