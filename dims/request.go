package dims

import "fmt"

// DimType is the visibility class of a request.
type DimType int

const (
	// DimLocal bindings live in the current frame and are visible through
	// the history window.
	DimLocal DimType = iota

	// DimGlobal bindings live in the global frame until their owning
	// scope handler finally exits.
	DimGlobal

	// DimVisible bindings cross scope boundaries like global ones but are
	// recycled the same way; allocation treats them as global.
	DimVisible
)

func (t DimType) String() string {
	switch t {
	case DimLocal:
		return "local"
	case DimGlobal:
		return "global"
	case DimVisible:
		return "visible"
	default:
		return "unknown"
	}
}

// NameRequest asks for a name for a positional axis. An empty Name means
// "synthesize one".
type NameRequest struct {
	Name string
	Type DimType
}

// DimRequest asks for a dim for a named axis. A zero Dim means "any
// fresh dim".
type DimRequest struct {
	Dim  int
	Type DimType
}

// RequestDim resolves a named axis to a dim (the to-positional
// direction). An existing binding of the name wins; otherwise want.Dim is
// bound exactly when non-zero, or a fresh dim is probed from the cursor.
func (s *Stack) RequestDim(name string, want DimRequest) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("dims: dim request with empty name")
	}
	if f, dim, ok := s.findName(name, want.Type); ok {
		s.refresh(f, name, dim, want.Type)
		return dim, nil
	}
	_, dim, err := s.bind(name, want.Dim, want.Type)
	return dim, err
}

// RequestName resolves a positional axis to a name (the to-named
// direction). dim is the value's own axis; it serves as the lookup key
// only when want.Name is empty. A named miss binds want.Name to a fresh
// cursor dim, an anonymous miss binds a synthesized name (the reserved
// _dim_N form) to dim itself so a bare round trip reproduces the layout.
func (s *Stack) RequestName(dim int, want NameRequest) (string, error) {
	if dim >= 0 {
		return "", fmt.Errorf("dims: name request for non-negative dim %d", dim)
	}
	if want.Name != "" {
		if f, bound, ok := s.findName(want.Name, want.Type); ok {
			s.refresh(f, want.Name, bound, want.Type)
			return want.Name, nil
		}
		name, _, err := s.bind(want.Name, 0, want.Type)
		return name, err
	}
	if f, name, ok := s.findDim(dim, want.Type); ok {
		s.refresh(f, name, dim, want.Type)
		return name, nil
	}
	name, _, err := s.bind("", dim, want.Type)
	return name, err
}

func (s *Stack) findName(name string, t DimType) (*Frame, int, bool) {
	for _, f := range s.readFrames(t) {
		if dim, ok := f.Dim(name); ok {
			return f, dim, true
		}
	}
	return nil, 0, false
}

func (s *Stack) findDim(dim int, t DimType) (*Frame, string, bool) {
	for _, f := range s.readFrames(t) {
		if name, ok := f.Name(dim); ok {
			return f, name, true
		}
	}
	return nil, "", false
}

// refresh migrates a binding found in a history parent into the current
// frame so it stays visible as the window slides. Hits in the current or
// global frame stay put.
func (s *Stack) refresh(f *Frame, name string, dim int, t DimType) {
	if t != DimLocal || f == s.Current() || f == s.Global() {
		return
	}
	f.Free(name, dim)
	s.Current().Write(name, dim)
	log.Debugf("refresh %s=%d into current frame", name, dim)
}

// bind writes a new binding into the frame selected by t. An empty name
// is synthesized from the resolved dim; exact == 0 probes fresh from the
// cursor.
func (s *Stack) bind(name string, exact int, t DimType) (string, int, error) {
	conflict := s.conflictFrames(t)
	dim := exact
	if dim == 0 {
		dim = s.first
		for dimTaken(dim, conflict) {
			dim--
		}
		if dim < MaxDim {
			return "", 0, fmt.Errorf("dims: no free dim in [%d, %d]: %w", MaxDim, s.first, ErrExhausted)
		}
	} else {
		if dim >= 0 {
			return "", 0, fmt.Errorf("dims: requested dim %d is not negative", dim)
		}
		if dim < MaxDim {
			return "", 0, fmt.Errorf("dims: requested dim %d below limit %d: %w", dim, MaxDim, ErrExhausted)
		}
		if dimTaken(dim, conflict) {
			return "", 0, fmt.Errorf("dims: dim %d: %w", dim, ErrDimConflict)
		}
	}
	if name == "" {
		name = fmt.Sprintf("_dim_%d", -dim)
	}
	target := s.Current()
	if t != DimLocal {
		target = s.Global()
	}
	target.Write(name, dim)
	s.emit(Event{Kind: EventBind, Scope: t.String(), Name: name, Dim: dim})
	log.Debugf("bind %s=%d (%s)", name, dim, t)
	return name, dim, nil
}

func dimTaken(dim int, frames []*Frame) bool {
	for _, f := range frames {
		if _, ok := f.Name(dim); ok {
			return true
		}
	}
	return false
}
