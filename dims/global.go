package dims

import (
	"github.com/probfold/dimstack/effects"
	"github.com/probfold/dimstack/tensor"
)

// Global brackets a region whose global and visible conversion bindings
// outlive nested scopes. The handler records every such binding resolved
// while it is active; on final exit they are freed from the global frame,
// and the next activation restores them verbatim before re-recording.
type Global struct {
	namedCore
	saved []Binding
}

// NewGlobal creates a global-binding scope on st.
func NewGlobal(st *Stack) *Global {
	g := &Global{}
	g.core = scopeCore{st: st, kind: "global", self: g}
	return g
}

func (g *Global) Enter() {
	if g.core.ref == 0 {
		for _, b := range g.saved {
			g.core.st.Global().Write(b.Name, b.Dim)
			g.core.st.emit(Event{Kind: EventRestore, Scope: "global", Name: b.Name, Dim: b.Dim})
		}
		g.saved = nil
	}
	g.core.enter()
}

func (g *Global) Exit() {
	if g.core.ref == 1 {
		for _, b := range g.saved {
			g.core.st.Global().Free(b.Name, b.Dim)
			g.core.st.emit(Event{Kind: EventFree, Scope: "global", Name: b.Name, Dim: b.Dim})
		}
	}
	g.core.exit()
}

// Post records the global-frame bindings of every global or visible
// conversion completed while the handler is active.
func (g *Global) Post(m *effects.Message) {
	var value *tensor.Named
	var t DimType
	switch body := m.Body.(type) {
	case *positionalRequest:
		value, t = body.value, body.dimType
	case *namedRequest:
		value, t = body.result, body.dimType
	default:
		return
	}
	if m.Err != nil || value == nil || (t != DimGlobal && t != DimVisible) {
		return
	}
	for _, name := range value.Names() {
		if dim, ok := g.core.st.Global().Dim(name); ok {
			g.saved = append(g.saved, Binding{Name: name, Dim: dim})
		}
	}
}
