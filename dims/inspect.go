package dims

import (
	"fmt"
	"strings"
)

// FrameInfo describes a single frame in an inspection report.
type FrameInfo struct {
	Index    int
	Global   bool
	History  int
	Keep     bool
	Bindings []Binding
}

// StackInfo is a point-in-time report of allocator state, suitable for
// logging and debugging tools.
type StackInfo struct {
	Session        string
	Depth          int
	FirstAvailable int
	Owned          bool
	Iterating      bool
	Frames         []FrameInfo
}

// Inspect reports the current allocator state. The returned value is a
// copy; mutating it does not affect the stack.
func (s *Stack) Inspect() *StackInfo {
	info := &StackInfo{
		Session:        s.id,
		Depth:          s.Depth(),
		FirstAvailable: s.first,
		Owned:          s.owner != nil,
		Iterating:      s.iterAnchor != nil,
	}
	for i, f := range s.frames {
		info.Frames = append(info.Frames, FrameInfo{
			Index:    i,
			Global:   i == 0,
			History:  f.History,
			Keep:     f.Keep,
			Bindings: f.Bindings(),
		})
	}
	return info
}

// String renders the report as a multi-line listing, outermost frame
// first.
func (info *StackInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stack %s: depth %d, first available %d", info.Session, info.Depth, info.FirstAvailable)
	if info.Owned {
		sb.WriteString(", owned")
	}
	if info.Iterating {
		sb.WriteString(", iterating")
	}
	sb.WriteByte('\n')
	for _, f := range info.Frames {
		label := fmt.Sprintf("frame %d", f.Index)
		if f.Global {
			label = "global frame"
		}
		fmt.Fprintf(&sb, "  %s (history %d", label, f.History)
		if f.Keep {
			sb.WriteString(", keep")
		}
		if len(f.Bindings) == 0 {
			sb.WriteString("): empty\n")
			continue
		}
		sb.WriteString("):\n")
		for _, b := range f.Bindings {
			fmt.Fprintf(&sb, "    %s = %d\n", b.Name, b.Dim)
		}
	}
	return sb.String()
}
