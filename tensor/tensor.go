// Package tensor defines the value boundary for dimension allocation:
// named values carry ordered name->size batch axes plus a trailing event
// shape, positional values carry plain shapes. The package is mechanical;
// it knows nothing about scopes or allocation.
package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape is a sequence of axis sizes, leftmost first.
type Shape []int

// Equal reports whether two shapes have identical sizes.
func (s Shape) Equal(t Shape) bool {
	if len(s) != len(t) {
		return false
	}
	for i := range s {
		if s[i] != t[i] {
			return false
		}
	}
	return true
}

// Numel returns the total element count of the shape.
func (s Shape) Numel() int {
	n := 1
	for _, size := range s {
		n *= size
	}
	return n
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, size := range s {
		parts[i] = strconv.Itoa(size)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Shape) clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Axis is one named batch axis.
type Axis struct {
	Name string
	Size int
}

// Named is a value described by its named batch axes plus an event shape.
// Axis order is introduction order, not dim order; batch axes produced by
// conversion always have size > 1.
type Named struct {
	Axes  []Axis
	Event Shape
}

// Names returns the axis names in introduction order.
func (n *Named) Names() []string {
	names := make([]string, len(n.Axes))
	for i, ax := range n.Axes {
		names[i] = ax.Name
	}
	return names
}

// Size returns the size of the named axis, if present.
func (n *Named) Size(name string) (int, bool) {
	for _, ax := range n.Axes {
		if ax.Name == name {
			return ax.Size, true
		}
	}
	return 0, false
}

// Validate checks that axis names are non-empty and unique and sizes are
// positive.
func (n *Named) Validate() error {
	seen := make(map[string]bool, len(n.Axes))
	for _, ax := range n.Axes {
		if ax.Name == "" {
			return fmt.Errorf("tensor: named axis with empty name")
		}
		if ax.Size < 1 {
			return fmt.Errorf("tensor: axis %q has size %d", ax.Name, ax.Size)
		}
		if seen[ax.Name] {
			return fmt.Errorf("tensor: duplicate axis %q", ax.Name)
		}
		seen[ax.Name] = true
	}
	return nil
}

func (n *Named) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, ax := range n.Axes {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s:%d", ax.Name, ax.Size)
	}
	sb.WriteByte('}')
	if len(n.Event) > 0 {
		sb.WriteString(n.Event.String())
	}
	return sb.String()
}

// Positional is a value laid out as a plain shape: batch axes on the left,
// event axes on the right. Dims address batch positions from the right end
// of the batch part, so the rightmost batch axis is dim -1.
type Positional struct {
	Batch Shape
	Event Shape
}

// Shape returns the full batch+event shape.
func (p *Positional) Shape() Shape {
	out := make(Shape, 0, len(p.Batch)+len(p.Event))
	out = append(out, p.Batch...)
	return append(out, p.Event...)
}

// BatchDims returns the dims of batch axes with size > 1, ascending
// (leftmost first). Size-1 axes are padding and carry no name.
func (p *Positional) BatchDims() []int {
	var batchDims []int
	for i, size := range p.Batch {
		if size > 1 {
			batchDims = append(batchDims, i-len(p.Batch))
		}
	}
	return batchDims
}

// Split forms a positional value from a full shape and its event suffix.
func Split(full Shape, event Shape) (*Positional, error) {
	if len(event) > len(full) {
		return nil, fmt.Errorf("tensor: event shape %v longer than full shape %v", event, full)
	}
	cut := len(full) - len(event)
	if !full[cut:].Equal(event) {
		return nil, fmt.Errorf("tensor: event shape %v is not a suffix of %v", event, full)
	}
	return &Positional{Batch: full[:cut].clone(), Event: event.clone()}, nil
}

// Arrange lays the named axes of n out at the dims given by nameToDim,
// producing a positional value. Every axis must be resolved, dims must be
// negative and distinct. Unoccupied batch positions get size 1.
func Arrange(n *Named, nameToDim map[string]int) (*Positional, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	width := 0
	for _, ax := range n.Axes {
		dim, ok := nameToDim[ax.Name]
		if !ok {
			return nil, fmt.Errorf("tensor: axis %q has no resolved dim", ax.Name)
		}
		if dim >= 0 {
			return nil, fmt.Errorf("tensor: axis %q resolved to non-negative dim %d", ax.Name, dim)
		}
		if -dim > width {
			width = -dim
		}
	}
	batch := make(Shape, width)
	for i := range batch {
		batch[i] = 1
	}
	occupied := make(map[int]string, len(n.Axes))
	for _, ax := range n.Axes {
		dim := nameToDim[ax.Name]
		if prev, ok := occupied[dim]; ok {
			return nil, fmt.Errorf("tensor: axes %q and %q both resolved to dim %d", prev, ax.Name, dim)
		}
		occupied[dim] = ax.Name
		batch[width+dim] = ax.Size
	}
	return &Positional{Batch: batch, Event: n.Event.clone()}, nil
}

// Label names the batch axes of p according to dimToName, producing a named
// value. Only batch axes with size > 1 participate; event axes never do.
func Label(p *Positional, dimToName map[int]string) (*Named, error) {
	var axes []Axis
	seen := make(map[string]int)
	for _, dim := range p.BatchDims() {
		name, ok := dimToName[dim]
		if !ok {
			return nil, fmt.Errorf("tensor: batch dim %d has no resolved name", dim)
		}
		if name == "" {
			return nil, fmt.Errorf("tensor: batch dim %d resolved to empty name", dim)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("tensor: dims %d and %d both resolved to name %q", prev, dim, name)
		}
		seen[name] = dim
		axes = append(axes, Axis{Name: name, Size: p.Batch[len(p.Batch)+dim]})
	}
	return &Named{Axes: axes, Event: p.Event.clone()}, nil
}
