package dims

import (
	"fmt"

	"github.com/probfold/dimstack/effects"
	"github.com/probfold/dimstack/tensor"
)

// Conversion message kinds on the interception chain.
const (
	KindToPositional = "to-positional"
	KindToNamed      = "to-named"
)

// positionalRequest is the payload of a to-positional dispatch.
type positionalRequest struct {
	value     *tensor.Named
	nameToDim map[string]int
	dimType   DimType
	resolved  bool
	result    *tensor.Positional
}

// namedRequest is the payload of a to-named dispatch.
type namedRequest struct {
	value     *tensor.Positional
	dimToName map[int]string
	dimType   DimType
	resolved  bool
	result    *tensor.Named
}

type convertConfig struct {
	nameToDim map[string]int
	dimToName map[int]string
	dimType   DimType
	event     tensor.Shape
}

// ConvertOption adjusts a single conversion.
type ConvertOption func(*convertConfig)

// WithNameToDim supplies the name resolution map for a to-positional
// conversion. The map is filled in place: after the call it maps every
// batch axis to its resolved dim. It must be complete or empty up front.
func WithNameToDim(m map[string]int) ConvertOption {
	return func(c *convertConfig) { c.nameToDim = m }
}

// WithDimToName supplies the name map for a to-named conversion, filled
// in place like WithNameToDim.
func WithDimToName(m map[int]string) ConvertOption {
	return func(c *convertConfig) { c.dimToName = m }
}

// WithDimType sets the visibility class of every binding the conversion
// creates. The default is DimLocal.
func WithDimType(t DimType) ConvertOption {
	return func(c *convertConfig) { c.dimType = t }
}

// WithEvent splits the trailing event shape off the positional value
// before a to-named conversion.
func WithEvent(shape tensor.Shape) ConvertOption {
	return func(c *convertConfig) { c.event = shape }
}

func applyOptions(opts []ConvertOption) *convertConfig {
	cfg := &convertConfig{dimType: DimLocal}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ToPositional resolves every named axis of v to a dim and lays the
// value out positionally. Resolution runs exactly once through the
// handler chain; with no named scope installed it runs directly against
// the stack.
func (s *Stack) ToPositional(v *tensor.Named, opts ...ConvertOption) (*tensor.Positional, error) {
	cfg := applyOptions(opts)
	body := &positionalRequest{
		value:     v,
		nameToDim: cfg.nameToDim,
		dimType:   cfg.dimType,
	}
	if body.nameToDim == nil {
		body.nameToDim = make(map[string]int)
	}
	m := &effects.Message{Kind: KindToPositional, Body: body}
	s.handlers.Dispatch(m, func(m *effects.Message) {
		if m.Err == nil && !body.resolved {
			m.Err = s.resolvePositional(body)
		}
		if m.Err != nil {
			return
		}
		result, err := tensor.Arrange(body.value, body.nameToDim)
		if err != nil {
			m.Err = err
			return
		}
		body.result = result
	})
	if m.Err != nil {
		return nil, m.Err
	}
	return body.result, nil
}

// ToNamed resolves every batch axis of v (size > 1, event axes excluded)
// to a name and returns the named value. Resolution runs exactly once
// through the handler chain.
func (s *Stack) ToNamed(v *tensor.Positional, opts ...ConvertOption) (*tensor.Named, error) {
	cfg := applyOptions(opts)
	value := v
	if cfg.event != nil {
		split, err := tensor.Split(v.Shape(), cfg.event)
		if err != nil {
			return nil, err
		}
		value = split
	}
	body := &namedRequest{
		value:     value,
		dimToName: cfg.dimToName,
		dimType:   cfg.dimType,
	}
	if body.dimToName == nil {
		body.dimToName = make(map[int]string)
	}
	m := &effects.Message{Kind: KindToNamed, Body: body}
	s.handlers.Dispatch(m, func(m *effects.Message) {
		if m.Err == nil && !body.resolved {
			m.Err = s.resolveNamed(body)
		}
		if m.Err != nil {
			return
		}
		result, err := tensor.Label(body.value, body.dimToName)
		if err != nil {
			m.Err = err
			return
		}
		body.result = result
	})
	if m.Err != nil {
		return nil, m.Err
	}
	return body.result, nil
}

// resolvePositional fills the name->dim map for every batch axis of the
// value, in axis order.
func (s *Stack) resolvePositional(r *positionalRequest) error {
	if r.resolved {
		return nil
	}
	r.resolved = true
	if err := r.value.Validate(); err != nil {
		return err
	}
	names := r.value.Names()
	if err := coverNames(names, r.nameToDim); err != nil {
		return err
	}
	for _, name := range names {
		dim, err := s.RequestDim(name, DimRequest{Dim: r.nameToDim[name], Type: r.dimType})
		if err != nil {
			return err
		}
		r.nameToDim[name] = dim
	}
	return nil
}

// resolveNamed fills the dim->name map for every batch axis of the
// value, leftmost first.
func (s *Stack) resolveNamed(r *namedRequest) error {
	if r.resolved {
		return nil
	}
	r.resolved = true
	batchDims := r.value.BatchDims()
	if err := coverDims(batchDims, r.dimToName); err != nil {
		return err
	}
	for _, dim := range batchDims {
		name, err := s.RequestName(dim, NameRequest{Name: r.dimToName[dim], Type: r.dimType})
		if err != nil {
			return err
		}
		r.dimToName[dim] = name
	}
	return nil
}

// coverNames checks the complete-or-empty rule for a name map.
func coverNames(names []string, m map[string]int) error {
	if len(m) == 0 {
		return nil
	}
	if len(m) != len(names) {
		return fmt.Errorf("dims: name map covers %d of %d axes: %w", len(m), len(names), ErrPartialMap)
	}
	for _, name := range names {
		if _, ok := m[name]; !ok {
			return fmt.Errorf("dims: name map missing axis %q: %w", name, ErrPartialMap)
		}
	}
	return nil
}

// coverDims checks the complete-or-empty rule for a dim map.
func coverDims(batchDims []int, m map[int]string) error {
	if len(m) == 0 {
		return nil
	}
	if len(m) != len(batchDims) {
		return fmt.Errorf("dims: dim map covers %d of %d axes: %w", len(m), len(batchDims), ErrPartialMap)
	}
	for _, dim := range batchDims {
		if _, ok := m[dim]; !ok {
			return fmt.Errorf("dims: dim map missing dim %d: %w", dim, ErrPartialMap)
		}
	}
	return nil
}
