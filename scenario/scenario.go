// Package scenario handles TOML allocation scenarios: declarative
// scripts of scope operations and conversions that the dimtrace CLI
// replays against a fresh stack.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/probfold/dimstack/dims"
)

// ErrInvalid indicates a scenario that parsed but fails validation.
var ErrInvalid = errors.New("invalid scenario")

// Step operations.
const (
	OpEnter        = "enter"
	OpExit         = "exit"
	OpToPositional = "to-positional"
	OpToNamed      = "to-named"
	OpInspect      = "inspect"
)

// Scope kinds.
const (
	KindLocal   = "local"
	KindGlobal  = "global"
	KindNamed   = "named"
	KindWindow  = "window"
	KindCleanup = "cleanup"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Stack StackConfig `toml:"stack"`
	Steps []Step      `toml:"step"`

	// Path is the file the scenario was loaded from (set at load time).
	Path string `toml:"-"`
}

// StackConfig configures the stack the scenario runs on.
type StackConfig struct {
	// FirstAvailableDim is the initial allocation cursor. Zero means the
	// library default.
	FirstAvailableDim int `toml:"first-available-dim"`
}

// Step is one scripted operation.
type Step struct {
	Op    string `toml:"op"`
	Scope string `toml:"scope"`
	Kind  string `toml:"kind"`

	// History is the local scope's visibility window. Omitted means 1;
	// an explicit 0 makes sibling activations independent.
	History *int `toml:"history"`
	Keep    bool `toml:"keep"`

	// FirstDim is the window scope's cursor.
	FirstDim int `toml:"first-dim"`

	DimType string `toml:"dim-type"`

	// Axes is the named input of a to-positional step, in axis order.
	Axes []AxisConfig `toml:"axes"`

	// Shape and Event describe the positional input of a to-named step.
	Shape []int `toml:"shape"`
	Event []int `toml:"event"`

	NameToDim map[string]int    `toml:"name-to-dim"`
	DimToName map[string]string `toml:"dim-to-name"`
}

// AxisConfig is one named input axis.
type AxisConfig struct {
	Name string `toml:"name"`
	Size int    `toml:"size"`
}

// Load parses and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var sc Scenario
	if err := toml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	sc.Path = path

	// Defaults
	if sc.Stack.FirstAvailableDim == 0 {
		sc.Stack.FirstAvailableDim = dims.DefaultFirstDim
	}
	for i := range sc.Steps {
		step := &sc.Steps[i]
		if step.History == nil {
			one := 1
			step.History = &one
		}
		if step.DimType == "" {
			step.DimType = "local"
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the scenario statically: known operations and kinds,
// scope balance, legal axes and maps.
func (sc *Scenario) Validate() error {
	if d := sc.Stack.FirstAvailableDim; d >= 0 || d <= dims.MaxDim {
		return fmt.Errorf("first-available-dim %d out of range (%d, 0): %w", d, dims.MaxDim, ErrInvalid)
	}

	kinds := make(map[string]string)
	depth := make(map[string]int)
	for i, step := range sc.Steps {
		if err := sc.validateStep(step, kinds, depth); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	for scope, n := range depth {
		if n != 0 {
			return fmt.Errorf("scope %q left entered %d time(s): %w", scope, n, ErrInvalid)
		}
	}
	return nil
}

func (sc *Scenario) validateStep(step Step, kinds map[string]string, depth map[string]int) error {
	switch step.Op {
	case OpEnter:
		if step.Scope == "" {
			return fmt.Errorf("enter without scope id: %w", ErrInvalid)
		}
		if known, ok := kinds[step.Scope]; ok {
			if step.Kind != "" && step.Kind != known {
				return fmt.Errorf("scope %q is %s, not %s: %w", step.Scope, known, step.Kind, ErrInvalid)
			}
		} else {
			switch step.Kind {
			case KindLocal, KindGlobal, KindNamed, KindCleanup:
			case KindWindow:
				if step.FirstDim >= 0 || step.FirstDim <= dims.MaxDim {
					return fmt.Errorf("window first-dim %d out of range (%d, 0): %w", step.FirstDim, dims.MaxDim, ErrInvalid)
				}
			case "":
				return fmt.Errorf("first enter of scope %q needs a kind: %w", step.Scope, ErrInvalid)
			default:
				return fmt.Errorf("unknown scope kind %q: %w", step.Kind, ErrInvalid)
			}
			if step.History != nil && *step.History < 0 {
				return fmt.Errorf("scope %q history %d is negative: %w", step.Scope, *step.History, ErrInvalid)
			}
			kinds[step.Scope] = step.Kind
		}
		depth[step.Scope]++
	case OpExit:
		if depth[step.Scope] == 0 {
			return fmt.Errorf("exit of scope %q that is not entered: %w", step.Scope, ErrInvalid)
		}
		depth[step.Scope]--
	case OpToPositional:
		if _, err := parseDimType(step.DimType); err != nil {
			return err
		}
		for _, ax := range step.Axes {
			if ax.Name == "" {
				return fmt.Errorf("axis with empty name: %w", ErrInvalid)
			}
			if ax.Size < 1 {
				return fmt.Errorf("axis %q size %d: %w", ax.Name, ax.Size, ErrInvalid)
			}
		}
		for name, dim := range step.NameToDim {
			if dim >= 0 {
				return fmt.Errorf("name-to-dim %q = %d is not negative: %w", name, dim, ErrInvalid)
			}
		}
		for _, size := range step.Event {
			if size < 1 {
				return fmt.Errorf("event size %d: %w", size, ErrInvalid)
			}
		}
	case OpToNamed:
		if _, err := parseDimType(step.DimType); err != nil {
			return err
		}
		for _, size := range step.Shape {
			if size < 1 {
				return fmt.Errorf("shape size %d: %w", size, ErrInvalid)
			}
		}
		for _, size := range step.Event {
			if size < 1 {
				return fmt.Errorf("event size %d: %w", size, ErrInvalid)
			}
		}
		if len(step.Event) > len(step.Shape) {
			return fmt.Errorf("event %v longer than shape %v: %w", step.Event, step.Shape, ErrInvalid)
		}
		if _, err := step.dimToNameMap(); err != nil {
			return err
		}
	case OpInspect:
	case "":
		return fmt.Errorf("step without op: %w", ErrInvalid)
	default:
		return fmt.Errorf("unknown op %q: %w", step.Op, ErrInvalid)
	}
	return nil
}

// dimToNameMap converts the string-keyed TOML map to dim keys.
func (s *Step) dimToNameMap() (map[int]string, error) {
	if len(s.DimToName) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(s.DimToName))
	for key, name := range s.DimToName {
		dim, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("dim-to-name key %q is not an integer: %w", key, ErrInvalid)
		}
		if dim >= 0 {
			return nil, fmt.Errorf("dim-to-name key %d is not negative: %w", dim, ErrInvalid)
		}
		if name == "" {
			return nil, fmt.Errorf("dim-to-name %d has empty name: %w", dim, ErrInvalid)
		}
		out[dim] = name
	}
	return out, nil
}

func parseDimType(s string) (dims.DimType, error) {
	switch s {
	case "", "local":
		return dims.DimLocal, nil
	case "global":
		return dims.DimGlobal, nil
	case "visible":
		return dims.DimVisible, nil
	default:
		return 0, fmt.Errorf("unknown dim-type %q: %w", s, ErrInvalid)
	}
}
