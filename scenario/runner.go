package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/probfold/dimstack/dims"
	"github.com/probfold/dimstack/tensor"
)

// Run replays the scenario's steps against st in order, calling report
// with a one-line summary after each step. report may be nil. Execution
// stops at the first failing step.
func Run(st *dims.Stack, sc *Scenario, report func(step int, detail string)) error {
	scopes := make(map[string]dims.Scope)
	for i, step := range sc.Steps {
		detail, err := applyStep(st, scopes, &step)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		if report != nil {
			report(i+1, detail)
		}
	}
	return nil
}

func applyStep(st *dims.Stack, scopes map[string]dims.Scope, step *Step) (string, error) {
	switch step.Op {
	case OpEnter:
		s, ok := scopes[step.Scope]
		if !ok {
			var err error
			if s, err = buildScope(st, step); err != nil {
				return "", err
			}
			scopes[step.Scope] = s
		}
		s.Enter()
		return fmt.Sprintf("enter %s", step.Scope), nil

	case OpExit:
		s, ok := scopes[step.Scope]
		if !ok {
			return "", fmt.Errorf("scope %q was never entered", step.Scope)
		}
		s.Exit()
		return fmt.Sprintf("exit %s", step.Scope), nil

	case OpToPositional:
		value := &tensor.Named{Event: shapeOf(step.Event)}
		for _, ax := range step.Axes {
			value.Axes = append(value.Axes, tensor.Axis{Name: ax.Name, Size: ax.Size})
		}
		t, err := parseDimType(step.DimType)
		if err != nil {
			return "", err
		}
		nameToDim := make(map[string]int, len(step.NameToDim))
		for name, dim := range step.NameToDim {
			nameToDim[name] = dim
		}
		p, err := st.ToPositional(value, dims.WithNameToDim(nameToDim), dims.WithDimType(t))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("to-positional %s -> %s%s", value, p.Shape(), formatNameToDim(nameToDim)), nil

	case OpToNamed:
		value := &tensor.Positional{Batch: shapeOf(step.Shape)}
		t, err := parseDimType(step.DimType)
		if err != nil {
			return "", err
		}
		dimToName, err := step.dimToNameMap()
		if err != nil {
			return "", err
		}
		if dimToName == nil {
			dimToName = make(map[int]string)
		}
		opts := []dims.ConvertOption{dims.WithDimToName(dimToName), dims.WithDimType(t)}
		if len(step.Event) > 0 {
			opts = append(opts, dims.WithEvent(shapeOf(step.Event)))
		}
		n, err := st.ToNamed(value, opts...)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("to-named %s -> %s", value.Shape(), n), nil

	case OpInspect:
		return st.Inspect().String(), nil

	default:
		return "", fmt.Errorf("unknown op %q", step.Op)
	}
}

func buildScope(st *dims.Stack, step *Step) (dims.Scope, error) {
	history := 1
	if step.History != nil {
		history = *step.History
	}
	switch step.Kind {
	case KindLocal:
		return dims.NewLocal(st, dims.History(history), dims.Keep(step.Keep)), nil
	case KindGlobal:
		return dims.NewGlobal(st), nil
	case KindNamed:
		return dims.NewNamed(st), nil
	case KindWindow:
		return dims.NewWindow(st, step.FirstDim), nil
	case KindCleanup:
		return dims.NewCleanup(st), nil
	default:
		return nil, fmt.Errorf("unknown scope kind %q", step.Kind)
	}
}

func shapeOf(sizes []int) tensor.Shape {
	if len(sizes) == 0 {
		return nil
	}
	out := make(tensor.Shape, len(sizes))
	copy(out, sizes)
	return out
}

func formatNameToDim(m map[string]int) string {
	if len(m) == 0 {
		return ""
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, m[name])
	}
	return " [" + strings.Join(parts, " ") + "]"
}
