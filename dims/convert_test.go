package dims

import (
	"errors"
	"strconv"
	"testing"

	"github.com/probfold/dimstack/tensor"
)

func TestStack_ToPositionalFreshLayout(t *testing.T) {
	st := NewStack()

	p, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{
		{Name: "a", Size: 2},
		{Name: "b", Size: 3},
	}})
	if err != nil {
		t.Fatalf("ToPositional: %v", err)
	}

	// a takes the cursor dim -5, b the next free dim -6
	if want := (tensor.Shape{3, 2, 1, 1, 1, 1}); !p.Shape().Equal(want) {
		t.Errorf("shape: got %v, want %v", p.Shape(), want)
	}
}

func TestStack_ToPositionalReusesBindings(t *testing.T) {
	st := NewStack()

	first, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{{Name: "a", Size: 2}}})
	if err != nil {
		t.Fatalf("ToPositional: %v", err)
	}
	second, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{{Name: "a", Size: 2}}})
	if err != nil {
		t.Fatalf("ToPositional again: %v", err)
	}
	if !first.Shape().Equal(second.Shape()) {
		t.Errorf("layouts differ: %v vs %v", first.Shape(), second.Shape())
	}
}

func TestStack_ConversionRoundTrip(t *testing.T) {
	st := NewStack()
	v := &tensor.Positional{Batch: tensor.Shape{5, 1, 2}}

	n, err := st.ToNamed(v)
	if err != nil {
		t.Fatalf("ToNamed: %v", err)
	}
	if names := n.Names(); len(names) != 2 || names[0] != "_dim_3" || names[1] != "_dim_1" {
		t.Errorf("names: got %v, want [_dim_3 _dim_1]", names)
	}

	back, err := st.ToPositional(n)
	if err != nil {
		t.Fatalf("ToPositional: %v", err)
	}
	if !back.Shape().Equal(v.Shape()) {
		t.Errorf("round trip: got %v, want %v", back.Shape(), v.Shape())
	}
}

func TestStack_ToNamedSplitsEventShape(t *testing.T) {
	st := NewStack()
	v := &tensor.Positional{Batch: tensor.Shape{4, 2, 3}}

	n, err := st.ToNamed(v, WithEvent(tensor.Shape{3}))
	if err != nil {
		t.Fatalf("ToNamed: %v", err)
	}
	if !n.Event.Equal(tensor.Shape{3}) {
		t.Errorf("event: got %v, want (3)", n.Event)
	}
	if size, ok := n.Size("_dim_2"); !ok || size != 4 {
		t.Errorf("Size(_dim_2): got %d, %v, want 4, true", size, ok)
	}
	if size, ok := n.Size("_dim_1"); !ok || size != 2 {
		t.Errorf("Size(_dim_1): got %d, %v, want 2, true", size, ok)
	}
}

func TestStack_ToNamedFreshInputs(t *testing.T) {
	st := NewStack()
	n := NewNamed(st)
	n.Enter()
	defer n.Exit()

	x, err := st.ToNamed(
		&tensor.Positional{Batch: tensor.Shape{2}},
		WithDimToName(map[int]string{-1: "x"}),
	)
	if err != nil {
		t.Fatalf("ToNamed(x): %v", err)
	}
	if names := x.Names(); len(names) != 1 || names[0] != "x" {
		t.Errorf("names: got %v, want [x]", names)
	}

	px, err := st.ToNamed(
		&tensor.Positional{Batch: tensor.Shape{2, 3}},
		WithDimToName(map[int]string{-2: "x", -1: "y"}),
	)
	if err != nil {
		t.Fatalf("ToNamed(px): %v", err)
	}
	if size, _ := px.Size("x"); size != 2 {
		t.Errorf("Size(x): got %d, want 2", size)
	}
	if size, _ := px.Size("y"); size != 3 {
		t.Errorf("Size(y): got %d, want 3", size)
	}
}

func TestStack_IterationWithFreshNames(t *testing.T) {
	st := NewStack()
	root := NewWindow(st, -1)
	root.Enter()
	defer root.Exit()

	loop := NewLocal(st)
	for i := range loop.Range(5) {
		fv1, err := st.ToNamed(
			&tensor.Positional{Batch: tensor.Shape{2}},
			WithDimToName(map[int]string{-1: strconv.Itoa(i)}),
		)
		if err != nil {
			t.Fatalf("step %d: ToNamed: %v", i, err)
		}
		fv2, err := st.ToNamed(
			&tensor.Positional{Batch: tensor.Shape{2}},
			WithDimToName(map[int]string{-1: "a"}),
		)
		if err != nil {
			t.Fatalf("step %d: ToNamed(a): %v", i, err)
		}

		v1, err := st.ToPositional(fv1)
		if err != nil {
			t.Fatalf("step %d: ToPositional: %v", i, err)
		}
		v2, err := st.ToPositional(fv2)
		if err != nil {
			t.Fatalf("step %d: ToPositional(a): %v", i, err)
		}

		want := tensor.Shape{2}
		if i%2 == 1 {
			want = tensor.Shape{2, 1, 1}
		}
		if !v1.Shape().Equal(want) {
			t.Errorf("step %d: shape %v, want %v", i, v1.Shape(), want)
		}
		if !v2.Shape().Equal(tensor.Shape{2, 1}) {
			t.Errorf("step %d: a shape %v, want (2, 1)", i, v2.Shape())
		}
	}
}

func TestStack_ToPositionalCompleteMapWins(t *testing.T) {
	st := NewStack()
	m := map[string]int{"a": -2, "b": -4}

	p, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{
		{Name: "a", Size: 2},
		{Name: "b", Size: 3},
	}}, WithNameToDim(m))
	if err != nil {
		t.Fatalf("ToPositional: %v", err)
	}
	if want := (tensor.Shape{3, 1, 2, 1}); !p.Shape().Equal(want) {
		t.Errorf("shape: got %v, want %v", p.Shape(), want)
	}
}

func TestStack_ToPositionalFillsProvidedMap(t *testing.T) {
	st := NewStack()
	m := map[string]int{}

	if _, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{
		{Name: "a", Size: 2},
		{Name: "b", Size: 3},
	}}, WithNameToDim(m)); err != nil {
		t.Fatalf("ToPositional: %v", err)
	}
	if m["a"] != -5 || m["b"] != -6 {
		t.Errorf("map after call: got %v, want a=-5 b=-6", m)
	}
}

func TestStack_ToPositionalRejectsPartialMap(t *testing.T) {
	st := NewStack()
	value := &tensor.Named{Axes: []tensor.Axis{
		{Name: "a", Size: 2},
		{Name: "b", Size: 3},
	}}

	_, err := st.ToPositional(value, WithNameToDim(map[string]int{"a": -1}))
	if !errors.Is(err, ErrPartialMap) {
		t.Errorf("short map: got %v, want ErrPartialMap", err)
	}

	_, err = st.ToPositional(value, WithNameToDim(map[string]int{"a": -1, "c": -2}))
	if !errors.Is(err, ErrPartialMap) {
		t.Errorf("wrong-key map: got %v, want ErrPartialMap", err)
	}
}

func TestStack_ToNamedRejectsPartialMap(t *testing.T) {
	st := NewStack()
	v := &tensor.Positional{Batch: tensor.Shape{2, 3}}

	_, err := st.ToNamed(v, WithDimToName(map[int]string{-1: "y"}))
	if !errors.Is(err, ErrPartialMap) {
		t.Errorf("got %v, want ErrPartialMap", err)
	}
}

func TestStack_ToPositionalMapConflict(t *testing.T) {
	st := NewStack()

	_, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{
		{Name: "a", Size: 2},
		{Name: "b", Size: 3},
	}}, WithNameToDim(map[string]int{"a": -1, "b": -1}))
	if !errors.Is(err, ErrDimConflict) {
		t.Errorf("got %v, want ErrDimConflict", err)
	}
}

func TestStack_ToPositionalExhaustion(t *testing.T) {
	st := NewStack(WithFirstDim(MaxDim + 1))

	if _, err := st.RequestDim("a", DimRequest{}); err != nil {
		t.Fatalf("RequestDim(a): %v", err)
	}
	if _, err := st.RequestDim("b", DimRequest{}); err != nil {
		t.Fatalf("RequestDim(b): %v", err)
	}

	_, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{{Name: "c", Size: 2}}})
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("got %v, want ErrExhausted", err)
	}
}

func TestStack_ToPositionalRejectsInvalidValue(t *testing.T) {
	st := NewStack()

	_, err := st.ToPositional(&tensor.Named{Axes: []tensor.Axis{
		{Name: "a", Size: 2},
		{Name: "a", Size: 3},
	}})
	if err == nil {
		t.Error("duplicate axis should be rejected")
	}
}

func TestStack_ToPositionalEmptyValue(t *testing.T) {
	st := NewStack()

	p, err := st.ToPositional(&tensor.Named{})
	if err != nil {
		t.Fatalf("ToPositional: %v", err)
	}
	if len(p.Batch) != 0 {
		t.Errorf("batch: got %v, want empty", p.Batch)
	}
}

func TestStack_ToNamedGlobalBindings(t *testing.T) {
	st := NewStack()

	n, err := st.ToNamed(
		&tensor.Positional{Batch: tensor.Shape{2}},
		WithDimToName(map[int]string{-1: "g"}),
		WithDimType(DimGlobal),
	)
	if err != nil {
		t.Fatalf("ToNamed: %v", err)
	}
	if names := n.Names(); len(names) != 1 || names[0] != "g" {
		t.Errorf("names: got %v, want [g]", names)
	}
	if dim, ok := st.Global().Dim("g"); !ok || dim != -5 {
		t.Errorf("global binding: got %d, %v, want -5, true", dim, ok)
	}
}

func TestStack_ToNamedIgnoresPaddingAxes(t *testing.T) {
	st := NewStack()

	n, err := st.ToNamed(&tensor.Positional{Batch: tensor.Shape{1, 2, 1}})
	if err != nil {
		t.Fatalf("ToNamed: %v", err)
	}
	if names := n.Names(); len(names) != 1 || names[0] != "_dim_2" {
		t.Errorf("names: got %v, want [_dim_2]", names)
	}
}
