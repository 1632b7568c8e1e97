package tensor

import "testing"

func TestShape_Basics(t *testing.T) {
	s := Shape{2, 1, 3}

	if !s.Equal(Shape{2, 1, 3}) {
		t.Error("Equal should match identical shapes")
	}
	if s.Equal(Shape{2, 3}) {
		t.Error("Equal should reject different lengths")
	}
	if s.Numel() != 6 {
		t.Errorf("Numel: got %d, want 6", s.Numel())
	}
	if s.String() != "(2, 1, 3)" {
		t.Errorf("String: got %q, want %q", s.String(), "(2, 1, 3)")
	}
}

func TestPositional_BatchDims(t *testing.T) {
	p := &Positional{Batch: Shape{2, 1, 3}, Event: Shape{4}}

	dims := p.BatchDims()
	if len(dims) != 2 || dims[0] != -3 || dims[1] != -1 {
		t.Errorf("BatchDims: got %v, want [-3 -1]", dims)
	}

	if !p.Shape().Equal(Shape{2, 1, 3, 4}) {
		t.Errorf("Shape: got %v, want (2, 1, 3, 4)", p.Shape())
	}
}

func TestSplit(t *testing.T) {
	p, err := Split(Shape{2, 3, 4}, Shape{4})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !p.Batch.Equal(Shape{2, 3}) || !p.Event.Equal(Shape{4}) {
		t.Errorf("Split: got batch %v event %v", p.Batch, p.Event)
	}

	if _, err := Split(Shape{2, 3}, Shape{4}); err == nil {
		t.Error("Split should reject a non-suffix event shape")
	}
}

func TestArrange(t *testing.T) {
	n := &Named{Axes: []Axis{{Name: "a", Size: 2}, {Name: "b", Size: 3}}, Event: Shape{5}}

	p, err := Arrange(n, map[string]int{"a": -1, "b": -3})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if !p.Batch.Equal(Shape{3, 1, 2}) {
		t.Errorf("Batch: got %v, want (3, 1, 2)", p.Batch)
	}
	if !p.Shape().Equal(Shape{3, 1, 2, 5}) {
		t.Errorf("Shape: got %v, want (3, 1, 2, 5)", p.Shape())
	}
}

func TestArrange_Errors(t *testing.T) {
	n := &Named{Axes: []Axis{{Name: "a", Size: 2}, {Name: "b", Size: 3}}}

	if _, err := Arrange(n, map[string]int{"a": -1}); err == nil {
		t.Error("Arrange should fail on an unresolved axis")
	}
	if _, err := Arrange(n, map[string]int{"a": -1, "b": -1}); err == nil {
		t.Error("Arrange should fail when two axes share a dim")
	}
	if _, err := Arrange(n, map[string]int{"a": 0, "b": -1}); err == nil {
		t.Error("Arrange should fail on a non-negative dim")
	}
}

func TestLabel(t *testing.T) {
	p := &Positional{Batch: Shape{2, 1, 3}, Event: Shape{4}}

	n, err := Label(p, map[int]string{-3: "a", -1: "b"})
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if len(n.Axes) != 2 {
		t.Fatalf("axes: got %d, want 2", len(n.Axes))
	}
	if n.Axes[0].Name != "a" || n.Axes[0].Size != 2 {
		t.Errorf("axis 0: got %s:%d, want a:2", n.Axes[0].Name, n.Axes[0].Size)
	}
	if n.Axes[1].Name != "b" || n.Axes[1].Size != 3 {
		t.Errorf("axis 1: got %s:%d, want b:3", n.Axes[1].Name, n.Axes[1].Size)
	}
	if !n.Event.Equal(Shape{4}) {
		t.Errorf("event: got %v, want (4)", n.Event)
	}
}

func TestLabel_Errors(t *testing.T) {
	p := &Positional{Batch: Shape{2, 3}}

	if _, err := Label(p, map[int]string{-2: "a"}); err == nil {
		t.Error("Label should fail on an unresolved batch dim")
	}
	if _, err := Label(p, map[int]string{-2: "a", -1: "a"}); err == nil {
		t.Error("Label should fail when two dims share a name")
	}
}

func TestArrangeLabel_RoundTrip(t *testing.T) {
	n := &Named{Axes: []Axis{{Name: "x", Size: 2}, {Name: "y", Size: 4}}}
	nameToDim := map[string]int{"x": -2, "y": -1}

	p, err := Arrange(n, nameToDim)
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}

	back, err := Label(p, map[int]string{-2: "x", -1: "y"})
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	for _, ax := range n.Axes {
		size, ok := back.Size(ax.Name)
		if !ok || size != ax.Size {
			t.Errorf("round trip lost axis %s:%d (got %d, %v)", ax.Name, ax.Size, size, ok)
		}
	}
}
