// Public domain.

package product_test

import (
	"testing"

	"github.com/mvaneijk/atmogrid/product"
)

func TestNewVariableInvariants(t *testing.T) {
	// at most one dimension of any typed kind
	_, err := product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Time, product.Vertical, product.Vertical},
		[]int{2, 3, 3})
	if err == nil {
		t.Error("duplicate vertical dimension accepted")
	}

	// the time dimension must come first
	_, err = product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Vertical, product.Time}, []int{3, 2})
	if err == nil {
		t.Error("trailing time dimension accepted")
	}

	// independent dimensions may repeat
	v, err := product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Time, product.Independent, product.Independent},
		[]int{2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if v.NumElements() != 24 {
		t.Errorf("NumElements = %d, want 24", v.NumElements())
	}
	if len(v.Float64Data) != 24 {
		t.Errorf("buffer length = %d, want 24", len(v.Float64Data))
	}
}

func TestUnitPresence(t *testing.T) {
	v, err := product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Time}, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	if v.HasUnit() {
		t.Error("fresh variable has a unit")
	}
	// an empty unit is still a unit
	v.SetUnit("")
	if !v.HasUnit() {
		t.Error("empty unit not counted as a unit")
	}
}

func TestConvertDataType(t *testing.T) {
	v, err := product.NewVariable("v", product.Int32,
		[]product.DimensionKind{product.Time}, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	copy(v.Int32Data, []int32{1, 2, 3})
	if err := v.ConvertDataType(product.Float64); err != nil {
		t.Fatal(err)
	}
	if v.Int32Data != nil {
		t.Error("old buffer not released")
	}
	if v.Float64Data[0] != 1 || v.Float64Data[2] != 3 {
		t.Errorf("converted data = %v", v.Float64Data)
	}

	s, err := product.NewVariable("s", product.String,
		[]product.DimensionKind{product.Time}, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ConvertDataType(product.Float64); err == nil {
		t.Error("string conversion accepted")
	}
}

func TestAddRemoveDimension(t *testing.T) {
	v, err := product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Time}, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	copy(v.Float64Data, []float64{1, 2, 3})

	if err := v.AddDimension(v.NumDims(), product.Independent, 2); err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 1, 2, 2, 3, 3}
	for i := range want {
		if v.Float64Data[i] != want[i] {
			t.Fatalf("after AddDimension: %v, want %v", v.Float64Data, want)
		}
	}

	v.Float64Data[1] = 10
	if err := v.RemoveDimension(1, 0); err != nil {
		t.Fatal(err)
	}
	if v.NumDims() != 1 || v.Dim[0] != 3 {
		t.Fatalf("after RemoveDimension dims = %v", v.Dim)
	}
	if v.Float64Data[0] != 1 || v.Float64Data[1] != 2 || v.Float64Data[2] != 3 {
		t.Errorf("after RemoveDimension data = %v", v.Float64Data)
	}
}

func TestRearrangeDimension(t *testing.T) {
	v, err := product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Time, product.Independent}, []int{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	copy(v.Float64Data, []float64{1, 2, 3, 4, 5, 6})

	if err := v.RearrangeDimension(0, 2, []int{2, 0}); err != nil {
		t.Fatal(err)
	}
	if v.Dim[0] != 2 {
		t.Fatalf("dims = %v", v.Dim)
	}
	want := []float64{5, 6, 1, 2}
	for i := range want {
		if v.Float64Data[i] != want[i] {
			t.Fatalf("rearranged = %v, want %v", v.Float64Data, want)
		}
	}

	if err := v.RearrangeDimension(0, 1, []int{5}); err == nil {
		t.Error("out of range index accepted")
	}
}

func TestProductVariables(t *testing.T) {
	p := product.New()
	a, _ := product.NewVariable("a", product.Float64,
		[]product.DimensionKind{product.Time}, []int{2})
	b, _ := product.NewVariable("b", product.Float64,
		[]product.DimensionKind{product.Time}, []int{2})
	if err := p.AddVariable(a); err != nil {
		t.Fatal(err)
	}
	if err := p.AddVariable(b); err != nil {
		t.Fatal(err)
	}
	if p.Dimension[product.Time] != 2 {
		t.Errorf("time extent = %d, want 2", p.Dimension[product.Time])
	}

	// duplicate names are rejected
	dup, _ := product.NewVariable("a", product.Float64,
		[]product.DimensionKind{product.Time}, []int{2})
	if err := p.AddVariable(dup); err == nil {
		t.Error("duplicate variable accepted")
	}

	// extent mismatches are rejected
	c, _ := product.NewVariable("c", product.Float64,
		[]product.DimensionKind{product.Time}, []int{3})
	if err := p.AddVariable(c); err == nil {
		t.Error("mismatched time extent accepted")
	}

	// replacement preserves order
	a2, _ := product.NewVariable("a", product.Int32,
		[]product.DimensionKind{product.Time}, []int{2})
	if err := p.ReplaceVariable(a2); err != nil {
		t.Fatal(err)
	}
	if p.Variables[0] != a2 {
		t.Error("replacement did not preserve position")
	}

	// detach keeps the caller's variable usable
	if err := p.DetachVariable(b); err != nil {
		t.Fatal(err)
	}
	if p.HasVariable("b") {
		t.Error("detached variable still present")
	}
	if b.NumElements() != 2 {
		t.Error("detached variable damaged")
	}
}

func TestConvertUnit(t *testing.T) {
	v, err := product.NewVariable("angle", product.Float64,
		[]product.DimensionKind{product.Time}, []int{2})
	if err != nil {
		t.Fatal(err)
	}
	copy(v.Float64Data, []float64{0, 180})
	v.SetUnit("degree")
	if err := v.ConvertUnit("rad"); err != nil {
		t.Fatal(err)
	}
	if v.Float64Data[1] < 3.14159 || v.Float64Data[1] > 3.1416 {
		t.Errorf("converted = %v, want π", v.Float64Data[1])
	}
	if *v.Unit != "rad" {
		t.Errorf("unit = %q, want rad", *v.Unit)
	}

	if err := v.ConvertUnit("kg"); err == nil {
		t.Error("unsupported conversion accepted")
	}
}
