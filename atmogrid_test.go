// Public domain.

package atmogrid_test

import (
	"math"
	"testing"

	"github.com/mvaneijk/atmogrid"
	"github.com/mvaneijk/atmogrid/errs"
	"github.com/mvaneijk/atmogrid/product"
	"github.com/mvaneijk/atmogrid/sphere"
)

func TestPointDistance(t *testing.T) {
	want := sphere.EarthRadius * math.Pi / 180
	if got := atmogrid.PointDistance(0, 0, 0, 1); math.Abs(got-want) > 1e-3 {
		t.Errorf("PointDistance = %v, want %v", got, want)
	}
}

func TestPointInArea(t *testing.T) {
	latBounds := []float64{10, 10, 20, 20}
	lonBounds := []float64{10, 20, 20, 10}

	in, err := atmogrid.PointInArea(15, 15, latBounds, lonBounds)
	if err != nil {
		t.Fatal(err)
	}
	if !in {
		t.Error("center not in area")
	}
	in, err = atmogrid.PointInArea(-15, 15, latBounds, lonBounds)
	if err != nil {
		t.Fatal(err)
	}
	if in {
		t.Error("outside point in area")
	}

	// an invalid polygon populates the last-error channel
	if _, err = atmogrid.PointInArea(0, 0, []float64{10, 10}, []float64{10, 20}); err == nil {
		t.Fatal("invalid polygon accepted")
	}
	if last := errs.Last(); last == nil {
		t.Error("last error not recorded")
	} else if errs.KindOf(last) != errs.InvalidArgument {
		t.Errorf("last error kind = %v, want InvalidArgument", errs.KindOf(last))
	}
}

func TestAreaOverlap(t *testing.T) {
	latA := []float64{10, 10, 20, 20}
	lonA := []float64{10, 20, 20, 10}
	latB := []float64{12, 12, 18, 18}
	lonB := []float64{12, 18, 18, 12}
	latC := []float64{-20, -20, -10, -10}

	overlap, err := atmogrid.AreaOverlap(latA, lonA, latB, lonB)
	if err != nil {
		t.Fatal(err)
	}
	if !overlap {
		t.Error("contained area not overlapping")
	}
	overlap, fraction, err := atmogrid.AreaOverlapFraction(latA, lonA, latB, lonB)
	if err != nil {
		t.Fatal(err)
	}
	if !overlap || fraction != 1 {
		t.Errorf("contained overlap = %v, %v, want true, 1", overlap, fraction)
	}
	overlap, fraction, err = atmogrid.AreaOverlapFraction(latA, lonA, latC, lonA)
	if err != nil {
		t.Fatal(err)
	}
	if overlap || fraction != 0 {
		t.Errorf("separate overlap = %v, %v, want false, 0", overlap, fraction)
	}
}

func TestArea(t *testing.T) {
	// an octant of the sphere
	got, err := atmogrid.Area([]float64{0, 0, 90}, []float64{0, 90, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := math.Pi / 2 * sphere.EarthRadius * sphere.EarthRadius
	if math.Abs(got-want)/want > 1e-9 {
		t.Errorf("Area = %v, want %v", got, want)
	}
}

func TestBinFacade(t *testing.T) {
	p := product.New()
	v, err := product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Time}, []int{2})
	if err != nil {
		t.Fatal(err)
	}
	copy(v.Float64Data, []float64{1, 3})
	v.SetUnit("K")
	if err := p.AddVariable(v); err != nil {
		t.Fatal(err)
	}
	if err := atmogrid.BinFull(p); err != nil {
		t.Fatal(err)
	}
	if got, err := p.GetVariable("v"); err != nil || got.Float64Data[0] != 2 {
		t.Errorf("v = %v, want [2]", got.Float64Data)
	}
}
