// Public domain.

package binning_test

import (
	"math"
	"testing"

	"github.com/mvaneijk/atmogrid/binning"
	"github.com/mvaneijk/atmogrid/product"
)

func timeVar(t *testing.T, name string, unit string, values ...float64) *product.Variable {
	t.Helper()
	v, err := product.NewVariable(name, product.Float64,
		[]product.DimensionKind{product.Time}, []int{len(values)})
	if err != nil {
		t.Fatal(err)
	}
	copy(v.Float64Data, values)
	if unit != "" {
		v.SetUnit(unit)
	}
	return v
}

func newProduct(t *testing.T, variables ...*product.Variable) *product.Product {
	t.Helper()
	p := product.New()
	for _, v := range variables {
		if err := p.AddVariable(v); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func getVar(t *testing.T, p *product.Product, name string) *product.Variable {
	t.Helper()
	v, err := p.GetVariable(name)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// averaging with a NaN sample yields a variable specific count
func TestBinAverageWithNaN(t *testing.T) {
	p := newProduct(t, timeVar(t, "v", "K", 1, math.NaN(), 3))
	if err := binning.Bin(p, 1, []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	if p.Dimension[product.Time] != 1 {
		t.Fatalf("time dimension = %d, want 1", p.Dimension[product.Time])
	}
	if got := getVar(t, p, "v").Float64Data; len(got) != 1 || got[0] != 2 {
		t.Errorf("v = %v, want [2]", got)
	}
	if got := getVar(t, p, "count").Int32Data; len(got) != 1 || got[0] != 3 {
		t.Errorf("count = %v, want [3]", got)
	}
	if got := getVar(t, p, "v_count").Int32Data; len(got) != 1 || got[0] != 2 {
		t.Errorf("v_count = %v, want [2]", got)
	}
}

// angle averaging across the dateline
func TestBinAngle(t *testing.T) {
	p := newProduct(t, timeVar(t, "wind_direction", "degree", 170, -170))
	if err := binning.Bin(p, 1, []int{0, 0}); err != nil {
		t.Fatal(err)
	}

	got := getVar(t, p, "wind_direction").Float64Data
	if len(got) != 1 || math.Abs(got[0]-180) > 1e-9 {
		t.Errorf("wind_direction = %v, want [180]", got)
	}
	weight := getVar(t, p, "wind_direction_weight").Float32Data
	want := 2 * math.Cos(10*math.Pi/180)
	if len(weight) != 1 || math.Abs(float64(weight[0])-want) > 1e-6 {
		t.Errorf("wind_direction_weight = %v, want [%v]", weight, want)
	}
}

// an all-NaN angle bin stays NaN
func TestBinAngleAllNaN(t *testing.T) {
	p := newProduct(t, timeVar(t, "scan_angle", "degree", math.NaN(), math.NaN()))
	if err := binning.Bin(p, 1, []int{0, 0}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "scan_angle").Float64Data
	if len(got) != 1 || !math.IsNaN(got[0]) {
		t.Errorf("scan_angle = %v, want [NaN]", got)
	}
	weight := getVar(t, p, "scan_angle_weight").Float32Data
	if len(weight) != 1 || weight[0] != 0 {
		t.Errorf("scan_angle_weight = %v, want [0]", weight)
	}
}

// uncertainty propagation without correlation
func TestBinUncertainty(t *testing.T) {
	p := newProduct(t, timeVar(t, "v_uncertainty", "K", 3, 4))
	if err := binning.Bin(p, 1, []int{0, 0}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "v_uncertainty").Float64Data
	if len(got) != 1 || math.Abs(got[0]-2.5) > 1e-12 {
		t.Errorf("v_uncertainty = %v, want [2.5]", got)
	}
}

// systematic uncertainties propagate fully correlated, i.e. averaged
func TestBinUncertaintySystematic(t *testing.T) {
	p := newProduct(t, timeVar(t, "v_uncertainty_systematic", "K", 3, 4))
	if err := binning.Bin(p, 1, []int{0, 0}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "v_uncertainty_systematic").Float64Data
	if len(got) != 1 || math.Abs(got[0]-3.5) > 1e-12 {
		t.Errorf("v_uncertainty_systematic = %v, want [3.5]", got)
	}
}

// binning at K=N with the identity assignment only adds count=1
func TestBinIdentity(t *testing.T) {
	p := newProduct(t, timeVar(t, "v", "K", 1, 2, 3))
	if err := binning.Bin(p, 3, []int{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "v").Float64Data
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("v = %v, want [1 2 3]", got)
	}
	count := getVar(t, p, "count").Int32Data
	for i := range count {
		if count[i] != 1 {
			t.Errorf("count = %v, want all 1", count)
			break
		}
	}
}

// sum variables add up instead of averaging
func TestBinSum(t *testing.T) {
	c, err := product.NewVariable("count", product.Int32,
		[]product.DimensionKind{product.Time}, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	copy(c.Int32Data, []int32{1, 2, 3, 4})
	p := newProduct(t, c)
	if err := binning.Bin(p, 2, []int{0, 0, 1, 1}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "count").Int32Data
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Errorf("count = %v, want [3 7]", got)
	}
}

// empty bins become NaN, with count 0
func TestBinEmptyBin(t *testing.T) {
	p := newProduct(t, timeVar(t, "v", "K", 1, 3))
	if err := binning.Bin(p, 3, []int{0, 0}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "v").Float64Data
	if len(got) != 3 || got[0] != 2 || !math.IsNaN(got[1]) || !math.IsNaN(got[2]) {
		t.Errorf("v = %v, want [2 NaN NaN]", got)
	}
	count := getVar(t, p, "count").Int32Data
	if count[0] != 2 || count[1] != 0 || count[2] != 0 {
		t.Errorf("count = %v, want [2 0 0]", count)
	}
}

// pre-existing weights steer the average
func TestBinWithExistingWeight(t *testing.T) {
	v, err := product.NewVariable("v", product.Float64,
		[]product.DimensionKind{product.Time, product.Vertical}, []int{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	copy(v.Float64Data, []float64{1, 10, 3, 30})
	v.SetUnit("K")
	w, err := product.NewVariable("v_weight", product.Float32,
		[]product.DimensionKind{product.Time, product.Vertical}, []int{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	copy(w.Float32Data, []float32{1, 1, 3, 3})
	p := newProduct(t, v, w)
	if err := binning.Bin(p, 1, []int{0, 0}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "v").Float64Data
	// weighted averages (1·1+3·3)/4 and (10·1+30·3)/4
	if len(got) != 2 || math.Abs(got[0]-2.5) > 1e-12 || math.Abs(got[1]-25) > 1e-12 {
		t.Errorf("v = %v, want [2.5 25]", got)
	}
	weight := getVar(t, p, "v_weight").Float32Data
	if len(weight) != 2 || weight[0] != 4 || weight[1] != 4 {
		t.Errorf("v_weight = %v, want [4 4]", weight)
	}
}

// variables without a leading time dimension are left alone
func TestBinSkip(t *testing.T) {
	axis, err := product.NewVariable("altitude_axis", product.Float64,
		[]product.DimensionKind{product.Vertical}, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	copy(axis.Float64Data, []float64{1, 2, 3})
	axis.SetUnit("m")
	p := newProduct(t, timeVar(t, "v", "K", 1, 3), axis)
	if err := binning.Bin(p, 1, []int{0, 0}); err != nil {
		t.Fatal(err)
	}
	got := getVar(t, p, "altitude_axis").Float64Data
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("altitude_axis = %v, want [1 2 3]", got)
	}
}

// datetime_start and datetime_stop reduce to min and max
func TestBinTimeMinMax(t *testing.T) {
	p := newProduct(t,
		timeVar(t, "datetime_start", "s", 3, 1, 2),
		timeVar(t, "datetime_stop", "s", 4, 6, 5))
	if err := binning.Bin(p, 1, []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if got := getVar(t, p, "datetime_start").Float64Data; got[0] != 1 {
		t.Errorf("datetime_start = %v, want [1]", got)
	}
	if got := getVar(t, p, "datetime_stop").Float64Data; got[0] != 6 {
		t.Errorf("datetime_stop = %v, want [6]", got)
	}
}

// variables that cannot be binned are removed
func TestBinRemoves(t *testing.T) {
	p := newProduct(t,
		timeVar(t, "v", "K", 1, 3),
		timeVar(t, "unitless", "", 1, 2))
	if err := binning.Bin(p, 1, []int{0, 0}); err != nil {
		t.Fatal(err)
	}
	if p.HasVariable("unitless") {
		t.Error("variable without unit survived binning")
	}
}

func TestBinFull(t *testing.T) {
	p := newProduct(t, timeVar(t, "v", "K", 2, 4, 6))
	if err := binning.BinFull(p); err != nil {
		t.Fatal(err)
	}
	if got := getVar(t, p, "v").Float64Data; len(got) != 1 || got[0] != 4 {
		t.Errorf("v = %v, want [4]", got)
	}
}

func TestBinInvalidIndex(t *testing.T) {
	p := newProduct(t, timeVar(t, "v", "K", 1, 2))
	if err := binning.Bin(p, 1, []int{0, 1}); err == nil {
		t.Error("expected error for bin index out of range")
	}
	if err := binning.Bin(p, 1, []int{0}); err == nil {
		t.Error("expected error for bin index length mismatch")
	}
}

// samples with equal values of the named variables share a bin
func TestBinWithVariable(t *testing.T) {
	site, err := product.NewVariable("site", product.String,
		[]product.DimensionKind{product.Time}, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	copy(site.StringData, []string{"alpha", "beta", "alpha", "beta"})
	p := newProduct(t, site, timeVar(t, "v", "K", 1, 10, 3, 30))
	if err := binning.BinWithVariable(p, []string{"site"}); err != nil {
		t.Fatal(err)
	}

	if got := getVar(t, p, "v").Float64Data; len(got) != 2 || got[0] != 2 || got[1] != 20 {
		t.Errorf("v = %v, want [2 20]", got)
	}
	// the variable that was binned on survives
	if got := getVar(t, p, "site").StringData; len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("site = %v, want [alpha beta]", got)
	}
}

func TestBinWithCollocated(t *testing.T) {
	ci, err := product.NewVariable("collocation_index", product.Int32,
		[]product.DimensionKind{product.Time}, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	copy(ci.Int32Data, []int32{0, 1, 2, 3})
	p := newProduct(t, ci, timeVar(t, "v", "K", 1, 3, 10, 30))

	result := &binning.CollocationResult{Pairs: []binning.CollocationPair{
		{CollocationIndex: 0, SampleIndexA: 0, ProductIndexB: 0, SampleIndexB: 7},
		{CollocationIndex: 1, SampleIndexA: 1, ProductIndexB: 0, SampleIndexB: 7},
		{CollocationIndex: 2, SampleIndexA: 2, ProductIndexB: 0, SampleIndexB: 9},
		{CollocationIndex: 3, SampleIndexA: 3, ProductIndexB: 0, SampleIndexB: 9},
	}}
	if err := binning.BinWithCollocated(p, result); err != nil {
		t.Fatal(err)
	}

	if got := getVar(t, p, "v").Float64Data; len(got) != 2 || got[0] != 2 || got[1] != 20 {
		t.Errorf("v = %v, want [2 20]", got)
	}
	if got := getVar(t, p, "collocation_index").Int32Data; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("collocation_index = %v, want [0 2]", got)
	}
}
