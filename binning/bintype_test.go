// Public domain.

package binning

import (
	"testing"

	"github.com/mvaneijk/atmogrid/product"
)

func makeVar(t *testing.T, name string, typ product.DataType,
	dimKind []product.DimensionKind, dim []int, unit string) *product.Variable {
	t.Helper()
	v, err := product.NewVariable(name, typ, dimKind, dim)
	if err != nil {
		t.Fatal(err)
	}
	if unit != "" {
		v.SetUnit(unit)
	}
	return v
}

func TestBinningType(t *testing.T) {
	tdim := []product.DimensionKind{product.Time}
	n := []int{4}

	cases := []struct {
		name string
		v    *product.Variable
		want Type
	}{
		{"default average", makeVar(t, "O3_column", product.Float64, tdim, n, "molec/cm2"), Average},
		{"skip without time", makeVar(t, "altitude_axis", product.Float64,
			[]product.DimensionKind{product.Vertical}, []int{7}, "m"), Skip},
		{"string removed", makeVar(t, "site", product.String, tdim, n, "x"), Remove},
		{"no unit removed", makeVar(t, "flag", product.Float64, tdim, n, ""), Remove},
		{"count summed", makeVar(t, "count", product.Int32, tdim, n, ""), Sum},
		{"variable count summed", makeVar(t, "O3_column_count", product.Int32, tdim, n, ""), Sum},
		{"count with unit removed", makeVar(t, "count", product.Int32, tdim, n, "1"), Remove},
		{"count wrong type removed", makeVar(t, "count", product.Float64, tdim, n, ""), Remove},
		{"weight summed", makeVar(t, "weight", product.Float32, tdim, n, ""), Sum},
		{"weight wrong type removed", makeVar(t, "weight", product.Float64, tdim, n, ""), Remove},
		{"uncertainty", makeVar(t, "O3_column_uncertainty", product.Float64, tdim, n, "K"), Uncertainty},
		{"systematic uncertainty", makeVar(t, "O3_column_uncertainty_systematic", product.Float64, tdim, n, "K"), Average},
		{"systematic substring", makeVar(t, "x_uncertainty_systematic_bias", product.Float64, tdim, n, "K"), Average},
		{"avk removed", makeVar(t, "O3_avk", product.Float64, tdim, n, "1"), Remove},
		{"angle", makeVar(t, "scan_angle", product.Float64, tdim, n, "degree"), Angle},
		{"direction", makeVar(t, "wind_direction", product.Float64, tdim, n, "degree"), Angle},
		{"latitude", makeVar(t, "latitude", product.Float64, tdim, n, "degree_north"), Angle},
		{"segment bounds", makeVar(t, "latitude_bounds", product.Float64,
			[]product.DimensionKind{product.Time, product.Independent}, []int{4, 2}, "degree_north"), Angle},
		{"area bounds removed", makeVar(t, "latitude_bounds", product.Float64,
			[]product.DimensionKind{product.Time, product.Independent}, []int{4, 4}, "degree_north"), Remove},
		{"datetime start", makeVar(t, "datetime_start", product.Float64, tdim, n, "s"), TimeMin},
		{"datetime stop", makeVar(t, "datetime_stop", product.Float64, tdim, n, "s"), TimeMax},
	}
	for _, c := range cases {
		if got := binningType(c.v, true); got != c.want {
			t.Errorf("%s: binningType = %v, want %v", c.name, got, c.want)
		}
	}

	// enumerations are always removed
	enum := makeVar(t, "surface_type", product.Int8, tdim, n, "")
	enum.EnumNames = []string{"land", "sea"}
	if got := binningType(enum, true); got != Remove {
		t.Errorf("enum variable: binningType = %v, want Remove", got)
	}

	// trailing time dimensions cannot be binned; NewVariable rejects them, so
	// the fixture is transposed after construction
	misplaced, err := product.NewVariable("transposed", product.Float64,
		[]product.DimensionKind{product.Time, product.Independent}, []int{4, 2})
	if err != nil {
		t.Fatal(err)
	}
	misplaced.DimKind = []product.DimensionKind{product.Independent, product.Time}
	misplaced.Dim = []int{2, 4}
	misplaced.SetUnit("m")
	if got := binningType(misplaced, true); got != Remove {
		t.Errorf("trailing time: binningType = %v, want Remove", got)
	}
}

func TestSpatialBinningType(t *testing.T) {
	tdim := []product.DimensionKind{product.Time}
	n := []int{4}

	cases := []struct {
		name string
		v    *product.Variable
		want Type
	}{
		{"latitude removed", makeVar(t, "latitude", product.Float64, tdim, n, "degree_north"), Remove},
		{"longitude removed", makeVar(t, "longitude", product.Float64, tdim, n, "degree_east"), Remove},
		{"count removed", makeVar(t, "count", product.Int32, tdim, n, ""), Remove},
		{"weight removed", makeVar(t, "weight", product.Float32, tdim, n, ""), Remove},
		{"datetime averaged", makeVar(t, "datetime", product.Float64, tdim, n, "s"), TimeAverage},
		{"datetime length averaged", makeVar(t, "datetime_length", product.Float64, tdim, n, "s"), TimeAverage},
		{"uncertainty fully correlated", makeVar(t, "O3_column_uncertainty", product.Float64, tdim, n, "K"), Average},
		{"plain average", makeVar(t, "O3_column", product.Float64, tdim, n, "molec/cm2"), Average},
	}
	for _, c := range cases {
		if got := spatialBinningType(c.v); got != c.want {
			t.Errorf("%s: spatialBinningType = %v, want %v", c.name, got, c.want)
		}
	}
}
