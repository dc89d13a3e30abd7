// Public domain.

package product

import (
	"github.com/soniakeys/unit"

	"github.com/mvaneijk/atmogrid/errs"
)

// unit families known to the conversion.  The binning engine only ever
// converts within the angle families; all other conversions must be
// identities.
var degreeUnits = map[string]bool{
	"degree":       true,
	"degree_north": true,
	"degree_east":  true,
	"deg":          true,
}

var radianUnits = map[string]bool{
	"rad":    true,
	"radian": true,
}

func unitFactor(from, to string) (float64, bool) {
	switch {
	case from == to:
		return 1, true
	case degreeUnits[from] && degreeUnits[to]:
		return 1, true
	case radianUnits[from] && radianUnits[to]:
		return 1, true
	case degreeUnits[from] && radianUnits[to]:
		return unit.AngleFromDeg(1).Rad(), true
	case radianUnits[from] && degreeUnits[to]:
		return unit.Angle(1).Deg(), true
	}
	return 0, false
}

// ConvertUnitValues converts data values in place from one unit to another.
func ConvertUnitValues(from, to string, data []float64) error {
	f, ok := unitFactor(from, to)
	if !ok {
		return errs.New(errs.InvalidArgument,
			"unit conversion from '%s' to '%s' is not supported", from, to)
	}
	if f != 1 {
		for i := range data {
			data[i] *= f
		}
	}
	return nil
}

// ConvertUnit converts the variable's float64 data to the target unit and
// updates the unit attribute.
func (v *Variable) ConvertUnit(to string) error {
	if v.Unit == nil {
		return errs.New(errs.InvalidVariable,
			"variable %s has no unit to convert from", v.Name)
	}
	if v.Type != Float64 {
		return errs.New(errs.InvalidVariable,
			"unit conversion requires float64 data for variable %s", v.Name)
	}
	if err := ConvertUnitValues(*v.Unit, to, v.Float64Data); err != nil {
		return err
	}
	v.SetUnit(to)
	return nil
}
