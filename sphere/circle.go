// Public domain.

package sphere

import "github.com/soniakeys/unit"

// Circle is a spherical cap defined by its center and angular radius.
type Circle struct {
	Center Point
	Radius unit.Angle
}

// Equal reports whether two circles have equal centers and radii.
func (c Circle) Equal(d Circle) bool {
	return c.Center.Equal(d.Center) && fpEq(c.Radius.Rad(), d.Radius.Rad())
}

// ContainsPoint reports whether p lies within the cap.
func (c Circle) ContainsPoint(p Point) bool {
	return fpLe(Distance(p, c.Center).Rad(), c.Radius.Rad())
}

// Transform applies an Euler transformation to the circle.
func (c Circle) Transform(e *Euler) Circle {
	out := Circle{Center: e.RotatePoint(c.Center), Radius: c.Radius}
	out.Center.Check()
	return out
}
