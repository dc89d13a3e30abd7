// Public domain.

// Package product implements the internal data model shared by instrument
// readers and the binning engine: named variables with typed
// multi-dimensional buffers on a common dimension layout.
package product

import (
	"github.com/mvaneijk/atmogrid/errs"
)

// DataType selects the scalar type of a variable's buffer.
type DataType int8

const (
	Int8 DataType = iota
	Int16
	Int32
	Float32
	Float64
	String
)

func (t DataType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	}
	return "?"
}

// DimensionKind identifies a typed dimension of the data model.
// Independent dimensions carry their own length; the typed kinds share a
// product-level extent.
type DimensionKind int8

const (
	Independent DimensionKind = iota
	Time
	Vertical
	Latitude
	Longitude
	Spectral
)

func (k DimensionKind) String() string {
	switch k {
	case Independent:
		return "independent"
	case Time:
		return "time"
	case Vertical:
		return "vertical"
	case Latitude:
		return "latitude"
	case Longitude:
		return "longitude"
	case Spectral:
		return "spectral"
	}
	return "?"
}

// Variable is a named, typed, dense row-major array over an ordered list of
// dimensions.  A nil Unit differs from an empty one: it means the variable
// has no physical unit at all.
type Variable struct {
	Name      string
	Type      DataType
	DimKind   []DimensionKind
	Dim       []int
	Unit      *string
	EnumNames []string

	Int8Data    []int8
	Int16Data   []int16
	Int32Data   []int32
	Float32Data []float32
	Float64Data []float64
	StringData  []string
}

// NewVariable creates a variable with a zeroed buffer of the given type and
// dimensions.  A variable may have at most one dimension of each typed
// kind, and a time dimension must come first.
func NewVariable(name string, t DataType, dimKind []DimensionKind, dim []int) (*Variable, error) {
	if len(dimKind) != len(dim) {
		return nil, errs.New(errs.InvalidArgument,
			"dimension kind and length lists differ in length for variable %s", name)
	}
	var seen [Spectral + 1]bool
	for i, k := range dimKind {
		if k == Independent {
			continue
		}
		if k < 0 || k > Spectral {
			return nil, errs.New(errs.InvalidArgument, "invalid dimension kind for variable %s", name)
		}
		if seen[k] {
			return nil, errs.New(errs.InvalidArgument,
				"variable %s has more than one %s dimension", name, k)
		}
		seen[k] = true
		if k == Time && i != 0 {
			return nil, errs.New(errs.InvalidArgument,
				"time dimension of variable %s should be the first dimension", name)
		}
	}
	v := &Variable{
		Name:    name,
		Type:    t,
		DimKind: append([]DimensionKind(nil), dimKind...),
		Dim:     append([]int(nil), dim...),
	}
	v.alloc(v.NumElements())
	return v, nil
}

func (v *Variable) alloc(n int) {
	v.Int8Data = nil
	v.Int16Data = nil
	v.Int32Data = nil
	v.Float32Data = nil
	v.Float64Data = nil
	v.StringData = nil
	switch v.Type {
	case Int8:
		v.Int8Data = make([]int8, n)
	case Int16:
		v.Int16Data = make([]int16, n)
	case Int32:
		v.Int32Data = make([]int32, n)
	case Float32:
		v.Float32Data = make([]float32, n)
	case Float64:
		v.Float64Data = make([]float64, n)
	case String:
		v.StringData = make([]string, n)
	}
}

// NumDims returns the number of dimensions.
func (v *Variable) NumDims() int { return len(v.Dim) }

// NumElements returns the product of all dimension lengths.
func (v *Variable) NumElements() int {
	n := 1
	for _, d := range v.Dim {
		n *= d
	}
	return n
}

// HasUnit reports whether the variable carries a unit, empty or not.
func (v *Variable) HasUnit() bool { return v.Unit != nil }

// SetUnit gives the variable a unit.
func (v *Variable) SetUnit(u string) {
	v.Unit = &u
}

// UnitString returns the unit, or "" for a variable without one.
func (v *Variable) UnitString() string {
	if v.Unit == nil {
		return ""
	}
	return *v.Unit
}

// Copy returns a deep copy of the variable.
func (v *Variable) Copy() *Variable {
	c := &Variable{
		Name:    v.Name,
		Type:    v.Type,
		DimKind: append([]DimensionKind(nil), v.DimKind...),
		Dim:     append([]int(nil), v.Dim...),
	}
	c.CopyAttributesFrom(v)
	c.Int8Data = append([]int8(nil), v.Int8Data...)
	c.Int16Data = append([]int16(nil), v.Int16Data...)
	c.Int32Data = append([]int32(nil), v.Int32Data...)
	c.Float32Data = append([]float32(nil), v.Float32Data...)
	c.Float64Data = append([]float64(nil), v.Float64Data...)
	c.StringData = append([]string(nil), v.StringData...)
	return c
}

// CopyAttributesFrom copies unit and enumeration labels from src.
func (v *Variable) CopyAttributesFrom(src *Variable) {
	if src.Unit != nil {
		u := *src.Unit
		v.Unit = &u
	}
	v.EnumNames = append([]string(nil), src.EnumNames...)
}

// float64At reads any numeric buffer as float64.
func (v *Variable) float64At(i int) float64 {
	switch v.Type {
	case Int8:
		return float64(v.Int8Data[i])
	case Int16:
		return float64(v.Int16Data[i])
	case Int32:
		return float64(v.Int32Data[i])
	case Float32:
		return float64(v.Float32Data[i])
	case Float64:
		return v.Float64Data[i]
	}
	return 0
}

// ConvertDataType converts the buffer to another scalar type.  String
// buffers cannot be converted to or from.
func (v *Variable) ConvertDataType(t DataType) error {
	if v.Type == t {
		return nil
	}
	if v.Type == String || t == String {
		return errs.New(errs.InvalidVariable,
			"cannot convert variable %s between %s and %s", v.Name, v.Type, t)
	}
	n := v.NumElements()
	old := *v
	v.Type = t
	v.alloc(n)
	for i := 0; i < n; i++ {
		x := old.float64At(i)
		switch t {
		case Int8:
			v.Int8Data[i] = int8(x)
		case Int16:
			v.Int16Data[i] = int16(x)
		case Int32:
			v.Int32Data[i] = int32(x)
		case Float32:
			v.Float32Data[i] = float32(x)
		case Float64:
			v.Float64Data[i] = x
		}
	}
	return nil
}

// blockSizes returns the element counts outside and inside dimension d:
// outer iterates dims before d, inner is the flat length of dims after d.
func (v *Variable) blockSizes(d int) (outer, inner int) {
	outer, inner = 1, 1
	for i := 0; i < d; i++ {
		outer *= v.Dim[i]
	}
	for i := d + 1; i < len(v.Dim); i++ {
		inner *= v.Dim[i]
	}
	return
}

// AddDimension inserts a new dimension of the given kind and length at
// position pos, repeating every element along it.
func (v *Variable) AddDimension(pos int, kind DimensionKind, length int) error {
	if pos < 0 || pos > len(v.Dim) {
		return errs.New(errs.InvalidArgument,
			"invalid dimension position (%d) for variable %s", pos, v.Name)
	}
	if length < 1 {
		return errs.New(errs.InvalidArgument,
			"invalid dimension length (%d) for variable %s", length, v.Name)
	}
	if kind != Independent {
		for _, k := range v.DimKind {
			if k == kind {
				return errs.New(errs.InvalidArgument,
					"variable %s already has a %s dimension", v.Name, kind)
			}
		}
		if kind == Time && pos != 0 {
			return errs.New(errs.InvalidArgument,
				"time dimension of variable %s should be the first dimension", v.Name)
		}
	}

	outer := 1
	for i := 0; i < pos; i++ {
		outer *= v.Dim[i]
	}
	inner := v.NumElements() / outer

	old := *v
	v.DimKind = append(v.DimKind[:pos:pos], append([]DimensionKind{kind}, old.DimKind[pos:]...)...)
	v.Dim = append(v.Dim[:pos:pos], append([]int{length}, old.Dim[pos:]...)...)
	v.alloc(v.NumElements())

	for o := 0; o < outer; o++ {
		for l := 0; l < length; l++ {
			dst := (o*length + l) * inner
			src := o * inner
			v.copyBlock(&old, dst, src, inner)
		}
	}
	return nil
}

// RemoveDimension removes dimension d, keeping for every remaining element
// the sub-element at the given offset along the removed dimension.
func (v *Variable) RemoveDimension(d int, offset int) error {
	if d < 0 || d >= len(v.Dim) {
		return errs.New(errs.InvalidArgument,
			"invalid dimension index (%d) for variable %s", d, v.Name)
	}
	if offset < 0 || offset >= v.Dim[d] {
		return errs.New(errs.InvalidArgument,
			"invalid offset (%d) for dimension %d of variable %s", offset, d, v.Name)
	}

	outer, inner := v.blockSizes(d)
	length := v.Dim[d]

	old := *v
	v.DimKind = append(v.DimKind[:d:d], old.DimKind[d+1:]...)
	v.Dim = append(v.Dim[:d:d], old.Dim[d+1:]...)
	v.alloc(v.NumElements())

	for o := 0; o < outer; o++ {
		src := (o*length + offset) * inner
		v.copyBlock(&old, o*inner, src, inner)
	}
	return nil
}

// RearrangeDimension resamples dimension d to a new length, taking the
// slab at index[i] of the old buffer for position i of the new one.
func (v *Variable) RearrangeDimension(d int, newLength int, index []int) error {
	if d < 0 || d >= len(v.Dim) {
		return errs.New(errs.InvalidArgument,
			"invalid dimension index (%d) for variable %s", d, v.Name)
	}
	if len(index) != newLength {
		return errs.New(errs.InvalidArgument,
			"index list length (%d) does not match new dimension length (%d)",
			len(index), newLength)
	}
	for _, ix := range index {
		if ix < 0 || ix >= v.Dim[d] {
			return errs.New(errs.InvalidArgument,
				"index (%d) out of range [0,%d) for variable %s", ix, v.Dim[d], v.Name)
		}
	}

	outer, inner := v.blockSizes(d)
	length := v.Dim[d]

	old := *v
	v.Dim[d] = newLength
	v.alloc(v.NumElements())

	for o := 0; o < outer; o++ {
		for i, ix := range index {
			dst := (o*newLength + i) * inner
			src := (o*length + ix) * inner
			v.copyBlock(&old, dst, src, inner)
		}
	}
	return nil
}

// copyBlock copies n elements from src's buffer at offset so to v's buffer
// at offset do.  Both variables must have the same data type.
func (v *Variable) copyBlock(src *Variable, do, so, n int) {
	switch v.Type {
	case Int8:
		copy(v.Int8Data[do:do+n], src.Int8Data[so:so+n])
	case Int16:
		copy(v.Int16Data[do:do+n], src.Int16Data[so:so+n])
	case Int32:
		copy(v.Int32Data[do:do+n], src.Int32Data[so:so+n])
	case Float32:
		copy(v.Float32Data[do:do+n], src.Float32Data[so:so+n])
	case Float64:
		copy(v.Float64Data[do:do+n], src.Float64Data[so:so+n])
	case String:
		copy(v.StringData[do:do+n], src.StringData[so:so+n])
	}
}
