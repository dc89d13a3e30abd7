// Public domain.

package product

import (
	"github.com/mvaneijk/atmogrid/errs"
)

// Product is an insertion-ordered collection of variables together with the
// extents of the typed dimensions they share.
type Product struct {
	Dimension map[DimensionKind]int
	Variables []*Variable
}

// New creates an empty product.
func New() *Product {
	return &Product{Dimension: make(map[DimensionKind]int)}
}

// HasVariable reports whether a variable with the given name exists.
func (p *Product) HasVariable(name string) bool {
	_, err := p.VariableIndex(name)
	return err == nil
}

// VariableIndex returns the position of the named variable.
func (p *Product) VariableIndex(name string) (int, error) {
	for i, v := range p.Variables {
		if v.Name == name {
			return i, nil
		}
	}
	return -1, errs.New(errs.InvalidProduct, "product does not contain variable %s", name)
}

// GetVariable returns the named variable.
func (p *Product) GetVariable(name string) (*Variable, error) {
	i, err := p.VariableIndex(name)
	if err != nil {
		return nil, err
	}
	return p.Variables[i], nil
}

// checkDimensions verifies a variable's typed dimensions against the
// product extents, registering extents that are still unset.
func (p *Product) checkDimensions(v *Variable) error {
	for i, k := range v.DimKind {
		if k == Independent {
			continue
		}
		if extent, ok := p.Dimension[k]; ok {
			if v.Dim[i] != extent {
				return errs.New(errs.InvalidVariable,
					"%s dimension of variable %s has length %d; product has extent %d",
					k, v.Name, v.Dim[i], extent)
			}
		} else {
			p.Dimension[k] = v.Dim[i]
		}
	}
	return nil
}

// AddVariable appends a variable to the product, taking ownership.
func (p *Product) AddVariable(v *Variable) error {
	if p.HasVariable(v.Name) {
		return errs.New(errs.InvalidArgument,
			"product already contains a variable named %s", v.Name)
	}
	if err := p.checkDimensions(v); err != nil {
		return err
	}
	p.Variables = append(p.Variables, v)
	return nil
}

// ReplaceVariable replaces the equally named variable in place, preserving
// its position.  The previous variable is discarded.
func (p *Product) ReplaceVariable(v *Variable) error {
	i, err := p.VariableIndex(v.Name)
	if err != nil {
		return err
	}
	if err := p.checkDimensions(v); err != nil {
		return err
	}
	p.Variables[i] = v
	return nil
}

// RemoveVariable removes the variable from the product and discards it.
func (p *Product) RemoveVariable(v *Variable) error {
	return p.DetachVariable(v)
}

// DetachVariable removes the variable from the product without discarding
// it; ownership moves back to the caller.
func (p *Product) DetachVariable(v *Variable) error {
	i, err := p.VariableIndex(v.Name)
	if err != nil {
		return err
	}
	if p.Variables[i] != v {
		return errs.New(errs.InvalidArgument,
			"variable %s is not owned by this product", v.Name)
	}
	p.Variables = append(p.Variables[:i], p.Variables[i+1:]...)
	return nil
}

// GetDerivedVariable returns a float64 copy of the named variable in the
// requested unit, verifying its dimension kinds.  The product itself is
// left untouched.
func (p *Product) GetDerivedVariable(name string, dimKind []DimensionKind, targetUnit string) (*Variable, error) {
	v, err := p.GetVariable(name)
	if err != nil {
		return nil, err
	}
	if len(v.DimKind) != len(dimKind) {
		return nil, errs.New(errs.InvalidVariable,
			"variable %s has %d dimensions; expected %d", name, len(v.DimKind), len(dimKind))
	}
	for i := range dimKind {
		if v.DimKind[i] != dimKind[i] {
			return nil, errs.New(errs.InvalidVariable,
				"dimension %d of variable %s is %s; expected %s", i, name, v.DimKind[i], dimKind[i])
		}
	}
	c := v.Copy()
	if err := c.ConvertDataType(Float64); err != nil {
		return nil, err
	}
	if err := c.ConvertUnit(targetUnit); err != nil {
		return nil, err
	}
	return c, nil
}
