// Public domain.

package binning

import (
	"github.com/mvaneijk/atmogrid/product"
)

// binContext tracks the aggregation rule for every variable of the product
// while the engine mutates it.  The rule list grows alongside the variable
// list when companions are added.
type binContext struct {
	p  *product.Product
	bt []Type
}

func newBinContext(p *product.Product, classify func(*product.Variable) Type) *binContext {
	c := &binContext{p: p, bt: make([]Type, len(p.Variables))}
	for k, v := range p.Variables {
		c.bt[k] = classify(v)
	}
	return c
}

// companionFor finds a "<name>_<suffix>" companion with dimensions matching
// v.  A companion with mismatched dimensions is marked for removal.
func (c *binContext) companionFor(v *product.Variable, suffix string) *product.Variable {
	index, err := c.p.VariableIndex(v.Name + "_" + suffix)
	if err != nil {
		return nil
	}
	if c.bt[index] == Remove {
		return nil
	}

	companion := c.p.Variables[index]
	if companion.NumDims() != v.NumDims() {
		c.bt[index] = Remove
		return nil
	}
	for i := 0; i < companion.NumDims(); i++ {
		if companion.DimKind[i] != v.DimKind[i] || companion.Dim[i] != v.Dim[i] {
			c.bt[index] = Remove
			return nil
		}
	}
	return companion
}

// countFor fills count with per-element count values for v from a
// "<name>_count" or global "count" variable.  It reports whether an
// applicable count variable was found.
func (c *binContext) countFor(v *product.Variable, count []int32) bool {
	if v.NumDims() < 1 || v.DimKind[0] != product.Time {
		return false
	}

	countVariable := c.companionFor(v, "count")
	if countVariable == nil {
		index, err := c.p.VariableIndex("count")
		if err != nil || c.bt[index] == Remove {
			return false
		}
		countVariable = c.p.Variables[index]
	}

	if v.NumElements() == countVariable.NumElements() {
		copy(count, countVariable.Int32Data)
	} else {
		numSub := v.NumElements() / countVariable.NumElements()
		for i := 0; i < countVariable.NumElements(); i++ {
			for j := 0; j < numSub; j++ {
				count[i*numSub+j] = countVariable.Int32Data[i]
			}
		}
	}
	return true
}

// weightFor fills weight with per-element weight values for v from a
// "<name>_weight" or global "weight" variable.  It reports whether an
// applicable weight variable was found.
func (c *binContext) weightFor(v *product.Variable, weight []float32) bool {
	if v.NumDims() <= 1 || v.DimKind[0] != product.Time {
		return false
	}

	weightVariable := c.companionFor(v, "weight")
	if weightVariable == nil {
		index, err := c.p.VariableIndex("weight")
		if err != nil || c.bt[index] == Remove {
			return false
		}
		weightVariable = c.p.Variables[index]

		// leading dimensions should match
		if weightVariable.NumDims() > v.NumDims() {
			return false
		}
		for i := 0; i < weightVariable.NumDims(); i++ {
			if weightVariable.DimKind[i] != v.DimKind[i] || weightVariable.Dim[i] != v.Dim[i] {
				return false
			}
		}
	}

	if v.NumElements() == weightVariable.NumElements() {
		copy(weight, weightVariable.Float32Data)
	} else {
		numSub := v.NumElements() / weightVariable.NumElements()
		for i := 0; i < weightVariable.NumElements(); i++ {
			for j := 0; j < numSub; j++ {
				weight[i*numSub+j] = weightVariable.Float32Data[i]
			}
		}
	}
	return true
}

// addCountVariable adds or replaces a "<name>_count" (or global "count" for
// an empty name) variable holding the given counts, and records the
// aggregation rule to use for it from here on.
func (c *binContext) addCountVariable(target Type, name string,
	dimKind []product.DimensionKind, dim []int, count []int32) error {

	countName := "count"
	if name != "" {
		countName = name + "_count"
	}

	index := -1
	if i, err := c.p.VariableIndex(countName); err == nil {
		index = i
	}

	if index != -1 && c.bt[index] != Remove {
		// an existing valid count variable is assumed consistent
		// (count=0 exactly where the variable is NaN)
		c.bt[index] = target
		return nil
	}

	variable, err := product.NewVariable(countName, product.Int32, dimKind, dim)
	if err != nil {
		return err
	}
	copy(variable.Int32Data, count)
	if index == -1 {
		if err := c.p.AddVariable(variable); err != nil {
			return err
		}
		c.bt = append(c.bt, target)
	} else {
		if err := c.p.ReplaceVariable(variable); err != nil {
			return err
		}
		c.bt[index] = target
	}
	return nil
}

// addWeightVariable adds or replaces a "<name>_weight" (or global "weight"
// for an empty name) variable holding the given weights.
func (c *binContext) addWeightVariable(target Type, name string,
	dimKind []product.DimensionKind, dim []int, weight []float32) error {

	weightName := "weight"
	if name != "" {
		weightName = name + "_weight"
	}

	index := -1
	if i, err := c.p.VariableIndex(weightName); err == nil {
		index = i
	}

	variable, err := product.NewVariable(weightName, product.Float32, dimKind, dim)
	if err != nil {
		return err
	}
	copy(variable.Float32Data, weight)
	if index == -1 {
		if err := c.p.AddVariable(variable); err != nil {
			return err
		}
		c.bt = append(c.bt, target)
	} else {
		if err := c.p.ReplaceVariable(variable); err != nil {
			return err
		}
		c.bt[index] = target
	}
	return nil
}
