package object

import (
	"math/big"
	"strings"
)

// Base indexes the seven SI base quantities.
type Base int

const (
	Time Base = iota // T
	Length
	Mass
	Current
	Temperature
	Amount
	Luminosity

	baseCount
)

var baseSymbols = [baseCount]string{"s", "m", "kg", "A", "K", "mol", "cd"}

// Dimension is a vector of exact rational exponents over the SI base
// units. A nil slot means exponent zero. Exponents are always reduced:
// big.Rat keeps itself in lowest terms.
type Dimension struct {
	exps [baseCount]*big.Rat
}

// NoDim is the dimensionless dimension.
func NoDim() Dimension {
	return Dimension{}
}

// BaseDim is the dimension with exponent one on a single base unit.
func BaseDim(b Base) Dimension {
	var d Dimension
	d.exps[b] = big.NewRat(1, 1)
	return d
}

// Exp returns the exponent for a base unit (never nil).
func (d Dimension) Exp(b Base) *big.Rat {
	if d.exps[b] == nil {
		return new(big.Rat)
	}
	return d.exps[b]
}

// IsZero reports a fully dimensionless value.
func (d Dimension) IsZero() bool {
	for _, e := range d.exps {
		if e != nil && e.Sign() != 0 {
			return false
		}
	}
	return true
}

// Equal is componentwise equality.
func (d Dimension) Equal(o Dimension) bool {
	for i := Base(0); i < baseCount; i++ {
		if d.Exp(i).Cmp(o.Exp(i)) != 0 {
			return false
		}
	}
	return true
}

// Mul adds exponents (the dimension of a product).
func (d Dimension) Mul(o Dimension) Dimension {
	var out Dimension
	for i := Base(0); i < baseCount; i++ {
		sum := new(big.Rat).Add(d.Exp(i), o.Exp(i))
		if sum.Sign() != 0 {
			out.exps[i] = sum
		}
	}
	return out
}

// Div subtracts exponents (the dimension of a quotient).
func (d Dimension) Div(o Dimension) Dimension {
	var out Dimension
	for i := Base(0); i < baseCount; i++ {
		diff := new(big.Rat).Sub(d.Exp(i), o.Exp(i))
		if diff.Sign() != 0 {
			out.exps[i] = diff
		}
	}
	return out
}

// Pow scales every exponent by a rational factor (powers and roots).
func (d Dimension) Pow(factor *big.Rat) Dimension {
	var out Dimension
	for i := Base(0); i < baseCount; i++ {
		scaled := new(big.Rat).Mul(d.Exp(i), factor)
		if scaled.Sign() != 0 {
			out.exps[i] = scaled
		}
	}
	return out
}

// String renders the unit suffix, e.g. "m·s^-2". Dimensionless renders
// empty. Positive exponents come first, each group in base order
// (s, m, kg, A, K, mol, cd), so a force renders "m·kg·s^-2".
func (d Dimension) String() string {
	var pos, neg []string
	for i := Base(0); i < baseCount; i++ {
		e := d.Exp(i)
		if e.Sign() == 0 {
			continue
		}
		part := baseSymbols[i]
		if e.Cmp(big.NewRat(1, 1)) != 0 {
			part += "^" + e.RatString()
		}
		if e.Sign() > 0 {
			pos = append(pos, part)
		} else {
			neg = append(neg, part)
		}
	}
	return strings.Join(append(pos, neg...), "·")
}
