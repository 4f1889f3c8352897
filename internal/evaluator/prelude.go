package evaluator

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"tally/internal/object"
)

// buildPrelude populates the root environment: operators, unit
// constructors, booleans and the built-in modules.
func (i *Interpreter) buildPrelude() *object.Environment {
	env := object.NewEnvironment()

	env.Define("true", object.TRUE)
	env.Define("false", object.FALSE)

	env.Define("+", arith("+", func(a, b *object.Unit) object.Object {
		if !a.Dim.Equal(b.Dim) {
			return object.NewDimensionMismatch(a.Dim, b.Dim)
		}
		return &object.Unit{Magnitude: a.Magnitude.Add(b.Magnitude), Dim: a.Dim}
	}))
	env.Define("-", arith("-", func(a, b *object.Unit) object.Object {
		if !a.Dim.Equal(b.Dim) {
			return object.NewDimensionMismatch(a.Dim, b.Dim)
		}
		return &object.Unit{Magnitude: a.Magnitude.Sub(b.Magnitude), Dim: a.Dim}
	}))
	env.Define("*", arith("*", func(a, b *object.Unit) object.Object {
		return &object.Unit{Magnitude: a.Magnitude.Mul(b.Magnitude), Dim: a.Dim.Mul(b.Dim)}
	}))
	env.Define("/", arith("/", func(a, b *object.Unit) object.Object {
		if b.Magnitude.IsZero() {
			return object.NewNotInDomain(b, "division by zero")
		}
		return &object.Unit{Magnitude: a.Magnitude.Div(b.Magnitude), Dim: a.Dim.Div(b.Dim)}
	}))
	env.Define("%", arith("%", func(a, b *object.Unit) object.Object {
		if b.Magnitude.IsZero() {
			return object.NewNotInDomain(b, "modulo by zero")
		}
		if !a.Dim.Equal(b.Dim) {
			return object.NewDimensionMismatch(a.Dim, b.Dim)
		}
		return &object.Unit{Magnitude: a.Magnitude.Mod(b.Magnitude), Dim: a.Dim}
	}))
	env.Define("^", arith("^", powUnit))
	env.Define("^/", arith("^/", rootUnit))

	env.Define("<", compare("<", func(c int) bool { return c < 0 }))
	env.Define(">", compare(">", func(c int) bool { return c > 0 }))
	env.Define("<=", compare("<=", func(c int) bool { return c <= 0 }))
	env.Define(">=", compare(">=", func(c int) bool { return c >= 0 }))

	env.Define("++", native2("++", func(a, b object.Object, _ *object.Environment) object.Object {
		left, ok := a.(*object.String)
		if !ok {
			return object.NewTypeError("string", a)
		}
		right, ok := b.(*object.String)
		if !ok {
			return object.NewTypeError("string", b)
		}
		return &object.String{Value: left.Value + right.Value}
	}))

	env.Define("<<", native2("<<", func(f, g object.Object, _ *object.Environment) object.Object {
		return composed(i, f, g)
	}))
	env.Define(">>", native2(">>", func(f, g object.Object, _ *object.Environment) object.Object {
		return composed(i, g, f)
	}))
	env.Define("|>", native2("|>", func(x, f object.Object, env *object.Environment) object.Object {
		return i.Apply(f, x, env)
	}))
	env.Define("$", native2("$", func(f, x object.Object, env *object.Environment) object.Object {
		return i.Apply(f, x, env)
	}))

	fallback := native2("|?", func(first, second object.Object, _ *object.Environment) object.Object {
		return &object.Native{
			Name: object.LazyName{Thunk: func() string {
				return first.Inspect() + " |? " + second.Inspect()
			}},
			Fn: func(arg object.Object, env *object.Environment) object.Object {
				result := i.Apply(first, arg, env)
				if rtErr, ok := result.(*object.RuntimeError); ok && rtErr.Kind == object.MissingKey {
					return i.Apply(second, arg, env)
				}
				return result
			},
		}
	})
	env.Define("|?", fallback)
	env.Define("fallback", fallback)

	env.Define("~=", native2("~=", func(a, b object.Object, _ *object.Environment) object.Object {
		return weakEquals(a, b)
	}))

	// Binding installs into the session's top-level node, not the local
	// frame: existing closures that captured the chain observe it.
	env.Define(".=", native2(".=", func(sym, val object.Object, _ *object.Environment) object.Object {
		name, ok := sym.(*object.Symbol)
		if !ok {
			return object.NewTypeError("symbol", sym)
		}
		i.topEnv.Define(name.Value, val)
		return val
	}))

	env.Define("seconds", unitCtor("seconds", object.Time))
	env.Define("meters", unitCtor("meters", object.Length))
	env.Define("kilograms", unitCtor("kilograms", object.Mass))
	env.Define("amperes", unitCtor("amperes", object.Current))
	env.Define("kelvins", unitCtor("kelvins", object.Temperature))
	env.Define("moles", unitCtor("moles", object.Amount))
	env.Define("candelas", unitCtor("candelas", object.Luminosity))

	env.Define("IO", i.ioModule())
	env.Define("Str", i.strModule())
	env.Define("Sym", i.symModule())
	env.Define("Refl", i.reflModule())
	env.Define("Imp", i.impModule())
	env.Define("Db", i.dbModule())

	return env
}

func nativeFn(name string, fn object.NativeFn) *object.Native {
	return &object.Native{Name: object.LazyName{Text: name}, Fn: fn}
}

// native2 curries a two-argument native. The partial application's display
// name is a thunk so curried built-ins print without eager formatting.
func native2(name string, fn func(a, b object.Object, env *object.Environment) object.Object) *object.Native {
	return nativeFn(name, func(a object.Object, _ *object.Environment) object.Object {
		return &object.Native{
			Name: object.LazyName{Thunk: func() string { return name + " " + a.Inspect() }},
			Fn: func(b object.Object, env *object.Environment) object.Object {
				return fn(a, b, env)
			},
		}
	})
}

// moduleNative wraps a table as a callable module. The table carries a
// __table__ entry pointing at itself for introspection.
func moduleNative(name string, tbl *object.Table) *object.Native {
	tbl.Set("__table__", tbl)
	return nativeFn(name, func(arg object.Object, _ *object.Environment) object.Object {
		sym, ok := arg.(*object.Symbol)
		if !ok {
			return object.NewTypeError("symbol", arg)
		}
		if val, ok := tbl.Get(sym.Value); ok {
			return val
		}
		return object.NewMissingKey(sym.Value)
	})
}

func arith(name string, fn func(a, b *object.Unit) object.Object) *object.Native {
	return native2(name, func(a, b object.Object, _ *object.Environment) object.Object {
		left, ok := a.(*object.Unit)
		if !ok {
			return object.NewTypeError("unit", a)
		}
		right, ok := b.(*object.Unit)
		if !ok {
			return object.NewTypeError("unit", b)
		}
		return fn(left, right)
	})
}

func compare(name string, accept func(cmp int) bool) *object.Native {
	return native2(name, func(a, b object.Object, _ *object.Environment) object.Object {
		left, ok := a.(*object.Unit)
		if !ok {
			return object.NewTypeError("unit", a)
		}
		right, ok := b.(*object.Unit)
		if !ok {
			return object.NewTypeError("unit", b)
		}
		if !left.Dim.Equal(right.Dim) {
			return object.NewDimensionMismatch(left.Dim, right.Dim)
		}
		return object.NativeBoolToBooleanObject(accept(left.Magnitude.Cmp(right.Magnitude)))
	})
}

func powUnit(a, b *object.Unit) object.Object {
	if !b.Dim.IsZero() {
		return object.NewNotInDomain(b, "exponent must be dimensionless")
	}
	if !b.Magnitude.IsInteger() {
		return object.NewNotInDomain(b, "exponent must be an integer")
	}
	return &object.Unit{
		Magnitude: a.Magnitude.Pow(b.Magnitude),
		Dim:       a.Dim.Pow(b.Magnitude.Rat()),
	}
}

func rootUnit(a, b *object.Unit) object.Object {
	if !b.Dim.IsZero() {
		return object.NewNotInDomain(b, "root index must be dimensionless")
	}
	if !b.Magnitude.IsInteger() {
		return object.NewNotInDomain(b, "root index must be an integer")
	}
	if b.Magnitude.IsZero() {
		return object.NewNotInDomain(b, "zeroth root")
	}
	n := b.Magnitude.IntPart()
	even := n%2 == 0
	if even && a.Magnitude.Sign() < 0 {
		return object.NewNotInDomain(a, "even root of a negative value")
	}
	f, _ := a.Magnitude.Float64()
	var root float64
	if f < 0 {
		root = -math.Pow(-f, 1/float64(n))
	} else {
		root = math.Pow(f, 1/float64(n))
	}
	return &object.Unit{
		Magnitude: decimal.NewFromFloat(root),
		Dim:       a.Dim.Pow(new(big.Rat).Inv(b.Magnitude.Rat())),
	}
}

func unitCtor(name string, base object.Base) *object.Native {
	return nativeFn(name, func(arg object.Object, _ *object.Environment) object.Object {
		u, ok := arg.(*object.Unit)
		if !ok {
			return object.NewTypeError("unit", arg)
		}
		if !u.Dim.IsZero() {
			return object.NewNotInDomain(u, "argument to "+name+" must be dimensionless")
		}
		return &object.Unit{Magnitude: u.Magnitude, Dim: object.BaseDim(base)}
	})
}

func composed(i *Interpreter, outer, inner object.Object) *object.Native {
	return &object.Native{
		Name: object.LazyName{Thunk: func() string {
			return outer.Inspect() + " << " + inner.Inspect()
		}},
		Fn: func(arg object.Object, env *object.Environment) object.Object {
			mid := i.Apply(inner, arg, env)
			if object.IsAbrupt(mid) {
				return mid
			}
			return i.Apply(outer, mid, env)
		},
	}
}

// weakEquals is structural equality over non-function values. Mismatched
// kinds compare false; functions and natives are outside the domain.
func weakEquals(a, b object.Object) object.Object {
	if isCallableOnly(a) {
		return object.NewNotInDomain(a, "functions cannot be weakly compared")
	}
	if isCallableOnly(b) {
		return object.NewNotInDomain(b, "functions cannot be weakly compared")
	}
	if a.Type() != b.Type() {
		return object.FALSE
	}
	switch a := a.(type) {
	case *object.String:
		return object.NativeBoolToBooleanObject(a.Value == b.(*object.String).Value)
	case *object.Symbol:
		return object.NativeBoolToBooleanObject(a.Value == b.(*object.Symbol).Value)
	case *object.Boolean:
		return object.NativeBoolToBooleanObject(a.Value == b.(*object.Boolean).Value)
	case *object.Unit:
		other := b.(*object.Unit)
		return object.NativeBoolToBooleanObject(
			a.Magnitude.Equal(other.Magnitude) && a.Dim.Equal(other.Dim))
	case *object.Table:
		other := b.(*object.Table)
		if a.Len() != other.Len() {
			return object.FALSE
		}
		// Key multiset comparison: same size plus every key present on
		// both sides, values weakly equal.
		for _, key := range a.Keys() {
			left, _ := a.Get(key)
			right, ok := other.Get(key)
			if !ok {
				return object.FALSE
			}
			inner := weakEquals(left, right)
			if object.IsAbrupt(inner) {
				return inner
			}
			if inner == object.FALSE {
				return object.FALSE
			}
		}
		return object.TRUE
	}
	return object.FALSE
}

func isCallableOnly(v object.Object) bool {
	switch v.Type() {
	case object.FUNCTION_OBJ, object.NATIVE_OBJ:
		return true
	}
	return false
}
