package evaluator

import (
	"tally/internal/object"
)

// impModule provides the imperative control-flow primitives. They are the
// only catchers of the Return/Break/Continue sentinels; anywhere else a
// sentinel keeps unwinding until the interpreter surfaces it as an error.
func (i *Interpreter) impModule() *object.Native {
	tbl := object.NewTable()

	tbl.Set("early_return", nativeFn("Imp:early_return", func(body object.Object, env *object.Environment) object.Object {
		ret := nativeFn("return", func(value object.Object, _ *object.Environment) object.Object {
			return &object.ReturnValue{Value: value}
		})
		result := i.Apply(body, ret, env)
		if rv, ok := result.(*object.ReturnValue); ok {
			return rv.Value
		}
		return result
	}))

	tbl.Set("break", nativeFn("Imp:break", func(_ object.Object, _ *object.Environment) object.Object {
		return &object.BreakSignal{}
	}))

	tbl.Set("continue", nativeFn("Imp:continue", func(_ object.Object, _ *object.Environment) object.Object {
		return &object.ContinueSignal{}
	}))

	tbl.Set("while", native2("Imp:while", func(cond, body object.Object, env *object.Environment) object.Object {
		for {
			test := i.Apply(cond, object.NewTable(), env)
			if object.IsAbrupt(test) {
				return test
			}
			b, ok := test.(*object.Boolean)
			if !ok {
				return object.NewTypeError("boolean", test)
			}
			if !b.Value {
				return object.NewTable()
			}
			result := i.Apply(body, object.NewTable(), env)
			switch result.(type) {
			case *object.BreakSignal:
				return object.NewTable()
			case *object.ContinueSignal:
				continue
			}
			if object.IsAbrupt(result) {
				return result
			}
		}
	}))

	tbl.Set("when", native2("Imp:when", func(cond, body object.Object, env *object.Environment) object.Object {
		b, ok := cond.(*object.Boolean)
		if !ok {
			return object.NewTypeError("boolean", cond)
		}
		if !b.Value {
			return object.NewTable()
		}
		return i.Apply(body, object.NewTable(), env)
	}))

	// chain applies each entry of an ordered table to {} in order and
	// yields the last result.
	tbl.Set("chain", nativeFn("Imp:chain", func(arg object.Object, env *object.Environment) object.Object {
		steps, ok := arg.(*object.Table)
		if !ok {
			return object.NewTypeError("table", arg)
		}
		var last object.Object = object.NewTable()
		for _, key := range steps.Keys() {
			step, _ := steps.Get(key)
			last = i.Apply(step, object.NewTable(), env)
			if object.IsAbrupt(last) {
				return last
			}
		}
		return last
	}))

	return moduleNative("Imp", tbl)
}
