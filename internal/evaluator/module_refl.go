package evaluator

import (
	"strings"

	"tally/internal/ast"
	"tally/internal/object"
)

func (i *Interpreter) reflModule() *object.Native {
	tbl := object.NewTable()

	tbl.Set("type", nativeFn("Refl:type", func(arg object.Object, _ *object.Environment) object.Object {
		return &object.Symbol{Value: strings.ToLower(string(arg.Type()))}
	}))

	tbl.Set("name", nativeFn("Refl:name", func(arg object.Object, _ *object.Environment) object.Object {
		switch arg := arg.(type) {
		case *object.Native:
			return &object.String{Value: arg.Name.Render()}
		case *object.Function:
			return &object.String{Value: ast.Unparse(arg.Lam)}
		}
		return object.NewTypeError("function|native", arg)
	}))

	tbl.Set("unparse", nativeFn("Refl:unparse", func(arg object.Object, _ *object.Environment) object.Object {
		fn, ok := arg.(*object.Function)
		if !ok {
			return object.NewTypeError("function", arg)
		}
		return &object.String{Value: ast.Unparse(fn.Lam)}
	}))

	// captured maps a function's captured names to their current values
	// in its closure, in capture order.
	tbl.Set("captured", nativeFn("Refl:captured", func(arg object.Object, _ *object.Environment) object.Object {
		fn, ok := arg.(*object.Function)
		if !ok {
			return object.NewTypeError("function", arg)
		}
		out := object.NewTable()
		for _, name := range fn.Lam.Captured {
			if val, ok := fn.Env.Get(name); ok {
				out.Set(name, val)
			}
		}
		return out
	}))

	// env snapshots the caller's current environment node.
	tbl.Set("env", nativeFn("Refl:env", func(_ object.Object, env *object.Environment) object.Object {
		out := object.NewTable()
		for _, name := range env.Names() {
			if val, ok := env.Get(name); ok {
				out.Set(name, val)
			}
		}
		return out
	}))

	return moduleNative("Refl", tbl)
}
