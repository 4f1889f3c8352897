package evaluator

import (
	"log/slog"

	"tally/internal/object"
)

func (i *Interpreter) ioModule() *object.Native {
	tbl := object.NewTable()

	tbl.Set("print", nativeFn("IO:print", func(arg object.Object, _ *object.Environment) object.Object {
		if i.handle == nil {
			return object.NewNotInDomain(arg, "no I/O handle attached")
		}
		i.handle.WriteLine(display(arg))
		return arg
	}))

	// println emits an explicit trailing line terminator on top of the
	// handle's line write, separating the output from what follows.
	tbl.Set("println", nativeFn("IO:println", func(arg object.Object, _ *object.Environment) object.Object {
		if i.handle == nil {
			return object.NewNotInDomain(arg, "no I/O handle attached")
		}
		i.handle.WriteLine(display(arg) + "\n")
		return arg
	}))

	tbl.Set("readline", nativeFn("IO:readline", func(arg object.Object, _ *object.Environment) object.Object {
		if i.handle == nil {
			return object.NewNotInDomain(arg, "no I/O handle attached")
		}
		line, err := i.handle.ReadLine()
		if err != nil {
			return object.NewOther(&object.String{Value: err.Error()})
		}
		return &object.String{Value: line}
	}))

	// define and forget mutate the session's top-level node in place, so
	// the change is visible through every closure holding the chain.
	tbl.Set("define", native2("IO:define", func(sym, val object.Object, _ *object.Environment) object.Object {
		name, ok := sym.(*object.Symbol)
		if !ok {
			return object.NewTypeError("symbol", sym)
		}
		i.topEnv.Define(name.Value, val)
		return val
	}))

	tbl.Set("forget", nativeFn("IO:forget", func(sym object.Object, _ *object.Environment) object.Object {
		name, ok := sym.(*object.Symbol)
		if !ok {
			return object.NewTypeError("symbol", sym)
		}
		return object.NativeBoolToBooleanObject(i.topEnv.Forget(name.Value))
	}))

	tbl.Set("try", nativeFn("IO:try", func(thunk object.Object, env *object.Environment) object.Object {
		result := i.Apply(thunk, object.NewTable(), env)
		if rtErr, ok := result.(*object.RuntimeError); ok {
			detail := object.NewTable()
			detail.Set("kind", &object.String{Value: string(rtErr.Kind)})
			detail.Set("message", &object.String{Value: rtErr.Error()})
			out := object.NewTable()
			out.Set("error", detail)
			return out
		}
		if object.IsAbrupt(result) {
			// sentinels keep unwinding; try only reifies errors
			return result
		}
		out := object.NewTable()
		out.Set("ok", result)
		return out
	}))

	tbl.Set("exit", nativeFn("IO:exit", func(arg object.Object, _ *object.Environment) object.Object {
		if i.handle == nil {
			return object.NewNotInDomain(arg, "no I/O handle attached")
		}
		slog.Info("exit requested from program")
		i.handle.Exit()
		return object.NewTable()
	}))

	tbl.Set("import", nativeFn("IO:import", func(arg object.Object, _ *object.Environment) object.Object {
		name, ok := arg.(*object.String)
		if !ok {
			return object.NewTypeError("string", arg)
		}
		return i.loadModule(name.Value)
	}))

	return moduleNative("IO", tbl)
}

// display renders a value for the user: strings print raw, everything
// else through Inspect.
func display(v object.Object) string {
	if s, ok := v.(*object.String); ok {
		return s.Value
	}
	return v.Inspect()
}
