package evaluator

import (
	"log/slog"

	"tally/internal/ast"
	"tally/internal/object"
)

// eval walks the tree, strict in every position. Abrupt objects (errors
// and the Imp sentinels) short-circuit at each step.
func (i *Interpreter) eval(node ast.Expr, env *object.Environment) object.Object {
	switch node := node.(type) {
	case *ast.Dec:
		return &object.Unit{Magnitude: node.Value, Dim: object.NoDim()}

	case *ast.Str:
		return &object.String{Value: node.Value}

	case *ast.Symbol:
		return &object.Symbol{Value: node.Value}

	case *ast.Name:
		if val, ok := env.Get(node.Value); ok {
			return val
		}
		return object.NewUndefinedName(node.Value)

	case *ast.Table:
		tbl := object.NewTable()
		for _, entry := range node.Entries {
			val := i.eval(entry.Value, env)
			if object.IsAbrupt(val) {
				return val
			}
			tbl.Set(entry.Key, val)
		}
		return tbl

	case *ast.App:
		fn := i.eval(node.Fn, env)
		if object.IsAbrupt(fn) {
			return fn
		}
		arg := i.eval(node.Arg, env)
		if object.IsAbrupt(arg) {
			return arg
		}
		return i.Apply(fn, arg, env)

	case *ast.Cond:
		test := i.eval(node.Test, env)
		if object.IsAbrupt(test) {
			return test
		}
		b, ok := test.(*object.Boolean)
		if !ok {
			return object.NewTypeError("boolean", test)
		}
		if b.Value {
			return i.eval(node.Then, env)
		}
		return i.eval(node.Else, env)

	case *ast.Lam:
		return &object.Function{Lam: node, Env: env}
	}

	slog.Warn("unhandled expression node", slog.String("node", node.String()))
	return object.NewOther(&object.String{Value: "unhandled expression: " + node.String()})
}

// Apply dispatches on the callee variant. Exported because the prelude's
// composition and control operators re-enter application.
func (i *Interpreter) Apply(callee, arg object.Object, env *object.Environment) object.Object {
	switch callee := callee.(type) {
	case *object.Native:
		return callee.Fn(arg, env)

	case *object.Function:
		bindings, errObj := i.bind(callee.Lam.Param, arg, env)
		if errObj != nil {
			return errObj
		}
		// The frame's parent is the closure, not the caller: the caller's
		// env only served the destructuring sub-applications above.
		frame := object.NewEnclosedEnvironment(callee.Env)
		for _, b := range bindings {
			frame.Define(b.name, b.value)
		}
		return i.eval(callee.Lam.Body, frame)

	case *object.Table:
		sym, ok := arg.(*object.Symbol)
		if !ok {
			return object.NewTypeError("symbol", arg)
		}
		if val, ok := callee.Get(sym.Value); ok {
			return val
		}
		return object.NewMissingKey(sym.Value)
	}

	return object.NewTypeError("table|function|native", callee)
}

type binding struct {
	name  string
	value object.Object
}

// bind matches a parameter pattern against a value. Table patterns
// extract each key by applying the value to a symbol, so any callee that
// honours symbols can be destructured: that is the duck-typing contract.
func (i *Interpreter) bind(p ast.Pattern, val object.Object, env *object.Environment) ([]binding, object.Object) {
	switch p := p.(type) {
	case *ast.PSingle:
		return []binding{{name: p.Name, value: val}}, nil

	case *ast.PTable:
		var out []binding
		for _, entry := range p.Entries {
			extracted := i.Apply(val, &object.Symbol{Value: entry.Key}, env)
			if object.IsAbrupt(extracted) {
				return nil, extracted
			}
			sub, errObj := i.bind(entry.Pat, extracted, env)
			if errObj != nil {
				return nil, errObj
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	return nil, object.NewOther(&object.String{Value: "unhandled pattern: " + p.String()})
}
