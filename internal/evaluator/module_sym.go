package evaluator

import (
	"strings"

	"github.com/google/uuid"

	"tally/internal/object"
)

func (i *Interpreter) symModule() *object.Native {
	tbl := object.NewTable()

	tbl.Set("name", nativeFn("Sym:name", func(arg object.Object, _ *object.Environment) object.Object {
		sym, ok := arg.(*object.Symbol)
		if !ok {
			return object.NewTypeError("symbol", arg)
		}
		return &object.String{Value: sym.Value}
	}))

	tbl.Set("of", nativeFn("Sym:of", func(arg object.Object, _ *object.Environment) object.Object {
		s, ok := arg.(*object.String)
		if !ok {
			return object.NewTypeError("string", arg)
		}
		return &object.Symbol{Value: s.Value}
	}))

	tbl.Set("unique", nativeFn("Sym:unique", func(_ object.Object, _ *object.Environment) object.Object {
		return &object.Symbol{Value: "sym_" + strings.ReplaceAll(uuid.NewString(), "-", "")}
	}))

	return moduleNative("Sym", tbl)
}
