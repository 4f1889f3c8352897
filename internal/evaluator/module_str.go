package evaluator

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/object"
)

func (i *Interpreter) strModule() *object.Native {
	tbl := object.NewTable()

	str1 := func(name string, fn func(s string) object.Object) {
		tbl.Set(name, nativeFn("Str:"+name, func(arg object.Object, _ *object.Environment) object.Object {
			s, ok := arg.(*object.String)
			if !ok {
				return object.NewTypeError("string", arg)
			}
			return fn(s.Value)
		}))
	}

	// Configuration-first currying: `Str:contains? "ell" "hello"`.
	str2 := func(name string, fn func(first, second string) object.Object) {
		tbl.Set(name, native2("Str:"+name, func(a, b object.Object, _ *object.Environment) object.Object {
			first, ok := a.(*object.String)
			if !ok {
				return object.NewTypeError("string", a)
			}
			second, ok := b.(*object.String)
			if !ok {
				return object.NewTypeError("string", b)
			}
			return fn(first.Value, second.Value)
		}))
	}

	str1("len", func(s string) object.Object {
		return &object.Unit{Magnitude: decimal.NewFromInt(int64(len([]rune(s))))}
	})
	str1("upper", func(s string) object.Object {
		return &object.String{Value: strings.ToUpper(s)}
	})
	str1("lower", func(s string) object.Object {
		return &object.String{Value: strings.ToLower(s)}
	})
	str1("trim", func(s string) object.Object {
		return &object.String{Value: strings.TrimSpace(s)}
	})
	str1("chars", func(s string) object.Object {
		out := object.NewTable()
		for idx, r := range []rune(s) {
			out.Set(strconv.Itoa(idx), &object.String{Value: string(r)})
		}
		return out
	})

	str2("contains?", func(sub, s string) object.Object {
		return object.NativeBoolToBooleanObject(strings.Contains(s, sub))
	})
	str2("starts?", func(prefix, s string) object.Object {
		return object.NativeBoolToBooleanObject(strings.HasPrefix(s, prefix))
	})
	str2("ends?", func(suffix, s string) object.Object {
		return object.NativeBoolToBooleanObject(strings.HasSuffix(s, suffix))
	})
	str2("split", func(sep, s string) object.Object {
		out := object.NewTable()
		for idx, part := range strings.Split(s, sep) {
			out.Set(strconv.Itoa(idx), &object.String{Value: part})
		}
		return out
	})

	tbl.Set("join", native2("Str:join", func(a, b object.Object, _ *object.Environment) object.Object {
		sep, ok := a.(*object.String)
		if !ok {
			return object.NewTypeError("string", a)
		}
		parts, ok := b.(*object.Table)
		if !ok {
			return object.NewTypeError("table", b)
		}
		rendered := make([]string, 0, parts.Len())
		for _, key := range parts.Keys() {
			val, _ := parts.Get(key)
			s, ok := val.(*object.String)
			if !ok {
				return object.NewTypeError("string", val)
			}
			rendered = append(rendered, s.Value)
		}
		return &object.String{Value: strings.Join(rendered, sep.Value)}
	}))

	tbl.Set("from", nativeFn("Str:from", func(arg object.Object, _ *object.Environment) object.Object {
		return &object.String{Value: display(arg)}
	}))

	return moduleNative("Str", tbl)
}
