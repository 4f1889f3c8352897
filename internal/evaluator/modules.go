package evaluator

import (
	"log/slog"

	"tally/internal/object"
)

// CircularImportSentinel sits in the module cache while a module is
// loading; a nested import of the same name observes it instead of
// recursing forever.
const CircularImportSentinel = "__circular_import__"

// loadModule resolves a module through the host handle, memoised by name.
func (i *Interpreter) loadModule(name string) object.Object {
	if cached, ok := i.modules[name]; ok {
		if sym, ok := cached.(*object.Symbol); ok && sym.Value == CircularImportSentinel {
			slog.Warn("circular import", slog.String("module", name))
		}
		return cached
	}
	if i.handle == nil {
		return object.NewNotInDomain(&object.String{Value: name}, "no module resolver attached")
	}

	i.modules[name] = &object.Symbol{Value: CircularImportSentinel}
	val, found, err := i.handle.ResolveModule(i.location, name)
	if err != nil {
		delete(i.modules, name)
		return object.NewOther(&object.String{Value: err.Error()})
	}
	if !found {
		delete(i.modules, name)
		return object.NewNotInDomain(&object.String{Value: name}, "module not found")
	}

	slog.Debug("module loaded", slog.String("module", name))
	i.modules[name] = val
	return val
}
