package object

import "log/slog"

// Environment is one node in the scope chain: an insertion-ordered name
// table plus an outer pointer. Lookups walk outward; definitions mutate
// the node in place, which is what makes a later `IO:define` visible to
// closures that captured this node earlier.
type Environment struct {
	Outer    *Environment
	keys     []string
	bindings map[string]Object
}

func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[string]Object)}
}

// NewEnclosedEnvironment initializes an environment with a parent; one is
// created for every function application. Destructuring creates no
// environment of its own: all names a parameter pattern binds go into that
// application's single frame.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

// Get walks the chain outward.
func (e *Environment) Get(name string) (Object, bool) {
	if val, ok := e.bindings[name]; ok {
		return val, true
	}
	if e.Outer != nil {
		return e.Outer.Get(name)
	}
	return nil, false
}

// Define installs or replaces a binding at this node only.
func (e *Environment) Define(name string, val Object) Object {
	if _, exists := e.bindings[name]; !exists {
		e.keys = append(e.keys, name)
	}
	e.bindings[name] = val
	slog.Debug("binding value",
		slog.String("name", name),
		slog.String("type", string(val.Type())))
	return val
}

// Forget removes a binding from this node; it does not touch outers.
func (e *Environment) Forget(name string) bool {
	if _, ok := e.bindings[name]; !ok {
		return false
	}
	delete(e.bindings, name)
	for i, k := range e.keys {
		if k == name {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
	return true
}

// Names lists the bindings of this node in insertion order.
func (e *Environment) Names() []string {
	return e.keys
}
