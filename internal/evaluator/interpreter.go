package evaluator

import (
	"tally/internal/ast"
	"tally/internal/object"
	"tally/internal/parser"
)

// IOHandle is the host surface the core consumes. The REPL, script runner
// and tests each provide their own.
type IOHandle interface {
	ReadLine() (string, error)
	WriteLine(s string)
	Exit()
	// ResolveModule locates, evaluates and returns a module value by name,
	// relative to fromLocation. found=false means no such module.
	ResolveModule(fromLocation, name string) (val object.Object, found bool, err error)
}

// Interpreter evaluates expressions against a persistent top-level
// environment. The zero parser and environment are built on demand; a
// parent environment lets a host share one prelude between interpreters.
type Interpreter struct {
	handle   IOHandle
	parser   *parser.Parser
	topEnv   *object.Environment
	location string
	modules  map[string]object.Object
}

func New(handle IOHandle, parentEnv *object.Environment, p *parser.Parser, location string) *Interpreter {
	if p == nil {
		p = parser.New(nil)
	}
	i := &Interpreter{
		handle:   handle,
		parser:   p,
		location: location,
		modules:  make(map[string]object.Object),
	}
	if parentEnv != nil {
		i.topEnv = object.NewEnclosedEnvironment(parentEnv)
		// The shared `.=` and IO natives write to the parent's top-level
		// node; this interpreter's own copies shadow them so that its
		// definitions stay in its own node.
		own := i.buildPrelude()
		for _, name := range []string{".=", "IO"} {
			val, _ := own.Get(name)
			i.topEnv.Define(name, val)
		}
	} else {
		i.topEnv = i.buildPrelude()
	}
	return i
}

// Parser exposes the live parser so hosts can adjust operator priorities
// between top-level expressions.
func (i *Interpreter) Parser() *parser.Parser {
	return i.parser
}

// TopEnv is the session environment; bindings made by `.=` and IO:define
// at the top level land here.
func (i *Interpreter) TopEnv() *object.Environment {
	return i.topEnv
}

// RunAST evaluates an already-parsed expression.
func (i *Interpreter) RunAST(expr ast.Expr) (object.Object, error) {
	return i.finish(i.eval(expr, i.topEnv))
}

// RunLine parses exactly one expression and evaluates it; a non-empty
// remainder is a parse error.
func (i *Interpreter) RunLine(src string) (object.Object, error) {
	expr, err := i.parser.ParseLine(src)
	if err != nil {
		return nil, err
	}
	return i.RunAST(expr)
}

// RunMultiline evaluates every top-level expression in order,
// short-circuiting on the first error.
func (i *Interpreter) RunMultiline(src string) ([]object.Object, error) {
	exprs, err := i.parser.ParseMultiline(src)
	if err != nil {
		return nil, err
	}
	var values []object.Object
	for _, expr := range exprs {
		val, err := i.RunAST(expr)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

// RunMultilineReturnLast is RunMultiline keeping only the final value;
// an empty source yields an empty table.
func (i *Interpreter) RunMultilineReturnLast(src string) (object.Object, error) {
	values, err := i.RunMultiline(src)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return object.NewTable(), nil
	}
	return values[len(values)-1], nil
}

// finish converts an abrupt result into a host-visible error. A sentinel
// escaping here means no native frame caught it.
func (i *Interpreter) finish(result object.Object) (object.Object, error) {
	switch r := result.(type) {
	case *object.RuntimeError:
		return nil, r
	case *object.ReturnValue:
		return nil, object.NewNotInDomain(r.Value, "return escaped Imp:early_return")
	case *object.BreakSignal:
		return nil, object.NewNotInDomain(r, "break outside Imp:while")
	case *object.ContinueSignal:
		return nil, object.NewNotInDomain(r, "continue outside Imp:while")
	}
	return result, nil
}
