package ast

import (
	"github.com/shopspring/decimal"
)

// Expr is the expression sum type. The set is closed; the evaluator and the
// printer switch exhaustively over it.
type Expr interface {
	exprNode()
	String() string
}

// Name references a binding in the environment chain. Operator names such
// as "+" are ordinary names; they only read differently in the source.
type Name struct {
	Value string
}

// Dec is an arbitrary-precision decimal literal.
type Dec struct {
	Value decimal.Decimal
}

type Str struct {
	Value string
}

type Symbol struct {
	Value string
}

type TableEntry struct {
	Key   string
	Value Expr
}

// Table is an ordered sequence of key/value entries. Duplicate keys are
// legal in the source; the runtime lets the later entry overwrite.
type Table struct {
	Entries []TableEntry
}

// App is curried application: every call site applies one argument.
type App struct {
	Fn  Expr
	Arg Expr
}

type Cond struct {
	Test Expr
	Then Expr
	Else Expr
}

// Lam is a single-parameter function literal. Captured holds the free
// variables of the body minus the names the parameter binds, in first
// occurrence order; the reflective pretty-printer depends on that order
// being stable.
type Lam struct {
	Param    Pattern
	Body     Expr
	Captured []string
}

func (n *Name) exprNode()   {}
func (d *Dec) exprNode()    {}
func (s *Str) exprNode()    {}
func (s *Symbol) exprNode() {}
func (t *Table) exprNode()  {}
func (a *App) exprNode()    {}
func (c *Cond) exprNode()   {}
func (l *Lam) exprNode()    {}

// Pattern is a lambda parameter: a single name or a duck-typed
// destructuring table.
type Pattern interface {
	patternNode()
	String() string
	// Bound returns the names this pattern binds, in source order.
	Bound() []string
}

type PSingle struct {
	Name string
}

type PTableEntry struct {
	Key string
	Pat Pattern
}

type PTable struct {
	Entries []PTableEntry
}

func (p *PSingle) patternNode() {}
func (p *PTable) patternNode()  {}

func (p *PSingle) Bound() []string {
	return []string{p.Name}
}

func (p *PTable) Bound() []string {
	var names []string
	for _, e := range p.Entries {
		names = append(names, e.Pat.Bound()...)
	}
	return names
}

// MakeLambda builds a Lam and computes its captured names: the free
// variables of body minus the names param binds, deduplicated preserving
// first occurrence.
func MakeLambda(param Pattern, body Expr) *Lam {
	bound := map[string]bool{}
	for _, n := range param.Bound() {
		bound[n] = true
	}
	seen := map[string]bool{}
	var captured []string
	for _, n := range freeVars(body) {
		if bound[n] || seen[n] {
			continue
		}
		seen[n] = true
		captured = append(captured, n)
	}
	return &Lam{Param: param, Body: body, Captured: captured}
}

// freeVars lists free variable occurrences in order. Nested lambdas are
// treated opaquely through their already-computed captured names.
func freeVars(e Expr) []string {
	switch e := e.(type) {
	case *Name:
		return []string{e.Value}
	case *App:
		return append(freeVars(e.Fn), freeVars(e.Arg)...)
	case *Cond:
		names := freeVars(e.Test)
		names = append(names, freeVars(e.Then)...)
		return append(names, freeVars(e.Else)...)
	case *Table:
		var names []string
		for _, entry := range e.Entries {
			names = append(names, freeVars(entry.Value)...)
		}
		return names
	case *Lam:
		return e.Captured
	default:
		return nil
	}
}
