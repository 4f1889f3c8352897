package ast

import (
	"strconv"
	"strings"
)

// SectionBinder is the synthetic parameter name used when a left operator
// section is desugared to a lambda. The printer folds the shape back into
// section syntax.
const SectionBinder = "_"

// Unparse re-synthesises surface syntax for an expression. Parsing the
// result yields a structurally equal tree (operator applications come back
// in prefix form, which parses to the same applications).
func Unparse(e Expr) string {
	return e.String()
}

// IsOpName reports whether a name is spelled in operator characters and
// therefore needs parentheses to appear in atom position.
func IsOpName(name string) bool {
	if name == "" {
		return false
	}
	return strings.Trim(name, "-+=*/%!|&^$><?.~") == ""
}

func (n *Name) String() string {
	if IsOpName(n.Value) {
		return "(" + n.Value + ")"
	}
	return n.Value
}

func (d *Dec) String() string {
	return d.Value.String()
}

func (s *Str) String() string {
	return strconv.Quote(s.Value)
}

func (s *Symbol) String() string {
	return ":" + s.Value
}

func (t *Table) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, entry := range t.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		if name, ok := entry.Value.(*Name); ok && name.Value == entry.Key {
			b.WriteString(entry.Key)
			continue
		}
		b.WriteString(entry.Key)
		b.WriteString(": ")
		b.WriteString(entry.Value.String())
	}
	b.WriteString("}")
	return b.String()
}

func (a *App) String() string {
	// Flatten the curried spine so `a b c` prints without parentheses.
	var args []Expr
	head := Expr(a)
	for {
		app, ok := head.(*App)
		if !ok {
			break
		}
		args = append([]Expr{app.Arg}, args...)
		head = app.Fn
	}
	var b strings.Builder
	b.WriteString(wrap(head, isHeadAtomic(head)))
	for _, arg := range args {
		b.WriteString(" ")
		b.WriteString(wrap(arg, isArgAtomic(arg)))
	}
	return b.String()
}

func (c *Cond) String() string {
	return "if " + c.Test.String() + " then " + c.Then.String() + " else " + c.Else.String()
}

func (l *Lam) String() string {
	if section, ok := l.leftSection(); ok {
		return section
	}
	// Re-associate nested lambdas into `a b c. body`.
	var params []string
	body := Expr(l)
	for {
		lam, ok := body.(*Lam)
		if !ok {
			break
		}
		if _, isSection := lam.leftSection(); isSection && len(params) > 0 {
			break
		}
		params = append(params, lam.Param.String())
		body = lam.Body
	}
	return strings.Join(params, " ") + ". " + body.String()
}

// leftSection recognises the synthetic `_. _ ⊕ e` shape and prints it as
// the section `(⊕ e)` the user originally wrote.
func (l *Lam) leftSection() (string, bool) {
	single, ok := l.Param.(*PSingle)
	if !ok || single.Name != SectionBinder {
		return "", false
	}
	outer, ok := l.Body.(*App)
	if !ok {
		return "", false
	}
	inner, ok := outer.Fn.(*App)
	if !ok {
		return "", false
	}
	op, ok := inner.Fn.(*Name)
	if !ok || !IsOpName(op.Value) {
		return "", false
	}
	binder, ok := inner.Arg.(*Name)
	if !ok || binder.Value != SectionBinder {
		return "", false
	}
	return "(" + op.Value + " " + wrap(outer.Arg, isArgAtomic(outer.Arg)) + ")", true
}

func (p *PSingle) String() string {
	return p.Name
}

func (p *PTable) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, entry := range p.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		if single, ok := entry.Pat.(*PSingle); ok && single.Name == entry.Key {
			b.WriteString(entry.Key)
			continue
		}
		b.WriteString(entry.Key)
		b.WriteString(": ")
		b.WriteString(entry.Pat.String())
	}
	b.WriteString("}")
	return b.String()
}

func wrap(e Expr, atomic bool) string {
	if atomic {
		return e.String()
	}
	return "(" + e.String() + ")"
}

func isHeadAtomic(e Expr) bool {
	switch e.(type) {
	case *Lam, *Cond:
		return false
	}
	return true
}

func isArgAtomic(e Expr) bool {
	switch e := e.(type) {
	case *App, *Cond:
		return false
	case *Lam:
		_, isSection := e.leftSection()
		return isSection
	}
	return true
}
