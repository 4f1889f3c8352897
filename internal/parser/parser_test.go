package parser

import (
	"strings"
	"tally/internal/ast"
	"testing"
)

func parseOne(t *testing.T, src string) ast.Expr {
	t.Helper()
	p := New(nil)
	e, err := p.ParseLine(src)
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	return e
}

func wantUnparse(t *testing.T, src, want string) {
	t.Helper()
	if got := ast.Unparse(parseOne(t, src)); got != want {
		t.Errorf("parse(%q) unparses to %q, want %q", src, got, want)
	}
}

func TestApplicationAssociativity(t *testing.T) {
	e := parseOne(t, "a b c d")
	// App(App(App(a,b),c),d)
	outer, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("not an application: %T", e)
	}
	if arg, ok := outer.Arg.(*ast.Name); !ok || arg.Value != "d" {
		t.Fatalf("outermost arg should be d, got %v", outer.Arg)
	}
	mid, ok := outer.Fn.(*ast.App)
	if !ok {
		t.Fatalf("left spine broken: %T", outer.Fn)
	}
	if arg, ok := mid.Arg.(*ast.Name); !ok || arg.Value != "c" {
		t.Fatalf("middle arg should be c, got %v", mid.Arg)
	}
	wantUnparse(t, "a b c d", "a b c d")
}

func TestShuntingYield(t *testing.T) {
	// With * stronger than +: 1 + 2 * 3 == ((+ 1) (* 2 3))
	wantUnparse(t, "1 + 2 * 3", "(+) 1 ((*) 2 3)")
	wantUnparse(t, "1 * 2 + 3", "(+) ((*) 1 2) 3")
}

func TestAssociativitySwitch(t *testing.T) {
	// + is left associative by default.
	wantUnparse(t, "a + b + c", "(+) ((+) a b) c")
	// |? is right associative by default.
	wantUnparse(t, "a |? b |? c", "(|?) a ((|?) b c)")

	// Flipping + to right associativity flips the tree.
	p := New(nil)
	p.SetPriority("+", Priority{Strength: 7, Assoc: Right})
	e, err := p.ParseLine("a + b + c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := ast.Unparse(e); got != "(+) a ((+) b c)" {
		t.Errorf("right-assoc + unparses to %q", got)
	}
}

func TestPriorityMutationBetweenParses(t *testing.T) {
	p := New(nil)
	e, err := p.ParseLine("1 + 2 * 3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := ast.Unparse(e); got != "(+) 1 ((*) 2 3)" {
		t.Fatalf("default tree %q", got)
	}
	// Making + bind tighter than * must change the next parse.
	p.SetPriority("+", Priority{Strength: 9, Assoc: Left})
	e, err = p.ParseLine("1 + 2 * 3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := ast.Unparse(e); got != "(*) ((+) 1 2) 3" {
		t.Errorf("mutated tree %q", got)
	}
}

func TestOperatorSections(t *testing.T) {
	// Left section desugars to the synthetic lambda and prints back.
	e := parseOne(t, "(+ 2)")
	lam, ok := e.(*ast.Lam)
	if !ok {
		t.Fatalf("left section should be a lambda, got %T", e)
	}
	if single, ok := lam.Param.(*ast.PSingle); !ok || single.Name != ast.SectionBinder {
		t.Fatalf("section binder wrong: %v", lam.Param)
	}
	if got := ast.Unparse(e); got != "(+ 2)" {
		t.Errorf("left section unparses to %q", got)
	}

	// Right section is a single partial application.
	wantUnparse(t, "(2 +)", "(+) 2")
	// Bare operator is just the name.
	if n, ok := parseOne(t, "(+)").(*ast.Name); !ok || n.Value != "+" {
		t.Errorf("bare op wrong: %v", parseOne(t, "(+)"))
	}
}

func TestLambdaDesugar(t *testing.T) {
	e := parseOne(t, "x y. x")
	outer, ok := e.(*ast.Lam)
	if !ok {
		t.Fatalf("not a lambda: %T", e)
	}
	inner, ok := outer.Body.(*ast.Lam)
	if !ok {
		t.Fatalf("body should be nested lambda: %T", outer.Body)
	}
	if len(inner.Captured) != 1 || inner.Captured[0] != "x" {
		t.Errorf("inner captured=%v", inner.Captured)
	}
	if len(outer.Captured) != 0 {
		t.Errorf("outer captured=%v", outer.Captured)
	}
	wantUnparse(t, "x y. x", "x y. x")
}

func TestTableLiteral(t *testing.T) {
	wantUnparse(t, "{x: 1, y}", "{x: 1, y}")
	wantUnparse(t, "{}", "{}")
	wantUnparse(t, "{a: 1, b: 2,}", "{a: 1, b: 2}")
	// operator keys
	wantUnparse(t, "{+: plus}", "{+: plus}")
}

func TestTablePatternVersusLiteral(t *testing.T) {
	// A destructuring parameter...
	e := parseOne(t, "{x, y: z}. x")
	lam, ok := e.(*ast.Lam)
	if !ok {
		t.Fatalf("not a lambda: %T", e)
	}
	pt, ok := lam.Param.(*ast.PTable)
	if !ok {
		t.Fatalf("param not a table pattern: %T", lam.Param)
	}
	if pt.Entries[1].Key != "y" {
		t.Errorf("second entry key %q", pt.Entries[1].Key)
	}

	// ...while a table with non-pattern values stays a literal.
	if _, ok := parseOne(t, "{x: 1}").(*ast.Table); !ok {
		t.Error("{x: 1} should parse as a table literal")
	}
}

func TestConditional(t *testing.T) {
	wantUnparse(t, "if p then 1 else 2", "if p then 1 else 2")
}

func TestBacktickOperator(t *testing.T) {
	wantUnparse(t, "1 `max` 2", "max 1 2")
	// backtick sections
	wantUnparse(t, "(1 `max`)", "max 1")
}

func TestNegativeLiteralQuirk(t *testing.T) {
	// `a -1` is application to a negative literal.
	e := parseOne(t, "a -1")
	app, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("a -1 should be an application, got %T", e)
	}
	if _, ok := app.Arg.(*ast.Dec); !ok {
		t.Fatalf("argument should be a literal, got %T", app.Arg)
	}
	// `a - 1` is infix subtraction.
	wantUnparse(t, "a - 1", "(-) a 1")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src     string
		wantMsg string
	}{
		{"if x then y", "Expected `else`"},
		{"if then", "Expected expression after `if`"},
		{"{x: 1", "Unclosed `{` in table literal"},
		{"{x: }", "Expected expression after `:` in table entry"},
		{"x.", "Expected expression after `.`"},
		{"1 2)", "unexpected input after expression"},
		{"1 `f", "Unclosed ` operator"},
	}
	p := New(nil)
	for _, tt := range tests {
		_, err := p.ParseLine(tt.src)
		if err == nil {
			t.Errorf("%q should not parse", tt.src)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("%q error %q, want containing %q", tt.src, err.Error(), tt.wantMsg)
		}
	}
}

func TestParseMultiline(t *testing.T) {
	p := New(nil)
	exprs, err := p.ParseMultiline(":x .= 1; :f .= ({}. x); :x .= 2; f {}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(exprs) != 4 {
		t.Fatalf("expected 4 expressions, got %d", len(exprs))
	}

	exprs, err = p.ParseMultiline("   # just a comment\n")
	if err != nil {
		t.Fatalf("comment-only source should parse: %v", err)
	}
	if len(exprs) != 0 {
		t.Fatalf("expected no expressions, got %d", len(exprs))
	}
}

func TestParseUnparseNormality(t *testing.T) {
	sources := []string{
		"a b c d",
		"x y. x",
		"{x: 1, y}",
		"if p then 1 else 2",
		"(+ 2)",
		"f (g x)",
		`f "str" :sym`,
	}
	p := New(nil)
	for _, src := range sources {
		first, err := p.ParseLine(src)
		if err != nil {
			t.Fatalf("parse error for %q: %v", src, err)
		}
		printed := ast.Unparse(first)
		second, err := p.ParseLine(printed)
		if err != nil {
			t.Fatalf("reparse error for %q (from %q): %v", printed, src, err)
		}
		if ast.Unparse(second) != printed {
			t.Errorf("normality broken: %q -> %q -> %q", src, printed, ast.Unparse(second))
		}
	}
}

func TestLineRemainder(t *testing.T) {
	p := New(nil)
	if _, err := p.ParseLine("1; 2"); err == nil {
		t.Error("two expressions on one line should fail ParseLine")
	}
	if _, err := p.ParseLine("1;"); err != nil {
		t.Errorf("trailing semicolon should be fine: %v", err)
	}
}
