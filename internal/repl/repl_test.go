package repl

import (
	"errors"
	"strings"
	"testing"

	"tally/internal/evaluator"
	"tally/internal/lexer"
	"tally/internal/object"
	"tally/internal/parser"
	"tally/internal/util"
)

type silentHandle struct{}

func (silentHandle) ReadLine() (string, error) { return "", errors.New("no input") }
func (silentHandle) WriteLine(string)          {}
func (silentHandle) Exit()                     {}
func (silentHandle) ResolveModule(_, _ string) (object.Object, bool, error) {
	return nil, false, nil
}

func TestSessionLoop(t *testing.T) {
	interp := evaluator.New(silentHandle{}, nil, nil, "")
	in := strings.NewReader("2 + 2\n:x .= 7\nx * 2\n")
	var out strings.Builder

	Start(interp, in, &out, util.DefaultConfiguration())

	text := out.String()
	for _, want := range []string{"4", "7", "14", ">> "} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestErrorsKeepSessionAlive(t *testing.T) {
	interp := evaluator.New(silentHandle{}, nil, nil, "")
	in := strings.NewReader("nope\n{x: 1\n1 + 1\n")
	var out strings.Builder

	Start(interp, in, &out, util.DefaultConfiguration())

	text := out.String()
	if !strings.Contains(text, "runtime error: undefined name: nope") {
		t.Errorf("runtime error not rendered:\n%s", text)
	}
	if !strings.Contains(text, "parse error: Unclosed `{` in table literal") {
		t.Errorf("parse error not rendered:\n%s", text)
	}
	if !strings.Contains(text, "2") {
		t.Errorf("session did not continue after errors:\n%s", text)
	}
}

func TestPrioDirective(t *testing.T) {
	interp := evaluator.New(silentHandle{}, nil, nil, "")
	in := strings.NewReader(".prio + 9 left\n1 + 2 * 3\n")
	var out strings.Builder

	Start(interp, in, &out, util.DefaultConfiguration())

	// (1 + 2) * 3 once + binds tighter than *
	if !strings.Contains(out.String(), "9") {
		t.Errorf("priority directive had no effect:\n%s", out.String())
	}

	if err := handlePrio(parser.New(nil), ".prio + nine left"); err == nil {
		t.Error("bad strength should error")
	}
	if err := handlePrio(parser.New(nil), ".prio + 9 sideways"); err == nil {
		t.Error("bad associativity should error")
	}
}

func TestRenderError(t *testing.T) {
	if got := RenderError(&lexer.Error{Slice: "£"}); got != "lex error: I don't understand: £" {
		t.Errorf("lex render %q", got)
	}
	if got := RenderError(&parser.Error{Msg: "Expected `then`"}); got != "parse error: Expected `then`" {
		t.Errorf("parse render %q", got)
	}
	if got := RenderError(object.NewUndefinedName("x")); got != "runtime error: undefined name: x" {
		t.Errorf("runtime render %q", got)
	}
}
