package lexer

import (
	"strings"
	"tally/internal/token"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `:f .= (x y. if x < y then x else y);
{k: 1, short}
"str" ++ 'other'
upper? not! a -1 a - 1
3.14e-2 ` + "`max`" + ` # trailing comment`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.COLON, ":"},
		{token.NAME, "f"},
		{token.OP, ".="},
		{token.LPAREN, "("},
		{token.NAME, "x"},
		{token.NAME, "y"},
		{token.DOT, "."},
		{token.IF, "if"},
		{token.NAME, "x"},
		{token.OP, "<"},
		{token.NAME, "y"},
		{token.THEN, "then"},
		{token.NAME, "x"},
		{token.ELSE, "else"},
		{token.NAME, "y"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.LBRACE, "{"},
		{token.NAME, "k"},
		{token.COLON, ":"},
		{token.DEC, "1"},
		{token.COMMA, ","},
		{token.NAME, "short"},
		{token.RBRACE, "}"},
		{token.STRING2, `"str"`},
		{token.OP, "++"},
		{token.STRING1, `'other'`},
		{token.NAME, "upper?"},
		{token.NAME, "not!"},
		{token.NAME, "a"},
		{token.DEC, "-1"},
		{token.NAME, "a"},
		{token.OP, "-"},
		{token.DEC, "1"},
		{token.DEC, "3.14e-2"},
		{token.BACKTICK, "`"},
		{token.NAME, "max"},
		{token.BACKTICK, "`"},
	}

	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if len(toks) != len(tests) {
		t.Fatalf("token count wrong. expected=%d, got=%d", len(tests), len(toks))
	}
	for i, tt := range tests {
		if toks[i].Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, tt.expectedType, toks[i].Type, toks[i].Literal)
		}
		if toks[i].Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, toks[i].Literal)
		}
	}
}

func TestKeywordsNeedWordBoundary(t *testing.T) {
	toks, err := Tokenize("iffy then!")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if toks[0].Type != token.NAME || toks[0].Literal != "iffy" {
		t.Errorf("expected name iffy, got %q %q", toks[0].Type, toks[0].Literal)
	}
	if toks[1].Type != token.NAME || toks[1].Literal != "then!" {
		t.Errorf("expected name then!, got %q %q", toks[1].Type, toks[1].Literal)
	}
}

func TestDotVersusOperator(t *testing.T) {
	toks, err := Tokenize("x. x .= y ..")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	want := []token.TokenType{token.NAME, token.DOT, token.NAME, token.OP, token.NAME, token.OP}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, typ, toks[i].Type)
		}
	}
	if toks[3].Literal != ".=" {
		t.Errorf("expected .= operator, got %q", toks[3].Literal)
	}
	if toks[5].Literal != ".." {
		t.Errorf("expected .. operator, got %q", toks[5].Literal)
	}
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		":x .= 1; # comment\nf {a: 'one', b: \"two\\n\"}",
		"(+ 2) >> (* 3) $ 4",
		"meters 3 + seconds 4\n\t# tab indented comment",
		"if a ~= b then {x} else `cmp` 1 2",
	}
	for _, src := range sources {
		toks, err := TokenizeAll(src)
		if err != nil {
			t.Fatalf("unexpected lex error for %q: %v", src, err)
		}
		var b strings.Builder
		for _, tok := range toks {
			b.WriteString(tok.Literal)
		}
		if b.String() != src {
			t.Errorf("round trip failed.\nexpected=%q\ngot=%q", src, b.String())
		}
	}
}

func TestPositions(t *testing.T) {
	toks, err := Tokenize("ab  cd")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if toks[0].Position != 0 || toks[1].Position != 4 {
		t.Errorf("positions wrong: %d, %d", toks[0].Position, toks[1].Position)
	}
}

func TestLexError(t *testing.T) {
	toks, err := Tokenize("a ~= b")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if toks[1].Type != token.OP || toks[1].Literal != "~=" {
		t.Errorf("expected ~= operator, got %q %q", toks[1].Type, toks[1].Literal)
	}

	_, err = Tokenize("ok £§ rest")
	if err == nil {
		t.Fatal("expected lex error for £§")
	}
	if err.Slice != "£§" {
		t.Errorf("expected error slice £§, got %q", err.Slice)
	}
	if !strings.Contains(err.Error(), "I don't understand") {
		t.Errorf("unexpected error text %q", err.Error())
	}

	_, err = Tokenize(`"unterminated`)
	if err == nil {
		t.Fatal("expected lex error for unterminated string")
	}
}
