package combinator

import (
	"testing"
)

// The tests run over a []rune stream to keep them independent of the token
// package.

type runes struct {
	src []rune
	pos int
}

func stream(s string) runes {
	return runes{src: []rune(s)}
}

func exactly(ch rune) Parser[runes, rune] {
	return func(s runes) Result[runes, rune] {
		if s.pos < len(s.src) && s.src[s.pos] == ch {
			return Ok(ch, runes{src: s.src, pos: s.pos + 1})
		}
		return Fail[runes, rune](s, "expected "+string(ch))
	}
}

func TestMapAndFlatMap(t *testing.T) {
	p := Map(exactly('a'), func(r rune) string { return string(r) + "!" })
	r := p(stream("ab"))
	if r.Err != nil || r.Value != "a!" {
		t.Fatalf("map result %v %v", r.Value, r.Err)
	}

	pq := FlatMap(exactly('a'), func(rune) Parser[runes, rune] { return exactly('b') })
	r2 := pq(stream("ab"))
	if r2.Err != nil || r2.Value != 'b' {
		t.Fatalf("flatMap result %v %v", r2.Value, r2.Err)
	}
	if r2.Rest.pos != 2 {
		t.Fatalf("flatMap should consume both, pos=%d", r2.Rest.pos)
	}

	r3 := pq(stream("ax"))
	if r3.Err == nil {
		t.Fatal("expected failure")
	}
	if r3.Rest.pos != 0 {
		t.Fatalf("failure must return the original stream, pos=%d", r3.Rest.pos)
	}
}

func TestThenNeht(t *testing.T) {
	r := Then(exactly('a'), exactly('b'))(stream("ab"))
	if r.Err != nil || r.Value != 'b' {
		t.Fatalf("then keeps right: %v %v", r.Value, r.Err)
	}
	r2 := Neht(exactly('a'), exactly('b'))(stream("ab"))
	if r2.Err != nil || r2.Value != 'a' {
		t.Fatalf("neht keeps left: %v %v", r2.Value, r2.Err)
	}
}

func TestOrRecovery(t *testing.T) {
	p := Or(exactly('a'), exactly('b'))
	if r := p(stream("b")); r.Err != nil || r.Value != 'b' {
		t.Fatalf("or should recover: %v %v", r.Value, r.Err)
	}

	// A fatal failure must not be absorbed by Or.
	fatal := OrBail(exactly('a'), "needed an a")
	p2 := Or(fatal, exactly('b'))
	r := p2(stream("b"))
	if r.Err == nil || r.Err.Recoverable {
		t.Fatalf("fatal error should propagate through or, got %v", r.Err)
	}
	if r.Err.Msg != "needed an a" {
		t.Fatalf("fatal message lost: %q", r.Err.Msg)
	}
}

func TestLookAhead(t *testing.T) {
	r := LookAhead(exactly('a'))(stream("a"))
	if r.Err != nil || r.Rest.pos != 0 {
		t.Fatalf("lookAhead must not consume, pos=%d err=%v", r.Rest.pos, r.Err)
	}
}

func TestMany(t *testing.T) {
	r := Many(exactly('a'))(stream("aaab"))
	if r.Err != nil || len(r.Value) != 3 || r.Rest.pos != 3 {
		t.Fatalf("many: %v pos=%d err=%v", r.Value, r.Rest.pos, r.Err)
	}
	r2 := Many(exactly('a'))(stream("b"))
	if r2.Err != nil || len(r2.Value) != 0 {
		t.Fatalf("many allows zero: %v %v", r2.Value, r2.Err)
	}
	r3 := ManyAtLeast(2, exactly('a'), "too few")(stream("ab"))
	if r3.Err == nil || !r3.Err.Recoverable {
		t.Fatalf("manyAtLeast under minimum should fail recoverably: %v", r3.Err)
	}
}

func TestSurroundedBy(t *testing.T) {
	p := SurroundedBy(exactly('('), exactly('x'), exactly(')'))
	r := p(stream("(x)"))
	if r.Err != nil || r.Value != 'x' || r.Rest.pos != 3 {
		t.Fatalf("surroundedBy: %v pos=%d err=%v", r.Value, r.Rest.pos, r.Err)
	}
}

func TestSepBy(t *testing.T) {
	p := SepBy(exactly('x'), exactly(','))
	r := p(stream("x,x,x"))
	if r.Err != nil || len(r.Value) != 3 {
		t.Fatalf("sepBy: %v %v", r.Value, r.Err)
	}
	// trailing separator tolerated
	r2 := p(stream("x,x,"))
	if r2.Err != nil || len(r2.Value) != 2 || r2.Rest.pos != 4 {
		t.Fatalf("sepBy trailing: %v pos=%d err=%v", r2.Value, r2.Rest.pos, r2.Err)
	}
	r3 := p(stream(""))
	if r3.Err != nil || len(r3.Value) != 0 {
		t.Fatalf("sepBy empty: %v %v", r3.Value, r3.Err)
	}
}

func TestLazyRecursion(t *testing.T) {
	// nest := '(' nest ')' | 'x'
	var nest func() Parser[runes, int]
	nest = func() Parser[runes, int] {
		return Or(
			Map(SurroundedBy(exactly('('), Lazy(nest), exactly(')')), func(n int) int { return n + 1 }),
			Map(exactly('x'), func(rune) int { return 0 }),
		)
	}
	r := Lazy(nest)(stream("((x))"))
	if r.Err != nil || r.Value != 2 {
		t.Fatalf("lazy recursion: %v %v", r.Value, r.Err)
	}
}

func TestMaybe(t *testing.T) {
	p := Maybe(exactly('a'))
	r := p(stream("a"))
	if r.Err != nil || r.Value == nil || *r.Value != 'a' {
		t.Fatalf("maybe present: %v %v", r.Value, r.Err)
	}
	r2 := p(stream("b"))
	if r2.Err != nil || r2.Value != nil {
		t.Fatalf("maybe absent: %v %v", r2.Value, r2.Err)
	}
}
