// Package combinator is a tiny parser-combinator engine over arbitrary
// immutable input streams. A parser either succeeds with a value and the
// remaining stream, fails recoverably (an alternative may still match), or
// fails fatally (a committed branch broke; the message must reach the user).
package combinator

// Error is a parse failure. Recoverable failures are absorbed by Or and
// Many; fatal failures propagate through every combinator untouched.
type Error struct {
	Msg         string
	Recoverable bool
}

func (e *Error) Error() string {
	return e.Msg
}

// Result is the outcome of running a parser. On failure Err is non-nil and
// Rest is the original stream, so callers never observe partial consumption.
type Result[S, A any] struct {
	Value A
	Rest  S
	Err   *Error
}

// Parser consumes a stream and produces a value plus the remaining stream.
type Parser[S, A any] func(S) Result[S, A]

// Ok builds a success result.
func Ok[S, A any](v A, rest S) Result[S, A] {
	return Result[S, A]{Value: v, Rest: rest}
}

// Fail builds a recoverable failure, returning the untouched stream.
func Fail[S, A any](s S, msg string) Result[S, A] {
	return Result[S, A]{Rest: s, Err: &Error{Msg: msg, Recoverable: true}}
}

// Bail builds a fatal failure.
func Bail[S, A any](s S, msg string) Result[S, A] {
	return Result[S, A]{Rest: s, Err: &Error{Msg: msg}}
}

// Always succeeds with a fixed value, consuming nothing.
func Always[S, A any](v A) Parser[S, A] {
	return func(s S) Result[S, A] {
		return Ok(v, s)
	}
}

// Map transforms a parser's value.
func Map[S, A, B any](p Parser[S, A], f func(A) B) Parser[S, B] {
	return func(s S) Result[S, B] {
		r := p(s)
		if r.Err != nil {
			return Result[S, B]{Rest: s, Err: r.Err}
		}
		return Ok(f(r.Value), r.Rest)
	}
}

// FlatMap sequences: the second parser depends on the first value.
func FlatMap[S, A, B any](p Parser[S, A], f func(A) Parser[S, B]) Parser[S, B] {
	return func(s S) Result[S, B] {
		r := p(s)
		if r.Err != nil {
			return Result[S, B]{Rest: s, Err: r.Err}
		}
		r2 := f(r.Value)(r.Rest)
		if r2.Err != nil {
			return Result[S, B]{Rest: s, Err: r2.Err}
		}
		return r2
	}
}

// Then runs both parsers and keeps the right value.
func Then[S, A, B any](p Parser[S, A], q Parser[S, B]) Parser[S, B] {
	return FlatMap(p, func(A) Parser[S, B] { return q })
}

// Neht runs both parsers and keeps the left value. The reversed name mirrors
// Then: the arrow of attention points the other way.
func Neht[S, A, B any](p Parser[S, A], q Parser[S, B]) Parser[S, A] {
	return FlatMap(p, func(a A) Parser[S, A] {
		return Map(q, func(B) A { return a })
	})
}

// Pair2 is the result of Pair.
type Pair2[A, B any] struct {
	First  A
	Second B
}

// Pair runs both parsers and keeps both values.
func Pair[S, A, B any](p Parser[S, A], q Parser[S, B]) Parser[S, Pair2[A, B]] {
	return FlatMap(p, func(a A) Parser[S, Pair2[A, B]] {
		return Map(q, func(b B) Pair2[A, B] { return Pair2[A, B]{First: a, Second: b} })
	})
}

// Or tries p; on a recoverable failure it tries q against the original
// stream. A fatal failure from p propagates immediately: this is the only
// mechanism by which a committed branch's message survives an enclosing
// alternative.
func Or[S, A any](p, q Parser[S, A]) Parser[S, A] {
	return func(s S) Result[S, A] {
		r := p(s)
		if r.Err == nil || !r.Err.Recoverable {
			return r
		}
		return q(s)
	}
}

// OneOf folds Or over any number of alternatives.
func OneOf[S, A any](ps ...Parser[S, A]) Parser[S, A] {
	return func(s S) Result[S, A] {
		var last Result[S, A]
		for _, p := range ps {
			last = p(s)
			if last.Err == nil || !last.Err.Recoverable {
				return last
			}
		}
		return last
	}
}

// OrBail converts any failure of p into a fatal one carrying msg. Used
// wherever the grammar has committed and a generic fallback would hide the
// real problem from the user.
func OrBail[S, A any](p Parser[S, A], msg string) Parser[S, A] {
	return func(s S) Result[S, A] {
		r := p(s)
		if r.Err != nil {
			return Bail[S, A](s, msg)
		}
		return r
	}
}

// LookAhead succeeds like p but consumes no input.
func LookAhead[S, A any](p Parser[S, A]) Parser[S, A] {
	return func(s S) Result[S, A] {
		r := p(s)
		if r.Err != nil {
			return r
		}
		return Ok(r.Value, s)
	}
}

// Many applies p until it fails recoverably; zero matches succeed. A fatal
// failure inside p propagates.
func Many[S, A any](p Parser[S, A]) Parser[S, []A] {
	return func(s S) Result[S, []A] {
		var values []A
		rest := s
		for {
			r := p(rest)
			if r.Err != nil {
				if !r.Err.Recoverable {
					return Result[S, []A]{Rest: s, Err: r.Err}
				}
				return Ok(values, rest)
			}
			values = append(values, r.Value)
			rest = r.Rest
		}
	}
}

// ManyAtLeast is Many with a minimum match count; fewer matches fail
// recoverably with failMsg.
func ManyAtLeast[S, A any](n int, p Parser[S, A], failMsg string) Parser[S, []A] {
	return func(s S) Result[S, []A] {
		r := Many(p)(s)
		if r.Err != nil {
			return r
		}
		if len(r.Value) < n {
			return Fail[S, []A](s, failMsg)
		}
		return r
	}
}

// SurroundedBy parses open, inner, close and keeps the inner value.
func SurroundedBy[S, A, O, C any](open Parser[S, O], inner Parser[S, A], close Parser[S, C]) Parser[S, A] {
	return Neht(Then(open, inner), close)
}

// Maybe tries p, succeeding with a nil pointer when it fails recoverably.
func Maybe[S, A any](p Parser[S, A]) Parser[S, *A] {
	return func(s S) Result[S, *A] {
		r := p(s)
		if r.Err != nil {
			if !r.Err.Recoverable {
				return Result[S, *A]{Rest: s, Err: r.Err}
			}
			return Ok[S, *A](nil, s)
		}
		v := r.Value
		return Ok(&v, r.Rest)
	}
}

// SepBy parses zero or more p separated by sep, tolerating one trailing sep.
func SepBy[S, A, B any](p Parser[S, A], sep Parser[S, B]) Parser[S, []A] {
	return func(s S) Result[S, []A] {
		var values []A
		rest := s
		first := p(rest)
		if first.Err != nil {
			if !first.Err.Recoverable {
				return Result[S, []A]{Rest: s, Err: first.Err}
			}
			return Ok(values, rest)
		}
		values = append(values, first.Value)
		rest = first.Rest
		for {
			rs := sep(rest)
			if rs.Err != nil {
				if !rs.Err.Recoverable {
					return Result[S, []A]{Rest: s, Err: rs.Err}
				}
				return Ok(values, rest)
			}
			rp := p(rs.Rest)
			if rp.Err != nil {
				if !rp.Err.Recoverable {
					return Result[S, []A]{Rest: s, Err: rp.Err}
				}
				// trailing separator
				return Ok(values, rs.Rest)
			}
			values = append(values, rp.Value)
			rest = rp.Rest
		}
	}
}

// Lazy defers construction of a parser until first use, which is how the
// mutually recursive grammar productions tie their knots.
func Lazy[S, A any](thunk func() Parser[S, A]) Parser[S, A] {
	var p Parser[S, A]
	return func(s S) Result[S, A] {
		if p == nil {
			p = thunk()
		}
		return p(s)
	}
}
