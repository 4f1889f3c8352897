package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/ast"
	c "tally/internal/combinator"
	"tally/internal/lexer"
	"tally/internal/token"
)

// Error is a parse failure with a user-facing message.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

type stream struct {
	toks []token.Token
	pos  int
}

func (s stream) empty() bool {
	return s.pos >= len(s.toks)
}

func (s stream) peek() token.Token {
	if s.empty() {
		return token.Token{}
	}
	return s.toks[s.pos]
}

func tok(t token.TokenType) c.Parser[stream, token.Token] {
	return func(s stream) c.Result[stream, token.Token] {
		if !s.empty() && s.toks[s.pos].Type == t {
			return c.Ok(s.toks[s.pos], stream{toks: s.toks, pos: s.pos + 1})
		}
		return c.Fail[stream, token.Token](s, fmt.Sprintf("expected %s", t))
	}
}

// Parser owns the grammar and the operator table. The table is read on
// every invocation, so precedence changes between top-level expressions
// take effect immediately.
type Parser struct {
	opts *Options
	expr c.Parser[stream, ast.Expr]
	top  c.Parser[stream, ast.Expr]
}

func New(opts *Options) *Parser {
	if opts == nil {
		opts = DefaultOptions()
	}
	p := &Parser{opts: opts}
	p.expr = p.buildGrammar()
	// An optional trailing `;` ends a top-level expression.
	p.top = c.Neht(p.expr, c.Maybe(tok(token.SEMICOLON)))
	return p
}

// Options exposes the live operator table; mutations apply to the next
// parse.
func (p *Parser) Options() *Options {
	return p.opts
}

// SetPriority adjusts one operator's precedence.
func (p *Parser) SetPriority(name string, pri Priority) {
	p.opts.Priorities[name] = pri
}

// ParseLine parses exactly one expression; trailing input is an error.
func (p *Parser) ParseLine(src string) (ast.Expr, error) {
	toks, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		return nil, lexErr
	}
	s := stream{toks: toks}
	r := p.top(s)
	if r.Err != nil {
		return nil, &Error{Msg: r.Err.Msg}
	}
	if !r.Rest.empty() {
		return nil, &Error{Msg: fmt.Sprintf("unexpected input after expression: %q", r.Rest.peek().Literal)}
	}
	return r.Value, nil
}

// ParseMultiline repeatedly parses top-level expressions until the stream
// is empty.
func (p *Parser) ParseMultiline(src string) ([]ast.Expr, error) {
	toks, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		return nil, lexErr
	}
	s := stream{toks: toks}
	var exprs []ast.Expr
	for !s.empty() {
		r := p.top(s)
		if r.Err != nil {
			return nil, &Error{Msg: r.Err.Msg}
		}
		if r.Rest.pos == s.pos {
			return nil, &Error{Msg: fmt.Sprintf("could not parse: %q", s.peek().Literal)}
		}
		exprs = append(exprs, r.Value)
		s = r.Rest
	}
	return exprs, nil
}

func (p *Parser) buildGrammar() c.Parser[stream, ast.Expr] {
	var expr, atomic c.Parser[stream, ast.Expr]
	var param c.Parser[stream, ast.Pattern]

	lazyExpr := c.Lazy(func() c.Parser[stream, ast.Expr] { return expr })
	lazyAtomic := c.Lazy(func() c.Parser[stream, ast.Expr] { return atomic })
	lazyParam := c.Lazy(func() c.Parser[stream, ast.Pattern] { return param })

	// Table keys and symbols admit operator spellings: {+: plus}, :<.
	keyTok := c.Or(tok(token.NAME), tok(token.OP))

	nameLit := c.Map(tok(token.NAME), func(t token.Token) ast.Expr {
		return &ast.Name{Value: t.Literal}
	})

	decLit := func(s stream) c.Result[stream, ast.Expr] {
		r := tok(token.DEC)(s)
		if r.Err != nil {
			return c.Fail[stream, ast.Expr](s, r.Err.Msg)
		}
		d, err := decimal.NewFromString(r.Value.Literal)
		if err != nil {
			return c.Bail[stream, ast.Expr](s, "bad number literal: "+r.Value.Literal)
		}
		return c.Ok[stream, ast.Expr](&ast.Dec{Value: d}, r.Rest)
	}

	strLit := func(t token.TokenType) c.Parser[stream, ast.Expr] {
		return c.Map(tok(t), func(tk token.Token) ast.Expr {
			return &ast.Str{Value: unquote(tk.Literal)}
		})
	}

	symbol := c.Map(
		c.Then(tok(token.COLON), c.OrBail(keyTok, "Expected name after `:`")),
		func(t token.Token) ast.Expr { return &ast.Symbol{Value: t.Literal} })

	// A backtick-quoted expression runs up to the next backtick, which closes
	// it; inside the quotes a backtick never starts a nested operator.
	var quoted c.Parser[stream, ast.Expr] = func(s stream) c.Result[stream, ast.Expr] {
		end := s.pos
		for end < len(s.toks) && s.toks[end].Type != token.BACKTICK {
			end++
		}
		r := lazyExpr(stream{toks: s.toks[:end], pos: s.pos})
		if r.Err != nil || !r.Rest.empty() {
			return c.Fail[stream, ast.Expr](s, "expected expression")
		}
		return c.Ok[stream, ast.Expr](r.Value, stream{toks: s.toks, pos: end})
	}

	infixOp := c.Or(
		c.Map(tok(token.OP), func(t token.Token) Op { return InfixOp{Name: t.Literal} }),
		c.Map(
			c.Then(tok(token.BACKTICK),
				c.Neht(
					c.OrBail(quoted, "Expected expression after `"),
					c.OrBail(tok(token.BACKTICK), "Unclosed ` operator"))),
			func(e ast.Expr) Op { return ExprOp{Expr: e} }))

	cond := c.FlatMap(tok(token.IF), func(token.Token) c.Parser[stream, ast.Expr] {
		return c.FlatMap(c.OrBail(lazyExpr, "Expected expression after `if`"), func(test ast.Expr) c.Parser[stream, ast.Expr] {
			return c.FlatMap(c.OrBail(tok(token.THEN), "Expected `then` after `if` condition"), func(token.Token) c.Parser[stream, ast.Expr] {
				return c.FlatMap(c.OrBail(lazyExpr, "Expected expression after `then`"), func(then ast.Expr) c.Parser[stream, ast.Expr] {
					return c.FlatMap(c.OrBail(tok(token.ELSE), "Expected `else` after `then` branch"), func(token.Token) c.Parser[stream, ast.Expr] {
						return c.Map(c.OrBail(lazyExpr, "Expected expression after `else`"), func(alt ast.Expr) ast.Expr {
							return &ast.Cond{Test: test, Then: then, Else: alt}
						})
					})
				})
			})
		})
	})

	tableEntry := c.FlatMap(keyTok, func(key token.Token) c.Parser[stream, ast.TableEntry] {
		withValue := c.Map(
			c.Then(tok(token.COLON), c.OrBail(lazyExpr, "Expected expression after `:` in table entry")),
			func(value ast.Expr) ast.TableEntry {
				return ast.TableEntry{Key: key.Literal, Value: value}
			})
		// Shorthand entry: `k` stands for `k: k`.
		shorthand := c.Always[stream](ast.TableEntry{
			Key:   key.Literal,
			Value: &ast.Name{Value: key.Literal},
		})
		return c.Or(withValue, shorthand)
	})

	table := c.Map(
		c.Then(tok(token.LBRACE),
			c.Neht(
				c.SepBy(tableEntry, tok(token.COMMA)),
				c.OrBail(tok(token.RBRACE), "Unclosed `{` in table literal"))),
		func(entries []ast.TableEntry) ast.Expr {
			return &ast.Table{Entries: entries}
		})

	// Parameter patterns fail recoverably throughout: `{x: 1}` must fall
	// back to the table-literal interpretation when the lambda branch
	// cannot bind it.
	paramEntry := c.FlatMap(keyTok, func(key token.Token) c.Parser[stream, ast.PTableEntry] {
		withPat := c.Map(
			c.Then(tok(token.COLON), lazyParam),
			func(pat ast.Pattern) ast.PTableEntry {
				return ast.PTableEntry{Key: key.Literal, Pat: pat}
			})
		shorthand := c.Always[stream](ast.PTableEntry{
			Key: key.Literal,
			Pat: &ast.PSingle{Name: key.Literal},
		})
		return c.Or(withPat, shorthand)
	})

	tablePattern := c.Map(
		c.Then(tok(token.LBRACE),
			c.Neht(
				c.SepBy(paramEntry, tok(token.COMMA)),
				tok(token.RBRACE))),
		func(entries []ast.PTableEntry) ast.Pattern {
			return &ast.PTable{Entries: entries}
		})

	param = c.OneOf(
		c.Map(tok(token.NAME), func(t token.Token) ast.Pattern { return &ast.PSingle{Name: t.Literal} }),
		c.Map(tok(token.OP), func(t token.Token) ast.Pattern { return &ast.PSingle{Name: t.Literal} }),
		tablePattern)

	lambda := c.FlatMap(c.ManyAtLeast(1, param, "expected parameter"), func(params []ast.Pattern) c.Parser[stream, ast.Expr] {
		return c.Then(tok(token.DOT),
			c.Map(c.OrBail(lazyExpr, "Expected expression after `.`"), func(body ast.Expr) ast.Expr {
				return foldLambda(params, body)
			}))
	})

	bareOp := c.Map(
		c.SurroundedBy(tok(token.LPAREN), infixOp, tok(token.RPAREN)),
		func(op Op) ast.Expr { return calleeOf(op) })

	leftSection := c.FlatMap(c.Then(tok(token.LPAREN), infixOp), func(op Op) c.Parser[stream, ast.Expr] {
		return c.Map(c.Neht(lazyAtomic, tok(token.RPAREN)), func(arg ast.Expr) ast.Expr {
			return leftSectionLambda(op, arg)
		})
	})

	grouped := c.SurroundedBy(tok(token.LPAREN), lazyExpr, tok(token.RPAREN))

	rightSection := c.FlatMap(c.Then(tok(token.LPAREN), lazyAtomic), func(arg ast.Expr) c.Parser[stream, ast.Expr] {
		return c.Map(c.Neht(infixOp, tok(token.RPAREN)), func(op Op) ast.Expr {
			return &ast.App{Fn: calleeOf(op), Arg: arg}
		})
	})

	paren := c.OneOf(bareOp, leftSection, grouped, rightSection)

	atomic = c.OneOf(
		decLit,
		strLit(token.STRING1),
		strLit(token.STRING2),
		symbol,
		nameLit,
		cond,
		table,
		paren)

	application := c.Map(
		c.ManyAtLeast(1, lazyAtomic, "expected expression"),
		func(atoms []ast.Expr) ast.Expr {
			e := atoms[0]
			for _, a := range atoms[1:] {
				e = &ast.App{Fn: e, Arg: a}
			}
			return e
		})

	infix := c.FlatMap(application, func(initial ast.Expr) c.Parser[stream, ast.Expr] {
		return c.Map(c.Many(c.Pair(infixOp, application)), func(pairs []c.Pair2[Op, ast.Expr]) ast.Expr {
			if len(pairs) == 0 {
				return initial
			}
			list := OpList{Initial: initial}
			for _, pair := range pairs {
				list.Chunks = append(list.Chunks, OpChunk{Op: pair.First, Operand: pair.Second})
			}
			return ResolveOps(list, p.opts)
		})
	})

	expr = c.Or(lambda, infix)
	return expr
}

func foldLambda(params []ast.Pattern, body ast.Expr) ast.Expr {
	e := body
	for i := len(params) - 1; i >= 0; i-- {
		e = ast.MakeLambda(params[i], e)
	}
	return e
}

// leftSectionLambda desugars `(⊕ e)` to `_. _ ⊕ e`.
func leftSectionLambda(op Op, arg ast.Expr) ast.Expr {
	binder := &ast.Name{Value: ast.SectionBinder}
	return ast.MakeLambda(&ast.PSingle{Name: ast.SectionBinder},
		&ast.App{Fn: &ast.App{Fn: calleeOf(op), Arg: binder}, Arg: arg})
}

// unquote strips the delimiters from a string token and decodes escapes.
func unquote(lit string) string {
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}
