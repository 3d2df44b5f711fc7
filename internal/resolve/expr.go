package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed reports a structurally malformed type expression.
var ErrMalformed = errors.New("malformed type expression")

// ExprKind is the syntactic category of an Expr.
type ExprKind int

const (
	ExprName ExprKind = iota
	ExprList
	ExprUnion
	ExprString
	ExprNumber
	ExprEllipsis
)

// Expr is a parsed type expression.
type Expr struct {
	Kind ExprKind
	// Text is the dotted name, the unquoted string or the number literal.
	Text string
	// Args holds subscript arguments of a name, list elements or union
	// alternatives.
	Args []*Expr
}

// Parse parses a raw type expression.
func Parse(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, toks: toks}

	e, err := p.union()
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t)
	}

	return e, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}

	return t
}

func (p *parser) unexpected(t token) error {
	if t.kind == tokEOF {
		return fmt.Errorf("%w: unexpected end of %q", ErrMalformed, p.src)
	}

	return fmt.Errorf("%w: unexpected %q at offset %d in %q", ErrMalformed, t.text, t.pos, p.src)
}

func (p *parser) union() (*Expr, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}

	if p.peek().kind != tokPipe {
		return first, nil
	}

	u := &Expr{Kind: ExprUnion, Args: []*Expr{first}}
	for p.peek().kind == tokPipe {
		p.next()

		alt, err := p.term()
		if err != nil {
			return nil, err
		}

		u.Args = append(u.Args, alt)
	}

	return u, nil
}

func (p *parser) term() (*Expr, error) {
	t := p.next()

	switch t.kind {
	case tokName:
		if err := validateName(t.text); err != nil {
			return nil, fmt.Errorf("%w at offset %d in %q", err, t.pos, p.src)
		}

		e := &Expr{Kind: ExprName, Text: t.text}
		if p.peek().kind == tokLBrack {
			p.next()

			args, err := p.args(false)
			if err != nil {
				return nil, err
			}

			e.Args = args
		}

		return e, nil
	case tokLBrack:
		args, err := p.args(true)
		if err != nil {
			return nil, err
		}

		return &Expr{Kind: ExprList, Args: args}, nil
	case tokString:
		return &Expr{Kind: ExprString, Text: t.text}, nil
	case tokNumber:
		return &Expr{Kind: ExprNumber, Text: t.text}, nil
	case tokEllipsis:
		return &Expr{Kind: ExprEllipsis, Text: "..."}, nil
	default:
		return nil, p.unexpected(t)
	}
}

// args parses a comma separated list up to and including the closing bracket.
func (p *parser) args(allowEmpty bool) ([]*Expr, error) {
	if p.peek().kind == tokRBrack {
		t := p.next()
		if !allowEmpty {
			return nil, p.unexpected(t)
		}

		return []*Expr{}, nil
	}

	var args []*Expr

	for {
		e, err := p.union()
		if err != nil {
			return nil, err
		}

		args = append(args, e)

		switch t := p.next(); t.kind {
		case tokRBrack:
			return args, nil
		case tokComma:
			if p.peek().kind == tokRBrack {
				p.next()
				return args, nil
			}
		default:
			return nil, p.unexpected(t)
		}
	}
}

func validateName(name string) error {
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return fmt.Errorf("%w: empty segment in name %q", ErrMalformed, name)
		}
	}

	return nil
}

// Walk calls fn for e and every nested expression, depth first.
func (e *Expr) Walk(fn func(*Expr)) {
	if e == nil {
		return
	}

	fn(e)

	for _, a := range e.Args {
		a.Walk(fn)
	}
}
