package formula

import (
	"io"
	"strings"
)

// Grammar, loosest binding first:
//
//	Expr   = Expr ('+' | '-') Expr
//	       | Expr ('*' | '/') Expr
//	       | ('+' | '-') Expr
//	       | Expr '^' Expr
//	       | '(' Expr ')'
//	       | number

// Expr is a parsed arithmetic expression.
type Expr struct {
	n *node
}

// Parse reads a single expression from src. Anything left over after the
// expression is an error.
func Parse(src io.RuneScanner) (*Expr, error) {
	p := parser{scan: lex(src)}
	n, err := p.term(exprprec)
	if err != nil {
		return nil, err
	}
	switch end := p.scan.must(); end.kind {
	case lexEOF:
		if n == nil {
			// term returns nil only when it stops at a close bracket.
			panic("formula: empty parse at EOF")
		}
		return &Expr{n: n}, nil
	case lexClose:
		return nil, &BracketError{Col: end.pos, Right: end.text}
	default:
		panic("formula: parse ended on " + end.String())
	}
}

// ParseString parses an expression held in a string.
func ParseString(src string) (*Expr, error) {
	return Parse(strings.NewReader(src))
}

// String renders e with each term in parentheses. Parsing the result gives
// back an equal tree.
func (e *Expr) String() string {
	return e.n.String()
}

type parser struct {
	scan *lexer
}

// term parses operators binding tighter than until. On success the token that
// stopped it is unread, so the caller sees it next, EOF included. A term that
// is empty because a close bracket came first gives nil with no error; the
// caller decides whether that is allowed.
func (p *parser) term(until operator) (*node, error) {
	n, err := p.lhs(until)
	if n == nil || err != nil {
		return nil, err
	}
	for {
		tok, err := p.scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case lexOp:
			op := binop(tok.text)
			if op.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if !op.moreBinding(until) {
				p.scan.unread(tok)
				return n, nil
			}
			rhs, err := p.operand(op)
			if err != nil {
				return nil, err
			}
			n = &node{kind: op.op, pos: tok.pos, left: n, right: rhs}
		case lexNum, lexOpen:
			// Juxtaposition is not multiplication.
			return nil, &MissingOperatorError{Col: tok.pos, Text: tok.text}
		case lexClose, lexEOF:
			p.scan.unread(tok)
			return n, nil
		default:
			panic("formula: unknown token: " + tok.String())
		}
	}
}

// operand is term, except that an empty result is an error.
func (p *parser) operand(until operator) (*node, error) {
	n, err := p.term(until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		end := p.scan.must()
		return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
	}
	return n, nil
}

// lhs parses the start of a term: a number, a bracketed subexpression, or a
// unary operator applied to an operand.
func (p *parser) lhs(until operator) (*node, error) {
	tok, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case lexNum:
		return &node{kind: nodeNum, name: tok.text, pos: tok.pos}, nil
	case lexOp:
		op := unop(tok.text)
		if op.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !op.moreBinding(until) {
			// A sign after a tighter operator, as in 2^-3, takes that
			// operator's binding so that it covers only the next term.
			op.prec, op.right = until.prec, until.right
		}
		arg, err := p.operand(op)
		if err != nil {
			return nil, err
		}
		return &node{kind: op.op, pos: tok.pos, left: arg}, nil
	case lexOpen:
		inner, err := p.term(exprprec)
		if err != nil {
			return nil, err
		}
		end := p.scan.must()
		switch {
		case end.kind == lexEOF:
			return nil, &BracketError{Col: end.pos, Left: tok.text}
		case end.kind != lexClose:
			panic("formula: subexpression ended on " + end.String())
		case inner == nil:
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return inner, nil
	case lexClose:
		p.scan.unread(tok)
		return nil, nil
	case lexEOF:
		return nil, &EmptyExpressionError{Col: tok.pos}
	default:
		panic("formula: unknown token: " + tok.String())
	}
}

// operator is the binding of an operator token.
type operator struct {
	prec  int8 // higher binds tighter
	right bool // right-associative
	op    nodeKind
}

func (o operator) moreBinding(than operator) bool {
	if o.prec == than.prec {
		return o.right
	}
	return o.prec > than.prec
}

// binop returns the binary operator spelled text, or one with op nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{prec: 1, op: nodeAdd}
	case "-":
		return operator{prec: 1, op: nodeSub}
	case "*":
		return operator{prec: 5, op: nodeMul}
	case "/":
		return operator{prec: 5, op: nodeDiv}
	case "^":
		return operator{prec: 15, right: true, op: nodePow}
	}
	return operator{}
}

// unop returns the prefix operator spelled text, or one with op nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{prec: 10, right: true, op: nodeNop}
	case "-":
		return operator{prec: 10, right: true, op: nodeNeg}
	}
	return operator{}
}

// exprprec is looser than every operator, so a term parsed with it runs to
// the end of a subexpression.
var exprprec = operator{prec: -128, right: true}
