package formula

import (
	"errors"
	"math/big"
	"strconv"
)

// Error categories. Each error from Parse, Eval, or Evaluate matches exactly
// one of them under errors.Is.
var (
	// ErrMalformed covers unknown words, unbalanced brackets, and missing
	// operands or operators.
	ErrMalformed = errors.New("malformed expression")

	ErrDivisionByZero = errors.New("division by zero")

	// ErrDomain covers results that are not finite real numbers.
	ErrDomain = errors.New("result is not a finite real number")
)

// InputError is implemented by every error caused by bad input.
type InputError interface {
	error
	// Pos is the 1-based rune column in the rendered formula of the token
	// at fault.
	Pos() int
}

// LexError is text that is not a token.
type LexError struct {
	Text string
	// Kind is "number" when the text started like a number and is empty
	// otherwise.
	Kind string
	Col  int
}

func (err *LexError) Error() string {
	what := "token"
	if err.Kind != "" {
		what = err.Kind + " " + what
	}
	return errpos(err.Col, "invalid "+what+" "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int             { return err.Col }
func (err *LexError) Is(target error) bool { return target == ErrMalformed }

// OperatorError is an operator token in a place where it has no meaning, such
// as * with nothing on its left.
type OperatorError struct {
	Col      int
	Operator string
	// Unary is set when the operator stood where an operand was expected.
	Unary    bool
}

func (err *OperatorError) Error() string {
	arity := "binary"
	if err.Unary {
		arity = "unary"
	}
	return errpos(err.Col, strconv.Quote(err.Operator)+" is not a "+arity+" operator")
}

func (err *OperatorError) Pos() int             { return err.Col }
func (err *OperatorError) Is(target error) bool { return target == ErrMalformed }

// BracketError is an unbalanced parenthesis. Exactly one of Left and Right is
// set.
type BracketError struct {
	// Col is the unmatched close bracket, or the end of input for an open
	// bracket that is never closed.
	Col   int
	Left  string
	Right string
}

func (err *BracketError) Error() string {
	if err.Left != "" {
		return errpos(err.Col, "unclosed bracket "+err.Left)
	}
	return errpos(err.Col, "unopened bracket "+err.Right)
}

func (err *BracketError) Pos() int             { return err.Col }
func (err *BracketError) Is(target error) bool { return target == ErrMalformed }

// EmptyExpressionError is a missing operand or an empty pair of brackets.
type EmptyExpressionError struct {
	// Col and End locate the token after the gap. End is empty at the end of
	// input.
	Col int
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return errpos(err.Col, "no expression before "+strconv.Quote(err.End))
	case err.Col > 1:
		return errpos(err.Col, "no expression at end of input")
	default:
		return errpos(err.Col, "no expression")
	}
}

func (err *EmptyExpressionError) Pos() int             { return err.Col }
func (err *EmptyExpressionError) Is(target error) bool { return target == ErrMalformed }

// MissingOperatorError is two operands side by side, as in "3 4" or "2 (3)".
type MissingOperatorError struct {
	// Col and Text locate the second operand.
	Col  int
	Text string
}

func (err *MissingOperatorError) Error() string {
	return errpos(err.Col, "missing operator before "+strconv.Quote(err.Text))
}

func (err *MissingOperatorError) Pos() int             { return err.Col }
func (err *MissingOperatorError) Is(target error) bool { return target == ErrMalformed }

// DivisionByZeroError is x/0, or 0 raised to a negative power.
type DivisionByZeroError struct {
	Col int
	Op  string // "/" or "^"
}

func (err *DivisionByZeroError) Error() string {
	if err.Op == "^" {
		return errpos(err.Col, "zero raised to a negative power")
	}
	return errpos(err.Col, "division by zero")
}

func (err *DivisionByZeroError) Pos() int             { return err.Col }
func (err *DivisionByZeroError) Is(target error) bool { return target == ErrDivisionByZero }

// DomainError is an operation with no finite real result, like (-8)^(1/3) or
// a power too large to represent.
type DomainError struct {
	// X is the offending argument, if one is known.
	X   *big.Float
	Op  string
	Col int
}

func (err *DomainError) Error() string {
	msg := "outside domain"
	if err.X != nil {
		msg = err.X.String() + " " + msg
	}
	if err.Op != "" {
		msg += " of " + err.Op
	}
	return errpos(err.Col, msg)
}

func (err *DomainError) Pos() int             { return err.Col }
func (err *DomainError) Is(target error) bool { return target == ErrDomain }

func errpos(pos int, msg string) string {
	return "column " + strconv.Itoa(pos) + ": " + msg
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*MissingOperatorError)(nil)
	_ InputError = (*DivisionByZeroError)(nil)
	_ InputError = (*DomainError)(nil)
)
