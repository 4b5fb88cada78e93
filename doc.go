// Package formula builds arithmetic formulas out of tokens and evaluates them.
//
// A formula is a sequence of tokens. Literal tokens hold operator or number
// text exactly as typed; variable tokens hold a suggestion resolved from an
// autocomplete source, whose value is either a number or a sub-expression.
// A Builder appends tokens one keystroke at a time and quietly drops an
// operator typed directly after another operator. Typing "=" submits the
// sequence into a Collection, which evaluates it once and keeps the result.
//
// Evaluation renders the tokens to text, lexes it, parses it with the usual
// precedence ("^" binds tightest and associates right, then "*" and "/", then
// "+" and "-") and computes the result with arbitrary-precision floats. Nothing
// is ever handed to a general-purpose interpreter.
package formula
