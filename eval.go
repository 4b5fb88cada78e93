package formula

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// ErrorMark is the display of a formula that failed to evaluate.
const ErrorMark = "❌ Error"

// Evaluator computes the values of formulas. An Evaluator holds only its
// settings, so it is safe to use concurrently.
type Evaluator struct {
	prec   uint
	digits int
}

// EvalOption is an option used when creating an evaluator.
type EvalOption interface {
	evalOption()
}

type (
	precopt   uint
	digitsopt int
)

func (precopt) evalOption()   {}
func (digitsopt) evalOption() {}

// Prec sets the precision of calculations in bits.
func Prec(prec uint) EvalOption {
	return precopt(prec)
}

// Digits sets the number of significant digits used to format results.
func Digits(n int) EvalOption {
	return digitsopt(n)
}

// NewEvaluator creates an evaluator. If no precision is given, the default is
// 64 bits. If no digits are given, results are formatted to 15 significant
// digits.
func NewEvaluator(opts ...EvalOption) *Evaluator {
	e := Evaluator{prec: 64, digits: 15}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case precopt:
			if opt > 0 {
				e.prec = uint(opt)
			}
		case digitsopt:
			if opt > 0 {
				e.digits = int(opt)
			}
		case nil: // do nothing
		default:
			panic("formula: unknown option type")
		}
	}
	return &e
}

// Prec returns the precision to which values are computed.
func (e *Evaluator) Prec() uint {
	return e.prec
}

// Evaluate renders a token sequence and computes its value. Errors match one
// of ErrMalformed, ErrDivisionByZero, or ErrDomain. An empty sequence is
// malformed.
func (e *Evaluator) Evaluate(seq Sequence) (*big.Float, error) {
	return e.EvalString(Render(seq))
}

// EvalString parses and evaluates an expression.
func (e *Evaluator) EvalString(src string) (*big.Float, error) {
	x, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	return e.Eval(x)
}

// Eval evaluates a parsed expression.
func (e *Evaluator) Eval(x *Expr) (*big.Float, error) {
	m := machine{prec: e.prec}
	if err := x.n.eval(&m); err != nil {
		return nil, err
	}
	if len(m.stack) != 1 {
		panic("formula: inconsistent stack: " + strconv.Itoa(len(m.stack)) + " items (bad AST?)")
	}
	r := m.stack[0]
	if r.IsInf() {
		return nil, &DomainError{Col: x.n.pos}
	}
	return r, nil
}

// Format formats a result to the evaluator's significant digits, without
// trailing zeros.
func (e *Evaluator) Format(x *big.Float) string {
	if x.Sign() == 0 {
		// Includes -0.
		return "0"
	}
	s := x.Text('g', e.digits)
	if mant, exp, ok := strings.Cut(s, "e"); ok {
		return trimZeros(mant) + "e" + exp
	}
	return trimZeros(s)
}

// Display formats the outcome of an evaluation as it is shown beside a
// formula: "= " followed by the result or by ErrorMark.
func (e *Evaluator) Display(x *big.Float, err error) string {
	if err != nil || x == nil {
		return "= " + ErrorMark
	}
	return "= " + e.Format(x)
}

// trimZeros removes trailing zeros after a decimal point, and the point too if
// nothing remains after it.
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// machine is the stack machine evaluating a parse tree.
type machine struct {
	stack []*big.Float
	prec  uint
}

// push adds a settable value to the stack.
func (m *machine) push() *big.Float {
	r := new(big.Float).SetPrec(m.prec)
	m.stack = append(m.stack, r)
	return r
}

// pop removes the top from the stack and returns it.
func (m *machine) pop() *big.Float {
	r := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (m *machine) top() *big.Float {
	return m.stack[len(m.stack)-1]
}

// num parses a number from its text.
func (m *machine) num(n *node) (*big.Float, error) {
	r, _, err := new(big.Float).SetPrec(m.prec).Parse(n.name, 10)
	if err != nil || r.IsInf() {
		// The lexer only produces valid numbers, so this is an exponent
		// overflow. Parse reports some overflows as Inf with no error.
		return nil, &DomainError{Col: n.pos}
	}
	return r, nil
}

// eval pushes the node's value to the machine's stack.
func (n *node) eval(m *machine) error {
	switch n.kind {
	case nodeNum:
		v, err := m.num(n)
		if err != nil {
			return err
		}
		m.push().Set(v)
	case nodeNeg:
		if err := n.left.eval(m); err != nil {
			return err
		}
		v := m.top()
		v.Neg(v)
	case nodeNop:
		if err := n.left.eval(m); err != nil {
			return err
		}
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		if err := n.left.eval(m); err != nil {
			return err
		}
		if err := n.right.eval(m); err != nil {
			return err
		}
		r := m.pop()
		l := m.top()
		return n.binary(l, r)
	default:
		panic("formula: invalid AST node " + n.kind.String())
	}
	return nil
}

// binary sets l to the result of applying the node's operator to l and r.
// Operands are always finite, since num rejects infinite literals and every
// operation rejects an infinite result.
func (n *node) binary(l, r *big.Float) error {
	switch n.kind {
	case nodeAdd:
		l.Add(l, r)
	case nodeSub:
		l.Sub(l, r)
	case nodeMul:
		l.Mul(l, r)
	case nodeDiv:
		if r.Sign() == 0 {
			return &DivisionByZeroError{Col: n.pos, Op: "/"}
		}
		l.Quo(l, r)
	case nodePow:
		if err := pow(l, r, n.pos); err != nil {
			return err
		}
	default:
		panic("formula: invalid binary node " + n.kind.String())
	}
	if l.IsInf() {
		// Exponent overflow.
		return &DomainError{Op: n.kind.symbol(), Col: n.pos}
	}
	return nil
}

// maxIntExp is the largest exponent computed by repeated squaring.
const maxIntExp = 1 << 16

var one = big.NewFloat(1)

// pow sets z to z^y.
func pow(z, y *big.Float, pos int) (err error) {
	switch {
	case y.Sign() == 0:
		// Anything to the zero is one, including zero.
		z.SetInt64(1)
		return nil
	case z.Sign() == 0:
		if y.Sign() < 0 {
			return &DivisionByZeroError{Col: pos, Op: "^"}
		}
		z.SetInt64(0)
		return nil
	}
	if y.IsInt() {
		k, acc := y.Int64()
		if acc == big.Exact && -maxIntExp <= k && k <= maxIntExp {
			powint(z, k)
			return nil
		}
	}
	if z.Cmp(one) == 0 {
		return nil
	}
	neg := false
	if z.Signbit() {
		if !y.IsInt() {
			return &DomainError{X: new(big.Float).Copy(z), Op: "^", Col: pos}
		}
		// Odd integer exponents keep the sign.
		i, _ := y.Int(nil)
		neg = i.Bit(0) == 1
		z.Neg(z)
	}
	// Estimate log2 of the result to catch overflow before bigfloat spends
	// its time on it.
	mant := new(big.Float)
	exp := z.MantExp(mant)
	mf, _ := mant.Float64()
	lz := float64(exp) + math.Log2(mf)
	if d, _ := new(big.Float).Sub(z, one).Float64(); math.Abs(d) < 0.5 {
		// Near 1, the mantissa alone loses the distance from 1.
		lz = math.Log1p(d) / math.Ln2
	}
	yf, _ := y.Float64()
	switch t := yf * lz; {
	case t > big.MaxExp:
		return &DomainError{X: new(big.Float).Copy(y), Op: "^", Col: pos}
	case t < big.MinExp:
		// Underflow.
		z.SetInt64(0)
		return nil
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(big.ErrNaN); !ok {
			panic(r)
		}
		err = &DomainError{X: y, Op: "^", Col: pos}
	}()
	// Pow may return a new value rather than its first argument.
	z.Set(bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), z, y))
	if neg {
		z.Neg(z)
	}
	return nil
}

// powint sets z to z^k by repeated squaring. z must be nonzero.
func powint(z *big.Float, k int64) {
	inv := k < 0
	if inv {
		k = -k
	}
	b := new(big.Float).SetPrec(z.Prec()).Set(z)
	z.SetInt64(1)
	for k > 0 {
		if k&1 == 1 {
			z.Mul(z, b)
		}
		b.Mul(b, b)
		k >>= 1
	}
	if inv {
		z.Quo(new(big.Float).SetPrec(z.Prec()).SetInt64(1), z)
	}
}
