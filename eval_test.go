package formula_test

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zephyrtronium/formula"
)

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"num", "1", "1"},
		{"plus", "+4", "4"},
		{"neg", "-4", "-4"},
		{"add", "3+4", "7"},
		{"add3", "4+5+6", "15"},
		{"sub", "4-5-6", "-7"},
		{"mul", "4*5*6", "120"},
		{"div", "4/5/6", "0.133333333333333"},
		{"prec", "3 + 4 * 2", "11"},
		{"grouped", "( 3 + 4 ) * 2", "14"},
		{"pow", "4^3^2", "262144"},
		{"pow10", "2 ^ 10", "1024"},
		{"negpow", "-2 ^ 2", "-4"},
		{"groupnegpow", "(-2) ^ 2", "4"},
		{"groupnegcube", "(-2) ^ 3", "-8"},
		{"powneg", "2 ^ -1", "0.5"},
		{"powhalf", "2 ^ 0.5", "1.4142135623731"},
		{"zerozero", "0 ^ 0", "1"},
		{"zeropow", "0 ^ 3", "0"},
		{"third", "1 / 3", "0.333333333333333"},
		{"twothirds", "2 / 3", "0.666666666666667"},
		{"tenths", "0.1 + 0.2", "0.3"},
		{"exponent", "1e3 + .5", "1000.5"},
		{"large", "123456789 * 1000", "123456789000"},
		{"huge", "10 ^ 20", "1e+20"},
		{"tiny", "10 ^ -20", "1e-20"},
		{"negzero", "-0", "0"},
		{"cancel", "3 - 3", "0"},
		{"subneg", "3 - -2", "5"},
		{"underflow", "0.5 ^ 1e300", "0"},
		{"onehuge", "1 ^ 1e300", "1"},
	}
	e := formula.NewEvaluator()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := e.EvalString(c.src)
			if err != nil {
				t.Fatalf("%q failed to evaluate: %v", c.src, err)
			}
			if got := e.Format(r); got != c.want {
				t.Errorf("%q: want %s, got %s (%g)", c.src, c.want, got, r)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
		pos  int
	}{
		{"div", "3 / 0", formula.ErrDivisionByZero, 3},
		{"divzero", "1 / (2 - 2)", formula.ErrDivisionByZero, 3},
		{"zeroneg", "0 ^ -1", formula.ErrDivisionByZero, 3},
		{"cuberoot", "(-8) ^ (1 / 3)", formula.ErrDomain, 6},
		{"sqrt", "(-8) ^ 0.5", formula.ErrDomain, 6},
		{"overflow", "(10 ^ 60000) ^ 60000", formula.ErrDomain, 14},
		{"overflowreal", "2 ^ 1e300", formula.ErrDomain, 3},
		{"overflowliteral", "1e1000000000 - 1e1000000000", formula.ErrDomain, 1},
		{"overflowliteralright", "1 + 1e700000000", formula.ErrDomain, 5},
		{"empty", "", formula.ErrMalformed, 1},
		{"trailing", "3 +", formula.ErrMalformed, 4},
		{"consecutive", "3 4", formula.ErrMalformed, 3},
		{"unknown", "3 + x", formula.ErrMalformed, 5},
		{"submit", "3 + 4 =", formula.ErrMalformed, 7},
	}
	e := formula.NewEvaluator()
	categories := []error{formula.ErrMalformed, formula.ErrDivisionByZero, formula.ErrDomain}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := e.EvalString(c.src)
			if r != nil {
				t.Errorf("%q evaluated to %g", c.src, r)
			}
			if !errors.Is(err, c.err) {
				t.Fatalf("%q: want %v, got %v", c.src, c.err, err)
			}
			for _, cat := range categories {
				if cat != c.err && errors.Is(err, cat) {
					t.Errorf("%q: %v also matches %v", c.src, err, cat)
				}
			}
			var ie formula.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("%T is not an InputError", err)
			}
			if ie.Pos() != c.pos {
				t.Errorf("%q: error %v at %d, want %d", c.src, err, ie.Pos(), c.pos)
			}
		})
	}
}

// log2 returns the base 2 logarithm of |x|, for values beyond float64.
func log2(x *big.Float) float64 {
	mant := new(big.Float)
	exp := x.MantExp(mant)
	m, _ := mant.Float64()
	return float64(exp) + math.Log2(math.Abs(m))
}

func TestEvalMagnitude(t *testing.T) {
	cases := []struct {
		name string
		src  string
		log2 float64
		sign int
	}{
		{"bigint", "2 ^ 70000", 70000, 1},
		{"bigintfrac", "0.5 ^ 70000", -70000, 1},
		{"bigintneg", "2 ^ -70000", -70000, 1},
		{"bigintodd", "(-2) ^ 70001", 70001, -1},
		{"bigintevenneg", "(-2) ^ 70002", 70002, 1},
		{"real", "2 ^ 1000.5", 1000.5, 1},
		{"realhuge", "2 ^ 65536.5", 65536.5, 1},
		{"realdecimal", "10 ^ 400.5", 400.5 * math.Log2(10), 1},
		{"realtiny", "10 ^ -400.5", -400.5 * math.Log2(10), 1},
		{"squaring", "3 ^ 60000", 60000 * math.Log2(3), 1},
	}
	e := formula.NewEvaluator()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := e.EvalString(c.src)
			if err != nil {
				t.Fatalf("%q failed to evaluate: %v", c.src, err)
			}
			if r.Sign() != c.sign {
				t.Errorf("%q: wrong sign %d", c.src, r.Sign())
			}
			if got := log2(r); math.Abs(got-c.log2) > 1e-9*math.Abs(c.log2) {
				t.Errorf("%q: log2 of result is %v, want %v", c.src, got, c.log2)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	num := func(name, value string) formula.Token {
		return formula.VariableRef(formula.Suggestion{ID: "id-" + name, Name: name, Value: formula.NumberValue(value)})
	}
	expr := func(name, value string) formula.Token {
		return formula.VariableRef(formula.Suggestion{ID: "id-" + name, Name: name, Value: formula.ExprValue(value)})
	}
	lit := formula.Literal
	cases := []struct {
		name string
		seq  formula.Sequence
		want string
		err  error
	}{
		{"literals", formula.Sequence{lit("3"), lit("+"), lit("4")}, "7", nil},
		{"grouped", formula.Sequence{lit("("), lit("3"), lit("+"), lit("4"), lit(")"), lit("*"), lit("2")}, "14", nil},
		{"divzero", formula.Sequence{lit("3"), lit("/"), lit("0")}, "", formula.ErrDivisionByZero},
		{"variable", formula.Sequence{num("price", "2.5"), lit("*"), lit("4")}, "10", nil},
		{"subexpr", formula.Sequence{expr("total", "1 + 2"), lit("*"), lit("3")}, "9", nil},
		{"negvariable", formula.Sequence{num("debt", "-3"), lit("^"), lit("2")}, "9", nil},
		{"negliteral", formula.Sequence{lit("-3"), lit("^"), lit("2")}, "9", nil},
		{"negsign", formula.Sequence{lit("-"), lit("3"), lit("^"), lit("2")}, "-9", nil},
		{"badsubexpr", formula.Sequence{expr("total", "1 +"), lit("*"), lit("3")}, "", formula.ErrMalformed},
		{"unresolved", formula.Sequence{lit("price"), lit("*"), lit("3")}, "", formula.ErrMalformed},
		{"empty", nil, "", formula.ErrMalformed},
		{"adjacent", formula.Sequence{lit("3"), lit("4")}, "", formula.ErrMalformed},
		{"hugeliterals", formula.Sequence{lit("1e1000000000"), lit("-"), lit("1e1000000000")}, "", formula.ErrDomain},
	}
	e := formula.NewEvaluator()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := e.Evaluate(c.seq)
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Errorf("%v: want %v, got %v", c.seq, c.err, err)
				}
				if got := e.Display(r, err); got != "= "+formula.ErrorMark {
					t.Errorf("%v: wrong display %q", c.seq, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("%v failed to evaluate: %v", c.seq, err)
			}
			if got := e.Display(r, err); got != "= "+c.want {
				t.Errorf("%v: want = %s, got %s", c.seq, c.want, got)
			}
		})
	}
}

func TestEvaluatorOptions(t *testing.T) {
	e := formula.NewEvaluator()
	if e.Prec() != 64 {
		t.Errorf("default precision is %d", e.Prec())
	}
	e = formula.NewEvaluator(formula.Prec(0), nil)
	if e.Prec() != 64 {
		t.Errorf("zero precision gave %d", e.Prec())
	}
	e = formula.NewEvaluator(formula.Prec(256), formula.Digits(5))
	if e.Prec() != 256 {
		t.Errorf("want precision 256, got %d", e.Prec())
	}
	r, err := e.EvalString("1 / 3")
	if err != nil {
		t.Fatal(err)
	}
	if r.Prec() != 256 {
		t.Errorf("result has precision %d", r.Prec())
	}
	if got := e.Format(r); got != "0.33333" {
		t.Errorf("want 0.33333, got %s", got)
	}
	if got := e.Format(big.NewFloat(2.5e-10)); got != "2.5e-10" {
		t.Errorf("want 2.5e-10, got %s", got)
	}
}

func TestArithmeticProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	e := formula.NewEvaluator()
	eval := func(src string) string {
		r, err := e.EvalString(src)
		if err != nil {
			return err.Error()
		}
		return e.Format(r)
	}

	properties.Property("addition matches integers", prop.ForAll(
		func(a, b int64) bool {
			return eval(fmt.Sprintf("%d + %d", a, b)) == strconv.FormatInt(a+b, 10)
		},
		gen.Int64Range(-1e6, 1e6),
		gen.Int64Range(-1e6, 1e6),
	))
	properties.Property("subtraction matches integers", prop.ForAll(
		func(a, b int64) bool {
			return eval(fmt.Sprintf("%d - %d", a, b)) == strconv.FormatInt(a-b, 10)
		},
		gen.Int64Range(-1e6, 1e6),
		gen.Int64Range(-1e6, 1e6),
	))
	properties.Property("multiplication matches integers", prop.ForAll(
		func(a, b int64) bool {
			return eval(fmt.Sprintf("%d * %d", a, b)) == strconv.FormatInt(a*b, 10)
		},
		gen.Int64Range(-1e6, 1e6),
		gen.Int64Range(-1e6, 1e6),
	))
	properties.Property("multiplication binds tighter than addition", prop.ForAll(
		func(a, b, c int64) bool {
			return eval(fmt.Sprintf("%d + %d * %d", a, b, c)) == strconv.FormatInt(a+b*c, 10)
		},
		gen.Int64Range(-1000, 1000),
		gen.Int64Range(-1000, 1000),
		gen.Int64Range(-1000, 1000),
	))
	properties.Property("powers beyond repeated squaring keep their magnitude", prop.ForAll(
		func(k int64, neg, half bool) bool {
			if neg {
				k = -k
			}
			src := fmt.Sprintf("2 ^ %d", k)
			want := float64(k)
			if half {
				src += ".5"
				want += 0.5
				if k < 0 {
					want -= 1
				}
			}
			r, err := e.EvalString(src)
			if err != nil || r.Sign() <= 0 {
				return false
			}
			return math.Abs(log2(r)-want) <= 1e-9*math.Abs(want)
		},
		gen.Int64Range(1<<16+1, 1<<22),
		gen.Bool(),
		gen.Bool(),
	))
	properties.Property("division by zero always fails", prop.ForAll(
		func(a int64) bool {
			_, err := e.EvalString(fmt.Sprintf("%d / 0", a))
			return errors.Is(err, formula.ErrDivisionByZero)
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func BenchmarkEval(b *testing.B) {
	e := formula.NewEvaluator()
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		x, err := formula.ParseString("2+3+4")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			e.Eval(x)
		}
	})
	b.Run("pow", func(b *testing.B) {
		b.ReportAllocs()
		x, err := formula.ParseString("2 ^ 0.5")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			e.Eval(x)
		}
	})
}

func Example() {
	s := formula.NewState()
	for _, word := range []string{"(", "3", "+", "4", ")", "*", "*", "2", "="} {
		s.Builder.Append(word)
	}
	for _, f := range s.Formulas.List() {
		fmt.Println(f.Tokens(), f.Result())
	}
	// Output:
	// ( 3 + 4 ) * 2 = 14
}
