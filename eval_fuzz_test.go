package formula_test

import (
	"errors"
	"testing"

	"github.com/zephyrtronium/formula"
)

func FuzzEval(f *testing.F) {
	f.Add("3 + 4")
	f.Add("( 3 + 4 ) * 2")
	f.Add("3 / 0")
	f.Add("(-8) ^ (1 / 3)")
	f.Add("2 ^ -3 ^ -4")
	f.Add("1e3 + .5")
	f.Add("(+)")
	f.Add("1e1000000000 - 1e1000000000")
	f.Add("2 ^ 70000")
	f.Add("0.5 ^ 1e300")
	e := formula.NewEvaluator()
	f.Fuzz(func(t *testing.T, s string) {
		r, err := e.EvalString(s)
		if err == nil {
			if r == nil || r.IsInf() {
				t.Errorf("%q evaluated to %v with no error", s, r)
			}
			return
		}
		if r != nil {
			t.Errorf("%q gave result %v with error %v", s, r, err)
		}
		if !errors.Is(err, formula.ErrMalformed) && !errors.Is(err, formula.ErrDivisionByZero) && !errors.Is(err, formula.ErrDomain) {
			t.Errorf("%q gave uncategorized error %v", s, err)
		}
	})
}
