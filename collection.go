package formula

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// formulaSpace is the UUID namespace of submitted formula identifiers.
var formulaSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/zephyrtronium/formula"))

// Submitted is a finished formula with the result of evaluating it. A
// Submitted never changes after it is created.
type Submitted struct {
	id     uuid.UUID
	serial uint64
	tokens Sequence
	value  *big.Float
	err    error
	result string
}

// ID returns the formula's identifier, derived from its submission serial and
// its tokens.
func (f *Submitted) ID() uuid.UUID {
	return f.id
}

// Serial returns the 1-based submission number of the formula.
func (f *Submitted) Serial() uint64 {
	return f.serial
}

// Tokens returns a copy of the formula's tokens.
func (f *Submitted) Tokens() Sequence {
	return f.tokens.Clone()
}

// Value returns a copy of the formula's value, or nil if evaluation failed.
func (f *Submitted) Value() *big.Float {
	if f.value == nil {
		return nil
	}
	return new(big.Float).Copy(f.value)
}

// Err returns the evaluation error, if any.
func (f *Submitted) Err() error {
	return f.err
}

// OK reports whether the formula evaluated successfully.
func (f *Submitted) OK() bool {
	return f.err == nil
}

// Result returns the display of the result, e.g. "= 7".
func (f *Submitted) Result() string {
	return f.result
}

// String returns the tokens and result of the formula.
func (f *Submitted) String() string {
	return f.tokens.String() + " " + f.result
}

// Collection holds submitted formulas in submission order. A Collection is not
// safe for concurrent use.
type Collection struct {
	eval   *Evaluator
	items  []*Submitted
	serial uint64
	log    *zap.Logger
}

// NewCollection creates an empty collection evaluating formulas with e. If e
// is nil, a default Evaluator is used.
func NewCollection(e *Evaluator, log *zap.Logger) *Collection {
	if e == nil {
		e = NewEvaluator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collection{eval: e, log: log}
}

// Submit evaluates seq and adds it to the collection. Empty sequences are
// rejected. Submit reports whether it added the formula.
func (c *Collection) Submit(seq Sequence) bool {
	if len(seq) == 0 {
		return false
	}
	seq = seq.Clone()
	c.serial++
	v, err := c.eval.Evaluate(seq)
	f := &Submitted{
		id:     uuid.NewSHA1(formulaSpace, []byte(strconv.FormatUint(c.serial, 10)+"|"+strings.Join(seq.Keys(), "|"))),
		serial: c.serial,
		tokens: seq,
		value:  v,
		err:    err,
		result: c.eval.Display(v, err),
	}
	c.items = append(c.items, f)
	if err != nil {
		c.log.Warn("formula failed to evaluate",
			zap.Stringer("id", f.id),
			zap.String("formula", seq.String()),
			zap.String("rendered", Render(seq)),
			zap.Error(err),
		)
	} else {
		c.log.Info("formula submitted",
			zap.Stringer("id", f.id),
			zap.String("formula", seq.String()),
			zap.String("result", f.result),
		)
	}
	return true
}

// RemoveAt removes the formula at index i. Later formulas move down by one.
// Panics if i is out of range.
func (c *Collection) RemoveAt(i int) {
	if i < 0 || i >= len(c.items) {
		panic("formula: RemoveAt index " + strconv.Itoa(i) + " out of range with length " + strconv.Itoa(len(c.items)))
	}
	c.log.Debug("formula removed", zap.Stringer("id", c.items[i].id), zap.Int("index", i))
	c.items = append(c.items[:i:i], c.items[i+1:]...)
}

// Get returns the formula at index i. Panics if i is out of range.
func (c *Collection) Get(i int) *Submitted {
	return c.items[i]
}

// Len returns the number of formulas in the collection.
func (c *Collection) Len() int {
	return len(c.items)
}

// List returns the formulas in submission order.
func (c *Collection) List() []*Submitted {
	return append([]*Submitted(nil), c.items...)
}

// Evaluator returns the evaluator the collection uses.
func (c *Collection) Evaluator() *Evaluator {
	return c.eval
}
