package formula

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Resolver resolves typed text to a suggestion. Resolve must not block; text
// that cannot be resolved right away is not found.
type Resolver interface {
	Resolve(text string) (Suggestion, bool)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(text string) (Suggestion, bool)

// Resolve calls f(text).
func (f ResolverFunc) Resolve(text string) (Suggestion, bool) {
	return f(text)
}

// Submitter receives finished formulas. Submit reports whether it accepted
// the sequence.
type Submitter interface {
	Submit(seq Sequence) bool
}

// Effect describes what an input did to a Builder.
type Effect int8

const (
	// EffectIgnored means the input changed nothing.
	EffectIgnored Effect = iota
	// EffectDropped means the input was an operator directly after another
	// operator and was discarded.
	EffectDropped
	// EffectAppended means the input added a token.
	EffectAppended
	// EffectSubmitted means the input submitted the formula.
	EffectSubmitted
)

func (e Effect) String() string {
	switch e {
	case EffectIgnored:
		return "ignored"
	case EffectDropped:
		return "dropped"
	case EffectAppended:
		return "appended"
	case EffectSubmitted:
		return "submitted"
	default:
		return "Effect(" + strconv.Itoa(int(e)) + ")"
	}
}

// Builder assembles a formula one token at a time. It exclusively owns its
// working sequence. A Builder is not safe for concurrent use.
type Builder struct {
	seq     Sequence
	resolve Resolver
	submit  Submitter
	log     *zap.Logger
}

// NewBuilder creates a builder that resolves variables with r and submits
// formulas to s. Either may be nil: without a resolver, every word is a
// literal; without a submitter, "=" is ignored.
func NewBuilder(r Resolver, s Submitter, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{resolve: r, submit: s, log: log}
}

// Append adds the token typed as raw to the formula:
//
//	1.	"=" submits the formula. An empty formula is not submitted.
//	2.	An operator or parenthesis is appended as a literal, except that an
//		operator other than a parenthesis directly after another such
//		operator is dropped.
//	3.	A number is appended as a literal.
//	4.	Anything else is resolved to a variable if possible, or else is
//		appended verbatim as a literal. A suggestion without both an ID and
//		a name does not count as resolved.
//
// Surrounding whitespace is ignored, and blank input does nothing.
func (b *Builder) Append(raw string) Effect {
	text := strings.TrimSpace(raw)
	switch {
	case text == "":
		return EffectIgnored
	case IsSubmitText(text):
		return b.Submit()
	case IsOperatorText(text):
		if !IsParen(text) && len(b.seq) > 0 && b.seq[len(b.seq)-1].isOperator() {
			b.log.Debug("dropped operator", zap.String("text", text), zap.Int("at", len(b.seq)))
			return EffectDropped
		}
		return b.add(Literal(text))
	case IsNumberText(text):
		return b.add(Literal(text))
	}
	if b.resolve != nil {
		if s, ok := b.resolve.Resolve(text); ok {
			if t := VariableRef(s); t.IsVariable() {
				return b.add(t)
			}
		}
	}
	return b.add(Literal(text))
}

// Pick appends a suggestion chosen directly, unless the formula already ends
// with a variable of the same name.
func (b *Builder) Pick(s Suggestion) Effect {
	if len(b.seq) > 0 {
		last := b.seq[len(b.seq)-1]
		if last.IsVariable() && last.Name == s.Name {
			return EffectIgnored
		}
	}
	t := VariableRef(s)
	if !t.IsVariable() {
		return EffectIgnored
	}
	return b.add(t)
}

func (b *Builder) add(t Token) Effect {
	b.seq = append(b.seq, t)
	b.log.Debug("appended token", zap.String("display", t.Display()), zap.Bool("variable", t.IsVariable()), zap.Int("at", len(b.seq)-1))
	return EffectAppended
}

// Submit hands the formula to the submitter and clears it if the submitter
// accepts it. Empty formulas are never submitted.
func (b *Builder) Submit() Effect {
	if len(b.seq) == 0 || b.submit == nil {
		return EffectIgnored
	}
	if !b.submit.Submit(b.seq.Clone()) {
		return EffectIgnored
	}
	b.seq = nil
	return EffectSubmitted
}

// RemoveLast removes the final token, if there is one.
func (b *Builder) RemoveLast() {
	if len(b.seq) == 0 {
		return
	}
	b.seq = b.seq[:len(b.seq)-1]
}

// RemoveAt removes the token at index i. Panics if i is out of range.
func (b *Builder) RemoveAt(i int) {
	if i < 0 || i >= len(b.seq) {
		panic("formula: RemoveAt index " + strconv.Itoa(i) + " out of range with length " + strconv.Itoa(len(b.seq)))
	}
	b.seq = append(b.seq[:i:i], b.seq[i+1:]...)
}

// RenameVariable changes the display name of the variable at index i. It
// reports false and does nothing if there is no variable at i or the trimmed
// name is empty.
func (b *Builder) RenameVariable(i int, name string) bool {
	name = strings.TrimSpace(name)
	if i < 0 || i >= len(b.seq) || name == "" || !b.seq[i].IsVariable() {
		return false
	}
	b.seq[i].Name = name
	return true
}

// Reset clears the formula.
func (b *Builder) Reset() {
	b.seq = nil
}

// Len returns the number of tokens in the formula.
func (b *Builder) Len() int {
	return len(b.seq)
}

// Sequence returns a copy of the formula.
func (b *Builder) Sequence() Sequence {
	return b.seq.Clone()
}
