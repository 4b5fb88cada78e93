package formula

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

// SubmitText is the input that submits the formula being built rather than
// appending to it.
const SubmitText = "="

// operatorTexts is the set of operator and parenthesis texts a literal token
// may hold.
var operatorTexts = [...]string{"+", "-", "*", "/", "^", "(", ")"}

// IsOperatorText reports whether s is an operator or a parenthesis. The submit
// text "=" is not an operator.
func IsOperatorText(s string) bool {
	for _, op := range operatorTexts {
		if s == op {
			return true
		}
	}
	return false
}

// IsSubmitText reports whether s submits the formula.
func IsSubmitText(s string) bool {
	return s == SubmitText
}

// IsParen reports whether s is an open or close parenthesis.
func IsParen(s string) bool {
	return s == "(" || s == ")"
}

// IsNumberText reports whether s, with at most one leading sign, is a single
// number token as the lexer reads them.
func IsNumberText(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" || unicode.IsSpace(rune(s[0])) {
		return false
	}
	scan := lex(strings.NewReader(s))
	tok, err := scan.next()
	if err != nil || tok.kind != lexNum {
		return false
	}
	end, err := scan.next()
	return err == nil && end.kind == lexEOF
}

// Value is the value of a variable: either numeric text or a sub-expression.
// Sub-expressions are parenthesized when a formula is rendered.
type Value struct {
	text string
	expr bool
}

// NumberValue creates a numeric value from its text.
func NumberValue(text string) Value {
	return Value{text: text}
}

// FloatValue creates a numeric value from a float64.
func FloatValue(x float64) Value {
	return Value{text: strconv.FormatFloat(x, 'g', -1, 64)}
}

// ExprValue creates a sub-expression value.
func ExprValue(text string) Value {
	return Value{text: text, expr: true}
}

// IsNumber reports whether v holds numeric text.
func (v Value) IsNumber() bool {
	return !v.expr
}

// String returns the text of the value.
func (v Value) String() string {
	return v.text
}

// render returns the text of v as it appears in a rendered formula.
func (v Value) render() string {
	if v.expr {
		return "(" + v.text + ")"
	}
	return renderNumber(v.text)
}

// renderNumber brackets negative numbers so that the sign stays with the
// number: a variable holding -3 squared is 9, not -(3^2).
func renderNumber(text string) string {
	if strings.HasPrefix(text, "-") {
		return "(" + text + ")"
	}
	return text
}

// MarshalJSON encodes numeric values as JSON numbers and sub-expressions as
// JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.expr && IsNumberText(v.text) {
		// Numbers like .5 and 5. are not JSON, so normalize the text.
		x, _, err := new(big.Float).Parse(v.text, 10)
		if err == nil && !x.IsInf() {
			return []byte(x.Text('g', -1)), nil
		}
	}
	return sonic.Marshal(v.text)
}

// UnmarshalJSON decodes a JSON number to a numeric value and a JSON string to a
// sub-expression. null decodes to an empty sub-expression.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*v = ExprValue("")
	case strings.HasPrefix(s, `"`):
		var t string
		if err := sonic.UnmarshalString(s, &t); err != nil {
			return &ValueError{Text: s}
		}
		*v = ExprValue(t)
	case IsNumberText(s):
		*v = NumberValue(s)
	default:
		return &ValueError{Text: s}
	}
	return nil
}

// UnmarshalYAML decodes integer and float scalars to numeric values and any
// other scalar to a sub-expression.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return &ValueError{Text: n.Value}
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
		if !IsNumberText(n.Value) {
			// .inf, .nan, 0x10, and friends.
			return &ValueError{Text: n.Value}
		}
		*v = NumberValue(n.Value)
	case "!!null":
		*v = ExprValue("")
	default:
		*v = ExprValue(n.Value)
	}
	return nil
}

// ValueError indicates a variable value that is neither a number nor a string.
type ValueError struct {
	Text string
}

func (err *ValueError) Error() string {
	return "invalid variable value " + strconv.Quote(err.Text)
}

// Suggestion is a variable offered by an autocomplete source.
type Suggestion struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Value    Value  `json:"value" yaml:"value"`
}

// Token is one element of a formula. A token is either a literal, holding raw
// operator or number text in Text, or a reference to a resolved variable,
// identified by ID and Name.
type Token struct {
	// Text is the raw text of a literal. It is empty for variables.
	Text string `json:"text,omitempty"`
	// ID is the identity of the suggestion a variable was resolved from.
	ID string `json:"id,omitempty"`
	// Name is the display name of a variable.
	Name string `json:"name,omitempty"`
	// Category is the suggestion category of a variable.
	Category string `json:"category,omitempty"`
	// Value is the value of a variable. It is left out of JSON when zero.
	Value Value `json:"value"`
}

// tokenJSON is the wire form of a Token.
type tokenJSON struct {
	Text     string `json:"text,omitempty"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Value    *Value `json:"value,omitempty"`
}

// MarshalJSON encodes t, omitting the value of literals.
func (t Token) MarshalJSON() ([]byte, error) {
	w := tokenJSON{Text: t.Text, ID: t.ID, Name: t.Name, Category: t.Category}
	if t.Value != (Value{}) {
		w.Value = &t.Value
	}
	return sonic.Marshal(w)
}

// UnmarshalJSON decodes a token encoded by MarshalJSON. A missing value
// decodes to the zero Value.
func (t *Token) UnmarshalJSON(b []byte) error {
	var w tokenJSON
	if err := sonic.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Token{Text: w.Text, ID: w.ID, Name: w.Name, Category: w.Category}
	if w.Value != nil {
		t.Value = *w.Value
	}
	return nil
}

// Literal creates a literal token.
func Literal(text string) Token {
	return Token{Text: text}
}

// VariableRef creates a variable token from a suggestion.
func VariableRef(s Suggestion) Token {
	return Token{ID: s.ID, Name: s.Name, Category: s.Category, Value: s.Value}
}

// IsVariableRef reports whether t carries both an identity and a name.
func IsVariableRef(t Token) bool {
	return t.ID != "" && t.Name != ""
}

// IsVariable is the method form of IsVariableRef.
func (t Token) IsVariable() bool {
	return IsVariableRef(t)
}

// isOperator reports whether t is a literal holding an operator other than a
// parenthesis. Such tokens may not follow one another.
func (t Token) isOperator() bool {
	return !t.IsVariable() && IsOperatorText(t.Text) && !IsParen(t.Text)
}

// Display returns the text shown for the token: a variable's name or a
// literal's text.
func (t Token) Display() string {
	if t.IsVariable() {
		return t.Name
	}
	return t.Text
}

// Details describes the token for display.
func (t Token) Details() string {
	if !t.IsVariable() {
		return "literal " + strconv.Quote(t.Text)
	}
	var b strings.Builder
	b.WriteString("variable ")
	b.WriteString(strconv.Quote(t.Name))
	if t.Category != "" {
		b.WriteString(" in ")
		b.WriteString(t.Category)
	}
	if t.Value.IsNumber() {
		b.WriteString(" = ")
	} else {
		b.WriteString(" := ")
	}
	b.WriteString(t.Value.render())
	return b.String()
}

// Key returns a stable identity for the token at position index of its
// formula. The key depends only on the position and the token's content.
func (t Token) Key(index int) string {
	if t.IsVariable() {
		return strconv.Itoa(index) + ":v:" + t.ID
	}
	return strconv.Itoa(index) + ":l:" + t.Text
}

// render returns the text of the token as it appears in a rendered formula.
func (t Token) render() string {
	switch {
	case t.IsVariable():
		return t.Value.render()
	case IsNumberText(t.Text):
		return renderNumber(t.Text)
	}
	return t.Text
}

// Sequence is an ordered list of tokens.
type Sequence []Token

// String returns the display text of each token, separated by spaces.
func (s Sequence) String() string {
	v := make([]string, len(s))
	for i, t := range s {
		v[i] = t.Display()
	}
	return strings.Join(v, " ")
}

// Clone returns a copy of s. The copy of an empty sequence is nil.
func (s Sequence) Clone() Sequence {
	if len(s) == 0 {
		return nil
	}
	return append(Sequence(nil), s...)
}

// Keys returns the key of each token in s.
func (s Sequence) Keys() []string {
	v := make([]string, len(s))
	for i, t := range s {
		v[i] = t.Key(i)
	}
	return v
}

// Render renders a sequence to expression text. Literals render verbatim,
// numeric variables as their value, and sub-expression variables as their
// value in parentheses.
func Render(s Sequence) string {
	v := make([]string, len(s))
	for i, t := range s {
		v[i] = t.render()
	}
	return strings.Join(v, " ")
}
