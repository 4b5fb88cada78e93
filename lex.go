package formula

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// lexeme is one token of rendered formula text.
type lexeme struct {
	text string
	kind lexKind
	// pos is the 1-based rune column of the first rune of the token.
	pos  int
}

func (t lexeme) String() string {
	return t.kind.String() + "(" + strconv.Quote(t.text) + ")@" + strconv.Itoa(t.pos)
}

type lexKind int8

const (
	lexNone lexKind = iota
	// lexEOF is the end of the input.
	lexEOF
	// lexNum is a decimal number with optional fraction and exponent.
	lexNum
	// lexOp is one of Operators.
	lexOp
	lexOpen
	lexClose
)

func (k lexKind) String() string {
	switch k {
	case lexNone:
		return "None"
	case lexEOF:
		return "EOF"
	case lexNum:
		return "Num"
	case lexOp:
		return "Op"
	case lexOpen:
		return "Open"
	case lexClose:
		return "Close"
	default:
		return "lexKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Operators contains the runes which are lexed as operators.
const Operators = "+-*/^"

// endsWord reports whether r ends a number or an unknown word.
func endsWord(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || strings.ContainsRune(Operators, r)
}

type lexer struct {
	src   io.RuneScanner
	text  strings.Builder
	// col is the column of the next rune to read.
	col   int
	// start is the column of the token being scanned.
	start int
	back  lexeme
	done  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{src: src, col: 1}
}

// unread puts tok back so that next returns it again. Panics if a token is
// already put back.
func (l *lexer) unread(tok lexeme) {
	if l.back.kind != lexNone {
		panic("formula: token unread twice")
	}
	l.back = tok
}

// must returns the token put back with unread. Panics if there is none.
func (l *lexer) must() lexeme {
	tok := l.back
	if tok.kind == lexNone {
		panic("formula: no token to take back")
	}
	l.back = lexeme{}
	return tok
}

func (l *lexer) read() (rune, error) {
	r, n, err := l.src.ReadRune()
	if n > 0 {
		l.col++
	}
	return r, err
}

// backup unreads the last rune read. Panics if the source cannot unread it.
func (l *lexer) backup() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.col--
}

// next scans the next token. The end of the input is a lexEOF token with a
// nil error the first time it is reached and io.EOF after that, unless the
// lexEOF token is put back.
func (l *lexer) next() (lexeme, error) {
	if l.back.kind != lexNone {
		return l.must(), nil
	}
	if l.done {
		return lexeme{}, io.EOF
	}
	defer l.text.Reset()
	for {
		pos := l.col
		r, err := l.read()
		if errors.Is(err, io.EOF) {
			l.done = true
			return lexeme{kind: lexEOF, pos: pos}, nil
		}
		if err != nil {
			return lexeme{pos: pos}, err
		}
		l.start = pos
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '.' || '0' <= r && r <= '9':
			l.backup()
			if err := l.number(); err != nil {
				return lexeme{pos: pos}, err
			}
			return lexeme{text: l.text.String(), kind: lexNum, pos: pos}, nil
		case strings.ContainsRune(Operators, r):
			return lexeme{text: string(r), kind: lexOp, pos: pos}, nil
		case r == '(':
			return lexeme{text: "(", kind: lexOpen, pos: pos}, nil
		case r == ')':
			return lexeme{text: ")", kind: lexClose, pos: pos}, nil
		default:
			// Report the whole word, not just its first rune.
			l.text.WriteRune(r)
			l.skipWord()
			return lexeme{pos: pos}, l.error("")
		}
	}
}

// numPhase is the part of a number being scanned.
type numPhase int8

const (
	numInt     numPhase = iota // before any point
	numFrac                    // after the point
	numExpSign                 // just after the exponent marker
	numExp                     // in the exponent
)

// number scans a number into the token text.
func (l *lexer) number() error {
	phase := numInt
	// Whether the mantissa and the exponent have any digits.
	var mant, exp bool
	for {
		r, err := l.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if endsWord(r) && !(phase == numExpSign && (r == '+' || r == '-')) {
			l.backup()
			break
		}
		l.text.WriteRune(r)
		switch {
		case '0' <= r && r <= '9':
			if phase == numExpSign {
				phase = numExp
			}
			if phase == numExp {
				exp = true
			} else {
				mant = true
			}
		case r == '.' && phase == numInt:
			phase = numFrac
		case (r == 'e' || r == 'E') && mant && phase <= numFrac:
			phase = numExpSign
		case r == '+' || r == '-':
			phase = numExp
		default:
			l.skipWord()
			return l.error("number")
		}
	}
	if !mant || phase >= numExpSign && !exp {
		return l.error("number")
	}
	return nil
}

// skipWord adds runes up to the end of the current word to the token text.
func (l *lexer) skipWord() {
	for {
		r, err := l.read()
		if err != nil {
			return
		}
		if endsWord(r) {
			l.backup()
			return
		}
		l.text.WriteRune(r)
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{Text: l.text.String(), Kind: kind, Col: l.start}
}
