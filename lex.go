package bigcalc

import (
	"math/big"
	"strconv"
	"unicode/utf8"
)

type lexToken struct {
	text string
	kind tokenKind
	span Span
	// num is the value of a tokenNum, rounded to the lexer's precision.
	num *big.Float
	// cst and fn are the resolved meaning of a tokenIdent. Exactly one is
	// set.
	cst constant
	fn  function
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + t.span.String()
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenErr is input that matches no token, including unknown words.
	tokenErr
	// tokenNum is a decimal literal.
	tokenNum
	// tokenIdent is a constant or function name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is (.
	tokenOpen
	// tokenClose is ).
	tokenClose
)

var tokenKindNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenErr:   "Err",
	tokenNum:   "Num",
	tokenIdent: "Ident",
	tokenOp:    "Op",
	tokenOpen:  "Open",
	tokenClose: "Close",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// constant is a named value recognized by the lexer.
type constant int8

const (
	constNone constant = iota
	constPi
	constE
	constTau
	constInf
	constNaN
)

// function is a named function of one argument recognized by the lexer.
type function int8

const (
	funcNone function = iota
	funcSin
	funcCos
	funcTan
	funcExp
	funcSqrt
)

var (
	constnames = map[string]constant{
		"pi":  constPi,
		"e":   constE,
		"tau": constTau,
		"inf": constInf,
		"nan": constNaN,
	}
	funcnames = map[string]function{
		"sin":  funcSin,
		"cos":  funcCos,
		"tan":  funcTan,
		"exp":  funcExp,
		"sqrt": funcSqrt,
	}
)

type lexer struct {
	src  string
	pos  int
	prec uint
	p    lexToken
}

// lex creates a lexer over src which rounds numeric literals to prec bits.
func lex(src string, prec uint) *lexer {
	return &lexer{src: src, prec: prec}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("bigcalc: double push")
	}
	l.p = tok
}

// next scans the next token from the input. Once the input is exhausted, every
// call returns an EOF token positioned at the end of the source.
func (l *lexer) next() lexToken {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok
	}
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\f':
			l.pos++
			continue
		}
		break
	}
	start := l.pos
	if start >= len(l.src) {
		return lexToken{kind: tokenEOF, span: Span{start, start}}
	}
	c := l.src[start]
	switch {
	case isdigit(c):
		return l.scanNum()
	case isletter(c):
		return l.scanIdent()
	case c == '*':
		if start+1 < len(l.src) && l.src[start+1] == '*' {
			return l.emit(tokenOp, start+2)
		}
		return l.emit(tokenOp, start+1)
	case c == '+', c == '-', c == '/', c == '%', c == '!':
		return l.emit(tokenOp, start+1)
	case c == '(':
		return l.emit(tokenOpen, start+1)
	case c == ')':
		return l.emit(tokenClose, start+1)
	}
	// Invalid UTF-8 decodes with width 1, so each bad byte is its own token.
	_, sz := utf8.DecodeRuneInString(l.src[start:])
	return l.emit(tokenErr, start+sz)
}

// emit creates a token of the given kind spanning from the current position
// to end and advances past it.
func (l *lexer) emit(kind tokenKind, end int) lexToken {
	tok := lexToken{
		text: l.src[l.pos:end],
		kind: kind,
		span: Span{l.pos, end},
	}
	l.pos = end
	return tok
}

func (l *lexer) scanNum() lexToken {
	end := l.pos
	for end < len(l.src) && isdigit(l.src[end]) {
		end++
	}
	// A fraction needs at least one digit after the point. Otherwise the point
	// is left for the next token, which will be an error.
	if end+1 < len(l.src) && l.src[end] == '.' && isdigit(l.src[end+1]) {
		end++
		for end < len(l.src) && isdigit(l.src[end]) {
			end++
		}
	}
	tok := l.emit(tokenNum, end)
	r, _, err := new(big.Float).SetPrec(l.prec).Parse(tok.text, 10)
	if err != nil {
		panic("bigcalc: invalid number: " + tok.text + " (" + err.Error() + ")")
	}
	tok.num = r
	return tok
}

func (l *lexer) scanIdent() lexToken {
	end := l.pos
	for end < len(l.src) && isletter(l.src[end]) {
		end++
	}
	tok := l.emit(tokenIdent, end)
	if c, ok := constnames[tok.text]; ok {
		tok.cst = c
		return tok
	}
	if f, ok := funcnames[tok.text]; ok {
		tok.fn = f
		return tok
	}
	tok.kind = tokenErr
	return tok
}

func isdigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isletter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
