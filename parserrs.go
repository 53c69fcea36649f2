package bigcalc

import "strconv"

// Span is a half-open range of byte offsets into the source of an expression.
type Span struct {
	Start, End int
}

func (s Span) String() string {
	return strconv.Itoa(s.Start) + "-" + strconv.Itoa(s.End)
}

// to returns the smallest span containing s and t.
func (s Span) to(t Span) Span {
	if t.Start < s.Start {
		s.Start = t.Start
	}
	if t.End > s.End {
		s.End = t.End
	}
	return s
}

// LexError is an error indicating input that forms no valid token. It
// implements InputError.
type LexError struct {
	// At is the span of the invalid input.
	At Span
	// Text is the invalid input.
	Text string
	// Kind is "identifier" if the text is a word that names no constant or
	// function, or the empty string otherwise.
	Kind string
}

func (err *LexError) Error() string {
	if err.Kind == "" {
		return errpos(err.At, "invalid token "+strconv.Quote(err.Text))
	}
	return errpos(err.At, "unknown "+err.Kind+" "+strconv.Quote(err.Text))
}

func (err *LexError) Span() Span {
	return err.At
}

// TokenError is an error indicating a valid token in a place the grammar does
// not allow it. It implements InputError.
type TokenError struct {
	// At is the span of the token.
	At Span
	// Text is the token, or the empty string at the end of input.
	Text string
	// Want describes what the parser expected instead.
	Want string
}

func (err *TokenError) Error() string {
	if err.Text == "" {
		return errpos(err.At, "unexpected end of input, expected "+err.Want)
	}
	return errpos(err.At, "unexpected "+strconv.Quote(err.Text)+", expected "+err.Want)
}

func (err *TokenError) Span() Span {
	return err.At
}

// BracketError is an error indicating mismatched brackets in the input. It
// implements InputError.
type BracketError struct {
	// Open is the span of the open bracket. It is meaningful only if Left is
	// not empty.
	Open Span
	// At is the span of the close bracket, or the end of input if there is
	// no close bracket.
	At Span
	// Left is the open bracket, or the empty string for a close bracket with
	// no open bracket.
	Left string
	// Right is the close bracket, or the empty string if the input ended
	// before the open bracket was closed.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.At, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Open, "open bracket "+err.Left+" with no close bracket")
}

// Span returns the span of the unclosed open bracket, or of the unopened close
// bracket.
func (err *BracketError) Span() Span {
	if err.Left == "" {
		return err.At
	}
	return err.Open
}

// EmptyExpressionError is an error indicating an empty subexpression. It
// implements InputError.
type EmptyExpressionError struct {
	// At is the span of the token that ended the subexpression.
	At Span
	// End is the token that ended the subexpression, or the empty string at
	// the end of input.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.At.Start == 0 {
			return errpos(err.At, "no expression")
		}
		return errpos(err.At, "no expression at end")
	}
	return errpos(err.At, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Span() Span {
	return err.At
}

// DepthError is an error indicating an expression nested more deeply than the
// parser allows. It implements InputError.
type DepthError struct {
	// At is the span of the token at which the limit was exceeded.
	At Span
	// Max is the nesting limit.
	Max int
}

func (err *DepthError) Error() string {
	return errpos(err.At, "expression nested deeper than "+strconv.Itoa(err.Max))
}

func (err *DepthError) Span() Span {
	return err.At
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos Span, msg string) string {
	return pos.String() + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Span returns the byte offsets of the input that caused the error.
	Span() Span
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*TokenError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*DepthError)(nil)
)
