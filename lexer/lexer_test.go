package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := New(src).Lex()
	require.NoError(t, err)
	return toks
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestPunctuationAndOperators(t *testing.T) {
	toks := lex(t, "( ) [ ] , - + / * : <- = <> < <= > >=")
	require.Equal(t, []TokenKind{
		LPAREN, RPAREN, LSQUARE, RSQUARE, COMMA, MINUS, PLUS, SLASH, STAR,
		COLON, ASSIGN, EQ, NEQ, LT, LTEQ, GT, GTEQ,
	}, kinds(toks))
}

func TestReservedWordsAreNotInterned(t *testing.T) {
	toks := lex(t, "DECLARE WHILE ENDWHILE TRUE MOD")
	require.Equal(t, []TokenKind{DECLARE, WHILE, ENDWHILE, TRUE, MOD}, kinds(toks))
	for _, tok := range toks {
		require.Zero(t, tok.Int)
	}
}

func TestReservedWordsAreCaseSensitive(t *testing.T) {
	toks := lex(t, "declare While")
	require.Equal(t, []TokenKind{IDENTIFIER, IDENTIFIER}, kinds(toks))
}

func TestIdentifierInterning(t *testing.T) {
	l := New("foo bar foo baz bar foo")
	toks, err := l.Lex()
	require.NoError(t, err)
	ids := make([]int64, len(toks))
	for i, tok := range toks {
		require.Equal(t, IDENTIFIER, tok.Kind)
		ids[i] = tok.Int
	}
	require.Equal(t, []int64{1, 2, 1, 3, 2, 1}, ids)
	require.Equal(t, int64(3), l.IdentCount())
	require.Equal(t, "foo", l.IdentName(1))
	require.Equal(t, "baz", l.IdentName(3))
	require.Equal(t, "", l.IdentName(9))
}

func TestIdentifierShapes(t *testing.T) {
	toks := lex(t, "_x x1 camelCase with_underscore")
	require.Equal(t, []TokenKind{IDENTIFIER, IDENTIFIER, IDENTIFIER, IDENTIFIER}, kinds(toks))
}

func TestIntegerLiteral(t *testing.T) {
	toks := lex(t, "0 42 9223372036854775")
	require.Equal(t, []TokenKind{INT_C, INT_C, INT_C}, kinds(toks))
	require.Equal(t, int64(0), toks[0].Int)
	require.Equal(t, int64(42), toks[1].Int)
	require.Equal(t, int64(9223372036854775), toks[2].Int)
}

func TestIntegerTooLarge(t *testing.T) {
	// 19 digits is rejected regardless of value
	_, err := New("1000000000000000000").Lex()
	var lexErr *Error
	require.True(t, errors.As(err, &lexErr))
	require.Contains(t, lexErr.Msg, "too large")
}

func TestRealLiteral(t *testing.T) {
	toks := lex(t, "3.14 0.5 2.0")
	require.Equal(t, []TokenKind{REAL_C, REAL_C, REAL_C}, kinds(toks))
	require.Equal(t, int32(314), toks[0].Num)
	require.Equal(t, int32(100), toks[0].Den)
	require.Equal(t, int32(5), toks[1].Num)
	require.Equal(t, int32(10), toks[1].Den)
	require.Equal(t, int32(20), toks[2].Num)
	require.Equal(t, int32(10), toks[2].Den)
}

func TestRealRequiresFractionalDigit(t *testing.T) {
	_, err := New("1. 2").Lex()
	var lexErr *Error
	require.True(t, errors.As(err, &lexErr))
	require.Contains(t, lexErr.Msg, "decimal point")
}

func TestRealTooLong(t *testing.T) {
	_, err := New("123456789.1").Lex()
	var lexErr *Error
	require.True(t, errors.As(err, &lexErr))
	require.Contains(t, lexErr.Msg, "too large")
}

func TestNoScientificNotation(t *testing.T) {
	for _, src := range []string{"12e2", "1.5e2"} {
		_, err := New(src).Lex()
		var lexErr *Error
		require.True(t, errors.As(err, &lexErr), "source %q", src)
		require.Contains(t, lexErr.Msg, "after number")
	}
}

func TestStringLiteral(t *testing.T) {
	toks := lex(t, `"hello" ""`)
	require.Equal(t, []TokenKind{STR_C, STR_C}, kinds(toks))
	require.Equal(t, "hello", toks[0].Str)
	require.Equal(t, "", toks[1].Str)
}

func TestStringSpansLines(t *testing.T) {
	toks := lex(t, "\"a\nb\"\nx")
	require.Equal(t, []TokenKind{STR_C, IDENTIFIER}, kinds(toks))
	require.Equal(t, "a\nb", toks[0].Str)
	// the identifier sits on line 3: line 1 started the string, line 2
	// finished it
	require.Equal(t, 3, toks[1].Line)
	require.Equal(t, 1, toks[1].Col)
}

func TestUnterminatedString(t *testing.T) {
	_, err := New(`"oops`).Lex()
	var lexErr *Error
	require.True(t, errors.As(err, &lexErr))
}

func TestComments(t *testing.T) {
	toks := lex(t, "a // comment with <- tokens\nb")
	require.Equal(t, []TokenKind{IDENTIFIER, IDENTIFIER}, kinds(toks))
	require.Equal(t, 2, toks[1].Line)
}

func TestCommentAtEndOfInput(t *testing.T) {
	toks := lex(t, "a // trailing")
	require.Equal(t, []TokenKind{IDENTIFIER}, kinds(toks))
}

func TestStrayCharacter(t *testing.T) {
	_, err := New("a ; b").Lex()
	var lexErr *Error
	require.True(t, errors.As(err, &lexErr))
	require.Contains(t, lexErr.Msg, "stray")
}

func TestPositions(t *testing.T) {
	toks := lex(t, "ab <- 1\n  cd <- 23")
	require.Len(t, toks, 6)

	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 1, toks[0].Col)
	require.Equal(t, 1, toks[1].Line)
	require.Equal(t, 4, toks[1].Col)
	require.Equal(t, 1, toks[2].Line)
	require.Equal(t, 7, toks[2].Col)

	require.Equal(t, 2, toks[3].Line)
	require.Equal(t, 3, toks[3].Col)
	require.Equal(t, 2, toks[4].Line)
	require.Equal(t, 6, toks[4].Col)
	require.Equal(t, 2, toks[5].Line)
	require.Equal(t, 9, toks[5].Col)
}

func TestErrorCarriesPosition(t *testing.T) {
	_, err := New("x <- 1\n  ?").Lex()
	var lexErr *Error
	require.True(t, errors.As(err, &lexErr))
	require.Equal(t, 2, lexErr.Line)
	require.Equal(t, 3, lexErr.Col)
}
