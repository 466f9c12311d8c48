package lexer

import (
	"testing"

	"github.com/skx/cc-subset-amd64/token"
)

// Trivial test of the parsing of numbers and identifiers.
func TestParseNumbers(t *testing.T) {
	input := `3 43 x foo_bar`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.NUMBER, "3"},
		{token.NUMBER, "43"},
		{token.IDENT, "x"},
		{token.IDENT, "foo_bar"},
		{token.EOF, ""},
	}
	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// Trivial test of the parsing of keywords.
func TestParseKeywords(t *testing.T) {
	input := `int void return`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.INT, "int"},
		{token.VOID, "void"},
		{token.RETURN, "return"},
		{token.EOF, ""},
	}
	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
	}
}

// Test maximal-munch priority across every multi-character operator.
func TestParseOperators(t *testing.T) {
	input := `( ) { } ; ~ ! + - * / % & | ^ < > = -- && || == != <= >= << >> += -= *= /= %= &= |= ^= <<= >>=`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.TILDE, "~"},
		{token.BANG, "!"},
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.PERCENT, "%"},
		{token.AMPERSAND, "&"},
		{token.PIPE, "|"},
		{token.CARET, "^"},
		{token.LANGLE, "<"},
		{token.RANGLE, ">"},
		{token.ASSIGN, "="},
		{token.MINUSMINUS, "--"},
		{token.ANDAND, "&&"},
		{token.OROR, "||"},
		{token.EQ, "=="},
		{token.NOTEQ, "!="},
		{token.LE, "<="},
		{token.GE, ">="},
		{token.SHL, "<<"},
		{token.SHR, ">>"},
		{token.PLUSEQ, "+="},
		{token.MINUSEQ, "-="},
		{token.STAREQ, "*="},
		{token.SLASHEQ, "/="},
		{token.PERCENTEQ, "%="},
		{token.ANDEQ, "&="},
		{token.OREQ, "|="},
		{token.CARETEQ, "^="},
		{token.SHLEQ, "<<="},
		{token.SHREQ, ">>="},
		{token.EOF, ""},
	}
	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// Digits immediately followed by identifier characters are a fatal
// lex error, never a silently-accepted token.
func TestDigitAdjacentIdentifierIsFatal(t *testing.T) {
	l := New("123abc")
	_, err := l.NextToken()
	if err == nil {
		t.Fatalf("expected an error lexing '123abc', got none")
	}
}

// An unrecognised character is a fatal lex error.
func TestUnknownCharacterIsFatal(t *testing.T) {
	l := New("3 $ 4")
	if _, err := l.NextToken(); err != nil {
		t.Fatalf("unexpected error on leading number: %s", err)
	}
	if _, err := l.NextToken(); err == nil {
		t.Fatalf("expected an error lexing '$', got none")
	}
}
