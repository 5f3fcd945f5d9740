package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTokens(t *testing.T, input string) []Token {
	t.Helper()
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TOKEN_EOF {
			return toks
		}
	}
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		types []TokenType
	}{
		{
			name:  "relational digraphs",
			input: ">= <= == = -> - < >",
			types: []TokenType{TOKEN_GE, TOKEN_LE, TOKEN_EQ, TOKEN_ASSIGN, TOKEN_ARROW, TOKEN_MINUS, TOKEN_LT, TOKEN_GT},
		},
		{
			name:  "brackets",
			input: "( ) [ ] { }",
			types: []TokenType{TOKEN_LPAREN, TOKEN_RPAREN, TOKEN_LBRACKET, TOKEN_RBRACKET, TOKEN_LBRACE, TOKEN_RBRACE},
		},
		{
			name:  "separators",
			input: ", : ; .",
			types: []TokenType{TOKEN_COMMA, TOKEN_COLON, TOKEN_SEMICOLON, TOKEN_DOT},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := collectTokens(t, tt.input)
			require.Len(t, toks, len(tt.types)+1) // +EOF
			for i, want := range tt.types {
				assert.Equal(t, want, toks[i].Type, "token %d", i)
			}
		})
	}
}

func TestLexerUnicodeRelationalSymbols(t *testing.T) {
	toks := collectTokens(t, "a ≥ b ≤ c")

	require.Len(t, toks, 6)
	assert.Equal(t, TOKEN_GE, toks[1].Type)
	assert.Equal(t, ">=", toks[1].Literal, "unicode symbol lexes to the ASCII literal")
	assert.Equal(t, TOKEN_LE, toks[3].Type)
	assert.Equal(t, "<=", toks[3].Literal)
}

func TestLexerUnicodeIdentifiers(t *testing.T) {
	toks := collectTokens(t, "η ( Φ = Phi )")

	require.Len(t, toks, 7)
	assert.Equal(t, TOKEN_IDENT, toks[0].Type)
	assert.Equal(t, "η", toks[0].Literal)
	assert.Equal(t, TOKEN_IDENT, toks[2].Type)
	assert.Equal(t, "Φ", toks[2].Literal)
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"workspace", TOKEN_WORKSPACE},
		{"WORKSPACE", TOKEN_WORKSPACE},
		{"Kernel", TOKEN_KERNEL},
		{"ctrl", TOKEN_CTRL},
		{"hysteresis_trace", TOKEN_HYSTERESIS_TRACE},
		{"Overlay", TOKEN_OVERLAY},
		{"nucleate", TOKEN_NUCLEATE},
		{"myfield", TOKEN_IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := collectTokens(t, tt.input)
			require.Len(t, toks, 2)
			assert.Equal(t, tt.want, toks[0].Type)
			assert.Equal(t, tt.input, toks[0].Literal, "literal preserves source casing")
		})
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4", "4"},
		{"0.5", "0.5"},
		{"120", "120"},
		{"1e-3", "1e-3"},
		{"2.5E+4", "2.5E+4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := collectTokens(t, tt.input)
			require.GreaterOrEqual(t, len(toks), 2)
			assert.Equal(t, TOKEN_NUMBER, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexerLineComments(t *testing.T) {
	toks := collectTokens(t, "// a banner\nctrl\n  // indented comment\nmeasure")

	require.Len(t, toks, 3)
	assert.Equal(t, TOKEN_CTRL, toks[0].Type)
	assert.Equal(t, TOKEN_MEASURE, toks[1].Type)
	assert.Equal(t, 4, toks[1].Pos.Line)
}

func TestLexerMidLineSlashesAreNotComments(t *testing.T) {
	// Only full-line comments are stripped. A // after other content
	// lexes as slashes so free-form expressions keep it.
	toks := collectTokens(t, "a // b")

	require.Len(t, toks, 5)
	assert.Equal(t, TOKEN_IDENT, toks[0].Type)
	assert.Equal(t, TOKEN_SLASH, toks[1].Type)
	assert.Equal(t, TOKEN_SLASH, toks[2].Type)
	assert.Equal(t, TOKEN_IDENT, toks[3].Type)
	assert.Equal(t, "b", toks[3].Literal)
	assert.Equal(t, TOKEN_EOF, toks[4].Type)
}

func TestLexerIllegalRuneDoesNotAbort(t *testing.T) {
	// Free-form notation like |0⟩⊗2 must pass through the lexer.
	toks := collectTokens(t, "|0⟩")

	require.Len(t, toks, 4)
	assert.Equal(t, TOKEN_ILLEGAL, toks[0].Type)
	assert.Equal(t, TOKEN_NUMBER, toks[1].Type)
	assert.Equal(t, TOKEN_ILLEGAL, toks[2].Type)
	assert.Equal(t, "⟩", toks[2].Literal)
	assert.Equal(t, TOKEN_EOF, toks[3].Type)
}

func TestLexerPositions(t *testing.T) {
	toks := collectTokens(t, "ab cd\nef")

	require.Len(t, toks, 4)
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, Position{Line: 1, Column: 4, Offset: 3}, toks[1].Pos)
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 6}, toks[2].Pos)
}

func TestLineText(t *testing.T) {
	l := NewLexer("first\nsecond\r\nthird")

	assert.Equal(t, "first", l.LineText(1))
	assert.Equal(t, "second", l.LineText(2))
	assert.Equal(t, "third", l.LineText(3))
	assert.Equal(t, "", l.LineText(0))
	assert.Equal(t, "", l.LineText(4))
}
