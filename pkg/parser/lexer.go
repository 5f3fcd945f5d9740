package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes SQUINT input.
//
// The lexer is byte-oriented for the ASCII fast path but decodes full
// runes for identifiers and the relational symbols, so field names like
// η and Φ and the ≥/≤ spellings of >= and <= lex cleanly.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	switch {
	case l.ch == '\n':
		l.line++
		l.col = 0
	case l.ch&0xC0 == 0x80:
		// UTF-8 continuation byte, not a new column
	default:
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// LineText returns the raw text of the 1-based source line, without the
// trailing newline. Used for statement-level error reporting.
func (l *Lexer) LineText(line int) string {
	lines := strings.Split(l.input, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	var tok Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = TOKEN_EOF
		tok.Literal = ""
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TOKEN_EQ, Literal: "==", Pos: pos}
		} else {
			tok = l.newToken(TOKEN_ASSIGN, "=")
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TOKEN_LE, Literal: "<=", Pos: pos}
		} else {
			tok = l.newToken(TOKEN_LT, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TOKEN_GE, Literal: ">=", Pos: pos}
		} else {
			tok = l.newToken(TOKEN_GT, ">")
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok = Token{Type: TOKEN_ARROW, Literal: "->", Pos: pos}
		} else {
			tok = l.newToken(TOKEN_MINUS, "-")
		}
	case '+':
		tok = l.newToken(TOKEN_PLUS, "+")
	case '*':
		tok = l.newToken(TOKEN_STAR, "*")
	case '/':
		tok = l.newToken(TOKEN_SLASH, "/")
	case '.':
		tok = l.newToken(TOKEN_DOT, ".")
	case ',':
		tok = l.newToken(TOKEN_COMMA, ",")
	case ':':
		tok = l.newToken(TOKEN_COLON, ":")
	case ';':
		tok = l.newToken(TOKEN_SEMICOLON, ";")
	case '(':
		tok = l.newToken(TOKEN_LPAREN, "(")
	case ')':
		tok = l.newToken(TOKEN_RPAREN, ")")
	case '[':
		tok = l.newToken(TOKEN_LBRACKET, "[")
	case ']':
		tok = l.newToken(TOKEN_RBRACKET, "]")
	case '{':
		tok = l.newToken(TOKEN_LBRACE, "{")
	case '}':
		tok = l.newToken(TOKEN_RBRACE, "}")
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(strings.ToLower(tok.Literal))
			tok.Pos = pos
			return tok
		case isDigit(l.ch):
			tok.Type = TOKEN_NUMBER
			tok.Literal = l.readNumber()
			tok.Pos = pos
			return tok
		case l.ch >= utf8.RuneSelf:
			r, width := utf8.DecodeRuneInString(l.input[l.pos:])
			switch {
			case r == '≥':
				tok = Token{Type: TOKEN_GE, Literal: ">=", Pos: pos}
				l.advance(width)
				return tok
			case r == '≤':
				tok = Token{Type: TOKEN_LE, Literal: "<=", Pos: pos}
				l.advance(width)
				return tok
			case unicode.IsLetter(r):
				tok.Literal = l.readIdentifier()
				tok.Type = LookupIdent(strings.ToLower(tok.Literal))
				tok.Pos = pos
				return tok
			default:
				// Unknown rune. Emitted as ILLEGAL rather than failing:
				// free-form segments may carry arbitrary notation and are
				// captured verbatim, never interpreted token by token.
				tok = Token{Type: TOKEN_ILLEGAL, Literal: string(r), Pos: pos}
				l.advance(width)
				return tok
			}
		default:
			tok = l.newToken(TOKEN_ILLEGAL, string(l.ch))
		}
	}

	l.readChar()
	return tok
}

// newToken creates a single-character token at the current position.
func (l *Lexer) newToken(t TokenType, literal string) Token {
	return Token{Type: t, Literal: literal, Pos: l.currentPos()}
}

// advance consumes n bytes.
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		l.readChar()
	}
}

// skipWhitespaceAndComments skips whitespace and full-line // comments.
// A // that is not the first content of its line is NOT a comment: it
// lexes as two SLASH tokens so free-form expression text like "a // b"
// survives into captured segments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/' && l.onlyWhitespaceBefore():
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// onlyWhitespaceBefore reports whether the current line holds nothing
// but whitespace before the current position.
func (l *Lexer) onlyWhitespaceBefore() bool {
	for i := l.pos - 1; i >= 0; i-- {
		switch l.input[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

// readIdentifier reads an identifier (unicode letters, digits, underscore).
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for {
		if isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
			l.readChar()
			continue
		}
		if l.ch >= utf8.RuneSelf {
			r, width := utf8.DecodeRuneInString(l.input[l.pos:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				l.advance(width)
				continue
			}
		}
		break
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal: 4, 0.5, 1e-3.
func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		peek := l.peekChar()
		if isDigit(peek) || ((peek == '+' || peek == '-') && l.readPos+1 < len(l.input) && isDigit(l.input[l.readPos+1])) {
			l.readChar() // e
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
