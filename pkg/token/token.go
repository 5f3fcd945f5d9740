// Package token defines the token types for SQUINT parsing.
//
// Keywords are matched case-insensitively; LookupIdent expects its input
// already lowercased by the lexer.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier (unicode letters allowed: η, Φ)
	NUMBER // 4, 0.5, 1e-3

	// Operators and punctuation
	ASSIGN    // =
	EQ        // ==
	LE        // <= or ≤
	GE        // >= or ≥
	LT        // <
	GT        // >
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	DOT       // .
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	ARROW     // ->
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords (declaration forms)
	WORKSPACE
	QUBITS
	LATTICE
	ATTACH
	SEMANTIC_FIELD //nolint:revive // keyword spelling mirrors the surface syntax
	DEFECT_FIELD   //nolint:revive // keyword spelling mirrors the surface syntax
	DEFECTS
	KERNEL
	ON
	SCALAR
	VECTOR
	TENSOR

	// Keywords (statement forms)
	CTRL
	MEASURE
	TRANSPORT
	QUENCH
	INJECT
	AMOUNT
	OBSERVE
	INTO
	WITH
	CORRECTIONS
	OVERLAY
	UNLESS
	ANGLE
	INITIALIZE
	HYSTERESIS_TRACE //nolint:revive // keyword spelling mirrors the surface syntax
	WINDOW
	RELAX
	RATE
	NUCLEATE
	PIN
	ANNEAL
	EVOLVE
	RETURN
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",

	ASSIGN:    "=",
	EQ:        "==",
	LE:        "<=",
	GE:        ">=",
	LT:        "<",
	GT:        ">",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	DOT:       ".",
	COMMA:     ",",
	COLON:     ":",
	SEMICOLON: ";",
	ARROW:     "->",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",

	WORKSPACE:        "WORKSPACE",
	QUBITS:           "QUBITS",
	LATTICE:          "LATTICE",
	ATTACH:           "ATTACH",
	SEMANTIC_FIELD:   "SEMANTIC_FIELD",
	DEFECT_FIELD:     "DEFECT_FIELD",
	DEFECTS:          "DEFECTS",
	KERNEL:           "KERNEL",
	ON:               "ON",
	SCALAR:           "SCALAR",
	VECTOR:           "VECTOR",
	TENSOR:           "TENSOR",
	CTRL:             "CTRL",
	MEASURE:          "MEASURE",
	TRANSPORT:        "TRANSPORT",
	QUENCH:           "QUENCH",
	INJECT:           "INJECT",
	AMOUNT:           "AMOUNT",
	OBSERVE:          "OBSERVE",
	INTO:             "INTO",
	WITH:             "WITH",
	CORRECTIONS:      "CORRECTIONS",
	OVERLAY:          "OVERLAY",
	UNLESS:           "UNLESS",
	ANGLE:            "ANGLE",
	INITIALIZE:       "INITIALIZE",
	HYSTERESIS_TRACE: "HYSTERESIS_TRACE",
	WINDOW:           "WINDOW",
	RELAX:            "RELAX",
	RATE:             "RATE",
	NUCLEATE:         "NUCLEATE",
	PIN:              "PIN",
	ANNEAL:           "ANNEAL",
	EVOLVE:           "EVOLVE",
	RETURN:           "RETURN",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"workspace":        WORKSPACE,
	"qubits":           QUBITS,
	"lattice":          LATTICE,
	"attach":           ATTACH,
	"semantic_field":   SEMANTIC_FIELD,
	"defect_field":     DEFECT_FIELD,
	"defects":          DEFECTS,
	"kernel":           KERNEL,
	"on":               ON,
	"scalar":           SCALAR,
	"vector":           VECTOR,
	"tensor":           TENSOR,
	"ctrl":             CTRL,
	"measure":          MEASURE,
	"transport":        TRANSPORT,
	"quench":           QUENCH,
	"inject":           INJECT,
	"amount":           AMOUNT,
	"observe":          OBSERVE,
	"into":             INTO,
	"with":             WITH,
	"corrections":      CORRECTIONS,
	"overlay":          OVERLAY,
	"unless":           UNLESS,
	"angle":            ANGLE,
	"initialize":       INITIALIZE,
	"hysteresis_trace": HYSTERESIS_TRACE,
	"window":           WINDOW,
	"relax":            RELAX,
	"rate":             RATE,
	"nucleate":         NUCLEATE,
	"pin":              PIN,
	"anneal":           ANNEAL,
	"evolve":           EVOLVE,
	"return":           RETURN,
}

// LookupIdent returns the token type for the given lowercased identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= WORKSPACE && t <= RETURN
}

// Token represents a lexical token with position information.
// Literal preserves the original spelling (keywords keep their source
// casing; the type alone carries the case-insensitive match).
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
