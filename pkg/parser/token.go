// Package parser provides SQUINT parsing: source text in, IR Program out.
// This file re-exports token types so parser code reads tersely.
package parser

import "github.com/squint-lang/squint/pkg/token"

// TokenType is an alias for token.TokenType.
type TokenType = token.TokenType

// Token is an alias for token.Token.
type Token = token.Token

// Position is an alias for token.Position.
type Position = token.Position

// LookupIdent is re-exported from the token package.
var LookupIdent = token.LookupIdent

//nolint:revive // TOKEN_* names are intentionally ALL_CAPS for token conventions
const (
	TOKEN_EOF     = token.EOF
	TOKEN_ILLEGAL = token.ILLEGAL

	TOKEN_IDENT  = token.IDENT
	TOKEN_NUMBER = token.NUMBER

	TOKEN_ASSIGN    = token.ASSIGN
	TOKEN_EQ        = token.EQ
	TOKEN_LE        = token.LE
	TOKEN_GE        = token.GE
	TOKEN_LT        = token.LT
	TOKEN_GT        = token.GT
	TOKEN_PLUS      = token.PLUS
	TOKEN_MINUS     = token.MINUS
	TOKEN_STAR      = token.STAR
	TOKEN_SLASH     = token.SLASH
	TOKEN_DOT       = token.DOT
	TOKEN_COMMA     = token.COMMA
	TOKEN_COLON     = token.COLON
	TOKEN_SEMICOLON = token.SEMICOLON
	TOKEN_ARROW     = token.ARROW
	TOKEN_LPAREN    = token.LPAREN
	TOKEN_RPAREN    = token.RPAREN
	TOKEN_LBRACE    = token.LBRACE
	TOKEN_RBRACE    = token.RBRACE
	TOKEN_LBRACKET  = token.LBRACKET
	TOKEN_RBRACKET  = token.RBRACKET

	TOKEN_WORKSPACE        = token.WORKSPACE
	TOKEN_QUBITS           = token.QUBITS
	TOKEN_LATTICE          = token.LATTICE
	TOKEN_ATTACH           = token.ATTACH
	TOKEN_SEMANTIC_FIELD   = token.SEMANTIC_FIELD
	TOKEN_DEFECT_FIELD     = token.DEFECT_FIELD
	TOKEN_DEFECTS          = token.DEFECTS
	TOKEN_KERNEL           = token.KERNEL
	TOKEN_ON               = token.ON
	TOKEN_SCALAR           = token.SCALAR
	TOKEN_VECTOR           = token.VECTOR
	TOKEN_TENSOR           = token.TENSOR
	TOKEN_CTRL             = token.CTRL
	TOKEN_MEASURE          = token.MEASURE
	TOKEN_TRANSPORT        = token.TRANSPORT
	TOKEN_QUENCH           = token.QUENCH
	TOKEN_INJECT           = token.INJECT
	TOKEN_AMOUNT           = token.AMOUNT
	TOKEN_OBSERVE          = token.OBSERVE
	TOKEN_INTO             = token.INTO
	TOKEN_WITH             = token.WITH
	TOKEN_CORRECTIONS      = token.CORRECTIONS
	TOKEN_OVERLAY          = token.OVERLAY
	TOKEN_UNLESS           = token.UNLESS
	TOKEN_ANGLE            = token.ANGLE
	TOKEN_INITIALIZE       = token.INITIALIZE
	TOKEN_HYSTERESIS_TRACE = token.HYSTERESIS_TRACE
	TOKEN_WINDOW           = token.WINDOW
	TOKEN_RELAX            = token.RELAX
	TOKEN_RATE             = token.RATE
	TOKEN_NUCLEATE         = token.NUCLEATE
	TOKEN_PIN              = token.PIN
	TOKEN_ANNEAL           = token.ANNEAL
	TOKEN_EVOLVE           = token.EVOLVE
	TOKEN_RETURN           = token.RETURN
)
