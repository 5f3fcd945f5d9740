// Package parser turns SQUINT source text into one core.Program.
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for the SQUINT
// surface syntax:
//
//	program        → workspace kernel
//	workspace      → WORKSPACE name { qubits_decl lattice_decl (field_decl)* }
//	kernel         → KERNEL name [(...)] ON name { statement* }
//	statement      → ctrl | measure | transport | quench | observe
//	               | initialize | hysteresis_trace | relax
//	               | (nucleate|pin|anneal|evolve) spec | return
//
// Statements are tried in a fixed priority order (the dispatch below
// mirrors it); a kernel line matching no form fails parsing immediately
// with the offending line number and text. Free-form expression and
// spec segments are captured as raw source slices by token byte offset,
// with brace/paren depth tracking as the only structural recovery
// mechanism.
//
// Keywords match case-insensitively. Operation line numbers are 1-based
// relative to the kernel body, so diagnostics line up with the kernel as
// the author wrote it.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/squint-lang/squint/pkg/core"
)

// Parser parses SQUINT into the IR.
type Parser struct {
	lexer *Lexer
	token Token // current token
	peek  Token // lookahead token

	// Absolute source line of the kernel header; operation lines are
	// reported relative to it.
	kernelLine int
}

// NewParser creates a new parser for the given source text.
func NewParser(source string) *Parser {
	p := &Parser{lexer: NewLexer(source)}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses one SQUINT source and returns the IR program.
func Parse(source string) (*core.Program, error) {
	return NewParser(source).ParseProgram()
}

// ParseProgram parses the workspace declaration and the kernel body.
func (p *Parser) ParseProgram() (*core.Program, error) {
	ws, err := p.parseWorkspace()
	if err != nil {
		return nil, err
	}

	krn, err := p.parseKernel(ws)
	if err != nil {
		return nil, err
	}

	return &core.Program{Workspace: ws, Kernel: krn}, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise fails.
func (p *Parser) expect(t TokenType, context string) error {
	if p.check(t) {
		p.nextToken()
		return nil
	}
	return p.errorf("expected %s in %s, got %s", t, context, p.describeToken())
}

func (p *Parser) describeToken() string {
	if p.token.Type == TOKEN_EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", p.token.Literal)
}

// errorf builds a ParseError at the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.token.Pos, Message: fmt.Sprintf(format, args...)}
}

// relLine converts an absolute token line to a kernel-body-relative one.
func (p *Parser) relLine(tok Token) int {
	return tok.Pos.Line - p.kernelLine + 1
}

// captureRaw consumes tokens until one of the stop types appears at
// depth zero and returns the raw source slice covered, trimmed. The
// stop token is left as the current token. Paren, brace, and bracket
// tokens track nesting so free-form content may contain any of them.
func (p *Parser) captureRaw(stops ...TokenType) string {
	start := p.token.Pos.Offset
	depth := 0
	for !p.check(TOKEN_EOF) {
		if depth == 0 {
			for _, s := range stops {
				if p.token.Type == s {
					return strings.TrimSpace(p.lexer.input[start:p.token.Pos.Offset])
				}
			}
		}
		switch p.token.Type {
		case TOKEN_LPAREN, TOKEN_LBRACE, TOKEN_LBRACKET:
			depth++
		case TOKEN_RPAREN, TOKEN_RBRACE, TOKEN_RBRACKET:
			depth--
		}
		p.nextToken()
	}
	return strings.TrimSpace(p.lexer.input[start:])
}

// skipBalanced consumes a balanced open/close token pair, including
// everything nested inside. The current token must be the opener.
func (p *Parser) skipBalanced(open, close TokenType) {
	depth := 0
	for !p.check(TOKEN_EOF) {
		if p.check(open) {
			depth++
		} else if p.check(close) {
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// ---------- Workspace ----------

func (p *Parser) parseWorkspace() (*core.Workspace, error) {
	// Locate the workspace header; anything before it is ignored, the
	// way the surface syntax tolerates prologue text.
	for !p.check(TOKEN_WORKSPACE) {
		if p.check(TOKEN_EOF) {
			return nil, &ParseError{Message: errWorkspaceNotFound}
		}
		p.nextToken()
	}
	p.nextToken() // workspace

	if !p.check(TOKEN_IDENT) {
		return nil, p.errorf("expected workspace name, got %s", p.describeToken())
	}
	ws := &core.Workspace{
		Name:           p.token.Literal,
		SemanticFields: map[string]string{},
	}
	p.nextToken()

	if err := p.expect(TOKEN_LBRACE, "workspace declaration"); err != nil {
		return nil, err
	}

	var haveQubits, haveLattice bool
	for !p.check(TOKEN_RBRACE) && !p.check(TOKEN_EOF) {
		switch p.token.Type {
		case TOKEN_QUBITS:
			n, err := p.parseQubitsDecl()
			if err != nil {
				return nil, err
			}
			ws.Qubits = n
			haveQubits = true
		case TOKEN_LATTICE:
			lat, err := p.parseLatticeDecl()
			if err != nil {
				return nil, err
			}
			ws.Lattice = lat
			haveLattice = true
		case TOKEN_SEMANTIC_FIELD:
			name, kind, err := p.parseSemanticFieldDecl()
			if err != nil {
				return nil, err
			}
			ws.SemanticFields[name] = kind
		case TOKEN_DEFECT_FIELD:
			name, err := p.parseDefectFieldDecl()
			if err != nil {
				return nil, err
			}
			ws.DefectFields = append(ws.DefectFields, name)
		default:
			// Unrecognized workspace content is skipped, not rejected.
			p.skipDecl()
		}
	}
	if !haveQubits {
		return nil, &ParseError{Message: errQubitsNotFound}
	}
	if !haveLattice {
		return nil, &ParseError{Message: errLatticeNotFound}
	}
	p.nextToken() // closing brace
	return ws, nil
}

// skipDecl consumes tokens through the next top-level semicolon,
// stepping over any nested braces on the way.
func (p *Parser) skipDecl() {
	depth := 0
	for !p.check(TOKEN_EOF) {
		switch p.token.Type {
		case TOKEN_LBRACE:
			depth++
		case TOKEN_RBRACE:
			if depth == 0 {
				return // body close, leave it for the caller
			}
			depth--
		case TOKEN_SEMICOLON:
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// parseQubitsDecl parses: qubits <name>[<N>];
func (p *Parser) parseQubitsDecl() (int, error) {
	p.nextToken() // qubits
	if !p.check(TOKEN_IDENT) {
		return 0, &ParseError{Pos: p.token.Pos, Message: errQubitsNotFound}
	}
	p.nextToken()
	if err := p.expect(TOKEN_LBRACKET, "qubits declaration"); err != nil {
		return 0, err
	}
	if !p.check(TOKEN_NUMBER) {
		return 0, &ParseError{Pos: p.token.Pos, Message: errQubitsNotFound}
	}
	n, err := strconv.Atoi(p.token.Literal)
	if err != nil {
		return 0, &ParseError{Pos: p.token.Pos, Message: errQubitsNotFound}
	}
	p.nextToken()
	if err := p.expect(TOKEN_RBRACKET, "qubits declaration"); err != nil {
		return 0, err
	}
	if err := p.expect(TOKEN_SEMICOLON, "qubits declaration"); err != nil {
		return 0, err
	}
	return n, nil
}

// parseLatticeDecl parses: lattice <name>(<cols>,<rows>) attach <name>;
func (p *Parser) parseLatticeDecl() (core.Lattice, error) {
	var lat core.Lattice
	p.nextToken() // lattice
	if !p.check(TOKEN_IDENT) {
		return lat, &ParseError{Pos: p.token.Pos, Message: errLatticeNotFound}
	}
	p.nextToken()
	if err := p.expect(TOKEN_LPAREN, "lattice declaration"); err != nil {
		return lat, err
	}
	cols, err := p.parseInt("lattice columns")
	if err != nil {
		return lat, err
	}
	if err := p.expect(TOKEN_COMMA, "lattice declaration"); err != nil {
		return lat, err
	}
	rows, err := p.parseInt("lattice rows")
	if err != nil {
		return lat, err
	}
	if err := p.expect(TOKEN_RPAREN, "lattice declaration"); err != nil {
		return lat, err
	}
	// The attach clause is required; the binding is not interpreted.
	if !p.match(TOKEN_ATTACH) {
		return lat, &ParseError{Pos: p.token.Pos, Message: errLatticeNotFound}
	}
	if err := p.expect(TOKEN_IDENT, "attach clause"); err != nil {
		return lat, err
	}
	if err := p.expect(TOKEN_SEMICOLON, "lattice declaration"); err != nil {
		return lat, err
	}
	lat.Cols, lat.Rows = cols, rows
	return lat, nil
}

// parseSemanticFieldDecl parses:
// semantic_field <name>: scalar|vector|tensor[<N>] on <name>;
func (p *Parser) parseSemanticFieldDecl() (string, string, error) {
	p.nextToken() // semantic_field
	if !p.check(TOKEN_IDENT) {
		return "", "", p.errorf("expected semantic field name, got %s", p.describeToken())
	}
	name := p.token.Literal
	p.nextToken()
	if err := p.expect(TOKEN_COLON, "semantic_field declaration"); err != nil {
		return "", "", err
	}

	var kind string
	switch p.token.Type {
	case TOKEN_SCALAR:
		kind = "scalar"
		p.nextToken()
	case TOKEN_VECTOR:
		kind = "vector"
		p.nextToken()
	case TOKEN_TENSOR:
		p.nextToken()
		if err := p.expect(TOKEN_LBRACKET, "tensor kind"); err != nil {
			return "", "", err
		}
		rank, err := p.parseInt("tensor rank")
		if err != nil {
			return "", "", err
		}
		if err := p.expect(TOKEN_RBRACKET, "tensor kind"); err != nil {
			return "", "", err
		}
		kind = fmt.Sprintf("tensor[%d]", rank)
	default:
		return "", "", p.errorf("expected scalar, vector, or tensor[N], got %s", p.describeToken())
	}

	if err := p.expect(TOKEN_ON, "semantic_field declaration"); err != nil {
		return "", "", err
	}
	if err := p.expect(TOKEN_IDENT, "semantic_field declaration"); err != nil {
		return "", "", err
	}
	if err := p.expect(TOKEN_SEMICOLON, "semantic_field declaration"); err != nil {
		return "", "", err
	}
	return name, kind, nil
}

// parseDefectFieldDecl parses:
// defect_field <name>: defects on <name> { ... };
func (p *Parser) parseDefectFieldDecl() (string, error) {
	p.nextToken() // defect_field
	if !p.check(TOKEN_IDENT) {
		return "", p.errorf("expected defect field name, got %s", p.describeToken())
	}
	name := p.token.Literal
	p.nextToken()
	if err := p.expect(TOKEN_COLON, "defect_field declaration"); err != nil {
		return "", err
	}
	if err := p.expect(TOKEN_DEFECTS, "defect_field declaration"); err != nil {
		return "", err
	}
	if err := p.expect(TOKEN_ON, "defect_field declaration"); err != nil {
		return "", err
	}
	if err := p.expect(TOKEN_IDENT, "defect_field declaration"); err != nil {
		return "", err
	}
	if p.check(TOKEN_LBRACE) {
		// The inner block is uninterpreted; skip it whole.
		p.skipBalanced(TOKEN_LBRACE, TOKEN_RBRACE)
	}
	if err := p.expect(TOKEN_SEMICOLON, "defect_field declaration"); err != nil {
		return "", err
	}
	return name, nil
}

// parseInt expects a NUMBER token holding an integer.
func (p *Parser) parseInt(context string) (int, error) {
	if !p.check(TOKEN_NUMBER) {
		return 0, p.errorf("expected integer for %s, got %s", context, p.describeToken())
	}
	n, err := strconv.Atoi(p.token.Literal)
	if err != nil {
		return 0, p.errorf("expected integer for %s, got %q", context, p.token.Literal)
	}
	p.nextToken()
	return n, nil
}

// ---------- Kernel ----------

func (p *Parser) parseKernel(ws *core.Workspace) (*core.Kernel, error) {
	// Locate the kernel header.
	for !p.check(TOKEN_KERNEL) {
		if p.check(TOKEN_EOF) {
			return nil, &ParseError{Message: errKernelNotFound}
		}
		p.nextToken()
	}
	p.kernelLine = p.token.Pos.Line
	p.nextToken() // kernel

	if !p.check(TOKEN_IDENT) {
		return nil, p.errorf("expected kernel name, got %s", p.describeToken())
	}
	name := p.token.Literal
	p.nextToken()

	// Optional parameter list; uninterpreted.
	if p.check(TOKEN_LPAREN) {
		p.skipBalanced(TOKEN_LPAREN, TOKEN_RPAREN)
	}

	if err := p.expect(TOKEN_ON, "kernel declaration"); err != nil {
		return nil, err
	}
	if !p.check(TOKEN_IDENT) {
		return nil, p.errorf("expected target workspace name, got %s", p.describeToken())
	}
	target := p.token.Literal
	if target != ws.Name {
		return nil, p.errorf("kernel %q targets workspace %q but workspace is %q", name, target, ws.Name)
	}
	p.nextToken()
	if err := p.expect(TOKEN_LBRACE, "kernel declaration"); err != nil {
		return nil, err
	}

	krn := &core.Kernel{Name: name}
	for !p.check(TOKEN_RBRACE) && !p.check(TOKEN_EOF) {
		op, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		krn.Operations = append(krn.Operations, op)
	}
	return krn, nil
}
