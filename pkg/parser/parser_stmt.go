package parser

import (
	"fmt"
	"strconv"

	"github.com/squint-lang/squint/pkg/core"
)

// parseStatement dispatches on the leading keyword of a kernel
// statement. The case order mirrors the statement priority order:
// ctrl, measure, transport, quench, observe, initialize,
// hysteresis_trace, relax, defect lifecycle, return.
func (p *Parser) parseStatement() (*core.Operation, error) {
	switch p.token.Type {
	case TOKEN_CTRL:
		return p.parseCtrl()
	case TOKEN_MEASURE:
		return p.parseMeasure()
	case TOKEN_TRANSPORT:
		return p.parseTransport()
	case TOKEN_QUENCH:
		return p.parseQuench()
	case TOKEN_OBSERVE:
		return p.parseObserve()
	case TOKEN_INITIALIZE:
		return p.parseInitialize()
	case TOKEN_HYSTERESIS_TRACE:
		return p.parseHysteresisTrace()
	case TOKEN_RELAX:
		return p.parseRelax()
	case TOKEN_NUCLEATE, TOKEN_PIN, TOKEN_ANNEAL, TOKEN_EVOLVE:
		return p.parseDefectLifecycle()
	case TOKEN_RETURN:
		return p.parseReturn()
	default:
		return nil, p.unrecognizedStatement()
	}
}

// unrecognizedStatement fails with the kernel-relative line number and
// the raw offending line.
func (p *Parser) unrecognizedStatement() error {
	return &ParseError{
		Pos:      Position{Line: p.relLine(p.token), Column: p.token.Pos.Column, Offset: p.token.Pos.Offset},
		Message:  "unrecognized statement",
		LineText: p.lexer.LineText(p.token.Pos.Line),
	}
}

// statementError wraps a structural failure inside a recognized
// statement form with the statement's line context.
func (p *Parser) statementError(start Token, err error) error {
	var pe *ParseError
	if parseErr, ok := err.(*ParseError); ok {
		pe = parseErr
	} else {
		pe = &ParseError{Message: err.Error()}
	}
	pe.Pos.Line = p.relLine(start)
	pe.LineText = p.lexer.LineText(start.Pos.Line)
	return pe
}

// parseQubitRef parses a qubit reference: <name> or <name>[<index>].
// The textual form is preserved so overlay checks and generated output
// see exactly what the source said.
func (p *Parser) parseQubitRef() (string, error) {
	if !p.check(TOKEN_IDENT) {
		return "", p.errorf("expected qubit reference, got %s", p.describeToken())
	}
	name := p.token.Literal
	p.nextToken()
	if !p.check(TOKEN_LBRACKET) {
		return name, nil
	}
	p.nextToken()
	if !p.check(TOKEN_NUMBER) {
		return "", p.errorf("expected qubit index, got %s", p.describeToken())
	}
	idx := p.token.Literal
	p.nextToken()
	if err := p.expect(TOKEN_RBRACKET, "qubit reference"); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%s]", name, idx), nil
}

// parseQubitRefList parses one or more comma-separated qubit references.
func (p *Parser) parseQubitRefList() ([]string, error) {
	var refs []string
	for {
		ref, err := p.parseQubitRef()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
		if !p.match(TOKEN_COMMA) {
			return refs, nil
		}
	}
}

// parseCtrl parses:
// ctrl <gate> <target>[,<target>] [angle=<expr>] [with overlay {...}] [unless <expr>];
func (p *Parser) parseCtrl() (*core.Operation, error) {
	start := p.token
	p.nextToken() // ctrl

	if !p.check(TOKEN_IDENT) {
		return nil, p.statementError(start, p.errorf("expected gate name, got %s", p.describeToken()))
	}
	gate := p.token.Literal
	p.nextToken()

	targets, err := p.parseQubitRefList()
	if err != nil {
		return nil, p.statementError(start, err)
	}

	args := map[string]any{"gate": gate, "targets": targets}

	if p.match(TOKEN_ANGLE) {
		if err := p.expect(TOKEN_ASSIGN, "angle argument"); err != nil {
			return nil, p.statementError(start, err)
		}
		args["angle"] = p.captureRaw(TOKEN_WITH, TOKEN_UNLESS, TOKEN_SEMICOLON)
	}

	var overlay map[string]string
	if p.match(TOKEN_WITH) {
		if err := p.expect(TOKEN_OVERLAY, "overlay block"); err != nil {
			return nil, p.statementError(start, err)
		}
		overlay, err = p.parseOverlayBlock()
		if err != nil {
			return nil, p.statementError(start, err)
		}
	}

	if p.match(TOKEN_UNLESS) {
		guard := p.captureRaw(TOKEN_SEMICOLON)
		if guard != "" {
			args["guard"] = guard
		}
	}

	if err := p.expect(TOKEN_SEMICOLON, "ctrl statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind:    core.KindQuantum,
		Op:      "ctrl",
		Args:    args,
		Overlay: overlay,
		Line:    p.relLine(start),
	}, nil
}

// parseMeasure parses: measure <target>[,<target>] -> <out>[,<out>];
func (p *Parser) parseMeasure() (*core.Operation, error) {
	start := p.token
	p.nextToken() // measure

	targets, err := p.parseQubitRefList()
	if err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_ARROW, "measure statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	var outputs []string
	for {
		if !p.check(TOKEN_IDENT) {
			return nil, p.statementError(start, p.errorf("expected output name, got %s", p.describeToken()))
		}
		outputs = append(outputs, p.token.Literal)
		p.nextToken()
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	if err := p.expect(TOKEN_SEMICOLON, "measure statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind: core.KindQuantum,
		Op:   "measure",
		Args: map[string]any{"targets": targets, "outputs": outputs},
		Line: p.relLine(start),
	}, nil
}

// parseTransport parses: transport <name> = <expr>;
func (p *Parser) parseTransport() (*core.Operation, error) {
	return p.parseAssignForm("transport", core.KindSemantic)
}

// parseInitialize parses: initialize <name> = <expr>;
func (p *Parser) parseInitialize() (*core.Operation, error) {
	return p.parseAssignForm("initialize", core.KindSemantic)
}

// parseAssignForm parses the shared `<verb> <name> = <expr>;` shape of
// transport and initialize. The right-hand side is opaque.
func (p *Parser) parseAssignForm(verb string, kind core.OpKind) (*core.Operation, error) {
	start := p.token
	p.nextToken() // verb

	if !p.check(TOKEN_IDENT) {
		return nil, p.statementError(start, p.errorf("expected field name, got %s", p.describeToken()))
	}
	name := p.token.Literal
	p.nextToken()
	if err := p.expect(TOKEN_ASSIGN, verb+" statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	expr := p.captureRaw(TOKEN_SEMICOLON)
	if expr == "" {
		return nil, p.statementError(start, p.errorf("expected expression after ="))
	}
	if err := p.expect(TOKEN_SEMICOLON, verb+" statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind: kind,
		Op:   verb,
		Args: map[string]any{"name": name, "expr": expr},
		Line: p.relLine(start),
	}, nil
}

// parseQuench parses: quench <name> = inject(<handle>, amount=<number>);
func (p *Parser) parseQuench() (*core.Operation, error) {
	start := p.token
	p.nextToken() // quench

	if !p.check(TOKEN_IDENT) {
		return nil, p.statementError(start, p.errorf("expected defect name, got %s", p.describeToken()))
	}
	name := p.token.Literal
	p.nextToken()

	if err := p.expect(TOKEN_ASSIGN, "quench statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_INJECT, "quench statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_LPAREN, "inject call"); err != nil {
		return nil, p.statementError(start, err)
	}
	if !p.check(TOKEN_IDENT) {
		return nil, p.statementError(start, p.errorf("expected defect handle, got %s", p.describeToken()))
	}
	handle := p.token.Literal
	p.nextToken()
	if err := p.expect(TOKEN_COMMA, "inject call"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_AMOUNT, "inject call"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_ASSIGN, "inject call"); err != nil {
		return nil, p.statementError(start, err)
	}

	amount, err := p.parseFloat("inject amount")
	if err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_RPAREN, "inject call"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_SEMICOLON, "quench statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind: core.KindBraid,
		Op:   "quench",
		Args: map[string]any{"name": name, "handle": handle, "amount": amount},
		Line: p.relLine(start),
	}, nil
}

// parseObserve parses:
// observe <name> [into <name>] [with corrections {<k=v,...>}];
func (p *Parser) parseObserve() (*core.Operation, error) {
	start := p.token
	p.nextToken() // observe

	if !p.check(TOKEN_IDENT) {
		return nil, p.statementError(start, p.errorf("expected field name, got %s", p.describeToken()))
	}
	args := map[string]any{"what": p.token.Literal}
	p.nextToken()

	if p.match(TOKEN_INTO) {
		if !p.check(TOKEN_IDENT) {
			return nil, p.statementError(start, p.errorf("expected output name after into, got %s", p.describeToken()))
		}
		args["into"] = p.token.Literal
		p.nextToken()
	}

	corrections := map[string]string{}
	if p.match(TOKEN_WITH) {
		if err := p.expect(TOKEN_CORRECTIONS, "corrections block"); err != nil {
			return nil, p.statementError(start, err)
		}
		if err := p.expect(TOKEN_LBRACE, "corrections block"); err != nil {
			return nil, p.statementError(start, err)
		}
		for !p.check(TOKEN_RBRACE) && !p.check(TOKEN_EOF) {
			key := p.token.Literal
			p.nextToken()
			// Items without a value are ignored, matching the lenient
			// key=value split of the surface syntax.
			if p.match(TOKEN_ASSIGN) {
				corrections[key] = p.captureRaw(TOKEN_COMMA, TOKEN_RBRACE)
			} else {
				p.captureRaw(TOKEN_COMMA, TOKEN_RBRACE)
			}
			p.match(TOKEN_COMMA)
		}
		if err := p.expect(TOKEN_RBRACE, "corrections block"); err != nil {
			return nil, p.statementError(start, err)
		}
	}
	args["corrections"] = corrections

	if err := p.expect(TOKEN_SEMICOLON, "observe statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind: core.KindSemantic,
		Op:   "observe",
		Args: args,
		Line: p.relLine(start),
	}, nil
}

// parseHysteresisTrace parses: hysteresis_trace(<handle>[, window=<N>]);
func (p *Parser) parseHysteresisTrace() (*core.Operation, error) {
	start := p.token
	p.nextToken() // hysteresis_trace

	if err := p.expect(TOKEN_LPAREN, "hysteresis_trace statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if !p.check(TOKEN_IDENT) {
		return nil, p.statementError(start, p.errorf("expected defect handle, got %s", p.describeToken()))
	}
	args := map[string]any{"handle": p.token.Literal}
	p.nextToken()

	if p.match(TOKEN_COMMA) {
		if err := p.expect(TOKEN_WINDOW, "hysteresis_trace statement"); err != nil {
			return nil, p.statementError(start, err)
		}
		if err := p.expect(TOKEN_ASSIGN, "window argument"); err != nil {
			return nil, p.statementError(start, err)
		}
		w, err := p.parseInt("window")
		if err != nil {
			return nil, p.statementError(start, err)
		}
		args["window"] = w
	}
	if err := p.expect(TOKEN_RPAREN, "hysteresis_trace statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_SEMICOLON, "hysteresis_trace statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind: core.KindSemantic,
		Op:   "hysteresis_trace",
		Args: args,
		Line: p.relLine(start),
	}, nil
}

// parseRelax parses: relax <name>(rate=<expr>);
func (p *Parser) parseRelax() (*core.Operation, error) {
	start := p.token
	p.nextToken() // relax

	if !p.check(TOKEN_IDENT) {
		return nil, p.statementError(start, p.errorf("expected field name, got %s", p.describeToken()))
	}
	name := p.token.Literal
	p.nextToken()

	if err := p.expect(TOKEN_LPAREN, "relax statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_RATE, "relax statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_ASSIGN, "rate argument"); err != nil {
		return nil, p.statementError(start, err)
	}
	rate := p.captureRaw(TOKEN_RPAREN)
	if rate == "" {
		return nil, p.statementError(start, p.errorf("expected rate expression"))
	}
	if err := p.expect(TOKEN_RPAREN, "relax statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_SEMICOLON, "relax statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind: core.KindSemantic,
		Op:   "relax",
		Args: map[string]any{"name": name, "rate": rate},
		Line: p.relLine(start),
	}, nil
}

// parseDefectLifecycle parses: nucleate|pin|anneal|evolve <free-form spec>;
// The spec string is opaque to the grammar; the simulator interprets it.
func (p *Parser) parseDefectLifecycle() (*core.Operation, error) {
	start := p.token
	verb := lowerVerb(p.token)
	p.nextToken()

	spec := p.captureRaw(TOKEN_SEMICOLON)
	p.match(TOKEN_SEMICOLON)

	return &core.Operation{
		Kind: core.KindBraid,
		Op:   verb,
		Args: map[string]any{"spec": spec},
		Line: p.relLine(start),
	}, nil
}

// parseReturn parses: return {<free-form spec>};
func (p *Parser) parseReturn() (*core.Operation, error) {
	start := p.token
	p.nextToken() // return

	if err := p.expect(TOKEN_LBRACE, "return statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	spec := p.captureRaw(TOKEN_RBRACE)
	if err := p.expect(TOKEN_RBRACE, "return statement"); err != nil {
		return nil, p.statementError(start, err)
	}
	if err := p.expect(TOKEN_SEMICOLON, "return statement"); err != nil {
		return nil, p.statementError(start, err)
	}

	return &core.Operation{
		Kind: core.KindSemantic,
		Op:   "return",
		Args: map[string]any{"spec": spec},
		Line: p.relLine(start),
	}, nil
}

// parseFloat expects a numeric token, with an optional leading sign.
func (p *Parser) parseFloat(context string) (float64, error) {
	sign := 1.0
	if p.match(TOKEN_MINUS) {
		sign = -1.0
	} else if p.match(TOKEN_PLUS) {
		sign = 1.0
	}
	if !p.check(TOKEN_NUMBER) {
		return 0, p.errorf("expected number for %s, got %s", context, p.describeToken())
	}
	f, err := strconv.ParseFloat(p.token.Literal, 64)
	if err != nil {
		return 0, p.errorf("expected number for %s, got %q", context, p.token.Literal)
	}
	p.nextToken()
	return sign * f, nil
}

// lowerVerb returns the canonical lowercase verb name for a defect
// lifecycle keyword token.
func lowerVerb(tok Token) string {
	switch tok.Type {
	case TOKEN_NUCLEATE:
		return "nucleate"
	case TOKEN_PIN:
		return "pin"
	case TOKEN_ANNEAL:
		return "anneal"
	case TOKEN_EVOLVE:
		return "evolve"
	}
	return tok.Literal
}
