package parser

import "strings"

// Overlay items use a small key/value grammar of their own:
//
//	item  → key (≥ value | ≤ value | == value | = value | ε)
//	items → item (, item)*
//
// A relational item is stored as "<op><value>" with the ASCII operator
// spelling, so serialization round-trips losslessly: both `>=` and `≥`
// in the source come back out as `>=`. A bare key stores "true".

// parseOverlayBlock parses `{ k>=v, k2=v2, bare }` with the opening
// brace as the current token.
func (p *Parser) parseOverlayBlock() (map[string]string, error) {
	if err := p.expect(TOKEN_LBRACE, "overlay block"); err != nil {
		return nil, err
	}
	items := map[string]string{}
	for !p.check(TOKEN_RBRACE) && !p.check(TOKEN_EOF) {
		if p.match(TOKEN_COMMA) {
			continue // tolerate empty items
		}
		key := p.token.Literal
		p.nextToken()

		switch p.token.Type {
		case TOKEN_GE:
			p.nextToken()
			items[key] = ">=" + p.captureRaw(TOKEN_COMMA, TOKEN_RBRACE)
		case TOKEN_LE:
			p.nextToken()
			items[key] = "<=" + p.captureRaw(TOKEN_COMMA, TOKEN_RBRACE)
		case TOKEN_EQ, TOKEN_ASSIGN:
			p.nextToken()
			items[key] = p.captureRaw(TOKEN_COMMA, TOKEN_RBRACE)
		case TOKEN_COMMA, TOKEN_RBRACE:
			items[key] = "true"
		default:
			// Key with trailing content but no operator: fold the rest
			// of the item into the key, then treat it as bare.
			rest := p.captureRaw(TOKEN_COMMA, TOKEN_RBRACE)
			if rest != "" {
				key = key + " " + rest
			}
			items[key] = "true"
		}
	}
	if err := p.expect(TOKEN_RBRACE, "overlay block"); err != nil {
		return nil, err
	}
	return items, nil
}

// NormalizeRelOps replaces the ASCII relational digraphs with their
// single-rune spellings.
func NormalizeRelOps(s string) string {
	s = strings.ReplaceAll(s, ">=", "≥")
	return strings.ReplaceAll(s, "<=", "≤")
}

// ExpandRelOps reverses NormalizeRelOps, reconstituting the ASCII
// digraphs. ExpandRelOps(NormalizeRelOps(s)) == s for any s already in
// ASCII form.
func ExpandRelOps(s string) string {
	s = strings.ReplaceAll(s, "≥", ">=")
	return strings.ReplaceAll(s, "≤", "<=")
}

// FormatOverlayItem reconstitutes the ASCII source form of one parsed
// overlay item.
func FormatOverlayItem(key, value string) string {
	switch {
	case value == "true":
		return key
	case strings.HasPrefix(value, ">=") || strings.HasPrefix(value, "<="):
		return key + value
	default:
		return key + "=" + value
	}
}
