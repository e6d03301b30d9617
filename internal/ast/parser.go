package ast

import (
	"fmt"
	"strings"
)

// Parser is a recursive-descent parser over a flat token stream.
type Parser struct {
	toks []Token
	pos  int
	path string
}

// ParseFile lexes and parses a single source file. A syntax error is
// returned rather than panicking so the caller (the parser frontend) can
// skip the file and continue, per the engine's per-file recoverable-error
// policy.
func ParseFile(path string, src []byte) (*File, error) {
	toks := NewLexer(src).Tokenize()
	p := &Parser{toks: toks, path: path}
	return p.parseFile()
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(off int) Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) atPunct(v string) bool { return p.cur().is(TokPunct, v) }
func (p *Parser) atIdent(v string) bool {
	return p.cur().Kind == TokIdent && strings.EqualFold(p.cur().Value, v)
}

func (p *Parser) expectPunct(v string) error {
	if !p.atPunct(v) {
		return fmt.Errorf("%s:%d: expected %q, got %q", p.path, p.cur().Line, v, p.cur().Value)
	}
	p.advance()
	return nil
}

func (p *Parser) eof() bool { return p.cur().Kind == TokEOF }

func (p *Parser) parseFile() (*File, error) {
	f := &File{Path: p.path}
	for !p.eof() {
		switch {
		case p.atIdent("namespace"):
			p.advance()
			f.Namespace = p.parseQualifiedName()
			p.skipPastSemiOrBlock()
		case p.atIdent("use") && p.peek(1).Kind == TokIdent:
			p.advance()
			f.Uses = append(f.Uses, p.parseUseDecl())
		case p.atIdent("class") || p.atIdent("trait") || p.atIdent("interface") ||
			p.atIdent("abstract") || p.atIdent("final") || p.atIdent("enum") ||
			p.atIdent("readonly") && (p.peek(1).Kind == TokIdent && strings.EqualFold(p.peek(1).Value, "class")):
			cl, err := p.parseClassLike(f.Namespace)
			if err != nil {
				return nil, err
			}
			if cl != nil {
				f.Classes = append(f.Classes, cl)
			}
		default:
			p.advance()
		}
	}
	return f, nil
}

// parseQualifiedName consumes a backslash-joined name, which the lexer
// already folds into a single identifier token; it reads at most that one
// token.
func (p *Parser) parseQualifiedName() string {
	var sb strings.Builder
	if p.cur().Kind == TokIdent {
		sb.WriteString(p.advance().Value)
	}
	return sb.String()
}

func (p *Parser) parseUseDecl() UseDecl {
	path := p.parseQualifiedName()
	u := UseDecl{Path: path}
	if p.atIdent("as") {
		p.advance()
		if p.cur().Kind == TokIdent {
			u.Alias = p.advance().Value
		}
	}
	p.skipPastSemiOrBlock()
	return u
}

// skipPastSemiOrBlock consumes tokens through the next top-level ';',
// tolerating a brace-delimited group-use block (`use Foo\{Bar, Baz};`).
func (p *Parser) skipPastSemiOrBlock() {
	depth := 0
	for !p.eof() {
		t := p.advance()
		if t.is(TokPunct, "{") {
			depth++
		} else if t.is(TokPunct, "}") {
			depth--
		} else if t.is(TokPunct, ";") && depth <= 0 {
			return
		}
	}
}

func (p *Parser) parseClassLike(namespace string) (*ClassLike, error) {
	kind := KindClass
	for p.atIdent("abstract") || p.atIdent("final") || p.atIdent("readonly") {
		p.advance()
	}
	switch {
	case p.atIdent("trait"):
		kind = KindTrait
		p.advance()
	case p.atIdent("interface"):
		kind = KindInterface
		p.advance()
	case p.atIdent("class"):
		p.advance()
	case p.atIdent("enum"):
		p.advance()
	default:
		return nil, fmt.Errorf("%s:%d: expected class-like declaration", p.path, p.cur().Line)
	}

	if p.cur().Kind != TokIdent {
		return nil, fmt.Errorf("%s:%d: expected class name", p.path, p.cur().Line)
	}
	cl := &ClassLike{Kind: kind, Name: p.advance().Value, Namespace: namespace, Line: p.cur().Line}

	if p.atPunct(":") { // enum backing type
		p.advance()
		p.advance()
	}

	if p.atIdent("extends") {
		p.advance()
		cl.Extends = append(cl.Extends, p.parseQualifiedName())
		for p.atPunct(",") {
			p.advance()
			cl.Extends = append(cl.Extends, p.parseQualifiedName())
		}
	}
	if p.atIdent("implements") {
		p.advance()
		cl.Implements = append(cl.Implements, p.parseQualifiedName())
		for p.atPunct(",") {
			p.advance()
			cl.Implements = append(cl.Implements, p.parseQualifiedName())
		}
	}

	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	for !p.atPunct("}") && !p.eof() {
		if err := p.parseClassMember(cl); err != nil {
			return nil, err
		}
	}
	if !p.eof() {
		p.advance() // consume '}'
	}
	return cl, nil
}

func (p *Parser) parseClassMember(cl *ClassLike) error {
	if p.atIdent("use") {
		p.advance()
		cl.UsedTraits = append(cl.UsedTraits, p.parseQualifiedName())
		for p.atPunct(",") {
			p.advance()
			cl.UsedTraits = append(cl.UsedTraits, p.parseQualifiedName())
		}
		if p.atPunct("{") {
			depth := 0
			for !p.eof() {
				t := p.advance()
				if t.is(TokPunct, "{") {
					depth++
				} else if t.is(TokPunct, "}") {
					depth--
					if depth == 0 {
						break
					}
				}
			}
		} else if p.atPunct(";") {
			p.advance()
		}
		return nil
	}

	var mods []string
	for isModifier(p.cur()) {
		mods = append(mods, strings.ToLower(p.advance().Value))
	}

	switch {
	case p.atIdent("const"):
		p.advance()
		p.skipToSemi()
		return nil
	case p.atIdent("function"):
		return p.parseMethod(cl, mods)
	case p.atIdent("case"): // enum case
		p.advance()
		p.skipToSemi()
		return nil
	case p.cur().Kind == TokVariable:
		return p.parseProperties(cl, mods, "")
	default:
		// A typed property: `Type $name;` — the type precedes the variable.
		if typ := p.tryParseType(); typ != "" {
			return p.parseProperties(cl, mods, typ)
		}
		p.advance()
		return nil
	}
}

func isModifier(t Token) bool {
	if t.Kind != TokIdent {
		return false
	}
	switch strings.ToLower(t.Value) {
	case "public", "private", "protected", "static", "abstract", "final", "readonly", "var":
		return true
	}
	return false
}

// tryParseType consumes a (possibly nullable/union/intersection) type
// expression and returns its first concrete class-like member, per the name
// resolver's deliberately conservative union/intersection collapsing rule.
// Returns "" if the current position is not a type (e.g. it's the variable
// itself, meaning the property/param is untyped).
func (p *Parser) tryParseType() string {
	start := p.pos
	nullable := false
	if p.atPunct("?") {
		nullable = true
		p.advance()
	}
	if p.cur().Kind != TokIdent {
		p.pos = start
		return ""
	}
	first := p.advance().Value
	for p.atPunct("|") || p.atPunct("&") {
		// Don't confuse `&$byRefParam` or `...&` with intersection types:
		// only consume when followed by another type name.
		if p.peek(1).Kind != TokIdent {
			break
		}
		p.advance()
		p.advance()
	}
	_ = nullable
	return first
}

func (p *Parser) parseProperties(cl *ClassLike, mods []string, typ string) error {
	static := contains(mods, "static")
	for {
		if p.cur().Kind != TokVariable {
			break
		}
		name := p.advance().Value
		prop := &Property{Name: name, Type: typ, Static: static, Line: p.cur().Line}
		if p.atPunct("=") {
			p.advance()
			p.skipExprUntil(",", ";")
		}
		cl.Properties = append(cl.Properties, prop)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct(";") {
		p.advance()
	}
	return nil
}

func (p *Parser) parseMethod(cl *ClassLike, mods []string) error {
	p.advance() // 'function'
	for p.atPunct("&") {
		p.advance()
	}
	if p.cur().Kind != TokIdent {
		return fmt.Errorf("%s:%d: expected method name", p.path, p.cur().Line)
	}
	m := &Method{Name: p.advance().Value, Static: contains(mods, "static"), Abstract: contains(mods, "abstract"), Line: p.cur().Line}

	if err := p.expectPunct("("); err != nil {
		return err
	}
	for !p.atPunct(")") && !p.eof() {
		param, promoted := p.parseParam()
		m.Params = append(m.Params, param)
		if promoted {
			cl.Properties = append(cl.Properties, &Property{Name: param.Name, Type: param.Type, Promoted: true, Line: m.Line})
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct(")") {
		p.advance()
	}

	if p.atPunct(":") {
		p.advance()
		m.ReturnType = p.tryParseType()
		if m.ReturnType == "" && p.cur().Kind == TokIdent {
			m.ReturnType = p.advance().Value
		}
	}

	if p.atPunct("{") {
		p.advance()
		body, err := p.parseStmtsUntilBrace()
		if err != nil {
			return err
		}
		m.Body = body
	} else if p.atPunct(";") {
		p.advance()
	}

	cl.Methods = append(cl.Methods, m)
	return nil
}

func (p *Parser) parseParam() (*Param, bool) {
	promoted := false
	for isModifier(p.cur()) {
		if v := strings.ToLower(p.cur().Value); v == "public" || v == "private" || v == "protected" {
			promoted = true
		}
		p.advance()
	}
	typ := p.tryParseType()
	for p.atPunct("&") {
		p.advance()
	}
	variadic := false
	if p.atPunct("...") {
		variadic = true
		p.advance()
	}
	name := ""
	if p.cur().Kind == TokVariable {
		name = p.advance().Value
	}
	if p.atPunct("=") {
		p.advance()
		p.skipExprUntil(",", ")")
	}
	return &Param{Name: name, Type: typ, Promoted: promoted, Variadic: variadic}, promoted
}

func (p *Parser) skipExprUntil(stops ...string) {
	depth := 0
	for !p.eof() {
		if depth == 0 {
			for _, s := range stops {
				if p.atPunct(s) {
					return
				}
			}
		}
		t := p.advance()
		switch t.Value {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
	}
}

func (p *Parser) skipToSemi() {
	depth := 0
	for !p.eof() {
		t := p.advance()
		switch t.Value {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ";":
			if depth <= 0 {
				return
			}
		}
	}
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
