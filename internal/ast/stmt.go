package ast

import "strings"

// parseStmtsUntilBrace parses statements up to (and consuming) the next
// top-level '}'. It implements the engine's control-flow flattening: rather
// than building If/For/Switch nodes, it recurses into every brace-delimited
// block it meets — regardless of which keyword introduced it — and splices
// the resulting statements into one flat, source-ordered sequence. A
// construct's header expression (the condition of an if/while, the subject
// of a switch, the iterable of a foreach) is kept as a bare ExprStmt
// immediately before the spliced block, so that calls made in conditions are
// still visited by the call analyzer.
func (p *Parser) parseStmtsUntilBrace() ([]Stmt, error) {
	var out []Stmt
	for {
		if p.eof() {
			return out, nil
		}
		if p.atPunct("}") {
			p.advance()
			return out, nil
		}
		stmts := p.parseStmt()
		out = append(out, stmts...)
	}
}

// parseBlockOrSingle parses either a `{ ... }` block or a single statement,
// as follows any headered construct that omits braces.
func (p *Parser) parseBlockOrSingle() []Stmt {
	if p.atPunct("{") {
		p.advance()
		stmts, _ := p.parseStmtsUntilBrace()
		return stmts
	}
	if p.atPunct(":") {
		// alternative syntax: `if (...): ... endif;` — only the ':' is
		// consumed and no body is returned here; the statements after it
		// are parsed by the caller as ordinary following statements.
		p.advance()
		return nil
	}
	return p.parseStmt()
}

var headeredKeywords = map[string]bool{
	"if": true, "elseif": true, "while": true, "for": true,
	"foreach": true, "switch": true, "catch": true,
}

func (p *Parser) parseStmt() []Stmt {
	line := p.cur().Line
	switch {
	case p.atPunct("{"):
		p.advance()
		stmts, _ := p.parseStmtsUntilBrace()
		return stmts
	case p.atPunct(";"):
		p.advance()
		return nil
	case p.cur().Kind == TokIdent && headeredKeywords[strings.ToLower(p.cur().Value)]:
		return p.parseHeaderedBlock()
	case p.atIdent("else"):
		p.advance()
		if p.atIdent("if") {
			return p.parseStmt()
		}
		return p.parseBlockOrSingle()
	case p.atIdent("do"):
		return p.parseDoWhile()
	case p.atIdent("try"):
		p.advance()
		return p.parseBlockOrSingle()
	case p.atIdent("finally"):
		p.advance()
		return p.parseBlockOrSingle()
	case p.atIdent("case"):
		return p.parseCaseLabel()
	case p.atIdent("default") && p.peek(1).is(TokPunct, ":"):
		p.advance()
		p.advance()
		return nil
	case p.atIdent("return") || p.atIdent("throw") || p.atIdent("echo") || p.atIdent("print"):
		p.advance()
		return p.parseExprListToSemi(line)
	case p.atIdent("break") || p.atIdent("continue") || p.atIdent("global") ||
		p.atIdent("unset") || p.atIdent("goto"):
		p.advance()
		p.skipToSemi()
		return nil
	case p.cur().Kind == TokVariable && p.peek(1).is(TokPunct, "="):
		name := p.advance().Value
		p.advance() // '='
		rhs := p.parseExpr()
		if p.atPunct(";") {
			p.advance()
		}
		return []Stmt{AssignStmt{Var: name, Expr: rhs, Line: line}}
	default:
		e := p.parseExpr()
		if p.atPunct(";") {
			p.advance()
		}
		return []Stmt{ExprStmt{Expr: e, Line: line}}
	}
}

// parseHeaderedBlock handles if/elseif/while/for/foreach/switch/catch: a
// keyword, a parenthesized header, and a block-or-single body. The header's
// content is scanned expression-by-expression rather than as one strict
// grammar production, since for/foreach/catch headers mix expressions with
// separators (';', 'as', '=>', a caught type name) that no single expression
// parse accepts; this still visits every call the header might contain.
func (p *Parser) parseHeaderedBlock() []Stmt {
	p.advance() // keyword
	var header []Stmt
	if p.atPunct("(") {
		header = p.parseHeaderExprs()
	}
	body := p.parseBlockOrSingle()
	return append(header, body...)
}

func (p *Parser) parseHeaderExprs() []Stmt {
	line := p.cur().Line
	p.advance() // '('
	var out []Stmt
	for !p.atPunct(")") && !p.eof() {
		before := p.pos
		e := p.parseExpr()
		if p.pos == before {
			// current token isn't expression-startable (a bare type name
			// before '|' in a catch list, 'as', etc.); skip it and retry.
			p.advance()
			continue
		}
		out = append(out, ExprStmt{Expr: e, Line: line})
		if p.atPunct(")") {
			break
		}
		p.advance() // separator: ',', ';', 'as', '=>', '|', or '$var' already consumed by parseExpr
	}
	if p.atPunct(")") {
		p.advance()
	}
	return out
}

func (p *Parser) parseDoWhile() []Stmt {
	p.advance() // 'do'
	body := p.parseBlockOrSingle()
	if p.atIdent("while") {
		p.advance()
		if p.atPunct("(") {
			body = append(body, p.parseHeaderExprs()...)
		}
	}
	if p.atPunct(";") {
		p.advance()
	}
	return body
}

func (p *Parser) parseCaseLabel() []Stmt {
	line := p.cur().Line
	p.advance() // 'case'
	e := p.parseExpr()
	if p.atPunct(":") {
		p.advance()
	} else if p.atPunct(";") {
		p.advance()
	}
	return []Stmt{ExprStmt{Expr: e, Line: line}}
}

// parseExprListToSemi parses the comma-separated expression(s) following
// return/throw/echo/print up to the terminating ';'.
func (p *Parser) parseExprListToSemi(line int) []Stmt {
	var out []Stmt
	for !p.atPunct(";") && !p.eof() {
		before := p.pos
		e := p.parseExpr()
		if e != nil {
			out = append(out, ExprStmt{Expr: e, Line: line})
		}
		if p.pos == before {
			p.advance()
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct(";") {
		p.advance()
	}
	return out
}
