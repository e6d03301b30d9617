package ast

import "strings"

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, ".=": true, "??=": true,
}

// parseExpr parses one expression, with assignment as the loosest-binding
// operator (sufficient for this engine's purposes: it need not reproduce
// PHP's exact precedence table, only group expressions so that every call
// site nested anywhere inside is reachable during the analyzer's walk).
func (p *Parser) parseExpr() Expr {
	left := p.parseTernary()
	if p.cur().Kind == TokPunct && assignOps[p.cur().Value] {
		op := p.advance().Value
		right := p.parseExpr()
		return BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTernary() Expr {
	cond := p.parseCoalesce()
	if p.atPunct("?") {
		p.advance()
		if p.atPunct(":") { // elvis: cond ?: else
			p.advance()
			elseExpr := p.parseTernary()
			return TernaryExpr{Cond: cond, Then: nil, Else: elseExpr}
		}
		thenExpr := p.parseTernary()
		if p.atPunct(":") {
			p.advance()
		}
		elseExpr := p.parseTernary()
		return TernaryExpr{Cond: cond, Then: thenExpr, Else: elseExpr}
	}
	return cond
}

func (p *Parser) parseCoalesce() Expr {
	left := p.parseLogicalOr()
	if p.atPunct("??") {
		p.advance()
		right := p.parseCoalesce()
		return CoalesceExpr{Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalOr() Expr {
	left := p.parseLogicalAnd()
	for p.atPunct("||") || p.atIdent("or") {
		op := p.advance().Value
		right := p.parseLogicalAnd()
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() Expr {
	left := p.parseEquality()
	for p.atPunct("&&") || p.atIdent("and") {
		op := p.advance().Value
		right := p.parseEquality()
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

var equalityOps = map[string]bool{"==": true, "===": true, "!=": true, "!==": true, "<>": true}

func (p *Parser) parseEquality() Expr {
	left := p.parseComparison()
	for p.cur().Kind == TokPunct && equalityOps[p.cur().Value] {
		op := p.advance().Value
		right := p.parseComparison()
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

var comparisonOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true, "<=>": true}

func (p *Parser) parseComparison() Expr {
	left := p.parseAdditive()
	for p.cur().Kind == TokPunct && comparisonOps[p.cur().Value] {
		op := p.advance().Value
		right := p.parseAdditive()
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

var additiveOps = map[string]bool{"+": true, "-": true, ".": true}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.cur().Kind == TokPunct && additiveOps[p.cur().Value] {
		op := p.advance().Value
		right := p.parseMultiplicative()
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

var multiplicativeOps = map[string]bool{"*": true, "/": true, "%": true, "**": true}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseInstanceof()
	for p.cur().Kind == TokPunct && multiplicativeOps[p.cur().Value] {
		op := p.advance().Value
		right := p.parseInstanceof()
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseInstanceof() Expr {
	left := p.parseUnary()
	if p.atIdent("instanceof") {
		p.advance()
		right := p.parseUnary()
		return BinaryExpr{Op: "instanceof", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	switch {
	case p.atPunct("!") || p.atPunct("-") || p.atPunct("+") || p.atPunct("@") || p.atPunct("~"):
		op := p.advance().Value
		operand := p.parseUnary()
		return UnaryExpr{Op: op, Expr: operand}
	case p.atIdent("clone"):
		p.advance()
		operand := p.parseUnary()
		return p.parsePostfixChain(CloneExpr{Expr: operand})
	case p.atIdent("new"):
		return p.parsePostfixChain(p.parseNew())
	default:
		return p.parsePostfixChain(p.parsePrimary())
	}
}

func (p *Parser) parseNew() Expr {
	line := p.cur().Line
	p.advance() // 'new'
	var classRef Expr
	switch {
	case p.atIdent("class"):
		// anonymous class: `new class(...) extends X implements Y { ... }`.
		// Not representable as a named callee; skip its body and treat the
		// expression as unresolved.
		p.advance()
		if p.atPunct("(") {
			p.skipExprUntil(")")
			if p.atPunct(")") {
				p.advance()
			}
		}
		for !p.atPunct("{") && !p.eof() {
			p.advance()
		}
		if p.atPunct("{") {
			p.advance()
			depth := 1
			for depth > 0 && !p.eof() {
				t := p.advance()
				if t.is(TokPunct, "{") {
					depth++
				} else if t.is(TokPunct, "}") {
					depth--
				}
			}
		}
		return NewExpr{Class: nil, Line: line}
	case p.atIdent("self") || p.atIdent("static"):
		classRef = SelfExpr{Keyword: strings.ToLower(p.advance().Value)}
	case p.cur().Kind == TokVariable:
		classRef = VarExpr{Name: p.advance().Value}
	case p.cur().Kind == TokIdent:
		classRef = NameExpr{Name: p.advance().Value}
	case p.atPunct("("):
		p.advance()
		classRef = p.parseExpr()
		if p.atPunct(")") {
			p.advance()
		}
	}
	var args []Expr
	if p.atPunct("(") {
		args = p.parseArgs()
	}
	return NewExpr{Class: classRef, Args: args, Line: line}
}

// parsePostfixChain applies ->, ?->, ::, [...] and (...) suffixes to expr,
// left-to-right, building the receiver chain the call analyzer walks.
func (p *Parser) parsePostfixChain(expr Expr) Expr {
	for {
		switch {
		case p.atPunct("->") || p.atPunct("?->"):
			nullSafe := p.atPunct("?->")
			p.advance()
			name := p.parseMemberName()
			if p.atPunct("(") {
				line := p.cur().Line
				args := p.parseArgs()
				expr = MethodCallExpr{Recv: expr, Name: name, Args: args, NullSafe: nullSafe, Line: line}
			} else {
				expr = PropFetchExpr{Recv: expr, Name: name, NullSafe: nullSafe}
			}
		case p.atPunct("::"):
			p.advance()
			class := exprAsClassRef(expr)
			if p.cur().Kind == TokVariable {
				name := p.advance().Value
				expr = StaticPropFetchExpr{Class: class, Name: name}
			} else {
				name := p.parseMemberName()
				if p.atPunct("(") {
					line := p.cur().Line
					args := p.parseArgs()
					expr = StaticCallExpr{Class: class, Name: name, Args: args, Line: line}
				} else {
					expr = NameExpr{Name: class + "::" + name}
				}
			}
		case p.atPunct("["):
			p.advance()
			var idx Expr
			if !p.atPunct("]") {
				idx = p.parseExpr()
			}
			if p.atPunct("]") {
				p.advance()
			}
			expr = IndexExpr{Recv: expr, Index: idx}
		case p.atPunct("("):
			line := p.cur().Line
			args := p.parseArgs()
			expr = InvokeExpr{Callee: expr, Args: args, Line: line}
		default:
			return expr
		}
	}
}

// parseMemberName accepts an identifier, or `{expr}` / `$var` for dynamic
// member names (PHP's variable method/property syntax); dynamic names are
// folded to an empty string, which downstream resolution treats as unknown.
func (p *Parser) parseMemberName() string {
	if p.cur().Kind == TokIdent {
		return p.advance().Value
	}
	if p.cur().Kind == TokVariable {
		p.advance()
		return ""
	}
	if p.atPunct("{") {
		p.advance()
		p.parseExpr()
		if p.atPunct("}") {
			p.advance()
		}
		return ""
	}
	return ""
}

func exprAsClassRef(e Expr) string {
	switch v := e.(type) {
	case NameExpr:
		return v.Name
	case SelfExpr:
		return v.Keyword
	case VarExpr:
		return "$" + v.Name
	default:
		return ""
	}
}

func (p *Parser) parseArgs() []Expr {
	p.advance() // '('
	var args []Expr
	for !p.atPunct(")") && !p.eof() {
		if p.atPunct("...") { // spread
			p.advance()
		}
		if p.cur().Kind == TokIdent && p.peek(1).is(TokPunct, ":") && !p.peek(1).is(TokPunct, "::") {
			// named argument `name: expr`
			p.advance()
			p.advance()
		}
		args = append(args, p.parseExpr())
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct(")") {
		p.advance()
	}
	return args
}

func (p *Parser) parsePrimary() Expr {
	switch {
	case p.cur().Kind == TokVariable:
		name := p.advance().Value
		if name == "this" {
			return ThisExpr{}
		}
		return VarExpr{Name: name}
	case p.atIdent("this"):
		p.advance()
		return ThisExpr{}
	case p.atIdent("self") || p.atIdent("static") || p.atIdent("parent"):
		return NameExpr{Name: strings.ToLower(p.advance().Value)}
	case p.atIdent("null") || p.atIdent("true") || p.atIdent("false"):
		return LiteralExpr{Value: p.advance().Value}
	case p.atIdent("match"):
		return p.parseMatch()
	case p.cur().Kind == TokIdent:
		return NameExpr{Name: p.advance().Value}
	case p.cur().Kind == TokNumber || p.cur().Kind == TokString:
		return LiteralExpr{Value: p.advance().Value}
	case p.atPunct("("):
		p.advance()
		e := p.parseExpr()
		if p.atPunct(")") {
			p.advance()
		}
		return e
	case p.atPunct("["):
		return p.parseArrayLiteral("[", "]")
	case p.atIdent("array") && p.peek(1).is(TokPunct, "("):
		p.advance()
		return p.parseArrayLiteral("(", ")")
	case p.atIdent("function") || p.atIdent("fn"):
		return p.parseClosure()
	default:
		p.advance()
		return LiteralExpr{}
	}
}

func (p *Parser) parseArrayLiteral(open, close string) Expr {
	p.advance() // opening token
	var elems []Expr
	for !p.atPunct(close) && !p.eof() {
		if p.atPunct("...") {
			p.advance()
		}
		e := p.parseExpr()
		if p.atPunct("=>") {
			p.advance()
			e = p.parseExpr()
		}
		elems = append(elems, e)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct(close) {
		p.advance()
	}
	return ArrayExpr{Elements: elems}
}

// parseClosure parses `function(...) use (...) { ... }` or an arrow
// function `fn(...) => expr`. Its body is returned as an ArrayExpr of the
// flattened statement expressions so the caller's traversal still finds any
// calls nested inside, without attributing them to a named method.
func (p *Parser) parseClosure() Expr {
	p.advance() // 'function' | 'fn'
	if p.atPunct("&") {
		p.advance()
	}
	if p.atPunct("(") {
		p.skipExprUntil(")")
		if p.atPunct(")") {
			p.advance()
		}
	}
	if p.atIdent("use") {
		p.advance()
		if p.atPunct("(") {
			p.skipExprUntil(")")
			if p.atPunct(")") {
				p.advance()
			}
		}
	}
	if p.atPunct(":") {
		p.advance()
		p.tryParseType()
	}
	if p.atPunct("=>") {
		p.advance()
		return ArrayExpr{Elements: []Expr{p.parseExpr()}}
	}
	if p.atPunct("{") {
		p.advance()
		stmts, _ := p.parseStmtsUntilBrace()
		var exprs []Expr
		for _, s := range stmts {
			switch v := s.(type) {
			case ExprStmt:
				exprs = append(exprs, v.Expr)
			case AssignStmt:
				exprs = append(exprs, v.Expr)
			}
		}
		return ArrayExpr{Elements: exprs}
	}
	return ArrayExpr{}
}

func (p *Parser) parseMatch() Expr {
	p.advance() // 'match'
	var subject Expr
	if p.atPunct("(") {
		p.advance()
		subject = p.parseExpr()
		if p.atPunct(")") {
			p.advance()
		}
	}
	var arms []Expr
	if p.atPunct("{") {
		p.advance()
		for !p.atPunct("}") && !p.eof() {
			if p.atIdent("default") {
				p.advance()
			} else {
				p.parseExpr()
				for p.atPunct(",") {
					p.advance()
					p.parseExpr()
				}
			}
			if p.atPunct("=>") {
				p.advance()
				arms = append(arms, p.parseExpr())
			}
			if p.atPunct(",") {
				p.advance()
			}
		}
		if p.atPunct("}") {
			p.advance()
		}
	}
	return ArrayExpr{Elements: append([]Expr{subject}, arms...)}
}
