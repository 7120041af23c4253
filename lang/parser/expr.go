package parser

import (
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// dotForm builds the [$dot target member] form lang/compiler.compileDot
// expects (spec.md §4.2: "a.b" => "[$dot a b]"), stamped with loc.
func (p *parser) dotForm(loc value.SourceLocation, target value.Object, member string) value.Object {
	return p.list(loc, value.Symbol(symbol.Dot), target, value.Symbol(symbol.Intern(member)))
}

// methodCall builds a [[$dot target name] arg...] form: target.name(args...)
// invoked through Met dispatch (spec.md §4.2's "a + b" => "[[$dot a +] b]").
// Every arithmetic, keyword-message, colon, range and unary operator goes
// through this single helper; a zero-length args produces the single-
// element list form the original parser's unary operators use.
func (p *parser) methodCall(loc value.SourceLocation, target value.Object, name string, args ...value.Object) value.Object {
	callee := p.dotForm(loc, target, name)
	elems := make([]value.Object, 0, len(args)+1)
	elems = append(elems, callee)
	elems = append(elems, args...)
	return p.list(loc, elems...)
}

// cmpForm builds the flat [opSymbol lhs rhs] form lang/compiler.compileCall's
// comparisonOps branch (and, for is/===/!==, lang/compiler.compileList's
// switch) expects directly -- unlike arithmetic, ordering and equality
// operators are NOT routed through $dot (DESIGN.md's recorded decision).
func (p *parser) cmpForm(loc value.SourceLocation, opName string, lhs, rhs value.Object) value.Object {
	return p.list(loc, value.Symbol(symbol.Intern(opName)), lhs, rhs)
}

// parseAssign implements "assign -> opequals": it parses one "or"-level
// expression and, if followed by '=' or a compound-assignment operator,
// lowers it to [$set target value] (a plain '=') or
// [$set target [[$dot target op] value]] (an op=), right-associatively.
func (p *parser) parseAssign() value.Object {
	loc := p.loc(p.val.Pos)
	left := p.parseOr()

	if p.tok == token.EQ {
		p.advance()
		rhs := p.parseAssign()
		return p.buildSet(loc, left, rhs)
	}
	if base, ok := p.tok.IsOpEquals(); ok {
		opName := base.String()
		p.advance()
		rhs := p.parseAssign()
		return p.buildSet(loc, left, p.methodCall(loc, left, opName, rhs))
	}
	return left
}

// buildSet lowers an assignment target to [$set sym value]. Only a bare
// symbol target is supported by lang/compiler.compileSet today; a dotted
// target (e.g. "a.b = c") still parses, but is left as a best-effort
// [$set <dot-form> value] for a future property-set lowering to pick up,
// since the compiler has no dedicated opcode for it yet (same kind of
// pre-existing gap as $fn/$new).
func (p *parser) buildSet(loc value.SourceLocation, target, val value.Object) value.Object {
	return p.list(loc, value.Symbol(symbol.Set), target, val)
}

// parseOr implements "or -> and ('or' and)*", left-folding each chained
// 'or' into a binary [or acc rhs] pair since lang/compiler.compileOr
// requires exactly two operands (unlike the flat n-ary list the original
// parser builds).
func (p *parser) parseOr() value.Object {
	acc := p.parseAnd()
	for p.tok == token.OR {
		loc := p.loc(p.val.Pos)
		p.advance()
		rhs := p.parseAnd()
		acc = p.list(loc, value.Symbol(symbol.OpOr), acc, rhs)
	}
	return acc
}

// parseAnd implements "and -> not ('and' not)*", same left-fold shape as
// parseOr.
func (p *parser) parseAnd() value.Object {
	acc := p.parseNot()
	for p.tok == token.AND {
		loc := p.loc(p.val.Pos)
		p.advance()
		rhs := p.parseNot()
		acc = p.list(loc, value.Symbol(symbol.OpAnd), acc, rhs)
	}
	return acc
}

// parseNot implements "not -> 'not'* cmp": a run of prefix 'not' tokens
// wraps the parsed cmp expression in that many nested [not x] forms,
// innermost first.
func (p *parser) parseNot() value.Object {
	var locs []value.SourceLocation
	for p.tok == token.NOT {
		locs = append(locs, p.loc(p.val.Pos))
		p.advance()
	}
	expr := p.parseCmp()
	for i := len(locs) - 1; i >= 0; i-- {
		expr = p.list(locs[i], value.Symbol(symbol.OpNot), expr)
	}
	return expr
}

// cmpOpName maps a comparison token to the operator name used both as the
// flat form's head symbol and, for the five ordering/equality operators
// that fall through to Met dispatch, the dispatched method name.
func cmpOpName(tok token.Token) string {
	switch tok {
	case token.LT:
		return "<"
	case token.GT:
		return ">"
	case token.LE:
		return "<="
	case token.GE:
		return ">="
	case token.EQEQ:
		return "=="
	case token.NEQ:
		return "!="
	case token.SUPEREQ:
		return "==="
	case token.SUPERNE:
		return "!=="
	case token.IS:
		return "is"
	}
	return ""
}

// parseCmp implements "cmp -> add (cmpop add)*": every comparison operator
// (ordering, equality, is/===/!==) lowers to the flat [opSymbol lhs rhs]
// shape (spec.md §4.2's "[<= a b]"), left-folded if chained.
func (p *parser) parseCmp() value.Object {
	acc := p.parseAdd()
	for p.tok.IsCmp() {
		loc := p.loc(p.val.Pos)
		name := cmpOpName(p.tok)
		p.advance()
		rhs := p.parseAdd()
		acc = p.cmpForm(loc, name, acc, rhs)
	}
	return acc
}

// parseAdd implements "add -> mul (('+'|'-') mul)*", routed through $dot
// method dispatch (spec.md §4.2's "a + b" => "[[$dot a +] b]").
func (p *parser) parseAdd() value.Object {
	acc := p.parseMul()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		loc := p.loc(p.val.Pos)
		name := p.tok.String()
		p.advance()
		rhs := p.parseMul()
		acc = p.methodCall(loc, acc, name, rhs)
	}
	return acc
}

// parseMul implements "mul -> binary (('*'|'/') binary)*".
func (p *parser) parseMul() value.Object {
	acc := p.parseBinary()
	for p.tok == token.STAR || p.tok == token.SLASH {
		loc := p.loc(p.val.Pos)
		name := p.tok.String()
		p.advance()
		rhs := p.parseBinary()
		acc = p.methodCall(loc, acc, name, rhs)
	}
	return acc
}

// parseBinary implements "binary -> colon (<ident> colon (',' colon)*)*",
// Smile's Smalltalk-style keyword messaging: any bare identifier appearing
// where an operator is expected is itself the method name, applied to one
// or more comma-separated arguments (e.g. "a foo b, c" is "a.foo(b, c)").
// Because every reserved word is its own token (never IDENT) in this
// lexicon, no exclusion list is needed the way the original C parser
// needed Parser_IsAcceptableArbitraryBinaryOperator: any IDENT seen here
// can only be a keyword-message name.
func (p *parser) parseBinary() value.Object {
	acc := p.parseColon()
	for p.tok == token.IDENT {
		loc := p.loc(p.val.Pos)
		name := p.val.Raw
		p.advance()

		args := []value.Object{p.parseColon()}
		for p.tok == token.COMMA {
			p.advance()
			args = append(args, p.parseColon())
		}
		acc = p.methodCall(loc, acc, name, args...)
	}
	return acc
}

// parseColon implements "colon -> range (':' range)*", member/property
// access by colon syntax, lowered through the same $dot mechanism as every
// other operator (method name "at").
func (p *parser) parseColon() value.Object {
	acc := p.parseRange()
	for p.tok == token.COLON {
		loc := p.loc(p.val.Pos)
		p.advance()
		rhs := p.parseRange()
		acc = p.methodCall(loc, acc, "at", rhs)
	}
	return acc
}

// parseRange implements "range -> unary ('..' unary)?", a range
// construction lowered as a $dot method call (method name "to").
func (p *parser) parseRange() value.Object {
	acc := p.parseUnary()
	if p.tok == token.DOTDOT {
		loc := p.loc(p.val.Pos)
		p.advance()
		rhs := p.parseUnary()
		acc = p.methodCall(loc, acc, "to", rhs)
	}
	return acc
}

// unaryOpName maps a prefix unary-operator token to its method name, or ""
// if tok isn't a unary operator at this level.
func unaryOpName(tok token.Token) string {
	switch tok {
	case token.MINUS:
		return "neg"
	case token.PLUS:
		return "pos"
	case token.TILDE:
		return "not-bits"
	}
	return ""
}

// parseUnary implements "unary -> <prefix-op>* new": a run of prefix unary
// operators wraps the parsed 'new' expression in that many nested zero-
// argument method calls, innermost first (spec.md §4.2's unary operators
// build "[(x . opSymbol)]", i.e. "x.opSymbol()").
func (p *parser) parseUnary() value.Object {
	type prefixOp struct {
		loc  value.SourceLocation
		name string
	}
	var ops []prefixOp
	for {
		name := unaryOpName(p.tok)
		if name == "" {
			break
		}
		ops = append(ops, prefixOp{loc: p.loc(p.val.Pos), name: name})
		p.advance()
	}

	expr := p.parseNew()
	for i := len(ops) - 1; i >= 0; i-- {
		expr = p.methodCall(ops[i].loc, expr, ops[i].name)
	}
	return expr
}

// parseNew implements "new -> 'new' (dot)? '{' members '}' | doublehash":
// falls through to parseDoubleHash unless the 'new' keyword is present.
func (p *parser) parseNew() value.Object {
	if p.tok != token.NEW {
		return p.parseDoubleHash()
	}
	loc := p.loc(p.val.Pos)
	p.advance()

	var base value.Object = value.Null
	if p.tok != token.LBRACE {
		base = p.parseDot()
	}

	p.expect(token.LBRACE)
	members := p.parseMembers()
	p.expect(token.RBRACE)

	return p.list(loc, value.Symbol(symbol.NewObj), base, members)
}

// parseMembers implements the "name ':' expr" comma-free member list inside
// 'new { ... }', building each member as a [name value] pair, accumulated
// into a flat members list (spec.md §4.2's "new {} members => [[sym value]
// ...]"). Each member's value is parsed at the "range" level, one level
// above "colon": a bare ':' inside a member value would otherwise be
// ambiguous with the name/value separator (the original parser's
// COLONMODE_MEMBERDECL restriction).
func (p *parser) parseMembers() value.Object {
	var entries []value.Object
	for p.tok == token.IDENT {
		loc := p.loc(p.val.Pos)
		name := p.val.Raw
		p.advance()
		p.expect(token.COLON)
		val := p.parseRange()
		entries = append(entries, p.list(loc, value.Symbol(symbol.Intern(name)), val))
	}
	return p.list(value.SourceLocation{}, entries...)
}

// parseDoubleHash implements "doublehash -> dot ('##' dot)*": chains values
// into a flat list with no operator wrapping.
func (p *parser) parseDoubleHash() value.Object {
	first := p.parseDot()
	if p.tok != token.HASHHASH {
		return first
	}

	loc := p.loc(p.val.Pos)
	elems := []value.Object{first}
	for p.tok == token.HASHHASH {
		p.advance()
		elems = append(elems, p.parseDot())
	}
	return p.list(loc, elems...)
}

// parseDot implements "dot -> term ('.' name)*", each access lowering to
// the [$dot lhs name] shape lang/compiler.compileDot expects directly
// (spec.md §4.2). A parenthesized argument list immediately following
// either a dotted access or the base term is accepted as a call, so
// "a.b(x)" lowers to "[[$dot a b] x]", the method-call shape
// lang/compiler.compileCall's flattenIfProperDot branch dispatches as Met.
func (p *parser) parseDot() value.Object {
	acc := p.parseTerm()
	for {
		switch p.tok {
		case token.DOT:
			loc := p.loc(p.val.Pos)
			p.advance()
			name := p.val.Raw
			p.expect(token.IDENT)
			acc = p.dotForm(loc, acc, name)
		case token.LPAREN:
			loc := p.loc(p.val.Pos)
			acc = p.parseCallArgs(loc, acc)
		default:
			return acc
		}
	}
}
