package parser

import (
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// parseTerm implements the base of the precedence ladder: literals, a
// parenthesized expression, a bracketed raw-list literal, and a bare
// identifier optionally followed by a parenthesized call-argument list (the
// natural postfix-call supplement spec.md §4.2's "term -> ... | ..."
// ellipsis invites, grounded on the generic "[Callee Arg...]" application
// shape lang/compiler.compileCall already supports).
func (p *parser) parseTerm() value.Object {
	if form, ok := p.tryCustomSyntax(symbol.ClassTerm); ok {
		return form
	}

	switch p.tok {
	case token.INT:
		v := value.NewInt64(p.val.Int)
		p.advance()
		return v

	case token.FLOAT:
		v := value.Float64(p.val.Float)
		p.advance()
		return v

	case token.STRING:
		v := value.NewString(p.val.String)
		p.advance()
		return v

	case token.TRUEKW:
		p.advance()
		return value.True

	case token.FALSEKW:
		p.advance()
		return value.False

	case token.NULLKW:
		p.advance()
		return value.Null

	case token.HASH:
		p.advance()
		if p.tok == token.SYNTAX {
			return p.parseSyntaxDecl()
		}
		name := p.val.Raw
		p.expect(token.IDENT)
		return value.Symbol(symbol.Intern(name))

	case token.LPAREN:
		p.advance()
		expr := p.parseAssign()
		p.expect(token.RPAREN)
		return expr

	case token.LBRACK:
		return p.parseRawList()

	case token.IDENT:
		name := p.val.Raw
		p.advance()
		return value.Symbol(symbol.Intern(name))

	default:
		p.errorExpected(p.val.Pos, "expression")
		panic(errPanicMode)
	}
}

// parseCallArgs parses "'(' (assign (',' assign)*)? ')'" and builds the
// generic application form [callee arg...].
func (p *parser) parseCallArgs(loc value.SourceLocation, callee value.Object) value.Object {
	p.expect(token.LPAREN)
	elems := []value.Object{callee}
	if p.tok != token.RPAREN {
		elems = append(elems, p.parseAssign())
		for p.tok == token.COMMA {
			p.advance()
			elems = append(elems, p.parseAssign())
		}
	}
	p.expect(token.RPAREN)
	return p.list(loc, elems...)
}

// parseRawList implements "'[' raw-list ']'", Smile's literal tree-data
// syntax: a space-separated run of elements built into a plain list value,
// the same bracket notation spec.md §4.2 itself uses to describe tree
// shapes (e.g. "[and a b]"). Each element is parsed at the colon level,
// below keyword messaging, so "[a b c]" is three elements rather than the
// message a.b(c).
func (p *parser) parseRawList() value.Object {
	loc := p.loc(p.val.Pos)
	p.expect(token.LBRACK)

	var elems []value.Object
	for p.tok != token.RBRACK && p.tok != token.EOF {
		elems = append(elems, p.parseColon())
	}
	p.expect(token.RBRACK)
	return p.list(loc, elems...)
}
