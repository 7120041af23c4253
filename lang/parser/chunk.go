package parser

import (
	"github.com/mna/smile/lang/ast"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/syntax"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// parseChunk parses an entire source file into a Chunk: a flat list of
// top-level forms, each produced by parseStmt, recovering at '}', ']' or
// ')' after a parse error so one bad form doesn't abort the whole file
// (spec.md §4.2).
func (p *parser) parseChunk() *ast.Chunk {
	ch := &ast.Chunk{Start: p.preCommentPos}

	for p.tok != token.EOF {
		p.resolvePendingComments(len(ch.Forms))
		form, ok := p.parseTopLevelForm()
		if ok {
			ch.Forms = append(ch.Forms, form)
		}
	}
	p.resolvePendingComments(len(ch.Forms))
	ch.EOF = p.val.Pos
	ch.Comments = p.pendingComments
	return ch
}

// parseTopLevelForm parses one top-level form, recovering from a panic-mode
// error by resynchronizing at the next '}', ']', ')' or EOF.
func (p *parser) parseTopLevelForm() (form value.Object, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.syncAfterError()
			ok = false
		}
	}()
	return p.parseStmt(), true
}

// syncAfterError skips tokens until it finds '}', ']', ')' or EOF, consuming
// the terminator if it isn't EOF, so parsing can resume right after it
// (spec.md §4.2's panic-mode recovery points).
func (p *parser) syncAfterError() {
	for {
		switch p.tok {
		case token.EOF:
			return
		case token.RBRACE, token.RBRACK, token.RPAREN:
			p.advance()
			return
		}
		p.advance()
	}
}

// parseStmt implements "stmt -> decl | scope | custom(STMT) | assign"
// (spec.md §4.2). The custom-syntax hook mirrors the original parser's call
// to apply any user-defined _stmt rule before falling back to the built-in
// productions.
func (p *parser) parseStmt() value.Object {
	if form, ok := p.tryCustomSyntax(symbol.ClassStmt); ok {
		return form
	}

	switch p.tok {
	case token.LBRACE:
		return p.parseScope()
	case token.VAR:
		return p.parseDecl()
	default:
		return p.parseAssign()
	}
}

// tryCustomSyntax is the hook point for the user-defined custom-syntax
// engine (spec.md §4.3): at every precedence level, the built-in grammar
// only fires once no custom rule for cls matches. Looks up cls in the
// scope's current syntax table and, if any rule is registered for it,
// drives the trie walk via syntaxMatcher.
func (p *parser) tryCustomSyntax(cls symbol.ID) (value.Object, bool) {
	c := p.syntaxTable.Class(cls)
	if c == nil {
		return nil, false
	}
	return syntax.Apply(c, syntaxMatcher{p})
}

// parseScope parses "'{' stmt* '}'" into a [$progn stmt...] form. The
// syntax table is forked on entry (an O(1) refcount bump, spec.md §4.3's
// "vfork") and restored on exit, so a #syntax rule declared inside the
// scope never leaks out to a sibling scope (spec.md's worked example 3).
func (p *parser) parseScope() value.Object {
	loc := p.loc(p.val.Pos)
	p.expect(token.LBRACE)

	outer := p.syntaxTable
	p.syntaxTable = outer.Fork()

	elems := []value.Object{value.Symbol(symbol.Progn)}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		elems = append(elems, p.parseStmt())
	}
	p.expect(token.RBRACE)

	p.syntaxTable = outer
	return p.list(loc, elems...)
}

// parseDecl parses "'var' name ('=' expr)?" into a [$set name value] form,
// defaulting the value to null when no initializer is given. Scope
// resolution (local vs. global) is left entirely to the resolver package
// (lang/compiler's fcomp.locals is never populated by the compiler itself),
// so a declaration and a plain assignment lower to the exact same shape.
func (p *parser) parseDecl() value.Object {
	loc := p.loc(p.val.Pos)
	p.expect(token.VAR)

	name := p.val.Raw
	p.expect(token.IDENT)
	sym := value.Symbol(symbol.Intern(name))

	var val value.Object = value.Null
	if p.tok == token.EQ {
		p.advance()
		val = p.parseAssign()
	}
	return p.list(loc, value.Symbol(symbol.Set), sym, val)
}
