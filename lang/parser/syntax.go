package parser

import (
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/syntax"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// syntaxMatcher adapts *parser to package lang/syntax's Matcher interface
// so the trie walk in syntax.Apply never has to import package parser
// itself.
type syntaxMatcher struct{ p *parser }

// PeekTerminal reports the symbol a #syntax pattern's terminal element
// would match against the current token: an identifier's own spelling, or
// a keyword/fixed-punctuation token's canonical spelling. Tokens that can
// never spell a pattern terminal (literals, EOF, illegal bytes) report no
// match.
func (m syntaxMatcher) PeekTerminal() (symbol.ID, bool) {
	switch m.p.tok {
	case token.IDENT:
		return symbol.Intern(m.p.val.Raw), true
	case token.EOF, token.INT, token.FLOAT, token.STRING, token.CHAR, token.COMMENT, token.ILLEGAL:
		return symbol.Invalid, false
	default:
		return symbol.Intern(m.p.tok.String()), true
	}
}

func (m syntaxMatcher) ConsumeTerminal() { m.p.advance() }

// ParseNonterminal parses one instance of cls at the current token, using
// a single-token lookahead (canStartNonterminal) in place of the original
// interpreter's fuller backtracking to decide whether cls can even start
// here -- a deliberate simplification, documented in DESIGN.md, that is
// sufficient because the syntax table's own ambiguity checks already rule
// out the cases where that distinction would matter.
func (m syntaxMatcher) ParseNonterminal(cls symbol.ID) (value.Object, bool) {
	if !m.p.canStartNonterminal(cls) {
		return nil, false
	}
	return m.p.parseByClass(cls), true
}

// canStartNonterminal reports whether the current token could possibly
// begin cls, used to end a repeating ('*'/'+') nonterminal pattern element
// or fall back from an optional ('?') one. Every reserved class's built-in
// production accepts a wide token set, so only the tokens that can never
// start any expression are excluded.
func (p *parser) canStartNonterminal(cls symbol.ID) bool {
	switch p.tok {
	case token.EOF, token.RBRACE, token.RBRACK, token.RPAREN, token.COMMA, token.SEMI, token.IMPLIES:
		return false
	}
	return true
}

// parseByClass parses one instance of the built-in production backing cls,
// mapping each of the nine reserved syntax classes onto this parser's
// precedence-climbing ladder (spec.md §4.3's reserved classes); a custom
// (non-reserved) class has no dedicated production of its own and falls
// back to the general expression level.
func (p *parser) parseByClass(cls symbol.ID) value.Object {
	switch cls {
	case symbol.ClassStmt:
		return p.parseStmt()
	case symbol.ClassExpr:
		return p.parseAssign()
	case symbol.ClassCmpExpr:
		return p.parseCmp()
	case symbol.ClassAddExpr:
		return p.parseAdd()
	case symbol.ClassMulExpr:
		return p.parseMul()
	case symbol.ClassBinary:
		return p.parseBinary()
	case symbol.ClassUnary:
		return p.parseUnary()
	case symbol.ClassPostfix:
		return p.parseDot()
	case symbol.ClassTerm:
		return p.parseTerm()
	default:
		return p.parseAssign()
	}
}

// reservedClassSurfaceNames maps a #syntax directive's class-name spelling
// to its interned reserved-class symbol (spec.md §4.3's worked example
// spells "STMT", stored internally as "_stmt"). Any other spelling names a
// user-defined custom class, interned directly.
var reservedClassSurfaceNames = map[string]symbol.ID{
	"STMT":    symbol.ClassStmt,
	"EXPR":    symbol.ClassExpr,
	"CMPEXPR": symbol.ClassCmpExpr,
	"ADDEXPR": symbol.ClassAddExpr,
	"MULEXPR": symbol.ClassMulExpr,
	"BINARY":  symbol.ClassBinary,
	"UNARY":   symbol.ClassUnary,
	"POSTFIX": symbol.ClassPostfix,
	"TERM":    symbol.ClassTerm,
}

func classSymbolFor(name string) symbol.ID {
	if id, ok := reservedClassSurfaceNames[name]; ok {
		return id
	}
	return symbol.Intern(name)
}

// parseSyntaxDecl parses "'#' 'syntax' name ':' '[' pattern-elem* ']' '=>'
// replacement" (spec.md §4.3), installing the parsed rule into the current
// scope's syntax table and returning the resulting *value.Syntax as an
// ordinary parsed term -- mirroring the original interpreter's
// Parser_ParseSyntax, which hands back the finished SmileSyntax object as
// the directive's own parse result rather than consuming it as a dedicated
// statement form. lang/compiler.compileExpr's generic literal fallback
// compiles the returned object as an opaque constant, so no compiler
// change is needed to support it.
func (p *parser) parseSyntaxDecl() value.Object {
	pos := p.val.Pos
	loc := p.loc(pos)
	p.expect(token.SYNTAX)

	clsName := p.val.Raw
	p.expect(token.IDENT)
	cls := classSymbolFor(clsName)

	p.expect(token.COLON)
	p.expect(token.LBRACK)

	var elems []syntax.PatternElem
	var patternVals []value.Object
	var replacementVars []symbol.ID
	for p.tok != token.RBRACK && p.tok != token.EOF {
		elem, val := p.parseSyntaxPatternElem()
		elems = append(elems, elem)
		patternVals = append(patternVals, val)
		if elem.IsNonterminal {
			replacementVars = append(replacementVars, elem.Variable)
		}
	}
	p.expect(token.RBRACK)
	p.expect(token.IMPLIES)

	replacement := p.parseSyntaxReplacement()
	if !syntax.VerifyTemplate(replacement) {
		p.errorf(pos, "syntax: replacement for class %q uses a form that cannot be evaluated at parse time", clsName)
		panic(errPanicMode)
	}

	nt, err := syntax.AddRule(p.syntaxTable, cls, elems, replacement, replacementVars)
	if err != nil {
		p.errorf(pos, "%v", err)
		panic(errPanicMode)
	}
	p.syntaxTable = nt

	return &value.Syntax{Class: cls, Pattern: p.list(loc, patternVals...), Replacement: replacement, Loc: loc}
}

// parseSyntaxPatternElem parses one element of a #syntax rule's pattern:
// either a bracketed nonterminal reference or a literal terminal keyword.
func (p *parser) parseSyntaxPatternElem() (syntax.PatternElem, value.Object) {
	if p.tok == token.LBRACK {
		return p.parseSyntaxNonterminal()
	}
	return p.parseSyntaxTerminal()
}

// parseSyntaxTerminal consumes one literal-keyword pattern element.
func (p *parser) parseSyntaxTerminal() (syntax.PatternElem, value.Object) {
	name := p.terminalSpelling()
	sym := symbol.Intern(name)
	p.advance()
	return syntax.PatternElem{Name: sym}, value.Symbol(sym)
}

// terminalSpelling returns the literal keyword text the current token
// spells, for use as a #syntax pattern's terminal element, or reports a
// parse error and panics if the current token can't be one (spec.md
// §4.3's patterns are built only from plain identifiers and a handful of
// separator/grouping punctuation -- nested parenthesized sub-patterns are
// not supported, a documented simplification from the original grammar).
func (p *parser) terminalSpelling() string {
	switch p.tok {
	case token.IDENT:
		return p.val.Raw
	case token.COMMA, token.SEMI, token.COLON,
		token.AND, token.OR, token.NOT, token.IS, token.NEW,
		token.NULLKW, token.TRUEKW, token.FALSEKW, token.VAR:
		return p.tok.String()
	default:
		p.errorExpected(p.val.Pos, "syntax pattern terminal")
		panic(errPanicMode)
	}
}

// parseSyntaxNonterminal parses "'[' name ('?'|'*'|'+')? varname (','|';')?
// ']'" (spec.md §4.3's nonterminal pattern element), e.g. "[EXPR c]" or
// "[STMT* s,]".
func (p *parser) parseSyntaxNonterminal() (syntax.PatternElem, value.Object) {
	loc := p.loc(p.val.Pos)
	p.expect(token.LBRACK)

	clsName := p.val.Raw
	p.expect(token.IDENT)
	cls := classSymbolFor(clsName)

	repeat := value.RepeatNone
	switch p.tok {
	case token.QUESTION:
		repeat = value.RepeatQuestion
		p.advance()
	case token.STAR:
		repeat = value.RepeatStar
		p.advance()
	case token.PLUS:
		repeat = value.RepeatPlus
		p.advance()
	}

	varName := p.val.Raw
	p.expect(token.IDENT)
	variable := symbol.Intern(varName)

	sep := value.SepNone
	switch p.tok {
	case token.COMMA:
		sep = value.SepComma
		p.advance()
	case token.SEMI:
		sep = value.SepSemi
		p.advance()
	}
	if sep != value.SepNone && repeat == value.RepeatNone {
		p.errorf(p.val.Pos, "syntax: a separator requires repetition ('*' or '+') on %q", clsName)
		panic(errPanicMode)
	}

	p.expect(token.RBRACK)

	elem := syntax.PatternElem{IsNonterminal: true, Name: cls, Variable: variable, Repeat: repeat, Sep: sep}
	val := &value.Nonterminal{Class: cls, Variable: variable, Repeat: repeat, Sep: sep, Loc: loc}
	return elem, val
}

// parseSyntaxReplacement parses the template following a #syntax rule's
// '=>': the same bracketed raw-list notation parseRawList builds for any
// other "[...]" literal, or (rarely) a single bare constant/symbol.
// VerifyTemplate rejects anything richer than spec.md §4.3's evaluable-at-
// parse-time subset once this returns.
func (p *parser) parseSyntaxReplacement() value.Object {
	if p.tok == token.LBRACK {
		return p.parseRawList()
	}
	return p.parseTerm()
}
