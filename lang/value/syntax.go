package value

import "github.com/mna/smile/lang/symbol"

// RepeatKind is a pattern-element repetition marker (spec.md §4.3's
// "repetitionKind ∈ {none,?,*,+}").
type RepeatKind byte

//nolint:revive
const (
	RepeatNone     RepeatKind = 0
	RepeatQuestion RepeatKind = '?'
	RepeatStar     RepeatKind = '*'
	RepeatPlus     RepeatKind = '+'
)

func (r RepeatKind) String() string {
	if r == RepeatNone {
		return ""
	}
	return string(rune(r))
}

// RepeatSep is the separator token allowed between repetitions of a
// nonterminal pattern element (spec.md §4.3's "repetitionSep ∈
// {none,',',';'}").
type RepeatSep byte

//nolint:revive
const (
	SepNone  RepeatSep = 0
	SepComma RepeatSep = ','
	SepSemi  RepeatSep = ';'
)

func (s RepeatSep) String() string {
	if s == SepNone {
		return ""
	}
	return string(rune(s))
}

// Nonterminal is a pattern element that refers to another syntax class
// rather than matching a literal keyword (spec.md §4.3): "[EXPR c]" in
// source becomes a Nonterminal{Class: _expr, Variable: c}. It appears both
// inside a Syntax rule's Pattern (as a value in the cons-cell pattern list)
// and, once a rule matches during parsing, nowhere else -- matches are
// substituted away into the replacement tree and never themselves reach the
// compiler.
type Nonterminal struct {
	Class    symbol.ID // the syntax class this element recurses into, e.g. _expr
	Variable symbol.ID // the name the matched subtree is bound to in Replacement
	Repeat   RepeatKind
	Sep      RepeatSep
	Loc      SourceLocation
}

func (n *Nonterminal) Kind() Kind       { return KindNonterminal }
func (n *Nonterminal) ToBool() bool     { return true }
func (n *Nonterminal) GetSourceLocation() SourceLocation { return n.Loc }

func (n *Nonterminal) ToString() string {
	s := "[" + symbol.ID(n.Class).String() + " " + symbol.ID(n.Variable).String()
	if n.Repeat != RepeatNone {
		s += n.Repeat.String()
	}
	if n.Sep != SepNone {
		s += string(rune(n.Sep))
	}
	return s + "]"
}

func (n *Nonterminal) Hash() uint64 {
	return uint64(n.Class)*31 + uint64(n.Variable)
}

func (n *Nonterminal) CompareEqual(other Object) bool {
	on, ok := other.(*Nonterminal)
	return ok && on.Class == n.Class && on.Variable == n.Variable &&
		on.Repeat == n.Repeat && on.Sep == n.Sep
}

// Syntax is a single user-declared "#syntax CLASS: [pattern] => template"
// rule (spec.md §4.3), produced by the parser once a rule's pattern and
// replacement have both been parsed and validated. Pattern is a proper list
// whose elements are either Symbol (a literal keyword the rule must match
// verbatim) or *Nonterminal (a recursive reference into another class).
// Rule storage and matching live in package lang/syntax, which treats this
// as an opaque payload; Syntax itself carries no trie state.
type Syntax struct {
	Class       symbol.ID
	Pattern     Object
	Replacement Object
	Loc         SourceLocation
}

func (s *Syntax) Kind() Kind       { return KindSyntax }
func (s *Syntax) ToBool() bool     { return true }
func (s *Syntax) ToString() string { return "Syntax(" + symbol.ID(s.Class).String() + ")" }
func (s *Syntax) Hash() uint64     { return uint64(s.Class) }
func (s *Syntax) GetSourceLocation() SourceLocation { return s.Loc }

func (s *Syntax) CompareEqual(other Object) bool {
	os, ok := other.(*Syntax)
	return ok && os == s
}

var (
	_ Equaler = (*Nonterminal)(nil)
	_ Equaler = (*Syntax)(nil)
)
