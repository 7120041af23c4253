package syntax_test

import (
	"testing"

	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/syntax"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

// fakeMatcher drives syntax.Apply over a pre-tokenized input for tests,
// standing in for the real parser: each element of toks is either a
// symbol.ID (a terminal to match) or a value.Object (a pre-parsed
// nonterminal capture, consumed by ParseNonterminal regardless of which
// class it asks for, mirroring how a real parser's production would
// eventually return some value for any of the nine reserved classes).
type fakeMatcher struct {
	toks []any
	pos  int
}

func (m *fakeMatcher) PeekTerminal() (symbol.ID, bool) {
	if m.pos >= len(m.toks) {
		return symbol.Invalid, false
	}
	sym, ok := m.toks[m.pos].(symbol.ID)
	return sym, ok
}

func (m *fakeMatcher) ConsumeTerminal() { m.pos++ }

func (m *fakeMatcher) ParseNonterminal(symbol.ID) (value.Object, bool) {
	if m.pos >= len(m.toks) {
		return nil, false
	}
	v, ok := m.toks[m.pos].(value.Object)
	if !ok {
		return nil, false
	}
	m.pos++
	return v, true
}

func TestAddRuleAndApply(t *testing.T) {
	tbl := syntax.NewTable()
	hello := symbol.Intern("hello")
	name := symbol.Intern("name")
	greet := symbol.Intern("greet")

	pattern := []syntax.PatternElem{
		{Name: hello},
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: name},
	}
	tbl, err := syntax.AddRule(tbl, greet, pattern, value.Symbol(name), []symbol.ID{name})
	require.NoError(t, err)

	cls := tbl.Class(greet)
	require.NotNil(t, cls)

	captured := value.Symbol(symbol.Intern("world"))
	m := &fakeMatcher{toks: []any{hello, captured}}
	out, ok := syntax.Apply(cls, m)
	require.True(t, ok)
	require.Equal(t, captured, out)
}

func TestApplyNoMatchLeavesInputUntouched(t *testing.T) {
	tbl := syntax.NewTable()
	hello := symbol.Intern("hello")
	greet := symbol.Intern("greet")

	tbl, err := syntax.AddRule(tbl, greet, []syntax.PatternElem{{Name: hello}}, value.Symbol(hello), nil)
	require.NoError(t, err)

	m := &fakeMatcher{toks: []any{symbol.Intern("goodbye")}}
	_, ok := syntax.Apply(tbl.Class(greet), m)
	require.False(t, ok)
	require.Equal(t, 0, m.pos)
}

func TestAddRuleAmbiguityRejected(t *testing.T) {
	tbl := syntax.NewTable()
	cls := symbol.Intern("custom")
	kw := symbol.Intern("kw")
	x := symbol.Intern("x")

	tbl, err := syntax.AddRule(tbl, cls, []syntax.PatternElem{{Name: kw}}, value.Symbol(kw), nil)
	require.NoError(t, err)

	_, err = syntax.AddRule(tbl, cls,
		[]syntax.PatternElem{{IsNonterminal: true, Name: symbol.ClassExpr, Variable: x}},
		value.Symbol(x), []symbol.ID{x})
	require.Error(t, err)
}

func TestAddRuleDuplicatePatternRejected(t *testing.T) {
	tbl := syntax.NewTable()
	cls := symbol.Intern("custom-dup")
	kw := symbol.Intern("kw")

	tbl, err := syntax.AddRule(tbl, cls, []syntax.PatternElem{{Name: kw}}, value.Symbol(kw), nil)
	require.NoError(t, err)

	_, err = syntax.AddRule(tbl, cls, []syntax.PatternElem{{Name: kw}}, value.Symbol(kw), nil)
	require.Error(t, err)
}

func TestAddRuleCycleRejected(t *testing.T) {
	tbl := syntax.NewTable()
	a := symbol.Intern("cyc-a")
	b := symbol.Intern("cyc-b")
	v := symbol.Intern("v")

	tbl, err := syntax.AddRule(tbl, a,
		[]syntax.PatternElem{{IsNonterminal: true, Name: b, Variable: v}},
		value.Symbol(v), []symbol.ID{v})
	require.NoError(t, err)

	_, err = syntax.AddRule(tbl, b,
		[]syntax.PatternElem{{IsNonterminal: true, Name: a, Variable: v}},
		value.Symbol(v), []symbol.ID{v})
	require.Error(t, err)
}

func TestAddRuleRejectsRepeatOnFirstElement(t *testing.T) {
	tbl := syntax.NewTable()
	cls := symbol.Intern("custom-first-repeat")
	x := symbol.Intern("x")

	pattern := []syntax.PatternElem{
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: x, Repeat: value.RepeatQuestion},
	}
	_, err := syntax.AddRule(tbl, cls, pattern, value.Symbol(x), []symbol.ID{x})
	require.Error(t, err)
}

func TestAddRuleReservedClassShapeRejected(t *testing.T) {
	tbl := syntax.NewTable()
	x := symbol.Intern("x")

	// _cmpexpr must start with a keyword, or a nonterminal of _addexpr
	// (spec.md §4.3); starting with _expr is neither.
	pattern := []syntax.PatternElem{
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: x},
		{Name: symbol.Intern("kw")},
	}
	_, err := syntax.AddRule(tbl, symbol.ClassCmpExpr, pattern, value.Symbol(x), []symbol.ID{x})
	require.Error(t, err)
}

func TestAddRuleStmtMustStartWithKeyword(t *testing.T) {
	tbl := syntax.NewTable()
	x := symbol.Intern("x")

	pattern := []syntax.PatternElem{
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: x},
	}
	_, err := syntax.AddRule(tbl, symbol.ClassStmt, pattern, value.Symbol(x), []symbol.ID{x})
	require.Error(t, err)
}
