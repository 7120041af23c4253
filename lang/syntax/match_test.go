package syntax_test

import (
	"testing"

	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/syntax"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

func TestApplyRepeatStarWithSeparator(t *testing.T) {
	tbl := syntax.NewTable()
	kw := symbol.Intern("list-of")
	items := symbol.Intern("items")
	cls := symbol.Intern("custom-repeat")

	pattern := []syntax.PatternElem{
		{Name: kw},
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: items, Repeat: value.RepeatStar, Sep: value.SepComma},
	}
	tbl, err := syntax.AddRule(tbl, cls, pattern, value.Symbol(items), []symbol.ID{items})
	require.NoError(t, err)

	comma := symbol.Intern(",")
	a := value.Symbol(symbol.Intern("a"))
	b := value.Symbol(symbol.Intern("b"))
	c := value.Symbol(symbol.Intern("c"))
	m := &fakeMatcher{toks: []any{kw, a, comma, b, comma, c}}

	out, ok := syntax.Apply(tbl.Class(cls), m)
	require.True(t, ok)

	list, ok := out.(*value.List)
	require.True(t, ok, "expected *value.List, got %T", out)
	var got []value.Object
	value.ToSlice(list, &got)
	require.Equal(t, []value.Object{a, b, c}, got)
}

func TestApplyRepeatPlusRequiresOne(t *testing.T) {
	tbl := syntax.NewTable()
	kw := symbol.Intern("needs-one")
	items := symbol.Intern("items")
	cls := symbol.Intern("custom-plus")

	pattern := []syntax.PatternElem{
		{Name: kw},
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: items, Repeat: value.RepeatPlus},
	}
	tbl, err := syntax.AddRule(tbl, cls, pattern, value.Symbol(items), []symbol.ID{items})
	require.NoError(t, err)

	m := &fakeMatcher{toks: []any{kw}}
	_, ok := syntax.Apply(tbl.Class(cls), m)
	require.False(t, ok)
}

func TestApplyRepeatQuestionFallsBackToNull(t *testing.T) {
	tbl := syntax.NewTable()
	kw := symbol.Intern("maybe")
	opt := symbol.Intern("opt")
	cls := symbol.Intern("custom-question")

	pattern := []syntax.PatternElem{
		{Name: kw},
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: opt, Repeat: value.RepeatQuestion},
	}
	tbl, err := syntax.AddRule(tbl, cls, pattern, value.Symbol(opt), []symbol.ID{opt})
	require.NoError(t, err)

	m := &fakeMatcher{toks: []any{kw}}
	out, ok := syntax.Apply(tbl.Class(cls), m)
	require.True(t, ok)
	require.True(t, value.IsNull(out))
}

func TestVerifyTemplateAcceptsPlainListLiteral(t *testing.T) {
	// the spec's own worked example: "[$if c t e]".
	tmpl := value.OfSlice(value.Symbol(symbol.If), value.Symbol(symbol.Intern("c")),
		value.Symbol(symbol.Intern("t")), value.Symbol(symbol.Intern("e")))
	require.True(t, syntax.VerifyTemplate(tmpl))
}

func TestVerifyTemplateAcceptsQuoteAndListOps(t *testing.T) {
	c := value.Symbol(symbol.Intern("c"))
	require.True(t, syntax.VerifyTemplate(value.OfSlice(value.Symbol(symbol.Quote), c)))

	listCons := value.OfSlice(
		value.OfSlice(value.Symbol(symbol.Dot), value.Symbol(symbol.Intern("List")), value.Symbol(symbol.Intern("cons"))),
		c, c,
	)
	require.True(t, syntax.VerifyTemplate(listCons))
}

func TestVerifyTemplateRejectsEmbeddedCall(t *testing.T) {
	dotCall := value.OfSlice(value.Symbol(symbol.Dot), value.Symbol(symbol.Intern("a")), value.Symbol(symbol.Intern("b")))
	callForm := value.OfSlice(dotCall, value.Symbol(symbol.Intern("arg")))
	require.False(t, syntax.VerifyTemplate(callForm))
}

func TestSubstituteListCons(t *testing.T) {
	head := value.Symbol(symbol.Intern("h"))
	tail := value.OfSlice(value.Symbol(symbol.Intern("t1")), value.Symbol(symbol.Intern("t2")))

	tbl := syntax.NewTable()
	kw := symbol.Intern("build")
	hVar := symbol.Intern("h")
	tVar := symbol.Intern("t")
	cls := symbol.Intern("custom-cons")

	replacement := value.OfSlice(
		value.OfSlice(value.Symbol(symbol.Dot), value.Symbol(symbol.Intern("List")), value.Symbol(symbol.Intern("cons"))),
		value.Symbol(hVar), value.Symbol(tVar),
	)
	require.True(t, syntax.VerifyTemplate(replacement))

	pattern := []syntax.PatternElem{
		{Name: kw},
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: hVar},
		{IsNonterminal: true, Name: symbol.ClassExpr, Variable: tVar},
	}
	tbl, err := syntax.AddRule(tbl, cls, pattern, replacement, []symbol.ID{hVar, tVar})
	require.NoError(t, err)

	m := &fakeMatcher{toks: []any{kw, head, tail}}
	out, ok := syntax.Apply(tbl.Class(cls), m)
	require.True(t, ok)

	var got []value.Object
	value.ToSlice(out.(*value.List), &got)
	require.Equal(t, []value.Object{head, value.Symbol(symbol.Intern("t1")), value.Symbol(symbol.Intern("t2"))}, got)
}
