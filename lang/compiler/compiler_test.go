package compiler_test

import (
	"testing"

	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

func sym(name string) value.Symbol { return value.Symbol(symbol.Intern(name)) }

func list(elems ...value.Object) value.Object { return value.OfSlice(elems...) }

func TestCompileToplevelLiterals(t *testing.T) {
	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{value.NewString("hi")})
	require.NoError(t, err)
	require.NotNil(t, tables.Toplevel)
	require.Equal(t, []string{"hi"}, tables.Strings)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.LdStr))
	require.Contains(t, tables.Toplevel.Code, byte(compiler.Ret))
}

func TestCompileToplevelIf(t *testing.T) {
	form := list(sym("$if"), value.Bool(true), value.NewString("then"), value.NewString("else"))

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{form})
	require.NoError(t, err)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.Bf))
	require.Contains(t, tables.Toplevel.Code, byte(compiler.Jmp))
}

func TestCompileToplevelAndOr(t *testing.T) {
	andForm := list(sym("and"), value.Bool(true), value.Bool(false))
	orForm := list(sym("or"), value.Bool(true), value.Bool(false))

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{andForm, orForm})
	require.NoError(t, err)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.Dup1))
}

func TestCompileToplevelDotAndBinaryOp(t *testing.T) {
	// a + b => [[$dot a +] b]
	dot := list(sym("$dot"), sym("a"), sym("+"))
	call := list(dot, sym("b"))

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{call})
	require.NoError(t, err)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.Met1))
	require.Equal(t, []string{"a", "b", "+"}, tables.Names)
}

func TestCompileToplevelComparison(t *testing.T) {
	// [<= a b] lowers to a Met dispatch, same as $dot-based calls.
	form := list(sym("<="), sym("a"), sym("b"))

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{form})
	require.NoError(t, err)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.Met1))
}

func TestCompileToplevelSetAndGlobalRef(t *testing.T) {
	set := list(sym("$set"), sym("x"), value.NewString("v"))

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{set, sym("x")})
	require.NoError(t, err)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.StX))
	require.Contains(t, tables.Toplevel.Code, byte(compiler.LdX))
	require.Equal(t, []string{"x"}, tables.Names)
}

func TestCompileToplevelQuote(t *testing.T) {
	quoted := list(sym("a"), sym("b"))
	form := list(sym("$quote"), quoted)

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{form})
	require.NoError(t, err)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.LdObj))
	require.Len(t, tables.Objects, 1)
}

func TestCompileToplevelNew(t *testing.T) {
	// new { x: 1 } => [$new null [[x 1]]]
	members := list(list(sym("x"), value.NewInt64(1)))
	form := list(sym("$new"), value.Null, members)

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{form})
	require.NoError(t, err)
	require.Contains(t, tables.Toplevel.Code, byte(compiler.LdSym))
	require.Contains(t, tables.Toplevel.Code, byte(compiler.NewObj))
	require.Equal(t, []string{"x"}, tables.Names)
}

func TestCompileErrorArity(t *testing.T) {
	form := list(sym("and"), value.Bool(true))

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm", []value.Object{form})
	require.Error(t, err)
	var ce *compiler.CompileError
	require.ErrorAs(t, err, &ce)
}
