package loader_test

import (
	"bytes"
	"testing"

	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/loader"
	"github.com/mna/smile/lang/machine"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

func sym(name string) value.Symbol { return value.Symbol(symbol.Intern(name)) }

func list(elems ...value.Object) value.Object { return value.OfSlice(elems...) }

// buildTables compiles a small program exercising every table section spec.md
// §6 lists: string/object constants, a $fn nested function, a name-table
// reference (the bare "greeting" global lookup) and a top-level $set.
func buildTables(t *testing.T) *compiler.CompiledTables {
	t.Helper()

	setForm := list(sym("$set"), sym("greeting"), value.NewString("hi"))
	fnForm := list(sym("$fn"), list(sym("x")), sym("x"))
	quoted := list(sym("$quote"), list(value.NewInt64(1), value.NewInt64(2)))
	refForm := sym("greeting")

	var tables compiler.CompiledTables
	err := compiler.CompileToplevel(&tables, "t.sm",
		[]value.Object{setForm, fnForm, quoted, refForm})
	require.NoError(t, err)
	return &tables
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tables := buildTables(t)

	var buf bytes.Buffer
	require.NoError(t, loader.Save(&buf, tables))

	got, err := loader.Load(&buf)
	require.NoError(t, err)

	require.Equal(t, tables.Filename, got.Filename)
	require.Equal(t, tables.Strings, got.Strings)
	require.Equal(t, tables.Names, got.Names)
	require.Equal(t, tables.Objects, got.Objects)
	require.Equal(t, tables.TopLevelSets, got.TopLevelSets)
	require.Equal(t, tables.Toplevel.Code, got.Toplevel.Code)
	require.Same(t, got, got.Toplevel.Tables)
	require.Len(t, got.Functions, len(tables.Functions))
	for i, fn := range got.Functions {
		require.Equal(t, tables.Functions[i].Code, fn.Code)
		require.Same(t, got, fn.Tables)
	}
}

func TestLoadedTablesAreExecutable(t *testing.T) {
	tables := buildTables(t)

	var buf bytes.Buffer
	require.NoError(t, loader.Save(&buf, tables))
	got, err := loader.Load(&buf)
	require.NoError(t, err)

	m := machine.NewMachine()
	res := m.Eval_Run(got)
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, value.NewString("hi"), res.Value)
}

func TestLoadRejectsForeignData(t *testing.T) {
	_, err := loader.Load(bytes.NewReader([]byte("not a compiled unit")))
	require.Error(t, err)
}

func TestLoadRejectsTruncatedImage(t *testing.T) {
	tables := buildTables(t)
	var buf bytes.Buffer
	require.NoError(t, loader.Save(&buf, tables))

	truncated := buf.Bytes()[:buf.Len()-1]
	_, err := loader.Load(bytes.NewReader(truncated))
	require.Error(t, err)
}
