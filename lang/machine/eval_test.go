package machine_test

import (
	"testing"

	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/machine"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

// asmProgram is a small helper wrapping compiler.Asm for test readability,
// grounded on the teacher's (disabled) TestExecAsm helper pattern.
func asmProgram(t *testing.T, src string) *compiler.CompiledTables {
	t.Helper()
	ct, err := compiler.Asm([]byte(src))
	require.NoError(t, err)
	return ct
}

func TestEvalRunReturnsValue(t *testing.T) {
	ct := asmProgram(t, `
		tables:
			function: Top 1 0
				code:
					ldbool 1
					ret
	`)

	m := machine.NewMachine()
	res := m.Eval_Run(ct)
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, value.Bool(true), res.Value)
}

func TestEvalRunTopLevelSets(t *testing.T) {
	ct := asmProgram(t, `
		tables:
			names:
				greeting
			function: Top 1 0
				code:
					ldx 0
					ret
	`)
	ct.TopLevelSets = []compiler.TopLevelSet{{Target: "greeting", ValueIdx: 0}}
	ct.Objects = []interface{}{value.NewInt64(42)}

	m := machine.NewMachine()
	res := m.Eval_Run(ct)
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, value.NewInt64(42), res.Value)
}

func TestEvalRunNewObj(t *testing.T) {
	// new { x: 42 } then read back .x, exercising compiler.NewObj end to end.
	ct := asmProgram(t, `
		tables:
			names:
				x
			function: Top 3 0
				code:
					ldnull
					ldsym 0
					ld64 0
					newobj 1
					ldprop 0
					ret
	`)
	ct.Objects = []interface{}{int64(42)}

	m := machine.NewMachine()
	res := m.Eval_Run(ct)
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, value.NewInt64(42), res.Value)
}

func TestEvalRunFallsThroughToPredeclared(t *testing.T) {
	ct := asmProgram(t, `
		tables:
			names:
				unset
			function: Top 1 0
				code:
					ldx 0
					ret
	`)

	m := machine.NewMachine()
	id := symbol.Intern("unset")
	require.NoError(t, m.Predeclared.SetProperty(uint32(id), "unset", value.NewInt64(7)))
	res := m.Eval_Run(ct)
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, value.NewInt64(7), res.Value)
}

func TestEvalRunUncaughtExceptionFromBadArity(t *testing.T) {
	// Call a native that requires exactly one argument with zero arguments on
	// the stack: the resulting native_method_error surfaces as a
	// ResultException rather than a Go panic escaping Eval_Run (spec.md
	// §4.1's exception model).
	native := &machine.NativeFunction{
		NameStr: "need_one",
		MinArgs: 1,
		MaxArgs: 1,
		Body: func(m *machine.Machine, args []value.Object) (value.Object, error) {
			return args[0], nil
		},
	}

	fnInfo := &compiler.UserFunctionInfo{
		Name:     "Top",
		MaxStack: 2,
	}
	fnInfo.Tables = &compiler.CompiledTables{Toplevel: fnInfo, Objects: []interface{}{native}}
	fnInfo.Code = []byte{byte(compiler.LdObj), 0, byte(compiler.Call0), byte(compiler.Ret)}

	info := machine.NewClosureInfo(fnInfo, nil, machine.KindGlobal)
	fn := machine.NewFunction(info, nil)

	m := machine.NewMachine()
	res := m.EvalFunction(fn, nil)
	require.Equal(t, machine.ResultException, res.Kind)
	require.NotNil(t, res.Exception)
}

func TestEvalContinueResumesAfterBrk(t *testing.T) {
	ct := asmProgram(t, `
		tables:
			function: Top 1 0
				code:
					ldbool 1
					brk
					ret
	`)

	m := machine.NewMachine()
	res := m.Eval_Run(ct)
	require.Equal(t, machine.ResultBreak, res.Kind)

	res = m.Eval_Continue()
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, value.Bool(true), res.Value)
}
