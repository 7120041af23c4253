package machine_test

import (
	"testing"

	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/machine"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

// runTop builds a minimal top-level function from raw bytecode plus an
// objects table and runs it to completion, requiring a plain value result.
func runTop(t *testing.T, maxStack int, code []byte, objects []interface{}) value.Object {
	t.Helper()
	fnInfo := &compiler.UserFunctionInfo{Name: "Top", MaxStack: maxStack, Code: code}
	fnInfo.Tables = &compiler.CompiledTables{Toplevel: fnInfo, Objects: objects}

	info := machine.NewClosureInfo(fnInfo, nil, machine.KindGlobal)
	fn := machine.NewFunction(info, nil)

	m := machine.NewMachine()
	res := m.EvalFunction(fn, nil)
	require.Equal(t, machine.ResultValue, res.Kind)
	return res.Value
}

func TestMetArithmeticDispatch(t *testing.T) {
	// [3 + 4] lowers to [[$dot 3 +] 4], i.e. push 3, push 4, met1 "+".
	cases := []struct {
		name string
		op   string
		a, b int64
		want int64
	}{
		{"add", "+", 3, 4, 7},
		{"sub", "-", 10, 3, 7},
		{"mul", "*", 6, 7, 42},
		{"div", "/", 20, 4, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			objects := []interface{}{value.NewInt64(c.a), value.NewInt64(c.b)}
			code := []byte{
				byte(compiler.LdObj), 0,
				byte(compiler.LdObj), 1,
				byte(compiler.Met1), 2, // names[2] resolved below
				byte(compiler.Ret),
			}
			fnInfo := &compiler.UserFunctionInfo{Name: "Top", MaxStack: 2, Code: code}
			fnInfo.Tables = &compiler.CompiledTables{
				Toplevel: fnInfo,
				Objects:  objects,
				Names:    []string{"", "", c.op},
			}
			info := machine.NewClosureInfo(fnInfo, nil, machine.KindGlobal)
			fn := machine.NewFunction(info, nil)

			m := machine.NewMachine()
			res := m.EvalFunction(fn, nil)
			require.Equal(t, machine.ResultValue, res.Kind)
			got, ok := res.Value.(value.Int64)
			require.True(t, ok, "expected an Int64, got %T", res.Value)
			require.Equal(t, c.want, got.Signed())
		})
	}
}

func TestMetComparisonDispatch(t *testing.T) {
	objects := []interface{}{value.NewInt64(3), value.NewInt64(4)}
	code := []byte{
		byte(compiler.LdObj), 0,
		byte(compiler.LdObj), 1,
		byte(compiler.Met1), 0,
		byte(compiler.Ret),
	}
	fnInfo := &compiler.UserFunctionInfo{Name: "Top", MaxStack: 2, Code: code}
	fnInfo.Tables = &compiler.CompiledTables{
		Toplevel: fnInfo,
		Objects:  objects,
		Names:    []string{"<"},
	}
	info := machine.NewClosureInfo(fnInfo, nil, machine.KindGlobal)
	fn := machine.NewFunction(info, nil)

	m := machine.NewMachine()
	res := m.EvalFunction(fn, nil)
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, value.Bool(true), res.Value)
}

func TestListEachCountsElements(t *testing.T) {
	list := value.OfSlice(value.NewInt64(1), value.NewInt64(2), value.NewInt64(3))

	var seen []int64
	counter := &machine.NativeFunction{
		NameStr: "counter",
		MinArgs: 2,
		MaxArgs: 2,
		Body: func(m *machine.Machine, args []value.Object) (value.Object, error) {
			seen = append(seen, args[1].(value.Int64).Signed())
			return value.Bool(true), nil
		},
	}

	code := []byte{
		byte(compiler.LdObj), 0,
		byte(compiler.LdObj), 1,
		byte(compiler.Met1), 0,
		byte(compiler.Ret),
	}
	fnInfo := &compiler.UserFunctionInfo{Name: "Top", MaxStack: 2, Code: code}
	fnInfo.Tables = &compiler.CompiledTables{
		Toplevel: fnInfo,
		Objects:  []interface{}{list, counter},
		Names:    []string{"each"},
	}
	info := machine.NewClosureInfo(fnInfo, nil, machine.KindGlobal)
	fn := machine.NewFunction(info, nil)

	m := machine.NewMachine()
	res := m.EvalFunction(fn, nil)
	require.Equal(t, machine.ResultValue, res.Kind)
	require.Equal(t, []int64{1, 2, 3}, seen)
}

func TestByteArrayMapDoublesEachByte(t *testing.T) {
	ba := value.NewByteArray([]byte{1, 2, 3})

	doubler := &machine.NativeFunction{
		NameStr: "doubler",
		MinArgs: 1,
		MaxArgs: 1,
		Body: func(m *machine.Machine, args []value.Object) (value.Object, error) {
			b := args[0].(value.Byte)
			return value.NewByte(b.V * 2), nil
		},
	}

	code := []byte{
		byte(compiler.LdObj), 0,
		byte(compiler.LdObj), 1,
		byte(compiler.Met1), 0,
		byte(compiler.Ret),
	}
	fnInfo := &compiler.UserFunctionInfo{Name: "Top", MaxStack: 2, Code: code}
	fnInfo.Tables = &compiler.CompiledTables{
		Toplevel: fnInfo,
		Objects:  []interface{}{ba, doubler},
		Names:    []string{"map"},
	}
	info := machine.NewClosureInfo(fnInfo, nil, machine.KindGlobal)
	fn := machine.NewFunction(info, nil)

	m := machine.NewMachine()
	res := m.EvalFunction(fn, nil)
	require.Equal(t, machine.ResultValue, res.Kind)
	out, ok := res.Value.(*value.ByteArray)
	require.True(t, ok)
	require.Equal(t, 3, out.Len())
	for i, want := range []byte{2, 4, 6} {
		got, err := out.Get(i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestCarCdrIntrinsics(t *testing.T) {
	list := value.OfSlice(value.NewInt64(1), value.NewInt64(2))
	code := []byte{
		byte(compiler.LdObj), 0,
		byte(compiler.Dup1),
		byte(compiler.Car),
		byte(compiler.Pop1),
		byte(compiler.Cdr),
		byte(compiler.Car),
		byte(compiler.Ret),
	}
	v := runTop(t, 2, code, []interface{}{list})
	got, ok := v.(value.Int64)
	require.True(t, ok)
	require.Equal(t, int64(2), got.Signed())
}

func TestIsOnTwoStringsDoesNotPanic(t *testing.T) {
	// value.String wraps a byte slice and so isn't Go-comparable: Is must
	// not fall back to a raw == on two String operands.
	code := []byte{
		byte(compiler.LdObj), 0,
		byte(compiler.LdObj), 1,
		byte(compiler.Is),
		byte(compiler.Ret),
	}
	v := runTop(t, 2, code, []interface{}{value.NewString("abc"), value.NewString("abc")})
	require.Equal(t, value.Bool(true), v)
}

func TestFatalErrorOnIllegalOpcode(t *testing.T) {
	code := []byte{0xff}
	fnInfo := &compiler.UserFunctionInfo{Name: "Top", MaxStack: 1, Code: code}
	fnInfo.Tables = &compiler.CompiledTables{Toplevel: fnInfo}
	info := machine.NewClosureInfo(fnInfo, nil, machine.KindGlobal)
	fn := machine.NewFunction(info, nil)

	m := machine.NewMachine()
	require.Panics(t, func() {
		m.EvalFunction(fn, nil)
	})
}
