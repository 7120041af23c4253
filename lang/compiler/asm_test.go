package compiler_test

import (
	"testing"

	"github.com/mna/smile/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestAsm(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		err  string // error "contains" this err string, no error if empty
	}{
		{"empty", ``, "expected tables section"},
		{"not tables", `function:`, "expected tables section"},
		{"tables only", `tables:`, "missing top-level function"},

		{"invalid function", `
				tables:
					function: MissingNumArgs
						code:
			`, "invalid function: want at least 4 fields"},

		{"minimally valid", `
				tables:
					function: Top 0 0
						code:
			`, ""},

		{"missing code", `
				tables:
					function: Top 0 0
			`, "expected code section"},

		{"missing code followed by function", `
				tables:
					function: Top 0 0
					function: Top 0 0
						code:
			`, "expected code section"},

		{"extra unknown section", `
				tables:
					function: Top 0 0
						code:
				bogus:
				`, "unexpected section: bogus:"},

		{"invalid opcode", `
				tables:
					function: Top 0 0
						code:
							foobar
				`, "invalid opcode: foobar"},

		{"missing opcode arg", `
				tables:
					function: Top 0 0
						code:
							jmp
				`, "expected an argument for opcode jmp"},

		{"extra opcode arg", `
				tables:
					function: Top 0 0
						code:
							jmp 1 2
				`, "expected an argument for opcode jmp, got 3 fields"},

		{"unexpected opcode arg", `
				tables:
					function: Top 0 0
						code:
							nop 1
				`, "expected no argument for opcode nop"},

		{"invalid jump address", `
				tables:
					function: Top 0 0
						code:
							nop
							jmp 2
				`, "invalid jump index 2"},

		{"invalid constant number of fields", `
				tables:
					constants:
						123
				`, "invalid constant: expected type and value"},

		{"invalid constant type", `
				tables:
					constants:
						foo 123
				`, "invalid constant type"},

		{"invalid integer constant", `
				tables:
					constants:
						int abc
				`, "invalid integer"},

		{"invalid float constant", `
				tables:
					constants:
						float abc
				`, "invalid float"},

		{"invalid string constant", `
				tables:
					constants:
						string "a'
				`, "invalid string"},

		{"maximally valid", `
				tables:
					names:
						name
						age
					strings:
						"greeting"
					constants:
						string "abc"
						int 1234
						float 3.1415

					function: Top 1 0 +variadic
						locals:
							z
						code:
							nop

					function: Nested 2 1
						args:
							x
						locals:
							y
						freevars:
							z
						code:
							ldbool 1
							dup1
							ldbool 0
							nop
							jmp 1

					function: Discarding 2 1 +discard
						args:
							x
						code:
							ldbool 1
							dup1
							ldbool 0
							nop
							jmp 1
			`, ""},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := compiler.Asm([]byte(c.in))
			if c.err == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, c.err)
		})
	}
}

func TestDasm(t *testing.T) {
	cases := []struct {
		desc string
		ct   compiler.CompiledTables
		err  string // error "contains" this err string, no error if empty
	}{
		{"empty", compiler.CompiledTables{}, "missing top-level function"},

		{"invalid constant type", compiler.CompiledTables{
			Toplevel: &compiler.UserFunctionInfo{},
			Objects:  []interface{}{true},
		}, "unsupported constant type: bool"},

		{"invalid opcode argument", compiler.CompiledTables{
			Toplevel: &compiler.UserFunctionInfo{
				Code: []byte{byte(compiler.Jmp), '\xff', '\xff', '\xff', '\xff', '\xff', '\x00'},
			},
		}, "invalid uvarint argument"},

		{"invalid jump", compiler.CompiledTables{
			Toplevel: &compiler.UserFunctionInfo{
				Code: []byte{byte(compiler.Jmp), '\x02', '\x00', '\x00', '\x00', byte(compiler.Nop)},
			},
		}, "invalid jump address"},

		{"valid code", compiler.CompiledTables{
			Toplevel: &compiler.UserFunctionInfo{
				Code: []byte{byte(compiler.Nop), byte(compiler.Jmp), '\x06', '\x00', '\x00', '\x00', byte(compiler.Nop)},
			},
		}, ""},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			ct := c.ct
			_, err := compiler.Dasm(&ct)
			if c.err == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, c.err)
		})
	}
}

func TestAsmDasmRoundtrip(t *testing.T) {
	const src = `tables:
	names:
		foo
	constants:
		int 42

function: Top 2 0
	locals:
		x
	code:
		ld64 0
		stloc 0
		ldloc0
		ret
`
	ct, err := compiler.Asm([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, ct.Toplevel)
	require.Equal(t, []string{"foo"}, ct.Names)

	out, err := compiler.Dasm(ct)
	require.NoError(t, err)

	ct2, err := compiler.Asm(out)
	require.NoError(t, err)
	require.Equal(t, ct.Toplevel.Code, ct2.Toplevel.Code)
}
