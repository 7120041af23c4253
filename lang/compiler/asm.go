package compiler

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// This file implements a human-readable/writable form of a compiled unit.
// This is mostly to support testing of the VM without going through the
// parsing phase: tests can write out the expected tree shape directly as
// assembly. A disassembler is also implemented, grounded on the teacher's
// lang/compiler/asm.go, trimmed of the defer/catch block sections Smile has
// no equivalent of.
//
// The assembly format looks like this (indentation and spacing is
// arbitrary, but order of sections is important):
//
// 	tables:                              # required
// 		names:                             # optional, list of Names (symbol spellings)
// 			fail
// 		strings:                           # optional, list of interned strings
// 			"abc"
// 		constants:                         # optional, list of Constants
// 			int    1234
// 			float  1.34
//
// 	function: NAME <stack> <args> [+discard|+variadic]
//                                       # required at least once for top-level
//  	args:                              # optional, list of Args
// 			x
//  	locals:                            # optional, list of Locals
// 			y
// 		freevars:                          # optional, list of Freevars
// 			z
// 		code:                              # required, list of instructions
//			NOP
// 			JMP 3                            # jump argument refers to index in code section (will be translated to pc address)
// 			CALL 2

var sections = map[string]bool{
	"tables:":    true,
	"names:":     true,
	"strings:":   true,
	"constants:": true,
	"function:":  true,
	"args:":      true,
	"locals:":    true,
	"freevars:":  true,
	"code:":      true,
}

// Asm loads a compiled unit from its assembler textual format.
func Asm(b []byte) (*CompiledTables, error) {
	asm := asm{s: bufio.NewScanner(bytes.NewReader(b))}

	fields := asm.next()
	asm.tables(fields)

	fields = asm.next()
	fields = asm.names(fields)
	fields = asm.strings(fields)
	fields = asm.constants(fields)

	for asm.err == nil && len(fields) > 0 && fields[0] == "function:" {
		fields = asm.function(fields)
	}

	if asm.err == nil {
		if len(fields) > 0 {
			asm.err = fmt.Errorf("unexpected section: %s", fields[0])
		} else if asm.ct.Toplevel == nil {
			asm.err = errors.New("missing top-level function")
		}
	}
	return asm.ct, asm.err
}

type asm struct {
	s       *bufio.Scanner
	rawLine string
	ct      *CompiledTables
	fn      *UserFunctionInfo // current function
	err     error
}

func (a *asm) function(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "function:") {
		return fields
	}

	if len(fields) < 4 {
		a.err = fmt.Errorf("invalid function: want at least 4 fields: 'function: NAME <stack> <args> [+discard|+variadic]', got %d fields (%s)", len(fields), strings.Join(fields, " "))
		fields = a.next()
		return fields
	}
	fn := UserFunctionInfo{
		Tables:   a.ct,
		Name:     fields[1],
		MaxStack: int(a.int(fields[2])),
	}
	switch {
	case a.option(fields[4:], "discard"):
		fn.ArgPolicy = ArgDiscard
	case a.option(fields[4:], "variadic"):
		fn.ArgPolicy = ArgVariadic
	default:
		fn.ArgPolicy = ArgExact
	}
	a.fn = &fn

	fields = a.next()
	fields = a.args(fields)
	fields = a.locals(fields)
	fields = a.freevars(fields)
	fields, _ = a.code(fields)

	a.fn = nil
	if a.ct.Toplevel == nil {
		a.ct.Toplevel = &fn
	} else {
		a.ct.AddFunction(&fn)
	}
	return fields
}

// parses the code section and translates jump-target indices (into the
// instruction list) to byte addresses, returning the next fields to parse
// plus the instruction-index-to-address mapping.
func (a *asm) code(fields []string) ([]string, []int) {
	var indexToAddr []int
	if a.err != nil {
		return fields, indexToAddr
	}
	if len(fields) == 0 || !strings.EqualFold(fields[0], "code:") {
		msg := "expected code section"
		if len(fields) > 0 {
			msg += ", found " + fields[0]
		}
		a.err = errors.New(msg)
		return fields, indexToAddr
	}

	var insns []insn
	var addr int
	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		op, ok := reverseLookupOpcode[strings.ToLower(fields[0])]
		if !ok {
			a.err = fmt.Errorf("invalid opcode: %s", fields[0])
			return fields, indexToAddr
		}

		var arg uint32
		var metArgc uint32
		switch {
		case IsVariadicMet(op):
			if len(fields) != 3 {
				a.err = fmt.Errorf("expected a name and an argc argument for opcode %s, got %d fields", fields[0], len(fields))
				return fields, indexToAddr
			}
			arg = uint32(a.uint(fields[1]))
			metArgc = uint32(a.uint(fields[2]))
		case HasOperand(op):
			if len(fields) != 2 {
				a.err = fmt.Errorf("expected an argument for opcode %s, got %d fields", fields[0], len(fields))
				return fields, indexToAddr
			}
			arg = uint32(a.uint(fields[1]))
		default:
			if len(fields) != 1 {
				a.err = fmt.Errorf("expected no argument for opcode %s, got %d fields", fields[0], len(fields))
				return fields, indexToAddr
			}
		}
		insns = append(insns, insn{op: op, arg: arg, metArgc: metArgc})
		indexToAddr = append(indexToAddr, addr)
		addr += encodedSize(op, arg)
		if IsVariadicMet(op) {
			addr += varArgLen(metArgc)
		}
	}

	for i, ins := range insns {
		op, arg := ins.op, ins.arg
		if isJump(op) {
			if arg >= uint32(len(indexToAddr)) {
				a.err = fmt.Errorf("invalid jump index %d: instruction %s at index %d", arg, op, i)
				return fields, indexToAddr
			}
			arg = uint32(indexToAddr[arg])
		}
		a.fn.Code = encodeInsn(a.fn.Code, op, arg)
		if IsVariadicMet(op) {
			a.fn.Code = appendUvarint(a.fn.Code, ins.metArgc)
		}
	}

	return fields, indexToAddr
}

func (a *asm) args(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "args:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		a.fn.Args = append(a.fn.Args, Binding{Name: fields[0]})
	}
	return fields
}

func (a *asm) freevars(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "freevars:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		a.fn.Freevars = append(a.fn.Freevars, Binding{Name: fields[0]})
	}
	return fields
}

func (a *asm) locals(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "locals:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		a.fn.Locals = append(a.fn.Locals, Binding{Name: fields[0]})
	}
	return fields
}

var rxConstLineString = regexp.MustCompile(`^\s*(?:string|bytes)\s+(.+)$`)

func (a *asm) constants(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "constants:") {
		return fields
	}

	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		strVal := rxConstLineString.FindStringSubmatch(a.rawLine)
		if strVal == nil && len(fields) != 2 {
			a.err = fmt.Errorf("invalid constant: expected type and value, got %d fields", len(fields))
			return fields
		}

		switch fields[0] {
		case "int":
			a.ct.Objects = append(a.ct.Objects, a.int(fields[1]))
		case "float":
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				a.err = fmt.Errorf("invalid float: %s: %w", fields[1], err)
				return fields
			}
			a.ct.Objects = append(a.ct.Objects, f)
		case "string":
			qs, err := strconv.QuotedPrefix(strVal[1])
			if err != nil {
				a.err = fmt.Errorf("invalid string: %q: %w", strVal[1], err)
				return fields
			}
			s, err := strconv.Unquote(qs)
			if err != nil {
				a.err = fmt.Errorf("invalid string: %q: %w", qs, err)
				return fields
			}
			a.ct.Objects = append(a.ct.Objects, s)
		default:
			a.err = fmt.Errorf("invalid constant type: %s", fields[0])
			return fields
		}
	}
	return fields
}

func (a *asm) strings(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "strings:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		strVal := rxConstLineString.FindStringSubmatch(a.rawLine)
		raw := fields[0]
		if strVal != nil {
			raw = strVal[1]
		}
		qs, err := strconv.QuotedPrefix(raw)
		if err != nil {
			a.err = fmt.Errorf("invalid string: %q: %w", raw, err)
			return fields
		}
		s, err := strconv.Unquote(qs)
		if err != nil {
			a.err = fmt.Errorf("invalid string: %q: %w", qs, err)
			return fields
		}
		a.ct.Strings = append(a.ct.Strings, s)
	}
	return fields
}

func (a *asm) names(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "names:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		a.ct.Names = append(a.ct.Names, fields[0])
	}
	return fields
}

func (a *asm) tables(fields []string) {
	if a.err != nil {
		return
	}
	if len(fields) == 0 || !strings.EqualFold(fields[0], "tables:") {
		msg := "expected tables section"
		if len(fields) > 0 {
			msg += ", found " + fields[0]
		}
		a.err = errors.New(msg)
		return
	}
	var ct CompiledTables
	a.ct = &ct
}

func (a *asm) option(fields []string, opt string) bool {
	for _, fld := range fields {
		if fld == "+"+opt {
			return true
		}
		if fld == "-"+opt {
			break
		}
	}
	return false
}

func (a *asm) int(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		a.err = fmt.Errorf("invalid integer: %s: %w", s, err)
	}
	return i
}

func (a *asm) uint(s string) uint64 {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		a.err = fmt.Errorf("invalid unsigned integer: %s: %w", s, err)
	}
	return u
}

// returns the fields for the next non-empty, non-comment-only line, so that
// fields[0] will contain the line identification if it is a section.
func (a *asm) next() []string {
	a.rawLine = ""
	if a.err != nil {
		return nil
	}
	for a.s.Scan() {
		line := a.s.Text()
		fields := strings.Fields(line)
		if len(fields) != 0 && !strings.HasPrefix(fields[0], "#") {
			for i, fld := range fields {
				if strings.HasPrefix(fld, "#") {
					fields = fields[:i]
					break
				}
			}
			a.rawLine = line
			return fields
		}
	}
	a.err = a.s.Err()
	return nil
}

// Dasm writes a compiled unit to its assembler textual format.
func Dasm(ct *CompiledTables) ([]byte, error) {
	d := dasm{ct: ct, buf: new(bytes.Buffer)}
	d.tables()
	d.write("\n")

	if d.ct.Toplevel == nil {
		d.err = errors.New("missing top-level function")
	}
	if d.err == nil {
		d.function(d.ct.Toplevel)
		for _, fn := range d.ct.Functions {
			d.write("\n")
			d.function(fn)
		}
	}

	return d.buf.Bytes(), d.err
}

type dasm struct {
	ct  *CompiledTables
	buf *bytes.Buffer
	err error
}

func (d *dasm) argPolicySuffix(p ArgPolicy) string {
	switch p {
	case ArgDiscard:
		return " +discard"
	case ArgVariadic:
		return " +variadic"
	default:
		return ""
	}
}

func (d *dasm) function(fn *UserFunctionInfo) {
	if d.err != nil {
		return
	}

	d.writef("function: %s %d %d%s\n", fn.Name, fn.MaxStack, len(fn.Args), d.argPolicySuffix(fn.ArgPolicy))

	if len(fn.Args) > 0 {
		d.write("\targs:\n")
		for i, a := range fn.Args {
			d.writef("\t\t%s\t# %03d\n", a.Name, i)
		}
	}
	if len(fn.Locals) > 0 {
		d.write("\tlocals:\n")
		for i, l := range fn.Locals {
			d.writef("\t\t%s\t# %03d\n", l.Name, i)
		}
	}
	if len(fn.Freevars) > 0 {
		d.write("\tfreevars:\n")
		for i, f := range fn.Freevars {
			d.writef("\t\t%s\t# %03d\n", f.Name, i)
		}
	}

	var insns []insn
	addrToIndex := make([]int, len(fn.Code))
	for i := range addrToIndex {
		addrToIndex[i] = -1
	}
	var addr int
	for addr < len(fn.Code) {
		op := Opcode(fn.Code[addr])
		sz := 1

		var arg uint32
		if HasOperand(op) {
			v, n := binary.Uvarint(fn.Code[addr+1:])
			if n <= 0 || v > math.MaxUint32 {
				d.err = fmt.Errorf("invalid uvarint argument in function %s code at index %d (%s)", fn.Name, addr, op)
				return
			}
			arg = uint32(v)

			if isJump(op) && n < 4 {
				n = 4
			}
			sz += n
		}

		var metArgc uint32
		if IsVariadicMet(op) {
			v, n := binary.Uvarint(fn.Code[addr+sz:])
			if n <= 0 || v > math.MaxUint32 {
				d.err = fmt.Errorf("invalid met argc in function %s code at index %d", fn.Name, addr)
				return
			}
			metArgc = uint32(v)
			sz += n
		}

		addrToIndex[addr] = len(insns)
		insns = append(insns, insn{op: op, arg: arg, metArgc: metArgc})
		addr += sz
	}

	if len(insns) > 0 {
		d.write("\tcode:\n")
		for i, ins := range insns {
			op, arg := ins.op, ins.arg
			switch {
			case IsVariadicMet(op):
				d.writef("\t\t%s %03d %03d\t# %03d\n", op, arg, ins.metArgc, i)
			case HasOperand(op):
				if isJump(op) {
					if addrToIndex[arg] == -1 {
						d.err = fmt.Errorf("invalid jump address %d in function %s, instruction %d (%s)", arg, fn.Name, i, op)
						return
					}
					arg = uint32(addrToIndex[arg])
				}
				d.writef("\t\t%s %03d\t# %03d\n", op, arg, i)
			default:
				d.writef("\t\t%s\t# %03d\n", op, i)
			}
		}
	}
}

func (d *dasm) tables() {
	d.write("tables:")
	d.write("\n")

	if len(d.ct.Names) > 0 {
		d.write("\tnames:\n")
		for i, n := range d.ct.Names {
			d.writef("\t\t%s\t# %03d\n", n, i)
		}
	}
	if len(d.ct.Strings) > 0 {
		d.write("\tstrings:\n")
		for i, s := range d.ct.Strings {
			d.writef("\t\t%q\t# %03d\n", s, i)
		}
	}
	if len(d.ct.Objects) > 0 {
		d.write("\tconstants:\n")
		for i, c := range d.ct.Objects {
			switch c := c.(type) {
			case string:
				d.writef("\t\tstring\t%q\t# %03d\n", c, i)
			case int64:
				d.writef("\t\tint\t%d\t# %03d\n", c, i)
			case float64:
				d.writef("\t\tfloat\t%g\t# %03d\n", c, i)
			default:
				d.err = fmt.Errorf("unsupported constant type: %T", c)
				return
			}
		}
	}
}

func (d *dasm) writef(s string, args ...any) {
	d.write(fmt.Sprintf(s, args...))
}

func (d *dasm) write(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.buf.WriteString(s)
}

type insn struct {
	op      Opcode
	arg     uint32
	metArgc uint32 // only meaningful when op == Met
}

func encodeInsn(code []byte, op Opcode, arg uint32) []byte {
	code = append(code, byte(op))
	if HasOperand(op) {
		if isJump(op) {
			code = addUint32(code, arg, 4) // pad arg to 4 bytes
		} else {
			code = addUint32(code, arg, 0)
		}
	}
	return code
}

// addUint32 encodes x as a 7-bit little-endian varint, padding with NOPs up
// to min bytes (used to reserve a fixed 4-byte slot for jump targets so
// patchJmp in compiler.go can overwrite them after the fact).
func addUint32(code []byte, x uint32, min int) []byte {
	end := len(code) + min
	for x >= 0x80 {
		code = append(code, byte(x)|0x80)
		x >>= 7
	}
	code = append(code, byte(x))
	for len(code) < end {
		code = append(code, byte(Nop))
	}
	return code
}
