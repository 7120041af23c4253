// Package compiler lowers the parser's s-expression tree (value.Pair/
// value.List cons cells, spec.md §4.2) into bytecode segments the
// interpreter executes (spec.md §4.1). The lowering walks the tree
// recursively in a single pass, emitting directly into a flat byte slice
// with backpatched jump targets -- simpler than the teacher's Starlark-
// derived CFG-block linearization (this package's original compiler.go),
// since Smile has no defer/catch regions to thread through block
// successors and a single emit pass is enough to get every jump target
// right.
package compiler

import (
	"fmt"

	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
)

// CompileError reports a lowering failure tied to the offending form's
// source location.
type CompileError struct {
	Loc     value.SourceLocation
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

// CompileToplevel compiles the top-level forms of one source file (each a
// parsed s-expression, spec.md §4.2) into tables.Toplevel.
func CompileToplevel(tables *CompiledTables, filename string, forms []value.Object) error {
	tables.Filename = filename
	fc := &fcomp{
		tables: tables,
		fn:     &UserFunctionInfo{Name: "$toplevel"},
		locals: map[string]int{},
		args:   map[string]int{},
		consts: map[interface{}]int{},
		strs:   map[string]int{},
	}
	for i, form := range forms {
		if err := fc.compileExpr(form); err != nil {
			return err
		}
		if i < len(forms)-1 {
			fc.emit(Pop1)
		}
	}
	fc.emit(Ret)
	fc.fn.MaxStack = fc.maxStack
	fc.fn.Tables = tables
	tables.Toplevel = fc.fn
	return nil
}

// fcomp holds the compiler state for a single UserFunctionInfo.
type fcomp struct {
	tables *CompiledTables
	fn     *UserFunctionInfo

	locals map[string]int // name -> local slot
	args   map[string]int // name -> arg slot
	consts map[interface{}]int
	strs   map[string]int

	stack, maxStack int
}

func (fc *fcomp) bump(se int) {
	fc.stack += se
	if fc.stack > fc.maxStack {
		fc.maxStack = fc.stack
	}
}

func (fc *fcomp) emit(op Opcode) int {
	pc := len(fc.fn.Code)
	fc.fn.Code = append(fc.fn.Code, byte(op))
	fc.bump(int(stackEffect[op]))
	return pc
}

func (fc *fcomp) emitArg(op Opcode, arg uint32) int {
	pc := len(fc.fn.Code)
	fc.fn.Code = append(fc.fn.Code, byte(op))
	fc.fn.Code = appendUvarint(fc.fn.Code, arg)
	fc.bump(int(stackEffect[op]))
	return pc
}

// emitJmp emits a jump opcode with a placeholder 4-byte operand and returns
// the operand's offset so patchJmp can overwrite it once the target
// address is known (jump operands are always 4 bytes, per isJump).
func (fc *fcomp) emitJmp(op Opcode) int {
	pc := len(fc.fn.Code)
	fc.fn.Code = append(fc.fn.Code, byte(op), 0, 0, 0, 0)
	fc.bump(int(stackEffect[op]))
	return pc + 1
}

func (fc *fcomp) patchJmp(operandPC int) {
	target := uint32(len(fc.fn.Code))
	putUint32(fc.fn.Code[operandPC:operandPC+4], target)
}

func appendUvarint(b []byte, x uint32) []byte {
	for x >= 0x80 {
		b = append(b, byte(x)|0x80)
		x >>= 7
	}
	return append(b, byte(x))
}

func putUint32(b []byte, x uint32) {
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
}

func (fc *fcomp) internString(s string) int {
	if i, ok := fc.strs[s]; ok {
		return i
	}
	i := len(fc.tables.Strings)
	fc.tables.Strings = append(fc.tables.Strings, s)
	fc.strs[s] = i
	return i
}

func (fc *fcomp) internConst(v interface{}) int {
	if i, ok := fc.consts[v]; ok {
		return i
	}
	i := len(fc.tables.Objects)
	fc.tables.Objects = append(fc.tables.Objects, v)
	fc.consts[v] = i
	return i
}

func (fc *fcomp) internName(s string) uint32 {
	for i, n := range fc.tables.Names {
		if n == s {
			return uint32(i)
		}
	}
	fc.tables.Names = append(fc.tables.Names, s)
	return uint32(len(fc.tables.Names) - 1)
}

// compileExpr compiles a single tree node, leaving exactly one value on the
// operand stack.
func (fc *fcomp) compileExpr(form value.Object) error {
	switch v := form.(type) {
	case value.Symbol:
		return fc.compileSymbolRef(v)
	case value.String:
		fc.emitArg(LdStr, uint32(fc.internString(v.ToString())))
		return nil
	case value.Bool:
		fc.emitArg(LdBool, boolArg(bool(v)))
		return nil
	case value.Int64:
		fc.emitArg(Ld64, uint32(fc.internConst(v.Signed())))
		return nil
	case value.Int32:
		fc.emitArg(Ld32, uint32(fc.internConst(v.Signed())))
		return nil
	case value.Int16:
		fc.emitArg(Ld16, uint32(fc.internConst(v.Signed())))
		return nil
	case value.Byte:
		fc.emitArg(Ld8, uint32(v.V))
		return nil
	case *value.Pair, *value.List:
		return fc.compileList(form)
	default:
		if value.IsNull(form) {
			fc.emit(LdNull)
			return nil
		}
		fc.emitArg(LdObj, uint32(fc.internConst(form)))
		return nil
	}
}

func boolArg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// compileSymbolRef compiles a bare symbol reference: an argument, a local,
// or (falling through) a global lookup via LdX (spec.md §4.1's "LdX/StX/
// StpX sym for globals"). Scope resolution (locals vs globals) is left to
// the resolver package to narrow; until a resolved binding list reaches the
// compiler, every free symbol is conservatively treated as a global, which
// is always correct, merely not maximally efficient.
func (fc *fcomp) compileSymbolRef(sym value.Symbol) error {
	name := sym.Name()
	if slot, ok := fc.args[name]; ok {
		return fc.emitSlotLoad(LdArg, LdArg0, slot)
	}
	if slot, ok := fc.locals[name]; ok {
		return fc.emitSlotLoad(LdLoc, LdLoc0, slot)
	}
	fc.emitArg(LdX, fc.internName(name))
	return nil
}

func (fc *fcomp) emitSlotLoad(generic, specialized0 Opcode, slot int) error {
	if slot >= 0 && slot <= 7 {
		fc.emit(specialized0 + Opcode(slot))
		return nil
	}
	fc.emitArg(generic, uint32(slot))
	return nil
}

// compileList compiles a list/pair form. Special forms are recognized by
// their head symbol (spec.md §3's reserved $-prefixed symbols); anything
// else is a call or method-call application.
func (fc *fcomp) compileList(form value.Object) error {
	elems, proper := flatten(form)
	if len(elems) == 0 {
		fc.emit(LdNull)
		return nil
	}

	if headSym, ok := elems[0].(value.Symbol); ok && proper {
		switch symbol.ID(headSym) {
		case symbol.Quote:
			return fc.compileQuote(elems)
		case symbol.If:
			return fc.compileIf(elems)
		case symbol.Set:
			return fc.compileSet(elems)
		case symbol.Progn:
			return fc.compileProgn(elems)
		case symbol.Fn:
			return fc.compileFn(elems)
		case symbol.Dot:
			return fc.compileDot(elems)
		case symbol.NewObj:
			return fc.compileNew(elems)
		case symbol.OpAnd:
			return fc.compileAnd(elems)
		case symbol.OpOr:
			return fc.compileOr(elems)
		case symbol.OpNot:
			return fc.compileNot(elems)
		case symbol.OpIs:
			return fc.compileBinaryOp(elems, Is)
		case symbol.OpSeq:
			return fc.compileBinaryOp(elems, SuperEq)
		case symbol.OpSne:
			return fc.compileBinaryOp(elems, SuperNe)
		}
	}

	// Generic application: [Callee Arg...]. If Callee is itself a [$dot
	// Target Member] form, or the head is one of the ordering-comparison
	// symbols, this is a method call (spec.md §4.2's "a + b" => "[[$dot a +] b]").
	return fc.compileCall(elems)
}

func (fc *fcomp) compileQuote(elems []value.Object) error {
	if len(elems) != 2 {
		return &CompileError{Message: "$quote requires exactly one operand"}
	}
	fc.emitArg(LdObj, uint32(fc.internConst(elems[1])))
	return nil
}

func (fc *fcomp) compileIf(elems []value.Object) error {
	if len(elems) != 4 {
		return &CompileError{Message: "$if requires (cond then else)"}
	}
	if err := fc.compileExpr(elems[1]); err != nil {
		return err
	}
	bf := fc.emitJmp(Bf)
	if err := fc.compileExpr(elems[2]); err != nil {
		return err
	}
	fc.stack-- // the Bf branch and the then branch must agree on depth
	jmp := fc.emitJmp(Jmp)
	fc.patchJmp(bf)
	if err := fc.compileExpr(elems[3]); err != nil {
		return err
	}
	fc.patchJmp(jmp)
	return nil
}

func (fc *fcomp) compileSet(elems []value.Object) error {
	if len(elems) != 3 {
		return &CompileError{Message: "$set requires (symbol value)"}
	}
	sym, ok := elems[1].(value.Symbol)
	if !ok {
		return &CompileError{Message: "$set target must be a symbol"}
	}
	if err := fc.compileExpr(elems[2]); err != nil {
		return err
	}
	name := sym.Name()
	if slot, ok := fc.locals[name]; ok {
		fc.emitArg(StLoc, uint32(slot))
		return nil
	}
	fc.emitArg(StX, fc.internName(name))
	return nil
}

func (fc *fcomp) compileProgn(elems []value.Object) error {
	body := elems[1:]
	if len(body) == 0 {
		fc.emit(LdNull)
		return nil
	}
	for i, e := range body {
		if err := fc.compileExpr(e); err != nil {
			return err
		}
		if i < len(body)-1 {
			fc.emit(Pop1)
		}
	}
	return nil
}

// compileFn lowers a "[$fn [params...] body...]" literal (spec.md §3's
// "Closure & escape continuations") into a nested UserFunctionInfo plus a
// MkClo instruction that materializes it as a *machine.Function closing
// over the enclosing activation record. params is a flat list of bare
// symbols; a body of zero forms compiles to a function that returns null.
// Every non-parameter name referenced in the body still resolves as a
// global (compileSymbolRef's documented conservative default) since no
// resolver pass marks enclosing locals as free variables yet -- a nested
// function only truly closes over its parent's globals, not its parent's
// locals/arguments, until that pass exists.
func (fc *fcomp) compileFn(elems []value.Object) error {
	if len(elems) < 2 {
		return &CompileError{Message: "$fn requires a parameter list"}
	}
	params, proper := flatten(elems[1])
	if !proper {
		return &CompileError{Message: "$fn parameter list must be a proper list"}
	}

	fn2 := &UserFunctionInfo{Name: "$fn", ArgPolicy: ArgDiscard}
	fc2 := &fcomp{
		tables: fc.tables,
		fn:     fn2,
		locals: map[string]int{},
		args:   map[string]int{},
		consts: fc.consts,
		strs:   fc.strs,
	}
	for i, p := range params {
		sym, ok := p.(value.Symbol)
		if !ok {
			return &CompileError{Message: "$fn parameter must be a symbol"}
		}
		name := sym.Name()
		fc2.args[name] = i
		fn2.Args = append(fn2.Args, Binding{Name: name})
	}

	body := elems[2:]
	if len(body) == 0 {
		fc2.emit(LdNull)
	}
	for i, e := range body {
		if err := fc2.compileExpr(e); err != nil {
			return err
		}
		if i < len(body)-1 {
			fc2.emit(Pop1)
		}
	}
	fc2.emit(Ret)
	fn2.MaxStack = fc2.maxStack

	idx := fc.tables.AddFunction(fn2)
	fc.emitArg(MkClo, uint32(idx))
	return nil
}

func (fc *fcomp) compileDot(elems []value.Object) error {
	if len(elems) != 3 {
		return &CompileError{Message: "$dot requires (target member)"}
	}
	if err := fc.compileExpr(elems[1]); err != nil {
		return err
	}
	sym, ok := elems[2].(value.Symbol)
	if !ok {
		return &CompileError{Message: "$dot member must be a symbol"}
	}
	fc.emitArg(LdProp, fc.internName(sym.Name()))
	return nil
}

// compileNew implements "[$new base members]" (spec.md §4.2's "new (dot)?
// '{' members '}'"), constructing a UserObject chained to base with each
// member's value installed in source order (spec.md §3's insertion-ordered
// UserObject). members is itself a proper list of "[name value]" forms,
// built by lang/parser's parseMembers.
func (fc *fcomp) compileNew(elems []value.Object) error {
	if len(elems) != 3 {
		return &CompileError{Message: "$new requires (base members)"}
	}
	if err := fc.compileExpr(elems[1]); err != nil {
		return err
	}

	members, proper := flatten(elems[2])
	if !proper {
		return &CompileError{Message: "$new members must be a proper list"}
	}
	for _, m := range members {
		pair, ok := flattenPair(m)
		if !ok {
			return &CompileError{Message: "$new member must be (name value)"}
		}
		name, ok := pair[0].(value.Symbol)
		if !ok {
			return &CompileError{Message: "$new member name must be a symbol"}
		}
		fc.emitArg(LdSym, fc.internName(name.Name()))
		if err := fc.compileExpr(pair[1]); err != nil {
			return err
		}
	}
	return fc.emitNewObj(len(members))
}

// flattenPair flattens o and reports whether it is a proper 2-element list.
func flattenPair(o value.Object) ([]value.Object, bool) {
	elems, proper := flatten(o)
	return elems, proper && len(elems) == 2
}

// compileAnd/compileOr implement short-circuit evaluation by duplicating
// the left operand to test it, discarding the duplicate on the branch that
// must still evaluate the right operand (spec.md §4.2's "[and a b]"/
// "[or a b]" tree shape).
func (fc *fcomp) compileAnd(elems []value.Object) error {
	if len(elems) != 3 {
		return &CompileError{Message: "and requires exactly two operands"}
	}
	if err := fc.compileExpr(elems[1]); err != nil {
		return err
	}
	fc.emit(Dup1)
	skip := fc.emitJmp(Bf)
	fc.emit(Pop1)
	if err := fc.compileExpr(elems[2]); err != nil {
		return err
	}
	fc.patchJmp(skip)
	return nil
}

func (fc *fcomp) compileOr(elems []value.Object) error {
	if len(elems) != 3 {
		return &CompileError{Message: "or requires exactly two operands"}
	}
	if err := fc.compileExpr(elems[1]); err != nil {
		return err
	}
	fc.emit(Dup1)
	skip := fc.emitJmp(Bt)
	fc.emit(Pop1)
	if err := fc.compileExpr(elems[2]); err != nil {
		return err
	}
	fc.patchJmp(skip)
	return nil
}

func (fc *fcomp) compileNot(elems []value.Object) error {
	if len(elems) != 2 {
		return &CompileError{Message: "not requires exactly one operand"}
	}
	if err := fc.compileExpr(elems[1]); err != nil {
		return err
	}
	fc.emit(Not)
	return nil
}

func (fc *fcomp) compileBinaryOp(elems []value.Object, op Opcode) error {
	if len(elems) != 3 {
		return &CompileError{Message: "binary operator requires exactly two operands"}
	}
	if err := fc.compileExpr(elems[1]); err != nil {
		return err
	}
	if err := fc.compileExpr(elems[2]); err != nil {
		return err
	}
	fc.emit(op)
	return nil
}

// comparisonOps are the operator symbols spec.md §4.2 gives the tree shape
// "[op a b]" rather than routing through $dot; with no dedicated opcode for
// ordering comparisons, they lower to a method dispatch on the left operand
// (spec.md §4.5 gives every numeric kind a compare/cmp method, and other
// kinds may supply their own), the same shape as a $dot-based call. This is
// a design decision recorded in DESIGN.md, not a behavior spec.md pins down
// at the opcode level.
var comparisonOps = map[symbol.ID]bool{
	symbol.OpLt: true, symbol.OpGt: true, symbol.OpLe: true, symbol.OpGe: true,
	symbol.OpEq: true, symbol.OpNe: true,
}

func (fc *fcomp) compileCall(elems []value.Object) error {
	head := elems[0]
	args := elems[1:]

	if headSym, ok := head.(value.Symbol); ok && comparisonOps[symbol.ID(headSym)] {
		if len(args) != 2 {
			return &CompileError{Message: fmt.Sprintf("%s requires exactly two operands", headSym.Name())}
		}
		if err := fc.compileExpr(args[0]); err != nil {
			return err
		}
		if err := fc.compileExpr(args[1]); err != nil {
			return err
		}
		return fc.emitMet(headSym.Name(), 1)
	}

	if headElems, ok2 := flattenIfProperDot(head); ok2 {
		// [$dot target member] used as a callee: a method call.
		if err := fc.compileExpr(headElems[1]); err != nil {
			return err
		}
		sym, ok := headElems[2].(value.Symbol)
		if !ok {
			return &CompileError{Message: "$dot member must be a symbol"}
		}
		for _, a := range args {
			if err := fc.compileExpr(a); err != nil {
				return err
			}
		}
		return fc.emitMet(sym.Name(), len(args))
	}

	if err := fc.compileExpr(head); err != nil {
		return err
	}
	for _, a := range args {
		if err := fc.compileExpr(a); err != nil {
			return err
		}
	}
	return fc.emitCall(len(args))
}

// emitNewObj emits NewObj with n as its member-pair count: the stack holds
// a base object followed by n (symbol, value) pairs (2n+1 cells), replaced
// by the single constructed object.
func (fc *fcomp) emitNewObj(n int) error {
	fc.emitArg(NewObj, uint32(n))
	fc.stack -= 2*n + variableStackEffect
	return nil
}

func flattenIfProperDot(o value.Object) ([]value.Object, bool) {
	elems, proper := flatten(o)
	if !proper || len(elems) != 3 {
		return nil, false
	}
	sym, ok := elems[0].(value.Symbol)
	return elems, ok && symbol.ID(sym) == symbol.Dot
}

func (fc *fcomp) emitCall(argc int) error {
	if argc <= 7 {
		fc.emit(Call0 + Opcode(argc))
		return nil
	}
	fc.emitArg(Call, uint32(argc))
	// emitArg already bumped fc.stack by stackEffect[Call]'s
	// variableStackEffect placeholder; replace that placeholder bump with
	// the real one (pops argc+1, pushes 1 result, net -argc).
	fc.stack -= argc + variableStackEffect
	return nil
}

func (fc *fcomp) emitMet(name string, argc int) error {
	nameIdx := fc.internName(name)
	if argc <= 7 {
		fc.emitArg(Met0+Opcode(argc), nameIdx)
		return nil
	}
	fc.emitArg(Met, nameIdx)
	fc.fn.Code = appendUvarint(fc.fn.Code, uint32(argc))
	fc.stack -= argc + variableStackEffect
	return nil
}

// flatten walks a proper or improper list/pair chain into a slice of its
// elements, reporting whether the chain was a proper list (Null-terminated).
func flatten(o value.Object) ([]value.Object, bool) {
	switch v := o.(type) {
	case *value.List:
		var out []value.Object
		cur := value.Object(v)
		for {
			lst, ok := cur.(*value.List)
			if !ok {
				return out, value.IsNull(cur)
			}
			out = append(out, lst.Head)
			cur = lst.Tail
		}
	case *value.Pair:
		return []value.Object{v.Left, v.Right}, false
	default:
		return nil, false
	}
}
