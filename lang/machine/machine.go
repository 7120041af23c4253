package machine

import (
	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
)

// run drives cl's bytecode to completion, returning the value a Ret from
// cl's own frame produces. It is the direct descendant of the teacher's
// big-switch run(th, fn, args) loop, re-targeted at compiler.DecodeInsn and
// value.Object instead of a Starlark-derived opcode/value set (spec.md
// §4.1's opcode groups: Stack, Constant loads, Variable access, Property
// access, Type/equality, Calls, Control flow, List/pair shortcuts,
// Breakpoint).
func (m *Machine) run(cl *Closure) (value.Object, error) {
	fn := cl.Info.Fn
	code := fn.Code

	for {
		if !m.step() {
			panic(&FatalError{Message: "exceeded MaxSteps"})
		}

		op, arg, size := compiler.DecodeInsn(code, cl.PC)
		var metArgc uint32
		if compiler.IsVariadicMet(op) {
			var n int
			metArgc, n = compiler.DecodeVarint(code, cl.PC+uint32(size))
			size += n
		}
		next := cl.PC + uint32(size)

		switch {
		case op == compiler.Nop:
			// no-op

		case op == compiler.Dup1:
			cl.push(cl.peek(0))
		case op == compiler.Dup2:
			a, b := cl.peek(1), cl.peek(0)
			cl.push(a)
			cl.push(b)
		case op == compiler.DupN:
			n := int(arg)
			for i := 0; i < n; i++ {
				cl.push(cl.peek(n - 1))
			}
		case op == compiler.Pop1:
			cl.pop()
		case op == compiler.Pop2:
			cl.pop()
			cl.pop()
		case op == compiler.PopN:
			for i := uint32(0); i < arg; i++ {
				cl.pop()
			}
		case op == compiler.Rep1:
			// replace the top with itself: no-op, kept for symmetry with Rep2/RepN.
		case op == compiler.Rep2:
			top := cl.pop()
			cl.pop()
			cl.push(top)
		case op == compiler.RepN:
			top := cl.pop()
			for i := uint32(0); i < arg; i++ {
				cl.pop()
			}
			cl.push(top)

		case op == compiler.LdNull:
			cl.push(value.Null)
		case op == compiler.LdBool:
			cl.push(value.Bool(arg != 0))
		case op == compiler.LdStr:
			cl.push(value.NewString(fn.Tables.Strings[arg]))
		case op == compiler.LdSym:
			cl.push(value.Symbol(symbol.Intern(fn.Tables.Names[arg])))
		case op == compiler.LdObj:
			cl.push(constAsObject(fn.Tables.Objects[arg]))
		case op == compiler.Ld8:
			cl.push(value.NewByte(byte(arg)))
		case op == compiler.Ld16:
			cl.push(value.NewInt16(int16(fn.Tables.Objects[arg].(int64))))
		case op == compiler.Ld32:
			cl.push(value.NewInt32(int32(fn.Tables.Objects[arg].(int64))))
		case op == compiler.Ld64:
			cl.push(value.NewInt64(fn.Tables.Objects[arg].(int64)))
		case op == compiler.Ld128:
			cl.push(constAsObject(fn.Tables.Objects[arg]))

		case op == compiler.LdLoc:
			cl.push(cl.Locals[arg])
		case op == compiler.StLoc:
			cl.Locals[arg] = cl.peek(0)
		case op == compiler.StpLoc:
			cl.Locals[arg] = cl.pop()
		case compiler.LdLoc0 <= op && op <= compiler.LdLoc7:
			cl.push(cl.Locals[op-compiler.LdLoc0])

		case op == compiler.LdArg:
			cl.push(cl.Args[arg])
		case op == compiler.StArg:
			cl.Args[arg] = cl.peek(0)
		case op == compiler.StpArg:
			cl.Args[arg] = cl.pop()
		case compiler.LdArg0 <= op && op <= compiler.LdArg7:
			cl.push(cl.Args[op-compiler.LdArg0])

		case op == compiler.LdX:
			cl.push(m.loadGlobal(cl, fn.Tables.Names[arg]))
		case op == compiler.StX:
			m.storeGlobal(cl, fn.Tables.Names[arg], cl.peek(0))
		case op == compiler.StpX:
			m.storeGlobal(cl, fn.Tables.Names[arg], cl.pop())

		case op == compiler.LdProp:
			target := cl.pop()
			v, err := m.getProperty(target, fn.Tables.Names[arg])
			if err != nil {
				m.Throw(exceptionObjectFromError(err))
			}
			cl.push(v)
		case op == compiler.StProp:
			v := cl.peek(0)
			target := cl.peek(1)
			if err := m.setProperty(target, fn.Tables.Names[arg], v); err != nil {
				m.Throw(exceptionObjectFromError(err))
			}
		case op == compiler.StpProp:
			v := cl.pop()
			target := cl.pop()
			if err := m.setProperty(target, fn.Tables.Names[arg], v); err != nil {
				m.Throw(exceptionObjectFromError(err))
			}

		case op == compiler.SuperEq:
			b, a := cl.pop(), cl.pop()
			cl.push(value.Bool(equalObjects(a, b)))
		case op == compiler.SuperNe:
			b, a := cl.pop(), cl.pop()
			cl.push(value.Bool(!equalObjects(a, b)))
		case op == compiler.Bool:
			cl.push(value.Bool(cl.pop().ToBool()))
		case op == compiler.Not:
			v := cl.pop()
			cl.push(value.Bool(!v.ToBool()))
		case op == compiler.Is:
			b, a := cl.pop(), cl.pop()
			cl.push(value.Bool(identityEqual(a, b)))

		case compiler.Call0 <= op && op <= compiler.Call7:
			argc := int(op - compiler.Call0)
			result, err := m.doCall(cl, argc)
			if err != nil {
				m.Throw(exceptionObjectFromError(err))
			}
			cl.push(result)
		case op == compiler.Call:
			result, err := m.doCall(cl, int(arg))
			if err != nil {
				m.Throw(exceptionObjectFromError(err))
			}
			cl.push(result)
		case compiler.Met0 <= op && op <= compiler.Met7:
			argc := int(op - compiler.Met0)
			result, err := m.doMet(cl, fn.Tables.Names[arg], argc)
			if err != nil {
				m.Throw(exceptionObjectFromError(err))
			}
			cl.push(result)
		case op == compiler.Met:
			result, err := m.doMet(cl, fn.Tables.Names[arg], int(metArgc))
			if err != nil {
				m.Throw(exceptionObjectFromError(err))
			}
			cl.push(result)

		case op == compiler.Jmp:
			next = arg
		case op == compiler.Bt:
			if cl.pop().ToBool() {
				next = arg
			}
		case op == compiler.Bf:
			if !cl.pop().ToBool() {
				next = arg
			}
		case op == compiler.Ret:
			return cl.pop(), nil
		case op == compiler.Label:
			// marker only; no runtime effect.

		case op == compiler.Cons:
			b, a := cl.pop(), cl.pop()
			cl.push(value.Cons(a, b))
		case op == compiler.Car:
			cl.push(carOf(cl.pop()))
		case op == compiler.Cdr:
			cl.push(cdrOf(cl.pop()))
		case op == compiler.NewPair:
			b, a := cl.pop(), cl.pop()
			cl.push(value.NewPair(a, b))
		case op == compiler.Left:
			cl.push(leftOf(cl.pop()))
		case op == compiler.Right:
			cl.push(rightOf(cl.pop()))
		case op == compiler.LdA:
			cl.push(m.accessorLoad(cl.pop(), carOf, symbol.PropA))
		case op == compiler.LdD:
			cl.push(m.accessorLoad(cl.pop(), cdrOf, symbol.PropD))
		case op == compiler.LdLeft:
			cl.push(m.accessorLoad(cl.pop(), leftOf, symbol.PropLeft))
		case op == compiler.LdRight:
			cl.push(m.accessorLoad(cl.pop(), rightOf, symbol.PropRight))
		case op == compiler.LdStart:
			cl.push(m.accessorLoad(cl.pop(), nil, symbol.PropStart))
		case op == compiler.LdEnd:
			cl.push(m.accessorLoad(cl.pop(), nil, symbol.PropEnd))
		case op == compiler.LdCount:
			cl.push(m.accessorLoad(cl.pop(), countOf, symbol.PropCount))
		case op == compiler.LdLength:
			cl.push(m.accessorLoad(cl.pop(), countOf, symbol.PropLength))

		case op == compiler.MkClo:
			info := NewClosureInfo(fn.Tables.Functions[arg], cl.Info, KindLocal)
			cl.push(NewFunction(info, cl))

		case op == compiler.NewObj:
			cl.push(m.newUserObject(cl, int(arg)))

		case op == compiler.Brk:
			m.suspend(cl.PC)

		default:
			panic(&FatalError{Message: "illegal opcode " + op.String()})
		}

		cl.PC = next
	}
}

// constAnObject recovers a value.Object from CompiledTables.Objects, which
// stores either an already-boxed Object (literals quoted whole, or Ld128
// constants -- there being no native Go 128-bit int to store instead) or a
// bare Go int64 (Ld16/32/64's interned Signed() value, see compiler.go's
// compileExpr).
func constAsObject(c interface{}) value.Object {
	switch v := c.(type) {
	case value.Object:
		return v
	case int64:
		return value.NewInt64(v)
	default:
		panic(&FatalError{Message: "unsupported constant table entry"})
	}
}

// newUserObject implements NewObj: pops n (symbol, value) pairs off the
// stack in LIFO order, then the base object, and builds a
// *value.UserObject with members installed in their original source order
// (spec.md §3's insertion-ordered UserObject with optional base pointer).
// A non-UserObject base (typically value.Null, for bare "new { ... }")
// means no prototype, matching value.NewUserObjectWithBase(nil)'s
// equivalence to value.NewUserObject().
func (m *Machine) newUserObject(cl *Closure, n int) value.Object {
	type member struct {
		sym value.Symbol
		val value.Object
	}
	members := make([]member, n)
	for i := n - 1; i >= 0; i-- {
		v := cl.pop()
		s, ok := cl.pop().(value.Symbol)
		if !ok {
			panic(&FatalError{Message: "new object member name is not a symbol"})
		}
		members[i] = member{sym: s, val: v}
	}

	base := cl.pop()
	proto, _ := base.(*value.UserObject)
	obj := value.NewUserObjectWithBase(proto)
	for _, mem := range members {
		if err := obj.SetProperty(uint32(mem.sym), mem.sym.Name(), mem.val); err != nil {
			m.Throw(exceptionObjectFromError(err))
		}
	}
	return obj
}

func carOf(v value.Object) value.Object {
	if l, ok := v.(*value.List); ok {
		return l.Head
	}
	panic(&FatalError{Message: "car of non-list"})
}

func cdrOf(v value.Object) value.Object {
	if l, ok := v.(*value.List); ok {
		return l.Tail
	}
	panic(&FatalError{Message: "cdr of non-list"})
}

func leftOf(v value.Object) value.Object {
	if p, ok := v.(*value.Pair); ok {
		return p.Left
	}
	panic(&FatalError{Message: "left of non-pair"})
}

func rightOf(v value.Object) value.Object {
	if p, ok := v.(*value.Pair); ok {
		return p.Right
	}
	panic(&FatalError{Message: "right of non-pair"})
}

func countOf(v value.Object) value.Object {
	switch t := v.(type) {
	case *value.ByteArray:
		return value.NewInt64(int64(t.Len()))
	case value.String:
		return value.NewInt64(int64(t.V.Len()))
	}
	panic(&FatalError{Message: "count/length of unsupported kind"})
}

// accessorLoad implements the LdA/LdD/LdLeft/LdRight/LdStart/LdEnd/LdCount/
// LdLength opcode group (spec.md §4.1): each fast-paths the intrinsic kind
// via fastPath (nil when there is none, e.g. LdStart/LdEnd have no built-in
// kind yet) and otherwise falls back to a plain getProperty using sym.
func (m *Machine) accessorLoad(target value.Object, fastPath func(value.Object) value.Object, sym symbol.ID) value.Object {
	if fastPath != nil {
		if ok := isFastPathable(target); ok {
			return fastPath(target)
		}
	}
	v, err := m.getProperty(target, symbolNameOf(sym))
	if err != nil {
		m.Throw(exceptionObjectFromError(err))
	}
	return v
}

func isFastPathable(v value.Object) bool {
	switch v.(type) {
	case *value.List, *value.Pair, *value.ByteArray, value.String:
		return true
	default:
		return false
	}
}

func symbolNameOf(id symbol.ID) string {
	if name, ok := symbol.Lookup(id); ok {
		return name
	}
	return ""
}

func (m *Machine) getProperty(target value.Object, name string) (value.Object, error) {
	pg, ok := target.(value.PropertyGetter)
	if !ok {
		return nil, &NativeMethodError{Name: name, Message: "kind does not support property access"}
	}
	v, ok := pg.GetProperty(uint32(symbol.Intern(name)), name)
	if !ok {
		return nil, &NativeMethodError{Name: name, Message: "no such property"}
	}
	return v, nil
}

func (m *Machine) setProperty(target value.Object, name string, v value.Object) error {
	ps, ok := target.(value.PropertySetter)
	if !ok {
		return &NativeMethodError{Name: name, Message: "kind does not support property assignment"}
	}
	return ps.SetProperty(uint32(symbol.Intern(name)), name, v)
}

// loadGlobal and storeGlobal implement LdX/StX/StpX (spec.md §3: "Globals
// live in the root closure's UserObject-backed variable map"). A miss in
// the program's own globals falls through to the Machine's host-supplied
// Predeclared bindings, mirroring the teacher's Thread.Predeclared.
func (m *Machine) loadGlobal(cl *Closure, name string) value.Object {
	g := cl.globalClosure()
	id := symbol.Intern(name)
	if v, ok := g.Globals.GetProperty(uint32(id), name); ok {
		return v
	}
	if v, ok := m.Predeclared.GetProperty(uint32(id), name); ok {
		return v
	}
	return value.Null
}

func (m *Machine) storeGlobal(cl *Closure, name string, v value.Object) {
	g := cl.globalClosure()
	id := symbol.Intern(name)
	_ = g.Globals.SetProperty(uint32(id), name, v)
}

// doCall implements the Call/CallN opcode group: pop argc values, pop the
// callee, dispatch (spec.md §4.1's "Calls").
func (m *Machine) doCall(cl *Closure, argc int) (value.Object, error) {
	args := make([]value.Object, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = cl.pop()
	}
	callee := cl.pop()
	return m.call(callee, args)
}

// doMet implements the Met/MetN opcode group: pop argc values, pop the
// receiver, resolve name on it and dispatch (compiler.go's "[[$dot a op] b]"
// lowering). Built-in arithmetic/comparison operator names are special-
// cased directly against the receiver's Kind (DESIGN.md's Open Question
// decision); anything else falls back to a property lookup expecting a
// Caller value (e.g. a UserObject holding a user-defined method).
func (m *Machine) doMet(cl *Closure, name string, argc int) (value.Object, error) {
	args := make([]value.Object, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = cl.pop()
	}
	recv := cl.pop()

	if argc == 1 {
		if v, ok := builtinOperator(name, recv, args[0]); ok {
			return v, nil
		}
	}
	if v, handled, err := m.builtinMethod(name, recv, args); handled {
		return v, err
	}

	v, err := m.getProperty(recv, name)
	if err != nil {
		return nil, err
	}
	return m.call(v, args)
}
