package machine

import (
	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/value"
)

// call dispatches a Call/Met instruction's callee to either a native or a
// user-defined function (spec.md §4.1's "Calls" opcode group). It is the
// counterpart of the teacher's Callable.Call, generalized to value.Object's
// Caller interface instead of a machine-local Value hierarchy.
func (m *Machine) call(callee value.Object, args []value.Object) (value.Object, error) {
	switch fn := callee.(type) {
	case *NativeFunction:
		if err := fn.CheckArgs(args); err != nil {
			return nil, err
		}
		m.frames = append(m.frames, &Frame{Callable: fn})
		defer m.popFrame()
		return fn.Body(m, args)
	case *Function:
		return m.callUser(fn, args)
	default:
		panic(&FatalError{Message: "call target is not a Caller: " + callee.ToString()})
	}
}

func (m *Machine) popFrame() { m.frames = m.frames[:len(m.frames)-1] }

// callUser allocates a fresh Closure for fn (spec.md §4.1 call semantics,
// step 2: "allocate a Closure with parent = function.lexicalEnv, move the
// top argc stack items into argument slots per ArgPolicy, push the closure,
// set pc=0"), binds args, and drives the interpreter loop to completion
// (Ret from this closure, or an escaping exception/FatalError).
func (m *Machine) callUser(fn *Function, args []value.Object) (value.Object, error) {
	return m.callUserWithClosure(fn, NewClosure(fn.Info, fn.LexicalEnv), args)
}

// callUserWithClosure is callUser's variant for callers that already built
// cl themselves -- Eval_Run, so it can seed a fresh global closure's Globals
// from CompiledTables.TopLevelSets before the toplevel function's first
// instruction runs.
func (m *Machine) callUserWithClosure(fn *Function, cl *Closure, args []value.Object) (value.Object, error) {
	if err := bindArgs(cl, fn.Info.Fn, args); err != nil {
		return nil, err
	}

	m.frames = append(m.frames, &Frame{Closure: cl, Callable: fn})
	defer m.popFrame()

	return m.run(cl)
}

// bindArgs moves args into cl.Args per fn.ArgPolicy (spec.md §4.1):
// ArgExact rejects any count other than len(fn.Args); under ArgDiscard and
// ArgVariadic missing trailing arguments default to Null, and excess
// arguments are dropped or collected into the last argument slot.
func bindArgs(cl *Closure, fn *compiler.UserFunctionInfo, args []value.Object) error {
	declared := len(fn.Args)

	switch fn.ArgPolicy {
	case compiler.ArgExact:
		if len(args) != declared {
			return &NativeMethodError{Name: fn.Name, Message: "wrong number of arguments"}
		}
		copy(cl.Args, args)
	case compiler.ArgDiscard:
		n := declared
		if len(args) < n {
			n = len(args)
		}
		copy(cl.Args, args[:n])
		for i := n; i < declared; i++ {
			cl.Args[i] = value.Null
		}
	case compiler.ArgVariadic:
		if declared == 0 {
			return &NativeMethodError{Name: fn.Name, Message: "variadic function declares no argument slots"}
		}
		fixed := declared - 1
		n := fixed
		if len(args) < n {
			n = len(args)
		}
		copy(cl.Args, args[:n])
		for i := n; i < fixed; i++ {
			cl.Args[i] = value.Null
		}
		var rest []value.Object
		if len(args) > fixed {
			rest = args[fixed:]
		}
		cl.Args[fixed] = value.OfSlice(rest...)
	default:
		return &NativeMethodError{Name: fn.Name, Message: "unknown argument policy"}
	}
	return nil
}
