package machine

import (
	"golang.org/x/exp/constraints"

	"github.com/mna/smile/lang/value"
)

// builtinOperator resolves the small set of operator names the compiler can
// lower directly to a Met dispatch (DESIGN.md's Open Question decision):
// the six ordering/equality comparisons work generically across every Kind
// that implements value.Ordered/value.Equaler, while the four arithmetic
// operators are wired for the fixed-width integer family (Byte, Int16,
// Int32, Int64) that shares Int[U]'s generic method set. Arithmetic on
// Real/Float/BigInt/BigReal/BigFloat receivers is left for a follow-up pass
// (see DESIGN.md) -- the vtable-dispatch mechanism here already supports
// adding them without touching the interpreter loop.
func builtinOperator(name string, a, b value.Object) (value.Object, bool) {
	switch name {
	case "<", ">", "<=", ">=":
		cmp, ok := cmpObjects(a, b)
		if !ok {
			return nil, false
		}
		switch name {
		case "<":
			return value.Bool(cmp < 0), true
		case ">":
			return value.Bool(cmp > 0), true
		case "<=":
			return value.Bool(cmp <= 0), true
		default: // ">="
			return value.Bool(cmp >= 0), true
		}
	case "==":
		return value.Bool(equalObjects(a, b)), true
	case "!=":
		return value.Bool(!equalObjects(a, b)), true
	case "+", "-", "*", "/":
		return intArith(name, a, b)
	default:
		return nil, false
	}
}

func intArith(name string, a, b value.Object) (value.Object, bool) {
	switch av := a.(type) {
	case value.Byte:
		bv, ok := b.(value.Byte)
		if !ok {
			return nil, false
		}
		return intArithOp(name, av, bv)
	case value.Int16:
		bv, ok := b.(value.Int16)
		if !ok {
			return nil, false
		}
		return intArithOp(name, av, bv)
	case value.Int32:
		bv, ok := b.(value.Int32)
		if !ok {
			return nil, false
		}
		return intArithOp(name, av, bv)
	case value.Int64:
		bv, ok := b.(value.Int64)
		if !ok {
			return nil, false
		}
		return intArithOp(name, av, bv)
	default:
		return nil, false
	}
}

func intArithOp[U constraints.Unsigned](name string, a, b value.Int[U]) (value.Object, bool) {
	switch name {
	case "+":
		return a.Add(b), true
	case "-":
		return a.Sub(b), true
	case "*":
		return a.Mul(b), true
	case "/":
		r, ok := a.Div(b)
		return r, ok
	default:
		return nil, false
	}
}
