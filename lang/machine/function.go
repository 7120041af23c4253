package machine

import (
	"fmt"
	"sync/atomic"

	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/value"
)

// Function is a user-defined callable: a compiled function paired with the
// lexical closure it was created in, so nested functions can resolve free
// variables through Parent (spec.md §3).
type Function struct {
	Tables     *compiler.CompiledTables
	Info       *ClosureInfo
	LexicalEnv *Closure
	nameStr    string
	id         uint64
}

var functionSeq uint64

// NewFunction wraps fn (already resolved to a ClosureInfo) as a callable
// value, closing over env.
func NewFunction(info *ClosureInfo, env *Closure) *Function {
	return &Function{
		Tables:     info.Fn.Tables,
		Info:       info,
		LexicalEnv: env,
		nameStr:    info.Fn.Name,
		id:         atomic.AddUint64(&functionSeq, 1),
	}
}

func (f *Function) Kind() value.Kind { return value.KindFunction }
func (f *Function) ToBool() bool     { return true }
func (f *Function) ToString() string { return "function " + f.Name() }
func (f *Function) Hash() uint64     { return f.id }
func (f *Function) GetSourceLocation() value.SourceLocation {
	return value.SourceLocation{Filename: f.Tables.Filename}
}
func (f *Function) CompareEqual(other value.Object) bool {
	of, ok := other.(*Function)
	return ok && of == f
}
func (f *Function) Name() string { return f.nameStr }

var (
	_ value.Object = (*Function)(nil)
	_ value.Equaler = (*Function)(nil)
	_ value.Caller  = (*Function)(nil)
)

// ArgCheck is one (kindMask, kindExpected) type-check pair from spec.md
// §4.1's native-argument checking: kindMask selects which bits of the
// argument's Kind are significant, kindExpected is the value they must
// equal once masked. A zero kindMask always passes (the argument is
// untyped).
type ArgCheck struct {
	KindMask     uint64
	KindExpected uint64
}

// KindBit returns 1 << k.
func KindBit(k value.Kind) uint64 { return 1 << uint(k) }

func (c ArgCheck) accepts(k value.Kind) bool {
	if c.KindMask == 0 {
		return true
	}
	return uint64(k)&c.KindMask == c.KindExpected
}

// NativeBody is the Go implementation of a native function. It may return a
// *StateMachine instead of a value to yield iteration control back to the
// interpreter (spec.md §4.1's "state-machine natives").
type NativeBody func(m *Machine, args []value.Object) (value.Object, error)

// NativeFunction is a built-in callable with declared arity and per-argument
// type checks (spec.md §4.1's "Native-argument checking").
type NativeFunction struct {
	NameStr string
	MinArgs int
	MaxArgs int // -1 means unbounded
	Checks  []ArgCheck
	Body    NativeBody
}

func (n *NativeFunction) Kind() value.Kind       { return value.KindFunction }
func (n *NativeFunction) ToBool() bool           { return true }
func (n *NativeFunction) ToString() string       { return "native function " + n.NameStr }
func (n *NativeFunction) Hash() uint64           { return uint64(len(n.NameStr)) }
func (n *NativeFunction) GetSourceLocation() value.SourceLocation { return value.SourceLocation{} }
func (n *NativeFunction) CompareEqual(other value.Object) bool {
	on, ok := other.(*NativeFunction)
	return ok && on == n
}
func (n *NativeFunction) Name() string { return n.NameStr }

var (
	_ value.Object = (*NativeFunction)(nil)
	_ value.Caller = (*NativeFunction)(nil)
)

// CheckArgs validates args against n's arity and type checks, returning a
// native_method_error on failure (spec.md §4.1).
func (n *NativeFunction) CheckArgs(args []value.Object) error {
	argc := len(args)
	if argc < n.MinArgs || (n.MaxArgs >= 0 && argc > n.MaxArgs) {
		return &NativeMethodError{Name: n.NameStr, Message: fmt.Sprintf(
			"expects %s, got %d", arityDescription(n.MinArgs, n.MaxArgs), argc)}
	}
	if len(n.Checks) == 0 {
		return nil
	}
	for i, a := range args {
		var c ArgCheck
		if i < len(n.Checks) {
			c = n.Checks[i]
		} else {
			// the last check repeats to cover the tail (spec.md §4.1).
			c = n.Checks[len(n.Checks)-1]
		}
		if !c.accepts(a.Kind()) {
			return &NativeMethodError{Name: n.NameStr, Message: fmt.Sprintf(
				"argument %d: unexpected kind %s", i+1, a.Kind())}
		}
	}
	return nil
}

func arityDescription(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d argument(s)", min)
	case min == max:
		return fmt.Sprintf("exactly %d argument(s)", min)
	default:
		return fmt.Sprintf("between %d and %d argument(s)", min, max)
	}
}

// NativeMethodError is the error spec.md §4.1 calls native_method_error,
// thrown (as a Smile exception object, see Throw) when a native's arity or
// argument types don't match its declaration.
type NativeMethodError struct {
	Name    string
	Message string
}

func (e *NativeMethodError) Error() string {
	return fmt.Sprintf("native_method_error: %s: %s", e.Name, e.Message)
}
