// Package machine implements the bytecode interpreter that executes
// compiler.CompiledTables (spec.md §4.1): Closure activation records,
// escape-continuation based return/exception unwinding, native-function
// argument checking, and the state-machine each/map/where/count natives.
// Much of its shape -- a Thread owning a call stack of Frames, a dispatch
// loop driven by a big opcode switch, cell-boxing for captured locals -- is
// adapted from the teacher's Starlark-derived lang/machine package,
// generalized to operate on value.Object instead of a separate machine-local
// Value hierarchy (spec.md §3 already gives every runtime value a single
// tagged Object type, so machine has no need for its own).
package machine

import (
	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/value"
)

// ClosureKind tags what a ClosureInfo describes (spec.md §3).
type ClosureKind uint8

const (
	KindGlobal ClosureKind = iota
	KindLocal
	KindPseudo
)

// ClosureInfo is the static shape of an activation record: how many
// argument/local slots it needs, how deep its operand stack can grow, and
// its place in the lexical nesting chain (spec.md §3's "ClosureInfo
// describes an activation record's static shape").
type ClosureInfo struct {
	Parent *ClosureInfo
	Global *ClosureInfo

	Kind ClosureKind

	NumVariables int
	NumArguments int
	TempSize     int // max operand stack depth

	Fn *compiler.UserFunctionInfo

	// NameToSlot resolves a variable name to its local slot, when the
	// resolver chose to keep names around for debugging / dynamic lookup.
	NameToSlot map[string]int
}

// NewClosureInfo derives a ClosureInfo from a compiled function.
func NewClosureInfo(fn *compiler.UserFunctionInfo, parent *ClosureInfo, kind ClosureKind) *ClosureInfo {
	global := parent
	if global == nil {
		global = nil
	} else if global.Kind != KindGlobal {
		global = parent.Global
	}
	ci := &ClosureInfo{
		Parent:       parent,
		Kind:         kind,
		NumVariables: len(fn.Locals),
		NumArguments: len(fn.Args),
		TempSize:     fn.MaxStack,
		Fn:           fn,
	}
	if kind == KindGlobal {
		ci.Global = ci
	} else {
		ci.Global = global
	}
	return ci
}

// Closure is the runtime activation record (spec.md §3): separate slices
// for arguments, locals and the operand stack, plus a live stack-top index.
// Globals live in the root closure's UserObject-backed variable map
// (spec.md §3), reached by walking Parent to the KindGlobal closure.
type Closure struct {
	Info   *ClosureInfo
	Parent *Closure

	Args   []value.Object
	Locals []value.Object
	Stack  []value.Object
	Top    int

	// Globals is non-nil only on the root (KindGlobal) closure: it backs
	// LdX/StX/StpX global variable access.
	Globals *value.UserObject

	PC uint32
}

// NewClosure allocates a Closure for info, chained to parent.
func NewClosure(info *ClosureInfo, parent *Closure) *Closure {
	c := &Closure{
		Info:   info,
		Parent: parent,
		Args:   make([]value.Object, info.NumArguments),
		Locals: make([]value.Object, info.NumVariables),
		Stack:  make([]value.Object, info.TempSize),
	}
	if info.Kind == KindGlobal {
		c.Globals = value.NewUserObject()
	}
	return c
}

// globalClosure walks the Parent chain to the closure backing global
// variables.
func (c *Closure) globalClosure() *Closure {
	cur := c
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

func (c *Closure) push(v value.Object) {
	c.Stack[c.Top] = v
	c.Top++
}

func (c *Closure) pop() value.Object {
	c.Top--
	return c.Stack[c.Top]
}

func (c *Closure) peek(depth int) value.Object {
	return c.Stack[c.Top-1-depth]
}

// EscapeKind distinguishes the two non-local exit mechanisms Smile supports
// (spec.md §3).
type EscapeKind uint8

const (
	EscapeReturn EscapeKind = iota
	EscapeException
)

// EscapeContinuation describes a captured non-local exit (spec.md §3,
// §4.1's "Exception model"). Nothing in this package creates one: Ret
// returns through run, and Throw unwinds by panicking (see exceptionSignal).
type EscapeContinuation struct {
	Kind        EscapeKind
	IsValid     bool
	Result      value.Object
	ResumePoint int // index into the interpreter's escape stack to unwind to
}
