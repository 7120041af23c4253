package machine

import (
	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
)

// symbolKind and symbolMessage name the two properties every uncaught-error
// exception object carries (spec.md §4.1's "kind: message" formatting).
var (
	symbolKind    = symbol.Intern("kind")
	symbolMessage = symbol.Intern("message")
)

// ResultKind tags which branch of the three-valued EvalResult is populated
// (spec.md §4.1's "Result taxonomy").
type ResultKind uint8

const (
	ResultValue ResultKind = iota
	ResultException
	ResultBreak
)

// EvalResult is the return type of Eval_Run and Eval_Continue (spec.md §6's
// "Embedding API").
type EvalResult struct {
	Kind      ResultKind
	Value     value.Object
	Exception value.Object
	PC        uint32
}

// FatalError is the "should never happen from validly-compiled bytecode"
// sink: illegal opcodes, exceeding MaxSteps, and similar (an operand stack
// that outgrows a bad MaxStack computation panics with a Go runtime index
// error instead). It is raised as a Go panic rather than returned, matching
// the original C runtime's SMILE_VM_STACK_NOT_CATCHABLE class of error,
// which cannot be handled by Smile-level exception catching.
type FatalError struct{ Message string }

func (e *FatalError) Error() string { return "fatal: " + e.Message }

// exceptionSignal is the panic payload Throw raises (spec.md §4.1's
// "Exception model"). Machine.execute's deferred recover is the only place
// that catches it, turning it into a ResultException; nothing pushes an
// EscapeContinuation onto Machine.escapes, so a throw always unwinds to
// that top level.
type exceptionSignal struct{ obj value.Object }

// Machine is the embeddable interpreter: one Machine runs one program
// (spec.md §6's Eval_Run/Eval_Continue embedding API), executing on its own
// goroutine so that a Brk opcode can suspend mid-program and Eval_Continue
// can resume it later without having to reify the entire native Go call
// stack -- the idiomatic Go substitute for the original C interpreter's
// setjmp/longjmp-based suspension (spec.md §7 redesign flag).
type Machine struct {
	// Predeclared holds host-supplied bindings available to every global
	// lookup that misses the program's own globals, analogous to the
	// teacher's Thread.Predeclared.
	Predeclared *value.UserObject

	// MaxSteps bounds the number of instructions executed before the
	// program is aborted with a FatalError, mirroring the teacher's
	// Thread.MaxSteps safety valve. Zero means unlimited.
	MaxSteps uint64

	frames  []*Frame
	escapes []*EscapeContinuation

	toCaller chan EvalResult
	toMach   chan struct{}
	steps    uint64
	finished bool

	// fatalPanic carries a FatalError (or any other non-exceptionSignal
	// panic) recovered on the Machine's own goroutine back across to the
	// caller's goroutine, where startWithClosure/Eval_Continue re-panic with
	// it. A panic on the wrong goroutine would otherwise crash the whole
	// host process instead of surfacing to the code embedding this Machine.
	fatalPanic interface{}
}

// NewMachine returns a ready-to-use Machine with empty predeclared bindings.
func NewMachine() *Machine {
	return &Machine{Predeclared: value.NewUserObject()}
}

// PreallocateFrames grows the call-frame stack's capacity to n up front, so
// a program's first n nested calls don't each force a slice reallocation.
// Purely a performance hint (internal/vmconfig's SMILE_STACK_SIZE knob); a
// program that recurses deeper than n still grows the stack normally.
func (m *Machine) PreallocateFrames(n int) {
	if n > cap(m.frames) {
		m.frames = make([]*Frame, 0, n)
	}
}

// Eval_Run executes tables' top-level function from the start (spec.md §6).
// Before running, it seeds the fresh global closure's Globals with
// tables.TopLevelSets -- the `($set target valueIdx)` pairs compiled.go
// documents as being "executed by the loader against a fresh global closure
// after fixing up symbol ids" -- so LdX lookups against those names succeed
// from the toplevel function's very first instruction.
func (m *Machine) Eval_Run(tables *compiler.CompiledTables) EvalResult {
	info := NewClosureInfo(tables.Toplevel, nil, KindGlobal)
	cl := NewClosure(info, nil)
	for _, ts := range tables.TopLevelSets {
		id := symbol.Intern(ts.Target)
		v := constAsObject(tables.Objects[ts.ValueIdx])
		_ = cl.Globals.SetProperty(uint32(id), ts.Target, v)
	}
	fn := NewFunction(info, nil)
	return m.startWithClosure(fn, cl, nil)
}

// EvalFunction executes fn with the given arguments from the start; used by
// the loader to invoke a specific compiled function rather than always the
// toplevel one.
func (m *Machine) EvalFunction(fn *Function, args []value.Object) EvalResult {
	return m.start(fn, args)
}

func (m *Machine) start(fn *Function, args []value.Object) EvalResult {
	return m.startWithClosure(fn, nil, args)
}

// startWithClosure is start's variant for a caller that already constructed
// the entry closure (Eval_Run, which seeds TopLevelSets into it first); cl
// nil means "let execute build one the normal way", matching start's prior
// behavior.
func (m *Machine) startWithClosure(fn *Function, cl *Closure, args []value.Object) EvalResult {
	m.toCaller = make(chan EvalResult)
	m.toMach = make(chan struct{})
	m.finished = false

	go m.execute(fn, cl, args)
	return m.awaitResult()
}

// Eval_Continue resumes execution after a Break result (spec.md §6).
func (m *Machine) Eval_Continue() EvalResult {
	if m.finished {
		panic(&FatalError{Message: "Eval_Continue called after the program already finished"})
	}
	m.toMach <- struct{}{}
	return m.awaitResult()
}

// awaitResult receives execute's next result and, if it recovered a fatal
// panic, re-raises it here on the caller's own goroutine (see
// Machine.fatalPanic) instead of leaving it to crash the goroutine it
// actually occurred on.
func (m *Machine) awaitResult() EvalResult {
	res := <-m.toCaller
	if m.fatalPanic != nil {
		p := m.fatalPanic
		m.fatalPanic = nil
		panic(p)
	}
	return res
}

func (m *Machine) execute(fn *Function, cl *Closure, args []value.Object) {
	defer func() {
		m.finished = true
		if r := recover(); r != nil {
			if es, ok := r.(*exceptionSignal); ok {
				m.toCaller <- EvalResult{Kind: ResultException, Exception: es.obj}
				return
			}
			m.fatalPanic = r
			m.toCaller <- EvalResult{}
			return
		}
	}()

	var v value.Object
	var err error
	if cl != nil {
		v, err = m.callUserWithClosure(fn, cl, args)
	} else {
		v, err = m.callUser(fn, args)
	}
	if err != nil {
		m.toCaller <- EvalResult{Kind: ResultException, Exception: exceptionObjectFromError(err)}
		return
	}
	m.toCaller <- EvalResult{Kind: ResultValue, Value: v}
}

// Throw raises obj as an exceptionSignal panic, which unwinds to
// Machine.execute's top-level recover; Machine.escapes is not consulted.
func (m *Machine) Throw(obj value.Object) {
	panic(&exceptionSignal{obj: obj})
}

// exceptionObjectFromError formats a Go error as the "kind: message"
// exception object shape spec.md §4.1 describes for uncaught throws.
func exceptionObjectFromError(err error) value.Object {
	uo := value.NewUserObject()
	kind := "error"
	if _, ok := err.(*NativeMethodError); ok {
		kind = "native_method_error"
	}
	_ = uo.SetProperty(uint32(symbolKind), "kind", value.NewString(kind))
	_ = uo.SetProperty(uint32(symbolMessage), "message", value.NewString(err.Error()))
	return uo
}

func (m *Machine) step() bool {
	m.steps++
	return m.MaxSteps == 0 || m.steps < m.MaxSteps
}

// suspend hands control back to the caller of Eval_Run/Eval_Continue with a
// Break result (the Brk opcode, spec.md §4.1), and blocks until resumed.
func (m *Machine) suspend(pc uint32) {
	m.toCaller <- EvalResult{Kind: ResultBreak, PC: pc}
	<-m.toMach
}
