package compiler

// Binding names a local, argument or free variable slot; the compiler
// tracks only the name (the slot index is implied by position in the
// owning UserFunctionInfo's slice) since type information lives on the
// runtime value, not the binding (spec.md §3).
type Binding struct {
	Name string
}

// SourceEntry maps a byte offset in a segment's Code to the source location
// it was compiled from (spec.md §6's "source-location table").
type SourceEntry struct {
	PC       uint32
	Filename string
	Line     int
	Column   int
}

// ArgPolicy controls how Call's runtime argc reconciles with a
// UserFunctionInfo's declared argument list (spec.md §4.1 call semantics,
// step 2): ArgExact rejects any other count; under ArgDiscard and
// ArgVariadic missing arguments default to Null, and excess arguments are
// either discarded or collected into a trailing list argument.
type ArgPolicy uint8

const (
	ArgExact    ArgPolicy = iota // argc must match len(Args) exactly
	ArgDiscard                   // excess args beyond len(Args) are dropped
	ArgVariadic                  // excess args are collected into the last argument slot as a list
)

// UserFunctionInfo is the static, serializable description of one compiled
// function: its bytecode segment plus the metadata the interpreter needs to
// set up a Closure for it (spec.md §4.1, §6). It is the direct analog of
// the teacher's lang/compiler.Funcode, trimmed of the defer/catch block
// tables Smile has no equivalent of: exceptions unwind through the VM's
// escape-continuation mechanism rather than compiled try/defer regions.
type UserFunctionInfo struct {
	Tables *CompiledTables

	Name string
	Code []byte // bytecode, as encoded by the opcode/arg pairs in this package

	Args     []Binding
	Locals   []Binding
	Freevars []Binding

	ArgPolicy ArgPolicy
	MaxStack  int

	Sources []SourceEntry
}

// CompiledTables is the root of a compiled unit (spec.md §6): the interned
// strings table, the objects table of literal non-string constants, the
// symbol-name table, the top-level function, and the table of nested
// functions (Functions does not include Toplevel). Direct analog of the teacher's lang/compiler.Program, renamed to
// match spec.md's on-disk compiled-unit vocabulary.
type CompiledTables struct {
	Filename string

	Strings []string      // interned string constants, indexed by LdStr
	Objects []interface{} // literal object constants (numbers, lists...), indexed by LdObj

	// Names holds the symbol spellings referenced by LdX/StX/StpX/LdProp/
	// StProp/StpProp/MetN, resolved at load time by re-interning (spec.md §6).
	Names []string

	Toplevel  *UserFunctionInfo
	Functions []*UserFunctionInfo

	// TopLevelSets records the (target, value-index) pairs the loader
	// executes against a fresh global closure after fixing up symbol ids
	// (spec.md §6).
	TopLevelSets []TopLevelSet
}

// TopLevelSet is one `[$set]` pair from the bootstrap precompiler's
// static-data image (spec.md §6).
type TopLevelSet struct {
	Target   string
	ValueIdx int
}

// AddFunction appends fn to the table, assigning it the next function
// index and linking it back to ct.
func (ct *CompiledTables) AddFunction(fn *UserFunctionInfo) int {
	fn.Tables = ct
	ct.Functions = append(ct.Functions, fn)
	return len(ct.Functions) - 1
}
