package resolver

import (
	"fmt"

	"github.com/mna/smile/lang/value"
)

// Scope classifies how a name resolves: local to the innermost enclosing
// $fn (or the module's own top-level function), free (a reference to an
// enclosing function's local, which promotes that local to a Cell), or
// dynamically against the module/environment global table. Smile has no
// "declare before use" restriction the way Starlark's resolver enforces --
// every $set target and every symbol a function never itself binds is a
// valid reference, resolved at run time by LdX/StX (lang/compiler's
// compileSymbolRef/compileSet fall back to exactly those opcodes for any
// name outside fc.args/fc.locals). Global/Predeclared/Universal exist so
// that distinction still shows up in tooling even though, unlike Starlark,
// none of them is ever a resolve-time error here.
type Scope uint8

const (
	Local Scope = iota
	Cell
	Free
	Global
	Predeclared
	Universal
)

var scopeNames = [...]string{
	Local:       "local",
	Cell:        "cell",
	Free:        "free",
	Global:      "global",
	Predeclared: "predeclared",
	Universal:   "universal",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid Scope %d>", s)
	}
	return scopeNames[s]
}

// A Binding ties together every use of a name that denotes the same
// variable within one lexical scope.
type Binding struct {
	Scope Scope

	// Index records the position in the enclosing function's Locals (if
	// Scope==Local) or FreeVars (if Scope==Free) slice. Zero for Global,
	// Predeclared and Universal.
	Index int

	// BlockName is filled in by NameBlocks mode: the name of the block that
	// owns this binding.
	BlockName string

	// Decl is the $fn parameter, or $set target, that introduced this
	// binding. Zero for Global/Predeclared/Universal bindings, which are
	// never introduced by one specific form.
	Decl value.Symbol
}

// Function groups the bindings that belong to one $fn body (or a module's
// top-level form list, which is itself the implicit top-level function).
type Function struct {
	// Definition is the $fn form this Function was built from, or the
	// *ast.Chunk for the module's top-level function.
	Definition value.Object
	Locals     []*Binding // this function's local/cell bindings, parameters first
	FreeVars   []*Binding // enclosing cells this function captures
}
