package machine

import "github.com/mna/smile/lang/value"

// equalObjects is the structural-or-identity equality SuperEq/SuperNe use,
// mirroring lang/value's own unexported helper of the same name (pair.go)
// since that one isn't exported across package boundaries: consult Equaler
// when the kind implements it, fall back to Go identity otherwise (spec.md
// Invariant 3).
func equalObjects(a, b value.Object) bool {
	if ea, ok := a.(value.Equaler); ok {
		return ea.CompareEqual(b)
	}
	return a == b
}

// cmpObjects orders a against b for the comparison-operator Met dispatch
// (<, >, <=, >=, ==, != lowered to method calls on the left operand,
// DESIGN.md's Open Question decision): a must implement Ordered.
func cmpObjects(a, b value.Object) (int, bool) {
	oa, ok := a.(value.Ordered)
	if !ok {
		return 0, false
	}
	return oa.Cmp(b)
}

// identityEqual implements the Is opcode's raw identity comparison
// (spec.md §4.1): a plain `==` on every value.Object kind except String,
// which wraps a strval.String holding a byte slice and so isn't a
// comparable Go type -- comparing two String operands directly would panic
// at runtime instead of returning false. Strings have no separate identity
// from their value, so CompareEqual already gives the right answer for
// them.
func identityEqual(a, b value.Object) bool {
	if _, ok := a.(value.String); ok {
		return equalObjects(a, b)
	}
	return a == b
}
