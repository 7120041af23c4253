package machine

// Universe holds the bindings built into the language itself, as opposed to
// Machine.Predeclared's host-supplied bindings (spec.md §6's embedding API
// distinguishes the two the same way the teacher's Thread separated
// Predeclared from its own Starlark universe). Empty for now: no stdlib
// global function has been wired up yet (SPEC_FULL.md's Loader is
// deliberately specified only at the on-disk-layout interface level, per
// spec.md's own external-collaborator scoping of the bootstrap
// precompiler), but lang/resolver.ResolveFiles already needs an
// isUniversal predicate to classify names, so this is where that set lives
// once something populates it.
var Universe = map[string]struct{}{}

// IsUniverse reports whether name is a built-in language-level binding, the
// isUniversal predicate lang/resolver.ResolveFiles expects.
func IsUniverse(name string) bool {
	_, ok := Universe[name]
	return ok
}
