// Package value implements Smile's tagged Object hierarchy (spec.md §3):
// every runtime value is an Object carrying a Kind tag that selects its
// capability set (toBool, toString, getProperty/setProperty, compareEqual,
// hash, getSourceLocation). Capability dispatch is expressed the way the
// teacher's lang/machine/value.go expresses it -- optional interfaces that a
// concrete Kind may or may not implement -- generalized with an explicit
// Kind() method so the interpreter's opcode dispatch (which fast-paths
// intrinsic kinds, e.g. Car/Cdr/LdLength) can switch on it directly instead
// of paying for a type assertion everywhere.
package value

// Kind tags the dynamic type of an Object, selecting its vtable and its
// unboxed payload layout on the operand stack (spec.md §3).
type Kind uint8

//nolint:revive
const (
	KindNull Kind = iota
	KindBool
	KindByte
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindReal32
	KindReal64
	KindReal128
	KindFloat32
	KindFloat64
	KindFloat128
	KindBigInt
	KindBigReal
	KindBigFloat
	KindSymbol
	KindChar
	KindUni
	KindString
	KindPair
	KindList
	KindFunction
	KindUserObject
	KindSyntax
	KindNonterminal
	KindByteArray
	KindTimestamp

	// Unboxed* mirror their boxed numeric counterpart but tag a value that
	// lives in the operand stack's unboxed slots rather than behind an
	// interface, per spec.md §3. The Go implementation keeps all Objects
	// behind the Object interface (an interface value already distinguishes
	// immediate scalars without a second boxing layer), so no value in this
	// module reports one of these kinds, and no function maps a boxed Kind to
	// its unboxed counterpart.
	KindUnboxedByte
	KindUnboxedInt16
	KindUnboxedInt32
	KindUnboxedInt64
	KindUnboxedInt128
	KindUnboxedReal32
	KindUnboxedReal64
	KindUnboxedReal128
	KindUnboxedFloat32
	KindUnboxedFloat64
	KindUnboxedFloat128

	numKinds
)

var kindNames = [numKinds]string{
	KindNull: "Null", KindBool: "Bool", KindByte: "Byte", KindInt16: "Int16",
	KindInt32: "Int32", KindInt64: "Int64", KindInt128: "Int128",
	KindReal32: "Real32", KindReal64: "Real64", KindReal128: "Real128",
	KindFloat32: "Float32", KindFloat64: "Float64", KindFloat128: "Float128",
	KindBigInt: "BigInt", KindBigReal: "BigReal", KindBigFloat: "BigFloat",
	KindSymbol: "Symbol", KindChar: "Char", KindUni: "Uni", KindString: "String",
	KindPair: "Pair", KindList: "List", KindFunction: "Function",
	KindUserObject: "UserObject", KindSyntax: "Syntax", KindNonterminal: "Nonterminal",
	KindByteArray: "ByteArray", KindTimestamp: "Timestamp",
	KindUnboxedByte: "UnboxedByte", KindUnboxedInt16: "UnboxedInt16",
	KindUnboxedInt32: "UnboxedInt32", KindUnboxedInt64: "UnboxedInt64",
	KindUnboxedInt128: "UnboxedInt128", KindUnboxedReal32: "UnboxedReal32",
	KindUnboxedReal64: "UnboxedReal64", KindUnboxedReal128: "UnboxedReal128",
	KindUnboxedFloat32: "UnboxedFloat32", KindUnboxedFloat64: "UnboxedFloat64",
	KindUnboxedFloat128: "UnboxedFloat128",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "<invalid kind>"
	}
	return kindNames[k]
}

// SourceLocation identifies the file, line and column a value (most often a
// syntax tree node or a compiled instruction) originates from.
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
}

func (sl SourceLocation) String() string {
	if sl.Filename == "" {
		return "-"
	}
	return sl.Filename + ":" + itoa(sl.Line) + ":" + itoa(sl.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SecurityBits gate what an UserObject (or any security-aware Object) may be
// used for. Clearing bits freezes an object per spec.md §3.
type SecurityBits uint8

const (
	Readable SecurityBits = 1 << iota
	Writable
	Appendable
	Removable

	AllSecurity = Readable | Writable | Appendable | Removable
)

// Object is the capability set every runtime value implements (spec.md §3's
// "each kind has a vtable").
type Object interface {
	// Kind returns the dynamic tag selecting this value's vtable.
	Kind() Kind
	// ToBool implements the "truthy" coercion used by Bool/Bt/Bf opcodes.
	ToBool() bool
	// ToString renders the value's default textual representation.
	ToString() string
	// Hash returns a hash consistent with CompareEqual (spec.md Invariant 3).
	Hash() uint64
	// GetSourceLocation returns the location this value was parsed/compiled
	// from, or the zero SourceLocation if none is tracked.
	GetSourceLocation() SourceLocation
}

// Equaler is implemented by kinds with nontrivial equality (spec.md
// Invariant 3: compareEqual is reflexive and symmetric for all kinds).
// Kinds without this interface compare equal only by identity.
type Equaler interface {
	Object
	CompareEqual(other Object) bool
}

// Ordered is implemented by kinds with a total or partial order beyond
// equality (spec.md §4.5's compare/cmp returning -1/0/+1).
type Ordered interface {
	Object
	// Cmp compares the receiver to other, returning negative/zero/positive
	// for less/equal/greater. The second result is false if other is not
	// comparable to the receiver (e.g. a different Kind).
	Cmp(other Object) (int, bool)
}

// PropertyGetter is implemented by kinds that answer dotted property
// access (LdProp).
type PropertyGetter interface {
	Object
	GetProperty(sym uint32, name string) (Object, bool)
}

// PropertySetter is implemented by kinds that accept dotted property
// assignment (StProp/StpProp), subject to their SecurityBits.
type PropertySetter interface {
	Object
	SetProperty(sym uint32, name string, v Object) error
}

// Caller is implemented by any value that may appear as the target of a
// Call/Met instruction. The concrete invocation mechanics (allocating a
// Closure, running bytecode) live in package machine, whose Function and
// NativeFunction types implement this interface for user-defined and
// native functions; keeping the
// interface itself in package value lets UserObject and other kinds type-
// assert a property value without importing machine.
type Caller interface {
	Object
	Name() string
}
