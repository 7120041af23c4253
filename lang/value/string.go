package value

import "github.com/mna/smile/lang/strval"

// String is the boxed Kind wrapping an immutable UTF-8 byte sequence
// (lang/strval.String); see spec.md §4.4 for the full operation set, most of
// which lives on strval.String and is merely forwarded here for the
// Object/Ordered/Equaler vtable.
type String struct {
	V strval.String
}

// NewString wraps a copy of a Go string as a String Object.
func NewString(s string) String { return String{V: strval.New(s)} }

var EmptyString = String{V: strval.Empty}

func (s String) Kind() Kind       { return KindString }
func (s String) ToBool() bool     { return s.V.Len() > 0 }
func (s String) ToString() string { return s.V.Go() }
func (s String) Hash() uint64     { return strval.Hash64(s.V) }
func (s String) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (s String) CompareEqual(other Object) bool {
	os, ok := other.(String)
	return ok && strval.Compare(s.V, os.V) == 0
}

// Cmp implements Ordered for String, comparing byte-wise.
func (s String) Cmp(other Object) (int, bool) {
	os, ok := other.(String)
	if !ok {
		return 0, false
	}
	return strval.Compare(s.V, os.V), true
}

var (
	_ Equaler = String{}
)
