package value

// NullObject is Smile's singular absent/empty value: it doubles as the empty
// list and the "no value" result (spec.md §3).
type nullObject struct{}

// Null is the shared NullObject singleton.
var Null Object = nullObject{}

func (nullObject) Kind() Kind                    { return KindNull }
func (nullObject) ToBool() bool                  { return false }
func (nullObject) ToString() string              { return "null" }
func (nullObject) Hash() uint64                  { return 0 }
func (nullObject) GetSourceLocation() SourceLocation { return SourceLocation{} }
func (nullObject) CompareEqual(other Object) bool {
	_, ok := other.(nullObject)
	return ok
}

// IsNull reports whether o is the Null singleton.
func IsNull(o Object) bool {
	_, ok := o.(nullObject)
	return ok
}

var _ Equaler = Null
