package value

import (
	"sync/atomic"

	"github.com/mna/smile/lang/symbol"
)

// UserObject is an insertion-ordered mapping from symbol to Object, with an
// optional base pointer for prototypical inheritance: property lookup walks
// base until a symbol is found or base is nil (spec.md §3).
type UserObject struct {
	Base     *UserObject
	Security SecurityBits

	id    uint64 // identity hash source, assigned once at construction
	order []symbol.ID
	props map[symbol.ID]Object
}

var userObjectSeq uint64

// NewUserObject returns an empty UserObject with full security bits and no
// base (prototype).
func NewUserObject() *UserObject {
	return &UserObject{
		Security: AllSecurity,
		id:       atomic.AddUint64(&userObjectSeq, 1),
		props:    make(map[symbol.ID]Object),
	}
}

// NewUserObjectWithBase is like NewUserObject but chains to base for
// property lookups that miss locally.
func NewUserObjectWithBase(base *UserObject) *UserObject {
	uo := NewUserObject()
	uo.Base = base
	return uo
}

func (o *UserObject) Kind() Kind       { return KindUserObject }
func (o *UserObject) ToBool() bool     { return true }
func (o *UserObject) ToString() string { return "UserObject" }
func (o *UserObject) Hash() uint64     { return o.id }
func (o *UserObject) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (o *UserObject) CompareEqual(other Object) bool {
	oo, ok := other.(*UserObject)
	return ok && oo == o
}

// Own returns the value locally stored under sym (not walking Base), and
// whether it was present.
func (o *UserObject) Own(sym symbol.ID) (Object, bool) {
	v, ok := o.props[sym]
	return v, ok
}

// GetProperty implements PropertyGetter, walking the base chain.
func (o *UserObject) GetProperty(sym uint32, _ string) (Object, bool) {
	id := symbol.ID(sym)
	if o.Security&Readable == 0 {
		return nil, false
	}
	for cur := o; cur != nil; cur = cur.Base {
		if v, ok := cur.props[id]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetProperty implements PropertySetter: it always sets the property on the
// receiver (never on Base), honoring Writable for an existing key and
// Appendable for a new one.
func (o *UserObject) SetProperty(sym uint32, _ string, v Object) error {
	id := symbol.ID(sym)
	_, exists := o.props[id]
	if exists && o.Security&Writable == 0 {
		return ErrNotWritable
	}
	if !exists && o.Security&Appendable == 0 {
		return ErrNotAppendable
	}
	if !exists {
		o.order = append(o.order, id)
	}
	o.props[id] = v
	return nil
}

// RemoveProperty deletes sym from the receiver's own properties, honoring
// Removable.
func (o *UserObject) RemoveProperty(sym symbol.ID) error {
	if o.Security&Removable == 0 {
		return ErrNotRemovable
	}
	if _, ok := o.props[sym]; !ok {
		return nil
	}
	delete(o.props, sym)
	for i, s := range o.order {
		if s == sym {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return nil
}

// Freeze clears every security bit, making the object fully immutable.
func (o *UserObject) Freeze() { o.Security = 0 }

// Properties returns the own property symbols in insertion order.
func (o *UserObject) Properties() []symbol.ID {
	out := make([]symbol.ID, len(o.order))
	copy(out, o.order)
	return out
}

var (
	_ PropertyGetter = (*UserObject)(nil)
	_ PropertySetter = (*UserObject)(nil)
	_ Equaler        = (*UserObject)(nil)
)
