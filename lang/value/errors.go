package value

import "errors"

// Errors returned by PropertySetter/RemoveProperty implementations when a
// UserObject's SecurityBits forbid the requested mutation (spec.md §3).
var (
	ErrNotWritable   = errors.New("value: property is not writable")
	ErrNotAppendable = errors.New("value: object is not appendable")
	ErrNotRemovable  = errors.New("value: property is not removable")
	ErrNotReadable   = errors.New("value: object is not readable")

	// ErrIndexOutOfRange is returned by ByteArray's scalar and slice
	// accessors when an index or range falls outside the backing data.
	ErrIndexOutOfRange = errors.New("value: index out of range")
)
