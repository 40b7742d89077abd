// Package types holds the runtime type identities and the immutable table of
// user-defined data types that compiled programs register at startup.
package types

// TypeID identifies a runtime type. Every value carries exactly one TypeID.
//
// Independently compiled modules may produce distinct TypeID instances for the
// same logical type, so identity is decided by Same rather than by pointer
// comparison alone.
type TypeID struct {
	Name string
}

// New returns a fresh TypeID with the given name.
func New(name string) *TypeID {
	return &TypeID{Name: name}
}

// String returns the type name.
func (t *TypeID) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Same reports whether a and b denote the same type: either the same
// instance or the same name.
func Same(a, b *TypeID) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Name == b.Name
}

// Builtin type identities.
var (
	Unknown   = &TypeID{Name: "Unknown"}
	Unit      = &TypeID{Name: "Unit"}
	Bool      = &TypeID{Name: "Bool"}
	Byte      = &TypeID{Name: "Byte"}
	Int16     = &TypeID{Name: "Int16"}
	Int32     = &TypeID{Name: "Int32"}
	Int       = &TypeID{Name: "Int"}
	Float64   = &TypeID{Name: "Float"}
	String    = &TypeID{Name: "String"}
	Closure   = &TypeID{Name: "Closure"}
	Array     = &TypeID{Name: "Array"}
	ByteArray = &TypeID{Name: "ByteArray"}
	Var       = &TypeID{Name: "Var"}
	Option    = &TypeID{Name: "Option"}
)

var primitives = []*TypeID{Unit, Bool, Byte, Int16, Int32, Int, Float64, String, Closure, Array, ByteArray}

// IsPrimitive reports whether t is one of the builtin scalar or container
// types. Option, Var and Unknown are not primitives.
func IsPrimitive(t *TypeID) bool {
	for _, p := range primitives {
		if Same(t, p) {
			return true
		}
	}
	return false
}

// IsNumeric reports whether t is one of the numeric widths.
func IsNumeric(t *TypeID) bool {
	return Same(t, Byte) || Same(t, Int16) || Same(t, Int32) || Same(t, Int) || Same(t, Float64)
}
