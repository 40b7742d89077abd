// Package vm is the runtime core of compiled kestrel programs: the tagged value
// model, boxing and canonicalization, closures and dynamic apply, algebraic
// data support, and the type-dispatched generic operators.
package vm

import (
	"fmt"

	"kestrel/internal/types"
)

// ValueKind identifies the variant of a Value.
type ValueKind uint8

const (
	VKInvalid ValueKind = iota
	VKUnit
	VKBool
	VKByte
	VKInt16
	VKInt32
	VKInt
	VKFloat64
	VKString
	VKByteArray
	VKArray
	VKClosure
	VKData
	VKVar
	VKUnknown
	VKForeign
)

// String returns a human-readable name for the value kind.
func (k ValueKind) String() string {
	switch k {
	case VKInvalid:
		return "invalid"
	case VKUnit:
		return "unit"
	case VKBool:
		return "bool"
	case VKByte:
		return "byte"
	case VKInt16:
		return "int16"
	case VKInt32:
		return "int32"
	case VKInt:
		return "int"
	case VKFloat64:
		return "float64"
	case VKString:
		return "string"
	case VKByteArray:
		return "bytearray"
	case VKArray:
		return "array"
	case VKClosure:
		return "closure"
	case VKData:
		return "data"
	case VKVar:
		return "var"
	case VKUnknown:
		return "unknown"
	case VKForeign:
		return "foreign"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is any runtime datum. The set of implementations is closed: every
// value is one of the variants declared in this file.
type Value interface {
	// Type returns the tag set at construction.
	Type() *types.TypeID
	// Kind returns the variant.
	Kind() ValueKind
	sealed()
}

// header carries the type tag. It is written once at construction.
type header struct {
	typ *types.TypeID
}

func (h *header) Type() *types.TypeID { return h.typ }
func (*header) sealed()               {}

// Unit is the empty tuple.
type Unit struct{ header }

// Bool is a boxed boolean.
type Bool struct {
	header
	v bool
}

// Byte is a boxed signed 8-bit integer.
type Byte struct {
	header
	v int8
}

// Int16 is a boxed 16-bit integer.
type Int16 struct {
	header
	v int16
}

// Int32 is a boxed 32-bit integer.
type Int32 struct {
	header
	v int32
}

// Int is a boxed 64-bit integer.
type Int struct {
	header
	v int64
}

// Float64 is a boxed IEEE double.
type Float64 struct {
	header
	v float64
}

// String is an immutable byte string.
type String struct {
	header
	s string
}

// ByteArray is a mutable byte buffer of fixed length.
type ByteArray struct {
	header
	b []byte
}

// Array is a fixed-length sequence of shared value references.
type Array struct {
	header
	elems []Value
}

// Closure is a function-table index plus a fixed prefix of captured arguments.
type Closure struct {
	header
	fn       int
	captured []Value
	id       uint64
}

// Data is an instance of one constructor of a sum type, including the builtin
// Option.
type Data struct {
	header
	tag    int
	fields []Value
}

// Var is the single mutable cell of the value model.
type Var struct {
	header
	v Value
}

// Unknown marks an identifier that failed to resolve at compile time.
type Unknown struct {
	header
	name string
}

// Foreign wraps a host handle (compiled regex, file handle) under a
// non-builtin tag.
type Foreign struct {
	header
	handle any
}

func (*Unit) Kind() ValueKind      { return VKUnit }
func (*Bool) Kind() ValueKind      { return VKBool }
func (*Byte) Kind() ValueKind      { return VKByte }
func (*Int16) Kind() ValueKind     { return VKInt16 }
func (*Int32) Kind() ValueKind     { return VKInt32 }
func (*Int) Kind() ValueKind       { return VKInt }
func (*Float64) Kind() ValueKind   { return VKFloat64 }
func (*String) Kind() ValueKind    { return VKString }
func (*ByteArray) Kind() ValueKind { return VKByteArray }
func (*Array) Kind() ValueKind     { return VKArray }
func (*Closure) Kind() ValueKind   { return VKClosure }
func (*Data) Kind() ValueKind      { return VKData }
func (*Var) Kind() ValueKind       { return VKVar }
func (*Unknown) Kind() ValueKind   { return VKUnknown }
func (*Foreign) Kind() ValueKind   { return VKForeign }

// Value returns the boolean.
func (b *Bool) Value() bool { return b.v }

// Value returns the byte.
func (b *Byte) Value() int8 { return b.v }

// Value returns the integer.
func (i *Int16) Value() int16 { return i.v }

// Value returns the integer.
func (i *Int32) Value() int32 { return i.v }

// Value returns the integer.
func (i *Int) Value() int64 { return i.v }

// Value returns the float.
func (f *Float64) Value() float64 { return f.v }

// Value returns the string contents.
func (s *String) Value() string { return s.s }

// Len returns the length in bytes.
func (s *String) Len() int { return len(s.s) }

// Bytes exposes the buffer. Writes through it are visible to every holder.
func (b *ByteArray) Bytes() []byte { return b.b }

// Len returns the buffer length.
func (b *ByteArray) Len() int { return len(b.b) }

// Len returns the array length.
func (a *Array) Len() int { return len(a.elems) }

// At returns element i without bounds diagnostics; use Runtime.ArrayGet from
// compiled code.
func (a *Array) At(i int) Value { return a.elems[i] }

// Elems returns the backing element slice.
func (a *Array) Elems() []Value { return a.elems }

// Func returns the target function index.
func (c *Closure) Func() int { return c.fn }

// Captured returns the captured-argument prefix.
func (c *Closure) Captured() []Value { return c.captured }

// Tag returns the constructor tag.
func (d *Data) Tag() int { return d.tag }

// Fields returns the field values in declaration order.
func (d *Data) Fields() []Value { return d.fields }

// Get returns the cell contents.
func (v *Var) Get() Value { return v.v }

// Set replaces the cell contents and returns the previous value.
func (v *Var) Set(x Value) Value {
	old := v.v
	v.v = x
	return old
}

// Name returns the unresolved identifier.
func (u *Unknown) Name() string { return u.name }

// Handle returns the wrapped host handle.
func (f *Foreign) Handle() any { return f.handle }

// TypeNameOf returns the name of v's tag.
func TypeNameOf(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Type().Name
}
