package vm

import (
	"fmt"

	"fortio.org/safecast"

	"kestrel/internal/heap"
	"kestrel/internal/types"
)

// ClosurePayload is the Box/Unbox form of a closure.
type ClosurePayload struct {
	Func     int
	Captured []Value
}

// DataPayload is the Box/Unbox form of a data value.
type DataPayload struct {
	Tag    int
	Fields []Value
}

// Unit returns the unit value.
func (rt *Runtime) Unit() *Unit { return &rt.canon.unit }

// BoxBool returns one of the two shared booleans.
func (rt *Runtime) BoxBool(b bool) *Bool {
	if b {
		return &rt.canon.boolTrue
	}
	return &rt.canon.boolFalse
}

// BoxByte returns the shared box for b; every byte value is canonical.
func (rt *Runtime) BoxByte(b int8) *Byte {
	return &rt.canon.bytes[int(b)+128]
}

// BoxInt16 boxes a 16-bit integer.
func (rt *Runtime) BoxInt16(i int16) *Int16 {
	v := heap.AtomicCell[Int16](rt.heap)
	v.typ, v.v = types.Int16, i
	return v
}

// BoxInt32 boxes a 32-bit integer.
func (rt *Runtime) BoxInt32(i int32) *Int32 {
	v := heap.AtomicCell[Int32](rt.heap)
	v.typ, v.v = types.Int32, i
	return v
}

// BoxInt boxes a 64-bit integer. Values 0..99 are shared.
func (rt *Runtime) BoxInt(i int64) *Int {
	if i >= 0 && i < smallInts {
		return &rt.canon.ints[i]
	}
	v := heap.AtomicCell[Int](rt.heap)
	v.typ, v.v = types.Int, i
	return v
}

// BoxFloat64 boxes a double. Zero (of either sign) is shared.
func (rt *Runtime) BoxFloat64(f float64) *Float64 {
	if f == 0 {
		return &rt.canon.zero
	}
	v := heap.AtomicCell[Float64](rt.heap)
	v.typ, v.v = types.Float64, f
	return v
}

// MakeString copies s into a new String. The empty string is shared.
func (rt *Runtime) MakeString(s string) *String {
	if s == "" {
		return &rt.canon.empty
	}
	v := heap.Cell[String](rt.heap)
	v.typ, v.s = types.String, rt.heap.String(s)
	return v
}

// NarrowInt16 converts i to Int16, failing if it does not fit.
func (rt *Runtime) NarrowInt16(i int64) *Int16 {
	n, err := safecast.Conv[int16](i)
	if err != nil {
		rt.eb.raise(PanicOutOfBounds, "toInt16", NoPos, fmt.Sprintf("%d does not fit in Int16", i))
	}
	return rt.BoxInt16(n)
}

// NarrowInt32 converts i to Int32, failing if it does not fit.
func (rt *Runtime) NarrowInt32(i int64) *Int32 {
	n, err := safecast.Conv[int32](i)
	if err != nil {
		rt.eb.raise(PanicOutOfBounds, "toInt32", NoPos, fmt.Sprintf("%d does not fit in Int32", i))
	}
	return rt.BoxInt32(n)
}

// NarrowByte converts i to Byte, failing if it does not fit.
func (rt *Runtime) NarrowByte(i int64) *Byte {
	n, err := safecast.Conv[int8](i)
	if err != nil {
		rt.eb.raise(PanicOutOfBounds, "toByte", NoPos, fmt.Sprintf("%d does not fit in Byte", i))
	}
	return rt.BoxByte(n)
}

// Box attaches typ to a freshly allocated payload. Scalars are not
// canonicalized; data payloads get the same tag and field-count checks as
// MakeData, so an empty Option is the shared None. The payload's Go type must
// match the one Unbox returns for typ; any type outside the builtin set and
// the registry is boxed as a Foreign handle.
func (rt *Runtime) Box(typ *types.TypeID, payload any) Value {
	h := header{typ}
	switch {
	case types.Same(typ, types.Unit):
		v := heap.AtomicCell[Unit](rt.heap)
		v.header = h
		return v
	case types.Same(typ, types.Bool):
		v := heap.AtomicCell[Bool](rt.heap)
		v.header, v.v = h, payloadAs[bool](rt, typ, payload)
		return v
	case types.Same(typ, types.Byte):
		v := heap.AtomicCell[Byte](rt.heap)
		v.header, v.v = h, payloadAs[int8](rt, typ, payload)
		return v
	case types.Same(typ, types.Int16):
		v := heap.AtomicCell[Int16](rt.heap)
		v.header, v.v = h, payloadAs[int16](rt, typ, payload)
		return v
	case types.Same(typ, types.Int32):
		v := heap.AtomicCell[Int32](rt.heap)
		v.header, v.v = h, payloadAs[int32](rt, typ, payload)
		return v
	case types.Same(typ, types.Int):
		v := heap.AtomicCell[Int](rt.heap)
		v.header, v.v = h, payloadAs[int64](rt, typ, payload)
		return v
	case types.Same(typ, types.Float64):
		v := heap.AtomicCell[Float64](rt.heap)
		v.header, v.v = h, payloadAs[float64](rt, typ, payload)
		return v
	case types.Same(typ, types.String):
		v := heap.Cell[String](rt.heap)
		v.header, v.s = h, rt.heap.String(payloadAs[string](rt, typ, payload))
		return v
	case types.Same(typ, types.ByteArray):
		v := heap.Cell[ByteArray](rt.heap)
		v.header, v.b = h, payloadAs[[]byte](rt, typ, payload)
		return v
	case types.Same(typ, types.Array):
		v := heap.Cell[Array](rt.heap)
		v.header, v.elems = h, payloadAs[[]Value](rt, typ, payload)
		return v
	case types.Same(typ, types.Closure):
		p := payloadAs[ClosurePayload](rt, typ, payload)
		v := heap.Cell[Closure](rt.heap)
		rt.closure++
		v.header, v.fn, v.captured, v.id = h, p.Func, p.Captured, rt.closure
		return v
	case types.Same(typ, types.Var):
		v := heap.Cell[Var](rt.heap)
		v.header, v.v = h, payloadAs[Value](rt, typ, payload)
		return v
	case types.Same(typ, types.Unknown):
		v := heap.Cell[Unknown](rt.heap)
		v.header, v.name = h, payloadAs[string](rt, typ, payload)
		return v
	}
	if _, ok := rt.types.Find(typ); ok {
		p := payloadAs[DataPayload](rt, typ, payload)
		return rt.makeData("box", typ, p.Tag, p.Fields)
	}
	v := heap.Cell[Foreign](rt.heap)
	v.header, v.handle = h, payload
	return v
}

func payloadAs[T any](rt *Runtime, typ *types.TypeID, payload any) T {
	p, ok := payload.(T)
	if !ok {
		var zero T
		rt.eb.typeMismatch("box "+typ.Name, NoPos, fmt.Sprintf("%T payload", zero), fmt.Sprintf("%T", payload))
	}
	return p
}

// Unbox verifies that v carries the expected tag and returns its payload in
// the form Box accepts. An unresolved identifier or a tag mismatch is fatal.
func (rt *Runtime) Unbox(expected *types.TypeID, v Value) any {
	rt.expect("unbox", NoPos, expected, v)
	switch x := v.(type) {
	case *Unit:
		return struct{}{}
	case *Bool:
		return x.v
	case *Byte:
		return x.v
	case *Int16:
		return x.v
	case *Int32:
		return x.v
	case *Int:
		return x.v
	case *Float64:
		return x.v
	case *String:
		return x.s
	case *ByteArray:
		return x.b
	case *Array:
		return x.elems
	case *Closure:
		return ClosurePayload{Func: x.fn, Captured: x.captured}
	case *Data:
		return DataPayload{Tag: x.tag, Fields: x.fields}
	case *Var:
		return x.v
	case *Unknown:
		return x.name
	case *Foreign:
		return x.handle
	}
	panic(fmt.Sprintf("vm: unhandled value %T", v))
}

// expect fails unless v is tagged with expected.
func (rt *Runtime) expect(op string, pos Position, expected *types.TypeID, v Value) {
	if v == nil {
		rt.eb.typeMismatch(op, pos, expected.Name, "<nil>")
	}
	if u, ok := v.(*Unknown); ok && !types.Same(expected, types.Unknown) {
		rt.eb.unresolved(op, pos, u.name)
	}
	if !types.Same(v.Type(), expected) {
		rt.eb.typeMismatch(op, pos, expected.Name, v.Type().Name)
	}
}

// UnboxBool returns the payload of a Bool.
func (rt *Runtime) UnboxBool(v Value) bool {
	rt.expect("unbox", NoPos, types.Bool, v)
	return v.(*Bool).v
}

// UnboxByte returns the payload of a Byte.
func (rt *Runtime) UnboxByte(v Value) int8 {
	rt.expect("unbox", NoPos, types.Byte, v)
	return v.(*Byte).v
}

// UnboxInt returns the payload of an Int.
func (rt *Runtime) UnboxInt(v Value) int64 {
	rt.expect("unbox", NoPos, types.Int, v)
	return v.(*Int).v
}

// UnboxFloat64 returns the payload of a Float.
func (rt *Runtime) UnboxFloat64(v Value) float64 {
	rt.expect("unbox", NoPos, types.Float64, v)
	return v.(*Float64).v
}

// UnboxString returns the contents of a String.
func (rt *Runtime) UnboxString(v Value) string {
	rt.expect("unbox", NoPos, types.String, v)
	return v.(*String).s
}

// UnboxArray returns v as an Array.
func (rt *Runtime) UnboxArray(v Value) *Array {
	rt.expect("unbox", NoPos, types.Array, v)
	return v.(*Array)
}

// UnboxByteArray returns v as a ByteArray.
func (rt *Runtime) UnboxByteArray(v Value) *ByteArray {
	rt.expect("unbox", NoPos, types.ByteArray, v)
	return v.(*ByteArray)
}

// UnboxClosure returns v as a Closure.
func (rt *Runtime) UnboxClosure(v Value) *Closure {
	rt.expect("unbox", NoPos, types.Closure, v)
	return v.(*Closure)
}

// UnboxVar returns v as a Var.
func (rt *Runtime) UnboxVar(v Value) *Var {
	rt.expect("unbox", NoPos, types.Var, v)
	return v.(*Var)
}

// UnboxForeign returns the host handle of a Foreign tagged typ.
func (rt *Runtime) UnboxForeign(typ *types.TypeID, v Value) any {
	rt.expect("unbox", NoPos, typ, v)
	f, ok := v.(*Foreign)
	if !ok {
		rt.eb.typeMismatch("unbox", NoPos, typ.Name, v.Type().Name)
	}
	return f.handle
}

// NewForeign wraps a host handle under typ, which must not be a builtin or
// registered type.
func (rt *Runtime) NewForeign(typ *types.TypeID, handle any) *Foreign {
	v := heap.Cell[Foreign](rt.heap)
	v.typ, v.handle = typ, handle
	return v
}

// NewVar creates a mutable cell holding init.
func (rt *Runtime) NewVar(init Value) *Var {
	v := heap.Cell[Var](rt.heap)
	v.typ, v.v = types.Var, init
	return v
}
