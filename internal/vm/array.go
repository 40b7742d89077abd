package vm

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"kestrel/internal/heap"
	"kestrel/internal/types"
)

func (rt *Runtime) wrapArray(elems []Value) *Array {
	a := heap.Cell[Array](rt.heap)
	a.typ, a.elems = types.Array, elems
	return a
}

// ArrayOf builds an array holding values.
func (rt *Runtime) ArrayOf(values ...Value) *Array {
	elems := heap.Slice[Value](rt.heap, len(values))
	copy(elems, values)
	return rt.wrapArray(elems)
}

// MakeArray allocates an array of n elements all referring to init.
func (rt *Runtime) MakeArray(n int64, init Value) *Array {
	elems := heap.Slice[Value](rt.heap, rt.index("makeArray", n))
	for i := range elems {
		elems[i] = init
	}
	return rt.wrapArray(elems)
}

// NewArray allocates an array of n Unit values.
func (rt *Runtime) NewArray(n int) *Array {
	return rt.MakeArray(int64(n), rt.Unit())
}

// ArrayInit builds an array of n elements where element i is f(i).
func (rt *Runtime) ArrayInit(n int64, f Value) *Array {
	a := rt.MakeArray(n, rt.Unit())
	for i := range a.elems {
		a.elems[i] = rt.Apply(f, []Value{rt.BoxInt(int64(i))})
	}
	return a
}

// ArrayAppend returns a new array holding the elements of a followed by b.
func (rt *Runtime) ArrayAppend(a, b Value) *Array {
	x, y := rt.UnboxArray(a), rt.UnboxArray(b)
	elems := heap.Slice[Value](rt.heap, len(x.elems)+len(y.elems))
	n := copy(elems, x.elems)
	copy(elems[n:], y.elems)
	return rt.wrapArray(elems)
}

// ArrayCopy copies n elements of src starting at srcPos into dst at dstPos.
// Overlapping ranges are handled.
func (rt *Runtime) ArrayCopy(src Value, srcPos int64, dst Value, dstPos int64, n int64) {
	s, d := rt.UnboxArray(src), rt.UnboxArray(dst)
	sp, dp, cnt := rt.copyRange("arrayCopy", srcPos, len(s.elems), dstPos, len(d.elems), n)
	copy(d.elems[dp:dp+cnt], s.elems[sp:sp+cnt])
}

// ArrayGet returns element i.
func (rt *Runtime) ArrayGet(a Value, i int64) Value {
	arr := rt.UnboxArray(a)
	return arr.elems[rt.checkIndex("arrayGet", i, len(arr.elems))]
}

// ArraySet stores v at index i.
func (rt *Runtime) ArraySet(a Value, i int64, v Value) {
	arr := rt.UnboxArray(a)
	arr.elems[rt.checkIndex("arraySet", i, len(arr.elems))] = v
}

// ArrayLength returns the number of elements.
func (rt *Runtime) ArrayLength(a Value) int64 {
	return int64(len(rt.UnboxArray(a).elems))
}

// NewByteArray allocates a zeroed byte array.
func (rt *Runtime) NewByteArray(n int64) *ByteArray {
	return rt.wrapBytes(rt.heap.AllocateUntracked(rt.index("newByteArray", n)))
}

// ByteArrayFrom copies b into a new byte array.
func (rt *Runtime) ByteArrayFrom(b []byte) *ByteArray {
	buf := rt.heap.AllocateUntracked(len(b))
	copy(buf, b)
	return rt.wrapBytes(buf)
}

func (rt *Runtime) wrapBytes(b []byte) *ByteArray {
	v := heap.Cell[ByteArray](rt.heap)
	v.typ, v.b = types.ByteArray, b
	return v
}

// ByteArrayGet returns byte i as a Byte.
func (rt *Runtime) ByteArrayGet(a Value, i int64) *Byte {
	b := rt.UnboxByteArray(a)
	return rt.BoxByte(int8(b.b[rt.checkIndex("byteArrayGet", i, len(b.b))]))
}

// ByteArraySet stores v at index i.
func (rt *Runtime) ByteArraySet(a Value, i int64, v int8) {
	b := rt.UnboxByteArray(a)
	b.b[rt.checkIndex("byteArraySet", i, len(b.b))] = byte(v)
}

// ByteArrayCopy copies n bytes of src starting at srcPos into dst at dstPos.
func (rt *Runtime) ByteArrayCopy(src Value, srcPos int64, dst Value, dstPos int64, n int64) {
	s, d := rt.UnboxByteArray(src), rt.UnboxByteArray(dst)
	sp, dp, cnt := rt.copyRange("byteArrayCopy", srcPos, len(s.b), dstPos, len(d.b), n)
	copy(d.b[dp:dp+cnt], s.b[sp:sp+cnt])
}

// ByteArrayLength returns the buffer length.
func (rt *Runtime) ByteArrayLength(a Value) int64 {
	return int64(len(rt.UnboxByteArray(a).b))
}

// StringFromBytes copies b into a new String.
func (rt *Runtime) StringFromBytes(b []byte) *String {
	return rt.MakeString(string(b))
}

// Concat joins an array of Strings.
func (rt *Runtime) Concat(parts Value) *String {
	arr := rt.UnboxArray(parts)
	var sb strings.Builder
	for _, p := range arr.elems {
		sb.WriteString(rt.UnboxString(p))
	}
	return rt.MakeString(sb.String())
}

// BytesLength returns the length of a String in bytes.
func (rt *Runtime) BytesLength(s Value) int64 {
	return int64(len(rt.UnboxString(s)))
}

// ToInt parses a decimal integer. Malformed input is fatal.
func (rt *Runtime) ToInt(s Value) *Int {
	str := rt.UnboxString(s)
	n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil {
		rt.eb.raise(PanicInvalidArgument, "toInt", NoPos, fmt.Sprintf("invalid integer %q", str))
	}
	return rt.BoxInt(n)
}

// index converts a length or count to int, failing on negative or oversized
// values.
func (rt *Runtime) index(op string, n int64) int {
	i, err := safecast.Conv[int](n)
	if err != nil || i < 0 {
		rt.eb.raise(PanicInvalidArgument, op, NoPos, fmt.Sprintf("invalid length %d", n))
	}
	return i
}

func (rt *Runtime) checkIndex(op string, i int64, length int) int {
	if i < 0 || i >= int64(length) {
		rt.eb.outOfBounds(op, int(i), length)
	}
	return int(i)
}

func (rt *Runtime) copyRange(op string, srcPos int64, srcLen int, dstPos int64, dstLen int, n int64) (int, int, int) {
	if n < 0 || srcPos < 0 || dstPos < 0 || srcPos > int64(srcLen) || dstPos > int64(dstLen) ||
		n > int64(srcLen)-srcPos || n > int64(dstLen)-dstPos {
		rt.eb.raise(PanicOutOfBounds, op, NoPos,
			fmt.Sprintf("copy of %d elements from %d (length %d) to %d (length %d) out of bounds", n, srcPos, srcLen, dstPos, dstLen))
	}
	return int(srcPos), int(dstPos), int(n)
}
