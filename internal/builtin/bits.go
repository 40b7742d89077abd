package builtin

import (
	"math/bits"

	"kestrel/internal/vm"
)

func (r *Registry) registerBits() {
	byte2 := func(name string, op func(a, b int8) int8) {
		r.add(name, 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
			return rt.BoxByte(op(rt.UnboxByte(a[0]), rt.UnboxByte(a[1])))
		})
	}
	int2 := func(name string, op func(a, b int64) int64) {
		r.add(name, 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
			return rt.BoxInt(op(rt.UnboxInt(a[0]), rt.UnboxInt(a[1])))
		})
	}

	byte2("byteAnd", func(a, b int8) int8 { return a & b })
	byte2("byteOr", func(a, b int8) int8 { return a | b })
	byte2("byteXor", func(a, b int8) int8 { return a ^ b })
	byte2("byteShiftL", func(a, b int8) int8 { return a << shift(b, 8) })
	byte2("byteShiftR", func(a, b int8) int8 { return a >> shift(b, 8) })
	r.add("byteNot", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxByte(^rt.UnboxByte(a[0]))
	})

	int2("intAnd", func(a, b int64) int64 { return a & b })
	int2("intOr", func(a, b int64) int64 { return a | b })
	int2("intXor", func(a, b int64) int64 { return a ^ b })
	int2("intShiftL", func(a, b int64) int64 { return a << shift(b, 64) })
	int2("intShiftR", func(a, b int64) int64 { return a >> shift(b, 64) })
	r.add("intNot", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(^rt.UnboxInt(a[0]))
	})
	r.add("intPopCount", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(int64(bits.OnesCount64(uint64(rt.UnboxInt(a[0])))))
	})

	r.add("intToByte", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.NarrowByte(rt.UnboxInt(a[0]))
	})
	r.add("byteToInt", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(int64(rt.UnboxByte(a[0])))
	})
	r.add("intToInt16", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.NarrowInt16(rt.UnboxInt(a[0]))
	})
	r.add("intToInt32", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.NarrowInt32(rt.UnboxInt(a[0]))
	})
	r.add("intToFloat", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxFloat64(float64(rt.UnboxInt(a[0])))
	})
}

// shift clamps a shift count to the operand width; negative counts shift by
// zero.
func shift[T int8 | int64](n T, width uint) uint {
	if n < 0 {
		return 0
	}
	if uint64(n) >= uint64(width) {
		return width
	}
	return uint(n)
}
