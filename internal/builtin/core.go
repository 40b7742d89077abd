package builtin

import (
	"kestrel/internal/vm"
)

func (r *Registry) registerCore() {
	// Arrays.
	r.add("arrayAppend", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.ArrayAppend(a[0], a[1])
	})
	r.add("makeArray", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.MakeArray(rt.UnboxInt(a[0]), a[1])
	})
	r.add("arrayCopy", 5, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		rt.ArrayCopy(a[0], rt.UnboxInt(a[1]), a[2], rt.UnboxInt(a[3]), rt.UnboxInt(a[4]))
		return unit(rt)
	})
	r.add("arrayGetIndex", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.ArrayGet(a[0], rt.UnboxInt(a[1]))
	})
	r.add("arraySetIndex", 3, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		rt.ArraySet(a[0], rt.UnboxInt(a[1]), a[2])
		return unit(rt)
	})
	r.add("arrayInit", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.ArrayInit(rt.UnboxInt(a[0]), a[1])
	})
	r.add("arrayLength", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(rt.ArrayLength(a[0]))
	})

	// Byte arrays.
	r.add("createByteArray", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.NewByteArray(rt.UnboxInt(a[0]))
	})
	r.add("byteArrayLength", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(rt.ByteArrayLength(a[0]))
	})
	r.add("byteArrayGetIndex", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.ByteArrayGet(a[0], rt.UnboxInt(a[1]))
	})
	r.add("byteArraySetIndex", 3, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		rt.ByteArraySet(a[0], rt.UnboxInt(a[1]), rt.UnboxByte(a[2]))
		return unit(rt)
	})
	r.add("byteArrayCopy", 5, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		rt.ByteArrayCopy(a[0], rt.UnboxInt(a[1]), a[2], rt.UnboxInt(a[3]), rt.UnboxInt(a[4]))
		return unit(rt)
	})

	// Strings and generic operators.
	r.add("bytesLength", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(rt.BytesLength(a[0]))
	})
	r.add("concat", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.Concat(a[0])
	})
	r.add("toInt", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.ToInt(a[0])
	})
	r.add("toString", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.ToString(a[0])
	})
	r.add("runtimeCompare", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(int64(rt.Compare(a[0], a[1])))
	})
	r.add("runtimeHash", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.BoxInt(int64(rt.Hash(a[0])))
	})
	r.add("getArgs", 0, func(rt *vm.Runtime, _ []vm.Value) vm.Value {
		return rt.Args()
	})

	// Mutable cells.
	r.add("newVar", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.NewVar(a[0])
	})
	r.add("readVar", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.UnboxVar(a[0]).Get()
	})
	r.add("updateVar", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.UnboxVar(a[0]).Set(a[1])
	})
}
