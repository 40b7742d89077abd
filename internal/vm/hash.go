package vm

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// DefaultSeed is the hash seed used unless a random seed is requested.
const DefaultSeed uint64 = 0x9E3779B97F4A7C15

// Hash computes the structural hash of v, seeded with the runtime seed.
// Values that Compare equal hash equally. Closures hash by identity.
func (rt *Runtime) Hash(v Value) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], rt.seed)
	_, _ = h.Write(buf[:])
	rt.hashInto(h, v)
	return h.Sum64()
}

func (rt *Runtime) hashInto(h hash.Hash64, v Value) {
	var buf [8]byte
	put := func(n int, x uint64) {
		binary.LittleEndian.PutUint64(buf[:], x)
		_, _ = h.Write(buf[:n])
	}
	switch x := v.(type) {
	case *Unit:
	case *Bool:
		if x.v {
			put(1, 1)
		} else {
			put(1, 0)
		}
	case *Byte:
		put(1, uint64(uint8(x.v)))
	case *Int16:
		put(2, uint64(uint16(x.v)))
	case *Int32:
		put(4, uint64(uint32(x.v)))
	case *Int:
		put(8, uint64(x.v))
	case *Float64:
		f := x.v
		if f == 0 {
			f = 0 // -0 and +0 compare equal
		}
		put(8, math.Float64bits(f))
	case *String:
		_, _ = h.Write([]byte(x.s))
	case *ByteArray:
		_, _ = h.Write(x.b)
	case *Array:
		put(8, uint64(len(x.elems)))
		for _, e := range x.elems {
			rt.hashInto(h, e)
		}
	case *Closure:
		put(8, x.id)
	case *Data:
		put(8, uint64(x.tag))
		for _, f := range x.fields {
			rt.hashInto(h, f)
		}
	case *Var:
		rt.hashInto(h, x.v)
	case *Unknown:
		rt.eb.unresolved("hash", NoPos, x.name)
	default:
		rt.eb.unsupported("hash", NoPos, "hashing", TypeNameOf(v))
	}
}
