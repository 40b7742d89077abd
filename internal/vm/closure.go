package vm

import (
	"fmt"

	"kestrel/internal/heap"
	"kestrel/internal/types"
)

// MakeClosure creates a closure over function idx with a captured prefix.
// The index is checked when the closure is applied.
func (rt *Runtime) MakeClosure(idx int, captured ...Value) *Closure {
	c := heap.Cell[Closure](rt.heap)
	rt.closure++
	c.typ, c.fn, c.captured, c.id = types.Closure, idx, captured, rt.closure
	return c
}

// Function returns the table entry for idx, failing with UnknownFunction.
func (rt *Runtime) Function(idx int, pos Position) *Function {
	if idx < 0 || idx >= len(rt.funcs) {
		rt.eb.raise(PanicUnknownFunction, "apply", pos,
			fmt.Sprintf("no such function with id %d, max id is %d", idx, len(rt.funcs)-1))
	}
	return &rt.funcs[idx]
}

// Apply invokes callee with args, prepending its captured arguments.
func (rt *Runtime) Apply(callee Value, args []Value) Value {
	return rt.ApplyAt(NoPos, callee, args)
}

// ApplyAt is Apply with a source position for diagnostics.
func (rt *Runtime) ApplyAt(pos Position, callee Value, args []Value) Value {
	c, ok := callee.(*Closure)
	if !ok {
		rt.expect("apply", pos, types.Closure, callee)
		c = callee.(*Closure)
	}
	fn := rt.Function(c.fn, pos)
	if len(c.captured)+len(args) != fn.Arity {
		rt.eb.raise(PanicArityMismatch, "apply", pos,
			fmt.Sprintf("function %s takes %d params, but passed %d enclosed params and %d params instead",
				fn.Name, fn.Arity, len(c.captured), len(args)))
	}
	if len(c.captured) == 0 {
		return fn.Entry(rt, args)
	}
	full := make([]Value, 0, fn.Arity)
	full = append(full, c.captured...)
	full = append(full, args...)
	return fn.Entry(rt, full)
}

// remainingArity returns the number of arguments the closure still needs, or
// -1 if its function index is invalid.
func (rt *Runtime) remainingArity(c *Closure) int {
	if c.fn < 0 || c.fn >= len(rt.funcs) {
		return -1
	}
	return rt.funcs[c.fn].Arity - len(c.captured)
}
