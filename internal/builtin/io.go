package builtin

import (
	"fmt"

	"kestrel/internal/vm"
)

func (r *Registry) registerIO() {
	r.add("print", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		if _, err := fmt.Fprint(r.out, rt.UnboxString(a[0])); err != nil {
			rt.Fail(vm.PanicHostError, "print", "%v", err)
		}
		return rt.Unit()
	})
	r.add("println", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		if _, err := fmt.Fprintln(r.out, rt.UnboxString(a[0])); err != nil {
			rt.Fail(vm.PanicHostError, "println", "%v", err)
		}
		return rt.Unit()
	})
}
