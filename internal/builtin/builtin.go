// Package builtin provides the native functions compiled programs link
// against: container and string helpers, Unicode iteration, regular
// expressions, files and the process environment. Every native conforms to
// vm.NativeFunc and reaches values only through the vm package.
package builtin

import (
	"io"
	"os"
	"sort"

	"kestrel/internal/vm"
)

// Registry maps native symbols to their entry points.
type Registry struct {
	out    io.Writer
	byName map[string]vm.Function
}

// New returns a registry whose print natives write to out (os.Stdout if nil).
func New(out io.Writer) *Registry {
	if out == nil {
		out = os.Stdout
	}
	r := &Registry{out: out, byName: make(map[string]vm.Function)}
	r.registerCore()
	r.registerBits()
	r.registerUnicode()
	r.registerRegex()
	r.registerOS()
	r.registerIO()
	return r
}

func (r *Registry) add(name string, arity int, entry vm.NativeFunc) {
	if _, dup := r.byName[name]; dup {
		panic("builtin: duplicate native " + name)
	}
	r.byName[name] = vm.Function{Name: name, Arity: arity, Entry: entry}
}

// Lookup returns the native registered under symbol.
func (r *Registry) Lookup(symbol string) (vm.Function, bool) {
	fn, ok := r.byName[symbol]
	return fn, ok
}

// Symbols returns the registered symbols in sorted order.
func (r *Registry) Symbols() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Functions returns every native as a function table, sorted by name.
func (r *Registry) Functions() []vm.Function {
	names := r.Symbols()
	out := make([]vm.Function, len(names))
	for i, name := range names {
		out[i] = r.byName[name]
	}
	return out
}

func unit(rt *vm.Runtime) vm.Value { return rt.Unit() }
