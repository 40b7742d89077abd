package builtin

import (
	"os"

	"kestrel/internal/types"
	"kestrel/internal/vm"
)

// FileHandleType tags open files.
var FileHandleType = types.New("FileHandle")

var fileModes = map[string]int{
	"r":  os.O_RDONLY,
	"r+": os.O_RDWR,
	"w":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"w+": os.O_RDWR | os.O_CREATE | os.O_TRUNC,
	"a":  os.O_WRONLY | os.O_CREATE | os.O_APPEND,
	"a+": os.O_RDWR | os.O_CREATE | os.O_APPEND,
}

func (r *Registry) registerOS() {
	r.add("readFile", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		name := rt.UnboxString(a[0])
		data, err := os.ReadFile(name)
		if err != nil {
			rt.Fail(vm.PanicHostError, "readFile", "%v", err)
		}
		return rt.StringFromBytes(data)
	})
	r.add("writeFile", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		name := rt.UnboxString(a[0])
		if err := os.WriteFile(name, []byte(rt.UnboxString(a[1])), 0o644); err != nil {
			rt.Fail(vm.PanicHostError, "writeFile", "%v", err)
		}
		return rt.Unit()
	})
	r.add("openFile", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		name, mode := rt.UnboxString(a[0]), rt.UnboxString(a[1])
		flag, ok := fileModes[mode]
		if !ok {
			rt.Fail(vm.PanicInvalidArgument, "openFile", "unknown file mode %q", mode)
		}
		f, err := os.OpenFile(name, flag, 0o644)
		if err != nil {
			rt.Fail(vm.PanicHostError, "openFile", "%v", err)
		}
		return rt.NewForeign(FileHandleType, f)
	})
	r.add("writeHandle", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		f := rt.UnboxForeign(FileHandleType, a[0]).(*os.File)
		if _, err := f.WriteString(rt.UnboxString(a[1])); err != nil {
			rt.Fail(vm.PanicHostError, "writeHandle", "%v", err)
		}
		return rt.Unit()
	})
	r.add("closeFile", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		f := rt.UnboxForeign(FileHandleType, a[0]).(*os.File)
		if err := f.Close(); err != nil {
			rt.Fail(vm.PanicHostError, "closeFile", "%v", err)
		}
		return rt.Unit()
	})

	r.add("getCwd", 0, func(rt *vm.Runtime, _ []vm.Value) vm.Value {
		dir, err := os.Getwd()
		if err != nil {
			rt.Fail(vm.PanicHostError, "getCwd", "%v", err)
		}
		return rt.MakeString(dir)
	})
	// chdir reports failure as Some(message) and success as None.
	r.add("chdir", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		if err := os.Chdir(rt.UnboxString(a[0])); err != nil {
			return rt.Some(rt.MakeString(err.Error()))
		}
		return rt.None()
	})
	r.add("getEnv", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		v, ok := os.LookupEnv(rt.UnboxString(a[0]))
		if !ok {
			return rt.None()
		}
		return rt.Some(rt.MakeString(v))
	})
	// setEnv returns 0 on success and -1 on failure; with replace = 0 an
	// existing variable is left alone.
	r.add("setEnv", 3, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		name, value := rt.UnboxString(a[0]), rt.UnboxString(a[1])
		if rt.UnboxInt(a[2]) == 0 {
			if _, exists := os.LookupEnv(name); exists {
				return rt.BoxInt(0)
			}
		}
		if err := os.Setenv(name, value); err != nil {
			return rt.BoxInt(-1)
		}
		return rt.BoxInt(0)
	})
	r.add("unsetEnv", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		if err := os.Unsetenv(rt.UnboxString(a[0])); err != nil {
			return rt.BoxInt(-1)
		}
		return rt.BoxInt(0)
	})
}
