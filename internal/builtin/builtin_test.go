package builtin

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kestrel/internal/vm"
)

type harness struct {
	t   *testing.T
	rt  *vm.Runtime
	out *bytes.Buffer
}

func newHarness(t *testing.T, extra ...vm.Function) *harness {
	t.Helper()
	out := &bytes.Buffer{}
	funcs := append(New(out).Functions(), extra...)
	rt, err := vm.New(funcs, nil, vm.Options{Args: []string{"prog", "a"}})
	require.NoError(t, err)
	return &harness{t: t, rt: rt, out: out}
}

func (h *harness) call(name string, args ...vm.Value) vm.Value {
	h.t.Helper()
	v, err := h.rt.CallFunction(name, args...)
	require.Nil(h.t, err, "%s failed: %v", name, err)
	return v
}

func (h *harness) fail(code vm.PanicCode, name string, args ...vm.Value) *vm.VMError {
	h.t.Helper()
	_, err := h.rt.CallFunction(name, args...)
	require.NotNil(h.t, err)
	require.Equal(h.t, code, err.Code, err.Error())
	return err
}

func (h *harness) closure(name string, captured ...vm.Value) *vm.Closure {
	h.t.Helper()
	idx, ok := h.rt.FunctionIndex(name)
	require.True(h.t, ok, name)
	return h.rt.MakeClosure(idx, captured...)
}

func TestRegistryIsSortedAndComplete(t *testing.T) {
	r := New(nil)
	syms := r.Symbols()
	require.IsNonDecreasing(t, syms)
	for _, want := range []string{"arrayAppend", "codePointsIterate", "compileRegex", "getEnv", "println", "intPopCount"} {
		_, ok := r.Lookup(want)
		require.True(t, ok, want)
	}
	fn, _ := r.Lookup("arrayCopy")
	require.Equal(t, 5, fn.Arity)
}

func TestArrayNatives(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	a := h.call("makeArray", rt.BoxInt(3), rt.BoxInt(7))
	h.call("arraySetIndex", a, rt.BoxInt(0), rt.BoxInt(1))
	joined := h.call("arrayAppend", a, rt.ArrayOf(rt.BoxInt(9)))
	require.Equal(t, "[1, 7, 7, 9]", rt.Show(joined))
	require.Same(t, rt.BoxInt(4), h.call("arrayLength", joined))
	require.Same(t, rt.BoxInt(9), h.call("arrayGetIndex", joined, rt.BoxInt(3)))

	h.fail(vm.PanicOutOfBounds, "arrayGetIndex", joined, rt.BoxInt(4))
	h.fail(vm.PanicTypeMismatch, "arrayLength", rt.BoxInt(4))

	b := h.call("createByteArray", rt.BoxInt(2))
	h.call("byteArraySetIndex", b, rt.BoxInt(1), rt.BoxByte(-2))
	require.Same(t, rt.BoxByte(-2), h.call("byteArrayGetIndex", b, rt.BoxInt(1)))
	require.Same(t, rt.BoxInt(2), h.call("byteArrayLength", b))
}

func TestBitNatives(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	require.Same(t, rt.BoxInt(2), h.call("intAnd", rt.BoxInt(6), rt.BoxInt(3)))
	require.Same(t, rt.BoxInt(7), h.call("intOr", rt.BoxInt(6), rt.BoxInt(3)))
	require.Same(t, rt.BoxInt(5), h.call("intXor", rt.BoxInt(6), rt.BoxInt(3)))
	require.Equal(t, int64(-1), rt.UnboxInt(h.call("intNot", rt.BoxInt(0))))
	require.Same(t, rt.BoxInt(8), h.call("intShiftL", rt.BoxInt(1), rt.BoxInt(3)))
	require.Same(t, rt.BoxInt(0), h.call("intShiftL", rt.BoxInt(1), rt.BoxInt(64)))
	require.Same(t, rt.BoxInt(64), h.call("intPopCount", rt.BoxInt(-1)))
	require.Same(t, rt.BoxByte(-128), h.call("byteShiftL", rt.BoxByte(1), rt.BoxByte(7)))
	require.Same(t, rt.BoxByte(-1), h.call("byteNot", rt.BoxByte(0)))
	require.Same(t, rt.BoxByte(100), h.call("intToByte", rt.BoxInt(100)))
	h.fail(vm.PanicOutOfBounds, "intToByte", rt.BoxInt(300))
}

func TestCodePointsIterate(t *testing.T) {
	var seen []int64
	collect := vm.Function{Name: "collect", Arity: 1, Entry: func(rt *vm.Runtime, a []vm.Value) vm.Value {
		seen = append(seen, rt.UnboxInt(a[0]))
		return rt.BoxBool(len(seen) < 3)
	}}
	h := newHarness(t, collect)
	rt := h.rt

	require.Same(t, rt.Unit(), h.call("codePointsIterate", rt.MakeString("añ€xyz"), h.closure("collect")))
	require.Equal(t, []int64{'a', 'ñ', '€'}, seen)

	h.fail(vm.PanicEncodingError, "codePointsIterate", rt.MakeString("ok\xff"), h.closure("collect"))
}

func TestGraphemesIterate(t *testing.T) {
	var seen []string
	collect := vm.Function{Name: "collect", Arity: 1, Entry: func(rt *vm.Runtime, a []vm.Value) vm.Value {
		seen = append(seen, rt.UnboxString(a[0]))
		return rt.BoxBool(true)
	}}
	h := newHarness(t, collect)
	rt := h.rt

	h.call("graphemesIterate", rt.MakeString("e\u0301\U0001F1E9\U0001F1EA!"), h.closure("collect"))
	require.Equal(t, []string{"e\u0301", "\U0001F1E9\U0001F1EA", "!"}, seen)
	require.Same(t, rt.BoxInt(3), h.call("graphemesCount", rt.MakeString("e\u0301\U0001F1E9\U0001F1EA!")))
}

func TestCodePointConversions(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	require.Equal(t, "€", rt.UnboxString(h.call("codePointToString", rt.BoxInt(0x20AC))))
	cps := rt.ArrayOf(rt.BoxInt('h'), rt.BoxInt('é'))
	require.Equal(t, "hé", rt.UnboxString(h.call("codePointsToString", cps)))
	require.Same(t, rt.BoxInt(2), h.call("codePointsCount", rt.MakeString("hé")))
	require.Same(t, rt.BoxInt(4), h.call("displayWidth", rt.MakeString("日本")))
	require.Equal(t, "\u00e9", rt.UnboxString(h.call("normalize", rt.MakeString("e\u0301"))))
	plain := rt.MakeString("plain")
	require.Same(t, plain, h.call("normalize", plain))

	h.fail(vm.PanicInvalidArgument, "codePointToString", rt.BoxInt(0xD800))
}

func TestRegexNatives(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	re := h.call("compileRegex", rt.MakeString(`(\d+)-(\d+)`))
	require.Equal(t, "<Pattern>", rt.Show(re))
	require.Same(t, rt.BoxBool(true), h.call("matchRegex", re, rt.MakeString("call 555-1234")))
	require.Same(t, rt.BoxBool(false), h.call("matchRegex", re, rt.MakeString("none")))
	got := h.call("regexReplace", re, rt.MakeString("1-2 and 3-4"), rt.MakeString("$2-$1"))
	require.Equal(t, "2-1 and 4-3", rt.UnboxString(got))

	h.fail(vm.PanicInvalidPattern, "compileRegex", rt.MakeString("(unclosed"))
	h.fail(vm.PanicTypeMismatch, "matchRegex", rt.MakeString("x"), rt.MakeString("x"))
}

func TestFileNatives(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	path := filepath.Join(t.TempDir(), "out.txt")

	h.call("writeFile", rt.MakeString(path), rt.MakeString("hello"))
	require.Equal(t, "hello", rt.UnboxString(h.call("readFile", rt.MakeString(path))))

	f := h.call("openFile", rt.MakeString(path), rt.MakeString("a"))
	h.call("writeHandle", f, rt.MakeString(", world"))
	h.call("closeFile", f)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello, world", string(data))

	h.fail(vm.PanicHostError, "readFile", rt.MakeString(filepath.Join(t.TempDir(), "missing")))
	h.fail(vm.PanicInvalidArgument, "openFile", rt.MakeString(path), rt.MakeString("rw"))
}

func TestEnvNatives(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	t.Setenv("KESTREL_TEST_VAR", "one")

	got := h.call("getEnv", rt.MakeString("KESTREL_TEST_VAR"))
	require.Equal(t, "Some(one)", rt.Show(got))

	h.call("setEnv", rt.MakeString("KESTREL_TEST_VAR"), rt.MakeString("two"), rt.BoxInt(0))
	require.Equal(t, "one", os.Getenv("KESTREL_TEST_VAR"))
	h.call("setEnv", rt.MakeString("KESTREL_TEST_VAR"), rt.MakeString("two"), rt.BoxInt(1))
	require.Equal(t, "two", os.Getenv("KESTREL_TEST_VAR"))

	require.Same(t, rt.BoxInt(0), h.call("unsetEnv", rt.MakeString("KESTREL_TEST_VAR")))
	require.Same(t, rt.None(), h.call("getEnv", rt.MakeString("KESTREL_TEST_VAR")))
}

func TestCwdNatives(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })

	dir := t.TempDir()
	require.Same(t, rt.None(), h.call("chdir", rt.MakeString(dir)))
	got := rt.UnboxString(h.call("getCwd"))
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, want, gotResolved)

	res := h.call("chdir", rt.MakeString(filepath.Join(dir, "missing")))
	require.True(t, rt.IsConstructor(res, "Some"))
}

func TestPrintAndArgs(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	h.call("print", rt.MakeString("a"))
	h.call("println", rt.MakeString("b"))
	require.Equal(t, "ab\n", h.out.String())
	h.fail(vm.PanicTypeMismatch, "println", rt.BoxInt(1))

	require.Equal(t, "[prog, a]", rt.Show(h.call("getArgs")))
}

func TestVarNatives(t *testing.T) {
	h := newHarness(t)
	rt := h.rt
	v := h.call("newVar", rt.BoxInt(1))
	old := h.call("updateVar", v, rt.BoxInt(2))
	require.Same(t, rt.BoxInt(1), old)
	require.Same(t, rt.BoxInt(2), h.call("readVar", v))
	require.Equal(t, "2", rt.UnboxString(h.call("toString", v)))
}
