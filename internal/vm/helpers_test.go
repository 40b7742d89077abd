package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kestrel/internal/types"
)

var (
	pairType  = types.New("Pair")
	shapeType = types.New("Shape")
)

func testData() []*types.DataType {
	return []*types.DataType{
		{Type: pairType, Constructors: []types.Constructor{
			{Name: "Pair", Fields: []string{"first", "second"}},
		}},
		{Type: shapeType, Constructors: []types.Constructor{
			{Name: "Foo"},
			{Name: "FooBar", Fields: []string{"size"}},
		}},
	}
}

func testFuncs() []Function {
	return []Function{
		{Name: "add", Arity: 2, Entry: func(rt *Runtime, args []Value) Value {
			return rt.BinaryOp(OpAdd, args[0], args[1])
		}},
		{Name: "double", Arity: 1, Entry: func(rt *Runtime, args []Value) Value {
			return rt.BinaryOp(OpMul, args[0], rt.BoxInt(2))
		}},
		{Name: "answer", Arity: 0, Entry: func(rt *Runtime, _ []Value) Value {
			return rt.BoxInt(42)
		}},
		{Name: "sum3", Arity: 3, Entry: func(rt *Runtime, args []Value) Value {
			return rt.BinaryOp(OpAdd, rt.BinaryOp(OpAdd, args[0], args[1]), args[2])
		}},
	}
}

const (
	fnAdd = iota
	fnDouble
	fnAnswer
	fnSum3
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(testFuncs(), testData(), Options{HashSeed: DefaultSeed})
	require.NoError(t, err)
	return rt
}

// expectPanic runs fn and requires that it fails with code.
func expectPanic(t *testing.T, code PanicCode, fn func()) *VMError {
	t.Helper()
	err := Guard(fn)
	require.NotNil(t, err, "expected %s", code)
	require.Equal(t, code, err.Code, "got %s", err.Error())
	return err
}
