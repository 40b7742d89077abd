package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kestrel/internal/types"
)

func TestSelectField(t *testing.T) {
	rt := newTestRuntime(t)
	p := rt.MakeData(pairType, 0, rt.BoxInt(1), rt.MakeString("x"))

	require.Same(t, p.Fields()[0], rt.Select(NoPos, p, rt.BoxError("first")))
	require.Equal(t, "x", rt.UnboxString(rt.Select(NoPos, p, rt.BoxError("second"))))

	err := expectPanic(t, PanicFieldNotFound, func() {
		rt.Select(Position{Line: 4}, p, rt.BoxError("third"))
	})
	require.Contains(t, err.Message, "third")
	require.Equal(t, 4, err.Pos.Line)
}

func TestSelectAppliesUnaryClosure(t *testing.T) {
	rt := newTestRuntime(t)
	p := rt.MakeData(pairType, 0, rt.BoxInt(1), rt.BoxInt(2))

	// Method-call fallback on a user value and on a builtin value.
	first := rt.MakeClosure(len(rt.funcs))
	rt.funcs = append(rt.funcs, Function{Name: "first", Arity: 1, Entry: func(rt *Runtime, args []Value) Value {
		return rt.Field(args[0], 0)
	}})
	require.Same(t, rt.BoxInt(1), rt.Select(NoPos, p, first))
	require.Equal(t, int64(42), rt.UnboxInt(rt.Select(NoPos, rt.BoxInt(21), rt.MakeClosure(fnDouble))))

	// A partially applied binary function still needs one argument.
	addTen := rt.MakeClosure(fnAdd, rt.BoxInt(10))
	require.Equal(t, int64(15), rt.UnboxInt(rt.Select(NoPos, rt.BoxInt(5), addTen)))

	// A unary function whose argument is already captured is not applied.
	saturated := rt.MakeClosure(fnDouble, rt.BoxInt(3))
	m, ok := rt.Select(NoPos, rt.BoxInt(5), saturated).(*Unknown)
	require.True(t, ok)
	require.Equal(t, "select on Int at <no-pos>", m.Name())
}

func TestSelectFallsBackToMarker(t *testing.T) {
	rt := newTestRuntime(t)

	m := rt.Select(NoPos, rt.BoxInt(1), rt.BoxError("size"))
	u, ok := m.(*Unknown)
	require.True(t, ok)
	require.Equal(t, "size", u.Name())

	m = rt.Select(NoPos, rt.BoxInt(1), rt.MakeClosure(fnAdd))
	require.Equal(t, VKUnknown, m.Kind())

	err := expectPanic(t, PanicUnresolvedIdentifier, func() { rt.BinaryOp(OpAdd, m, rt.BoxInt(1)) })
	require.Contains(t, err.Message, "select")
}

func TestIsConstructorExact(t *testing.T) {
	rt := newTestRuntime(t)
	foo := rt.MakeData(shapeType, 0)
	fooBar := rt.MakeData(shapeType, 1, rt.BoxInt(3))

	require.True(t, rt.IsConstructor(foo, "Foo"))
	require.False(t, rt.IsConstructor(foo, "FooBar"))
	require.False(t, rt.IsConstructor(fooBar, "Foo"))
	require.True(t, rt.IsConstructor(fooBar, "FooBar"))
	require.False(t, rt.IsConstructor(rt.BoxInt(1), "Foo"))
	require.True(t, rt.IsConstructor(rt.Some(rt.Unit()), "Some"))
	require.True(t, rt.IsConstructor(rt.None(), "None"))
}

func TestCheckTag(t *testing.T) {
	rt := newTestRuntime(t)
	require.True(t, rt.CheckTag(rt.MakeData(shapeType, 1, rt.BoxInt(1)), 1))
	require.False(t, rt.CheckTag(rt.MakeData(shapeType, 0), 1))
	require.True(t, rt.CheckTag(rt.NewVar(rt.Unit()), 0))

	err := expectPanic(t, PanicTypeMismatch, func() { rt.CheckTag(rt.BoxInt(1), 0) })
	require.Contains(t, err.Message, "Int")
}

func TestMakeDataValidation(t *testing.T) {
	rt := newTestRuntime(t)
	expectPanic(t, PanicArityMismatch, func() { rt.MakeData(pairType, 0, rt.BoxInt(1)) })
	expectPanic(t, PanicUnknownType, func() { rt.MakeData(shapeType, 2) })
	expectPanic(t, PanicUnknownType, func() { rt.MakeData(types.New("Ghost"), 0) })
	expectPanic(t, PanicUnknownType, func() { rt.FindDataType(types.Int) })
}

func TestOptionScenario(t *testing.T) {
	rt := newTestRuntime(t)
	some := rt.Some(rt.BoxInt(5))

	require.Equal(t, "Some(5)", rt.UnboxString(rt.ToString(some)))
	require.True(t, rt.CheckTag(some, 1))
	require.False(t, rt.CheckTag(some, 0))
	require.Equal(t, "None", rt.Show(rt.None()))
	require.Same(t, rt.None(), rt.Option(rt.Unit(), false))
	require.Same(t, rt.BoxInt(5), rt.Select(NoPos, some, rt.BoxError("value")))
}
