package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArityLaw(t *testing.T) {
	rt := newTestRuntime(t)
	for k := 0; k <= 4; k++ {
		for m := 0; m <= 4; m++ {
			captured := make([]Value, k)
			supplied := make([]Value, m)
			for i := range captured {
				captured[i] = rt.BoxInt(1)
			}
			for i := range supplied {
				supplied[i] = rt.BoxInt(1)
			}
			c := rt.MakeClosure(fnSum3, captured...)
			err := Guard(func() { rt.Apply(c, supplied) })
			if k+m == 3 {
				require.Nil(t, err, "k=%d m=%d", k, m)
				continue
			}
			require.NotNil(t, err, "k=%d m=%d", k, m)
			require.Equal(t, PanicArityMismatch, err.Code)
			require.Contains(t, err.Message, "sum3")
		}
	}
}

func TestApplyPrependsCaptured(t *testing.T) {
	rt := newTestRuntime(t)
	var got []Value
	rt.funcs = append(rt.funcs, Function{Name: "record", Arity: 3, Entry: func(_ *Runtime, args []Value) Value {
		got = args
		return rt.Unit()
	}})
	c := rt.MakeClosure(len(rt.funcs)-1, rt.BoxInt(1), rt.BoxInt(2))
	rt.Apply(c, []Value{rt.BoxInt(3)})
	require.Len(t, got, 3)
	for i, v := range got {
		require.Equal(t, int64(i+1), rt.UnboxInt(v))
	}
	require.Len(t, c.Captured(), 2)
}

func TestApplyFailures(t *testing.T) {
	rt := newTestRuntime(t)

	err := expectPanic(t, PanicUnknownFunction, func() { rt.Apply(rt.MakeClosure(99), nil) })
	require.Contains(t, err.Message, "99")

	err = expectPanic(t, PanicTypeMismatch, func() { rt.Apply(rt.BoxInt(1), nil) })
	require.Contains(t, err.Message, "Closure")

	err = expectPanic(t, PanicUnresolvedIdentifier, func() { rt.Apply(rt.BoxError("callback"), nil) })
	require.Contains(t, err.Message, "callback")

	err = expectPanic(t, PanicArityMismatch, func() {
		rt.ApplyAt(Position{Line: 12, Column: 3}, rt.MakeClosure(fnAdd), []Value{rt.BoxInt(1)})
	})
	require.Equal(t, 12, err.Pos.Line)
}

func TestCallRecoversAtBoundary(t *testing.T) {
	rt := newTestRuntime(t)

	v, err := rt.Call(rt.MakeClosure(fnAdd, rt.BoxInt(40)), rt.BoxInt(2))
	require.Nil(t, err)
	require.Equal(t, int64(42), rt.UnboxInt(v))

	v, err = rt.CallFunction("answer")
	require.Nil(t, err)
	require.Same(t, rt.BoxInt(42), v)

	_, err = rt.CallFunction("add", rt.BoxInt(1), rt.MakeString("x"))
	require.NotNil(t, err)
	require.Equal(t, PanicTypeMismatch, err.Code)

	_, err = rt.CallFunction("nope")
	require.NotNil(t, err)
	require.Equal(t, PanicUnknownFunction, err.Code)
}

func TestGuardPropagatesForeignPanics(t *testing.T) {
	require.PanicsWithValue(t, "boom", func() {
		Guard(func() { panic("boom") })
	})
}
