package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelShouldEmit(t *testing.T) {
	require.False(t, LevelOff.ShouldEmit(ScopeRuntime))
	require.True(t, LevelPhase.ShouldEmit(ScopeImage))
	require.False(t, LevelPhase.ShouldEmit(ScopeCall))
	require.True(t, LevelDetail.ShouldEmit(ScopeCall))
	require.False(t, LevelDetail.ShouldEmit(ScopeAlloc))
	require.True(t, LevelDebug.ShouldEmit(ScopeAlloc))

	_, err := ParseLevel("loud")
	require.Error(t, err)
	lvl, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	require.Equal(t, LevelDetail, lvl)
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopeRuntime, "runtime.init")
	span.WithExtra("types", "3").End("ok")
	Point(tr, ScopeCall, "call:main", "", nil)

	out := buf.String()
	require.Contains(t, out, "→ runtime.init")
	require.Contains(t, out, "← runtime.init (ok) {types=3}")
	require.NotContains(t, out, "call:main")
}

func TestChildSpanCarriesParent(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	parent := Begin(ring, ScopeImage, "image.link")
	child := parent.Child(ScopeImage, "image.resolve")
	child.End("")
	parent.End("")

	snap := ring.Snapshot()
	require.Len(t, snap, 4)
	require.Equal(t, "image.resolve", snap[1].Name)
	require.Equal(t, parent.ID(), snap[1].ParentID)
	require.NotZero(t, child.ID())
	require.Less(t, snap[0].Seq, snap[3].Seq)

	inert := Begin(Nop, ScopeImage, "x")
	require.Zero(t, inert.Child(ScopeImage, "y").ID())
	require.Zero(t, inert.End(""))
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeAlloc, "alloc", "Int", map[string]string{"bytes": "16"})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	require.Equal(t, "alloc", decoded["scope"])
	require.Equal(t, "point", decoded["kind"])
}

func TestRingTracerWrapsAndKeepsFatal(t *testing.T) {
	ring := NewRingTracer(2, LevelError)
	Point(ring, ScopeCall, "dropped", "", nil)
	for _, name := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeRuntime, Name: name})
	}
	snap := ring.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, "b", snap[0].Name)
	require.Equal(t, "c", snap[1].Name)

	var buf bytes.Buffer
	require.NoError(t, ring.Dump(&buf, FormatText))
	require.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	require.False(t, tr.Enabled())

	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	multi, ok := tr.(*MultiTracer)
	require.True(t, ok)
	require.NotNil(t, multi.Ring())
}

func TestContextPropagation(t *testing.T) {
	require.Equal(t, Nop, FromContext(context.Background()))
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	require.Equal(t, Tracer(ring), FromContext(ctx))
}

func TestErrorLevelAdmitsOnlyDirectRuntimeEvents(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatText)
	Point(tr, ScopeRuntime, "runtime.shutdown", "", nil)
	tr.Emit(&Event{Kind: KindPoint, Scope: ScopeImage, Name: "image.load"})
	tr.Emit(&Event{Kind: KindPoint, Scope: ScopeRuntime, Name: "runtime.fatal", Detail: "panic VM1001"})

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "\n"))
	require.Contains(t, out, "• runtime.fatal (panic VM1001)")
}

func TestParseModeAndFormat(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	require.Equal(t, ModeStream, m)
	m, err = ParseMode("Both")
	require.NoError(t, err)
	require.Equal(t, "both", m.String())
	_, err = ParseMode("disk")
	require.Error(t, err)

	f, err := ParseFormat("json")
	require.NoError(t, err)
	require.Equal(t, FormatNDJSON, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)

	require.Equal(t, "unknown", Level(9).String())
	require.False(t, Level(9).ShouldEmit(ScopeRuntime))
}
