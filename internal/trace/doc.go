// Package trace provides event tracing for the kestrel runtime.
//
// Tracing is the runtime's logging layer: initialization, image loading,
// top-level calls and fatal errors are recorded as events and written to a
// stream, kept in a ring buffer for post-mortem dumps, or both.
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only fatal-error dumps
//   - LevelPhase: Runtime lifecycle and image loading
//   - LevelDetail: Top-level calls
//   - LevelDebug: Everything including allocations
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeImage, "image.load")
//	defer span.End("")
package trace
