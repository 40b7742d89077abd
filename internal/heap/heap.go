// Package heap is the allocator façade of the runtime. Memory is owned by the
// Go collector; the façade routes every runtime allocation through one place so
// it can be counted and reported.
package heap

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strconv"
	"unsafe"

	"kestrel/internal/trace"
)

type counters struct {
	allocCount  uint64 // every allocation
	atomicCount uint64 // pointer-free allocations
	totalBytes  uint64
}

// Allocator accounts for runtime allocations. It is not safe for concurrent
// use; a runtime owns exactly one.
type Allocator struct {
	counters counters
	tracer   trace.Tracer
}

// New returns an allocator. A nil tracer disables allocation events.
func New(tracer trace.Tracer) *Allocator {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Allocator{tracer: tracer}
}

// Reset clears the counters for a fresh session.
func (a *Allocator) Reset() {
	a.counters = counters{}
}

func (a *Allocator) count(size uintptr, atomic bool) {
	a.counters.allocCount++
	a.counters.totalBytes += uint64(size)
	if atomic {
		a.counters.atomicCount++
	}
}

func (a *Allocator) tracing() bool {
	return a.tracer.Enabled() && a.tracer.Level().ShouldEmit(trace.ScopeAlloc)
}

func (a *Allocator) emit(size uintptr, atomic bool, what string) {
	trace.Point(a.tracer, trace.ScopeAlloc, "alloc", what, map[string]string{
		"bytes":  strconv.FormatUint(uint64(size), 10),
		"atomic": strconv.FormatBool(atomic),
	})
}

// Allocate returns a zeroed buffer of size bytes that the collector scans.
func (a *Allocator) Allocate(size int) []byte {
	if size < 0 {
		panic(fmt.Sprintf("heap: negative allocation size %d", size))
	}
	a.count(uintptr(size), false)
	if a.tracing() {
		a.emit(uintptr(size), false, "raw")
	}
	return make([]byte, size)
}

// AllocateUntracked returns a zeroed pointer-free buffer of size bytes.
func (a *Allocator) AllocateUntracked(size int) []byte {
	if size < 0 {
		panic(fmt.Sprintf("heap: negative allocation size %d", size))
	}
	a.count(uintptr(size), true)
	if a.tracing() {
		a.emit(uintptr(size), true, "raw")
	}
	return make([]byte, size)
}

// Cell allocates a zeroed cell of type T that may hold references.
func Cell[T any](a *Allocator) *T {
	p := new(T)
	a.count(unsafe.Sizeof(*p), false)
	if a.tracing() {
		a.emit(unsafe.Sizeof(*p), false, fmt.Sprintf("%T", *p))
	}
	return p
}

// AtomicCell allocates a zeroed pointer-free cell of type T.
func AtomicCell[T any](a *Allocator) *T {
	p := new(T)
	a.count(unsafe.Sizeof(*p), true)
	if a.tracing() {
		a.emit(unsafe.Sizeof(*p), true, fmt.Sprintf("%T", *p))
	}
	return p
}

// Slice allocates a slice of n elements of type T.
func Slice[T any](a *Allocator, n int) []T {
	if n < 0 {
		panic(fmt.Sprintf("heap: negative slice length %d", n))
	}
	var zero T
	size := unsafe.Sizeof(zero) * uintptr(n)
	a.count(size, false)
	if a.tracing() {
		a.emit(size, false, fmt.Sprintf("[]%T", zero))
	}
	return make([]T, n)
}

// String copies s into pointer-free storage owned by the allocator.
func (a *Allocator) String(s string) string {
	if s == "" {
		return ""
	}
	buf := a.AllocateUntracked(len(s))
	copy(buf, s)
	return unsafe.String(&buf[0], len(buf))
}

// Stats is a snapshot of allocator and collector statistics.
type Stats struct {
	HeapSize    uint64 // bytes of heap obtained from the OS
	Collections uint32 // completed GC cycles
	TotalBytes  uint64 // bytes allocated through the façade
	Allocations uint64 // allocations through the façade
	Atomic      uint64 // pointer-free allocations through the façade
}

// MeanSize returns the mean allocation size in bytes.
func (s Stats) MeanSize() float64 {
	if s.Allocations == 0 {
		return 0
	}
	return float64(s.TotalBytes) / float64(s.Allocations)
}

// Stats returns the current statistics.
func (a *Allocator) Stats() Stats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Stats{
		HeapSize:    ms.HeapSys,
		Collections: ms.NumGC,
		TotalBytes:  a.counters.totalBytes,
		Allocations: a.counters.allocCount,
		Atomic:      a.counters.atomicCount,
	}
}

// Report writes the statistics in the form printed at verbose shutdown.
func (s Stats) Report(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"heap size = %d, GC count = %d, total bytes = %d, allocations = %d (atomic %d), mean allocation = %.1f bytes\n",
		s.HeapSize, s.Collections, s.TotalBytes, s.Allocations, s.Atomic, s.MeanSize())
	return err
}

// SetGCPercent applies a collector target percentage. Zero keeps the current
// setting. It returns the previous value.
func SetGCPercent(percent int) int {
	if percent == 0 {
		prev := debug.SetGCPercent(100)
		debug.SetGCPercent(prev)
		return prev
	}
	return debug.SetGCPercent(percent)
}
