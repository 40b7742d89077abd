package vm

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"kestrel/internal/heap"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// Version is reported in the verbose startup summary.
const Version = "0.1.0"

// smallInts is the size of the canonical Int table, covering 0..smallInts-1.
const smallInts = 100

// NativeFunc is the entry point of a function-table slot. args holds the
// captured prefix followed by the call arguments.
type NativeFunc func(rt *Runtime, args []Value) Value

// Function is one entry of the function table.
type Function struct {
	Name  string
	Arity int
	Entry NativeFunc
}

// Options configures a Runtime.
type Options struct {
	Verbose    bool
	Log        io.Writer    // verbose output; defaults to os.Stderr
	Tracer     trace.Tracer // nil disables tracing
	HashSeed   uint64
	RandomSeed bool // draw the hash seed from crypto/rand, ignoring HashSeed
	Args       []string
}

type canonical struct {
	unit      Unit
	boolTrue  Bool
	boolFalse Bool
	bytes     [256]Byte
	ints      [smallInts]Int
	zero      Float64
	empty     String
	none      Data
}

// Runtime owns the metadata, allocator and canonical values of one program.
// It is single-threaded: values and the runtime must not be shared between
// goroutines without external synchronization.
type Runtime struct {
	types   *types.Table
	funcs   []Function
	byName  map[string]int
	heap    *heap.Allocator
	tracer  trace.Tracer
	eb      *errorBuilder
	verbose bool
	log     io.Writer
	session uuid.UUID
	seed    uint64
	random  bool
	closure uint64
	args    *Array
	canon   canonical
	started time.Time
}

// New validates the program metadata and initializes a runtime: it resets the
// allocator, fills the canonical tables and binds the program arguments.
func New(funcs []Function, data []*types.DataType, opts Options) (*Runtime, error) {
	table, err := types.NewTable(data...)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(funcs))
	for i, fn := range funcs {
		switch {
		case fn.Name == "":
			return nil, fmt.Errorf("function %d: empty name", i)
		case fn.Arity < 0:
			return nil, fmt.Errorf("function %s: negative arity %d", fn.Name, fn.Arity)
		case fn.Entry == nil:
			return nil, fmt.Errorf("function %s: missing entry point", fn.Name)
		}
		if prev, dup := byName[fn.Name]; dup {
			return nil, fmt.Errorf("function %s: defined at %d and %d", fn.Name, prev, i)
		}
		byName[fn.Name] = i
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	rt := &Runtime{
		types:   table,
		funcs:   funcs,
		byName:  byName,
		heap:    heap.New(tracer),
		tracer:  tracer,
		verbose: opts.Verbose,
		log:     logw,
		session: uuid.New(),
		seed:    opts.HashSeed,
		random:  opts.RandomSeed,
		started: time.Now(),
	}
	rt.eb = &errorBuilder{rt: rt}
	if opts.RandomSeed {
		seed, err := randomSeed()
		if err != nil {
			return nil, fmt.Errorf("hash seed: %w", err)
		}
		rt.seed = seed
	}

	span := trace.Begin(tracer, trace.ScopeRuntime, "runtime.init")
	rt.initCanonical()
	rt.bindArgs(opts.Args)
	span.WithExtra("funcs", strconv.Itoa(len(funcs))).
		WithExtra("types", strconv.Itoa(table.Len())).
		End(rt.session.String())

	if rt.verbose {
		rt.printSummary()
	}
	return rt, nil
}

func randomSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (rt *Runtime) initCanonical() {
	rt.heap.Reset()
	c := &rt.canon
	c.unit.typ = types.Unit
	c.boolTrue = Bool{header{types.Bool}, true}
	c.boolFalse = Bool{header{types.Bool}, false}
	for i := range c.bytes {
		c.bytes[i] = Byte{header{types.Byte}, int8(i - 128)}
	}
	for i := range c.ints {
		c.ints[i] = Int{header{types.Int}, int64(i)}
	}
	c.zero.typ = types.Float64
	c.empty.typ = types.String
	c.none = Data{header: header{types.Option}, tag: 0}
}

func (rt *Runtime) bindArgs(args []string) {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = rt.MakeString(a)
	}
	rt.args = rt.wrapArray(elems)
}

func (rt *Runtime) printSummary() {
	seed := "fixed"
	if rt.random {
		seed = "random"
	}
	fmt.Fprintf(rt.log, "kestrel runtime %s, session %s\n", Version, rt.session)
	fmt.Fprintf(rt.log, "# funcs = %d, # types = %d, hash seed = %s\n", len(rt.funcs), rt.types.Len(), seed)
	for _, name := range rt.types.Names() {
		fmt.Fprintf(rt.log, "Type %s\n", name)
	}
}

// Shutdown flushes the tracer and, in verbose mode, prints allocator and
// collector statistics.
func (rt *Runtime) Shutdown() error {
	st := rt.heap.Stats()
	trace.Point(rt.tracer, trace.ScopeRuntime, "runtime.shutdown", rt.session.String(), map[string]string{
		"allocations": strconv.FormatUint(st.Allocations, 10),
		"elapsed":     time.Since(rt.started).String(),
	})
	if rt.verbose {
		if err := st.Report(rt.log); err != nil {
			return err
		}
	}
	return rt.tracer.Flush()
}

// Types returns the data-type registry.
func (rt *Runtime) Types() *types.Table { return rt.types }

// Heap returns the allocator.
func (rt *Runtime) Heap() *heap.Allocator { return rt.heap }

// Tracer returns the runtime tracer; never nil.
func (rt *Runtime) Tracer() trace.Tracer { return rt.tracer }

// Session identifies this runtime instance in logs and traces.
func (rt *Runtime) Session() uuid.UUID { return rt.session }

// Seed returns the hash seed in effect.
func (rt *Runtime) Seed() uint64 { return rt.seed }

// Functions returns the function table.
func (rt *Runtime) Functions() []Function { return rt.funcs }

// FunctionIndex looks up a function by name.
func (rt *Runtime) FunctionIndex(name string) (int, bool) {
	idx, ok := rt.byName[name]
	return idx, ok
}

// Args returns the program arguments as an Array of Strings.
func (rt *Runtime) Args() *Array { return rt.args }

// Call applies callee at the outer boundary. A fatal runtime error is
// recovered and returned; any other panic propagates.
func (rt *Runtime) Call(callee Value, args ...Value) (result Value, vmErr *VMError) {
	name := "<value>"
	if c, ok := callee.(*Closure); ok && c.fn >= 0 && c.fn < len(rt.funcs) {
		name = rt.funcs[c.fn].Name
	}
	span := trace.Begin(rt.tracer, trace.ScopeCall, "call:"+name)
	defer func() {
		if vmErr != nil {
			span.WithExtra("code", vmErr.Code.String())
		}
		span.End("")
	}()
	vmErr = Guard(func() {
		result = rt.Apply(callee, args)
	})
	return result, vmErr
}

// CallFunction calls the named function with no captured arguments.
func (rt *Runtime) CallFunction(name string, args ...Value) (Value, *VMError) {
	idx, ok := rt.byName[name]
	if !ok {
		return nil, &VMError{Code: PanicUnknownFunction, Op: "call", Message: fmt.Sprintf("no function named %s", name)}
	}
	return rt.Call(rt.MakeClosure(idx), args...)
}

// Guard runs fn and converts a fatal runtime error into a return value.
func Guard(fn func()) (vmErr *VMError) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*VMError)
			if !ok {
				panic(r)
			}
			vmErr = e
		}
	}()
	fn()
	return nil
}
