package vm

import (
	"fmt"
	"strings"
	"time"

	"kestrel/internal/trace"
)

// PanicCode identifies the class of a fatal runtime error.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicTypeMismatch         PanicCode = 1001 // VM1001: operand tags differ or do not match the expected tag
	PanicUnresolvedIdentifier PanicCode = 1002 // VM1002: a deferred, never-resolved name reached dispatch
	PanicArityMismatch        PanicCode = 1003 // VM1003: wrong argument or field count
	PanicUnknownFunction      PanicCode = 1004 // VM1004: function index outside the function table
	PanicUnknownType          PanicCode = 1005 // VM1005: type or constructor tag absent from the registry
	PanicFieldNotFound        PanicCode = 1006 // VM1006: select found no matching field
	PanicUnsupportedOperation PanicCode = 1007 // VM1007: operator applied to a type it is not defined for
	PanicEncodingError        PanicCode = 1008 // VM1008: malformed byte sequence where text is expected
	PanicOutOfBounds          PanicCode = 1009 // VM1009: index or copy range outside a container
	PanicDivisionByZero       PanicCode = 1010 // VM1010: integer division by zero
	PanicInvalidPattern       PanicCode = 1011 // VM1011: regular expression failed to compile
	PanicHostError            PanicCode = 1012 // VM1012: file or OS operation failed
	PanicInvalidArgument      PanicCode = 1013 // VM1013: argument outside the accepted domain
	PanicUnsupportedIntrinsic PanicCode = 1998 // VM1998: native entry point missing
	PanicUnimplemented        PanicCode = 1999 // VM1999: unimplemented operation code
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// Name returns the taxonomy name of the code.
func (c PanicCode) Name() string {
	switch c {
	case PanicTypeMismatch:
		return "TypeMismatch"
	case PanicUnresolvedIdentifier:
		return "UnresolvedIdentifier"
	case PanicArityMismatch:
		return "ArityMismatch"
	case PanicUnknownFunction:
		return "UnknownFunction"
	case PanicUnknownType:
		return "UnknownType"
	case PanicFieldNotFound:
		return "FieldNotFound"
	case PanicUnsupportedOperation:
		return "UnsupportedOperation"
	case PanicEncodingError:
		return "EncodingError"
	case PanicOutOfBounds:
		return "OutOfBounds"
	case PanicDivisionByZero:
		return "DivisionByZero"
	case PanicInvalidPattern:
		return "InvalidPattern"
	case PanicHostError:
		return "HostError"
	case PanicInvalidArgument:
		return "InvalidArgument"
	case PanicUnsupportedIntrinsic:
		return "UnsupportedIntrinsic"
	case PanicUnimplemented:
		return "Unimplemented"
	default:
		return "Unknown"
	}
}

// Position is a source position hint supplied by compiled code.
type Position struct {
	Line   int
	Column int
}

// NoPos is the zero position, used by native callers.
var NoPos = Position{}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return "<no-pos>"
	}
	if p.Column > 0 {
		return fmt.Sprintf("line %d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// VMError is a fatal runtime error. The runtime raises it with panic; it is
// recovered only at the outer boundary (Runtime.Call, Guard).
type VMError struct {
	Code    PanicCode
	Op      string // operation that failed, e.g. "unbox", "apply"
	Message string
	Pos     Position
}

// Error implements the error interface.
func (e *VMError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic %s: %s: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("panic %s: %s", e.Code, e.Message)
}

// Format renders the error with its classification and position.
func (e *VMError) Format() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	sb.WriteString(" [")
	sb.WriteString(e.Code.Name())
	sb.WriteString("]\n")
	sb.WriteString("at ")
	sb.WriteString(e.Pos.String())
	sb.WriteString("\n")
	return sb.String()
}

// errorBuilder constructs VMError values and raises them.
type errorBuilder struct {
	rt *Runtime
}

func (eb *errorBuilder) raise(code PanicCode, op string, pos Position, msg string) {
	e := &VMError{Code: code, Op: op, Message: msg, Pos: pos}
	if eb.rt != nil && eb.rt.tracer.Enabled() {
		// Emitted directly so an error-level ring still records it.
		eb.rt.tracer.Emit(&trace.Event{
			Time:   time.Now(),
			Kind:   trace.KindPoint,
			Scope:  trace.ScopeRuntime,
			Name:   "runtime.fatal",
			Detail: e.Error(),
			Extra:  map[string]string{"code": code.String(), "pos": pos.String()},
		})
	}
	panic(e)
}

func (eb *errorBuilder) typeMismatch(op string, pos Position, expected, got string) {
	eb.raise(PanicTypeMismatch, op, pos, fmt.Sprintf("expected %s, got %s", expected, got))
}

func (eb *errorBuilder) operandMismatch(op string, pos Position, lhs, rhs string) {
	eb.raise(PanicTypeMismatch, op, pos, fmt.Sprintf("type mismatch: lhs = %s, rhs = %s", lhs, rhs))
}

func (eb *errorBuilder) unresolved(op string, pos Position, name string) {
	eb.raise(PanicUnresolvedIdentifier, op, pos, fmt.Sprintf("undefined identifier %s", name))
}

func (eb *errorBuilder) unsupported(op string, pos Position, what, typeName string) {
	eb.raise(PanicUnsupportedOperation, op, pos, fmt.Sprintf("%s is not defined for type %s", what, typeName))
}

func (eb *errorBuilder) outOfBounds(op string, index, length int) {
	eb.raise(PanicOutOfBounds, op, NoPos, fmt.Sprintf("index %d out of bounds for length %d", index, length))
}

// Fail raises a fatal runtime error on behalf of native code. It does not
// return.
func (rt *Runtime) Fail(code PanicCode, op string, format string, args ...any) {
	rt.eb.raise(code, op, NoPos, fmt.Sprintf(format, args...))
}
