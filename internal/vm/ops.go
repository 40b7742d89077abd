package vm

import (
	"fmt"
	"strings"

	"kestrel/internal/types"
)

// Opcode selects a binary operator. Values are part of the compiled-code ABI.
type Opcode int

const (
	OpAdd Opcode = 10
	OpSub Opcode = 11
	OpMul Opcode = 12
	OpDiv Opcode = 13
	OpEq  Opcode = 42
	OpNe  Opcode = 43
	OpLt  Opcode = 44
	OpLe  Opcode = 45
	OpGe  Opcode = 46
	OpGt  Opcode = 47
)

// UnaryNeg is the only unary operator code.
const UnaryNeg = 1

func (op Opcode) String() string {
	switch op {
	case OpAdd:
		return "ADD"
	case OpSub:
		return "SUB"
	case OpMul:
		return "MUL"
	case OpDiv:
		return "DIV"
	case OpEq:
		return "EQ"
	case OpNe:
		return "NE"
	case OpLt:
		return "LT"
	case OpLe:
		return "LE"
	case OpGe:
		return "GE"
	case OpGt:
		return "GT"
	default:
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
}

func (op Opcode) relational() bool {
	return op >= OpEq && op <= OpGt
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64
}

func cmp3[T integer | ~float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a == b:
		return 0
	default:
		return 1
	}
}

// Compare orders two values of the same type: -1, 0 or 1. It is defined for
// Bool, the integer widths, Float and String. Floats use naive ordering, so a
// NaN compares greater than everything including itself.
func (rt *Runtime) Compare(lhs, rhs Value) int {
	return rt.compareAt(NoPos, lhs, rhs)
}

func (rt *Runtime) compareAt(pos Position, lhs, rhs Value) int {
	rt.sameType("compare", pos, lhs, rhs)
	switch l := lhs.(type) {
	case *Bool:
		r := rhs.(*Bool)
		switch {
		case l.v == r.v:
			return 0
		case !l.v:
			return -1
		default:
			return 1
		}
	case *Byte:
		return cmp3(l.v, rhs.(*Byte).v)
	case *Int16:
		return cmp3(l.v, rhs.(*Int16).v)
	case *Int32:
		return cmp3(l.v, rhs.(*Int32).v)
	case *Int:
		return cmp3(l.v, rhs.(*Int).v)
	case *Float64:
		return cmp3(l.v, rhs.(*Float64).v)
	case *String:
		return strings.Compare(l.s, rhs.(*String).s)
	}
	rt.eb.unsupported("compare", pos, "comparison", lhs.Type().Name)
	return 0
}

// sameType fails unless both operands carry the same tag. Unresolved
// identifiers are reported by name.
func (rt *Runtime) sameType(op string, pos Position, lhs, rhs Value) {
	if lhs == nil || rhs == nil {
		rt.eb.operandMismatch(op, pos, TypeNameOf(lhs), TypeNameOf(rhs))
	}
	if u, ok := lhs.(*Unknown); ok {
		rt.eb.unresolved(op, pos, u.name)
	}
	if u, ok := rhs.(*Unknown); ok {
		rt.eb.unresolved(op, pos, u.name)
	}
	if !types.Same(lhs.Type(), rhs.Type()) {
		rt.eb.operandMismatch(op, pos, lhs.Type().Name, rhs.Type().Name)
	}
}

// BinaryOp evaluates op on two operands of the same type. Arithmetic is
// defined for the numeric widths and wraps on integer overflow. Integer
// division by zero is fatal; float division follows IEEE. Relational
// operators go through Compare and return the shared Bool values.
func (rt *Runtime) BinaryOp(op Opcode, lhs, rhs Value) Value {
	return rt.BinaryOpAt(NoPos, op, lhs, rhs)
}

// BinaryOpAt is BinaryOp with a source position for diagnostics.
func (rt *Runtime) BinaryOpAt(pos Position, op Opcode, lhs, rhs Value) Value {
	name := "binaryOp " + op.String()
	if op.relational() {
		rt.sameType(name, pos, lhs, rhs)
		c := rt.compareAt(pos, lhs, rhs)
		switch op {
		case OpEq:
			return rt.BoxBool(c == 0)
		case OpNe:
			return rt.BoxBool(c != 0)
		case OpLt:
			return rt.BoxBool(c < 0)
		case OpLe:
			return rt.BoxBool(c <= 0)
		case OpGe:
			return rt.BoxBool(c >= 0)
		default:
			return rt.BoxBool(c > 0)
		}
	}
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
	default:
		rt.eb.raise(PanicUnimplemented, "binaryOp", pos, fmt.Sprintf("unsupported binary operation %d", int(op)))
	}
	rt.sameType(name, pos, lhs, rhs)
	switch l := lhs.(type) {
	case *Byte:
		return rt.BoxByte(arith(rt, pos, op, l.v, rhs.(*Byte).v))
	case *Int16:
		return rt.BoxInt16(arith(rt, pos, op, l.v, rhs.(*Int16).v))
	case *Int32:
		return rt.BoxInt32(arith(rt, pos, op, l.v, rhs.(*Int32).v))
	case *Int:
		return rt.BoxInt(arith(rt, pos, op, l.v, rhs.(*Int).v))
	case *Float64:
		a, b := l.v, rhs.(*Float64).v
		switch op {
		case OpAdd:
			return rt.BoxFloat64(a + b)
		case OpSub:
			return rt.BoxFloat64(a - b)
		case OpMul:
			return rt.BoxFloat64(a * b)
		default:
			return rt.BoxFloat64(a / b)
		}
	}
	rt.eb.unsupported(name, pos, "operator "+op.String(), lhs.Type().Name)
	return nil
}

func arith[T integer](rt *Runtime, pos Position, op Opcode, a, b T) T {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	default:
		if b == 0 {
			rt.eb.raise(PanicDivisionByZero, "binaryOp DIV", pos, "integer division by zero")
		}
		return a / b
	}
}

// UnaryOp applies a unary operator. Only negation of numeric values exists.
func (rt *Runtime) UnaryOp(code int, v Value) Value {
	if code != UnaryNeg {
		rt.eb.raise(PanicUnimplemented, "unaryOp", NoPos, fmt.Sprintf("unsupported unary operation %d", code))
	}
	switch x := v.(type) {
	case *Byte:
		return rt.BoxByte(-x.v)
	case *Int16:
		return rt.BoxInt16(-x.v)
	case *Int32:
		return rt.BoxInt32(-x.v)
	case *Int:
		return rt.BoxInt(-x.v)
	case *Float64:
		return rt.BoxFloat64(-x.v)
	case *Unknown:
		rt.eb.unresolved("unaryOp", NoPos, x.name)
	}
	rt.eb.unsupported("unaryOp", NoPos, "negation", TypeNameOf(v))
	return nil
}
