package vm

import (
	"strconv"
	"strings"
)

// ToString renders v structurally as a String value.
func (rt *Runtime) ToString(v Value) *String {
	if s, ok := v.(*String); ok {
		return s
	}
	return rt.MakeString(rt.Show(v))
}

// Show renders v structurally as a Go string.
func (rt *Runtime) Show(v Value) string {
	var sb strings.Builder
	rt.show(&sb, v)
	return sb.String()
}

func (rt *Runtime) show(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case *Unit:
		sb.WriteString("()")
	case *Bool:
		sb.WriteString(strconv.FormatBool(x.v))
	case *Byte:
		sb.WriteString(strconv.FormatInt(int64(x.v), 10))
	case *Int16:
		sb.WriteString(strconv.FormatInt(int64(x.v), 10))
	case *Int32:
		sb.WriteString(strconv.FormatInt(int64(x.v), 10))
	case *Int:
		sb.WriteString(strconv.FormatInt(x.v, 10))
	case *Float64:
		sb.WriteString(strconv.FormatFloat(x.v, 'f', 9, 64))
	case *String:
		sb.WriteString(x.s)
	case *Closure:
		sb.WriteString("<func>")
	case *ByteArray:
		sb.WriteByte('[')
		for i, b := range x.b {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatInt(int64(int8(b)), 10))
		}
		sb.WriteByte(']')
	case *Array:
		sb.WriteByte('[')
		for i, e := range x.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			rt.show(sb, e)
		}
		sb.WriteByte(']')
	case *Var:
		rt.show(sb, x.v)
	case *Data:
		sb.WriteString(rt.ConstructorName(x))
		if len(x.fields) == 0 {
			return
		}
		sb.WriteByte('(')
		for i, f := range x.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			rt.show(sb, f)
		}
		sb.WriteByte(')')
	case *Unknown:
		rt.eb.unresolved("toString", NoPos, x.name)
	case *Foreign:
		sb.WriteByte('<')
		sb.WriteString(x.typ.Name)
		sb.WriteByte('>')
	default:
		rt.eb.unsupported("toString", NoPos, "toString", TypeNameOf(v))
	}
}
