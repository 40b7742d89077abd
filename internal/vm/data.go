package vm

import (
	"fmt"

	"kestrel/internal/heap"
	"kestrel/internal/types"
)

// FindDataType returns the registry entry for typ, failing with UnknownType.
func (rt *Runtime) FindDataType(typ *types.TypeID) *types.DataType {
	dt, ok := rt.types.Find(typ)
	if !ok {
		rt.eb.raise(PanicUnknownType, "findDataType", NoPos, fmt.Sprintf("couldn't find type %s", typ))
	}
	return dt
}

// MakeData constructs an instance of constructor tag of typ. The field count
// must equal the constructor's arity.
func (rt *Runtime) MakeData(typ *types.TypeID, tag int, fields ...Value) *Data {
	return rt.makeData("makeData", typ, tag, fields)
}

func (rt *Runtime) makeData(op string, typ *types.TypeID, tag int, fields []Value) *Data {
	dt := rt.FindDataType(typ)
	c, ok := dt.Constructor(tag)
	if !ok {
		rt.eb.raise(PanicUnknownType, op, NoPos, fmt.Sprintf("type %s has no constructor with tag %d", dt.Name(), tag))
	}
	if len(fields) != c.Arity() {
		rt.eb.raise(PanicArityMismatch, op, NoPos,
			fmt.Sprintf("constructor %s takes %d fields, got %d", c.Name, c.Arity(), len(fields)))
	}
	if tag == 0 && len(fields) == 0 && dt.Type == types.OptionData.Type {
		return &rt.canon.none
	}
	d := heap.Cell[Data](rt.heap)
	d.typ, d.tag, d.fields = dt.Type, tag, fields
	return d
}

// None returns the shared empty Option.
func (rt *Runtime) None() *Data { return &rt.canon.none }

// Some wraps v in an Option.
func (rt *Runtime) Some(v Value) *Data {
	d := heap.Cell[Data](rt.heap)
	d.typ, d.tag, d.fields = types.Option, 1, []Value{v}
	return d
}

// Option returns Some(v) when ok, None otherwise.
func (rt *Runtime) Option(v Value, ok bool) *Data {
	if !ok {
		return rt.None()
	}
	return rt.Some(v)
}

// Select resolves a field access or method-style call on v.
//
// On a registered data value with an unresolved name, the name is matched
// against the fields of v's constructor and a miss is fatal. A closure that
// still needs exactly one argument is applied to v. Anything else yields an
// Unknown marker which fails when it is next used.
func (rt *Runtime) Select(pos Position, v, ident Value) Value {
	if d, ok := v.(*Data); ok {
		if u, ok := ident.(*Unknown); ok {
			dt := rt.FindDataType(d.typ)
			c, ok := dt.Constructor(d.tag)
			if !ok {
				rt.eb.raise(PanicUnknownType, "select", pos, fmt.Sprintf("type %s has no constructor with tag %d", dt.Name(), d.tag))
			}
			idx, ok := c.FieldIndex(u.name)
			if !ok {
				rt.eb.raise(PanicFieldNotFound, "select", pos, fmt.Sprintf("couldn't find field %s in %s", u.name, c.Name))
			}
			return d.fields[idx]
		}
	}
	if c, ok := ident.(*Closure); ok && rt.remainingArity(c) == 1 {
		return rt.ApplyAt(pos, c, []Value{v})
	}
	if u, ok := ident.(*Unknown); ok {
		return rt.BoxError(u.name)
	}
	return rt.BoxError(fmt.Sprintf("select on %s at %s", TypeNameOf(v), pos))
}

// IsConstructor reports whether v is a data value built by the constructor
// with exactly the given name.
func (rt *Runtime) IsConstructor(v Value, name string) bool {
	d, ok := v.(*Data)
	if !ok {
		return false
	}
	dt := rt.FindDataType(d.typ)
	c, ok := dt.Constructor(d.tag)
	return ok && c.Name == name
}

// CheckTag reports whether v was built by constructor tag. A Var is treated
// as a single-constructor type with tag 0.
func (rt *Runtime) CheckTag(v Value, tag int) bool {
	switch x := v.(type) {
	case *Data:
		return x.tag == tag
	case *Var:
		return tag == 0
	case *Unknown:
		rt.eb.unresolved("checkTag", NoPos, x.name)
	case nil:
		rt.eb.typeMismatch("checkTag", NoPos, "data value", "<nil>")
	default:
		rt.eb.typeMismatch("checkTag", NoPos, "data value", v.Type().Name)
	}
	return false
}

// Field returns field i of a data value.
func (rt *Runtime) Field(v Value, i int) Value {
	d, ok := v.(*Data)
	if !ok {
		rt.eb.typeMismatch("field", NoPos, "data value", TypeNameOf(v))
	}
	if i < 0 || i >= len(d.fields) {
		rt.eb.outOfBounds("field", i, len(d.fields))
	}
	return d.fields[i]
}

// ConstructorName returns the name of the constructor that built d.
func (rt *Runtime) ConstructorName(d *Data) string {
	dt := rt.FindDataType(d.typ)
	c, ok := dt.Constructor(d.tag)
	if !ok {
		rt.eb.raise(PanicUnknownType, "constructorName", NoPos, fmt.Sprintf("type %s has no constructor with tag %d", dt.Name(), d.tag))
	}
	return c.Name
}

// BoxError creates the marker compiled code uses for an identifier that did
// not resolve. Any operation other than select that receives it is fatal.
func (rt *Runtime) BoxError(name string) *Unknown {
	v := heap.Cell[Unknown](rt.heap)
	v.typ, v.name = types.Unknown, name
	return v
}
