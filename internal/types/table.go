package types

import (
	"fmt"
)

// Table is the immutable list of data types known to a runtime. It is built
// once during initialization and only read afterwards.
type Table struct {
	data []*DataType
}

// NewTable validates the descriptors and builds a table. The Option
// descriptor is always present, either as supplied or as OptionData.
func NewTable(data ...*DataType) (*Table, error) {
	t := &Table{data: make([]*DataType, 0, len(data)+1)}
	hasOption := false
	for _, d := range data {
		if d != nil && Same(d.Type, Option) {
			hasOption = true
		}
	}
	if !hasOption {
		t.data = append(t.data, OptionData)
	}
	seen := make(map[string]struct{}, len(data)+1)
	for _, d := range t.data {
		seen[d.Name()] = struct{}{}
	}
	for i, d := range data {
		if d == nil || d.Type == nil || d.Type.Name == "" {
			return nil, fmt.Errorf("type #%d: missing type identity", i)
		}
		if IsPrimitive(d.Type) || Same(d.Type, Var) || Same(d.Type, Unknown) {
			return nil, fmt.Errorf("type %s: builtin type cannot be redefined", d.Name())
		}
		if _, dup := seen[d.Name()]; dup {
			return nil, fmt.Errorf("type %s: duplicate definition", d.Name())
		}
		if len(d.Constructors) == 0 {
			return nil, fmt.Errorf("type %s: no constructors", d.Name())
		}
		ctors := make(map[string]struct{}, len(d.Constructors))
		for _, c := range d.Constructors {
			if c.Name == "" {
				return nil, fmt.Errorf("type %s: constructor without a name", d.Name())
			}
			if _, dup := ctors[c.Name]; dup {
				return nil, fmt.Errorf("type %s: duplicate constructor %s", d.Name(), c.Name)
			}
			ctors[c.Name] = struct{}{}
		}
		seen[d.Name()] = struct{}{}
		t.data = append(t.data, d)
	}
	return t, nil
}

// Find returns the descriptor for id. The scan is linear; tables are small
// and fixed after initialization.
func (t *Table) Find(id *TypeID) (*DataType, bool) {
	if t == nil {
		return nil, false
	}
	for _, d := range t.data {
		if Same(d.Type, id) {
			return d, true
		}
	}
	return nil, false
}

// Len returns the number of registered data types.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.data)
}

// All returns the registered descriptors in registration order.
func (t *Table) All() []*DataType {
	if t == nil {
		return nil
	}
	return append([]*DataType(nil), t.data...)
}

// Names returns the registered type names in registration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.data))
	for i, d := range t.data {
		names[i] = d.Name()
	}
	return names
}
