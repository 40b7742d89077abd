package types

// Constructor describes one variant of a sum type. Its arity is the number of
// declared fields.
type Constructor struct {
	Name   string
	Fields []string
}

// Arity returns the number of fields of the constructor.
func (c *Constructor) Arity() int {
	return len(c.Fields)
}

// FieldIndex returns the position of the named field.
func (c *Constructor) FieldIndex(name string) (int, bool) {
	for i, f := range c.Fields {
		if f == name {
			return i, true
		}
	}
	return -1, false
}

// DataType is the registry entry for a user-defined sum type. Constructors are
// indexed by their zero-based tag.
type DataType struct {
	Type         *TypeID
	Constructors []Constructor
}

// Name returns the owning type's name.
func (d *DataType) Name() string {
	return d.Type.Name
}

// Constructor returns the constructor for tag.
func (d *DataType) Constructor(tag int) (*Constructor, bool) {
	if tag < 0 || tag >= len(d.Constructors) {
		return nil, false
	}
	return &d.Constructors[tag], true
}

// TagOf returns the tag of the constructor with the given name.
func (d *DataType) TagOf(name string) (int, bool) {
	for i := range d.Constructors {
		if d.Constructors[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// OptionData is the descriptor of the builtin Option type: tag 0 is None,
// tag 1 is Some with a single field.
var OptionData = &DataType{
	Type: Option,
	Constructors: []Constructor{
		{Name: "None"},
		{Name: "Some", Fields: []string{"value"}},
	},
}
