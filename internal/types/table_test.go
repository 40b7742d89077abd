package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func shapeType() *DataType {
	return &DataType{
		Type: New("Shape"),
		Constructors: []Constructor{
			{Name: "Circle", Fields: []string{"radius"}},
			{Name: "Rect", Fields: []string{"w", "h"}},
			{Name: "Empty"},
		},
	}
}

func TestSameByPointerOrName(t *testing.T) {
	a := New("Point")
	b := New("Point")
	require.True(t, Same(a, a))
	require.True(t, Same(a, b))
	require.False(t, Same(a, New("Pair")))
	require.False(t, Same(a, nil))
	require.True(t, Same(nil, nil))
}

func TestTableAlwaysHasOption(t *testing.T) {
	tab, err := NewTable(shapeType())
	require.NoError(t, err)
	require.Equal(t, []string{"Option", "Shape"}, tab.Names())

	opt, ok := tab.Find(&TypeID{Name: "Option"})
	require.True(t, ok)
	some, ok := opt.Constructor(1)
	require.True(t, ok)
	require.Equal(t, "Some", some.Name)
	require.Equal(t, 1, some.Arity())
}

func TestTableFindMatchesByName(t *testing.T) {
	tab, err := NewTable(shapeType())
	require.NoError(t, err)

	d, ok := tab.Find(New("Shape"))
	require.True(t, ok)
	tag, ok := d.TagOf("Rect")
	require.True(t, ok)
	require.Equal(t, 1, tag)
	c, _ := d.Constructor(tag)
	idx, ok := c.FieldIndex("h")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = tab.Find(New("Missing"))
	require.False(t, ok)
	_, ok = d.Constructor(3)
	require.False(t, ok)
}

func TestTableRejectsBadDescriptors(t *testing.T) {
	tests := []struct {
		name string
		data []*DataType
		msg  string
	}{
		{"duplicate", []*DataType{shapeType(), shapeType()}, "duplicate definition"},
		{"builtin", []*DataType{{Type: New("Int"), Constructors: []Constructor{{Name: "I"}}}}, "builtin type"},
		{"empty", []*DataType{{Type: New("Void")}}, "no constructors"},
		{"ctor", []*DataType{{Type: New("T"), Constructors: []Constructor{{Name: "A"}, {Name: "A"}}}}, "duplicate constructor"},
		{"identity", []*DataType{{}}, "missing type identity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.data...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestIsPrimitive(t *testing.T) {
	require.True(t, IsPrimitive(New("Float")))
	require.True(t, IsPrimitive(ByteArray))
	require.False(t, IsPrimitive(Option))
	require.False(t, IsPrimitive(Var))
	require.True(t, IsNumeric(Int16))
	require.False(t, IsNumeric(String))
}
