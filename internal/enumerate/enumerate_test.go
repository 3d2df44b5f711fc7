package enumerate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apistub/internal/shape"
	"apistub/internal/typedef"
)

func names(members []Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}

	return out
}

func inventoryItem(marks typedef.Marker, extra ...typedef.Callable) *typedef.Static {
	return &typedef.Static{
		TypeName: "FakeInventoryItem",
		Marks:    marks,
		Fields: []typedef.Annotation{
			{Name: "name", Expr: "str"},
			{Name: "unit_price", Expr: "float"},
			{Name: "quantity_on_hand", Expr: "int"},
		},
		Methods: append(extra, typedef.Callable{
			Name:    "total_cost",
			Params:  []typedef.Param{{Name: "self"}},
			Returns: "float",
		}),
	}
}

func TestMembers_PlainClass(t *testing.T) {
	members, err := Members(inventoryItem(0), shape.PlainClass)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "unit_price", "quantity_on_hand", "total_cost"}, names(members))
	assert.Equal(t, KindField, members[0].Kind)
	assert.Equal(t, "float", members[1].Expr)
	assert.Equal(t, KindMethod, members[3].Kind)
	require.NotNil(t, members[3].Callable)
	assert.Equal(t, "float", members[3].Callable.Returns)
}

func TestMembers_ValueObjectMatchesPlainClass(t *testing.T) {
	synthesized := []typedef.Callable{
		{Name: "__init__", Synthesized: true},
		{Name: "__repr__", Synthesized: true},
		{Name: "__eq__", Synthesized: true},
	}

	plain, err := Members(inventoryItem(0), shape.PlainClass)
	require.NoError(t, err)

	value, err := Members(inventoryItem(typedef.MarkerGeneratedInit, synthesized...), shape.ValueObjectClass)
	require.NoError(t, err)

	assert.Equal(t, plain, value)
}

func TestMembers_ExcludesUniversalBaseAndPrivate(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Widget",
		Fields: []typedef.Annotation{
			{Name: "_cache", Expr: "dict"},
			{Name: "size", Expr: "int"},
			{Name: "size", Expr: "str"},
		},
		Methods: []typedef.Callable{
			{Name: "__repr__", Owner: "object"},
			{Name: "__hash__", Owner: "Base"},
			{Name: "__eq__", Owner: "builtins.object"},
			{Name: "resize"},
			{Name: "_helper"},
			{Name: "__mangled"},
			{Name: "__len__"},
			{Name: "inherited_api", Owner: "Base"},
		},
	}

	members, err := Members(def, shape.PlainClass)
	require.NoError(t, err)

	assert.Equal(t, []string{"size", "resize", "__len__", "inherited_api"}, names(members))
	assert.Equal(t, "str", members[0].Expr)
}

func TestMembers_OwnRedefinitionCountedOnceAtOwnPosition(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Money",
		Methods: []typedef.Callable{
			{Name: "__eq__", Owner: "object"},
			{Name: "convert", Owner: "Base"},
			{Name: "amount"},
			{Name: "__eq__"},
			{Name: "convert", Owner: "Money"},
		},
	}

	members, err := Members(def, shape.PlainClass)
	require.NoError(t, err)

	assert.Equal(t, []string{"amount", "__eq__", "convert"}, names(members))
}

func TestMembers_IncludePrivate(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Widget",
		Fields:   []typedef.Annotation{{Name: "_cache", Expr: "dict"}},
		Methods:  []typedef.Callable{{Name: "_helper"}},
	}

	members, err := New(Options{IncludePrivate: true}).Members(def, shape.PlainClass)
	require.NoError(t, err)

	assert.Equal(t, []string{"_cache", "_helper"}, names(members))
}

func TestMembers_RecordDeclarationIsReversed(t *testing.T) {
	def := &typedef.Static{
		TypeName: "FakeTypedDict",
		Marks:    typedef.MarkerRecord,
		Fields: []typedef.Annotation{
			{Name: "name", Expr: "str"},
			{Name: "age", Expr: "int"},
			{Name: "email", Expr: "str"},
		},
		Methods: []typedef.Callable{{Name: "ignored"}},
	}

	members, err := Members(def, shape.RecordDeclaration)
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "age", "name"}, names(members))
	for _, m := range members {
		assert.Equal(t, KindField, m.Kind)
		assert.Nil(t, m.Callable)
	}
}

func TestMembers_RecordRedeclaredKeepsFirstPosition(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Row",
		Marks:    typedef.MarkerRecord,
		Fields: []typedef.Annotation{
			{Name: "id", Expr: "int"},
			{Name: "label", Expr: "str"},
			{Name: "id", Expr: "uuid"},
		},
	}

	members, err := Members(def, shape.RecordDeclaration)
	require.NoError(t, err)

	assert.Equal(t, []string{"label", "id"}, names(members))
	assert.Equal(t, "uuid", members[1].Expr)
}

func TestMembers_AttributeShadowsCallable(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Widget",
		Fields:   []typedef.Annotation{{Name: "size", Expr: "int"}},
		Methods:  []typedef.Callable{{Name: "size", Returns: "str"}, {Name: "resize"}},
	}

	members, err := Members(def, shape.PlainClass)
	require.NoError(t, err)

	assert.Equal(t, []string{"size", "resize"}, names(members))
	assert.Equal(t, KindField, members[0].Kind)
	assert.Equal(t, "int", members[0].Expr)
}

func TestMembers_Enumeration(t *testing.T) {
	def := &typedef.Static{
		TypeName:   "Color",
		ModulePath: "paint",
		Marks:      typedef.MarkerEnumBase,
		Values:     []string{"RED", "GREEN", "_ignore_", "BLUE"},
	}

	members, err := Members(def, shape.Enumeration)
	require.NoError(t, err)

	assert.Equal(t, []string{"RED", "GREEN", "BLUE"}, names(members))
	assert.Equal(t, "paint.Color", members[0].Expr)
}

func TestMembers_UnknownUsesPlainClassStrategy(t *testing.T) {
	unknown, err := Members(inventoryItem(0), shape.Unknown)
	require.NoError(t, err)

	plain, err := Members(inventoryItem(0), shape.PlainClass)
	require.NoError(t, err)

	assert.Equal(t, plain, unknown)
}

type nameOnly struct{}

func (nameOnly) Name() string   { return "Opaque" }
func (nameOnly) Module() string { return "" }

type brokenTable struct{ nameOnly }

func (brokenTable) Annotations() ([]typedef.Annotation, error) {
	return nil, errors.New("annotation table unavailable")
}

func TestMembers_NotIntrospectable(t *testing.T) {
	_, err := Members(nameOnly{}, shape.PlainClass)
	assert.ErrorIs(t, err, ErrNotIntrospectable)

	_, err = Members(nameOnly{}, shape.RecordDeclaration)
	assert.ErrorIs(t, err, ErrNotIntrospectable)

	_, err = Members(nameOnly{}, shape.Enumeration)
	assert.ErrorIs(t, err, ErrNotIntrospectable)

	_, err = Members(nil, shape.PlainClass)
	assert.ErrorIs(t, err, ErrNotIntrospectable)

	_, err = Members(brokenTable{}, shape.PlainClass)
	assert.ErrorIs(t, err, ErrNotIntrospectable)
	assert.ErrorContains(t, err, "annotation table unavailable")
}

func TestUniversalBase(t *testing.T) {
	assert.True(t, IsUniversalMember("__init__"))
	assert.False(t, IsUniversalMember("__len__"))
	assert.True(t, IsUniversalOwner("object"))
	assert.False(t, IsUniversalOwner("Base"))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "field", KindField.String())
	assert.Equal(t, "method", KindMethod.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
