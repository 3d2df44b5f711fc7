package node_test

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"apistub/internal/diagnostic"
	"apistub/internal/enumerate"
	"apistub/internal/resolve"
	"apistub/internal/shape"
	"apistub/internal/typedef"
	"apistub/node"
)

func fakeInventoryItem(marks typedef.Marker, synthesized ...string) *typedef.Static {
	def := &typedef.Static{
		TypeName:   "FakeInventoryItem",
		ModulePath: "tests.class_parsing",
		Marks:      marks,
		Fields: []typedef.Annotation{
			{Name: "name", Expr: "builtins.str"},
			{Name: "unit_price", Expr: "builtins.float"},
			{Name: "quantity_on_hand", Expr: "builtins.int"},
		},
	}

	for _, s := range synthesized {
		def.Methods = append(def.Methods, typedef.Callable{Name: s, Synthesized: true})
	}

	def.Methods = append(def.Methods, typedef.Callable{
		Name:    "total_cost",
		Params:  []typedef.Param{{Name: "self"}},
		Returns: "builtins.float",
	})

	return def
}

func fakeTypedDict() *typedef.Static {
	return &typedef.Static{
		TypeName: "FakeTypedDict",
		Marks:    typedef.MarkerRecord,
		Fields: []typedef.Annotation{
			{Name: "name", Expr: "str"},
			{Name: "age", Expr: "int"},
		},
	}
}

func childNames(c *node.ClassNode) []string {
	var out []string
	for _, ch := range c.ChildNodes() {
		out = append(out, ch.Name())
	}

	return out
}

func TestClassNode_RegularClass(t *testing.T) {
	classNode, err := node.NewClassNode("test", "", fakeInventoryItem(0), "test")
	require.NoError(t, err)

	require.Equal(t, 4, classNode.Len(), spew.Sdump(classNode.View()))
	assert.Equal(t, []string{"name", "unit_price", "quantity_on_hand", "total_cost"}, childNames(classNode))

	children := classNode.ChildNodes()
	for _, ch := range children[:3] {
		assert.IsType(t, &node.FieldNode{}, ch)
	}

	assert.IsType(t, &node.MethodNode{}, children[3])
	assert.Equal(t, "str", classNode.Fields()[0].Type())
	assert.Equal(t, "float", classNode.Fields()[1].Type())
	assert.Equal(t, "int", classNode.Fields()[2].Type())

	sig := classNode.Methods()[0].Signature()
	assert.Equal(t, "float", sig.Returns)
	assert.Equal(t, []node.Param{{Name: "self"}}, sig.Params)
	assert.Equal(t, shape.PlainClass, classNode.Shape())
}

func TestClassNode_DataClass(t *testing.T) {
	dataClass := fakeInventoryItem(typedef.MarkerGeneratedInit, "__init__", "__repr__", "__eq__")

	classNode, err := node.NewClassNode("test", "", dataClass, "test")
	require.NoError(t, err)

	assert.Equal(t, 4, classNode.Len())
	assert.Equal(t, shape.ValueObjectClass, classNode.Shape())
}

func TestClassNode_DataClassMatchesRegularClass(t *testing.T) {
	regular, err := node.NewClassNode("test", "", fakeInventoryItem(0), "regular.py")
	require.NoError(t, err)

	dataClass, err := node.NewClassNode("test", "", fakeInventoryItem(typedef.MarkerGeneratedInit, "__init__", "__eq__"), "dataclass.py")
	require.NoError(t, err)

	assert.NotEqual(t, regular.Shape(), dataClass.Shape())
	assert.True(t, regular.Equal(dataClass))
	assert.True(t, dataClass.Equal(regular))
	assert.Empty(t, cmp.Diff(regular.View().Children, dataClass.View().Children))
}

func TestClassNode_TypedDict(t *testing.T) {
	classNode, err := node.NewClassNode("test", "", fakeTypedDict(), "test")
	require.NoError(t, err)

	children := classNode.ChildNodes()
	require.Len(t, children, 2)

	age, ok := children[0].(*node.FieldNode)
	require.True(t, ok)
	assert.Equal(t, "age", age.Name())
	assert.Equal(t, "int", age.Type())

	name, ok := children[1].(*node.FieldNode)
	require.True(t, ok)
	assert.Equal(t, "name", name.Name())
	assert.Equal(t, "str", name.Type())
}

func TestClassNode_RecordReversesDeclarationOrder(t *testing.T) {
	def := &typedef.Static{TypeName: "Row", Marks: typedef.MarkerRecord}
	for _, n := range []string{"f1", "f2", "f3", "f4", "f5"} {
		def.Fields = append(def.Fields, typedef.Annotation{Name: n, Expr: "str"})
	}

	classNode, err := node.NewClassNode("", "", def, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"f5", "f4", "f3", "f2", "f1"}, childNames(classNode))
	assert.Empty(t, classNode.Methods())
}

func TestClassNode_FieldsThenMethods(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Mixed",
		Fields: []typedef.Annotation{
			{Name: "a", Expr: "int"},
			{Name: "b", Expr: "str"},
		},
		Methods: []typedef.Callable{
			{Name: "m1"},
			{Name: "m2"},
			{Name: "m3"},
		},
	}

	classNode, err := node.NewClassNode("", "", def, "")
	require.NoError(t, err)

	assert.Equal(t, 2+3, classNode.Len())
	assert.Equal(t, []string{"a", "b", "m1", "m2", "m3"}, childNames(classNode))
	assert.Len(t, classNode.Fields(), 2)
	assert.Len(t, classNode.Methods(), 3)
}

func TestClassNode_MissingAnnotationIsUnknown(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Loose",
		Fields:   []typedef.Annotation{{Name: "anything"}},
	}

	classNode, err := node.NewClassNode("", "", def, "")
	require.NoError(t, err)

	require.Len(t, classNode.Fields(), 1)
	assert.Equal(t, resolve.Unknown, classNode.Fields()[0].Type())

	diags := classNode.Diagnostics()
	assert.Equal(t, 0, diags.Len())
}

func TestClassNode_MalformedTypeIsAbsorbed(t *testing.T) {
	var logs bytes.Buffer

	builder := node.NewBuilder(node.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	def := &typedef.Static{
		TypeName: "Broken",
		Fields: []typedef.Annotation{
			{Name: "ok", Expr: "int"},
			{Name: "bad", Expr: "List[int"},
		},
		Methods: []typedef.Callable{{
			Name:    "call",
			Params:  []typedef.Param{{Name: "x", Expr: "Dict[str,,int]"}},
			Returns: "str",
		}},
	}

	classNode, err := builder.Build("Broken", "models", def, "models.py")
	require.NoError(t, err)

	assert.Equal(t, 3, classNode.Len())
	assert.Equal(t, "int", classNode.Fields()[0].Type())
	assert.Equal(t, resolve.Unknown, classNode.Fields()[1].Type())
	assert.Equal(t, resolve.Unknown, classNode.Methods()[0].Signature().Params[0].Type)

	diags := classNode.Diagnostics()
	found := diags.ByCode(diagnostic.CodeTypeResolutionFailed)
	require.Len(t, found, 2)
	assert.Equal(t, "models.Broken", found[0].Type)
	assert.Equal(t, "bad", found[0].Member)
	assert.Equal(t, "call.x", found[1].Member)
	assert.Contains(t, logs.String(), "type resolution failed")
}

func TestClassNode_AmbiguousShapeFallsBackToPlainClass(t *testing.T) {
	def := fakeInventoryItem(typedef.MarkerRecord | typedef.MarkerGeneratedInit)

	classNode, err := node.NewBuilder(node.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))).
		Build("", "", def, "")
	require.NoError(t, err)

	assert.Equal(t, shape.PlainClass, classNode.Shape())
	assert.Equal(t, 4, classNode.Len())

	diags := classNode.Diagnostics()
	assert.Len(t, diags.ByCode(diagnostic.CodeClassificationAmbiguous), 1)
}

func TestClassNode_Enumeration(t *testing.T) {
	def := &typedef.Static{
		TypeName:   "Color",
		ModulePath: "paint",
		Marks:      typedef.MarkerEnumBase,
		Values:     []string{"RED", "GREEN"},
	}

	classNode, err := node.NewClassNode("Color", "paint", def, "paint.py")
	require.NoError(t, err)

	assert.Equal(t, "paint.Color", classNode.ID())
	require.Len(t, classNode.Fields(), 2)
	assert.Equal(t, "Color", classNode.Fields()[0].Type())
}

type opaque struct{}

func (opaque) Name() string   { return "Opaque" }
func (opaque) Module() string { return "" }

type failingCallables struct{ opaque }

func (failingCallables) Callables() ([]typedef.Callable, error) {
	return nil, errors.New("introspection unavailable")
}

func TestClassNode_ConstructionFailed(t *testing.T) {
	tests := []struct {
		name string
		def  typedef.Definition
	}{
		{"nil definition", nil},
		{"no capabilities", opaque{}},
		{"failing capability", failingCallables{}},
		{"record without field mapping", recordWithoutFields{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classNode, err := node.NewClassNode("Opaque", "", tt.def, "")
			assert.Nil(t, classNode)
			require.Error(t, err)
			assert.ErrorIs(t, err, node.ErrConstructionFailed)

			var ce *node.ConstructionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "Opaque", ce.Type)
		})
	}
}

type recordWithoutFields struct{ opaque }

func (recordWithoutFields) Markers() typedef.Marker { return typedef.MarkerRecord }

func TestClassNode_BuildIsIdempotent(t *testing.T) {
	def := fakeInventoryItem(typedef.MarkerGeneratedInit, "__init__")

	first, err := node.NewClassNode("test", "inventory", def, "a")
	require.NoError(t, err)

	second, err := node.NewClassNode("test", "inventory", def, "b")
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Empty(t, cmp.Diff(first, second))
	assert.Equal(t, fakeInventoryItem(typedef.MarkerGeneratedInit, "__init__"), def, "build must not touch the definition")
}

func TestClassNode_EqualDetectsDifferences(t *testing.T) {
	a, err := node.NewClassNode("", "", fakeTypedDict(), "")
	require.NoError(t, err)

	changed := fakeTypedDict()
	changed.Fields[1].Expr = "float"

	b, err := node.NewClassNode("", "", changed, "")
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.NotEmpty(t, cmp.Diff(a.View(), b.View()))

	var nilNode *node.ClassNode
	assert.False(t, a.Equal(nilNode))
	assert.True(t, nilNode.Equal(nil))
}

func TestClassNode_ChildNodesIsACopy(t *testing.T) {
	classNode, err := node.NewClassNode("", "", fakeTypedDict(), "")
	require.NoError(t, err)

	children := classNode.ChildNodes()
	children[0] = nil

	assert.NotNil(t, classNode.ChildNodes()[0])
}

func TestClassNode_ConcurrentBuilds(t *testing.T) {
	builder := node.NewBuilder(node.WithEnumerateOptions(enumerate.Options{}))
	want, err := builder.Build("test", "", fakeInventoryItem(0), "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			got, err := builder.Build("test", "", fakeInventoryItem(0), "")
			assert.NoError(t, err)
			assert.True(t, want.Equal(got))
		}()
	}

	wg.Wait()
}

func TestClassNode_MarshalYAML(t *testing.T) {
	def := &typedef.Static{
		TypeName: "Item",
		Fields:   []typedef.Annotation{{Name: "name", Expr: "str"}},
		Methods: []typedef.Callable{{
			Name:      "total",
			Params:    []typedef.Param{{Name: "self"}, {Name: "tax", Expr: "float"}},
			Returns:   "float",
			Modifiers: []string{"async"},
		}},
	}

	classNode, err := node.NewClassNode("Item", "shop", def, "shop.py")
	require.NoError(t, err)

	out, err := yaml.Marshal(classNode)
	require.NoError(t, err)

	var view node.ClassView
	require.NoError(t, yaml.Unmarshal(out, &view))
	assert.Equal(t, classNode.View(), view)
	assert.NotContains(t, string(out), "shape:")
	assert.Contains(t, string(out), "id: shop.Item")

	out, err = yaml.Marshal(classNode.ShapedView())
	require.NoError(t, err)
	assert.Contains(t, string(out), "shape: PlainClass")
}
