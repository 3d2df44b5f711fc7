package node

import (
	"slices"

	"apistub/internal/diagnostic"
	"apistub/internal/enumerate"
	"apistub/internal/shape"
	"apistub/internal/typedef"
)

// ChildNode is a member node of a ClassNode: a *FieldNode or a *MethodNode.
type ChildNode interface {
	Name() string
	Kind() enumerate.Kind
	equal(other ChildNode) bool
	view() ChildView
}

// FieldNode is a data member with its canonical type name.
type FieldNode struct {
	name string
	typ  string
}

func (f *FieldNode) Name() string { return f.name }

// Type returns the canonical type name, or the unknown marker.
func (f *FieldNode) Type() string { return f.typ }

func (f *FieldNode) Kind() enumerate.Kind { return enumerate.KindField }

func (f *FieldNode) equal(other ChildNode) bool {
	o, ok := other.(*FieldNode)
	return ok && *f == *o
}

// Param is a resolved callable parameter. Type is empty when the parameter
// carries no annotation.
type Param struct {
	Name string
	Type string
}

// Signature summarizes a callable.
type Signature struct {
	Params    []Param
	Returns   string
	Modifiers []string
}

func (s Signature) clone() Signature {
	return Signature{
		Params:    slices.Clone(s.Params),
		Returns:   s.Returns,
		Modifiers: slices.Clone(s.Modifiers),
	}
}

// Equal reports whether two signatures are identical.
func (s Signature) Equal(o Signature) bool {
	return s.Returns == o.Returns &&
		slices.Equal(s.Params, o.Params) &&
		slices.Equal(s.Modifiers, o.Modifiers)
}

// MethodNode is a callable member.
type MethodNode struct {
	name string
	sig  Signature
}

func (m *MethodNode) Name() string { return m.name }

// Signature returns a copy of the method signature.
func (m *MethodNode) Signature() Signature { return m.sig.clone() }

func (m *MethodNode) Kind() enumerate.Kind { return enumerate.KindMethod }

func (m *MethodNode) equal(other ChildNode) bool {
	o, ok := other.(*MethodNode)
	return ok && m.name == o.name && m.sig.Equal(o.sig)
}

// ClassNode is the root node of a type's API surface.
type ClassNode struct {
	name      string
	namespace string
	source    string
	shape     shape.Shape
	def       typedef.Definition
	children  []ChildNode
	diags     diagnostic.Diagnostics
}

func (c *ClassNode) Name() string { return c.name }

// Namespace returns the enclosing namespace, empty for top-level types.
func (c *ClassNode) Namespace() string { return c.namespace }

// Source returns the display hint naming where the type came from.
func (c *ClassNode) Source() string { return c.source }

// Shape returns the classification the tree was built from.
func (c *ClassNode) Shape() shape.Shape { return c.shape }

// Definition returns the originating type definition for re-inspection.
func (c *ClassNode) Definition() typedef.Definition { return c.def }

// ID returns the fully-qualified type name.
func (c *ClassNode) ID() string {
	if c.namespace == "" {
		return c.name
	}

	return c.namespace + "." + c.name
}

// ChildNodes returns the ordered member nodes.
func (c *ClassNode) ChildNodes() []ChildNode {
	return slices.Clone(c.children)
}

// Len returns the number of member nodes.
func (c *ClassNode) Len() int { return len(c.children) }

// Child returns the member node with the given name.
func (c *ClassNode) Child(name string) (ChildNode, bool) {
	for _, ch := range c.children {
		if ch.Name() == name {
			return ch, true
		}
	}

	return nil, false
}

// Fields returns the field nodes in tree order.
func (c *ClassNode) Fields() []*FieldNode {
	var out []*FieldNode
	for _, ch := range c.children {
		if f, ok := ch.(*FieldNode); ok {
			out = append(out, f)
		}
	}

	return out
}

// Methods returns the method nodes in tree order.
func (c *ClassNode) Methods() []*MethodNode {
	var out []*MethodNode
	for _, ch := range c.children {
		if m, ok := ch.(*MethodNode); ok {
			out = append(out, m)
		}
	}

	return out
}

// Diagnostics returns a copy of the problems absorbed while building.
func (c *ClassNode) Diagnostics() diagnostic.Diagnostics { return c.diags.Clone() }

// Equal reports structural equality: name, namespace and the ordered member
// nodes. Shape, source hint, definition and diagnostics are ignored, so a
// plain class and a record declaring the same members are equal.
func (c *ClassNode) Equal(o *ClassNode) bool {
	if c == nil || o == nil {
		return c == o
	}

	if c.name != o.name || c.namespace != o.namespace || len(c.children) != len(o.children) {
		return false
	}

	for i := range c.children {
		if !c.children[i].equal(o.children[i]) {
			return false
		}
	}

	return true
}
