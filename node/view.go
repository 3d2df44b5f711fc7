package node

import (
	"encoding/json"
	"slices"
)

// ClassView is the serializable form of a ClassNode.
type ClassView struct {
	ID        string      `yaml:"id" json:"id"`
	Name      string      `yaml:"name" json:"name"`
	Namespace string      `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Source    string      `yaml:"source,omitempty" json:"source,omitempty"`
	Shape     string      `yaml:"shape,omitempty" json:"shape,omitempty"`
	Children  []ChildView `yaml:"children" json:"children"`
}

// ChildView is the serializable form of a ChildNode.
type ChildView struct {
	Kind      string      `yaml:"kind" json:"kind"`
	Name      string      `yaml:"name" json:"name"`
	Type      string      `yaml:"type,omitempty" json:"type,omitempty"`
	Params    []ParamView `yaml:"params,omitempty" json:"params,omitempty"`
	Returns   string      `yaml:"returns,omitempty" json:"returns,omitempty"`
	Modifiers []string    `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

// ParamView is the serializable form of a Param.
type ParamView struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
}

func (f *FieldNode) view() ChildView {
	return ChildView{Kind: f.Kind().String(), Name: f.name, Type: f.typ}
}

func (m *MethodNode) view() ChildView {
	v := ChildView{
		Kind:      m.Kind().String(),
		Name:      m.name,
		Returns:   m.sig.Returns,
		Modifiers: slices.Clone(m.sig.Modifiers),
	}

	for _, p := range m.sig.Params {
		v.Params = append(v.Params, ParamView(p))
	}

	return v
}

// View returns the serializable form of the tree. Shape is left empty so
// views compare the way Equal does; see ShapedView.
func (c *ClassNode) View() ClassView {
	v := ClassView{
		ID:        c.ID(),
		Name:      c.name,
		Namespace: c.namespace,
		Source:    c.source,
		Children:  make([]ChildView, 0, len(c.children)),
	}

	for _, ch := range c.children {
		v.Children = append(v.Children, ch.view())
	}

	return v
}

// ShapedView is View with the classified shape filled in.
func (c *ClassNode) ShapedView() ClassView {
	v := c.View()
	v.Shape = c.shape.String()

	return v
}

// MarshalYAML implements yaml.Marshaler.
func (c *ClassNode) MarshalYAML() (any, error) {
	return c.View(), nil
}

// MarshalJSON implements json.Marshaler.
func (c *ClassNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.View())
}
