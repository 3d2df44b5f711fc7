package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest is the root of a manifest file.
type Manifest struct {
	Version string     `yaml:"version"`
	Module  string     `yaml:"module,omitempty"`
	Privacy string     `yaml:"privacy,omitempty"`
	Types   []TypeSpec `yaml:"types"`
}

// TypeSpec describes one type definition.
type TypeSpec struct {
	Name    string        `yaml:"name"`
	Module  string        `yaml:"module,omitempty"`
	Privacy string        `yaml:"privacy,omitempty"`
	Markers StringOrArray `yaml:"markers,omitempty"`
	Fields  FieldList     `yaml:"fields,omitempty"`
	Methods []MethodSpec  `yaml:"methods,omitempty"`
	Values  []string      `yaml:"values,omitempty"`
}

// FieldSpec is a declared attribute.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// MethodSpec is a callable attribute.
type MethodSpec struct {
	Name        string      `yaml:"name"`
	Params      []ParamSpec `yaml:"params,omitempty"`
	Returns     string      `yaml:"returns,omitempty"`
	Owner       string      `yaml:"owner,omitempty"`
	Synthesized bool        `yaml:"synthesized,omitempty"`
	Modifiers   []string    `yaml:"modifiers,omitempty"`
}

// ParamSpec is a callable parameter.
type ParamSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// StringOrArray accepts a single string or a list of strings.
type StringOrArray []string

// FieldList accepts an ordered name -> type mapping or a list of FieldSpec.
type FieldList []FieldSpec

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or array, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// UnmarshalYAML implements custom YAML unmarshaling for FieldList. Mapping
// keys keep their document order.
func (f *FieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		fields := make(FieldList, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: field %q: expected a type expression", value.Line, key.Value)
			}

			fields = append(fields, FieldSpec{Name: key.Value, Type: value.Value})
		}

		*f = fields

		return nil

	case yaml.SequenceNode:
		var fields []FieldSpec

		err := node.Decode(&fields)
		if err != nil {
			return err
		}

		*f = fields

		return nil

	default:
		return fmt.Errorf("line %d: expected field mapping or list, got %v", node.Line, node.Kind)
	}
}

// UnmarshalYAML accepts a bare parameter name or a {name, type} mapping.
func (p *ParamSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*p = ParamSpec{Name: node.Value}
		return nil
	}

	type plain ParamSpec

	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}

	*p = ParamSpec(v)

	return nil
}
