package manifest

import (
	"errors"
	"fmt"

	"apistub/internal/typedef"
)

// ErrInvalid is returned by Definitions for manifests with validation errors.
var ErrInvalid = errors.New("invalid manifest")

// Definitions validates the manifest and converts every type into a
// typedef.Static, in manifest order.
func Definitions(m *Manifest) ([]*typedef.Static, error) {
	if diags := Validate(m); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, diags.Error())
	}

	defs := make([]*typedef.Static, 0, len(m.Types))

	for i := range m.Types {
		t := &m.Types[i]

		privacy, err := typedef.ParsePrivacy(t.Privacy)
		if err != nil {
			return nil, fmt.Errorf("%w: type %s: %w", ErrInvalid, t.Name, err)
		}

		def := &typedef.Static{
			TypeName:   t.Name,
			ModulePath: t.Module,
			Values:     append([]string(nil), t.Values...),
			Privacy:    privacy,
		}

		for _, name := range t.Markers {
			mk, err := typedef.ParseMarker(name)
			if err != nil {
				return nil, fmt.Errorf("%w: type %s: %w", ErrInvalid, t.Name, err)
			}

			def.Marks |= mk
		}

		for _, f := range t.Fields {
			def.Fields = append(def.Fields, typedef.Annotation{Name: f.Name, Expr: f.Type})
		}

		for _, ms := range t.Methods {
			c := typedef.Callable{
				Name:        ms.Name,
				Returns:     ms.Returns,
				Owner:       ms.Owner,
				Synthesized: ms.Synthesized,
				Modifiers:   append([]string(nil), ms.Modifiers...),
			}

			for _, p := range ms.Params {
				c.Params = append(c.Params, typedef.Param{Name: p.Name, Expr: p.Type})
			}

			def.Methods = append(def.Methods, c)
		}

		defs = append(defs, def)
	}

	return defs, nil
}

// FromDefinitions builds a manifest describing defs. Module is left empty
// so every type carries its own. The underscore convention is the default
// and is not written; a custom Private func cannot be expressed and falls
// back to Privacy.
func FromDefinitions(defs []*typedef.Static) *Manifest {
	m := &Manifest{Version: "1"}

	for _, def := range defs {
		t := TypeSpec{
			Name:    def.TypeName,
			Module:  def.ModulePath,
			Markers: StringOrArray(def.Marks.Names()),
			Values:  append([]string(nil), def.Values...),
		}

		if def.Privacy != "" && def.Privacy != typedef.PrivacyUnderscore {
			t.Privacy = string(def.Privacy)
		}

		for _, f := range def.Fields {
			t.Fields = append(t.Fields, FieldSpec{Name: f.Name, Type: f.Expr})
		}

		for _, c := range def.Methods {
			ms := MethodSpec{
				Name:        c.Name,
				Returns:     c.Returns,
				Owner:       c.Owner,
				Synthesized: c.Synthesized,
				Modifiers:   append([]string(nil), c.Modifiers...),
			}

			for _, p := range c.Params {
				ms.Params = append(ms.Params, ParamSpec{Name: p.Name, Type: p.Expr})
			}

			t.Methods = append(t.Methods, ms)
		}

		m.Types = append(m.Types, t)
	}

	return m
}
