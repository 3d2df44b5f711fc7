package typedef

import "slices"

// Static is an in-memory Definition whose metadata was precomputed by a
// front-end parsing pass.
type Static struct {
	TypeName   string
	ModulePath string
	Marks      Marker
	Fields     []Annotation
	Methods    []Callable
	Values     []string
	// Privacy is the naming convention deciding private members.
	Privacy Privacy
	// Private overrides Privacy when set.
	Private func(name string) bool
}

var (
	_ Definition = (*Static)(nil)
	_ Marked     = (*Static)(nil)
	_ Annotated  = (*Static)(nil)
	_ Callables  = (*Static)(nil)
	_ Record     = (*Static)(nil)
	_ Enumerated = (*Static)(nil)
	_ Convention = (*Static)(nil)
)

func (s *Static) Name() string { return s.TypeName }

func (s *Static) Module() string { return s.ModulePath }

func (s *Static) Markers() Marker { return s.Marks }

// Annotations returns a copy of the annotation table.
func (s *Static) Annotations() ([]Annotation, error) {
	return slices.Clone(s.Fields), nil
}

// Callables returns a copy of the callable list.
func (s *Static) Callables() ([]Callable, error) {
	out := make([]Callable, len(s.Methods))
	for i, c := range s.Methods {
		c.Params = slices.Clone(c.Params)
		c.Modifiers = slices.Clone(c.Modifiers)
		out[i] = c
	}

	return out, nil
}

// RecordFields returns the annotation table, which for a record declaration
// is its declared field mapping.
func (s *Static) RecordFields() ([]Annotation, error) {
	return slices.Clone(s.Fields), nil
}

func (s *Static) EnumValues() ([]string, error) {
	return slices.Clone(s.Values), nil
}

func (s *Static) IsPrivate(name string) bool {
	if s.Private != nil {
		return s.Private(name)
	}

	return s.Privacy.IsPrivate(name)
}
