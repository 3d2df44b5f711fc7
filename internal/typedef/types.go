package typedef

import (
	"fmt"
	"go/token"
	"strings"
)

// Definition is a type definition reachable through an introspection provider.
type Definition interface {
	// Name returns the declared (unqualified) type name.
	Name() string
	// Module returns the defining module or package path, empty if unknown.
	Module() string
}

// Marked exposes the structural shape markers present on a definition.
type Marked interface {
	Markers() Marker
}

// Annotated exposes the class-level annotation table.
type Annotated interface {
	Annotations() ([]Annotation, error)
}

// Callables exposes the callable attributes of a definition.
type Callables interface {
	Callables() ([]Callable, error)
}

// Record exposes the declared field mapping of a record declaration.
type Record interface {
	RecordFields() ([]Annotation, error)
}

// Enumerated exposes declared enumeration values.
type Enumerated interface {
	EnumValues() ([]string, error)
}

// Convention reports whether a member name is private by the naming
// convention of the definition's source language.
type Convention interface {
	IsPrivate(name string) bool
}

// Marker is a set of structural shape markers.
type Marker uint8

const (
	// MarkerRecord marks a structural record/mapping declaration.
	MarkerRecord Marker = 1 << iota
	// MarkerGeneratedInit marks a class whose constructor (and friends) are
	// synthesized by a code-generation mechanism.
	MarkerGeneratedInit
	// MarkerEnumBase marks a type deriving from the enumeration base.
	MarkerEnumBase
)

var markerNames = []struct {
	m    Marker
	name string
}{
	{MarkerRecord, "record"},
	{MarkerGeneratedInit, "generated_init"},
	{MarkerEnumBase, "enum"},
}

// Has reports whether all markers in o are set.
func (m Marker) Has(o Marker) bool {
	return m&o == o
}

// String returns the marker names joined by "|", or "none".
func (m Marker) String() string {
	names := m.Names()
	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}

// Names returns the names of the set markers in a fixed order.
func (m Marker) Names() []string {
	var names []string
	for _, mn := range markerNames {
		if m.Has(mn.m) {
			names = append(names, mn.name)
		}
	}

	return names
}

// MarkerNames returns every marker name in a fixed order.
func MarkerNames() []string {
	names := make([]string, len(markerNames))
	for i, mn := range markerNames {
		names[i] = mn.name
	}

	return names
}

// ParseMarker parses a single marker name.
func ParseMarker(name string) (Marker, error) {
	for _, mn := range markerNames {
		if mn.name == name {
			return mn.m, nil
		}
	}

	return 0, fmt.Errorf("unknown marker %q", name)
}

// Annotation is a declared attribute: a name plus its raw type expression.
// An empty Expr means the annotation is absent.
type Annotation struct {
	Name string
	Expr string
}

// Param is a callable parameter.
type Param struct {
	Name string
	Expr string
}

// Callable is a callable attribute of a definition.
type Callable struct {
	Name    string
	Params  []Param
	Returns string
	// Owner names the type that defines the callable. Empty means the
	// definition itself.
	Owner string
	// Synthesized is set for members added by a code-generation mechanism
	// rather than declared in source.
	Synthesized bool
	// Modifiers such as "async", "classmethod", "staticmethod", "property".
	Modifiers []string
}

// IsOwn reports whether the callable is defined by the type named typeName.
func (c Callable) IsOwn(typeName string) bool {
	return c.Owner == "" || c.Owner == typeName
}

// QualifiedName returns module.name, or just the name without a module.
func QualifiedName(def Definition) string {
	if def.Module() == "" {
		return def.Name()
	}

	return def.Module() + "." + def.Name()
}

// IsPrivate applies the definition's naming convention, falling back to the
// underscore convention: "_x" is private, "__x" is name-mangled and private,
// "__x__" is a public special name.
func IsPrivate(def Definition, name string) bool {
	if c, ok := def.(Convention); ok {
		return c.IsPrivate(name)
	}

	return UnderscorePrivate(name)
}

// Privacy names a member privacy convention.
type Privacy string

const (
	// PrivacyUnderscore is the leading-underscore convention. It is the
	// default for an empty Privacy.
	PrivacyUnderscore Privacy = "underscore"
	// PrivacyGo treats unexported (lower-case) names as private.
	PrivacyGo Privacy = "go"
)

// ParsePrivacy parses a convention name. The empty string selects
// PrivacyUnderscore.
func ParsePrivacy(name string) (Privacy, error) {
	switch p := Privacy(name); p {
	case "", PrivacyUnderscore:
		return PrivacyUnderscore, nil
	case PrivacyGo:
		return p, nil
	default:
		return "", fmt.Errorf("unknown privacy convention %q", name)
	}
}

// IsPrivate applies the convention to a member name.
func (p Privacy) IsPrivate(name string) bool {
	if p == PrivacyGo {
		return !token.IsExported(name)
	}

	return UnderscorePrivate(name)
}

// UnderscorePrivate implements the leading-underscore privacy convention.
func UnderscorePrivate(name string) bool {
	if !strings.HasPrefix(name, "_") {
		return false
	}

	if len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return false
	}

	return true
}
