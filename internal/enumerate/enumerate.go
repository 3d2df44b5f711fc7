package enumerate

import (
	"errors"
	"fmt"
	"slices"

	"apistub/internal/shape"
	"apistub/internal/typedef"
)

// ErrNotIntrospectable is returned when a definition exposes none of the
// capabilities its shape is enumerated through.
var ErrNotIntrospectable = errors.New("definition cannot be introspected")

// Enumerator lists the members of classified definitions.
type Enumerator struct {
	opts Options
}

// New creates an Enumerator.
func New(opts Options) *Enumerator {
	return &Enumerator{opts: opts}
}

// Members returns the ordered members of def for shape s.
func (e *Enumerator) Members(def typedef.Definition, s shape.Shape) ([]Member, error) {
	if def == nil {
		return nil, fmt.Errorf("nil definition: %w", ErrNotIntrospectable)
	}

	switch s.Strategy() {
	case shape.RecordDeclaration:
		return e.recordMembers(def)
	case shape.Enumeration:
		return e.enumMembers(def)
	default:
		return e.classMembers(def, s.HasCallables())
	}
}

// Members enumerates with default options.
func Members(def typedef.Definition, s shape.Shape) ([]Member, error) {
	return New(Options{}).Members(def, s)
}

// classMembers emits annotated attributes in table order followed by
// callables in definition order. A name annotated twice keeps its first
// position and takes the last expression.
func (e *Enumerator) classMembers(def typedef.Definition, withCallables bool) ([]Member, error) {
	annotated, hasFields := def.(typedef.Annotated)
	callables, hasCallables := def.(typedef.Callables)
	hasCallables = hasCallables && withCallables

	if !hasFields && !hasCallables {
		return nil, fmt.Errorf("%s: no annotation table or callables: %w", typedef.QualifiedName(def), ErrNotIntrospectable)
	}

	var members []Member

	seen := make(map[string]int)

	if hasFields {
		fields, err := annotated.Annotations()
		if err != nil {
			return nil, fmt.Errorf("%s: read annotations: %w", typedef.QualifiedName(def), errors.Join(ErrNotIntrospectable, err))
		}

		for _, f := range fields {
			if f.Name == "" || e.private(def, f.Name) {
				continue
			}

			if at, dup := seen[f.Name]; dup {
				members[at].Expr = f.Expr
				continue
			}

			seen[f.Name] = len(members)
			members = append(members, Member{Name: f.Name, Expr: f.Expr, Kind: KindField})
		}
	}

	if hasCallables {
		calls, err := callables.Callables()
		if err != nil {
			return nil, fmt.Errorf("%s: read callables: %w", typedef.QualifiedName(def), errors.Join(ErrNotIntrospectable, err))
		}

		own := make(map[string]struct{})
		for _, c := range calls {
			if c.IsOwn(def.Name()) && !c.Synthesized {
				own[c.Name] = struct{}{}
			}
		}

		for i := range calls {
			c := calls[i]
			if !e.keepCallable(def, c, own) {
				continue
			}

			// an attribute shadows a callable of the same name
			if _, dup := seen[c.Name]; dup {
				continue
			}

			seen[c.Name] = len(members)
			members = append(members, Member{Name: c.Name, Expr: c.Returns, Kind: KindMethod, Callable: &c})
		}
	}

	return members, nil
}

func (e *Enumerator) keepCallable(def typedef.Definition, c typedef.Callable, own map[string]struct{}) bool {
	if c.Name == "" || c.Synthesized || e.private(def, c.Name) {
		return false
	}

	if c.IsOwn(def.Name()) {
		return true
	}

	if IsUniversalOwner(c.Owner) {
		return false
	}

	// an own redefinition replaces the inherited entry
	if _, redefined := own[c.Name]; redefined {
		return false
	}

	return !IsUniversalMember(c.Name)
}

// recordMembers emits the declared field mapping in reverse declaration
// order. Record declarations carry no behavior. A repeated name keeps its
// first position and takes the last expression.
func (e *Enumerator) recordMembers(def typedef.Definition) ([]Member, error) {
	record, ok := def.(typedef.Record)
	if !ok {
		return nil, fmt.Errorf("%s: no record field mapping: %w", typedef.QualifiedName(def), ErrNotIntrospectable)
	}

	fields, err := record.RecordFields()
	if err != nil {
		return nil, fmt.Errorf("%s: read record fields: %w", typedef.QualifiedName(def), errors.Join(ErrNotIntrospectable, err))
	}

	members := make([]Member, 0, len(fields))
	seen := make(map[string]int)

	for _, f := range fields {
		if f.Name == "" {
			continue
		}

		if at, dup := seen[f.Name]; dup {
			members[at].Expr = f.Expr
			continue
		}

		seen[f.Name] = len(members)
		members = append(members, Member{Name: f.Name, Expr: f.Expr, Kind: KindField})
	}

	slices.Reverse(members)

	return members, nil
}

// enumMembers emits one field per declared value, typed as the enumeration.
func (e *Enumerator) enumMembers(def typedef.Definition) ([]Member, error) {
	enum, ok := def.(typedef.Enumerated)
	if !ok {
		return nil, fmt.Errorf("%s: no enumeration values: %w", typedef.QualifiedName(def), ErrNotIntrospectable)
	}

	values, err := enum.EnumValues()
	if err != nil {
		return nil, fmt.Errorf("%s: read enumeration values: %w", typedef.QualifiedName(def), errors.Join(ErrNotIntrospectable, err))
	}

	members := make([]Member, 0, len(values))
	for _, v := range values {
		if v == "" || e.private(def, v) {
			continue
		}

		members = append(members, Member{Name: v, Expr: typedef.QualifiedName(def), Kind: KindField})
	}

	return members, nil
}

func (e *Enumerator) private(def typedef.Definition, name string) bool {
	return !e.opts.IncludePrivate && typedef.IsPrivate(def, name)
}
