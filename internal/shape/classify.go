package shape

import (
	"errors"
	"fmt"

	"apistub/internal/typedef"
)

// ErrAmbiguous is wrapped by Conflict.
var ErrAmbiguous = errors.New("classification ambiguous")

// Conflict describes a definition carrying markers of incompatible shapes.
// Classification recovers by treating the definition as a PlainClass.
type Conflict struct {
	Type    string
	Markers typedef.Marker
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("%s: %v (markers %s), treated as %s", c.Type, ErrAmbiguous, c.Markers, PlainClass)
}

func (c *Conflict) Unwrap() error {
	return ErrAmbiguous
}

// Classify returns the shape of def. A non-nil Conflict accompanies a
// PlainClass fallback when the markers contradict each other.
func Classify(def typedef.Definition) (Shape, *Conflict) {
	marked, ok := def.(typedef.Marked)
	if !ok {
		return Unknown, nil
	}

	m := marked.Markers()

	switch {
	case m.Has(typedef.MarkerRecord) && m&(typedef.MarkerEnumBase|typedef.MarkerGeneratedInit) != 0:
		return PlainClass, &Conflict{Type: typedef.QualifiedName(def), Markers: m}
	case m.Has(typedef.MarkerRecord):
		return RecordDeclaration, nil
	case m.Has(typedef.MarkerEnumBase):
		// generated helpers never add enumeration values
		return Enumeration, nil
	case m.Has(typedef.MarkerGeneratedInit):
		return ValueObjectClass, nil
	default:
		return PlainClass, nil
	}
}
