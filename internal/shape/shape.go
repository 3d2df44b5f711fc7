package shape

//go:generate go tool stringer -type=Shape -output=shape_string.go

// Shape is the structural pattern of a type definition.
type Shape int

const (
	// Unknown is reported for definitions exposing no shape markers at all.
	// It is enumerated like PlainClass.
	Unknown Shape = iota
	PlainClass
	ValueObjectClass
	RecordDeclaration
	Enumeration

	// Total is the number of shapes defined
	Total = int(iota)
)

// Strategy returns the shape whose enumeration strategy applies to s.
func (s Shape) Strategy() Shape {
	if s == Unknown {
		return PlainClass
	}

	return s
}

// HasCallables reports whether definitions of this shape contribute
// callable members.
func (s Shape) HasCallables() bool {
	switch s.Strategy() {
	case PlainClass, ValueObjectClass:
		return true
	default:
		return false
	}
}
