package shape_test

import (
	"fmt"

	"apistub/internal/shape"
)

func Example() {
	fmt.Println(shape.Unknown)
	fmt.Println(shape.PlainClass)
	fmt.Println(shape.ValueObjectClass)
	fmt.Println(shape.RecordDeclaration)
	fmt.Println(shape.Enumeration)
	fmt.Println(shape.Shape(shape.Total))
	// Output:
	// Unknown
	// PlainClass
	// ValueObjectClass
	// RecordDeclaration
	// Enumeration
	// Shape(5)
}
