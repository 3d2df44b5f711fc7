// Package enumerate produces the raw, ordered member list of a classified
// type definition.
//
// Each shape has its own strategy:
//   - PlainClass, ValueObjectClass, Unknown: annotated attributes, then own callables
//   - RecordDeclaration: declared fields, in reverse declaration order
//   - Enumeration: declared values, typed as the enumeration itself
//
// Members inherited from the universal base type are excluded using a
// package-level table that is never mutated.
package enumerate
