// Package analyze is the Go front-end: it loads Go packages and turns their
// exported type declarations into introspectable definitions.
//
// It uses golang.org/x/tools/go/packages with AST and go/types.
//
// Declaration mapping:
//   - struct types become plain classes; methods declared in generated
//     files are synthesized and mark the type as having a generated init
//   - aliases of unnamed struct types become record declarations
//   - named basic types with package-level constants become enumerations
//   - interfaces expose their method set only
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: declaration kind, source file and the built definition
//   - TypeGraph: every analyzed type, in package declaration order
package analyze
