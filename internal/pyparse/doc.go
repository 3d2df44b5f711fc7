// Package pyparse is the Python front-end. It parses Python source with
// tree-sitter and turns module-level class declarations into introspectable
// definitions, without executing any code.
//
// Recognized shapes:
//   - classes decorated with a dataclass-style decorator get a generated init
//   - TypedDict subclasses and functional TypedDict declarations are records
//   - Enum, IntEnum, StrEnum, Flag and IntFlag subclasses are enumerations
//
// Names in annotations are qualified through the module's imports so a
// scan-wide index can tell same-named types from different modules apart.
package pyparse
