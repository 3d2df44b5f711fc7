// Package typedef defines the introspection boundary between type
// definitions and the node-tree builder.
//
// A front-end (Go packages, Python source, YAML manifest) turns whatever it
// reads into a Definition. The builder only needs the name of the type plus
// a handful of optional capabilities:
//   - Marked: structural shape markers (record, generated constructor, enum base)
//   - Annotated: the class-level annotation table, in declaration order
//   - Callables: callable attributes, in definition order
//   - Record: the declared field mapping of a record declaration
//   - Enumerated: declared enumeration values
//   - Convention: the privacy naming convention of the source language
//
// Static is a plain in-memory Definition implementing all of them.
package typedef
