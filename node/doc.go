// Package node builds the API-surface tree of a type definition.
//
// A ClassNode is the root node for one type; its ordered child nodes are
// FieldNode and MethodNode values. The tree is built once by a Builder and
// never changes afterwards, so it can be handed to diffing and rendering
// stages or shared between goroutines.
package node
