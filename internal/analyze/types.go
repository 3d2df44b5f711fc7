package analyze

import (
	"slices"

	"apistub/internal/common"
	"apistub/internal/typedef"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "apistub/store"
	Name    string // e.g., "Product"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the declaration kind of a type.
type TypeKind int

const (
	TypeKindUnknown   TypeKind = iota
	TypeKindStruct             // struct type
	TypeKindRecord             // alias of an unnamed struct
	TypeKindEnum               // named basic type with constants
	TypeKindInterface          // interface type
	TypeKindOther              // any other named type (func, map, slice...)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindStruct:
		return "struct"
	case TypeKindRecord:
		return "record"
	case TypeKindEnum:
		return "enum"
	case TypeKindInterface:
		return "interface"
	case TypeKindOther:
		return "other"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes an analyzed type declaration.
type TypeInfo struct {
	ID   TypeID
	Kind TypeKind
	// File is the source file declaring the type.
	File string
	// Def is the introspectable definition built from the declaration.
	Def *typedef.Static
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all exported named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo

	order []TypeID
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Ordered returns every type in load order: packages as loaded, types in
// declaration order within a package.
func (g *TypeGraph) Ordered() []*TypeInfo {
	out := make([]*TypeInfo, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.Types[id])
	}

	return out
}

// QualifiedNames returns the qualified name of every type, for building a
// scan index.
func (g *TypeGraph) QualifiedNames() []string {
	names := make([]string, 0, len(g.order))
	for _, id := range g.order {
		names = append(names, id.String())
	}

	return names
}

func (g *TypeGraph) add(info *TypeInfo) {
	if _, ok := g.Types[info.ID]; !ok {
		g.order = append(g.order, info.ID)
	}

	g.Types[info.ID] = info
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package, in declaration order
	// Generated lists the files carrying a generated-code header.
	Generated []string
}

// IsGenerated reports whether file carries a generated-code header.
func (p *PackageInfo) IsGenerated(file string) bool {
	return slices.Contains(p.Generated, file)
}
