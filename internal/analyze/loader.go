package analyze

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"slices"

	"golang.org/x/tools/go/packages"

	"apistub/internal/typedef"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// ErrTypeNotFound is returned by Lookup for unknown types.
var ErrTypeNotFound = errors.New("type not found")

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	graph     *TypeGraph
	fset      *token.FileSet
	dir       string
	logger    *slog.Logger
	generated map[string]bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDir sets the directory packages are resolved from.
func WithDir(dir string) Option {
	return func(a *Analyzer) {
		a.dir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:     NewTypeGraph(),
		logger:    slog.Default(),
		generated: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./store", "apistub/warehouse").
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode:    LoadMode,
		Context: ctx,
		Dir:     a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	if len(pkgs) > 0 {
		a.fset = pkgs[0].Fset
	}

	// Generated files are collected up front so promoted methods of types
	// from other loaded packages are classified too.
	for _, pkg := range pkgs {
		for _, f := range pkg.Syntax {
			if ast.IsGenerated(f) {
				a.generated[pkg.Fset.File(f.Pos()).Name()] = true
			}
		}
	}

	// Process each package
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := a.processPackage(pkg); err != nil {
			return nil, fmt.Errorf("failed to process package %s: %w", pkg.PkgPath, err)
		}
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) error {
	if pkg.Types == nil {
		return errors.New("no type information")
	}

	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	for _, f := range pkg.Syntax {
		if name := pkg.Fset.File(f.Pos()).Name(); a.generated[name] {
			pkgInfo.Generated = append(pkgInfo.Generated, name)
		}
	}

	var (
		typeNames []*types.TypeName
		consts    = make(map[*types.TypeName][]*types.Const)
	)

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		switch obj := scope.Lookup(name).(type) {
		case *types.TypeName:
			// Only process exported types
			if obj.Exported() {
				typeNames = append(typeNames, obj)
			}
		case *types.Const:
			if named, ok := obj.Type().(*types.Named); ok && named.Obj().Pkg() == pkg.Types {
				consts[named.Obj()] = append(consts[named.Obj()], obj)
			}
		}
	}

	slices.SortFunc(typeNames, func(x, y *types.TypeName) int { return cmp.Compare(x.Pos(), y.Pos()) })

	for _, tn := range typeNames {
		info := a.analyzeTypeName(pkg, tn, consts[tn])
		if info == nil {
			continue
		}

		a.graph.add(info)
		pkgInfo.Types = append(pkgInfo.Types, info.ID)

		a.logger.Debug("analyzed go type",
			slog.String("type", info.ID.String()),
			slog.String("kind", info.Kind.String()))
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo

	return nil
}

// analyzeTypeName builds the definition for one exported declaration. Plain
// aliases of named types are not new definitions and yield nil.
func (a *Analyzer) analyzeTypeName(pkg *packages.Package, tn *types.TypeName, consts []*types.Const) *TypeInfo {
	info := &TypeInfo{
		ID:   TypeID{PkgPath: pkg.PkgPath, Name: tn.Name()},
		File: pkg.Fset.Position(tn.Pos()).Filename,
		Def: &typedef.Static{
			TypeName:   tn.Name(),
			ModulePath: pkg.PkgPath,
			Privacy:    typedef.PrivacyGo,
		},
	}

	if tn.IsAlias() {
		st, ok := types.Unalias(tn.Type()).(*types.Struct)
		if !ok {
			return nil
		}

		info.Kind = TypeKindRecord
		info.Def.Marks = typedef.MarkerRecord
		info.Def.Fields = structFields(st)

		return info
	}

	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		info.Kind = TypeKindStruct
		info.Def.Fields = structFields(ut)
		info.Def.Methods = a.methods(named)

	case *types.Interface:
		info.Kind = TypeKindInterface
		info.Def.Methods = a.interfaceMethods(ut)

	case *types.Basic:
		if len(consts) > 0 {
			info.Kind = TypeKindEnum
			info.Def.Marks = typedef.MarkerEnumBase
			info.Def.Values = constNames(consts)
		} else {
			info.Kind = TypeKindOther
		}

		info.Def.Methods = a.methods(named)

	default:
		info.Kind = TypeKindOther
		info.Def.Methods = a.methods(named)
	}

	for _, m := range info.Def.Methods {
		if m.Synthesized {
			info.Def.Marks |= typedef.MarkerGeneratedInit
			break
		}
	}

	return info
}

// structFields extracts fields in declaration order. Blank fields are skipped.
func structFields(st *types.Struct) []typedef.Annotation {
	fields := make([]typedef.Annotation, 0, st.NumFields())

	for i := range st.NumFields() {
		field := st.Field(i)
		if field.Name() == "_" {
			continue
		}

		fields = append(fields, typedef.Annotation{
			Name: field.Name(),
			Expr: TypeString(field.Type()),
		})
	}

	return fields
}

func constNames(consts []*types.Const) []string {
	slices.SortFunc(consts, func(x, y *types.Const) int { return cmp.Compare(x.Pos(), y.Pos()) })

	names := make([]string, 0, len(consts))
	for _, c := range consts {
		names = append(names, c.Name())
	}

	return names
}

// methods lists declared methods in source order, then methods promoted
// through embedded fields with their declaring type as owner.
func (a *Analyzer) methods(named *types.Named) []typedef.Callable {
	own := make([]*types.Func, 0, named.NumMethods())
	for i := range named.NumMethods() {
		own = append(own, named.Method(i))
	}

	slices.SortFunc(own, func(x, y *types.Func) int { return cmp.Compare(x.Pos(), y.Pos()) })

	callables := make([]typedef.Callable, 0, len(own))
	for _, fn := range own {
		callables = append(callables, a.callable(fn, ""))
	}

	mset := types.NewMethodSet(types.NewPointer(named))
	for i := range mset.Len() {
		sel := mset.At(i)
		if len(sel.Index()) < 2 {
			continue
		}

		fn, ok := sel.Obj().(*types.Func)
		if !ok {
			continue
		}

		callables = append(callables, a.callable(fn, receiverName(fn)))
	}

	return callables
}

func (a *Analyzer) interfaceMethods(iface *types.Interface) []typedef.Callable {
	fns := make([]*types.Func, 0, iface.NumMethods())
	for i := range iface.NumMethods() {
		fns = append(fns, iface.Method(i))
	}

	slices.SortFunc(fns, func(x, y *types.Func) int { return cmp.Compare(x.Pos(), y.Pos()) })

	callables := make([]typedef.Callable, 0, len(fns))
	for _, fn := range fns {
		callables = append(callables, a.callable(fn, ""))
	}

	return callables
}

func (a *Analyzer) callable(fn *types.Func, owner string) typedef.Callable {
	sig, _ := fn.Type().(*types.Signature)

	c := typedef.Callable{
		Name:        fn.Name(),
		Owner:       owner,
		Synthesized: a.generated[a.fileOf(fn)],
	}

	if sig == nil {
		return c
	}

	params := sig.Params()
	for i := range params.Len() {
		p := params.At(i)

		name := p.Name()
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}

		c.Params = append(c.Params, typedef.Param{Name: name, Expr: TypeString(p.Type())})
	}

	c.Returns = ResultString(sig)

	if recv := sig.Recv(); recv != nil {
		if _, ok := recv.Type().(*types.Pointer); ok {
			c.Modifiers = append(c.Modifiers, "pointer")
		}
	}

	if sig.Variadic() {
		c.Modifiers = append(c.Modifiers, "variadic")
	}

	return c
}

func (a *Analyzer) fileOf(fn *types.Func) string {
	if a.fset == nil || !fn.Pos().IsValid() {
		return ""
	}

	return a.fset.Position(fn.Pos()).Filename
}

// receiverName returns the qualified name of the type declaring fn.
func receiverName(fn *types.Func) string {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return ""
	}

	t := sig.Recv().Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return ""
	}

	return TypeID{PkgPath: pkgPath(named.Obj()), Name: named.Obj().Name()}.String()
}

func pkgPath(obj types.Object) string {
	if obj.Pkg() == nil {
		return ""
	}

	return obj.Pkg().Path()
}

// Lookup returns the analyzed type with the given package path and name.
func (a *Analyzer) Lookup(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}

	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrTypeNotFound)
	}

	return info, nil
}
