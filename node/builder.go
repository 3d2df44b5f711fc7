package node

import (
	"errors"
	"log/slog"

	"apistub/internal/diagnostic"
	"apistub/internal/enumerate"
	"apistub/internal/resolve"
	"apistub/internal/shape"
	"apistub/internal/typedef"
)

// Builder turns type definitions into ClassNode trees. A Builder holds only
// read-only collaborators and may be used from several goroutines.
type Builder struct {
	resolver   *resolve.Resolver
	enumerator *enumerate.Enumerator
	logger     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithResolver sets the type-name resolver, typically one sharing a scan index.
func WithResolver(r *resolve.Resolver) Option {
	return func(b *Builder) {
		if r != nil {
			b.resolver = r
		}
	}
}

// WithEnumerateOptions sets member enumeration options.
func WithEnumerateOptions(opts enumerate.Options) Option {
	return func(b *Builder) {
		b.enumerator = enumerate.New(opts)
	}
}

// WithLogger sets the logger used for absorbed problems.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder creates a Builder with an index-free resolver and default
// enumeration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		resolver:   resolve.New(nil),
		enumerator: enumerate.New(enumerate.Options{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

var defaultBuilder = NewBuilder()

// NewClassNode builds a ClassNode with the default Builder.
func NewClassNode(name, namespace string, def typedef.Definition, source string) (*ClassNode, error) {
	return defaultBuilder.Build(name, namespace, def, source)
}

func (b *Builder) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}

	return slog.Default()
}

// Build classifies def, enumerates its members, resolves every member type
// and returns the finished tree. An empty name defaults to the definition's
// own name. On failure no node is returned and the error matches
// ErrConstructionFailed.
func (b *Builder) Build(name, namespace string, def typedef.Definition, source string) (*ClassNode, error) {
	if def == nil {
		return nil, &ConstructionError{Type: name, Err: errors.New("nil type definition")}
	}

	if name == "" {
		name = def.Name()
	}

	id := name
	if namespace != "" {
		id = namespace + "." + name
	}

	var diags diagnostic.Diagnostics

	s, conflict := shape.Classify(def)
	if conflict != nil {
		diags.AddWarning(diagnostic.CodeClassificationAmbiguous, conflict.Error(), id, "")
		b.log().Warn("ambiguous type shape",
			slog.String("type", id),
			slog.String("markers", conflict.Markers.String()),
			slog.String("code", diagnostic.CodeClassificationAmbiguous))
	}

	members, err := b.enumerator.Members(def, s)
	if err != nil {
		return nil, &ConstructionError{Type: id, Err: err}
	}

	children := make([]ChildNode, 0, len(members))

	for _, m := range members {
		switch m.Kind {
		case enumerate.KindMethod:
			children = append(children, &MethodNode{name: m.Name, sig: b.signature(&diags, id, m)})
		default:
			children = append(children, &FieldNode{name: m.Name, typ: b.resolveType(&diags, id, m.Name, m.Expr, true)})
		}
	}

	b.log().Debug("built class node",
		slog.String("type", id),
		slog.String("shape", s.String()),
		slog.Int("members", len(children)))

	return &ClassNode{
		name:      name,
		namespace: namespace,
		source:    source,
		shape:     s,
		def:       def,
		children:  children,
		diags:     diags,
	}, nil
}

func (b *Builder) signature(diags *diagnostic.Diagnostics, id string, m enumerate.Member) Signature {
	var sig Signature
	if m.Callable == nil {
		return sig
	}

	for _, p := range m.Callable.Params {
		sig.Params = append(sig.Params, Param{
			Name: p.Name,
			Type: b.resolveType(diags, id, m.Name+"."+p.Name, p.Expr, false),
		})
	}

	sig.Returns = b.resolveType(diags, id, m.Name, m.Callable.Returns, false)
	sig.Modifiers = append(sig.Modifiers, m.Callable.Modifiers...)

	return sig
}

// resolveType resolves expr, absorbing malformed expressions as unknown.
// Absent expressions become the unknown marker for fields and stay empty
// for signature parts.
func (b *Builder) resolveType(diags *diagnostic.Diagnostics, id, member, expr string, required bool) string {
	if expr == "" && !required {
		return ""
	}

	name, err := b.resolver.ResolveOrUnknown(expr)
	if err != nil {
		diags.AddWarning(diagnostic.CodeTypeResolutionFailed, err.Error(), id, member)
		b.log().Warn("type resolution failed",
			slog.String("type", id),
			slog.String("member", member),
			slog.String("code", diagnostic.CodeTypeResolutionFailed),
			slog.Any("error", err))
	}

	return name
}
