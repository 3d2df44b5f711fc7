package scan

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"apistub/internal/enumerate"
	"apistub/internal/resolve"
	"apistub/internal/typedef"
	"apistub/node"
)

// Target is one definition to build.
type Target struct {
	// Name overrides the definition's own name when set.
	Name      string
	Namespace string
	Def       typedef.Definition
	// Source is a free-form location hint (file path, package, manifest).
	Source string
}

// ID returns the qualified name the target contributes to the index.
func (t Target) ID() string {
	name := t.Name
	if name == "" && t.Def != nil {
		name = t.Def.Name()
	}

	if t.Namespace == "" {
		return name
	}

	return t.Namespace + "." + name
}

// Result is the outcome of building one target. Exactly one of Node and Err
// is set.
type Result struct {
	Target Target
	Node   *node.ClassNode
	Err    error
}

// Scanner builds node trees concurrently.
type Scanner struct {
	workers   int
	cacheSize int
	logger    *slog.Logger
	enumOpts  enumerate.Options
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers bounds the number of concurrent builds. Values below one
// select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = n
	}
}

// WithLogger sets the logger passed to builders.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// WithIncludePrivate keeps private members in every tree.
func WithIncludePrivate(include bool) Option {
	return func(s *Scanner) {
		s.enumOpts.IncludePrivate = include
	}
}

// WithCacheSize bounds the per-scan cache of rendered type expressions.
// Zero disables caching.
func WithCacheSize(n int) Option {
	return func(s *Scanner) {
		s.cacheSize = n
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{logger: slog.Default()}

	for _, opt := range opts {
		opt(s)
	}

	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}

	return s
}

// Index builds the resolver index over the targets' qualified names and
// every qualified name their members reference.
func Index(targets []Target) *resolve.Index {
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, t.ID())
		names = append(names, referencedNames(t.Def)...)
	}

	return resolve.NewIndex(names...)
}

// referencedNames lists qualified names used in member type expressions.
// Unreadable capabilities contribute nothing; the build reports them.
func referencedNames(def typedef.Definition) []string {
	var exprs []string

	if a, ok := def.(typedef.Annotated); ok {
		if fields, err := a.Annotations(); err == nil {
			for _, f := range fields {
				exprs = append(exprs, f.Expr)
			}
		}
	}

	if c, ok := def.(typedef.Callables); ok {
		if calls, err := c.Callables(); err == nil {
			for _, call := range calls {
				exprs = append(exprs, call.Returns)
				for _, p := range call.Params {
					exprs = append(exprs, p.Expr)
				}
			}
		}
	}

	var names []string
	for _, e := range exprs {
		names = append(names, resolve.QualifiedNames(e)...)
	}

	return names
}

// Scan builds one tree per target. Construction failures are reported per
// result; the returned error is only set when ctx ends the scan early.
func (s *Scanner) Scan(ctx context.Context, targets []Target) ([]Result, error) {
	index := Index(targets)

	resolver, err := resolve.NewCached(index, s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	builder := node.NewBuilder(
		node.WithResolver(resolver),
		node.WithEnumerateOptions(s.enumOpts),
		node.WithLogger(s.logger),
	)

	results := make([]Result, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			t := targets[i]
			n, err := builder.Build(t.Name, t.Namespace, t.Def, t.Source)
			results[i] = Result{Target: t, Node: n, Err: err}

			if err != nil {
				s.logger.Warn("class node construction failed",
					slog.String("type", t.ID()),
					slog.String("source", t.Source),
					slog.Any("error", err))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	ambiguous := ambiguousNames(index, targets)
	for _, name := range ambiguous {
		s.logger.Debug("ambiguous short name",
			slog.String("name", name),
			slog.Any("qualifiers", index.Qualifiers(name)))
	}

	s.logger.Info("scan finished",
		slog.Int("targets", len(targets)),
		slog.Int("ambiguous_names", len(ambiguous)),
		slog.Int("cached_exprs", resolver.CacheLen()),
		slog.Int("workers", s.workers))

	return results, nil
}

// ambiguousNames returns the target short names seen under more than one
// qualifier, in target order.
func ambiguousNames(index *resolve.Index, targets []Target) []string {
	var names []string

	seen := make(map[string]struct{})

	for _, t := range targets {
		name := t.Name
		if name == "" && t.Def != nil {
			name = t.Def.Name()
		}

		if _, dup := seen[name]; dup || !index.Ambiguous(name) {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}
