package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"apistub/internal/analyze"
	"apistub/internal/common"
	"apistub/internal/manifest"
	"apistub/internal/pyparse"
	"apistub/internal/typedef"
)

// Inputs names the sources a scan collects targets from.
type Inputs struct {
	// GoPatterns are go/packages patterns, resolved from GoDir.
	GoPatterns []string
	GoDir      string
	// GoTypes narrows the Go targets to the listed "import/path.Name" types.
	// Every listed type must be found in the loaded packages.
	GoTypes []string
	// PyPaths are Python files or directories; module names are relative to
	// the directory itself, or to the parent of a single file.
	PyPaths []string
	// Manifests are YAML manifest files.
	Manifests []string
}

// Collector turns Inputs into scan targets.
type Collector struct {
	workers int
	logger  *slog.Logger
	parser  *pyparse.Parser
}

// NewCollector creates a Collector. Python files are parsed on up to
// workers goroutines.
func NewCollector(workers int, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	if workers < 1 {
		workers = 1
	}

	return &Collector{
		workers: workers,
		logger:  logger,
		parser:  pyparse.NewParser(pyparse.WithLogger(logger)),
	}
}

// Collect loads every input and returns the targets in input order: Go
// packages, then Python modules, then manifests.
func (c *Collector) Collect(ctx context.Context, in Inputs) ([]Target, error) {
	var targets []Target

	if len(in.GoPatterns) > 0 {
		ts, err := c.collectGo(ctx, in)
		if err != nil {
			return nil, err
		}

		targets = append(targets, ts...)
	}

	for _, path := range in.PyPaths {
		ts, err := c.collectPython(ctx, path)
		if err != nil {
			return nil, err
		}

		targets = append(targets, ts...)
	}

	for _, path := range in.Manifests {
		m, err := manifest.LoadFile(path)
		if err != nil {
			return nil, err
		}

		defs, err := manifest.Definitions(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		targets = append(targets, FromStatic(defs, path)...)
	}

	c.logger.Debug("collected scan targets", slog.Int("targets", len(targets)))

	return targets, nil
}

func (c *Collector) collectGo(ctx context.Context, in Inputs) ([]Target, error) {
	analyzer := analyze.NewAnalyzer(analyze.WithDir(in.GoDir), analyze.WithLogger(c.logger))

	graph, err := analyzer.LoadPackages(ctx, in.GoPatterns...)
	if err != nil {
		return nil, err
	}

	if len(in.GoTypes) == 0 {
		return FromGo(graph), nil
	}

	targets := make([]Target, 0, len(in.GoTypes))

	for _, name := range in.GoTypes {
		pkg, typeName, ok := common.SplitQualified(name)
		if !ok {
			return nil, fmt.Errorf("go type %q: want import/path.Name", name)
		}

		info, err := analyzer.Lookup(pkg, typeName)
		if err != nil {
			return nil, err
		}

		targets = append(targets, goTarget(info))
	}

	return targets, nil
}

func (c *Collector) collectPython(ctx context.Context, path string) ([]Target, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("python input: %w", err)
	}

	root := path
	if !info.IsDir() {
		root = filepath.Dir(path)
	}

	files, err := pyparse.Discover(path)
	if err != nil {
		return nil, fmt.Errorf("discover python files under %s: %w", path, err)
	}

	modules := make([]*pyparse.Module, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, file := range files {
		g.Go(func() error {
			mod, err := c.parser.ParseFile(gctx, root, file)
			if err != nil {
				return err
			}

			modules[i] = mod

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return FromPython(modules), nil
}

// FromGo returns one target per analyzed Go type, namespaced by package path.
func FromGo(graph *analyze.TypeGraph) []Target {
	infos := graph.Ordered()

	targets := make([]Target, 0, len(infos))
	for _, info := range infos {
		targets = append(targets, goTarget(info))
	}

	return targets
}

func goTarget(info *analyze.TypeInfo) Target {
	return Target{
		Namespace: info.ID.PkgPath,
		Def:       info.Def,
		Source:    info.File,
	}
}

// FromPython returns one target per module-level definition.
func FromPython(modules []*pyparse.Module) []Target {
	var targets []Target

	for _, mod := range modules {
		for _, def := range mod.Definitions {
			targets = append(targets, Target{
				Namespace: mod.Name,
				Def:       def,
				Source:    mod.Path,
			})
		}
	}

	return targets
}

// FromStatic returns one target per definition, namespaced by its module.
func FromStatic(defs []*typedef.Static, source string) []Target {
	targets := make([]Target, 0, len(defs))
	for _, def := range defs {
		targets = append(targets, Target{
			Namespace: def.ModulePath,
			Def:       def,
			Source:    source,
		})
	}

	return targets
}
