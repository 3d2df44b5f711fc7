package scan

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apistub/internal/analyze"
	"apistub/internal/diagnostic"
	"apistub/internal/manifest"
	"apistub/internal/shape"
	"apistub/internal/typedef"
	"apistub/node"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type opaque struct{}

func (opaque) Name() string   { return "Opaque" }
func (opaque) Module() string { return "broken" }

func sampleTargets() []Target {
	return []Target{
		{Namespace: "inventory", Def: &typedef.Static{
			TypeName:   "Item",
			ModulePath: "inventory",
			Fields:     []typedef.Annotation{{Name: "sku", Expr: "str"}},
		}},
		{Namespace: "catalog", Def: &typedef.Static{
			TypeName:   "Item",
			ModulePath: "catalog",
			Marks:      typedef.MarkerRecord,
			Fields:     []typedef.Annotation{{Name: "title", Expr: "str"}},
		}},
		{Namespace: "orders", Def: &typedef.Static{
			TypeName:   "Order",
			ModulePath: "orders",
			Fields: []typedef.Annotation{
				{Name: "item", Expr: "inventory.Item"},
				{Name: "entry", Expr: "typing.Optional[catalog.Item]"},
				{Name: "widget", Expr: "parts.Widget"},
			},
			Methods: []typedef.Callable{{
				Name:    "first",
				Params:  []typedef.Param{{Name: "self"}},
				Returns: "inventory.Item",
			}},
		}},
		{Namespace: "broken", Def: opaque{}, Source: "broken.py"},
	}
}

func TestScanner_Scan(t *testing.T) {
	s := New(WithWorkers(2), WithLogger(quietLogger()))

	results, err := s.Scan(context.Background(), sampleTargets())
	require.NoError(t, err)
	require.Len(t, results, 4)

	// input order is kept
	assert.Equal(t, "inventory.Item", results[0].Target.ID())
	assert.Equal(t, "catalog.Item", results[1].Target.ID())
	assert.Equal(t, "orders.Order", results[2].Target.ID())

	for _, r := range results[:3] {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Node)
	}

	assert.Equal(t, shape.RecordDeclaration, results[1].Node.Shape())

	order := results[2].Node
	assert.Equal(t, "inventory.Item", order.Fields()[0].Type())
	assert.Equal(t, "Optional[catalog.Item]", order.Fields()[1].Type())
	assert.Equal(t, "Widget", order.Fields()[2].Type())
	assert.Equal(t, "inventory.Item", order.Methods()[0].Signature().Returns)

	assert.Nil(t, results[3].Node)
	assert.ErrorIs(t, results[3].Err, node.ErrConstructionFailed)
}

func TestScanner_MatchesSequentialBuild(t *testing.T) {
	targets := sampleTargets()[:3]

	concurrent, err := New(WithWorkers(8), WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)

	sequential, err := New(WithWorkers(1), WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)

	for i := range targets {
		assert.True(t, concurrent[i].Node.Equal(sequential[i].Node), targets[i].ID())
	}
}

func TestScanner_CachedMatchesUncached(t *testing.T) {
	targets := sampleTargets()[:3]

	cached, err := New(WithWorkers(4), WithCacheSize(8), WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)

	plain, err := New(WithWorkers(4), WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)

	for i := range targets {
		assert.True(t, cached[i].Node.Equal(plain[i].Node), targets[i].ID())
	}
}

func TestScanner_LogsAmbiguousQualifiers(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(WithLogger(logger)).Scan(context.Background(), sampleTargets()[:3])
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="ambiguous short name" name=Item qualifiers="[catalog inventory]"`)
	assert.Contains(t, out, "ambiguous_names=1")
	assert.NotContains(t, out, "name=Order")
}

func TestScanner_ManyTargets(t *testing.T) {
	var targets []Target
	for i := range 200 {
		targets = append(targets, Target{Namespace: "gen", Def: &typedef.Static{
			TypeName:   fmt.Sprintf("Type%03d", i),
			ModulePath: "gen",
			Fields:     []typedef.Annotation{{Name: "id", Expr: "int"}},
		}})
	}

	results, err := New(WithWorkers(4), WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)

	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("Type%03d", i), r.Node.Name())
	}
}

func TestScanner_IncludePrivate(t *testing.T) {
	targets := []Target{{Def: &typedef.Static{
		TypeName: "Cache",
		Fields:   []typedef.Annotation{{Name: "_store", Expr: "dict"}, {Name: "size", Expr: "int"}},
	}}}

	results, err := New(WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Node.Len())

	results, err = New(WithLogger(quietLogger()), WithIncludePrivate(true)).Scan(context.Background(), targets)
	require.NoError(t, err)
	assert.Equal(t, 2, results[0].Node.Len())
}

func TestScanner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithLogger(quietLogger())).Scan(ctx, sampleTargets())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_IncludesReferencedNames(t *testing.T) {
	index := Index([]Target{
		{Namespace: "a", Def: &typedef.Static{
			TypeName: "Holder",
			Fields:   []typedef.Annotation{{Name: "d", Expr: "datetime.date"}},
		}},
		{Namespace: "b", Def: &typedef.Static{
			TypeName: "Other",
			Methods:  []typedef.Callable{{Name: "m", Returns: "calendar.date"}},
		}},
	})

	assert.True(t, index.Ambiguous("date"))
	assert.False(t, index.Ambiguous("Holder"))
}

func TestSummarize(t *testing.T) {
	targets := sampleTargets()
	targets = append(targets, Target{Namespace: "orders", Def: &typedef.Static{
		TypeName: "Bad",
		Fields:   []typedef.Annotation{{Name: "x", Expr: "List[int"}},
	}})

	results, err := New(WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)

	sum := Summarize(results)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 3, sum.ByShape[shape.PlainClass])
	assert.Equal(t, 1, sum.ByShape[shape.RecordDeclaration])
	assert.Len(t, sum.Diagnostics.ByCode(diagnostic.CodeConstructionFailed), 1)
	assert.Len(t, sum.Diagnostics.ByCode(diagnostic.CodeTypeResolutionFailed), 1)

	assert.Len(t, Nodes(results), 4)
}

const pythonModels = `from dataclasses import dataclass


@dataclass
class Product:
    sku: str
    price: float
`

const manifestYAML = `
module: legacy
types:
  - name: Product
    fields:
      code: str
`

func TestCollector_Collect(t *testing.T) {
	dir := t.TempDir()
	pyDir := filepath.Join(dir, "py")
	require.NoError(t, os.MkdirAll(filepath.Join(pyDir, "shop"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pyDir, "shop", "models.py"), []byte(pythonModels), 0o600))

	manifestPath := filepath.Join(dir, "legacy.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifestYAML), 0o600))

	collector := NewCollector(2, quietLogger())

	targets, err := collector.Collect(context.Background(), Inputs{
		GoPatterns: []string{"apistub/store", "apistub/warehouse"},
		PyPaths:    []string{pyDir},
		Manifests:  []string{manifestPath},
	})
	require.NoError(t, err)

	ids := make(map[string]Target)
	for _, target := range targets {
		ids[target.ID()] = target
	}

	assert.Contains(t, ids, "apistub/store.Product")
	assert.Contains(t, ids, "apistub/warehouse.Product")
	assert.Contains(t, ids, "shop.models.Product")
	assert.Contains(t, ids, "legacy.Product")
	assert.Equal(t, manifestPath, ids["legacy.Product"].Source)

	results, err := New(WithLogger(quietLogger())).Scan(context.Background(), targets)
	require.NoError(t, err)

	for _, r := range results {
		require.NoError(t, r.Err, r.Target.ID())

		if r.Target.ID() == "apistub/store.Order" {
			// OrderItem is declared by both store and warehouse
			items, ok := r.Node.Child("Items")
			require.True(t, ok)
			assert.Equal(t, "list[store.OrderItem]", items.(*node.FieldNode).Type())
		}

		if r.Target.ID() == "shop.models.Product" {
			assert.Equal(t, shape.ValueObjectClass, r.Node.Shape())
			assert.Equal(t, 2, r.Node.Len())
		}
	}
}

func TestCollector_GoTypes(t *testing.T) {
	collector := NewCollector(1, quietLogger())

	targets, err := collector.Collect(context.Background(), Inputs{
		GoPatterns: []string{"apistub/store", "apistub/warehouse"},
		GoTypes:    []string{"apistub/warehouse.Shipment", "apistub/store.Product"},
	})
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "apistub/warehouse.Shipment", targets[0].ID())
	assert.Equal(t, "apistub/store.Product", targets[1].ID())

	_, err = collector.Collect(context.Background(), Inputs{
		GoPatterns: []string{"apistub/store"},
		GoTypes:    []string{"apistub/store.Missing"},
	})
	assert.ErrorIs(t, err, analyze.ErrTypeNotFound)

	_, err = collector.Collect(context.Background(), Inputs{
		GoPatterns: []string{"apistub/store"},
		GoTypes:    []string{"Product"},
	})
	assert.Error(t, err)
}

func TestCollector_SingleFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "models.py")
	require.NoError(t, os.WriteFile(file, []byte(pythonModels), 0o600))

	collector := NewCollector(1, quietLogger())

	targets, err := collector.Collect(context.Background(), Inputs{PyPaths: []string{file}})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "models.Product", targets[0].ID())

	_, err = collector.Collect(context.Background(), Inputs{PyPaths: []string{filepath.Join(dir, "missing")}})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = collector.Collect(context.Background(), Inputs{Manifests: []string{filepath.Join(dir, "missing.yaml")}})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanner_ReplayedGoManifest(t *testing.T) {
	collector := NewCollector(1, quietLogger())

	targets, err := collector.Collect(context.Background(), Inputs{GoPatterns: []string{"apistub/store"}})
	require.NoError(t, err)

	var defs []*typedef.Static
	for _, target := range targets {
		if s, ok := target.Def.(*typedef.Static); ok {
			defs = append(defs, s)
		}
	}
	require.NotEmpty(t, defs)

	path := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, manifest.WriteFile(manifest.FromDefinitions(defs), path))

	replayed, err := collector.Collect(context.Background(), Inputs{Manifests: []string{path}})
	require.NoError(t, err)
	require.Len(t, replayed, len(targets))

	scanner := New(WithLogger(quietLogger()))

	original, err := scanner.Scan(context.Background(), targets)
	require.NoError(t, err)

	again, err := scanner.Scan(context.Background(), replayed)
	require.NoError(t, err)

	for i := range original {
		require.NoError(t, original[i].Err)
		require.NoError(t, again[i].Err)
		assert.True(t, original[i].Node.Equal(again[i].Node), original[i].Target.ID())

		if original[i].Target.ID() == "apistub/store.Product" {
			_, ok := again[i].Node.Child("reserved")
			assert.False(t, ok)
			_, ok = again[i].Node.Child("reserve")
			assert.False(t, ok)
		}
	}
}
