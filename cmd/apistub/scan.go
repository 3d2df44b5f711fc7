package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"apistub/internal/manifest"
	"apistub/internal/scan"
	"apistub/internal/snapshot"
	"apistub/internal/typedef"
	"apistub/internal/watch"
	"apistub/node"
)

type scanOptions struct {
	inputs         scan.Inputs
	workers        int
	includePrivate bool
	format         string
	shape          bool
	output         string
	save           bool
	label          string
	emitManifest   string
	watch          bool
	debounce       time.Duration
}

func scanCmd(a *app) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Build node trees for every type in the inputs",
		Long: `Build one node tree per type found in the inputs and print them.

Examples:
  apistub scan --go ./... --go-dir ./service
  apistub scan --go ./store --go-type example.com/shop/store.Order
  apistub scan --py ./src --format json -o api.json
  apistub scan --manifest types.yaml --save --label nightly
  apistub scan --py ./src --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}

			if len(opts.inputs.GoPatterns)+len(opts.inputs.PyPaths)+len(opts.inputs.Manifests) == 0 {
				return fmt.Errorf("no inputs: pass --go, --py or --manifest")
			}

			if len(opts.inputs.GoTypes) > 0 && len(opts.inputs.GoPatterns) == 0 {
				return fmt.Errorf("--go-type needs the packages that declare it in --go")
			}

			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.Workers
			}

			if !cmd.Flags().Changed("include-private") {
				opts.includePrivate = a.cfg.IncludePrivate
			}

			if !opts.watch {
				return runScan(cmd.Context(), a, opts, cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watchScan(ctx, a, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.inputs.GoPatterns, "go", nil, "Go package patterns")
	cmd.Flags().StringVar(&opts.inputs.GoDir, "go-dir", "", "directory Go patterns are resolved from")
	cmd.Flags().StringSliceVar(&opts.inputs.GoTypes, "go-type", nil, "only scan these Go types (import/path.Name)")
	cmd.Flags().StringSliceVar(&opts.inputs.PyPaths, "py", nil, "Python files or directories")
	cmd.Flags().StringSliceVar(&opts.inputs.Manifests, "manifest", nil, "YAML manifest files")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", a.cfg.Workers, "concurrent builds")
	cmd.Flags().BoolVar(&opts.includePrivate, "include-private", false, "keep private members")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatYAML, "output format (yaml, json)")
	cmd.Flags().BoolVar(&opts.shape, "shape", false, "include the classified shape of each type")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write trees to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the trees as a snapshot")
	cmd.Flags().StringVar(&opts.label, "label", "", "snapshot label")
	cmd.Flags().StringVar(&opts.emitManifest, "emit-manifest", "", "write the collected definitions as a manifest")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "rescan when inputs change")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "watch debounce delay")

	return cmd
}

func runScan(ctx context.Context, a *app, opts scanOptions, stdout io.Writer) error {
	start := time.Now()

	targets, err := scan.NewCollector(opts.workers, a.logger).Collect(ctx, opts.inputs)
	if err != nil {
		return err
	}

	scanner := scan.New(
		scan.WithWorkers(opts.workers),
		scan.WithLogger(a.logger),
		scan.WithIncludePrivate(opts.includePrivate),
		scan.WithCacheSize(a.cfg.CacheSize),
	)

	results, err := scanner.Scan(ctx, targets)
	if err != nil {
		return err
	}

	nodes := scan.Nodes(results)
	sum := scan.Summarize(results)

	if err := emitTrees(opts, nodes, stdout); err != nil {
		return err
	}

	if opts.emitManifest != "" {
		if err := manifest.WriteFile(manifest.FromDefinitions(staticDefs(targets)), opts.emitManifest); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	if opts.save {
		saved, err := saveSnapshot(ctx, a.cfg.DBPath, opts.label, nodes)
		if err != nil {
			return err
		}

		a.logger.Info("snapshot saved",
			slog.String("scan_id", saved.ID.String()),
			slog.String("db", a.cfg.DBPath),
			slog.Int("classes", saved.Classes))
	}

	a.logger.Info("scan complete",
		slog.Int("types", sum.Total),
		slog.Int("failed", sum.Failed),
		slog.Int("warnings", len(sum.Diagnostics.Warnings)),
		slog.Duration("took", time.Since(start).Round(time.Millisecond)))

	for _, d := range sum.Diagnostics.Warnings {
		a.logger.Debug(d.String())
	}

	return nil
}

func emitTrees(opts scanOptions, nodes []*node.ClassNode, stdout io.Writer) error {
	if opts.output == "" {
		return writeViews(stdout, opts.format, viewsOf(nodes, opts.shape))
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := writeViews(f, opts.format, viewsOf(nodes, opts.shape)); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func saveSnapshot(ctx context.Context, dbPath, label string, nodes []*node.ClassNode) (snapshot.Scan, error) {
	store, err := snapshot.Open(dbPath)
	if err != nil {
		return snapshot.Scan{}, err
	}
	defer store.Close()

	saved, err := store.SaveScan(ctx, label, nodes)
	if err != nil {
		return snapshot.Scan{}, fmt.Errorf("save snapshot: %w", err)
	}

	return saved, nil
}

// staticDefs returns the targets whose definitions carry precomputed
// metadata, which is every definition the collector produces.
func staticDefs(targets []scan.Target) []*typedef.Static {
	defs := make([]*typedef.Static, 0, len(targets))
	for _, t := range targets {
		if s, ok := t.Def.(*typedef.Static); ok {
			defs = append(defs, s)
		}
	}

	return defs
}

func watchRoots(in scan.Inputs) []string {
	var roots []string

	if len(in.GoPatterns) > 0 {
		dir := in.GoDir
		if dir == "" {
			dir = "."
		}

		roots = append(roots, dir)
	}

	roots = append(roots, in.PyPaths...)
	roots = append(roots, in.Manifests...)

	return roots
}

func watchScan(ctx context.Context, a *app, opts scanOptions, stdout io.Writer) error {
	if err := runScan(ctx, a, opts, stdout); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	rescans := make(chan []string, 1)

	w, err := watch.New(watchRoots(opts.inputs),
		func(files []string) {
			select {
			case rescans <- files:
			default:
			}
		},
		watch.WithDebounceDelay(opts.debounce),
		watch.WithOnError(func(err error) {
			a.logger.Error("watch error", slog.Any("error", err))
		}),
	)
	if err != nil {
		return err
	}

	w.Start()
	defer w.Stop()

	a.logger.Info("watching inputs", slog.String("roots", strings.Join(watchRoots(opts.inputs), ",")))

	for {
		select {
		case <-ctx.Done():
			return nil
		case files := <-rescans:
			a.logger.Info("inputs changed", slog.Int("files", len(files)))

			if err := runScan(ctx, a, opts, stdout); err != nil {
				a.logger.Error("rescan failed", slog.Any("error", err))
			}
		}
	}
}
