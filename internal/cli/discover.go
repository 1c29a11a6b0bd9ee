package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cperrin88/envpkgsearch/pkg/config"
	"github.com/cperrin88/envpkgsearch/pkg/discovery"
	"github.com/cperrin88/envpkgsearch/pkg/environment"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
	"github.com/spf13/cobra"
)

type discoverOptions struct {
	save    bool
	prune   bool
	sources []string
}

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	var opts discoverOptions

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover Python interpreters",
		Long: `Search PATH, pyenv, conda and pipx for Python interpreters.

Prints the unique interpreter paths, one per line. With --output json the
full report is printed, including which sources found each path and the
failures each source absorbed. Use --save to introspect the interpreters
and record them in the environment cache.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiscover(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "Record discovered environments in the cache")
	cmd.Flags().BoolVar(&opts.prune, "prune", false, "With --save, drop cached environments whose interpreter vanished")
	cmd.Flags().StringSliceVar(&opts.sources, "source", nil, "Restrict discovery to these sources (path, pyenv, conda, pipx)")

	return cmd
}

func runDiscover(ctx context.Context, out io.Writer, opts discoverOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(opts.sources) > 0 {
		cfg.Settings.Sources = opts.sources
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	aggregator, err := discovery.NewDefaultAggregator(discoveryOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to set up discovery: %w", err)
	}

	names := make([]string, 0, len(aggregator.Strategies()))
	for _, strategy := range aggregator.Strategies() {
		names = append(names, strategy.Name())
	}
	logger.Debug("Running discovery", logger.Fields{"sources": names})

	report := aggregator.Run(ctx)

	if opts.save {
		if err := saveEnvironments(ctx, cfg, report, opts.prune); err != nil {
			return err
		}
	}

	if jsonOutput(cfg) {
		return writeJSON(out, report)
	}

	for _, path := range report.Paths {
		_, _ = fmt.Fprintln(out, path)
	}
	return nil
}

func saveEnvironments(ctx context.Context, cfg *config.Config, report *discovery.Report, prune bool) error {
	builder := environment.NewBuilder(
		environment.LayoutIntrospector{Home: fsutil.HomeDir()},
		environment.WithPackageScan(cfg.Settings.ScanPackages),
	)
	envs := builder.Build(ctx, report)

	store, err := loadStore(cfg)
	if err != nil {
		return err
	}

	added := 0
	for _, env := range envs {
		if store.Upsert(env) {
			added++
		}
	}

	var pruned []string
	if prune {
		pruned = store.Prune(nil)
	}

	if err := store.Save(cfg.GetCachePath()); err != nil {
		return err
	}

	logger.Success("Environment cache updated", logger.Fields{
		"path":    cfg.GetCachePath(),
		"saved":   len(envs),
		"added":   added,
		"pruned":  len(pruned),
		"entries": store.Len(),
	})
	return nil
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
