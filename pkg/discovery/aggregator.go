package discovery

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
)

// creatorPriority orders sources from most to least specific. A path found
// by pyenv and on PATH is a pyenv interpreter that happens to be on PATH.
var creatorPriority = []string{SourcePyenv, SourceConda, SourcePipx, SourceSearchPath}

// SourceReport summarizes one strategy's contribution.
type SourceReport struct {
	Name     string        `json:"name"`
	Count    int           `json:"count"`
	Err      error         `json:"-"`
	Kind     string        `json:"error_kind,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the merged outcome of one discovery pass.
type Report struct {
	// Paths are the unique normalized interpreter paths, sorted.
	Paths []string `json:"paths"`
	// Origins maps each path to the sources that found it, in strategy order.
	Origins map[string][]string `json:"origins"`
	// Sources holds one entry per strategy, in strategy order.
	Sources []SourceReport `json:"sources"`
}

// Creator returns the most specific source that found path, or "" when the
// path is not part of the report.
func (r *Report) Creator(path string) string {
	origins := r.Origins[path]
	for _, name := range creatorPriority {
		for _, o := range origins {
			if o == name {
				return name
			}
		}
	}
	if len(origins) > 0 {
		return origins[0]
	}
	return ""
}

// Aggregator runs strategies and merges their results.
type Aggregator struct {
	normalizer Normalizer
	strategies []Strategy
}

// NewAggregator creates an Aggregator over strategies.
func NewAggregator(normalizer Normalizer, strategies ...Strategy) *Aggregator {
	return &Aggregator{normalizer: normalizer, strategies: strategies}
}

// Strategies returns the configured strategies in run order.
func (a *Aggregator) Strategies() []Strategy {
	return append([]Strategy(nil), a.strategies...)
}

type strategyResult struct {
	paths    PathSet
	err      error
	duration time.Duration
}

// Run invokes every strategy once, concurrently, and merges the results.
// Strategy failures are logged and recorded in the report; they never fail
// the pass.
func (a *Aggregator) Run(ctx context.Context) *Report {
	results := make([]strategyResult, len(a.strategies))

	var g errgroup.Group
	for i, s := range a.strategies {
		i, s := i, s
		g.Go(func() error {
			start := time.Now()
			paths, err := s.Discover(ctx)
			results[i] = strategyResult{paths: paths, err: err, duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	all := NewPathSet()
	report := &Report{
		Origins: make(map[string][]string),
		Sources: make([]SourceReport, 0, len(a.strategies)),
	}
	for i, s := range a.strategies {
		res := results[i]
		src := SourceReport{Name: s.Name(), Err: res.err, Duration: res.duration}

		normalized := NewPathSet()
		for p := range res.paths {
			normalized.Add(a.normalizer.Normalize(p))
		}
		for _, p := range normalized.Sorted() {
			report.Origins[p] = append(report.Origins[p], s.Name())
		}
		all.Union(normalized)
		src.Count = normalized.Len()

		if res.err != nil {
			src.Kind = errors.Kind(res.err)
			src.Error = res.err.Error()
			logger.Info("discovery source degraded", logger.Fields{
				"source": s.Name(),
				"kind":   src.Kind,
				"error":  res.err.Error(),
				"count":  src.Count,
			})
		} else {
			logger.Debug("discovery source finished", logger.Fields{
				"source":   s.Name(),
				"count":    src.Count,
				"duration": res.duration.String(),
			})
		}
		report.Sources = append(report.Sources, src)
	}

	report.Paths = all.Sorted()
	return report
}

// DiscoverAll returns the sorted unique normalized interpreter paths.
func (a *Aggregator) DiscoverAll(ctx context.Context) []string {
	return a.Run(ctx).Paths
}
