// Package index folds per-item parse results into a frequency-ranked catalog
// of item and modifier combinations.
package index

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/ingest"
	"github.com/cognicore/modgrammar/pkg/modgrammar/parse"
)

// Options configures Index.
type Options struct {
	Workers     int // 0 uses GOMAXPROCS
	Eligibility ingest.Eligibility
	Logger      *zap.Logger
}

// MatchItem parses every eligible modifier on it and returns the matches in
// modifier order.
func MatchItem(p *parse.Parser, e ingest.Eligibility, it ingest.Item) []grammar.Result {
	if !e.Eligible(it) {
		return nil
	}
	var out []grammar.Result
	for _, raw := range e.Mods(it) {
		if res, ok := p.ParseText(raw); ok {
			out = append(out, res)
		}
	}
	return out
}

// Index matches items in parallel and returns the merged snapshot with prior
// stats attached. prior may be nil.
func Index(ctx context.Context, items []ingest.Item, p *parse.Parser, prior Prior, opts Options) (Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(items) {
		workers = len(items)
	}

	tallies := make([]*Tally, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		t := NewTally()
		tallies[w] = t
		g.Go(func() error {
			for i := w; i < len(items); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				it := items[i]
				t.Observe(i, it.CatalogName(), MatchItem(p, opts.Eligibility, it))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	for _, t := range tallies {
		snap = snap.Merge(t)
	}
	snap = snap.Attach(prior)

	logger.Info("index complete",
		zap.Int("items", len(items)),
		zap.Int("matched_items", snap.Items()),
		zap.Int("groups", snap.Len()),
		zap.Int("workers", workers))
	return snap, nil
}
