package modgrammar

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/pkg/modgrammar/catalog"
	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/index"
	"github.com/cognicore/modgrammar/pkg/modgrammar/ingest"
	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
	"github.com/cognicore/modgrammar/pkg/modgrammar/parse"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
)

// Engine is the main facade: it compiles a catalog once and runs the match
// index over item data.
type Engine struct {
	store       store.Store
	prior       index.Prior
	logger      *zap.Logger
	workers     int
	eligibility ingest.Eligibility
	now         func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	parser  *parse.Parser
}

// Options configures an Engine
type Options struct {
	Store       store.Store // optional; supplies prior stats and records runs
	Prior       index.Prior // optional; consulted after the store
	Logger      *zap.Logger
	Workers     int
	Eligibility ingest.Eligibility
	Now         func() time.Time
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	e := &Engine{
		store:       opts.Store,
		prior:       opts.Prior,
		logger:      opts.Logger,
		workers:     opts.Workers,
		eligibility: opts.Eligibility,
		now:         opts.Now,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if len(e.eligibility.Sources) == 0 {
		e.eligibility = ingest.DefaultEligibility()
	}
	return e
}

// Close cleanly shuts down the engine
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Build compiles the catalog and makes it the engine's grammar. It returns
// the build diagnostics; none of them are fatal.
func (e *Engine) Build(cat *catalog.Catalog) []grammar.Diagnostic {
	start := time.Now()
	b := grammar.NewBuilder(grammar.WithLogger(e.logger))
	g := b.Build(cat.Groups)
	p := parse.New(g, parse.WithLogger(e.logger))

	e.mu.Lock()
	e.parser = p
	e.mu.Unlock()

	e.logger.Info("grammar compiled",
		zap.Int("templates", cat.Len()),
		zap.Int("rules", g.Len()),
		zap.Int("diagnostics", len(b.Diagnostics())),
		zap.Duration("took", time.Since(start)))
	return b.Diagnostics()
}

// LoadGrammar reads a trade stats catalog file and builds it.
func (e *Engine) LoadGrammar(path string) ([]grammar.Diagnostic, error) {
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return e.Build(cat), nil
}

// Parser returns the current parser, or nil before Build.
func (e *Engine) Parser() *parse.Parser {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parser
}

// Match parses one raw modifier string.
func (e *Engine) Match(raw string) (grammar.Result, bool, error) {
	p := e.Parser()
	if p == nil {
		return grammar.Result{}, false, fmt.Errorf("%w: grammar not built", internalerr.ErrInvalidInput)
	}
	res, ok := p.ParseText(raw)
	return res, ok, nil
}

// Index runs the match index over items, attaches prior stats and records
// the run in the store when one is configured.
func (e *Engine) Index(ctx context.Context, items []ingest.Item) (index.Snapshot, store.Run, error) {
	p := e.Parser()
	if p == nil {
		return index.Snapshot{}, store.Run{}, fmt.Errorf("%w: grammar not built", internalerr.ErrInvalidInput)
	}

	run := store.Run{ID: e.newRunID(), StartedAt: e.now(), Items: len(items)}

	var prior index.Prior = e.prior
	if e.store != nil {
		stats, err := e.store.AllStats(ctx)
		if err != nil {
			return index.Snapshot{}, store.Run{}, fmt.Errorf("load prior stats: %w", err)
		}
		prior = index.Chain(index.PriorMap(stats), e.prior)
	}

	snap, err := index.Index(ctx, items, p, prior, index.Options{
		Workers:     e.workers,
		Eligibility: e.eligibility,
		Logger:      e.logger,
	})
	if err != nil {
		return index.Snapshot{}, store.Run{}, err
	}
	run.Groups = snap.Len()

	if e.store != nil {
		if err := e.store.SaveRun(ctx, run, snap.Records()); err != nil {
			return index.Snapshot{}, store.Run{}, fmt.Errorf("save run: %w", err)
		}
	}
	e.logger.Info("run recorded", zap.String("run", run.ID), zap.Int("groups", run.Groups))
	return snap, run, nil
}

func (e *Engine) newRunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}
