// Package finder runs the homepage search for a batch of companies: it
// generates queries, scores every hit, picks the best candidate and records
// one result row per company.
package finder

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/homepage-finder/internal/config"
	"github.com/sells-group/homepage-finder/internal/fuzzy"
	"github.com/sells-group/homepage-finder/internal/lists"
	"github.com/sells-group/homepage-finder/internal/location"
	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/scorer"
	"github.com/sells-group/homepage-finder/internal/store"
)

// Searcher returns the hit batches for one company.
type Searcher interface {
	Search(ctx context.Context, c model.CompanyRecord) ([]model.HitBatch, error)
}

// Deps are the collaborators a Finder needs. Resolver and Liveness may be
// nil to disable page-based location checks and the reachability probe.
type Deps struct {
	Search   Searcher
	Store    store.Store
	Resolver location.Resolver
	Liveness scorer.Liveness
	Matcher  *fuzzy.Matcher
}

// Options tune batch execution.
type Options struct {
	Concurrency    int  // companies in flight; <= 0 means 1
	CacheLocations bool // share location lookups across a run
}

// Finder orchestrates search, scoring and persistence.
type Finder struct {
	deps  Deps
	cfg   config.ScoringConfig
	lists lists.Lists
	opts  Options
	now   func() time.Time
}

// New validates the scoring configuration and returns a Finder. A nil
// Store is replaced by an in-memory one.
func New(deps Deps, cfg config.ScoringConfig, l lists.Lists, opts Options) (*Finder, error) {
	if deps.Search == nil {
		return nil, eris.New("finder: searcher is required")
	}
	if err := scorer.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		deps.Store = store.NewNop()
	}
	if deps.Matcher == nil {
		deps.Matcher = fuzzy.NewMatcher(nil)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Finder{deps: deps, cfg: cfg, lists: l, opts: opts, now: time.Now}, nil
}

// Outcome is the full per-company answer: the result row plus every ranked
// candidate and exclusion behind it.
type Outcome struct {
	Result     model.Result            `json:"result"`
	Candidates []model.ScoredCandidate `json:"candidates"`
	Excluded   []scorer.Exclusion      `json:"excluded,omitempty"`
}

// Scorer builds a Scorer for one run. With location caching enabled the
// returned scorer shares lookups across every company it scores.
func (f *Finder) Scorer() (*scorer.Scorer, error) {
	resolver := f.deps.Resolver
	if resolver != nil && f.opts.CacheLocations {
		resolver = location.NewCachedResolver(resolver)
	}
	return scorer.New(f.cfg, f.lists, resolver, f.deps.Liveness, scorer.WithMatcher(f.deps.Matcher))
}

// Find searches and scores one company without persisting anything.
func (f *Finder) Find(ctx context.Context, c model.CompanyRecord) (Outcome, error) {
	sc, err := f.Scorer()
	if err != nil {
		return Outcome{}, err
	}
	return f.find(ctx, sc, c)
}

// find returns an error only when ctx ends; search failures become an
// error-status result.
func (f *Finder) find(ctx context.Context, sc *scorer.Scorer, c model.CompanyRecord) (Outcome, error) {
	batches, err := f.deps.Search.Search(ctx, c)
	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}
	if err != nil {
		zap.L().Warn("finder: search failed",
			zap.String("company_id", c.ID),
			zap.String("company", c.CompanyName),
			zap.Error(err),
		)
		return Outcome{Result: model.EmptyResult(c, model.StatusError, f.now()), Candidates: []model.ScoredCandidate{}}, nil
	}

	hits := 0
	var all []model.ScoredCandidate
	var excluded []scorer.Exclusion
	for _, b := range batches {
		hits += len(b.Hits)
		cands, ex := sc.ScoreCandidates(ctx, c, b.QueryLabel, b.Hits)
		all = append(all, cands...)
		excluded = append(excluded, ex...)
	}
	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}

	out := Outcome{Candidates: scorer.Rank(scorer.Dedupe(all)), Excluded: excluded}
	best, ok := scorer.Best(out.Candidates)
	switch {
	case hits == 0:
		out.Result = model.EmptyResult(c, model.StatusNoSearchResults, f.now())
	case !ok:
		out.Result = model.EmptyResult(c, model.StatusNoCandidates, f.now())
	default:
		out.Result = model.ResultFromCandidate(c, best, len(out.Candidates), f.now())
	}

	zap.L().Debug("finder: company scored",
		zap.String("company_id", c.ID),
		zap.String("url", out.Result.URL),
		zap.Int("score", out.Result.Score),
		zap.String("status", out.Result.Status),
		zap.Int("candidates", len(out.Candidates)),
	)
	return out, nil
}

// Run processes companies concurrently under a new store run. Results are
// returned in input order. On cancellation the run is marked failed and the
// results finished so far are returned with the context error.
func (f *Finder) Run(ctx context.Context, source string, companies []model.CompanyRecord) (*model.Run, []model.Result, Summary, error) {
	run, err := f.deps.Store.CreateRun(ctx, source, len(companies))
	if err != nil {
		return nil, nil, Summary{}, eris.Wrap(err, "finder: create run")
	}
	if err := f.deps.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return run, nil, Summary{}, eris.Wrap(err, "finder: start run")
	}
	run.Status = model.RunStatusRunning

	sc, err := f.Scorer()
	if err != nil {
		return run, nil, Summary{}, err
	}

	zap.L().Info("finder: run started",
		zap.String("run_id", run.ID),
		zap.String("source", source),
		zap.Int("companies", len(companies)),
		zap.Int("concurrency", f.opts.Concurrency),
	)

	slots := make([]*model.Result, len(companies))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, c := range companies {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := f.find(gctx, sc, c)
			if err != nil {
				return nil
			}

			res := out.Result
			res.RunID = run.ID
			if err := f.deps.Store.SaveResult(gctx, res); err != nil {
				zap.L().Warn("finder: save result failed",
					zap.String("run_id", run.ID),
					zap.String("company_id", c.ID),
					zap.Error(err),
				)
			}
			slots[i] = &res

			n := processed.Add(1)
			if err := f.deps.Store.UpdateRunProgress(gctx, run.ID, int(n)); err != nil {
				zap.L().Warn("finder: update progress failed", zap.String("run_id", run.ID), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]model.Result, 0, len(companies))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	summary := Summarize(results)
	summary.Total = len(companies)
	run.Processed = len(results)

	status := model.RunStatusComplete
	if ctx.Err() != nil {
		status = model.RunStatusFailed
	}
	if err := f.deps.Store.UpdateRunStatus(context.WithoutCancel(ctx), run.ID, status); err != nil {
		zap.L().Warn("finder: finish run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
	run.Status = status

	summary.Log(run.ID)
	if ctx.Err() != nil {
		return run, results, summary, eris.Wrap(ctx.Err(), "finder: run cancelled")
	}
	return run, results, summary, nil
}
