package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/config"
	"github.com/sells-group/homepage-finder/internal/fetcher"
	"github.com/sells-group/homepage-finder/internal/finder"
	"github.com/sells-group/homepage-finder/internal/lists"
	"github.com/sells-group/homepage-finder/internal/location"
	"github.com/sells-group/homepage-finder/internal/resilience"
	"github.com/sells-group/homepage-finder/internal/scorer"
	"github.com/sells-group/homepage-finder/internal/search"
	"github.com/sells-group/homepage-finder/internal/store"
	"github.com/sells-group/homepage-finder/pkg/brave"
)

// finderEnv holds the initialized store and collaborators needed by the
// run/score/serve commands.
type finderEnv struct {
	Store    store.Store
	Lists    lists.Lists
	Resolver location.Resolver // nil when extraction is disabled
	Liveness scorer.Liveness   // nil when probing is disabled
	Finder   *finder.Finder    // nil without a search API key
}

// Close releases resources held by the environment.
func (e *finderEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv builds the environment for command. Commands that never search
// ("score") get no Finder and need no API key.
func initEnv(ctx context.Context, command string) (*finderEnv, error) {
	if err := cfg.Validate(command); err != nil {
		return nil, err
	}
	if err := scorer.ValidateConfig(cfg.Scoring); err != nil {
		return nil, err
	}

	l, err := loadLists()
	if err != nil {
		return nil, err
	}

	env := &finderEnv{Lists: l}
	initFetch(env, cfg.Fetch)

	if command == "score" {
		return env, nil
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	env.Store = st

	if cfg.Brave.Key == "" {
		zap.L().Warn("HPFINDER_BRAVE_KEY not set, search endpoints disabled")
		return env, nil
	}

	f, err := finder.New(finder.Deps{
		Search:   search.NewSearcher(newBraveClient(cfg.Brave), search.NewGenerator(cfg.Search.Patterns, cfg.Search.Custom), cfg.Brave.Count),
		Store:    st,
		Resolver: env.Resolver,
		Liveness: env.Liveness,
	}, cfg.Scoring, l, finder.Options{
		Concurrency:    cfg.Batch.MaxConcurrentCompanies,
		CacheLocations: cfg.Batch.CacheLocations,
	})
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Finder = f
	return env, nil
}

func loadLists() (lists.Lists, error) {
	if cfg.Lists.Path == "" {
		return lists.Defaults(), nil
	}
	l, err := lists.Load(cfg.Lists.Path)
	if err != nil {
		return lists.Lists{}, err
	}
	zap.L().Info("loaded curated lists", zap.String("path", cfg.Lists.Path))
	return l, nil
}

func initFetch(env *finderEnv, fc config.FetchConfig) {
	hf := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    fc.UserAgent,
		Timeout:      time.Duration(fc.TimeoutSecs) * time.Second,
		ProbeTimeout: time.Duration(fc.ProbeTimeoutSecs) * time.Second,
		MaxInFlight:  int64(fc.MaxInFlight),
		PerHostRPS:   fc.PerHostRPS,
		MaxBodyBytes: fc.MaxBodyBytes,
	})
	if !fc.DisableExtraction {
		env.Resolver = location.NewExtractor(hf, location.WithContactPageLimit(fc.ContactPageLimit))
	}
	if !fc.DisableProbe {
		env.Liveness = hf
	}
}

func newBraveClient(bc config.BraveConfig) brave.Client {
	retry := resilience.DefaultRetryConfig().WithMaxAttempts(bc.MaxRetries)
	retry.OnRetry = resilience.RetryLogger("brave", "web_search")

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:       "brave",
		ShouldTrip: resilience.IsTransient,
	})

	return brave.NewClient(bc.Key,
		brave.WithBaseURL(bc.BaseURL),
		brave.WithRateLimit(bc.RateLimit),
		brave.WithRetry(retry),
		brave.WithCircuitBreaker(breaker),
	)
}
