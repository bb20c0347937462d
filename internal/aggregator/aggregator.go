// Package aggregator fans a structured search filter out to every listing
// source enabled for a region, merges and deduplicates the results, and
// caches the merged result per (region, filter fingerprint).
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jobpilot/jobpilot/internal/cache"
	"github.com/jobpilot/jobpilot/internal/filtering"
	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/provider"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTTL is how long a merged result stays fresh in the cache.
	DefaultTTL = time.Hour
	// DefaultRecencyWindow drops postings with a known posted date older
	// than this unless the filter requests a different window.
	DefaultRecencyWindow = 30 * 24 * time.Hour
	// DefaultProviderTimeout bounds each adapter call during fan-out.
	DefaultProviderTimeout = 15 * time.Second
)

// Result is one merged, ranked, cached aggregation outcome. Results are
// never mutated in place; a refresh builds a new value.
type Result struct {
	Postings  []*jobs.Posting `json:"postings"`
	FetchedAt time.Time       `json:"fetched_at"`
	TTL       time.Duration   `json:"ttl"`
	Report    Report          `json:"report"`
}

// Report records which sources contributed to a result and which failed,
// so a degraded search is visible to the caller instead of silently thinner.
type Report struct {
	Contributed []string          `json:"contributed"`
	Failed      map[string]string `json:"failed,omitempty"`
}

// SearchError is returned when every enabled adapter failed. Callers can
// distinguish "no jobs matched" (empty success) from "could not search".
type SearchError struct {
	Region   provider.Region
	Failures map[string]error
}

func (e *SearchError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("all providers failed for region %s: %s", e.Region, strings.Join(names, ", "))
}

// Option configures an Engine.
type Option func(*Engine)

func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

func WithRecencyWindow(window time.Duration) Option {
	return func(e *Engine) { e.recency = window }
}

func WithProviderTimeout(timeout time.Duration) Option {
	return func(e *Engine) { e.providerTimeout = timeout }
}

func withNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is the aggregation engine. Safe for concurrent use.
type Engine struct {
	providers       map[provider.Region][]provider.Provider
	store           cache.Store
	logger          *zap.Logger
	ttl             time.Duration
	recency         time.Duration
	providerTimeout time.Duration
	now             func() time.Time
}

func New(providers map[provider.Region][]provider.Provider, store cache.Store, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		providers:       providers,
		store:           store,
		logger:          logger,
		ttl:             DefaultTTL,
		recency:         DefaultRecencyWindow,
		providerTimeout: DefaultProviderTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type sourceResult struct {
	name     string
	postings []*jobs.Posting
	err      error
}

// Search returns the merged postings for the filter, from cache when fresh.
// Partial provider failure still yields a success result; only total failure
// surfaces as a *SearchError.
func (e *Engine) Search(ctx context.Context, region provider.Region, f provider.Filter) (*Result, error) {
	providers, ok := e.providers[region]
	if !ok || len(providers) == 0 {
		return nil, fmt.Errorf("no providers enabled for region %s", region)
	}

	key := fmt.Sprintf("%s:%s", region, f.Fingerprint())
	if result := e.lookup(ctx, key); result != nil {
		e.logger.Debug("cache hit",
			zap.String("key", key),
			zap.Time("fetched_at", result.FetchedAt),
			zap.Int("postings", len(result.Postings)),
		)
		return result, nil
	}

	e.logger.Info("dispatching search",
		zap.String("region", string(region)),
		zap.Int("providers", len(providers)),
		zap.Strings("titles", f.Titles),
	)

	// The fan-out deliberately detaches from the caller's cancellation:
	// adapter calls already in flight run to completion so their result can
	// still populate the cache for the next caller. Only the wait below is
	// abandoned when the caller goes away.
	base := context.WithoutCancel(ctx)

	results := make([]sourceResult, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(base, e.providerTimeout)
			defer cancel()

			start := time.Now()
			postings, err := p.Search(pctx, f)
			results[i] = sourceResult{name: p.Name(), postings: postings, err: err}

			if err != nil {
				e.logger.Warn("provider failed",
					zap.String("provider", p.Name()),
					zap.Duration("elapsed", time.Since(start)),
					zap.Error(err),
				)
				return nil
			}

			e.logger.Debug("provider completed",
				zap.String("provider", p.Name()),
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("postings", len(postings)),
			)
			return nil
		})
	}

	done := make(chan struct{})
	var assembled *Result
	var assembleErr error
	go func() {
		defer close(done)
		g.Wait()
		assembled, assembleErr = e.assemble(base, region, f, key, results)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
		return assembled, assembleErr
	}
}

func (e *Engine) lookup(ctx context.Context, key string) *Result {
	payload, ok := e.store.Get(ctx, key)
	if !ok {
		return nil
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		e.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}

	if e.now().Sub(result.FetchedAt) >= result.TTL {
		return nil
	}

	return &result
}

// assemble merges the per-source results into a ranked, cached Result.
// It runs even when the original caller has gone.
func (e *Engine) assemble(ctx context.Context, region provider.Region, f provider.Filter, key string, results []sourceResult) (*Result, error) {
	report := Report{Failed: make(map[string]string)}
	failures := make(map[string]error)
	merged := &jobs.Postings{}

	for _, res := range results {
		if res.err != nil {
			failures[res.name] = res.err
			report.Failed[res.name] = res.err.Error()
			continue
		}
		report.Contributed = append(report.Contributed, res.name)
		merged.Items = append(merged.Items, res.postings...)
	}

	if len(report.Contributed) == 0 {
		return nil, &SearchError{Region: region, Failures: failures}
	}
	if len(report.Failed) == 0 {
		report.Failed = nil
	}

	merged = merged.Dedupe()

	window := e.recency
	if f.DaysAgo > 0 {
		window = time.Duration(f.DaysAgo) * 24 * time.Hour
	}

	steps := []filtering.Filter{
		filtering.NewRecency(window, e.now),
		filtering.NewLocationType(f.LocationType),
		filtering.NewKeywords(f.Titles),
	}

	filtered, err := filtering.Run(ctx, e.logger, steps, merged)
	if err != nil {
		return nil, fmt.Errorf("filtering merged postings: %w", err)
	}

	filtered.Rank()

	result := &Result{
		Postings:  filtered.Items,
		FetchedAt: e.now(),
		TTL:       e.ttl,
		Report:    report,
	}

	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.Warn("marshalling result for cache", zap.Error(err))
		return result, nil
	}
	if err := e.store.Put(ctx, key, payload, e.ttl); err != nil {
		e.logger.Warn("caching result", zap.String("key", key), zap.Error(err))
	}

	e.logger.Info("search assembled",
		zap.Int("postings", len(result.Postings)),
		zap.Strings("contributed", report.Contributed),
		zap.Int("failed", len(failures)),
	)

	return result, nil
}
