package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/backyonatan-alt/coronastats/internal/cache"
	"github.com/backyonatan-alt/coronastats/internal/model"
	"github.com/backyonatan-alt/coronastats/internal/scrape"
)

// Fetcher retrieves one copy of the statistics page.
type Fetcher interface {
	Fetch(ctx context.Context) (model.RawDocument, error)
}

// Pipeline runs the two refresh cycles: fetch -> extract -> cache. Each
// cycle fetches on its own so one failing never blocks the other.
type Pipeline struct {
	cache   *cache.Cache
	fetcher Fetcher
}

func New(cache *cache.Cache, fetcher Fetcher) *Pipeline {
	return &Pipeline{cache: cache, fetcher: fetcher}
}

// RefreshGlobal updates the headline counters. A failed fetch or a page
// without counters leaves the cached counters as they were; a partial
// match merges what was found.
func (p *Pipeline) RefreshGlobal(ctx context.Context) error {
	doc, err := p.fetcher.Fetch(ctx)
	if err != nil {
		slog.Error("fetch failed", "cycle", "global", "error", err)
		return err
	}

	global, err := scrape.ExtractGlobal(ctx, doc)
	if err != nil && !errors.Is(err, scrape.ErrParseMiss) {
		slog.Error("extract failed", "cycle", "global", "error", err)
		return err
	}
	if err != nil {
		slog.Warn("headline counters do not match schema", "error", err)
	}
	if global.Empty() {
		return err
	}

	p.cache.MergeGlobal(global)
	slog.Info("updated the cases",
		"cases", deref(global.Cases),
		"deaths", deref(global.Deaths),
		"recovered", deref(global.Recovered),
	)
	return err
}

// RefreshCountries replaces the cached country list. A failed fetch keeps
// the cached list; a page without the table replaces it with an empty one.
func (p *Pipeline) RefreshCountries(ctx context.Context) error {
	doc, err := p.fetcher.Fetch(ctx)
	if err != nil {
		slog.Error("fetch failed", "cycle", "countries", "error", err)
		return err
	}

	records, err := scrape.ExtractCountries(ctx, doc)
	if err != nil && !errors.Is(err, scrape.ErrParseMiss) {
		slog.Error("extract failed", "cycle", "countries", "error", err)
		return err
	}
	if err != nil {
		slog.Warn("countries table does not match schema, storing empty list", "error", err)
	}

	p.cache.ReplaceCountries(records)
	slog.Info("updated the countries", "count", len(records))
	return err
}

// RunAll runs both cycles concurrently and waits for them. The returned
// error joins the failures of both.
func (p *Pipeline) RunAll(ctx context.Context) error {
	var globalErr, countriesErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		globalErr = p.RefreshGlobal(gctx)
		return nil // don't cancel the other cycle
	})
	g.Go(func() error {
		countriesErr = p.RefreshCountries(gctx)
		return nil
	})
	_ = g.Wait()

	if globalErr != nil {
		globalErr = fmt.Errorf("global: %w", globalErr)
	}
	if countriesErr != nil {
		countriesErr = fmt.Errorf("countries: %w", countriesErr)
	}
	return errors.Join(globalErr, countriesErr)
}

func deref(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
