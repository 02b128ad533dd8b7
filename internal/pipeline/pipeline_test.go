package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/backyonatan-alt/coronastats/internal/cache"
	"github.com/backyonatan-alt/coronastats/internal/config"
	"github.com/backyonatan-alt/coronastats/internal/fetcher"
	"github.com/backyonatan-alt/coronastats/internal/model"
	"github.com/backyonatan-alt/coronastats/internal/scrape"
	"github.com/backyonatan-alt/coronastats/internal/scrape/scrapetest"
)

type fetchResult struct {
	body string
	err  error
}

// scriptedFetcher returns its results in order, repeating the last one.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

func (f *scriptedFetcher) Fetch(ctx context.Context) (model.RawDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	f.calls++

	res := f.results[idx]
	if res.err != nil {
		return model.RawDocument{}, res.err
	}
	return model.RawDocument{Body: []byte(res.body), FetchedAt: time.Now()}, nil
}

func script(results ...fetchResult) *scriptedFetcher {
	return &scriptedFetcher{results: results}
}

var notFound = &fetcher.StatusError{URL: "http://upstream.test/", Code: 404, Status: "Not Found"}

func TestRefreshGlobal(t *testing.T) {
	p := New(cache.New(), script(fetchResult{body: scrapetest.Standard()}))
	require.NoError(t, p.RefreshGlobal(context.Background()))

	g := p.cache.Global()
	require.Equal(t, int64(1000), *g.Cases)
	require.Equal(t, int64(50), *g.Deaths)
	require.Equal(t, int64(200), *g.Recovered)
	require.Empty(t, p.cache.Countries())
}

func TestRefreshGlobal_FetchFailureKeepsCounters(t *testing.T) {
	p := New(cache.New(), script(
		fetchResult{body: scrapetest.Standard()},
		fetchResult{err: notFound},
	))
	require.NoError(t, p.RefreshGlobal(context.Background()))
	before := p.cache.Global()

	err := p.RefreshGlobal(context.Background())
	require.ErrorIs(t, err, fetcher.ErrFetch)
	require.Equal(t, before, p.cache.Global())
}

func TestRefreshGlobal_ParseMissKeepsCounters(t *testing.T) {
	p := New(cache.New(), script(
		fetchResult{body: scrapetest.Standard()},
		fetchResult{body: scrapetest.Page("<p>nothing here</p>")},
	))
	require.NoError(t, p.RefreshGlobal(context.Background()))
	before := p.cache.Global()

	err := p.RefreshGlobal(context.Background())
	require.ErrorIs(t, err, scrape.ErrParseMiss)
	require.Equal(t, before, p.cache.Global())
}

func TestRefreshGlobal_PartialMerge(t *testing.T) {
	p := New(cache.New(), script(
		fetchResult{body: scrapetest.Standard()},
		fetchResult{body: scrapetest.Page(scrapetest.Counter("2,000"))},
	))
	require.NoError(t, p.RefreshGlobal(context.Background()))
	require.ErrorIs(t, p.RefreshGlobal(context.Background()), scrape.ErrParseMiss)

	g := p.cache.Global()
	require.Equal(t, int64(2000), *g.Cases)
	require.Equal(t, int64(50), *g.Deaths)
	require.Equal(t, int64(200), *g.Recovered)
}

func TestRefreshCountries(t *testing.T) {
	p := New(cache.New(), script(fetchResult{body: scrapetest.Standard()}))

	for i := 0; i < 2; i++ {
		require.NoError(t, p.RefreshCountries(context.Background()))
		require.Len(t, p.cache.Countries(), 2)
	}
	require.True(t, p.cache.Global().Empty())
}

func TestRefreshCountries_FetchFailureKeepsList(t *testing.T) {
	p := New(cache.New(), script(
		fetchResult{body: scrapetest.Standard()},
		fetchResult{err: &fetcher.TransportError{URL: "http://upstream.test/", Err: context.DeadlineExceeded}},
	))
	require.NoError(t, p.RefreshCountries(context.Background()))
	require.ErrorIs(t, p.RefreshCountries(context.Background()), fetcher.ErrFetch)
	require.Len(t, p.cache.Countries(), 2)
}

func TestRefreshCountries_MissingTableClearsList(t *testing.T) {
	p := New(cache.New(), script(
		fetchResult{body: scrapetest.Standard()},
		fetchResult{body: scrapetest.Page(scrapetest.Counter("1"))},
	))
	require.NoError(t, p.RefreshCountries(context.Background()))
	require.Len(t, p.cache.Countries(), 2)

	require.ErrorIs(t, p.RefreshCountries(context.Background()), scrape.ErrParseMiss)
	require.Empty(t, p.cache.Countries())
}

func TestRunAll_Idempotent(t *testing.T) {
	p := New(cache.New(), script(fetchResult{body: scrapetest.Standard()}))

	require.NoError(t, p.RunAll(context.Background()))
	first := p.cache.Snapshot()
	require.NoError(t, p.RunAll(context.Background()))
	second := p.cache.Snapshot()

	require.Equal(t, first.GlobalSnapshot, second.GlobalSnapshot)
	require.Equal(t, first.Countries, second.Countries)
	require.Len(t, second.Countries, 2)
}

func TestRunAll_IndependentCycles(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// first request succeeds, every later one fails
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(scrapetest.Standard()))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := fetcher.New(&config.Config{SourceURL: srv.URL, RequestTimeout: 5 * time.Second})
	p := New(cache.New(), f)

	err := p.RunAll(context.Background())
	require.ErrorIs(t, err, fetcher.ErrFetch)
	require.Equal(t, int32(2), calls.Load())

	// exactly one of the two cycles got the page
	snap := p.cache.Snapshot()
	gotGlobal := !snap.GlobalSnapshot.Empty()
	gotCountries := len(snap.Countries) == 2
	require.True(t, gotGlobal != gotCountries)
}
