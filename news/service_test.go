package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/api/models"
)

type fakeFetcher struct {
	calls    int
	articles []models.NewsArticle
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, topic string) ([]models.NewsArticle, error) {
	f.calls++
	return f.articles, f.err
}

func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestHeadlinesFreshCacheSkipsUpstream(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{articles: []models.NewsArticle{{Title: "Rates hold steady", Source: "Wire"}}}
	budget := NewBudget(10, fixedClock(&at))
	svc := NewService(NewCache(15*time.Minute, fixedClock(&at)), budget, fetcher)

	first := svc.Headlines(context.Background(), "markets")
	second := svc.Headlines(context.Background(), "markets")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second read inside the freshness window must not hit upstream")
	assert.Equal(t, 1, budget.Spent(), "cache hit must not spend budget")
}

func TestHeadlinesRefetchesAfterExpiry(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{articles: []models.NewsArticle{{Title: "Earnings beat estimates"}}}
	svc := NewService(NewCache(15*time.Minute, fixedClock(&at)), NewBudget(10, fixedClock(&at)), fetcher)

	svc.Headlines(context.Background(), "markets")
	at = at.Add(16 * time.Minute)
	svc.Headlines(context.Background(), "markets")

	assert.Equal(t, 2, fetcher.calls)
}

func TestHeadlinesBudgetExhaustedServesStale(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{articles: []models.NewsArticle{{Title: "Bond yields dip"}}}
	svc := NewService(NewCache(15*time.Minute, fixedClock(&at)), NewBudget(1, fixedClock(&at)), fetcher)

	fresh := svc.Headlines(context.Background(), "bonds")
	require.Equal(t, 1, fetcher.calls)

	// Expire the cache without rolling the budget hour.
	at = at.Add(20 * time.Minute)
	stale := svc.Headlines(context.Background(), "bonds")

	assert.Equal(t, 1, fetcher.calls, "exhausted budget must not call upstream")
	assert.Equal(t, fresh, stale)
}

func TestHeadlinesBudgetExhaustedNoCacheServesPlaceholders(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{}
	svc := NewService(NewCache(15*time.Minute, fixedClock(&at)), NewBudget(0, fixedClock(&at)), fetcher)

	articles := svc.Headlines(context.Background(), "crypto")

	assert.Equal(t, 0, fetcher.calls)
	require.NotEmpty(t, articles)
	assert.Equal(t, "FinSight", articles[0].Source)
}

func TestHeadlinesUpstreamFailureFallsBack(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{articles: []models.NewsArticle{{Title: "Fed minutes released"}}}
	svc := NewService(NewCache(15*time.Minute, fixedClock(&at)), NewBudget(10, fixedClock(&at)), fetcher)

	cached := svc.Headlines(context.Background(), "markets")

	at = at.Add(20 * time.Minute)
	fetcher.err = errors.New("upstream down")
	got := svc.Headlines(context.Background(), "markets")
	assert.Equal(t, cached, got, "failed refresh should fall back to stale payload")

	// No stale entry for a never-fetched topic: placeholders.
	got = svc.Headlines(context.Background(), "commodities")
	require.NotEmpty(t, got)
	assert.Equal(t, "FinSight", got[0].Source)
}

func TestHeadlinesDefaultsTopic(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{articles: []models.NewsArticle{{Title: "Indexes rally"}}}
	cache := NewCache(15*time.Minute, fixedClock(&at))
	svc := NewService(cache, NewBudget(10, fixedClock(&at)), fetcher)

	svc.Headlines(context.Background(), "")
	_, ok := cache.Get("markets")
	assert.True(t, ok)
}

func TestBudgetResetsOnHourRollover(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 50, 0, 0, time.UTC)
	budget := NewBudget(1, fixedClock(&at))

	assert.True(t, budget.Spend())
	assert.False(t, budget.Spend())

	at = at.Add(15 * time.Minute) // crosses into 10:00
	assert.True(t, budget.Spend())
	assert.Equal(t, 1, budget.Spent())
}

func TestCacheLazyExpiry(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cache := NewCache(15*time.Minute, fixedClock(&at))
	cache.Put("markets", []models.NewsArticle{{Title: "Open strong"}})

	_, ok := cache.Get("markets")
	assert.True(t, ok)

	at = at.Add(15 * time.Minute)
	_, ok = cache.Get("markets")
	assert.False(t, ok, "entry at exactly the TTL boundary is expired")

	stale, ok := cache.GetStale("markets")
	assert.True(t, ok)
	assert.Len(t, stale, 1)
}
