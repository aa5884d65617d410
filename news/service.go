package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"finsight/api/logger"
	"finsight/api/models"
)

// Fetcher is the upstream news lookup. Split out so tests can count calls.
type Fetcher interface {
	Fetch(ctx context.Context, topic string) ([]models.NewsArticle, error)
}

// Service applies the degrade-gracefully policy: fresh cache, then a
// budgeted upstream call, then stale cache, then static placeholders. It
// never fails a request.
type Service struct {
	cache   *Cache
	budget  *Budget
	fetcher Fetcher
}

func NewService(cache *Cache, budget *Budget, fetcher Fetcher) *Service {
	return &Service{cache: cache, budget: budget, fetcher: fetcher}
}

// Headlines returns articles for a topic per the fallback ladder.
func (s *Service) Headlines(ctx context.Context, topic string) []models.NewsArticle {
	if topic == "" {
		topic = "markets"
	}

	if articles, ok := s.cache.Get(topic); ok {
		return articles
	}

	if !s.budget.Spend() {
		if articles, ok := s.cache.GetStale(topic); ok {
			return articles
		}
		return placeholderArticles(topic)
	}

	articles, err := s.fetcher.Fetch(ctx, topic)
	if err != nil {
		logger.Get().Warn("news provider fetch failed",
			zap.String("topic", topic),
			zap.Error(err))
		if stale, ok := s.cache.GetStale(topic); ok {
			return stale
		}
		return placeholderArticles(topic)
	}

	s.cache.Put(topic, articles)
	return articles
}

// HTTPFetcher calls the third-party news API.
type HTTPFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPFetcher(baseURL, apiKey string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, topic string) ([]models.NewsArticle, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("news API key not configured")
	}

	endpoint := fmt.Sprintf("%s?q=%s&sortBy=publishedAt&pageSize=20", f.baseURL, url.QueryEscape(topic))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building news request: %w", err)
	}
	req.Header.Set("X-Api-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling news provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		Articles []struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			URL         string    `json:"url"`
			PublishedAt time.Time `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding news response: %w", err)
	}

	articles := make([]models.NewsArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, models.NewsArticle{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			Summary:     a.Description,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}

// placeholderArticles is the last rung of the ladder: static content so the
// endpoint never hard-fails.
func placeholderArticles(topic string) []models.NewsArticle {
	return []models.NewsArticle{
		{
			Title:   "Market roundup temporarily unavailable",
			Source:  "FinSight",
			Summary: fmt.Sprintf("Live %s headlines are unavailable right now. Check back shortly.", topic),
		},
		{
			Title:   "Tip: diversification smooths the ride",
			Source:  "FinSight",
			Summary: "Spreading investments across asset classes reduces the impact of any single downturn.",
		},
	}
}
