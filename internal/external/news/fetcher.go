package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/pkg/config"
	"github.com/jwpark/cyclewatch/pkg/httputil"
	"github.com/jwpark/cyclewatch/pkg/logger"
	"github.com/jwpark/cyclewatch/pkg/redis"
)

// Fetcher scrapes per-ticker headlines and reduces them to aggregates.
// Implements the orchestrator's news source. Results are cached in Redis
// when a cache is wired, and requests are rate limited against the site.
// ⭐ SSOT: 헤드라인 스크래핑은 여기서만
type Fetcher struct {
	httpClient *httputil.Client
	limiter    *rate.Limiter
	cache      *redis.Cache
	reactions  ReactionSource

	baseURL      string
	cacheTTL     time.Duration
	lookbackDays int

	logger *logger.Logger
}

// NewFetcher creates a headline fetcher. cache and reactions may be nil.
func NewFetcher(
	cfg config.NewsConfig,
	httpClient *httputil.Client,
	cache *redis.Cache,
	reactions ReactionSource,
	log *logger.Logger,
) *Fetcher {
	return &Fetcher{
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		cache:        cache,
		reactions:    reactions,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		cacheTTL:     cfg.CacheTTL,
		lookbackDays: cfg.LookbackDays,
		logger:       log,
	}
}

// Aggregates fetches and reduces headlines for every ticker. A ticker whose
// fetch fails is skipped with a warning; thin coverage is the quality gate's
// problem, not a fatal error.
func (f *Fetcher) Aggregates(ctx context.Context, tickers []string) (map[string]*contracts.HeadlineAggregate, error) {
	out := make(map[string]*contracts.HeadlineAggregate, len(tickers))
	for _, ticker := range tickers {
		agg, err := f.aggregate(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			f.logger.WithError(err).WithField("ticker", ticker).Warn("Headline fetch failed, skipping")
			continue
		}
		out[ticker] = agg
	}
	return out, nil
}

func (f *Fetcher) aggregate(ctx context.Context, ticker string) (*contracts.HeadlineAggregate, error) {
	if f.cache != nil {
		var cached contracts.HeadlineAggregate
		hit, err := f.cache.Get(ctx, redis.HeadlineKey(ticker), &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	headlines, err := f.FetchHeadlines(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var reactions []Reaction
	if f.reactions != nil {
		positive := make([]Headline, 0, len(headlines))
		for _, h := range headlines {
			if h.Sentiment > 0 {
				positive = append(positive, h)
			}
		}
		reactions = f.reactions.Reactions(ticker, positive)
	}

	agg := Aggregate(ticker, headlines, reactions)

	if f.cache != nil {
		if err := f.cache.Set(ctx, redis.HeadlineKey(ticker), agg, f.cacheTTL); err != nil {
			f.logger.WithError(err).Debug("Headline cache write failed")
		}
	}

	return agg, nil
}

// FetchHeadlines scrapes the quote page news table for one ticker.
func (f *Fetcher) FetchHeadlines(ctx context.Context, ticker string) ([]Headline, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/quote.ashx?t=%s", f.baseURL, ticker)
	resp, err := f.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	headlines := f.parseNewsTable(doc, ticker)

	f.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(headlines),
	}).Debug("Fetched headlines")

	return headlines, nil
}

// parseNewsTable walks the news table rows. Row structure: first cell holds
// the timestamp (date only on the first row of each day), second cell the
// link and source span.
func (f *Fetcher) parseNewsTable(doc *goquery.Document, ticker string) []Headline {
	cutoff := time.Now().AddDate(0, 0, -f.lookbackDays)

	var headlines []Headline
	var currentDate time.Time

	doc.Find("table#news-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		when, hasDate := parseNewsTime(strings.TrimSpace(cells.Eq(0).Text()), currentDate)
		if hasDate {
			currentDate = when.Truncate(24 * time.Hour)
		}
		if when.Before(cutoff) {
			return
		}

		title := strings.TrimSpace(cells.Eq(1).Find("a").First().Text())
		if title == "" {
			return
		}
		source := strings.TrimSpace(cells.Eq(1).Find("span").First().Text())

		headlines = append(headlines, Headline{
			Ticker:      ticker,
			Title:       title,
			Source:      source,
			PublishedAt: when,
			Sentiment:   ScoreSentiment(title),
		})
	})

	return headlines
}

// parseNewsTime parses "Jan-02-06 03:04PM" or the bare "03:04PM" used on
// repeat rows of the same day. The second return reports whether the text
// carried a date.
func parseNewsTime(text string, currentDate time.Time) (time.Time, bool) {
	if t, err := time.Parse("Jan-02-06 03:04PM", text); err == nil {
		return t, true
	}
	if t, err := time.Parse("03:04PM", text); err == nil {
		if currentDate.IsZero() {
			currentDate = time.Now().Truncate(24 * time.Hour)
		}
		return time.Date(
			currentDate.Year(), currentDate.Month(), currentDate.Day(),
			t.Hour(), t.Minute(), 0, 0, time.UTC,
		), false
	}
	return currentDate, false
}
