package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/smartb3/smartb3/internal/infra"
	"github.com/smartb3/smartb3/pkg/models"
	"github.com/smartb3/smartb3/pkg/utils"
)

// FeedSource is a financial news RSS/Atom feed.
type FeedSource struct {
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// DefaultFeeds lists the Brazilian market news feeds used when none are
// configured.
var DefaultFeeds = []FeedSource{
	{Name: "InfoMoney", URL: "https://www.infomoney.com.br/feed/"},
	{Name: "Money Times", URL: "https://www.moneytimes.com.br/feed/"},
}

// NewsOptions configures a News source.
type NewsOptions struct {
	Feeds      []FeedSource
	CacheTTL   time.Duration // 0 disables caching
	RatePerSec int           // feed requests per second, defaults to 2
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// News fetches headlines from RSS feeds and filters them per company.
type News struct {
	feeds   []FeedSource
	cache   *infra.Cache[[]models.NewsArticle]
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
	log     *slog.Logger
}

// NewNews creates a news source.
func NewNews(opts NewsOptions) *News {
	feeds := opts.Feeds
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	rate := opts.RatePerSec
	if rate <= 0 {
		rate = 2
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.Discard()
	}

	parser := gofeed.NewParser()
	parser.UserAgent = DefaultUserAgent
	if opts.HTTPClient != nil {
		parser.Client = opts.HTTPClient
	}

	return &News{
		feeds:   feeds,
		cache:   infra.NewCache[[]models.NewsArticle](opts.CacheTTL),
		limiter: infra.NewRateLimiter(rate, time.Second),
		parser:  parser,
		log:     logger.With("component", "news"),
	}
}

// Feeds returns the configured feed sources.
func (n *News) Feeds() []FeedSource { return n.feeds }

// GetMarketNews returns recent headlines from every configured feed, newest
// first. Failing feeds are skipped; an error is returned only when all of
// them fail.
func (n *News) GetMarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	const cacheKey = "news:market"

	all, ok := n.cache.Get(cacheKey)
	if !ok {
		var errs []error
		for _, src := range n.feeds {
			articles, err := n.fetchFeed(ctx, src)
			if err != nil {
				n.log.Warn("feed failed", "feed", src.Name, "error", err)
				errs = append(errs, err)
				continue
			}
			all = append(all, articles...)
		}
		if len(errs) == len(n.feeds) && len(errs) > 0 {
			return nil, errors.Join(errs...)
		}

		slices.SortStableFunc(all, func(a, b models.NewsArticle) int {
			return b.PublishedAt.Compare(a.PublishedAt)
		})
		n.cache.Set(cacheKey, all)
	}

	return truncate(all, limit), nil
}

// GetCompanyNews returns headlines mentioning the company's ticker or name.
func (n *News) GetCompanyNews(ctx context.Context, company models.Company, limit int) ([]models.NewsArticle, error) {
	all, err := n.GetMarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	keywords := companyKeywords(company)
	var filtered []models.NewsArticle
	for _, a := range all {
		if matchesAny(a.Title+" "+a.Summary, keywords) {
			filtered = append(filtered, a)
		}
	}
	return truncate(filtered, limit), nil
}

// fetchFeed parses a feed and converts its items into articles.
func (n *News) fetchFeed(ctx context.Context, src FeedSource) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		var he gofeed.HTTPError
		if errors.As(err, &he) {
			return nil, &FetchError{URL: src.URL, StatusCode: he.StatusCode, Status: he.Status}
		}
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			a.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// companyKeywords returns lowercase search keywords for a company: its
// ticker and its display name.
func companyKeywords(c models.Company) []string {
	var keywords []string
	if t := strings.ToLower(utils.NormalizeTicker(c.Ticker)); t != "" {
		keywords = append(keywords, t)
	}
	if name := strings.ToLower(strings.TrimSpace(c.Name)); name != "" {
		keywords = append(keywords, name)
	}
	return keywords
}

// matchesAny checks if text contains any of the keywords (case-insensitive).
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return slices.Clone(items[:limit])
	}
	return slices.Clone(items)
}
