package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smartb3/smartb3/internal/infra"
	"github.com/smartb3/smartb3/pkg/models"
)

// DefaultBaseURL is where the prediction backend listens by default.
const DefaultBaseURL = "http://localhost:9000"

const (
	keyCompanies = "catalog:companies"
	keySectors   = "catalog:sectors"
)

// Options configures a backend Client.
type Options struct {
	BaseURL    string        // defaults to DefaultBaseURL
	Timeout    time.Duration // per-request timeout, defaults to 15s
	CatalogTTL time.Duration // cache lifetime for /companies and /sectors; 0 disables
	APIToken   string        // sent as a bearer token when set
	Logger     *slog.Logger
	HTTPClient *http.Client // overrides Timeout when set
}

// Client reads companies, sectors, prediction series, model comparisons
// and statistics from the prediction backend.
type Client struct {
	baseURL   string
	client    *http.Client
	headers   map[string]string
	companies *infra.Cache[[]models.Company]
	sectors   *infra.Cache[[]string]
	log       *slog.Logger
}

// NewClient creates a backend client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.Discard()
	}
	var headers map[string]string
	if opts.APIToken != "" {
		headers = map[string]string{"Authorization": "Bearer " + opts.APIToken}
	}
	return &Client{
		baseURL:   base,
		client:    hc,
		headers:   headers,
		companies: infra.NewCache[[]models.Company](opts.CatalogTTL),
		sectors:   infra.NewCache[[]string](opts.CatalogTTL),
		log:       logger.With("component", "backend"),
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Companies returns the full company list (GET /companies).
func (c *Client) Companies(ctx context.Context) ([]models.Company, error) {
	if cached, ok := c.companies.Get(keyCompanies); ok {
		return cached, nil
	}

	var out []models.Company
	if err := c.getJSON(ctx, "/companies", &out); err != nil {
		return nil, err
	}
	if err := models.ValidateCompanies(out); err != nil {
		return nil, fmt.Errorf("GET /companies: %w", err)
	}

	c.companies.Set(keyCompanies, out)
	return out, nil
}

// Sectors returns the list of sector names (GET /sectors).
func (c *Client) Sectors(ctx context.Context) ([]string, error) {
	if cached, ok := c.sectors.Get(keySectors); ok {
		return cached, nil
	}

	var out []string
	if err := c.getJSON(ctx, "/sectors", &out); err != nil {
		return nil, err
	}

	c.sectors.Set(keySectors, out)
	return out, nil
}

// InvalidateCatalog drops the cached company and sector lists.
func (c *Client) InvalidateCatalog() {
	c.companies.Flush()
	c.sectors.Flush()
}

// Prediction returns the prediction series for a ticker
// (GET /prediction/{ticker}).
func (c *Client) Prediction(ctx context.Context, ticker string) (*models.PredictionSeries, error) {
	var out models.PredictionSeries
	err := c.getJSON(ctx, "/prediction/"+url.PathEscape(ticker), &out)
	if err != nil {
		return nil, missing(err, "company", ticker)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("GET /prediction/%s: %w", ticker, err)
	}
	out.Ticker = ticker
	return &out, nil
}

// Comparison returns the ranked model comparison for a ticker
// (GET /comparison/{ticker}).
func (c *Client) Comparison(ctx context.Context, ticker string) (*models.ComparisonResult, error) {
	var out models.ComparisonResult
	err := c.getJSON(ctx, "/comparison/"+url.PathEscape(ticker), &out)
	if err != nil {
		return nil, missing(err, "company", ticker)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("GET /comparison/%s: %w", ticker, err)
	}
	return &out, nil
}

// Statistics returns the sector and general metric blocks
// (GET /statistics/{sector_id}).
func (c *Client) Statistics(ctx context.Context, sectorID int) (*models.Statistics, error) {
	id := strconv.Itoa(sectorID)
	var out models.Statistics
	err := c.getJSON(ctx, "/statistics/"+id, &out)
	if err != nil {
		return nil, missing(err, "sector", id)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("GET /statistics/%s: %w", id, err)
	}
	return &out, nil
}

// getJSON fetches path and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	start := time.Now()
	body, err := doGet(ctx, c.client, c.baseURL+path, c.headers)
	if err != nil {
		c.log.Warn("backend request failed", "path", path, "error", err)
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		c.log.Warn("backend payload rejected", "path", path, "error", err)
		return fmt.Errorf("GET %s: %w: %v", path, ErrInvalidPayload, err)
	}
	c.log.Debug("backend request", "path", path, "took", time.Since(start))
	return nil
}

// missing converts an HTTP 404 into a MissingDataError.
func missing(err error, kind, key string) error {
	var fe *FetchError
	if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
		return &MissingDataError{Kind: kind, Key: key, Err: err}
	}
	return err
}
