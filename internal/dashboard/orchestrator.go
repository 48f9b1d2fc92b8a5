package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/smartb3/smartb3/internal/datasource"
	"github.com/smartb3/smartb3/internal/infra"
	"github.com/smartb3/smartb3/pkg/models"
)

// Source is the backend the orchestrator reads from.
type Source interface {
	Companies(ctx context.Context) ([]models.Company, error)
	Sectors(ctx context.Context) ([]string, error)
	Prediction(ctx context.Context, ticker string) (*models.PredictionSeries, error)
	Comparison(ctx context.Context, ticker string) (*models.ComparisonResult, error)
	Statistics(ctx context.Context, sectorID int) (*models.Statistics, error)
}

// NewsSource supplies company headlines.
type NewsSource interface {
	GetCompanyNews(ctx context.Context, company models.Company, limit int) ([]models.NewsArticle, error)
}

// Field names one independently fetched detail panel.
type Field string

const (
	FieldSeries     Field = "series"
	FieldComparison Field = "comparison"
	FieldStatistics Field = "statistics"
	FieldNews       Field = "news"
)

// Status is the fetch status of a single field.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// Phase summarizes the detail view.
type Phase string

const (
	PhaseNoSelection     Phase = "no_selection"
	PhaseLoading         Phase = "loading"
	PhasePartiallyLoaded Phase = "partially_loaded"
	PhaseLoaded          Phase = "loaded"
)

var (
	// ErrNoSelection is returned by operations that need a selected company.
	ErrNoSelection = errors.New("no company selected")
	// ErrUnknownField is returned by Retry for a field that is not fetched.
	ErrUnknownField = errors.New("unknown field")
	// ErrIdentityMismatch marks a response that names a different company
	// or sector than the one it was requested for.
	ErrIdentityMismatch = errors.New("response belongs to another selection")
)

// ParseField converts a field name into a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(s)); f {
	case FieldSeries, FieldComparison, FieldStatistics, FieldNews:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// FieldState is the status of one field and, when failed, the reason.
type FieldState struct {
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

// Snapshot is a consistent copy of the dashboard state. Payload pointers
// are shared with the orchestrator and must be treated as read-only.
type Snapshot struct {
	Version    uint64
	Selection  Selection
	Companies  []models.Company
	Sectors    []string
	Series     *models.PredictionSeries
	Comparison *models.ComparisonResult
	Statistics *models.Statistics
	News       []models.NewsArticle
	Fields     map[Field]FieldState
	Phase      Phase
}

// Field returns the state of f.
func (s Snapshot) Field(f Field) FieldState {
	if st, ok := s.Fields[f]; ok {
		return st
	}
	return FieldState{Status: StatusIdle}
}

// Options configures an Orchestrator.
type Options struct {
	Source          Source
	News            NewsSource // optional; the news field stays idle without it
	NewsLimit       int
	Timeout         time.Duration // per-field fetch timeout, defaults to 15s
	SuggestionLimit int
	Logger          *slog.Logger
}

// Orchestrator keeps the detail panels consistent with the selection.
//
// Every dispatched fetch carries a request token. A result is committed
// only while its token is still the current token for that field, so a
// response for an earlier selection can never overwrite the panels of a
// later one, whatever order the responses arrive in.
type Orchestrator struct {
	source    Source
	news      NewsSource
	newsLimit int
	timeout   time.Duration
	limit     int
	log       *slog.Logger

	base       context.Context
	baseCancel context.CancelFunc

	mu        sync.Mutex
	version   uint64
	sel       Selection
	companies []models.Company
	sectors   []string

	series     *models.PredictionSeries
	comparison *models.ComparisonResult
	statistics *models.Statistics
	articles   []models.NewsArticle
	fields     map[Field]FieldState
	tokens     map[Field]string

	selCtx    context.Context
	selCancel context.CancelFunc
	inflight  sync.WaitGroup

	subs map[chan Snapshot]struct{}
}

// New creates an orchestrator. Call Close to cancel outstanding fetches.
func New(opts Options) *Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.Discard()
	}
	base, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		source:     opts.Source,
		news:       opts.News,
		newsLimit:  opts.NewsLimit,
		timeout:    timeout,
		limit:      opts.SuggestionLimit,
		log:        logger.With("component", "orchestrator"),
		base:       base,
		baseCancel: cancel,
		tokens:     make(map[Field]string),
		subs:       make(map[chan Snapshot]struct{}),
	}
	o.fields = o.idleFields()
	return o
}

// Fields returns the fields fetched for a selected company.
func (o *Orchestrator) Fields() []Field {
	fields := []Field{FieldSeries, FieldComparison, FieldStatistics}
	if o.news != nil {
		fields = append(fields, FieldNews)
	}
	return fields
}

// Close cancels every in-flight fetch and closes subscriber channels.
func (o *Orchestrator) Close() {
	o.baseCancel()
	o.inflight.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	for ch := range o.subs {
		close(ch)
	}
	clear(o.subs)
}

// Wait blocks until every dispatched fetch has returned.
func (o *Orchestrator) Wait() { o.inflight.Wait() }

// --- Catalog ---

// LoadCatalog fetches the company and sector lists concurrently. A partial
// failure keeps whatever list was loaded and reports the other error.
func (o *Orchestrator) LoadCatalog(ctx context.Context) error {
	var (
		companies []models.Company
		sectors   []string
		mu        sync.Mutex
		errs      []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := o.source.Companies(gctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("companies: %w", err))
			return nil
		}
		companies = c
		return nil
	})
	g.Go(func() error {
		s, err := o.source.Sectors(gctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("sectors: %w", err))
			return nil
		}
		sectors = s
		return nil
	})
	_ = g.Wait()

	o.mu.Lock()
	if companies != nil {
		o.companies = companies
		o.sel.Suggestions = Suggest(o.sel.SearchText, companies, o.limit)
	}
	if sectors != nil {
		o.sectors = sectors
	}
	o.publishLocked()
	o.mu.Unlock()

	if len(errs) > 0 {
		err := errors.Join(errs...)
		o.log.Warn("catalog load failed", "error", err)
		return err
	}
	o.log.Debug("catalog loaded", "companies", len(companies), "sectors", len(sectors))
	return nil
}

// Companies returns the loaded company list.
func (o *Orchestrator) Companies() []models.Company {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.companies
}

// Sectors returns the loaded sector list.
func (o *Orchestrator) Sectors() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sectors
}

// --- Selection operations ---

// SetSearchText updates the search text and returns the new suggestions.
func (o *Orchestrator) SetSearchText(text string) []models.Company {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.SetSearchText(text, o.companies, o.limit)
	o.publishLocked()
	return o.sel.Suggestions
}

// SelectEntity selects a company and fetches its detail fields. Selecting
// the company that is already selected fetches everything again.
func (o *Orchestrator) SelectEntity(c models.Company) {
	o.selectCompany(c, o.sel.SelectEntity)
}

// SelectFromSidebar selects a company from the sector list, keeping the
// sector filter.
func (o *Orchestrator) SelectFromSidebar(c models.Company) {
	o.selectCompany(c, o.sel.SelectFromSidebar)
}

func (o *Orchestrator) selectCompany(c models.Company, apply func(models.Company)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	apply(c)
	o.resetLocked()
	for _, f := range o.Fields() {
		o.dispatchLocked(f)
	}
	o.log.Info("company selected", "ticker", c.Ticker, "sector_id", c.SectorID)
	o.publishLocked()
}

// SelectTicker selects the catalog company with the given ticker. When
// fromSidebar is set the sector filter is kept.
func (o *Orchestrator) SelectTicker(ticker string, fromSidebar bool) (models.Company, error) {
	o.mu.Lock()
	c, ok := models.FindCompany(o.companies, ticker)
	o.mu.Unlock()
	if !ok {
		return models.Company{}, &datasource.MissingDataError{Kind: "company", Key: ticker}
	}
	if fromSidebar {
		o.SelectFromSidebar(c)
	} else {
		o.SelectEntity(c)
	}
	return c, nil
}

// SelectSector sets the sector filter and clears the selected company and
// every detail field.
func (o *Orchestrator) SelectSector(sector string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.SelectSector(sector)
	o.resetLocked()
	o.publishLocked()
}

// ClearSelection returns to the no-selection state.
func (o *Orchestrator) ClearSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Clear()
	o.resetLocked()
	o.publishLocked()
}

// Retry fetches a single field again for the current company.
func (o *Orchestrator) Retry(f Field) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.sel.HasCompany() {
		return ErrNoSelection
	}
	if f == FieldNews && o.news == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	o.clearFieldLocked(f)
	o.dispatchLocked(f)
	o.log.Info("retrying field", "field", f, "ticker", o.sel.Ticker())
	o.publishLocked()
	return nil
}

// --- Observation ---

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every change,
// and a function that cancels the subscription. A slow subscriber only
// ever misses intermediate states: the latest snapshot replaces any
// undelivered one.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	o.mu.Lock()
	o.subs[ch] = struct{}{}
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if _, ok := o.subs[ch]; ok {
				delete(o.subs, ch)
				close(ch)
			}
		})
	}
}

// --- Internals (o.mu held) ---

func (o *Orchestrator) idleFields() map[Field]FieldState {
	fields := make(map[Field]FieldState)
	for _, f := range o.Fields() {
		fields[f] = FieldState{Status: StatusIdle}
	}
	return fields
}

// resetLocked cancels the previous selection's fetches and clears every
// field so nothing of it stays visible.
func (o *Orchestrator) resetLocked() {
	if o.selCancel != nil {
		o.selCancel()
	}
	o.selCtx, o.selCancel = context.WithCancel(o.base)
	clear(o.tokens)

	o.series = nil
	o.comparison = nil
	o.statistics = nil
	o.articles = nil
	o.fields = o.idleFields()
}

func (o *Orchestrator) clearFieldLocked(f Field) {
	switch f {
	case FieldSeries:
		o.series = nil
	case FieldComparison:
		o.comparison = nil
	case FieldStatistics:
		o.statistics = nil
	case FieldNews:
		o.articles = nil
	}
}

// dispatchLocked starts the fetch of f for the selected company under a
// fresh token.
func (o *Orchestrator) dispatchLocked(f Field) {
	company := *o.sel.Company
	token := uuid.NewString()
	o.tokens[f] = token
	o.fields[f] = FieldState{Status: StatusLoading}

	ctx := o.selCtx
	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		fctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		result, err := o.fetch(fctx, f, company)
		o.commit(f, token, company, result, err)
	}()
}

func (o *Orchestrator) fetch(ctx context.Context, f Field, c models.Company) (any, error) {
	switch f {
	case FieldSeries:
		return o.source.Prediction(ctx, c.Ticker)
	case FieldComparison:
		return o.source.Comparison(ctx, c.Ticker)
	case FieldStatistics:
		// Backend sector ids start at 1; a company without one has no
		// sector statistics to ask for.
		if c.SectorID <= 0 {
			return nil, &datasource.MissingDataError{Kind: "sector statistics", Key: c.Ticker}
		}
		return o.source.Statistics(ctx, c.SectorID)
	case FieldNews:
		return o.news.GetCompanyNews(ctx, c, o.newsLimit)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// commit stores a fetch result if its token is still current.
func (o *Orchestrator) commit(f Field, token string, c models.Company, result any, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.tokens[f] != token {
		o.log.Debug("stale result discarded", "field", f, "ticker", c.Ticker)
		return
	}
	if err == nil {
		err = checkIdentity(result, c)
	}
	if err != nil {
		o.fields[f] = FieldState{Status: StatusFailed, Err: err}
		o.log.Warn("fetch failed", "field", f, "ticker", c.Ticker, "error", err)
		o.publishLocked()
		return
	}

	switch v := result.(type) {
	case *models.PredictionSeries:
		o.series = v
	case *models.ComparisonResult:
		o.comparison = v
	case *models.Statistics:
		o.statistics = v
	case []models.NewsArticle:
		o.articles = v
	}
	o.fields[f] = FieldState{Status: StatusLoaded}
	o.log.Debug("field loaded", "field", f, "ticker", c.Ticker)
	o.publishLocked()
}

// checkIdentity compares the identity embedded in a payload with the
// company it was requested for.
func checkIdentity(result any, c models.Company) error {
	switch v := result.(type) {
	case *models.ComparisonResult:
		if !sameName(v.CompanyName, c.Name) {
			return fmt.Errorf("%w: comparison for %q, selected %q", ErrIdentityMismatch, v.CompanyName, c.Name)
		}
	case *models.Statistics:
		if !sameName(v.Sector.SectorName, c.Sector) {
			return fmt.Errorf("%w: statistics for sector %q, selected %q", ErrIdentityMismatch, v.Sector.SectorName, c.Sector)
		}
	}
	return nil
}

// sameName reports whether two names match; an empty side matches
// anything.
func sameName(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a == "" || b == "" || strings.EqualFold(a, b)
}

func (o *Orchestrator) phaseLocked() Phase {
	if !o.sel.HasCompany() {
		return PhaseNoSelection
	}
	var settled, loaded int
	fields := o.Fields()
	for _, f := range fields {
		switch o.fields[f].Status {
		case StatusLoaded:
			loaded++
			settled++
		case StatusFailed:
			settled++
		}
	}
	switch {
	case loaded == len(fields):
		return PhaseLoaded
	case settled > 0:
		return PhasePartiallyLoaded
	default:
		return PhaseLoading
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		Version:    o.version,
		Selection:  o.sel.clone(),
		Companies:  o.companies,
		Sectors:    o.sectors,
		Series:     o.series,
		Comparison: o.comparison,
		Statistics: o.statistics,
		News:       o.articles,
		Fields:     maps.Clone(o.fields),
		Phase:      o.phaseLocked(),
	}
}

// publishLocked bumps the version and hands the new snapshot to every
// subscriber without blocking.
func (o *Orchestrator) publishLocked() {
	o.version++
	if len(o.subs) == 0 {
		return
	}
	snap := o.snapshotLocked()
	for ch := range o.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
