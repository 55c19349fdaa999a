package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"cashbook/internal/cache"
	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/log"
	"cashbook/internal/prefs"
	"cashbook/internal/report"
)

// Options tunes a Controller.
type Options struct {
	Locale          language.Tag
	ReportCacheSize int
	ReportCacheTTL  time.Duration
}

func DefaultOptions() Options {
	return Options{
		Locale:          language.English,
		ReportCacheSize: 32,
		ReportCacheTTL:  10 * time.Minute,
	}
}

// Controller runs every dashboard operation against the store and keeps
// State in sync with it. Writes never patch the cache; each successful
// write is followed by a full re-fetch.
type Controller struct {
	store     ledger.Store
	prefs     prefs.Store
	state     *State
	builder   *report.Builder
	previewer *report.Previewer
	docs      *cache.LRUCache[[]byte]
	locale    language.Tag
	logger    *log.Logger
	now       func() time.Time
}

func NewController(store ledger.Store, prefStore prefs.Store, opts Options, logger *log.Logger) *Controller {
	if prefStore == nil {
		prefStore = prefs.NewMemory()
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = DefaultOptions().ReportCacheSize
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = DefaultOptions().ReportCacheTTL
	}
	return &Controller{
		store:     store,
		prefs:     prefStore,
		state:     NewState(),
		builder:   report.NewBuilder("INR"),
		previewer: report.NewPreviewer(),
		docs:      cache.NewLRUCache[[]byte](opts.ReportCacheSize, opts.ReportCacheTTL),
		locale:    opts.Locale,
		logger:    logger.WithComponent(log.ComponentApp),
		now:       time.Now,
	}
}

func (c *Controller) State() *State {
	return c.state
}

// Documents exposes the report cache so it can be registered for cleanup.
func (c *Controller) Documents() *cache.LRUCache[[]byte] {
	return c.docs
}

// Refresh replaces the cached set with the store's. On failure the last
// good set stays in place and the dashboard goes offline.
func (c *Controller) Refresh(ctx context.Context) error {
	txs, err := c.store.List(ctx)
	if err != nil {
		c.state.SetOnline(false)
		c.logger.WarnContext(ctx, "Fetch failed, keeping cached transactions",
			log.FieldOperation, log.OpRefresh,
			log.FieldError, err)
		return fmt.Errorf("refresh transactions: %w", err)
	}
	c.state.replace(txs, c.now())
	c.state.SetOnline(true)
	c.logger.DebugContext(ctx, "Transactions refreshed", log.FieldRows, len(txs))
	return nil
}

func (c *Controller) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, &ValidationError{Err: err}
	}
	saved, err := c.store.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	c.refetch(ctx, OpCreate)
	return saved, nil
}

func (c *Controller) Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, &ValidationError{Err: err}
	}
	saved, err := c.store.Update(ctx, id, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	c.refetch(ctx, OpUpdate)
	return saved, nil
}

// Delete removes id from the store. Without confirmation the store is not
// called and ErrNotConfirmed is returned.
func (c *Controller) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	c.refetch(ctx, OpDelete)
	return nil
}

func (c *Controller) refetch(ctx context.Context, op Op) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.WarnContext(ctx, "Re-fetch after write failed", log.FieldOperation, string(op), log.FieldError, err)
	}
}

// CheckHealth pings the store and updates the connectivity flag only.
func (c *Controller) CheckHealth(ctx context.Context) bool {
	online := c.store.Ping(ctx) == nil
	if was := c.state.Online(); was != online {
		c.logger.InfoContext(ctx, "Store connectivity changed", "online", online)
	}
	c.state.SetOnline(online)
	return online
}

// View is everything the dashboard renders for one query.
type View struct {
	Query       core.Query
	Rows        []core.Transaction
	Series      core.MonthlySeries
	Summary     core.Summary
	Total       int
	Online      bool
	LastRefresh time.Time
}

// View runs the pipeline over the cached set. The chart follows the
// filtered rows; the summary always covers the full set.
func (c *Controller) View(q core.Query) View {
	all := c.state.Transactions()
	q.Locale = c.locale
	rows := core.Apply(all, q)
	return View{
		Query:       q,
		Rows:        rows,
		Series:      core.Monthly(rows),
		Summary:     core.Summarize(all),
		Total:       len(all),
		Online:      c.state.Online(),
		LastRefresh: c.state.LastRefresh(),
	}
}

// Document is a built report. PreviewErr is set when the document could
// not be decoded for preview; Data is still downloadable.
type Document struct {
	Token      string
	Data       []byte
	Rows       int
	Preview    report.Preview
	PreviewErr error
}

// Report builds the PDF for the category and sort of q. The search text
// does not apply to reports.
func (c *Controller) Report(ctx context.Context, q core.Query) (Document, error) {
	rows := core.Apply(c.state.Transactions(), core.Query{
		Category: q.Category,
		Sort:     q.Sort,
		Locale:   c.locale,
	})
	if len(rows) == 0 {
		return Document{}, ErrEmptyReport
	}

	data, err := c.builder.Build(rows, report.Meta{Category: q.Category, Sort: core.ParseSortMode(string(q.Sort))})
	if err != nil {
		return Document{}, fmt.Errorf("build report: %w", err)
	}
	doc := Document{Token: uuid.NewString(), Data: data, Rows: len(rows)}
	c.docs.Set(doc.Token, data)

	doc.Preview, doc.PreviewErr = c.previewer.Render(data)
	if doc.PreviewErr != nil {
		c.logger.WarnContext(ctx, "Report preview unavailable", log.FieldError, doc.PreviewErr)
	}
	c.logger.InfoContext(ctx, "Report built", log.FieldRows, len(rows), "bytes", len(data))
	return doc, nil
}

// Document returns a previously built report.
func (c *Controller) Document(token string) ([]byte, bool) {
	return c.docs.Get(token)
}

// LoadPreferences reads the saved query into State.
func (c *Controller) LoadPreferences(ctx context.Context) core.Query {
	q := prefs.Load(ctx, c.prefs, c.logger)
	c.state.setQuery(q)
	return q
}

// SavePreferences normalizes next, makes it the current query and persists
// the fields that changed. The query is applied even when persisting fails.
func (c *Controller) SavePreferences(ctx context.Context, next core.Query) (core.Query, error) {
	next = normalizeQuery(next)
	prev := c.state.Query()
	c.state.setQuery(next)
	if err := prefs.Save(ctx, c.prefs, prev, next); err != nil {
		return next, fmt.Errorf("save preferences: %w", err)
	}
	return next, nil
}

func normalizeQuery(q core.Query) core.Query {
	q.Sort = core.ParseSortMode(string(q.Sort))
	if !core.IsCategory(q.Category) {
		q.Category = core.AllCategories
	}
	q.Locale = language.Und
	return q
}
