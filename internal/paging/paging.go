// Package paging drives fetch-render-paginate loops over server-side paged listings.
//
// Two engines share the same fetch contract: Incremental accumulates pages for
// infinite scroll, Pager shows one page at a time. Both tag every fetch with a
// generation so a response that arrives after Refresh or Close is dropped.
package paging

import (
	"context"
	"errors"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

// ErrClosed is returned by loads on an engine that has been closed.
var ErrClosed = errors.New("list engine closed")

// ErrNoPage is recorded when a fetch function returns neither a page nor an error.
var ErrNoPage = errors.New("fetch returned no page")

// fetchPage calls fetch and turns a nil page into ErrNoPage.
func fetchPage[T any](ctx context.Context, fetch FetchFunc[T], page, size int) (*models.Page[T], error) {
	res, err := fetch(ctx, page, size)
	if err == nil && res == nil {
		err = ErrNoPage
	}
	return res, err
}

// Identifiable is implemented by every listed item. Identity must be stable
// across pages; it is the deduplication key.
type Identifiable interface {
	Identity() string
}

// FetchFunc returns page number page (zero-based) of size items.
type FetchFunc[T any] func(ctx context.Context, page, size int) (*models.Page[T], error)

// Refetcher reloads a list. Owners hand it to code that mutates the listed data.
type Refetcher func(ctx context.Context) error

// Option configures an engine.
type Option func(*options)

type options struct {
	name      string
	pageSize  int
	autoLoad  bool
	bus       *events.EventBus
	logger    *logging.Logger
	onRefetch func(Refetcher)
}

func defaultOptions() options {
	return options{
		name:     "list",
		pageSize: constants.DefaultPageSize,
		autoLoad: true,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNop(o.logger).Named("paging").WithStr("list", o.name)
	return o
}

// WithName labels the list in logs and events.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithPageSize sets the number of items requested per page.
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = clampPageSize(n) }
}

// WithAutoLoad enables or disables loading when the sentinel becomes visible.
func WithAutoLoad(enabled bool) Option {
	return func(o *options) { o.autoLoad = enabled }
}

// WithEventBus publishes list state changes on bus.
func WithEventBus(bus *events.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRefetchHandler passes the engine's refresh function to fn at construction.
func WithRefetchHandler(fn func(Refetcher)) Option {
	return func(o *options) { o.onRefetch = fn }
}

func clampPageSize(n int) int {
	if n <= 0 {
		return constants.DefaultPageSize
	}
	if n > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return n
}

func publish(o *options, t events.EventType, items, page int, total int64, hasMore bool, err error) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(&events.ListEvent{
		BaseEvent:     events.NewBaseEvent(t),
		List:          o.name,
		Items:         items,
		Page:          page,
		TotalElements: total,
		HasMore:       hasMore,
		Error:         err,
	})
}
