// Package browse binds a search box to an infinite-scroll list.
package browse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/debounce"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/paging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/validation"
)

// QueryFetchFunc fetches one page of results for query.
type QueryFetchFunc[T any] func(ctx context.Context, query string, page, size int) (*models.Page[T], error)

// Option configures a Search.
type Option func(*options)

type options struct {
	delay      time.Duration
	validator  validation.Validator
	logger     *logging.Logger
	engineOpts []paging.Option
	afterFunc  debounce.AfterFunc
}

// WithDelay sets how long typing must pause before a search runs.
func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithValidator replaces the query validator.
func WithValidator(v validation.Validator) Option {
	return func(o *options) { o.validator = v }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEngineOptions passes options to the underlying list engine.
func WithEngineOptions(opts ...paging.Option) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

// WithAfterFunc replaces the debounce timer source.
func WithAfterFunc(af debounce.AfterFunc) Option {
	return func(o *options) { o.afterFunc = af }
}

// Search feeds debounced queries into an Incremental list. Each settled query
// starts a new list lifecycle, so results for an older query never mix with
// the current ones.
type Search[T paging.Identifiable] struct {
	ctx       context.Context
	engine    *paging.Incremental[T]
	debouncer *debounce.Debouncer[string]
	validator validation.Validator
	logger    *logging.Logger

	mu    sync.RWMutex
	query string
}

// NewSearch creates a search bound to fetch. Fetches triggered by typing run
// under ctx.
func NewSearch[T paging.Identifiable](ctx context.Context, fetch QueryFetchFunc[T], opts ...Option) *Search[T] {
	o := options{
		delay:     constants.SearchDebounceDelay,
		validator: validation.SearchQuery(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Search[T]{
		ctx:       ctx,
		validator: o.validator,
		logger:    logging.OrNop(o.logger).Named("search"),
	}
	s.engine = paging.NewIncremental(func(ctx context.Context, page, size int) (*models.Page[T], error) {
		return fetch(ctx, s.Query(), page, size)
	}, o.engineOpts...)

	var dopts []debounce.Option[string]
	if o.afterFunc != nil {
		dopts = append(dopts, debounce.WithAfterFunc[string](o.afterFunc))
	}
	s.debouncer = debounce.New(o.delay, s.apply, dopts...)
	return s
}

// Type records raw input from the search box. Invalid input is rejected
// without touching the current results.
func (s *Search[T]) Type(raw string) error {
	if err := s.validator.Validate(raw); err != nil {
		return fmt.Errorf("invalid search query: %w", err)
	}
	s.debouncer.Schedule(raw)
	return nil
}

// Submit runs query at once, skipping the debounce delay.
func (s *Search[T]) Submit(ctx context.Context, query string) error {
	if err := s.validator.Validate(query); err != nil {
		return fmt.Errorf("invalid search query: %w", err)
	}
	s.debouncer.Cancel()
	s.setQuery(query)
	return s.engine.Refresh(ctx)
}

func (s *Search[T]) apply(raw string) {
	s.setQuery(raw)
	if err := s.engine.Refresh(s.ctx); err != nil {
		s.logger.Warn().Err(err).Str("query", s.Query()).Msg("Search failed")
	}
}

func (s *Search[T]) setQuery(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = validation.NormalizeQuery(raw)
}

// Query returns the query the current results belong to.
func (s *Search[T]) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Engine returns the list driven by this search.
func (s *Search[T]) Engine() *paging.Incremental[T] {
	return s.engine
}

// Close stops pending searches and detaches the list.
func (s *Search[T]) Close() {
	s.debouncer.Stop()
	s.engine.Close()
}
