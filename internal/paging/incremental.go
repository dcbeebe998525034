package paging

import (
	"context"
	"sync"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
)

// State is a snapshot of an Incremental engine.
type State[T any] struct {
	Items          []T
	Page           int // next page to request
	HasMore        bool
	TotalPages     int
	TotalElements  int64
	Loading        bool // initial load in flight
	LoadingMore    bool
	AutoLoadFailed bool // latched until Retry
	Err            error
}

// AllLoaded reports whether every item the server knows about is loaded.
func (s State[T]) AllLoaded() bool {
	return s.TotalElements > 0 && int64(len(s.Items)) >= s.TotalElements
}

// Empty reports whether a finished load returned nothing.
func (s State[T]) Empty() bool {
	return !s.Loading && s.Err == nil && len(s.Items) == 0
}

// Incremental accumulates pages for infinite-scroll lists.
// Items are deduplicated by Identity; the first occurrence wins.
//
// All methods are safe for concurrent use. The lock is never held while
// fetching or while calling the OnChange callback.
type Incremental[T Identifiable] struct {
	fetch FetchFunc[T]
	opts  options

	mu             sync.Mutex
	items          []T
	seen           map[string]struct{}
	page           int
	hasMore        bool
	totalPages     int
	totalElements  int64
	loading        bool
	loadingMore    bool
	autoLoadFailed bool
	err            error
	gen            uint64
	closed         bool
	onChange       func(State[T])
}

// NewIncremental creates an engine. Nothing is fetched until Load.
func NewIncremental[T Identifiable](fetch FetchFunc[T], opts ...Option) *Incremental[T] {
	e := &Incremental[T]{
		fetch: fetch,
		opts:  buildOptions(opts),
		seen:  make(map[string]struct{}),
	}
	if e.opts.onRefetch != nil {
		e.opts.onRefetch(e.Refresh)
	}
	return e
}

// OnChange sets the render callback, called after every state transition.
func (e *Incremental[T]) OnChange(fn func(State[T])) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// State returns a snapshot of the engine.
func (e *Incremental[T]) State() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Incremental[T]) stateLocked() State[T] {
	items := make([]T, len(e.items))
	copy(items, e.items)
	return State[T]{
		Items:          items,
		Page:           e.page,
		HasMore:        e.hasMore,
		TotalPages:     e.totalPages,
		TotalElements:  e.totalElements,
		Loading:        e.loading,
		LoadingMore:    e.loadingMore,
		AutoLoadFailed: e.autoLoadFailed,
		Err:            e.err,
	}
}

// notify must be called without the lock held.
func (e *Incremental[T]) notify(s State[T], fn func(State[T])) {
	if fn != nil {
		fn(s)
	}
	if s.Err != nil {
		publish(&e.opts, events.EventListError, len(s.Items), s.Page, s.TotalElements, s.HasMore, s.Err)
		return
	}
	publish(&e.opts, events.EventListChanged, len(s.Items), s.Page, s.TotalElements, s.HasMore, nil)
}

// appendLocked adds items whose identity has not been seen yet.
func (e *Incremental[T]) appendLocked(items []T) int {
	added := 0
	for _, it := range items {
		id := it.Identity()
		if _, dup := e.seen[id]; dup {
			continue
		}
		e.seen[id] = struct{}{}
		e.items = append(e.items, it)
		added++
	}
	return added
}

// Load starts a new lifecycle: state is cleared and page 0 fetched.
// Responses from earlier lifecycles are discarded.
func (e *Incremental[T]) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.gen++
	gen := e.gen
	e.items = nil
	e.seen = make(map[string]struct{})
	e.page = 0
	e.hasMore = false
	e.totalPages = 0
	e.totalElements = 0
	e.loading = true
	e.loadingMore = false
	e.autoLoadFailed = false
	e.err = nil
	snap, fn := e.stateLocked(), e.onChange
	e.mu.Unlock()
	e.notify(snap, fn)

	res, err := fetchPage(ctx, e.fetch, 0, e.opts.pageSize)

	e.mu.Lock()
	if gen != e.gen || e.closed {
		e.mu.Unlock()
		e.opts.logger.Debug().Uint64("generation", gen).Msg("Discarding stale initial page")
		return nil
	}
	e.loading = false
	if err != nil {
		e.err = err
		snap, fn = e.stateLocked(), e.onChange
		e.mu.Unlock()
		e.opts.logger.Warn().Err(err).Msg("Initial page load failed")
		e.notify(snap, fn)
		return err
	}
	e.appendLocked(res.Content)
	e.totalPages = res.Page.TotalPages
	e.totalElements = res.Page.TotalElements
	e.hasMore = res.HasNext()
	e.page = 1
	snap, fn = e.stateLocked(), e.onChange
	e.mu.Unlock()

	e.notify(snap, fn)
	return nil
}

// Refresh is Load under the name list owners use after a mutation.
func (e *Incremental[T]) Refresh(ctx context.Context) error {
	return e.Load(ctx)
}

// LoadMore fetches the next page. It is a no-op while any load is in flight,
// when there is nothing more to load, or after Close.
func (e *Incremental[T]) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	if e.closed || e.loading || e.loadingMore || !e.hasMore {
		e.mu.Unlock()
		return nil
	}
	e.loadingMore = true
	gen := e.gen
	page := e.page
	snap, fn := e.stateLocked(), e.onChange
	e.mu.Unlock()
	e.notify(snap, fn)

	res, err := fetchPage(ctx, e.fetch, page, e.opts.pageSize)

	e.mu.Lock()
	if gen != e.gen || e.closed {
		e.mu.Unlock()
		e.opts.logger.Debug().Int("page", page).Uint64("generation", gen).Msg("Discarding stale page")
		return nil
	}
	e.loadingMore = false
	if err != nil {
		e.err = err
		if e.hasMore {
			e.autoLoadFailed = true
		}
		snap, fn = e.stateLocked(), e.onChange
		e.mu.Unlock()
		e.opts.logger.Warn().Err(err).Int("page", page).Msg("Loading more failed")
		e.notify(snap, fn)
		return err
	}
	added := e.appendLocked(res.Content)
	e.totalPages = res.Page.TotalPages
	e.totalElements = res.Page.TotalElements
	e.hasMore = res.HasNext()
	e.page++
	e.autoLoadFailed = false
	e.err = nil
	snap, fn = e.stateLocked(), e.onChange
	e.mu.Unlock()

	if dropped := len(res.Content) - added; dropped > 0 {
		e.opts.logger.Debug().Int("page", page).Int("duplicates", dropped).Msg("Dropped items already listed")
	}
	e.notify(snap, fn)
	return nil
}

// SentinelVisible is called when the end of the rendered list scrolls into
// view. It loads the next page only in auto-load mode and never while the
// auto-load failure latch is set.
func (e *Incremental[T]) SentinelVisible(ctx context.Context) error {
	e.mu.Lock()
	ok := e.opts.autoLoad && !e.closed && !e.loading && !e.loadingMore && !e.autoLoadFailed && e.hasMore
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return e.LoadMore(ctx)
}

// Retry clears the failure latch and loads again. If the initial page never
// arrived the whole list is reloaded.
func (e *Incremental[T]) Retry(ctx context.Context) error {
	e.mu.Lock()
	e.autoLoadFailed = false
	initialFailed := e.page == 0 && !e.loading
	e.mu.Unlock()

	if initialFailed {
		return e.Load(ctx)
	}
	return e.LoadMore(ctx)
}

// LoadAll keeps loading pages until the server reports no more or a load fails.
// progress, if set, is called after each page.
func (e *Incremental[T]) LoadAll(ctx context.Context, progress func(loaded int, total int64)) error {
	for {
		s := e.State()
		if progress != nil {
			progress(len(s.Items), s.TotalElements)
		}
		if !s.HasMore {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.LoadMore(ctx); err != nil {
			return err
		}
		if e.isClosed() {
			return ErrClosed
		}
		// Someone else owns the in-flight load or refreshed the list
		if e.State().Page <= s.Page {
			return nil
		}
	}
}

func (e *Incremental[T]) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// AllLoaded reports whether every item is loaded.
func (e *Incremental[T]) AllLoaded() bool {
	return e.State().AllLoaded()
}

// Close detaches the engine. In-flight responses are dropped and the
// OnChange callback is never called again.
func (e *Incremental[T]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.gen++
	e.onChange = nil
}
