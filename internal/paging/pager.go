package paging

import (
	"context"
	"sync"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
)

// PagerState is a snapshot of a Pager.
type PagerState[T any] struct {
	Items         []T
	CurrentPage   int
	PageSize      int
	TotalPages    int
	TotalElements int64
	Loading       bool
	Err           error
}

// HasNext reports whether a page follows the current one.
func (s PagerState[T]) HasNext() bool {
	return s.CurrentPage+1 < s.TotalPages
}

// HasPrev reports whether a page precedes the current one.
func (s PagerState[T]) HasPrev() bool {
	return s.CurrentPage > 0
}

// Pager shows one page of a listing at a time. Each load replaces the
// items wholesale; nothing accumulates across pages.
type Pager[T any] struct {
	fetch FetchFunc[T]
	opts  options

	mu            sync.Mutex
	items         []T
	currentPage   int
	pageSize      int
	totalPages    int
	totalElements int64
	loading       bool
	err           error
	gen           uint64
	closed        bool
	onChange      func(PagerState[T])
}

// NewPager creates a pager. Nothing is fetched until LoadPage.
func NewPager[T any](fetch FetchFunc[T], opts ...Option) *Pager[T] {
	p := &Pager[T]{
		fetch: fetch,
		opts:  buildOptions(opts),
	}
	p.pageSize = p.opts.pageSize
	if p.opts.onRefetch != nil {
		p.opts.onRefetch(p.Refresh)
	}
	return p
}

// OnChange sets the render callback.
func (p *Pager[T]) OnChange(fn func(PagerState[T])) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// State returns a snapshot of the pager.
func (p *Pager[T]) State() PagerState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Pager[T]) stateLocked() PagerState[T] {
	items := make([]T, len(p.items))
	copy(items, p.items)
	return PagerState[T]{
		Items:         items,
		CurrentPage:   p.currentPage,
		PageSize:      p.pageSize,
		TotalPages:    p.totalPages,
		TotalElements: p.totalElements,
		Loading:       p.loading,
		Err:           p.err,
	}
}

func (p *Pager[T]) notify(s PagerState[T], fn func(PagerState[T])) {
	if fn != nil {
		fn(s)
	}
	t := events.EventListChanged
	if s.Err != nil {
		t = events.EventListError
	}
	publish(&p.opts, t, len(s.Items), s.CurrentPage, s.TotalElements, s.HasNext(), s.Err)
}

// LoadPage fetches page n at the current page size. A later LoadPage
// supersedes an earlier one still in flight.
func (p *Pager[T]) LoadPage(ctx context.Context, n int) error {
	if n < 0 {
		n = 0
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.gen++
	gen := p.gen
	size := p.pageSize
	p.loading = true
	p.err = nil
	snap, fn := p.stateLocked(), p.onChange
	p.mu.Unlock()
	p.notify(snap, fn)

	res, err := fetchPage(ctx, p.fetch, n, size)

	p.mu.Lock()
	if gen != p.gen || p.closed {
		p.mu.Unlock()
		p.opts.logger.Debug().Int("page", n).Uint64("generation", gen).Msg("Discarding stale page")
		return nil
	}
	p.loading = false
	p.currentPage = n
	if err != nil {
		p.err = err
		p.items = nil
		snap, fn = p.stateLocked(), p.onChange
		p.mu.Unlock()
		p.opts.logger.Warn().Err(err).Int("page", n).Msg("Page load failed")
		p.notify(snap, fn)
		return err
	}
	p.items = append([]T(nil), res.Content...)
	p.totalPages = res.Page.TotalPages
	p.totalElements = res.Page.TotalElements
	snap, fn = p.stateLocked(), p.onChange
	p.mu.Unlock()

	p.notify(snap, fn)
	return nil
}

// SetPageSize changes the page size and goes back to the first page.
func (p *Pager[T]) SetPageSize(ctx context.Context, size int) error {
	p.mu.Lock()
	p.pageSize = clampPageSize(size)
	p.currentPage = 0
	p.mu.Unlock()
	return p.LoadPage(ctx, 0)
}

func (p *Pager[T]) current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPage
}

// Refresh reloads the current page.
func (p *Pager[T]) Refresh(ctx context.Context) error {
	return p.LoadPage(ctx, p.current())
}

// Reset returns to the first page.
func (p *Pager[T]) Reset(ctx context.Context) error {
	return p.LoadPage(ctx, 0)
}

// Retry reloads the page whose load failed.
func (p *Pager[T]) Retry(ctx context.Context) error {
	return p.LoadPage(ctx, p.current())
}

// Next loads the following page if there is one.
func (p *Pager[T]) Next(ctx context.Context) error {
	s := p.State()
	if !s.HasNext() {
		return nil
	}
	return p.LoadPage(ctx, s.CurrentPage+1)
}

// Prev loads the preceding page if there is one.
func (p *Pager[T]) Prev(ctx context.Context) error {
	s := p.State()
	if !s.HasPrev() {
		return nil
	}
	return p.LoadPage(ctx, s.CurrentPage-1)
}

// Close detaches the pager; in-flight responses are dropped.
func (p *Pager[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.gen++
	p.onChange = nil
}
