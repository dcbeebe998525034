// Package pending tracks how many items await the signed-in user's review.
package pending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
)

// Category names one of the counted review queues.
type Category string

const (
	CategoryResearchOutputs Category = "research-outputs"
	CategoryApplications    Category = "applications"
	CategoryDatasets        Category = "datasets"
)

// Categories lists every category in refresh order.
var Categories = []Category{CategoryResearchOutputs, CategoryApplications, CategoryDatasets}

// EventType returns the change event published for c.
func (c Category) EventType() events.EventType {
	switch c {
	case CategoryResearchOutputs:
		return events.EventResearchOutputsPendingChanged
	case CategoryApplications:
		return events.EventApplicationsPendingChanged
	case CategoryDatasets:
		return events.EventDatasetsPendingChanged
	}
	return events.EventPendingCountsChanged
}

// Counts is a snapshot of the pending counters.
type Counts struct {
	ResearchOutputs int
	Applications    int
	Datasets        int
	Total           int
}

// Get returns the counter for c.
func (c Counts) Get(cat Category) int {
	switch cat {
	case CategoryResearchOutputs:
		return c.ResearchOutputs
	case CategoryApplications:
		return c.Applications
	case CategoryDatasets:
		return c.Datasets
	}
	return 0
}

func (c *Counts) set(cat Category, n int) {
	switch cat {
	case CategoryResearchOutputs:
		c.ResearchOutputs = n
	case CategoryApplications:
		c.Applications = n
	case CategoryDatasets:
		c.Datasets = n
	}
	c.Total = c.ResearchOutputs + c.Applications + c.Datasets
}

// CountFetcher reads the three pending-count endpoints.
type CountFetcher interface {
	ResearchOutputsPendingCount(ctx context.Context) (int, error)
	ApplicationsPendingCount(ctx context.Context) (int, error)
	DatasetsPendingCount(ctx context.Context) (int, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithInitialDelay sets the delay before the first opportunistic refresh.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.initialDelay = d
		}
	}
}

// WithEventBus publishes changes on bus instead of a private one.
func WithEventBus(bus *events.EventBus) Option {
	return func(c *Controller) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// Controller polls the pending-count endpoints and notifies listeners when a
// counter changes. Readers only ever see copies of the counters.
type Controller struct {
	fetcher      CountFetcher
	sessions     auth.Provider
	logger       *logging.Logger
	bus          *events.EventBus
	interval     time.Duration
	initialDelay time.Duration

	mu     sync.RWMutex
	counts Counts

	// Lifecycle
	lifeMu  sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewController creates a controller. Call Start to begin polling.
func NewController(fetcher CountFetcher, sessions auth.Provider, logger *logging.Logger, opts ...Option) *Controller {
	c := &Controller{
		fetcher:      fetcher,
		sessions:     sessions,
		logger:       logging.OrNop(logger).Named("pending"),
		interval:     constants.PendingPollInterval,
		initialDelay: constants.PendingInitialDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bus == nil {
		c.bus = events.NewEventBus(0)
	}
	c.bus.SetPanicHandler(func(t events.EventType, id events.ListenerID, err error) {
		c.logger.Error().Err(err).Str("event", string(t)).Uint64("listener", uint64(id)).Msg("Pending-count listener failed")
	})
	return c
}

// Start begins the polling loop. One opportunistic refresh runs after the
// initial delay if a session exists.
func (c *Controller) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.running {
		return fmt.Errorf("pending-count controller is already running")
	}
	c.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.logger.Info().Dur("poll_interval", c.interval).Msg("Pending-count polling started")

	c.wg.Add(1)
	go c.pollLoop(loopCtx)
	return nil
}

// Stop ends the polling loop and waits for an in-progress refresh to finish.
func (c *Controller) Stop() {
	c.lifeMu.Lock()
	if !c.running {
		c.lifeMu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.lifeMu.Unlock()

	cancel()
	c.wg.Wait()
	c.logger.Info().Msg("Pending-count polling stopped")
}

// IsRunning returns whether the polling loop is active.
func (c *Controller) IsRunning() bool {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	return c.running
}

func (c *Controller) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	initial := time.NewTimer(c.initialDelay)
	defer initial.Stop()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug().Msg("Poll loop stopped")
			return
		case <-initial.C:
			if c.sessions.IsAuthenticated() {
				c.poll(ctx)
			}
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *Controller) poll(ctx context.Context) {
	if err := c.RefreshAll(ctx); err != nil && ctx.Err() == nil {
		c.logger.Warn().Err(err).Msg("Pending-count refresh incomplete")
	}
}

// RefreshAfterLogin refreshes every counter at once.
func (c *Controller) RefreshAfterLogin(ctx context.Context) error {
	return c.RefreshAll(ctx)
}

// RefreshResearchOutputsPendingCount refreshes the research-output counter.
func (c *Controller) RefreshResearchOutputsPendingCount(ctx context.Context) error {
	return c.refreshOne(ctx, CategoryResearchOutputs)
}

// RefreshApplicationsPendingCount refreshes the application counter.
func (c *Controller) RefreshApplicationsPendingCount(ctx context.Context) error {
	return c.refreshOne(ctx, CategoryApplications)
}

// RefreshDatasetsPendingCount refreshes the dataset counter.
func (c *Controller) RefreshDatasetsPendingCount(ctx context.Context) error {
	return c.refreshOne(ctx, CategoryDatasets)
}

// Refresh refreshes the counter for cat.
func (c *Controller) Refresh(ctx context.Context, cat Category) error {
	return c.refreshOne(ctx, cat)
}

func (c *Controller) fetch(ctx context.Context, cat Category) (int, error) {
	var n int
	var err error
	switch cat {
	case CategoryResearchOutputs:
		n, err = c.fetcher.ResearchOutputsPendingCount(ctx)
	case CategoryApplications:
		n, err = c.fetcher.ApplicationsPendingCount(ctx)
	case CategoryDatasets:
		n, err = c.fetcher.DatasetsPendingCount(ctx)
	default:
		return 0, fmt.Errorf("unknown pending-count category %q", cat)
	}
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// refreshOne leaves the counter untouched when the fetch fails.
func (c *Controller) refreshOne(ctx context.Context, cat Category) error {
	n, err := c.fetch(ctx, cat)
	if err != nil {
		c.logger.Error().Err(err).Str("category", string(cat)).Msg("Failed to refresh pending count")
		return fmt.Errorf("refresh %s pending count: %w", cat, err)
	}

	c.mu.Lock()
	before := c.counts
	c.counts.set(cat, n)
	after := c.counts
	c.mu.Unlock()

	if before.Get(cat) != n {
		c.emitCategory(cat, before, after)
		c.emitAll(before, after)
	}
	return nil
}

// RefreshAll fetches the three counters concurrently. A category whose fetch
// fails or panics falls back to zero; the others are unaffected. Nothing is
// fetched without a session. The returned error joins the individual failures.
func (c *Controller) RefreshAll(ctx context.Context) error {
	if !c.sessions.IsAuthenticated() {
		c.logger.Debug().Msg("Skipping pending-count refresh: not signed in")
		return nil
	}

	results := make([]int, len(Categories))
	errs := make([]error, len(Categories))

	var wg conc.WaitGroup
	for i, cat := range Categories {
		i, cat := i, cat
		wg.Go(func() {
			var pc panics.Catcher
			pc.Try(func() {
				results[i], errs[i] = c.fetch(ctx, cat)
			})
			if r := pc.Recovered(); r != nil {
				errs[i] = r.AsError()
			}
		})
	}
	wg.Wait()

	c.mu.Lock()
	before := c.counts
	for i, cat := range Categories {
		if errs[i] != nil {
			c.logger.Error().Err(errs[i]).Str("category", string(cat)).Msg("Failed to refresh pending count")
			results[i] = 0
		}
		c.counts.set(cat, results[i])
	}
	after := c.counts
	c.mu.Unlock()

	changed := false
	for _, cat := range Categories {
		if before.Get(cat) != after.Get(cat) {
			changed = true
			c.emitCategory(cat, before, after)
		}
	}
	if changed {
		c.emitAll(before, after)
	}

	var joined []error
	for i, err := range errs {
		if err != nil {
			joined = append(joined, fmt.Errorf("%s: %w", Categories[i], err))
		}
	}
	return errors.Join(joined...)
}

func (c *Controller) emitCategory(cat Category, before, after Counts) {
	c.bus.Publish(newEvent(cat.EventType(), cat, before.Get(cat), after.Get(cat), after))
}

func (c *Controller) emitAll(before, after Counts) {
	c.bus.Publish(newEvent(events.EventPendingCountsChanged, "", before.Total, after.Total, after))
}

func newEvent(t events.EventType, cat Category, prev, cur int, counts Counts) *events.PendingCountsEvent {
	return &events.PendingCountsEvent{
		BaseEvent:       events.NewBaseEvent(t),
		Category:        string(cat),
		Previous:        prev,
		Current:         cur,
		ResearchOutputs: counts.ResearchOutputs,
		Applications:    counts.Applications,
		Datasets:        counts.Datasets,
		Total:           counts.Total,
	}
}

// GetCounts returns a copy of the counters.
func (c *Controller) GetCounts() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts
}

// AddEventListener registers fn for one of the pending-count events.
func (c *Controller) AddEventListener(t events.EventType, fn events.Listener) events.ListenerID {
	return c.bus.AddListener(t, fn)
}

// RemoveEventListener unregisters a listener added with AddEventListener.
func (c *Controller) RemoveEventListener(t events.EventType, id events.ListenerID) {
	c.bus.RemoveListener(t, id)
}

// Bus returns the event bus changes are published on.
func (c *Controller) Bus() *events.EventBus {
	return c.bus
}
