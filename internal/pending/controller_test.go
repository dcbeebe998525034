package pending

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

type fakeFetcher struct {
	mu     sync.Mutex
	values map[Category]int
	errs   map[Category]error
	panics map[Category]bool
	calls  atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		values: map[Category]int{},
		errs:   map[Category]error{},
		panics: map[Category]bool{},
	}
}

func (f *fakeFetcher) get(cat Category) (int, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics[cat] {
		panic("endpoint exploded")
	}
	return f.values[cat], f.errs[cat]
}

func (f *fakeFetcher) set(cat Category, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[cat] = n
	f.errs[cat] = err
}

func (f *fakeFetcher) ResearchOutputsPendingCount(context.Context) (int, error) {
	return f.get(CategoryResearchOutputs)
}
func (f *fakeFetcher) ApplicationsPendingCount(context.Context) (int, error) {
	return f.get(CategoryApplications)
}
func (f *fakeFetcher) DatasetsPendingCount(context.Context) (int, error) {
	return f.get(CategoryDatasets)
}

func signedIn() *auth.Store {
	st := auth.NewStore(nil)
	st.Set(&auth.Session{User: &models.User{ID: "u1"}, Roles: auth.NewRoleSet(models.RolePlatformAdmin)})
	return st
}

// recorder counts events per type.
type recorder struct {
	mu     sync.Mutex
	counts map[events.EventType]int
	last   map[events.EventType]*events.PendingCountsEvent
}

func record(c *Controller) *recorder {
	r := &recorder{counts: map[events.EventType]int{}, last: map[events.EventType]*events.PendingCountsEvent{}}
	for _, t := range []events.EventType{
		events.EventPendingCountsChanged,
		events.EventResearchOutputsPendingChanged,
		events.EventApplicationsPendingChanged,
		events.EventDatasetsPendingChanged,
	} {
		c.AddEventListener(t, func(e events.Event) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.counts[e.Type()]++
			r.last[e.Type()] = e.(*events.PendingCountsEvent)
		})
	}
	return r
}

func (r *recorder) n(t events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[t]
}

func checkTotal(t *testing.T, c Counts) {
	t.Helper()
	if c.Total != c.ResearchOutputs+c.Applications+c.Datasets {
		t.Fatalf("Total invariant broken: %+v", c)
	}
}

func TestRefreshAllSumsAndNotifies(t *testing.T) {
	f := newFakeFetcher()
	f.set(CategoryResearchOutputs, 2, nil)
	f.set(CategoryApplications, 5, nil)
	c := NewController(f, signedIn(), nil)
	rec := record(c)

	if err := c.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	got := c.GetCounts()
	checkTotal(t, got)
	if got.Total != 7 || got.Datasets != 0 {
		t.Errorf("counts = %+v", got)
	}
	if rec.n(events.EventPendingCountsChanged) != 1 {
		t.Errorf("all events = %d, want 1", rec.n(events.EventPendingCountsChanged))
	}
	if rec.n(events.EventResearchOutputsPendingChanged) != 1 || rec.n(events.EventApplicationsPendingChanged) != 1 {
		t.Error("missing category events")
	}
	if rec.n(events.EventDatasetsPendingChanged) != 0 {
		t.Error("unchanged datasets counter emitted an event")
	}
	if ev := rec.last[events.EventPendingCountsChanged]; ev.Previous != 0 || ev.Current != 7 {
		t.Errorf("all event = %+v", ev)
	}
}

func TestRefreshSameValueIsSilent(t *testing.T) {
	f := newFakeFetcher()
	f.set(CategoryDatasets, 3, nil)
	c := NewController(f, signedIn(), nil)

	ctx := context.Background()
	if err := c.RefreshDatasetsPendingCount(ctx); err != nil {
		t.Fatal(err)
	}
	rec := record(c)

	if err := c.RefreshDatasetsPendingCount(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.RefreshAll(ctx); err != nil {
		t.Fatal(err)
	}

	if rec.n(events.EventDatasetsPendingChanged) != 0 || rec.n(events.EventPendingCountsChanged) != 0 {
		t.Errorf("events emitted for unchanged values: %v", rec.counts)
	}
}

func TestSingleRefreshFailureLeavesCounter(t *testing.T) {
	f := newFakeFetcher()
	f.set(CategoryApplications, 4, nil)
	c := NewController(f, signedIn(), nil)
	ctx := context.Background()

	if err := c.RefreshApplicationsPendingCount(ctx); err != nil {
		t.Fatal(err)
	}

	f.set(CategoryApplications, 9, errors.New("502"))
	if err := c.RefreshApplicationsPendingCount(ctx); err == nil {
		t.Fatal("expected error")
	}

	got := c.GetCounts()
	checkTotal(t, got)
	if got.Applications != 4 {
		t.Errorf("Applications = %d, want 4 (unchanged)", got.Applications)
	}
}

func TestRefreshAllIsolatesFailures(t *testing.T) {
	f := newFakeFetcher()
	f.set(CategoryResearchOutputs, 1, nil)
	f.set(CategoryApplications, 2, nil)
	f.set(CategoryDatasets, 3, nil)
	c := NewController(f, signedIn(), nil)
	ctx := context.Background()

	if err := c.RefreshAll(ctx); err != nil {
		t.Fatal(err)
	}

	f.set(CategoryApplications, 0, errors.New("timeout"))
	f.mu.Lock()
	f.panics[CategoryDatasets] = true
	f.mu.Unlock()
	f.set(CategoryResearchOutputs, 6, nil)

	err := c.RefreshAll(ctx)
	if err == nil {
		t.Fatal("expected joined error")
	}

	got := c.GetCounts()
	checkTotal(t, got)
	if got.ResearchOutputs != 6 || got.Applications != 0 || got.Datasets != 0 {
		t.Errorf("counts = %+v, want failed categories at 0", got)
	}
}

func TestRefreshAllSkipsWithoutSession(t *testing.T) {
	f := newFakeFetcher()
	c := NewController(f, auth.NewStore(nil), nil)

	if err := c.RefreshAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("fetcher called %d times without a session", f.calls.Load())
	}
}

func TestTotalInvariantOverSequence(t *testing.T) {
	f := newFakeFetcher()
	c := NewController(f, signedIn(), nil)
	ctx := context.Background()

	steps := []struct {
		cat Category
		n   int
		err error
	}{
		{CategoryDatasets, 4, nil},
		{CategoryApplications, 7, nil},
		{CategoryDatasets, 1, errors.New("boom")},
		{CategoryResearchOutputs, -3, nil},
		{CategoryApplications, 2, nil},
	}
	for _, s := range steps {
		f.set(s.cat, s.n, s.err)
		_ = c.Refresh(ctx, s.cat)
		got := c.GetCounts()
		checkTotal(t, got)
		if got.Total < 0 {
			t.Fatalf("negative total: %+v", got)
		}
		_ = c.RefreshAll(ctx)
		checkTotal(t, c.GetCounts())
	}
}

func TestListenerPanicDoesNotBlockOthers(t *testing.T) {
	f := newFakeFetcher()
	f.set(CategoryDatasets, 1, nil)
	c := NewController(f, signedIn(), nil)

	c.AddEventListener(events.EventPendingCountsChanged, func(events.Event) { panic("bad listener") })
	called := false
	c.AddEventListener(events.EventPendingCountsChanged, func(events.Event) { called = true })

	if err := c.RefreshDatasetsPendingCount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("second listener not called")
	}
}

func TestRemoveEventListener(t *testing.T) {
	f := newFakeFetcher()
	c := NewController(f, signedIn(), nil)

	calls := 0
	id := c.AddEventListener(events.EventPendingCountsChanged, func(events.Event) { calls++ })
	c.RemoveEventListener(events.EventPendingCountsChanged, id)

	f.set(CategoryDatasets, 5, nil)
	_ = c.RefreshAll(context.Background())
	if calls != 0 {
		t.Errorf("removed listener called %d times", calls)
	}
}

func TestGetCountsIsCopy(t *testing.T) {
	f := newFakeFetcher()
	f.set(CategoryDatasets, 2, nil)
	c := NewController(f, signedIn(), nil)
	_ = c.RefreshAll(context.Background())

	snap := c.GetCounts()
	snap.Datasets = 100
	snap.Total = 100
	if c.GetCounts().Datasets != 2 {
		t.Error("snapshot mutation leaked into controller")
	}
}

func TestStartPollsAndStops(t *testing.T) {
	f := newFakeFetcher()
	f.set(CategoryApplications, 1, nil)
	c := NewController(f, signedIn(), nil,
		WithInitialDelay(0),
		WithInterval(10*time.Millisecond),
	)

	changed := make(chan struct{}, 1)
	c.AddEventListener(events.EventPendingCountsChanged, func(events.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("no refresh after start")
	}

	c.Stop()
	if c.IsRunning() {
		t.Error("IsRunning() true after Stop")
	}

	calls := f.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if f.calls.Load() != calls {
		t.Error("polling continued after Stop")
	}
	c.Stop()
}
