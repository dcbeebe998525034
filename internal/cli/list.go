package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/browse"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/paging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/progress"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/validation"
)

// listFlags are shared by every list command.
type listFlags struct {
	search      string
	page        int
	size        int
	all         bool
	interactive bool
}

func (f *listFlags) register(cmd *cobra.Command, searchable bool) {
	if searchable {
		cmd.Flags().StringVarP(&f.search, "search", "s", "", "Search term")
	}
	cmd.Flags().IntVarP(&f.page, "page", "p", 0, "Show only this page (1-based)")
	cmd.Flags().IntVarP(&f.size, "size", "n", 0, "Page size (default from config)")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Load every page")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "Prompt to load more after each page")
}

func (f *listFlags) validate() error {
	if f.page < 0 {
		return fmt.Errorf("--page must be 1 or greater")
	}
	if f.all && f.page > 0 {
		return fmt.Errorf("--all and --page cannot be combined")
	}
	return validation.SearchQuery().Validate(f.search)
}

// listView describes how to fetch and render one kind of list.
type listView[T paging.Identifiable] struct {
	name  string
	fetch browse.QueryFetchFunc[T]
	print func(io.Writer, []T)
}

// runList loads a list the way the flags ask: one numbered page through a
// Pager, or an accumulating Incremental list for everything else.
func runList[T paging.Identifiable](cmd *cobra.Command, a *app, v listView[T], f listFlags) error {
	if err := f.validate(); err != nil {
		return err
	}

	ctx := GetContext()
	out := cmd.OutOrStdout()

	size := f.size
	if size <= 0 {
		size = a.cfg.Lists.PageSize
	}
	engineOpts := []paging.Option{
		paging.WithName(v.name),
		paging.WithPageSize(size),
		paging.WithAutoLoad(a.cfg.Lists.AutoLoad),
		paging.WithEventBus(a.bus),
		paging.WithLogger(a.logger),
		paging.WithRefetchHandler(a.reviews.RefetchHandler(v.name)),
	}

	if f.page > 0 {
		pager := paging.NewPager[T](func(ctx context.Context, page, size int) (*models.Page[T], error) {
			return v.fetch(ctx, f.search, page, size)
		}, engineOpts...)
		defer pager.Close()

		if err := pager.LoadPage(ctx, f.page-1); err != nil {
			return fmt.Errorf("failed to load %s page %d: %w", v.name, f.page, err)
		}
		st := pager.State()
		if jsonOutput {
			return printJSON(out, st.Items)
		}
		if len(st.Items) == 0 {
			fmt.Fprintf(out, "No %s on page %d\n", v.name, f.page)
			return nil
		}
		v.print(out, st.Items)
		fmt.Fprintf(out, "\nPage %d of %d (%d total)\n", st.CurrentPage+1, st.TotalPages, st.TotalElements)
		return nil
	}

	search := browse.NewSearch(ctx, v.fetch,
		browse.WithDelay(a.cfg.DebounceDelay()),
		browse.WithLogger(a.logger),
		browse.WithEngineOptions(engineOpts...),
	)
	defer search.Close()

	if err := search.Submit(ctx, f.search); err != nil {
		return fmt.Errorf("failed to load %s: %w", v.name, err)
	}
	engine := search.Engine()

	if f.all {
		err := engine.LoadAll(ctx, progress.Tracker(progress.ForFile(os.Stderr), "Loading "+v.name))
		if err != nil {
			a.logger.Warn().Err(err).Str("list", v.name).Msg("Stopped before the last page")
		}
		return finishList(out, v, engine.State(), err)
	}

	if !f.interactive || jsonOutput {
		return finishList(out, v, engine.State(), nil)
	}
	return browseInteractively(cmd, a, search, v)
}

// errFeedClosed is returned when the bus shuts down while a view waits on it.
var errFeedClosed = errors.New("event bus closed")

// listFeed follows the change and error events of one list on the bus.
type listFeed struct {
	bus     *events.EventBus
	name    string
	changes <-chan events.Event
	errs    <-chan events.Event
}

func followList(bus *events.EventBus, name string) *listFeed {
	return &listFeed{
		bus:     bus,
		name:    name,
		changes: bus.Subscribe(events.EventListChanged),
		errs:    bus.Subscribe(events.EventListError),
	}
}

func (f *listFeed) close() {
	f.bus.Unsubscribe(events.EventListChanged, f.changes)
	f.bus.Unsubscribe(events.EventListError, f.errs)
}

func (f *listFeed) mine(ev events.Event) (*events.ListEvent, bool) {
	le, ok := ev.(*events.ListEvent)
	return le, ok && le.List == f.name
}

// drain empties both channels and returns the load errors reported for the list.
func (f *listFeed) drain() []error {
	var errs []error
	for {
		select {
		case <-f.changes:
		case ev := <-f.errs:
			if le, ok := f.mine(ev); ok && le.Error != nil {
				errs = append(errs, le.Error)
			}
		default:
			return errs
		}
	}
}

// waitUntil blocks until done holds right after an event for the list.
// done is not checked before the first event arrives.
func (f *listFeed) waitUntil(ctx context.Context, done func() bool) error {
	for {
		var ev events.Event
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok = <-f.changes:
		case ev, ok = <-f.errs:
		}
		if !ok {
			return errFeedClosed
		}
		if _, mine := f.mine(ev); mine && done() {
			return nil
		}
	}
}

// browseInteractively prints each page as it arrives and asks before loading
// the next one. A failed page latches auto-loading until the user retries.
// Answering "/term" refines the search through the debounced search box.
func browseInteractively[T paging.Identifiable](cmd *cobra.Command, a *app, search *browse.Search[T], v listView[T]) error {
	ctx := GetContext()
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)
	engine := search.Engine()

	feed := followList(a.bus, v.name)
	defer feed.close()
	feed.drain()

	printed := 0
	for {
		st := engine.State()
		if len(st.Items) > printed {
			v.print(out, st.Items[printed:])
			printed = len(st.Items)
			if !st.HasMore {
				fmt.Fprintf(out, "\nAll %d %s loaded\n", len(st.Items), v.name)
			}
		} else if printed == 0 {
			fmt.Fprintf(out, "No %s found\n", v.name)
		}

		var question string
		switch {
		case st.AutoLoadFailed:
			question = "Retry? [y/N, /term to search]"
		case st.HasMore:
			question = fmt.Sprintf("Loaded %d of %d. Load more? [y/N, /term to search]", len(st.Items), st.TotalElements)
		default:
			question = "Search again? [/term, Enter to quit]"
		}
		answer, err := p.line(question, "")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if term, ok := strings.CutPrefix(answer, "/"); ok {
			if err := refineSearch(ctx, search, feed, term); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			reportLoadErrors(out, v.name, feed.drain())
			if q := search.Query(); q != "" {
				fmt.Fprintf(out, "\nResults for %q:\n", q)
			}
			printed = 0
			continue
		}

		answer = strings.ToLower(answer)
		if !st.HasMore || (answer != "y" && answer != "yes") {
			return nil
		}

		if st.AutoLoadFailed {
			err = engine.Retry(ctx)
		} else {
			err = engine.SentinelVisible(ctx)
			if err == nil && engine.State().Page == st.Page {
				// Auto-load disabled: behave like an explicit "load more" button
				err = engine.LoadMore(ctx)
			}
		}
		if err != nil {
			GetLogger().Debug().Err(err).Str("list", v.name).Msg("Page load failed")
		}
		reportLoadErrors(out, v.name, feed.drain())
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// refineSearch types term into the search box and waits for the debounced
// query to finish loading.
func refineSearch[T paging.Identifiable](ctx context.Context, search *browse.Search[T], feed *listFeed, term string) error {
	feed.drain()
	if err := search.Type(term); err != nil {
		return err
	}
	want := validation.NormalizeQuery(term)
	return feed.waitUntil(ctx, func() bool {
		return search.Query() == want && !search.Engine().State().Loading
	})
}

func reportLoadErrors(out io.Writer, list string, errs []error) {
	for _, err := range errs {
		fmt.Fprintf(out, "  Loading %s failed: %v\n", list, err)
	}
}

func finishList[T paging.Identifiable](out io.Writer, v listView[T], st paging.State[T], loadErr error) error {
	if jsonOutput {
		if err := printJSON(out, st.Items); err != nil {
			return err
		}
		return loadErr
	}
	if st.Empty() {
		fmt.Fprintf(out, "No %s found\n", v.name)
		return nil
	}

	v.print(out, st.Items)
	fmt.Fprintln(out)
	switch {
	case loadErr != nil:
		fmt.Fprintf(out, "Showing %d of %d %s; loading stopped: %v\n", len(st.Items), st.TotalElements, v.name, loadErr)
		return loadErr
	case st.HasMore:
		fmt.Fprintf(out, "Showing %d of %d %s (use --all, --page or --interactive for more)\n", len(st.Items), st.TotalElements, v.name)
	default:
		fmt.Fprintf(out, "%d %s\n", len(st.Items), v.name)
	}
	return nil
}
