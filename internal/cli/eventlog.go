package cli

import (
	"sync"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
)

// eventLog writes every bus event to the debug log for the lifetime of a command.
type eventLog struct {
	bus    *events.EventBus
	logger *logging.Logger
	ch     <-chan events.Event
	done   chan struct{}
	wg     sync.WaitGroup
	seen   int
}

func startEventLog(bus *events.EventBus, logger *logging.Logger) *eventLog {
	l := &eventLog{
		bus:    bus,
		logger: logger.Named("events"),
		ch:     bus.SubscribeAll(),
		done:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *eventLog) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			// Log what is still buffered before leaving
			for {
				select {
				case ev, ok := <-l.ch:
					if !ok {
						return
					}
					l.record(ev)
				default:
					return
				}
			}
		case ev, ok := <-l.ch:
			if !ok {
				return
			}
			l.record(ev)
		}
	}
}

func (l *eventLog) record(ev events.Event) {
	l.seen++
	e := l.logger.Debug().Str("type", string(ev.Type()))
	switch ev := ev.(type) {
	case *events.ListEvent:
		e = e.Str("list", ev.List).
			Int("items", ev.Items).
			Int("page", ev.Page).
			Int64("total", ev.TotalElements).
			Bool("has_more", ev.HasMore).
			AnErr("load_error", ev.Error)
	case *events.SessionEvent:
		e = e.Bool("authenticated", ev.Authenticated).Str("user", ev.UserID)
	case *events.PendingCountsEvent:
		e = e.Str("category", ev.Category).Int("current", ev.Current).Int("total", ev.Total)
	}
	e.Msg("Event")
}

// stop detaches from the bus and reports events lost to full buffers.
// It returns the number of events logged.
func (l *eventLog) stop() int {
	l.bus.UnsubscribeAll(l.ch)
	close(l.done)
	l.wg.Wait()

	if dropped := l.bus.GetDroppedEventCount(); dropped > 0 {
		l.logger.Warn().Int64("dropped", dropped).Msg("Events dropped by full subscriber buffers")
	}
	return l.seen
}
