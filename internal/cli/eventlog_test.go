package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
)

func TestEventLogRecordsBusEvents(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewEventBus(10)
	defer bus.Close()

	l := startEventLog(bus, logging.NewWithWriter(&buf))
	bus.Publish(&events.SessionEvent{BaseEvent: events.NewBaseEvent(events.EventSessionChanged), UserID: "u1", Authenticated: true})
	bus.Publish(&events.ListEvent{BaseEvent: events.NewBaseEvent(events.EventListChanged), List: "datasets", Items: 10, TotalElements: 23, HasMore: true})

	if n := l.stop(); n != 2 {
		t.Errorf("stop() = %d events, want 2", n)
	}
	out := buf.String()
	for _, want := range []string{`"type":"session_changed"`, `"user":"u1"`, `"list":"datasets"`, `"total":23`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("unexpected drop warning:\n%s", out)
	}

	// Detached: later events are not logged
	bus.Publish(&events.ListEvent{BaseEvent: events.NewBaseEvent(events.EventListChanged), List: "outputs"})
	if strings.Contains(buf.String(), "outputs") {
		t.Error("event logged after stop")
	}
}

func TestEventLogReportsDroppedEvents(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewEventBus(1)
	defer bus.Close()

	_ = bus.Subscribe(events.EventListChanged) // never read
	l := startEventLog(bus, logging.NewWithWriter(&buf))
	for i := 0; i < 3; i++ {
		bus.Publish(&events.ListEvent{BaseEvent: events.NewBaseEvent(events.EventListChanged), List: "datasets"})
	}
	l.stop()

	if !strings.Contains(buf.String(), "Events dropped by full subscriber buffers") {
		t.Errorf("drop warning missing:\n%s", buf.String())
	}
}
