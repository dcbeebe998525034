// Package notify sends desktop notifications when new items wait for review.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
)

// SendFunc delivers one notification.
type SendFunc func(title, message string) error

// Config holds notification configuration.
type Config struct {
	// Enabled determines if notifications are sent.
	Enabled bool

	// Beep plays a system beep alongside each notification.
	Beep bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Beep:    false,
	}
}

// Notifier turns pending-count changes into desktop notifications.
type Notifier struct {
	logger *logging.Logger
	send   SendFunc
	beep   bool

	mu        sync.Mutex
	enabled   bool
	lastTotal int
	primed    bool
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Notifier{
		logger:  logging.OrNop(logger).Named("notify"),
		send:    beeepSend,
		beep:    cfg.Beep,
		enabled: cfg.Enabled,
	}
}

// WithSender replaces the delivery function. Used by tests.
func (n *Notifier) WithSender(fn SendFunc) *Notifier {
	n.send = fn
	return n
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// Attach registers the notifier on the aggregate pending-count event of bus.
// The returned function detaches it.
func (n *Notifier) Attach(bus *events.EventBus) func() {
	id := bus.AddListener(events.EventPendingCountsChanged, n.handle)
	return func() { bus.RemoveListener(events.EventPendingCountsChanged, id) }
}

func (n *Notifier) handle(e events.Event) {
	ev, ok := e.(*events.PendingCountsEvent)
	if !ok {
		return
	}
	n.PendingCountsChanged(ev)
}

// PendingCountsChanged notifies when the total grew since the last event.
// The first event only records the baseline so startup stays quiet.
func (n *Notifier) PendingCountsChanged(ev *events.PendingCountsEvent) {
	n.mu.Lock()
	prev, primed := n.lastTotal, n.primed
	n.lastTotal, n.primed = ev.Total, true
	enabled := n.enabled
	n.mu.Unlock()

	if !enabled || !primed || ev.Total <= prev {
		return
	}

	message := fmt.Sprintf("%d item(s) waiting for review\n%s", ev.Total, breakdown(ev))
	if err := n.send(constants.NotifyTitle, message); err != nil {
		n.logger.Warn().Err(err).Int("total", ev.Total).Msg("Failed to send pending notification")
		return
	}
	if n.beep {
		_ = beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
	}
}

// Alert sends an alert notification for issues that need attention,
// such as an expired session.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	title := constants.NotifyTitle + " Alert"
	if err := beeep.Alert(title, truncate(message, 200), ""); err != nil {
		// Fall back to regular notify
		if err := n.send(title, truncate(message, 200)); err != nil {
			n.logger.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

func breakdown(ev *events.PendingCountsEvent) string {
	var parts []string
	if ev.Applications > 0 {
		parts = append(parts, fmt.Sprintf("applications: %d", ev.Applications))
	}
	if ev.Datasets > 0 {
		parts = append(parts, fmt.Sprintf("datasets: %d", ev.Datasets))
	}
	if ev.ResearchOutputs > 0 {
		parts = append(parts, fmt.Sprintf("research outputs: %d", ev.ResearchOutputs))
	}
	return strings.Join(parts, ", ")
}

func beeepSend(title, message string) error {
	// Windows toast, macOS notification center, D-Bus on Linux
	return beeep.Notify(title, message, "")
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
