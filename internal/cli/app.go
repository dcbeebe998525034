package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/api"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/config"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/http"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/pending"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/services"
)

// errNotLoggedIn is returned by commands that need a session when none exists.
var errNotLoggedIn = errors.New("not logged in; run 'nabotix login' first")

// app wires the client-side components for one CLI invocation.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	client   *api.Client
	bus      *events.EventBus
	sessions *auth.Store
	pending  *pending.Controller
	reviews  *services.ReviewService
	events   *eventLog
}

// newApp builds the API client and session store and restores any saved
// session. With requireSession, a missing or rejected token is an error.
func newApp(ctx context.Context, requireSession bool) (*app, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if http.NeedsProxyPassword(cfg) {
		pw, err := newPrompter(os.Stdin, os.Stderr).password(fmt.Sprintf("Proxy password for %s", cfg.ProxyUser))
		if err != nil {
			return nil, err
		}
		cfg.ProxyPassword = pw
	}

	log := GetLogger()
	client, err := api.NewClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	bus := events.NewEventBus(0)
	a := &app{
		cfg:      cfg,
		logger:   log,
		client:   client,
		bus:      bus,
		sessions: auth.NewStore(bus),
		events:   startEventLog(bus, log),
	}
	a.pending = pending.NewController(client, a.sessions, log,
		pending.WithInterval(cfg.PollInterval()),
		pending.WithInitialDelay(cfg.InitialDelay()),
		pending.WithEventBus(bus),
	)
	a.reviews = services.NewReviewService(client, a.sessions, a.pending, log)

	if err := a.restoreSession(ctx); err != nil {
		if requireSession {
			a.close()
			return nil, err
		}
		log.Debug().Err(err).Msg("Continuing without a session")
	}
	return a, nil
}

func (a *app) restoreSession(ctx context.Context) error {
	token := a.cfg.Token
	if token == "" {
		t, err := auth.LoadToken(a.cfg.TokenFile)
		if errors.Is(err, auth.ErrNoToken) {
			return errNotLoggedIn
		}
		if err != nil {
			return err
		}
		token = t
	}

	a.client.SetToken(token)
	sess, err := auth.Restore(ctx, a.client, token)
	if err != nil {
		a.client.SetToken("")
		if errors.Is(err, api.ErrUnauthorized) {
			return fmt.Errorf("session expired: %w", errNotLoggedIn)
		}
		return err
	}
	a.sessions.Set(sess)
	return nil
}

// close releases the event bus.
func (a *app) close() {
	a.pending.Stop()
	a.events.stop()
	a.bus.Close()
}
