package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/soyeahso/hookbridge/internal/domain"
	"github.com/soyeahso/hookbridge/internal/logging"
)

// ErrRouteExists is returned when a webhook path is already bound.
var ErrRouteExists = errors.New("route already registered")

// Router dispatches requests to per-account webhook handlers by exact path.
// Unlike http.ServeMux, registrations can be removed, which lets accounts
// be unbound on reconfiguration.
type Router struct {
	mu     sync.RWMutex
	routes map[string]http.Handler
	log    *logging.Logger
}

// NewRouter creates an empty router.
func NewRouter(log *logging.Logger) *Router {
	return &Router{
		routes: make(map[string]http.Handler),
		log:    log.Sub("router"),
	}
}

// Handle binds a handler to a path and returns a deregistration func.
// Binding an already-claimed path fails with ErrRouteExists.
func (rt *Router) Handle(path string, h http.Handler) (func(), error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, exists := rt.routes[path]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRouteExists, path)
	}
	rt.routes[path] = h
	rt.log.Info().Str("path", path).Msg("route bound")

	var once sync.Once
	return func() {
		once.Do(func() {
			rt.mu.Lock()
			defer rt.mu.Unlock()
			delete(rt.routes, path)
			rt.log.Info().Str("path", path).Msg("route unbound")
		})
	}, nil
}

// Paths returns the currently bound paths, sorted.
func (rt *Router) Paths() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	paths := make([]string, 0, len(rt.routes))
	for p := range rt.routes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// ServeHTTP dispatches by exact path match.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	h, ok := rt.routes[r.URL.Path]
	rt.mu.RUnlock()

	if !ok {
		handleNotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

// BindRoutes registers one webhook route per enabled account that has a
// webhook path configured, marks each bound account as running, and
// returns a single teardown func. Accounts without a webhook path are
// skipped with a warning; path collisions abort the whole bind.
func BindRoutes(rt *Router, w *config.WebhookConfig, sink domain.Sink, store *account.Store, log *logging.Logger) (func(), error) {
	log = log.Sub("gateway")

	var unbinds []func()
	teardown := func() {
		for _, f := range unbinds {
			f()
		}
	}

	for _, id := range account.ListIDs(w) {
		resolved := account.Resolve(w, id)
		if !resolved.Enabled {
			log.Debug().Str("account", id).Msg("account disabled, skipping")
			continue
		}
		if resolved.WebhookPath == "" {
			log.Warn().Str("account", id).Str("reason", resolved.UnconfiguredReason()).
				Msg("account has no webhook path, skipping")
			continue
		}

		handler := NewHandler(HandlerDeps{
			Webhook:   w,
			AccountID: id,
			Sink:      sink,
			Log:       log,
		})

		unbind, err := rt.Handle(resolved.WebhookPath, handler)
		if err != nil {
			teardown()
			return nil, fmt.Errorf("binding account %q: %w", id, err)
		}

		accountID := id
		store.SetRunning(accountID, true)
		unbinds = append(unbinds, func() {
			unbind()
			store.SetRunning(accountID, false)
		})

		log.Info().Str("account", id).Str("path", resolved.WebhookPath).Msg("webhook account bound")
	}

	return teardown, nil
}
