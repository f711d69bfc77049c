// Package session hosts one playback controller per remote viewer.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/osa030/versionbox/internal/app/dispatch"
	"github.com/osa030/versionbox/internal/app/notification"
	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/app/render"
	"github.com/osa030/versionbox/internal/app/session/registry"
	"github.com/osa030/versionbox/internal/domain/viewer"
	"github.com/osa030/versionbox/internal/infra/config"
	"github.com/osa030/versionbox/internal/infra/logger"
	"github.com/osa030/versionbox/internal/infra/metrics"
)

var (
	ErrUnknownSession  = errors.New("unknown session")
	ErrRateLimited     = errors.New("dispatch rate exceeded")
	ErrTooManySessions = errors.New("too many sessions")
	ErrShutdown        = errors.New("session manager is shut down")
)

// entry is the per-viewer widget instance.
type entry struct {
	ctrl       *playback.Controller
	dispatcher *dispatch.Dispatcher
	limiter    *rate.Limiter
}

// Manager manages viewer sessions.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config

	// Components
	coord        *playback.Coordinator
	viewers      *registry.ViewerRegistry
	notification *notification.Manager
	entries      map[string]*entry
	now          func() time.Time
	closed       bool

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a new session manager over a shared coordinator.
func NewManager(cfg *config.Config, coord *playback.Coordinator, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:       cfg,
		coord:        coord,
		notification: notification.NewManager(notification.DefaultSendTimeout),
		entries:      make(map[string]*entry),
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.viewers = registry.NewViewerRegistry(m.now)
	return m
}

// Start launches the idle reaper. It stops when ctx is done or on Shutdown.
func (m *Manager) Start(ctx context.Context) {
	interval := m.config.SessionIdle() / 2
	if interval > time.Minute {
		interval = time.Minute
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.Reap()
			}
		}
	}()
}

// Open creates a viewer session and returns its ID with the initial render commands.
func (m *Manager) Open(client string) (string, []render.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", nil, ErrShutdown
	}
	if len(m.entries) >= m.config.Server.MaxSessions {
		return "", nil, errors.Wrapf(ErrTooManySessions, "limit %d", m.config.Server.MaxSessions)
	}

	id := m.viewers.Open(client)
	ctrl := playback.NewController(m.coord, render.LogRenderer{Session: id}, m.config.Playback.UpdateBuffer)
	e := &entry{
		ctrl:       ctrl,
		dispatcher: dispatch.New(ctrl),
		limiter:    rate.NewLimiter(rate.Limit(m.config.Server.DispatchRate), m.config.Server.DispatchBurst),
	}
	m.entries[id] = e

	m.wg.Add(1)
	go m.pumpLoop(id, ctrl)

	cmds := ctrl.Start()
	countCommands(cmds)
	metrics.SessionsActive.Set(float64(len(m.entries)))
	log := logger.ForSession(id)
	log.Info().Msgf("session: opened client=%q sessions=%d", client, len(m.entries))

	return id, cmds, nil
}

// Dispatch applies one widget action to a session and returns the resulting render commands.
func (m *Manager) Dispatch(id string, payload map[string]any) ([]render.Command, error) {
	control := controlLabel(payload)

	e, err := m.get(id)
	if err != nil {
		metrics.DispatchTotal.WithLabelValues(control, metrics.StatusNotFound).Inc()
		return nil, err
	}
	if !e.limiter.Allow() {
		metrics.DispatchTotal.WithLabelValues(control, metrics.StatusRateLimited).Inc()
		return nil, errors.Wrapf(ErrRateLimited, "session %s", id)
	}
	_ = m.viewers.Touch(id)

	action, cmds, err := e.dispatcher.Dispatch(payload)
	if err != nil {
		metrics.DispatchTotal.WithLabelValues(control, metrics.StatusInvalid).Inc()
		return nil, err
	}

	if action.Control == "play-rejected" {
		metrics.PlayRejectionsTotal.Inc()
	}
	metrics.DispatchTotal.WithLabelValues(control, metrics.StatusOK).Inc()
	countCommands(cmds)
	return cmds, nil
}

// Close ends a session and its subscriptions.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return errors.Wrapf(ErrUnknownSession, "session %s", id)
	}
	delete(m.entries, id)
	remaining := len(m.entries)
	m.mu.Unlock()

	e.ctrl.Close()
	m.viewers.Remove(id)
	subs := m.notification.UnsubscribeTopic(id)

	metrics.SessionsActive.Set(float64(remaining))
	log := logger.ForSession(id)
	log.Info().Msgf("session: closed subscribers=%d sessions=%d", subs, remaining)
	return nil
}

// Snapshot returns the current widget state and viewer details of a session.
func (m *Manager) Snapshot(id string) (playback.State, viewer.Session, error) {
	e, err := m.get(id)
	if err != nil {
		return playback.State{}, viewer.Session{}, err
	}
	v, err := m.viewers.Get(id)
	if err != nil {
		return playback.State{}, viewer.Session{}, errors.Wrapf(ErrUnknownSession, "session %s", id)
	}
	return e.ctrl.State(), v, nil
}

// Subscribe mirrors a session's render batches to a stream.
// The returned channel is closed when the subscription or the session ends.
func (m *Manager) Subscribe(id string, stream notification.Stream) (string, <-chan struct{}, error) {
	if _, err := m.get(id); err != nil {
		return "", nil, err
	}
	subID, done := m.notification.Subscribe(id, stream)
	zlog.Debug().Msgf("session: subscriber %s attached to %s", subID, id)
	return subID, done, nil
}

// Unsubscribe detaches a mirror stream.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.notification.Unsubscribe(subscriptionID)
}

// Titles returns the title groups of the catalog.
func (m *Manager) Titles() []string {
	return m.coord.Index().Titles()
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sessions returns the open viewer sessions, oldest first.
func (m *Manager) Sessions() []viewer.Session {
	return m.viewers.All()
}

// Reap closes sessions idle for longer than the configured limit and returns their IDs.
func (m *Manager) Reap() []string {
	ids := m.viewers.Idle(m.config.SessionIdle())
	for _, id := range ids {
		if err := m.Close(id); err != nil {
			zlog.Debug().Msgf("session: reap %s: %v", id, err)
			continue
		}
		metrics.SessionsReapedTotal.Inc()
	}
	if len(ids) > 0 {
		zlog.Info().Msgf("session: reaped %d idle sessions", len(ids))
	}
	return ids
}

// Shutdown closes every session and stops background work.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		_ = m.Close(id)
	}
	m.cancel()
	m.notification.Close()
	m.wg.Wait()
	zlog.Info().Msg("session: manager stopped")
}

func (m *Manager) get(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSession, "session %s", id)
	}
	return e, nil
}

// pumpLoop forwards controller updates to the session's subscribers until the controller closes.
func (m *Manager) pumpLoop(id string, ctrl *playback.Controller) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("session: pump loop for %s panicked: %v", id, r)
		}
	}()

	for u := range ctrl.Updates() {
		if m.notification.SubscriberCount(id) == 0 {
			continue
		}
		msg, err := notification.NewBatch(u.Seq, id, u.Commands)
		if err != nil {
			zlog.Error().Msgf("session: %v", err)
			continue
		}
		m.notification.Publish(id, msg)
	}
}

// controlLabel bounds the metric label to registered control names.
func controlLabel(payload map[string]any) string {
	name, _ := payload["control"].(string)
	if _, ok := dispatch.Registered()[name]; ok {
		return name
	}
	return "unknown"
}

func countCommands(cmds []render.Command) {
	for _, c := range cmds {
		metrics.RenderCommandsTotal.WithLabelValues(c.Op.String()).Inc()
	}
}
