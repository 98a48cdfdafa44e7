// Package manager owns the activity listener lifecycle: it builds the
// pipeline at start, registers it with the host registry and tears it
// down at shutdown.
package manager

import (
	"context"
	"log/slog"
	"sync"

	"vigil/internal/activity/listener"
	"vigil/internal/activity/metrics"
	"vigil/internal/activity/ports"
	"vigil/internal/activity/readcache"
	"vigil/internal/activity/service"
	"vigil/internal/registry"
)

// Status reports the manager's lifecycle state to the host.
type Status struct {
	ID      string `json:"id"`
	Enable  bool   `json:"enable"`
	Running bool   `json:"running"`
}

// Manager wires the dispatcher into the host registry. The read cache is
// owned here: created fresh at Start, discarded at Shutdown, with no
// persistence across restarts.
type Manager struct {
	registry  *registry.Registry
	settings  ports.SettingsProvider
	store     ports.EventStore
	logger    *slog.Logger
	audit     *slog.Logger
	metrics   *metrics.Metrics
	sensitive map[string]struct{}

	mu     sync.Mutex
	handle *registry.Handle
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithAuditLogger sets the sink for administration-scope audit lines.
func WithAuditLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.audit = logger }
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mx }
}

// WithSensitiveFields sets the redacted field names, sourced from
// configuration at initialization time.
func WithSensitiveFields(fields map[string]struct{}) Option {
	return func(m *Manager) { m.sensitive = fields }
}

func New(reg *registry.Registry, settingsProvider ports.SettingsProvider, store ports.EventStore, opts ...Option) *Manager {
	m := &Manager{
		registry: reg,
		settings: settingsProvider,
		store:    store,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start builds a fresh pipeline and registers it. Calling Start on a
// running manager is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != nil {
		return nil
	}

	svc, err := service.New(m.settings, m.store,
		service.WithAuditLogger(m.audit),
		service.WithMetrics(m.metrics),
		service.WithSensitiveFields(m.sensitive),
	)
	if err != nil {
		return err
	}

	l := listener.New(svc, readcache.New(),
		listener.WithLogger(m.logger),
		listener.WithMetrics(m.metrics),
	)
	m.handle = m.registry.Register(l)

	if m.logger != nil {
		m.logger.InfoContext(ctx, "activity manager started", "listener_id", listener.ListenerID)
	}
	return nil
}

// Status reports a fixed identifier and running state. The manager is
// always enabled; partial-failure states are not tracked.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		ID:      listener.ListenerID,
		Enable:  true,
		Running: m.handle != nil,
	}
}

// Shutdown unregisters the listener if registered. Safe to call multiple
// times or before Start; reports whether the manager is stopped.
func (m *Manager) Shutdown(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != nil {
		m.handle.Unregister()
		m.handle = nil
		if m.logger != nil {
			m.logger.InfoContext(ctx, "activity manager stopped", "listener_id", listener.ListenerID)
		}
	}
	return true
}
