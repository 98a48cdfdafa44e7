// Package registry is the host-side registration point for user-action
// listeners. The host calls Notify once per observed action and expects
// nothing back; listener failures must never reach the request path.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"vigil/internal/activity"
)

// Listener receives every user action observed by the host.
type Listener interface {
	ID() string
	Next(ctx context.Context, action activity.UserAction)
}

// Registry fans user actions out to registered listeners.
type Registry struct {
	mu        sync.RWMutex
	listeners map[string]Listener
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		listeners: make(map[string]Listener),
		logger:    logger,
	}
}

// Handle detaches a listener from the registry. Unregister is idempotent.
type Handle struct {
	registry *Registry
	id       string
	once     sync.Once
}

func (h *Handle) Unregister() {
	h.once.Do(func() {
		h.registry.mu.Lock()
		defer h.registry.mu.Unlock()
		delete(h.registry.listeners, h.id)
	})
}

// Register adds the listener, replacing any previous one with the same ID.
func (r *Registry) Register(l Listener) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[l.ID()] = l
	return &Handle{registry: r, id: l.ID()}
}

// Notify delivers the action to every listener. A panicking listener is
// contained and logged; the remaining listeners still run.
func (r *Registry) Notify(ctx context.Context, action activity.UserAction) {
	r.mu.RLock()
	snapshot := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		snapshot = append(snapshot, l)
	}
	r.mu.RUnlock()

	for _, l := range snapshot {
		r.dispatch(ctx, l, action)
	}
}

func (r *Registry) dispatch(ctx context.Context, l Listener, action activity.UserAction) {
	defer func() {
		if rec := recover(); rec != nil && r.logger != nil {
			r.logger.ErrorContext(ctx, "action listener panicked",
				"listener_id", l.ID(),
				"panic", rec,
			)
		}
	}()
	l.Next(ctx, action)
}

// Len reports the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}
