// Package service implements the activity logger: the single choke point
// that gates, builds, audits, and persists every candidate activity event.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vigil/internal/activity"
	"vigil/internal/activity/metrics"
	"vigil/internal/activity/ports"
)

// Type aliases so callers wire dependencies without importing ports.
type (
	EventStore       = ports.EventStore
	SettingsProvider = ports.SettingsProvider
)

// Service decides whether a raw action becomes a persisted event.
type Service struct {
	settings  SettingsProvider
	store     EventStore
	audit     *slog.Logger
	metrics   *metrics.Metrics
	sensitive map[string]struct{}
}

type Option func(*Service)

// WithAuditLogger sets the sink mirroring administration-scope events.
func WithAuditLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.audit = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSensitiveFields sets the keys redacted from event data. Static for
// the process lifetime.
func WithSensitiveFields(fields map[string]struct{}) Option {
	return func(s *Service) { s.sensitive = fields }
}

func New(settingsProvider SettingsProvider, store EventStore, opts ...Option) (*Service, error) {
	if settingsProvider == nil {
		return nil, errors.New("settings provider is required")
	}
	if store == nil {
		return nil, errors.New("event store is required")
	}
	svc := &Service{
		settings: settingsProvider,
		store:    store,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Log runs the gate sequence for one action and reports whether an event
// was persisted. Settings-fetch and store-write failures are fatal to this
// action only; gated drops return (false, nil).
//
// Gate order is load-bearing: the enterprise flag always comes first, and
// the allow-list applies only to extended-access actions. Administration
// actions bypass the allow-list but never the flag.
func (s *Service) Log(ctx context.Context, action activity.UserAction, message string) (bool, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("activity settings lookup: %w", err)
	}
	if !current.EnterpriseEnabled() {
		s.metrics.IncEventsDropped(metrics.DropFeatureDisabled)
		return false, nil
	}
	if action.EventAccess == activity.AccessExtended && !current.IsUserListening(action.User.ID) {
		s.metrics.IncEventsDropped(metrics.DropNotListened)
		return false, nil
	}

	event := activity.BuildEvent(action, message, s.sensitive)

	if action.EventAccess == activity.AccessAdministration {
		s.auditLine(ctx, action, event, message)
	}

	if err := s.store.Append(ctx, event); err != nil {
		return false, fmt.Errorf("activity stream append: %w", err)
	}
	s.metrics.IncEventsEmitted(string(event.EventAccess))
	return true, nil
}

// auditLine mirrors an administration-scope event to the operational audit
// log, error level when the action itself failed.
func (s *Service) auditLine(ctx context.Context, action activity.UserAction, event activity.StreamEvent, message string) {
	if s.audit == nil {
		return
	}
	level := slog.LevelInfo
	if action.Status == activity.StatusError {
		level = slog.LevelError
	}
	s.audit.Log(ctx, level, message,
		"log_type", "audit",
		"user_id", action.User.ID,
		"user_name", action.User.Name,
		"version", event.Version,
		"type", string(event.Type),
		"event_scope", string(event.EventScope),
		"event_access", string(event.EventAccess),
		"data", event.Data,
	)
}
