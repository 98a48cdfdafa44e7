// Package listener classifies raw user actions and feeds the activity
// logger. It is registered with the host's action registry and must never
// let a failure escape into the host's dispatch path.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vigil/internal/activity"
	"vigil/internal/activity/metrics"
	"vigil/internal/activity/ports"
	"vigil/internal/activity/readcache"
	"vigil/internal/schema"
)

// ListenerID identifies the activity manager in the host registry.
const ListenerID = "ACTIVITY_MANAGER"

// pendingImportMarker selects the Analyst Workbench message variants for
// file create/delete.
const pendingImportMarker = "import/pending"

// ActivityLogger is the downstream choke point; satisfied by the service
// package.
type ActivityLogger interface {
	Log(ctx context.Context, action activity.UserAction, message string) (bool, error)
}

// Listener applies exclusion rules, classifies by type and scope, derives
// the human-readable message and invokes the activity logger.
type Listener struct {
	activityLogger ActivityLogger
	cache          ports.ReadCache
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Listener)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Listener) { l.metrics = m }
}

func New(activityLogger ActivityLogger, cache ports.ReadCache, opts ...Option) *Listener {
	l := &Listener{
		activityLogger: activityLogger,
		cache:          cache,
		tracer:         otel.Tracer("vigil/activity"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Listener) ID() string { return ListenerID }

// Next handles one user action. Unlisted type/scope combinations are a
// silent no-op; infrastructure failures are logged and contained so each
// action's failure stays isolated.
func (l *Listener) Next(ctx context.Context, action activity.UserAction) {
	ctx, span := l.tracer.Start(ctx, "activity.dispatch", trace.WithAttributes(
		attribute.String("event_type", string(action.EventType)),
		attribute.String("event_scope", string(action.EventScope)),
	))
	defer span.End()

	l.metrics.IncActionsReceived()

	// Internal identities are never tracked.
	if activity.IsInternalUser(action.User.ID) {
		l.metrics.IncEventsDropped(metrics.DropInternalUser)
		return
	}
	// Subscriptions and other non-interactive transports are not listened to.
	if action.User.Origin.Socket != activity.SocketQuery {
		l.metrics.IncEventsDropped(metrics.DropExcludedOrigin)
		return
	}

	switch action.EventType {
	case activity.EventTypeAuthentication:
		l.nextAuthentication(ctx, action)
	case activity.EventTypeRead:
		l.nextRead(ctx, action)
	case activity.EventTypeFile:
		l.nextFile(ctx, action)
	case activity.EventTypeCommand:
		l.nextCommand(ctx, action)
	case activity.EventTypeMutation:
		l.nextMutation(ctx, action)
	default:
		l.metrics.IncEventsDropped(metrics.DropUnhandled)
	}
}

func (l *Listener) nextAuthentication(ctx context.Context, action activity.UserAction) {
	switch action.EventScope {
	case activity.ScopeLogin:
		if action.Status == activity.StatusError {
			l.log(ctx, action, fmt.Sprintf("detects login failure for %s", field(action, "username")))
			return
		}
		l.log(ctx, action, fmt.Sprintf("login from provider %s", field(action, "provider")))
	case activity.ScopeLogout:
		l.log(ctx, action, "logout")
	default:
		l.metrics.IncEventsDropped(metrics.DropUnhandled)
	}
}

func (l *Listener) nextRead(ctx context.Context, action activity.UserAction) {
	switch action.EventScope {
	case activity.ScopeUnauthorized:
		l.log(ctx, action, fmt.Sprintf("tries an unauthorized %s", action.EventType))
	case activity.ScopeRead:
		if schema.IsTrackedRead(field(action, "entity_type")) {
			l.readActivity(ctx, action)
		}
	default:
		l.metrics.IncEventsDropped(metrics.DropUnhandled)
	}
}

// readActivity routes qualifying knowledge reads through the dedup cache.
// The identifier is marked only after a successful persist so a failed
// write never suppresses the retry.
func (l *Listener) readActivity(ctx context.Context, action activity.UserAction) {
	identifier := readcache.Key(field(action, "id"), action.User.ID)
	if l.cache.Has(identifier) {
		l.metrics.IncReadDedupHits()
		return
	}
	message := fmt.Sprintf("reads %s (%s)", field(action, "entity_name"), field(action, "entity_type"))
	if l.log(ctx, action, message) {
		l.cache.Set(identifier)
	}
}

func (l *Listener) nextFile(ctx context.Context, action activity.UserAction) {
	fileName := field(action, "file_name")
	entityName := field(action, "entity_name")
	entityType := field(action, "entity_type")
	switch action.EventScope {
	case activity.ScopeRead:
		l.log(ctx, action, fmt.Sprintf("downloads from %s the file %s", entityName, fileName))
	case activity.ScopeCreate:
		message := fmt.Sprintf("adds %s in files for %s (%s)", fileName, entityName, entityType)
		if strings.Contains(field(action, "path"), pendingImportMarker) {
			message = fmt.Sprintf("creates Analyst Workbench %s for %s (%s)", fileName, entityName, entityType)
		}
		l.log(ctx, action, message)
	case activity.ScopeDelete:
		message := fmt.Sprintf("removes %s in files for %s (%s)", fileName, entityName, entityType)
		if strings.Contains(field(action, "path"), pendingImportMarker) {
			message = fmt.Sprintf("removes Analyst Workbench %s for %s (%s)", fileName, entityName, entityType)
		}
		l.log(ctx, action, message)
	default:
		l.metrics.IncEventsDropped(metrics.DropUnhandled)
	}
}

func (l *Listener) nextCommand(ctx context.Context, action activity.UserAction) {
	switch action.EventScope {
	case activity.ScopeSearch:
		l.log(ctx, action, "asks for advanced search")
	case activity.ScopeExport:
		l.log(ctx, action, fmt.Sprintf("asks for %s export in %s", field(action, "format"), field(action, "entity_name")))
	case activity.ScopeImport:
		l.log(ctx, action, fmt.Sprintf("asks for %s import of %s in %s",
			field(action, "file_mime"), field(action, "file_name"), field(action, "entity_name")))
	case activity.ScopeEnrich:
		l.log(ctx, action, fmt.Sprintf("asks for %s enrichment in %s",
			field(action, "connector_name"), field(action, "entity_name")))
	default:
		l.metrics.IncEventsDropped(metrics.DropUnhandled)
	}
}

func (l *Listener) nextMutation(ctx context.Context, action activity.UserAction) {
	switch action.EventScope {
	case activity.ScopeUnauthorized:
		l.log(ctx, action, fmt.Sprintf("tries an unauthorized %s", action.EventType))
	case activity.ScopeCreate, activity.ScopeUpdate, activity.ScopeDelete:
		// Mutation messages are precomputed upstream and used verbatim.
		l.log(ctx, action, action.Message)
	default:
		l.metrics.IncEventsDropped(metrics.DropUnhandled)
	}
}

// log invokes the activity logger and contains infrastructure failures.
func (l *Listener) log(ctx context.Context, action activity.UserAction, message string) bool {
	logged, err := l.activityLogger.Log(ctx, action, message)
	if err != nil {
		if l.logger != nil {
			l.logger.ErrorContext(ctx, "activity logging failed",
				"event_type", string(action.EventType),
				"event_scope", string(action.EventScope),
				"user_id", action.User.ID,
				"error", err,
			)
		}
		return false
	}
	return logged
}

// field reads a context-data value as a string. Missing fields surface as
// blank substitutions in the message, not as errors.
func field(action activity.UserAction, key string) string {
	value, ok := action.ContextData[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
