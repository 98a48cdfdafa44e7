// Package activity defines the action and event model for the activity
// audit pipeline. Raw user actions come in from the listener registry,
// zero-or-one normalized stream events come out the other end.
package activity

// EventVersion is the schema version stamped on every persisted event.
const EventVersion = "1"

// EventType classifies the broad kind of user action.
type EventType string

const (
	EventTypeAuthentication EventType = "authentication"
	EventTypeRead           EventType = "read"
	EventTypeMutation       EventType = "mutation"
	EventTypeFile           EventType = "file"
	EventTypeCommand        EventType = "command"
)

// EventScope narrows an EventType to a concrete operation. Valid values
// depend on the type; unknown combinations are ignored by the listener.
type EventScope string

const (
	ScopeLogin        EventScope = "login"
	ScopeLogout       EventScope = "logout"
	ScopeRead         EventScope = "read"
	ScopeUnauthorized EventScope = "unauthorized"
	ScopeCreate       EventScope = "create"
	ScopeUpdate       EventScope = "update"
	ScopeDelete       EventScope = "delete"
	ScopeSearch       EventScope = "search"
	ScopeExport       EventScope = "export"
	ScopeImport       EventScope = "import"
	ScopeEnrich       EventScope = "enrich"
)

// EventAccess is the visibility tier of an action. Extended events require
// the acting user to be on the listening allow-list; administration events
// are additionally mirrored to the audit log.
type EventAccess string

const (
	AccessExtended       EventAccess = "extended"
	AccessAdministration EventAccess = "administration"
)

// Status is the outcome of the action. Empty defaults to success.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// SocketQuery is the primary interactive transport. Actions arriving over
// any other socket (subscriptions, playground) are not listened to.
const SocketQuery = "query"

// Origin describes where an action came from. It is forwarded verbatim
// into the emitted event.
type Origin struct {
	Socket    string `json:"socket"`
	IP        string `json:"ip,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Referer   string `json:"referer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// User is the acting identity attached to an action.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Origin Origin `json:"origin"`
}

// UserAction is the immutable input to the pipeline. ContextData is an
// open, scope-dependent mapping; the listener reads message fields out of
// it and the redactor masks sensitive keys before emission.
type UserAction struct {
	User        User           `json:"user"`
	EventType   EventType      `json:"event_type"`
	EventScope  EventScope     `json:"event_scope"`
	EventAccess EventAccess    `json:"event_access"`
	Status      Status         `json:"status,omitempty"`
	ContextData map[string]any `json:"context_data,omitempty"`
	// Message is precomputed upstream for mutation create/update/delete and
	// used verbatim.
	Message string `json:"message,omitempty"`
}

// StreamEvent is the normalized envelope persisted to the activity stream.
// Data never contains a sensitive field value in plaintext.
type StreamEvent struct {
	Version     string         `json:"version"`
	Type        EventType      `json:"type"`
	EventAccess EventAccess    `json:"event_access"`
	EventScope  EventScope     `json:"event_scope"`
	Message     string         `json:"message"`
	Status      Status         `json:"status"`
	Origin      Origin         `json:"origin"`
	Data        map[string]any `json:"data"`
}

// Well-known internal identities. Their actions are never tracked.
const (
	SystemUserID     = "00000000-0000-4000-8000-000000000001"
	RetentionUserID  = "00000000-0000-4000-8000-000000000002"
	AutomationUserID = "00000000-0000-4000-8000-000000000003"
	RedactedUserID   = "00000000-0000-4000-8000-000000000004"
)

// InternalUsers indexes the internal identities by ID.
var InternalUsers = map[string]struct{}{
	SystemUserID:     {},
	RetentionUserID:  {},
	AutomationUserID: {},
	RedactedUserID:   {},
}

// IsInternalUser reports whether the given user ID belongs to a system
// identity rather than a real operator.
func IsInternalUser(id string) bool {
	_, ok := InternalUsers[id]
	return ok
}
