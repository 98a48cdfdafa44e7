package activity

import "vigil/internal/activity/redact"

// BuildEvent converts a raw action plus its derived message into the
// normalized stream envelope. Context data is redacted on a private copy;
// the action itself is left untouched for other listeners.
func BuildEvent(action UserAction, message string, sensitive map[string]struct{}) StreamEvent {
	status := action.Status
	if status == "" {
		status = StatusSuccess
	}
	return StreamEvent{
		Version:     EventVersion,
		Type:        action.EventType,
		EventAccess: action.EventAccess,
		EventScope:  action.EventScope,
		Message:     message,
		Status:      status,
		Origin:      action.User.Origin,
		Data:        redact.Clean(action.ContextData, sensitive),
	}
}
