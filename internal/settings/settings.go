// Package settings exposes the read-only platform settings the activity
// pipeline gates on. The pipeline never writes settings and never caches
// them beyond a single invocation.
package settings

import "context"

// Settings carries the enterprise feature flag and the extended-visibility
// listening allow-list. An empty EnterpriseEdition means the feature is
// disabled and nothing is recorded.
type Settings struct {
	EnterpriseEdition      string   `json:"enterprise_edition"`
	ActivityListenersUsers []string `json:"activity_listeners_users"`
}

// EnterpriseEnabled reports whether the enterprise feature flag is set.
func (s Settings) EnterpriseEnabled() bool {
	return s.EnterpriseEdition != ""
}

// IsUserListening reports whether the user opted in to extended listening.
func (s Settings) IsUserListening(userID string) bool {
	for _, id := range s.ActivityListenersUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Provider fetches the current settings. Implementations are expected to
// be cheap enough to call once per action; fetch failures are fatal to
// that action's processing.
type Provider interface {
	Get(ctx context.Context) (Settings, error)
}
