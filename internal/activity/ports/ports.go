// Package ports declares the outbound interfaces of the activity pipeline
// so services depend on behavior, not on concrete stores.
package ports

import (
	"context"

	"vigil/internal/activity"
	"vigil/internal/settings"
)

// EventStore is the durable, append-only activity stream. Append failures
// propagate to the caller; there is no retry contract at this layer.
type EventStore interface {
	Append(ctx context.Context, event activity.StreamEvent) error
}

// SettingsProvider re-exports the settings lookup so pipeline packages do
// not import the settings implementations directly.
type SettingsProvider = settings.Provider

// ReadCache is the presence cache consulted before logging knowledge
// reads.
type ReadCache interface {
	Has(identifier string) bool
	Set(identifier string)
}
