package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/activity"
	"vigil/internal/activity/readcache"
	"vigil/internal/activity/service"
	"vigil/internal/schema"
	"vigil/internal/settings"
	"vigil/internal/stream/memory"
)

const testUserID = "user-1"

func newPipeline(t *testing.T, store *memory.Store, cache *readcache.Cache) *Listener {
	t.Helper()
	provider := settings.NewMemoryProvider(settings.Settings{
		EnterpriseEdition:      "licensed",
		ActivityListenersUsers: []string{testUserID},
	})
	svc, err := service.New(provider, store)
	require.NoError(t, err)
	return New(svc, cache, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func queryAction(eventType activity.EventType, scope activity.EventScope, access activity.EventAccess, data map[string]any) activity.UserAction {
	return activity.UserAction{
		User: activity.User{
			ID:     testUserID,
			Origin: activity.Origin{Socket: activity.SocketQuery, UserID: testUserID},
		},
		EventType:   eventType,
		EventScope:  scope,
		EventAccess: access,
		ContextData: data,
	}
}

func TestNext_LoginSuccess(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), queryAction(
		activity.EventTypeAuthentication, activity.ScopeLogin, activity.AccessAdministration,
		map[string]any{"provider": "saml"},
	))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, activity.ScopeLogin, events[0].EventScope)
	assert.Equal(t, "login from provider saml", events[0].Message)
	assert.Equal(t, activity.StatusSuccess, events[0].Status)
}

func TestNext_LoginFailure(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	action := queryAction(
		activity.EventTypeAuthentication, activity.ScopeLogin, activity.AccessAdministration,
		map[string]any{"username": "alice"},
	)
	action.Status = activity.StatusError
	l.Next(context.Background(), action)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "detects login failure for alice", events[0].Message)
	assert.Equal(t, activity.StatusError, events[0].Status)
}

func TestNext_Logout(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), queryAction(
		activity.EventTypeAuthentication, activity.ScopeLogout, activity.AccessAdministration, nil,
	))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "logout", events[0].Message)
}

func TestNext_InternalUserNeverTracked(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	action := queryAction(
		activity.EventTypeAuthentication, activity.ScopeLogin, activity.AccessAdministration,
		map[string]any{"provider": "saml"},
	)
	action.User.ID = activity.SystemUserID
	l.Next(context.Background(), action)

	assert.Empty(t, store.Events())
}

func TestNext_NonQuerySocketExcluded(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	action := queryAction(
		activity.EventTypeAuthentication, activity.ScopeLogout, activity.AccessAdministration, nil,
	)
	action.User.Origin.Socket = "subscription"
	l.Next(context.Background(), action)

	assert.Empty(t, store.Events())
}

func TestNext_UnauthorizedReadAndMutation(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), queryAction(
		activity.EventTypeRead, activity.ScopeUnauthorized, activity.AccessAdministration, nil,
	))
	l.Next(context.Background(), queryAction(
		activity.EventTypeMutation, activity.ScopeUnauthorized, activity.AccessAdministration, nil,
	))

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "tries an unauthorized read", events[0].Message)
	assert.Equal(t, "tries an unauthorized mutation", events[1].Message)
}

func readAction(entityID, entityType, entityName string) activity.UserAction {
	return queryAction(activity.EventTypeRead, activity.ScopeRead, activity.AccessExtended, map[string]any{
		"id":          entityID,
		"entity_type": entityType,
		"entity_name": entityName,
	})
}

func TestNext_ReadKnowledgeEntity(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), readAction("report--42", schema.EntityTypeReport, "APT Report"))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "reads APT Report (Report)", events[0].Message)
}

func TestNext_ReadUntrackedEntityIgnored(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), readAction("settings--1", schema.EntityTypeSettings, "Platform Settings"))
	l.Next(context.Background(), readAction("dash--1", "Dashboard", "Main"))

	assert.Empty(t, store.Events())
}

func TestNext_ReadDeduplicatedWithinWindow(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	action := readAction("report--42", schema.EntityTypeReport, "APT Report")
	l.Next(context.Background(), action)
	l.Next(context.Background(), action)

	assert.Len(t, store.Events(), 1)
}

func TestNext_ReadLoggedAgainAfterExpiry(t *testing.T) {
	store := memory.NewStore()
	cache := readcache.NewWithTTL(10, 30*time.Millisecond)
	l := newPipeline(t, store, cache)

	action := readAction("report--42", schema.EntityTypeReport, "APT Report")
	l.Next(context.Background(), action)
	time.Sleep(60 * time.Millisecond)
	l.Next(context.Background(), action)

	assert.Len(t, store.Events(), 2)
}

func TestNext_ReadPerUserDedup(t *testing.T) {
	store := memory.NewStore()
	provider := settings.NewMemoryProvider(settings.Settings{
		EnterpriseEdition:      "licensed",
		ActivityListenersUsers: []string{"user-1", "user-2"},
	})
	svc, err := service.New(provider, store)
	require.NoError(t, err)
	l := New(svc, readcache.New())

	action := readAction("report--42", schema.EntityTypeReport, "APT Report")
	l.Next(context.Background(), action)

	other := readAction("report--42", schema.EntityTypeReport, "APT Report")
	other.User.ID = "user-2"
	l.Next(context.Background(), other)

	assert.Len(t, store.Events(), 2)
}

func TestNext_ReadNotMarkedSeenWhenPersistFails(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	store.FailWith(errors.New("stream unavailable"))
	action := readAction("report--42", schema.EntityTypeReport, "APT Report")
	l.Next(context.Background(), action)
	assert.Empty(t, store.Events())

	// Once the sink recovers the same read is logged, not suppressed.
	store.FailWith(nil)
	l.Next(context.Background(), action)
	assert.Len(t, store.Events(), 1)
}

func TestNext_ReadNotMarkedSeenWhenGated(t *testing.T) {
	store := memory.NewStore()
	provider := settings.NewMemoryProvider(settings.Settings{EnterpriseEdition: "licensed"})
	svc, err := service.New(provider, store)
	require.NoError(t, err)
	cache := readcache.New()
	l := New(svc, cache)

	// Extended read from a user that is not listening: dropped, and the
	// cache must stay empty so a later opt-in starts recording.
	l.Next(context.Background(), readAction("report--42", schema.EntityTypeReport, "APT Report"))
	assert.Empty(t, store.Events())
	assert.Equal(t, 0, cache.Len())
}

func TestNext_FileDownload(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), queryAction(
		activity.EventTypeFile, activity.ScopeRead, activity.AccessExtended,
		map[string]any{"file_name": "report.pdf", "entity_name": "Campaign X"},
	))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "downloads from Campaign X the file report.pdf", events[0].Message)
}

func TestNext_FileCreateMessageVariants(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	data := map[string]any{
		"file_name":   "feed.json",
		"entity_name": "Campaign X",
		"entity_type": schema.EntityTypeCampaign,
		"path":        "/storage/import/global/feed.json",
	}
	l.Next(context.Background(), queryAction(
		activity.EventTypeFile, activity.ScopeCreate, activity.AccessExtended, data,
	))

	pending := map[string]any{
		"file_name":   "draft.json",
		"entity_name": "Campaign X",
		"entity_type": schema.EntityTypeCampaign,
		"path":        "/storage/import/pending/draft.json",
	}
	l.Next(context.Background(), queryAction(
		activity.EventTypeFile, activity.ScopeCreate, activity.AccessExtended, pending,
	))

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "adds feed.json in files for Campaign X (Campaign)", events[0].Message)
	assert.Equal(t, "creates Analyst Workbench draft.json for Campaign X (Campaign)", events[1].Message)
}

func TestNext_FileDeleteMessageVariants(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	data := map[string]any{
		"file_name":   "feed.json",
		"entity_name": "Campaign X",
		"entity_type": schema.EntityTypeCampaign,
		"path":        "/storage/import/global/feed.json",
	}
	l.Next(context.Background(), queryAction(
		activity.EventTypeFile, activity.ScopeDelete, activity.AccessExtended, data,
	))

	data["path"] = "/storage/import/pending/feed.json"
	l.Next(context.Background(), queryAction(
		activity.EventTypeFile, activity.ScopeDelete, activity.AccessExtended, data,
	))

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "removes feed.json in files for Campaign X (Campaign)", events[0].Message)
	assert.Equal(t, "removes Analyst Workbench feed.json for Campaign X (Campaign)", events[1].Message)
}

func TestNext_CommandMessages(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), queryAction(
		activity.EventTypeCommand, activity.ScopeSearch, activity.AccessExtended, nil,
	))
	l.Next(context.Background(), queryAction(
		activity.EventTypeCommand, activity.ScopeExport, activity.AccessExtended,
		map[string]any{"format": "application/pdf", "entity_name": "Campaign X"},
	))
	l.Next(context.Background(), queryAction(
		activity.EventTypeCommand, activity.ScopeImport, activity.AccessExtended,
		map[string]any{"file_mime": "text/csv", "file_name": "iocs.csv", "entity_name": "Campaign X"},
	))
	l.Next(context.Background(), queryAction(
		activity.EventTypeCommand, activity.ScopeEnrich, activity.AccessExtended,
		map[string]any{"connector_name": "virustotal", "entity_name": "Campaign X"},
	))

	events := store.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "asks for advanced search", events[0].Message)
	assert.Equal(t, "asks for application/pdf export in Campaign X", events[1].Message)
	assert.Equal(t, "asks for text/csv import of iocs.csv in Campaign X", events[2].Message)
	assert.Equal(t, "asks for virustotal enrichment in Campaign X", events[3].Message)
}

func TestNext_MutationMessageVerbatim(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	for _, scope := range []activity.EventScope{activity.ScopeCreate, activity.ScopeUpdate, activity.ScopeDelete} {
		action := queryAction(activity.EventTypeMutation, scope, activity.AccessExtended, nil)
		action.Message = "Alice created Report X"
		l.Next(context.Background(), action)
	}

	events := store.Events()
	require.Len(t, events, 3)
	for _, event := range events {
		assert.Equal(t, "Alice created Report X", event.Message)
	}
}

func TestNext_UnknownScopeIsNoOp(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), queryAction(
		activity.EventTypeCommand, activity.EventScope("replay"), activity.AccessExtended, nil,
	))
	l.Next(context.Background(), queryAction(
		activity.EventType("telemetry"), activity.ScopeRead, activity.AccessExtended, nil,
	))

	assert.Empty(t, store.Events())
}

func TestNext_MissingContextFieldsDegradeToBlank(t *testing.T) {
	store := memory.NewStore()
	l := newPipeline(t, store, readcache.New())

	l.Next(context.Background(), queryAction(
		activity.EventTypeCommand, activity.ScopeExport, activity.AccessExtended, nil,
	))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "asks for  export in ", events[0].Message)
}
