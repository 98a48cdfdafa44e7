// Package schema holds the static entity-type catalog used to decide which
// reads are tracked. Knowledge entities are always listened to; internal
// entities only when explicitly on the tracked list.
package schema

// Core knowledge entity types.
const (
	EntityTypeReport        = "Report"
	EntityTypeIndicator     = "Indicator"
	EntityTypeMalware       = "Malware"
	EntityTypeCampaign      = "Campaign"
	EntityTypeThreatActor   = "Threat-Actor"
	EntityTypeIntrusionSet  = "Intrusion-Set"
	EntityTypeRelationship  = "Relationship"
	EntityTypeObservable    = "Observable"
	EntityTypeVulnerability = "Vulnerability"
)

// Internal entity types.
const (
	EntityTypeWorkspace = "Workspace"
	EntityTypeSettings  = "Settings"
	EntityTypeUser      = "User"
	EntityTypeGroup     = "Group"
	EntityTypeConnector = "Connector"
)

var knowledgeTypes = map[string]struct{}{
	EntityTypeReport:        {},
	EntityTypeIndicator:     {},
	EntityTypeMalware:       {},
	EntityTypeCampaign:      {},
	EntityTypeThreatActor:   {},
	EntityTypeIntrusionSet:  {},
	EntityTypeRelationship:  {},
	EntityTypeObservable:    {},
	EntityTypeVulnerability: {},
}

var internalTypes = map[string]struct{}{
	EntityTypeWorkspace: {},
	EntityTypeSettings:  {},
	EntityTypeUser:      {},
	EntityTypeGroup:     {},
	EntityTypeConnector: {},
}

// internalReadTypes is the allow-list of internal entities whose reads are
// tracked like knowledge reads.
var internalReadTypes = map[string]struct{}{
	EntityTypeWorkspace: {},
}

// IsKnowledgeType reports whether the entity type is part of the core
// knowledge model.
func IsKnowledgeType(entityType string) bool {
	_, ok := knowledgeTypes[entityType]
	return ok
}

// IsInternalType reports whether the entity type is an internal object.
func IsInternalType(entityType string) bool {
	_, ok := internalTypes[entityType]
	return ok
}

// IsTrackedRead reports whether a read of the given entity type should
// flow into the activity stream.
func IsTrackedRead(entityType string) bool {
	if IsKnowledgeType(entityType) {
		return true
	}
	if !IsInternalType(entityType) {
		return false
	}
	_, ok := internalReadTypes[entityType]
	return ok
}
