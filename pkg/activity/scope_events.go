package activity

import (
	"strings"
	"time"
)

const (
	VerbScopeEntered = "scope.entered"
	VerbScopeExited  = "scope.exited"
	VerbScopeForked  = "scope.forked"
	VerbPathReleased = "path.released"

	ObjectTypeScope = "scope"
	ObjectTypePath  = "path"
)

// ScopeEventInput describes the common fields for scope lifecycle events.
type ScopeEventInput struct {
	ActorID        string
	UserID         string
	TenantID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any

	Path          string
	ParentPath    string
	ScopeID       string
	ParentScopeID string
	Kind          string
	Label         string
	Depth         int
	SnapshotID    string
	OccurredAt    time.Time
}

// BuildScopeEnteredEvent constructs an event for a scope opened on a path.
func BuildScopeEnteredEvent(input ScopeEventInput) Event {
	return buildScopeEvent(VerbScopeEntered, ObjectTypeScope, input)
}

// BuildScopeExitedEvent constructs an event for a scope closed on a path.
func BuildScopeExitedEvent(input ScopeEventInput) Event {
	return buildScopeEvent(VerbScopeExited, ObjectTypeScope, input)
}

// BuildScopeForkedEvent constructs an event for a path spawned from another.
func BuildScopeForkedEvent(input ScopeEventInput) Event {
	return buildScopeEvent(VerbScopeForked, ObjectTypeScope, input)
}

// BuildPathReleasedEvent constructs an event for a path whose binding was
// dropped.
func BuildPathReleasedEvent(input ScopeEventInput) Event {
	return buildScopeEvent(VerbPathReleased, ObjectTypePath, input)
}

func buildScopeEvent(verb, objectType string, input ScopeEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		metadata = ensureMetadata(metadata)
		metadata[key] = value
	}
	if path := strings.TrimSpace(input.Path); path != "" {
		set("path", path)
	}
	if parent := strings.TrimSpace(input.ParentPath); parent != "" {
		set("parent_path", parent)
	}
	if input.ParentScopeID != "" {
		set("parent_scope_id", input.ParentScopeID)
	}
	if input.Kind != "" {
		set("scope_kind", input.Kind)
	}
	if input.Label != "" {
		set("scope_label", input.Label)
	}
	if input.SnapshotID != "" {
		set("snapshot_id", input.SnapshotID)
	}
	if input.ScopeID != "" || input.Path != "" {
		set("scope_depth", input.Depth)
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.ScopeID)
	if objectType == ObjectTypePath || objectID == "" {
		if path := strings.TrimSpace(input.Path); path != "" {
			objectID = path
		}
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:           verb,
		ActorID:        strings.TrimSpace(input.ActorID),
		UserID:         strings.TrimSpace(input.UserID),
		TenantID:       strings.TrimSpace(input.TenantID),
		ObjectType:     objectType,
		ObjectID:       objectID,
		Path:           strings.TrimSpace(input.Path),
		Channel:        strings.TrimSpace(input.Channel),
		DefinitionCode: strings.TrimSpace(input.DefinitionCode),
		Recipients:     recipients,
		Metadata:       metadata,
		OccurredAt:     input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
