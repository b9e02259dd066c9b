package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-props/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards scope lifecycle events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Actor is recorded when the event carries no parsable ActorID, typically
	// the identity of the test runner or service owning the registry.
	Actor uuid.UUID
}

// Notify logs the record for event. Invalid events are dropped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	record, ok := h.Record(event)
	if !ok {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record maps event onto an ActivityRecord. Path, definition code and
// recipients travel in Data since the record has no columns for them.
func (h Hook) Record(event activity.Event) (usertypes.ActivityRecord, bool) {
	if !event.Valid() {
		return usertypes.ActivityRecord{}, false
	}
	event = event.Normalize()

	actor := uuidOrNil(event.ActorID)
	if actor == uuid.Nil {
		actor = h.Actor
	}
	return usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     uuidOrNil(event.UserID),
		TenantID:   uuidOrNil(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       recordData(event),
		OccurredAt: event.OccurredAt,
	}, true
}

// recordData extends the already cloned metadata; keys set by the emitter
// win over the derived ones.
func recordData(event activity.Event) map[string]any {
	data := event.Metadata
	extra := map[string]any{}
	if event.Path != "" {
		extra["path"] = event.Path
	}
	if event.DefinitionCode != "" {
		extra["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		extra["recipients"] = event.Recipients
	}
	if len(extra) == 0 {
		return data
	}
	if data == nil {
		data = make(map[string]any, len(extra))
	}
	for key, value := range extra {
		if _, set := data[key]; !set {
			data[key] = value
		}
	}
	return data
}

func uuidOrNil(input string) uuid.UUID {
	if id, err := uuid.Parse(strings.TrimSpace(input)); err == nil {
		return id
	}
	return uuid.Nil
}
