package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-props/pkg/activity"
	"github.com/goliatone/go-props/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsScopeEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	event := activity.BuildScopeEnteredEvent(activity.ScopeEventInput{
		ActorID:        actorID.String(),
		Channel:        "props",
		DefinitionCode: "scope:enter",
		Recipients:     []string{"ci@example.com"},
		Path:           "main",
		ScopeID:        "scope-7",
		Kind:           "scope",
		Depth:          1,
		OccurredAt:     now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.Verb != activity.VerbScopeEntered || record.ObjectType != activity.ObjectTypeScope || record.ObjectID != "scope-7" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "props" {
		t.Fatalf("expected channel props got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["definition_code"] != "scope:enter" {
		t.Fatalf("expected definition_code metadata got %v", record.Data["definition_code"])
	}
	if record.Data["path"] != "main" {
		t.Fatalf("expected path metadata got %v", record.Data["path"])
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 || recipients[0] != "ci@example.com" {
		t.Fatalf("expected recipients metadata got %v", record.Data["recipients"])
	}
}

func TestHookNotifyFallsBackToConfiguredActor(t *testing.T) {
	sink := &recordingSink{}
	runner := uuid.New()
	hook := usersink.Hook{Sink: sink, Actor: runner}

	err := hook.Notify(context.Background(), activity.BuildPathReleasedEvent(activity.ScopeEventInput{
		ActorID: "not-a-uuid",
		Path:    "p-1",
	}))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].ActorID != runner {
		t.Fatalf("expected configured actor, got %+v", sink.records)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbScopeExited,
		ObjectType: activity.ObjectTypeScope,
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookWithoutSinkIsNoop(t *testing.T) {
	hook := usersink.Hook{}
	if err := hook.Notify(context.Background(), activity.Event{Verb: "x", ObjectType: "y", ObjectID: "z"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestHookRecordKeepsEmitterData(t *testing.T) {
	hook := usersink.Hook{}
	record, ok := hook.Record(activity.Event{
		Verb:       activity.VerbScopeForked,
		ObjectType: activity.ObjectTypeScope,
		ObjectID:   "f-1",
		Path:       "child",
		Metadata:   map[string]any{"path": "override", "depth": 2},
	})
	if !ok {
		t.Fatalf("expected record for valid event")
	}
	if record.Data["path"] != "override" || record.Data["depth"] != 2 {
		t.Fatalf("expected emitter data to win, got %v", record.Data)
	}
	if _, ok := hook.Record(activity.Event{Verb: "x"}); ok {
		t.Fatalf("expected invalid event to be rejected")
	}
}
