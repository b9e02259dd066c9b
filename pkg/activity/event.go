package activity

import (
	"strings"
	"time"
)

// Event is one scope lifecycle occurrence handed to hooks. Identifiers are
// plain strings so each hook can map them onto its own ID types.
type Event struct {
	Verb       string
	ObjectType string
	ObjectID   string
	// Path is the execution path the transition happened on.
	Path           string
	ActorID        string
	UserID         string
	TenantID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Valid reports whether the event names a verb and the object it acted on.
func (e Event) Valid() bool {
	return strings.TrimSpace(e.Verb) != "" &&
		strings.TrimSpace(e.ObjectType) != "" &&
		strings.TrimSpace(e.ObjectID) != ""
}

// Normalize returns a trimmed copy whose metadata and recipients no longer
// alias the receiver's. A zero OccurredAt becomes the current time.
func (e Event) Normalize() Event {
	out := e
	for _, field := range []*string{
		&out.Verb, &out.ObjectType, &out.ObjectID, &out.Path,
		&out.ActorID, &out.UserID, &out.TenantID, &out.Channel, &out.DefinitionCode,
	} {
		*field = strings.TrimSpace(*field)
	}
	out.Metadata = cloneMap(e.Metadata)
	out.Recipients = nil
	if len(e.Recipients) > 0 {
		out.Recipients = append([]string(nil), e.Recipients...)
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
