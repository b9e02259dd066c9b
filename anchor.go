package props

import (
	"os"
	"strings"
	"sync"
	"time"
)

// Anchor is the read-only table every scope tree is seeded from. It is never
// mutated after construction; callers only ever receive copies.
type Anchor struct {
	snapshot   *Snapshot
	capturedAt time.Time
}

// NewAnchor builds an anchor holding entries in order.
func NewAnchor(entries ...Entry) *Anchor {
	return &Anchor{
		snapshot:   NewSnapshot(entries...),
		capturedAt: time.Now(),
	}
}

// AnchorFromMap builds an anchor from values.
func AnchorFromMap(values map[string]string) *Anchor {
	return &Anchor{
		snapshot:   SnapshotFromMap(values),
		capturedAt: time.Now(),
	}
}

// EnvironAnchor captures the current process environment.
func EnvironAnchor() *Anchor {
	return NewAnchor(ParseEnviron(os.Environ())...)
}

// ParseEnviron converts KEY=VALUE pairs into entries. Pairs without a
// separator map to an empty value.
func ParseEnviron(environ []string) []Entry {
	entries := make([]Entry, 0, len(environ))
	for _, pair := range environ {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries
}

var (
	interceptOnce sync.Once
	intercepted   *Anchor
)

// Intercept captures the process environment the first time it is called and
// returns the same anchor on every later call.
func Intercept() *Anchor {
	interceptOnce.Do(func() {
		intercepted = EnvironAnchor()
	})
	return intercepted
}

// Get reads key from the anchor.
func (a *Anchor) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	return a.snapshot.Get(key)
}

// Entries returns the anchor contents in order.
func (a *Anchor) Entries() []Entry {
	if a == nil {
		return nil
	}
	return a.snapshot.Entries()
}

// Len returns the number of anchored entries.
func (a *Anchor) Len() int {
	if a == nil {
		return 0
	}
	return a.snapshot.Len()
}

// Snapshot returns a mutable copy of the anchor.
func (a *Anchor) Snapshot() *Snapshot {
	if a == nil {
		return NewSnapshot()
	}
	return a.snapshot.Clone()
}

// CapturedAt reports when the anchor was taken.
func (a *Anchor) CapturedAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.capturedAt
}
