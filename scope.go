package props

import "time"

// NodeKind records how a scope node came to exist.
type NodeKind string

const (
	// NodeRoot is the lazily created node seeded from the anchor.
	NodeRoot NodeKind = "root"
	// NodeScope is created by EnterScope and removed by ExitScope.
	NodeScope NodeKind = "scope"
	// NodeFork is the initial node of a path spawned from another path.
	NodeFork NodeKind = "fork"
)

// Scope describes a node of the scope tree as seen from one path. It is a
// detached value; holding it does not keep the node alive.
type Scope struct {
	ID         string         `json:"id"`
	Path       PathID         `json:"path"`
	Kind       NodeKind       `json:"kind"`
	Label      string         `json:"label,omitempty"`
	Depth      int            `json:"depth"`
	Live       bool           `json:"live"`
	SnapshotID string         `json:"snapshot_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ScopeOption configures metadata on scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope, typically the name
// of the test or unit of work that entered it.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches arbitrary metadata to the scope. The map is copied
// so later mutation by the caller is not observed.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

func applyScopeOptions(opts []ScopeOption) scopeConfig {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

func (s Scope) isZero() bool {
	return s.ID == ""
}

// binding exposes the scope to rule evaluators.
func (s Scope) binding() map[string]any {
	if s.isZero() {
		return nil
	}
	out := map[string]any{
		"id":    s.ID,
		"path":  string(s.Path),
		"kind":  string(s.Kind),
		"label": s.Label,
		"depth": s.Depth,
	}
	if len(s.Metadata) > 0 {
		out["metadata"] = copyMetadata(s.Metadata)
	}
	return out
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
