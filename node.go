package props

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// scopeNode is one vertex of the scope tree. The parent pointer is fixed at
// construction; only the snapshot slot changes, once, from live to dead.
type scopeNode struct {
	id        string
	parent    *scopeNode
	kind      NodeKind
	depth     int
	label     string
	metadata  map[string]any
	createdAt time.Time
	slot      atomic.Pointer[Snapshot]
}

func newScopeNode(parent *scopeNode, kind NodeKind, snapshot *Snapshot, cfg scopeConfig, now time.Time) *scopeNode {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	n := &scopeNode{
		id:        uuid.NewString(),
		parent:    parent,
		kind:      kind,
		depth:     depth,
		label:     cfg.label,
		metadata:  cfg.metadata,
		createdAt: now,
	}
	n.slot.Store(snapshot)
	return n
}

// head returns the nearest live node on the chain starting at n, or nil when
// every node up to the root has been marked dead.
func (n *scopeNode) head() *scopeNode {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.slot.Load() != nil {
			return cur
		}
	}
	return nil
}

// resolveLive returns the snapshot of the nearest live node, falling back to
// the anchor when none is live.
func (n *scopeNode) resolveLive(anchor *Anchor) *Snapshot {
	for cur := n; cur != nil; cur = cur.parent {
		if snapshot := cur.slot.Load(); snapshot != nil {
			return snapshot
		}
	}
	return anchor.snapshot
}

// markDead empties the slot. It reports whether this call did the transition;
// repeated calls are no-ops.
func (n *scopeNode) markDead() bool {
	return n.slot.Swap(nil) != nil
}

func (n *scopeNode) describe(path PathID) Scope {
	scope := Scope{
		ID:        n.id,
		Path:      path,
		Kind:      n.kind,
		Label:     n.label,
		Depth:     n.depth,
		Metadata:  copyMetadata(n.metadata),
		CreatedAt: n.createdAt,
	}
	if snapshot := n.slot.Load(); snapshot != nil {
		scope.Live = true
		scope.SnapshotID = snapshot.ID()
	}
	return scope
}
