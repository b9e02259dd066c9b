package props

import (
	"sync"
	"time"
)

// bindingTable maps each path to its current scope node. A node only
// references its parent, so once a path is released (or rebinds) the chain
// it no longer reaches becomes garbage.
type bindingTable struct {
	mu    sync.RWMutex
	nodes map[PathID]*scopeNode
}

func newBindingTable() *bindingTable {
	return &bindingTable{nodes: map[PathID]*scopeNode{}}
}

// current returns the path's node, creating a root node seeded from the
// anchor the first time the path is seen.
func (b *bindingTable) current(path PathID, anchor *Anchor, now time.Time) *scopeNode {
	b.mu.RLock()
	node, ok := b.nodes[path]
	b.mu.RUnlock()
	if ok {
		return node
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked(path, anchor, now)
}

func (b *bindingTable) currentLocked(path PathID, anchor *Anchor, now time.Time) *scopeNode {
	if node, ok := b.nodes[path]; ok {
		return node
	}
	node := newScopeNode(nil, NodeRoot, anchor.snapshot.Clone(), scopeConfig{}, now)
	b.nodes[path] = node
	return node
}

// enter installs a new scope node below the path's current node holding a
// copy of its resolved view.
func (b *bindingTable) enter(path PathID, anchor *Anchor, cfg scopeConfig, now time.Time) *scopeNode {
	b.mu.Lock()
	defer b.mu.Unlock()
	parent := b.currentLocked(path, anchor, now)
	node := newScopeNode(parent, NodeScope, parent.resolveLive(anchor).Clone(), cfg, now)
	b.nodes[path] = node
	return node
}

// exit kills the path's current scope node and rebinds the path to its direct
// parent. Paths whose current node was not created by enter underflow: with
// clamp set the binding is left as is, otherwise errScopeUnderflow is
// returned.
func (b *bindingTable) exit(path PathID, anchor *Anchor, clamp bool, now time.Time) (*scopeNode, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	node := b.currentLocked(path, anchor, now)
	if node.kind != NodeScope || node.parent == nil {
		if clamp {
			return node, true, nil
		}
		return node, false, ErrScopeUnderflow
	}
	node.markDead()
	b.nodes[path] = node.parent
	return node, false, nil
}

// fork binds child to a new node below parent's current node holding a copy
// of parent's resolved view at this instant.
func (b *bindingTable) fork(parent, child PathID, anchor *Anchor, cfg scopeConfig, now time.Time) *scopeNode {
	b.mu.Lock()
	defer b.mu.Unlock()
	origin := b.currentLocked(parent, anchor, now)
	node := newScopeNode(origin, NodeFork, origin.resolveLive(anchor).Clone(), cfg, now)
	b.nodes[child] = node
	return node
}

// release drops the binding for path.
func (b *bindingTable) release(path PathID) (*scopeNode, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	node, ok := b.nodes[path]
	if ok {
		delete(b.nodes, path)
	}
	return node, ok
}

func (b *bindingTable) size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.nodes)
}

func (b *bindingTable) paths() []PathID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]PathID, 0, len(b.nodes))
	for path := range b.nodes {
		out = append(out, path)
	}
	return out
}
