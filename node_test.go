package props

import (
	"errors"
	"testing"
	"time"
)

func TestScopeNodeResolveLiveSkipsDeadNodes(t *testing.T) {
	anchor := AnchorFromMap(map[string]string{"k": "anchor"})
	now := time.Now()
	root := newScopeNode(nil, NodeRoot, NewSnapshot(Entry{Key: "k", Value: "root"}), scopeConfig{}, now)
	mid := newScopeNode(root, NodeScope, NewSnapshot(Entry{Key: "k", Value: "mid"}), scopeConfig{}, now)
	leaf := newScopeNode(mid, NodeScope, NewSnapshot(Entry{Key: "k", Value: "leaf"}), scopeConfig{}, now)

	if value, _ := leaf.resolveLive(anchor).Get("k"); value != "leaf" {
		t.Fatalf("expected leaf, got %q", value)
	}
	leaf.markDead()
	mid.markDead()
	if value, _ := leaf.resolveLive(anchor).Get("k"); value != "root" {
		t.Fatalf("expected resolution to skip dead nodes, got %q", value)
	}
	if leaf.head() != root {
		t.Fatalf("expected head to be root")
	}
	if leaf.depth != 2 {
		t.Fatalf("expected depth 2, got %d", leaf.depth)
	}
}

func TestScopeNodeFallsBackToAnchor(t *testing.T) {
	anchor := AnchorFromMap(map[string]string{"k": "anchor"})
	node := newScopeNode(nil, NodeScope, NewSnapshot(), scopeConfig{}, time.Now())
	node.markDead()
	if node.head() != nil {
		t.Fatalf("expected no live head")
	}
	if value, _ := node.resolveLive(anchor).Get("k"); value != "anchor" {
		t.Fatalf("expected anchor fallback, got %q", value)
	}
}

func TestScopeNodeMarkDeadIsIdempotent(t *testing.T) {
	node := newScopeNode(nil, NodeScope, NewSnapshot(), scopeConfig{}, time.Now())
	if !node.markDead() {
		t.Fatalf("expected first markDead to transition")
	}
	if node.markDead() {
		t.Fatalf("expected second markDead to be a no-op")
	}
	if node.slot.Load() != nil {
		t.Fatalf("expected node to stay dead")
	}
}

func TestBindingTableLazyRootAndExit(t *testing.T) {
	anchor := AnchorFromMap(map[string]string{"k": "anchor"})
	bindings := newBindingTable()
	now := time.Now()

	root := bindings.current("p", anchor, now)
	if root.kind != NodeRoot {
		t.Fatalf("expected lazily created root, got %s", root.kind)
	}
	root.slot.Load().Set("k", "changed")
	if value, _ := anchor.Get("k"); value != "anchor" {
		t.Fatalf("expected anchor untouched, got %q", value)
	}

	scope := bindings.enter("p", anchor, scopeConfig{label: "s"}, now)
	if scope.parent != root || bindings.current("p", anchor, now) != scope {
		t.Fatalf("expected enter to bind a child of root")
	}

	exited, clamped, err := bindings.exit("p", anchor, false, now)
	if err != nil || clamped || exited != scope {
		t.Fatalf("unexpected exit result node=%v clamped=%t err=%v", exited, clamped, err)
	}
	if scope.slot.Load() != nil {
		t.Fatalf("expected exited scope to be dead")
	}
	if bindings.current("p", anchor, now) != root {
		t.Fatalf("expected path rebound to root")
	}

	if _, _, err := bindings.exit("p", anchor, false, now); !errors.Is(err, ErrScopeUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
	node, clamped, err := bindings.exit("p", anchor, true, now)
	if err != nil || !clamped || node != root {
		t.Fatalf("expected clamped no-op, got node=%v clamped=%t err=%v", node, clamped, err)
	}
}

func TestBindingTableForkAndRelease(t *testing.T) {
	anchor := NewAnchor()
	bindings := newBindingTable()
	now := time.Now()

	bindings.current("parent", anchor, now).slot.Load().Set("k", "v")
	child := bindings.fork("parent", "child", anchor, scopeConfig{}, now)
	if child.kind != NodeFork || child.depth != 1 {
		t.Fatalf("unexpected fork node kind=%s depth=%d", child.kind, child.depth)
	}
	if value, _ := child.resolveLive(anchor).Get("k"); value != "v" {
		t.Fatalf("expected fork to copy parent view, got %q", value)
	}
	if bindings.size() != 2 || len(bindings.paths()) != 2 {
		t.Fatalf("expected two bound paths")
	}

	if _, _, err := bindings.exit("child", anchor, false, now); !errors.Is(err, ErrScopeUnderflow) {
		t.Fatalf("expected exit on fork node to underflow, got %v", err)
	}

	if _, ok := bindings.release("child"); !ok {
		t.Fatalf("expected release to find child")
	}
	if _, ok := bindings.nodes["child"]; ok {
		t.Fatalf("expected child binding dropped")
	}
	if _, ok := bindings.release("child"); ok {
		t.Fatalf("expected second release to be a no-op")
	}
}
