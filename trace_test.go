package props

import (
	"context"
	"testing"
)

func TestTraceReportsLayers(t *testing.T) {
	r := New(WithAnchor(map[string]string{"k": "anchor"}))
	ctx := context.Background()

	r.Set(ctx, "k", "root")
	r.EnterScope(ctx, WithScopeLabel("outer"))
	r.EnterScope(ctx, WithScopeLabel("inner"))
	r.Remove(ctx, "k")

	trace := r.Trace(ctx, "k")
	if trace.Found || trace.Value != "" {
		t.Fatalf("expected removed key to resolve absent, got %+v", trace)
	}
	if len(trace.Layers) != 4 {
		t.Fatalf("expected inner, outer, root and anchor layers, got %d", len(trace.Layers))
	}
	inner, outer, root, anchor := trace.Layers[0], trace.Layers[1], trace.Layers[2], trace.Layers[3]
	if inner.Scope.Label != "inner" || !inner.Resolved || inner.Found {
		t.Fatalf("unexpected inner layer %+v", inner)
	}
	if outer.Scope.Label != "outer" || outer.Resolved || !outer.Found || outer.Value != "root" {
		t.Fatalf("unexpected outer layer %+v", outer)
	}
	if root.Scope.Kind != NodeRoot || root.Value != "root" {
		t.Fatalf("unexpected root layer %+v", root)
	}
	if !anchor.Anchor || anchor.Value != "anchor" || anchor.Resolved {
		t.Fatalf("unexpected anchor layer %+v", anchor)
	}

	if err := r.ExitScope(ctx); err != nil {
		t.Fatalf("exit: %v", err)
	}
	trace = r.Trace(ctx, "k")
	if !trace.Found || trace.Value != "root" || !trace.Layers[0].Resolved {
		t.Fatalf("expected outer layer to resolve after exit, got %+v", trace)
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	r := New(WithAnchor(map[string]string{"k": "v"}))
	ctx := ContextWithPath(context.Background(), "traced")

	trace := r.Trace(ctx, "k")
	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if decoded.Path != "traced" || decoded.Key != "k" || decoded.Value != "v" || !decoded.Found {
		t.Fatalf("unexpected decoded trace %+v", decoded)
	}
	if len(decoded.Layers) != len(trace.Layers) {
		t.Fatalf("expected %d layers, got %d", len(trace.Layers), len(decoded.Layers))
	}
	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
