package props

import (
	"context"
	"encoding/json"
)

// Trace captures how a key resolves on one path: every node on the path's
// chain, innermost first, followed by the anchor.
type Trace struct {
	Path   PathID       `json:"path"`
	Key    string       `json:"key"`
	Value  string       `json:"value,omitempty"`
	Found  bool         `json:"found"`
	Layers []Provenance `json:"layers"`
}

// Provenance details what one node held for the traced key. Dead nodes have
// no snapshot and never contribute a value. Resolved marks the layer reads
// are served from.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Anchor     bool   `json:"anchor,omitempty"`
	Value      string `json:"value,omitempty"`
	Found      bool   `json:"found"`
	Resolved   bool   `json:"resolved"`
}

// Trace walks ctx's path from its current node to the root and reports what
// each layer holds for key.
func (r *Registry) Trace(ctx context.Context, key string) Trace {
	path := pathOf(ctx)
	current := r.bindings.current(path, r.anchor, r.cfg.clock())
	trace := Trace{Path: path, Key: key}

	head := current.head()
	for node := current; node != nil; node = node.parent {
		layer := Provenance{Scope: node.describe(path), Resolved: node == head}
		if snapshot := node.slot.Load(); snapshot != nil {
			layer.SnapshotID = snapshot.ID()
			layer.Value, layer.Found = snapshot.Get(key)
		}
		if layer.Resolved {
			trace.Value, trace.Found = layer.Value, layer.Found
		}
		trace.Layers = append(trace.Layers, layer)
	}

	anchor := Provenance{Anchor: true, SnapshotID: r.anchor.snapshot.ID(), Resolved: head == nil}
	anchor.Value, anchor.Found = r.anchor.Get(key)
	if anchor.Resolved {
		trace.Value, trace.Found = anchor.Value, anchor.Found
	}
	trace.Layers = append(trace.Layers, anchor)
	return trace
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
