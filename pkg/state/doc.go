// Package state defines the contracts for checkpointing property views: a
// Store saves and loads one value per Ref, with storage-owned Meta for
// provenance and optimistic concurrency.
//
// The root props package stays storage-agnostic. Registry.Checkpoint and
// Registry.Restore accept any Store[[]props.Entry]; MemoryStore is the
// in-process implementation used by tests, the CLI and examples.
//
// Data flow:
//
//	Registry view -> []Entry -> Store.Save -> msgpack record (+ farm ETag)
//	Store.Load -> []Entry -> Snapshot.Reset on the calling path's view
//
// Concurrency:
//
//	Meta.ETag is derived from the encoded value. Save and Mutate reject a
//	write whose Meta.ETag does not match the stored one with ErrETagMismatch;
//	an empty ETag skips the check.
package state
