package props

import (
	"context"

	"github.com/google/uuid"
)

// PathID identifies a logical execution path: a goroutine, or a group of
// goroutines sharing one context, that owns a position in the scope tree.
type PathID string

// MainPath is used for contexts that carry no explicit path.
const MainPath PathID = "main"

// NewPathID returns a fresh random path identifier.
func NewPathID() PathID {
	return PathID(uuid.NewString())
}

type pathKey struct{}

// ContextWithPath returns a copy of ctx bound to path.
func ContextWithPath(ctx context.Context, path PathID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, pathKey{}, path)
}

// PathFromContext returns the path bound to ctx, if any.
func PathFromContext(ctx context.Context) (PathID, bool) {
	if ctx == nil {
		return "", false
	}
	path, ok := ctx.Value(pathKey{}).(PathID)
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

func pathOf(ctx context.Context) PathID {
	if path, ok := PathFromContext(ctx); ok {
		return path
	}
	return MainPath
}
