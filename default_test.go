package props

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSetDefaultRejectsNil(t *testing.T) {
	if _, err := SetDefault(nil); !errors.Is(err, ErrNilRegistry) {
		t.Fatalf("expected ErrNilRegistry, got %v", err)
	}
}

func TestDefaultForwarders(t *testing.T) {
	r := New(WithAnchor(map[string]string{"k": "anchor"}))
	previous, err := SetDefault(r)
	if err != nil {
		t.Fatalf("set default: %v", err)
	}
	t.Cleanup(func() {
		if previous != nil {
			_, _ = SetDefault(previous)
		}
	})
	if Default() != r {
		t.Fatalf("expected Default to return the installed registry")
	}

	ctx := testPathContext(t)
	err = WithScope(ctx, func(ctx context.Context) error {
		Set(ctx, "k", "scoped")
		if GetOr(ctx, "k", "") != "scoped" || !Has(ctx, "k") {
			t.Fatalf("expected scoped write through forwarders")
		}
		if err := Load(ctx, strings.NewReader("loaded=1\n")); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := Store(ctx, &buf, ""); err != nil {
			return err
		}
		if !strings.Contains(buf.String(), "loaded") {
			t.Fatalf("expected stored text to include loaded key, got %q", buf.String())
		}
		Remove(ctx, "loaded")
		if len(Keys(ctx)) != 1 {
			t.Fatalf("expected one key, got %v", Keys(ctx))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("with scope: %v", err)
	}
	if value, _ := Get(ctx, "k"); value != "anchor" {
		t.Fatalf("expected anchor value after scope, got %q", value)
	}

	EnterScope(ctx)
	Clear(ctx)
	if len(Keys(ctx)) != 0 {
		t.Fatalf("expected cleared scope")
	}
	if err := ExitScope(ctx); err != nil {
		t.Fatalf("exit: %v", err)
	}

	child, release := Fork(ctx)
	Set(child, "k", "child")
	release()
	<-Go(ctx, func(ctx context.Context) { Set(ctx, "k", "goroutine") })
	if value, _ := Get(ctx, "k"); value != "anchor" {
		t.Fatalf("expected forks isolated from caller, got %q", value)
	}
}

// testPathContext returns a context on a path private to t.
func testPathContext(t *testing.T) context.Context {
	t.Helper()
	ctx := ContextWithPath(context.Background(), PathID("test-"+t.Name()))
	t.Cleanup(func() { Default().Release(ctx) })
	return ctx
}
