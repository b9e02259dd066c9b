package props

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParsePropertiesSyntax(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"! bang comment",
		"app.name=demo",
		"app.port : 8080",
		"region eu",
		`greeting=hello \`,
		`    world`,
		`ref=${app.name}`,
		"",
	}, "\n")

	entries, err := ParseProperties([]byte(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Entry{
		{Key: "app.name", Value: "demo"},
		{Key: "app.port", Value: "8080"},
		{Key: "region", Value: "eu"},
		{Key: "greeting", Value: "hello world"},
		{Key: "ref", Value: "${app.name}"},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}
}

func TestRegistryStoreLoadRoundTrip(t *testing.T) {
	r := New(WithAnchor(nil))
	ctx := context.Background()
	r.Set(ctx, "plain", "value")
	r.Set(ctx, "url", "http://host/?a=b")
	r.Set(ctx, "unicode", "héllo")
	r.Set(ctx, "#hash", "x")
	r.Set(ctx, "!bang", "y")
	r.Set(ctx, "eq=key", "v")
	r.Set(ctx, "colon:key", "c")
	r.Set(ctx, "spaced key", "s")
	r.Set(ctx, "lead", "   padded")
	r.Set(ctx, "tabbed", "\tfirst")
	r.Set(ctx, "trail", "end  ")
	r.Set(ctx, "multi", "line one\nline two")
	r.Set(ctx, "back\\slash", `C:\dir\`)
	r.Set(ctx, "sep", "=starts with separator")

	var buf bytes.Buffer
	if err := r.Store(ctx, &buf, "saved by test\nsecond line"); err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# saved by test\n# second line\n") {
		t.Fatalf("expected comment header, got %q", buf.String())
	}

	other := r.NewPath(ctx)
	r.Clear(other)
	if err := r.Load(other, &buf); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := r.Map(other), r.Map(ctx); len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	} else {
		for key, value := range want {
			if got[key] != value {
				t.Fatalf("key %q: expected %q, got %q", key, value, got[key])
			}
		}
	}
	if len(r.Map(ctx)) != 14 {
		t.Fatalf("expected every key to be set, got %v", r.Map(ctx))
	}
}

func TestFormatPropertiesEscapes(t *testing.T) {
	var buf bytes.Buffer
	err := FormatProperties(&buf, []Entry{
		{Key: "#hash", Value: "x"},
		{Key: "eq=key", Value: "  v"},
		{Key: "a b", Value: "tail#not comment"},
	}, "")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "\\#hash = x\neq\\=key = \\ \\ v\na\\ b = tail#not comment\n"
	if buf.String() != want {
		t.Fatalf("unexpected output\nwant: %q\n got: %q", want, buf.String())
	}
}

func TestRegistryLoadMergesIntoCurrentScope(t *testing.T) {
	r := New(WithAnchor(map[string]string{"keep": "1", "override": "old"}))
	ctx := context.Background()

	err := r.WithScope(ctx, func(ctx context.Context) error {
		if err := r.LoadString(ctx, "override=new\nextra=2\n"); err != nil {
			return err
		}
		if r.GetOr(ctx, "keep", "") != "1" || r.GetOr(ctx, "override", "") != "new" || r.GetOr(ctx, "extra", "") != "2" {
			t.Fatalf("unexpected merged view %v", r.Map(ctx))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("with scope: %v", err)
	}
	if r.GetOr(ctx, "override", "") != "old" || r.Has(ctx, "extra") {
		t.Fatalf("expected loaded keys gone after exit, got %v", r.Map(ctx))
	}
}

func TestRegistryStringRendersView(t *testing.T) {
	r := New(WithAnchor(map[string]string{"k": "v"}))
	out := r.String(context.Background())
	entries, err := ParseProperties([]byte(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "k" || entries[0].Value != "v" {
		t.Fatalf("unexpected render %q", out)
	}
}
