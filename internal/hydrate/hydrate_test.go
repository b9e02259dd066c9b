package hydrate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

type serviceSettings struct {
	Host     string        `env:"HOST" envDefault:"localhost"`
	Port     int           `env:"PORT"`
	Debug    bool          `env:"DEBUG"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Tags     []string      `env:"TAGS"`
	Hostname string
}

func TestDecoderDecodesTaggedFields(t *testing.T) {
	decoder := NewDecoder[serviceSettings]()
	result, err := decoder.Decode(Context{Path: "main"}, map[string]string{
		"PORT":  "8080",
		"DEBUG": "true",
		"TAGS":  "a,b",
	})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	expected := serviceSettings{
		Host:    "localhost",
		Port:    8080,
		Debug:   true,
		Timeout: 5 * time.Second,
		Tags:    []string{"a", "b"},
	}
	if !reflect.DeepEqual(expected, result) {
		t.Fatalf("decoded settings mismatch:\nwant: %#v\n got: %#v", expected, result)
	}
}

func TestDecoderAppliesPrefix(t *testing.T) {
	decoder := NewDecoder[serviceSettings](WithPrefix[serviceSettings]("APP_"))
	result, err := decoder.Decode(Context{Path: "main"}, map[string]string{
		"PORT":     "1",
		"APP_PORT": "2",
	})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if result.Port != 2 {
		t.Fatalf("expected prefixed port 2, got %d", result.Port)
	}
}

func TestDecoderRequiredReportsMissingKeys(t *testing.T) {
	decoder := NewDecoder[serviceSettings](WithRequired[serviceSettings]())
	_, err := decoder.Decode(Context{Path: "p1"}, map[string]string{})
	if err == nil {
		t.Fatalf("expected error for missing required keys")
	}
	if !strings.Contains(err.Error(), `hydrate: decode path "p1"`) {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestDecoderFieldNames(t *testing.T) {
	decoder := NewDecoder[serviceSettings](WithFieldNames[serviceSettings]())
	result, err := decoder.Decode(Context{}, map[string]string{"HOSTNAME": "box"})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if result.Hostname != "box" {
		t.Fatalf("expected hostname from field name, got %q", result.Hostname)
	}
}

func TestDecoderHooks(t *testing.T) {
	payload := map[string]string{"PORT": "80"}
	decoder := NewDecoder[serviceSettings](
		WithPreHook[serviceSettings](func(_ Context, current map[string]string) (map[string]string, error) {
			current["PORT"] = strings.Repeat(current["PORT"], 2)
			return current, nil
		}),
		WithPostHook[serviceSettings](func(ctx Context, settings *serviceSettings) error {
			if len(settings.Tags) == 0 {
				settings.Tags = []string{fmt.Sprintf("scope:%s", ctx.Scope)}
			}
			return nil
		}),
	)

	result, err := decoder.Decode(Context{Path: "main", Scope: "s1"}, payload)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if result.Port != 8080 {
		t.Fatalf("expected pre-hook to rewrite port, got %d", result.Port)
	}
	if !reflect.DeepEqual(result.Tags, []string{"scope:s1"}) {
		t.Fatalf("expected post-hook tag, got %#v", result.Tags)
	}
	if payload["PORT"] != "80" {
		t.Fatalf("decode must not mutate the caller's payload, got %q", payload["PORT"])
	}
}

func TestDecoderHookErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	decoder := NewDecoder[serviceSettings](
		WithPreHook[serviceSettings](func(Context, map[string]string) (map[string]string, error) {
			return nil, boom
		}),
	)
	_, err := decoder.Decode(Context{Path: "main"}, map[string]string{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped hook error, got %v", err)
	}

	decoder = NewDecoder[serviceSettings](
		WithPostHook[serviceSettings](func(Context, *serviceSettings) error {
			return boom
		}),
	)
	_, err = decoder.Decode(Context{Path: "main"}, map[string]string{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped post-hook error, got %v", err)
	}
}

func TestEnvKeysAddsAliases(t *testing.T) {
	decoder := NewDecoder[serviceSettings](WithPreHook[serviceSettings](EnvKeys))
	result, err := decoder.Decode(Context{}, map[string]string{
		"port":  "9000",
		"host":  "alias",
		"HOST":  "explicit",
		"debug": "true",
	})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if result.Port != 9000 || !result.Debug {
		t.Fatalf("expected aliased keys to decode, got %#v", result)
	}
	if result.Host != "explicit" {
		t.Fatalf("expected existing key to win over alias, got %q", result.Host)
	}

	table, _ := EnvKeys(Context{}, map[string]string{"app.http-port": "1"})
	if table["APP_HTTP_PORT"] != "1" {
		t.Fatalf("expected dotted and dashed key alias, got %v", table)
	}
}

func TestDecoderRejectsNilPayload(t *testing.T) {
	decoder := NewDecoder[serviceSettings]()
	if _, err := decoder.Decode(Context{Path: "x"}, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}
