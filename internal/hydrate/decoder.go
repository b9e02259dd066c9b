// Package hydrate decodes flat string tables into structs tagged for
// caarlos0/env.
package hydrate

import (
	"fmt"
	"maps"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Context names the view a table was resolved from. It only feeds error
// messages and hooks.
type Context struct {
	Path  string
	Scope string
}

func (c Context) wrap(stage string, err error) error {
	return fmt.Errorf("hydrate: %s path %q: %w", stage, c.Path, err)
}

// PreHook rewrites the table before decoding. Returning a nil table keeps the
// current one.
type PreHook func(Context, map[string]string) (map[string]string, error)

// PostHook inspects or adjusts the decoded value.
type PostHook[T any] func(Context, *T) error

type DecoderOption[T any] func(*Decoder[T])

// Decoder runs the pre hooks, env decoding and post hooks in that order.
type Decoder[T any] struct {
	env    env.Options
	before []PreHook
	after  []PostHook[T]
}

func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.before = append(d.before, hook)
		}
	}
}

func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.after = append(d.after, hook)
		}
	}
}

// WithPrefix only matches keys starting with prefix.
func WithPrefix[T any](prefix string) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.env.Prefix = prefix
	}
}

// WithRequired fails on tagged fields that have neither a key nor a default.
func WithRequired[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.env.RequiredIfNoDef = true
	}
}

// WithFieldNames matches untagged fields by their upper snake case name.
func WithFieldNames[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.env.UseFieldNameByDefault = true
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode builds a T from table. The caller's map is never written to.
func (d *Decoder[T]) Decode(ctx Context, table map[string]string) (T, error) {
	var out T
	if table == nil {
		return out, ctx.wrap("decode", fmt.Errorf("table is nil"))
	}

	current := maps.Clone(table)
	for _, hook := range d.before {
		next, err := hook(ctx, current)
		if err != nil {
			return out, ctx.wrap("pre-hook", err)
		}
		if next != nil {
			current = next
		}
	}

	opts := d.env
	opts.Environment = current
	if err := env.ParseWithOptions(&out, opts); err != nil {
		var zero T
		return zero, ctx.wrap("decode", err)
	}

	for _, hook := range d.after {
		if err := hook(ctx, &out); err != nil {
			var zero T
			return zero, ctx.wrap("post-hook", err)
		}
	}
	return out, nil
}

// EnvKeys is a PreHook that adds an upper snake case alias for every dotted
// or dashed key, so app.http-port also matches `env:"APP_HTTP_PORT"`.
// Keys already present win over aliases.
func EnvKeys(_ Context, table map[string]string) (map[string]string, error) {
	aliases := make(map[string]string)
	for key, value := range table {
		alias := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		if alias != key {
			aliases[alias] = value
		}
	}
	for alias, value := range aliases {
		if _, taken := table[alias]; !taken {
			table[alias] = value
		}
	}
	return table, nil
}
