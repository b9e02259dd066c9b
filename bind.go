package props

import (
	"context"
	"reflect"

	"github.com/goliatone/go-props/internal/hydrate"
)

// BindOption configures Bind.
type BindOption func(*bindConfig)

type bindConfig struct {
	prefix     string
	required   bool
	fieldNames bool
	envKeys    bool
}

// WithBindPrefix only considers keys starting with prefix; the prefix is
// stripped before matching `env` tags.
func WithBindPrefix(prefix string) BindOption {
	return func(cfg *bindConfig) {
		cfg.prefix = prefix
	}
}

// WithBindRequired fails the bind when a tagged field without a default has
// no key in the visible table.
func WithBindRequired() BindOption {
	return func(cfg *bindConfig) {
		cfg.required = true
	}
}

// WithBindFieldNames derives keys from untagged field names.
func WithBindFieldNames() BindOption {
	return func(cfg *bindConfig) {
		cfg.fieldNames = true
	}
}

// WithBindDottedKeys lets properties style keys such as app.http-port match
// `env:"APP_HTTP_PORT"`.
func WithBindDottedKeys() BindOption {
	return func(cfg *bindConfig) {
		cfg.envKeys = true
	}
}

// Bind decodes T from the table visible to ctx's path, using `env` and
// `envDefault` struct tags. When T (or *T) implements Validate() error it is
// called on the result.
func Bind[T any](ctx context.Context, r *Registry, opts ...BindOption) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNilRegistry
	}
	cfg := bindConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	decoderOpts := []hydrate.DecoderOption[T]{hydrate.WithPrefix[T](cfg.prefix)}
	if cfg.required {
		decoderOpts = append(decoderOpts, hydrate.WithRequired[T]())
	}
	if cfg.fieldNames {
		decoderOpts = append(decoderOpts, hydrate.WithFieldNames[T]())
	}
	if cfg.envKeys {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](hydrate.EnvKeys))
	}
	decoderOpts = append(decoderOpts, hydrate.WithPostHook[T](func(_ hydrate.Context, value *T) error {
		return validateValue(value)
	}))

	scope := r.CurrentScope(ctx)
	value, err := hydrate.NewDecoder[T](decoderOpts...).Decode(hydrate.Context{
		Path:  string(scope.Path),
		Scope: scope.ID,
	}, r.resolve(ctx).Map())
	if err != nil {
		return zero, &ScopeError{Op: "bind", Path: scope.Path, Scope: scope.ID, Err: err}
	}
	return value, nil
}

func validateValue[T any](value *T) error {
	if value == nil {
		return nil
	}
	if v, ok := any(value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	if rv := reflect.ValueOf(*value); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	if v, ok := any(*value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
