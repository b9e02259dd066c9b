package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	props "github.com/goliatone/go-props"
)

func newEvalCmd(root *rootOptions) *cobra.Command {
	var (
		sets  []string
		trace string
	)
	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate a rule against the table inside a scope",
		Long:  "eval enters a scope, applies --set overrides, evaluates EXPR and exits the scope again. Every key that is a valid identifier is a variable; props[\"any.key\"] reaches the rest.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseSets(sets)
			if err != nil {
				return err
			}
			r, err := root.newRegistry()
			if err != nil {
				return err
			}

			ctx := context.Background()
			return r.WithScope(ctx, func(ctx context.Context) error {
				for _, entry := range overrides {
					r.Set(ctx, entry.Key, entry.Value)
				}
				result, err := r.Evaluate(ctx, args[0])
				if err != nil {
					log.Debug().Err(err).Str("expr", args[0]).Msg("evaluation failed")
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatResult(result.Value))
				if trace != "" {
					payload, err := r.Trace(ctx, trace).ToJSON()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), color.Gray.Sprint(string(payload)))
				}
				return nil
			}, props.WithScopeLabel("eval"))
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Override key=value inside the evaluation scope (repeatable)")
	cmd.Flags().StringVar(&trace, "trace", "", "Print the resolution trace of KEY to stderr")
	return cmd
}

func parseSets(values []string) ([]props.Entry, error) {
	out := make([]props.Entry, 0, len(values))
	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", value)
		}
		out = append(out, props.Entry{Key: key, Value: val})
	}
	return out, nil
}

func formatResult(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	if payload, err := json.Marshal(value); err == nil {
		return string(payload)
	}
	return fmt.Sprint(value)
}
