package main

import (
	"context"
	"fmt"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	props "github.com/goliatone/go-props"
	"github.com/goliatone/go-props/internal/scenario"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run SCENARIO...",
		Short: "Run TOML or YAML scenarios against a fresh registry each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			evaluator, err := props.NewEvaluatorByName(root.engine)
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range args {
				s, err := scenario.LoadFile(path)
				if err != nil {
					return err
				}
				r, err := scenario.NewRegistry(s, props.WithEvaluator(evaluator), props.WithZerolog(log.Logger))
				if err != nil {
					return err
				}
				report, err := scenario.Run(context.Background(), r, s)
				if err != nil {
					return err
				}
				log.Debug().Str("scenario", report.Name).Int("steps", report.Steps).Int("paths", report.Stats.Paths).Msg("scenario finished")

				out := cmd.OutOrStdout()
				if report.Passed() {
					fmt.Fprintf(out, "%s %s (%d steps)\n", color.Green.Sprint("PASS"), report.Name, report.Steps)
					continue
				}
				failed++
				fmt.Fprintf(out, "%s %s (%d steps)\n", color.Red.Sprint("FAIL"), report.Name, report.Steps)
				for _, failure := range report.Failures {
					fmt.Fprintf(out, "  step %s %s: %s\n", failure.Step, failure.Op, failure.Message)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
			}
			return nil
		},
	}
}
