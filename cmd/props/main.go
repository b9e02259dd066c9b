package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	config    cliConfig
	logLevel  string
	engine    string
	underflow string
	from      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cfg, cfgErr := loadConfig()
	opts.config = cfg

	rootCmd := &cobra.Command{
		Use:           "props",
		Short:         "Inspect and exercise scoped property tables",
		Long:          "props loads a property table from the environment or a properties file and runs scoped operations, rule evaluations and scenarios against it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Invalid log level '%s', using 'info'\n", opts.logLevel)
				level = zerolog.InfoLevel
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.engine, "engine", cfg.Engine, "Rule engine (expr, cel, js)")
	rootCmd.PersistentFlags().StringVar(&opts.underflow, "underflow", cfg.Underflow, "Policy for exiting with no entered scope (reject, clamp)")
	rootCmd.PersistentFlags().StringVar(&opts.from, "from", "", "Seed the table from a properties file instead of the environment")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDumpCmd(opts))
	rootCmd.AddCommand(newEvalCmd(opts))
	rootCmd.AddCommand(newRunCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
