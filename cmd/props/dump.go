package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	props "github.com/goliatone/go-props"
)

func newDumpCmd(root *rootOptions) *cobra.Command {
	var (
		prefix  string
		comment string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the seed table in properties format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := root.newRegistry()
			if err != nil {
				return err
			}
			ctx := context.Background()
			entries := r.Entries(ctx)
			if prefix != "" {
				filtered := entries[:0]
				for _, entry := range entries {
					if strings.HasPrefix(entry.Key, prefix) {
						filtered = append(filtered, entry)
					}
				}
				entries = filtered
			}
			return props.FormatProperties(cmd.OutOrStdout(), entries, comment)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only print keys starting with prefix")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment written above the entries")
	return cmd
}
