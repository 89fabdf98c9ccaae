package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"simdb/internal/config"
	"simdb/internal/simdb"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store file and schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *simdb.Store) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Store initialized at %s\n", store.Path())
				return nil
			})
		},
	}
}
