package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"simdb/internal/config"
	"simdb/internal/simdb"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store contents summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *simdb.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][2]string{
					{"Publications", strconv.Itoa(stats.Publications)},
					{"  resolved to container", strconv.Itoa(stats.ResolvedPublications)},
					{"Issues", strconv.Itoa(stats.Issues)},
					{"Release-count snapshots", strconv.Itoa(stats.ReleaseCounts)},
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Store: %s\n", store.Path())
				fmt.Fprintln(cmd.OutOrStdout(), renderCountTable("Table", "Rows", rows))
				return nil
			})
		},
	}
}
