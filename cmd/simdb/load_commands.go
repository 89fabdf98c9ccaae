package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"simdb/internal/config"
	"simdb/internal/simdb"
)

func newLoadPubsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load-pubs [file]",
		Short: "Ingest publication-level metadata as JSON lines (stdin when no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *simdb.Store) error {
				input, name, err := resolveInput(args)
				if err != nil {
					return err
				}
				defer input.Close()

				ingestor, err := ctx.newIngestor(cfg, store)
				if err != nil {
					return err
				}
				loaded, err := ingestor.LoadPublications(cmd.Context(), input)
				if err != nil {
					return fmt.Errorf("load publications from %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d publication records\n", loaded)
				return nil
			})
		},
	}
}

func newLoadIssuesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load-issues [file]",
		Short: "Ingest issue-level metadata as JSON lines (stdin when no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *simdb.Store) error {
				input, name, err := resolveInput(args)
				if err != nil {
					return err
				}
				defer input.Close()

				ingestor, err := ctx.newIngestor(cfg, store)
				if err != nil {
					return err
				}
				loaded, err := ingestor.LoadIssues(cmd.Context(), input)
				if err != nil {
					return fmt.Errorf("load issues from %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d issue records\n", loaded)
				return nil
			})
		},
	}
}

func newAggregateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Rebuild release-count snapshots from stored issue rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *simdb.Store) error {
				ingestor, err := ctx.newIngestor(cfg, store)
				if err != nil {
					return err
				}
				groups, err := ingestor.AggregateReleaseCounts(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Aggregated %d release-count groups\n", groups)
				return nil
			})
		},
	}
}
